package entity

// ReminderTier classifies reminder urgency. Values match the stored
// last_reminder_type field.
type ReminderTier string

const (
	TierNone      ReminderTier = ""
	TierSevenDays ReminderTier = "7days"
	TierThreeDays ReminderTier = "3days"
	TierUrgent    ReminderTier = "urgent"
)

// Rank orders tiers by ascending urgency; unknown values rank with TierNone.
func (t ReminderTier) Rank() int {
	switch t {
	case TierSevenDays:
		return 1
	case TierThreeDays:
		return 2
	case TierUrgent:
		return 3
	default:
		return 0
	}
}

func (t ReminderTier) MoreUrgentThan(other ReminderTier) bool {
	return t.Rank() > other.Rank()
}

func (t ReminderTier) String() string {
	if t == TierNone {
		return "none"
	}
	return string(t)
}
