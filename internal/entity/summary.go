package entity

import (
	"fmt"
	"time"
)

// SweepSummary reports the outcome of one reminder sweep.
type SweepSummary struct {
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Found     int           `json:"found"`
	SevenDays int           `json:"seven_days"`
	ThreeDays int           `json:"three_days"`
	Urgent    int           `json:"urgent"`
	Skipped   int           `json:"skipped"`
	Failed    int           `json:"failed"`
	// Cancelled counts candidates left unprocessed because the sweep was
	// interrupted; the next sweep picks them up.
	Cancelled int           `json:"cancelled"`
}

// Sent returns the total number of reminders handed off.
func (s *SweepSummary) Sent() int {
	return s.SevenDays + s.ThreeDays + s.Urgent
}

func (s *SweepSummary) Add(tier ReminderTier) {
	switch tier {
	case TierSevenDays:
		s.SevenDays++
	case TierThreeDays:
		s.ThreeDays++
	case TierUrgent:
		s.Urgent++
	}
}

// Interrupted reports whether the sweep stopped before every candidate ran.
func (s *SweepSummary) Interrupted() bool {
	return s.Cancelled > 0
}

func (s *SweepSummary) String() string {
	out := fmt.Sprintf(
		"Vouchers: %d, sent: %d (7 days: %d, 3 days: %d, urgent: %d), skipped: %d, failed: %d",
		s.Found, s.Sent(), s.SevenDays, s.ThreeDays, s.Urgent, s.Skipped, s.Failed,
	)
	if s.Interrupted() {
		out += fmt.Sprintf(", interrupted with %d left", s.Cancelled)
	}
	return out
}
