package service

import (
	"time"

	"github.com/ds124wfegd/voucher-reminder/internal/entity"
)

const (
	day = 24 * time.Hour

	// ReminderHorizon is how far ahead of expiry vouchers are considered.
	ReminderHorizon = 7 * day
)

// Decision is the outcome of the reminder policy for one voucher.
type Decision struct {
	Send            bool
	Tier            entity.ReminderTier
	DaysUntilExpiry int
}

// DaysUntilExpiry rounds the remaining time up to whole days: 36h is 2 days,
// exactly 24h is 1, anything already past is 0 or negative.
func DaysUntilExpiry(now, expiry time.Time) int {
	d := expiry.Sub(now)
	days := int(d / day)
	if d%day > 0 {
		days++
	}
	return days
}

// DaysSince rounds the elapsed time down to whole days.
func DaysSince(now, last time.Time) int {
	return int(now.Sub(last) / day)
}

type tierRule struct {
	maxDays  int
	tier     entity.ReminderTier
	cooldown int // 0: only when never reminded
}

// Evaluated in order; the first rule whose window matches decides, even when
// its cooldown forbids sending.
var tierRules = []tierRule{
	{maxDays: 1, tier: entity.TierUrgent, cooldown: 1},
	{maxDays: 3, tier: entity.TierThreeDays, cooldown: 3},
	{maxDays: 7, tier: entity.TierSevenDays},
}

// ruleFor returns the first rule whose window contains days.
func ruleFor(days int) (tierRule, bool) {
	for _, r := range tierRules {
		if days <= r.maxDays {
			return r, true
		}
	}
	return tierRule{}, false
}

// Decide applies the reminder policy to v at now.
//
// A reminder recorded less than one whole day ago never allows another, and
// a tier less urgent than the one already recorded is never sent. Moving up
// to a more urgent tier needs only that one-day gap; repeating the recorded
// tier waits for the tier cooldown.
func Decide(v *entity.Voucher, now time.Time) Decision {
	days := DaysUntilExpiry(now, v.ExpiryDate)
	d := Decision{DaysUntilExpiry: days}

	r, ok := ruleFor(days)
	if !ok {
		return d
	}
	d.Tier = r.tier

	if v.LastReminderSent == nil {
		d.Send = true
		return d
	}
	if v.LastReminderTier.MoreUrgentThan(r.tier) {
		return d
	}

	since := DaysSince(now, *v.LastReminderSent)
	switch {
	case since < 1, r.cooldown == 0:
	case r.tier.MoreUrgentThan(v.LastReminderTier):
		d.Send = true
	case since >= r.cooldown:
		d.Send = true
	}
	return d
}

// IsReminderCandidate re-checks the candidate query predicate in process:
// active, well-formed and expiring within [now, now+ReminderHorizon].
func IsReminderCandidate(v *entity.Voucher, now time.Time) error {
	if v == nil || v.ID == "" || v.ExpiryDate.IsZero() {
		return entity.ErrMalformedVoucher
	}
	if v.Status != entity.VoucherStatusActive {
		return errNotCandidate
	}
	if v.ExpiryDate.Before(now) || v.ExpiryDate.After(now.Add(ReminderHorizon)) {
		return errNotCandidate
	}
	return nil
}
