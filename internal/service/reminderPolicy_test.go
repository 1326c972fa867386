package service

import (
	"testing"
	"time"

	"github.com/ds124wfegd/voucher-reminder/internal/entity"

	"github.com/stretchr/testify/assert"
)

var baseNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func TestDaysUntilExpiry(t *testing.T) {
	tests := []struct {
		name   string
		offset time.Duration
		want   int
	}{
		{"expires now", 0, 0},
		{"one second left", time.Second, 1},
		{"exactly one day", 24 * time.Hour, 1},
		{"36 hours rounds up", 36 * time.Hour, 2},
		{"just over three days", 72*time.Hour + time.Minute, 4},
		{"exactly seven days", 7 * 24 * time.Hour, 7},
		{"already expired", -time.Hour, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysUntilExpiry(baseNow, baseNow.Add(tt.offset)))
		})
	}
}

func TestDaysSince(t *testing.T) {
	assert.Equal(t, 0, DaysSince(baseNow, baseNow.Add(-23*time.Hour)))
	assert.Equal(t, 1, DaysSince(baseNow, baseNow.Add(-24*time.Hour)))
	assert.Equal(t, 2, DaysSince(baseNow, baseNow.Add(-71*time.Hour)))
}

func TestRuleForWindows(t *testing.T) {
	tests := []struct {
		days int
		want entity.ReminderTier
	}{
		{0, entity.TierUrgent},
		{1, entity.TierUrgent},
		{2, entity.TierThreeDays},
		{3, entity.TierThreeDays},
		{4, entity.TierSevenDays},
		{7, entity.TierSevenDays},
		{8, entity.TierNone},
	}

	for _, tt := range tests {
		r, ok := ruleFor(tt.days)
		assert.Equal(t, tt.want != entity.TierNone, ok, "days=%d", tt.days)
		assert.Equal(t, tt.want, r.tier, "days=%d", tt.days)
	}
}

func ago(d time.Duration) *time.Time {
	t := baseNow.Add(-d)
	return &t
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name     string
		expiry   time.Duration
		lastSent *time.Time
		lastTier entity.ReminderTier
		wantSend bool
		wantTier entity.ReminderTier
		wantDays int
	}{
		{
			name:     "seven days never reminded",
			expiry:   7 * 24 * time.Hour,
			wantSend: true, wantTier: entity.TierSevenDays, wantDays: 7,
		},
		{
			name:     "seven-day window is first contact only",
			expiry:   5 * 24 * time.Hour,
			lastSent: ago(2 * 24 * time.Hour), lastTier: entity.TierSevenDays,
			wantSend: false, wantTier: entity.TierSevenDays, wantDays: 5,
		},
		{
			name:     "three-day window never reminded",
			expiry:   3 * 24 * time.Hour,
			wantSend: true, wantTier: entity.TierThreeDays, wantDays: 3,
		},
		{
			name:     "escalates from seven-day after four days",
			expiry:   3 * 24 * time.Hour,
			lastSent: ago(4 * 24 * time.Hour), lastTier: entity.TierSevenDays,
			wantSend: true, wantTier: entity.TierThreeDays, wantDays: 3,
		},
		{
			name:     "escalates from seven-day sent yesterday",
			expiry:   3 * 24 * time.Hour,
			lastSent: ago(24 * time.Hour), lastTier: entity.TierSevenDays,
			wantSend: true, wantTier: entity.TierThreeDays, wantDays: 3,
		},
		{
			name:     "three-day cooldown not elapsed",
			expiry:   2 * 24 * time.Hour,
			lastSent: ago(24 * time.Hour), lastTier: entity.TierThreeDays,
			wantSend: false, wantTier: entity.TierThreeDays, wantDays: 2,
		},
		{
			name:     "three-day cooldown elapsed",
			expiry:   2 * 24 * time.Hour,
			lastSent: ago(3 * 24 * time.Hour), lastTier: entity.TierThreeDays,
			wantSend: true, wantTier: entity.TierThreeDays, wantDays: 2,
		},
		{
			name:     "urgent with 36 hours left rounds to three-day window",
			expiry:   36 * time.Hour,
			wantSend: true, wantTier: entity.TierThreeDays, wantDays: 2,
		},
		{
			name:     "urgent exactly one day",
			expiry:   24 * time.Hour,
			wantSend: true, wantTier: entity.TierUrgent, wantDays: 1,
		},
		{
			name:     "urgent same day",
			expiry:   3 * time.Hour,
			wantSend: true, wantTier: entity.TierUrgent, wantDays: 1,
		},
		{
			name:     "urgent expiring this instant",
			expiry:   0,
			wantSend: true, wantTier: entity.TierUrgent, wantDays: 0,
		},
		{
			name:     "urgent already sent today",
			expiry:   12 * time.Hour,
			lastSent: ago(2 * time.Hour), lastTier: entity.TierUrgent,
			wantSend: false, wantTier: entity.TierUrgent, wantDays: 1,
		},
		{
			name:     "urgent resent after one day",
			expiry:   1 * time.Hour,
			lastSent: ago(24 * time.Hour), lastTier: entity.TierUrgent,
			wantSend: true, wantTier: entity.TierUrgent, wantDays: 1,
		},
		{
			name:     "urgent escalation waits for a full day",
			expiry:   20 * time.Hour,
			lastSent: ago(5 * time.Hour), lastTier: entity.TierThreeDays,
			wantSend: false, wantTier: entity.TierUrgent, wantDays: 1,
		},
		{
			name:     "never regresses from urgent",
			expiry:   2 * 24 * time.Hour,
			lastSent: ago(5 * 24 * time.Hour), lastTier: entity.TierUrgent,
			wantSend: false, wantTier: entity.TierThreeDays, wantDays: 2,
		},
		{
			name:     "legacy reminder without tier blocks seven-day",
			expiry:   6 * 24 * time.Hour,
			lastSent: ago(10 * 24 * time.Hour),
			wantSend: false, wantTier: entity.TierSevenDays, wantDays: 6,
		},
		{
			name:     "beyond horizon",
			expiry:   8 * 24 * time.Hour,
			wantSend: false, wantTier: entity.TierNone, wantDays: 8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &entity.Voucher{
				ID:               "v1",
				ExpiryDate:       baseNow.Add(tt.expiry),
				Status:           entity.VoucherStatusActive,
				LastReminderSent: tt.lastSent,
				LastReminderTier: tt.lastTier,
			}

			got := Decide(v, baseNow)
			assert.Equal(t, tt.wantSend, got.Send)
			assert.Equal(t, tt.wantTier, got.Tier)
			assert.Equal(t, tt.wantDays, got.DaysUntilExpiry)
		})
	}
}

func TestIsReminderCandidate(t *testing.T) {
	active := func(expiry time.Duration) *entity.Voucher {
		return &entity.Voucher{ID: "v1", Status: entity.VoucherStatusActive, ExpiryDate: baseNow.Add(expiry)}
	}

	assert.NoError(t, IsReminderCandidate(active(0), baseNow))
	assert.NoError(t, IsReminderCandidate(active(ReminderHorizon), baseNow))
	assert.ErrorIs(t, IsReminderCandidate(active(ReminderHorizon+time.Second), baseNow), errNotCandidate)
	assert.ErrorIs(t, IsReminderCandidate(active(-time.Second), baseNow), errNotCandidate)

	redeemed := active(48 * time.Hour)
	redeemed.Status = entity.VoucherStatusRedeemed
	assert.ErrorIs(t, IsReminderCandidate(redeemed, baseNow), errNotCandidate)

	assert.ErrorIs(t, IsReminderCandidate(&entity.Voucher{ID: "v2", Status: entity.VoucherStatusActive}, baseNow), entity.ErrMalformedVoucher)
	assert.ErrorIs(t, IsReminderCandidate(nil, baseNow), entity.ErrMalformedVoucher)
}
