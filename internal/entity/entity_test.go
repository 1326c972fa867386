package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReminderTierOrdering(t *testing.T) {
	assert.True(t, TierUrgent.MoreUrgentThan(TierThreeDays))
	assert.True(t, TierThreeDays.MoreUrgentThan(TierSevenDays))
	assert.True(t, TierSevenDays.MoreUrgentThan(TierNone))
	assert.False(t, TierSevenDays.MoreUrgentThan(TierUrgent))
	assert.False(t, TierUrgent.MoreUrgentThan(TierUrgent))

	assert.False(t, ReminderTier("weekly").MoreUrgentThan(TierNone))
	assert.Equal(t, "none", TierNone.String())
}

func TestSweepSummaryCounts(t *testing.T) {
	s := &SweepSummary{Found: 5, Skipped: 1}
	s.Add(TierUrgent)
	s.Add(TierUrgent)
	s.Add(TierThreeDays)
	s.Add(TierNone)

	assert.Equal(t, 2, s.Urgent)
	assert.Equal(t, 1, s.ThreeDays)
	assert.Equal(t, 0, s.SevenDays)
	assert.Equal(t, 3, s.Sent())
	assert.Contains(t, s.String(), "urgent: 2")
	assert.False(t, s.Interrupted())
	assert.NotContains(t, s.String(), "interrupted")

	s.Cancelled = 4
	assert.True(t, s.Interrupted())
	assert.Contains(t, s.String(), "interrupted with 4 left")
}

func TestVoucherDisplayValue(t *testing.T) {
	assert.Equal(t, float64(DefaultVoucherValue), (&Voucher{}).DisplayValue())
	assert.Equal(t, 20.5, (&Voucher{Value: 20.5}).DisplayValue())
}
