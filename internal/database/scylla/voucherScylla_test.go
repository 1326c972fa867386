package scylla

import (
	"testing"
	"time"

	"github.com/ds124wfegd/voucher-reminder/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fill assigns values to the scan destinations the way gocql does for one
// row; a nil value leaves a pointer column nil.
func fill(t *testing.T, dest []any, values ...any) {
	t.Helper()
	require.Len(t, dest, len(values))

	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = values[i].(string)
		case *float64:
			*p = values[i].(float64)
		case *time.Time:
			*p = values[i].(time.Time)
		case **time.Time:
			if values[i] != nil {
				ts := values[i].(time.Time)
				*p = &ts
			}
		case **int:
			if values[i] != nil {
				n := values[i].(int)
				*p = &n
			}
		default:
			t.Fatalf("unexpected destination %T at column %d", d, i)
		}
	}
}

func TestVoucherRowMapsReminderFields(t *testing.T) {
	expiry := time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC)
	sent := time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)

	var row voucherRow
	fill(t, row.dest(),
		"v1", "CODE", 25.0, expiry, "active",
		sent, "urgent", 1,
		"buyer", "shop-1", "",
	)
	v := row.voucher()

	assert.Equal(t, "v1", v.ID)
	assert.Equal(t, "CODE", v.Code)
	assert.Equal(t, 25.0, v.Value)
	assert.True(t, v.ExpiryDate.Equal(expiry))
	assert.Equal(t, entity.VoucherStatusActive, v.Status)
	require.NotNil(t, v.LastReminderSent)
	assert.True(t, v.LastReminderSent.Equal(sent))
	assert.Equal(t, entity.TierUrgent, v.LastReminderTier)
	require.NotNil(t, v.DaysAtReminder)
	assert.Equal(t, 1, *v.DaysAtReminder)
	assert.Equal(t, "buyer", v.BuyerID)
	assert.Equal(t, "shop-1", v.EstablishmentID)
}

func TestVoucherRowNeverReminded(t *testing.T) {
	var row voucherRow
	fill(t, row.dest(),
		"v2", "CODE", 0.0, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), "active",
		nil, "", nil,
		"buyer", "", "owner-7",
	)
	v := row.voucher()

	assert.Nil(t, v.LastReminderSent)
	assert.Nil(t, v.DaysAtReminder)
	assert.Equal(t, entity.TierNone, v.LastReminderTier)
	assert.Equal(t, "owner-7", v.LegacyShopID)
}

func TestVoucherRowsDoNotShareState(t *testing.T) {
	var row voucherRow
	fill(t, row.dest(), "v1", "A", 1.0, time.Time{}, "active", nil, "", nil, "b", "", "")
	first := row.voucher()

	row = voucherRow{}
	fill(t, row.dest(), "v2", "B", 2.0, time.Time{}, "redeemed", nil, "", nil, "b", "", "")
	second := row.voucher()

	assert.Equal(t, "v1", first.ID)
	assert.Equal(t, "v2", second.ID)
	assert.Equal(t, entity.VoucherStatusRedeemed, second.Status)
}
