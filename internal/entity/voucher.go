package entity

import (
	"time"
)

type VoucherStatus string

const (
	VoucherStatusActive   VoucherStatus = "active"
	VoucherStatusRedeemed VoucherStatus = "redeemed"
	VoucherStatusExpired  VoucherStatus = "expired"
)

// DefaultVoucherValue is shown when a voucher was stored without a value.
const DefaultVoucherValue = 50

type Voucher struct {
	ID               string        `json:"id" db:"id"`
	Code             string        `json:"code" db:"code"`
	Value            float64       `json:"value" db:"value"`
	ExpiryDate       time.Time     `json:"expiry_date" db:"expiry_date"`
	Status           VoucherStatus `json:"status" db:"status"`
	LastReminderSent *time.Time    `json:"last_reminder_sent,omitempty" db:"last_reminder_sent"`
	LastReminderTier ReminderTier  `json:"last_reminder_type,omitempty" db:"last_reminder_type"`
	DaysAtReminder   *int          `json:"days_until_expiry_at_reminder,omitempty" db:"days_until_expiry_at_reminder"`
	BuyerID          string        `json:"buyer_id" db:"buyer_id"`
	EstablishmentID  string        `json:"boutique_id,omitempty" db:"boutique_id"`
	// LegacyShopID references the owning user of an establishment (pre-boutique_id vouchers).
	LegacyShopID string `json:"shop_id,omitempty" db:"shop_id"`
}

// DisplayValue returns the voucher value, substituting the default for unset values.
func (v *Voucher) DisplayValue() float64 {
	if v.Value == 0 {
		return DefaultVoucherValue
	}
	return v.Value
}

// ReminderMark is the bookkeeping written back to a voucher after its reminder was handed off.
type ReminderMark struct {
	VoucherID       string       `json:"voucher_id"`
	SentAt          time.Time    `json:"last_reminder_sent"`
	Tier            ReminderTier `json:"last_reminder_type"`
	DaysUntilExpiry int          `json:"days_until_expiry_at_reminder"`
}
