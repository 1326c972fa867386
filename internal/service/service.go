package service

import (
	"context"

	"github.com/ds124wfegd/voucher-reminder/internal/entity"
)

type ReminderService interface {
	// RunSweep evaluates every active voucher expiring within the reminder
	// horizon and dispatches the reminders that are due. Only a failure of the
	// candidate query is returned; per-voucher failures are counted in the summary.
	RunSweep(ctx context.Context) (*entity.SweepSummary, error)

	// Preview reports what the next sweep would decide for one voucher, without
	// dispatching or recording anything.
	Preview(ctx context.Context, voucherID string) (*ReminderPreview, error)
}

// MailDispatcher hands a rendered mail to the external delivery queue.
// A nil error means the hand-off write succeeded, not that mail was delivered.
type MailDispatcher interface {
	Dispatch(ctx context.Context, msg *entity.MailMessage) error
}

// ReminderPreview is the policy outcome for a single voucher.
type ReminderPreview struct {
	VoucherID       string              `json:"voucher_id"`
	Candidate       bool                `json:"candidate"`
	Reason          string              `json:"reason,omitempty"`
	Send            bool                `json:"send"`
	Tier            entity.ReminderTier `json:"tier,omitempty"`
	DaysUntilExpiry int                 `json:"days_until_expiry"`
}
