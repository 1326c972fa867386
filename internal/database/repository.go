package database

import (
	"context"
	"time"

	"github.com/ds124wfegd/voucher-reminder/internal/entity"
)

type VoucherRepository interface {
	// GetExpiring returns vouchers with the given status whose expiry date lies in [from, to].
	GetExpiring(ctx context.Context, status entity.VoucherStatus, from, to time.Time) ([]*entity.Voucher, error)
	GetByID(ctx context.Context, id string) (*entity.Voucher, error)
	MarkReminded(ctx context.Context, mark *entity.ReminderMark) error
}

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
}

type EstablishmentRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Establishment, error)
	// GetByOwner resolves the first establishment owned by a user (legacy shop_id references).
	GetByOwner(ctx context.Context, userID string) (*entity.Establishment, error)
}

type MailRepository interface {
	Enqueue(ctx context.Context, msg *entity.MailMessage) error
}

// Repositories bundles the store-backed repositories of one backend.
type Repositories struct {
	Vouchers       VoucherRepository
	Users          UserRepository
	Establishments EstablishmentRepository
	Mail           MailRepository
}
