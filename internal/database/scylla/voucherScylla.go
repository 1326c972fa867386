package scylla

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ds124wfegd/voucher-reminder/internal/database"
	"github.com/ds124wfegd/voucher-reminder/internal/entity"

	"github.com/gocql/gocql"
)

const voucherColumns = `id, code, value, expiry_date, status, last_reminder_sent, last_reminder_type,
	days_until_expiry_at_reminder, buyer_id, boutique_id, shop_id`

type voucherRepository struct {
	session *gocql.Session
}

func NewVoucherRepository(session *gocql.Session) database.VoucherRepository {
	return &voucherRepository{session: session}
}

type voucherRow struct {
	v          entity.Voucher
	expiry     time.Time
	lastSent   *time.Time
	daysAtSent *int
	status     string
	tier       string
}

func (r *voucherRow) dest() []any {
	return []any{
		&r.v.ID, &r.v.Code, &r.v.Value, &r.expiry, &r.status, &r.lastSent, &r.tier,
		&r.daysAtSent, &r.v.BuyerID, &r.v.EstablishmentID, &r.v.LegacyShopID,
	}
}

func (r *voucherRow) voucher() *entity.Voucher {
	v := r.v
	v.ExpiryDate = r.expiry
	v.Status = entity.VoucherStatus(r.status)
	v.LastReminderSent = r.lastSent
	v.LastReminderTier = entity.ReminderTier(r.tier)
	v.DaysAtReminder = r.daysAtSent
	return &v
}

// GetExpiring relies on ALLOW FILTERING: vouchers is keyed by id only.
func (r *voucherRepository) GetExpiring(ctx context.Context, status entity.VoucherStatus, from, to time.Time) ([]*entity.Voucher, error) {
	query := `SELECT ` + voucherColumns + ` FROM vouchers
		WHERE status = ? AND expiry_date >= ? AND expiry_date <= ? ALLOW FILTERING`

	iter := r.session.Query(query, string(status), from, to).WithContext(ctx).Iter()

	var vouchers []*entity.Voucher
	for {
		row := &voucherRow{}
		if !iter.Scan(row.dest()...) {
			break
		}
		vouchers = append(vouchers, row.voucher())
	}

	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("failed to query expiring vouchers: %w", err)
	}

	return vouchers, nil
}

func (r *voucherRepository) GetByID(ctx context.Context, id string) (*entity.Voucher, error) {
	query := `SELECT ` + voucherColumns + ` FROM vouchers WHERE id = ?`

	row := &voucherRow{}
	err := r.session.Query(query, id).WithContext(ctx).Scan(row.dest()...)
	if errors.Is(err, gocql.ErrNotFound) {
		return nil, entity.ErrVoucherNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get voucher: %w", err)
	}

	return row.voucher(), nil
}

// MarkReminded uses IF EXISTS so a stale id cannot upsert a phantom voucher row.
func (r *voucherRepository) MarkReminded(ctx context.Context, mark *entity.ReminderMark) error {
	query := `UPDATE vouchers
		SET last_reminder_sent = ?, last_reminder_type = ?, days_until_expiry_at_reminder = ?
		WHERE id = ? IF EXISTS`

	applied, err := r.session.Query(query, mark.SentAt, string(mark.Tier), mark.DaysUntilExpiry, mark.VoucherID).
		WithContext(ctx).
		ScanCAS()
	if err != nil {
		return fmt.Errorf("failed to mark voucher reminded: %w", err)
	}
	if !applied {
		return entity.ErrVoucherNotFound
	}

	return nil
}
