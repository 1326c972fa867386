package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ds124wfegd/voucher-reminder/internal/database"
	"github.com/ds124wfegd/voucher-reminder/internal/entity"
)

const voucherColumns = `
	id, code, COALESCE(value, 0), expiry_date, status,
	last_reminder_sent, COALESCE(last_reminder_type, ''), days_until_expiry_at_reminder,
	COALESCE(buyer_id, ''), COALESCE(boutique_id, ''), COALESCE(shop_id, '')
`

type voucherRepository struct {
	db *sql.DB
}

func NewVoucherRepository(db *sql.DB) database.VoucherRepository {
	return &voucherRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVoucher(row rowScanner) (*entity.Voucher, error) {
	var (
		v          entity.Voucher
		expiry     sql.NullTime
		lastSent   sql.NullTime
		daysAtSent sql.NullInt64
		tier       string
	)

	err := row.Scan(
		&v.ID,
		&v.Code,
		&v.Value,
		&expiry,
		&v.Status,
		&lastSent,
		&tier,
		&daysAtSent,
		&v.BuyerID,
		&v.EstablishmentID,
		&v.LegacyShopID,
	)
	if err != nil {
		return nil, err
	}

	if expiry.Valid {
		v.ExpiryDate = expiry.Time
	}
	if lastSent.Valid {
		t := lastSent.Time
		v.LastReminderSent = &t
	}
	if daysAtSent.Valid {
		d := int(daysAtSent.Int64)
		v.DaysAtReminder = &d
	}
	v.LastReminderTier = entity.ReminderTier(tier)

	return &v, nil
}

// GetExpiring returns vouchers with the given status expiring within [from, to].
// Rows without an expiry date never match the range predicate.
func (r *voucherRepository) GetExpiring(ctx context.Context, status entity.VoucherStatus, from, to time.Time) ([]*entity.Voucher, error) {
	query := `
		SELECT ` + voucherColumns + `
		FROM vouchers
		WHERE status = $1 AND expiry_date >= $2 AND expiry_date <= $3
		ORDER BY expiry_date ASC
	`

	rows, err := r.db.QueryContext(ctx, query, status, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query expiring vouchers: %w", err)
	}
	defer rows.Close()

	var vouchers []*entity.Voucher
	for rows.Next() {
		v, err := scanVoucher(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan voucher: %w", err)
		}
		vouchers = append(vouchers, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating vouchers: %w", err)
	}

	return vouchers, nil
}

func (r *voucherRepository) GetByID(ctx context.Context, id string) (*entity.Voucher, error) {
	query := `SELECT ` + voucherColumns + ` FROM vouchers WHERE id = $1`

	v, err := scanVoucher(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, entity.ErrVoucherNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get voucher: %w", err)
	}

	return v, nil
}

// MarkReminded records the reminder bookkeeping; the status and expiry are never touched.
func (r *voucherRepository) MarkReminded(ctx context.Context, mark *entity.ReminderMark) error {
	query := `
		UPDATE vouchers
		SET last_reminder_sent = $1, last_reminder_type = $2, days_until_expiry_at_reminder = $3
		WHERE id = $4
	`

	result, err := r.db.ExecContext(ctx, query, mark.SentAt, string(mark.Tier), mark.DaysUntilExpiry, mark.VoucherID)
	if err != nil {
		return fmt.Errorf("failed to mark voucher reminded: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return entity.ErrVoucherNotFound
	}

	return nil
}
