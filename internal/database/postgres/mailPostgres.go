package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ds124wfegd/voucher-reminder/internal/database"
	"github.com/ds124wfegd/voucher-reminder/internal/entity"
)

type mailRepository struct {
	db *sql.DB
}

func NewMailRepository(db *sql.DB) database.MailRepository {
	return &mailRepository{db: db}
}

// Enqueue appends a message to the mail collection drained by the external sender.
func (r *mailRepository) Enqueue(ctx context.Context, msg *entity.MailMessage) error {
	query := `
		INSERT INTO mail (id, recipient, subject, html, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		msg.ID,
		msg.To,
		msg.Message.Subject,
		msg.Message.HTML,
		msg.Status,
		msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue mail: %w", err)
	}

	return nil
}

// NewRepositories wires every PostgreSQL-backed repository onto one pool.
func NewRepositories(db *sql.DB) *database.Repositories {
	return &database.Repositories{
		Vouchers:       NewVoucherRepository(db),
		Users:          NewUserRepository(db),
		Establishments: NewEstablishmentRepository(db),
		Mail:           NewMailRepository(db),
	}
}
