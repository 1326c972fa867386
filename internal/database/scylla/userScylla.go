package scylla

import (
	"context"
	"errors"
	"fmt"

	"github.com/ds124wfegd/voucher-reminder/internal/database"
	"github.com/ds124wfegd/voucher-reminder/internal/entity"

	"github.com/gocql/gocql"
)

type userRepository struct {
	session *gocql.Session
}

func NewUserRepository(session *gocql.Session) database.UserRepository {
	return &userRepository{session: session}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	var user entity.User
	err := r.session.Query(`SELECT id, email, name FROM users WHERE id = ?`, id).
		WithContext(ctx).
		Scan(&user.ID, &user.Email, &user.Name)

	if errors.Is(err, gocql.ErrNotFound) {
		return nil, entity.ErrBuyerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

type establishmentRepository struct {
	session *gocql.Session
}

func NewEstablishmentRepository(session *gocql.Session) database.EstablishmentRepository {
	return &establishmentRepository{session: session}
}

const establishmentColumns = `id, user_id, name, voucher_usage_conditions`

func (r *establishmentRepository) GetByID(ctx context.Context, id string) (*entity.Establishment, error) {
	return r.getOne(ctx, `SELECT `+establishmentColumns+` FROM establishments WHERE id = ?`, id)
}

func (r *establishmentRepository) GetByOwner(ctx context.Context, userID string) (*entity.Establishment, error) {
	return r.getOne(ctx, `SELECT `+establishmentColumns+` FROM establishments WHERE user_id = ? LIMIT 1 ALLOW FILTERING`, userID)
}

func (r *establishmentRepository) getOne(ctx context.Context, query, arg string) (*entity.Establishment, error) {
	var e entity.Establishment
	err := r.session.Query(query, arg).
		WithContext(ctx).
		Scan(&e.ID, &e.UserID, &e.Name, &e.VoucherUsageConditions)

	if errors.Is(err, gocql.ErrNotFound) {
		return nil, entity.ErrEstablishmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get establishment: %w", err)
	}

	return &e, nil
}

type mailRepository struct {
	session *gocql.Session
}

func NewMailRepository(session *gocql.Session) database.MailRepository {
	return &mailRepository{session: session}
}

func (r *mailRepository) Enqueue(ctx context.Context, msg *entity.MailMessage) error {
	id, err := gocql.ParseUUID(msg.ID)
	if err != nil {
		return fmt.Errorf("invalid mail id %q: %w", msg.ID, err)
	}

	err = r.session.Query(
		`INSERT INTO mail (id, recipient, subject, html, status, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, msg.To, msg.Message.Subject, msg.Message.HTML, msg.Status, msg.CreatedAt,
	).WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("failed to enqueue mail: %w", err)
	}

	return nil
}

// NewRepositories wires every Scylla-backed repository onto one session.
func NewRepositories(session *gocql.Session) *database.Repositories {
	return &database.Repositories{
		Vouchers:       NewVoucherRepository(session),
		Users:          NewUserRepository(session),
		Establishments: NewEstablishmentRepository(session),
		Mail:           NewMailRepository(session),
	}
}
