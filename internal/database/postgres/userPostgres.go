package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ds124wfegd/voucher-reminder/internal/database"
	"github.com/ds124wfegd/voucher-reminder/internal/entity"
)

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) database.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	query := `
		SELECT id, COALESCE(email, ''), COALESCE(name, '')
		FROM users
		WHERE id = $1
	`

	var user entity.User
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
	)

	if err == sql.ErrNoRows {
		return nil, entity.ErrBuyerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

type establishmentRepository struct {
	db *sql.DB
}

func NewEstablishmentRepository(db *sql.DB) database.EstablishmentRepository {
	return &establishmentRepository{db: db}
}

const establishmentColumns = `id, COALESCE(user_id, ''), COALESCE(name, ''), COALESCE(voucher_usage_conditions, '')`

func (r *establishmentRepository) GetByID(ctx context.Context, id string) (*entity.Establishment, error) {
	query := `SELECT ` + establishmentColumns + ` FROM establishments WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *establishmentRepository) GetByOwner(ctx context.Context, userID string) (*entity.Establishment, error) {
	query := `SELECT ` + establishmentColumns + ` FROM establishments WHERE user_id = $1 LIMIT 1`
	return r.getOne(ctx, query, userID)
}

func (r *establishmentRepository) getOne(ctx context.Context, query string, arg string) (*entity.Establishment, error) {
	var e entity.Establishment
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&e.ID,
		&e.UserID,
		&e.Name,
		&e.VoucherUsageConditions,
	)

	if err == sql.ErrNoRows {
		return nil, entity.ErrEstablishmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get establishment: %w", err)
	}

	return &e, nil
}
