package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/learnaistudio/course-engine/pkg/apperrors"
	"github.com/learnaistudio/course-engine/pkg/models"
)

// UserRepository provides data access for the minimal identity records the
// pipeline needs. Users are auto-created on first reference, so the surface
// is intentionally small: find, insert, adjust credit.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Insert(ctx context.Context, user *models.User) error
	AdjustCredit(ctx context.Context, id uuid.UUID, delta int) (int, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository backed by Postgres.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

var _ UserRepository = (*userRepository)(nil)

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.get(ctx, `SELECT id, name, email, credit, created_at FROM users WHERE id = $1`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.get(ctx, `SELECT id, name, email, credit, created_at FROM users WHERE email = $1`, email)
}

func (r *userRepository) get(ctx context.Context, query string, arg any) (*models.User, error) {
	var user models.User
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID, &user.Name, &user.Email, &user.Credit, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *userRepository) Insert(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, name, email, credit)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	err := r.pool.QueryRow(ctx, query, user.ID, user.Name, user.Email, user.Credit).
		Scan(&user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrConflict
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (r *userRepository) AdjustCredit(ctx context.Context, id uuid.UUID, delta int) (int, error) {
	var credit int
	err := r.pool.QueryRow(ctx,
		`UPDATE users SET credit = credit + $2 WHERE id = $1 RETURNING credit`,
		id, delta).Scan(&credit)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.ErrNotFound
		}
		return 0, fmt.Errorf("failed to adjust credit: %w", err)
	}
	return credit, nil
}
