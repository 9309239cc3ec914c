package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/campus-market/internal/domain"
)

// UserRepository defines persistence access for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateSkills(ctx context.Context, id string, skills []string) (*domain.User, error)
	// AddEarnings applies atomic increments to the earnings aggregate so
	// concurrent transactions for the same seller never lose updates.
	AddEarnings(ctx context.Context, id string, pendingDelta, totalDelta int64) error
	// SetRating overwrites the denormalized rating aggregate.
	SetRating(ctx context.Context, id string, average float64, count int) error
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, name, email, password_hash, department, year, skills, avatar, bio,
        rating_average, rating_count, earnings_total, earnings_pending, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (name, email, password_hash, department, year, skills, avatar, bio)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Department,
		user.Year,
		user.Skills,
		user.Avatar,
		user.Bio,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET name=$1, department=$2, year=$3, skills=$4, avatar=$5, bio=$6, updated_at=NOW()
        WHERE id=$7`
	cmd, err := r.pool.Exec(ctx, query,
		user.Name,
		user.Department,
		user.Year,
		user.Skills,
		user.Avatar,
		user.Bio,
		user.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, email)
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Department,
		&user.Year,
		&user.Skills,
		&user.Avatar,
		&user.Bio,
		&user.Rating.Average,
		&user.Rating.Count,
		&user.Earnings.Total,
		&user.Earnings.Pending,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) UpdateSkills(ctx context.Context, id string, skills []string) (*domain.User, error) {
	const query = `
        UPDATE users SET skills=$1, updated_at=NOW()
        WHERE id=$2
        RETURNING ` + userColumns
	var user domain.User
	if err := r.pool.QueryRow(ctx, query, skills, id).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Department,
		&user.Year,
		&user.Skills,
		&user.Avatar,
		&user.Bio,
		&user.Rating.Average,
		&user.Rating.Count,
		&user.Earnings.Total,
		&user.Earnings.Pending,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) AddEarnings(ctx context.Context, id string, pendingDelta, totalDelta int64) error {
	const query = `
        UPDATE users SET earnings_pending = earnings_pending + $1,
                         earnings_total = earnings_total + $2,
                         updated_at = NOW()
        WHERE id=$3`
	cmd, err := r.pool.Exec(ctx, query, pendingDelta, totalDelta, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) SetRating(ctx context.Context, id string, average float64, count int) error {
	const query = `
        UPDATE users SET rating_average=$1, rating_count=$2, updated_at=NOW()
        WHERE id=$3`
	cmd, err := r.pool.Exec(ctx, query, average, count, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
