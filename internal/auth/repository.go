package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/promohub/backend/internal/models"
)

// ErrEmailTaken is returned when an insert hits the email unique constraint.
// The pre-insert lookup in the handlers races with concurrent sign-ups, so
// the constraint is the authority.
var ErrEmailTaken = errors.New("email already registered")

const uniqueViolation = "23505"

func translateInsertError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrEmailTaken
	}
	return err
}

// Repository handles company and user persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an auth repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateCompany inserts a new company.
func (r *Repository) CreateCompany(ctx context.Context, name, email, passwordHash string) (*models.Company, error) {
	const q = `INSERT INTO companies (name, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, name, email, password_hash, created_at`
	var c models.Company
	err := r.pool.QueryRow(ctx, q, name, email, passwordHash).
		Scan(&c.ID, &c.Name, &c.Email, &c.PasswordHash, &c.CreatedAt)
	if err != nil {
		return nil, translateInsertError(err)
	}
	return &c, nil
}

// GetCompanyByEmail returns a company by email.
func (r *Repository) GetCompanyByEmail(ctx context.Context, email string) (*models.Company, error) {
	const q = `SELECT id, name, email, password_hash, created_at FROM companies WHERE email = $1`
	var c models.Company
	err := r.pool.QueryRow(ctx, q, email).Scan(&c.ID, &c.Name, &c.Email, &c.PasswordHash, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetCompanyByID returns a company by id.
func (r *Repository) GetCompanyByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	const q = `SELECT id, name, email, password_hash, created_at FROM companies WHERE id = $1`
	var c models.Company
	err := r.pool.QueryRow(ctx, q, id).Scan(&c.ID, &c.Name, &c.Email, &c.PasswordHash, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateUser inserts a new user.
func (r *Repository) CreateUser(ctx context.Context, u *models.User) error {
	const q = `INSERT INTO users (name, surname, email, password_hash, avatar_url, age, country)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7)
		RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, q, u.Name, u.Surname, u.Email, u.PasswordHash, u.AvatarURL, u.Age, u.Country).
		Scan(&u.ID, &u.CreatedAt)
	return translateInsertError(err)
}

// GetUserByEmail returns a user by email.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const q = `SELECT id, name, surname, email, password_hash, COALESCE(avatar_url, ''), age, country, created_at
		FROM users WHERE email = $1`
	var u models.User
	err := r.pool.QueryRow(ctx, q, email).
		Scan(&u.ID, &u.Name, &u.Surname, &u.Email, &u.PasswordHash, &u.AvatarURL, &u.Age, &u.Country, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByID returns a user by id.
func (r *Repository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const q = `SELECT id, name, surname, email, password_hash, COALESCE(avatar_url, ''), age, country, created_at
		FROM users WHERE id = $1`
	var u models.User
	err := r.pool.QueryRow(ctx, q, id).
		Scan(&u.ID, &u.Name, &u.Surname, &u.Email, &u.PasswordHash, &u.AvatarURL, &u.Age, &u.Country, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateUser persists profile fields that can change via PATCH.
func (r *Repository) UpdateUser(ctx context.Context, u *models.User) error {
	const q = `UPDATE users SET name = $1, surname = $2, avatar_url = NULLIF($3, ''), password_hash = $4
		WHERE id = $5`
	_, err := r.pool.Exec(ctx, q, u.Name, u.Surname, u.AvatarURL, u.PasswordHash, u.ID)
	return err
}
