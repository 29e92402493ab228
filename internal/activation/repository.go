package activation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/promohub/backend/internal/auth"
	"github.com/promohub/backend/internal/models"
	"github.com/promohub/backend/internal/promos"
)

// Repository implements Store over the catalog and user repositories plus its
// own transaction for the activation side effects.
type Repository struct {
	pool    *pgxpool.Pool
	catalog *promos.Repository
	users   *auth.Repository
}

// NewRepository creates an activation store.
func NewRepository(pool *pgxpool.Pool, catalog *promos.Repository, users *auth.Repository) *Repository {
	return &Repository{pool: pool, catalog: catalog, users: users}
}

func (r *Repository) GetPromo(ctx context.Context, id uuid.UUID) (*models.PromoCode, error) {
	promo, err := r.catalog.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPromoNotFound
	}
	return promo, err
}

func (r *Repository) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.users.GetUserByID(ctx, id)
}

// Activate applies all activation side effects in one transaction.
func (r *Repository) Activate(ctx context.Context, promoID, userID uuid.UUID, country string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `UPDATE promo_codes SET used_count = used_count + 1 WHERE id = $1`, promoID); err != nil {
		return fmt.Errorf("bump used_count: %w", err)
	}

	const actionQ = `INSERT INTO promo_actions (promo_id, user_id, is_activated_by_user)
		VALUES ($1, $2, TRUE)
		ON CONFLICT (promo_id, user_id) DO UPDATE SET is_activated_by_user = TRUE`
	if _, err := tx.Exec(ctx, actionQ, promoID, userID); err != nil {
		return fmt.Errorf("flag ledger row: %w", err)
	}

	const statQ = `INSERT INTO promo_statistics (promo_id, country, activations_count)
		VALUES ($1, $2, 1)
		ON CONFLICT (promo_id, country)
		DO UPDATE SET activations_count = promo_statistics.activations_count + 1`
	if _, err := tx.Exec(ctx, statQ, promoID, country); err != nil {
		return fmt.Errorf("bump country statistic: %w", err)
	}

	return tx.Commit(ctx)
}
