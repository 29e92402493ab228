package interactions

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/promohub/backend/internal/models"
)

// Repository is the pgx-backed interaction store. It also serves the feed's
// per-user flag lookups.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an interaction repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) PromoExists(ctx context.Context, promoID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM promo_codes WHERE id = $1)`, promoID).Scan(&exists)
	return exists, err
}

// GetAction returns the pair's ledger row, or a zero-valued row when the user
// never touched the promo.
func (r *Repository) GetAction(ctx context.Context, promoID, userID uuid.UUID) (models.PromoAction, error) {
	const q = `SELECT promo_id, user_id, is_liked_by_user, is_activated_by_user
		FROM promo_actions WHERE promo_id = $1 AND user_id = $2`
	var a models.PromoAction
	err := r.pool.QueryRow(ctx, q, promoID, userID).Scan(&a.PromoID, &a.UserID, &a.IsLikedByUser, &a.IsActivatedByUser)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.PromoAction{}, nil
	}
	return a, err
}

func (r *Repository) SaveAction(ctx context.Context, action models.PromoAction) error {
	const q = `INSERT INTO promo_actions (promo_id, user_id, is_liked_by_user, is_activated_by_user)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (promo_id, user_id)
		DO UPDATE SET is_liked_by_user = EXCLUDED.is_liked_by_user, is_activated_by_user = EXCLUDED.is_activated_by_user`
	_, err := r.pool.Exec(ctx, q, action.PromoID, action.UserID, action.IsLikedByUser, action.IsActivatedByUser)
	return err
}

func (r *Repository) AdjustLikeCount(ctx context.Context, promoID uuid.UUID, delta int) error {
	_, err := r.pool.Exec(ctx, `UPDATE promo_codes SET like_count = like_count + $1 WHERE id = $2`, delta, promoID)
	return err
}

// FlagsFor returns ledger rows for the given promos keyed by promo id. Pairs
// with no row are absent, which reads as both flags false.
func (r *Repository) FlagsFor(ctx context.Context, userID uuid.UUID, promoIDs []uuid.UUID) (map[uuid.UUID]models.PromoAction, error) {
	flags := make(map[uuid.UUID]models.PromoAction, len(promoIDs))
	if len(promoIDs) == 0 {
		return flags, nil
	}

	const q = `SELECT promo_id, user_id, is_liked_by_user, is_activated_by_user
		FROM promo_actions WHERE user_id = $1 AND promo_id = ANY($2)`
	rows, err := r.pool.Query(ctx, q, userID, promoIDs)
	if err != nil {
		return nil, fmt.Errorf("load action flags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a models.PromoAction
		if err := rows.Scan(&a.PromoID, &a.UserID, &a.IsLikedByUser, &a.IsActivatedByUser); err != nil {
			return nil, err
		}
		flags[a.PromoID] = a
	}
	return flags, rows.Err()
}

func (r *Repository) InsertComment(ctx context.Context, comment *models.PromoComment) error {
	const q = `INSERT INTO promo_comments (promo_id, user_id, text, author)
		VALUES ($1, $2, $3, $4) RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, comment.PromoID, comment.UserID, comment.Text, comment.Author).
		Scan(&comment.ID, &comment.CreatedAt)
}

func (r *Repository) GetComment(ctx context.Context, promoID, commentID uuid.UUID) (*models.PromoComment, error) {
	const q = `SELECT id, promo_id, user_id, text, author, created_at
		FROM promo_comments WHERE id = $1 AND promo_id = $2`
	var c models.PromoComment
	err := r.pool.QueryRow(ctx, q, commentID, promoID).
		Scan(&c.ID, &c.PromoID, &c.UserID, &c.Text, &c.Author, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCommentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListComments returns a page of the promo's comments newest first plus the
// unpaginated total.
func (r *Repository) ListComments(ctx context.Context, promoID uuid.UUID, limit, offset int) ([]models.PromoComment, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM promo_comments WHERE promo_id = $1`, promoID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count comments: %w", err)
	}

	const q = `SELECT id, promo_id, user_id, text, author, created_at
		FROM promo_comments WHERE promo_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, q, promoID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var list []models.PromoComment
	for rows.Next() {
		var c models.PromoComment
		if err := rows.Scan(&c.ID, &c.PromoID, &c.UserID, &c.Text, &c.Author, &c.CreatedAt); err != nil {
			return nil, 0, err
		}
		list = append(list, c)
	}
	return list, total, rows.Err()
}

func (r *Repository) UpdateCommentText(ctx context.Context, commentID uuid.UUID, text string) error {
	_, err := r.pool.Exec(ctx, `UPDATE promo_comments SET text = $1 WHERE id = $2`, text, commentID)
	return err
}

func (r *Repository) DeleteComment(ctx context.Context, commentID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM promo_comments WHERE id = $1`, commentID)
	return err
}

func (r *Repository) AdjustCommentCount(ctx context.Context, promoID uuid.UUID, delta int) error {
	_, err := r.pool.Exec(ctx, `UPDATE promo_codes SET comment_count = comment_count + $1 WHERE id = $2`, delta, promoID)
	return err
}
