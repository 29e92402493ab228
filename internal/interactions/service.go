package interactions

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/promohub/backend/internal/models"
)

var (
	// ErrPromoNotFound reports an interaction against a promo id that does not exist.
	ErrPromoNotFound = errors.New("promo not found")
	// ErrCommentNotFound reports a comment id unknown under the given promo.
	ErrCommentNotFound = errors.New("comment not found")
	// ErrNotAuthor reports an edit or delete attempt by someone other than the
	// comment's author.
	ErrNotAuthor = errors.New("not the comment author")
)

// Store is the persistence surface the ledger needs.
type Store interface {
	PromoExists(ctx context.Context, promoID uuid.UUID) (bool, error)
	GetAction(ctx context.Context, promoID, userID uuid.UUID) (models.PromoAction, error)
	SaveAction(ctx context.Context, action models.PromoAction) error
	AdjustLikeCount(ctx context.Context, promoID uuid.UUID, delta int) error

	InsertComment(ctx context.Context, comment *models.PromoComment) error
	GetComment(ctx context.Context, promoID, commentID uuid.UUID) (*models.PromoComment, error)
	ListComments(ctx context.Context, promoID uuid.UUID, limit, offset int) ([]models.PromoComment, int, error)
	UpdateCommentText(ctx context.Context, commentID uuid.UUID, text string) error
	DeleteComment(ctx context.Context, commentID uuid.UUID) error
	AdjustCommentCount(ctx context.Context, promoID uuid.UUID, delta int) error
}

// Ledger tracks per-user likes and comments against promos. Likes are
// idempotent: repeating an operation the ledger already reflects changes
// nothing and moves no counter.
type Ledger struct {
	store Store
}

// NewLedger creates an interaction ledger over the store.
func NewLedger(store Store) *Ledger {
	return &Ledger{store: store}
}

// Like records that the user likes the promo. The promo's like counter moves
// only on the false-to-true transition.
func (l *Ledger) Like(ctx context.Context, promoID, userID uuid.UUID) error {
	return l.setLiked(ctx, promoID, userID, true)
}

// Unlike withdraws a like. Unliking a promo the user never liked still
// materializes the ledger row but leaves the counter alone.
func (l *Ledger) Unlike(ctx context.Context, promoID, userID uuid.UUID) error {
	return l.setLiked(ctx, promoID, userID, false)
}

func (l *Ledger) setLiked(ctx context.Context, promoID, userID uuid.UUID, liked bool) error {
	if err := l.requirePromo(ctx, promoID); err != nil {
		return err
	}
	action, err := l.store.GetAction(ctx, promoID, userID)
	if err != nil {
		return err
	}

	changed := action.IsLikedByUser != liked
	action.PromoID = promoID
	action.UserID = userID
	action.IsLikedByUser = liked
	if err := l.store.SaveAction(ctx, action); err != nil {
		return err
	}
	if !changed {
		return nil
	}
	delta := 1
	if !liked {
		delta = -1
	}
	return l.store.AdjustLikeCount(ctx, promoID, delta)
}

// AddComment posts a comment with a snapshot of the author's current profile
// and bumps the promo's comment counter.
func (l *Ledger) AddComment(ctx context.Context, promoID, userID uuid.UUID, text string, author models.CommentAuthor) (*models.PromoComment, error) {
	if err := l.requirePromo(ctx, promoID); err != nil {
		return nil, err
	}

	comment := &models.PromoComment{
		PromoID: promoID,
		UserID:  userID,
		Text:    text,
		Author:  author,
	}
	if err := l.store.InsertComment(ctx, comment); err != nil {
		return nil, err
	}

	// Commenting also materializes the pair's ledger row.
	action, err := l.store.GetAction(ctx, promoID, userID)
	if err != nil {
		return nil, err
	}
	action.PromoID = promoID
	action.UserID = userID
	if err := l.store.SaveAction(ctx, action); err != nil {
		return nil, err
	}

	if err := l.store.AdjustCommentCount(ctx, promoID, 1); err != nil {
		return nil, err
	}
	return comment, nil
}

// ListComments returns the promo's comments newest first plus the unpaginated total.
func (l *Ledger) ListComments(ctx context.Context, promoID uuid.UUID, limit, offset int) ([]models.PromoComment, int, error) {
	if err := l.requirePromo(ctx, promoID); err != nil {
		return nil, 0, err
	}
	return l.store.ListComments(ctx, promoID, limit, offset)
}

// GetComment returns a single comment scoped to the promo.
func (l *Ledger) GetComment(ctx context.Context, promoID, commentID uuid.UUID) (*models.PromoComment, error) {
	if err := l.requirePromo(ctx, promoID); err != nil {
		return nil, err
	}
	return l.store.GetComment(ctx, promoID, commentID)
}

// UpdateComment replaces a comment's text. Only the author may edit.
func (l *Ledger) UpdateComment(ctx context.Context, promoID, commentID, userID uuid.UUID, text string) (*models.PromoComment, error) {
	comment, err := l.GetComment(ctx, promoID, commentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != userID {
		return nil, ErrNotAuthor
	}
	if err := l.store.UpdateCommentText(ctx, commentID, text); err != nil {
		return nil, err
	}
	comment.Text = text
	return comment, nil
}

// DeleteComment removes a comment and decrements the promo's comment counter.
// Only the author may delete.
func (l *Ledger) DeleteComment(ctx context.Context, promoID, commentID, userID uuid.UUID) error {
	comment, err := l.GetComment(ctx, promoID, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != userID {
		return ErrNotAuthor
	}
	if err := l.store.DeleteComment(ctx, commentID); err != nil {
		return err
	}
	return l.store.AdjustCommentCount(ctx, promoID, -1)
}

func (l *Ledger) requirePromo(ctx context.Context, promoID uuid.UUID) error {
	exists, err := l.store.PromoExists(ctx, promoID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrPromoNotFound
	}
	return nil
}
