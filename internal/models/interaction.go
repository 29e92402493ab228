package models

import (
	"time"

	"github.com/google/uuid"
)

// PromoAction is the ledger row tracking a single user's like/activation
// state against a single promo. Keyed by the (user, promo) pair.
type PromoAction struct {
	PromoID           uuid.UUID
	UserID            uuid.UUID
	IsLikedByUser     bool
	IsActivatedByUser bool
}

// CommentAuthor is the author snapshot captured when a comment is posted.
// Later profile edits do not change it.
type CommentAuthor struct {
	Name      string `json:"name"`
	Surname   string `json:"surname"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// PromoComment is a user comment on a promo.
type PromoComment struct {
	ID        uuid.UUID
	PromoID   uuid.UUID
	UserID    uuid.UUID
	Text      string
	Author    CommentAuthor
	CreatedAt time.Time
}
