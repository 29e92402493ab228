package models

import (
	"time"

	"github.com/google/uuid"
)

// Company is a business account that owns promo codes.
type Company struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
