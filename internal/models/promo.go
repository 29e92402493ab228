package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// PromoMode distinguishes a shared code from a pool of single-use codes.
type PromoMode string

const (
	PromoModeCommon PromoMode = "COMMON"
	PromoModeUnique PromoMode = "UNIQUE"
)

// Target restricts who sees a promo in the feed. Zero-valued fields mean
// no restriction.
type Target struct {
	AgeFrom    *int     `json:"age_from,omitempty"`
	AgeUntil   *int     `json:"age_until,omitempty"`
	Country    string   `json:"country,omitempty"`
	Categories []string `json:"categories,omitempty"`
}

// Matches reports whether a user profile falls inside the target's age range
// and country. Country comparison is case-insensitive; an untargeted country
// matches everyone.
func (t Target) Matches(p Profile) bool {
	ageFrom := 0
	if t.AgeFrom != nil {
		ageFrom = *t.AgeFrom
	}
	ageUntil := 100
	if t.AgeUntil != nil {
		ageUntil = *t.AgeUntil
	}
	if p.Age < ageFrom || p.Age > ageUntil {
		return false
	}
	return t.Country == "" || strings.EqualFold(t.Country, p.Country)
}

// HasCategory reports case-insensitive membership of category in the target's
// category list.
func (t Target) HasCategory(category string) bool {
	for _, c := range t.Categories {
		if strings.EqualFold(c, category) {
			return true
		}
	}
	return false
}

// PromoCode is a company's promo campaign.
type PromoCode struct {
	ID           uuid.UUID
	CompanyID    uuid.UUID
	CompanyName  string
	Mode         PromoMode
	PromoCommon  string   // shared code, COMMON mode
	PromoUnique  []string // single-use code pool, UNIQUE mode
	Description  string
	ImageURL     string
	Target       Target
	MaxCount     int
	ActiveFrom   *time.Time // nil means no lower bound
	ActiveUntil  *time.Time // nil means no upper bound
	Active       bool
	LikeCount    int
	CommentCount int
	UsedCount    int
	Created      time.Time
}

// ComputeActive derives the active flag: max_count must be non-zero and today
// must fall inside the [active_from, active_until] window. Open bounds always
// pass.
func ComputeActive(maxCount int, from, until *time.Time, today time.Time) bool {
	if maxCount == 0 {
		return false
	}
	day := truncateToDay(today)
	if from != nil && day.Before(truncateToDay(*from)) {
		return false
	}
	if until != nil && day.After(truncateToDay(*until)) {
		return false
	}
	return true
}

// RecomputeActive refreshes the stored active flag against today.
func (p *PromoCode) RecomputeActive(today time.Time) {
	p.Active = ComputeActive(p.MaxCount, p.ActiveFrom, p.ActiveUntil, today)
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
