package promos

import (
	"time"

	"github.com/google/uuid"

	"github.com/promohub/backend/internal/models"
)

const dateLayout = "2006-01-02"

// promoView is the owner-facing promo readout. Optional fields are dropped
// from the JSON body rather than serialized as null.
type promoView struct {
	PromoID     uuid.UUID        `json:"promo_id"`
	CompanyID   uuid.UUID        `json:"company_id"`
	CompanyName string           `json:"company_name"`
	Mode        models.PromoMode `json:"mode"`
	PromoCommon string           `json:"promo_common,omitempty"`
	PromoUnique []string         `json:"promo_unique,omitempty"`
	Description string           `json:"description"`
	ImageURL    string           `json:"image_url,omitempty"`
	Target      models.Target    `json:"target"`
	MaxCount    int              `json:"max_count"`
	ActiveFrom  string           `json:"active_from,omitempty"`
	ActiveUntil string           `json:"active_until,omitempty"`
	Active      bool             `json:"active"`
	LikeCount   int              `json:"like_count"`
	UsedCount   int              `json:"used_count"`
}

func newPromoView(p *models.PromoCode) promoView {
	return promoView{
		PromoID:     p.ID,
		CompanyID:   p.CompanyID,
		CompanyName: p.CompanyName,
		Mode:        p.Mode,
		PromoCommon: p.PromoCommon,
		PromoUnique: p.PromoUnique,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		Target:      p.Target,
		MaxCount:    p.MaxCount,
		ActiveFrom:  formatDate(p.ActiveFrom),
		ActiveUntil: formatDate(p.ActiveUntil),
		Active:      p.Active,
		LikeCount:   p.LikeCount,
		UsedCount:   p.UsedCount,
	}
}

// statView is the per-promo activation statistics readout.
type statView struct {
	ActivationsCount int                  `json:"activations_count"`
	Countries        []models.CountryStat `json:"countries,omitempty"`
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}
