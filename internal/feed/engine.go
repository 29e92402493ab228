package feed

import (
	"github.com/promohub/backend/internal/models"
)

// Eligible filters the catalog down to promos the profile may see, newest
// first. The catalog comes in insertion order; walking it backwards puts the
// most recently created promo at the head without a sort.
func Eligible(catalog []models.PromoCode, profile models.Profile, category string) []models.PromoCode {
	out := make([]models.PromoCode, 0, len(catalog))
	for i := len(catalog) - 1; i >= 0; i-- {
		p := catalog[i]
		if !p.Target.Matches(profile) {
			continue
		}
		if category != "" && !p.Target.HasCategory(category) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Page slices the eligible list with offset and limit and returns the page
// plus the pre-slicing total. Offsets past the end yield an empty page, not
// an error.
func Page(list []models.PromoCode, offset, limit int) ([]models.PromoCode, int) {
	total := len(list)
	if offset >= total {
		return []models.PromoCode{}, total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return list[offset:end], total
}
