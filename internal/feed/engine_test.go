package feed

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promohub/backend/internal/models"
)

func intPtr(v int) *int { return &v }

func targetedPromo(desc string, target models.Target) models.PromoCode {
	return models.PromoCode{Description: desc, Target: target, MaxCount: 1, Active: true}
}

func TestEligibleNewestFirst(t *testing.T) {
	catalog := []models.PromoCode{
		targetedPromo("first", models.Target{}),
		targetedPromo("second", models.Target{}),
		targetedPromo("third", models.Target{}),
	}

	got := Eligible(catalog, models.Profile{Age: 30, Country: "fr"}, "")
	require.Len(t, got, 3)
	assert.Equal(t, "third", got[0].Description)
	assert.Equal(t, "second", got[1].Description)
	assert.Equal(t, "first", got[2].Description)
}

func TestEligibleFiltersByProfile(t *testing.T) {
	catalog := []models.PromoCode{
		targetedPromo("any", models.Target{}),
		targetedPromo("adults in france", models.Target{AgeFrom: intPtr(18), Country: "FR"}),
		targetedPromo("teens", models.Target{AgeUntil: intPtr(17)}),
		targetedPromo("germany", models.Target{Country: "de"}),
	}

	got := Eligible(catalog, models.Profile{Age: 25, Country: "fr"}, "")
	require.Len(t, got, 2)
	assert.Equal(t, "adults in france", got[0].Description)
	assert.Equal(t, "any", got[1].Description)

	got = Eligible(catalog, models.Profile{Age: 15, Country: "FR"}, "")
	require.Len(t, got, 2)
	assert.Equal(t, "teens", got[0].Description)
	assert.Equal(t, "any", got[1].Description)
}

func TestEligibleAgeBoundsInclusive(t *testing.T) {
	catalog := []models.PromoCode{
		targetedPromo("range", models.Target{AgeFrom: intPtr(18), AgeUntil: intPtr(30)}),
	}

	assert.Len(t, Eligible(catalog, models.Profile{Age: 18, Country: "us"}, ""), 1)
	assert.Len(t, Eligible(catalog, models.Profile{Age: 30, Country: "us"}, ""), 1)
	assert.Empty(t, Eligible(catalog, models.Profile{Age: 17, Country: "us"}, ""))
	assert.Empty(t, Eligible(catalog, models.Profile{Age: 31, Country: "us"}, ""))
}

func TestEligibleCategoryFilter(t *testing.T) {
	catalog := []models.PromoCode{
		targetedPromo("food", models.Target{Categories: []string{"Food", "Drinks"}}),
		targetedPromo("tech", models.Target{Categories: []string{"electronics"}}),
		targetedPromo("untagged", models.Target{}),
	}
	profile := models.Profile{Age: 25, Country: "gb"}

	got := Eligible(catalog, profile, "food")
	require.Len(t, got, 1)
	assert.Equal(t, "food", got[0].Description)

	// Untagged promos are excluded once the user asks for a category.
	assert.Empty(t, Eligible(catalog, profile, "travel"))
}

func TestPage(t *testing.T) {
	var list []models.PromoCode
	for i := 0; i < 7; i++ {
		list = append(list, targetedPromo(fmt.Sprintf("promo-%d", i), models.Target{}))
	}

	page, total := Page(list, 0, 3)
	assert.Equal(t, 7, total)
	require.Len(t, page, 3)
	assert.Equal(t, "promo-0", page[0].Description)

	page, total = Page(list, 5, 3)
	assert.Equal(t, 7, total)
	require.Len(t, page, 2)
	assert.Equal(t, "promo-5", page[0].Description)

	page, total = Page(list, 10, 3)
	assert.Equal(t, 7, total)
	assert.Empty(t, page)

	page, _ = Page(list, 0, 0)
	assert.Empty(t, page)
}

// Paging the eligible list in chunks must reassemble to the unpaged list.
func TestPageCoversEligibleList(t *testing.T) {
	var catalog []models.PromoCode
	for i := 0; i < 23; i++ {
		catalog = append(catalog, targetedPromo(fmt.Sprintf("promo-%d", i), models.Target{}))
	}
	eligible := Eligible(catalog, models.Profile{Age: 40, Country: "nl"}, "")

	var joined []models.PromoCode
	for offset := 0; ; offset += 5 {
		page, total := Page(eligible, offset, 5)
		require.Equal(t, len(eligible), total)
		if len(page) == 0 {
			break
		}
		joined = append(joined, page...)
	}
	assert.Equal(t, eligible, joined)
}
