package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestComputeActive(t *testing.T) {
	today := time.Date(2025, 6, 15, 13, 45, 0, 0, time.UTC)

	tests := []struct {
		name     string
		maxCount int
		from     *time.Time
		until    *time.Time
		want     bool
	}{
		{name: "open window", maxCount: 10, want: true},
		{name: "zero max count disables", maxCount: 0, want: false},
		{name: "inside window", maxCount: 5, from: datePtr(2025, 6, 1), until: datePtr(2025, 6, 30), want: true},
		{name: "window starts today", maxCount: 5, from: datePtr(2025, 6, 15), want: true},
		{name: "window ends today", maxCount: 5, until: datePtr(2025, 6, 15), want: true},
		{name: "not started yet", maxCount: 5, from: datePtr(2025, 7, 1), want: false},
		{name: "already over", maxCount: 5, until: datePtr(2025, 6, 14), want: false},
		{name: "zero max count beats open dates", maxCount: 0, from: datePtr(2025, 6, 1), until: datePtr(2025, 6, 30), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeActive(tt.maxCount, tt.from, tt.until, today))
		})
	}
}

func TestRecomputeActive_AfterPatch(t *testing.T) {
	today := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	p := PromoCode{
		MaxCount:    100,
		ActiveFrom:  datePtr(2025, 6, 1),
		ActiveUntil: datePtr(2025, 7, 1),
	}
	p.RecomputeActive(today)
	assert.True(t, p.Active)

	// Dropping max_count to zero turns the promo off even while the date
	// window is still open.
	p.MaxCount = 0
	p.RecomputeActive(today)
	assert.False(t, p.Active)
}

func TestTargetMatches(t *testing.T) {
	tests := []struct {
		name    string
		target  Target
		profile Profile
		want    bool
	}{
		{name: "empty target matches anyone", target: Target{}, profile: Profile{Age: 30, Country: "US"}, want: true},
		{name: "inside age range", target: Target{AgeFrom: intPtr(18), AgeUntil: intPtr(60)}, profile: Profile{Age: 20, Country: "RU"}, want: true},
		{name: "below age range", target: Target{AgeFrom: intPtr(18)}, profile: Profile{Age: 17, Country: "RU"}, want: false},
		{name: "above age range", target: Target{AgeUntil: intPtr(60)}, profile: Profile{Age: 61, Country: "RU"}, want: false},
		{name: "age bounds inclusive", target: Target{AgeFrom: intPtr(18), AgeUntil: intPtr(18)}, profile: Profile{Age: 18, Country: "RU"}, want: true},
		{name: "country case-insensitive", target: Target{Country: "ru"}, profile: Profile{Age: 30, Country: "RU"}, want: true},
		{name: "wrong country", target: Target{Country: "RU"}, profile: Profile{Age: 30, Country: "US"}, want: false},
		{name: "combined rule", target: Target{AgeFrom: intPtr(18), AgeUntil: intPtr(60), Country: "RU"}, profile: Profile{Age: 17, Country: "US"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.target.Matches(tt.profile))
		})
	}
}

func TestTargetHasCategory(t *testing.T) {
	target := Target{Categories: []string{"food", "Travel"}}

	assert.True(t, target.HasCategory("food"))
	assert.True(t, target.HasCategory("TRAVEL"))
	assert.False(t, target.HasCategory("sport"))
	assert.False(t, Target{}.HasCategory("food"))
}

func TestValidCountryCode(t *testing.T) {
	assert.True(t, ValidCountryCode("RU"))
	assert.True(t, ValidCountryCode("us"))
	assert.False(t, ValidCountryCode(""))
	assert.False(t, ValidCountryCode("USA"))
	assert.False(t, ValidCountryCode("XZ"))
}
