package models

// CountryUnknown is the statistics bucket for promos without a country target.
const CountryUnknown = "UNKNOWN"

// CountryStat is a per-country activation counter for a promo.
type CountryStat struct {
	Country          string `json:"country"`
	ActivationsCount int    `json:"activations_count"`
}
