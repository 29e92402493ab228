package models

import (
	"strings"
	"time"

	"github.com/biter777/countries"
	"github.com/google/uuid"
)

// User is an end-user account that browses the feed and activates promos.
type User struct {
	ID           uuid.UUID
	Name         string
	Surname      string
	Email        string
	PasswordHash string
	AvatarURL    string
	Age          int
	Country      string
	CreatedAt    time.Time
}

// Profile is the targeting-relevant slice of a user.
type Profile struct {
	Age     int    `json:"age"`
	Country string `json:"country"`
}

// Profile returns the user's targeting profile.
func (u *User) Profile() Profile {
	return Profile{Age: u.Age, Country: u.Country}
}

// ValidCountryCode reports whether s is a valid ISO 3166-1 alpha-2 code.
func ValidCountryCode(s string) bool {
	if len(s) != 2 {
		return false
	}
	return countries.ByName(strings.ToUpper(s)) != countries.Unknown
}
