package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		ok       bool
	}{
		{name: "valid", password: "HardPa$$w0rd", ok: true},
		{name: "too short", password: "Ab1$", ok: false},
		{name: "no uppercase", password: "weakpa$$w0rd", ok: false},
		{name: "no lowercase", password: "WEAKPA$$W0RD", ok: false},
		{name: "no digit", password: "WeakPa$$word", ok: false},
		{name: "no special", password: "WeakPassw0rd", ok: false},
		{name: "disallowed character", password: "Hard Pa$$w0rd", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrWeakPassword)
			}
		})
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("HardPa$$w0rd")
	require.NoError(t, err)

	assert.True(t, CheckPassword("HardPa$$w0rd", hash))
	assert.False(t, CheckPassword("WrongPa$$w0rd", hash))
}
