package auth

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestTranslateInsertError(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
	assert.ErrorIs(t, translateInsertError(dup), ErrEmailTaken)

	// Wrapped errors still translate.
	assert.ErrorIs(t, translateInsertError(fmt.Errorf("insert user: %w", dup)), ErrEmailTaken)

	fk := &pgconn.PgError{Code: "23503"}
	assert.NotErrorIs(t, translateInsertError(fk), ErrEmailTaken)

	assert.NoError(t, translateInsertError(nil))

	plain := errors.New("connection reset")
	assert.Equal(t, plain, translateInsertError(plain))
}
