package activation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func antifraudServer(t *testing.T, handler http.HandlerFunc) *AntifraudClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	addr := strings.TrimPrefix(srv.URL, "http://")
	return NewAntifraudClient(addr, 2*time.Second, zap.NewNop())
}

func TestVerifySendsPairAndParsesVerdict(t *testing.T) {
	promoID := uuid.New()
	client := antifraudServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/validate", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ada@example.com", body["user_email"])
		assert.Equal(t, promoID.String(), body["promo_id"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok": true, "cache_until": "2026-09-01T12:00:00"}`))
	})

	verdict, err := client.Verify(context.Background(), "ada@example.com", promoID)
	require.NoError(t, err)
	assert.True(t, verdict.Ok)
	assert.Equal(t, time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC), verdict.CacheUntil)
}

func TestVerifyRetriesOnceAfterServerError(t *testing.T) {
	calls := 0
	client := antifraudServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"ok": false}`))
	})

	verdict, err := client.Verify(context.Background(), "ada@example.com", uuid.New())
	require.NoError(t, err)
	assert.False(t, verdict.Ok)
	assert.Equal(t, 2, calls)
}

func TestVerifyGivesUpAfterTwoFailures(t *testing.T) {
	calls := 0
	client := antifraudServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.Verify(context.Background(), "ada@example.com", uuid.New())
	assert.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestVerifyMissingCacheUntil(t *testing.T) {
	client := antifraudServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok": true}`))
	})

	verdict, err := client.Verify(context.Background(), "ada@example.com", uuid.New())
	require.NoError(t, err)
	assert.True(t, verdict.Ok)
	assert.True(t, verdict.CacheUntil.IsZero())
}
