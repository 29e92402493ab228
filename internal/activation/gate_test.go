package activation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/promohub/backend/internal/models"
)

type fakeStore struct {
	promo       *models.PromoCode
	user        *models.User
	activations []string // countries recorded per Activate call
}

func (s *fakeStore) GetPromo(_ context.Context, id uuid.UUID) (*models.PromoCode, error) {
	if s.promo == nil || s.promo.ID != id {
		return nil, ErrPromoNotFound
	}
	p := *s.promo
	return &p, nil
}

func (s *fakeStore) GetUser(_ context.Context, _ uuid.UUID) (*models.User, error) {
	return s.user, nil
}

func (s *fakeStore) Activate(_ context.Context, _, _ uuid.UUID, country string) error {
	s.activations = append(s.activations, country)
	s.promo.UsedCount++
	return nil
}

type fakeVerifier struct {
	verdict Verdict
	err     error
	calls   int
}

func (v *fakeVerifier) Verify(_ context.Context, _ string, _ uuid.UUID) (Verdict, error) {
	v.calls++
	return v.verdict, v.err
}

type fakeCache struct {
	entries map[string]Verdict
}

func newFakeCache() *fakeCache { return &fakeCache{entries: make(map[string]Verdict)} }

func (c *fakeCache) Get(_ context.Context, promoID, userID uuid.UUID) (Verdict, bool, error) {
	v, ok := c.entries[promoID.String()+userID.String()]
	return v, ok, nil
}

func (c *fakeCache) Set(_ context.Context, promoID, userID uuid.UUID, v Verdict) error {
	c.entries[promoID.String()+userID.String()] = v
	return nil
}

func commonPromo() *models.PromoCode {
	return &models.PromoCode{
		ID:          uuid.New(),
		Mode:        models.PromoModeCommon,
		PromoCommon: "WELCOME10",
		MaxCount:    3,
	}
}

func testGate(store *fakeStore, verifier *fakeVerifier, cache VerdictCache) *Gate {
	return NewGate(store, verifier, cache, zap.NewNop())
}

func TestActivateHandsOutSharedCode(t *testing.T) {
	store := &fakeStore{promo: commonPromo(), user: &models.User{Email: "ada@example.com", Country: "fr"}}
	verifier := &fakeVerifier{verdict: Verdict{Ok: true}}
	gate := testGate(store, verifier, newFakeCache())

	code, err := gate.Activate(context.Background(), store.promo.ID, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, "WELCOME10", code)
	assert.Equal(t, []string{"FR"}, store.activations)
	assert.Equal(t, 1, store.promo.UsedCount)
}

func TestActivateUniqueHandsOutPoolEntries(t *testing.T) {
	store := &fakeStore{
		promo: &models.PromoCode{
			ID:          uuid.New(),
			Mode:        models.PromoModeUnique,
			PromoUnique: []string{"one-a", "one-b"},
			MaxCount:    1,
		},
		user: &models.User{Email: "ada@example.com", Country: "de"},
	}
	gate := testGate(store, &fakeVerifier{verdict: Verdict{Ok: true}}, newFakeCache())
	ctx := context.Background()

	code, err := gate.Activate(ctx, store.promo.ID, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, "one-a", code)

	code, err = gate.Activate(ctx, store.promo.ID, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, "one-b", code)

	// Pool exhausted.
	_, err = gate.Activate(ctx, store.promo.ID, uuid.New())
	assert.ErrorIs(t, err, ErrDenied)
}

func TestActivateDeniedByAntifraud(t *testing.T) {
	store := &fakeStore{promo: commonPromo(), user: &models.User{Email: "ada@example.com", Country: "fr"}}
	gate := testGate(store, &fakeVerifier{verdict: Verdict{Ok: false}}, newFakeCache())

	_, err := gate.Activate(context.Background(), store.promo.ID, uuid.New())
	assert.ErrorIs(t, err, ErrDenied)
	assert.Empty(t, store.activations)
}

func TestActivateDeniedWhenVerifierUnreachable(t *testing.T) {
	store := &fakeStore{promo: commonPromo(), user: &models.User{Email: "ada@example.com", Country: "fr"}}
	gate := testGate(store, &fakeVerifier{err: errors.New("connection refused")}, newFakeCache())

	_, err := gate.Activate(context.Background(), store.promo.ID, uuid.New())
	assert.ErrorIs(t, err, ErrDenied)
}

func TestActivateInactivePromo(t *testing.T) {
	promo := commonPromo()
	promo.MaxCount = 0
	store := &fakeStore{promo: promo, user: &models.User{Email: "ada@example.com", Country: "fr"}}
	verifier := &fakeVerifier{verdict: Verdict{Ok: true}}
	gate := testGate(store, verifier, newFakeCache())

	_, err := gate.Activate(context.Background(), promo.ID, uuid.New())
	assert.ErrorIs(t, err, ErrDenied)
	// The verifier is never consulted for an inactive promo.
	assert.Zero(t, verifier.calls)
}

func TestSharedCodeOutlivesMaxCount(t *testing.T) {
	promo := commonPromo()
	promo.MaxCount = 1
	promo.UsedCount = 5
	store := &fakeStore{promo: promo, user: &models.User{Email: "ada@example.com", Country: "fr"}}
	gate := testGate(store, &fakeVerifier{verdict: Verdict{Ok: true}}, newFakeCache())

	// The used counter grows monotonically past max_count; a shared code
	// keeps activating as long as the promo itself is active.
	code, err := gate.Activate(context.Background(), promo.ID, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, "WELCOME10", code)
	assert.Equal(t, 6, store.promo.UsedCount)
}

func TestActivateOutsideWindow(t *testing.T) {
	tomorrow := time.Now().UTC().AddDate(0, 0, 1)
	promo := commonPromo()
	promo.ActiveFrom = &tomorrow
	store := &fakeStore{promo: promo, user: &models.User{Email: "ada@example.com", Country: "fr"}}
	gate := testGate(store, &fakeVerifier{verdict: Verdict{Ok: true}}, newFakeCache())

	_, err := gate.Activate(context.Background(), promo.ID, uuid.New())
	assert.ErrorIs(t, err, ErrDenied)
}

func TestVerdictIsCachedAndReused(t *testing.T) {
	store := &fakeStore{promo: commonPromo(), user: &models.User{Email: "ada@example.com", Country: "fr"}}
	verifier := &fakeVerifier{verdict: Verdict{Ok: true, CacheUntil: time.Now().Add(time.Hour)}}
	gate := testGate(store, verifier, newFakeCache())
	ctx := context.Background()
	userID := uuid.New()

	_, err := gate.Activate(ctx, store.promo.ID, userID)
	require.NoError(t, err)
	_, err = gate.Activate(ctx, store.promo.ID, userID)
	require.NoError(t, err)

	assert.Equal(t, 1, verifier.calls)
}

func TestExpiredDeadlineIsNotCached(t *testing.T) {
	store := &fakeStore{promo: commonPromo(), user: &models.User{Email: "ada@example.com", Country: "fr"}}
	verifier := &fakeVerifier{verdict: Verdict{Ok: true, CacheUntil: time.Now().Add(-time.Minute)}}
	cache := newFakeCache()
	gate := testGate(store, verifier, cache)

	_, err := gate.Activate(context.Background(), store.promo.ID, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, cache.entries)
}

func TestActivateUnknownPromo(t *testing.T) {
	store := &fakeStore{user: &models.User{Email: "ada@example.com", Country: "fr"}}
	gate := testGate(store, &fakeVerifier{verdict: Verdict{Ok: true}}, newFakeCache())

	_, err := gate.Activate(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrPromoNotFound)
}
