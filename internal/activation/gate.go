package activation

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/promohub/backend/internal/models"
)

var (
	// ErrPromoNotFound reports an activation attempt against an unknown promo id.
	ErrPromoNotFound = errors.New("promo not found")
	// ErrDenied reports a refused activation: inactive promo, exhausted budget
	// or pool, or an anti-fraud rejection. The caller gets no finer detail.
	ErrDenied = errors.New("activation denied")
)

// Verdict is an anti-fraud decision. CacheUntil bounds how long the decision
// may be reused; a zero CacheUntil means do not cache.
type Verdict struct {
	Ok         bool
	CacheUntil time.Time
}

// Verifier asks the anti-fraud service about a (user, promo) pair.
type Verifier interface {
	Verify(ctx context.Context, userEmail string, promoID uuid.UUID) (Verdict, error)
}

// VerdictCache stores anti-fraud decisions between requests.
type VerdictCache interface {
	Get(ctx context.Context, promoID, userID uuid.UUID) (Verdict, bool, error)
	Set(ctx context.Context, promoID, userID uuid.UUID, v Verdict) error
}

// Store is the persistence surface of an activation.
type Store interface {
	GetPromo(ctx context.Context, id uuid.UUID) (*models.PromoCode, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	// Activate applies the activation side effects atomically: the promo's
	// used counter, the pair's ledger flag and the per-country statistic.
	Activate(ctx context.Context, promoID, userID uuid.UUID, country string) error
}

// Gate runs the activation pipeline: activity checks, the anti-fraud
// decision, then code handout with side effects.
type Gate struct {
	store    Store
	verifier Verifier
	cache    VerdictCache
	logger   *zap.Logger
	now      func() time.Time
}

// NewGate creates an activation gate.
func NewGate(store Store, verifier Verifier, cache VerdictCache, logger *zap.Logger) *Gate {
	return &Gate{store: store, verifier: verifier, cache: cache, logger: logger, now: time.Now}
}

// Activate attempts to hand the user a code for the promo. On success the
// returned string is the shared code or the next unclaimed pool entry.
func (g *Gate) Activate(ctx context.Context, promoID, userID uuid.UUID) (string, error) {
	promo, err := g.store.GetPromo(ctx, promoID)
	if err != nil {
		return "", err
	}
	if !g.activatable(promo) {
		return "", ErrDenied
	}

	user, err := g.store.GetUser(ctx, userID)
	if err != nil {
		return "", err
	}

	verdict, err := g.decide(ctx, promoID, userID, user.Email)
	if err != nil {
		return "", err
	}
	if !verdict.Ok {
		return "", ErrDenied
	}

	var code string
	switch promo.Mode {
	case models.PromoModeUnique:
		code = promo.PromoUnique[promo.UsedCount]
	default:
		code = promo.PromoCommon
	}

	country := models.CountryUnknown
	if user.Country != "" {
		country = strings.ToUpper(user.Country)
	}
	if err := g.store.Activate(ctx, promoID, userID, country); err != nil {
		return "", err
	}
	return code, nil
}

// activatable checks the promo live against today rather than trusting the
// stored active flag. max_count only gates activity through ComputeActive
// (zero means off); the used counter grows without bound for shared codes.
// A UNIQUE pool is the exception: entries are handed out by used_count, so
// an exhausted pool cannot activate.
func (g *Gate) activatable(p *models.PromoCode) bool {
	if !models.ComputeActive(p.MaxCount, p.ActiveFrom, p.ActiveUntil, g.now().UTC()) {
		return false
	}
	if p.Mode == models.PromoModeUnique {
		return p.UsedCount < len(p.PromoUnique)
	}
	return true
}

// decide returns the cached anti-fraud verdict when one is still valid,
// otherwise asks the verifier. An unreachable verifier denies.
func (g *Gate) decide(ctx context.Context, promoID, userID uuid.UUID, email string) (Verdict, error) {
	if cached, ok, err := g.cache.Get(ctx, promoID, userID); err != nil {
		g.logger.Warn("verdict cache read", zap.Error(err))
	} else if ok {
		return cached, nil
	}

	verdict, err := g.verifier.Verify(ctx, email, promoID)
	if err != nil {
		g.logger.Warn("anti-fraud unreachable", zap.Error(err), zap.String("promo_id", promoID.String()))
		return Verdict{}, ErrDenied
	}

	if verdict.CacheUntil.After(g.now()) {
		if err := g.cache.Set(ctx, promoID, userID, verdict); err != nil {
			g.logger.Warn("verdict cache write", zap.Error(err))
		}
	}
	return verdict, nil
}
