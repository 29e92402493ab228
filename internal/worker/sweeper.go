package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/promohub/backend/internal/models"
)

// Catalog is the promo source and sink the sweeper works against.
type Catalog interface {
	ListAll(ctx context.Context, active *bool) ([]models.PromoCode, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

// ActiveSweeper periodically recomputes every promo's active flag so that
// window crossings take effect without waiting for a write to that promo.
type ActiveSweeper struct {
	catalog  Catalog
	interval time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewActiveSweeper creates a sweeper running at the given interval.
func NewActiveSweeper(catalog Catalog, interval time.Duration, logger *zap.Logger) *ActiveSweeper {
	return &ActiveSweeper{catalog: catalog, interval: interval, logger: logger, now: time.Now}
}

// Run sweeps once immediately and then on every tick until the context ends.
func (s *ActiveSweeper) Run(ctx context.Context) {
	s.sweepAndLog(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepAndLog(ctx)
		}
	}
}

func (s *ActiveSweeper) sweepAndLog(ctx context.Context) {
	flipped, err := s.Sweep(ctx)
	if err != nil {
		s.logger.Error("active sweep", zap.Error(err))
		return
	}
	if flipped > 0 {
		s.logger.Info("active sweep", zap.Int("flipped", flipped))
	}
}

// Sweep recomputes the active flag for the whole catalog and persists only
// the promos whose flag changed. Returns the number of flips.
func (s *ActiveSweeper) Sweep(ctx context.Context) (int, error) {
	promos, err := s.catalog.ListAll(ctx, nil)
	if err != nil {
		return 0, err
	}

	today := s.now().UTC()
	flipped := 0
	for i := range promos {
		p := &promos[i]
		active := models.ComputeActive(p.MaxCount, p.ActiveFrom, p.ActiveUntil, today)
		if active == p.Active {
			continue
		}
		if err := s.catalog.SetActive(ctx, p.ID, active); err != nil {
			return flipped, err
		}
		flipped++
	}
	return flipped, nil
}
