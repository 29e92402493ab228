package activation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Cache deadlines may arrive with or without a zone suffix.
var cacheUntilLayouts = []string{time.RFC3339, "2006-01-02T15:04:05"}

const verifyAttempts = 2

// AntifraudClient talks to the external anti-fraud service over HTTP.
type AntifraudClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewAntifraudClient creates a client for the anti-fraud service at addr
// (host:port, no scheme).
func NewAntifraudClient(addr string, timeout time.Duration, logger *zap.Logger) *AntifraudClient {
	return &AntifraudClient{
		baseURL: "http://" + addr,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type validateRequest struct {
	UserEmail string `json:"user_email"`
	PromoID   string `json:"promo_id"`
}

type validateResponse struct {
	Ok         bool   `json:"ok"`
	CacheUntil string `json:"cache_until"`
}

// Verify posts the pair to /api/validate. Only an HTTP 200 counts as a
// decision; anything else is retried once and then reported as an error.
func (a *AntifraudClient) Verify(ctx context.Context, userEmail string, promoID uuid.UUID) (Verdict, error) {
	payload, err := json.Marshal(validateRequest{UserEmail: userEmail, PromoID: promoID.String()})
	if err != nil {
		return Verdict{}, fmt.Errorf("marshal validate request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= verifyAttempts; attempt++ {
		verdict, err := a.post(ctx, payload)
		if err == nil {
			return verdict, nil
		}
		lastErr = err
		a.logger.Warn("anti-fraud attempt failed", zap.Int("attempt", attempt), zap.Error(err))
	}
	return Verdict{}, lastErr
}

func (a *AntifraudClient) post(ctx context.Context, payload []byte) (Verdict, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/api/validate", bytes.NewReader(payload))
	if err != nil {
		return Verdict{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return Verdict{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Verdict{}, fmt.Errorf("anti-fraud returned status %d", resp.StatusCode)
	}

	var body validateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Verdict{}, fmt.Errorf("decode anti-fraud response: %w", err)
	}

	verdict := Verdict{Ok: body.Ok}
	if body.CacheUntil != "" {
		for _, layout := range cacheUntilLayouts {
			if t, err := time.Parse(layout, body.CacheUntil); err == nil {
				verdict.CacheUntil = t
				break
			}
		}
	}
	return verdict, nil
}
