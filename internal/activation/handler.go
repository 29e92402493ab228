package activation

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/promohub/backend/internal/middleware"
	"github.com/promohub/backend/pkg/response"
)

// Handler handles the promo activation endpoint.
type Handler struct {
	gate   *Gate
	logger *zap.Logger
}

// NewHandler creates an activation handler.
func NewHandler(gate *Gate, logger *zap.Logger) *Handler {
	return &Handler{gate: gate, logger: logger}
}

// Activate handles POST /api/user/promo/:id/activate. A refusal is always the
// same 403 regardless of cause.
func (h *Handler) Activate(c *gin.Context) {
	promoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid promo id.")
		return
	}

	code, err := h.gate.Activate(c.Request.Context(), promoID, middleware.PrincipalID(c))
	switch {
	case errors.Is(err, ErrPromoNotFound):
		response.NotFound(c, "Promo not found.")
	case errors.Is(err, ErrDenied):
		response.Forbidden(c, "You cannot activate this promo code.")
	case err != nil:
		h.logger.Error("activate promo", zap.Error(err), zap.String("promo_id", promoID.String()))
		response.Internal(c, "failed to activate promo")
	default:
		response.OK(c, gin.H{"promo": code})
	}
}
