package feed

import (
	"context"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/promohub/backend/internal/middleware"
	"github.com/promohub/backend/internal/models"
	"github.com/promohub/backend/pkg/response"
)

// Catalog is the promo source the feed reads from.
type Catalog interface {
	ListAll(ctx context.Context, active *bool) ([]models.PromoCode, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.PromoCode, error)
}

// Actions supplies per-user like/activation flags for a set of promos.
// Promos the user never touched are simply absent from the map.
type Actions interface {
	FlagsFor(ctx context.Context, userID uuid.UUID, promoIDs []uuid.UUID) (map[uuid.UUID]models.PromoAction, error)
}

// Profiles resolves the requesting user's targeting profile.
type Profiles interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Handler handles the user-facing feed and promo detail endpoints.
type Handler struct {
	catalog  Catalog
	actions  Actions
	profiles Profiles
	logger   *zap.Logger
}

// NewHandler creates a feed handler.
func NewHandler(catalog Catalog, actions Actions, profiles Profiles, logger *zap.Logger) *Handler {
	return &Handler{catalog: catalog, actions: actions, profiles: profiles, logger: logger}
}

// promoView is the user-facing promo readout. Code material and targeting
// never leak here.
type promoView struct {
	PromoID           uuid.UUID `json:"promo_id"`
	CompanyID         uuid.UUID `json:"company_id"`
	CompanyName       string    `json:"company_name"`
	Description       string    `json:"description"`
	ImageURL          string    `json:"image_url,omitempty"`
	Active            bool      `json:"active"`
	IsActivatedByUser bool      `json:"is_activated_by_user"`
	LikeCount         int       `json:"like_count"`
	IsLikedByUser     bool      `json:"is_liked_by_user"`
	CommentCount      int       `json:"comment_count"`
}

func newPromoView(p *models.PromoCode, action models.PromoAction) promoView {
	return promoView{
		PromoID:           p.ID,
		CompanyID:         p.CompanyID,
		CompanyName:       p.CompanyName,
		Description:       p.Description,
		ImageURL:          p.ImageURL,
		Active:            p.Active,
		IsActivatedByUser: action.IsActivatedByUser,
		LikeCount:         p.LikeCount,
		IsLikedByUser:     action.IsLikedByUser,
		CommentCount:      p.CommentCount,
	}
}

// Feed handles GET /api/user/feed. Pagination applies after eligibility
// filtering, so X-Total-Count reports how many promos this user could page
// through, not the catalog size.
func (h *Handler) Feed(c *gin.Context) {
	limit, err := queryInt(c, "limit", 10)
	if err != nil || limit < 0 {
		response.BadRequest(c, "limit must be a non-negative integer")
		return
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil || offset < 0 {
		response.BadRequest(c, "offset must be a non-negative integer")
		return
	}
	category := c.Query("category")

	var activeFilter *bool
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			response.BadRequest(c, "active must be a boolean")
			return
		}
		activeFilter = &active
	}

	userID := middleware.PrincipalID(c)
	user, err := h.profiles.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("load user profile", zap.Error(err), zap.String("user_id", userID.String()))
		response.Internal(c, "failed to load profile")
		return
	}

	catalog, err := h.catalog.ListAll(c.Request.Context(), activeFilter)
	if err != nil {
		h.logger.Error("load catalog", zap.Error(err))
		response.Internal(c, "failed to load feed")
		return
	}

	eligible := Eligible(catalog, user.Profile(), category)
	page, total := Page(eligible, offset, limit)

	ids := make([]uuid.UUID, 0, len(page))
	for i := range page {
		ids = append(ids, page[i].ID)
	}
	flags, err := h.actions.FlagsFor(c.Request.Context(), userID, ids)
	if err != nil {
		h.logger.Error("load action flags", zap.Error(err), zap.String("user_id", userID.String()))
		response.Internal(c, "failed to load feed")
		return
	}

	views := make([]promoView, 0, len(page))
	for i := range page {
		views = append(views, newPromoView(&page[i], flags[page[i].ID]))
	}
	response.List(c, views, total)
}

// GetPromo handles GET /api/user/promo/:id. Any authenticated user may fetch
// any promo by id; targeting only gates the feed.
func (h *Handler) GetPromo(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid promo id.")
		return
	}

	promo, err := h.catalog.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "Promo not found.")
			return
		}
		h.logger.Error("get promo", zap.Error(err), zap.String("promo_id", id.String()))
		response.Internal(c, "failed to load promo")
		return
	}

	userID := middleware.PrincipalID(c)
	flags, err := h.actions.FlagsFor(c.Request.Context(), userID, []uuid.UUID{id})
	if err != nil {
		h.logger.Error("load action flags", zap.Error(err), zap.String("user_id", userID.String()))
		response.Internal(c, "failed to load promo")
		return
	}

	response.OK(c, newPromoView(promo, flags[id]))
}

func queryInt(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
