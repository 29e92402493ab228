package promos

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/promohub/backend/internal/middleware"
	"github.com/promohub/backend/internal/models"
	"github.com/promohub/backend/pkg/response"
	"github.com/promohub/backend/pkg/storage"
)

// Catalog is the persistence surface the handler drives.
type Catalog interface {
	Create(ctx context.Context, p *models.PromoCode) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.PromoCode, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID, countries []string, sortBy SortBy, limit, offset int) ([]models.PromoCode, int, error)
	Update(ctx context.Context, p *models.PromoCode) error
	SetImageURL(ctx context.Context, id uuid.UUID, url string) error
	Statistics(ctx context.Context, promoID uuid.UUID) ([]models.CountryStat, error)
}

// Handler handles the business-side promo catalog endpoints.
type Handler struct {
	repo   Catalog
	store  *storage.S3
	logger *zap.Logger
}

// NewHandler creates a promo catalog handler. store may be nil when image
// uploads are not configured.
func NewHandler(repo Catalog, store *storage.S3, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, store: store, logger: logger}
}

// TargetRequest is the audience restriction accepted on create and patch.
type TargetRequest struct {
	AgeFrom    *int     `json:"age_from" binding:"omitempty,min=0,max=100"`
	AgeUntil   *int     `json:"age_until" binding:"omitempty,min=0,max=100"`
	Country    string   `json:"country" binding:"omitempty,len=2"`
	Categories []string `json:"categories" binding:"omitempty,max=20,dive,min=2,max=20"`
}

func (t *TargetRequest) validate() string {
	if t.AgeFrom != nil && t.AgeUntil != nil && *t.AgeFrom > *t.AgeUntil {
		return "target.age_from must not exceed target.age_until"
	}
	if t.Country != "" && !models.ValidCountryCode(t.Country) {
		return "target.country must be a valid ISO 3166-1 alpha-2 code"
	}
	return ""
}

func (t *TargetRequest) toModel() models.Target {
	return models.Target{
		AgeFrom:    t.AgeFrom,
		AgeUntil:   t.AgeUntil,
		Country:    t.Country,
		Categories: t.Categories,
	}
}

// CreateRequest is the body for POST /api/business/promo.
type CreateRequest struct {
	Description string           `json:"description" binding:"required,min=10,max=300"`
	ImageURL    string           `json:"image_url" binding:"omitempty,url,max=350"`
	Target      *TargetRequest   `json:"target" binding:"required"`
	MaxCount    *int             `json:"max_count" binding:"required,min=0,max=100000000"`
	ActiveFrom  string           `json:"active_from" binding:"omitempty,datetime=2006-01-02"`
	ActiveUntil string           `json:"active_until" binding:"omitempty,datetime=2006-01-02"`
	Mode        models.PromoMode `json:"mode" binding:"required,oneof=COMMON UNIQUE"`
	PromoCommon string           `json:"promo_common" binding:"omitempty,min=5,max=30"`
	PromoUnique []string         `json:"promo_unique" binding:"omitempty,max=5000,dive,min=3,max=30"`
}

func (r *CreateRequest) validateModeCodes() string {
	switch r.Mode {
	case models.PromoModeCommon:
		if r.PromoCommon == "" {
			return "promo_common is required for COMMON mode"
		}
		if len(r.PromoUnique) > 0 {
			return "promo_unique is not allowed for COMMON mode"
		}
	case models.PromoModeUnique:
		if len(r.PromoUnique) == 0 {
			return "promo_unique is required for UNIQUE mode"
		}
		if r.PromoCommon != "" {
			return "promo_common is not allowed for UNIQUE mode"
		}
		if *r.MaxCount != 1 {
			return "max_count must be 1 for UNIQUE mode"
		}
	}
	return ""
}

// Create handles POST /api/business/promo.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, err.Error())
		return
	}
	if msg := req.validateModeCodes(); msg != "" {
		response.ValidationFailed(c, msg)
		return
	}
	if msg := req.Target.validate(); msg != "" {
		response.ValidationFailed(c, msg)
		return
	}

	promo := &models.PromoCode{
		CompanyID:   middleware.PrincipalID(c),
		CompanyName: middleware.PrincipalName(c),
		Mode:        req.Mode,
		PromoCommon: req.PromoCommon,
		PromoUnique: req.PromoUnique,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Target:      req.Target.toModel(),
		MaxCount:    *req.MaxCount,
		ActiveFrom:  parseDate(req.ActiveFrom),
		ActiveUntil: parseDate(req.ActiveUntil),
	}
	promo.RecomputeActive(time.Now().UTC())

	if err := h.repo.Create(c.Request.Context(), promo); err != nil {
		h.logger.Error("create promo", zap.Error(err))
		response.Internal(c, "failed to create promo")
		return
	}

	response.Created(c, gin.H{"id": promo.ID})
}

// List handles GET /api/business/promo. The country filter is repeatable and
// keeps promos with no country target; the unfiltered-page total goes to
// X-Total-Count.
func (h *Handler) List(c *gin.Context) {
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

	var sortBy SortBy
	switch s := c.Query("sort_by"); s {
	case "":
		sortBy = SortByCreated
	case string(SortByActiveFrom), string(SortByActiveUntil):
		sortBy = SortBy(s)
	default:
		response.BadRequest(c, "sort_by must be one of active_from, active_until")
		return
	}

	var countries []string
	for _, raw := range c.QueryArray("country") {
		for _, code := range strings.Split(raw, ",") {
			code = strings.TrimSpace(code)
			if code != "" {
				countries = append(countries, strings.ToLower(code))
			}
		}
	}

	promos, total, err := h.repo.ListByCompany(c.Request.Context(), middleware.PrincipalID(c), countries, sortBy, limit, offset)
	if err != nil {
		h.logger.Error("list promos", zap.Error(err))
		response.Internal(c, "failed to list promos")
		return
	}

	views := make([]promoView, 0, len(promos))
	for i := range promos {
		views = append(views, newPromoView(&promos[i]))
	}
	response.List(c, views, total)
}

// Get handles GET /api/business/promo/:id.
func (h *Handler) Get(c *gin.Context) {
	promo, ok := h.ownedPromo(c)
	if !ok {
		return
	}
	response.OK(c, newPromoView(promo))
}

// PatchRequest is the body for PATCH /api/business/promo/:id. Omitted fields
// stay unchanged; mode and the code material are immutable.
type PatchRequest struct {
	Description *string        `json:"description" binding:"omitempty,min=10,max=300"`
	ImageURL    *string        `json:"image_url" binding:"omitempty,url,max=350"`
	Target      *TargetRequest `json:"target"`
	MaxCount    *int           `json:"max_count" binding:"omitempty,min=0,max=100000000"`
	ActiveFrom  *string        `json:"active_from" binding:"omitempty,datetime=2006-01-02"`
	ActiveUntil *string        `json:"active_until" binding:"omitempty,datetime=2006-01-02"`
}

// Patch handles PATCH /api/business/promo/:id. The active flag is recomputed
// after the edit, so shrinking max_count to zero or moving the window
// deactivates the promo immediately.
func (h *Handler) Patch(c *gin.Context) {
	promo, ok := h.ownedPromo(c)
	if !ok {
		return
	}

	var req PatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, err.Error())
		return
	}
	if promo.Mode == models.PromoModeUnique && req.MaxCount != nil && *req.MaxCount != 1 {
		response.ValidationFailed(c, "max_count must be 1 for UNIQUE mode")
		return
	}
	if req.Target != nil {
		if msg := req.Target.validate(); msg != "" {
			response.ValidationFailed(c, msg)
			return
		}
		promo.Target = req.Target.toModel()
	}
	if req.Description != nil {
		promo.Description = *req.Description
	}
	if req.ImageURL != nil {
		promo.ImageURL = *req.ImageURL
	}
	if req.MaxCount != nil {
		promo.MaxCount = *req.MaxCount
	}
	if req.ActiveFrom != nil {
		promo.ActiveFrom = parseDate(*req.ActiveFrom)
	}
	if req.ActiveUntil != nil {
		promo.ActiveUntil = parseDate(*req.ActiveUntil)
	}
	promo.RecomputeActive(time.Now().UTC())

	if err := h.repo.Update(c.Request.Context(), promo); err != nil {
		h.logger.Error("update promo", zap.Error(err), zap.String("promo_id", promo.ID.String()))
		response.Internal(c, "failed to update promo")
		return
	}

	response.OK(c, newPromoView(promo))
}

// Stat handles GET /api/business/promo/:id/stat.
func (h *Handler) Stat(c *gin.Context) {
	promo, ok := h.ownedPromo(c)
	if !ok {
		return
	}

	stats, err := h.repo.Statistics(c.Request.Context(), promo.ID)
	if err != nil {
		h.logger.Error("promo statistics", zap.Error(err), zap.String("promo_id", promo.ID.String()))
		response.Internal(c, "failed to load statistics")
		return
	}
	if len(stats) == 0 {
		response.NotFound(c, "Statistics not found.")
		return
	}

	total := 0
	for _, s := range stats {
		total += s.ActivationsCount
	}
	response.OK(c, statView{ActivationsCount: total, Countries: stats})
}

// UploadImage handles POST /api/business/promo/:id/image. The multipart file
// field is named "image"; the stored URL replaces any previous one.
func (h *Handler) UploadImage(c *gin.Context) {
	promo, ok := h.ownedPromo(c)
	if !ok {
		return
	}
	if h.store == nil {
		response.Internal(c, "image storage is not configured")
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		response.BadRequest(c, "image file is required")
		return
	}
	defer file.Close()

	if header.Size > storage.MaxImageFileSize {
		response.BadRequest(c, "image exceeds the 5MB size limit")
		return
	}
	contentType := header.Header.Get("Content-Type")
	if !storage.ValidateImageType(contentType) {
		response.BadRequest(c, "unsupported image type")
		return
	}

	key, err := h.store.UploadPromoImage(c.Request.Context(), promo.ID, contentType, file)
	if err != nil {
		h.logger.Error("upload promo image", zap.Error(err), zap.String("promo_id", promo.ID.String()))
		response.Internal(c, "failed to upload image")
		return
	}
	url, err := h.store.PresignImageURL(c.Request.Context(), key)
	if err != nil {
		h.logger.Error("presign promo image", zap.Error(err), zap.String("key", key))
		response.Internal(c, "failed to upload image")
		return
	}
	if err := h.repo.SetImageURL(c.Request.Context(), promo.ID, url); err != nil {
		h.logger.Error("store promo image url", zap.Error(err), zap.String("promo_id", promo.ID.String()))
		response.Internal(c, "failed to upload image")
		return
	}

	response.OK(c, gin.H{"image_url": url})
}

// ownedPromo loads the path promo and enforces that the authenticated company
// owns it. Responds and returns false on any failure.
func (h *Handler) ownedPromo(c *gin.Context) (*models.PromoCode, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid promo id.")
		return nil, false
	}
	promo, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "Promo not found.")
			return nil, false
		}
		h.logger.Error("get promo", zap.Error(err), zap.String("promo_id", id.String()))
		response.Internal(c, "failed to load promo")
		return nil, false
	}
	if promo.CompanyID != middleware.PrincipalID(c) {
		response.Forbidden(c, "You are not the owner of this promo code.")
		return nil, false
	}
	return promo, true
}

func queryInt(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
