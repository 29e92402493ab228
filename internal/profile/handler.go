package profile

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/promohub/backend/internal/auth"
	"github.com/promohub/backend/internal/middleware"
	"github.com/promohub/backend/internal/models"
	"github.com/promohub/backend/pkg/response"
	"github.com/promohub/backend/pkg/utils"
)

// Handler handles user profile endpoints.
type Handler struct {
	repo   *auth.Repository
	logger *zap.Logger
}

// NewHandler creates a profile handler.
func NewHandler(repo *auth.Repository, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// userView is the sparse profile payload: empty optional fields are omitted.
type userView struct {
	Name      string         `json:"name"`
	Surname   string         `json:"surname"`
	Email     string         `json:"email"`
	AvatarURL string         `json:"avatar_url,omitempty"`
	Other     models.Profile `json:"other"`
}

func viewOf(u *models.User) userView {
	return userView{
		Name:      u.Name,
		Surname:   u.Surname,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
		Other:     u.Profile(),
	}
}

// Get handles GET /api/user/profile.
func (h *Handler) Get(c *gin.Context) {
	user, err := h.repo.GetUserByID(c.Request.Context(), middleware.PrincipalID(c))
	if err != nil {
		response.NotFound(c, "User not found.")
		return
	}
	response.OK(c, viewOf(user))
}

// PatchRequest is the body for PATCH /api/user/profile. Absent or null fields
// are left untouched.
type PatchRequest struct {
	Name      *string `json:"name"`
	Surname   *string `json:"surname"`
	AvatarURL *string `json:"avatar_url" binding:"omitempty"`
	Password  *string `json:"password"`
}

// Patch handles PATCH /api/user/profile. A password change re-hashes the
// credential but does not invalidate the current session token.
func (h *Handler) Patch(c *gin.Context) {
	var req PatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, err.Error())
		return
	}

	user, err := h.repo.GetUserByID(c.Request.Context(), middleware.PrincipalID(c))
	if err != nil {
		response.NotFound(c, "User not found.")
		return
	}

	if req.Name != nil {
		if *req.Name == "" || len(*req.Name) > 100 {
			response.ValidationFailed(c, "name must be 1-100 characters")
			return
		}
		user.Name = *req.Name
	}
	if req.Surname != nil {
		if *req.Surname == "" || len(*req.Surname) > 120 {
			response.ValidationFailed(c, "surname must be 1-120 characters")
			return
		}
		user.Surname = *req.Surname
	}
	if req.AvatarURL != nil {
		if *req.AvatarURL == "" || len(*req.AvatarURL) > 350 {
			response.ValidationFailed(c, "avatar_url must be a URL of at most 350 characters")
			return
		}
		user.AvatarURL = *req.AvatarURL
	}
	if req.Password != nil {
		if err := utils.ValidatePassword(*req.Password); err != nil {
			response.ValidationFailed(c, err.Error())
			return
		}
		hash, err := utils.HashPassword(*req.Password)
		if err != nil {
			response.Internal(c, "failed to hash password")
			return
		}
		user.PasswordHash = hash
	}

	if err := h.repo.UpdateUser(c.Request.Context(), user); err != nil {
		h.logger.Error("update user", zap.Error(err))
		response.Internal(c, "failed to update profile")
		return
	}
	response.OK(c, viewOf(user))
}
