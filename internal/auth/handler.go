package auth

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/promohub/backend/internal/models"
	"github.com/promohub/backend/pkg/response"
	"github.com/promohub/backend/pkg/utils"
)

// Handler handles company and user sign-up/sign-in endpoints.
type Handler struct {
	repo     *Repository
	sessions *SessionRegistry
	logger   *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(repo *Repository, sessions *SessionRegistry, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, sessions: sessions, logger: logger}
}

// CompanySignUpRequest is the body for POST /api/business/auth/sign-up.
type CompanySignUpRequest struct {
	Name     string `json:"name" binding:"required,min=5,max=50"`
	Email    string `json:"email" binding:"required,email,min=8,max=120"`
	Password string `json:"password" binding:"required"`
}

// SignInRequest is the body for both sign-in endpoints.
type SignInRequest struct {
	Email    string `json:"email" binding:"required,email,min=8,max=120"`
	Password string `json:"password" binding:"required"`
}

// UserSignUpRequest is the body for POST /api/user/auth/sign-up.
type UserSignUpRequest struct {
	Name      string          `json:"name" binding:"required,min=1,max=100"`
	Surname   string          `json:"surname" binding:"required,min=1,max=120"`
	Email     string          `json:"email" binding:"required,email,min=8,max=120"`
	AvatarURL string          `json:"avatar_url" binding:"omitempty,url,max=350"`
	Password  string          `json:"password" binding:"required"`
	Other     *models.Profile `json:"other" binding:"required"`
}

// CompanySignUp handles POST /api/business/auth/sign-up.
func (h *Handler) CompanySignUp(c *gin.Context) {
	var req CompanySignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, err.Error())
		return
	}
	if err := utils.ValidatePassword(req.Password); err != nil {
		response.ValidationFailed(c, err.Error())
		return
	}

	if _, err := h.repo.GetCompanyByEmail(c.Request.Context(), req.Email); err == nil {
		response.Conflict(c, "This email is already registered.")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}
	company, err := h.repo.CreateCompany(c.Request.Context(), req.Name, req.Email, hash)
	if errors.Is(err, ErrEmailTaken) {
		response.Conflict(c, "This email is already registered.")
		return
	}
	if err != nil {
		h.logger.Error("create company", zap.Error(err))
		response.Internal(c, "failed to create company")
		return
	}

	token, err := h.sessions.Issue(c.Request.Context(), TokenKindCompany, company.ID, company.Name)
	if err != nil {
		h.logger.Error("issue company token", zap.Error(err))
		response.Internal(c, "failed to issue token")
		return
	}

	response.OK(c, gin.H{"token": token, "company_id": company.ID})
}

// CompanySignIn handles POST /api/business/auth/sign-in. A successful sign-in
// supersedes any previously issued company token.
func (h *Handler) CompanySignIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, err.Error())
		return
	}

	company, err := h.repo.GetCompanyByEmail(c.Request.Context(), req.Email)
	if err != nil || !utils.CheckPassword(req.Password, company.PasswordHash) {
		response.Unauthorized(c, "Invalid email or password.")
		return
	}

	token, err := h.sessions.Issue(c.Request.Context(), TokenKindCompany, company.ID, company.Name)
	if err != nil {
		h.logger.Error("issue company token", zap.Error(err))
		response.Internal(c, "failed to issue token")
		return
	}

	response.OK(c, gin.H{"token": token, "company_id": company.ID})
}

// UserSignUp handles POST /api/user/auth/sign-up.
func (h *Handler) UserSignUp(c *gin.Context) {
	var req UserSignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, err.Error())
		return
	}
	if err := utils.ValidatePassword(req.Password); err != nil {
		response.ValidationFailed(c, err.Error())
		return
	}
	if req.Other.Age < 1 || req.Other.Age > 100 {
		response.ValidationFailed(c, "other.age must be between 1 and 100")
		return
	}
	if !models.ValidCountryCode(req.Other.Country) {
		response.ValidationFailed(c, "other.country must be a valid ISO 3166-1 alpha-2 code")
		return
	}

	if _, err := h.repo.GetUserByEmail(c.Request.Context(), req.Email); err == nil {
		response.Conflict(c, "This email is already registered.")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}
	user := &models.User{
		Name:         req.Name,
		Surname:      req.Surname,
		Email:        req.Email,
		PasswordHash: hash,
		AvatarURL:    req.AvatarURL,
		Age:          req.Other.Age,
		Country:      req.Other.Country,
	}
	if err := h.repo.CreateUser(c.Request.Context(), user); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			response.Conflict(c, "This email is already registered.")
			return
		}
		h.logger.Error("create user", zap.Error(err))
		response.Internal(c, "failed to create user")
		return
	}

	token, err := h.sessions.Issue(c.Request.Context(), TokenKindUser, user.ID, user.Name)
	if err != nil {
		h.logger.Error("issue user token", zap.Error(err))
		response.Internal(c, "failed to issue token")
		return
	}

	response.OK(c, gin.H{"token": token})
}

// UserSignIn handles POST /api/user/auth/sign-in. A successful sign-in
// supersedes any previously issued user token.
func (h *Handler) UserSignIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, err.Error())
		return
	}

	user, err := h.repo.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil || !utils.CheckPassword(req.Password, user.PasswordHash) {
		response.Unauthorized(c, "Invalid email or password.")
		return
	}

	token, err := h.sessions.Issue(c.Request.Context(), TokenKindUser, user.ID, user.Name)
	if err != nil {
		h.logger.Error("issue user token", zap.Error(err))
		response.Internal(c, "failed to issue token")
		return
	}

	response.OK(c, gin.H{"token": token})
}
