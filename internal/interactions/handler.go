package interactions

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/promohub/backend/internal/middleware"
	"github.com/promohub/backend/internal/models"
	"github.com/promohub/backend/pkg/response"
)

// Profiles resolves the commenting user for the author snapshot.
type Profiles interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Handler handles like and comment endpoints under /api/user/promo/:id.
type Handler struct {
	ledger   *Ledger
	profiles Profiles
	logger   *zap.Logger
}

// NewHandler creates an interactions handler.
func NewHandler(ledger *Ledger, profiles Profiles, logger *zap.Logger) *Handler {
	return &Handler{ledger: ledger, profiles: profiles, logger: logger}
}

// commentView is the comment readout.
type commentView struct {
	ID     uuid.UUID            `json:"id"`
	Text   string               `json:"text"`
	Date   string               `json:"date"`
	Author models.CommentAuthor `json:"author"`
}

func newCommentView(c *models.PromoComment) commentView {
	return commentView{
		ID:     c.ID,
		Text:   c.Text,
		Date:   c.CreatedAt.UTC().Format(time.RFC3339),
		Author: c.Author,
	}
}

// Like handles POST /api/user/promo/:id/like.
func (h *Handler) Like(c *gin.Context) {
	promoID, ok := promoParam(c)
	if !ok {
		return
	}
	if err := h.ledger.Like(c.Request.Context(), promoID, middleware.PrincipalID(c)); err != nil {
		h.fail(c, err, "like promo")
		return
	}
	response.OK(c, gin.H{"status": "ok"})
}

// Unlike handles DELETE /api/user/promo/:id/like.
func (h *Handler) Unlike(c *gin.Context) {
	promoID, ok := promoParam(c)
	if !ok {
		return
	}
	if err := h.ledger.Unlike(c.Request.Context(), promoID, middleware.PrincipalID(c)); err != nil {
		h.fail(c, err, "unlike promo")
		return
	}
	response.OK(c, gin.H{"status": "ok"})
}

// CommentRequest is the body for posting or editing a comment.
type CommentRequest struct {
	Text string `json:"text" binding:"required,min=10,max=1000"`
}

// AddComment handles POST /api/user/promo/:id/comments. The author block is
// snapshotted from the user's profile at posting time.
func (h *Handler) AddComment(c *gin.Context) {
	promoID, ok := promoParam(c)
	if !ok {
		return
	}
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, err.Error())
		return
	}

	userID := middleware.PrincipalID(c)
	user, err := h.profiles.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("load comment author", zap.Error(err), zap.String("user_id", userID.String()))
		response.Internal(c, "failed to post comment")
		return
	}
	author := models.CommentAuthor{Name: user.Name, Surname: user.Surname, AvatarURL: user.AvatarURL}

	comment, err := h.ledger.AddComment(c.Request.Context(), promoID, userID, req.Text, author)
	if err != nil {
		h.fail(c, err, "post comment")
		return
	}
	response.Created(c, newCommentView(comment))
}

// ListComments handles GET /api/user/promo/:id/comments.
func (h *Handler) ListComments(c *gin.Context) {
	promoID, ok := promoParam(c)
	if !ok {
		return
	}
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

	comments, total, err := h.ledger.ListComments(c.Request.Context(), promoID, limit, offset)
	if err != nil {
		h.fail(c, err, "list comments")
		return
	}

	views := make([]commentView, 0, len(comments))
	for i := range comments {
		views = append(views, newCommentView(&comments[i]))
	}
	response.List(c, views, total)
}

// GetComment handles GET /api/user/promo/:id/comments/:comment_id.
func (h *Handler) GetComment(c *gin.Context) {
	promoID, ok := promoParam(c)
	if !ok {
		return
	}
	commentID, ok := commentParam(c)
	if !ok {
		return
	}

	comment, err := h.ledger.GetComment(c.Request.Context(), promoID, commentID)
	if err != nil {
		h.fail(c, err, "get comment")
		return
	}
	response.OK(c, newCommentView(comment))
}

// UpdateComment handles PUT /api/user/promo/:id/comments/:comment_id.
func (h *Handler) UpdateComment(c *gin.Context) {
	promoID, ok := promoParam(c)
	if !ok {
		return
	}
	commentID, ok := commentParam(c)
	if !ok {
		return
	}
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, err.Error())
		return
	}

	comment, err := h.ledger.UpdateComment(c.Request.Context(), promoID, commentID, middleware.PrincipalID(c), req.Text)
	if err != nil {
		h.fail(c, err, "update comment")
		return
	}
	response.OK(c, newCommentView(comment))
}

// DeleteComment handles DELETE /api/user/promo/:id/comments/:comment_id.
func (h *Handler) DeleteComment(c *gin.Context) {
	promoID, ok := promoParam(c)
	if !ok {
		return
	}
	commentID, ok := commentParam(c)
	if !ok {
		return
	}

	if err := h.ledger.DeleteComment(c.Request.Context(), promoID, commentID, middleware.PrincipalID(c)); err != nil {
		h.fail(c, err, "delete comment")
		return
	}
	response.OK(c, gin.H{"status": "ok"})
}

func (h *Handler) fail(c *gin.Context, err error, op string) {
	switch {
	case errors.Is(err, ErrPromoNotFound):
		response.NotFound(c, "Promo not found.")
	case errors.Is(err, ErrCommentNotFound):
		response.NotFound(c, "Comment not found.")
	case errors.Is(err, ErrNotAuthor):
		response.Forbidden(c, "You are not the author of this comment.")
	default:
		h.logger.Error(op, zap.Error(err))
		response.Internal(c, "failed to "+op)
	}
}

func promoParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid promo id.")
		return uuid.Nil, false
	}
	return id, true
}

func commentParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("comment_id"))
	if err != nil {
		response.BadRequest(c, "Invalid comment id.")
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
