package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/promohub/backend/internal/auth"
	"github.com/promohub/backend/pkg/response"
)

const (
	// ContextPrincipalID is the gin context key for the authenticated principal id.
	ContextPrincipalID = "principal_id"
	// ContextPrincipalName is the gin context key for the principal display name.
	ContextPrincipalName = "principal_name"
)

// Authenticate returns a middleware that requires a valid bearer token of the
// given kind. Validity means the token decodes, verifies and byte-matches the
// current session entry; anything else is a 401.
func Authenticate(sessions *auth.SessionRegistry, kind auth.TokenKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := auth.ExtractBearer(c.GetHeader("Authorization"))
		if err != nil {
			response.Unauthorized(c, "Authentication required.")
			c.Abort()
			return
		}
		claims, ok := sessions.Validate(c.Request.Context(), raw, kind)
		if !ok {
			response.Unauthorized(c, "Invalid or superseded token.")
			c.Abort()
			return
		}
		id, err := claims.SubjectID()
		if err != nil {
			response.Unauthorized(c, "Invalid or superseded token.")
			c.Abort()
			return
		}
		c.Set(ContextPrincipalID, id)
		c.Set(ContextPrincipalName, claims.Name)
		c.Next()
	}
}

// PrincipalID returns the authenticated principal id from the gin context.
func PrincipalID(c *gin.Context) uuid.UUID {
	return c.MustGet(ContextPrincipalID).(uuid.UUID)
}

// PrincipalName returns the authenticated principal display name.
func PrincipalName(c *gin.Context) string {
	return c.MustGet(ContextPrincipalName).(string)
}
