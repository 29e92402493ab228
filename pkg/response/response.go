package response

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Error is the payload returned for every non-2xx response: a machine-readable
// status plus a human message. Validation failures additionally enumerate
// per-field causes in Details.
type Error struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// OK sends 200 with the payload as-is.
func OK(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusOK, payload)
}

// Created sends 201 with the payload as-is.
func Created(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusCreated, payload)
}

// List sends 200 with a sequence body and the unpaginated total in the
// X-Total-Count header.
func List(c *gin.Context, payload interface{}, total int) {
	c.Header("X-Total-Count", strconv.Itoa(total))
	c.JSON(http.StatusOK, payload)
}

// BadRequest sends 400 with a message.
func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Error{Status: "error", Message: msg})
}

// ValidationFailed sends 400 with per-field causes.
func ValidationFailed(c *gin.Context, details interface{}) {
	c.JSON(http.StatusBadRequest, Error{Status: "error", Message: "Invalid request data.", Details: details})
}

// Unauthorized sends 401 with a message.
func Unauthorized(c *gin.Context, msg string) {
	c.JSON(http.StatusUnauthorized, Error{Status: "error", Message: msg})
}

// Forbidden sends 403 with a message.
func Forbidden(c *gin.Context, msg string) {
	c.JSON(http.StatusForbidden, Error{Status: "error", Message: msg})
}

// NotFound sends 404 with a message.
func NotFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, Error{Status: "error", Message: msg})
}

// Conflict sends 409 with a message.
func Conflict(c *gin.Context, msg string) {
	c.JSON(http.StatusConflict, Error{Status: "error", Message: msg})
}

// Internal sends 500 with a message.
func Internal(c *gin.Context, msg string) {
	c.JSON(http.StatusInternalServerError, Error{Status: "error", Message: msg})
}
