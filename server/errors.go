package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"inkwell/apperr"
)

// respondError maps the core error taxonomy onto HTTP statuses. NotFound
// covers both absent and deliberately hidden resources, so nothing here can
// leak existence.
func respondError(c *gin.Context, err error) {
	if v, ok := apperr.AsValidation(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{"errors": v.Fields})
		return
	}
	switch {
	case errors.Is(err, apperr.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.Is(err, apperr.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, apperr.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "service unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// respondBadRequest reports a malformed (unbindable) request body.
func respondBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
