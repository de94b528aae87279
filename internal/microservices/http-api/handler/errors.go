package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"yamdb/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

// statusFor maps the service error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		// details go to the request log only
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// RejectFullReplace answers PUT on resources that only support partial updates.
// It runs before any authentication or object lookup.
func RejectFullReplace(c *gin.Context) {
	c.Header("Allow", "GET, PATCH, DELETE")
	respondError(c, fmt.Errorf("%w: %s is not supported, use PATCH", service.ErrMethodNotAllowed, c.Request.Method))
}

// pathID parses a numeric path parameter. Non-numeric ids cannot name a record, so they are 404s.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		respondError(c, fmt.Errorf("%w: %s %q", service.ErrNotFound, name, c.Param(name)))
		return 0, false
	}
	return id, true
}
