package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/policy"
	"yamdb/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

const actorKey = "actor"

// Authenticator resolves a bearer token to a user record.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// Authenticate sets the request actor from the Authorization header.
// A missing header leaves the request anonymous; a malformed or invalid token is rejected.
func Authenticate(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		// Extract token (format: "Bearer <token>")
		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			return
		}

		user, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, service.ErrUnauthenticated) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
				return
			}
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}

		c.Set(actorKey, user)
		c.Next()
	}
}

// ActorFrom returns the authenticated user, or nil for anonymous requests.
func ActorFrom(c *gin.Context) *models.User {
	if v, ok := c.Get(actorKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

// SetActor is used by tests and by code paths that authenticate out of band.
func SetActor(c *gin.Context, user *models.User) {
	c.Set(actorKey, user)
}

// RequireAuthenticated rejects anonymous requests regardless of method.
func RequireAuthenticated() gin.HandlerFunc {
	return guard(func(c *gin.Context) policy.Decision {
		if ActorFrom(c) == nil {
			return policy.DenyUnauthenticated
		}
		return policy.Allow
	})
}

func AdminOnly() gin.HandlerFunc {
	return guard(func(c *gin.Context) policy.Decision {
		return policy.AdminOnly(ActorFrom(c))
	})
}

func AdminOrReadOnly() gin.HandlerFunc {
	return guard(func(c *gin.Context) policy.Decision {
		return policy.AdminOrReadOnly(ActorFrom(c), policy.OperationFor(c.Request.Method))
	})
}

func AuthenticatedOrReadOnly() gin.HandlerFunc {
	return guard(func(c *gin.Context) policy.Decision {
		return policy.AuthenticatedOrReadOnly(ActorFrom(c), policy.OperationFor(c.Request.Method))
	})
}

func guard(decide func(c *gin.Context) policy.Decision) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch decide(c) {
		case policy.Allow:
			c.Next()
		case policy.DenyUnauthenticated:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": service.ErrUnauthenticated.Error()})
		default:
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": service.ErrPermissionDenied.Error()})
		}
	}
}
