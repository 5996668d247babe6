package middleware

import (
	"net/http"
	"strings"
	"time"

	"marketplace-backoffice/internal/core/domain"
	"marketplace-backoffice/internal/core/ports"
	"marketplace-backoffice/pkg/apperror"
	"marketplace-backoffice/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// Context keys
	CtxUserID = "user_id"
	CtxRole   = "role"
)

// ActorFrom reads the authenticated actor from the request context.
// It is only valid after JWTAuth has run.
func ActorFrom(c *gin.Context) (ports.Actor, bool) {
	idVal, ok := c.Get(CtxUserID)
	if !ok {
		return ports.Actor{}, false
	}
	roleVal, ok := c.Get(CtxRole)
	if !ok {
		return ports.Actor{}, false
	}
	id, okID := idVal.(uuid.UUID)
	role, okRole := roleVal.(domain.Role)
	if !okID || !okRole {
		return ports.Actor{}, false
	}
	return ports.Actor{ID: id, Role: role}, true
}

// JWTAuth creates a middleware that validates bearer tokens and stores
// the actor identity on the request context.
func JWTAuth(tokenSvc ports.TokenService, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			response.Error(c, apperror.ErrInvalidToken())
			c.Abort()
			return
		}

		claims, err := tokenSvc.Validate(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			response.Error(c, apperror.ErrInvalidToken())
			c.Abort()
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxRole, claims.Role)
		c.Next()
	}
}

// RequireAction creates a middleware that rejects requests whose
// authenticated role is not permitted to perform action. It must run
// after JWTAuth.
func RequireAction(action domain.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleVal, ok := c.Get(CtxRole)
		if !ok {
			response.Error(c, apperror.ErrInvalidToken())
			c.Abort()
			return
		}
		role, ok := roleVal.(domain.Role)
		if !ok || !domain.Can(role, action) {
			response.Error(c, apperror.ErrInsufficientRole())
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequestLogger creates a middleware that logs every HTTP request.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		event := log.Info()
		if status >= http.StatusInternalServerError {
			event = log.Error()
		} else if status >= http.StatusBadRequest {
			event = log.Warn()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", latency).
			Str("client_ip", c.ClientIP()).
			Msg("http request")
	}
}

// Recovery creates a panic recovery middleware.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("path", c.Request.URL.Path).Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error_code": "SYS_001",
					"message":    "Internal server error",
				})
			}
		}()
		c.Next()
	}
}
