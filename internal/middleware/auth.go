package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/supportta-projects/waterpurifier-sub000/internal/auth"
	"github.com/supportta-projects/waterpurifier-sub000/internal/ids"
	"github.com/supportta-projects/waterpurifier-sub000/internal/models"
	"github.com/supportta-projects/waterpurifier-sub000/internal/repository"
	"go.uber.org/zap"
)

const (
	sessionKey = "session"
	claimsKey  = "claims"
)

// UserLoader is satisfied by *repository.UserRepository.
type UserLoader interface {
	Get(ctx context.Context, id snowflake.ID) (*models.User, error)
}

func abort(c *gin.Context, status int, errCode, message, redirect string) {
	c.AbortWithStatusJSON(status, models.ErrorResponse{
		Error:    errCode,
		Message:  message,
		Code:     status,
		Redirect: redirect,
	})
}

// Authenticate verifies the bearer token and loads the caller's current
// profile, so role and active changes apply on the next request.
func Authenticate(issuer *auth.Issuer, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abort(c, http.StatusUnauthorized, "missing token", "missing token", auth.LoginPath)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abort(c, http.StatusUnauthorized, "invalid token format", "invalid token format", auth.LoginPath)
			return
		}

		claims, err := issuer.Validate(parts[1])
		if err != nil {
			message := "invalid token"
			switch {
			case strings.Contains(err.Error(), "token is malformed"):
				message = "malformed token"
			case strings.Contains(err.Error(), "token is expired"):
				message = "expired token"
			}
			abort(c, http.StatusUnauthorized, "invalid token", message, auth.LoginPath)
			return
		}

		userID, err := ids.Parse(claims.Subject)
		if err != nil {
			abort(c, http.StatusUnauthorized, "invalid token", "invalid subject", auth.LoginPath)
			return
		}

		user, err := users.Get(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				abort(c, http.StatusUnauthorized, "invalid token", "user no longer exists", auth.LoginPath)
				return
			}
			zap.L().Error("load session user", zap.Error(err))
			abort(c, http.StatusInternalServerError, "internal error", "failed to load user", "")
			return
		}

		c.Set(claimsKey, claims)
		c.Set(sessionKey, auth.SessionFromUser(user))
		c.Next()
	}
}

// RequireRoles lets the request through only when the session passes
// auth.Guard. Without roles any active user passes.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		d := auth.Guard(CurrentSession(c), roles...)
		if !d.Allowed {
			abort(c, d.Status, d.Err.Error(), d.Err.Error(), d.Redirect)
			return
		}
		c.Next()
	}
}

// CurrentSession returns the session set by Authenticate, or nil.
func CurrentSession(c *gin.Context) *auth.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	s, _ := v.(*auth.Session)
	return s
}

// SetSession attaches s to the request, as Authenticate does.
func SetSession(c *gin.Context, s *auth.Session) {
	c.Set(sessionKey, s)
}
