package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-board-chat/internal/domain/entity"
	"github.com/oksasatya/go-board-chat/pkg/helpers"
	"github.com/oksasatya/go-board-chat/pkg/response"
)

// Context keys set by Auth.
const (
	CtxUsernameKey = "username"
	CtxRoleKey     = "role"
)

// ClaimsExtractor verifies a bearer token. *helpers.TokenService satisfies it.
type ClaimsExtractor interface {
	ExtractClaims(token string) (*helpers.Claims, error)
}

// Auth validates the bearer token from the Authorization header and sets
// username and role in the Gin context. Requests without a valid token are
// rejected with 401 and never reach the handler.
func Auth(tokens ClaimsExtractor) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := helpers.BearerToken(c.GetHeader(helpers.AuthorizationHeader))
		if !ok {
			response.Abort(c, http.StatusUnauthorized, "missing access token", nil)
			return
		}
		claims, err := tokens.ExtractClaims(raw)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "invalid access token", nil)
			return
		}

		c.Set(CtxUsernameKey, claims.Subject)
		c.Set(CtxRoleKey, claims.Role)
		c.Next()
	}
}

// Identity returns the caller resolved by Auth.
func Identity(c *gin.Context) (string, entity.Role, bool) {
	username := c.GetString(CtxUsernameKey)
	v, _ := c.Get(CtxRoleKey)
	role, _ := v.(entity.Role)
	if username == "" || !role.Valid() {
		return "", "", false
	}
	return username, role, true
}

// RequireRole lets the request through only when the caller's role is one of
// allowed. Missing identity is a 401; a known but disallowed role is a 403.
func RequireRole(allowed ...entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, role, ok := Identity(c)
		if !ok {
			response.Abort(c, http.StatusUnauthorized, "unauthorized", nil)
			return
		}
		if !permits(role, allowed) {
			response.Abort(c, http.StatusForbidden, "forbidden", nil)
			return
		}
		c.Next()
	}
}

func permits(role entity.Role, allowed []entity.Role) bool {
	switch role {
	case entity.RoleAdmin, entity.RoleUser:
		for _, a := range allowed {
			if a == role {
				return true
			}
		}
		return false
	default:
		return false
	}
}
