package middlewares

import (
	"context"
	"strings"

	"littlelemon/entity"
	"littlelemon/pkg/resp"
	"littlelemon/policy"
	"littlelemon/utils"

	"github.com/gin-gonic/gin"
)

// Authenticator resolves a token to a user with current group memberships.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*entity.User, error)
}

const authErrKey = "authError"

// AuthMiddleware attaches the caller's principal. Requests without a token stay
// anonymous. A bad token also leaves the request anonymous, with the failure
// recorded for RejectInvalidToken, so throttling counts it against the client IP.
func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return authenticate(auth, false, false)
}

// RejectInvalidToken answers requests whose token failed AuthMiddleware.
func RejectInvalidToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if v, ok := c.Get(authErrKey); ok {
			if err, ok := v.(error); ok {
				resp.Error(c, err)
				return
			}
		}
		c.Next()
	}
}

// RequireAuth rejects anonymous callers.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !utils.CurrentPrincipal(c).Authenticated() {
			resp.Unauthorized(c, policy.MsgLoginRequired)
			return
		}
		c.Next()
	}
}

// WSAuthMiddleware also accepts ?token= since browsers cannot set headers on websocket upgrades.
func WSAuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return authenticate(auth, true, true)
}

func authenticate(auth Authenticator, allowQuery, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" && allowQuery {
			token = c.Query("token")
		}
		if token == "" {
			if required {
				resp.Unauthorized(c, policy.MsgLoginRequired)
				return
			}
			c.Next()
			return
		}

		u, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			if required {
				resp.Error(c, err)
				return
			}
			c.Set(authErrKey, err)
			c.Next()
			return
		}
		utils.SetPrincipal(c, policy.FromUser(u))
		c.Next()
	}
}

// bearerToken accepts "Bearer <jwt>" and "Token <jwt>".
func bearerToken(h string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok {
		return ""
	}
	if !strings.EqualFold(scheme, "Bearer") && !strings.EqualFold(scheme, "Token") {
		return ""
	}
	return strings.TrimSpace(token)
}
