package utils

import (
	"littlelemon/policy"

	"github.com/gin-gonic/gin"
)

const (
	principalKey = "principal"
	requestIDKey = "requestId"
)

func SetPrincipal(c *gin.Context, p policy.Principal) { c.Set(principalKey, p) }

// CurrentPrincipal returns the authenticated caller, or policy.Anonymous.
func CurrentPrincipal(c *gin.Context) policy.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(policy.Principal); ok {
			return p
		}
	}
	return policy.Anonymous
}

func CurrentUserID(c *gin.Context) uint { return CurrentPrincipal(c).UserID }

func SetRequestID(c *gin.Context, id string) { c.Set(requestIDKey, id) }

func RequestID(c *gin.Context) string { return c.GetString(requestIDKey) }
