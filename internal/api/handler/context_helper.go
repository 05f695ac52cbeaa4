package handler

import (
	"github.com/gin-gonic/gin"

	"hr-ledger/internal/api/middleware"
	"hr-ledger/pkg/jwt"
	"hr-ledger/pkg/response"
)

// MustGetUserID extracts the caller's user id set by JWTAuth.
// On failure it writes 401 and returns false; callers return immediately.
func MustGetUserID(c *gin.Context) (int64, bool) {
	v, exists := c.Get(middleware.ContextUserID)
	if !exists {
		response.Unauthorized(c, 10002, "unauthenticated")
		return 0, false
	}
	id, ok := v.(int64)
	if !ok || id == 0 {
		response.Unauthorized(c, 10002, "unauthenticated")
		return 0, false
	}
	return id, true
}

// MustGetFullName caller's display name, recorded as editor in audit rows
func MustGetFullName(c *gin.Context) (string, bool) {
	v, exists := c.Get(middleware.ContextFullName)
	if !exists {
		response.Unauthorized(c, 10002, "unauthenticated")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "unauthenticated")
		return "", false
	}
	return s, true
}

// MustGetClaims the parsed access token
func MustGetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get(middleware.ContextClaims)
	if !exists {
		response.Unauthorized(c, 10002, "unauthenticated")
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	if !ok || claims == nil {
		response.Unauthorized(c, 10002, "unauthenticated")
		return nil, false
	}
	return claims, true
}
