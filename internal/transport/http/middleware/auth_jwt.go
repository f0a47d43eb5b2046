package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"booking-users/internal/core/auth"
	resp "booking-users/internal/transport/http/response"
)

// AuthJWT 校验 Bearer token；requireRole 非空时要求角色一致。
// 通过后写入 userId / role / claims。
func AuthJWT(j *auth.JWTer, requireRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(ah, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			resp.Abort(c, resp.CodeUnauthorized, "missing token")
			return
		}
		claims, err := j.Parse(strings.TrimSpace(raw))
		if err != nil {
			resp.Abort(c, resp.CodeUnauthorized, "invalid token")
			return
		}
		if requireRole != "" && claims.Role != requireRole {
			resp.Abort(c, resp.CodeForbidden, "forbidden")
			return
		}
		c.Set(KeyUserID, claims.UID)
		c.Set(KeyRole, claims.Role)
		c.Set(KeyClaims, claims)
		c.Next()
	}
}
