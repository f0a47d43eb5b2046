package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"booking-users/internal/core/auth"
	mdw "booking-users/internal/transport/http/middleware"
)

// NewAdminEngine 管理端接口，前缀 /admin/v1，统一要求 admin 角色
func NewAdminEngine(l *zap.Logger, reg *Registry, jwter *auth.JWTer, o Options) *gin.Engine {
	r := newEngine(l, o)
	admin := r.Group("/admin/v1")
	admin.Use(mdw.AuthJWT(jwter, auth.RoleAdmin))
	reg.MountAdmin(admin)
	return r
}
