package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"booking-users/internal/core/auth"
	"booking-users/internal/domain"
	"booking-users/internal/feature/user"
	"booking-users/internal/transport/http/ez"
	mdw "booking-users/internal/transport/http/middleware"
)

// AdminHandler 管理端 /admin/v1/users；分组已走 AuthJWT(admin)
type AdminHandler struct {
	dir    Directory
	export ExportOptions
	log    *zap.Logger
}

func NewAdminHandler(dir Directory, opts ExportOptions, l *zap.Logger) *AdminHandler {
	if l == nil {
		l = zap.NewNop()
	}
	return &AdminHandler{dir: dir, export: opts, log: l}
}

type emailQuery struct {
	Email string `form:"email"`
}

func (h *AdminHandler) MountAdmin(admin *gin.RouterGroup) {
	e := ez.New(admin, h.log).Group("/users")
	roles := []string{auth.RoleAdmin}

	ez.RegisterAction(e, ez.Action[listQuery, domain.Page[user.DTO]]{
		Method: http.MethodGet,
		Path:   "",
		Binder: ez.BindQuery,
		Roles:  roles,
		Handler: func(c *gin.Context, q *listQuery) (domain.Page[user.DTO], error) {
			pr, err := q.request()
			if err != nil {
				return domain.Page[user.DTO]{}, err
			}
			return h.dir.List(c.Request.Context(), pr)
		},
	})

	ez.RegisterAction(e, ez.Action[emailQuery, *user.DTO]{
		Method: http.MethodGet,
		Path:   "/by-email",
		Binder: ez.BindQuery,
		Roles:  roles,
		Handler: func(c *gin.Context, q *emailQuery) (*user.DTO, error) {
			return h.dir.FindByEmail(c.Request.Context(), q.Email)
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/:id",
		Binder: ez.BindNone,
		Roles:  roles,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			id := c.Param("id")
			if err := h.dir.Delete(c.Request.Context(), id); err != nil {
				return nil, err
			}
			h.log.Info("admin deleted user", zap.String("id", id), zap.String("by", c.GetString(mdw.KeyUserID)))
			return gin.H{"id": id}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, ez.File]{
		Method: http.MethodGet,
		Path:   "/export/:format",
		Binder: ez.BindNone,
		Roles:  roles,
		Handler: func(c *gin.Context, _ *struct{}) (ez.File, error) {
			return renderExport(c.Request.Context(), h.dir, h.export, c.Param("format"))
		},
	})
}
