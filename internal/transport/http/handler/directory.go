package handler

import (
	"context"
	"time"

	"booking-users/internal/domain"
	"booking-users/internal/export"
	"booking-users/internal/feature/user"
)

// Directory handler 依赖的用户目录操作，由 service.UserService 实现
type Directory interface {
	Create(ctx context.Context, in user.CreateInput) (*user.DTO, error)
	List(ctx context.Context, pr domain.PageRequest) (domain.Page[user.DTO], error)
	Get(ctx context.Context, id string) (*user.DTO, error)
	FindByEmail(ctx context.Context, email string) (*user.DTO, error)
	Update(ctx context.Context, id string, in user.UpdateInput) (*user.DTO, error)
	Delete(ctx context.Context, id string) error
	ExportAll(ctx context.Context) ([]user.DTO, error)
	ProfileImage(ctx context.Context, ref string) ([]byte, error)
}

type ExportOptions struct {
	Title       string
	PDFCompress bool
	PDFFont     export.PDFFont
	Now         func() time.Time
}

type listQuery struct {
	Page int    `form:"page"`
	Size int    `form:"size"`
	Sort string `form:"sort"`
}

func (q listQuery) request() (domain.PageRequest, error) {
	return domain.NewPageRequest(q.Page, q.Size, q.Sort)
}
