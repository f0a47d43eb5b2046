package repo

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"booking-users/internal/core/cache"
	"booking-users/internal/domain"
)

const generationKey = "users:gen"

// CachedUserRepo 在 redis 中缓存分页结果；任何写操作递增代号使旧页失效。
// redis 不可用时直接回源。
type CachedUserRepo struct {
	domain.UserRepository
	c   *cache.Cache
	ttl time.Duration
	log *zap.Logger
}

func NewCachedUserRepo(inner domain.UserRepository, c *cache.Cache, ttl time.Duration, l *zap.Logger) *CachedUserRepo {
	if l == nil {
		l = zap.NewNop()
	}
	return &CachedUserRepo{UserRepository: inner, c: c, ttl: ttl, log: l}
}

type cachedPage struct {
	Users []domain.User `json:"users"`
	Total int64         `json:"total"`
}

func (r *CachedUserRepo) List(ctx context.Context, pr domain.PageRequest) ([]domain.User, int64, error) {
	pr = pr.Normalize()
	gen, err := r.c.Generation(ctx, generationKey)
	if err != nil {
		r.log.Warn("cache unavailable, listing from db", zap.Error(err))
		return r.UserRepository.List(ctx, pr)
	}
	key := fmt.Sprintf("users:page:%d:%d:%d:%s", gen, pr.Page, pr.Size, pr.SortString())
	p, err := cache.GetOrLoadJSON(r.c, ctx, key, r.ttl, func(ctx context.Context) (*cachedPage, error) {
		us, total, e := r.UserRepository.List(ctx, pr)
		if e != nil {
			return nil, e
		}
		// 缓存里不落密码哈希
		for i := range us {
			us[i].PasswordHash = ""
		}
		return &cachedPage{Users: us, Total: total}, nil
	})
	if err != nil {
		return nil, 0, err
	}
	return p.Users, p.Total, nil
}

func (r *CachedUserRepo) Create(ctx context.Context, u *domain.User) error {
	if err := r.UserRepository.Create(ctx, u); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *CachedUserRepo) Update(ctx context.Context, u *domain.User) error {
	if err := r.UserRepository.Update(ctx, u); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *CachedUserRepo) Delete(ctx context.Context, id string) error {
	if err := r.UserRepository.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *CachedUserRepo) invalidate(ctx context.Context) {
	if err := r.c.Bump(ctx, generationKey); err != nil {
		r.log.Warn("cache invalidate failed", zap.Error(err))
	}
}
