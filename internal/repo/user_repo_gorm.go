package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"booking-users/internal/domain"
	"booking-users/internal/feature/user"
	"booking-users/pkg/utils"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

// Migrate 建表（由 db.autoMigrate 控制是否调用）
func (r *UserRepo) Migrate() error { return r.db.AutoMigrate(&user.UserModel{}) }

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	if u.ID == "" {
		u.ID = utils.NewID()
	}
	if err := r.db.WithContext(ctx).Create(user.ModelFromDomain(u)).Error; err != nil {
		return fmt.Errorf("%w: create user: %w", domain.ErrStorage, err)
	}
	return nil
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *UserRepo) first(ctx context.Context, query string, arg any) (*domain.User, error) {
	var m user.UserModel
	err := r.db.WithContext(ctx).Where(query, arg).Order("id").First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find user: %w", domain.ErrStorage, err)
	}
	return m.ToDomain(), nil
}

func (r *UserRepo) List(ctx context.Context, pr domain.PageRequest) ([]domain.User, int64, error) {
	pr = pr.Normalize()
	tx := r.db.WithContext(ctx).Model(&user.UserModel{})
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("%w: count users: %w", domain.ErrStorage, err)
	}

	var ms []user.UserModel
	order := []clause.OrderByColumn{{Column: clause.Column{Name: pr.SortColumn()}, Desc: pr.Desc}}
	// 非 id 排序时以 id 兜底，保证翻页稳定
	if pr.SortColumn() != "id" {
		order = append(order, clause.OrderByColumn{Column: clause.Column{Name: "id"}})
	}
	err := tx.Order(clause.OrderBy{Columns: order}).
		Offset(pr.Offset()).Limit(pr.Size).
		Find(&ms).Error
	if err != nil {
		return nil, 0, fmt.Errorf("%w: list users: %w", domain.ErrStorage, err)
	}
	return toDomain(ms), total, nil
}

func (r *UserRepo) FindAll(ctx context.Context) ([]domain.User, error) {
	var ms []user.UserModel
	if err := r.db.WithContext(ctx).Order("id").Find(&ms).Error; err != nil {
		return nil, fmt.Errorf("%w: scan users: %w", domain.ErrStorage, err)
	}
	return toDomain(ms), nil
}

func (r *UserRepo) Update(ctx context.Context, u *domain.User) error {
	res := r.db.WithContext(ctx).Model(&user.UserModel{}).Where("id = ?", u.ID).
		Select("*").Omit("id", "created_at", "password_hash").
		Updates(user.ModelFromDomain(u))
	if res.Error != nil {
		return fmt.Errorf("%w: update user: %w", domain.ErrStorage, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete 物理删除
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&user.UserModel{})
	if res.Error != nil {
		return fmt.Errorf("%w: delete user: %w", domain.ErrStorage, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func toDomain(ms []user.UserModel) []domain.User {
	out := make([]domain.User, 0, len(ms))
	for i := range ms {
		out = append(out, *ms[i].ToDomain())
	}
	return out
}
