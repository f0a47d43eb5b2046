package user

import (
	"time"

	"booking-users/internal/domain"
)

// UserModel users 表；时间戳由服务层写入，关闭 gorm 自动维护
type UserModel struct {
	ID             string    `gorm:"primaryKey;type:varchar(36)"`
	FirstName      string    `gorm:"size:64;not null"`
	LastName       string    `gorm:"size:64;not null"`
	Email          string    `gorm:"index;size:255;not null"`
	PhoneNumber    string    `gorm:"size:32;not null"`
	PasswordHash   string    `gorm:"size:100;not null"`
	ProfilePicture *string   `gorm:"size:255"`
	CreatedAt      time.Time `gorm:"autoCreateTime:false;not null"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime:false;not null"`
}

func (UserModel) TableName() string { return "users" }

func ModelFromDomain(u *domain.User) *UserModel {
	return &UserModel{
		ID:             u.ID,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Email:          u.Email,
		PhoneNumber:    u.PhoneNumber,
		PasswordHash:   u.PasswordHash,
		ProfilePicture: u.ProfilePicture,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func (m *UserModel) ToDomain() *domain.User {
	return &domain.User{
		ID:             m.ID,
		FirstName:      m.FirstName,
		LastName:       m.LastName,
		Email:          m.Email,
		PhoneNumber:    m.PhoneNumber,
		PasswordHash:   m.PasswordHash,
		ProfilePicture: m.ProfilePicture,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}
