package user

import (
	"strings"
	"time"

	"booking-users/internal/domain"
)

// DTO 对外的用户表示；不含任何密码字段
type DTO struct {
	ID             string    `json:"id"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	Email          string    `json:"email"`
	PhoneNumber    string    `json:"phoneNumber"`
	ProfilePicture *string   `json:"profilePicture"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// ImageUpload 上传的头像
type ImageUpload struct {
	Filename string
	Data     []byte
}

func (i *ImageUpload) Present() bool { return i != nil && len(i.Data) > 0 }

// CreateInput 创建入参；Password 只写，哈希后丢弃
type CreateInput struct {
	FirstName   string `validate:"notblank"`
	LastName    string `validate:"notblank"`
	Email       string `validate:"notblank,email"`
	Password    string `validate:"notblank"`
	PhoneNumber string `validate:"notblank"`
	Image       *ImageUpload
}

// Normalize 去掉资料字段首尾空白；密码原样保留
func (in CreateInput) Normalize() CreateInput {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	return in
}

// UpdateInput 全量覆盖，不支持部分更新
type UpdateInput struct {
	FirstName   string `validate:"notblank"`
	LastName    string `validate:"notblank"`
	Email       string `validate:"notblank,email"`
	PhoneNumber string `validate:"notblank"`
	Image       *ImageUpload
}

func (in UpdateInput) Normalize() UpdateInput {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	return in
}

// NewRecord 入参 → 实体（不含 ID / 哈希 / 时间戳）
func NewRecord(in CreateInput) domain.User {
	return domain.User{
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Email:       in.Email,
		PhoneNumber: in.PhoneNumber,
	}
}

// ToDTO 实体 → 对外表示
func ToDTO(u domain.User) DTO {
	return DTO{
		ID:             u.ID,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Email:          u.Email,
		PhoneNumber:    u.PhoneNumber,
		ProfilePicture: u.ProfilePicture,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func ToDTOs(us []domain.User) []DTO {
	out := make([]DTO, 0, len(us))
	for _, u := range us {
		out = append(out, ToDTO(u))
	}
	return out
}
