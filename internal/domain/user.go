package domain

import (
	"context"
	"time"
)

// User 持久化的用户记录
type User struct {
	ID             string
	FirstName      string
	LastName       string
	Email          string
	PhoneNumber    string
	PasswordHash   string
	ProfilePicture *string // 头像存储引用，可为空
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// UserRepository 用户持久化边界；ID 由实现方在 Create 时分配
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, pr PageRequest) ([]User, int64, error)
	FindAll(ctx context.Context) ([]User, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id string) error
}

// PasswordHasher 单向加盐哈希；同一明文两次 Hash 结果不同，但都能 Verify 通过
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hashed string) bool
}

// ImageStore 头像文件存储，引用即文件名
type ImageStore interface {
	Save(ctx context.Context, data []byte, originalName string) (string, error)
	Open(ctx context.Context, ref string) ([]byte, error)
}
