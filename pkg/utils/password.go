package utils

import "golang.org/x/crypto/bcrypt"

// BcryptHasher 实现 domain.PasswordHasher；每次调用随机盐
type BcryptHasher struct {
	Cost int // 0 → bcrypt.DefaultCost
}

func NewBcryptHasher(cost int) *BcryptHasher { return &BcryptHasher{Cost: cost} }

func (h *BcryptHasher) Hash(pw string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h *BcryptHasher) Verify(pw, hashed string) bool { return CheckPassword(pw, hashed) }

func HashPassword(pw string) (string, error) { return NewBcryptHasher(0).Hash(pw) }

func CheckPassword(pw, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pw)) == nil
}
