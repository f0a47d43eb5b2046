package utils

import "github.com/google/uuid"

// NewID 返回时间有序的 UUIDv7，按 id 排序即近似创建顺序
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// ShortToken 8 位随机十六进制
func ShortToken() string {
	s := uuid.NewString()
	return s[len(s)-8:]
}
