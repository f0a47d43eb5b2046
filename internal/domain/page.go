package domain

import (
	"fmt"
	"strings"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	DefaultSort     = "id"
)

// 允许排序的字段 → 列名
var sortColumns = map[string]string{
	"id":          "id",
	"firstName":   "first_name",
	"lastName":    "last_name",
	"email":       "email",
	"phoneNumber": "phone_number",
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
}

// PageRequest 分页参数，Page 从 0 开始
type PageRequest struct {
	Page int
	Size int
	Sort string
	Desc bool
}

// Page 有界切片 + 总数 + 产生它的分页参数
type Page[T any] struct {
	Items []T    `json:"items"`
	Total int64  `json:"total"`
	Page  int    `json:"page"`
	Size  int    `json:"size"`
	Sort  string `json:"sort"`
}

// NewPageRequest 解析 "email" / "email,desc" 形式的排序参数并补默认值
func NewPageRequest(page, size int, sort string) (PageRequest, error) {
	pr := PageRequest{Page: page, Size: size}
	key, dir, _ := strings.Cut(strings.TrimSpace(sort), ",")
	pr.Sort = strings.TrimSpace(key)
	switch strings.ToLower(strings.TrimSpace(dir)) {
	case "", "asc":
	case "desc":
		pr.Desc = true
	default:
		return PageRequest{}, fmt.Errorf("%w: sort direction %q", ErrValidation, dir)
	}
	pr = pr.Normalize()
	if _, ok := sortColumns[pr.Sort]; !ok {
		return PageRequest{}, fmt.Errorf("%w: unknown sort key %q", ErrValidation, pr.Sort)
	}
	return pr, nil
}

// Normalize 补默认值并限制 Size 上限
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	if p.Sort == "" {
		p.Sort = DefaultSort
	}
	return p
}

func (p PageRequest) Offset() int { return p.Page * p.Size }

// SortColumn 返回排序列名；未知字段退回 id
func (p PageRequest) SortColumn() string {
	if col, ok := sortColumns[p.Sort]; ok {
		return col
	}
	return sortColumns[DefaultSort]
}

// SortString 回显给调用方的排序参数
func (p PageRequest) SortString() string {
	if p.Desc {
		return p.Sort + ",desc"
	}
	return p.Sort + ",asc"
}
