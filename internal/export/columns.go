// Package export 把完整用户集合编码为 CSV / PDF / XLSX。
// 三种格式列集合与顺序一致，均不包含任何密码字段。
package export

import (
	"time"

	"booking-users/internal/feature/user"
)

const TimeLayout = "2006-01-02 15:04:05"

var Header = []string{
	"ID",
	"First Name",
	"Last Name",
	"Email",
	"Phone Number",
	"Profile Picture",
	"Created At",
	"Updated At",
}

// 文本列数量（其后为时间列）
const textColumns = 6

func textCells(u user.DTO) []string {
	pic := ""
	if u.ProfilePicture != nil {
		pic = *u.ProfilePicture
	}
	return []string{u.ID, u.FirstName, u.LastName, u.Email, u.PhoneNumber, pic}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(TimeLayout)
}

// Row 一行的文本渲染，CSV 与 PDF 共用
func Row(u user.DTO) []string {
	return append(textCells(u), formatTime(u.CreatedAt), formatTime(u.UpdatedAt))
}
