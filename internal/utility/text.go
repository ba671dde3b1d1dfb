package utility

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NormalizeName chuẩn hóa tên để so khớp: NFC, bỏ khoảng trắng thừa, không phân biệt hoa thường.
// "  Nguyễn   Văn A " và "nguyễn văn a" cho cùng kết quả.
func NormalizeName(s string) string {
	s = norm.NFC.String(s)
	s = strings.Join(strings.Fields(s), " ")
	// Caser có trạng thái, không dùng chung giữa các goroutine
	return cases.Fold().String(s)
}
