package utility

import (
	"strings"
	"time"
)

// BirthdayLayout là định dạng ngày sinh lưu trong hồ sơ (YYYY-MM-DD)
const BirthdayLayout = "2006-01-02"

// AgeFromBirthday tính số tuổi tròn tại thời điểm now.
// Chưa tới ngày sinh nhật trong năm thì trừ 1. Ngày sinh rỗng hoặc sai định dạng trả về 0.
func AgeFromBirthday(birthday string, now time.Time) int {
	birthday = strings.TrimSpace(birthday)
	if birthday == "" {
		return 0
	}
	b, err := time.Parse(BirthdayLayout, birthday)
	if err != nil {
		return 0
	}

	age := now.Year() - b.Year()
	if now.Month() < b.Month() || (now.Month() == b.Month() && now.Day() < b.Day()) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}
