package utility

import "math"

// Round1 làm tròn tới 1 chữ số thập phân (round half away from zero)
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// MeanRating tính điểm trung bình đã làm tròn 1 chữ số. Bỏ qua điểm <= 0; không có điểm nào trả về 0.
func MeanRating(ratings []int) float64 {
	sum, n := 0, 0
	for _, r := range ratings {
		if r <= 0 {
			continue
		}
		sum += r
		n++
	}
	if n == 0 {
		return 0
	}
	return Round1(float64(sum) / float64(n))
}
