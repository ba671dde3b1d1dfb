package projectdto

// ProjectListQuery lọc danh sách dự án
type ProjectListQuery struct {
	Status   string `query:"status" validate:"omitempty,oneof=coming-soon open reviewing closed"`
	Tag      string `query:"tag"`
	Province string `query:"province"`
}
