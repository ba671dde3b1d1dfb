package uploaddto

// ProjectFileForm là field form đi kèm file dự án (field "file")
type ProjectFileForm struct {
	ApplicationID string `validate:"required"`
}

// DeleteProjectFileInput đầu vào gỡ file dự án
type DeleteProjectFileInput struct {
	ApplicationID string `json:"applicationId" validate:"required"`
	URL           string `json:"url" validate:"required,url"`
}

// DeleteByURLInput đầu vào xóa file theo URL tải
type DeleteByURLInput struct {
	URL string `json:"url" validate:"required,url"`
}
