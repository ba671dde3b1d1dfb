package filmdto

// UploadForm là các field form đi kèm file video (field "file")
type UploadForm struct {
	Title string `form:"title" validate:"omitempty,max=300,no_xss"`
}
