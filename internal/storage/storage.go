// Package storage lưu file (video, file dự án, ảnh đại diện) lên Firebase Storage.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"film_camp/internal/common"

	"github.com/google/uuid"
)

// ProgressFunc nhận số byte đã ghi và tổng dung lượng
type ProgressFunc func(written, total int64)

// Object là file đã lưu
type Object struct {
	Path        string `json:"path"`
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// File là file người dùng gửi lên, đọc từ multipart form
type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ObjectStore là kho object được các service dùng
type ObjectStore interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader, size int64, progress ProgressFunc) (*Object, error)
	Delete(ctx context.Context, objectPath string) error
}

// Rule giới hạn kiểu và dung lượng file, kiểm tra trước khi gọi mạng
type Rule struct {
	MaxSize int64
	Types   map[string]string // content type -> phần mở rộng
}

const mb = 1024 * 1024

var (
	VideoRule = Rule{
		MaxSize: 500 * mb,
		Types: map[string]string{
			"video/mp4":       "mp4",
			"video/quicktime": "mov",
		},
	}
	ProjectFileRule = Rule{
		MaxSize: 10 * mb,
		Types: map[string]string{
			"application/pdf":    "pdf",
			"application/msword": "doc",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document": "docx",
			"video/mp4":       "mp4",
			"video/quicktime": "mov",
		},
	}
	ProfileImageRule = Rule{
		MaxSize: 5 * mb,
		Types: map[string]string{
			"image/jpeg": "jpg",
			"image/png":  "png",
			"image/webp": "webp",
		},
	}
)

// Check trả về phần mở rộng của file hợp lệ, ErrFileType / ErrFileTooLarge khi vi phạm
func (r Rule) Check(contentType string, size int64) (string, error) {
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	ext, ok := r.Types[ct]
	if !ok {
		return "", common.WithDetails(common.ErrFileType, contentType)
	}
	if size <= 0 {
		return "", common.WithDetails(common.ErrInvalidInput, "file rỗng")
	}
	if size > r.MaxSize {
		return "", common.WithDetails(common.ErrFileTooLarge, map[string]int64{"size": size, "maxSize": r.MaxSize})
	}
	return ext, nil
}

// NewObjectName sinh tên object ngẫu nhiên dưới thư mục dir
func NewObjectName(dir, ext string) string {
	return path.Join(dir, uuid.NewString()+"."+ext)
}

// SanitizeFileName giữ lại phần tên file, thay ký tự không an toàn bằng '_'
func SanitizeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r == '/' || r == '?' || r == '#' || r == '%' || r < 0x20:
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	out := strings.TrimSpace(b.String())
	if out == "" || out == "." {
		return "file"
	}
	return out
}

// DownloadURL tạo URL tải file theo định dạng của Firebase Storage
func DownloadURL(baseURL, bucket, objectPath, token string) string {
	u := fmt.Sprintf("%s/v0/b/%s/o/%s?alt=media", strings.TrimRight(baseURL, "/"), bucket, url.PathEscape(objectPath))
	if token != "" {
		u += "&token=" + url.QueryEscape(token)
	}
	return u
}

// PathFromURL lấy đường dẫn object nằm giữa "/o/" và "?" trong URL tải file
func PathFromURL(fileURL string) (string, error) {
	_, rest, found := strings.Cut(fileURL, "/o/")
	if !found {
		return "", common.WithDetails(common.ErrInvalidFileURL, fileURL)
	}
	encoded, _, _ := strings.Cut(rest, "?")
	if encoded == "" {
		return "", common.WithDetails(common.ErrInvalidFileURL, fileURL)
	}
	decoded, err := url.PathUnescape(encoded)
	if err != nil {
		return "", common.WithDetails(common.ErrInvalidFileURL, fileURL)
	}
	return decoded, nil
}
