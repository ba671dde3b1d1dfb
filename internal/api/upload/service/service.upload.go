// Package uploadsvc tải file dự án và ảnh đại diện lên storage.
package uploadsvc

import (
	"context"
	"fmt"
	"strings"

	appmodels "film_camp/internal/api/application/models"
	uploaddto "film_camp/internal/api/upload/dto"
	"film_camp/internal/common"
	"film_camp/internal/logger"
	"film_camp/internal/session"
	"film_camp/internal/storage"
)

// FileAttacher là phần hồ sơ mà upload file dự án cần
type FileAttacher interface {
	Get(ctx context.Context, sess *session.Session, id string) (appmodels.Application, error)
	AttachFile(ctx context.Context, sess *session.Session, id string, file appmodels.ProjectFile) (appmodels.Application, error)
	DetachFile(ctx context.Context, sess *session.Session, id, fileURL string) (appmodels.Application, error)
}

// ProfileImageSetter lưu ảnh đại diện của người dùng, trả về đường dẫn ảnh cũ
type ProfileImageSetter interface {
	SetProfileImage(ctx context.Context, userID, url, objectPath string) (string, error)
}

// UploadService là service upload
type UploadService struct {
	store storage.ObjectStore
	apps  FileAttacher
	users ProfileImageSetter
}

// NewUploadService tạo UploadService
func NewUploadService(store storage.ObjectStore, apps FileAttacher, users ProfileImageSetter) *UploadService {
	return &UploadService{store: store, apps: apps, users: users}
}

// profileDir là thư mục ảnh đại diện của user
func profileDir(userID string) string {
	return fmt.Sprintf("profile_images/%s/", userID)
}

// removeQuietly xóa object, lỗi chỉ ghi log
func (s *UploadService) removeQuietly(ctx context.Context, objectPath string) {
	if objectPath == "" {
		return
	}
	if err := s.store.Delete(ctx, objectPath); err != nil {
		logger.WithContext(ctx).WithError(err).WithField("path", objectPath).Warn("🖼️ [UPLOAD] Không xóa được file trên storage")
	}
}

// UploadProjectFile lưu file dự án vào project_images/{projectId}/ và gắn vào hồ sơ nháp
func (s *UploadService) UploadProjectFile(ctx context.Context, sess *session.Session, appID string, file storage.File) (appmodels.ProjectFile, error) {
	ext, err := storage.ProjectFileRule.Check(file.ContentType, file.Size)
	if err != nil {
		return appmodels.ProjectFile{}, err
	}
	app, err := s.apps.Get(ctx, sess, appID)
	if err != nil {
		return appmodels.ProjectFile{}, err
	}
	if !app.IsOwnedBy(sess.UserID) && !sess.IsStaff() {
		return appmodels.ProjectFile{}, common.ErrForbidden
	}
	if app.Status != appmodels.StatusDraft {
		return appmodels.ProjectFile{}, common.ErrApplicationLocked
	}

	objectPath := storage.NewObjectName("project_images/"+app.ProjectID, ext)
	obj, err := s.store.Upload(ctx, objectPath, file.ContentType, file.Body, file.Size, nil)
	if err != nil {
		return appmodels.ProjectFile{}, common.WithDetails(common.ErrStorage, err.Error())
	}

	pf := appmodels.ProjectFile{Name: storage.SanitizeFileName(file.Name), URL: obj.URL}
	if _, err := s.apps.AttachFile(ctx, sess, appID, pf); err != nil {
		s.removeQuietly(ctx, obj.Path)
		return appmodels.ProjectFile{}, err
	}
	return pf, nil
}

// DeleteProjectFile gỡ file khỏi hồ sơ rồi xóa trên storage
func (s *UploadService) DeleteProjectFile(ctx context.Context, sess *session.Session, input *uploaddto.DeleteProjectFileInput) error {
	objectPath, err := storage.PathFromURL(input.URL)
	if err != nil {
		return err
	}
	if _, err := s.apps.DetachFile(ctx, sess, input.ApplicationID, input.URL); err != nil {
		return err
	}
	s.removeQuietly(ctx, objectPath)
	return nil
}

// UploadProfileImage lưu ảnh đại diện mới và xóa ảnh cũ
func (s *UploadService) UploadProfileImage(ctx context.Context, sess *session.Session, file storage.File) (*storage.Object, error) {
	if err := session.Require(sess); err != nil {
		return nil, err
	}
	ext, err := storage.ProfileImageRule.Check(file.ContentType, file.Size)
	if err != nil {
		return nil, err
	}

	objectPath := storage.NewObjectName(strings.TrimSuffix(profileDir(sess.UserID), "/"), ext)
	obj, err := s.store.Upload(ctx, objectPath, file.ContentType, file.Body, file.Size, nil)
	if err != nil {
		return nil, common.WithDetails(common.ErrStorage, err.Error())
	}

	oldPath, err := s.users.SetProfileImage(ctx, sess.UserID, obj.URL, obj.Path)
	if err != nil {
		s.removeQuietly(ctx, obj.Path)
		return nil, err
	}
	if oldPath != obj.Path {
		s.removeQuietly(ctx, oldPath)
	}
	return obj, nil
}

// DeleteByURL xóa file theo URL tải. Người dùng thường chỉ xóa được ảnh đại diện của chính mình.
func (s *UploadService) DeleteByURL(ctx context.Context, sess *session.Session, fileURL string) error {
	if err := session.Require(sess); err != nil {
		return err
	}
	objectPath, err := storage.PathFromURL(fileURL)
	if err != nil {
		return err
	}
	if !sess.IsStaff() && !strings.HasPrefix(objectPath, profileDir(sess.UserID)) {
		return common.ErrForbidden
	}
	s.removeQuietly(ctx, objectPath)
	return nil
}
