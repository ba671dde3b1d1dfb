package storage

import (
	"context"
	"errors"
	"io"

	"film_camp/internal/common"
	"film_camp/internal/logger"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
)

const firebaseDownloadHost = "https://firebasestorage.googleapis.com"

// FirebaseStore ghi object vào bucket Firebase Storage và trả về URL tải kèm download token
type FirebaseStore struct {
	bucket     *gcs.BucketHandle
	bucketName string
	baseURL    string
}

// NewFirebaseStore tạo store. emulatorHost khác rỗng thì URL tải trỏ vào Storage emulator.
func NewFirebaseStore(bucket *gcs.BucketHandle, bucketName, emulatorHost string) *FirebaseStore {
	base := firebaseDownloadHost
	if emulatorHost != "" {
		base = "http://" + emulatorHost
	}
	return &FirebaseStore{bucket: bucket, bucketName: bucketName, baseURL: base}
}

// Upload ghi stream r vào objectPath, gọi progress sau mỗi chunk
func (s *FirebaseStore) Upload(ctx context.Context, objectPath, contentType string, r io.Reader, size int64, progress ProgressFunc) (*Object, error) {
	token := uuid.NewString()

	w := s.bucket.Object(objectPath).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = map[string]string{"firebaseStorageDownloadTokens": token}
	if progress != nil {
		w.ProgressFunc = func(written int64) { progress(written, size) }
	}

	written, err := io.Copy(w, r)
	if err != nil {
		_ = w.Close()
		return nil, common.WithDetails(common.ErrStorage, err.Error())
	}
	if err := w.Close(); err != nil {
		return nil, common.WithDetails(common.ErrStorage, err.Error())
	}

	logger.GetAppLogger().WithFields(map[string]interface{}{
		"path":  objectPath,
		"bytes": written,
	}).Info("📁 [STORAGE] Đã tải file lên")

	return &Object{
		Path:        objectPath,
		URL:         DownloadURL(s.baseURL, s.bucketName, objectPath, token),
		ContentType: contentType,
		Size:        written,
	}, nil
}

// Delete xóa object, object không tồn tại coi như đã xóa
func (s *FirebaseStore) Delete(ctx context.Context, objectPath string) error {
	err := s.bucket.Object(objectPath).Delete(ctx)
	if err == nil || errors.Is(err, gcs.ErrObjectNotExist) {
		return nil
	}
	return common.WithDetails(common.ErrStorage, err.Error())
}
