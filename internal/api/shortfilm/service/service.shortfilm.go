// Package filmsvc quản lý phim ngắn các nhóm nộp sau khóa học.
package filmsvc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	appmodels "film_camp/internal/api/application/models"
	basesvc "film_camp/internal/api/base/service"
	models "film_camp/internal/api/shortfilm/models"
	"film_camp/internal/common"
	"film_camp/internal/logger"
	"film_camp/internal/session"
	"film_camp/internal/storage"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ShortFilmService là service phim ngắn
type ShortFilmService struct {
	films basesvc.BaseServiceMongo[models.ShortFilm]
	apps  basesvc.BaseServiceMongo[appmodels.Application]
	store storage.ObjectStore
	now   func() time.Time
}

// NewShortFilmService tạo ShortFilmService
func NewShortFilmService(films basesvc.BaseServiceMongo[models.ShortFilm], apps basesvc.BaseServiceMongo[appmodels.Application], store storage.ObjectStore) *ShortFilmService {
	return &ShortFilmService{films: films, apps: apps, store: store, now: time.Now}
}

// ObjectPath là đường dẫn lưu video: shortfilms/{appId}/{unix}_{tên file}
func ObjectPath(appID string, at time.Time, fileName string) string {
	return fmt.Sprintf("shortfilms/%s/%d_%s", appID, at.Unix(), storage.SanitizeFileName(fileName))
}

// application đọc hồ sơ và kiểm tra quyền: write cần người nộp hoặc admin/editor, đọc thêm ban giám khảo
func (s *ShortFilmService) application(ctx context.Context, sess *session.Session, appID string, write bool) (appmodels.Application, error) {
	if err := session.Require(sess); err != nil {
		return appmodels.Application{}, err
	}
	app, err := s.apps.FindOneById(ctx, appID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return appmodels.Application{}, common.ErrApplicationNotFound
		}
		return appmodels.Application{}, common.ConvertMongoError(err)
	}
	allowed := app.IsOwnedBy(sess.UserID) || sess.IsStaff() || (!write && sess.CanReview())
	if !allowed {
		return appmodels.Application{}, common.ErrForbidden
	}
	return app, nil
}

// progressLogger ghi log mỗi khi upload qua thêm 10%
func progressLogger(ctx context.Context, objectPath string) storage.ProgressFunc {
	last := int64(-1)
	return func(written, total int64) {
		if total <= 0 {
			return
		}
		pct := written * 100 / total
		if pct/10 == last/10 && last >= 0 {
			return
		}
		last = pct
		logger.WithContext(ctx).WithFields(map[string]interface{}{
			"path":    objectPath,
			"percent": pct,
		}).Debug("🎬 [SHORTFILM] Đang tải video lên")
	}
}

// Upload lưu video phim ngắn của hồ sơ
func (s *ShortFilmService) Upload(ctx context.Context, sess *session.Session, appID string, file storage.File, title string) (models.ShortFilm, error) {
	contentType := strings.ToLower(strings.TrimSpace(file.ContentType))
	if _, err := storage.VideoRule.Check(contentType, file.Size); err != nil {
		return models.ShortFilm{}, err
	}
	app, err := s.application(ctx, sess, appID, true)
	if err != nil {
		return models.ShortFilm{}, err
	}

	objectPath := ObjectPath(appID, s.now(), file.Name)
	obj, err := s.store.Upload(ctx, objectPath, contentType, file.Body, file.Size, progressLogger(ctx, objectPath))
	if err != nil {
		return models.ShortFilm{}, common.WithDetails(common.ErrStorage, err.Error())
	}

	title = strings.TrimSpace(title)
	if title == "" {
		title = app.ShortFilmTitle
	}
	film, err := s.films.InsertOne(ctx, models.ShortFilm{
		ApplicationID: appID,
		Title:         title,
		VideoURL:      obj.URL,
		StoragePath:   obj.Path,
		GroupName:     app.GroupName,
		School:        app.School,
		ContentType:   contentType,
		Size:          obj.Size,
		UploadedBy:    sess.UserID,
	})
	if err != nil {
		if delErr := s.store.Delete(ctx, obj.Path); delErr != nil {
			logger.WithContext(ctx).WithError(delErr).WithField("path", obj.Path).Warn("🎬 [SHORTFILM] Không xóa được video mồ côi")
		}
		return models.ShortFilm{}, common.ConvertMongoError(err)
	}

	logger.WithContext(ctx).WithFields(map[string]interface{}{
		"application_id": appID,
		"shortfilm_id":   film.ID,
		"size":           film.Size,
	}).Info("🎬 [SHORTFILM] Đã tải phim ngắn lên")
	return film, nil
}

// ListByApplication trả về phim ngắn của hồ sơ, mới nhất trước
func (s *ShortFilmService) ListByApplication(ctx context.Context, sess *session.Session, appID string) ([]models.ShortFilm, error) {
	if _, err := s.application(ctx, sess, appID, false); err != nil {
		return nil, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	films, err := s.films.Find(ctx, bson.M{"applicationId": appID}, opts)
	if err != nil {
		return nil, common.ConvertMongoError(err)
	}
	return films, nil
}

func (s *ShortFilmService) load(ctx context.Context, id string) (models.ShortFilm, error) {
	film, err := s.films.FindOneById(ctx, id)
	if err != nil {
		return models.ShortFilm{}, common.ConvertMongoError(err)
	}
	return film, nil
}

// Get trả về phim ngắn
func (s *ShortFilmService) Get(ctx context.Context, sess *session.Session, id string) (models.ShortFilm, error) {
	film, err := s.load(ctx, id)
	if err != nil {
		return models.ShortFilm{}, err
	}
	if _, err := s.application(ctx, sess, film.ApplicationID, false); err != nil {
		return models.ShortFilm{}, err
	}
	return film, nil
}

// Delete xóa phim ngắn. Không xóa được file trên storage chỉ ghi log.
func (s *ShortFilmService) Delete(ctx context.Context, sess *session.Session, id string) error {
	film, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.application(ctx, sess, film.ApplicationID, true); err != nil {
		return err
	}
	if err := s.films.DeleteById(ctx, id); err != nil {
		return common.ConvertMongoError(err)
	}

	if film.StoragePath != "" {
		if err := s.store.Delete(ctx, film.StoragePath); err != nil {
			logger.WithContext(ctx).WithError(err).WithField("path", film.StoragePath).Warn("🎬 [SHORTFILM] Không xóa được video trên storage")
		}
	}
	logger.Audit(ctx, "shortfilm.delete", map[string]interface{}{"shortfilm_id": id, "application_id": film.ApplicationID})
	return nil
}
