// Package projectsvc đọc danh mục dự án, có cache.
package projectsvc

import (
	"context"
	"errors"
	"time"

	projectdto "film_camp/internal/api/project/dto"
	models "film_camp/internal/api/project/models"
	basesvc "film_camp/internal/api/base/service"
	"film_camp/internal/cache"
	"film_camp/internal/common"
	"film_camp/internal/logger"
	"film_camp/internal/session"
	"film_camp/internal/utility"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CacheTTL là thời gian giữ danh sách dự án trong cache
const CacheTTL = 5 * time.Minute

// ProjectService là service đọc dự án
type ProjectService struct {
	store basesvc.BaseServiceMongo[models.Project]
	cache cache.Cache // nil thì luôn đọc MongoDB
}

// NewProjectService tạo ProjectService
func NewProjectService(store basesvc.BaseServiceMongo[models.Project], c cache.Cache) *ProjectService {
	return &ProjectService{store: store, cache: c}
}

func listKey(staff bool) string {
	if staff {
		return cache.PrefixProjects + "list:all"
	}
	return cache.PrefixProjects + "list:public"
}

// loadAll đọc toàn bộ dự án mà người xem được phép thấy, mới nhất trước
func (s *ProjectService) loadAll(ctx context.Context, staff bool) ([]models.Project, error) {
	key := listKey(staff)
	var projects []models.Project
	if s.cache != nil {
		if ok, err := s.cache.Get(ctx, key, &projects); err == nil && ok {
			return projects, nil
		} else if err != nil {
			logger.WithContext(ctx).WithError(err).Warn("🧠 [PROJECT] Đọc cache thất bại")
		}
	}

	filter := bson.M{"status": bson.M{"$ne": models.StatusArchived}}
	if !staff {
		filter["isPublic"] = true
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	projects, err := s.store.Find(ctx, filter, opts)
	if err != nil {
		return nil, common.ConvertMongoError(err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, projects, CacheTTL); err != nil {
			logger.WithContext(ctx).WithError(err).Warn("🧠 [PROJECT] Ghi cache thất bại")
		}
	}
	return projects, nil
}

// List trả về dự án theo bộ lọc. Người không phải admin/editor chỉ thấy dự án công khai.
func (s *ProjectService) List(ctx context.Context, sess *session.Session, q projectdto.ProjectListQuery) ([]models.Project, error) {
	all, err := s.loadAll(ctx, sess.IsStaff())
	if err != nil {
		return nil, err
	}

	result := make([]models.Project, 0, len(all))
	for _, p := range all {
		if q.Status != "" && p.Status != q.Status {
			continue
		}
		if q.Tag != "" && !utility.Contains(p.Tags, q.Tag) {
			continue
		}
		if q.Province != "" && p.Province != q.Province {
			continue
		}
		result = append(result, p)
	}
	return result, nil
}

// Get trả về một dự án. Dự án ẩn coi như không tồn tại với người không phải admin/editor.
func (s *ProjectService) Get(ctx context.Context, sess *session.Session, id string) (models.Project, error) {
	key := cache.PrefixProjects + "id:" + id
	var project models.Project
	found := false
	if s.cache != nil {
		if ok, err := s.cache.Get(ctx, key, &project); err == nil {
			found = ok
		}
	}

	if !found {
		var err error
		project, err = s.store.FindOneById(ctx, id)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return models.Project{}, common.ErrProjectNotFound
			}
			return models.Project{}, common.ConvertMongoError(err)
		}
		if s.cache != nil {
			_ = s.cache.Set(ctx, key, project, CacheTTL)
		}
	}

	if project.Status == models.StatusArchived || (!project.IsPublic && !sess.IsStaff()) {
		return models.Project{}, common.ErrProjectNotFound
	}
	return project, nil
}
