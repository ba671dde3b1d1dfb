// Package appsvc quản lý vòng đời hồ sơ đăng ký: nháp, nộp, duyệt, hủy.
package appsvc

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	appdto "film_camp/internal/api/application/dto"
	models "film_camp/internal/api/application/models"
	basesvc "film_camp/internal/api/base/service"
	membermodels "film_camp/internal/api/member/models"
	projectdto "film_camp/internal/api/project/dto"
	projectmodels "film_camp/internal/api/project/models"
	reviewdto "film_camp/internal/api/review/dto"
	reviewmodels "film_camp/internal/api/review/models"
	filmmodels "film_camp/internal/api/shortfilm/models"
	"film_camp/internal/common"
	"film_camp/internal/delivery"
	"film_camp/internal/logger"
	"film_camp/internal/session"
	"film_camp/internal/utility"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"
)

// DefaultItemsPerPage dùng khi cấu hình ITEMS_PER_PAGE không hợp lệ
const DefaultItemsPerPage = 10

// ProjectLookup đọc danh mục dự án
type ProjectLookup interface {
	Get(ctx context.Context, sess *session.Session, id string) (projectmodels.Project, error)
	List(ctx context.Context, sess *session.Session, q projectdto.ProjectListQuery) ([]projectmodels.Project, error)
}

// Roster là phần danh sách thành viên mà hồ sơ cần
type Roster interface {
	CreateOwnerIfAbsent(ctx context.Context, appID string, owner *session.Session) error
	ListMembers(ctx context.Context, sess *session.Session, appID string) ([]membermodels.Member, error)
}

// CommentLister đọc bình luận của hồ sơ
type CommentLister interface {
	ListComments(ctx context.Context, sess *session.Session, parent reviewmodels.ParentRef, visible int) (*reviewdto.CommentPage, error)
}

// FilmLister đọc phim ngắn của hồ sơ
type FilmLister interface {
	ListByApplication(ctx context.Context, sess *session.Session, appID string) ([]filmmodels.ShortFilm, error)
}

// Mailer đưa thư vào hàng đợi gửi
type Mailer interface {
	Enqueue(ctx context.Context, msg delivery.Message) error
}

// Options là các phụ thuộc của ApplicationService. Roster, Comments, Films, Mailer có thể nil.
type Options struct {
	Projects     ProjectLookup
	Roster       Roster
	Comments     CommentLister
	Films        FilmLister
	Mailer       Mailer
	ItemsPerPage int64
	FrontendURL  string
}

// ApplicationService là service hồ sơ đăng ký
type ApplicationService struct {
	apps basesvc.BaseServiceMongo[models.Application]
	opts Options
	now  func() time.Time
}

// NewApplicationService tạo ApplicationService
func NewApplicationService(apps basesvc.BaseServiceMongo[models.Application], opts Options) *ApplicationService {
	if opts.ItemsPerPage <= 0 {
		opts.ItemsPerPage = DefaultItemsPerPage
	}
	return &ApplicationService{apps: apps, opts: opts, now: time.Now}
}

// SetRoster gắn roster sau khi tạo, member service cần store hồ sơ nên được tạo sau
func (s *ApplicationService) SetRoster(r Roster) {
	s.opts.Roster = r
}

// SetComments gắn nguồn bình luận cho màn chi tiết
func (s *ApplicationService) SetComments(c CommentLister) {
	s.opts.Comments = c
}

// SetFilms gắn nguồn phim ngắn cho màn chi tiết
func (s *ApplicationService) SetFilms(f FilmLister) {
	s.opts.Films = f
}

// persistence đổi lỗi ghi dữ liệu thành ErrPersistence, lỗi nghiệp vụ giữ nguyên
func persistence(err error) error {
	var appErr *common.Error
	if errors.As(err, &appErr) && appErr.Code.Code != common.ErrCodeDatabaseConnection.Code {
		return err
	}
	return common.WithDetails(common.ErrPersistence, err.Error())
}

// load đọc hồ sơ theo id, không có thì ErrApplicationNotFound
func (s *ApplicationService) load(ctx context.Context, id string) (models.Application, error) {
	app, err := s.apps.FindOneById(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return models.Application{}, common.ErrApplicationNotFound
		}
		return models.Application{}, common.ConvertMongoError(err)
	}
	return app, nil
}

// loadOwned đọc hồ sơ mà sess là người nộp hoặc admin/editor
func (s *ApplicationService) loadOwned(ctx context.Context, sess *session.Session, id string) (models.Application, error) {
	if err := session.Require(sess); err != nil {
		return models.Application{}, err
	}
	app, err := s.load(ctx, id)
	if err != nil {
		return models.Application{}, err
	}
	if !app.IsOwnedBy(sess.UserID) && !sess.IsStaff() {
		return models.Application{}, common.ErrForbidden
	}
	return app, nil
}

// EnsureDraft trả về hồ sơ của người dùng cho dự án, chưa có thì tạo bản nháp
func (s *ApplicationService) EnsureDraft(ctx context.Context, sess *session.Session, projectID string) (models.Application, error) {
	if err := session.Require(sess); err != nil {
		return models.Application{}, err
	}
	project, err := s.opts.Projects.Get(ctx, sess, projectID)
	if err != nil {
		return models.Application{}, err
	}

	if app, found, err := s.findActive(ctx, projectID, sess.UserID); err != nil {
		return models.Application{}, err
	} else if found {
		return app, nil
	}

	id := models.ApplicationID(projectID, sess.UserID)
	groupName := ""
	if school := strings.TrimSpace(sess.School); school != "" {
		if groupName, err = s.SuggestGroupName(ctx, school); err != nil {
			return models.Application{}, err
		}
	}

	onInsert := bson.M{
		"projectId":      projectID,
		"userId":         sess.UserID,
		"projectTitle":   project.Title,
		"status":         models.StatusDraft,
		"currentStep":    1,
		"fullName":       sess.FullName,
		"nickname":       sess.Nickname,
		"email":          sess.Email,
		"phone":          sess.Phone,
		"gender":         sess.Gender,
		"age":            utility.AgeFromBirthday(sess.Birthday, s.now()),
		"school":         sess.School,
		"educationLevel": sess.EducationLevel,
		"groupName":      groupName,
		"projectFiles":   bson.A{},
		"rating":         0,
		"commentCount":   0,
	}
	if _, err := s.apps.Upsert(ctx, bson.M{"_id": id}, &basesvc.UpdateData{SetOnInsert: onInsert}); err != nil {
		converted := common.ConvertMongoError(err)
		if !errors.Is(converted, common.ErrMongoDuplicate) {
			return models.Application{}, persistence(converted)
		}
		// Một request khác vừa tạo hồ sơ với id khác cho cùng (project, user)
		if app, found, err := s.findActive(ctx, projectID, sess.UserID); err != nil {
			return models.Application{}, err
		} else if found {
			return app, nil
		}
		return models.Application{}, persistence(converted)
	}

	// Đọc lại để chắc chắn bản ghi đã được lưu
	app, err := s.load(ctx, id)
	if err != nil {
		return models.Application{}, err
	}
	if app.Status == models.StatusCancelled {
		return models.Application{}, common.ErrApplicationCancelled
	}

	logger.WithContext(ctx).WithFields(map[string]interface{}{
		"application_id": app.ID,
		"project_id":     projectID,
	}).Info("📝 [APPLICATION] Mở hồ sơ nháp")
	return app, nil
}

// findActive tìm hồ sơ chưa hủy của user cho dự án
func (s *ApplicationService) findActive(ctx context.Context, projectID, userID string) (models.Application, bool, error) {
	app, err := s.apps.FindOne(ctx, bson.M{
		"projectId": projectID,
		"userId":    userID,
		"status":    bson.M{"$ne": models.StatusCancelled},
	}, nil)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return models.Application{}, false, nil
		}
		return models.Application{}, false, common.ConvertMongoError(err)
	}
	return app, true, nil
}

// SaveDraft ghi các field đã đổi vào hồ sơ nháp. Hồ sơ đã nộp không lưu nháp được nữa.
func (s *ApplicationService) SaveDraft(ctx context.Context, sess *session.Session, id string, patch *appdto.ApplicationPatch) (models.Application, error) {
	app, err := s.loadOwned(ctx, sess, id)
	if err != nil {
		return models.Application{}, err
	}
	if app.Status != models.StatusDraft {
		return models.Application{}, common.ErrApplicationLocked
	}

	set := patch.ApplyTo(&app)
	updated, err := s.apps.UpdateOne(ctx, bson.M{"_id": id, "status": models.StatusDraft}, bson.M(set))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return models.Application{}, common.ErrApplicationLocked
		}
		return models.Application{}, persistence(common.ConvertMongoError(err))
	}

	if s.opts.Roster != nil && updated.IsOwnedBy(sess.UserID) {
		if err := s.opts.Roster.CreateOwnerIfAbsent(ctx, id, sess); err != nil {
			logger.WithContext(ctx).WithError(err).WithField("application_id", id).Warn("📝 [APPLICATION] Không tạo được chủ hồ sơ trong danh sách thành viên")
		}
	}
	return updated, nil
}

// transition chuyển trạng thái có điều kiện trên trạng thái hiện tại
func (s *ApplicationService) transition(ctx context.Context, app models.Application, to string, set bson.M) (models.Application, error) {
	if !models.CanTransition(app.Status, to) {
		return models.Application{}, common.WithDetails(common.ErrInvalidTransition, map[string]string{"from": app.Status, "to": to})
	}
	set["status"] = to
	updated, err := s.apps.UpdateOne(ctx, bson.M{"_id": app.ID, "status": app.Status}, set)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			// Trạng thái đã bị đổi bởi request khác
			return models.Application{}, common.WithDetails(common.ErrInvalidTransition, map[string]string{"from": app.Status, "to": to})
		}
		return models.Application{}, persistence(common.ConvertMongoError(err))
	}
	return updated, nil
}

// Submit nộp hồ sơ nháp
func (s *ApplicationService) Submit(ctx context.Context, sess *session.Session, id string) (models.Application, error) {
	app, err := s.loadOwned(ctx, sess, id)
	if err != nil {
		return models.Application{}, err
	}
	updated, err := s.transition(ctx, app, models.StatusSubmitted, bson.M{
		"submittedAt":  s.now().UnixMilli(),
		"reviewStatus": models.ReviewPending,
	})
	if err != nil {
		return models.Application{}, err
	}
	logger.Audit(ctx, "application.submit", map[string]interface{}{"application_id": id})
	return updated, nil
}

// SetStatus đổi trạng thái hồ sơ (admin/editor) và gửi thư báo cho người nộp
func (s *ApplicationService) SetStatus(ctx context.Context, sess *session.Session, id string, input *appdto.SetStatusInput) (models.Application, error) {
	if err := session.RequireRole(sess, session.RoleAdmin, session.RoleEditor); err != nil {
		return models.Application{}, err
	}
	app, err := s.load(ctx, id)
	if err != nil {
		return models.Application{}, err
	}

	now := s.now().UnixMilli()
	set := bson.M{
		"reviewedBy":   sess.UserID,
		"reviewedAt":   now,
		"reviewNotes":  strings.TrimSpace(input.Notes),
		"reviewStatus": models.ReviewReviewed,
	}
	if input.Status == models.StatusSubmitted {
		set["submittedAt"] = now
		set["reviewStatus"] = models.ReviewPending
	}
	updated, err := s.transition(ctx, app, input.Status, set)
	if err != nil {
		return models.Application{}, err
	}

	logger.Audit(ctx, "application.status", map[string]interface{}{
		"application_id": id,
		"from":           app.Status,
		"to":             input.Status,
	})
	s.notifyStatus(ctx, updated)
	return updated, nil
}

// notifyStatus đưa thư báo trạng thái vào hàng đợi, lỗi chỉ ghi log
func (s *ApplicationService) notifyStatus(ctx context.Context, app models.Application) {
	if s.opts.Mailer == nil || app.Email == "" {
		return
	}
	link := strings.TrimRight(s.opts.FrontendURL, "/") + "/applications/" + app.ID
	msg, err := delivery.StatusChangedMail(app.Email, app.FullName, app.GroupName, app.ProjectTitle, app.Status, app.ReviewNotes, link)
	if err == nil {
		err = s.opts.Mailer.Enqueue(ctx, msg)
	}
	if err != nil {
		logger.WithContext(ctx).WithError(err).WithField("application_id", app.ID).Warn("📧 [APPLICATION] Không đưa được thư báo trạng thái vào hàng đợi")
	}
}

// Cancel hủy hồ sơ đã nộp
func (s *ApplicationService) Cancel(ctx context.Context, sess *session.Session, id string) (models.Application, error) {
	app, err := s.loadOwned(ctx, sess, id)
	if err != nil {
		return models.Application{}, err
	}
	updated, err := s.transition(ctx, app, models.StatusCancelled, bson.M{})
	if err != nil {
		return models.Application{}, err
	}
	logger.Audit(ctx, "application.cancel", map[string]interface{}{"application_id": id})
	return updated, nil
}

// Get trả về hồ sơ cho người nộp hoặc ban giám khảo
func (s *ApplicationService) Get(ctx context.Context, sess *session.Session, id string) (models.Application, error) {
	if err := session.Require(sess); err != nil {
		return models.Application{}, err
	}
	app, err := s.load(ctx, id)
	if err != nil {
		return models.Application{}, err
	}
	if !app.IsOwnedBy(sess.UserID) && !sess.CanReview() {
		return models.Application{}, common.ErrForbidden
	}
	return app, nil
}

// Detail đọc hồ sơ cùng thành viên, phim ngắn và bình luận song song
func (s *ApplicationService) Detail(ctx context.Context, sess *session.Session, id string) (*appdto.ApplicationDetail, error) {
	app, err := s.Get(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	detail := &appdto.ApplicationDetail{
		Application: app,
		Members:     []membermodels.Member{},
		ShortFilms:  []filmmodels.ShortFilm{},
	}

	g, gctx := errgroup.WithContext(ctx)
	if s.opts.Roster != nil {
		g.Go(func() error {
			members, err := s.opts.Roster.ListMembers(gctx, sess, id)
			if err != nil {
				return err
			}
			detail.Members = members
			return nil
		})
	}
	if s.opts.Films != nil {
		g.Go(func() error {
			films, err := s.opts.Films.ListByApplication(gctx, sess, id)
			if err != nil {
				return err
			}
			detail.ShortFilms = films
			return nil
		})
	}
	if s.opts.Comments != nil && sess.CanReview() {
		g.Go(func() error {
			page, err := s.opts.Comments.ListComments(gctx, sess, reviewmodels.ParentRef{Kind: reviewmodels.KindApplication, ID: id}, 0)
			if err != nil {
				return err
			}
			detail.Comments = page
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return detail, nil
}

// ListMine trả về hồ sơ của người dùng hiện tại
func (s *ApplicationService) ListMine(ctx context.Context, sess *session.Session) ([]models.Application, error) {
	if err := session.Require(sess); err != nil {
		return nil, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "submittedAt", Value: -1}, {Key: "updatedAt", Value: -1}})
	apps, err := s.apps.Find(ctx, bson.M{"userId": sess.UserID}, opts)
	if err != nil {
		return nil, common.ConvertMongoError(err)
	}
	return apps, nil
}

// projectFilter trả về danh sách projectId khớp tags/province, nil khi không lọc theo dự án
func projectFilter(q *appdto.ReviewListQuery, byID map[string]*projectmodels.Project) []string {
	tags := q.TagList()
	if len(tags) == 0 && q.Province == "" {
		return nil
	}
	ids := []string{}
	for id, p := range byID {
		if q.Province != "" && p.Province != q.Province {
			continue
		}
		if len(tags) > 0 {
			matched := false
			for _, t := range tags {
				if utility.Contains(p.Tags, t) {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		}
		ids = append(ids, id)
	}
	return ids
}

// ListForReview trả về hồ sơ cho ban giám khảo, mới nộp trước, mỗi trang thêm ItemsPerPage hồ sơ
func (s *ApplicationService) ListForReview(ctx context.Context, sess *session.Session, q *appdto.ReviewListQuery) (*appdto.ReviewPage, error) {
	if err := session.Require(sess); err != nil {
		return nil, err
	}
	if !sess.CanReview() {
		return nil, common.ErrForbidden
	}

	projects, err := s.opts.Projects.List(ctx, sess, projectdto.ProjectListQuery{})
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*projectmodels.Project, len(projects))
	for i := range projects {
		byID[projects[i].ID] = &projects[i]
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	result := &appdto.ReviewPage{Items: []appdto.ReviewItem{}, Page: page}

	filter := bson.M{}
	if q.Status != "" {
		filter["status"] = q.Status
	}
	if ids := projectFilter(q, byID); ids != nil {
		if q.ProjectID != "" {
			if !utility.Contains(ids, q.ProjectID) {
				return result, nil
			}
			ids = []string{q.ProjectID}
		}
		if len(ids) == 0 {
			return result, nil
		}
		filter["projectId"] = bson.M{"$in": ids}
	} else if q.ProjectID != "" {
		filter["projectId"] = q.ProjectID
	}
	if search := strings.TrimSpace(q.Search); search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
		filter["$or"] = bson.A{bson.M{"groupName": re}, bson.M{"school": re}}
	}

	limit := s.opts.ItemsPerPage * page
	opts := options.Find().
		SetSort(bson.D{{Key: "submittedAt", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(limit + 1)
	apps, err := s.apps.Find(ctx, filter, opts)
	if err != nil {
		return nil, common.ConvertMongoError(err)
	}
	if int64(len(apps)) > limit {
		result.HasMore = true
		apps = apps[:limit]
	}
	for _, app := range apps {
		result.Items = append(result.Items, appdto.ReviewItem{Application: app, Project: byID[app.ProjectID]})
	}
	return result, nil
}

// Stats đếm hồ sơ theo từng trạng thái
func (s *ApplicationService) Stats(ctx context.Context, sess *session.Session, q *appdto.StatsQuery) (*appdto.StatusStats, error) {
	if err := session.RequireRole(sess, session.RoleAdmin, session.RoleEditor); err != nil {
		return nil, err
	}

	counts := make([]int64, len(models.Statuses))
	g, gctx := errgroup.WithContext(ctx)
	for i, status := range models.Statuses {
		g.Go(func() error {
			filter := bson.M{"status": status}
			if q != nil && q.ProjectID != "" {
				filter["projectId"] = q.ProjectID
			}
			n, err := s.apps.CountDocuments(gctx, filter)
			if err != nil {
				return common.ConvertMongoError(err)
			}
			counts[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &appdto.StatusStats{ByStatus: make(map[string]int64, len(models.Statuses))}
	for i, status := range models.Statuses {
		stats.ByStatus[status] = counts[i]
		stats.Total += counts[i]
	}
	return stats, nil
}

// SuggestGroupName gợi ý tên nhóm: tên trường nếu chưa có nhóm nào, không thì "trường N+1"
func (s *ApplicationService) SuggestGroupName(ctx context.Context, school string) (string, error) {
	school = strings.TrimSpace(school)
	if school == "" {
		return "", common.NewValidationError(common.FieldError{Field: "school", Message: "Tên trường là bắt buộc"})
	}
	n, err := s.apps.CountDocuments(ctx, bson.M{"school": school})
	if err != nil {
		return "", common.ConvertMongoError(err)
	}
	if n == 0 {
		return school, nil
	}
	return fmt.Sprintf("%s %d", school, n+1), nil
}

// AttachFile thêm file dự án vào hồ sơ nháp
func (s *ApplicationService) AttachFile(ctx context.Context, sess *session.Session, id string, file models.ProjectFile) (models.Application, error) {
	app, err := s.loadOwned(ctx, sess, id)
	if err != nil {
		return models.Application{}, err
	}
	if app.Status != models.StatusDraft {
		return models.Application{}, common.ErrApplicationLocked
	}
	updated, err := s.apps.UpdateOne(ctx, bson.M{"_id": id, "status": models.StatusDraft},
		&basesvc.UpdateData{Push: map[string]interface{}{"projectFiles": file}})
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return models.Application{}, common.ErrApplicationLocked
		}
		return models.Application{}, persistence(common.ConvertMongoError(err))
	}
	return updated, nil
}

// DetachFile gỡ file dự án khỏi hồ sơ nháp theo URL
func (s *ApplicationService) DetachFile(ctx context.Context, sess *session.Session, id, fileURL string) (models.Application, error) {
	app, err := s.loadOwned(ctx, sess, id)
	if err != nil {
		return models.Application{}, err
	}
	if app.Status != models.StatusDraft {
		return models.Application{}, common.ErrApplicationLocked
	}
	updated, err := s.apps.UpdateOne(ctx, bson.M{"_id": id, "status": models.StatusDraft},
		&basesvc.UpdateData{Pull: map[string]interface{}{"projectFiles": bson.M{"url": fileURL}}})
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return models.Application{}, common.ErrApplicationLocked
		}
		return models.Application{}, persistence(common.ConvertMongoError(err))
	}
	return updated, nil
}
