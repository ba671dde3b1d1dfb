// Package membersvc quản lý danh sách thành viên nhóm của hồ sơ.
package membersvc

import (
	"context"
	"errors"
	"strings"
	"time"

	appmodels "film_camp/internal/api/application/models"
	basesvc "film_camp/internal/api/base/service"
	memberdto "film_camp/internal/api/member/dto"
	models "film_camp/internal/api/member/models"
	"film_camp/internal/common"
	"film_camp/internal/logger"
	"film_camp/internal/session"
	"film_camp/internal/utility"

	"github.com/cenkalti/backoff/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RetryDelays là lịch chờ giữa các lần đọc lại khi hồ sơ vừa tạo chưa đọc được
var RetryDelays = []time.Duration{1 * time.Second, 2 * time.Second, 3 * time.Second, 5 * time.Second, 8 * time.Second}

// MemberService là service thành viên nhóm
type MemberService struct {
	members basesvc.BaseServiceMongo[models.Member]
	apps    basesvc.BaseServiceMongo[appmodels.Application]
	delays  []time.Duration
	now     func() time.Time
}

// NewMemberService tạo MemberService
func NewMemberService(members basesvc.BaseServiceMongo[models.Member], apps basesvc.BaseServiceMongo[appmodels.Application]) *MemberService {
	return &MemberService{members: members, apps: apps, delays: RetryDelays, now: time.Now}
}

// WithRetryDelays đổi lịch chờ của LoadRoster
func (s *MemberService) WithRetryDelays(delays ...time.Duration) *MemberService {
	s.delays = delays
	return s
}

// parent đọc hồ sơ cha, không có thì ErrApplicationNotFound
func (s *MemberService) parent(ctx context.Context, appID string) (appmodels.Application, error) {
	app, err := s.apps.FindOneById(ctx, appID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return appmodels.Application{}, common.ErrApplicationNotFound
		}
		return appmodels.Application{}, common.ConvertMongoError(err)
	}
	return app, nil
}

// authorize kiểm tra hồ sơ tồn tại và sess được sửa (người nộp hoặc admin/editor)
func (s *MemberService) authorize(ctx context.Context, sess *session.Session, appID string) (appmodels.Application, error) {
	if err := session.Require(sess); err != nil {
		return appmodels.Application{}, err
	}
	app, err := s.parent(ctx, appID)
	if err != nil {
		return appmodels.Application{}, err
	}
	if !app.IsOwnedBy(sess.UserID) && !sess.IsStaff() {
		return appmodels.Application{}, common.ErrForbidden
	}
	return app, nil
}

func (s *MemberService) list(ctx context.Context, appID string) ([]models.Member, error) {
	opts := options.Find().SetSort(bson.D{{Key: "isOwner", Value: -1}, {Key: "createdAt", Value: 1}})
	members, err := s.members.Find(ctx, bson.M{"applicationId": appID}, opts)
	if err != nil {
		return nil, common.ConvertMongoError(err)
	}
	return members, nil
}

// ListMembers trả về thành viên của hồ sơ, chủ hồ sơ đứng đầu
func (s *MemberService) ListMembers(ctx context.Context, sess *session.Session, appID string) ([]models.Member, error) {
	if err := session.Require(sess); err != nil {
		return nil, err
	}
	app, err := s.parent(ctx, appID)
	if err != nil {
		return nil, err
	}
	if !app.IsOwnedBy(sess.UserID) && !sess.CanReview() {
		return nil, common.ErrForbidden
	}
	return s.list(ctx, appID)
}

// CreateOwnerIfAbsent thêm người nộp làm chủ hồ sơ. Không làm gì khi đã có chủ hồ sơ,
// đã có thành viên cùng userId hoặc cùng họ tên.
func (s *MemberService) CreateOwnerIfAbsent(ctx context.Context, appID string, owner *session.Session) error {
	if err := session.Require(owner); err != nil {
		return err
	}
	if _, err := s.parent(ctx, appID); err != nil {
		return err
	}
	members, err := s.list(ctx, appID)
	if err != nil {
		return err
	}
	ownerName := utility.NormalizeName(owner.FullName)
	for _, m := range members {
		if m.IsOwner || m.UserID == owner.UserID {
			return nil
		}
		if ownerName != "" && utility.NormalizeName(m.FullNameTH) == ownerName {
			return nil
		}
	}

	m := models.Member{
		ApplicationID: appID,
		FullNameTH:    strings.TrimSpace(owner.FullName),
		Nickname:      owner.Nickname,
		Gender:        owner.Gender,
		Birthday:      owner.Birthday,
		Age:           utility.AgeFromBirthday(owner.Birthday, s.now()),
		Roles:         []string{models.RoleAdmin},
		Email:         strings.TrimSpace(owner.Email),
		Phone:         strings.TrimSpace(owner.Phone),
		UserID:        owner.UserID,
		IsOwner:       true,
		IsAdmin:       true,
		Stay:          true,
	}
	// Hồ sơ cá nhân chưa có email/số điện thoại thì chờ lần lưu sau
	if err := checkContact(&m); err != nil {
		return err
	}
	_, err = s.members.InsertOne(ctx, m)
	if err != nil {
		converted := common.ConvertMongoError(err)
		// Partial unique index: request khác vừa tạo chủ hồ sơ
		if errors.Is(converted, common.ErrMongoDuplicate) {
			return nil
		}
		return converted
	}
	logger.WithContext(ctx).WithField("application_id", appID).Info("👥 [MEMBER] Đã thêm chủ hồ sơ vào danh sách thành viên")
	return nil
}

// UpsertTeacher cập nhật giáo viên cố vấn đã có hoặc thêm mới
func (s *MemberService) UpsertTeacher(ctx context.Context, sess *session.Session, appID string, input *memberdto.TeacherInput) (models.Member, error) {
	if _, err := s.authorize(ctx, sess, appID); err != nil {
		return models.Member{}, err
	}
	name := strings.TrimSpace(input.Name)
	phone := strings.TrimSpace(input.Phone)
	email := strings.TrimSpace(input.Email)

	if err := checkContact(&models.Member{Roles: []string{models.RoleTeacher}, Email: email, Phone: phone}); err != nil {
		return models.Member{}, err
	}

	existing, err := s.members.FindOne(ctx, bson.M{"applicationId": appID, "roles": models.RoleTeacher}, nil)
	if err == nil {
		updated, err := s.members.UpdateById(ctx, existing.ID, bson.M{
			"fullNameTH":         name,
			"phone":              phone,
			"email":              email,
			"isTeacherAttending": true,
		})
		if err != nil {
			return models.Member{}, common.ConvertMongoError(err)
		}
		return updated, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return models.Member{}, common.ConvertMongoError(err)
	}

	created, err := s.members.InsertOne(ctx, models.Member{
		ApplicationID:      appID,
		FullNameTH:         name,
		Roles:              []string{models.RoleTeacher},
		Email:              email,
		Phone:              phone,
		IsTeacherAttending: true,
		Stay:               true,
	})
	if err != nil {
		return models.Member{}, common.ConvertMongoError(err)
	}
	return created, nil
}

// checkContact: vai trò admin/teacher cần email và số điện thoại
func checkContact(m *models.Member) error {
	if !models.NeedsContact(m.Roles) {
		return nil
	}
	var fields []common.FieldError
	if strings.TrimSpace(m.Email) == "" {
		fields = append(fields, common.FieldError{Field: "email", Message: "Email là bắt buộc với vai trò admin/teacher"})
	}
	if strings.TrimSpace(m.Phone) == "" {
		fields = append(fields, common.FieldError{Field: "phone", Message: "Số điện thoại là bắt buộc với vai trò admin/teacher"})
	}
	if len(fields) > 0 {
		return common.NewValidationError(fields...)
	}
	return nil
}

func cleanRoles(roles []string) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		if r = strings.TrimSpace(r); r != "" && !utility.Contains(out, r) {
			out = append(out, r)
		}
	}
	return out
}

// CreateMember thêm thành viên
func (s *MemberService) CreateMember(ctx context.Context, sess *session.Session, appID string, input *memberdto.MemberInput) (models.Member, error) {
	if _, err := s.authorize(ctx, sess, appID); err != nil {
		return models.Member{}, err
	}

	m := models.Member{
		ApplicationID:      appID,
		FullNameTH:         strings.TrimSpace(input.FullNameTH),
		FullNameEN:         strings.TrimSpace(input.FullNameEN),
		Nickname:           strings.TrimSpace(input.Nickname),
		Gender:             input.Gender,
		Birthday:           input.Birthday,
		Roles:              cleanRoles(input.Roles),
		Email:              strings.TrimSpace(input.Email),
		Phone:              strings.TrimSpace(input.Phone),
		IsTeacherAttending: input.IsTeacherAttending,
		Stay:               true,
	}
	if input.Stay != nil {
		m.Stay = *input.Stay
	}
	if input.Age != nil {
		m.Age = *input.Age
	} else {
		m.Age = utility.AgeFromBirthday(m.Birthday, s.now())
	}
	m.IsAdmin = m.HasRole(models.RoleAdmin)

	if len(m.Roles) == 0 {
		return models.Member{}, common.NewValidationError(common.FieldError{Field: "roles", Message: "Cần ít nhất một vai trò"})
	}
	if err := checkContact(&m); err != nil {
		return models.Member{}, err
	}

	created, err := s.members.InsertOne(ctx, m)
	if err != nil {
		return models.Member{}, common.ConvertMongoError(err)
	}
	return created, nil
}

// loadMember đọc thành viên thuộc hồ sơ
func (s *MemberService) loadMember(ctx context.Context, appID, memberID string) (models.Member, error) {
	m, err := s.members.FindOne(ctx, bson.M{"_id": memberID, "applicationId": appID}, nil)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return models.Member{}, common.ErrMemberNotFound
		}
		return models.Member{}, common.ConvertMongoError(err)
	}
	return m, nil
}

// UpdateMember sửa thông tin thành viên
func (s *MemberService) UpdateMember(ctx context.Context, sess *session.Session, appID, memberID string, patch *memberdto.MemberPatch) (models.Member, error) {
	if _, err := s.authorize(ctx, sess, appID); err != nil {
		return models.Member{}, err
	}
	m, err := s.loadMember(ctx, appID, memberID)
	if err != nil {
		return models.Member{}, err
	}

	set := bson.M{}
	str := func(key string, src *string, dst *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
			set[key] = *dst
		}
	}
	str("fullNameTH", patch.FullNameTH, &m.FullNameTH)
	str("fullNameEN", patch.FullNameEN, &m.FullNameEN)
	str("nickname", patch.Nickname, &m.Nickname)
	str("gender", patch.Gender, &m.Gender)
	str("birthday", patch.Birthday, &m.Birthday)
	str("email", patch.Email, &m.Email)
	str("phone", patch.Phone, &m.Phone)
	if patch.Age != nil {
		m.Age = *patch.Age
		set["age"] = m.Age
	} else if patch.Birthday != nil {
		m.Age = utility.AgeFromBirthday(m.Birthday, s.now())
		set["age"] = m.Age
	}
	if patch.Roles != nil {
		m.Roles = cleanRoles(patch.Roles)
		if len(m.Roles) == 0 {
			return models.Member{}, common.NewValidationError(common.FieldError{Field: "roles", Message: "Cần ít nhất một vai trò"})
		}
		m.IsAdmin = m.HasRole(models.RoleAdmin)
		set["roles"] = m.Roles
		set["isAdmin"] = m.IsAdmin
	}
	if patch.IsTeacherAttending != nil {
		set["isTeacherAttending"] = *patch.IsTeacherAttending
	}
	if patch.Stay != nil {
		set["stay"] = *patch.Stay
	}
	if err := checkContact(&m); err != nil {
		return models.Member{}, err
	}

	updated, err := s.members.UpdateById(ctx, memberID, set)
	if err != nil {
		return models.Member{}, common.ConvertMongoError(err)
	}
	return updated, nil
}

// DeleteMember xóa thành viên, không xóa được chủ hồ sơ
func (s *MemberService) DeleteMember(ctx context.Context, sess *session.Session, appID, memberID string) error {
	if _, err := s.authorize(ctx, sess, appID); err != nil {
		return err
	}
	m, err := s.loadMember(ctx, appID, memberID)
	if err != nil {
		return err
	}
	if m.IsOwner {
		return common.ErrCannotDeleteOwner
	}
	if err := s.members.DeleteById(ctx, memberID); err != nil {
		return common.ConvertMongoError(err)
	}
	return nil
}

// SetStay đánh dấu thành viên ở lại trại hay không
func (s *MemberService) SetStay(ctx context.Context, sess *session.Session, appID, memberID string, stay bool) (models.Member, error) {
	if _, err := s.authorize(ctx, sess, appID); err != nil {
		return models.Member{}, err
	}
	if _, err := s.loadMember(ctx, appID, memberID); err != nil {
		return models.Member{}, err
	}
	updated, err := s.members.UpdateById(ctx, memberID, bson.M{"stay": stay})
	if err != nil {
		return models.Member{}, common.ConvertMongoError(err)
	}
	return updated, nil
}

// scheduleBackOff trả lần lượt các khoảng chờ cố định rồi dừng
type scheduleBackOff struct {
	delays []time.Duration
	next   int
}

func (b *scheduleBackOff) NextBackOff() time.Duration {
	if b.next >= len(b.delays) {
		return backoff.Stop
	}
	d := b.delays[b.next]
	b.next++
	return d
}

func (b *scheduleBackOff) Reset() { b.next = 0 }

// LoadRoster đọc danh sách thành viên ngay sau khi hồ sơ được tạo. Hồ sơ chưa đọc được thì
// thử lại theo RetryDelays, đọc được thì thêm chủ hồ sơ (nếu sess là người nộp) rồi trả danh sách.
func (s *MemberService) LoadRoster(ctx context.Context, sess *session.Session, appID string) ([]models.Member, error) {
	if err := session.Require(sess); err != nil {
		return nil, err
	}
	log := logger.WithContext(ctx).WithField("application_id", appID)

	app, err := backoff.Retry(ctx, func() (appmodels.Application, error) {
		app, err := s.parent(ctx, appID)
		if err != nil && !errors.Is(err, common.ErrApplicationNotFound) {
			return app, backoff.Permanent(err)
		}
		return app, err
	},
		backoff.WithBackOff(&scheduleBackOff{delays: s.delays}),
		backoff.WithNotify(func(err error, d time.Duration) {
			log.WithField("retry_in", d.String()).Warn("👥 [MEMBER] Chưa đọc được hồ sơ, thử lại")
		}),
	)
	if err != nil {
		return nil, err
	}
	if !app.IsOwnedBy(sess.UserID) && !sess.CanReview() {
		return nil, common.ErrForbidden
	}

	if app.IsOwnedBy(sess.UserID) {
		if err := s.CreateOwnerIfAbsent(ctx, appID, sess); err != nil {
			log.WithError(err).Warn("👥 [MEMBER] Không tạo được chủ hồ sơ")
		}
	}
	return s.list(ctx, appID)
}
