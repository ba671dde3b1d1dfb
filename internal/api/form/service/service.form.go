// Package formsvc điều phối form đăng ký nhiều bước: thông tin liên hệ, nhóm, dự án, xem lại.
// Mỗi lần sang bước mới đều kiểm tra bước hiện tại rồi lưu nháp, chỉ tăng bước khi lưu thành công.
package formsvc

import (
	"context"
	"strings"

	appdto "film_camp/internal/api/application/dto"
	appmodels "film_camp/internal/api/application/models"
	formdto "film_camp/internal/api/form/dto"
	memberdto "film_camp/internal/api/member/dto"
	membermodels "film_camp/internal/api/member/models"
	"film_camp/internal/common"
	"film_camp/internal/global"
	"film_camp/internal/logger"
	"film_camp/internal/session"
	"film_camp/internal/utility"
)

// Các bước của form
const (
	StepContactInfo    = 1
	StepGroupInfo      = 2
	StepProjectDetails = 3
	StepReview         = 4
)

const msgRequired = "Không được để trống"

// Drafts là phần quản lý hồ sơ nháp mà form cần
type Drafts interface {
	Get(ctx context.Context, sess *session.Session, id string) (appmodels.Application, error)
	SaveDraft(ctx context.Context, sess *session.Session, id string, patch *appdto.ApplicationPatch) (appmodels.Application, error)
	Submit(ctx context.Context, sess *session.Session, id string) (appmodels.Application, error)
}

// Teachers ghi giáo viên cố vấn vào danh sách thành viên
type Teachers interface {
	UpsertTeacher(ctx context.Context, sess *session.Session, appID string, input *memberdto.TeacherInput) (membermodels.Member, error)
}

// FormService là service điều phối form
type FormService struct {
	drafts   Drafts
	teachers Teachers
}

// NewFormService tạo FormService. teachers nil thì bỏ qua bước ghi giáo viên.
func NewFormService(drafts Drafts, teachers Teachers) *FormService {
	return &FormService{drafts: drafts, teachers: teachers}
}

type requiredField struct {
	name  string
	value string
}

func stepFields(step int, app *appmodels.Application) []requiredField {
	switch step {
	case StepContactInfo:
		return []requiredField{
			{"fullName", app.FullName},
			{"nickname", app.Nickname},
			{"email", app.Email},
			{"phone", app.Phone},
			{"school", app.School},
			{"educationLevel", app.EducationLevel},
			{"advisorName", app.AdvisorName},
			{"advisorPhone", app.AdvisorPhone},
		}
	case StepGroupInfo:
		return []requiredField{
			{"groupName", app.GroupName},
			{"groupDescription", app.GroupDescription},
		}
	case StepProjectDetails:
		return []requiredField{
			{"projectTheme", app.ProjectTheme},
			{"logline", app.Logline},
			{"projectMotivation", app.ProjectMotivation},
		}
	}
	return nil
}

func isFilmTheme(theme string) bool {
	for _, t := range global.FilmThemes {
		if t == theme {
			return true
		}
	}
	return false
}

// ValidateStep kiểm tra các field bắt buộc của một bước. Bước xem lại không có điều kiện.
func ValidateStep(step int, app *appmodels.Application) error {
	if step < StepContactInfo || step > StepReview {
		return common.NewValidationError(common.FieldError{Field: "step", Message: "Bước không hợp lệ"})
	}
	var fields []common.FieldError
	for _, f := range stepFields(step, app) {
		if strings.TrimSpace(f.value) == "" {
			fields = append(fields, common.FieldError{Field: f.name, Message: msgRequired})
		}
	}
	if step == StepProjectDetails && app.ProjectTheme != "" && !isFilmTheme(app.ProjectTheme) {
		fields = append(fields, common.FieldError{
			Field:   "projectTheme",
			Message: "Chủ đề phải là một trong " + strings.Join(global.FilmThemes, ", "),
		})
	}
	if len(fields) > 0 {
		return common.NewValidationError(fields...)
	}
	return nil
}

// advisorKey đại diện cho bộ thông tin giáo viên đã ghi vào danh sách thành viên
func advisorKey(app *appmodels.Application) string {
	return strings.Join([]string{
		utility.NormalizeName(app.AdvisorName),
		strings.TrimSpace(app.AdvisorPhone),
		strings.ToLower(strings.TrimSpace(app.AdvisorEmail)),
	}, "|")
}

func currentStep(app *appmodels.Application) int {
	if app.CurrentStep < StepContactInfo {
		return StepContactInfo
	}
	if app.CurrentStep > StepReview {
		return StepReview
	}
	return app.CurrentStep
}

// draft đọc hồ sơ còn ở trạng thái nháp
func (s *FormService) draft(ctx context.Context, sess *session.Session, id string) (appmodels.Application, error) {
	app, err := s.drafts.Get(ctx, sess, id)
	if err != nil {
		return appmodels.Application{}, err
	}
	if app.Status != appmodels.StatusDraft {
		return appmodels.Application{}, common.ErrApplicationLocked
	}
	return app, nil
}

// Check trả về kết quả kiểm tra một bước trên dữ liệu đã lưu
func (s *FormService) Check(ctx context.Context, sess *session.Session, id string, step int) (*formdto.StepValidation, error) {
	app, err := s.drafts.Get(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	result := &formdto.StepValidation{Step: step, Valid: true}
	if err := ValidateStep(step, &app); err != nil {
		result.Valid = false
		result.Fields = common.ValidationFields(err)
	}
	return result, nil
}

// Next kiểm tra bước hiện tại trên dữ liệu đã ghép patch, lưu nháp và chuyển sang bước sau
func (s *FormService) Next(ctx context.Context, sess *session.Session, id string, patch *appdto.ApplicationPatch) (appmodels.Application, error) {
	app, err := s.draft(ctx, sess, id)
	if err != nil {
		return appmodels.Application{}, err
	}
	step := currentStep(&app)
	if step == StepReview {
		return appmodels.Application{}, common.WithDetails(common.ErrInvalidInput, "Đã ở bước cuối, chỉ có thể nộp hồ sơ")
	}

	merged := app
	patch.ApplyTo(&merged)
	if err := ValidateStep(step, &merged); err != nil {
		return appmodels.Application{}, err
	}

	if step == StepContactInfo {
		s.saveTeacher(ctx, sess, &merged, patch)
	}

	next := step + 1
	patch.CurrentStep = &next
	saved, err := s.drafts.SaveDraft(ctx, sess, id, patch)
	if err != nil {
		return appmodels.Application{}, err
	}
	logger.WithContext(ctx).WithFields(map[string]interface{}{
		"application_id": id,
		"step":           next,
	}).Debug("🧭 [FORM] Chuyển sang bước tiếp theo")
	return saved, nil
}

// saveTeacher ghi giáo viên cố vấn khi đủ tên và số điện thoại và khác lần ghi trước
func (s *FormService) saveTeacher(ctx context.Context, sess *session.Session, app *appmodels.Application, patch *appdto.ApplicationPatch) {
	if s.teachers == nil {
		return
	}
	if strings.TrimSpace(app.AdvisorName) == "" || strings.TrimSpace(app.AdvisorPhone) == "" {
		return
	}
	key := advisorKey(app)
	if key == app.AdvisorSavedKey {
		return
	}
	_, err := s.teachers.UpsertTeacher(ctx, sess, app.ID, &memberdto.TeacherInput{
		Name:  app.AdvisorName,
		Phone: app.AdvisorPhone,
		Email: app.AdvisorEmail,
	})
	if err != nil {
		logger.WithContext(ctx).WithError(err).WithField("application_id", app.ID).Warn("🧭 [FORM] Không lưu được giáo viên cố vấn")
		return
	}
	patch.AdvisorSavedKey = &key
}

// Previous lùi một bước. Lưu bước hiện tại thất bại chỉ ghi log.
func (s *FormService) Previous(ctx context.Context, sess *session.Session, id string) (appmodels.Application, error) {
	app, err := s.drafts.Get(ctx, sess, id)
	if err != nil {
		return appmodels.Application{}, err
	}
	prev := currentStep(&app) - 1
	if prev < StepContactInfo {
		prev = StepContactInfo
	}

	saved, err := s.drafts.SaveDraft(ctx, sess, id, &appdto.ApplicationPatch{CurrentStep: &prev})
	if err != nil {
		logger.WithContext(ctx).WithError(err).WithField("application_id", id).Warn("🧭 [FORM] Không lưu được bước hiện tại")
		app.CurrentStep = prev
		return app, nil
	}
	return saved, nil
}

// Submit nộp hồ sơ từ bước xem lại sau khi kiểm tra lại các bước 1 đến 3
func (s *FormService) Submit(ctx context.Context, sess *session.Session, id string) (appmodels.Application, error) {
	app, err := s.drafts.Get(ctx, sess, id)
	if err != nil {
		return appmodels.Application{}, err
	}
	if currentStep(&app) != StepReview {
		return appmodels.Application{}, common.WithDetails(common.ErrStepNotReachable, map[string]int{"currentStep": app.CurrentStep})
	}

	var fields []common.FieldError
	for step := StepContactInfo; step < StepReview; step++ {
		if err := ValidateStep(step, &app); err != nil {
			fields = append(fields, common.ValidationFields(err)...)
		}
	}
	if len(fields) > 0 {
		return appmodels.Application{}, common.NewValidationError(fields...)
	}
	return s.drafts.Submit(ctx, sess, id)
}
