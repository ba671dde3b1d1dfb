package appdto

import (
	"strings"

	models "film_camp/internal/api/application/models"
	membermodels "film_camp/internal/api/member/models"
	projectmodels "film_camp/internal/api/project/models"
	reviewdto "film_camp/internal/api/review/dto"
	filmmodels "film_camp/internal/api/shortfilm/models"
)

// EnsureDraftInput đầu vào mở (hoặc tạo) hồ sơ nháp cho một dự án.
type EnsureDraftInput struct {
	ProjectID string `json:"projectId" validate:"required"`
}

// ApplicationPatch là các field hồ sơ người nộp được sửa khi lưu nháp, field nil giữ nguyên.
// File đính kèm đi qua upload, trạng thái và điểm đi qua luồng duyệt nên không có ở đây.
type ApplicationPatch struct {
	FullName       *string `json:"fullName" validate:"omitempty,max=200,no_xss"`
	FullNameEN     *string `json:"fullNameEN" validate:"omitempty,max=200,no_xss"`
	Nickname       *string `json:"nickname" validate:"omitempty,max=100,no_xss"`
	Email          *string `json:"email" validate:"omitempty,max=200"`
	Phone          *string `json:"phone" validate:"omitempty,max=20"`
	Gender         *string `json:"gender" validate:"omitempty,member_gender"`
	Age            *int    `json:"age" validate:"omitempty,min=0,max=120"`
	School         *string `json:"school" validate:"omitempty,max=300,no_xss"`
	SchoolAddress  *string `json:"schoolAddress" validate:"omitempty,max=500,no_xss"`
	SchoolMapURL   *string `json:"schoolMapUrl" validate:"omitempty,max=1000"`
	EducationLevel *string `json:"educationLevel" validate:"omitempty,max=100"`
	AdvisorName    *string `json:"advisorName" validate:"omitempty,max=200,no_xss"`
	AdvisorPhone   *string `json:"advisorPhone" validate:"omitempty,max=20"`
	AdvisorEmail   *string `json:"advisorEmail" validate:"omitempty,max=200"`

	GroupName        *string `json:"groupName" validate:"omitempty,max=200,no_xss"`
	GroupDescription *string `json:"groupDescription" validate:"omitempty,max=5000,no_xss"`
	GroupPhotoURL    *string `json:"groupPhotoUrl" validate:"omitempty,max=1000"`

	ProjectTheme      *string           `json:"projectTheme" validate:"omitempty,film_theme"`
	ShortFilmTitle    *string           `json:"shortFilmTitle" validate:"omitempty,max=300,no_xss"`
	Logline           *string           `json:"logline" validate:"omitempty,max=2000,no_xss"`
	ProjectMotivation *string           `json:"projectMotivation" validate:"omitempty,max=10000,no_xss"`
	PortfolioText     *string           `json:"portfolioText" validate:"omitempty,max=10000,no_xss"`
	Equipment         *models.Equipment `json:"equipment"`

	// Chỉ điều hướng form (Next/Previous) được đặt hai field này
	CurrentStep     *int    `json:"-"`
	AdvisorSavedKey *string `json:"-"`
}

type stringField struct {
	key string
	src *string
	dst *string
}

func (p *ApplicationPatch) stringFields(app *models.Application) []stringField {
	return []stringField{
		{"fullName", p.FullName, &app.FullName},
		{"fullNameEN", p.FullNameEN, &app.FullNameEN},
		{"nickname", p.Nickname, &app.Nickname},
		{"email", p.Email, &app.Email},
		{"phone", p.Phone, &app.Phone},
		{"gender", p.Gender, &app.Gender},
		{"school", p.School, &app.School},
		{"schoolAddress", p.SchoolAddress, &app.SchoolAddress},
		{"schoolMapUrl", p.SchoolMapURL, &app.SchoolMapURL},
		{"educationLevel", p.EducationLevel, &app.EducationLevel},
		{"advisorName", p.AdvisorName, &app.AdvisorName},
		{"advisorPhone", p.AdvisorPhone, &app.AdvisorPhone},
		{"advisorEmail", p.AdvisorEmail, &app.AdvisorEmail},
		{"groupName", p.GroupName, &app.GroupName},
		{"groupDescription", p.GroupDescription, &app.GroupDescription},
		{"groupPhotoUrl", p.GroupPhotoURL, &app.GroupPhotoURL},
		{"projectTheme", p.ProjectTheme, &app.ProjectTheme},
		{"shortFilmTitle", p.ShortFilmTitle, &app.ShortFilmTitle},
		{"logline", p.Logline, &app.Logline},
		{"projectMotivation", p.ProjectMotivation, &app.ProjectMotivation},
		{"portfolioText", p.PortfolioText, &app.PortfolioText},
		{"advisorSavedKey", p.AdvisorSavedKey, &app.AdvisorSavedKey},
	}
}

// ApplyTo ghép patch vào bản sao hồ sơ và trả về danh sách field đã đổi cho $set
func (p *ApplicationPatch) ApplyTo(app *models.Application) map[string]interface{} {
	set := make(map[string]interface{})
	for _, f := range p.stringFields(app) {
		if f.src == nil {
			continue
		}
		v := strings.TrimSpace(*f.src)
		*f.dst = v
		set[f.key] = v
	}
	if p.Age != nil {
		app.Age = *p.Age
		set["age"] = *p.Age
	}
	if p.Equipment != nil {
		app.Equipment = *p.Equipment
		set["equipment"] = *p.Equipment
	}
	if p.CurrentStep != nil {
		app.CurrentStep = *p.CurrentStep
		set["currentStep"] = *p.CurrentStep
	}
	return set
}

// SetStatusInput đầu vào đổi trạng thái hồ sơ (admin/editor).
type SetStatusInput struct {
	Status string `json:"status" validate:"required,oneof=draft submitted approved graduated cancelled"`
	Notes  string `json:"notes" validate:"omitempty,max=5000,no_xss"`
}

// ReviewListQuery lọc danh sách hồ sơ ở màn hình duyệt.
type ReviewListQuery struct {
	Status    string `query:"status" validate:"omitempty,oneof=draft submitted approved graduated cancelled"`
	ProjectID string `query:"projectId"`
	Tags      string `query:"tags"` // phân cách bởi dấu phẩy, khớp khi dự án có ít nhất một tag
	Province  string `query:"province"`
	Search    string `query:"search" validate:"omitempty,max=200"`
	Page      int64  `query:"page" validate:"omitempty,min=1"`
}

// TagList tách Tags thành danh sách
func (q *ReviewListQuery) TagList() []string {
	var out []string
	for _, t := range strings.Split(q.Tags, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// SuggestGroupNameQuery đầu vào gợi ý tên nhóm.
type SuggestGroupNameQuery struct {
	School string `query:"school" validate:"required,max=300"`
}

// ReviewItem là hồ sơ trong danh sách duyệt kèm dự án
type ReviewItem struct {
	models.Application `bson:",inline"`
	Project            *projectmodels.Project `json:"project,omitempty" bson:"-"`
}

// ReviewPage là kết quả ListForReview
type ReviewPage struct {
	Items   []ReviewItem `json:"items"`
	Page    int64        `json:"page"`
	HasMore bool         `json:"hasMore"`
}

// StatusStats đếm hồ sơ theo trạng thái
type StatusStats struct {
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"byStatus"`
}

// StatsQuery lọc thống kê theo dự án
type StatsQuery struct {
	ProjectID string `query:"projectId"`
}

// ApplicationDetail là hồ sơ cùng thành viên, phim ngắn và bình luận (chỉ ban giám khảo thấy)
type ApplicationDetail struct {
	Application models.Application     `json:"application"`
	Members     []membermodels.Member  `json:"members"`
	ShortFilms  []filmmodels.ShortFilm `json:"shortFilms"`
	Comments    *reviewdto.CommentPage `json:"comments,omitempty"`
}
