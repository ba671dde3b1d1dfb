package global

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"film_camp/internal/common"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// Chủ đề phim hợp lệ
var FilmThemes = []string{"me-and-world", "me-and-city", "me-and-home", "me-and-you", "me-and-myself"}

// Giới tính thành viên hợp lệ
var MemberGenders = []string{"male", "female", "lgbtqm", "lgbtqf"}

var validatorOnce sync.Once

// InitValidator khởi tạo validator, bản dịch tiếng Anh và các custom rule. Gọi nhiều lần vẫn an toàn.
func InitValidator() {
	validatorOnce.Do(initValidator)
}

func initValidator() {
	Validate = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	Translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(Validate, Translator)

	// Dùng tên json trong thông báo lỗi
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = Validate.RegisterValidation("no_xss", validateNoXSS)
	_ = Validate.RegisterValidation("film_theme", validateOneOf(FilmThemes))
	_ = Validate.RegisterValidation("member_gender", validateOneOf(MemberGenders))

	registerCustomTranslations("no_xss", "film_theme", "member_gender")
}

func registerCustomTranslations(tags ...string) {
	// Bản dịch mặc định đã đăng ký ở trên, chỉ cần hàm noop
	noop := func(ut.Translator) error { return nil }
	for _, tag := range tags {
		_ = Validate.RegisterTranslation(tag, Translator, noop, translateCustom)
	}
}

func translateCustom(_ ut.Translator, fe validator.FieldError) string {
	switch fe.Tag() {
	case "no_xss":
		return fe.Field() + " contains forbidden content"
	case "film_theme":
		return fe.Field() + " must be one of " + strings.Join(FilmThemes, ", ")
	case "member_gender":
		return fe.Field() + " must be one of " + strings.Join(MemberGenders, ", ")
	}
	return fe.Error()
}

// validateNoXSS chặn các đoạn script / HTML nguy hiểm trong text người dùng nhập
func validateNoXSS(fl validator.FieldLevel) bool {
	value := strings.ToLower(fl.Field().String())
	for _, pattern := range []string{
		"<script", "javascript:", "onerror=", "onload=", "onclick=", "onmouseover=",
		"eval(", "document.cookie", "<iframe", "<object", "<embed",
	} {
		if strings.Contains(value, pattern) {
			return false
		}
	}
	return true
}

// validateOneOf cho phép chuỗi rỗng (kết hợp với required nếu bắt buộc)
func validateOneOf(allowed []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if value == "" {
			return true
		}
		for _, a := range allowed {
			if value == a {
				return true
			}
		}
		return false
	}
}

// ValidateStruct chạy validator và chuyển lỗi sang common.NewValidationError
func ValidateStruct(s interface{}) error {
	InitValidator()
	err := Validate.Struct(s)
	if err == nil {
		return nil
	}

	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return common.WithDetails(common.ErrInvalidInput, err.Error())
	}
	fields := make([]common.FieldError, 0, len(ves))
	for _, fe := range ves {
		fields = append(fields, common.FieldError{Field: fe.Field(), Message: fe.Translate(Translator)})
	}
	return common.NewValidationError(fields...)
}
