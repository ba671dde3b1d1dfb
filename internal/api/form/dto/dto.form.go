package formdto

import "film_camp/internal/common"

// StepValidation là kết quả kiểm tra một bước của form
type StepValidation struct {
	Step   int                 `json:"step"`
	Valid  bool                `json:"valid"`
	Fields []common.FieldError `json:"fields,omitempty"`
}
