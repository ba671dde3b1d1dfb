// Package common chứa mã lỗi, thông báo và các lỗi định nghĩa sẵn dùng chung cho toàn bộ API.
package common

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// HTTP status code dùng trong response
const (
	StatusOK        = 200 // Thành công
	StatusCreated   = 201 // Tạo mới thành công
	StatusNoContent = 204 // Thành công nhưng không có nội dung trả về

	StatusBadRequest          = 400 // Yêu cầu không hợp lệ
	StatusUnauthorized        = 401 // Chưa xác thực
	StatusForbidden           = 403 // Không có quyền truy cập
	StatusNotFound            = 404 // Không tìm thấy tài nguyên
	StatusConflict            = 409 // Xung đột dữ liệu
	StatusRequestTooLarge     = 413 // File/nội dung quá lớn
	StatusUnsupportedMedia    = 415 // Kiểu file không được hỗ trợ
	StatusTooManyRequests     = 429 // Quá nhiều yêu cầu
	StatusInternalServerError = 500 // Lỗi server
	StatusBadGateway          = 502 // Dịch vụ bên ngoài lỗi
	StatusServiceUnavailable  = 503 // Dịch vụ không khả dụng
)

// Thông báo chung
const (
	MsgSuccess         = "Thao tác thành công"
	MsgValidationError = "Dữ liệu không hợp lệ"
	MsgDatabaseError   = "Lỗi tương tác với cơ sở dữ liệu"
)

// ErrorCode định nghĩa cấu trúc mã lỗi
type ErrorCode struct {
	Code        string // Mã lỗi (ví dụ: AUTH_001)
	Category    string // Phân loại lỗi (ví dụ: Authentication)
	SubCategory string // Phân loại con (ví dụ: Token)
	Description string // Mô tả chi tiết
}

var (
	ErrCodeInternalServer = ErrorCode{Code: "SYS_001", Category: "System", SubCategory: "Internal", Description: "Lỗi hệ thống nội bộ"}
	ErrCodeExternal       = ErrorCode{Code: "SYS_002", Category: "System", SubCategory: "External", Description: "Lỗi từ dịch vụ bên ngoài (Firebase, SMTP, ...)"}

	ErrCodeAuthToken       = ErrorCode{Code: "AUTH_001", Category: "Authentication", SubCategory: "Token", Description: "Lỗi liên quan đến token / phiên đăng nhập"}
	ErrCodeAuthCredentials = ErrorCode{Code: "AUTH_002", Category: "Authentication", SubCategory: "Credentials", Description: "Lỗi thông tin đăng nhập"}
	ErrCodeAuthRole        = ErrorCode{Code: "AUTH_003", Category: "Authentication", SubCategory: "Role", Description: "Lỗi liên quan đến vai trò người dùng"}

	ErrCodeValidationInput  = ErrorCode{Code: "VAL_001", Category: "Validation", SubCategory: "Input", Description: "Lỗi dữ liệu đầu vào"}
	ErrCodeValidationFormat = ErrorCode{Code: "VAL_002", Category: "Validation", SubCategory: "Format", Description: "Lỗi định dạng dữ liệu"}

	ErrCodeDatabaseConnection = ErrorCode{Code: "DB_001", Category: "Database", SubCategory: "Connection", Description: "Lỗi kết nối / ghi cơ sở dữ liệu"}
	ErrCodeDatabaseQuery      = ErrorCode{Code: "DB_002", Category: "Database", SubCategory: "Query", Description: "Lỗi truy vấn dữ liệu"}

	ErrCodeBusinessState     = ErrorCode{Code: "BIZ_001", Category: "Business", SubCategory: "State", Description: "Lỗi trạng thái nghiệp vụ"}
	ErrCodeBusinessOperation = ErrorCode{Code: "BIZ_002", Category: "Business", SubCategory: "Operation", Description: "Lỗi thao tác nghiệp vụ"}
)

// Error là kiểu lỗi chuẩn của API, được HandleResponse chuyển thành JSON
type Error struct {
	Code       ErrorCode // Mã lỗi chi tiết
	Message    string    // Thông báo lỗi
	StatusCode int       // HTTP status code
	Details    any       // Thông tin chi tiết thêm về lỗi
}

func (e *Error) Error() string {
	return e.Message
}

// Is so sánh theo mã lỗi và thông báo, để errors.Is hoạt động với lỗi định nghĩa sẵn dù Details khác nhau
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code.Code == t.Code.Code && e.Message == t.Message
}

// NewError tạo lỗi mới
func NewError(code ErrorCode, message string, statusCode int, details any) error {
	return &Error{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Details:    details,
	}
}

// WithDetails trả về bản sao của lỗi định nghĩa sẵn kèm thông tin chi tiết
func WithDetails(err error, details any) error {
	var e *Error
	if !errors.As(err, &e) {
		return err
	}
	return &Error{Code: e.Code, Message: e.Message, StatusCode: e.StatusCode, Details: details}
}

// Lỗi xác thực / phân quyền
var (
	ErrNotAuthenticated   = NewError(ErrCodeAuthToken, "Vui lòng đăng nhập", StatusUnauthorized, nil)
	ErrTokenInvalid       = NewError(ErrCodeAuthToken, "Token không hợp lệ", StatusUnauthorized, nil)
	ErrTokenExpired       = NewError(ErrCodeAuthToken, "Phiên đăng nhập đã hết hạn", StatusUnauthorized, nil)
	ErrInvalidCredentials = NewError(ErrCodeAuthCredentials, "Thông tin đăng nhập không chính xác", StatusUnauthorized, nil)
	ErrUserBlocked        = NewError(ErrCodeAuthCredentials, "Tài khoản đã bị khóa", StatusForbidden, nil)
	ErrEmailExists        = NewError(ErrCodeAuthCredentials, "Email đã được sử dụng", StatusConflict, nil)
	ErrIdentityProvider   = NewError(ErrCodeExternal, "Dịch vụ xác thực đang gặp sự cố", StatusBadGateway, nil)
	ErrForbidden          = NewError(ErrCodeAuthRole, "Không có quyền thực hiện thao tác này", StatusForbidden, nil)
)

// Lỗi dữ liệu đầu vào
var (
	ErrInvalidInput   = NewError(ErrCodeValidationInput, "Dữ liệu đầu vào không hợp lệ", StatusBadRequest, nil)
	ErrInvalidFormat  = NewError(ErrCodeValidationFormat, "Định dạng dữ liệu không hợp lệ", StatusBadRequest, nil)
	ErrFileTooLarge   = NewError(ErrCodeValidationInput, "File vượt quá dung lượng cho phép", StatusRequestTooLarge, nil)
	ErrFileType       = NewError(ErrCodeValidationInput, "Kiểu file không được hỗ trợ", StatusUnsupportedMedia, nil)
	ErrInvalidFileURL = NewError(ErrCodeValidationFormat, "URL file không hợp lệ", StatusBadRequest, nil)
)

// Lỗi truy vấn / lưu trữ
var (
	ErrNotFound            = NewError(ErrCodeDatabaseQuery, "Không tìm thấy dữ liệu", StatusNotFound, nil)
	ErrDuplicate           = NewError(ErrCodeDatabaseQuery, "Dữ liệu đã tồn tại", StatusConflict, nil)
	ErrApplicationNotFound = NewError(ErrCodeDatabaseQuery, "Không tìm thấy hồ sơ đăng ký", StatusNotFound, nil)
	ErrParentNotFound      = NewError(ErrCodeDatabaseQuery, "Không tìm thấy đối tượng cha của bình luận", StatusNotFound, nil)
	ErrProjectNotFound     = NewError(ErrCodeDatabaseQuery, "Không tìm thấy dự án", StatusNotFound, nil)
	ErrMemberNotFound      = NewError(ErrCodeDatabaseQuery, "Không tìm thấy thành viên", StatusNotFound, nil)
	ErrCommentNotFound     = NewError(ErrCodeDatabaseQuery, "Không tìm thấy bình luận", StatusNotFound, nil)
	ErrPersistence         = NewError(ErrCodeDatabaseConnection, "Không thể lưu dữ liệu, vui lòng thử lại", StatusServiceUnavailable, nil)
	ErrStorage             = NewError(ErrCodeExternal, "Lỗi lưu trữ file", StatusBadGateway, nil)
)

// Lỗi nghiệp vụ
var (
	ErrCannotDeleteOwner    = NewError(ErrCodeBusinessOperation, "Không thể xóa chủ hồ sơ khỏi danh sách thành viên", StatusConflict, nil)
	ErrInvalidTransition    = NewError(ErrCodeBusinessState, "Không thể chuyển trạng thái hồ sơ", StatusConflict, nil)
	ErrApplicationLocked    = NewError(ErrCodeBusinessState, "Hồ sơ đã nộp, không thể lưu nháp", StatusConflict, nil)
	ErrApplicationCancelled = NewError(ErrCodeBusinessState, "Hồ sơ đã bị hủy", StatusConflict, nil)
	ErrStepNotReachable     = NewError(ErrCodeBusinessState, "Chỉ có thể nộp hồ sơ ở bước xem lại", StatusConflict, nil)
)

// FieldError mô tả một trường không hợp lệ
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// NewValidationError tạo ValidationError với danh sách trường lỗi
func NewValidationError(fields ...FieldError) error {
	return NewError(ErrCodeValidationInput, MsgValidationError, StatusBadRequest, fields)
}

// IsValidationError kiểm tra lỗi có phải ValidationError không
func IsValidationError(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code.Code == ErrCodeValidationInput.Code
}

// ValidationFields lấy danh sách trường lỗi từ ValidationError
func ValidationFields(err error) []FieldError {
	var e *Error
	if !errors.As(err, &e) {
		return nil
	}
	fields, _ := e.Details.([]FieldError)
	return fields
}

// Thông báo lỗi MongoDB
const (
	MsgMongoConnection = "Không thể kết nối MongoDB"
	MsgMongoTimeout    = "Kết nối MongoDB bị timeout"
	MsgMongoWrite      = "Lỗi ghi dữ liệu MongoDB"
	MsgMongoDuplicate  = "Dữ liệu trùng lặp trong MongoDB"
	MsgMongoQuery      = "Lỗi truy vấn MongoDB"
)

// Lỗi MongoDB
var (
	ErrMongoConnection = NewError(ErrCodeDatabaseConnection, MsgMongoConnection, StatusServiceUnavailable, nil)
	ErrMongoTimeout    = NewError(ErrCodeDatabaseConnection, MsgMongoTimeout, StatusServiceUnavailable, nil)
	ErrMongoWrite      = NewError(ErrCodeDatabaseConnection, MsgMongoWrite, StatusServiceUnavailable, nil)
	ErrMongoDuplicate  = NewError(ErrCodeDatabaseQuery, MsgMongoDuplicate, StatusConflict, nil)
	ErrMongoQuery      = NewError(ErrCodeDatabaseQuery, MsgMongoQuery, StatusInternalServerError, nil)
)

// ConvertMongoError chuyển đổi lỗi MongoDB sang lỗi hệ thống.
// Lỗi đã là *Error (ErrNotFound, lỗi nghiệp vụ trả về trong transaction, ...) được giữ nguyên.
func ConvertMongoError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return WithDetails(ErrMongoDuplicate, err.Error())
	}
	if mongo.IsNetworkError(err) {
		return WithDetails(ErrMongoConnection, err.Error())
	}
	if mongo.IsTimeout(err) {
		return WithDetails(ErrMongoTimeout, err.Error())
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return WithDetails(ErrMongoQuery, fmt.Sprintf("%s (code %d)", cmdErr.Message, cmdErr.Code))
	}

	var writeErr mongo.WriteException
	if errors.As(err, &writeErr) {
		return WithDetails(ErrMongoWrite, writeErr.Error())
	}

	return WithDetails(ErrPersistence, err.Error())
}
