// Package authsvc - service người dùng: đăng ký, đăng nhập, phiên đăng nhập, hồ sơ cá nhân, phân quyền.
package authsvc

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	authdto "film_camp/internal/api/auth/dto"
	models "film_camp/internal/api/auth/models"
	basesvc "film_camp/internal/api/base/service"
	"film_camp/internal/cache"
	"film_camp/internal/common"
	"film_camp/internal/delivery"
	"film_camp/internal/logger"
	"film_camp/internal/session"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SessionCacheTTL là thời gian giữ session đã resolve trong cache
const SessionCacheTTL = 2 * time.Minute

// SearchLimit là số người dùng tối đa trả về khi tìm kiếm
const SearchLimit = 20

// Mailer đưa thư vào hàng đợi gửi
type Mailer interface {
	Enqueue(ctx context.Context, msg delivery.Message) error
}

// cachedSession là giá trị lưu trong cache theo user id
type cachedSession struct {
	Token   string          `json:"token"`
	Session session.Session `json:"session"`
}

// UserService là cấu trúc chứa các phương thức liên quan đến người dùng
type UserService struct {
	users    basesvc.BaseServiceMongo[models.User]
	identity Identity
	issuer   *session.Issuer
	cache    cache.Cache
	mailer   Mailer
}

// NewUserService tạo mới UserService. cache và mailer có thể nil.
func NewUserService(users basesvc.BaseServiceMongo[models.User], identity Identity, issuer *session.Issuer, c cache.Cache, mailer Mailer) *UserService {
	return &UserService{users: users, identity: identity, issuer: issuer, cache: c, mailer: mailer}
}

// ToSession dựng session từ hồ sơ người dùng
func ToSession(u *models.User) *session.Session {
	return &session.Session{
		UserID:          u.ID,
		Email:           u.Email,
		Role:            u.Role,
		FullName:        u.FullName,
		Nickname:        u.Nickname,
		Phone:           u.PhoneNumber,
		Gender:          u.Gender,
		Birthday:        u.Birthday,
		School:          u.InstituteName,
		EducationLevel:  u.EducationLevel(),
		ProfileImageURL: u.ProfileImageURL,
	}
}

func sessionKey(userID string) string {
	return cache.PrefixSession + userID
}

func (s *UserService) forgetSession(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, sessionKey(userID)); err != nil {
		logger.WithContext(ctx).WithError(err).Warn("🧠 [AUTH] Không xóa được session trong cache")
	}
}

// issueSession ký JWT mới và lưu vào user, token cũ hết hiệu lực
func (s *UserService) issueSession(ctx context.Context, user models.User) (*authdto.AuthResult, error) {
	if user.IsBlock {
		return nil, common.ErrUserBlocked
	}
	token, err := s.issuer.Sign(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, common.WithDetails(common.ErrTokenInvalid, err.Error())
	}

	updated, err := s.users.UpdateById(ctx, user.ID, bson.M{"token": token})
	if err != nil {
		return nil, common.ConvertMongoError(err)
	}
	s.forgetSession(ctx, user.ID)

	logger.Audit(ctx, "auth.login", map[string]interface{}{"user_id": user.ID})
	return &authdto.AuthResult{Token: token, User: updated}, nil
}

// ensureUser tạo user viewer cho uid nếu chưa có, không đổi user đã tồn tại
func (s *UserService) ensureUser(ctx context.Context, uid, email, fullName string) (models.User, error) {
	onInsert := bson.M{
		"role":             session.RoleViewer,
		"fullName":         fullName,
		"profileCompleted": false,
		"isBlock":          false,
	}
	if email != "" {
		onInsert["email"] = strings.ToLower(email)
	}
	user, err := s.users.Upsert(ctx, bson.M{"_id": uid}, &basesvc.UpdateData{SetOnInsert: onInsert})
	if err != nil {
		return models.User{}, common.ConvertMongoError(err)
	}
	return user, nil
}

// Register tạo tài khoản Firebase, hồ sơ người dùng (viewer, chưa hoàn thiện) rồi đăng nhập luôn
func (s *UserService) Register(ctx context.Context, input *authdto.RegisterInput) (*authdto.AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	uid, err := s.identity.CreateUser(ctx, email, input.Password, input.FullName)
	if err != nil {
		logger.WithContext(ctx).WithFields(map[string]interface{}{
			"email": email,
			"error": err.Error(),
		}).Warn("🔐 [AUTH] Không tạo được tài khoản Firebase")
		return nil, err
	}

	user, err := s.ensureUser(ctx, uid, email, strings.TrimSpace(input.FullName))
	if err != nil {
		return nil, err
	}
	logger.WithContext(ctx).WithField("user_id", uid).Info("🔐 [AUTH] Đăng ký tài khoản mới")
	return s.issueSession(ctx, user)
}

// Login đăng nhập bằng email/mật khẩu qua Identity Toolkit
func (s *UserService) Login(ctx context.Context, input *authdto.LoginInput) (*authdto.AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	uid, err := s.identity.SignIn(ctx, email, input.Password)
	if err != nil {
		logger.WithContext(ctx).WithFields(map[string]interface{}{
			"email": email,
			"error": err.Error(),
		}).Warn("🔐 [AUTH] Đăng nhập thất bại")
		return nil, err
	}

	user, err := s.ensureUser(ctx, uid, email, "")
	if err != nil {
		return nil, err
	}
	return s.issueSession(ctx, user)
}

// LoginWithFirebase đăng nhập bằng Firebase ID token (đăng nhập Google, emulator, ...)
func (s *UserService) LoginWithFirebase(ctx context.Context, input *authdto.FirebaseLoginInput) (*authdto.AuthResult, error) {
	uid, email, err := s.identity.VerifyIDToken(ctx, input.IDToken)
	if err != nil {
		logger.WithContext(ctx).WithError(err).Warn("🔐 [AUTH] Firebase ID token không hợp lệ")
		return nil, err
	}

	user, err := s.ensureUser(ctx, uid, email, "")
	if err != nil {
		return nil, err
	}
	return s.issueSession(ctx, user)
}

// Logout xóa token đang lưu và thu hồi refresh token Firebase
func (s *UserService) Logout(ctx context.Context, sess *session.Session) error {
	if err := session.Require(sess); err != nil {
		return err
	}
	if _, err := s.users.UpdateById(ctx, sess.UserID, bson.M{"token": ""}); err != nil {
		return common.ConvertMongoError(err)
	}
	s.forgetSession(ctx, sess.UserID)

	if err := s.identity.RevokeSessions(ctx, sess.UserID); err != nil {
		logger.WithContext(ctx).WithError(err).Warn("🔐 [AUTH] Không thu hồi được refresh token Firebase")
	}
	logger.Audit(ctx, "auth.logout", map[string]interface{}{"user_id": sess.UserID})
	return nil
}

// SendPasswordReset gửi link đặt lại mật khẩu qua email.
// Email chưa đăng ký vẫn trả về thành công để không lộ danh sách tài khoản.
func (s *UserService) SendPasswordReset(ctx context.Context, input *authdto.PasswordResetInput) error {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	link, err := s.identity.PasswordResetLink(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			logger.WithContext(ctx).WithField("email", email).Info("🔐 [AUTH] Yêu cầu đặt lại mật khẩu cho email chưa đăng ký")
			return nil
		}
		return err
	}

	if s.mailer == nil {
		return nil
	}
	msg, err := delivery.PasswordResetMail(email, link)
	if err != nil {
		return err
	}
	return s.mailer.Enqueue(ctx, msg)
}

// Resolve chuyển JWT thành session: kiểm tra chữ ký, token phải trùng token đang lưu và tài khoản không bị khóa
func (s *UserService) Resolve(ctx context.Context, token string) (*session.Session, error) {
	claims, err := s.issuer.Parse(token)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		var cached cachedSession
		if ok, err := s.cache.Get(ctx, sessionKey(claims.UserID), &cached); err == nil && ok && cached.Token == token {
			sess := cached.Session
			return &sess, nil
		}
	}

	user, err := s.users.FindOneById(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrTokenInvalid
		}
		return nil, common.ConvertMongoError(err)
	}
	if user.Token != token {
		return nil, common.ErrTokenInvalid
	}
	if user.IsBlock {
		return nil, common.ErrUserBlocked
	}

	sess := ToSession(&user)
	if s.cache != nil {
		if err := s.cache.Set(ctx, sessionKey(user.ID), cachedSession{Token: token, Session: *sess}, SessionCacheTTL); err != nil {
			logger.WithContext(ctx).WithError(err).Warn("🧠 [AUTH] Không ghi được session vào cache")
		}
	}
	return sess, nil
}

// Me trả về hồ sơ của người đang đăng nhập
func (s *UserService) Me(ctx context.Context, sess *session.Session) (models.User, error) {
	if err := session.Require(sess); err != nil {
		return models.User{}, err
	}
	user, err := s.users.FindOneById(ctx, sess.UserID)
	if err != nil {
		return models.User{}, common.ConvertMongoError(err)
	}
	return user, nil
}

// UpdateProfile cập nhật các field được gửi lên và tính lại profileCompleted
func (s *UserService) UpdateProfile(ctx context.Context, sess *session.Session, input *authdto.UpdateProfileInput) (models.User, error) {
	current, err := s.Me(ctx, sess)
	if err != nil {
		return models.User{}, err
	}

	set := bson.M{}
	apply := func(field string, v *string, dst *string) {
		if v == nil {
			return
		}
		val := strings.TrimSpace(*v)
		set[field] = val
		*dst = val
	}
	apply("fullName", input.FullName, &current.FullName)
	apply("fullNameEng", input.FullNameEng, &current.FullNameEng)
	apply("nickname", input.Nickname, &current.Nickname)
	apply("birthday", input.Birthday, &current.Birthday)
	apply("gender", input.Gender, &current.Gender)
	apply("phoneNumber", input.PhoneNumber, &current.PhoneNumber)
	apply("bio", input.Bio, &current.Bio)
	apply("userType", input.UserType, &current.UserType)
	apply("instituteName", input.InstituteName, &current.InstituteName)
	apply("schoolLevel", input.SchoolLevel, &current.SchoolLevel)
	apply("collegeLevel", input.CollegeLevel, &current.CollegeLevel)
	apply("faculty", input.Faculty, &current.Faculty)
	apply("province", input.Province, &current.Province)
	apply("organization", input.Organization, &current.Organization)
	set["profileCompleted"] = current.IsProfileComplete()

	updated, err := s.users.UpdateById(ctx, sess.UserID, set)
	if err != nil {
		return models.User{}, common.ConvertMongoError(err)
	}
	s.forgetSession(ctx, sess.UserID)
	return updated, nil
}

// SetProfileImage lưu ảnh đại diện mới, trả về đường dẫn object của ảnh cũ để xóa
func (s *UserService) SetProfileImage(ctx context.Context, userID, url, objectPath string) (string, error) {
	current, err := s.users.FindOneById(ctx, userID)
	if err != nil {
		return "", common.ConvertMongoError(err)
	}
	if _, err := s.users.UpdateById(ctx, userID, bson.M{
		"profileImageUrl":  url,
		"profileImagePath": objectPath,
	}); err != nil {
		return "", common.ConvertMongoError(err)
	}
	s.forgetSession(ctx, userID)
	return current.ProfileImagePath, nil
}

// SearchUsers tìm người dùng theo tiền tố email (không phân biệt hoa thường).
// Bỏ trống email thì trả về những người có vai trò khác viewer.
func (s *UserService) SearchUsers(ctx context.Context, sess *session.Session, q *authdto.UserSearchQuery) ([]models.User, error) {
	if err := session.RequireRole(sess, session.RoleAdmin); err != nil {
		return nil, err
	}

	var filter bson.M
	prefix := strings.TrimSpace(q.Email)
	if prefix == "" {
		filter = bson.M{"role": bson.M{"$ne": session.RoleViewer}}
	} else {
		filter = bson.M{"email": bson.M{"$regex": "^" + regexp.QuoteMeta(strings.ToLower(prefix)), "$options": "i"}}
	}
	opts := options.Find().SetSort(bson.D{{Key: "email", Value: 1}}).SetLimit(SearchLimit)
	users, err := s.users.Find(ctx, filter, opts)
	if err != nil {
		return nil, common.ConvertMongoError(err)
	}
	return users, nil
}

// UpdateRole đổi vai trò người dùng, chỉ admin. Admin không tự hạ quyền của chính mình.
func (s *UserService) UpdateRole(ctx context.Context, sess *session.Session, userID string, input *authdto.UpdateRoleInput) (models.User, error) {
	if err := session.RequireRole(sess, session.RoleAdmin); err != nil {
		return models.User{}, err
	}
	if !session.IsValidRole(input.Role) {
		return models.User{}, common.NewValidationError(common.FieldError{Field: "role", Message: "role không hợp lệ"})
	}
	if userID == sess.UserID && input.Role != session.RoleAdmin {
		return models.User{}, common.WithDetails(common.ErrForbidden, "không thể tự hạ quyền admin của chính mình")
	}

	updated, err := s.users.UpdateById(ctx, userID, bson.M{"role": input.Role})
	if err != nil {
		return models.User{}, common.ConvertMongoError(err)
	}
	s.forgetSession(ctx, userID)
	return updated, nil
}
