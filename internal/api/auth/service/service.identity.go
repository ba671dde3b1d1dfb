package authsvc

import (
	"context"
	"errors"

	"film_camp/internal/common"
	"film_camp/internal/utility"

	"firebase.google.com/go/v4/auth"
)

// Identity là nhà cung cấp danh tính (Firebase Authentication)
type Identity interface {
	CreateUser(ctx context.Context, email, password, displayName string) (uid string, err error)
	SignIn(ctx context.Context, email, password string) (uid string, err error)
	VerifyIDToken(ctx context.Context, idToken string) (uid, email string, err error)
	RevokeSessions(ctx context.Context, uid string) error
	PasswordResetLink(ctx context.Context, email string) (string, error)
}

// FirebaseIdentity dùng Firebase Admin SDK, riêng đăng nhập mật khẩu đi qua Identity Toolkit REST
type FirebaseIdentity struct {
	client  *auth.Client
	toolkit *utility.IdentityToolkitClient
}

// NewFirebaseIdentity tạo FirebaseIdentity
func NewFirebaseIdentity(client *auth.Client, toolkit *utility.IdentityToolkitClient) *FirebaseIdentity {
	return &FirebaseIdentity{client: client, toolkit: toolkit}
}

func (f *FirebaseIdentity) CreateUser(ctx context.Context, email, password, displayName string) (string, error) {
	params := (&auth.UserToCreate{}).Email(email).Password(password).DisplayName(displayName)
	record, err := f.client.CreateUser(ctx, params)
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return "", common.ErrEmailExists
		}
		return "", common.WithDetails(common.ErrIdentityProvider, err.Error())
	}
	return record.UID, nil
}

func (f *FirebaseIdentity) SignIn(_ context.Context, email, password string) (string, error) {
	result, err := f.toolkit.SignInWithPassword(email, password)
	if err != nil {
		var itErr *utility.IdentityToolkitError
		if errors.As(err, &itErr) {
			switch itErr.Message {
			case "USER_DISABLED":
				return "", common.ErrUserBlocked
			case "INVALID_LOGIN_CREDENTIALS", "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_EMAIL":
				return "", common.ErrInvalidCredentials
			}
		}
		return "", common.WithDetails(common.ErrIdentityProvider, err.Error())
	}
	return result.LocalID, nil
}

func (f *FirebaseIdentity) VerifyIDToken(ctx context.Context, idToken string) (string, string, error) {
	token, err := f.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", "", common.WithDetails(common.ErrTokenInvalid, err.Error())
	}
	email, _ := token.Claims["email"].(string)
	return token.UID, email, nil
}

func (f *FirebaseIdentity) RevokeSessions(ctx context.Context, uid string) error {
	return f.client.RevokeRefreshTokens(ctx, uid)
}

// PasswordResetLink trả về ErrNotFound khi email chưa đăng ký
func (f *FirebaseIdentity) PasswordResetLink(ctx context.Context, email string) (string, error) {
	link, err := f.client.PasswordResetLink(ctx, email)
	if err != nil {
		if auth.IsUserNotFound(err) || auth.IsEmailNotFound(err) {
			return "", common.ErrNotFound
		}
		return "", common.WithDetails(common.ErrIdentityProvider, err.Error())
	}
	return link, nil
}
