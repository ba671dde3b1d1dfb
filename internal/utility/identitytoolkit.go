package utility

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/valyala/fasthttp"
)

// PasswordSignInResult là phần cần dùng trong response của accounts:signInWithPassword
type PasswordSignInResult struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

// IdentityToolkitError là lỗi do Identity Toolkit trả về (INVALID_LOGIN_CREDENTIALS, USER_DISABLED, ...)
type IdentityToolkitError struct {
	StatusCode int
	Message    string
}

func (e *IdentityToolkitError) Error() string {
	return fmt.Sprintf("identity toolkit: %s (status %d)", e.Message, e.StatusCode)
}

// IdentityToolkitClient gọi REST API đăng nhập email/mật khẩu của Firebase Auth.
// Admin SDK không hỗ trợ kiểm tra mật khẩu nên phải đi qua endpoint này.
type IdentityToolkitClient struct {
	apiKey  string
	baseURL string
	client  *fasthttp.Client
}

// NewIdentityToolkitClient tạo client. emulatorHost khác rỗng thì gọi vào Auth emulator.
func NewIdentityToolkitClient(apiKey, emulatorHost string) *IdentityToolkitClient {
	base := "https://identitytoolkit.googleapis.com/v1"
	if emulatorHost != "" {
		base = "http://" + emulatorHost + "/identitytoolkit.googleapis.com/v1"
	}
	return &IdentityToolkitClient{
		apiKey:  apiKey,
		baseURL: base,
		client: &fasthttp.Client{
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
	}
}

// SignInWithPassword kiểm tra email/mật khẩu, trả về uid và ID token
func (c *IdentityToolkitClient) SignInWithPassword(email, password string) (*PasswordSignInResult, error) {
	body, err := json.Marshal(map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
	if err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + "/accounts:signInWithPassword?key=" + url.QueryEscape(c.apiKey))
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	if err := c.client.DoTimeout(req, resp, 15*time.Second); err != nil {
		return nil, fmt.Errorf("identity toolkit request failed: %w", err)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		var payload struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.Unmarshal(resp.Body(), &payload)
		return nil, &IdentityToolkitError{StatusCode: resp.StatusCode(), Message: payload.Error.Message}
	}

	var result PasswordSignInResult
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("decode identity toolkit response: %w", err)
	}
	return &result, nil
}
