package authsvc_test

import (
	"context"
	"sync"
	"testing"
	"time"

	authdto "film_camp/internal/api/auth/dto"
	models "film_camp/internal/api/auth/models"
	authsvc "film_camp/internal/api/auth/service"
	"film_camp/internal/api/base/service/basesvctest"
	"film_camp/internal/cache"
	"film_camp/internal/common"
	"film_camp/internal/delivery"
	"film_camp/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIdentity struct {
	mu       sync.Mutex
	accounts map[string]string // email -> uid
	revoked  []string
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{accounts: map[string]string{}}
}

func (f *fakeIdentity) CreateUser(_ context.Context, email, _, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.accounts[email]; ok {
		return "", common.ErrEmailExists
	}
	uid := "uid-" + email
	f.accounts[email] = uid
	return uid, nil
}

func (f *fakeIdentity) SignIn(_ context.Context, email, password string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	uid, ok := f.accounts[email]
	if !ok || password != "secret1" {
		return "", common.ErrInvalidCredentials
	}
	return uid, nil
}

func (f *fakeIdentity) VerifyIDToken(_ context.Context, idToken string) (string, string, error) {
	if idToken == "bad" {
		return "", "", common.ErrTokenInvalid
	}
	return "google-" + idToken, idToken + "@gmail.com", nil
}

func (f *fakeIdentity) RevokeSessions(_ context.Context, uid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked = append(f.revoked, uid)
	return nil
}

func (f *fakeIdentity) PasswordResetLink(_ context.Context, email string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.accounts[email]; !ok {
		return "", common.ErrNotFound
	}
	return "https://reset/" + email, nil
}

type fakeMailer struct {
	sent []delivery.Message
}

func (m *fakeMailer) Enqueue(_ context.Context, msg delivery.Message) error {
	m.sent = append(m.sent, msg)
	return nil
}

type fixture struct {
	svc      *authsvc.UserService
	users    *basesvctest.MemoryService[models.User]
	identity *fakeIdentity
	mailer   *fakeMailer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	users := basesvctest.NewMemoryService[models.User]("users")
	identity := newFakeIdentity()
	mailer := &fakeMailer{}
	c := cache.NewMemoryCache(time.Hour)
	t.Cleanup(func() { _ = c.Close() })
	svc := authsvc.NewUserService(users, identity, session.NewIssuer("test-secret", time.Hour), c, mailer)
	return &fixture{svc: svc, users: users, identity: identity, mailer: mailer}
}

func TestRegister_CreatesViewerAndSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Register(ctx, &authdto.RegisterInput{Email: "Mali@Example.com", Password: "secret1", FullName: "Mali Chan"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "uid-mali@example.com", res.User.ID)
	assert.Equal(t, session.RoleViewer, res.User.Role)
	assert.Equal(t, "mali@example.com", res.User.Email)
	assert.False(t, res.User.ProfileCompleted)

	sess, err := f.svc.Resolve(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, sess.UserID)
	assert.Equal(t, "Mali Chan", sess.FullName)

	_, err = f.svc.Register(ctx, &authdto.RegisterInput{Email: "mali@example.com", Password: "secret1", FullName: "Again"})
	assert.ErrorIs(t, err, common.ErrEmailExists)
}

func TestLogin_ReplacesPreviousToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Register(ctx, &authdto.RegisterInput{Email: "a@b.co", Password: "secret1", FullName: "A"})
	require.NoError(t, err)
	_, err = f.svc.Resolve(ctx, first.Token)
	require.NoError(t, err)

	second, err := f.svc.Login(ctx, &authdto.LoginInput{Email: "a@b.co", Password: "secret1"})
	require.NoError(t, err)
	require.NotEqual(t, first.Token, second.Token)

	_, err = f.svc.Resolve(ctx, first.Token)
	assert.ErrorIs(t, err, common.ErrTokenInvalid)
	_, err = f.svc.Resolve(ctx, second.Token)
	assert.NoError(t, err)

	_, err = f.svc.Login(ctx, &authdto.LoginInput{Email: "a@b.co", Password: "wrong"})
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestLogin_BlockedUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.identity.accounts["x@y.z"] = "u-blocked"
	f.users.Seed(models.User{ID: "u-blocked", Email: "x@y.z", Role: session.RoleViewer, IsBlock: true})

	_, err := f.svc.Login(ctx, &authdto.LoginInput{Email: "x@y.z", Password: "secret1"})
	assert.ErrorIs(t, err, common.ErrUserBlocked)
}

func TestLoginWithFirebase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.LoginWithFirebase(ctx, &authdto.FirebaseLoginInput{IDToken: "nok"})
	require.NoError(t, err)
	assert.Equal(t, "google-nok", res.User.ID)
	assert.Equal(t, "nok@gmail.com", res.User.Email)

	_, err = f.svc.LoginWithFirebase(ctx, &authdto.FirebaseLoginInput{IDToken: "bad"})
	assert.ErrorIs(t, err, common.ErrTokenInvalid)
}

func TestLogout_InvalidatesSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, err := f.svc.Register(ctx, &authdto.RegisterInput{Email: "a@b.co", Password: "secret1", FullName: "A"})
	require.NoError(t, err)
	sess, err := f.svc.Resolve(ctx, res.Token)
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, sess))
	_, err = f.svc.Resolve(ctx, res.Token)
	assert.ErrorIs(t, err, common.ErrTokenInvalid)
	assert.Equal(t, []string{res.User.ID}, f.identity.revoked)

	assert.ErrorIs(t, f.svc.Logout(ctx, nil), common.ErrNotAuthenticated)
}

func TestSendPasswordReset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.identity.accounts["a@b.co"] = "u1"

	require.NoError(t, f.svc.SendPasswordReset(ctx, &authdto.PasswordResetInput{Email: "A@B.co"}))
	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, "a@b.co", f.mailer.sent[0].To)
	assert.Contains(t, f.mailer.sent[0].HTML, "https://reset/a@b.co")

	require.NoError(t, f.svc.SendPasswordReset(ctx, &authdto.PasswordResetInput{Email: "nobody@b.co"}))
	assert.Len(t, f.mailer.sent, 1)
}

func strp(s string) *string { return &s }

func TestUpdateProfile_ComputesCompletion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, err := f.svc.Register(ctx, &authdto.RegisterInput{Email: "a@b.co", Password: "secret1", FullName: "A"})
	require.NoError(t, err)
	sess, err := f.svc.Resolve(ctx, res.Token)
	require.NoError(t, err)

	u, err := f.svc.UpdateProfile(ctx, sess, &authdto.UpdateProfileInput{Nickname: strp(" Nok ")})
	require.NoError(t, err)
	assert.Equal(t, "Nok", u.Nickname)
	assert.False(t, u.ProfileCompleted)

	u, err = f.svc.UpdateProfile(ctx, sess, &authdto.UpdateProfileInput{
		Birthday:      strp("2008-03-01"),
		Gender:        strp("female"),
		PhoneNumber:   strp("0812345678"),
		UserType:      strp(models.UserTypeSchoolStudent),
		InstituteName: strp("Triam Udom"),
		SchoolLevel:   strp("มัธยมศึกษา"),
	})
	require.NoError(t, err)
	assert.True(t, u.ProfileCompleted)

	// Session trong cache đã bị xóa nên resolve lại thấy trường mới
	sess, err = f.svc.Resolve(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, "Triam Udom", sess.School)
	assert.Equal(t, "มัธยมศึกษา", sess.EducationLevel)
}

func TestSearchUsersAndUpdateRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.users.Seed(
		models.User{ID: "admin1", Email: "boss@camp.org", Role: session.RoleAdmin},
		models.User{ID: "u1", Email: "mali@school.ac.th", Role: session.RoleViewer},
		models.User{ID: "u2", Email: "malee@school.ac.th", Role: session.RoleEditor},
		models.User{ID: "u3", Email: "nok@school.ac.th", Role: session.RoleViewer},
	)
	admin := &session.Session{UserID: "admin1", Role: session.RoleAdmin}

	found, err := f.svc.SearchUsers(ctx, admin, &authdto.UserSearchQuery{Email: "MAL"})
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "malee@school.ac.th", found[0].Email)

	staff, err := f.svc.SearchUsers(ctx, admin, &authdto.UserSearchQuery{})
	require.NoError(t, err)
	assert.Len(t, staff, 2)

	_, err = f.svc.SearchUsers(ctx, &session.Session{UserID: "u2", Role: session.RoleEditor}, &authdto.UserSearchQuery{})
	assert.ErrorIs(t, err, common.ErrForbidden)

	u, err := f.svc.UpdateRole(ctx, admin, "u3", &authdto.UpdateRoleInput{Role: session.RoleCommentor})
	require.NoError(t, err)
	assert.Equal(t, session.RoleCommentor, u.Role)

	_, err = f.svc.UpdateRole(ctx, admin, "admin1", &authdto.UpdateRoleInput{Role: session.RoleViewer})
	assert.ErrorIs(t, err, common.ErrForbidden)

	_, err = f.svc.UpdateRole(ctx, admin, "missing", &authdto.UpdateRoleInput{Role: session.RoleEditor})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSetProfileImage_ReturnsOldPath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.users.Seed(models.User{ID: "u1", Email: "a@b.co", Role: session.RoleViewer, ProfileImagePath: "profile_images/u1/old.png"})

	old, err := f.svc.SetProfileImage(ctx, "u1", "https://img/new", "profile_images/u1/new.png")
	require.NoError(t, err)
	assert.Equal(t, "profile_images/u1/old.png", old)

	u, err := f.svc.Me(ctx, &session.Session{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, "https://img/new", u.ProfileImageURL)
}
