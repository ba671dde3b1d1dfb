package session

import (
	"errors"
	"testing"
	"time"

	"film_camp/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssuer_SignParse(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)

	tok, err := iss.Sign("u1", "a@b.c", RoleEditor)
	require.NoError(t, err)

	claims, err := iss.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, RoleEditor, claims.Role)
}

func TestIssuer_Expired(t *testing.T) {
	iss := NewIssuer("secret", time.Minute)
	start := time.Now()
	iss.now = func() time.Time { return start }
	tok, err := iss.Sign("u1", "a@b.c", RoleViewer)
	require.NoError(t, err)

	iss.now = func() time.Time { return start.Add(2 * time.Minute) }
	_, err = iss.Parse(tok)
	assert.True(t, errors.Is(err, common.ErrTokenExpired))
}

func TestIssuer_WrongSecret(t *testing.T) {
	tok, err := NewIssuer("one", time.Hour).Sign("u1", "", RoleViewer)
	require.NoError(t, err)

	_, err = NewIssuer("two", time.Hour).Parse(tok)
	assert.True(t, errors.Is(err, common.ErrTokenInvalid))
}

func TestRequireRole(t *testing.T) {
	assert.True(t, errors.Is(Require(nil), common.ErrNotAuthenticated))
	assert.True(t, errors.Is(RequireRole(&Session{UserID: "u", Role: RoleViewer}, RoleAdmin), common.ErrForbidden))
	assert.NoError(t, RequireRole(&Session{UserID: "u", Role: RoleEditor}, RoleAdmin, RoleEditor))

	assert.True(t, (&Session{Role: RoleCommentor}).CanReview())
	assert.False(t, (&Session{Role: RoleCommentor}).IsStaff())
	assert.False(t, (*Session)(nil).HasRole(RoleAdmin))
}
