package storage

import (
	"errors"
	"strings"
	"testing"

	"film_camp/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleCheck(t *testing.T) {
	ext, err := VideoRule.Check("video/mp4", 10*mb)
	require.NoError(t, err)
	assert.Equal(t, "mp4", ext)

	ext, err = ProfileImageRule.Check("image/PNG; charset=binary", 1024)
	require.NoError(t, err)
	assert.Equal(t, "png", ext)

	_, err = VideoRule.Check("video/webm", 10)
	assert.True(t, errors.Is(err, common.ErrFileType))

	_, err = VideoRule.Check("video/quicktime", 501*mb)
	assert.True(t, errors.Is(err, common.ErrFileTooLarge))

	_, err = ProjectFileRule.Check("application/pdf", 0)
	assert.True(t, errors.Is(err, common.ErrInvalidInput))
}

func TestDownloadURLRoundTrip(t *testing.T) {
	u := DownloadURL(firebaseDownloadHost, "camp.appspot.com", "shortfilms/app 1/17_film.mp4", "abc")
	assert.True(t, strings.HasPrefix(u, "https://firebasestorage.googleapis.com/v0/b/camp.appspot.com/o/shortfilms%2Fapp%201%2F17_film.mp4?alt=media"))
	assert.True(t, strings.HasSuffix(u, "&token=abc"))

	p, err := PathFromURL(u)
	require.NoError(t, err)
	assert.Equal(t, "shortfilms/app 1/17_film.mp4", p)
}

func TestPathFromURL_Invalid(t *testing.T) {
	_, err := PathFromURL("https://example.com/file.png")
	assert.True(t, errors.Is(err, common.ErrInvalidFileURL))

	_, err = PathFromURL("https://x/o/?alt=media")
	assert.True(t, errors.Is(err, common.ErrInvalidFileURL))
}

func TestSanitizeFileName(t *testing.T) {
	assert.Equal(t, "clip.mp4", SanitizeFileName("C:\\Users\\me\\clip.mp4"))
	assert.Equal(t, "a_b.mov", SanitizeFileName("a#b.mov"))
	assert.Equal(t, "file", SanitizeFileName(""))
}

func TestNewObjectName(t *testing.T) {
	name := NewObjectName("profile_images/u1", "png")
	assert.True(t, strings.HasPrefix(name, "profile_images/u1/"))
	assert.True(t, strings.HasSuffix(name, ".png"))
}
