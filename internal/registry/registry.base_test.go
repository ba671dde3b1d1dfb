package registry

import (
	"errors"
	"testing"

	"film_camp/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry[int]()

	isNew, err := r.Register("a", 1)
	require.NoError(t, err)
	assert.True(t, isNew)

	isNew, err = r.Register("a", 2)
	require.NoError(t, err)
	assert.False(t, isNew)

	v, ok := r.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	_, err = r.Register("", 3)
	assert.True(t, errors.Is(err, common.ErrInvalidInput))
}

func TestRegistry_MustGetAndNames(t *testing.T) {
	r := NewRegistry[string]()
	_, _ = r.Register("b", "x")
	_, _ = r.Register("a", "y")

	_, err := r.MustGet("missing")
	assert.True(t, errors.Is(err, common.ErrNotFound))
	assert.Equal(t, []string{"a", "b"}, r.Names())

	cleaned := 0
	n, err := r.ClearAll(func(string) error { cleaned++; return nil })
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, cleaned)
	assert.Empty(t, r.Names())
}
