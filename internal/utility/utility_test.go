package utility

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgeFromBirthday(t *testing.T) {
	cases := []struct {
		name     string
		birthday string
		now      time.Time
		want     int
	}{
		{"day before birthday", "1995-06-15", time.Date(2025, 6, 14, 12, 0, 0, 0, time.UTC), 29},
		{"on birthday", "1995-06-15", time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), 30},
		{"earlier month", "2008-12-01", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), 16},
		{"empty", "", time.Now(), 0},
		{"invalid", "15/06/1995", time.Now(), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, AgeFromBirthday(tc.birthday, tc.now))
		})
	}
}

func TestMeanRating(t *testing.T) {
	assert.Equal(t, 4.0, MeanRating([]int{4, 5, 3}))
	assert.Equal(t, MeanRating([]int{4, 5, 3}), MeanRating([]int{3, 5, 4}))
	assert.Equal(t, 4.3, MeanRating([]int{4, 4, 5}))
	assert.Equal(t, 3.5, MeanRating([]int{3, 4}))
	assert.Equal(t, 0.0, MeanRating(nil))
	assert.Equal(t, 5.0, MeanRating([]int{5, 0}))
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, NormalizeName("nguyễn văn a"), NormalizeName("  Nguyễn   Văn A "))
	// NFD và NFC của cùng một tên
	assert.Equal(t, NormalizeName("Nguy\u1ec5n"), NormalizeName("Nguye\u0302\u0303n"))
	assert.NotEqual(t, NormalizeName("Somchai"), NormalizeName("Somsak"))
}

type sample struct {
	ID    string `bson:"_id"`
	Name  string `bson:"name"`
	Count int    `bson:"count"`
}

func TestToMapFromMap(t *testing.T) {
	m, err := ToMap(sample{ID: "x", Name: "n", Count: 2})
	require.NoError(t, err)
	assert.Equal(t, "x", m["_id"])

	var out sample
	require.NoError(t, FromMap(m, &out))
	assert.Equal(t, sample{ID: "x", Name: "n", Count: 2}, out)
}

func TestContains(t *testing.T) {
	assert.True(t, Contains([]string{"admin", "editor"}, "editor"))
	assert.False(t, Contains([]string{"admin"}, "viewer"))
}
