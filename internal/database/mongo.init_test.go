package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type indexedModel struct {
	ID        string `bson:"_id"`
	Email     string `bson:"email" index:"unique,sparse"`
	ProjectID string `bson:"projectId" index:"compound:app_project_user"`
	UserID    string `bson:"userId" index:"compound:app_project_user"`
	CreatedAt int64  `bson:"createdAt" index:"single:-1"`
	Token     string `bson:"token,omitempty" index:"single:1"`
	Ignored   string `bson:"-" index:"single:1"`
}

func TestParseIndexTag(t *testing.T) {
	got := parseIndexTag("single:1;unique,sparse")
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0]["single"])
	_, hasUnique := got[1]["unique"]
	_, hasSparse := got[1]["sparse"]
	assert.True(t, hasUnique)
	assert.True(t, hasSparse)
}

func TestIndexSpecs(t *testing.T) {
	specs, err := indexSpecs(&indexedModel{})
	require.NoError(t, err)

	byName := map[string]indexSpec{}
	for _, s := range specs {
		byName[s.name] = s
	}

	require.Contains(t, byName, "email_unique")
	assert.True(t, *byName["email_unique"].opts.Unique)
	assert.True(t, *byName["email_unique"].opts.Sparse)

	require.Contains(t, byName, "createdAt_single")
	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}}, byName["createdAt_single"].keys)

	require.Contains(t, byName, "token_single")

	require.Contains(t, byName, "app_project_user")
	assert.Equal(t, bson.D{{Key: "projectId", Value: 1}, {Key: "userId", Value: 1}}, byName["app_project_user"].keys)

	assert.NotContains(t, byName, "-_single")
}

func TestSameKeys(t *testing.T) {
	spec := indexSpec{keys: bson.D{{Key: "a", Value: 1}}, opts: options.Index().SetUnique(true)}

	existing := bson.M{"key": bson.M{"a": int32(1)}, "unique": true}
	assert.True(t, sameKeys(existing, spec.keys, spec.opts))

	existing = bson.M{"key": bson.M{"a": int32(-1)}, "unique": true}
	assert.False(t, sameKeys(existing, spec.keys, spec.opts))

	existing = bson.M{"key": bson.M{"a": int32(1)}}
	assert.False(t, sameKeys(existing, spec.keys, spec.opts))
}
