package projectsvc_test

import (
	"context"
	"testing"
	"time"

	"film_camp/internal/api/base/service/basesvctest"
	projectdto "film_camp/internal/api/project/dto"
	models "film_camp/internal/api/project/models"
	projectsvc "film_camp/internal/api/project/service"
	"film_camp/internal/cache"
	"film_camp/internal/common"
	"film_camp/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedProjects(t *testing.T) (*basesvctest.MemoryService[models.Project], *cache.MemoryCache) {
	t.Helper()
	store := basesvctest.NewMemoryService[models.Project]("projects")
	store.Seed(
		models.Project{ID: "p1", Title: "Camp Bangkok", Status: models.StatusOpen, IsPublic: true, Province: "Bangkok", Tags: []string{"Workshop"}, CreatedAt: 100},
		models.Project{ID: "p2", Title: "Camp Chiang Mai", Status: models.StatusClosed, IsPublic: true, Province: "Chiang Mai", Tags: []string{"Funding"}, CreatedAt: 200},
		models.Project{ID: "p3", Title: "Internal", Status: models.StatusOpen, IsPublic: false, CreatedAt: 300},
		models.Project{ID: "p4", Title: "Old", Status: models.StatusArchived, IsPublic: true, CreatedAt: 400},
	)
	c := cache.NewMemoryCache(time.Hour)
	t.Cleanup(func() { _ = c.Close() })
	return store, c
}

func ids(projects []models.Project) []string {
	out := make([]string, 0, len(projects))
	for _, p := range projects {
		out = append(out, p.ID)
	}
	return out
}

func TestList_VisibilityAndOrder(t *testing.T) {
	store, c := seedProjects(t)
	svc := projectsvc.NewProjectService(store, c)
	ctx := context.Background()

	public, err := svc.List(ctx, nil, projectdto.ProjectListQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"p2", "p1"}, ids(public))

	staff := &session.Session{UserID: "u1", Role: session.RoleEditor}
	all, err := svc.List(ctx, staff, projectdto.ProjectListQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"p3", "p2", "p1"}, ids(all))
}

func TestList_Filters(t *testing.T) {
	store, c := seedProjects(t)
	svc := projectsvc.NewProjectService(store, c)
	ctx := context.Background()

	open, err := svc.List(ctx, nil, projectdto.ProjectListQuery{Status: models.StatusOpen})
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, ids(open))

	tagged, err := svc.List(ctx, nil, projectdto.ProjectListQuery{Tag: "Funding"})
	require.NoError(t, err)
	assert.Equal(t, []string{"p2"}, ids(tagged))

	byProvince, err := svc.List(ctx, nil, projectdto.ProjectListQuery{Province: "Bangkok"})
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, ids(byProvince))
}

func TestList_UsesCache(t *testing.T) {
	store, c := seedProjects(t)
	svc := projectsvc.NewProjectService(store, c)
	ctx := context.Background()

	_, err := svc.List(ctx, nil, projectdto.ProjectListQuery{})
	require.NoError(t, err)
	_, err = svc.List(ctx, nil, projectdto.ProjectListQuery{Status: models.StatusOpen})
	require.NoError(t, err)
	assert.Equal(t, 1, store.Calls("Find"))
}

func TestGet_HiddenProjects(t *testing.T) {
	store, c := seedProjects(t)
	svc := projectsvc.NewProjectService(store, c)
	ctx := context.Background()

	p, err := svc.Get(ctx, nil, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Camp Bangkok", p.Title)

	_, err = svc.Get(ctx, nil, "p3")
	assert.ErrorIs(t, err, common.ErrProjectNotFound)

	p, err = svc.Get(ctx, &session.Session{UserID: "a", Role: session.RoleAdmin}, "p3")
	require.NoError(t, err)
	assert.Equal(t, "Internal", p.Title)

	_, err = svc.Get(ctx, &session.Session{UserID: "a", Role: session.RoleAdmin}, "p4")
	assert.ErrorIs(t, err, common.ErrProjectNotFound)

	_, err = svc.Get(ctx, nil, "missing")
	assert.ErrorIs(t, err, common.ErrProjectNotFound)
}
