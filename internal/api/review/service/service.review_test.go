package reviewsvc_test

import (
	"context"
	"fmt"
	"testing"

	appmodels "film_camp/internal/api/application/models"
	"film_camp/internal/api/base/service/basesvctest"
	reviewdto "film_camp/internal/api/review/dto"
	models "film_camp/internal/api/review/models"
	reviewsvc "film_camp/internal/api/review/service"
	"film_camp/internal/common"
	"film_camp/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	judge   = &session.Session{UserID: "j1", Role: session.RoleCommentor, FullName: "Judge One"}
	judge2  = &session.Session{UserID: "j2", Role: session.RoleEditor, Email: "j2@example.com"}
	visitor = &session.Session{UserID: "u1", Role: session.RoleViewer}
)

type fixture struct {
	apps     *basesvctest.MemoryService[appmodels.Application]
	comments *basesvctest.MemoryService[models.Comment]
	tx       *basesvctest.MemoryTransactor
	service  *reviewsvc.ReviewService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		apps:     basesvctest.NewMemoryService[appmodels.Application]("applications"),
		comments: basesvctest.NewMemoryService[models.Comment]("application_comments"),
	}
	f.apps.Seed(appmodels.Application{ID: "a1", UserID: "u1", Status: appmodels.StatusSubmitted, CreatedAt: 1})
	f.tx = basesvctest.NewMemoryTransactor(f.apps, f.comments)
	f.service = reviewsvc.NewReviewService(f.tx, map[string]reviewsvc.Source{
		models.KindApplication: {Comments: f.comments, Parents: reviewsvc.NewParentStore[appmodels.Application](f.apps)},
	})
	return f
}

func appRef(id string) models.ParentRef {
	return models.ParentRef{Kind: models.KindApplication, ID: id}
}

func TestAddComment_UpdatesParentRating(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c1, err := f.service.AddComment(ctx, judge, appRef("a1"), &reviewdto.CommentInput{Text: " Strong idea ", Rating: 5})
	require.NoError(t, err)
	assert.Equal(t, "Strong idea", c1.Text)
	assert.Equal(t, "Judge One", c1.UserName)

	c2, err := f.service.AddComment(ctx, judge2, appRef("a1"), &reviewdto.CommentInput{Text: "Needs work", Rating: 2})
	require.NoError(t, err)
	assert.Equal(t, "j2@example.com", c2.UserName)

	app, err := f.apps.FindOneById(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, 3.5, app.Rating)
	assert.Equal(t, 2, app.CommentCount)
	assert.Equal(t, 2, f.tx.Runs)
}

func TestAddComment_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.AddComment(ctx, nil, appRef("a1"), &reviewdto.CommentInput{Text: "x", Rating: 3})
	assert.ErrorIs(t, err, common.ErrNotAuthenticated)

	_, err = f.service.AddComment(ctx, visitor, appRef("a1"), &reviewdto.CommentInput{Text: "x", Rating: 3})
	assert.ErrorIs(t, err, common.ErrForbidden)

	_, err = f.service.AddComment(ctx, judge, appRef("a1"), &reviewdto.CommentInput{Text: "x", Rating: 6})
	assert.True(t, common.IsValidationError(err))

	_, err = f.service.AddComment(ctx, judge, appRef("missing"), &reviewdto.CommentInput{Text: "x", Rating: 3})
	assert.ErrorIs(t, err, common.ErrParentNotFound)

	_, err = f.service.AddComment(ctx, judge, models.ParentRef{Kind: "poster", ID: "a1"}, &reviewdto.CommentInput{Text: "x", Rating: 3})
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	assert.Empty(t, f.comments.All())
}

type failingParent struct{}

func (failingParent) Exists(context.Context, string) (bool, error) { return true, nil }

func (failingParent) SetRating(context.Context, string, float64, int) error {
	return fmt.Errorf("write conflict")
}

func TestAddComment_RollsBackWhenRatingFails(t *testing.T) {
	comments := basesvctest.NewMemoryService[models.Comment]("application_comments")
	svc := reviewsvc.NewReviewService(basesvctest.NewMemoryTransactor(comments), map[string]reviewsvc.Source{
		models.KindApplication: {Comments: comments, Parents: failingParent{}},
	})

	_, err := svc.AddComment(context.Background(), judge, appRef("a1"), &reviewdto.CommentInput{Text: "x", Rating: 4})
	require.Error(t, err)
	assert.Empty(t, comments.All())
}

func TestEditComment_AuthorOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.service.AddComment(ctx, judge, appRef("a1"), &reviewdto.CommentInput{Text: "ok", Rating: 3})
	require.NoError(t, err)

	_, err = f.service.EditComment(ctx, judge2, appRef("a1"), c.ID, &reviewdto.CommentInput{Text: "hijack", Rating: 1})
	assert.ErrorIs(t, err, common.ErrForbidden)

	edited, err := f.service.EditComment(ctx, judge, appRef("a1"), c.ID, &reviewdto.CommentInput{Text: "better", Rating: 4})
	require.NoError(t, err)
	assert.True(t, edited.Edited)
	assert.Equal(t, 4, edited.Rating)

	app, err := f.apps.FindOneById(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, 4.0, app.Rating)
	assert.Equal(t, 1, app.CommentCount)

	_, err = f.service.EditComment(ctx, judge, appRef("a1"), "nope", &reviewdto.CommentInput{Text: "x", Rating: 2})
	assert.ErrorIs(t, err, common.ErrCommentNotFound)
}

func TestListComments_RevealsPageByPage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 23; i++ {
		f.comments.Seed(models.Comment{ID: fmt.Sprintf("c%02d", i), ParentID: "a1", UserID: "j1", Rating: 3, CreatedAt: int64(i + 1)})
	}
	f.comments.Seed(models.Comment{ID: "other", ParentID: "a2", Rating: 1, CreatedAt: 100})

	page, err := f.service.ListComments(ctx, judge, appRef("a1"), 0)
	require.NoError(t, err)
	assert.Len(t, page.Items, reviewsvc.PageSize)
	assert.Equal(t, 23, page.Total)
	assert.True(t, page.HasMore)
	assert.Equal(t, "c22", page.Items[0].ID)

	page, err = f.service.ListComments(ctx, judge, appRef("a1"), 30)
	require.NoError(t, err)
	assert.Len(t, page.Items, 23)
	assert.Equal(t, 23, page.Visible)
	assert.False(t, page.HasMore)

	_, err = f.service.ListComments(ctx, visitor, appRef("a1"), 0)
	assert.ErrorIs(t, err, common.ErrForbidden)
}
