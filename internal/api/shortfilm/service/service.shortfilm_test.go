package filmsvc_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	appmodels "film_camp/internal/api/application/models"
	"film_camp/internal/api/base/service/basesvctest"
	models "film_camp/internal/api/shortfilm/models"
	filmsvc "film_camp/internal/api/shortfilm/service"
	"film_camp/internal/common"
	"film_camp/internal/session"
	"film_camp/internal/storage"
	"film_camp/internal/storage/storagetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	owner = &session.Session{UserID: "u1", Role: session.RoleViewer}
	other = &session.Session{UserID: "u2", Role: session.RoleViewer}
	judge = &session.Session{UserID: "j1", Role: session.RoleCommentor}
)

func newService(t *testing.T) (*filmsvc.ShortFilmService, *basesvctest.MemoryService[models.ShortFilm], *storagetest.MemoryStore) {
	t.Helper()
	films := basesvctest.NewMemoryService[models.ShortFilm]("short_films")
	apps := basesvctest.NewMemoryService[appmodels.Application]("applications")
	apps.Seed(appmodels.Application{ID: "a1", UserID: "u1", GroupName: "Owls", School: "Wat School", ShortFilmTitle: "River", Status: appmodels.StatusApproved, CreatedAt: 1})
	store := storagetest.NewMemoryStore()
	return filmsvc.NewShortFilmService(films, apps, store), films, store
}

func video(name, contentType, body string) storage.File {
	return storage.File{Name: name, ContentType: contentType, Size: int64(len(body)), Body: strings.NewReader(body)}
}

func TestObjectPath(t *testing.T) {
	at := time.Unix(1700000000, 0)
	assert.Equal(t, "shortfilms/a1/1700000000_my film.mp4", filmsvc.ObjectPath("a1", at, "C:\\videos\\my film.mp4"))
}

func TestUpload_StoresVideoAndDocument(t *testing.T) {
	svc, films, store := newService(t)
	ctx := context.Background()

	film, err := svc.Upload(ctx, owner, "a1", video("cut.mp4", "video/mp4", "frames"), "  ")
	require.NoError(t, err)
	assert.Equal(t, "River", film.Title)
	assert.Equal(t, "Owls", film.GroupName)
	assert.Equal(t, "Wat School", film.School)
	assert.Equal(t, int64(6), film.Size)
	assert.Zero(t, film.Rating)
	assert.True(t, strings.HasPrefix(film.StoragePath, "shortfilms/a1/"))
	assert.Contains(t, store.Objects, film.StoragePath)
	assert.Len(t, films.All(), 1)

	list, err := svc.ListByApplication(ctx, judge, "a1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.ListByApplication(ctx, other, "a1")
	assert.ErrorIs(t, err, common.ErrForbidden)
}

func TestUpload_RejectsBeforeStorage(t *testing.T) {
	svc, _, store := newService(t)
	ctx := context.Background()

	_, err := svc.Upload(ctx, owner, "a1", video("cut.avi", "video/x-msvideo", "frames"), "")
	assert.ErrorIs(t, err, common.ErrFileType)

	big := storage.File{Name: "big.mp4", ContentType: "video/mp4", Size: storage.VideoRule.MaxSize + 1, Body: strings.NewReader("")}
	_, err = svc.Upload(ctx, owner, "a1", big, "")
	assert.ErrorIs(t, err, common.ErrFileTooLarge)

	_, err = svc.Upload(ctx, judge, "a1", video("cut.mp4", "video/mp4", "frames"), "")
	assert.ErrorIs(t, err, common.ErrForbidden)

	assert.Zero(t, store.Uploads)
}

func TestUpload_StorageFailure(t *testing.T) {
	svc, films, store := newService(t)
	store.UploadErr = errors.New("bucket unavailable")

	_, err := svc.Upload(context.Background(), owner, "a1", video("cut.mov", "video/quicktime", "frames"), "Title")
	assert.ErrorIs(t, err, common.ErrStorage)
	assert.Empty(t, films.All())
}

func TestUpload_RemovesObjectWhenInsertFails(t *testing.T) {
	svc, films, store := newService(t)
	films.SetError(common.ErrPersistence)

	_, err := svc.Upload(context.Background(), owner, "a1", video("cut.mp4", "video/mp4", "frames"), "Title")
	require.Error(t, err)
	require.Len(t, store.Deleted, 1)
	assert.Empty(t, store.Objects)
}

func TestDelete_StorageFailureIsNotFatal(t *testing.T) {
	svc, films, store := newService(t)
	ctx := context.Background()
	film, err := svc.Upload(ctx, owner, "a1", video("cut.mp4", "video/mp4", "frames"), "Title")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, judge, film.ID), common.ErrForbidden)

	store.DeleteErr = errors.New("gone")
	require.NoError(t, svc.Delete(ctx, owner, film.ID))
	assert.Empty(t, films.All())
	assert.Equal(t, []string{film.StoragePath}, store.Deleted)

	_, err = svc.Get(ctx, owner, film.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}
