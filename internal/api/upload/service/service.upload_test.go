package uploadsvc_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	appmodels "film_camp/internal/api/application/models"
	uploaddto "film_camp/internal/api/upload/dto"
	uploadsvc "film_camp/internal/api/upload/service"
	"film_camp/internal/common"
	"film_camp/internal/session"
	"film_camp/internal/storage"
	"film_camp/internal/storage/storagetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	owner  = &session.Session{UserID: "u1", Role: session.RoleViewer}
	other  = &session.Session{UserID: "u2", Role: session.RoleViewer}
	editor = &session.Session{UserID: "e1", Role: session.RoleEditor}
)

type fakeApps struct {
	app       appmodels.Application
	attachErr error
	attached  []appmodels.ProjectFile
	detached  []string
}

func (f *fakeApps) Get(_ context.Context, _ *session.Session, id string) (appmodels.Application, error) {
	if id != f.app.ID {
		return appmodels.Application{}, common.ErrApplicationNotFound
	}
	return f.app, nil
}

func (f *fakeApps) AttachFile(_ context.Context, _ *session.Session, _ string, file appmodels.ProjectFile) (appmodels.Application, error) {
	if f.attachErr != nil {
		return appmodels.Application{}, f.attachErr
	}
	f.attached = append(f.attached, file)
	return f.app, nil
}

func (f *fakeApps) DetachFile(_ context.Context, _ *session.Session, _ string, fileURL string) (appmodels.Application, error) {
	f.detached = append(f.detached, fileURL)
	return f.app, nil
}

type fakeUsers struct {
	oldPath string
	setURL  string
}

func (f *fakeUsers) SetProfileImage(_ context.Context, _ string, url, _ string) (string, error) {
	f.setURL = url
	return f.oldPath, nil
}

func newService() (*uploadsvc.UploadService, *fakeApps, *fakeUsers, *storagetest.MemoryStore) {
	apps := &fakeApps{app: appmodels.Application{ID: "a1", ProjectID: "p1", UserID: "u1", Status: appmodels.StatusDraft}}
	users := &fakeUsers{}
	store := storagetest.NewMemoryStore()
	return uploadsvc.NewUploadService(store, apps, users), apps, users, store
}

func file(name, contentType, body string) storage.File {
	return storage.File{Name: name, ContentType: contentType, Size: int64(len(body)), Body: strings.NewReader(body)}
}

func TestUploadProjectFile(t *testing.T) {
	svc, apps, _, store := newService()

	pf, err := svc.UploadProjectFile(context.Background(), owner, "a1", file("script.pdf", "application/pdf", "%PDF"))
	require.NoError(t, err)
	assert.Equal(t, "script.pdf", pf.Name)
	require.Len(t, apps.attached, 1)

	path, err := storage.PathFromURL(pf.URL)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, "project_images/p1/"))
	assert.True(t, strings.HasSuffix(path, ".pdf"))
	assert.Contains(t, store.Objects, path)
}

func TestUploadProjectFile_Rejections(t *testing.T) {
	svc, apps, _, store := newService()
	ctx := context.Background()

	_, err := svc.UploadProjectFile(ctx, owner, "a1", file("photo.png", "image/png", "png"))
	assert.ErrorIs(t, err, common.ErrFileType)

	_, err = svc.UploadProjectFile(ctx, other, "a1", file("script.pdf", "application/pdf", "%PDF"))
	assert.ErrorIs(t, err, common.ErrForbidden)

	apps.app.Status = appmodels.StatusSubmitted
	_, err = svc.UploadProjectFile(ctx, owner, "a1", file("script.pdf", "application/pdf", "%PDF"))
	assert.ErrorIs(t, err, common.ErrApplicationLocked)

	assert.Zero(t, store.Uploads)
}

func TestUploadProjectFile_RemovesObjectWhenAttachFails(t *testing.T) {
	svc, apps, _, store := newService()
	apps.attachErr = common.ErrApplicationLocked

	_, err := svc.UploadProjectFile(context.Background(), editor, "a1", file("brief.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", "doc"))
	assert.ErrorIs(t, err, common.ErrApplicationLocked)
	assert.Len(t, store.Deleted, 1)
	assert.Empty(t, store.Objects)
}

func TestDeleteProjectFile(t *testing.T) {
	svc, apps, _, store := newService()
	ctx := context.Background()
	pf, err := svc.UploadProjectFile(ctx, owner, "a1", file("script.pdf", "application/pdf", "%PDF"))
	require.NoError(t, err)

	store.DeleteErr = errors.New("already gone")
	require.NoError(t, svc.DeleteProjectFile(ctx, owner, &uploaddto.DeleteProjectFileInput{ApplicationID: "a1", URL: pf.URL}))
	assert.Equal(t, []string{pf.URL}, apps.detached)

	err = svc.DeleteProjectFile(ctx, owner, &uploaddto.DeleteProjectFileInput{ApplicationID: "a1", URL: "https://example.com/file.pdf"})
	assert.ErrorIs(t, err, common.ErrInvalidFileURL)
}

func TestUploadProfileImage_ReplacesOldImage(t *testing.T) {
	svc, _, users, store := newService()
	users.oldPath = "profile_images/u1/old.png"
	store.Objects[users.oldPath] = []byte("old")

	obj, err := svc.UploadProfileImage(context.Background(), owner, file("me.jpg", "image/jpeg", "jpeg"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(obj.Path, "profile_images/u1/"))
	assert.True(t, strings.HasSuffix(obj.Path, ".jpg"))
	assert.Equal(t, obj.URL, users.setURL)
	assert.NotContains(t, store.Objects, "profile_images/u1/old.png")
	assert.Contains(t, store.Objects, obj.Path)

	big := storage.File{Name: "huge.png", ContentType: "image/png", Size: storage.ProfileImageRule.MaxSize + 1, Body: strings.NewReader("")}
	_, err = svc.UploadProfileImage(context.Background(), owner, big)
	assert.ErrorIs(t, err, common.ErrFileTooLarge)

	_, err = svc.UploadProfileImage(context.Background(), nil, file("me.jpg", "image/jpeg", "jpeg"))
	assert.ErrorIs(t, err, common.ErrNotAuthenticated)
}

func TestDeleteByURL_Ownership(t *testing.T) {
	svc, _, _, store := newService()
	ctx := context.Background()
	mine := storage.DownloadURL("http://storage.test", "bucket", "profile_images/u1/a.png", "tok")
	theirs := storage.DownloadURL("http://storage.test", "bucket", "profile_images/u2/b.png", "tok")

	require.NoError(t, svc.DeleteByURL(ctx, owner, mine))
	assert.ErrorIs(t, svc.DeleteByURL(ctx, owner, theirs), common.ErrForbidden)
	require.NoError(t, svc.DeleteByURL(ctx, editor, theirs))
	assert.Equal(t, []string{"profile_images/u1/a.png", "profile_images/u2/b.png"}, store.Deleted)

	assert.ErrorIs(t, svc.DeleteByURL(ctx, owner, "not a url"), common.ErrInvalidFileURL)
}
