package apphdl_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	apphdl "film_camp/internal/api/application/handler"
	appmodels "film_camp/internal/api/application/models"
	appsvc "film_camp/internal/api/application/service"
	"film_camp/internal/api/base/service/basesvctest"
	formhdl "film_camp/internal/api/form/handler"
	formsvc "film_camp/internal/api/form/service"
	"film_camp/internal/common"
	"film_camp/internal/session"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(t *testing.T) (*fiber.App, *basesvctest.MemoryService[appmodels.Application]) {
	t.Helper()
	apps := basesvctest.NewMemoryService[appmodels.Application]("applications")
	apps.Seed(appmodels.Application{ID: "p1_u1", ProjectID: "p1", UserID: "u1", Status: appmodels.StatusDraft, CurrentStep: 1, CreatedAt: 1})

	drafts := appsvc.NewApplicationService(apps, appsvc.Options{})
	h := apphdl.NewApplicationHandler(drafts, nil)
	fh := formhdl.NewFormHandler(formsvc.NewFormService(drafts, nil))

	app := fiber.New()
	g := app.Group("/applications")
	g.Use(func(c fiber.Ctx) error {
		c.Locals(session.LocalsKey, &session.Session{UserID: "u1", Role: session.RoleViewer})
		return c.Next()
	})
	g.Put("/:id", h.HandleSaveDraft)
	g.Post("/:id/steps/submit", fh.HandleSubmit)
	return app, apps
}

func call(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestSaveDraft_IgnoresCurrentStepFromBody(t *testing.T) {
	app, apps := newApp(t)

	status, body := call(t, app, "PUT", "/applications/p1_u1", `{"currentStep":4,"groupName":"Owls"}`)
	require.Equal(t, 200, status)
	data := body["data"].(map[string]interface{})
	assert.EqualValues(t, 1, data["currentStep"])
	assert.Equal(t, "Owls", data["groupName"])

	stored, err := apps.FindOneById(context.Background(), "p1_u1")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.CurrentStep)
}

func TestSubmit_BlankDraftIsRejected(t *testing.T) {
	app, apps := newApp(t)

	call(t, app, "PUT", "/applications/p1_u1", `{"currentStep":4}`)
	status, body := call(t, app, "POST", "/applications/p1_u1/steps/submit", "")
	assert.Equal(t, 409, status)
	assert.Equal(t, common.ErrCodeBusinessState.Code, body["code"])

	stored, err := apps.FindOneById(context.Background(), "p1_u1")
	require.NoError(t, err)
	assert.Equal(t, appmodels.StatusDraft, stored.Status)
	assert.Zero(t, stored.SubmittedAt)
}
