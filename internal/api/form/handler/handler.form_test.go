package formhdl_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	appdto "film_camp/internal/api/application/dto"
	appmodels "film_camp/internal/api/application/models"
	formhdl "film_camp/internal/api/form/handler"
	formsvc "film_camp/internal/api/form/service"
	"film_camp/internal/common"
	"film_camp/internal/session"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type drafts struct {
	app appmodels.Application
}

func (d *drafts) Get(_ context.Context, _ *session.Session, id string) (appmodels.Application, error) {
	if id != d.app.ID {
		return appmodels.Application{}, common.ErrApplicationNotFound
	}
	return d.app, nil
}

func (d *drafts) SaveDraft(_ context.Context, _ *session.Session, _ string, patch *appdto.ApplicationPatch) (appmodels.Application, error) {
	patch.ApplyTo(&d.app)
	return d.app, nil
}

func (d *drafts) Submit(_ context.Context, _ *session.Session, _ string) (appmodels.Application, error) {
	d.app.Status = appmodels.StatusSubmitted
	return d.app, nil
}

func newApp(d *drafts) *fiber.App {
	h := formhdl.NewFormHandler(formsvc.NewFormService(d, nil))
	app := fiber.New()
	g := app.Group("/applications")
	g.Use(func(c fiber.Ctx) error {
		c.Locals(session.LocalsKey, &session.Session{UserID: "u1", Role: session.RoleViewer})
		return c.Next()
	})
	g.Post("/:id/steps/next", h.HandleNext)
	g.Post("/:id/steps/previous", h.HandlePrevious)
	g.Get("/:id/steps/:step/validate", h.HandleValidate)
	return app
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

func TestFormHandler_NextAndValidate(t *testing.T) {
	d := &drafts{app: appmodels.Application{ID: "a1", UserID: "u1", Status: appmodels.StatusDraft, CurrentStep: 2}}
	app := newApp(d)

	status, body := call(t, app, "POST", "/applications/a1/steps/next", `{"groupName":"Owls"}`)
	assert.Equal(t, 400, status)
	assert.Equal(t, common.ErrCodeValidationInput.Code, body["code"])

	status, body = call(t, app, "POST", "/applications/a1/steps/next", `{"groupName":"Owls","groupDescription":"Night crew"}`)
	require.Equal(t, 200, status)
	data := body["data"].(map[string]interface{})
	assert.EqualValues(t, formsvc.StepProjectDetails, data["currentStep"])

	status, body = call(t, app, "GET", "/applications/a1/steps/3/validate", "")
	require.Equal(t, 200, status)
	assert.Equal(t, false, body["data"].(map[string]interface{})["valid"])

	status, _ = call(t, app, "GET", "/applications/a1/steps/abc/validate", "")
	assert.Equal(t, 400, status)

	status, _ = call(t, app, "POST", "/applications/missing/steps/previous", "")
	assert.Equal(t, 404, status)
}
