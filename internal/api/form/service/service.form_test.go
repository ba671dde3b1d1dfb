package formsvc_test

import (
	"context"
	"testing"

	appdto "film_camp/internal/api/application/dto"
	appmodels "film_camp/internal/api/application/models"
	formsvc "film_camp/internal/api/form/service"
	memberdto "film_camp/internal/api/member/dto"
	membermodels "film_camp/internal/api/member/models"
	"film_camp/internal/common"
	"film_camp/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var owner = &session.Session{UserID: "u1", Role: session.RoleViewer}

type fakeDrafts struct {
	app      appmodels.Application
	saveErr  error
	saves    int
	submits  int
	lastSave appdto.ApplicationPatch
}

func (f *fakeDrafts) Get(_ context.Context, _ *session.Session, id string) (appmodels.Application, error) {
	if id != f.app.ID {
		return appmodels.Application{}, common.ErrApplicationNotFound
	}
	return f.app, nil
}

func (f *fakeDrafts) SaveDraft(_ context.Context, _ *session.Session, _ string, patch *appdto.ApplicationPatch) (appmodels.Application, error) {
	f.saves++
	f.lastSave = *patch
	if f.saveErr != nil {
		return appmodels.Application{}, f.saveErr
	}
	patch.ApplyTo(&f.app)
	return f.app, nil
}

func (f *fakeDrafts) Submit(_ context.Context, _ *session.Session, _ string) (appmodels.Application, error) {
	f.submits++
	f.app.Status = appmodels.StatusSubmitted
	return f.app, nil
}

type fakeTeachers struct {
	calls []memberdto.TeacherInput
	err   error
}

func (f *fakeTeachers) UpsertTeacher(_ context.Context, _ *session.Session, _ string, input *memberdto.TeacherInput) (membermodels.Member, error) {
	f.calls = append(f.calls, *input)
	return membermodels.Member{ID: "t1"}, f.err
}

func str(s string) *string { return &s }

func contactPatch() *appdto.ApplicationPatch {
	return &appdto.ApplicationPatch{
		FullName:       str("Somchai"),
		Nickname:       str("Chai"),
		Email:          str("s@example.com"),
		Phone:          str("0812345678"),
		School:         str("Wat School"),
		EducationLevel: str("M.5"),
		AdvisorName:    str("Kru Malee"),
		AdvisorPhone:   str("0800000000"),
	}
}

func completeApp() appmodels.Application {
	return appmodels.Application{
		ID: "a1", UserID: "u1", Status: appmodels.StatusDraft, CurrentStep: formsvc.StepReview,
		FullName: "Somchai", Nickname: "Chai", Email: "s@example.com", Phone: "0812345678",
		School: "Wat School", EducationLevel: "M.5", AdvisorName: "Kru Malee", AdvisorPhone: "0800000000",
		GroupName: "Owls", GroupDescription: "Night crew",
		ProjectTheme: "me-and-city", Logline: "A boy and a river", ProjectMotivation: "Because",
	}
}

func TestValidateStep(t *testing.T) {
	app := completeApp()
	for step := formsvc.StepContactInfo; step <= formsvc.StepReview; step++ {
		assert.NoError(t, formsvc.ValidateStep(step, &app), "step %d", step)
	}

	empty := appmodels.Application{}
	err := formsvc.ValidateStep(formsvc.StepContactInfo, &empty)
	require.True(t, common.IsValidationError(err))
	assert.Len(t, common.ValidationFields(err), 8)

	err = formsvc.ValidateStep(formsvc.StepGroupInfo, &empty)
	assert.Len(t, common.ValidationFields(err), 2)

	assert.NoError(t, formsvc.ValidateStep(formsvc.StepReview, &empty))

	badTheme := completeApp()
	badTheme.ProjectTheme = "me-and-mars"
	err = formsvc.ValidateStep(formsvc.StepProjectDetails, &badTheme)
	fields := common.ValidationFields(err)
	require.Len(t, fields, 1)
	assert.Equal(t, "projectTheme", fields[0].Field)

	assert.True(t, common.IsValidationError(formsvc.ValidateStep(7, &app)))
}

func TestNext_BlocksOnMissingFields(t *testing.T) {
	drafts := &fakeDrafts{app: appmodels.Application{ID: "a1", UserID: "u1", Status: appmodels.StatusDraft, CurrentStep: 1}}
	svc := formsvc.NewFormService(drafts, &fakeTeachers{})

	_, err := svc.Next(context.Background(), owner, "a1", &appdto.ApplicationPatch{FullName: str("Somchai")})
	assert.True(t, common.IsValidationError(err))
	assert.Zero(t, drafts.saves)
	assert.Equal(t, 1, drafts.app.CurrentStep)
}

func TestNext_AdvancesAndSavesTeacherOnce(t *testing.T) {
	drafts := &fakeDrafts{app: appmodels.Application{ID: "a1", UserID: "u1", Status: appmodels.StatusDraft, CurrentStep: 1}}
	teachers := &fakeTeachers{}
	svc := formsvc.NewFormService(drafts, teachers)
	ctx := context.Background()

	app, err := svc.Next(ctx, owner, "a1", contactPatch())
	require.NoError(t, err)
	assert.Equal(t, formsvc.StepGroupInfo, app.CurrentStep)
	require.Len(t, teachers.calls, 1)
	assert.Equal(t, "Kru Malee", teachers.calls[0].Name)
	require.NotNil(t, drafts.lastSave.AdvisorSavedKey)

	// Quay lại bước 1 và đi tiếp với cùng thông tin giáo viên
	_, err = svc.Previous(ctx, owner, "a1")
	require.NoError(t, err)
	_, err = svc.Next(ctx, owner, "a1", contactPatch())
	require.NoError(t, err)
	assert.Len(t, teachers.calls, 1)

	_, err = svc.Previous(ctx, owner, "a1")
	require.NoError(t, err)
	patch := contactPatch()
	patch.AdvisorPhone = str("0811111111")
	_, err = svc.Next(ctx, owner, "a1", patch)
	require.NoError(t, err)
	assert.Len(t, teachers.calls, 2)
}

func TestNext_TeacherFailureDoesNotBlock(t *testing.T) {
	drafts := &fakeDrafts{app: appmodels.Application{ID: "a1", UserID: "u1", Status: appmodels.StatusDraft, CurrentStep: 1}}
	teachers := &fakeTeachers{err: common.ErrPersistence}
	svc := formsvc.NewFormService(drafts, teachers)

	app, err := svc.Next(context.Background(), owner, "a1", contactPatch())
	require.NoError(t, err)
	assert.Equal(t, formsvc.StepGroupInfo, app.CurrentStep)
	assert.Nil(t, drafts.lastSave.AdvisorSavedKey)
}

func TestNext_SaveFailureKeepsStep(t *testing.T) {
	drafts := &fakeDrafts{
		app:     appmodels.Application{ID: "a1", UserID: "u1", Status: appmodels.StatusDraft, CurrentStep: 2},
		saveErr: common.ErrPersistence,
	}
	svc := formsvc.NewFormService(drafts, nil)

	_, err := svc.Next(context.Background(), owner, "a1", &appdto.ApplicationPatch{GroupName: str("Owls"), GroupDescription: str("Crew")})
	assert.ErrorIs(t, err, common.ErrPersistence)
	assert.Equal(t, 2, drafts.app.CurrentStep)
}

func TestNext_IgnoresClientStep(t *testing.T) {
	drafts := &fakeDrafts{app: appmodels.Application{ID: "a1", UserID: "u1", Status: appmodels.StatusDraft, CurrentStep: 2}}
	svc := formsvc.NewFormService(drafts, nil)
	jump := formsvc.StepReview

	app, err := svc.Next(context.Background(), owner, "a1", &appdto.ApplicationPatch{
		GroupName: str("Owls"), GroupDescription: str("Crew"), CurrentStep: &jump,
	})
	require.NoError(t, err)
	assert.Equal(t, formsvc.StepProjectDetails, app.CurrentStep)
}

func TestNext_LockedAfterSubmit(t *testing.T) {
	drafts := &fakeDrafts{app: completeApp()}
	drafts.app.Status = appmodels.StatusSubmitted
	svc := formsvc.NewFormService(drafts, nil)

	_, err := svc.Next(context.Background(), owner, "a1", &appdto.ApplicationPatch{})
	assert.ErrorIs(t, err, common.ErrApplicationLocked)
}

func TestPrevious_BestEffort(t *testing.T) {
	drafts := &fakeDrafts{
		app:     appmodels.Application{ID: "a1", UserID: "u1", Status: appmodels.StatusDraft, CurrentStep: 3},
		saveErr: common.ErrPersistence,
	}
	svc := formsvc.NewFormService(drafts, nil)

	app, err := svc.Previous(context.Background(), owner, "a1")
	require.NoError(t, err)
	assert.Equal(t, 2, app.CurrentStep)

	drafts.app.CurrentStep = 1
	app, err = svc.Previous(context.Background(), owner, "a1")
	require.NoError(t, err)
	assert.Equal(t, 1, app.CurrentStep)
}

func TestSubmit(t *testing.T) {
	drafts := &fakeDrafts{app: completeApp()}
	drafts.app.CurrentStep = formsvc.StepProjectDetails
	svc := formsvc.NewFormService(drafts, nil)
	ctx := context.Background()

	_, err := svc.Submit(ctx, owner, "a1")
	assert.ErrorIs(t, err, common.ErrStepNotReachable)

	drafts.app.CurrentStep = formsvc.StepReview
	drafts.app.Logline = ""
	_, err = svc.Submit(ctx, owner, "a1")
	require.True(t, common.IsValidationError(err))
	assert.Zero(t, drafts.submits)

	drafts.app.Logline = "A boy and a river"
	app, err := svc.Submit(ctx, owner, "a1")
	require.NoError(t, err)
	assert.Equal(t, appmodels.StatusSubmitted, app.Status)
	assert.Equal(t, 1, drafts.submits)
}

func TestCheck(t *testing.T) {
	drafts := &fakeDrafts{app: appmodels.Application{ID: "a1", UserID: "u1", Status: appmodels.StatusDraft, GroupName: "Owls"}}
	svc := formsvc.NewFormService(drafts, nil)

	result, err := svc.Check(context.Background(), owner, "a1", formsvc.StepGroupInfo)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	require.Len(t, result.Fields, 1)
	assert.Equal(t, "groupDescription", result.Fields[0].Field)

	_, err = svc.Check(context.Background(), owner, "missing", 1)
	assert.ErrorIs(t, err, common.ErrApplicationNotFound)
}
