package membersvc_test

import (
	"context"
	"sync"
	"testing"
	"time"

	appmodels "film_camp/internal/api/application/models"
	basesvc "film_camp/internal/api/base/service"
	"film_camp/internal/api/base/service/basesvctest"
	memberdto "film_camp/internal/api/member/dto"
	models "film_camp/internal/api/member/models"
	membersvc "film_camp/internal/api/member/service"
	"film_camp/internal/common"
	"film_camp/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	owner  = &session.Session{UserID: "u1", Role: session.RoleViewer, FullName: "Somchai Jaidee", Email: "s@example.com", Phone: "0812345678", Birthday: "2008-05-01"}
	other  = &session.Session{UserID: "u2", Role: session.RoleViewer}
	judge  = &session.Session{UserID: "j1", Role: session.RoleCommentor}
	editor = &session.Session{UserID: "e1", Role: session.RoleEditor}
)

func newService(t *testing.T) (*membersvc.MemberService, *basesvctest.MemoryService[models.Member], *basesvctest.MemoryService[appmodels.Application]) {
	t.Helper()
	members := basesvctest.NewMemoryService[models.Member]("application_members")
	apps := basesvctest.NewMemoryService[appmodels.Application]("applications")
	apps.Seed(appmodels.Application{ID: "a1", UserID: "u1", Status: appmodels.StatusDraft, CreatedAt: 1})
	return membersvc.NewMemberService(members, apps), members, apps
}

func TestCreateOwnerIfAbsent_Idempotent(t *testing.T) {
	svc, members, _ := newService(t)
	ctx := context.Background()

	require.NoError(t, svc.CreateOwnerIfAbsent(ctx, "a1", owner))
	require.NoError(t, svc.CreateOwnerIfAbsent(ctx, "a1", owner))

	all := members.All()
	require.Len(t, all, 1)
	m := all[0]
	assert.True(t, m.IsOwner)
	assert.True(t, m.IsAdmin)
	assert.True(t, m.Stay)
	assert.Equal(t, []string{models.RoleAdmin}, m.Roles)
	assert.Equal(t, "Somchai Jaidee", m.FullNameTH)
	assert.Equal(t, "u1", m.UserID)
	assert.Positive(t, m.Age)

	assert.ErrorIs(t, svc.CreateOwnerIfAbsent(ctx, "missing", owner), common.ErrApplicationNotFound)
}

func TestCreateOwnerIfAbsent_SkipsWhenNameMatches(t *testing.T) {
	svc, members, _ := newService(t)
	members.Seed(models.Member{ID: "m1", ApplicationID: "a1", FullNameTH: "  somchai   JAIDEE ", Roles: []string{models.RoleDirector}, CreatedAt: 1})

	require.NoError(t, svc.CreateOwnerIfAbsent(context.Background(), "a1", owner))
	assert.Len(t, members.All(), 1)
}

func TestCreateOwnerIfAbsent_ConcurrentCallsCreateOneOwner(t *testing.T) {
	svc, members, _ := newService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, svc.CreateOwnerIfAbsent(ctx, "a1", owner))
		}()
	}
	wg.Wait()

	owners := 0
	for _, m := range members.All() {
		if m.IsOwner {
			owners++
		}
	}
	assert.Equal(t, 1, owners)
}

func TestUpsertTeacher_CreatesThenMerges(t *testing.T) {
	svc, members, _ := newService(t)
	ctx := context.Background()

	created, err := svc.UpsertTeacher(ctx, owner, "a1", &memberdto.TeacherInput{Name: "Kru Malee", Phone: "0800000000", Email: "kru@school.test"})
	require.NoError(t, err)
	assert.Equal(t, []string{models.RoleTeacher}, created.Roles)
	assert.True(t, created.IsTeacherAttending)
	assert.True(t, created.Stay)

	updated, err := svc.UpsertTeacher(ctx, owner, "a1", &memberdto.TeacherInput{Name: "Kru Malee S.", Phone: "0899999999", Email: "malee@school.test"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Kru Malee S.", updated.FullNameTH)
	assert.Equal(t, "malee@school.test", updated.Email)
	assert.Len(t, members.All(), 1)

	_, err = svc.UpsertTeacher(ctx, other, "a1", &memberdto.TeacherInput{Name: "X", Phone: "1"})
	assert.ErrorIs(t, err, common.ErrForbidden)
}

func TestUpsertTeacher_RequiresContact(t *testing.T) {
	svc, members, _ := newService(t)
	ctx := context.Background()

	_, err := svc.UpsertTeacher(ctx, owner, "a1", &memberdto.TeacherInput{Name: "Kru Malee", Phone: "0800000000"})
	require.True(t, common.IsValidationError(err))
	fields := common.ValidationFields(err)
	require.Len(t, fields, 1)
	assert.Equal(t, "email", fields[0].Field)
	assert.Empty(t, members.All())

	created, err := svc.UpsertTeacher(ctx, owner, "a1", &memberdto.TeacherInput{Name: "Kru Malee", Phone: "0800000000", Email: "kru@school.test"})
	require.NoError(t, err)

	// Gộp vào giáo viên đã có cũng không được xóa liên lạc
	_, err = svc.UpsertTeacher(ctx, owner, "a1", &memberdto.TeacherInput{Name: "Kru Malee", Phone: " ", Email: "kru@school.test"})
	require.True(t, common.IsValidationError(err))
	stored, err := members.FindOneById(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "0800000000", stored.Phone)
}

func TestCreateOwnerIfAbsent_WaitsForContact(t *testing.T) {
	svc, members, _ := newService(t)
	ctx := context.Background()
	noPhone := &session.Session{UserID: "u1", Role: session.RoleViewer, FullName: "Somchai Jaidee", Email: "s@example.com"}

	err := svc.CreateOwnerIfAbsent(ctx, "a1", noPhone)
	require.True(t, common.IsValidationError(err))
	assert.Empty(t, members.All())

	require.NoError(t, svc.CreateOwnerIfAbsent(ctx, "a1", owner))
	all := members.All()
	require.Len(t, all, 1)
	assert.Equal(t, "0812345678", all[0].Phone)
}

func TestCreateMember_Validation(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	_, err := svc.CreateMember(ctx, owner, "a1", &memberdto.MemberInput{FullNameTH: "Nok", Roles: []string{models.RoleAdmin}})
	require.True(t, common.IsValidationError(err))
	fields := common.ValidationFields(err)
	require.Len(t, fields, 2)
	assert.Equal(t, "email", fields[0].Field)
	assert.Equal(t, "phone", fields[1].Field)

	_, err = svc.CreateMember(ctx, owner, "a1", &memberdto.MemberInput{FullNameTH: "Nok", Roles: []string{" "}})
	assert.True(t, common.IsValidationError(err))

	stay := false
	m, err := svc.CreateMember(ctx, owner, "a1", &memberdto.MemberInput{
		FullNameTH: "Nok",
		Roles:      []string{models.RoleActor, models.RoleActor, models.RoleSound},
		Stay:       &stay,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{models.RoleActor, models.RoleSound}, m.Roles)
	assert.False(t, m.Stay)
	assert.False(t, m.IsAdmin)
}

func TestUpdateDeleteAndStay(t *testing.T) {
	svc, members, _ := newService(t)
	ctx := context.Background()
	members.Seed(
		models.Member{ID: "owner", ApplicationID: "a1", IsOwner: true, Roles: []string{models.RoleAdmin}, Email: "s@example.com", Phone: "1", CreatedAt: 1},
		models.Member{ID: "m2", ApplicationID: "a1", FullNameTH: "Nok", Roles: []string{models.RoleActor}, Stay: true, CreatedAt: 2},
	)

	nick := "Birdie"
	updated, err := svc.UpdateMember(ctx, editor, "a1", "m2", &memberdto.MemberPatch{Nickname: &nick})
	require.NoError(t, err)
	assert.Equal(t, "Birdie", updated.Nickname)

	_, err = svc.UpdateMember(ctx, owner, "a1", "m2", &memberdto.MemberPatch{Roles: []string{models.RoleTeacher}})
	assert.True(t, common.IsValidationError(err))

	stayed, err := svc.SetStay(ctx, owner, "a1", "m2", false)
	require.NoError(t, err)
	assert.False(t, stayed.Stay)

	assert.ErrorIs(t, svc.DeleteMember(ctx, owner, "a1", "owner"), common.ErrCannotDeleteOwner)
	require.NoError(t, svc.DeleteMember(ctx, owner, "a1", "m2"))
	assert.ErrorIs(t, svc.DeleteMember(ctx, owner, "a1", "m2"), common.ErrMemberNotFound)
}

func TestListMembers_OwnerFirstAndAccess(t *testing.T) {
	svc, members, _ := newService(t)
	ctx := context.Background()
	members.Seed(
		models.Member{ID: "m1", ApplicationID: "a1", FullNameTH: "First", CreatedAt: 1},
		models.Member{ID: "owner", ApplicationID: "a1", IsOwner: true, CreatedAt: 2},
		models.Member{ID: "m3", ApplicationID: "a1", FullNameTH: "Third", CreatedAt: 3},
		models.Member{ID: "x", ApplicationID: "other", CreatedAt: 4},
	)

	list, err := svc.ListMembers(ctx, judge, "a1")
	require.NoError(t, err)
	ids := []string{}
	for _, m := range list {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []string{"owner", "m1", "m3"}, ids)

	_, err = svc.ListMembers(ctx, other, "a1")
	assert.ErrorIs(t, err, common.ErrForbidden)
}

// lateApps chỉ thấy hồ sơ từ lần đọc thứ visibleAt
type lateApps struct {
	*basesvctest.MemoryService[appmodels.Application]
	mu        sync.Mutex
	reads     int
	visibleAt int
}

var _ basesvc.BaseServiceMongo[appmodels.Application] = (*lateApps)(nil)

func (l *lateApps) FindOneById(ctx context.Context, id string) (appmodels.Application, error) {
	l.mu.Lock()
	l.reads++
	visible := l.reads >= l.visibleAt
	l.mu.Unlock()
	if !visible {
		return appmodels.Application{}, common.ErrNotFound
	}
	return l.MemoryService.FindOneById(ctx, id)
}

func TestLoadRoster_RetriesUntilApplicationVisible(t *testing.T) {
	members := basesvctest.NewMemoryService[models.Member]("application_members")
	inner := basesvctest.NewMemoryService[appmodels.Application]("applications")
	inner.Seed(appmodels.Application{ID: "a1", UserID: "u1", Status: appmodels.StatusDraft, CreatedAt: 1})
	apps := &lateApps{MemoryService: inner, visibleAt: 3}

	svc := membersvc.NewMemberService(members, apps).WithRetryDelays(time.Millisecond, time.Millisecond, time.Millisecond)
	list, err := svc.LoadRoster(context.Background(), owner, "a1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsOwner)
	assert.GreaterOrEqual(t, apps.reads, 3)
}

func TestLoadRoster_GivesUpAfterSchedule(t *testing.T) {
	members := basesvctest.NewMemoryService[models.Member]("application_members")
	inner := basesvctest.NewMemoryService[appmodels.Application]("applications")
	apps := &lateApps{MemoryService: inner, visibleAt: 100}

	svc := membersvc.NewMemberService(members, apps).WithRetryDelays(time.Millisecond, time.Millisecond)
	_, err := svc.LoadRoster(context.Background(), owner, "a1")
	assert.ErrorIs(t, err, common.ErrApplicationNotFound)
	assert.Equal(t, 3, apps.reads)
}

func TestLoadRoster_PermanentErrorStopsRetry(t *testing.T) {
	members := basesvctest.NewMemoryService[models.Member]("application_members")
	apps := basesvctest.NewMemoryService[appmodels.Application]("applications")
	apps.SetError(common.ErrPersistence)

	svc := membersvc.NewMemberService(members, apps).WithRetryDelays(time.Millisecond, time.Millisecond)
	_, err := svc.LoadRoster(context.Background(), owner, "a1")
	assert.ErrorIs(t, err, common.ErrPersistence)
	assert.Equal(t, 1, apps.Calls("FindOne"))
}

func TestLoadRoster_ReviewerDoesNotProvisionOwner(t *testing.T) {
	svc, members, _ := newService(t)
	svc.WithRetryDelays()

	list, err := svc.LoadRoster(context.Background(), judge, "a1")
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Empty(t, members.All())
}
