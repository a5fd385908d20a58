package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"teamcal/models"
	"teamcal/store/storetest"
	"teamcal/utils"
)

func TestUserStore_CreateHashesAndRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	users := NewUserStore(storetest.Open(t))

	user, err := users.Create(ctx, NewUser{
		Email:    " Ada@Example.com ",
		Password: "secret1",
		Name:     "Ada",
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, models.RoleEmployee, user.Role)
	assert.True(t, user.Active)
	assert.NotEqual(t, "secret1", user.PasswordHash)
	assert.True(t, utils.CheckPassword(user.PasswordHash, "secret1"))

	_, err = users.Create(ctx, NewUser{Email: "ada@example.com", Password: "x", Name: "Other"})
	assert.ErrorIs(t, err, utils.ErrConflict)
}

func TestUserStore_UpdateIsSparse(t *testing.T) {
	ctx := context.Background()
	db := storetest.Open(t)
	users := NewUserStore(db)
	user := storetest.CreateUser(t, db, models.RoleEmployee)

	updated, err := users.Update(ctx, user.ID, UserPatch{
		Department: utils.Pointer("Design"),
		Active:     utils.Pointer(false),
	})
	require.NoError(t, err)
	assert.Equal(t, user.Name, updated.Name)
	require.NotNil(t, updated.Department)
	assert.Equal(t, "Design", *updated.Department)
	assert.False(t, updated.Active)

	_, err = users.Update(ctx, 999, UserPatch{Name: utils.Pointer("x")})
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func TestUserStore_MissingIDs(t *testing.T) {
	ctx := context.Background()
	db := storetest.Open(t)
	a := storetest.CreateUser(t, db, models.RoleEmployee)

	missing, err := NewUserStore(db).MissingIDs(ctx, []uint{a.ID, 77, a.ID, 78})
	require.NoError(t, err)
	assert.Equal(t, []uint{77, 78}, missing)
}

func TestUserStore_DeleteRefusesOwners(t *testing.T) {
	ctx := context.Background()
	db := storetest.Open(t)
	s := New(db)
	owner := storetest.CreateUser(t, db, models.RoleManager)
	member := storetest.CreateUser(t, db, models.RoleEmployee)

	project, err := s.Projects.Create(ctx, NewProject{Name: "Apollo", CreatedByID: owner.ID})
	require.NoError(t, err)
	require.NoError(t, s.Projects.ReplaceMembers(ctx, project.ID, []uint{member.ID}))

	assert.ErrorIs(t, s.Users.Delete(ctx, owner.ID), utils.ErrConflict)

	require.NoError(t, s.Users.Delete(ctx, member.ID))
	_, err = s.Users.GetByID(ctx, member.ID)
	assert.ErrorIs(t, err, utils.ErrNotFound)

	got, err := s.Projects.GetByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Members)
}

func TestProjectStore_CreateDefaultsAndVisibility(t *testing.T) {
	ctx := context.Background()
	db := storetest.Open(t)
	projects := NewProjectStore(db)
	manager := storetest.CreateUser(t, db, models.RoleManager)
	member := storetest.CreateUser(t, db, models.RoleEmployee)
	outsider := storetest.CreateUser(t, db, models.RoleEmployee)

	first, err := projects.Create(ctx, NewProject{Name: "First", CreatedByID: manager.ID})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, first.Status)
	assert.Equal(t, models.PriorityMedium, first.Priority)

	second, err := projects.Create(ctx, NewProject{Name: "Second", CreatedByID: manager.ID})
	require.NoError(t, err)
	require.NoError(t, projects.ReplaceMembers(ctx, second.ID, []uint{member.ID, member.ID}))

	all, err := projects.List(ctx, ProjectFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)

	mine, err := projects.List(ctx, ProjectFilter{VisibleToUserID: &member.ID})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, second.ID, mine[0].ID)
	require.Len(t, mine[0].Members, 1)
	assert.Equal(t, member.ID, mine[0].Members[0].User.ID)

	none, err := projects.List(ctx, ProjectFilter{VisibleToUserID: &outsider.ID})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestProjectStore_UpdateClearsDates(t *testing.T) {
	ctx := context.Background()
	db := storetest.Open(t)
	projects := NewProjectStore(db)
	manager := storetest.CreateUser(t, db, models.RoleManager)

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	project, err := projects.Create(ctx, NewProject{Name: "Dated", StartDate: &start, CreatedByID: manager.ID})
	require.NoError(t, err)

	require.NoError(t, projects.Update(ctx, project.ID, ProjectPatch{
		Status:         utils.Pointer(models.StatusInProgress),
		ClearStartDate: true,
	}))
	got, err := projects.GetByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Nil(t, got.StartDate)
	assert.Equal(t, models.StatusInProgress, got.Status)
	assert.Equal(t, "Dated", got.Name)

	assert.ErrorIs(t, projects.Update(ctx, 999, ProjectPatch{Name: utils.Pointer("x")}), utils.ErrNotFound)
}

func TestProjectStore_DeleteDetachesEvents(t *testing.T) {
	ctx := context.Background()
	db := storetest.Open(t)
	s := New(db)
	manager := storetest.CreateUser(t, db, models.RoleManager)
	member := storetest.CreateUser(t, db, models.RoleEmployee)

	project, err := s.Projects.Create(ctx, NewProject{Name: "Doomed", CreatedByID: manager.ID})
	require.NoError(t, err)
	require.NoError(t, s.Projects.ReplaceMembers(ctx, project.ID, []uint{member.ID}))
	event, err := s.Events.Create(ctx, newEvent(manager.ID, &project.ID))
	require.NoError(t, err)

	require.NoError(t, s.Projects.Delete(ctx, project.ID))

	_, err = s.Projects.GetByID(ctx, project.ID)
	assert.ErrorIs(t, err, utils.ErrNotFound)
	got, err := s.Events.GetByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ProjectID)

	var members int64
	require.NoError(t, db.Model(&models.ProjectMember{}).Count(&members).Error)
	assert.Zero(t, members)

	assert.ErrorIs(t, s.Projects.Delete(ctx, project.ID), utils.ErrNotFound)
}

func newEvent(creatorID uint, projectID *uint) NewEvent {
	start := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	return NewEvent{
		Title:       "Standup",
		StartTime:   start,
		EndTime:     start.Add(30 * time.Minute),
		ProjectID:   projectID,
		CreatedByID: creatorID,
	}
}

func TestEventStore_ListFilters(t *testing.T) {
	ctx := context.Background()
	db := storetest.Open(t)
	events := NewEventStore(db)
	alice := storetest.CreateUser(t, db, models.RoleEmployee)
	bob := storetest.CreateUser(t, db, models.RoleEmployee)

	early := newEvent(alice.ID, nil)
	own, err := events.Create(ctx, early)
	require.NoError(t, err)
	assert.Equal(t, models.EventMeeting, own.Type)
	assert.Equal(t, models.StatusPending, own.Status)

	late := newEvent(bob.ID, nil)
	late.StartTime = late.StartTime.Add(48 * time.Hour)
	late.EndTime = late.EndTime.Add(48 * time.Hour)
	invited, err := events.Create(ctx, late)
	require.NoError(t, err)
	require.NoError(t, events.ReplaceParticipants(ctx, invited.ID, []uint{alice.ID}))

	hidden, err := events.Create(ctx, newEvent(bob.ID, nil))
	require.NoError(t, err)

	all, err := events.List(ctx, EventFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, invited.ID, all[0].ID)

	visible, err := events.List(ctx, EventFilter{VisibleToUserID: &alice.ID})
	require.NoError(t, err)
	ids := []uint{}
	for _, e := range visible {
		ids = append(ids, e.ID)
	}
	assert.ElementsMatch(t, []uint{own.ID, invited.ID}, ids)
	assert.NotContains(t, ids, hidden.ID)

	since := early.StartTime.Add(24 * time.Hour)
	later, err := events.List(ctx, EventFilter{Since: &since})
	require.NoError(t, err)
	require.Len(t, later, 1)
	assert.Equal(t, invited.ID, later[0].ID)

	until := early.EndTime
	before, err := events.List(ctx, EventFilter{Until: &until, InvolvingUserID: &bob.ID})
	require.NoError(t, err)
	require.Len(t, before, 1)
	assert.Equal(t, hidden.ID, before[0].ID)
}

func TestEventStore_UpsertParticipantKeepsOneRow(t *testing.T) {
	ctx := context.Background()
	db := storetest.Open(t)
	events := NewEventStore(db)
	owner := storetest.CreateUser(t, db, models.RoleEmployee)
	guest := storetest.CreateUser(t, db, models.RoleEmployee)

	event, err := events.Create(ctx, newEvent(owner.ID, nil))
	require.NoError(t, err)
	require.NoError(t, events.ReplaceParticipants(ctx, event.ID, []uint{guest.ID}))

	require.NoError(t, events.UpsertParticipant(ctx, event.ID, guest.ID, models.ResponseAccepted))
	require.NoError(t, events.UpsertParticipant(ctx, event.ID, guest.ID, models.ResponseAccepted))

	participants, err := events.Participants(ctx, event.ID)
	require.NoError(t, err)
	require.Len(t, participants, 1)
	assert.Equal(t, models.ResponseAccepted, participants[0].Status)
}

func TestEventStore_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	db := storetest.Open(t)
	s := New(db)
	owner := storetest.CreateUser(t, db, models.RoleEmployee)
	guest := storetest.CreateUser(t, db, models.RoleEmployee)

	project, err := s.Projects.Create(ctx, NewProject{Name: "P", CreatedByID: owner.ID})
	require.NoError(t, err)
	event, err := s.Events.Create(ctx, newEvent(owner.ID, &project.ID))
	require.NoError(t, err)

	require.NoError(t, s.Events.Update(ctx, event.ID, EventPatch{
		Title:        utils.Pointer("Retro"),
		IsAllDay:     utils.Pointer(true),
		ClearProject: true,
	}))
	got, err := s.Events.GetByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, "Retro", got.Title)
	assert.True(t, got.IsAllDay)
	assert.Nil(t, got.ProjectID)

	require.NoError(t, s.Events.ReplaceParticipants(ctx, event.ID, []uint{guest.ID}))
	_, err = s.Invitations.Create(ctx, NewInvitation{EventID: event.ID, UserID: guest.ID, SentByID: owner.ID})
	require.NoError(t, err)

	require.NoError(t, s.Events.Delete(ctx, event.ID))
	_, err = s.Events.GetByID(ctx, event.ID)
	assert.ErrorIs(t, err, utils.ErrNotFound)

	var leftovers int64
	require.NoError(t, db.Model(&models.EventParticipant{}).Count(&leftovers).Error)
	assert.Zero(t, leftovers)
	require.NoError(t, db.Model(&models.Invitation{}).Count(&leftovers).Error)
	assert.Zero(t, leftovers)
}

func TestInvitationStore_ListAndRespond(t *testing.T) {
	ctx := context.Background()
	db := storetest.Open(t)
	s := New(db)
	owner := storetest.CreateUser(t, db, models.RoleEmployee)
	guest := storetest.CreateUser(t, db, models.RoleEmployee)

	event, err := s.Events.Create(ctx, newEvent(owner.ID, nil))
	require.NoError(t, err)
	inv, err := s.Invitations.Create(ctx, NewInvitation{
		EventID:  event.ID,
		UserID:   guest.ID,
		SentByID: owner.ID,
		Message:  utils.Pointer("join us"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.ResponsePending, inv.Status)

	list, err := s.Invitations.List(ctx, InvitationFilter{RecipientID: &guest.ID})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Event)
	assert.Equal(t, owner.ID, list[0].Event.CreatedBy.ID)
	assert.Equal(t, owner.ID, list[0].SentBy.ID)

	none, err := s.Invitations.List(ctx, InvitationFilter{RecipientID: &owner.ID})
	require.NoError(t, err)
	assert.Empty(t, none)

	now := time.Now()
	changed, err := s.Invitations.SetResponse(ctx, inv.ID, models.ResponseDeclined, now)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = s.Invitations.SetResponse(ctx, inv.ID, models.ResponseAccepted, now)
	require.NoError(t, err)
	assert.False(t, changed)

	got, err := s.Invitations.GetByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ResponseDeclined, got.Status)
	assert.NotNil(t, got.RespondedAt)
}

func TestSeedDefaultUsers_Idempotent(t *testing.T) {
	ctx := context.Background()
	users := NewUserStore(storetest.Open(t))

	created, err := SeedDefaultUsers(ctx, users)
	require.NoError(t, err)
	assert.Equal(t, len(models.DefaultUsers()), created)

	created, err = SeedDefaultUsers(ctx, users)
	require.NoError(t, err)
	assert.Zero(t, created)

	admin, err := users.GetByEmail(ctx, models.DefaultAdminEmail)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)
}
