package workflow

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
	"teamcal/models"
	"teamcal/policy"
	"teamcal/store"
	"teamcal/store/storetest"
	"teamcal/utils"
)

type WorkflowSuite struct {
	suite.Suite
	ctx     context.Context
	db      *gorm.DB
	engine  *Engine
	stores  *store.Stores
	owner   *models.User
	alice   *models.User
	bob     *models.User
	event   *models.Event
	project *models.Project
}

func TestWorkflowSuite(t *testing.T) {
	suite.Run(t, new(WorkflowSuite))
}

func (s *WorkflowSuite) SetupTest() {
	s.ctx = context.Background()
	s.db = storetest.Open(s.T())
	s.engine = New(s.db)
	s.stores = store.New(s.db)
	s.owner = storetest.CreateUser(s.T(), s.db, models.RoleManager)
	s.alice = storetest.CreateUser(s.T(), s.db, models.RoleEmployee)
	s.bob = storetest.CreateUser(s.T(), s.db, models.RoleEmployee)

	var err error
	s.project, err = s.engine.CreateProject(s.ctx, store.NewProject{Name: "Apollo", CreatedByID: s.owner.ID}, []uint{s.alice.ID})
	s.Require().NoError(err)

	start := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	s.event, err = s.engine.CreateEvent(s.ctx, store.NewEvent{
		Title:       "Kickoff",
		StartTime:   start,
		EndTime:     start.Add(time.Hour),
		ProjectID:   &s.project.ID,
		CreatedByID: s.owner.ID,
	}, []uint{s.alice.ID})
	s.Require().NoError(err)
}

func (s *WorkflowSuite) participants() []models.EventParticipant {
	rows, err := s.stores.Events.Participants(s.ctx, s.event.ID)
	s.Require().NoError(err)
	return rows
}

func (s *WorkflowSuite) invite(to *models.User) *models.Invitation {
	inv, err := s.engine.Invite(s.ctx, store.NewInvitation{EventID: s.event.ID, UserID: to.ID, SentByID: s.owner.ID})
	s.Require().NoError(err)
	return inv
}

func (s *WorkflowSuite) TestCreateEventWithParticipants() {
	s.Require().Len(s.event.Participants, 1)
	s.Equal(s.alice.ID, s.event.Participants[0].UserID)
	s.Equal(models.ResponsePending, s.event.Participants[0].Status)
	s.Require().NotNil(s.event.Project)
	s.Equal("Apollo", s.event.Project.Name)
}

func (s *WorkflowSuite) TestCreateEventRejectsUnknownUsers() {
	_, err := s.engine.CreateEvent(s.ctx, store.NewEvent{
		Title:       "Ghost",
		StartTime:   time.Now(),
		EndTime:     time.Now(),
		CreatedByID: s.owner.ID,
	}, []uint{s.alice.ID, 999})
	s.ErrorIs(err, utils.ErrValidation)

	var n int64
	s.Require().NoError(s.db.Model(&models.Event{}).Where("title = ?", "Ghost").Count(&n).Error)
	s.Zero(n)
}

func (s *WorkflowSuite) TestReplaceEventParticipants() {
	s.Require().NoError(s.engine.ReplaceEventParticipants(s.ctx, s.event.ID, []uint{s.bob.ID, s.bob.ID, s.owner.ID}))

	rows := s.participants()
	s.Require().Len(rows, 2)
	s.Equal(s.bob.ID, rows[0].UserID)
	s.Equal(s.owner.ID, rows[1].UserID)
	for _, row := range rows {
		s.Equal(models.ResponsePending, row.Status)
	}

	s.Require().NoError(s.engine.ReplaceEventParticipants(s.ctx, s.event.ID, []uint{}))
	s.Empty(s.participants())
}

func (s *WorkflowSuite) TestReplaceEventParticipantsIsAtomic() {
	err := s.engine.ReplaceEventParticipants(s.ctx, s.event.ID, []uint{s.bob.ID, 4242})
	s.ErrorIs(err, utils.ErrValidation)

	rows := s.participants()
	s.Require().Len(rows, 1)
	s.Equal(s.alice.ID, rows[0].UserID)

	s.ErrorIs(s.engine.ReplaceEventParticipants(s.ctx, 999, nil), utils.ErrNotFound)
}

func (s *WorkflowSuite) TestUpdateEventKeepsParticipantsWhenOmitted() {
	updated, err := s.engine.UpdateEvent(s.ctx, s.event.ID, store.EventPatch{Title: utils.Pointer("Renamed")}, nil)
	s.Require().NoError(err)
	s.Equal("Renamed", updated.Title)
	s.Len(updated.Participants, 1)

	empty := []uint{}
	updated, err = s.engine.UpdateEvent(s.ctx, s.event.ID, store.EventPatch{ClearProject: true}, &empty)
	s.Require().NoError(err)
	s.Empty(updated.Participants)
	s.Nil(updated.ProjectID)

	_, err = s.engine.UpdateEvent(s.ctx, s.event.ID, store.EventPatch{ProjectID: utils.Pointer(uint(999))}, nil)
	s.ErrorIs(err, utils.ErrValidation)
}

func (s *WorkflowSuite) TestReplaceProjectMembers() {
	s.Require().Len(s.project.Members, 1)

	s.Require().NoError(s.engine.ReplaceProjectMembers(s.ctx, s.project.ID, []uint{s.bob.ID, s.alice.ID}))
	project, err := s.stores.Projects.GetByID(s.ctx, s.project.ID)
	s.Require().NoError(err)
	s.Len(project.Members, 2)

	s.ErrorIs(s.engine.ReplaceProjectMembers(s.ctx, s.project.ID, []uint{77}), utils.ErrValidation)
	project, err = s.stores.Projects.GetByID(s.ctx, s.project.ID)
	s.Require().NoError(err)
	s.Len(project.Members, 2)

	s.ErrorIs(s.engine.ReplaceProjectMembers(s.ctx, 999, nil), utils.ErrNotFound)
}

func (s *WorkflowSuite) TestInviteChecksReferences() {
	_, err := s.engine.Invite(s.ctx, store.NewInvitation{EventID: 999, UserID: s.bob.ID, SentByID: s.owner.ID})
	s.ErrorIs(err, utils.ErrNotFound)

	_, err = s.engine.Invite(s.ctx, store.NewInvitation{EventID: s.event.ID, UserID: 999, SentByID: s.owner.ID})
	s.ErrorIs(err, utils.ErrNotFound)
}

func (s *WorkflowSuite) TestAcceptAddsParticipant() {
	inv := s.invite(s.bob)
	bob := policy.Principal{ID: s.bob.ID, Role: s.bob.Role}

	got, err := s.engine.RespondInvitation(s.ctx, inv.ID, bob, models.ResponseAccepted)
	s.Require().NoError(err)
	s.Equal(models.ResponseAccepted, got.Status)
	s.Require().NotNil(got.RespondedAt)

	rows := s.participants()
	s.Require().Len(rows, 2)
	s.Equal(s.bob.ID, rows[1].UserID)
	s.Equal(models.ResponseAccepted, rows[1].Status)
}

func (s *WorkflowSuite) TestAcceptUpdatesExistingParticipant() {
	inv := s.invite(s.alice)
	alice := policy.Principal{ID: s.alice.ID, Role: s.alice.Role}

	_, err := s.engine.RespondInvitation(s.ctx, inv.ID, alice, models.ResponseAccepted)
	s.Require().NoError(err)

	rows := s.participants()
	s.Require().Len(rows, 1)
	s.Equal(models.ResponseAccepted, rows[0].Status)
}

func (s *WorkflowSuite) TestRepeatedAcceptIsIdempotent() {
	inv := s.invite(s.bob)
	bob := policy.Principal{ID: s.bob.ID, Role: s.bob.Role}

	first, err := s.engine.RespondInvitation(s.ctx, inv.ID, bob, models.ResponseAccepted)
	s.Require().NoError(err)
	second, err := s.engine.RespondInvitation(s.ctx, inv.ID, bob, models.ResponseAccepted)
	s.Require().NoError(err)

	s.Equal(first.RespondedAt.UnixNano(), second.RespondedAt.UnixNano())
	s.Len(s.participants(), 2)
}

func (s *WorkflowSuite) TestDeclineHasNoParticipantEffect() {
	inv := s.invite(s.bob)
	bob := policy.Principal{ID: s.bob.ID, Role: s.bob.Role}

	got, err := s.engine.RespondInvitation(s.ctx, inv.ID, bob, models.ResponseDeclined)
	s.Require().NoError(err)
	s.Equal(models.ResponseDeclined, got.Status)
	s.Len(s.participants(), 1)

	s.Len(s.participants(), 1)
}

func (s *WorkflowSuite) TestAnsweredInvitationKeepsItsStatus() {
	inv := s.invite(s.bob)
	bob := policy.Principal{ID: s.bob.ID, Role: s.bob.Role}

	declined, err := s.engine.RespondInvitation(s.ctx, inv.ID, bob, models.ResponseDeclined)
	s.Require().NoError(err)

	got, err := s.engine.RespondInvitation(s.ctx, inv.ID, bob, models.ResponseAccepted)
	s.Require().NoError(err)
	s.Equal(models.ResponseDeclined, got.Status)
	s.Equal(declined.RespondedAt.UnixNano(), got.RespondedAt.UnixNano())

	rows := s.participants()
	s.Require().Len(rows, 2)
	s.Equal(s.bob.ID, rows[1].UserID)
	s.Equal(models.ResponseAccepted, rows[1].Status)

	// declining afterwards never revokes the participant row
	got, err = s.engine.RespondInvitation(s.ctx, inv.ID, bob, models.ResponseDeclined)
	s.Require().NoError(err)
	s.Equal(models.ResponseDeclined, got.Status)
	s.Len(s.participants(), 2)
}

func (s *WorkflowSuite) TestRespondGuards() {
	inv := s.invite(s.bob)
	alice := policy.Principal{ID: s.alice.ID, Role: s.alice.Role}
	admin := policy.Principal{ID: s.owner.ID, Role: models.RoleAdmin}
	bob := policy.Principal{ID: s.bob.ID, Role: s.bob.Role}

	_, err := s.engine.RespondInvitation(s.ctx, inv.ID, alice, models.ResponseAccepted)
	s.ErrorIs(err, utils.ErrForbidden)
	_, err = s.engine.RespondInvitation(s.ctx, inv.ID, admin, models.ResponseAccepted)
	s.ErrorIs(err, utils.ErrForbidden)

	_, err = s.engine.RespondInvitation(s.ctx, inv.ID, bob, models.ResponsePending)
	s.ErrorIs(err, utils.ErrValidation)
	_, err = s.engine.RespondInvitation(s.ctx, inv.ID, bob, models.ResponseStatus("maybe"))
	s.ErrorIs(err, utils.ErrValidation)

	_, err = s.engine.RespondInvitation(s.ctx, 999, bob, models.ResponseAccepted)
	s.ErrorIs(err, utils.ErrNotFound)

	got, err := s.stores.Invitations.GetByID(s.ctx, inv.ID)
	s.Require().NoError(err)
	s.Equal(models.ResponsePending, got.Status)
	s.Nil(got.RespondedAt)
}

func TestConcurrentAcceptsConverge(t *testing.T) {
	ctx := context.Background()
	db := storetest.Open(t)
	engine := New(db)
	owner := storetest.CreateUser(t, db, models.RoleEmployee)
	guest := storetest.CreateUser(t, db, models.RoleEmployee)

	event, err := engine.CreateEvent(ctx, store.NewEvent{
		Title:       "Offsite",
		StartTime:   time.Now(),
		EndTime:     time.Now().Add(time.Hour),
		CreatedByID: owner.ID,
	}, nil)
	require.NoError(t, err)
	inv, err := engine.Invite(ctx, store.NewInvitation{EventID: event.ID, UserID: guest.ID, SentByID: owner.ID})
	require.NoError(t, err)

	p := policy.Principal{ID: guest.ID, Role: guest.Role}
	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = engine.RespondInvitation(ctx, inv.ID, p, models.ResponseAccepted)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	rows, err := store.NewEventStore(db).Participants(ctx, event.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, models.ResponseAccepted, rows[0].Status)
}
