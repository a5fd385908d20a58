package workflow

import (
	"context"

	"teamcal/models"
	"teamcal/store"
)

// CreateEvent inserts the event and its initial participants together.
func (e *Engine) CreateEvent(ctx context.Context, in store.NewEvent, participantIDs []uint) (*models.Event, error) {
	var id uint
	err := e.inTx(ctx, func(s *store.Stores) error {
		if err := checkProject(ctx, s.Projects, in.ProjectID); err != nil {
			return err
		}
		if err := checkUsers(ctx, s.Users, participantIDs); err != nil {
			return err
		}
		event, err := s.Events.Create(ctx, in)
		if err != nil {
			return err
		}
		id = event.ID
		return s.Events.ReplaceParticipants(ctx, event.ID, participantIDs)
	})
	if err != nil {
		return nil, err
	}
	return store.NewEventStore(e.db).GetByID(ctx, id)
}

// UpdateEvent applies the patch and, when participantIDs is non-nil,
// replaces the participant set. An empty list clears it.
func (e *Engine) UpdateEvent(ctx context.Context, id uint, patch store.EventPatch, participantIDs *[]uint) (*models.Event, error) {
	err := e.inTx(ctx, func(s *store.Stores) error {
		if !patch.ClearProject {
			if err := checkProject(ctx, s.Projects, patch.ProjectID); err != nil {
				return err
			}
		}
		if err := s.Events.Update(ctx, id, patch); err != nil {
			return err
		}
		if participantIDs == nil {
			return nil
		}
		if err := checkUsers(ctx, s.Users, *participantIDs); err != nil {
			return err
		}
		return s.Events.ReplaceParticipants(ctx, id, *participantIDs)
	})
	if err != nil {
		return nil, err
	}
	return store.NewEventStore(e.db).GetByID(ctx, id)
}

// ReplaceEventParticipants swaps the event's participants for the given
// users, all with a pending response. Unknown ids abort with nothing
// written.
func (e *Engine) ReplaceEventParticipants(ctx context.Context, eventID uint, userIDs []uint) error {
	return e.inTx(ctx, func(s *store.Stores) error {
		ok, err := s.Events.Exists(ctx, eventID)
		if err := requireFound(ok, err, "event"); err != nil {
			return err
		}
		if err := checkUsers(ctx, s.Users, userIDs); err != nil {
			return err
		}
		return s.Events.ReplaceParticipants(ctx, eventID, userIDs)
	})
}

// CreateProject inserts the project and its initial members together.
func (e *Engine) CreateProject(ctx context.Context, in store.NewProject, memberIDs []uint) (*models.Project, error) {
	var id uint
	err := e.inTx(ctx, func(s *store.Stores) error {
		if err := checkUsers(ctx, s.Users, memberIDs); err != nil {
			return err
		}
		project, err := s.Projects.Create(ctx, in)
		if err != nil {
			return err
		}
		id = project.ID
		return s.Projects.ReplaceMembers(ctx, project.ID, memberIDs)
	})
	if err != nil {
		return nil, err
	}
	return store.NewProjectStore(e.db).GetByID(ctx, id)
}

// UpdateProject applies the patch and, when memberIDs is non-nil, replaces
// the member set.
func (e *Engine) UpdateProject(ctx context.Context, id uint, patch store.ProjectPatch, memberIDs *[]uint) (*models.Project, error) {
	err := e.inTx(ctx, func(s *store.Stores) error {
		if err := s.Projects.Update(ctx, id, patch); err != nil {
			return err
		}
		if memberIDs == nil {
			return nil
		}
		if err := checkUsers(ctx, s.Users, *memberIDs); err != nil {
			return err
		}
		return s.Projects.ReplaceMembers(ctx, id, *memberIDs)
	})
	if err != nil {
		return nil, err
	}
	return store.NewProjectStore(e.db).GetByID(ctx, id)
}

func (e *Engine) ReplaceProjectMembers(ctx context.Context, projectID uint, userIDs []uint) error {
	return e.inTx(ctx, func(s *store.Stores) error {
		ok, err := s.Projects.Exists(ctx, projectID)
		if err := requireFound(ok, err, "project"); err != nil {
			return err
		}
		if err := checkUsers(ctx, s.Users, userIDs); err != nil {
			return err
		}
		return s.Projects.ReplaceMembers(ctx, projectID, userIDs)
	})
}
