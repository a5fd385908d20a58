package workflow

import (
	"context"
	"time"

	"teamcal/models"
	"teamcal/policy"
	"teamcal/store"
	"teamcal/utils"
)

// Invite records an invitation from the sender to the recipient. Both the
// event and the recipient must exist.
func (e *Engine) Invite(ctx context.Context, in store.NewInvitation) (*models.Invitation, error) {
	var invitation *models.Invitation
	err := e.inTx(ctx, func(s *store.Stores) error {
		ok, err := s.Events.Exists(ctx, in.EventID)
		if err := requireFound(ok, err, "event"); err != nil {
			return err
		}
		if _, err := s.Users.GetByID(ctx, in.UserID); err != nil {
			return err
		}
		invitation, err = s.Invitations.Create(ctx, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return invitation, nil
}

// RespondInvitation records the recipient's answer. Only a pending
// invitation takes the decision; once answered, the invitation row is left
// as stored. Accepting always leaves exactly one accepted participant row
// for the recipient, whatever the invitation says.
func (e *Engine) RespondInvitation(ctx context.Context, id uint, p policy.Principal, decision models.ResponseStatus) (*models.Invitation, error) {
	if !decision.Terminal() {
		return nil, utils.NewError(utils.ErrValidation, "status must be accepted or declined")
	}

	err := e.inTx(ctx, func(s *store.Stores) error {
		invitation, err := s.Invitations.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !policy.CanAccess(p, policy.ActionRespond, invitation) {
			return utils.NewError(utils.ErrForbidden, "forbidden")
		}

		if !invitation.Status.Terminal() {
			// guarded on pending, so a concurrent answer keeps whichever landed first
			if _, err := s.Invitations.SetResponse(ctx, id, decision, time.Now()); err != nil {
				return err
			}
		}

		if decision == models.ResponseAccepted {
			return s.Events.UpsertParticipant(ctx, invitation.EventID, invitation.UserID, models.ResponseAccepted)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return store.NewInvitationStore(e.db).GetByID(ctx, id)
}
