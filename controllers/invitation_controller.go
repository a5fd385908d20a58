package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"teamcal/middleware"
	"teamcal/models"
	"teamcal/policy"
	"teamcal/store"
	"teamcal/utils"
	"teamcal/workflow"
)

type InvitationController struct {
	DB          *gorm.DB
	Logger      *logrus.Entry
	invitations *store.InvitationStore
	flow        *workflow.Engine
}

func NewInvitationController(db *gorm.DB, logger *logrus.Entry) *InvitationController {
	return &InvitationController{
		DB:          db,
		Logger:      logger,
		invitations: store.NewInvitationStore(db),
		flow:        workflow.New(db),
	}
}

type CreateInvitationRequest struct {
	EventID uint    `json:"eventId" validate:"required"`
	UserID  uint    `json:"userId" validate:"required"`
	Message *string `json:"message" validate:"omitempty,max=1000"`
}

type RespondInvitationRequest struct {
	Status string `json:"status" validate:"required"`
}

// ListInvitations returns the invitations addressed to the caller. An
// optional status query narrows by response.
func (ic *InvitationController) ListInvitations(c *fiber.Ctx) error {
	p := middleware.CurrentPrincipal(c)
	filter := store.InvitationFilter{RecipientID: &p.ID}

	if raw := c.Query("status"); raw != "" {
		status, err := models.ParseResponseStatus(raw)
		if err != nil {
			return respondError(c, ic.Logger, utils.NewError(utils.ErrValidation, "%v", err), "Failed to fetch invitations")
		}
		filter.Status = &status
	}

	invitations, err := ic.invitations.List(c.UserContext(), filter)
	if err != nil {
		return respondError(c, ic.Logger, err, "Failed to fetch invitations")
	}
	return c.JSON(invitations)
}

func (ic *InvitationController) CreateInvitation(c *fiber.Ctx) error {
	p := middleware.CurrentPrincipal(c)
	if !policy.CanAccess(p, policy.ActionCreate, (*models.Invitation)(nil)) {
		return respondError(c, ic.Logger, forbidden(), "Failed to create invitation")
	}

	var req CreateInvitationRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, ic.Logger, err, "Failed to create invitation")
	}

	invitation, err := ic.flow.Invite(c.UserContext(), store.NewInvitation{
		EventID:  req.EventID,
		UserID:   req.UserID,
		SentByID: p.ID,
		Message:  req.Message,
	})
	if err != nil {
		return respondError(c, ic.Logger, err, "Failed to create invitation")
	}

	utils.LogEvent("invitation_sent", map[string]interface{}{
		"invitation_id": invitation.ID,
		"event_id":      invitation.EventID,
		"recipient_id":  invitation.UserID,
		"sent_by":       p.ID,
	})
	return c.Status(fiber.StatusCreated).JSON(invitation)
}

func (ic *InvitationController) RespondInvitation(c *fiber.Ctx) error {
	p := middleware.CurrentPrincipal(c)
	id, err := paramID(c, "invitation")
	if err != nil {
		return respondError(c, ic.Logger, err, "Failed to update invitation")
	}

	var req RespondInvitationRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, ic.Logger, err, "Failed to update invitation")
	}

	invitation, err := ic.flow.RespondInvitation(c.UserContext(), id, p, models.ResponseStatus(req.Status))
	if err != nil {
		return respondError(c, ic.Logger, err, "Failed to update invitation")
	}

	ic.Logger.WithFields(logrus.Fields{
		"invitation_id": id,
		"user_id":       p.ID,
		"status":        invitation.Status,
	}).Info("Invitation answered")
	return c.JSON(invitation)
}
