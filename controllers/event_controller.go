package controller

import (
	"time"

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

type EventController struct {
	DB     *gorm.DB
	Logger *logrus.Entry
	events *store.EventStore
	flow   *workflow.Engine
}

func NewEventController(db *gorm.DB, logger *logrus.Entry) *EventController {
	return &EventController{
		DB:     db,
		Logger: logger,
		events: store.NewEventStore(db),
		flow:   workflow.New(db),
	}
}

type CreateEventRequest struct {
	Title          string  `json:"title" validate:"required,max=200"`
	Description    *string `json:"description"`
	Type           string  `json:"type" validate:"omitempty,oneof=meeting task reminder vacation"`
	StartTime      string  `json:"startTime" validate:"required"`
	EndTime        string  `json:"endTime" validate:"required"`
	Location       *string `json:"location"`
	IsAllDay       bool    `json:"isAllDay"`
	Priority       string  `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Status         string  `json:"status" validate:"omitempty,oneof=pending in_progress completed cancelled"`
	ProjectID      *uint   `json:"projectId"`
	ParticipantIDs []uint  `json:"participantIds"`
}

// UpdateEventRequest is sparse. A projectId of 0 unlinks the project and a
// participantIds list, even an empty one, replaces the participants.
type UpdateEventRequest struct {
	Title          *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description    *string `json:"description"`
	Type           *string `json:"type" validate:"omitempty,oneof=meeting task reminder vacation"`
	StartTime      *string `json:"startTime"`
	EndTime        *string `json:"endTime"`
	Location       *string `json:"location"`
	IsAllDay       *bool   `json:"isAllDay"`
	Priority       *string `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Status         *string `json:"status" validate:"omitempty,oneof=pending in_progress completed cancelled"`
	ProjectID      *uint   `json:"projectId"`
	ParticipantIDs *[]uint `json:"participantIds"`
}

func parseTime(field, value string) (time.Time, error) {
	t, err := utils.ParseDate(value)
	if err != nil {
		return time.Time{}, utils.NewError(utils.ErrValidation, "%s must be an RFC 3339 timestamp or YYYY-MM-DD date", field)
	}
	return t, nil
}

func parseOptionalTime(field string, value *string) (*time.Time, error) {
	if value == nil {
		return nil, nil
	}
	t, err := parseTime(field, *value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListEvents returns the events visible to the caller. userId narrows the
// list to events that user created or takes part in.
func (ec *EventController) ListEvents(c *fiber.Ctx) error {
	p := middleware.CurrentPrincipal(c)
	var filter store.EventFilter

	if raw := c.Query("userId"); raw != "" {
		uid, err := utils.ParseUint(raw)
		if err != nil {
			return respondError(c, ec.Logger, utils.NewError(utils.ErrValidation, "invalid userId"), "Failed to fetch events")
		}
		filter.InvolvingUserID = &uid
	}
	if raw := c.Query("startDate"); raw != "" {
		since, err := parseTime("startDate", raw)
		if err != nil {
			return respondError(c, ec.Logger, err, "Failed to fetch events")
		}
		filter.Since = &since
	}
	if raw := c.Query("endDate"); raw != "" {
		until, err := parseTime("endDate", raw)
		if err != nil {
			return respondError(c, ec.Logger, err, "Failed to fetch events")
		}
		filter.Until = &until
	}
	if !p.SeesAll() {
		filter.VisibleToUserID = &p.ID
	}

	events, err := ec.events.List(c.UserContext(), filter)
	if err != nil {
		return respondError(c, ec.Logger, err, "Failed to fetch events")
	}
	return c.JSON(policy.FilterEvents(p, events))
}

func (ec *EventController) GetEvent(c *fiber.Ctx) error {
	id, err := paramID(c, "event")
	if err != nil {
		return respondError(c, ec.Logger, err, "Failed to fetch event")
	}

	event, err := ec.events.GetByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, ec.Logger, err, "Failed to fetch event")
	}
	if !policy.CanAccess(middleware.CurrentPrincipal(c), policy.ActionRead, event) {
		return respondError(c, ec.Logger, forbidden(), "Failed to fetch event")
	}
	return c.JSON(event)
}

func (ec *EventController) CreateEvent(c *fiber.Ctx) error {
	p := middleware.CurrentPrincipal(c)
	if !policy.CanAccess(p, policy.ActionCreate, (*models.Event)(nil)) {
		return respondError(c, ec.Logger, forbidden(), "Failed to create event")
	}

	var req CreateEventRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, ec.Logger, err, "Failed to create event")
	}
	start, err := parseTime("startTime", req.StartTime)
	if err != nil {
		return respondError(c, ec.Logger, err, "Failed to create event")
	}
	end, err := parseTime("endTime", req.EndTime)
	if err != nil {
		return respondError(c, ec.Logger, err, "Failed to create event")
	}

	projectID := req.ProjectID
	if projectID != nil && *projectID == 0 {
		projectID = nil
	}

	event, err := ec.flow.CreateEvent(c.UserContext(), store.NewEvent{
		Title:       req.Title,
		Description: req.Description,
		Type:        models.EventType(req.Type),
		StartTime:   start,
		EndTime:     end,
		Location:    req.Location,
		IsAllDay:    req.IsAllDay,
		Priority:    models.Priority(req.Priority),
		Status:      models.Status(req.Status),
		ProjectID:   projectID,
		CreatedByID: p.ID,
	}, req.ParticipantIDs)
	if err != nil {
		return respondError(c, ec.Logger, err, "Failed to create event")
	}

	ec.Logger.WithFields(logrus.Fields{"event_id": event.ID, "created_by": p.ID}).Info("Event created")
	return c.Status(fiber.StatusCreated).JSON(event)
}

func (ec *EventController) UpdateEvent(c *fiber.Ctx) error {
	p := middleware.CurrentPrincipal(c)
	id, err := paramID(c, "event")
	if err != nil {
		return respondError(c, ec.Logger, err, "Failed to update event")
	}

	event, err := ec.events.GetByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, ec.Logger, err, "Failed to update event")
	}
	if !policy.CanAccess(p, policy.ActionUpdate, event) {
		return respondError(c, ec.Logger, forbidden(), "Failed to update event")
	}

	var req UpdateEventRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, ec.Logger, err, "Failed to update event")
	}

	patch := store.EventPatch{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		IsAllDay:    req.IsAllDay,
	}
	if patch.StartTime, err = parseOptionalTime("startTime", req.StartTime); err != nil {
		return respondError(c, ec.Logger, err, "Failed to update event")
	}
	if patch.EndTime, err = parseOptionalTime("endTime", req.EndTime); err != nil {
		return respondError(c, ec.Logger, err, "Failed to update event")
	}
	if req.Type != nil {
		patch.Type = utils.Pointer(models.EventType(*req.Type))
	}
	if req.Priority != nil {
		patch.Priority = utils.Pointer(models.Priority(*req.Priority))
	}
	if req.Status != nil {
		patch.Status = utils.Pointer(models.Status(*req.Status))
	}
	if req.ProjectID != nil {
		if *req.ProjectID == 0 {
			patch.ClearProject = true
		} else {
			patch.ProjectID = req.ProjectID
		}
	}

	updated, err := ec.flow.UpdateEvent(c.UserContext(), id, patch, req.ParticipantIDs)
	if err != nil {
		return respondError(c, ec.Logger, err, "Failed to update event")
	}
	return c.JSON(updated)
}

func (ec *EventController) DeleteEvent(c *fiber.Ctx) error {
	p := middleware.CurrentPrincipal(c)
	id, err := paramID(c, "event")
	if err != nil {
		return respondError(c, ec.Logger, err, "Failed to delete event")
	}

	event, err := ec.events.GetByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, ec.Logger, err, "Failed to delete event")
	}
	if !policy.CanAccess(p, policy.ActionDelete, event) {
		return respondError(c, ec.Logger, forbidden(), "Failed to delete event")
	}

	if err := ec.events.Delete(c.UserContext(), id); err != nil {
		return respondError(c, ec.Logger, err, "Failed to delete event")
	}

	ec.Logger.WithFields(logrus.Fields{"event_id": id, "deleted_by": p.ID}).Info("Event deleted")
	return c.JSON(fiber.Map{"success": true})
}
