package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"teamcal/models"
)

type EventStore struct {
	db *gorm.DB
}

func NewEventStore(db *gorm.DB) *EventStore {
	return &EventStore{db: db}
}

// NewEvent holds the columns of a fresh event. EndTime is not checked
// against StartTime.
type NewEvent struct {
	Title       string
	Description *string
	Type        models.EventType
	StartTime   time.Time
	EndTime     time.Time
	Location    *string
	IsAllDay    bool
	Priority    models.Priority
	Status      models.Status
	ProjectID   *uint
	CreatedByID uint
}

// EventPatch is a sparse update. ClearProject unlinks the event from its
// project and wins over ProjectID.
type EventPatch struct {
	Title        *string
	Description  *string
	Type         *models.EventType
	StartTime    *time.Time
	EndTime      *time.Time
	Location     *string
	IsAllDay     *bool
	Priority     *models.Priority
	Status       *models.Status
	ProjectID    *uint
	ClearProject bool
}

type EventFilter struct {
	// Since keeps events starting at or after this instant.
	Since *time.Time
	// Until keeps events ending at or before this instant.
	Until *time.Time
	// InvolvingUserID keeps events the user created or participates in.
	InvolvingUserID *uint
	// VisibleToUserID applies the same predicate for row-level visibility.
	// Both can be set; the result is their intersection.
	VisibleToUserID *uint
}

func (s *EventStore) Create(ctx context.Context, in NewEvent) (*models.Event, error) {
	event := models.Event{
		Title:       in.Title,
		Description: in.Description,
		Type:        in.Type,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		Location:    in.Location,
		IsAllDay:    in.IsAllDay,
		Priority:    in.Priority,
		Status:      in.Status,
		ProjectID:   in.ProjectID,
		CreatedByID: in.CreatedByID,
	}
	if event.Type == "" {
		event.Type = models.EventMeeting
	}
	if event.Priority == "" {
		event.Priority = models.PriorityMedium
	}
	if event.Status == "" {
		event.Status = models.StatusPending
	}

	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&event).Error; err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return &event, nil
}

func (s *EventStore) withRelations(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("CreatedBy").
		Preload("Participants", orderByID("event_participants")).
		Preload("Participants.User").
		Preload("Project")
}

// GetByID loads the event with its creator, participants and project.
func (s *EventStore) GetByID(ctx context.Context, id uint) (*models.Event, error) {
	var event models.Event
	if err := s.withRelations(ctx).First(&event, id).Error; err != nil {
		return nil, lookupError(err, "event")
	}
	return &event, nil
}

// Exists reports whether an event with this id is stored.
func (s *EventStore) Exists(ctx context.Context, id uint) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Event{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, fmt.Errorf("failed to check event: %w", err)
	}
	return n > 0, nil
}

// List returns events ordered by start time, latest first.
func (s *EventStore) List(ctx context.Context, filter EventFilter) ([]models.Event, error) {
	query := s.withRelations(ctx)

	if filter.Since != nil {
		query = query.Where("events.start_time >= ?", *filter.Since)
	}
	if filter.Until != nil {
		query = query.Where("events.end_time <= ?", *filter.Until)
	}
	if filter.InvolvingUserID != nil {
		query = s.involving(ctx, query, *filter.InvolvingUserID)
	}
	if filter.VisibleToUserID != nil {
		query = s.involving(ctx, query, *filter.VisibleToUserID)
	}

	var events []models.Event
	if err := query.Order("events.start_time DESC").Order("events.id DESC").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

func (s *EventStore) involving(ctx context.Context, query *gorm.DB, userID uint) *gorm.DB {
	participating := s.db.WithContext(ctx).Model(&models.EventParticipant{}).Select("event_id").Where("user_id = ?", userID)
	return query.Where("events.created_by_id = ? OR events.id IN (?)", userID, participating)
}

func (s *EventStore) Update(ctx context.Context, id uint, patch EventPatch) error {
	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.Type != nil {
		updates["type"] = *patch.Type
	}
	if patch.StartTime != nil {
		updates["start_time"] = *patch.StartTime
	}
	if patch.EndTime != nil {
		updates["end_time"] = *patch.EndTime
	}
	if patch.Location != nil {
		updates["location"] = *patch.Location
	}
	if patch.IsAllDay != nil {
		updates["is_all_day"] = *patch.IsAllDay
	}
	if patch.Priority != nil {
		updates["priority"] = *patch.Priority
	}
	if patch.Status != nil {
		updates["status"] = *patch.Status
	}
	if patch.ClearProject {
		updates["project_id"] = nil
	} else if patch.ProjectID != nil {
		updates["project_id"] = *patch.ProjectID
	}

	result := s.db.WithContext(ctx).Model(&models.Event{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update event: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return lookupError(gorm.ErrRecordNotFound, "event")
	}
	return nil
}

// ReplaceParticipants drops every participant row of the event and inserts
// one pending row per user id. Run it inside a transaction.
func (s *EventStore) ReplaceParticipants(ctx context.Context, eventID uint, userIDs []uint) error {
	db := s.db.WithContext(ctx)
	if err := db.Where("event_id = ?", eventID).Delete(&models.EventParticipant{}).Error; err != nil {
		return fmt.Errorf("failed to remove participants: %w", err)
	}

	userIDs = dedupe(userIDs)
	if len(userIDs) == 0 {
		return nil
	}
	participants := make([]models.EventParticipant, 0, len(userIDs))
	for _, uid := range userIDs {
		participants = append(participants, models.EventParticipant{
			EventID: eventID,
			UserID:  uid,
			Status:  models.ResponsePending,
		})
	}
	if err := db.Omit("User").Create(&participants).Error; err != nil {
		return fmt.Errorf("failed to add participants: %w", err)
	}
	return nil
}

// UpsertParticipant sets the status of the (event, user) row, creating it
// when absent. Concurrent calls converge on a single row through the
// unique index.
func (s *EventStore) UpsertParticipant(ctx context.Context, eventID, userID uint, status models.ResponseStatus) error {
	participant := models.EventParticipant{
		EventID: eventID,
		UserID:  userID,
		Status:  status,
	}
	err := s.db.WithContext(ctx).Omit("User").Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}, {Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"status": status}),
	}).Create(&participant).Error
	if err != nil {
		return fmt.Errorf("failed to upsert participant: %w", err)
	}
	return nil
}

// Participants returns the participant rows of one event.
func (s *EventStore) Participants(ctx context.Context, eventID uint) ([]models.EventParticipant, error) {
	var participants []models.EventParticipant
	if err := s.db.WithContext(ctx).Where("event_id = ?", eventID).Order("id").Find(&participants).Error; err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	return participants, nil
}

// Delete removes the event with its participants and invitations.
func (s *EventStore) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event models.Event
		if err := tx.First(&event, id).Error; err != nil {
			return lookupError(err, "event")
		}

		tables := []interface{}{
			&models.EventParticipant{},
			&models.Invitation{},
		}
		for _, table := range tables {
			if err := tx.Where("event_id = ?", id).Delete(table).Error; err != nil {
				return fmt.Errorf("failed to delete event dependencies: %w", err)
			}
		}

		if err := tx.Delete(&event).Error; err != nil {
			return fmt.Errorf("failed to delete event: %w", err)
		}
		return nil
	})
}
