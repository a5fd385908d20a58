package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"teamcal/models"
)

type InvitationStore struct {
	db *gorm.DB
}

func NewInvitationStore(db *gorm.DB) *InvitationStore {
	return &InvitationStore{db: db}
}

type NewInvitation struct {
	EventID  uint
	UserID   uint
	SentByID uint
	Message  *string
}

type InvitationFilter struct {
	// RecipientID keeps invitations addressed to this user.
	RecipientID *uint
	Status      *models.ResponseStatus
}

func (s *InvitationStore) Create(ctx context.Context, in NewInvitation) (*models.Invitation, error) {
	invitation := models.Invitation{
		EventID:  in.EventID,
		UserID:   in.UserID,
		SentByID: in.SentByID,
		Status:   models.ResponsePending,
		Message:  in.Message,
	}
	if err := s.db.WithContext(ctx).Omit("Event", "User", "SentBy").Create(&invitation).Error; err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}
	return &invitation, nil
}

func (s *InvitationStore) withRelations(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("Event").
		Preload("Event.CreatedBy").
		Preload("Event.Project").
		Preload("SentBy")
}

func (s *InvitationStore) GetByID(ctx context.Context, id uint) (*models.Invitation, error) {
	var invitation models.Invitation
	if err := s.withRelations(ctx).First(&invitation, id).Error; err != nil {
		return nil, lookupError(err, "invitation")
	}
	return &invitation, nil
}

// List returns invitations most recently sent first.
func (s *InvitationStore) List(ctx context.Context, filter InvitationFilter) ([]models.Invitation, error) {
	query := s.withRelations(ctx)
	if filter.RecipientID != nil {
		query = query.Where("invitations.user_id = ?", *filter.RecipientID)
	}
	if filter.Status != nil {
		query = query.Where("invitations.status = ?", *filter.Status)
	}

	var invitations []models.Invitation
	if err := query.Order("invitations.sent_at DESC").Order("invitations.id DESC").Find(&invitations).Error; err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	return invitations, nil
}

// SetResponse records the recipient's answer on a pending invitation. The
// status guard makes a second concurrent answer a no-op; the caller sees
// that through the returned bool.
func (s *InvitationStore) SetResponse(ctx context.Context, id uint, status models.ResponseStatus, at time.Time) (bool, error) {
	result := s.db.WithContext(ctx).Model(&models.Invitation{}).
		Where("id = ? AND status = ?", id, models.ResponsePending).
		Updates(map[string]interface{}{
			"status":       status,
			"responded_at": at,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to update invitation: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}
