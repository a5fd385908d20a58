package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"teamcal/models"
)

type ProjectStore struct {
	db *gorm.DB
}

func NewProjectStore(db *gorm.DB) *ProjectStore {
	return &ProjectStore{db: db}
}

type NewProject struct {
	Name        string
	Description *string
	Status      models.Status
	Priority    models.Priority
	StartDate   *time.Time
	EndDate     *time.Time
	Budget      *int64
	ClientName  *string
	CreatedByID uint
}

// ProjectPatch is a sparse update. The Clear flags null out optional dates.
type ProjectPatch struct {
	Name           *string
	Description    *string
	Status         *models.Status
	Priority       *models.Priority
	StartDate      *time.Time
	ClearStartDate bool
	EndDate        *time.Time
	ClearEndDate   bool
	Budget         *int64
	ClientName     *string
}

type ProjectFilter struct {
	// VisibleToUserID limits the result to projects created by or
	// including this user. Nil means no restriction.
	VisibleToUserID *uint
}

func (s *ProjectStore) Create(ctx context.Context, in NewProject) (*models.Project, error) {
	project := models.Project{
		Name:        in.Name,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Budget:      in.Budget,
		ClientName:  in.ClientName,
		CreatedByID: in.CreatedByID,
	}
	if project.Status == "" {
		project.Status = models.StatusPending
	}
	if project.Priority == "" {
		project.Priority = models.PriorityMedium
	}

	if err := s.db.WithContext(ctx).Omit("CreatedBy", "Members", "Events").Create(&project).Error; err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return &project, nil
}

// GetByID loads the project with its creator, members and events.
func (s *ProjectStore) GetByID(ctx context.Context, id uint) (*models.Project, error) {
	var project models.Project
	err := s.db.WithContext(ctx).
		Preload("CreatedBy").
		Preload("Members", orderByID("project_members")).
		Preload("Members.User").
		Preload("Events", orderBy("events.start_time DESC")).
		Preload("Events.Participants", orderByID("event_participants")).
		Preload("Events.Participants.User").
		First(&project, id).Error
	if err != nil {
		return nil, lookupError(err, "project")
	}
	return &project, nil
}

// Exists reports whether a project with this id is stored.
func (s *ProjectStore) Exists(ctx context.Context, id uint) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, fmt.Errorf("failed to check project: %w", err)
	}
	return n > 0, nil
}

// List returns projects newest first.
func (s *ProjectStore) List(ctx context.Context, filter ProjectFilter) ([]models.Project, error) {
	query := s.db.WithContext(ctx).
		Preload("CreatedBy").
		Preload("Members", orderByID("project_members")).
		Preload("Members.User").
		Preload("Events", orderBy("events.start_time DESC"))

	if filter.VisibleToUserID != nil {
		uid := *filter.VisibleToUserID
		members := s.db.WithContext(ctx).Model(&models.ProjectMember{}).Select("project_id").Where("user_id = ?", uid)
		query = query.Where("projects.created_by_id = ? OR projects.id IN (?)", uid, members)
	}

	var projects []models.Project
	if err := query.Order("projects.created_at DESC").Order("projects.id DESC").Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

func (s *ProjectStore) Update(ctx context.Context, id uint, patch ProjectPatch) error {
	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.Status != nil {
		updates["status"] = *patch.Status
	}
	if patch.Priority != nil {
		updates["priority"] = *patch.Priority
	}
	if patch.ClearStartDate {
		updates["start_date"] = nil
	} else if patch.StartDate != nil {
		updates["start_date"] = *patch.StartDate
	}
	if patch.ClearEndDate {
		updates["end_date"] = nil
	} else if patch.EndDate != nil {
		updates["end_date"] = *patch.EndDate
	}
	if patch.Budget != nil {
		updates["budget"] = *patch.Budget
	}
	if patch.ClientName != nil {
		updates["client_name"] = *patch.ClientName
	}

	result := s.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update project: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return lookupError(gorm.ErrRecordNotFound, "project")
	}
	return nil
}

// ReplaceMembers drops every membership row of the project and inserts one
// per user id. Run it inside a transaction.
func (s *ProjectStore) ReplaceMembers(ctx context.Context, projectID uint, userIDs []uint) error {
	db := s.db.WithContext(ctx)
	if err := db.Where("project_id = ?", projectID).Delete(&models.ProjectMember{}).Error; err != nil {
		return fmt.Errorf("failed to remove project members: %w", err)
	}

	userIDs = dedupe(userIDs)
	if len(userIDs) == 0 {
		return nil
	}
	members := make([]models.ProjectMember, 0, len(userIDs))
	for _, uid := range userIDs {
		members = append(members, models.ProjectMember{ProjectID: projectID, UserID: uid})
	}
	if err := db.Omit("User").Create(&members).Error; err != nil {
		return fmt.Errorf("failed to add project members: %w", err)
	}
	return nil
}

// Delete removes the project and its memberships and detaches its events.
func (s *ProjectStore) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var project models.Project
		if err := tx.First(&project, id).Error; err != nil {
			return lookupError(err, "project")
		}

		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectMember{}).Error; err != nil {
			return fmt.Errorf("failed to delete project members: %w", err)
		}
		if err := tx.Model(&models.Event{}).Where("project_id = ?", id).Update("project_id", nil).Error; err != nil {
			return fmt.Errorf("failed to detach project events: %w", err)
		}
		if err := tx.Delete(&project).Error; err != nil {
			return fmt.Errorf("failed to delete project: %w", err)
		}
		return nil
	})
}

func orderByID(table string) func(*gorm.DB) *gorm.DB {
	return orderBy(table + ".id")
}

func orderBy(order string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(order)
	}
}
