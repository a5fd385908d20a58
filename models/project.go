package models

import "time"

// Project groups events and the people working on them
type Project struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Name        string     `gorm:"not null" json:"name"`
	Description *string    `json:"description"`
	Status      Status     `gorm:"type:varchar(16);not null;default:'pending'" json:"status"`
	Priority    Priority   `gorm:"type:varchar(16);not null;default:'medium'" json:"priority"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	Budget      *int64     `json:"budget"`
	ClientName  *string    `json:"clientName"`
	CreatedByID uint       `gorm:"not null;index" json:"createdById"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Relations
	CreatedBy *User           `gorm:"foreignKey:CreatedByID" json:"createdBy,omitempty"`
	Members   []ProjectMember `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"members"`
	Events    []Event         `gorm:"foreignKey:ProjectID;constraint:OnDelete:SET NULL" json:"events,omitempty"`
}

// HasMember reports whether userID is listed among the project members.
func (p *Project) HasMember(userID uint) bool {
	for _, m := range p.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// ProjectMember links a user to a project
type ProjectMember struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ProjectID  uint      `gorm:"not null;uniqueIndex:idx_project_member" json:"projectId"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_project_member;index" json:"userId"`
	Role       *string   `json:"role"` // lead, developer, designer...
	AssignedAt time.Time `gorm:"autoCreateTime" json:"assignedAt"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
}
