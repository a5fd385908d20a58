package models

import "time"

// Event is a calendar entry: a meeting, task, reminder or vacation
type Event struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Description *string   `json:"description"`
	Type        EventType `gorm:"type:varchar(16);not null;default:'meeting'" json:"type"`
	StartTime   time.Time `gorm:"not null;index" json:"startTime"`
	EndTime     time.Time `gorm:"not null" json:"endTime"`
	Location    *string   `json:"location"`
	IsAllDay    bool      `gorm:"not null;default:false" json:"isAllDay"`
	Priority    Priority  `gorm:"type:varchar(16);not null;default:'medium'" json:"priority"`
	Status      Status    `gorm:"type:varchar(16);not null;default:'pending'" json:"status"`
	ProjectID   *uint     `gorm:"index" json:"projectId"`
	CreatedByID uint      `gorm:"not null;index" json:"createdById"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Relations
	CreatedBy    *User              `gorm:"foreignKey:CreatedByID" json:"createdBy,omitempty"`
	Project      *Project           `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Participants []EventParticipant `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"participants"`
}

// HasParticipant reports whether userID is on the participant list,
// whatever their response.
func (e *Event) HasParticipant(userID uint) bool {
	for _, p := range e.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// EventParticipant is the membership row between an event and a user.
// There is at most one row per (event, user).
type EventParticipant struct {
	ID       uint           `gorm:"primaryKey" json:"id"`
	EventID  uint           `gorm:"not null;uniqueIndex:idx_event_participant" json:"eventId"`
	UserID   uint           `gorm:"not null;uniqueIndex:idx_event_participant;index" json:"userId"`
	Status   ResponseStatus `gorm:"type:varchar(16);not null;default:'pending'" json:"status"`
	Notified bool           `gorm:"not null;default:false" json:"notified"`
	AddedAt  time.Time      `gorm:"autoCreateTime" json:"addedAt"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
}
