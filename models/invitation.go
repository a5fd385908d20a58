package models

import "time"

// Invitation asks a user to join an event. The recipient answers it once.
type Invitation struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	EventID     uint           `gorm:"not null;index" json:"eventId"`
	UserID      uint           `gorm:"not null;index" json:"userId"`
	SentByID    uint           `gorm:"not null;index" json:"sentById"`
	Status      ResponseStatus `gorm:"type:varchar(16);not null;default:'pending'" json:"status"`
	Message     *string        `json:"message"`
	SentAt      time.Time      `gorm:"autoCreateTime" json:"sentAt"`
	RespondedAt *time.Time     `json:"respondedAt"`

	// Relations
	Event  *Event `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"event,omitempty"`
	User   *User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	SentBy *User  `gorm:"foreignKey:SentByID" json:"sentBy,omitempty"`
}
