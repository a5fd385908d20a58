package models

import "time"

// User represents an employee account in the system
type User struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// Authentication fields
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"column:password;not null" json:"-"`

	// Profile information
	Name       string  `gorm:"not null" json:"name"`
	Role       Role    `gorm:"type:varchar(16);not null;default:'employee'" json:"role"`
	Position   *string `json:"position"`
	Department *string `json:"department"`
	Phone      *string `json:"phone"`
	Avatar     *string `json:"avatar"`

	// Account status
	Active bool `gorm:"not null;default:true" json:"active"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
