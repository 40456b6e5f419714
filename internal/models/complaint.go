package models

import "github.com/google/uuid"

// Complaint is free-text feedback filed by a signed-in account.
type Complaint struct {
	BaseModel
	UserID     uuid.UUID `gorm:"type:uuid;index;not null" json:"userId"`
	User       *User     `json:"user,omitempty"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	SenderName string    `json:"senderName,omitempty"`
}
