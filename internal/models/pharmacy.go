package models

import (
	"github.com/google/uuid"
)

// PharmacyMeta holds the storefront attributes of a pharmacy-role User.
type PharmacyMeta struct {
	BaseModel
	UserID       uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null" json:"userId"`
	User         *User      `json:"user,omitempty"`
	PharmacyName string     `json:"pharmacyName"`
	OpeningHours string     `json:"openingHours,omitempty"`
	IsOpen       bool       `json:"isOpen"`
	Phone        string     `json:"phone,omitempty"`
	Medicines    []Medicine `gorm:"foreignKey:PharmacyID" json:"medicines,omitempty"`
}

func (PharmacyMeta) TableName() string {
	return "pharmacies"
}

// Medicine is an inventory line of a single pharmacy.
type Medicine struct {
	BaseModel
	PharmacyID  uuid.UUID `gorm:"type:uuid;index;not null" json:"pharmacyId"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Stock       int       `gorm:"not null" json:"stock"`
	Price       float64   `gorm:"not null" json:"price"`
	ImageURL    string    `json:"imageUrl,omitempty"`
}
