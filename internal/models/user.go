package models

import (
	"github.com/google/uuid"
)

// Role determines which endpoints an identity may invoke.
type Role string

const (
	RoleUser     Role = "user"
	RolePharmacy Role = "pharmacy"
	RoleDriver   Role = "driver"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RolePharmacy, RoleDriver, RoleAdmin:
		return true
	}
	return false
}

// User is any account on the marketplace: customer, pharmacy, driver or admin.
type User struct {
	BaseModel
	Name         string        `gorm:"not null" json:"name"`
	Email        *string       `gorm:"uniqueIndex" json:"email,omitempty"`
	Phone        string        `json:"phone,omitempty"`
	PasswordHash string        `json:"-"`
	Role         Role          `gorm:"type:varchar(16);not null;index" json:"role"`
	Lat          *float64      `json:"lat,omitempty"`
	Lng          *float64      `json:"lng,omitempty"`
	Address      string        `json:"address,omitempty"`
	VehicleType  string        `json:"vehicleType,omitempty"`
	IsApproved   bool          `gorm:"not null;index" json:"isApproved"`
	FCMToken     string        `json:"fcmToken,omitempty"`
	Pharmacy     *PharmacyMeta `gorm:"foreignKey:UserID" json:"pharmacy,omitempty"`
}

// EmailAddress returns the email or an empty string for phone-only accounts.
func (u *User) EmailAddress() string {
	if u.Email == nil {
		return ""
	}
	return *u.Email
}

// PublicUser is the projection of a User that is safe to return to clients.
type PublicUser struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email,omitempty"`
	Phone      string    `json:"phone,omitempty"`
	Role       Role      `json:"role"`
	IsApproved bool      `json:"isApproved"`
}

// Public strips credentials and internal fields.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.EmailAddress(),
		Phone:      u.Phone,
		Role:       u.Role,
		IsApproved: u.IsApproved,
	}
}
