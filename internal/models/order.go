package models

import (
	"github.com/google/uuid"
)

// OrderStatus is the lifecycle stage of an Order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderAccepted   OrderStatus = "accepted"
	OrderDelivering OrderStatus = "delivering"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// Valid reports whether s is a known status. Any valid status may follow
// any other; no transition rules are enforced.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderAccepted, OrderDelivering, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// Order is a customer request placed with one pharmacy.
type Order struct {
	BaseModel
	CustomerID uuid.UUID     `gorm:"type:uuid;index;not null" json:"customerId"`
	Customer   *User         `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	DriverID   *uuid.UUID    `gorm:"type:uuid;index" json:"driverId,omitempty"`
	Driver     *User         `gorm:"foreignKey:DriverID" json:"driver,omitempty"`
	PharmacyID uuid.UUID     `gorm:"type:uuid;index;not null" json:"pharmacyId"`
	Pharmacy   *PharmacyMeta `gorm:"foreignKey:PharmacyID" json:"pharmacy,omitempty"`
	MedicineID *uuid.UUID    `gorm:"type:uuid" json:"medicineId,omitempty"`
	Medicine   *Medicine     `gorm:"foreignKey:MedicineID" json:"medicine,omitempty"`
	Status     OrderStatus   `gorm:"type:varchar(16);not null;index" json:"status"`
	TotalPrice float64       `json:"totalPrice"`
}
