package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/example/tiryaq/internal/config"
	"github.com/example/tiryaq/internal/database"
	"github.com/example/tiryaq/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// Page limits a listing. A zero Limit returns everything.
type Page struct {
	Limit  int
	Offset int
}

// OrderFilter narrows ListOrders. Nil fields are ignored; an empty filter
// matches every order.
type OrderFilter struct {
	CustomerID *uuid.UUID
	DriverID   *uuid.UUID
	PharmacyID *uuid.UUID
}

// OrderUpdate lists order mutations. An empty Status or nil DriverID
// leaves that field unchanged.
type OrderUpdate struct {
	Status   models.OrderStatus
	DriverID *uuid.UUID
}

// Store is the persistence capability the HTTP layer depends on.
type Store interface {
	// CreateUser persists user and, when pharmacy is non-nil, its
	// PharmacyMeta as one atomic unit. pharmacy.UserID is filled in.
	CreateUser(ctx context.Context, user *models.User, pharmacy *models.PharmacyMeta) error
	FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListPendingUsers(ctx context.Context, page Page) ([]models.User, error)
	ApproveUser(ctx context.Context, id uuid.UUID) error

	FindPharmacyByID(ctx context.Context, id uuid.UUID) (*models.PharmacyMeta, error)
	FindPharmacyByUserID(ctx context.Context, userID uuid.UUID) (*models.PharmacyMeta, error)
	// ListApprovedPharmacies returns pharmacies whose owner is approved,
	// with a trimmed owner projection attached.
	ListApprovedPharmacies(ctx context.Context) ([]models.PharmacyMeta, error)

	CreateMedicine(ctx context.Context, medicine *models.Medicine) error
	FindMedicineByID(ctx context.Context, id uuid.UUID) (*models.Medicine, error)
	ListMedicines(ctx context.Context, pharmacyID uuid.UUID) ([]models.Medicine, error)

	CreateOrder(ctx context.Context, order *models.Order) error
	FindOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, filter OrderFilter, page Page) ([]models.Order, error)
	// UpdateOrder applies the non-empty fields of update and returns the
	// stored order.
	UpdateOrder(ctx context.Context, id uuid.UUID, update OrderUpdate) (*models.Order, error)

	CreateComplaint(ctx context.Context, complaint *models.Complaint) error
	ListComplaints(ctx context.Context, page Page) ([]models.Complaint, error)

	Close() error
}

// New opens the backend selected by cfg.StorageDriver.
func New(cfg *config.Config) (Store, error) {
	if cfg.StorageDriver == config.DriverMemory {
		return NewMemory(), nil
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	return NewGorm(db), nil
}

// ownerColumns is the owner projection exposed by pharmacy listings.
var ownerColumns = []string{"id", "name", "email", "role", "lat", "lng", "address", "is_approved", "created_at", "updated_at"}

func ownerProjection(u *models.User) *models.User {
	owner := &models.User{
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		Lat:        u.Lat,
		Lng:        u.Lng,
		Address:    u.Address,
		IsApproved: u.IsApproved,
	}
	owner.ID = u.ID
	owner.CreatedAt = u.CreatedAt
	owner.UpdatedAt = u.UpdatedAt
	return owner
}
