package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/tiryaq/internal/models"
)

// memoryStore keeps every entity in process memory. Records are kept in
// insertion order so listings are stable; values are copied in and out so
// callers never share state with the store.
type memoryStore struct {
	mu sync.RWMutex

	users      map[uuid.UUID]models.User
	userOrder  []uuid.UUID
	emails     map[string]uuid.UUID
	pharmacies map[uuid.UUID]models.PharmacyMeta
	pharmOrder []uuid.UUID
	byOwner    map[uuid.UUID]uuid.UUID
	medicines  map[uuid.UUID]models.Medicine
	medOrder   []uuid.UUID
	orders     map[uuid.UUID]models.Order
	orderOrder []uuid.UUID
	complaints []models.Complaint
}

// NewMemory returns an empty process-lifetime store.
func NewMemory() Store {
	return &memoryStore{
		users:      make(map[uuid.UUID]models.User),
		emails:     make(map[string]uuid.UUID),
		pharmacies: make(map[uuid.UUID]models.PharmacyMeta),
		byOwner:    make(map[uuid.UUID]uuid.UUID),
		medicines:  make(map[uuid.UUID]models.Medicine),
		orders:     make(map[uuid.UUID]models.Order),
	}
}

func now() time.Time {
	return time.Now().UTC()
}

func window(total int, page Page) (int, int) {
	start := page.Offset
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := total
	if page.Limit > 0 && start+page.Limit < end {
		end = start + page.Limit
	}
	return start, end
}

func (s *memoryStore) CreateUser(ctx context.Context, user *models.User, pharmacy *models.PharmacyMeta) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.Email != nil {
		if _, taken := s.emails[*user.Email]; taken {
			return ErrDuplicate
		}
	}

	ts := now()
	user.Stamp(ts)
	if _, exists := s.users[user.ID]; exists {
		return ErrDuplicate
	}

	stored := *user
	stored.Pharmacy = nil
	s.users[user.ID] = stored
	s.userOrder = append(s.userOrder, user.ID)
	if user.Email != nil {
		s.emails[*user.Email] = user.ID
	}

	if pharmacy != nil {
		pharmacy.UserID = user.ID
		pharmacy.Stamp(ts)
		meta := *pharmacy
		meta.User = nil
		meta.Medicines = nil
		s.pharmacies[pharmacy.ID] = meta
		s.pharmOrder = append(s.pharmOrder, pharmacy.ID)
		s.byOwner[user.ID] = pharmacy.ID
	}

	user.Pharmacy = pharmacy
	return nil
}

func (s *memoryStore) FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (s *memoryStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[email]
	if !ok {
		return nil, ErrNotFound
	}
	user := s.users[id]
	return &user, nil
}

func (s *memoryStore) ListPendingUsers(ctx context.Context, page Page) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pending := []models.User{}
	for _, id := range s.userOrder {
		if user := s.users[id]; !user.IsApproved {
			pending = append(pending, user)
		}
	}
	start, end := window(len(pending), page)
	return pending[start:end], nil
}

func (s *memoryStore) ApproveUser(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	user.IsApproved = true
	user.UpdatedAt = now()
	s.users[id] = user
	return nil
}

func (s *memoryStore) FindPharmacyByID(ctx context.Context, id uuid.UUID) (*models.PharmacyMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pharmacy, ok := s.pharmacies[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &pharmacy, nil
}

func (s *memoryStore) FindPharmacyByUserID(ctx context.Context, userID uuid.UUID) (*models.PharmacyMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byOwner[userID]
	if !ok {
		return nil, ErrNotFound
	}
	pharmacy := s.pharmacies[id]
	return &pharmacy, nil
}

func (s *memoryStore) ListApprovedPharmacies(ctx context.Context) ([]models.PharmacyMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pharmacies := []models.PharmacyMeta{}
	for _, id := range s.pharmOrder {
		pharmacy := s.pharmacies[id]
		owner, ok := s.users[pharmacy.UserID]
		if !ok || !owner.IsApproved {
			continue
		}
		pharmacy.User = ownerProjection(&owner)
		pharmacies = append(pharmacies, pharmacy)
	}
	return pharmacies, nil
}

func (s *memoryStore) CreateMedicine(ctx context.Context, medicine *models.Medicine) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	medicine.Stamp(now())
	s.medicines[medicine.ID] = *medicine
	s.medOrder = append(s.medOrder, medicine.ID)
	return nil
}

func (s *memoryStore) FindMedicineByID(ctx context.Context, id uuid.UUID) (*models.Medicine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	medicine, ok := s.medicines[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &medicine, nil
}

func (s *memoryStore) ListMedicines(ctx context.Context, pharmacyID uuid.UUID) ([]models.Medicine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	medicines := []models.Medicine{}
	for _, id := range s.medOrder {
		if medicine := s.medicines[id]; medicine.PharmacyID == pharmacyID {
			medicines = append(medicines, medicine)
		}
	}
	return medicines, nil
}

func (s *memoryStore) CreateOrder(ctx context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order.Stamp(now())
	stored := *order
	stored.Customer, stored.Driver, stored.Pharmacy, stored.Medicine = nil, nil, nil, nil
	s.orders[order.ID] = stored
	s.orderOrder = append(s.orderOrder, order.ID)
	return nil
}

func (s *memoryStore) FindOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &order, nil
}

func matches(order models.Order, filter OrderFilter) bool {
	if filter.CustomerID != nil && order.CustomerID != *filter.CustomerID {
		return false
	}
	if filter.DriverID != nil && (order.DriverID == nil || *order.DriverID != *filter.DriverID) {
		return false
	}
	if filter.PharmacyID != nil && order.PharmacyID != *filter.PharmacyID {
		return false
	}
	return true
}

func (s *memoryStore) ListOrders(ctx context.Context, filter OrderFilter, page Page) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := []models.Order{}
	for i := len(s.orderOrder) - 1; i >= 0; i-- {
		if order := s.orders[s.orderOrder[i]]; matches(order, filter) {
			orders = append(orders, order)
		}
	}
	start, end := window(len(orders), page)
	return orders[start:end], nil
}

func (s *memoryStore) UpdateOrder(ctx context.Context, id uuid.UUID, update OrderUpdate) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	if update.Status != "" {
		order.Status = update.Status
	}
	if update.DriverID != nil {
		driverID := *update.DriverID
		order.DriverID = &driverID
	}
	order.UpdatedAt = now()
	s.orders[id] = order
	return &order, nil
}

func (s *memoryStore) CreateComplaint(ctx context.Context, complaint *models.Complaint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	complaint.Stamp(now())
	stored := *complaint
	stored.User = nil
	s.complaints = append(s.complaints, stored)
	return nil
}

func (s *memoryStore) ListComplaints(ctx context.Context, page Page) ([]models.Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	complaints := make([]models.Complaint, 0, len(s.complaints))
	for i := len(s.complaints) - 1; i >= 0; i-- {
		complaints = append(complaints, s.complaints[i])
	}
	start, end := window(len(complaints), page)
	return complaints[start:end], nil
}

func (s *memoryStore) Close() error {
	return nil
}
