package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/tiryaq/internal/models"
)

type gormStore struct {
	db *gorm.DB
}

// NewGorm wraps an already migrated gorm connection.
func NewGorm(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}

func paginate(q *gorm.DB, page Page) *gorm.DB {
	if page.Limit > 0 {
		q = q.Limit(page.Limit)
	}
	if page.Offset > 0 {
		q = q.Offset(page.Offset)
	}
	return q
}

func (s *gormStore) CreateUser(ctx context.Context, user *models.User, pharmacy *models.PharmacyMeta) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if user.Email != nil {
			var count int64
			if err := tx.Model(&models.User{}).Where("email = ?", *user.Email).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return ErrDuplicate
			}
		}

		if err := tx.Omit("Pharmacy").Create(user).Error; err != nil {
			return err
		}

		if pharmacy != nil {
			pharmacy.UserID = user.ID
			if err := tx.Omit("User", "Medicines").Create(pharmacy).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return translate(err)
	}

	user.Pharmacy = pharmacy
	return nil
}

func (s *gormStore) FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *gormStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *gormStore) ListPendingUsers(ctx context.Context, page Page) ([]models.User, error) {
	users := []models.User{}
	q := s.db.WithContext(ctx).Where("is_approved = ?", false).Order("created_at asc")
	if err := paginate(q, page).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *gormStore) ApproveUser(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("is_approved", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *gormStore) FindPharmacyByID(ctx context.Context, id uuid.UUID) (*models.PharmacyMeta, error) {
	var pharmacy models.PharmacyMeta
	if err := s.db.WithContext(ctx).First(&pharmacy, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &pharmacy, nil
}

func (s *gormStore) FindPharmacyByUserID(ctx context.Context, userID uuid.UUID) (*models.PharmacyMeta, error) {
	var pharmacy models.PharmacyMeta
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&pharmacy).Error; err != nil {
		return nil, translate(err)
	}
	return &pharmacy, nil
}

func (s *gormStore) ListApprovedPharmacies(ctx context.Context) ([]models.PharmacyMeta, error) {
	db := s.db.WithContext(ctx)
	approved := db.Model(&models.User{}).Select("id").Where("is_approved = ?", true)

	pharmacies := []models.PharmacyMeta{}
	err := db.Where("user_id IN (?)", approved).
		Preload("User", func(q *gorm.DB) *gorm.DB {
			return q.Select(ownerColumns)
		}).
		Order("created_at asc").
		Find(&pharmacies).Error
	if err != nil {
		return nil, err
	}
	return pharmacies, nil
}

func (s *gormStore) CreateMedicine(ctx context.Context, medicine *models.Medicine) error {
	return translate(s.db.WithContext(ctx).Create(medicine).Error)
}

func (s *gormStore) FindMedicineByID(ctx context.Context, id uuid.UUID) (*models.Medicine, error) {
	var medicine models.Medicine
	if err := s.db.WithContext(ctx).First(&medicine, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &medicine, nil
}

func (s *gormStore) ListMedicines(ctx context.Context, pharmacyID uuid.UUID) ([]models.Medicine, error) {
	medicines := []models.Medicine{}
	if err := s.db.WithContext(ctx).
		Where("pharmacy_id = ?", pharmacyID).
		Order("created_at asc").
		Find(&medicines).Error; err != nil {
		return nil, err
	}
	return medicines, nil
}

func (s *gormStore) CreateOrder(ctx context.Context, order *models.Order) error {
	return translate(s.db.WithContext(ctx).
		Omit("Customer", "Driver", "Pharmacy", "Medicine").
		Create(order).Error)
}

func (s *gormStore) FindOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

func (s *gormStore) ListOrders(ctx context.Context, filter OrderFilter, page Page) ([]models.Order, error) {
	q := s.db.WithContext(ctx).Model(&models.Order{})
	if filter.CustomerID != nil {
		q = q.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.DriverID != nil {
		q = q.Where("driver_id = ?", *filter.DriverID)
	}
	if filter.PharmacyID != nil {
		q = q.Where("pharmacy_id = ?", *filter.PharmacyID)
	}

	orders := []models.Order{}
	if err := paginate(q.Order("created_at desc"), page).Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *gormStore) UpdateOrder(ctx context.Context, id uuid.UUID, update OrderUpdate) (*models.Order, error) {
	changes := map[string]interface{}{}
	if update.Status != "" {
		changes["status"] = update.Status
	}
	if update.DriverID != nil {
		changes["driver_id"] = *update.DriverID
	}
	if len(changes) == 0 {
		return s.FindOrderByID(ctx, id)
	}

	res := s.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(changes)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.FindOrderByID(ctx, id)
}

func (s *gormStore) CreateComplaint(ctx context.Context, complaint *models.Complaint) error {
	return translate(s.db.WithContext(ctx).Omit("User").Create(complaint).Error)
}

func (s *gormStore) ListComplaints(ctx context.Context, page Page) ([]models.Complaint, error) {
	complaints := []models.Complaint{}
	q := s.db.WithContext(ctx).Order("created_at desc")
	if err := paginate(q, page).Find(&complaints).Error; err != nil {
		return nil, err
	}
	return complaints, nil
}

func (s *gormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
