package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/example/tiryaq/internal/models"
	"github.com/example/tiryaq/internal/store"
	"github.com/example/tiryaq/internal/utils"
)

// OrderHandler manages order endpoints.
type OrderHandler struct {
	store store.Store
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(st store.Store) *OrderHandler {
	return &OrderHandler{store: st}
}

type createOrderRequest struct {
	PharmacyID string  `json:"pharmacyId" validate:"required,uuid"`
	MedicineID string  `json:"medicineId" validate:"omitempty,uuid"`
	TotalPrice float64 `json:"totalPrice" validate:"min=0"`
}

// CreateOrder records a pending order for the calling customer. Pricing,
// stock and driver assignment happen elsewhere.
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	claims, err := currentClaims(c)
	if err != nil {
		return err
	}

	var req createOrderRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := validateStruct(&req); err != nil {
		return err
	}

	ctx := c.UserContext()
	pharmacyID := uuid.MustParse(req.PharmacyID)
	pharmacy, err := h.store.FindPharmacyByID(ctx, pharmacyID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Pharmacy not found")
		}
		return err
	}
	// Pharmacies awaiting approval are not listed and take no orders.
	approved, err := h.isApproved(ctx, pharmacy.UserID)
	if err != nil {
		return err
	}
	if !approved {
		return fiber.NewError(fiber.StatusNotFound, "Pharmacy not found")
	}

	order := &models.Order{
		CustomerID: claims.ID,
		PharmacyID: pharmacyID,
		Status:     models.OrderPending,
		TotalPrice: req.TotalPrice,
	}

	if req.MedicineID != "" {
		medicineID := uuid.MustParse(req.MedicineID)
		medicine, err := h.store.FindMedicineByID(ctx, medicineID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Medicine not found")
			}
			return err
		}
		if medicine.PharmacyID != pharmacyID {
			return fiber.NewError(fiber.StatusBadRequest, "medicine does not belong to pharmacy")
		}
		order.MedicineID = &medicineID
	}

	if err := h.store.CreateOrder(ctx, order); err != nil {
		return err
	}

	log.Info().
		Str("order_id", order.ID.String()).
		Str("customer_id", claims.ID.String()).
		Str("pharmacy_id", pharmacyID.String()).
		Msg("order created")

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Order created",
		"orderId": order.ID,
		"order":   order,
	})
}

// ListOrders returns the orders visible to the caller's role.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	claims, err := currentClaims(c)
	if err != nil {
		return err
	}

	ctx := c.UserContext()
	filter, err := h.visibleTo(c, claims)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON([]models.Order{})
		}
		return err
	}

	orders, err := h.store.ListOrders(ctx, filter, pageFromQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(orders)
}

func (h *OrderHandler) visibleTo(c *fiber.Ctx, claims *utils.Claims) (store.OrderFilter, error) {
	id := claims.ID
	switch claims.Role {
	case models.RoleAdmin:
		return store.OrderFilter{}, nil
	case models.RoleDriver:
		return store.OrderFilter{DriverID: &id}, nil
	case models.RolePharmacy:
		pharmacy, err := h.store.FindPharmacyByUserID(c.UserContext(), id)
		if err != nil {
			return store.OrderFilter{}, err
		}
		return store.OrderFilter{PharmacyID: &pharmacy.ID}, nil
	default:
		return store.OrderFilter{CustomerID: &id}, nil
	}
}

type updateOrderRequest struct {
	Status   models.OrderStatus `json:"status"`
	DriverID string             `json:"driverId" validate:"omitempty,uuid"`
}

// UpdateOrder changes an order's status and, for admins, its driver.
// Any status may follow any other.
func (h *OrderHandler) UpdateOrder(c *fiber.Ctx) error {
	claims, err := currentClaims(c)
	if err != nil {
		return err
	}

	orderID, err := parseUUID(c.Params("id"), "order id")
	if err != nil {
		return err
	}

	var req updateOrderRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.Status == "" && req.DriverID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing required fields: status")
	}
	if req.Status != "" && !req.Status.Valid() {
		return fiber.NewError(fiber.StatusBadRequest, "invalid fields: status")
	}
	if err := validateStruct(&req); err != nil {
		return err
	}
	if req.DriverID != "" && claims.Role != models.RoleAdmin {
		return fiber.NewError(fiber.StatusForbidden, "only admins can assign drivers")
	}

	ctx := c.UserContext()
	order, err := h.store.FindOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Order not found")
		}
		return err
	}

	if claims.Role != models.RoleAdmin {
		approved, err := h.isApproved(ctx, claims.ID)
		if err != nil {
			return err
		}
		if !approved {
			return fiber.NewError(fiber.StatusForbidden, "account is pending approval")
		}
	}

	switch claims.Role {
	case models.RolePharmacy:
		pharmacy, err := h.store.FindPharmacyByUserID(ctx, claims.ID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		if pharmacy == nil || pharmacy.ID != order.PharmacyID {
			return fiber.NewError(fiber.StatusForbidden, "Forbidden")
		}
	case models.RoleDriver:
		if order.DriverID == nil || *order.DriverID != claims.ID {
			return fiber.NewError(fiber.StatusForbidden, "Forbidden")
		}
	}

	update := store.OrderUpdate{Status: req.Status}
	if req.DriverID != "" {
		driverID := uuid.MustParse(req.DriverID)
		driver, err := h.store.FindUserByID(ctx, driverID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Driver not found")
			}
			return err
		}
		if driver.Role != models.RoleDriver {
			return fiber.NewError(fiber.StatusBadRequest, "user is not a driver")
		}
		if !driver.IsApproved {
			return fiber.NewError(fiber.StatusBadRequest, "driver is pending approval")
		}
		update.DriverID = &driverID
	}

	updated, err := h.store.UpdateOrder(ctx, orderID, update)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Order not found")
		}
		return err
	}

	log.Info().
		Str("order_id", orderID.String()).
		Str("status", string(updated.Status)).
		Str("by", claims.ID.String()).
		Msg("order updated")

	return c.JSON(updated)
}

func (h *OrderHandler) isApproved(ctx context.Context, userID uuid.UUID) (bool, error) {
	user, err := h.store.FindUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return user.IsApproved, nil
}
