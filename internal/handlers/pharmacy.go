package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/example/tiryaq/internal/models"
	"github.com/example/tiryaq/internal/store"
)

// PharmacyHandler serves the pharmacy directory and inventory.
type PharmacyHandler struct {
	store store.Store
}

// NewPharmacyHandler constructs PharmacyHandler.
func NewPharmacyHandler(st store.Store) *PharmacyHandler {
	return &PharmacyHandler{store: st}
}

// ListPharmacies returns pharmacies whose owners have been approved.
func (h *PharmacyHandler) ListPharmacies(c *fiber.Ctx) error {
	pharmacies, err := h.store.ListApprovedPharmacies(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(pharmacies)
}

// ListMedicines returns the inventory of one pharmacy.
func (h *PharmacyHandler) ListMedicines(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"), "pharmacy id")
	if err != nil {
		return err
	}

	ctx := c.UserContext()
	if _, err := h.store.FindPharmacyByID(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Pharmacy not found")
		}
		return err
	}

	medicines, err := h.store.ListMedicines(ctx, id)
	if err != nil {
		return err
	}
	return c.JSON(medicines)
}

type medicineRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	Stock       int     `json:"stock" validate:"min=0"`
	Price       float64 `json:"price" validate:"min=0"`
	ImageURL    string  `json:"imageUrl"`
}

// AddMedicine adds an inventory line to the caller's pharmacy.
func (h *PharmacyHandler) AddMedicine(c *fiber.Ctx) error {
	claims, err := currentClaims(c)
	if err != nil {
		return err
	}

	var req medicineRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := validateStruct(&req); err != nil {
		return err
	}

	ctx := c.UserContext()
	owner, err := h.store.FindUserByID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Pharmacy profile not found")
		}
		return err
	}
	if !owner.IsApproved {
		return fiber.NewError(fiber.StatusForbidden, "pharmacy account is pending approval")
	}

	pharmacy, err := h.store.FindPharmacyByUserID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Pharmacy profile not found")
		}
		return err
	}

	medicine := &models.Medicine{
		PharmacyID:  pharmacy.ID,
		Name:        req.Name,
		Description: req.Description,
		Stock:       req.Stock,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
	}
	if err := h.store.CreateMedicine(ctx, medicine); err != nil {
		return err
	}

	log.Info().Str("pharmacy_id", pharmacy.ID.String()).Str("medicine_id", medicine.ID.String()).Msg("medicine added")
	return c.Status(fiber.StatusCreated).JSON(medicine)
}
