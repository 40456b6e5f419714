package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/example/tiryaq/internal/store"
)

// AdminHandler manages admin-only endpoints.
type AdminHandler struct {
	store store.Store
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(st store.Store) *AdminHandler {
	return &AdminHandler{store: st}
}

// ListPending returns accounts still waiting for approval, oldest first.
func (h *AdminHandler) ListPending(c *fiber.Ctx) error {
	users, err := h.store.ListPendingUsers(c.UserContext(), pageFromQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(users)
}

type approveRequest struct {
	UserID string `json:"userId" validate:"required,uuid"`
}

// Approve marks an account as approved. Approving twice is harmless.
func (h *AdminHandler) Approve(c *fiber.Ctx) error {
	var req approveRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := validateStruct(&req); err != nil {
		return err
	}

	userID := uuid.MustParse(req.UserID)
	if err := h.store.ApproveUser(c.UserContext(), userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "User not found")
		}
		return err
	}

	log.Info().Str("user_id", userID.String()).Msg("account approved")
	return c.JSON(fiber.Map{"success": true})
}

// ListComplaints returns complaints, newest first.
func (h *AdminHandler) ListComplaints(c *fiber.Ctx) error {
	complaints, err := h.store.ListComplaints(c.UserContext(), pageFromQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(complaints)
}
