package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/tiryaq/internal/models"
	"github.com/example/tiryaq/internal/store"
)

// ComplaintHandler accepts complaints from signed-in accounts.
type ComplaintHandler struct {
	store store.Store
}

// NewComplaintHandler constructs ComplaintHandler.
func NewComplaintHandler(st store.Store) *ComplaintHandler {
	return &ComplaintHandler{store: st}
}

type complaintRequest struct {
	Text       string `json:"text" validate:"required"`
	SenderName string `json:"senderName"`
}

// CreateComplaint files a complaint on behalf of the caller.
func (h *ComplaintHandler) CreateComplaint(c *fiber.Ctx) error {
	claims, err := currentClaims(c)
	if err != nil {
		return err
	}

	var req complaintRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	req.Text = strings.TrimSpace(req.Text)
	if err := validateStruct(&req); err != nil {
		return err
	}

	complaint := &models.Complaint{
		UserID:     claims.ID,
		Text:       req.Text,
		SenderName: strings.TrimSpace(req.SenderName),
	}
	if err := h.store.CreateComplaint(c.UserContext(), complaint); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true})
}
