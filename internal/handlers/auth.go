package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/example/tiryaq/internal/config"
	"github.com/example/tiryaq/internal/models"
	"github.com/example/tiryaq/internal/store"
	"github.com/example/tiryaq/internal/utils"
)

// Notifier is told about accounts that need an admin decision.
type Notifier interface {
	NotifyPendingApproval(ctx context.Context, user models.PublicUser) error
}

// AuthHandler bundles dependencies for authentication endpoints.
type AuthHandler struct {
	store    store.Store
	cfg      *config.Config
	notifier Notifier
}

// NewAuthHandler constructs an AuthHandler. notifier may be nil.
func NewAuthHandler(st store.Store, cfg *config.Config, notifier Notifier) *AuthHandler {
	return &AuthHandler{store: st, cfg: cfg, notifier: notifier}
}

type registerRequest struct {
	Name         string      `json:"name" validate:"required"`
	Email        string      `json:"email" validate:"required,email"`
	Phone        string      `json:"phone" validate:"required"`
	Password     string      `json:"password" validate:"required"`
	Role         models.Role `json:"role"`
	Lat          *float64    `json:"lat"`
	Lng          *float64    `json:"lng"`
	Address      string      `json:"address"`
	Location     string      `json:"location" validate:"required"`
	PharmacyName string      `json:"pharmacyName" validate:"required"`
	OpeningHours string      `json:"openingHours"`
	VehicleType  string      `json:"vehicleType" validate:"required"`
	FCMToken     string      `json:"fcmToken"`
}

func (r *registerRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Phone = strings.TrimSpace(r.Phone)
	r.Location = strings.TrimSpace(r.Location)
	r.Address = strings.TrimSpace(r.Address)
	r.PharmacyName = strings.TrimSpace(r.PharmacyName)
	r.VehicleType = strings.TrimSpace(r.VehicleType)
}

// registrationProfile declares which registerRequest fields a sign-up flow
// requires and which role the account gets.
type registrationProfile struct {
	role     models.Role
	required []string
}

var (
	credentialProfiles = map[models.Role]registrationProfile{
		models.RoleUser:     {role: models.RoleUser, required: []string{"Name", "Email", "Password"}},
		models.RolePharmacy: {role: models.RolePharmacy, required: []string{"Name", "Email", "Password", "PharmacyName", "Phone"}},
		models.RoleDriver:   {role: models.RoleDriver, required: []string{"Name", "Email", "Password", "VehicleType"}},
	}
	customerProfile = registrationProfile{role: models.RoleUser, required: []string{"Name", "Phone", "Location"}}
)

// Register creates an account for the role named in the body.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	role := req.Role
	if role == "" {
		role = models.RoleUser
	}
	profile, ok := credentialProfiles[role]
	if !ok {
		return fiber.NewError(fiber.StatusBadRequest, "invalid role")
	}

	return h.register(c, &req, profile)
}

// RegisterCustomer is the phone-based customer sign-up.
func (h *AuthHandler) RegisterCustomer(c *fiber.Ctx) error {
	var req registerRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	return h.register(c, &req, customerProfile)
}

func (h *AuthHandler) register(c *fiber.Ctx, req *registerRequest, profile registrationProfile) error {
	req.normalize()
	if err := validateStruct(req, profile.required...); err != nil {
		return err
	}

	user := &models.User{
		Name:        req.Name,
		Phone:       req.Phone,
		Role:        profile.role,
		Lat:         req.Lat,
		Lng:         req.Lng,
		Address:     req.Address,
		VehicleType: req.VehicleType,
		FCMToken:    req.FCMToken,
		IsApproved:  profile.role == models.RoleUser,
	}
	if user.Address == "" {
		user.Address = req.Location
	}
	if req.Email != "" {
		email := req.Email
		user.Email = &email
	}
	if req.Password != "" {
		hash, err := utils.HashPassword(req.Password)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to hash password")
		}
		user.PasswordHash = hash
	}

	var pharmacy *models.PharmacyMeta
	if profile.role == models.RolePharmacy {
		pharmacy = &models.PharmacyMeta{
			PharmacyName: req.PharmacyName,
			OpeningHours: req.OpeningHours,
			Phone:        req.Phone,
			IsOpen:       true,
		}
	}

	if err := h.store.CreateUser(c.UserContext(), user, pharmacy); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return fiber.NewError(fiber.StatusConflict, "email already registered")
		}
		return err
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, user, h.cfg.TokenExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	public := user.Public()
	if !user.IsApproved {
		h.notifyPending(public)
	}

	log.Info().Str("user_id", user.ID.String()).Str("role", string(user.Role)).Msg("account registered")

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"token":   token,
		"user":    public,
	})
}

func (h *AuthHandler) notifyPending(user models.PublicUser) {
	if h.notifier == nil {
		return
	}
	go func() {
		if err := h.notifier.NotifyPendingApproval(context.Background(), user); err != nil {
			log.Warn().Err(err).Str("user_id", user.ID.String()).Msg("approval notification failed")
		}
	}()
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login authenticates an existing user.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validateStruct(&req); err != nil {
		return err
	}

	ctx := c.UserContext()
	user, err := h.store.FindUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid email or password")
		}
		return err
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid email or password")
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, user, h.cfg.TokenExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	var extraData interface{} = fiber.Map{}
	if user.Role == models.RolePharmacy {
		pharmacy, err := h.store.FindPharmacyByUserID(ctx, user.ID)
		switch {
		case err == nil:
			extraData = pharmacy
		case !errors.Is(err, store.ErrNotFound):
			return err
		}
	}

	return c.JSON(fiber.Map{
		"token":     token,
		"user":      user,
		"extraData": extraData,
	})
}
