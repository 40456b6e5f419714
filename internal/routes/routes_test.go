package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/example/tiryaq/internal/config"
	"github.com/example/tiryaq/internal/models"
	"github.com/example/tiryaq/internal/services"
	"github.com/example/tiryaq/internal/store"
	"github.com/example/tiryaq/internal/utils"
)

func init() {
	utils.HashCost = bcrypt.MinCost
}

type recordingNotifier struct {
	sent chan models.PublicUser
}

func (n *recordingNotifier) NotifyPendingApproval(ctx context.Context, user models.PublicUser) error {
	n.sent <- user
	return nil
}

type testEnv struct {
	app      *fiber.App
	store    store.Store
	notifier *recordingNotifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		JWTSecret:    "test-secret",
		TokenExpires: time.Hour,
		CORSOrigins:  "*",
	}
	st := store.NewMemory()
	notifier := &recordingNotifier{sent: make(chan models.PublicUser, 8)}

	return &testEnv{
		app:      NewApp(cfg, st, notifier),
		store:    st,
		notifier: notifier,
	}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func (e *testEnv) object(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	status, raw := e.do(t, method, path, token, body)
	out := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return status, out
}

func (e *testEnv) list(t *testing.T, path, token string) []map[string]interface{} {
	t.Helper()
	status, raw := e.do(t, fiber.MethodGet, path, token, nil)
	require.Equal(t, fiber.StatusOK, status, string(raw))
	out := []map[string]interface{}{}
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return out
}

type account struct {
	ID    string
	Token string
}

func (e *testEnv) register(t *testing.T, body fiber.Map) account {
	t.Helper()
	status, out := e.object(t, fiber.MethodPost, "/api/auth/register", "", body)
	require.Equal(t, fiber.StatusCreated, status, out)
	user := out["user"].(map[string]interface{})
	return account{ID: user["id"].(string), Token: out["token"].(string)}
}

func (e *testEnv) admin(t *testing.T) account {
	t.Helper()
	_, err := services.EnsureAdmin(context.Background(), e.store, "Root", "admin@tiryaq.test", "adminpass")
	require.NoError(t, err)

	status, out := e.object(t, fiber.MethodPost, "/api/auth/login", "", fiber.Map{
		"email": "admin@tiryaq.test", "password": "adminpass",
	})
	require.Equal(t, fiber.StatusOK, status, out)
	user := out["user"].(map[string]interface{})
	return account{ID: user["id"].(string), Token: out["token"].(string)}
}

func (e *testEnv) approve(t *testing.T, adminToken, userID string) {
	t.Helper()
	status, out := e.object(t, fiber.MethodPost, "/api/admin/approve", adminToken, fiber.Map{"userId": userID})
	require.Equal(t, fiber.StatusOK, status, out)
}

func (e *testEnv) pharmacyID(t *testing.T, ownerID string) string {
	t.Helper()
	pharmacy, err := e.store.FindPharmacyByUserID(context.Background(), uuid.MustParse(ownerID))
	require.NoError(t, err)
	return pharmacy.ID.String()
}

func customerBody(email string) fiber.Map {
	return fiber.Map{"name": "Sara", "email": email, "password": "secret"}
}

func pharmacyBody(email string) fiber.Map {
	return fiber.Map{
		"name": "Omar", "email": email, "password": "secret", "role": "pharmacy",
		"pharmacyName": "Shifa", "phone": "0599000000", "lat": 31.5, "lng": 34.46,
	}
}

func driverBody(email string) fiber.Map {
	return fiber.Map{
		"name": "Khaled", "email": email, "password": "secret", "role": "driver", "vehicleType": "motorbike",
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	status, out := env.object(t, fiber.MethodGet, "/health", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "OK", out["status"])
}

func TestRegister_Customer(t *testing.T) {
	env := newTestEnv(t)

	status, out := env.object(t, fiber.MethodPost, "/api/auth/register", "", customerBody("Sara@Example.com"))
	require.Equal(t, fiber.StatusCreated, status, out)
	assert.Equal(t, true, out["success"])
	assert.NotEmpty(t, out["token"])

	user := out["user"].(map[string]interface{})
	assert.Equal(t, "user", user["role"])
	assert.Equal(t, true, user["isApproved"])
	assert.Equal(t, "sara@example.com", user["email"])
	assert.NotContains(t, user, "password")
	assert.NotContains(t, user, "passwordHash")

	select {
	case u := <-env.notifier.sent:
		t.Fatalf("unexpected approval notification for %s", u.ID)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRegister_PharmacyPendingApproval(t *testing.T) {
	env := newTestEnv(t)

	status, out := env.object(t, fiber.MethodPost, "/api/auth/register", "", pharmacyBody("shifa@example.com"))
	require.Equal(t, fiber.StatusCreated, status, out)

	user := out["user"].(map[string]interface{})
	assert.Equal(t, "pharmacy", user["role"])
	assert.Equal(t, false, user["isApproved"])

	select {
	case u := <-env.notifier.sent:
		assert.Equal(t, user["id"], u.ID.String())
		assert.Equal(t, models.RolePharmacy, u.Role)
	case <-time.After(time.Second):
		t.Fatal("expected approval notification")
	}

	pharmacy, err := env.store.FindPharmacyByUserID(context.Background(), uuid.MustParse(user["id"].(string)))
	require.NoError(t, err)
	assert.Equal(t, "Shifa", pharmacy.PharmacyName)
	assert.Equal(t, "0599000000", pharmacy.Phone)
	assert.True(t, pharmacy.IsOpen)
}

func TestRegister_Driver(t *testing.T) {
	env := newTestEnv(t)

	status, out := env.object(t, fiber.MethodPost, "/api/auth/register", "", driverBody("khaled@example.com"))
	require.Equal(t, fiber.StatusCreated, status, out)
	user := out["user"].(map[string]interface{})
	assert.Equal(t, "driver", user["role"])
	assert.Equal(t, false, user["isApproved"])

	_, err := env.store.FindPharmacyByUserID(context.Background(), uuid.MustParse(user["id"].(string)))
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRegister_Validation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name    string
		body    fiber.Map
		message string
	}{
		{"customer without password", fiber.Map{"name": "A", "email": "a@example.com"}, "password"},
		{"customer without name", fiber.Map{"email": "a@example.com", "password": "x"}, "name"},
		{"pharmacy without pharmacy name", fiber.Map{"name": "A", "email": "a@example.com", "password": "x", "role": "pharmacy", "phone": "1"}, "pharmacyName"},
		{"pharmacy without phone", fiber.Map{"name": "A", "email": "a@example.com", "password": "x", "role": "pharmacy", "pharmacyName": "P"}, "phone"},
		{"driver without vehicle", fiber.Map{"name": "A", "email": "a@example.com", "password": "x", "role": "driver"}, "vehicleType"},
		{"malformed email", fiber.Map{"name": "A", "email": "not-an-email", "password": "x"}, "email"},
		{"admin self registration", fiber.Map{"name": "A", "email": "a@example.com", "password": "x", "role": "admin"}, "invalid role"},
		{"unknown role", fiber.Map{"name": "A", "email": "a@example.com", "password": "x", "role": "nurse"}, "invalid role"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, out := env.object(t, fiber.MethodPost, "/api/auth/register", "", tt.body)
			assert.Equal(t, fiber.StatusBadRequest, status)
			assert.Equal(t, false, out["success"])
			assert.Contains(t, out["message"], tt.message)
		})
	}

	pending, err := env.store.ListPendingUsers(context.Background(), store.Page{})
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestRegister_MalformedBody(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(fiber.MethodPost, "/api/auth/register", strings.NewReader("{not json"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, customerBody("dup@example.com"))

	status, out := env.object(t, fiber.MethodPost, "/api/auth/register", "", driverBody("DUP@example.com"))
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, false, out["success"])
}

func TestRegisterCustomer_PhoneOnly(t *testing.T) {
	env := newTestEnv(t)

	status, out := env.object(t, fiber.MethodPost, "/api/users/register", "", fiber.Map{
		"name": "Ali", "phone": "0599", "location": "Gaza",
	})
	require.Equal(t, fiber.StatusCreated, status, out)
	user := out["user"].(map[string]interface{})
	assert.Equal(t, "user", user["role"])
	assert.Equal(t, true, user["isApproved"])
	assert.Equal(t, "0599", user["phone"])
	assert.NotContains(t, user, "email")

	stored, err := env.store.FindUserByID(context.Background(), uuid.MustParse(user["id"].(string)))
	require.NoError(t, err)
	assert.Equal(t, "Gaza", stored.Address)
	assert.Empty(t, stored.PasswordHash)

	status, _ = env.object(t, fiber.MethodPost, "/api/users/register", "", fiber.Map{"name": "Ali", "phone": "0599"})
	assert.Equal(t, fiber.StatusBadRequest, status)

	// The role field is ignored on this route.
	status, out = env.object(t, fiber.MethodPost, "/api/users/register", "", fiber.Map{
		"name": "Eve", "phone": "0598", "location": "Gaza", "role": "admin",
	})
	require.Equal(t, fiber.StatusCreated, status, out)
	assert.Equal(t, "user", out["user"].(map[string]interface{})["role"])
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, customerBody("sara@example.com"))
	pharmacy := env.register(t, pharmacyBody("shifa@example.com"))

	status, out := env.object(t, fiber.MethodPost, "/api/auth/login", "", fiber.Map{
		"email": "SARA@example.com", "password": "secret",
	})
	require.Equal(t, fiber.StatusOK, status, out)
	assert.NotEmpty(t, out["token"])
	assert.Equal(t, map[string]interface{}{}, out["extraData"])
	assert.NotContains(t, out["user"], "passwordHash")

	status, out = env.object(t, fiber.MethodPost, "/api/auth/login", "", fiber.Map{
		"email": "shifa@example.com", "password": "secret",
	})
	require.Equal(t, fiber.StatusOK, status, out)
	extra := out["extraData"].(map[string]interface{})
	assert.Equal(t, "Shifa", extra["pharmacyName"])
	assert.Equal(t, pharmacy.ID, extra["userId"])

	tests := []struct {
		name string
		body fiber.Map
		want int
	}{
		{"wrong password", fiber.Map{"email": "sara@example.com", "password": "nope"}, fiber.StatusUnauthorized},
		{"unknown email", fiber.Map{"email": "ghost@example.com", "password": "secret"}, fiber.StatusUnauthorized},
		{"missing password", fiber.Map{"email": "sara@example.com"}, fiber.StatusBadRequest},
		{"missing email", fiber.Map{"password": "secret"}, fiber.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, out := env.object(t, fiber.MethodPost, "/api/auth/login", "", tt.body)
			assert.Equal(t, tt.want, status)
			assert.Equal(t, false, out["success"])
		})
	}
}

func TestRegisteredTokenAuthenticates(t *testing.T) {
	env := newTestEnv(t)
	customer := env.register(t, customerBody("sara@example.com"))

	orders := env.list(t, "/api/orders", customer.Token)
	assert.Empty(t, orders)
}

func TestListPharmacies_OnlyApprovedOwners(t *testing.T) {
	env := newTestEnv(t)
	admin := env.admin(t)
	approved := env.register(t, pharmacyBody("a@example.com"))
	env.register(t, pharmacyBody("b@example.com"))

	assert.Empty(t, env.list(t, "/api/pharmacies", ""))

	env.approve(t, admin.Token, approved.ID)

	pharmacies := env.list(t, "/api/pharmacies", "")
	require.Len(t, pharmacies, 1)
	assert.Equal(t, approved.ID, pharmacies[0]["userId"])

	owner := pharmacies[0]["user"].(map[string]interface{})
	assert.Equal(t, "a@example.com", owner["email"])
	assert.Equal(t, 31.5, owner["lat"])
	assert.Equal(t, 34.46, owner["lng"])
	assert.NotContains(t, owner, "phone")
	assert.NotEmpty(t, owner["createdAt"])
	assert.NotEqual(t, "0001-01-01T00:00:00Z", owner["createdAt"])
	assert.NotEqual(t, "0001-01-01T00:00:00Z", owner["updatedAt"])
}

func TestAddMedicine(t *testing.T) {
	env := newTestEnv(t)
	admin := env.admin(t)
	pharmacy := env.register(t, pharmacyBody("shifa@example.com"))
	customer := env.register(t, customerBody("sara@example.com"))

	medicine := fiber.Map{"name": "Paracetamol", "stock": 10, "price": 4.5, "imageUrl": "https://img.test/p.png"}

	status, out := env.object(t, fiber.MethodPost, "/api/pharmacies/medicine", pharmacy.Token, medicine)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Contains(t, out["message"], "pending approval")

	env.approve(t, admin.Token, pharmacy.ID)

	status, out = env.object(t, fiber.MethodPost, "/api/pharmacies/medicine", pharmacy.Token, medicine)
	require.Equal(t, fiber.StatusCreated, status, out)
	assert.Equal(t, "Paracetamol", out["name"])
	assert.Equal(t, float64(10), out["stock"])
	assert.Equal(t, 4.5, out["price"])
	assert.Equal(t, env.pharmacyID(t, pharmacy.ID), out["pharmacyId"])

	status, _ = env.object(t, fiber.MethodPost, "/api/pharmacies/medicine", pharmacy.Token, fiber.Map{"name": "X", "stock": -1})
	assert.Equal(t, fiber.StatusBadRequest, status)
	status, _ = env.object(t, fiber.MethodPost, "/api/pharmacies/medicine", pharmacy.Token, fiber.Map{"name": "X", "price": -0.5})
	assert.Equal(t, fiber.StatusBadRequest, status)
	status, _ = env.object(t, fiber.MethodPost, "/api/pharmacies/medicine", pharmacy.Token, fiber.Map{"stock": 1})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = env.object(t, fiber.MethodPost, "/api/pharmacies/medicine", customer.Token, medicine)
	assert.Equal(t, fiber.StatusForbidden, status)
	status, _ = env.object(t, fiber.MethodPost, "/api/pharmacies/medicine", "", medicine)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestAddMedicine_WithoutPharmacyProfile(t *testing.T) {
	env := newTestEnv(t)

	// A pharmacy-role token whose account has no storefront.
	owner := &models.User{Name: "Ghost", Role: models.RolePharmacy, IsApproved: true}
	require.NoError(t, env.store.CreateUser(context.Background(), owner, nil))
	token, err := utils.GenerateToken("test-secret", owner, time.Hour)
	require.NoError(t, err)

	status, out := env.object(t, fiber.MethodPost, "/api/pharmacies/medicine", token, fiber.Map{"name": "X"})
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "Pharmacy profile not found", out["message"])
}

func TestListMedicines(t *testing.T) {
	env := newTestEnv(t)
	admin := env.admin(t)
	pharmacy := env.register(t, pharmacyBody("shifa@example.com"))
	env.approve(t, admin.Token, pharmacy.ID)

	for _, name := range []string{"Aspirin", "Ibuprofen"} {
		status, out := env.object(t, fiber.MethodPost, "/api/pharmacies/medicine", pharmacy.Token, fiber.Map{"name": name, "stock": 1, "price": 1})
		require.Equal(t, fiber.StatusCreated, status, out)
	}

	medicines := env.list(t, "/api/pharmacies/"+env.pharmacyID(t, pharmacy.ID)+"/medicines", "")
	require.Len(t, medicines, 2)
	assert.Equal(t, "Aspirin", medicines[0]["name"])
	assert.Equal(t, "Ibuprofen", medicines[1]["name"])

	status, _ := env.object(t, fiber.MethodGet, "/api/pharmacies/"+uuid.NewString()+"/medicines", "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	status, _ = env.object(t, fiber.MethodGet, "/api/pharmacies/not-a-uuid/medicines", "", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

type marketplace struct {
	admin      account
	customer   account
	pharmacy   account
	rival      account
	driver     account
	pharmacyID string
	rivalID    string
	medicineID string
}

func newMarketplace(t *testing.T, env *testEnv) marketplace {
	t.Helper()

	m := marketplace{
		admin:    env.admin(t),
		customer: env.register(t, customerBody("sara@example.com")),
		pharmacy: env.register(t, pharmacyBody("shifa@example.com")),
		rival:    env.register(t, pharmacyBody("rival@example.com")),
		driver:   env.register(t, driverBody("khaled@example.com")),
	}
	for _, id := range []string{m.pharmacy.ID, m.rival.ID, m.driver.ID} {
		env.approve(t, m.admin.Token, id)
	}
	m.pharmacyID = env.pharmacyID(t, m.pharmacy.ID)
	m.rivalID = env.pharmacyID(t, m.rival.ID)

	status, out := env.object(t, fiber.MethodPost, "/api/pharmacies/medicine", m.pharmacy.Token, fiber.Map{"name": "Amoxicillin", "stock": 5, "price": 12})
	require.Equal(t, fiber.StatusCreated, status, out)
	m.medicineID = out["id"].(string)
	return m
}

func (e *testEnv) placeOrder(t *testing.T, token string, body fiber.Map) string {
	t.Helper()
	status, out := e.object(t, fiber.MethodPost, "/api/orders", token, body)
	require.Equal(t, fiber.StatusCreated, status, out)
	return out["orderId"].(string)
}

func TestCreateOrder(t *testing.T) {
	env := newTestEnv(t)
	m := newMarketplace(t, env)

	for _, path := range []string{"/api/orders", "/api/orders/create"} {
		status, out := env.object(t, fiber.MethodPost, path, m.customer.Token, fiber.Map{
			"pharmacyId": m.pharmacyID, "medicineId": m.medicineID, "totalPrice": 12,
		})
		require.Equal(t, fiber.StatusCreated, status, out)
		assert.Equal(t, "Order created", out["message"])

		order := out["order"].(map[string]interface{})
		assert.Equal(t, out["orderId"], order["id"])
		assert.Equal(t, "pending", order["status"])
		assert.Equal(t, m.customer.ID, order["customerId"])
		assert.Equal(t, m.medicineID, order["medicineId"])
		assert.NotContains(t, order, "driverId")
	}

	// Ordering never touches inventory.
	medicine, err := env.store.FindMedicineByID(context.Background(), uuid.MustParse(m.medicineID))
	require.NoError(t, err)
	assert.Equal(t, 5, medicine.Stock)
}

func TestCreateOrder_Rejections(t *testing.T) {
	env := newTestEnv(t)
	m := newMarketplace(t, env)

	tests := []struct {
		name  string
		token string
		body  fiber.Map
		want  int
	}{
		{"missing pharmacy", m.customer.Token, fiber.Map{"totalPrice": 3}, fiber.StatusBadRequest},
		{"malformed pharmacy id", m.customer.Token, fiber.Map{"pharmacyId": "abc"}, fiber.StatusBadRequest},
		{"negative total", m.customer.Token, fiber.Map{"pharmacyId": m.pharmacyID, "totalPrice": -1}, fiber.StatusBadRequest},
		{"unknown pharmacy", m.customer.Token, fiber.Map{"pharmacyId": uuid.NewString()}, fiber.StatusNotFound},
		{"unknown medicine", m.customer.Token, fiber.Map{"pharmacyId": m.pharmacyID, "medicineId": uuid.NewString()}, fiber.StatusNotFound},
		{"medicine of another pharmacy", m.customer.Token, fiber.Map{"pharmacyId": m.rivalID, "medicineId": m.medicineID}, fiber.StatusBadRequest},
		{"pharmacy cannot order", m.pharmacy.Token, fiber.Map{"pharmacyId": m.pharmacyID}, fiber.StatusForbidden},
		{"driver cannot order", m.driver.Token, fiber.Map{"pharmacyId": m.pharmacyID}, fiber.StatusForbidden},
		{"anonymous", "", fiber.Map{"pharmacyId": m.pharmacyID}, fiber.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, out := env.object(t, fiber.MethodPost, "/api/orders", tt.token, tt.body)
			assert.Equal(t, tt.want, status, out)
		})
	}

	orders, err := env.store.ListOrders(context.Background(), store.OrderFilter{}, store.Page{})
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestListOrders_ScopedByRole(t *testing.T) {
	env := newTestEnv(t)
	m := newMarketplace(t, env)
	other := env.register(t, customerBody("other@example.com"))

	first := env.placeOrder(t, m.customer.Token, fiber.Map{"pharmacyId": m.pharmacyID})
	second := env.placeOrder(t, other.Token, fiber.Map{"pharmacyId": m.rivalID})

	ids := func(orders []map[string]interface{}) []string {
		out := make([]string, 0, len(orders))
		for _, o := range orders {
			out = append(out, o["id"].(string))
		}
		return out
	}

	assert.Equal(t, []string{first}, ids(env.list(t, "/api/orders", m.customer.Token)))
	assert.Equal(t, []string{second}, ids(env.list(t, "/api/orders", other.Token)))
	assert.Equal(t, []string{first}, ids(env.list(t, "/api/orders", m.pharmacy.Token)))
	assert.Equal(t, []string{second}, ids(env.list(t, "/api/orders", m.rival.Token)))
	assert.Empty(t, env.list(t, "/api/orders", m.driver.Token))
	assert.Equal(t, []string{second, first}, ids(env.list(t, "/api/orders", m.admin.Token)))
	assert.Equal(t, []string{first}, ids(env.list(t, "/api/orders?page=2&limit=1", m.admin.Token)))

	status, _ := env.do(t, fiber.MethodGet, "/api/orders", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestUpdateOrder(t *testing.T) {
	env := newTestEnv(t)
	m := newMarketplace(t, env)
	orderID := env.placeOrder(t, m.customer.Token, fiber.Map{"pharmacyId": m.pharmacyID})
	path := "/api/orders/" + orderID + "/status"

	status, out := env.object(t, fiber.MethodPatch, path, m.pharmacy.Token, fiber.Map{"status": "accepted"})
	require.Equal(t, fiber.StatusOK, status, out)
	assert.Equal(t, "accepted", out["status"])

	// Transitions are not constrained.
	status, out = env.object(t, fiber.MethodPatch, path, m.pharmacy.Token, fiber.Map{"status": "pending"})
	require.Equal(t, fiber.StatusOK, status, out)
	assert.Equal(t, "pending", out["status"])

	status, _ = env.object(t, fiber.MethodPatch, path, m.rival.Token, fiber.Map{"status": "cancelled"})
	assert.Equal(t, fiber.StatusForbidden, status)
	status, _ = env.object(t, fiber.MethodPatch, path, m.driver.Token, fiber.Map{"status": "delivering"})
	assert.Equal(t, fiber.StatusForbidden, status)
	status, _ = env.object(t, fiber.MethodPatch, path, m.customer.Token, fiber.Map{"status": "cancelled"})
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = env.object(t, fiber.MethodPatch, path, m.pharmacy.Token, fiber.Map{"status": "shipped"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	status, _ = env.object(t, fiber.MethodPatch, path, m.pharmacy.Token, fiber.Map{})
	assert.Equal(t, fiber.StatusBadRequest, status)
	status, _ = env.object(t, fiber.MethodPatch, "/api/orders/"+uuid.NewString()+"/status", m.admin.Token, fiber.Map{"status": "accepted"})
	assert.Equal(t, fiber.StatusNotFound, status)
	status, _ = env.object(t, fiber.MethodPatch, "/api/orders/nope/status", m.admin.Token, fiber.Map{"status": "accepted"})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestUpdateOrder_DriverAssignment(t *testing.T) {
	env := newTestEnv(t)
	m := newMarketplace(t, env)
	orderID := env.placeOrder(t, m.customer.Token, fiber.Map{"pharmacyId": m.pharmacyID})
	path := "/api/orders/" + orderID + "/status"

	status, _ := env.object(t, fiber.MethodPatch, path, m.pharmacy.Token, fiber.Map{"driverId": m.driver.ID})
	assert.Equal(t, fiber.StatusForbidden, status)
	status, _ = env.object(t, fiber.MethodPatch, path, m.admin.Token, fiber.Map{"driverId": m.customer.ID})
	assert.Equal(t, fiber.StatusBadRequest, status)
	status, _ = env.object(t, fiber.MethodPatch, path, m.admin.Token, fiber.Map{"driverId": uuid.NewString()})
	assert.Equal(t, fiber.StatusNotFound, status)

	status, out := env.object(t, fiber.MethodPatch, path, m.admin.Token, fiber.Map{"driverId": m.driver.ID, "status": "accepted"})
	require.Equal(t, fiber.StatusOK, status, out)
	assert.Equal(t, m.driver.ID, out["driverId"])
	assert.Equal(t, "accepted", out["status"])

	status, out = env.object(t, fiber.MethodPatch, path, m.driver.Token, fiber.Map{"status": "delivered"})
	require.Equal(t, fiber.StatusOK, status, out)
	assert.Equal(t, "delivered", out["status"])

	orders := env.list(t, "/api/orders", m.driver.Token)
	require.Len(t, orders, 1)
	assert.Equal(t, orderID, orders[0]["id"])
}

func TestOrders_RequireApprovedAccounts(t *testing.T) {
	env := newTestEnv(t)
	m := newMarketplace(t, env)
	waiting := env.register(t, pharmacyBody("waiting@example.com"))
	rookie := env.register(t, driverBody("rookie@example.com"))
	waitingID := env.pharmacyID(t, waiting.ID)

	status, out := env.object(t, fiber.MethodPost, "/api/orders", m.customer.Token, fiber.Map{"pharmacyId": waitingID})
	assert.Equal(t, fiber.StatusNotFound, status, out)

	orderID := env.placeOrder(t, m.customer.Token, fiber.Map{"pharmacyId": m.pharmacyID})
	status, out = env.object(t, fiber.MethodPatch, "/api/orders/"+orderID+"/status", m.admin.Token, fiber.Map{"driverId": rookie.ID})
	assert.Equal(t, fiber.StatusBadRequest, status, out)
	assert.Equal(t, "driver is pending approval", out["message"])

	// An order that reached a pharmacy before its account was reviewed.
	stale := &models.Order{
		CustomerID: uuid.MustParse(m.customer.ID),
		PharmacyID: uuid.MustParse(waitingID),
		Status:     models.OrderPending,
	}
	require.NoError(t, env.store.CreateOrder(context.Background(), stale))
	status, out = env.object(t, fiber.MethodPatch, "/api/orders/"+stale.ID.String()+"/status", waiting.Token, fiber.Map{"status": "accepted"})
	assert.Equal(t, fiber.StatusForbidden, status, out)

	env.approve(t, m.admin.Token, waiting.ID)
	env.approve(t, m.admin.Token, rookie.ID)

	status, out = env.object(t, fiber.MethodPatch, "/api/orders/"+stale.ID.String()+"/status", waiting.Token, fiber.Map{"status": "accepted"})
	require.Equal(t, fiber.StatusOK, status, out)
	env.placeOrder(t, m.customer.Token, fiber.Map{"pharmacyId": waitingID})
	status, out = env.object(t, fiber.MethodPatch, "/api/orders/"+orderID+"/status", m.admin.Token, fiber.Map{"driverId": rookie.ID})
	require.Equal(t, fiber.StatusOK, status, out)
	assert.Equal(t, rookie.ID, out["driverId"])
}

func TestComplaints(t *testing.T) {
	env := newTestEnv(t)
	admin := env.admin(t)
	customer := env.register(t, customerBody("sara@example.com"))

	status, out := env.object(t, fiber.MethodPost, "/api/complaints", customer.Token, fiber.Map{"text": "late delivery", "senderName": "Sara"})
	require.Equal(t, fiber.StatusCreated, status, out)
	assert.Equal(t, true, out["success"])
	status, _ = env.object(t, fiber.MethodPost, "/api/complaints", customer.Token, fiber.Map{"text": "wrong item"})
	require.Equal(t, fiber.StatusCreated, status)

	status, _ = env.object(t, fiber.MethodPost, "/api/complaints", customer.Token, fiber.Map{"text": "   "})
	assert.Equal(t, fiber.StatusBadRequest, status)
	status, _ = env.object(t, fiber.MethodPost, "/api/complaints", "", fiber.Map{"text": "hi"})
	assert.Equal(t, fiber.StatusUnauthorized, status)
	status, _ = env.object(t, fiber.MethodPost, "/api/complaints", "garbage", fiber.Map{"text": "hi"})
	assert.Equal(t, fiber.StatusForbidden, status)

	complaints := env.list(t, "/api/admin/complaints", admin.Token)
	require.Len(t, complaints, 2)
	assert.Equal(t, "wrong item", complaints[0]["text"])
	assert.Equal(t, "late delivery", complaints[1]["text"])
	assert.Equal(t, customer.ID, complaints[1]["userId"])

	status, _ = env.do(t, fiber.MethodGet, "/api/admin/complaints", customer.Token, nil)
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestAdminApproval(t *testing.T) {
	env := newTestEnv(t)
	admin := env.admin(t)
	pharmacy := env.register(t, pharmacyBody("shifa@example.com"))
	driver := env.register(t, driverBody("khaled@example.com"))
	env.register(t, customerBody("sara@example.com"))

	pending := env.list(t, "/api/admin/pending", admin.Token)
	require.Len(t, pending, 2)
	assert.Equal(t, pharmacy.ID, pending[0]["id"])
	assert.Equal(t, driver.ID, pending[1]["id"])
	assert.NotContains(t, pending[0], "passwordHash")

	paged := env.list(t, "/api/admin/pending?limit=1&page=2", admin.Token)
	require.Len(t, paged, 1)
	assert.Equal(t, driver.ID, paged[0]["id"])

	env.approve(t, admin.Token, pharmacy.ID)
	// Approving twice is harmless.
	env.approve(t, admin.Token, pharmacy.ID)

	pending = env.list(t, "/api/admin/pending", admin.Token)
	require.Len(t, pending, 1)
	assert.Equal(t, driver.ID, pending[0]["id"])

	status, out := env.object(t, fiber.MethodPost, "/api/admin/approve", admin.Token, fiber.Map{"userId": "nope"})
	assert.Equal(t, fiber.StatusBadRequest, status, out)
	status, _ = env.object(t, fiber.MethodPost, "/api/admin/approve", admin.Token, fiber.Map{})
	assert.Equal(t, fiber.StatusBadRequest, status)
	status, _ = env.object(t, fiber.MethodPost, "/api/admin/approve", admin.Token, fiber.Map{"userId": uuid.NewString()})
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = env.object(t, fiber.MethodPost, "/api/admin/approve", pharmacy.Token, fiber.Map{"userId": driver.ID})
	assert.Equal(t, fiber.StatusForbidden, status)
	status, _ = env.do(t, fiber.MethodGet, "/api/admin/pending", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestListings_HugePage(t *testing.T) {
	env := newTestEnv(t)
	admin := env.admin(t)
	customer := env.register(t, customerBody("sara@example.com"))
	env.register(t, driverBody("khaled@example.com"))

	const far = "?page=4611686018427387905&limit=2"
	assert.Empty(t, env.list(t, "/api/admin/pending"+far, admin.Token))
	assert.Empty(t, env.list(t, "/api/admin/complaints"+far, admin.Token))
	assert.Empty(t, env.list(t, "/api/orders"+far, customer.Token))
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t)
	status, out := env.object(t, fiber.MethodGet, "/api/nowhere", "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, false, out["success"])
}
