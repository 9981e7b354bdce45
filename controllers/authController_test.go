package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"invoicing-backend/middlewares"
	"invoicing-backend/models"
	"invoicing-backend/testutil"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockProvisioner struct {
	mock.Mock
}

func (m *mockProvisioner) Provision(ctx context.Context, schema string) error {
	return m.Called(ctx, schema).Error(0)
}

type authEnv struct {
	app     *fiber.App
	users   *testutil.InMemoryUserStore
	tenants *mockProvisioner
	tokens  *middlewares.TokenIssuer
}

func newAuthEnv(t *testing.T) *authEnv {
	t.Helper()
	env := &authEnv{
		users:   testutil.NewInMemoryUserStore(),
		tenants: &mockProvisioner{},
		tokens:  middlewares.NewTokenIssuer("test-secret", time.Hour, time.Hour),
	}
	ctrl := &AuthController{Users: env.users, Tokens: env.tokens, Tenants: env.tenants}

	app := fiber.New(fiber.Config{ErrorHandler: middlewares.ErrorHandler})
	app.Post("/registration", ctrl.Register)
	app.Post("/login", ctrl.Login)
	app.Post("/logout", ctrl.Logout)
	app.Get("/me", env.tokens.Authenticate(), ctrl.Me)
	app.Put("/onboarding", env.tokens.Authenticate(), ctrl.Onboard)
	env.app = app
	return env
}

func (env *authEnv) do(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

type sessionResponse struct {
	Token string `json:"token"`
	User  struct {
		Id        string `json:"id"`
		Email     string `json:"email"`
		FirstName string `json:"first_name"`
		Onboarded bool   `json:"onboarded"`
	} `json:"user"`
}

func registration(email string) fiber.Map {
	return fiber.Map{
		"email":            email,
		"password":         "correct horse",
		"password_confirm": "correct horse",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	env := newAuthEnv(t)
	env.tenants.On("Provision", mock.Anything, mock.AnythingOfType("string")).Return(nil)

	resp := env.do(t, http.MethodPost, "/registration", "", registration("Jane@Example.com"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var reg sessionResponse
	decode(t, resp, &reg)
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, "jane@example.com", reg.User.Email)
	assert.False(t, reg.User.Onboarded)

	claims, err := env.tokens.Verify(reg.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.Id, claims.Subject)
	assert.Equal(t, models.TenantSchemaName(reg.User.Id), claims.Schema)
	env.tenants.AssertCalled(t, "Provision", mock.Anything, claims.Schema)

	resp = env.do(t, http.MethodPost, "/registration", "", registration("jane@example.com"))
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	var conflict errorResponse
	decode(t, resp, &conflict)
	assert.Equal(t, "email already exists", conflict.Error)

	resp = env.do(t, http.MethodPost, "/login", "", fiber.Map{"email": "jane@example.com", "password": "correct horse"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var login sessionResponse
	decode(t, resp, &login)
	assert.Equal(t, reg.User.Id, login.User.Id)

	for _, body := range []fiber.Map{
		{"email": "jane@example.com", "password": "wrong horse"},
		{"email": "nobody@example.com", "password": "correct horse"},
	} {
		resp = env.do(t, http.MethodPost, "/login", "", body)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		var got errorResponse
		decode(t, resp, &got)
		assert.Equal(t, "Invalid credentials", got.Error)
	}
}

func TestRegister_Rejected(t *testing.T) {
	env := newAuthEnv(t)

	body := registration("jane@example.com")
	body["password_confirm"] = "something else"
	resp := env.do(t, http.MethodPost, "/registration", "", body)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	var got errorResponse
	decode(t, resp, &got)
	assert.Equal(t, "eqfield", got.Errors["password_confirm"])

	env.tenants.On("Provision", mock.Anything, mock.Anything).Return(errors.New("permission denied for database")).Once()
	resp = env.do(t, http.MethodPost, "/registration", "", registration("jane@example.com"))
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	_, err := env.users.GetByEmail(context.Background(), "jane@example.com")
	assert.Error(t, err, "no user without a tenant schema")
}

func TestMeAndOnboard(t *testing.T) {
	env := newAuthEnv(t)
	env.tenants.On("Provision", mock.Anything, mock.Anything).Return(nil)

	resp := env.do(t, http.MethodPost, "/registration", "", registration("jane@example.com"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var reg sessionResponse
	decode(t, resp, &reg)

	resp = env.do(t, http.MethodGet, "/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = env.do(t, http.MethodPut, "/onboarding", reg.Token, fiber.Map{"first_name": "Jane", "last_name": "Doe"})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = env.do(t, http.MethodPut, "/onboarding", reg.Token, fiber.Map{
		"first_name": "Jane",
		"last_name":  "Doe",
		"address":    "1 Main St",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/me", reg.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var me struct {
		FirstName string `json:"first_name"`
		Onboarded bool   `json:"onboarded"`
	}
	decode(t, resp, &me)
	assert.Equal(t, "Jane", me.FirstName)
	assert.True(t, me.Onboarded)
}

func TestLogout(t *testing.T) {
	env := newAuthEnv(t)
	resp := env.do(t, http.MethodPost, "/logout", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderSetCookie), "jwt=")
}
