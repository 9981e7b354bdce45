package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"invoicing-backend/invoicedoc"
	"invoicing-backend/mailer"
	"invoicing-backend/middlewares"
	"invoicing-backend/models"
	"invoicing-backend/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testSchema = "tenant_test"
	testUserID = "user-1"
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) SendInvoiceEmail(ctx context.Context, e mailer.InvoiceEmail) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

type mockRenderer struct {
	mock.Mock
}

func (m *mockRenderer) Render(ctx context.Context, comp *invoicedoc.Composition) ([]byte, error) {
	args := m.Called(ctx, comp)
	out, _ := args.Get(0).([]byte)
	return out, args.Error(1)
}

type testEnv struct {
	app      *fiber.App
	stores   *testutil.Stores
	notifier *mockNotifier
	renderer *mockRenderer
	tokens   *middlewares.TokenIssuer
	invoices *InvoiceController
}

var testNow = time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC)

// newTestEnv serves the tenant handlers over in-memory stores, as if
// Authenticate and TenantTx had already run.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		stores:   testutil.NewStores(),
		notifier: &mockNotifier{},
		renderer: &mockRenderer{},
		tokens:   middlewares.NewTokenIssuer("test-secret", time.Hour, time.Hour),
	}
	env.stores.Invoices.Now = func() time.Time { return testNow }
	env.invoices = &InvoiceController{
		Notifier: env.notifier,
		Renderer: env.renderer,
		Tokens:   env.tokens,
		BaseURL:  "http://localhost:8080",
		PageSize: invoicedoc.DefaultPageSize,
		Now:      func() time.Time { return testNow },
	}

	app := fiber.New(fiber.Config{ErrorHandler: middlewares.ErrorHandler})
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("store", env.stores.Store())
		return c.Next()
	})
	app.Get("/public/invoices/:token/pdf", env.tokens.SharedInvoice(), env.invoices.SharedPDF)

	tenant := app.Group("", func(c *fiber.Ctx) error {
		c.Locals("schema", testSchema)
		c.Locals("userID", testUserID)
		return c.Next()
	})
	tenant.Post("/customers", CreateCustomer)
	tenant.Get("/customers", GetCustomers)
	tenant.Get("/customers/:id", GetCustomer)
	tenant.Put("/customers/:id", UpdateCustomer)
	tenant.Patch("/customers/:id", PatchCustomer)
	tenant.Put("/customers/:id/archive", ArchiveCustomer)
	tenant.Get("/invoices/last-number", env.invoices.LastNumber)
	tenant.Post("/invoices/import", ImportTimesheet)
	tenant.Post("/invoices", env.invoices.Create)
	tenant.Get("/invoices", env.invoices.List)
	tenant.Get("/invoices/:id", env.invoices.Get)
	tenant.Put("/invoices/:id", env.invoices.Update)
	tenant.Delete("/invoices/:id", env.invoices.Delete)
	tenant.Put("/invoices/:id/paid", env.invoices.MarkPaid)
	tenant.Post("/invoices/:id/reminder", env.invoices.Reminder)
	tenant.Get("/invoices/:id/pdf", env.invoices.PDF)
	tenant.Get("/dashboard", GetDashboard)
	env.app = app
	return env
}

func (env *testEnv) do(t *testing.T, method, path string, body interface{}) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

func (env *testEnv) addCustomer(t *testing.T, name string) *models.Customer {
	t.Helper()
	c := &models.Customer{Name: name, Email: "billing@example.com", Address: "2 Side St"}
	require.NoError(t, env.stores.Customers.Create(context.Background(), c))
	return c
}

type errorResponse struct {
	Error  string            `json:"error"`
	Errors map[string]string `json:"errors"`
}

type itemResponse struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
}

type invoiceResponse struct {
	Id            string          `json:"id"`
	InvoiceNumber int             `json:"invoice_number"`
	InvoiceCode   string          `json:"invoice_code"`
	Status        string          `json:"status"`
	ClientName    string          `json:"client_name"`
	ClientEmail   string          `json:"client_email"`
	Currency      string          `json:"currency"`
	DiscountType  *string         `json:"discount_type"`
	Total         decimal.Decimal `json:"total"`
	PaidDate      *time.Time      `json:"paid_date"`
	Items         []itemResponse  `json:"items"`
}
