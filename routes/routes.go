package routes

import (
	"invoicing-backend/controllers"
	"invoicing-backend/middlewares"

	"github.com/gofiber/fiber/v2"
)

// Handlers carries the controllers that need dependencies.
type Handlers struct {
	Auth     *controllers.AuthController
	Invoices *controllers.InvoiceController
	Tokens   *middlewares.TokenIssuer
}

// Register wires all HTTP routes.
func Register(app *fiber.App, h Handlers) {
	api := app.Group("/api")

	// Public auth endpoints
	api.Post("/registration", h.Auth.Register)
	api.Post("/login", h.Auth.Login)
	api.Post("/logout", h.Auth.Logout)

	// Shared invoice links carry their own tenant in the token
	api.Get("/public/invoices/:token/pdf", h.Tokens.SharedInvoice(), middlewares.TenantTx(), h.Invoices.SharedPDF)

	// Protected endpoints (JWT auth)
	protected := api.Group("")
	protected.Use(h.Tokens.Authenticate())

	// Idempotency guard FIRST (not tied to request TX)
	protected.Use(middlewares.Idempotency())

	// Then per-request tenant transaction (pins search_path and commits/rolls back)
	protected.Use(middlewares.TenantTx())

	// Account
	protected.Get("/me", h.Auth.Me)
	protected.Put("/onboarding", h.Auth.Onboard)

	// Customers
	protected.Post("/customers", controllers.CreateCustomer)
	protected.Get("/customers", controllers.GetCustomers)
	protected.Get("/customers/:id", controllers.GetCustomer)
	protected.Put("/customers/:id", controllers.UpdateCustomer)
	protected.Patch("/customers/:id", controllers.PatchCustomer)
	protected.Put("/customers/:id/archive", controllers.ArchiveCustomer)

	// Invoices; static paths before :id
	protected.Get("/invoices/last-number", h.Invoices.LastNumber)
	protected.Post("/invoices/import", controllers.ImportTimesheet)
	protected.Post("/invoices", h.Invoices.Create)
	protected.Get("/invoices", h.Invoices.List)
	protected.Get("/invoices/:id", h.Invoices.Get)
	protected.Put("/invoices/:id", h.Invoices.Update)
	protected.Delete("/invoices/:id", h.Invoices.Delete)
	protected.Put("/invoices/:id/paid", h.Invoices.MarkPaid)
	protected.Post("/invoices/:id/reminder", h.Invoices.Reminder)
	protected.Get("/invoices/:id/pdf", h.Invoices.PDF)

	// Dashboard
	protected.Get("/dashboard", controllers.GetDashboard)
}
