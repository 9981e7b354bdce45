package controllers

import (
	"context"
	"fmt"
	"time"

	"invoicing-backend/database"
	"invoicing-backend/draft"
	ierr "invoicing-backend/errors"
	"invoicing-backend/invoicedoc"
	"invoicing-backend/logger"
	"invoicing-backend/mailer"
	"invoicing-backend/middlewares"
	"invoicing-backend/models"
	"invoicing-backend/pdf"
	"invoicing-backend/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// Notifier sends invoice emails.
type Notifier interface {
	SendInvoiceEmail(ctx context.Context, e mailer.InvoiceEmail) error
}

type InvoiceController struct {
	Notifier Notifier
	Renderer pdf.Renderer
	Tokens   *middlewares.TokenIssuer
	BaseURL  string
	PageSize int
	Now      func() time.Time
}

type invoiceItemRequest struct {
	Description string          `json:"description" validate:"required"`
	Quantity    decimal.Decimal `json:"quantity" validate:"gt=0"`
	Rate        decimal.Decimal `json:"rate" validate:"gte=0"`
}

// invoiceRequest is the create and update body. Client details and the
// invoice code default to the selected customer when omitted. A total sent
// by the client is ignored.
type invoiceRequest struct {
	InvoiceName   string                  `json:"invoice_name" validate:"required"`
	InvoiceNumber int                     `json:"invoice_number" validate:"gte=1"`
	InvoiceCode   string                  `json:"invoice_code" validate:"omitempty,max=10"`
	Status        models.InvoiceStatus    `json:"status" validate:"omitempty,oneof=PAID PENDING"`
	Date          string                  `json:"date" validate:"required,datetime=2006-01-02"`
	DueDate       int                     `json:"due_date" validate:"gte=0"`
	FromName      string                  `json:"from_name" validate:"required"`
	FromEmail     string                  `json:"from_email" validate:"required,email"`
	FromAddress   string                  `json:"from_address" validate:"required"`
	ClientName    string                  `json:"client_name"`
	ClientEmail   string                  `json:"client_email" validate:"omitempty,email"`
	ClientAddress string                  `json:"client_address"`
	Currency      string                  `json:"currency" validate:"required,oneof=USD EUR"`
	DiscountType  invoicedoc.DiscountType `json:"discount_type" validate:"omitempty,oneof=FIXED PERCENTAGE"`
	Discount      decimal.Decimal         `json:"discount" validate:"gte=0"`
	Note          string                  `json:"note"`
	CustomerId    string                  `json:"customer_id" validate:"required"`
	Items         []invoiceItemRequest    `json:"items" validate:"required,min=1,dive"`
}

type markPaidRequest struct {
	PaidDate string `json:"paid_date" validate:"omitempty,datetime=2006-01-02"`
}

func (ic *InvoiceController) now() time.Time {
	if ic.Now != nil {
		return ic.Now()
	}
	return time.Now()
}

func (ic *InvoiceController) pageSize() int {
	if ic.PageSize > 0 {
		return ic.PageSize
	}
	return invoicedoc.DefaultPageSize
}

// apply runs the request through the draft actions. d already carries the
// state being edited.
func (ic *InvoiceController) apply(ctx context.Context, store *repository.Store, d *draft.Draft, req *invoiceRequest) error {
	customer, err := store.Customers.Get(ctx, req.CustomerId)
	if err != nil {
		return err
	}
	d.SelectCustomer(customer)
	if req.InvoiceCode != "" {
		d.Code = req.InvoiceCode
	}
	if req.ClientName != "" {
		d.Client.Name = req.ClientName
	}
	if req.ClientEmail != "" {
		d.Client.Email = req.ClientEmail
	}
	if req.ClientAddress != "" {
		d.Client.Address = req.ClientAddress
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return ierr.WithError(err).WithHint("Invalid date").Mark(ierr.ErrValidation)
	}
	d.SetDate(date)

	d.Name = req.InvoiceName
	d.Number = req.InvoiceNumber
	d.Status = lo.Ternary(req.Status == "", models.StatusPending, req.Status)
	d.DueDays = req.DueDate
	d.From = invoicedoc.Party{Name: req.FromName, Email: req.FromEmail, Address: req.FromAddress}
	d.Note = req.Note

	if err := d.SetCurrency(req.Currency); err != nil {
		return err
	}
	if err := d.SetDiscount(req.DiscountType, req.Discount); err != nil {
		return err
	}

	d.Items = nil
	for _, it := range req.Items {
		d.AddItem(invoicedoc.Item{Description: it.Description, Quantity: it.Quantity, Rate: it.Rate})
	}
	return d.Validate()
}

// paidDate keeps the recorded payment date while the invoice stays paid.
func (ic *InvoiceController) paidDate(status models.InvoiceStatus, previous *time.Time) *time.Time {
	if status != models.StatusPaid {
		return nil
	}
	if previous != nil {
		return previous
	}
	return lo.ToPtr(ic.now())
}

// shareLink is the public PDF address embedded in emails.
func (ic *InvoiceController) shareLink(schema, invoiceID string) (string, error) {
	token, err := ic.Tokens.IssueShareToken(schema, invoiceID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/api/public/invoices/%s/pdf", ic.BaseURL, token), nil
}

func (ic *InvoiceController) send(ctx context.Context, schema string, kind mailer.Kind, inv *models.Invoice) error {
	link, err := ic.shareLink(schema, inv.Id)
	if err != nil {
		return err
	}
	return ic.Notifier.SendInvoiceEmail(ctx, mailer.InvoiceEmail{Kind: kind, Invoice: inv, Link: link})
}

// notify sends best effort; the invoice is saved either way.
func (ic *InvoiceController) notify(ctx context.Context, schema string, kind mailer.Kind, inv *models.Invoice) {
	if err := ic.send(ctx, schema, kind, inv); err != nil {
		logger.L.Warnw("invoice email not sent", "error", err, "kind", kind, "invoice_id", inv.Id)
	}
}

func (ic *InvoiceController) Create(c *fiber.Ctx) error {
	var req invoiceRequest
	if err := middlewares.BindAndValidate(c, &req); err != nil {
		return err
	}
	schema, err := tenantSchema(c)
	if err != nil {
		return err
	}
	store, err := database.GetTenantStore(c)
	if err != nil {
		return err
	}
	ctx := c.UserContext()

	d := draft.New(ic.now())
	if err := ic.apply(ctx, store, d, &req); err != nil {
		return err
	}

	inv := d.Invoice()
	inv.PaidDate = ic.paidDate(inv.Status, nil)
	if err := store.Invoices.Create(ctx, inv); err != nil {
		return err
	}

	ic.notify(ctx, schema, mailer.KindCreated, inv)
	return c.Status(fiber.StatusCreated).JSON(inv)
}

func (ic *InvoiceController) List(c *fiber.Ctx) error {
	store, err := database.GetTenantStore(c)
	if err != nil {
		return err
	}

	invoices, err := store.Invoices.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"invoices": invoices,
		"message":  "success",
	})
}

func (ic *InvoiceController) Get(c *fiber.Ctx) error {
	store, err := database.GetTenantStore(c)
	if err != nil {
		return err
	}

	inv, err := store.Invoices.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(inv)
}

// Update replaces the invoice and all of its items.
func (ic *InvoiceController) Update(c *fiber.Ctx) error {
	var req invoiceRequest
	if err := middlewares.BindAndValidate(c, &req); err != nil {
		return err
	}
	schema, err := tenantSchema(c)
	if err != nil {
		return err
	}
	store, err := database.GetTenantStore(c)
	if err != nil {
		return err
	}
	ctx := c.UserContext()

	existing, err := store.Invoices.Get(ctx, c.Params("id"))
	if err != nil {
		return err
	}

	d := draft.FromInvoice(existing)
	if err := ic.apply(ctx, store, d, &req); err != nil {
		return err
	}

	inv := d.Invoice()
	inv.PaidDate = ic.paidDate(inv.Status, existing.PaidDate)
	if err := store.Invoices.Update(ctx, inv); err != nil {
		return err
	}

	updated, err := store.Invoices.Get(ctx, inv.Id)
	if err != nil {
		return err
	}
	ic.notify(ctx, schema, mailer.KindUpdated, updated)
	return c.JSON(updated)
}

func (ic *InvoiceController) Delete(c *fiber.Ctx) error {
	store, err := database.GetTenantStore(c)
	if err != nil {
		return err
	}

	if err := store.Invoices.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "success"})
}

// MarkPaid sets status PAID and the payment date, today when omitted.
func (ic *InvoiceController) MarkPaid(c *fiber.Ctx) error {
	var req markPaidRequest
	if len(c.Body()) > 0 {
		if err := middlewares.BindAndValidate(c, &req); err != nil {
			return err
		}
	}
	store, err := database.GetTenantStore(c)
	if err != nil {
		return err
	}

	paid := ic.now()
	if req.PaidDate != "" {
		if paid, err = time.Parse(dateLayout, req.PaidDate); err != nil {
			return ierr.WithError(err).WithHint("Invalid paid date").Mark(ierr.ErrValidation)
		}
	}

	inv, err := store.Invoices.MarkPaid(c.UserContext(), c.Params("id"), paid)
	if err != nil {
		return err
	}
	return c.JSON(inv)
}

// LastNumber returns the highest invoice number, 0 for a new tenant.
func (ic *InvoiceController) LastNumber(c *fiber.Ctx) error {
	store, err := database.GetTenantStore(c)
	if err != nil {
		return err
	}

	last, err := store.Invoices.LastInvoiceNumber(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"last_invoice_number": last})
}

func (ic *InvoiceController) Reminder(c *fiber.Ctx) error {
	schema, err := tenantSchema(c)
	if err != nil {
		return err
	}
	store, err := database.GetTenantStore(c)
	if err != nil {
		return err
	}
	ctx := c.UserContext()

	inv, err := store.Invoices.Get(ctx, c.Params("id"))
	if err != nil {
		return err
	}

	if err := ic.send(ctx, schema, mailer.KindReminder, inv); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to send Email reminder").
			Mark(ierr.ErrSystem)
	}
	return c.JSON(fiber.Map{"success": true})
}

// PDF streams the invoice document to an authenticated user.
func (ic *InvoiceController) PDF(c *fiber.Ctx) error {
	return ic.renderPDF(c, c.Params("id"))
}

// SharedPDF serves the invoice named by a share token; see
// middlewares.TokenIssuer.SharedInvoice.
func (ic *InvoiceController) SharedPDF(c *fiber.Ctx) error {
	invoiceID, _ := c.Locals("invoiceID").(string)
	return ic.renderPDF(c, invoiceID)
}

func (ic *InvoiceController) renderPDF(c *fiber.Ctx, id string) error {
	store, err := database.GetTenantStore(c)
	if err != nil {
		return err
	}
	ctx := c.UserContext()

	inv, err := store.Invoices.Get(ctx, id)
	if err != nil {
		return err
	}

	comp, err := invoicedoc.Compose(inv.ToDocument(), ic.pageSize())
	if err != nil {
		return err
	}
	out, err := ic.Renderer.Render(ctx, comp)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="invoice-%s-%d.pdf"`, inv.InvoiceCode, inv.InvoiceNumber))
	return c.Send(out)
}
