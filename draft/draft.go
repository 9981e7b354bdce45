// Package draft holds the editable state of an invoice before it is saved.
// Every change goes through an explicit action so the derived total is
// always consistent with the items and the discount.
package draft

import (
	"time"

	ierr "invoicing-backend/errors"
	"invoicing-backend/invoicedoc"
	"invoicing-backend/models"
	"invoicing-backend/timesheet"
	"invoicing-backend/utils"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const DefaultCurrency = "USD"

var hundred = decimal.NewFromInt(100)

type Draft struct {
	ID           string
	Name         string
	Number       int
	Code         string
	Status       models.InvoiceStatus
	Date         time.Time
	DueDays      int
	From         invoicedoc.Party
	Client       invoicedoc.Party
	CustomerID   string
	Currency     string
	DiscountType invoicedoc.DiscountType
	Discount     decimal.Decimal
	Note         string
	Items        []invoicedoc.Item
}

// New starts a pending USD draft dated today.
func New(now time.Time) *Draft {
	d := &Draft{Status: models.StatusPending, Currency: DefaultCurrency}
	d.SetDate(now)
	return d
}

// FromInvoice reopens a saved invoice for editing.
func FromInvoice(inv *models.Invoice) *Draft {
	return &Draft{
		ID:           inv.Id,
		Name:         inv.InvoiceName,
		Number:       inv.InvoiceNumber,
		Code:         inv.InvoiceCode,
		Status:       inv.Status,
		Date:         time.Time(inv.Date),
		DueDays:      inv.DueDate,
		From:         invoicedoc.Party{Name: inv.FromName, Email: inv.FromEmail, Address: inv.FromAddress},
		Client:       invoicedoc.Party{Name: inv.ClientName, Email: inv.ClientEmail, Address: inv.ClientAddress},
		CustomerID:   inv.CustomerId,
		Currency:     inv.Currency,
		DiscountType: inv.DiscountKind(),
		Discount:     inv.Discount,
		Note:         inv.Note,
		Items:        inv.LineItems(),
	}
}

// SelectCustomer bills the draft to c and takes over its invoice code.
func (d *Draft) SelectCustomer(c *models.Customer) {
	d.CustomerID = c.Id
	d.Client = invoicedoc.Party{Name: c.Name, Email: c.Email, Address: c.Address}
	d.Code = c.InvoiceCode
}

// SetDate keeps the calendar day of t only.
func (d *Draft) SetDate(t time.Time) {
	y, m, day := t.Date()
	d.Date = time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func (d *Draft) SetCurrency(code string) error {
	if !utils.IsSupportedCurrency(code) {
		return ierr.NewErrorf("unsupported currency %q", code).
			WithHintf("Currency %s is not supported", code).
			Mark(ierr.ErrValidation)
	}
	d.Currency = code
	return nil
}

// SetDiscount rejects negative values and percentages above 100. A fixed
// discount larger than the subtotal is caught by Validate, since items may
// still change.
func (d *Draft) SetDiscount(typ invoicedoc.DiscountType, value decimal.Decimal) error {
	switch typ {
	case invoicedoc.DiscountNone:
		d.DiscountType, d.Discount = typ, decimal.Zero
		return nil
	case invoicedoc.DiscountFixed, invoicedoc.DiscountPercentage:
	default:
		return ierr.NewErrorf("unknown discount type %q", typ).
			WithHint("Discount type must be FIXED or PERCENTAGE").
			Mark(ierr.ErrValidation)
	}
	if value.IsNegative() {
		return ierr.NewError("negative discount").
			WithHint("Discount cannot be negative").
			Mark(ierr.ErrValidation)
	}
	if typ == invoicedoc.DiscountPercentage && value.GreaterThan(hundred) {
		return ierr.NewErrorf("discount of %s%%", value).
			WithHint("Percentage discount cannot exceed 100").
			Mark(ierr.ErrValidation)
	}
	d.DiscountType, d.Discount = typ, value
	return nil
}

func (d *Draft) AddItem(item invoicedoc.Item) {
	d.Items = append(d.Items, item)
}

func (d *Draft) UpdateItem(index int, item invoicedoc.Item) error {
	if err := d.checkIndex(index); err != nil {
		return err
	}
	d.Items[index] = item
	return nil
}

func (d *Draft) RemoveItem(index int) error {
	if err := d.checkIndex(index); err != nil {
		return err
	}
	d.Items = append(d.Items[:index], d.Items[index+1:]...)
	return nil
}

func (d *Draft) checkIndex(index int) error {
	if index < 0 || index >= len(d.Items) {
		return ierr.NewErrorf("item index %d out of range [0,%d)", index, len(d.Items)).
			WithHint("Line item does not exist").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ApplyImport appends one item per imported task, billed at rate.
func (d *Draft) ApplyImport(imported []timesheet.ImportedLineItem, rate decimal.Decimal) {
	d.Items = append(d.Items, lo.Map(imported, func(it timesheet.ImportedLineItem, _ int) invoicedoc.Item {
		return invoicedoc.Item{Description: it.Description, Quantity: it.Quantity, Rate: rate}
	})...)
}

func (d *Draft) Subtotal() decimal.Decimal {
	return invoicedoc.Subtotal(d.Items)
}

func (d *Draft) Total() decimal.Decimal {
	return invoicedoc.Total(d.Subtotal(), d.DiscountType, d.Discount)
}

// Validate checks what a single action cannot: the draft has items priced
// in cents and the discount leaves a non-negative total.
func (d *Draft) Validate() error {
	if len(d.Items) == 0 {
		return ierr.NewError("invoice has no items").
			WithHint("At least one line item is required").
			Mark(ierr.ErrValidation)
	}
	if d.CustomerID == "" {
		return ierr.NewError("invoice has no customer").
			WithHint("Customer is required").
			Mark(ierr.ErrValidation)
	}
	for i, it := range d.Items {
		if !utils.HasCents(it.Quantity) || !utils.HasCents(it.Rate) {
			return ierr.NewErrorf("item %d has more than 2 decimal places", i).
				WithHint("Quantity and rate allow at most 2 decimal places").
				Mark(ierr.ErrValidation)
		}
	}
	if d.Total().IsNegative() {
		return ierr.NewErrorf("discount %s exceeds subtotal %s", d.Discount, d.Subtotal()).
			WithHint("Discount cannot exceed the subtotal").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// Invoice builds the model to persist, with the total computed here.
func (d *Draft) Invoice() *models.Invoice {
	inv := &models.Invoice{
		Id:            d.ID,
		InvoiceName:   d.Name,
		InvoiceNumber: d.Number,
		InvoiceCode:   d.Code,
		Status:        d.Status,
		Date:          datatypes.Date(d.Date),
		DueDate:       d.DueDays,
		FromName:      d.From.Name,
		FromEmail:     d.From.Email,
		FromAddress:   d.From.Address,
		ClientName:    d.Client.Name,
		ClientEmail:   d.Client.Email,
		ClientAddress: d.Client.Address,
		Currency:      d.Currency,
		Discount:      d.Discount,
		Note:          d.Note,
		CustomerId:    d.CustomerID,
		Total:         utils.Round2(d.Total()),
		Items: lo.Map(d.Items, func(it invoicedoc.Item, _ int) models.InvoiceItem {
			return models.InvoiceItem{Description: it.Description, Quantity: it.Quantity, Rate: it.Rate}
		}),
	}
	if d.DiscountType != invoicedoc.DiscountNone {
		inv.DiscountType = lo.ToPtr(d.DiscountType)
	}
	return inv
}
