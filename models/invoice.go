package models

import (
	"time"

	"invoicing-backend/invoicedoc"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type InvoiceStatus string

const (
	StatusPending InvoiceStatus = "PENDING"
	StatusPaid    InvoiceStatus = "PAID"
)

// Invoice lives in the tenant schema. Total is the value of record; it is
// recomputed from the items on every write and never taken from the client.
type Invoice struct {
	Id            string                   `json:"id" gorm:"primaryKey;type:uuid"`
	InvoiceName   string                   `json:"invoice_name" gorm:"not null"`
	InvoiceNumber int                      `json:"invoice_number" gorm:"not null;index"`
	InvoiceCode   string                   `json:"invoice_code" gorm:"not null"`
	Status        InvoiceStatus            `json:"status" gorm:"type:varchar(10);not null;default:PENDING"`
	Date          datatypes.Date           `json:"date" gorm:"not null"`
	DueDate       int                      `json:"due_date" gorm:"not null"`
	FromName      string                   `json:"from_name" gorm:"not null"`
	FromEmail     string                   `json:"from_email" gorm:"not null"`
	FromAddress   string                   `json:"from_address" gorm:"not null"`
	ClientName    string                   `json:"client_name" gorm:"not null"`
	ClientEmail   string                   `json:"client_email" gorm:"not null"`
	ClientAddress string                   `json:"client_address" gorm:"not null"`
	Currency      string                   `json:"currency" gorm:"type:varchar(3);not null"`
	DiscountType  *invoicedoc.DiscountType `json:"discount_type" gorm:"type:varchar(20)"`
	Discount      decimal.Decimal          `json:"discount" gorm:"type:numeric(12,2);not null;default:0"`
	Total         decimal.Decimal          `json:"total" gorm:"type:numeric(12,2);not null"`
	Note          string                   `json:"note"`
	CustomerId    string                   `json:"customer_id" gorm:"type:uuid;not null;index"`
	Customer      *Customer                `json:"-" gorm:"foreignKey:CustomerId;references:Id;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	PaidDate      *time.Time               `json:"paid_date"`
	Items         []InvoiceItem            `json:"items" gorm:"foreignKey:InvoiceId;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time                `json:"created_at"`
	UpdatedAt     time.Time                `json:"updated_at"`
}

type InvoiceItem struct {
	Id          string          `json:"id" gorm:"primaryKey;type:uuid"`
	InvoiceId   string          `json:"-" gorm:"type:uuid;not null;index"`
	Position    int             `json:"-" gorm:"not null"`
	Description string          `json:"description" gorm:"not null"`
	Quantity    decimal.Decimal `json:"quantity" gorm:"type:numeric(12,2);not null"`
	Rate        decimal.Decimal `json:"rate" gorm:"type:numeric(12,2);not null"`
}

func (invoice *Invoice) BeforeCreate(tx *gorm.DB) (err error) {
	if invoice.Id == "" {
		invoice.Id = uuid.NewString()
	}
	return
}

func (item *InvoiceItem) BeforeCreate(tx *gorm.DB) (err error) {
	if item.Id == "" {
		item.Id = uuid.NewString()
	}
	return
}

// DiscountKind returns the discount type, DiscountNone when unset.
func (invoice *Invoice) DiscountKind() invoicedoc.DiscountType {
	return lo.FromPtrOr(invoice.DiscountType, invoicedoc.DiscountNone)
}

func (invoice *Invoice) LineItems() []invoicedoc.Item {
	return lo.Map(invoice.Items, func(it InvoiceItem, _ int) invoicedoc.Item {
		return invoicedoc.Item{Description: it.Description, Quantity: it.Quantity, Rate: it.Rate}
	})
}

// Recalculate sets Total from the items and the discount.
func (invoice *Invoice) Recalculate() {
	subtotal := invoicedoc.Subtotal(invoice.LineItems())
	invoice.Total = invoicedoc.Total(subtotal, invoice.DiscountKind(), invoice.Discount)
}

// ToDocument snapshots the invoice for rendering.
func (invoice *Invoice) ToDocument() invoicedoc.Document {
	return invoicedoc.Document{
		Code:          invoice.InvoiceCode,
		Number:        invoice.InvoiceNumber,
		Currency:      invoice.Currency,
		Date:          time.Time(invoice.Date),
		DueDays:       invoice.DueDate,
		From:          invoicedoc.Party{Name: invoice.FromName, Email: invoice.FromEmail, Address: invoice.FromAddress},
		BillTo:        invoicedoc.Party{Name: invoice.ClientName, Email: invoice.ClientEmail, Address: invoice.ClientAddress},
		DiscountType:  invoice.DiscountKind(),
		DiscountValue: invoice.Discount,
		Total:         invoice.Total,
		Note:          invoice.Note,
		Items:         invoice.LineItems(),
	}
}
