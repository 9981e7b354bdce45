// Package invoicedoc turns an invoice snapshot into page-partitioned render
// instructions: the arithmetic (subtotal, discount, total) and the
// pagination policy, independent of any drawing primitive.
package invoicedoc

import (
	"fmt"
	"time"

	ierr "invoicing-backend/errors"
	"invoicing-backend/utils"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// DefaultPageSize is the number of line items printed per page.
const DefaultPageSize = 10

type DiscountType string

const (
	DiscountNone       DiscountType = ""
	DiscountFixed      DiscountType = "FIXED"
	DiscountPercentage DiscountType = "PERCENTAGE"
)

var hundred = decimal.NewFromInt(100)

type Item struct {
	Description string
	Quantity    decimal.Decimal
	Rate        decimal.Decimal
}

// Amount is quantity × rate, exact.
func (i Item) Amount() decimal.Decimal {
	return i.Quantity.Mul(i.Rate)
}

type Party struct {
	Name    string
	Email   string
	Address string
}

// Lines returns the non-empty address block lines.
func (p Party) Lines() []string {
	return lo.Compact([]string{p.Name, p.Email, p.Address})
}

// Document is the snapshot of an invoice needed to render it.
type Document struct {
	Code          string
	Number        int
	Currency      string
	Date          time.Time
	DueDays       int
	From          Party
	BillTo        Party
	DiscountType  DiscountType
	DiscountValue decimal.Decimal
	// Total is the persisted value of record; it is displayed as is.
	Total decimal.Decimal
	Note  string
	Items []Item
}

// Breakdown is the subtotal/discount/total block printed on the last page.
type Breakdown struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

type Page struct {
	Items []Item
	Index int
	Count int
}

func (p Page) IsLast() bool {
	return p.Index == p.Count-1
}

// Indicator is the "n / m" marker printed on every page.
func (p Page) Indicator() string {
	return fmt.Sprintf("%d / %d", p.Index+1, p.Count)
}

// Composition is the result of Compose.
type Composition struct {
	Document  Document
	Pages     []Page
	Breakdown Breakdown
}

// Subtotal sums quantity × rate over items.
func Subtotal(items []Item) decimal.Decimal {
	return lo.Reduce(items, func(acc decimal.Decimal, it Item, _ int) decimal.Decimal {
		return acc.Add(it.Amount())
	}, decimal.Zero)
}

// DiscountValue is the amount taken off subtotal. FIXED returns value
// unchanged, even above subtotal. PERCENTAGE is rounded to cents.
func DiscountValue(subtotal decimal.Decimal, typ DiscountType, value decimal.Decimal) decimal.Decimal {
	switch typ {
	case DiscountFixed:
		return value
	case DiscountPercentage:
		return utils.Round2(subtotal.Mul(value).Div(hundred))
	default:
		return decimal.Zero
	}
}

// Total is subtotal − discount. It is not clamped at zero.
func Total(subtotal decimal.Decimal, typ DiscountType, value decimal.Decimal) decimal.Decimal {
	return subtotal.Sub(DiscountValue(subtotal, typ, value))
}

// Paginate splits items into contiguous chunks of at most pageSize while
// keeping order. An empty input yields a single empty page.
func Paginate(items []Item, pageSize int) [][]Item {
	if len(items) == 0 {
		return [][]Item{{}}
	}
	return lo.Chunk(items, pageSize)
}

// Compose validates doc and partitions it into pages of pageSize items.
func Compose(doc Document, pageSize int) (*Composition, error) {
	if pageSize <= 0 {
		return nil, ierr.NewErrorf("page size must be positive, got %d", pageSize).
			Mark(ierr.ErrValidation)
	}
	if !utils.IsSupportedCurrency(doc.Currency) {
		return nil, ierr.NewErrorf("invoice currency %q is not supported", doc.Currency).
			Mark(ierr.ErrConfiguration)
	}
	switch doc.DiscountType {
	case DiscountNone, DiscountFixed, DiscountPercentage:
	default:
		return nil, ierr.NewErrorf("unknown discount type %q", doc.DiscountType).
			Mark(ierr.ErrConfiguration)
	}

	subtotal := Subtotal(doc.Items)
	chunks := Paginate(doc.Items, pageSize)

	pages := make([]Page, len(chunks))
	for i, chunk := range chunks {
		pages[i] = Page{Items: chunk, Index: i, Count: len(chunks)}
	}

	return &Composition{
		Document: doc,
		Pages:    pages,
		Breakdown: Breakdown{
			Subtotal: subtotal,
			Discount: DiscountValue(subtotal, doc.DiscountType, doc.DiscountValue),
			Total:    doc.Total,
		},
	}, nil
}

// ShowBreakdown reports whether page p carries the discount block. It is
// printed on the last page only, and only when a discount is configured.
func (c *Composition) ShowBreakdown(p Page) bool {
	return p.IsLast() && !c.Document.DiscountValue.IsZero()
}

// ShowNote reports whether page p carries the free-text note.
func (c *Composition) ShowNote(p Page) bool {
	return p.IsLast() && c.Document.Note != ""
}
