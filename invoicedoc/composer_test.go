package invoicedoc

import (
	"fmt"
	"testing"
	"time"

	ierr "invoicing-backend/errors"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func items(n int) []Item {
	out := make([]Item, n)
	for i := range out {
		out[i] = Item{Description: fmt.Sprintf("item %d", i), Quantity: decimal.NewFromInt(1), Rate: decimal.NewFromInt(10)}
	}
	return out
}

func TestSubtotal_ExactDecimal(t *testing.T) {
	got := Subtotal([]Item{
		{Quantity: dec("2"), Rate: dec("19.99")},
		{Quantity: dec("1"), Rate: dec("0.01")},
	})
	assert.Equal(t, "39.99", got.StringFixed(2))

	// 0.1 × 3 drifts in float64; decimal stays exact
	got = Subtotal([]Item{{Quantity: dec("3"), Rate: dec("0.1")}})
	assert.True(t, got.Equal(dec("0.3")), got.String())

	assert.True(t, Subtotal(nil).IsZero())
}

func TestPaginate(t *testing.T) {
	pages := Paginate(items(23), 10)
	assert.Equal(t, []int{10, 10, 3}, lo.Map(pages, func(p []Item, _ int) int { return len(p) }))
	assert.Equal(t, "item 0", pages[0][0].Description)
	assert.Equal(t, "item 10", pages[1][0].Description)
	assert.Equal(t, "item 22", pages[2][2].Description)

	empty := Paginate(nil, 10)
	require.Len(t, empty, 1)
	assert.Empty(t, empty[0])

	exact := Paginate(items(20), 10)
	assert.Len(t, exact, 2)
}

func TestDiscountAndTotal(t *testing.T) {
	subtotal := dec("100")

	assert.True(t, DiscountValue(subtotal, DiscountPercentage, dec("10")).Equal(dec("10")))
	assert.True(t, Total(subtotal, DiscountPercentage, dec("10")).Equal(dec("90")))

	assert.True(t, DiscountValue(subtotal, DiscountFixed, dec("15")).Equal(dec("15")))
	assert.True(t, Total(subtotal, DiscountFixed, dec("15")).Equal(dec("85")))

	assert.True(t, DiscountValue(subtotal, DiscountNone, dec("15")).IsZero())
	assert.True(t, Total(subtotal, DiscountNone, dec("15")).Equal(subtotal))

	// an oversized fixed discount is not clamped
	assert.True(t, Total(subtotal, DiscountFixed, dec("150")).Equal(dec("-50")))
}

func TestDiscountAndTotal_Cents(t *testing.T) {
	subtotal := dec("0.05")

	discount := DiscountValue(subtotal, DiscountPercentage, dec("50"))
	assert.Equal(t, "0.03", discount.String())
	total := Total(subtotal, DiscountPercentage, dec("50"))
	assert.Equal(t, "0.02", total.String())
	assert.True(t, subtotal.Sub(discount).Equal(total))

	doc := sampleDocument(1)
	doc.Items = []Item{{Description: "tiny", Quantity: dec("1"), Rate: dec("0.05")}}
	doc.DiscountType = DiscountPercentage
	doc.DiscountValue = dec("50")
	doc.Total = total
	comp, err := Compose(doc, 10)
	require.NoError(t, err)
	b := comp.Breakdown
	assert.Equal(t, comp.Money(b.Total), comp.Money(b.Subtotal.Sub(b.Discount)))
	assert.Equal(t, "$0.03", comp.Money(b.Discount))
	assert.Equal(t, "$0.02", comp.Money(b.Total))
}

func sampleDocument(n int) Document {
	return Document{
		Code:          "AC",
		Number:        7,
		Currency:      "USD",
		Date:          time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC),
		DueDays:       30,
		From:          Party{Name: "Jane Doe", Email: "jane@example.com", Address: "1 Main St"},
		BillTo:        Party{Name: "Acme", Email: "billing@acme.test", Address: "2 Side St"},
		DiscountType:  DiscountPercentage,
		DiscountValue: dec("10"),
		Total:         dec("207"),
		Note:          "Thanks!",
		Items:         items(n),
	}
}

func TestCompose(t *testing.T) {
	comp, err := Compose(sampleDocument(23), DefaultPageSize)
	require.NoError(t, err)

	require.Len(t, comp.Pages, 3)
	for i, p := range comp.Pages {
		assert.Equal(t, i, p.Index)
		assert.Equal(t, 3, p.Count)
		assert.Equal(t, i == 2, p.IsLast())
		assert.Equal(t, i == 2, comp.ShowBreakdown(p))
		assert.Equal(t, i == 2, comp.ShowNote(p))
	}
	assert.Equal(t, "1 / 3", comp.Pages[0].Indicator())
	assert.Equal(t, "3 / 3", comp.Pages[2].Indicator())

	assert.True(t, comp.Breakdown.Subtotal.Equal(dec("230")))
	assert.True(t, comp.Breakdown.Discount.Equal(dec("23")))
	// the persisted total is shown, not a recomputation
	assert.True(t, comp.Breakdown.Total.Equal(dec("207")))
}

func TestCompose_PersistedTotalWins(t *testing.T) {
	doc := sampleDocument(2)
	doc.Total = dec("1")

	comp, err := Compose(doc, 10)
	require.NoError(t, err)
	assert.True(t, comp.Breakdown.Total.Equal(dec("1")))
	assert.Equal(t, "Total (USD): $1.00", comp.Labels().TotalLine)
}

func TestCompose_EmptyInvoice(t *testing.T) {
	doc := sampleDocument(0)
	doc.DiscountValue = decimal.Zero
	doc.Note = ""

	comp, err := Compose(doc, 10)
	require.NoError(t, err)
	require.Len(t, comp.Pages, 1)
	assert.Empty(t, comp.Pages[0].Items)
	assert.True(t, comp.Pages[0].IsLast())
	assert.False(t, comp.ShowBreakdown(comp.Pages[0]))
	assert.False(t, comp.ShowNote(comp.Pages[0]))
	assert.Equal(t, "1 / 1", comp.Pages[0].Indicator())
}

func TestCompose_Errors(t *testing.T) {
	t.Run("page size", func(t *testing.T) {
		_, err := Compose(sampleDocument(1), 0)
		assert.True(t, ierr.IsValidation(err))
	})

	t.Run("unsupported currency", func(t *testing.T) {
		doc := sampleDocument(1)
		doc.Currency = "GBP"
		_, err := Compose(doc, 10)
		assert.True(t, ierr.IsConfiguration(err))
	})

	t.Run("unknown discount type", func(t *testing.T) {
		doc := sampleDocument(1)
		doc.DiscountType = "BOGO"
		_, err := Compose(doc, 10)
		assert.True(t, ierr.IsConfiguration(err))
	})
}

func TestLabels(t *testing.T) {
	comp, err := Compose(sampleDocument(1), 10)
	require.NoError(t, err)

	l := comp.Labels()
	assert.Equal(t, "Invoice # AC 7", l.Title)
	assert.Equal(t, "Invoice Number: # AC 7", l.Number)
	assert.Equal(t, "Date: March 5, 2024", l.Date)
	assert.Equal(t, "Due Date: Net 30", l.Due)
	assert.Equal(t, "Total (USD): $207.00", l.TotalLine)
	assert.Equal(t, "Discount (%)", l.Discount)
	assert.Equal(t, []string{"Jane Doe", "jane@example.com", "1 Main St"}, l.FromLines)

	doc := sampleDocument(1)
	doc.DiscountType = DiscountFixed
	doc.Currency = "EUR"
	comp, err = Compose(doc, 10)
	require.NoError(t, err)
	assert.Equal(t, "Discount (EUR)", comp.Labels().Discount)
	assert.Equal(t, "€10.00", comp.Money(dec("10")))
}
