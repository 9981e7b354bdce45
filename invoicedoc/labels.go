package invoicedoc

import (
	"fmt"

	"invoicing-backend/utils"

	"github.com/shopspring/decimal"
)

const longDate = "January 2, 2006"

// Labels are the preformatted strings shared by every page.
type Labels struct {
	Title       string
	Number      string
	Date        string
	Due         string
	TotalLine   string
	Discount    string
	FromLines   []string
	BillToLines []string
}

// Labels formats the repeated header blocks of c. Currency was validated by
// Compose, so formatting cannot fail here.
func (c *Composition) Labels() Labels {
	d := c.Document
	discount := fmt.Sprintf("Discount (%s)", d.Currency)
	if d.DiscountType == DiscountPercentage {
		discount = "Discount (%)"
	}
	return Labels{
		Title:       fmt.Sprintf("Invoice # %s %d", d.Code, d.Number),
		Number:      fmt.Sprintf("Invoice Number: # %s %d", d.Code, d.Number),
		Date:        "Date: " + d.Date.Format(longDate),
		Due:         fmt.Sprintf("Due Date: Net %d", d.DueDays),
		TotalLine:   fmt.Sprintf("Total (%s): %s", d.Currency, c.Money(d.Total)),
		Discount:    discount,
		FromLines:   d.From.Lines(),
		BillToLines: d.BillTo.Lines(),
	}
}

// Money formats amount in the document currency.
func (c *Composition) Money(amount decimal.Decimal) string {
	return utils.MustFormatCurrency(amount, c.Document.Currency)
}
