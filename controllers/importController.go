package controllers

import (
	"path/filepath"
	"strings"

	"invoicing-backend/draft"
	ierr "invoicing-backend/errors"
	"invoicing-backend/invoicedoc"
	"invoicing-backend/timesheet"
	"invoicing-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// ImportTimesheet turns an uploaded Hubstaff export into line items. With a
// "rate" form value the items come back priced, ready to add to a draft.
func ImportTimesheet(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return ierr.WithError(err).
			WithHint("A timesheet file is required").
			Mark(ierr.ErrValidation)
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".csv") {
		return ierr.NewErrorf("unsupported upload %q", fh.Filename).
			WithHint("Only .csv files can be imported").
			Mark(ierr.ErrValidation)
	}

	f, err := fh.Open()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Could not read the timesheet file").
			Mark(ierr.ErrValidation)
	}
	defer f.Close()

	items, err := timesheet.Import(f)
	if err != nil {
		return err
	}

	raw := strings.TrimSpace(c.FormValue("rate"))
	if raw == "" {
		return c.JSON(fiber.Map{"items": items})
	}

	rate, err := decimal.NewFromString(raw)
	if err != nil || rate.IsNegative() || !utils.HasCents(rate) {
		return ierr.NewErrorf("invalid rate %q", raw).
			WithHint("Rate must be a non-negative number with at most 2 decimal places").
			Mark(ierr.ErrValidation)
	}
	var d draft.Draft
	d.ApplyImport(items, rate)
	return c.JSON(fiber.Map{
		"items": lo.Map(d.Items, func(it invoicedoc.Item, _ int) invoiceItemRequest {
			return invoiceItemRequest{Description: it.Description, Quantity: it.Quantity, Rate: it.Rate}
		}),
	})
}
