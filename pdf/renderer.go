package pdf

import (
	"bytes"
	"context"

	ierr "invoicing-backend/errors"
	"invoicing-backend/invoicedoc"

	"github.com/jung-kurt/gofpdf"
	"github.com/samber/lo"
)

// Renderer draws a composed invoice into PDF bytes.
type Renderer interface {
	Render(ctx context.Context, comp *invoicedoc.Composition) ([]byte, error)
}

// A4 portrait, millimetres. Columns of the item table.
const (
	marginX      = 20.0
	metaX        = 120.0
	breakdownX   = 110.0
	quantityX    = 100.0
	rateX        = 130.0
	amountX      = 160.0
	ruleEndX     = 190.0
	tableHeadY   = 100.0
	firstRowY    = 110.0
	rowGap       = 10.0
	blockLine    = 5.0
	indicatorY   = 280.0
	descMaxWidth = 75.0
	descMaxLines = 2
	font         = "Helvetica"
)

type gofpdfRenderer struct{}

func NewRenderer() Renderer {
	return &gofpdfRenderer{}
}

func (r *gofpdfRenderer) Render(ctx context.Context, comp *invoicedoc.Composition) ([]byte, error) {
	doc, err := draw(comp)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, ierr.WithError(err).
			WithMessage("failed to write invoice pdf").
			Mark(ierr.ErrSystem)
	}
	return buf.Bytes(), nil
}

// draw lays out every page of comp onto a fresh document.
func draw(comp *invoicedoc.Composition) (*gofpdf.Fpdf, error) {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetAutoPageBreak(false, 0)
	tr := doc.UnicodeTranslatorFromDescriptor("")
	labels := comp.Labels()
	doc.SetTitle(labels.Title, true)

	for _, page := range comp.Pages {
		doc.AddPage()
		drawHeader(doc, tr, labels)
		y := drawItems(doc, tr, comp, page)

		doc.Line(marginX, y, ruleEndX, y)

		if comp.ShowBreakdown(page) {
			drawBreakdown(doc, tr, comp, labels, y)
		}
		if comp.ShowNote(page) {
			doc.SetFont(font, "", 10)
			doc.Text(marginX, y+20, "Note:")
			doc.Text(marginX, y+25, tr(comp.Document.Note))
		}

		doc.SetFont(font, "B", 10)
		doc.Text(marginX, indicatorY, page.Indicator())
	}

	if err := doc.Error(); err != nil {
		return nil, ierr.WithError(err).
			WithMessage("failed to lay out invoice pdf").
			Mark(ierr.ErrSystem)
	}
	return doc, nil
}

func drawHeader(doc *gofpdf.Fpdf, tr func(string) string, l invoicedoc.Labels) {
	doc.SetFont(font, "", 24)
	doc.Text(marginX, 20, tr(l.Title))

	doc.SetFont(font, "", 12)
	doc.Text(marginX, 40, "From")
	doc.SetFontSize(10)
	drawLines(doc, tr, marginX, 45, l.FromLines)

	doc.SetFontSize(12)
	doc.Text(marginX, 70, "Bill to")
	doc.SetFontSize(10)
	drawLines(doc, tr, marginX, 75, l.BillToLines)

	doc.Text(metaX, 40, tr(l.Number))
	doc.Text(metaX, 45, tr(l.Date))
	doc.Text(metaX, 50, tr(l.Due))
	doc.SetFont(font, "B", 10)
	doc.Text(metaX, 55, tr(l.TotalLine))

	doc.Text(marginX, tableHeadY, "Description")
	doc.Text(quantityX, tableHeadY, "Quantity")
	doc.Text(rateX, tableHeadY, "Rate")
	doc.Text(amountX, tableHeadY, "Amount")
	doc.Line(marginX, tableHeadY+2, ruleEndX, tableHeadY+2)
}

// drawItems prints the page slice and returns the y below the last row.
func drawItems(doc *gofpdf.Fpdf, tr func(string) string, comp *invoicedoc.Composition, page invoicedoc.Page) float64 {
	doc.SetFont(font, "", 10)
	y := firstRowY
	for _, item := range page.Items {
		// a row is rowGap tall, room for two wrapped description lines
		desc := doc.SplitLines([]byte(tr(item.Description)), descMaxWidth)
		for i, line := range lo.Slice(desc, 0, descMaxLines) {
			doc.Text(marginX, y+float64(i)*blockLine*0.8, string(line))
		}
		doc.Text(quantityX, y, item.Quantity.String())
		doc.Text(rateX, y, tr(comp.Money(item.Rate)))
		doc.Text(amountX, y, tr(comp.Money(item.Amount())))
		y += rowGap
	}
	return y
}

func drawBreakdown(doc *gofpdf.Fpdf, tr func(string) string, comp *invoicedoc.Composition, l invoicedoc.Labels, y float64) {
	b := comp.Breakdown
	doc.SetFont(font, "", 10)
	doc.Text(breakdownX, y+10, "Subtotal Before Discount")
	doc.Text(amountX, y+10, tr(comp.Money(b.Subtotal)))
	doc.Text(breakdownX, y+20, l.Discount)
	doc.Text(amountX, y+20, tr(comp.Money(b.Discount)))

	doc.SetFont(font, "B", 10)
	doc.Text(breakdownX, y+30, "Total After Discount")
	doc.Text(amountX, y+30, tr(comp.Money(b.Total)))
}

func drawLines(doc *gofpdf.Fpdf, tr func(string) string, x, y float64, lines []string) {
	for i, line := range lines {
		doc.Text(x, y+float64(i)*blockLine, tr(line))
	}
}
