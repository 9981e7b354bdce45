// Package mailer sends the invoice notifications: a new invoice, a changed
// invoice and a payment reminder, each linking to the shared PDF.
package mailer

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/mail"
	"time"

	ierr "invoicing-backend/errors"
	"invoicing-backend/logger"
	"invoicing-backend/models"
	"invoicing-backend/utils"
)

type Kind string

const (
	KindCreated  Kind = "invoice_created"
	KindUpdated  Kind = "invoice_updated"
	KindReminder Kind = "invoice_reminder"
)

// mediumDate matches the en-US medium date style, e.g. "Mar 5, 2024".
const mediumDate = "Jan 2, 2006"

//go:embed templates/*.html
var templateFS embed.FS

var subjects = map[Kind]string{
	KindCreated:  "Invoice %s from %s",
	KindUpdated:  "Invoice %s from %s was updated",
	KindReminder: "Reminder: invoice %s from %s",
}

// InvoiceEmail asks for one notification about Invoice. Link is the public
// PDF address embedded in the body.
type InvoiceEmail struct {
	Kind    Kind
	Invoice *models.Invoice
	Link    string
}

// templateData is what the templates see.
type templateData struct {
	ClientName    string
	InvoiceNumber string
	DueDate       string
	Total         string
	InvoiceLink   string
	FromName      string
}

type Mailer struct {
	sender    Sender
	from      string
	logger    *logger.Logger
	templates *template.Template
}

// New parses the embedded templates. from is the sending address; the
// invoice issuer's name is used as display name.
func New(sender Sender, from string, log *logger.Logger) (*Mailer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, ierr.WithError(err).
			WithMessage("parse email templates").
			Mark(ierr.ErrConfiguration)
	}
	return &Mailer{sender: sender, from: from, logger: log, templates: tmpl}, nil
}

// SendInvoiceEmail renders and sends e to the invoice client. When the
// sender is disabled the message is logged and dropped.
func (m *Mailer) SendInvoiceEmail(ctx context.Context, e InvoiceEmail) error {
	msg, err := m.render(e)
	if err != nil {
		return err
	}

	if !m.sender.IsEnabled() {
		m.logger.Warnw("email client is disabled, skipping email send",
			"kind", e.Kind,
			"to", msg.To,
			"invoice_id", e.Invoice.Id,
		)
		return nil
	}

	id, err := m.sender.Send(ctx, msg)
	if err != nil {
		m.logger.Errorw("failed to send invoice email",
			"error", err,
			"kind", e.Kind,
			"to", msg.To,
			"invoice_id", e.Invoice.Id,
		)
		return err
	}

	m.logger.Infow("invoice email sent",
		"message_id", id,
		"kind", e.Kind,
		"to", msg.To,
		"invoice_id", e.Invoice.Id,
	)
	return nil
}

func (m *Mailer) render(e InvoiceEmail) (Message, error) {
	subject, ok := subjects[e.Kind]
	if !ok {
		return Message{}, ierr.NewErrorf("unknown email kind %q", e.Kind).Mark(ierr.ErrValidation)
	}

	inv := e.Invoice
	total, err := utils.FormatCurrency(inv.Total, inv.Currency)
	if err != nil {
		return Message{}, err
	}
	data := templateData{
		ClientName:    inv.ClientName,
		InvoiceNumber: fmt.Sprintf("# %d", inv.InvoiceNumber),
		DueDate:       time.Time(inv.Date).Format(mediumDate),
		Total:         total,
		InvoiceLink:   e.Link,
		FromName:      inv.FromName,
	}

	var body bytes.Buffer
	if err := m.templates.ExecuteTemplate(&body, string(e.Kind)+".html", data); err != nil {
		return Message{}, ierr.WithError(err).
			WithMessagef("render %s email", e.Kind).
			Mark(ierr.ErrSystem)
	}

	return Message{
		From:    (&mail.Address{Name: inv.FromName, Address: m.from}).String(),
		To:      inv.ClientEmail,
		Subject: fmt.Sprintf(subject, data.InvoiceNumber, inv.FromName),
		HTML:    body.String(),
	}, nil
}
