package mailer

import (
	"context"

	ierr "invoicing-backend/errors"

	"github.com/resend/resend-go/v2"
)

// Config configures delivery. The sending address belongs to the Mailer.
type Config struct {
	Enabled bool
	APIKey  string
	ReplyTo string
}

// Message is one outgoing email.
type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
}

// Sender delivers messages. A disabled sender drops them.
type Sender interface {
	IsEnabled() bool
	Send(ctx context.Context, msg Message) (string, error)
}

// Client delivers through the Resend API.
type Client struct {
	client  *resend.Client
	enabled bool
	replyTo string
}

// NewClient returns a disabled client when sending is switched off or no
// API key is configured.
func NewClient(cfg Config) *Client {
	if !cfg.Enabled || cfg.APIKey == "" {
		return &Client{enabled: false}
	}
	return &Client{
		client:  resend.NewClient(cfg.APIKey),
		enabled: true,
		replyTo: cfg.ReplyTo,
	}
}

func (c *Client) IsEnabled() bool {
	return c.enabled
}

func (c *Client) Send(ctx context.Context, msg Message) (string, error) {
	if !c.enabled {
		return "", ierr.NewError("email client is disabled").Mark(ierr.ErrConfiguration)
	}

	params := &resend.SendEmailRequest{
		From:    msg.From,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
	}
	if c.replyTo != "" {
		params.ReplyTo = c.replyTo
	}

	sent, err := c.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return "", ierr.WithError(err).
			WithMessage("resend: send email").
			Mark(ierr.ErrSystem)
	}
	return sent.Id, nil
}
