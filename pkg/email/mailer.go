package email

import (
	"context"
	"regexp"
)

// EmailSender represents an interface for sending emails.
type EmailSender interface {
	// Provider returns the transport name recorded in delivery logs.
	Provider() string

	// SendEmail sends one email and returns the provider-assigned message id.
	SendEmail(ctx context.Context, params SendEmailParams) (string, error)
}

// SendEmailParams represents the parameters for sending an email.
type SendEmailParams struct {
	SendTo   string `json:"send_to"`       // Email address of the recipient
	Subject  string `json:"subject"`       // Subject of the email
	BodyHTML string `json:"body_html"`     // HTML body of the email
	Tag      string `json:"tag,omitempty"` // Optional
}

// emailRegex is a pragmatic address check, not a full RFC 5322 validator.
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Validate checks that the params describe a sendable email.
func (p SendEmailParams) Validate() error {
	if p.SendTo == "" || !emailRegex.MatchString(p.SendTo) {
		return ErrInvalidRecipient
	}
	if p.Subject == "" {
		return ErrSubjectRequired
	}
	if p.BodyHTML == "" {
		return ErrBodyRequired
	}
	return nil
}
