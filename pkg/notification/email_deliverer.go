package notification

import (
	"context"
	"errors"
	"log/slog"

	"github.com/intentionalhq/notifier/pkg/email"
	"github.com/intentionalhq/notifier/pkg/queue"
)

// EmailDeliverer adapts queue items to email delivery. It resolves the
// item's kind against the closed kind set, renders the subject and HTML
// body from the payload, and sends through the configured EmailSender.
//
// Failure classification: unknown kinds, payload validation failures, and
// invalid recipient addresses are wrapped with queue.Permanent since no
// retry can fix them. Transport errors are returned as-is and follow the
// dispatcher's retry path.
type EmailDeliverer struct {
	sender email.EmailSender
	appURL string
	logger *slog.Logger
}

// EmailDelivererOption is a functional option for configuring an EmailDeliverer
type EmailDelivererOption func(*EmailDeliverer)

// WithAppURL sets the frontend base URL rendered into email buttons
func WithAppURL(u string) EmailDelivererOption {
	return func(d *EmailDeliverer) {
		if u != "" {
			d.appURL = u
		}
	}
}

// WithLogger sets the logger used by the deliverer
func WithLogger(logger *slog.Logger) EmailDelivererOption {
	return func(d *EmailDeliverer) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewEmailDeliverer creates a deliverer sending through the given transport
func NewEmailDeliverer(sender email.EmailSender, opts ...EmailDelivererOption) (*EmailDeliverer, error) {
	if sender == nil {
		return nil, ErrSenderNil
	}

	d := &EmailDeliverer{
		sender: sender,
		appURL: "https://app.intentional.fit",
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d, nil
}

// Provider implements queue.Deliverer
func (d *EmailDeliverer) Provider() string {
	return d.sender.Provider()
}

// Deliver implements queue.Deliverer
func (d *EmailDeliverer) Deliver(ctx context.Context, item *queue.Item) (string, error) {
	kind, err := ParseKind(item.Kind)
	if err != nil {
		return "", queue.Permanent(err)
	}

	msg, err := Render(kind, Payload(item.Payload), d.appURL)
	if err != nil {
		return "", queue.Permanent(err)
	}

	providerID, err := d.sender.SendEmail(ctx, email.SendEmailParams{
		SendTo:   item.Recipient,
		Subject:  msg.Subject,
		BodyHTML: msg.BodyHTML,
		Tag:      kind.String(),
	})
	if err != nil {
		// A malformed address can never be delivered; everything else is
		// assumed to be a transient transport problem.
		if errors.Is(err, email.ErrInvalidRecipient) {
			return "", queue.Permanent(err)
		}
		return "", err
	}

	d.logger.DebugContext(ctx, "email handed to provider",
		slog.String("kind", kind.String()),
		slog.String("provider", d.sender.Provider()),
		slog.String("provider_id", providerID))

	return providerID, nil
}
