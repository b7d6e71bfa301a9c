package email

import "errors"

var (
	ErrFailedToSendEmail = errors.New("mailer.errors.failed_to_send_email")
	ErrInvalidConfig     = errors.New("mailer.errors.invalid_config")
	ErrInvalidRecipient  = errors.New("mailer.errors.invalid_recipient")
	ErrSubjectRequired   = errors.New("mailer.errors.subject_required")
	ErrBodyRequired      = errors.New("mailer.errors.body_required")
)
