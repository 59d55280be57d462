package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// EventChangeEmailData holds data for the event change notification email.
type EventChangeEmailData struct {
	Kind       string
	EventID    int64
	Title      string
	DateTime   string
	Location   string
	OccurredAt string
}
