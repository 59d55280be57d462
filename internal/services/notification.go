package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventsapi/internal/domain"
)

// NoopNotifier discards every change.
type NoopNotifier struct{}

func (NoopNotifier) Notify(ctx context.Context, change domain.EventChange) error {
	return nil
}

type multiNotifier struct {
	notifiers []domain.EventNotifier
}

// NewMultiNotifier fans a change out to every non-nil notifier. All notifiers are
// tried; their errors are joined.
func NewMultiNotifier(notifiers ...domain.EventNotifier) domain.EventNotifier {
	m := &multiNotifier{}
	for _, n := range notifiers {
		if n != nil {
			m.notifiers = append(m.notifiers, n)
		}
	}
	return m
}

func (m *multiNotifier) Notify(ctx context.Context, change domain.EventChange) error {
	var errs []error
	for _, n := range m.notifiers {
		if err := n.Notify(ctx, change); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type emailNotifier struct {
	mailer     domain.Mailer
	renderer   domain.EmailTemplateRenderer
	recipients []string
}

// NewEmailNotifier returns an EventNotifier that mails every change to recipients
// using the "event_changed" template.
func NewEmailNotifier(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, recipients []string) domain.EventNotifier {
	return &emailNotifier{mailer: mailer, renderer: renderer, recipients: recipients}
}

func (n *emailNotifier) Notify(ctx context.Context, change domain.EventChange) error {
	if len(n.recipients) == 0 {
		return nil
	}
	data := &domain.EventChangeEmailData{
		Kind:       string(change.Kind),
		EventID:    change.Event.ID,
		Title:      change.Event.Title,
		DateTime:   change.Event.DateTime.Format(time.RFC1123),
		Location:   change.Event.Location,
		OccurredAt: change.OccurredAt.Format(time.RFC3339),
	}
	subject, htmlBody, textBody, err := n.renderer.Render("event_changed", data)
	if err != nil {
		return fmt.Errorf("failed to render event_changed template: %w", err)
	}
	var errs []error
	for _, to := range n.recipients {
		if err := n.mailer.Send(ctx, to, subject, htmlBody, textBody); err != nil {
			errs = append(errs, fmt.Errorf("failed to send event change email to %s: %w", to, err))
		}
	}
	return errors.Join(errs...)
}
