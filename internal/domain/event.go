package domain

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"
)

// Field length limits for event text fields, counted in characters.
const (
	MaxTitleLength    = 100
	MaxLocationLength = 200
)

// Event is the persisted event record. Deleted events stay in storage but are
// invisible to every read and mutation path.
type Event struct {
	ID       int64     `json:"id"`
	Title    string    `json:"title"`
	DateTime time.Time `json:"datetime"`
	Location string    `json:"location"`
	Deleted  bool      `json:"deleted"`
}

// NewEvent returns a new active Event with the given fields. ID is set by the repository on save.
func NewEvent(title string, dateTime time.Time, location string) *Event {
	return &Event{
		Title:    title,
		DateTime: dateTime,
		Location: location,
	}
}

// EventRequest is the input shape for creating or replacing an event.
// swagger:model EventRequest
type EventRequest struct {
	Title    string    `json:"title"`
	DateTime time.Time `json:"datetime"`
	Location string    `json:"location"`
}

// Validate checks the request against the current time.
func (r EventRequest) Validate() FieldErrors {
	return r.ValidateAt(time.Now())
}

// ValidateAt checks required fields, lengths, and that DateTime is strictly after now.
// It returns nil when the request is valid.
func (r EventRequest) ValidateAt(now time.Time) FieldErrors {
	errs := FieldErrors{}
	switch {
	case strings.TrimSpace(r.Title) == "":
		errs["title"] = "title is required"
	case utf8.RuneCountInString(r.Title) > MaxTitleLength:
		errs["title"] = "title must be at most 100 characters"
	}
	switch {
	case r.DateTime.IsZero():
		errs["datetime"] = "datetime is required"
	case !r.DateTime.After(now):
		errs["datetime"] = "datetime must be in the future"
	}
	switch {
	case strings.TrimSpace(r.Location) == "":
		errs["location"] = "location is required"
	case utf8.RuneCountInString(r.Location) > MaxLocationLength:
		errs["location"] = "location must be at most 200 characters"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// EventResponse is the output shape for an event.
// swagger:model EventResponse
type EventResponse struct {
	ID       int64     `json:"id"`
	Title    string    `json:"title"`
	DateTime time.Time `json:"datetime"`
	Location string    `json:"location"`
	Deleted  bool      `json:"deleted"`
}

// EventRepository defines the interface for event storage.
// All finders only see events with Deleted == false; nothing deletes rows.
type EventRepository interface {
	// Save inserts the event when ID is zero (setting ID) and updates it otherwise.
	Save(ctx context.Context, event *Event) error
	FindAllActive(ctx context.Context) ([]*Event, error)
	FindActivePage(ctx context.Context, params PaginationParams) ([]*Event, int, error)
	FindActiveByID(ctx context.Context, id int64) (*Event, error)
	// WithTx runs fn against a repository bound to a single transaction.
	WithTx(ctx context.Context, fn func(repo EventRepository) error) error
}

// EventService defines the business logic for events.
type EventService interface {
	ListAll(ctx context.Context) ([]EventResponse, error)
	ListPaged(ctx context.Context, params PaginationParams) (Page[EventResponse], error)
	GetByID(ctx context.Context, id int64) (*EventResponse, error)
	Create(ctx context.Context, req EventRequest) (*EventResponse, error)
	Update(ctx context.Context, id int64, req EventRequest) (*EventResponse, error)
	SoftDelete(ctx context.Context, id int64) error
}

// EventCache is an optional read-through cache for active events keyed by ID.
// Add stores an event only when the key is empty; it never overwrites an entry or an
// invalidation. Invalidate drops the entry and blocks Add for a short window, so a
// read that loaded the row before a mutation cannot put the old copy back.
type EventCache interface {
	Get(ctx context.Context, id int64) (*Event, bool, error)
	Add(ctx context.Context, event *Event) error
	Invalidate(ctx context.Context, id int64) error
}
