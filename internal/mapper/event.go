// Package mapper converts between event request/response shapes and the stored entity.
package mapper

import "eventsapi/internal/domain"

// ToEntity builds a new, not deleted Event from req. ID is left for storage to assign.
func ToEntity(req domain.EventRequest) *domain.Event {
	return domain.NewEvent(req.Title, req.DateTime, req.Location)
}

// ToResponse copies every field of e into an EventResponse.
func ToResponse(e *domain.Event) domain.EventResponse {
	return domain.EventResponse{
		ID:       e.ID,
		Title:    e.Title,
		DateTime: e.DateTime,
		Location: e.Location,
		Deleted:  e.Deleted,
	}
}

// ToResponses maps a slice of events. The result is never nil.
func ToResponses(events []*domain.Event) []domain.EventResponse {
	out := make([]domain.EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, ToResponse(e))
	}
	return out
}

// ApplyUpdate overwrites the editable fields of e with those of req.
// ID and Deleted are left untouched.
func ApplyUpdate(e *domain.Event, req domain.EventRequest) {
	e.Title = req.Title
	e.DateTime = req.DateTime
	e.Location = req.Location
}

// ToPage wraps mapped events and the total count in a Page.
func ToPage(events []*domain.Event, total int, params domain.PaginationParams) domain.Page[domain.EventResponse] {
	return domain.Page[domain.EventResponse]{
		Items:    ToResponses(events),
		Total:    total,
		Page:     params.Page,
		PageSize: params.PageSize,
	}
}
