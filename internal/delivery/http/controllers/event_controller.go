package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"eventsapi/internal/delivery/http/helpers"
	"eventsapi/internal/delivery/http/middleware"
	"eventsapi/internal/domain"
)

// ListEventsPageResponse is the body for GET /events when page or page_size is given.
type ListEventsPageResponse struct {
	Items      []domain.EventResponse `json:"items"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// ListEvents godoc
// @Summary List active events
// @Description Returns all non-deleted events. When page or page_size is present the response is a page object instead of a plain array.
// @Tags events
// @Produce json
// @Param page query int false "Page number (1-based)" default(1)
// @Param page_size query int false "Items per page (max 100)" default(20)
// @Param sort query string false "Sort field and direction, e.g. datetime,desc" default(id,asc)
// @Success 200 {array} domain.EventResponse "plain list when no paging parameters are given"
// @Success 200 {object} controllers.ListEventsPageResponse "page object when page or page_size is given"
// @Failure 500 {object} helpers.ErrorResponse
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	if !helpers.WantsPagination(r) {
		c.ListAllEvents(w, r)
		return
	}
	params := helpers.ParsePagination(r)
	page, err := c.Service.ListPaged(r.Context(), params)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	items := page.Items
	if items == nil {
		items = []domain.EventResponse{}
	}
	helpers.WriteJSON(w, http.StatusOK, ListEventsPageResponse{
		Items:      items,
		Pagination: helpers.NewPaginationMeta(page.Page, page.PageSize, page.Total),
	})
}

// ListAllEvents godoc
// @Summary List all active events
// @Description Returns every non-deleted event ordered by id.
// @Tags events
// @Produce json
// @Success 200 {array} domain.EventResponse
// @Failure 500 {object} helpers.ErrorResponse
// @Router /events/all [get]
func (c *EventController) ListAllEvents(w http.ResponseWriter, r *http.Request) {
	events, err := c.Service.ListAll(r.Context())
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	if events == nil {
		events = []domain.EventResponse{}
	}
	helpers.WriteJSON(w, http.StatusOK, events)
}

// GetEvent godoc
// @Summary Get an event by ID
// @Tags events
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} domain.EventResponse
// @Failure 400 {object} helpers.ErrorResponse "invalid event id"
// @Failure 404 {object} helpers.ErrorResponse "event not found"
// @Failure 500 {object} helpers.ErrorResponse
// @Router /events/{id} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := parseEventID(w, r)
	if !ok {
		return
	}
	event, err := c.Service.GetByID(r.Context(), id)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, event)
}

// CreateEvent godoc
// @Summary Create a new event
// @Description Title is required (max 100 characters), datetime must be in the future, location is required (max 200 characters).
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body domain.EventRequest true "Event data"
// @Success 201 {object} domain.EventResponse
// @Failure 400 {object} helpers.ErrorResponse "validation failed"
// @Failure 401 {object} helpers.ErrorResponse
// @Failure 500 {object} helpers.ErrorResponse
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req domain.EventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	event, err := c.Service.Create(r.Context(), req)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	c.logWrite(r, "event created", event.ID)
	helpers.WriteJSON(w, http.StatusCreated, event)
}

// UpdateEvent godoc
// @Summary Replace an event's details
// @Description Overwrites title, datetime and location of an active event. Same validation rules as create.
// @Tags events
// @Accept json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param event body domain.EventRequest true "Event data"
// @Success 204 "updated"
// @Failure 400 {object} helpers.ErrorResponse
// @Failure 401 {object} helpers.ErrorResponse
// @Failure 404 {object} helpers.ErrorResponse "event not found"
// @Failure 500 {object} helpers.ErrorResponse
// @Router /events/{id} [put]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := parseEventID(w, r)
	if !ok {
		return
	}
	var req domain.EventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	if _, err := c.Service.Update(r.Context(), id, req); err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	c.logWrite(r, "event updated", id)
	w.WriteHeader(http.StatusNoContent)
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Soft-deletes the event. It disappears from every read operation but the row is kept.
// @Tags events
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 204 "deleted"
// @Failure 400 {object} helpers.ErrorResponse "invalid event id"
// @Failure 401 {object} helpers.ErrorResponse
// @Failure 404 {object} helpers.ErrorResponse "event not found"
// @Failure 500 {object} helpers.ErrorResponse
// @Router /events/{id} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := parseEventID(w, r)
	if !ok {
		return
	}
	if err := c.Service.SoftDelete(r.Context(), id); err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	c.logWrite(r, "event deleted", id)
	w.WriteHeader(http.StatusNoContent)
}

func parseEventID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.MsgInvalidEventID)
		return 0, false
	}
	return id, true
}

// logWrite records who changed an event. Without an auth guard the subject is "anonymous".
func (c *EventController) logWrite(r *http.Request, msg string, id int64) {
	subject, ok := middleware.SubjectFromContext(r.Context())
	if !ok {
		subject = "anonymous"
	}
	c.Logger.InfoContext(r.Context(), msg, "event_id", id, "subject", subject)
}

func (c *EventController) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.MsgEventNotFound)
	case errors.As(err, &verr):
		helpers.WriteJSONFieldErrors(w, http.StatusBadRequest, helpers.MsgValidationFailed, verr.Fields)
	case errors.Is(err, domain.ErrValidation):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.MsgValidationFailed)
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.MsgInternalError)
	}
}
