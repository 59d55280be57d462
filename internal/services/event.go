package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"eventsapi/internal/domain"
	"eventsapi/internal/mapper"
)

type eventService struct {
	eventRepo      domain.EventRepository
	cache          domain.EventCache
	notifier       domain.EventNotifier
	logger         *slog.Logger
	contextTimeout time.Duration
	now            func() time.Time
}

// NewEventService wires the event use cases. cache may be nil; a nil notifier drops
// change notifications.
func NewEventService(eventRepo domain.EventRepository,
	cache domain.EventCache,
	notifier domain.EventNotifier,
	logger *slog.Logger,
	timeout time.Duration,
) domain.EventService {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &eventService{
		eventRepo:      eventRepo,
		cache:          cache,
		notifier:       notifier,
		logger:         logger,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

func (s *eventService) ListAll(ctx context.Context) ([]domain.EventResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.FindAllActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return mapper.ToResponses(events), nil
}

func (s *eventService) ListPaged(ctx context.Context, params domain.PaginationParams) (domain.Page[domain.EventResponse], error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	params = params.Normalize()
	events, total, err := s.eventRepo.FindActivePage(ctx, params)
	if err != nil {
		return domain.Page[domain.EventResponse]{}, fmt.Errorf("list events page: %w", err)
	}
	return mapper.ToPage(events, total, params), nil
}

func (s *eventService) GetByID(ctx context.Context, id int64) (*domain.EventResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if s.cache != nil {
		cached, found, err := s.cache.Get(ctx, id)
		if err != nil {
			s.logger.WarnContext(ctx, "cache get failed", "event_id", id, "err", err)
		} else if found {
			resp := mapper.ToResponse(cached)
			return &resp, nil
		}
	}

	event, err := s.eventRepo.FindActiveByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Add(ctx, event); err != nil {
			s.logger.WarnContext(ctx, "cache add failed", "event_id", id, "err", err)
		}
	}
	resp := mapper.ToResponse(event)
	return &resp, nil
}

func (s *eventService) Create(ctx context.Context, req domain.EventRequest) (*domain.EventResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if fields := req.ValidateAt(s.now()); fields != nil {
		return nil, domain.NewValidationError(fields)
	}

	event := mapper.ToEntity(req)
	if err := s.eventRepo.Save(ctx, event); err != nil {
		return nil, fmt.Errorf("save event: %w", err)
	}

	resp := mapper.ToResponse(event)
	s.notify(ctx, domain.ChangeCreated, resp)
	return &resp, nil
}

func (s *eventService) Update(ctx context.Context, id int64, req domain.EventRequest) (*domain.EventResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if fields := req.ValidateAt(s.now()); fields != nil {
		return nil, domain.NewValidationError(fields)
	}

	var updated *domain.Event
	err := s.eventRepo.WithTx(ctx, func(repo domain.EventRepository) error {
		event, err := repo.FindActiveByID(ctx, id)
		if err != nil {
			return err
		}
		mapper.ApplyUpdate(event, req)
		if err := repo.Save(ctx, event); err != nil {
			return err
		}
		if err := s.invalidate(ctx, id); err != nil {
			return err
		}
		updated = event
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}

	s.evict(ctx, id)
	resp := mapper.ToResponse(updated)
	s.notify(ctx, domain.ChangeUpdated, resp)
	return &resp, nil
}

func (s *eventService) SoftDelete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var deleted *domain.Event
	err := s.eventRepo.WithTx(ctx, func(repo domain.EventRepository) error {
		event, err := repo.FindActiveByID(ctx, id)
		if err != nil {
			return err
		}
		event.Deleted = true
		if err := repo.Save(ctx, event); err != nil {
			return err
		}
		if err := s.invalidate(ctx, id); err != nil {
			return err
		}
		deleted = event
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}

	s.evict(ctx, id)
	s.notify(ctx, domain.ChangeDeleted, mapper.ToResponse(deleted))
	return nil
}

// invalidate runs inside the mutation's transaction; an error rolls the mutation back.
func (s *eventService) invalidate(ctx context.Context, id int64) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		return fmt.Errorf("invalidate cached event: %w", err)
	}
	return nil
}

// evict renews the invalidation after commit so reads that raced the commit cannot refill.
func (s *eventService) evict(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "cache invalidate after commit failed", "event_id", id, "err", err)
	}
}

func (s *eventService) notify(ctx context.Context, kind domain.ChangeKind, event domain.EventResponse) {
	change := domain.EventChange{
		Kind:       kind,
		Event:      event,
		OccurredAt: s.now().UTC(),
	}
	if err := s.notifier.Notify(ctx, change); err != nil {
		s.logger.WarnContext(ctx, "event change notification failed", "event_id", event.ID, "kind", kind, "err", err)
	}
}
