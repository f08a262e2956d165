package events

import (
	"context"
	"log/slog"

	"github.com/797Events/797Eventsapp-sub000/internal/domain"
	"github.com/797Events/797Eventsapp-sub000/internal/repository"
)

type EventUseCase interface {
	List(ctx context.Context) ([]domain.Event, error)
	GetByID(ctx context.Context, id string) (*domain.Event, error)
	ListPasses(ctx context.Context, eventID string) ([]domain.Pass, error)
}

// EventCache holds catalog reads only. Discount eligibility is never cached.
type EventCache interface {
	GetEvents(ctx context.Context) ([]domain.Event, error)
	SetEvents(ctx context.Context, events []domain.Event) error
	GetPasses(ctx context.Context, eventID string) ([]domain.Pass, error)
	SetPasses(ctx context.Context, eventID string, passes []domain.Pass) error
}

type EventService struct {
	repo   repository.EventRepository
	cache  EventCache
	logger *slog.Logger
}

func NewEventService(repo repository.EventRepository, cache EventCache, logger *slog.Logger) *EventService {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventService{repo: repo, cache: cache, logger: logger}
}

func (s *EventService) List(ctx context.Context) ([]domain.Event, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetEvents(ctx); err == nil && cached != nil {
			return cached, nil
		} else if err != nil {
			s.logger.Warn("read events cache", "error", err)
		}
	}

	events, err := s.repo.ListEvents(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetEvents(ctx, events); err != nil {
			s.logger.Warn("fill events cache", "error", err)
		}
	}
	return events, nil
}

func (s *EventService) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	return s.repo.GetEvent(ctx, id)
}

// ListPasses checks the event exists first so an unknown id is a not found
// rather than an empty list.
func (s *EventService) ListPasses(ctx context.Context, eventID string) ([]domain.Pass, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetPasses(ctx, eventID); err == nil && cached != nil {
			return cached, nil
		}
	}

	if _, err := s.repo.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	passes, err := s.repo.ListPasses(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetPasses(ctx, eventID, passes); err != nil {
			s.logger.Warn("fill passes cache", "event_id", eventID, "error", err)
		}
	}
	return passes, nil
}

var _ EventUseCase = (*EventService)(nil)
