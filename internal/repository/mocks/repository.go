package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/Sri-Rahul/linkanalysis/internal/domain"
)

// LinkRepository is a mock implementation of repository.LinkRepository
type LinkRepository struct {
	mock.Mock
}

// CreateLink persists a new link
func (m *LinkRepository) CreateLink(ctx context.Context, link *domain.Link) (*domain.Link, error) {
	args := m.Called(ctx, link)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Link), args.Error(1)
}

// GetLink retrieves a link by its code
func (m *LinkRepository) GetLink(ctx context.Context, code string) (*domain.Link, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Link), args.Error(1)
}

// ListLinks retrieves all links belonging to an owner
func (m *LinkRepository) ListLinks(ctx context.Context, ownerID string) ([]*domain.Link, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Link), args.Error(1)
}

// UpdateLink applies the non-nil fields of upd to a link
func (m *LinkRepository) UpdateLink(ctx context.Context, code string, ownerID *string, upd domain.LinkUpdate) (*domain.Link, error) {
	args := m.Called(ctx, code, ownerID, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Link), args.Error(1)
}

// DeleteLink removes a link
func (m *LinkRepository) DeleteLink(ctx context.Context, code string, ownerID *string) error {
	args := m.Called(ctx, code, ownerID)
	return args.Error(0)
}

// IncrementClicks atomically adds one to the link's click counter
func (m *LinkRepository) IncrementClicks(ctx context.Context, code string) (int64, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(int64), args.Error(1)
}

// CodeExists checks if a code is already allocated
func (m *LinkRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

// Close closes the repository connection
func (m *LinkRepository) Close() error {
	args := m.Called()
	return args.Error(0)
}

// EventRepository is a mock implementation of repository.EventRepository
type EventRepository struct {
	mock.Mock
}

// InsertEvent appends one immutable visit event
func (m *EventRepository) InsertEvent(ctx context.Context, event *domain.VisitEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// EventsByLink retrieves events for a link ordered by timestamp descending
func (m *EventRepository) EventsByLink(ctx context.Context, linkID int64, limit int) ([]*domain.VisitEvent, error) {
	args := m.Called(ctx, linkID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.VisitEvent), args.Error(1)
}

// RecentEventsByOwner retrieves the most recent events across an owner's links
func (m *EventRepository) RecentEventsByOwner(ctx context.Context, ownerID string, limit int) ([]*domain.VisitEvent, error) {
	args := m.Called(ctx, ownerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.VisitEvent), args.Error(1)
}

// ClicksPerDay counts events per UTC calendar day since the given time
func (m *EventRepository) ClicksPerDay(ctx context.Context, linkID int64, since time.Time) ([]domain.SeriesPoint, error) {
	args := m.Called(ctx, linkID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SeriesPoint), args.Error(1)
}

// CountByDimension groups all events for a link by one categorical field
func (m *EventRepository) CountByDimension(ctx context.Context, linkID int64, dimension string) ([]domain.CategoryCount, error) {
	args := m.Called(ctx, linkID, dimension)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CategoryCount), args.Error(1)
}

// DeviceTallyByOwner groups events across all of an owner's links by device
func (m *EventRepository) DeviceTallyByOwner(ctx context.Context, ownerID string) ([]domain.CategoryCount, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CategoryCount), args.Error(1)
}
