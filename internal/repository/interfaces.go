package repository

import (
	"context"
	"time"

	"github.com/Sri-Rahul/linkanalysis/internal/domain"
)

// LinkRepository defines the interface for link record operations
type LinkRepository interface {
	// CreateLink persists a new link. The code carries a storage-level
	// uniqueness constraint; a duplicate surfaces domain.ErrAliasTaken.
	CreateLink(ctx context.Context, link *domain.Link) (*domain.Link, error)

	// GetLink retrieves a link by its code regardless of active/expiry state
	GetLink(ctx context.Context, code string) (*domain.Link, error)

	// ListLinks retrieves all links belonging to an owner, newest first
	ListLinks(ctx context.Context, ownerID string) ([]*domain.Link, error)

	// UpdateLink applies the non-nil fields of upd to a link, scoped to the
	// owner when one is given, and returns the updated record
	UpdateLink(ctx context.Context, code string, ownerID *string, upd domain.LinkUpdate) (*domain.Link, error)

	// DeleteLink removes a link and its events. Deleting an absent code is
	// not an error.
	DeleteLink(ctx context.Context, code string, ownerID *string) error

	// IncrementClicks atomically adds one to the link's click counter at the
	// storage layer and returns the new count
	IncrementClicks(ctx context.Context, code string) (int64, error)

	// CodeExists checks if a code is already allocated
	CodeExists(ctx context.Context, code string) (bool, error)

	// Close closes the repository connection
	Close() error
}

// EventRepository defines the interface for the append-only visit event store
type EventRepository interface {
	// InsertEvent appends one immutable visit event
	InsertEvent(ctx context.Context, event *domain.VisitEvent) error

	// EventsByLink retrieves events for a link ordered by timestamp descending
	EventsByLink(ctx context.Context, linkID int64, limit int) ([]*domain.VisitEvent, error)

	// RecentEventsByOwner retrieves the most recent events across all of an
	// owner's links, ordered by timestamp descending
	RecentEventsByOwner(ctx context.Context, ownerID string, limit int) ([]*domain.VisitEvent, error)

	// ClicksPerDay counts events per UTC calendar day since the given time,
	// ascending by date; days with no events are absent
	ClicksPerDay(ctx context.Context, linkID int64, since time.Time) ([]domain.SeriesPoint, error)

	// CountByDimension groups all events for a link by one categorical field
	CountByDimension(ctx context.Context, linkID int64, dimension string) ([]domain.CategoryCount, error)

	// DeviceTallyByOwner groups events across all of an owner's links by device
	DeviceTallyByOwner(ctx context.Context, ownerID string) ([]domain.CategoryCount, error)
}
