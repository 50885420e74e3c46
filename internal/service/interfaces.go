package service

import (
	"context"

	"github.com/Sri-Rahul/linkanalysis/internal/analytics"
	"github.com/Sri-Rahul/linkanalysis/internal/domain"
)

// LinkService defines the operations exposed to the transport layer.
// Ownership checks beyond owner-scoped queries are the caller's concern;
// the principal arrives already authenticated.
type LinkService interface {
	// CreateLink allocates a code and persists a new link
	CreateLink(ctx context.Context, req domain.CreateLinkRequest, ownerID *string) (*domain.Link, error)

	// GetLink retrieves a link by code regardless of validity state
	GetLink(ctx context.Context, code string) (*domain.Link, error)

	// ListLinks retrieves all links belonging to an owner, newest first
	ListLinks(ctx context.Context, ownerID string) ([]*domain.Link, error)

	// UpdateLink applies active/expiry changes to a link
	UpdateLink(ctx context.Context, code string, ownerID *string, upd domain.LinkUpdate) (*domain.Link, error)

	// DeleteLink removes a link; deleting an absent code is not an error
	DeleteLink(ctx context.Context, code string, ownerID *string) error

	// Resolve runs the redirect pipeline for a code and returns the
	// destination URL to redirect to
	Resolve(ctx context.Context, code string, visit domain.VisitContext) (string, error)

	// Close closes the service and its dependencies
	Close() error
}

// EventCapturer is the fire-and-forget hand-off the dispatcher submits visit
// events through. Capture must not block and must not surface errors.
type EventCapturer interface {
	Capture(req analytics.CaptureRequest)
}
