package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Sri-Rahul/linkanalysis/internal/analytics"
	"github.com/Sri-Rahul/linkanalysis/internal/domain"
)

// LinkService is a mock implementation of service.LinkService
type LinkService struct {
	mock.Mock
}

// CreateLink allocates a code and persists a new link
func (m *LinkService) CreateLink(ctx context.Context, req domain.CreateLinkRequest, ownerID *string) (*domain.Link, error) {
	args := m.Called(ctx, req, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Link), args.Error(1)
}

// GetLink retrieves a link by code
func (m *LinkService) GetLink(ctx context.Context, code string) (*domain.Link, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Link), args.Error(1)
}

// ListLinks retrieves all links belonging to an owner
func (m *LinkService) ListLinks(ctx context.Context, ownerID string) ([]*domain.Link, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Link), args.Error(1)
}

// UpdateLink applies active/expiry changes to a link
func (m *LinkService) UpdateLink(ctx context.Context, code string, ownerID *string, upd domain.LinkUpdate) (*domain.Link, error) {
	args := m.Called(ctx, code, ownerID, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Link), args.Error(1)
}

// DeleteLink removes a link
func (m *LinkService) DeleteLink(ctx context.Context, code string, ownerID *string) error {
	args := m.Called(ctx, code, ownerID)
	return args.Error(0)
}

// Resolve runs the redirect pipeline for a code
func (m *LinkService) Resolve(ctx context.Context, code string, visit domain.VisitContext) (string, error) {
	args := m.Called(ctx, code, visit)
	return args.String(0), args.Error(1)
}

// Close closes the service and its dependencies
func (m *LinkService) Close() error {
	args := m.Called()
	return args.Error(0)
}

// EventCapturer is a mock implementation of service.EventCapturer
type EventCapturer struct {
	mock.Mock
}

// Capture enqueues a visit event
func (m *EventCapturer) Capture(req analytics.CaptureRequest) {
	m.Called(req)
}
