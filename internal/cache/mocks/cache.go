package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Sri-Rahul/linkanalysis/internal/domain"
)

// LinkCache is a mock implementation of cache.LinkCache
type LinkCache struct {
	mock.Mock
}

// Get retrieves a cached link by code
func (m *LinkCache) Get(ctx context.Context, code string) (*domain.Link, bool) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*domain.Link), args.Bool(1)
}

// Set stores a link record
func (m *LinkCache) Set(ctx context.Context, code string, link *domain.Link) error {
	args := m.Called(ctx, code, link)
	return args.Error(0)
}

// Delete removes a cached link
func (m *LinkCache) Delete(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

// Close releases cache resources
func (m *LinkCache) Close() error {
	args := m.Called()
	return args.Error(0)
}
