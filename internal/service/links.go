package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/Sri-Rahul/linkanalysis/internal/cache"
	"github.com/Sri-Rahul/linkanalysis/internal/domain"
	"github.com/Sri-Rahul/linkanalysis/internal/repository"
	"github.com/Sri-Rahul/linkanalysis/internal/shortener"
)

// createRaceAttempts bounds retries when a generated code loses the insert
// race to a concurrent creation. Custom aliases never retry: the loser gets
// ErrAliasTaken.
const createRaceAttempts = 3

// linkService implements LinkService
type linkService struct {
	repo      repository.LinkRepository
	cache     cache.LinkCache
	allocator shortener.Allocator
	recorder  EventCapturer
	now       func() time.Time
}

// NewLinkService creates a new link service
func NewLinkService(repo repository.LinkRepository, linkCache cache.LinkCache, allocator shortener.Allocator, recorder EventCapturer) LinkService {
	return &linkService{
		repo:      repo,
		cache:     linkCache,
		allocator: allocator,
		recorder:  recorder,
		now:       time.Now,
	}
}

// CreateLink allocates a code, with or without a custom alias, and persists
// the new link record
func (s *linkService) CreateLink(ctx context.Context, req domain.CreateLinkRequest, ownerID *string) (*domain.Link, error) {
	if err := validateDestination(req.DestinationURL); err != nil {
		return nil, err
	}
	if req.ExpiresAt != nil && req.ExpiresAt.Before(s.now()) {
		return nil, domain.ErrInvalidExpiry
	}

	custom := req.CustomAlias != ""

	for attempt := 0; ; attempt++ {
		code, err := s.allocator.Allocate(ctx, req.CustomAlias)
		if err != nil {
			return nil, err
		}

		link := &domain.Link{
			Code:        code,
			Destination: req.DestinationURL,
			CustomAlias: custom,
			OwnerID:     ownerID,
			Active:      true,
			ExpiresAt:   req.ExpiresAt,
			CreatedAt:   s.now().UTC(),
		}

		created, err := s.repo.CreateLink(ctx, link)
		if err == nil {
			if cerr := s.cache.Set(ctx, created.Code, created); cerr != nil {
				log.Printf("[WARN] Failed to cache new link %s: %v", created.Code, cerr)
			}
			return created, nil
		}

		// A duplicate insert means we lost an allocation race. For a custom
		// alias that is the final answer; for a generated code we draw again.
		if errors.Is(err, domain.ErrAliasTaken) && !custom && attempt < createRaceAttempts-1 {
			continue
		}
		return nil, err
	}
}

// GetLink retrieves a link by code
func (s *linkService) GetLink(ctx context.Context, code string) (*domain.Link, error) {
	return s.repo.GetLink(ctx, code)
}

// ListLinks retrieves all links belonging to an owner
func (s *linkService) ListLinks(ctx context.Context, ownerID string) ([]*domain.Link, error) {
	if ownerID == "" {
		return nil, domain.ErrOwnerRequired
	}
	return s.repo.ListLinks(ctx, ownerID)
}

// UpdateLink applies active/expiry changes and invalidates the cached copy so
// a deactivation takes effect on the next redirect
func (s *linkService) UpdateLink(ctx context.Context, code string, ownerID *string, upd domain.LinkUpdate) (*domain.Link, error) {
	updated, err := s.repo.UpdateLink(ctx, code, ownerID, upd)
	if err != nil {
		return nil, err
	}

	if cerr := s.cache.Delete(ctx, code); cerr != nil {
		log.Printf("[WARN] Failed to invalidate cache for %s: %v", code, cerr)
	}
	return updated, nil
}

// DeleteLink removes a link and its cached copy. Idempotent: an absent code
// is treated as already deleted.
func (s *linkService) DeleteLink(ctx context.Context, code string, ownerID *string) error {
	if err := s.repo.DeleteLink(ctx, code, ownerID); err != nil {
		return err
	}

	if cerr := s.cache.Delete(ctx, code); cerr != nil {
		log.Printf("[WARN] Failed to invalidate cache for %s: %v", code, cerr)
	}
	return nil
}

// Close closes the service and its dependencies
func (s *linkService) Close() error {
	if err := s.cache.Close(); err != nil {
		return fmt.Errorf("failed to close cache: %w", err)
	}
	if err := s.repo.Close(); err != nil {
		return fmt.Errorf("failed to close repository: %w", err)
	}
	return nil
}

// validateDestination requires a parseable absolute HTTP or HTTPS URL
func validateDestination(destination string) error {
	if destination == "" {
		return domain.ErrMissingDestination
	}

	parsed, err := url.ParseRequestURI(destination)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidDestination, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%w: only HTTP and HTTPS are supported", domain.ErrInvalidDestination)
	}
	return nil
}

// Ensure linkService implements LinkService
var _ LinkService = (*linkService)(nil)
