package service

import (
	"context"
	"errors"
	"log"

	"github.com/Sri-Rahul/linkanalysis/internal/analytics"
	"github.com/Sri-Rahul/linkanalysis/internal/domain"
)

// Resolve runs the redirect pipeline: lookup, validity checks, authoritative
// click accounting, then fire-and-forget event capture. Only the increment is
// allowed to fail the redirect; capture never is.
func (s *linkService) Resolve(ctx context.Context, code string, visit domain.VisitContext) (string, error) {
	link, cached := s.cache.Get(ctx, code)
	if !cached {
		var err error
		link, err = s.repo.GetLink(ctx, code)
		if err != nil {
			return "", err
		}
		if cerr := s.cache.Set(ctx, code, link); cerr != nil {
			log.Printf("[WARN] Failed to cache link %s: %v", code, cerr)
		}
	}

	if !link.Active {
		return "", domain.ErrLinkGone
	}
	if link.Expired(s.now()) {
		return "", domain.ErrLinkGone
	}

	// The counter is the authoritative click accounting and is incremented by
	// the store in a single statement, so concurrent resolves of a viral code
	// never lose an update.
	if _, err := s.repo.IncrementClicks(ctx, code); err != nil {
		if errors.Is(err, domain.ErrLinkNotFound) {
			// The link was deleted after we read the cached copy
			if cerr := s.cache.Delete(ctx, code); cerr != nil {
				log.Printf("[WARN] Failed to invalidate cache for %s: %v", code, cerr)
			}
		}
		return "", err
	}

	s.recorder.Capture(analytics.CaptureRequest{
		LinkID:     link.ID,
		UserAgent:  visit.UserAgent,
		Referrer:   visit.Referrer,
		IPAddress:  visit.IPAddress,
		OccurredAt: s.now(),
	})

	return link.Destination, nil
}
