package cache

import (
	"context"

	"github.com/Sri-Rahul/linkanalysis/internal/domain"
)

// LinkCache is a read-through cache of link records keyed by code, used on
// the redirect hot path. It never holds the click counter authoritatively:
// increments always go to the store, and the cached copy may lag.
type LinkCache interface {
	// Get retrieves a cached link by code
	Get(ctx context.Context, code string) (*domain.Link, bool)

	// Set stores a link record
	Set(ctx context.Context, code string, link *domain.Link) error

	// Delete removes a cached link; called on link update and deletion so
	// stale validity state is bounded by the TTL only for untouched links
	Delete(ctx context.Context, code string) error

	// Close releases cache resources
	Close() error
}
