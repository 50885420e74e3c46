package domain

import "errors"

// Classified error values returned by the core. The transport layer maps
// these to HTTP status codes; anything unclassified surfaces as a 500.
var (
	// Link lookup errors
	ErrLinkNotFound = errors.New("link not found")
	// ErrLinkGone marks a link that did exist but no longer resolves,
	// either deactivated or past its expiry. Distinct from ErrLinkNotFound
	// so callers can render "expired" instead of "not found".
	ErrLinkGone = errors.New("link is gone")

	// Allocation errors
	ErrInvalidAlias       = errors.New("invalid custom alias")
	ErrAliasTaken         = errors.New("alias already taken")
	ErrCodeSpaceExhausted = errors.New("short code space exhausted")

	// Input validation errors
	ErrMissingDestination = errors.New("destination URL is required")
	ErrInvalidDestination = errors.New("destination URL is invalid")
	ErrInvalidExpiry      = errors.New("expiry timestamp is in the past")
	ErrInvalidDimension   = errors.New("unknown breakdown dimension")
	ErrOwnerRequired      = errors.New("owner is required")
)
