package shortener

import (
	"context"
)

// Allocator defines the interface for short code allocation
type Allocator interface {
	// Allocate returns a short code that is free at allocation time. With a
	// custom alias it validates format and availability; without one it
	// generates a random code. The storage layer's uniqueness constraint
	// remains the final arbiter for concurrent allocations of the same code.
	Allocate(ctx context.Context, customAlias string) (string, error)
}

// CodeIndex is the slice of the link registry the allocator needs: a way to
// ask whether a code is already taken
type CodeIndex interface {
	CodeExists(ctx context.Context, code string) (bool, error)
}

// Config holds allocator configuration
type Config struct {
	// CodeLength is the length of generated codes
	CodeLength int `json:"code_length"`
	// MaxAttempts bounds the generate-and-check loop; exhausting it surfaces
	// domain.ErrCodeSpaceExhausted instead of spinning forever
	MaxAttempts int `json:"max_attempts"`
}

// DefaultConfig returns the default allocator configuration
func DefaultConfig() Config {
	return Config{
		CodeLength:  6,
		MaxAttempts: 10,
	}
}
