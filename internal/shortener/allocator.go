package shortener

import (
	"context"
	"crypto/rand"
	"fmt"
	"regexp"
	"strings"

	"github.com/Sri-Rahul/linkanalysis/internal/domain"
)

// codeAlphabet is the URL-safe alphabet for generated codes. 64 characters,
// so mapping random bytes with modulo introduces no bias.
const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

// aliasPattern bounds custom aliases to 3-30 characters of letters, digits,
// hyphen, and underscore
var aliasPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{3,30}$`)

// reservedAliases are codes that collide with the service's own routes
var reservedAliases = map[string]bool{
	"api":     true,
	"metrics": true,
	"health":  true,
	"admin":   true,
	"www":     true,
}

// RandomAllocator implements Allocator with fixed-length random codes
type RandomAllocator struct {
	index  CodeIndex
	config Config
}

// NewRandomAllocator creates a new random code allocator
func NewRandomAllocator(index CodeIndex, config Config) (*RandomAllocator, error) {
	if index == nil {
		return nil, fmt.Errorf("code index is required")
	}
	if config.CodeLength <= 0 {
		return nil, fmt.Errorf("code length must be positive, got: %d", config.CodeLength)
	}
	if config.MaxAttempts <= 0 {
		return nil, fmt.Errorf("max attempts must be positive, got: %d", config.MaxAttempts)
	}
	return &RandomAllocator{index: index, config: config}, nil
}

// Allocate returns a free short code, either the validated custom alias or a
// freshly generated random code
func (a *RandomAllocator) Allocate(ctx context.Context, customAlias string) (string, error) {
	if customAlias != "" {
		return a.allocateAlias(ctx, customAlias)
	}
	return a.allocateRandom(ctx)
}

func (a *RandomAllocator) allocateAlias(ctx context.Context, alias string) (string, error) {
	alias = strings.TrimSpace(alias)
	if !aliasPattern.MatchString(alias) {
		return "", fmt.Errorf("%w: must be 3-30 letters, digits, hyphens, or underscores", domain.ErrInvalidAlias)
	}
	if reservedAliases[strings.ToLower(alias)] {
		return "", fmt.Errorf("%w: %q is reserved", domain.ErrInvalidAlias, alias)
	}

	taken, err := a.index.CodeExists(ctx, alias)
	if err != nil {
		return "", fmt.Errorf("failed to check alias availability: %w", err)
	}
	if taken {
		return "", domain.ErrAliasTaken
	}
	return alias, nil
}

// allocateRandom generates codes until a free one turns up. The alphabet
// space (64^6) vastly exceeds expected cardinality, so collisions are rare;
// the attempt bound keeps the loop total anyway.
func (a *RandomAllocator) allocateRandom(ctx context.Context) (string, error) {
	for attempt := 0; attempt < a.config.MaxAttempts; attempt++ {
		code, err := a.generate()
		if err != nil {
			return "", err
		}

		taken, err := a.index.CodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check code availability: %w", err)
		}
		if !taken {
			return code, nil
		}
	}
	return "", fmt.Errorf("%w: %d attempts", domain.ErrCodeSpaceExhausted, a.config.MaxAttempts)
}

func (a *RandomAllocator) generate() (string, error) {
	buf := make([]byte, a.config.CodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}

// Ensure RandomAllocator implements Allocator
var _ Allocator = (*RandomAllocator)(nil)
