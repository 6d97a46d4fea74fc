package services

import (
	"context"
	"time"

	"github.com/roadrunner/booking-backend/internal/utils"
)

// referenceGenerator hands out unused human-readable references.
// Uniqueness is checked against storage and against references already
// handed out in the current batch.
type referenceGenerator struct {
	prefix      string
	maxAttempts int
	candidate   func(prefix string, now time.Time) (string, error)
}

func newReferenceGenerator(prefix string, maxAttempts int) *referenceGenerator {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &referenceGenerator{
		prefix:      prefix,
		maxAttempts: maxAttempts,
		candidate:   utils.NewReference,
	}
}

// next returns an unused reference or ErrReferenceGenerationExhausted
func (g *referenceGenerator) next(
	ctx context.Context,
	now time.Time,
	exists func(ctx context.Context, ref string) (bool, error),
	used map[string]bool,
) (string, error) {
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		ref, err := g.candidate(g.prefix, now)
		if err != nil {
			return "", err
		}
		if used[ref] {
			continue
		}
		taken, err := exists(ctx, ref)
		if err != nil {
			return "", err
		}
		if !taken {
			used[ref] = true
			return ref, nil
		}
	}
	return "", ErrReferenceGenerationExhausted
}
