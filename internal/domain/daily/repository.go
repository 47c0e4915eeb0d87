package daily

import (
	"context"
	"time"
)

// Repository persists the single current-day record.
type Repository interface {
	// Get returns the stored day, whatever its date.
	Get(ctx context.Context) (Progress, error)

	// Set replaces the stored day.
	Set(ctx context.Context, p Progress) error

	// Today returns the stored day when it is the logical day at now,
	// otherwise a fresh unsaved day.
	Today(ctx context.Context, dayStartHour int, loc *time.Location, now time.Time) (Progress, error)
}
