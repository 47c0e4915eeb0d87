package user

import "context"

// Repository persists the single User record.
type Repository interface {
	// Get returns the stored user, creating the default on first use.
	Get(ctx context.Context) (User, error)

	// Set replaces the stored user.
	Set(ctx context.Context, u User) error

	// Update runs a read-modify-write cycle.
	Update(ctx context.Context, fn func(*User) error) (User, error)
}
