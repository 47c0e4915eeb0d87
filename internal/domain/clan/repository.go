package clan

import "context"

// Repository persists the ClanStore record.
type Repository interface {
	Get(ctx context.Context) (Store, error)
	Set(ctx context.Context, s Store) error
	Update(ctx context.Context, fn func(*Store) error) (Store, error)
}
