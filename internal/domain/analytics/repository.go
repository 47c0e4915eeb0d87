package analytics

import "context"

// Repository persists the analytics record.
type Repository interface {
	Get(ctx context.Context) (Data, error)
	Set(ctx context.Context, d Data) error
	Update(ctx context.Context, fn func(*Data) error) (Data, error)
}
