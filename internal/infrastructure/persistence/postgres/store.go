package postgres

import (
	"context"
	"fmt"
	"regexp"

	"github.com/levelup-fitness/levelup-core/pkg/retry"
)

var tableNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

// Store is a kv.DataStore over a single key/value table.
type Store struct {
	q       Querier
	table   string
	retrier *retry.Retrier

	getSQL    string
	upsertSQL string
	deleteSQL string
}

// NewStore creates a Store on table. The table name is interpolated into SQL
// and therefore restricted to lowercase identifiers.
func NewStore(q Querier, table string, opts ...retry.Option) (*Store, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("postgres: invalid table name %q", table)
	}
	return &Store{
		q:         q,
		table:     table,
		retrier:   retry.New(opts...),
		getSQL:    fmt.Sprintf(`SELECT value FROM %s WHERE key = $1`, table),
		upsertSQL: fmt.Sprintf(`INSERT INTO %s (key, value, updated_at) VALUES ($1, $2, NOW()) ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`, table),
		deleteSQL: fmt.Sprintf(`DELETE FROM %s WHERE key = $1`, table),
	}, nil
}

// Table returns the backing table name.
func (s *Store) Table() string { return s.table }

// Get implements kv.DataStore.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	var found bool
	err := s.retrier.Do(ctx, func(ctx context.Context) error {
		err := s.q.QueryRow(ctx, s.getSQL, key).Scan(&value)
		if IsNoRows(err) {
			found = false
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("postgres: get %s: %w", key, err)
	}
	return value, found, nil
}

// Set implements kv.DataStore.
func (s *Store) Set(ctx context.Context, key, value string) error {
	err := s.retrier.Do(ctx, func(ctx context.Context) error {
		_, err := s.q.Exec(ctx, s.upsertSQL, key, value)
		return err
	})
	if err != nil {
		return fmt.Errorf("postgres: set %s: %w", key, err)
	}
	return nil
}

// Remove implements kv.DataStore.
func (s *Store) Remove(ctx context.Context, key string) error {
	err := s.retrier.Do(ctx, func(ctx context.Context) error {
		_, err := s.q.Exec(ctx, s.deleteSQL, key)
		return err
	})
	if err != nil {
		return fmt.Errorf("postgres: remove %s: %w", key, err)
	}
	return nil
}
