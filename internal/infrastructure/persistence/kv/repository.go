package kv

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/levelup-fitness/levelup-core/internal/domain/shared"
	"github.com/levelup-fitness/levelup-core/pkg/logger"
)

// Envelope is the persisted wrapper around every record.
type Envelope[T any] struct {
	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updatedAt"`
	Data      T         `json:"data"`
}

// Step migrates a raw document from version k to k+1. Steps must be total:
// any legacy shape, including missing or null fields, yields a valid
// document for the next version.
type Step func(doc json.RawMessage) (json.RawMessage, error)

// Migrations maps a source version to the step that leaves it.
type Migrations map[int]Step

// Fallback reasons reported to hooks and logs.
const (
	ReasonCorrupt       = "corrupt"
	ReasonMigration     = "migration_failed"
	ReasonInvalid       = "validation_failed"
	ReasonFutureVersion = "future_version"
)

// Hooks observe recovery paths. Either field may be nil.
type Hooks struct {
	OnMigrate  func(key string, from, to int)
	OnFallback func(key, reason string)
}

// Options configures a Repository.
type Options[T any] struct {
	Key        string
	Version    int
	Store      DataStore
	Default    func() T
	Migrations Migrations

	// Normalize fills nil slices and similar gaps after every decode.
	Normalize func(*T)

	// Validate rejects a decoded value; the default replaces it.
	Validate func(T) error

	Clock  shared.Clock
	Logger *slog.Logger
	Hooks  Hooks
}

// Repository persists one typed record under one key with schema evolution.
// It assumes a single writer: Update is a plain read-modify-write.
type Repository[T any] struct {
	opts Options[T]
	log  *slog.Logger
}

// NewRepository creates a Repository. Key, Store and Default are required.
func NewRepository[T any](opts Options[T]) *Repository[T] {
	if opts.Version < 1 {
		opts.Version = 1
	}
	if opts.Clock == nil {
		opts.Clock = shared.SystemClock{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Repository[T]{
		opts: opts,
		log:  opts.Logger.With(logger.Component("repository"), logger.StorageKey(opts.Key)),
	}
}

// Key returns the storage key.
func (r *Repository[T]) Key() string { return r.opts.Key }

// Version returns the current schema version.
func (r *Repository[T]) Version() int { return r.opts.Version }

// Get returns the stored value. Absent, corrupt, unmigratable or invalid
// records are replaced by the default, which is persisted. Only store I/O
// errors are returned.
func (r *Repository[T]) Get(ctx context.Context) (T, error) {
	env, err := r.Envelope(ctx)
	return env.Data, err
}

// Envelope is Get returning the envelope as it now stands in the store.
func (r *Repository[T]) Envelope(ctx context.Context) (Envelope[T], error) {
	raw, ok, err := r.opts.Store.Get(ctx, r.opts.Key)
	if err != nil {
		var zero Envelope[T]
		return zero, shared.WrapError("storage", "Get", shared.ErrStorage, r.opts.Key, err)
	}
	if !ok {
		return r.reset(ctx, "")
	}

	version, doc, err := splitEnvelope([]byte(raw))
	if err != nil {
		r.log.Warn("stored record is not valid JSON, using default", logger.Err(err))
		return r.reset(ctx, ReasonCorrupt)
	}

	switch {
	case version > r.opts.Version:
		r.log.Warn("stored record is newer than this build, using default", logger.SchemaVersion(version))
		return r.reset(ctx, ReasonFutureVersion)

	case version < r.opts.Version:
		migrated, err := r.migrate(doc, version)
		if err != nil {
			r.log.Warn("migration failed, using default", logger.SchemaVersion(version), logger.Err(err))
			return r.reset(ctx, ReasonMigration)
		}
		value, err := r.decode(migrated)
		if err != nil {
			r.log.Warn("migrated record rejected, using default", logger.SchemaVersion(version), logger.Err(err))
			return r.reset(ctx, ReasonMigration)
		}
		env, err := r.write(ctx, value)
		if err != nil {
			return env, err
		}
		r.log.Info("record migrated", slog.Int("from", version), slog.Int("to", r.opts.Version))
		if r.opts.Hooks.OnMigrate != nil {
			r.opts.Hooks.OnMigrate(r.opts.Key, version, r.opts.Version)
		}
		return env, nil
	}

	value, err := r.decode(doc)
	if err != nil {
		r.log.Warn("stored record rejected, using default", logger.Err(err))
		return r.reset(ctx, ReasonInvalid)
	}

	var updatedAt time.Time
	var head struct {
		UpdatedAt time.Time `json:"updatedAt"`
	}
	if json.Unmarshal([]byte(raw), &head) == nil {
		updatedAt = head.UpdatedAt
	}
	return Envelope[T]{Version: version, UpdatedAt: updatedAt, Data: value}, nil
}

// Peek is Get without side effects: migrations run in memory and every
// fallback yields the default, but nothing is written and no hook fires.
func (r *Repository[T]) Peek(ctx context.Context) (T, error) {
	raw, ok, err := r.opts.Store.Get(ctx, r.opts.Key)
	if err != nil {
		var zero T
		return zero, shared.WrapError("storage", "Peek", shared.ErrStorage, r.opts.Key, err)
	}
	if !ok {
		return r.opts.Default(), nil
	}
	version, doc, err := splitEnvelope([]byte(raw))
	if err != nil || version > r.opts.Version {
		return r.opts.Default(), nil
	}
	if version < r.opts.Version {
		if doc, err = r.migrate(doc, version); err != nil {
			return r.opts.Default(), nil
		}
	}
	value, err := r.decode(doc)
	if err != nil {
		return r.opts.Default(), nil
	}
	return value, nil
}

// Set wraps value in an envelope stamped with the current version and time.
func (r *Repository[T]) Set(ctx context.Context, value T) error {
	_, err := r.write(ctx, value)
	return err
}

// Update runs fn on the current value and stores the result. When fn fails
// nothing is written.
func (r *Repository[T]) Update(ctx context.Context, fn func(*T) error) (T, error) {
	current, err := r.Get(ctx)
	if err != nil {
		return current, err
	}

	next := current
	if err := fn(&next); err != nil {
		return current, err
	}
	if err := r.Set(ctx, next); err != nil {
		return current, err
	}
	return next, nil
}

// Clear removes the record.
func (r *Repository[T]) Clear(ctx context.Context) error {
	if err := r.opts.Store.Remove(ctx, r.opts.Key); err != nil {
		return shared.WrapError("storage", "Clear", shared.ErrStorage, r.opts.Key, err)
	}
	return nil
}

func (r *Repository[T]) write(ctx context.Context, value T) (Envelope[T], error) {
	env := Envelope[T]{
		Version:   r.opts.Version,
		UpdatedAt: r.opts.Clock.Now().UTC(),
		Data:      value,
	}
	b, err := json.Marshal(env)
	if err != nil {
		return env, shared.WrapError("storage", "Encode", shared.ErrInvalidFormat, r.opts.Key, err)
	}
	if err := r.opts.Store.Set(ctx, r.opts.Key, string(b)); err != nil {
		return env, shared.WrapError("storage", "Set", shared.ErrStorage, r.opts.Key, err)
	}
	return env, nil
}

// reset persists and returns the default. An empty reason means the key was
// simply absent.
func (r *Repository[T]) reset(ctx context.Context, reason string) (Envelope[T], error) {
	if reason != "" && r.opts.Hooks.OnFallback != nil {
		r.opts.Hooks.OnFallback(r.opts.Key, reason)
	}
	return r.write(ctx, r.opts.Default())
}

func (r *Repository[T]) migrate(doc json.RawMessage, from int) (json.RawMessage, error) {
	for v := from; v < r.opts.Version; v++ {
		step, ok := r.opts.Migrations[v]
		if !ok {
			return nil, fmt.Errorf("no migration from version %d", v)
		}
		next, err := step(doc)
		if err != nil {
			return nil, fmt.Errorf("v%d->v%d: %w", v, v+1, err)
		}
		doc = next
	}
	return doc, nil
}

func (r *Repository[T]) decode(doc json.RawMessage) (T, error) {
	var value T
	if len(bytes.TrimSpace(doc)) == 0 || bytes.Equal(bytes.TrimSpace(doc), []byte("null")) {
		return value, shared.ErrCorruptRecord
	}
	if err := json.Unmarshal(doc, &value); err != nil {
		return value, shared.WrapError("storage", "Decode", shared.ErrInvalidFormat, r.opts.Key, err)
	}
	if r.opts.Normalize != nil {
		r.opts.Normalize(&value)
	}
	if r.opts.Validate != nil {
		if err := r.opts.Validate(value); err != nil {
			return value, err
		}
	}
	return value, nil
}

// splitEnvelope extracts version and payload. A JSON object without both
// "version" and "data" is a bare legacy payload at version 1. Versions below
// 1 are read as 1.
func splitEnvelope(raw []byte) (int, json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return 0, nil, err
	}

	rawVersion, hasVersion := fields["version"]
	data, hasData := fields["data"]
	if !hasVersion || !hasData {
		return 1, json.RawMessage(raw), nil
	}

	var version int
	if err := json.Unmarshal(rawVersion, &version); err != nil {
		return 0, nil, fmt.Errorf("version: %w", err)
	}
	if version < 1 {
		version = 1
	}
	return version, data, nil
}
