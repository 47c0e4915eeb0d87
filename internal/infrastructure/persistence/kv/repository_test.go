package kv

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/levelup-fitness/levelup-core/internal/domain/shared"
	"github.com/levelup-fitness/levelup-core/pkg/logger"
)

type counter struct {
	Count int      `json:"count"`
	Label string   `json:"label"`
	Tags  []string `json:"tags"`
}

var stamp = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

type recorder struct {
	migrations [][2]int
	fallbacks  []string
}

func newCounterRepo(store DataStore, rec *recorder) *Repository[counter] {
	return NewRepository(Options[counter]{
		Key:     "counter",
		Version: 3,
		Store:   store,
		Default: func() counter { return counter{Label: "default", Tags: []string{}} },
		Migrations: Migrations{
			1: func(doc json.RawMessage) (json.RawMessage, error) {
				var v1 struct {
					N int `json:"n"`
				}
				if err := json.Unmarshal(doc, &v1); err != nil {
					return nil, err
				}
				return json.Marshal(map[string]any{"count": v1.N})
			},
			2: func(doc json.RawMessage) (json.RawMessage, error) {
				var v2 map[string]any
				if err := json.Unmarshal(doc, &v2); err != nil {
					return nil, err
				}
				if _, ok := v2["label"]; !ok {
					v2["label"] = "migrated"
				}
				return json.Marshal(v2)
			},
		},
		Normalize: func(c *counter) {
			if c.Tags == nil {
				c.Tags = []string{}
			}
		},
		Validate: func(c counter) error {
			if c.Count < 0 {
				return errors.New("negative count")
			}
			return nil
		},
		Clock:  shared.NewFixedClock(stamp),
		Logger: logger.Discard(),
		Hooks: Hooks{
			OnMigrate:  func(_ string, from, to int) { rec.migrations = append(rec.migrations, [2]int{from, to}) },
			OnFallback: func(_ string, reason string) { rec.fallbacks = append(rec.fallbacks, reason) },
		},
	})
}

func storedEnvelope(t *testing.T, store *MemoryStore) Envelope[json.RawMessage] {
	t.Helper()
	raw, ok, err := store.Get(context.Background(), "counter")
	require.NoError(t, err)
	require.True(t, ok)
	var env Envelope[json.RawMessage]
	require.NoError(t, json.Unmarshal([]byte(raw), &env))
	return env
}

func TestGet_AbsentWritesDefault(t *testing.T) {
	store := NewMemoryStore()
	rec := &recorder{}
	repo := newCounterRepo(store, rec)

	v, err := repo.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "default", v.Label)

	env := storedEnvelope(t, store)
	assert.Equal(t, 3, env.Version)
	assert.Equal(t, stamp, env.UpdatedAt)
	assert.Empty(t, rec.fallbacks, "absence is not a fallback")
}

func TestPeek_NeverWrites(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	rec := &recorder{}
	repo := newCounterRepo(store, rec)

	v, err := repo.Peek(ctx)
	require.NoError(t, err)
	assert.Equal(t, "default", v.Label)
	_, ok, err := store.Get(ctx, "counter")
	require.NoError(t, err)
	assert.False(t, ok, "absent key stays absent")

	legacy := `{"version":1,"updatedAt":"2023-01-01T00:00:00Z","data":{"n":7}}`
	require.NoError(t, store.Set(ctx, "counter", legacy))
	v, err = repo.Peek(ctx)
	require.NoError(t, err)
	assert.Equal(t, counter{Count: 7, Label: "migrated", Tags: []string{}}, v)

	require.NoError(t, store.Set(ctx, "counter", `{not json`))
	v, err = repo.Peek(ctx)
	require.NoError(t, err)
	assert.Equal(t, "default", v.Label)

	raw, _, _ := store.Get(ctx, "counter")
	assert.Equal(t, `{not json`, raw)
	assert.Empty(t, rec.migrations)
	assert.Empty(t, rec.fallbacks)
}

func TestGet_MigratesChainAndPersists(t *testing.T) {
	store := NewMemoryStore()
	rec := &recorder{}
	require.NoError(t, store.Set(context.Background(), "counter", `{"version":1,"updatedAt":"2023-01-01T00:00:00Z","data":{"n":7}}`))

	v, err := newCounterRepo(store, rec).Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, counter{Count: 7, Label: "migrated", Tags: []string{}}, v)
	assert.Equal(t, [][2]int{{1, 3}}, rec.migrations)
	assert.Equal(t, 3, storedEnvelope(t, store).Version)
}

func TestGet_BarePayloadIsVersionOne(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), "counter", `{"n":4}`))

	v, err := newCounterRepo(store, &recorder{}).Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, v.Count)
}

func TestGet_CorruptFallsBackToDefault(t *testing.T) {
	store := NewMemoryStore()
	rec := &recorder{}
	require.NoError(t, store.Set(context.Background(), "counter", `{not json`))

	v, err := newCounterRepo(store, rec).Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "default", v.Label)
	assert.Equal(t, []string{ReasonCorrupt}, rec.fallbacks)
	assert.Equal(t, 3, storedEnvelope(t, store).Version)
}

func TestGet_ValidatorRejects(t *testing.T) {
	store := NewMemoryStore()
	rec := &recorder{}
	require.NoError(t, store.Set(context.Background(), "counter", `{"version":3,"updatedAt":"2024-01-01T00:00:00Z","data":{"count":-1,"label":"x"}}`))

	v, err := newCounterRepo(store, rec).Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "default", v.Label)
	assert.Equal(t, []string{ReasonInvalid}, rec.fallbacks)
}

func TestGet_NullDataFallsBack(t *testing.T) {
	store := NewMemoryStore()
	rec := &recorder{}
	require.NoError(t, store.Set(context.Background(), "counter", `{"version":3,"updatedAt":"2024-01-01T00:00:00Z","data":null}`))

	v, err := newCounterRepo(store, rec).Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "default", v.Label)
}

func TestGet_FutureVersionFallsBack(t *testing.T) {
	store := NewMemoryStore()
	rec := &recorder{}
	require.NoError(t, store.Set(context.Background(), "counter", `{"version":9,"updatedAt":"2024-01-01T00:00:00Z","data":{"count":1}}`))

	_, err := newCounterRepo(store, rec).Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{ReasonFutureVersion}, rec.fallbacks)
}

func TestGet_MigrationFailureFallsBack(t *testing.T) {
	store := NewMemoryStore()
	rec := &recorder{}
	require.NoError(t, store.Set(context.Background(), "counter", `{"version":1,"updatedAt":"2024-01-01T00:00:00Z","data":{"n":"seven"}}`))

	v, err := newCounterRepo(store, rec).Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "default", v.Label)
	assert.Equal(t, []string{ReasonMigration}, rec.fallbacks)
}

type failingStore struct{ MemoryStore }

func (failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("connection refused")
}

func TestGet_StoreErrorIsReturned(t *testing.T) {
	_, err := newCounterRepo(&failingStore{}, &recorder{}).Get(context.Background())
	assert.ErrorIs(t, err, shared.ErrStorage)
}

func TestUpdateAndClear(t *testing.T) {
	store := NewMemoryStore()
	repo := newCounterRepo(store, &recorder{})
	ctx := context.Background()

	v, err := repo.Update(ctx, func(c *counter) error {
		c.Count = 5
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 5, v.Count)

	boom := errors.New("boom")
	v, err = repo.Update(ctx, func(c *counter) error {
		c.Count = 99
		return boom
	})
	assert.ErrorIs(t, err, boom)

	stored, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.Count)

	require.NoError(t, repo.Clear(ctx))
	assert.Empty(t, store.Keys())
}

func TestEnvelope(t *testing.T) {
	store := NewMemoryStore()
	repo := newCounterRepo(store, &recorder{})
	require.NoError(t, repo.Set(context.Background(), counter{Count: 2, Tags: []string{"a"}}))

	env, err := repo.Envelope(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, env.Version)
	assert.Equal(t, stamp, env.UpdatedAt)
	assert.Equal(t, 2, env.Data.Count)
}
