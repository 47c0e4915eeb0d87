package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/levelup-fitness/levelup-core/internal/infrastructure/persistence/kv"
	"github.com/levelup-fitness/levelup-core/pkg/retry"
)

var _ kv.DataStore = (*Store)(nil)

func newMockStore(t *testing.T, attempts int) (*Store, redismock.ClientMock) {
	t.Helper()
	db, mock := redismock.NewClientMock()
	t.Cleanup(func() { _ = db.Close() })
	return NewStoreFromClient(db, "levelup:",
		retry.WithMaxAttempts(attempts),
		retry.WithInitialDelay(time.Millisecond),
		retry.WithJitter(0),
	), mock
}

func TestStore_Get(t *testing.T) {
	store, mock := newMockStore(t, 1)
	ctx := context.Background()

	mock.ExpectGet("levelup:levelup_user").SetVal(`{"version":3}`)
	value, ok, err := store.Get(ctx, "levelup_user")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"version":3}`, value)

	mock.ExpectGet("levelup:levelup_daily").SetErr(redis.Nil)
	value, ok, err = store.Get(ctx, "levelup_daily")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, value)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_GetRetriesTransientErrors(t *testing.T) {
	store, mock := newMockStore(t, 2)

	mock.ExpectGet("levelup:levelup_clans").SetErr(errors.New("connection reset by peer"))
	mock.ExpectGet("levelup:levelup_clans").SetVal(`{}`)

	value, ok, err := store.Get(context.Background(), "levelup_clans")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{}`, value)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_GetGivesUp(t *testing.T) {
	store, mock := newMockStore(t, 2)
	failure := errors.New("i/o timeout")

	mock.ExpectGet("levelup:levelup_history").SetErr(failure)
	mock.ExpectGet("levelup:levelup_history").SetErr(failure)

	_, _, err := store.Get(context.Background(), "levelup_history")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SetAndRemove(t *testing.T) {
	store, mock := newMockStore(t, 1)
	ctx := context.Background()

	mock.ExpectSet("levelup:levelup_user", `{"version":3,"data":{}}`, 0).SetVal("OK")
	require.NoError(t, store.Set(ctx, "levelup_user", `{"version":3,"data":{}}`))

	mock.ExpectDel("levelup:levelup_user").SetVal(1)
	require.NoError(t, store.Remove(ctx, "levelup_user"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_EmptyKey(t *testing.T) {
	store, _ := newMockStore(t, 1)
	ctx := context.Background()

	_, _, err := store.Get(ctx, "")
	assert.ErrorIs(t, err, ErrKeyEmpty)
	assert.ErrorIs(t, store.Set(ctx, "", "x"), ErrKeyEmpty)
	assert.ErrorIs(t, store.Remove(ctx, ""), ErrKeyEmpty)
}

func TestStore_BacksRepository(t *testing.T) {
	store, mock := newMockStore(t, 1)

	type counter struct {
		N int `json:"n"`
	}
	repo := kv.NewRepository(kv.Options[counter]{
		Key:     "counter",
		Version: 1,
		Store:   store,
		Default: func() counter { return counter{} },
	})

	mock.ExpectGet("levelup:counter").SetVal(`{"version":1,"updatedAt":"2026-01-01T00:00:00Z","data":{"n":4}}`)
	got, err := repo.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, got.N)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfig_Addr(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "localhost:6379", cfg.Addr())
	assert.Equal(t, "levelup:", cfg.KeyPrefix)
}
