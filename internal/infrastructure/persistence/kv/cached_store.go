package kv

import (
	"context"
	"errors"
	"log/slog"

	"github.com/coocood/freecache"

	"github.com/levelup-fitness/levelup-core/pkg/logger"
)

const megabyte = 1024 * 1024

// CachedStore is a read-through cache in front of a slower DataStore.
// Absent keys are not cached.
type CachedStore struct {
	inner     DataStore
	cache     *freecache.Cache
	expireSec int
	log       *slog.Logger
}

// NewCachedStore wraps inner with a cache of sizeMB megabytes. expireSec 0
// keeps entries until evicted.
func NewCachedStore(inner DataStore, sizeMB, expireSec int, log *slog.Logger) *CachedStore {
	if sizeMB <= 0 {
		sizeMB = 1
	}
	if log == nil {
		log = slog.Default()
	}
	return &CachedStore{
		inner:     inner,
		cache:     freecache.NewCache(sizeMB * megabyte),
		expireSec: expireSec,
		log:       log,
	}
}

// Get implements DataStore.
func (s *CachedStore) Get(ctx context.Context, key string) (string, bool, error) {
	if b, err := s.cache.Get([]byte(key)); err == nil {
		return string(b), true, nil
	} else if !errors.Is(err, freecache.ErrNotFound) {
		s.log.Debug("cache get failed", logger.StorageKey(key), logger.Err(err))
	}

	value, ok, err := s.inner.Get(ctx, key)
	if err != nil || !ok {
		return value, ok, err
	}
	s.remember(key, value)
	return value, true, nil
}

// Set implements DataStore. The cache is only updated after the write lands.
func (s *CachedStore) Set(ctx context.Context, key, value string) error {
	if err := s.inner.Set(ctx, key, value); err != nil {
		s.cache.Del([]byte(key))
		return err
	}
	s.remember(key, value)
	return nil
}

// Remove implements DataStore.
func (s *CachedStore) Remove(ctx context.Context, key string) error {
	s.cache.Del([]byte(key))
	return s.inner.Remove(ctx, key)
}

// HitRate reports the cache hit ratio since creation.
func (s *CachedStore) HitRate() float64 {
	return s.cache.HitRate()
}

// remember caches value. When the cache refuses it, any older entry is
// dropped so reads fall through to the inner store.
func (s *CachedStore) remember(key, value string) {
	if err := s.cache.Set([]byte(key), []byte(value), s.expireSec); err != nil {
		s.cache.Del([]byte(key))
		s.log.Debug("value not cached", logger.StorageKey(key), logger.Err(err))
	}
}
