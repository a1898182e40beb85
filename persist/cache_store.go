package persist

import (
	"context"

	"github.com/kasuganosora/cardpack/cache"
)

// keyPrefix namespaces profile documents inside a shared cache.
const keyPrefix = "cardpack:profile:"

// CacheStore keeps profiles in the cache layer (in-process or Redis) with
// no expiry.
type CacheStore struct {
	c cache.Cache
}

func NewCacheStore(c cache.Cache) *CacheStore {
	return &CacheStore{c: c}
}

func (s *CacheStore) Load(ctx context.Context, key string) ([]byte, error) {
	v, err := s.c.Get(ctx, keyPrefix+key)
	if cache.IsNotFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(v), nil
}

func (s *CacheStore) Save(ctx context.Context, key string, payload []byte) error {
	return s.c.Set(ctx, keyPrefix+key, string(payload), 0)
}
