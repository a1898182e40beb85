package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/kasuganosora/cardpack/cache"
	"gorm.io/gorm"
)

// ErrNotFound is returned by Load when no profile exists under the key.
var ErrNotFound = errors.New("persist: profile not found")

// Store is an opaque key-value slot for profile documents. Writes are
// last-write-wins.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, payload []byte) error
}

const (
	BackendDB    = "db"
	BackendCache = "cache"
)

// NewStore picks the backend named in configuration.
func NewStore(backend string, db *gorm.DB, c cache.Cache) (Store, error) {
	switch backend {
	case BackendDB:
		if db == nil {
			return nil, errors.New("persist: db backend needs a database")
		}
		return NewDBStore(db), nil
	case BackendCache:
		if c == nil {
			return nil, errors.New("persist: cache backend needs a cache")
		}
		return NewCacheStore(c), nil
	default:
		return nil, fmt.Errorf("persist: unknown backend %q", backend)
	}
}
