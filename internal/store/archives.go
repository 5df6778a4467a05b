// internal/store/archives.go
//
// Short-lived cache of finished batch archives, keyed by batch ID.
// The upload request builds the archive; the browser downloads it with a
// second request. Entries expire after a TTL and the oldest are evicted once
// the cache is full, so memory stays bounded.

package store

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Archive is a finished ZIP ready for download.
type Archive struct {
	ID        string
	Data      []byte
	CreatedAt time.Time
}

// ArchiveStore caches archives in an expiring LRU.
type ArchiveStore struct {
	cache *expirable.LRU[string, Archive]
}

// NewArchiveStore keeps at most size archives, each for at most ttl.
func NewArchiveStore(size int, ttl time.Duration) *ArchiveStore {
	return &ArchiveStore{cache: expirable.NewLRU[string, Archive](size, nil, ttl)}
}

// Put stores an archive, evicting the oldest entry when full.
func (s *ArchiveStore) Put(a Archive) {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	s.cache.Add(a.ID, a)
}

// Get returns the archive for id, or ErrNotFound once it has expired.
func (s *ArchiveStore) Get(id string) (Archive, error) {
	a, ok := s.cache.Get(id)
	if !ok {
		return Archive{}, ErrNotFound
	}
	return a, nil
}

// Len reports the number of cached archives.
func (s *ArchiveStore) Len() int { return s.cache.Len() }
