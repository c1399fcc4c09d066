package registry

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/zjrosen/nacre/internal/log"
	"github.com/zjrosen/nacre/model"
)

// Store is the backing map a registry deduplicates into.
type Store interface {
	Get(key string) (model.Entity, bool)
	Set(key string, m model.Entity)
	Delete(key string)
	Len() int
	Range(fn func(key string, m model.Entity) bool)
	Clear()
}

// mapStore is the default backing map: a plain in-process map with no
// eviction.
type mapStore map[string]model.Entity

func newMapStore() mapStore { return mapStore{} }

func (s mapStore) Get(key string) (model.Entity, bool) {
	m, ok := s[key]
	return m, ok
}

func (s mapStore) Set(key string, m model.Entity) { s[key] = m }

func (s mapStore) Delete(key string) { delete(s, key) }

func (s mapStore) Len() int { return len(s) }

func (s mapStore) Range(fn func(key string, m model.Entity) bool) {
	for k, m := range s {
		if !fn(k, m) {
			return
		}
	}
}

func (s mapStore) Clear() { clear(s) }

// CacheStore backs a registry with a go-cache instance, giving entries a TTL
// so long-lived registries shed stale models on their own.
type CacheStore struct {
	cache *gocache.Cache
}

// NewCacheStore creates a store whose entries expire ttl after their last
// write. A non-positive ttl keeps entries forever.
func NewCacheStore(ttl time.Duration) *CacheStore {
	if ttl <= 0 {
		return &CacheStore{cache: gocache.New(gocache.NoExpiration, 0)}
	}
	return &CacheStore{cache: gocache.New(ttl, 2*ttl)}
}

func (s *CacheStore) Get(key string) (model.Entity, bool) {
	value, found := s.cache.Get(key)
	if !found {
		return nil, false
	}
	m, ok := value.(model.Entity)
	if !ok {
		log.Error(log.CatCache, "wrong type assertion when getting value", "key", key)
		return nil, false
	}
	log.Debug(log.CatCache, "cache hit", "key", key)
	return m, true
}

func (s *CacheStore) Set(key string, m model.Entity) { s.cache.SetDefault(key, m) }

func (s *CacheStore) Delete(key string) { s.cache.Delete(key) }

// Len counts live entries; expired entries awaiting cleanup are excluded.
func (s *CacheStore) Len() int { return len(s.cache.Items()) }

func (s *CacheStore) Range(fn func(key string, m model.Entity) bool) {
	for k, item := range s.cache.Items() {
		if m, ok := item.Object.(model.Entity); ok {
			if !fn(k, m) {
				return
			}
		}
	}
}

func (s *CacheStore) Clear() { s.cache.Flush() }

var (
	_ Store = mapStore(nil)
	_ Store = (*CacheStore)(nil)
)
