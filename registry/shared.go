package registry

import (
	"sync"

	gocache "github.com/patrickmn/go-cache"

	"github.com/zjrosen/nacre/internal/log"
)

// The shared table is deliberate process-wide mutable state: call sites that
// cannot wire a registry through their constructors retrieve the same
// instance by name. Entries live until evicted.
var (
	sharedMu    sync.Mutex
	sharedTable = gocache.New(gocache.NoExpiration, 0)
)

// Shared returns the registry named name, creating it with builder and opts
// on first use. Later calls ignore the arguments and return the existing
// instance, so two call sites naming the same registry observe each other's
// registrations immediately.
func Shared(name string, builder Builder, opts ...Option) (*Registry, error) {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	if v, ok := sharedTable.Get(name); ok {
		return v.(*Registry), nil
	}
	r, err := New(builder, opts...)
	if err != nil {
		return nil, err
	}
	sharedTable.Set(name, r, gocache.NoExpiration)
	log.Debug(log.CatRegistry, "shared registry created", "name", name)
	return r, nil
}

// EvictShared removes the named registry from the shared table. Live
// references stay usable; the registry itself is not disposed.
func EvictShared(name string) {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	sharedTable.Delete(name)
}

// ResetShared drops every shared registry. Tests use it to keep named state
// from leaking across cases.
func ResetShared() {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	sharedTable.Flush()
}
