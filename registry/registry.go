// Package registry deduplicates live entities by key. Bags that resolve to
// the same key materialize to the identical instance, so every holder of a
// given uuid observes one model.
//
// Registries are not internally locked: like the models they hold, a
// registry belongs to one goroutine unless callers coordinate. Only the
// process-wide shared table is safe for concurrent use.
package registry

import (
	"errors"

	"github.com/zjrosen/nacre/internal/log"
	"github.com/zjrosen/nacre/model"
)

// Builder turns a bag into an entity. *factory.Factory satisfies it; the
// registry needs nothing else from the factory surface.
type Builder interface {
	NewInstanceFor(data model.Data) (model.Entity, error)
}

// BuilderFunc adapts a plain function to the Builder interface. Wrapping
// model.Generic gives a registry that materializes bags without a
// constructor table.
type BuilderFunc func(model.Data) (model.Entity, error)

// NewInstanceFor calls f.
func (f BuilderFunc) NewInstanceFor(data model.Data) (model.Entity, error) {
	return f(data)
}

// KeyFunc derives a registry key candidate from a bag.
type KeyFunc func(model.Data) any

// Option configures a Registry.
type Option func(*Registry)

// WithKeyAttribute changes the bag key the registry key is read from.
func WithKeyAttribute(attr string) Option {
	return func(r *Registry) { r.keyAttr = attr }
}

// WithKeyFunc replaces attribute extraction with fn. The derived value still
// passes through the key validator.
func WithKeyFunc(fn KeyFunc) Option {
	return func(r *Registry) { r.keyFn = fn }
}

// WithKeyValidator replaces the key validator. The default accepts any
// string. Keys are textual regardless: a value that passes a custom
// validator but is not a string is still invalid.
func WithKeyValidator(fn func(key any) bool) Option {
	return func(r *Registry) { r.validKey = fn }
}

// WithAllowOverrides makes Set replace existing entries instead of failing
// with a DuplicateKeyError.
func WithAllowOverrides(allow bool) Option {
	return func(r *Registry) { r.allowOverrides = allow }
}

// WithStore injects the backing store.
func WithStore(s Store) Option {
	return func(r *Registry) { r.store = s }
}

// Registry is a keyed cache of live entities with a get-or-create protocol.
type Registry struct {
	builder        Builder
	store          Store
	keyAttr        string
	keyFn          KeyFunc
	validKey       func(key any) bool
	allowOverrides bool
	disposed       bool
}

func keyIsString(key any) bool {
	_, ok := key.(string)
	return ok
}

// New creates a registry that materializes unseen bags through builder.
func New(builder Builder, opts ...Option) (*Registry, error) {
	if builder == nil {
		return nil, ErrNilFactory
	}
	r := &Registry{
		builder:  builder,
		keyAttr:  model.PropUUID,
		validKey: keyIsString,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.store == nil {
		r.store = newMapStore()
	}
	return r, nil
}

func (r *Registry) rawKey(data model.Data) any {
	if r.keyFn != nil {
		return r.keyFn(data)
	}
	return data[r.keyAttr]
}

// ValidKeyIn extracts the registry key from data. A nil bag is a hard
// error; a key the validator rejects yields an InvalidKeyError carrying the
// offending value and the source bag.
func (r *Registry) ValidKeyIn(data model.Data) (string, error) {
	if r.disposed {
		return "", ErrDisposed
	}
	if data == nil {
		return "", ErrNilData
	}
	raw := r.rawKey(data)
	if !r.validKey(raw) {
		return "", &InvalidKeyError{Key: raw, Data: data}
	}
	key, ok := raw.(string)
	if !ok {
		return "", &InvalidKeyError{Key: raw, Data: data}
	}
	return key, nil
}

// DataHasValidKey reports whether data carries a valid registry key. Only
// the invalid-key failure converts to false; a nil bag still errors, so a
// missing argument cannot masquerade as an unregistered one.
func (r *Registry) DataHasValidKey(data model.Data) (bool, error) {
	if _, err := r.ValidKeyIn(data); err != nil {
		var invalid *InvalidKeyError
		if errors.As(err, &invalid) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// GetModel returns the registered instance for data's key, materializing and
// registering one through the builder when the key is unseen. Bags whose key
// is invalid are treated as unregistered; the fresh instance is then indexed
// by the key its own live data carries after construction. A failed
// construction leaves the registry untouched.
func (r *Registry) GetModel(data model.Data) (model.Entity, error) {
	return r.GetModelAs(data, nil)
}

// GetModelAs is GetModel with an explicit constructor overriding the
// builder.
func (r *Registry) GetModelAs(data model.Data, ctor model.Constructor) (model.Entity, error) {
	if r.disposed {
		return nil, ErrDisposed
	}

	key, err := r.ValidKeyIn(data)
	keyKnown := err == nil
	if err != nil {
		var invalid *InvalidKeyError
		if !errors.As(err, &invalid) {
			return nil, err
		}
	}

	if keyKnown {
		if m, ok := r.store.Get(key); ok {
			return m, nil
		}
	}

	var entity model.Entity
	if ctor != nil {
		entity, err = ctor(data)
	} else {
		entity, err = r.builder.NewInstanceFor(data)
	}
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, ErrNilModel
	}

	// The pre-extracted key is already validated; re-derive only when the
	// input bag had none, from the canonical source: the entity's own data.
	if !keyKnown {
		key, err = r.ValidKeyIn(entity.Data())
		if err != nil {
			return nil, err
		}
	}
	if err := r.Set(key, entity); err != nil {
		return nil, err
	}
	return entity, nil
}

// ModelAt materializes the nested bag under property of parent through the
// registry, so shapes referenced from several parents still deduplicate.
// The sub-model retains the parent's nested bag by reference.
func (r *Registry) ModelAt(parent model.Entity, property string) (model.Entity, error) {
	if r.disposed {
		return nil, ErrDisposed
	}
	if err := liveModel(parent); err != nil {
		return nil, err
	}
	var bag model.Data
	switch t := parent.Data()[property].(type) {
	case model.Data:
		bag = t
	case map[string]any:
		bag = model.Data(t)
	default:
		return nil, &model.PropertyError{Property: property, Reason: "not a nested bag"}
	}
	return r.GetModel(bag)
}

// Register adds m under the key derived from its live data. Use Set to
// register under an explicit key instead.
func (r *Registry) Register(m model.Entity) error {
	if r.disposed {
		return ErrDisposed
	}
	if err := liveModel(m); err != nil {
		return err
	}
	key, err := r.ValidKeyIn(m.Data())
	if err != nil {
		return err
	}
	return r.Set(key, m)
}

// Unregister removes the entry under the key derived from m's live data.
// Removing a key that is not present is not an error.
func (r *Registry) Unregister(m model.Entity) error {
	if r.disposed {
		return ErrDisposed
	}
	if err := liveModel(m); err != nil {
		return err
	}
	key, err := r.ValidKeyIn(m.Data())
	if err != nil {
		return err
	}
	r.store.Delete(key)
	return nil
}

// Set stores m under key after validation: the key must satisfy the
// validator, m must be a live model, and the slot must be free unless
// overrides are allowed.
func (r *Registry) Set(key string, m model.Entity) error {
	if r.disposed {
		return ErrDisposed
	}
	if err := r.validate(key, m); err != nil {
		return err
	}
	r.store.Set(key, m)
	log.Debug(log.CatRegistry, "model registered", "key", key, "identity", m.ModelIdentity())
	return nil
}

func (r *Registry) validate(key string, m model.Entity) error {
	if !r.validKey(key) {
		return &InvalidKeyError{Key: key}
	}
	if err := liveModel(m); err != nil {
		return err
	}
	if _, exists := r.store.Get(key); exists && !r.allowOverrides {
		return &DuplicateKeyError{Key: key}
	}
	return nil
}

func liveModel(m model.Entity) error {
	if m == nil {
		return ErrNilModel
	}
	if d, ok := m.(interface{ Disposed() bool }); ok && d.Disposed() {
		return ErrDisposedModel
	}
	return nil
}

// Get returns the instance registered under key.
func (r *Registry) Get(key string) (model.Entity, bool) {
	if r.disposed {
		return nil, false
	}
	return r.store.Get(key)
}

// Has reports whether key is registered.
func (r *Registry) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// Delete removes key, reporting whether an entry was present.
func (r *Registry) Delete(key string) bool {
	if r.disposed {
		return false
	}
	_, had := r.store.Get(key)
	r.store.Delete(key)
	return had
}

// Len returns the number of registered instances.
func (r *Registry) Len() int {
	if r.disposed {
		return 0
	}
	return r.store.Len()
}

// Range calls fn for each registered instance until fn returns false.
// Iteration order is unspecified.
func (r *Registry) Range(fn func(key string, m model.Entity) bool) {
	if r.disposed {
		return
	}
	r.store.Range(fn)
}

// Clear drops every registration, keeping the registry usable.
func (r *Registry) Clear() {
	if r.disposed {
		return
	}
	r.store.Clear()
}

// Disposed reports whether Dispose has run.
func (r *Registry) Disposed() bool { return r.disposed }

// Dispose clears the store and drops the builder and option references.
// Every later operation returns ErrDisposed or a zero value. Idempotent.
func (r *Registry) Dispose() {
	if r.disposed {
		return
	}
	log.Debug(log.CatRegistry, "registry disposed", "len", r.store.Len())
	r.disposed = true
	r.store.Clear()
	r.store = nil
	r.builder = nil
	r.keyFn = nil
	r.validKey = nil
}
