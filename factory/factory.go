// Package factory dispatches entity construction on the identity tag bags
// carry. A factory is stateless after construction, so concurrent reads are
// safe without coordination.
package factory

import (
	"fmt"

	"github.com/zjrosen/nacre/internal/log"
	"github.com/zjrosen/nacre/model"
)

// IdentityFunc extracts an identity tag from a bag. The bool reports whether
// a usable tag was found.
type IdentityFunc func(model.Data) (string, bool)

// Option configures a Factory.
type Option func(*Factory)

// WithIdentityAttribute changes the bag key the identity is read from.
func WithIdentityAttribute(attr string) Option {
	return func(f *Factory) { f.identityAttr = attr }
}

// WithIdentityFunc replaces attribute extraction entirely. The attribute is
// ignored while fn is set.
func WithIdentityFunc(fn IdentityFunc) Option {
	return func(f *Factory) { f.identityFn = fn }
}

// Factory constructs entities from bags by dispatching through a Lookup.
type Factory struct {
	lookup       Lookup
	identityAttr string
	identityFn   IdentityFunc
}

// New creates a factory over lookup.
func New(lookup Lookup, opts ...Option) (*Factory, error) {
	if lookup == nil {
		return nil, ErrNilLookup
	}
	f := &Factory{lookup: lookup, identityAttr: model.PropIdentity}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// IdentityOf extracts the identity tag from data. A bag without a usable tag
// yields "" with no error; only a nil bag is an error.
func (f *Factory) IdentityOf(data model.Data) (string, error) {
	if data == nil {
		return "", ErrNilData
	}
	if f.identityFn != nil {
		identity, ok := f.identityFn(data)
		if !ok {
			return "", nil
		}
		return identity, nil
	}
	s, _ := data[f.identityAttr].(string)
	return s, nil
}

// RequireIdentityOf extracts the identity tag, failing with ErrNoIdentity
// when the bag carries none.
func (f *Factory) RequireIdentityOf(data model.Data) (string, error) {
	identity, err := f.IdentityOf(data)
	if err != nil {
		return "", err
	}
	if identity == "" {
		return "", ErrNoIdentity
	}
	return identity, nil
}

// HasIdentity reports whether data carries a usable identity tag. Distinct
// from IsKnown: a bag can name an identity no constructor is registered for.
func (f *Factory) HasIdentity(data model.Data) bool {
	identity, err := f.IdentityOf(data)
	return err == nil && identity != ""
}

// IsKnown reports whether a constructor is registered for identity.
func (f *Factory) IsKnown(identity string) bool {
	_, ok := f.lookup.Lookup(identity)
	return ok
}

// Constructor returns the constructor registered for identity.
func (f *Factory) Constructor(identity string) (model.Constructor, bool) {
	return f.lookup.Lookup(identity)
}

// RequireConstructor returns the constructor for identity, failing with an
// UnknownIdentityError when none is registered.
func (f *Factory) RequireConstructor(identity string) (model.Constructor, error) {
	ctor, ok := f.lookup.Lookup(identity)
	if !ok {
		return nil, &UnknownIdentityError{Identity: identity}
	}
	return ctor, nil
}

// NewInstance constructs an entity for an explicit identity. Constructor
// errors pass through unwrapped.
func (f *Factory) NewInstance(identity string, data model.Data) (model.Entity, error) {
	ctor, err := f.RequireConstructor(identity)
	if err != nil {
		return nil, err
	}
	entity, err := ctor(data)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, fmt.Errorf("constructor for %s returned no entity", identity)
	}
	log.Debug(log.CatFactory, "instance constructed", "identity", identity, "uuid", entity.UUID())
	return entity, nil
}

// NewInstanceFor constructs an entity for the identity data itself carries.
// This is the rehydration path for parsed documents.
func (f *Factory) NewInstanceFor(data model.Data) (model.Entity, error) {
	identity, err := f.RequireIdentityOf(data)
	if err != nil {
		return nil, err
	}
	return f.NewInstance(identity, data)
}
