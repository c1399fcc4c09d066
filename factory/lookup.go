package factory

import "github.com/zjrosen/nacre/model"

// Lookup resolves an identity tag to its constructor. Implementations only
// need to answer point queries; the factory never enumerates them.
type Lookup interface {
	Lookup(identity string) (model.Constructor, bool)
}

// Map is a static identity table.
type Map map[string]model.Constructor

// Lookup returns the constructor registered under identity.
func (m Map) Lookup(identity string) (model.Constructor, bool) {
	ctor, ok := m[identity]
	return ctor, ok
}

// LookupFunc adapts a plain function to the Lookup interface.
type LookupFunc func(identity string) (model.Constructor, bool)

// Lookup calls f.
func (f LookupFunc) Lookup(identity string) (model.Constructor, bool) {
	return f(identity)
}

var (
	_ Lookup = Map(nil)
	_ Lookup = LookupFunc(nil)
)
