package model

import (
	"errors"
	"fmt"
)

// ErrDisposed is returned when a mutating operation runs on a disposed model.
var ErrDisposed = errors.New("model is disposed")

// ErrNoIdentity is returned when neither the descriptor nor the bag names an identity.
var ErrNoIdentity = errors.New("model has no identity")

// PropertyError is returned when a write targets a property that rejects it,
// such as the reserved identity and uuid properties.
type PropertyError struct {
	Property string
	Reason   string
}

func (e *PropertyError) Error() string {
	return fmt.Sprintf("property %q: %s", e.Property, e.Reason)
}
