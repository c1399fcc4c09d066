package factory

import (
	"errors"
	"fmt"
)

// ErrNilLookup is returned by New when no lookup is provided.
var ErrNilLookup = errors.New("factory lookup cannot be nil")

// ErrNilData is returned when an operation needs a bag and receives nil.
var ErrNilData = errors.New("data cannot be nil")

// ErrNoIdentity is returned when a bag carries no usable identity tag.
var ErrNoIdentity = errors.New("data has no identity")

// UnknownIdentityError is returned when no constructor is registered for an
// identity.
type UnknownIdentityError struct {
	Identity string
}

func (e *UnknownIdentityError) Error() string {
	return fmt.Sprintf("unknown identity %q", e.Identity)
}
