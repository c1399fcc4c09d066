package registry

import (
	"errors"
	"fmt"

	"github.com/zjrosen/nacre/model"
)

// ErrNilFactory is returned by New when no factory is provided.
var ErrNilFactory = errors.New("registry factory cannot be nil")

// ErrNilData is returned when an operation needs a bag and receives nil.
var ErrNilData = errors.New("data cannot be nil")

// ErrNilModel is returned when a write path receives no model.
var ErrNilModel = errors.New("model cannot be nil")

// ErrDisposedModel is returned when a write path receives a disposed model.
var ErrDisposedModel = errors.New("cannot register a disposed model")

// ErrDisposed is returned by every operation after Dispose.
var ErrDisposed = errors.New("registry is disposed")

// InvalidKeyError is returned when a candidate registry key fails the key
// validator. Key holds the offending value; Data holds the source bag when
// the key was extracted from one.
type InvalidKeyError struct {
	Key  any
	Data model.Data
}

func (e *InvalidKeyError) Error() string {
	return fmt.Sprintf("invalid registry key %v", e.Key)
}

// DuplicateKeyError is returned when Set would replace an existing entry
// while overrides are disallowed.
type DuplicateKeyError struct {
	Key string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate registry key %q", e.Key)
}
