package model

import (
	"encoding/json"
	"fmt"
	"maps"

	"github.com/google/uuid"

	"github.com/zjrosen/nacre/internal/log"
)

// Reserved property names. Both are written by construction and immutable
// through every mutation path afterwards.
const (
	// PropIdentity names the constructor tag property.
	PropIdentity = "identity"
	// PropUUID names the instance identity property.
	PropUUID = "uuid"
)

// Flag adjusts mutation behavior. Flags combine with |.
type Flag uint8

const (
	// Silent suppresses change events for the mutation.
	Silent Flag = 1 << iota
	// UnsetIfFalsy converts falsy writes into property removal.
	UnsetIfFalsy
)

func hasFlag(flags []Flag, f Flag) bool {
	for _, g := range flags {
		if g&f != 0 {
			return true
		}
	}
	return false
}

// Constructor builds an entity from a property bag.
type Constructor func(Data) (Entity, error)

// Entity is the behavior every model exposes regardless of concrete type.
// Concrete types embed *Model and satisfy it by promotion.
type Entity interface {
	ModelIdentity() string
	UUID() string
	Data() Data
	Copy() (Entity, error)
}

var _ Entity = (*Model)(nil)

// Descriptor declares a model type.
type Descriptor struct {
	// Identity tags every instance, stored under PropIdentity. When empty,
	// New takes the identity from the bag instead.
	Identity string
	// Defaults returns initial values merged for keys the bag does not carry.
	// Reserved keys are ignored.
	Defaults func() Data
	// Validate vets a prospective bag before construction and before bulk
	// mutations commit. A non-nil error aborts the operation untouched.
	Validate func(Data) error
	// Construct rebuilds the concrete type, preserving it through Copy.
	// Optional; when nil, Copy produces a plain *Model.
	Construct Constructor
}

// Model is the concrete base entity: a descriptor, the live bag, the
// previous-value record and the listener table.
type Model struct {
	desc        Descriptor
	data        Data
	previous    Data
	listeners   map[string][]listenerEntry
	listenerSeq int
	disposed    bool
}

// New builds a model over data. The bag is retained by reference (pass nil
// for a fresh one), descriptor defaults fill absent keys, the identity is
// forced from the descriptor and a v4 uuid is generated when the bag carries
// none. When the descriptor validates, the prospective bag is vetted first
// and a failed construction leaves the caller's bag untouched.
func New(desc Descriptor, data Data) (*Model, error) {
	if data == nil {
		data = Data{}
	}

	identity := desc.Identity
	if identity == "" {
		identity, _ = data[PropIdentity].(string)
	}
	if identity == "" {
		return nil, ErrNoIdentity
	}

	pending := Data{PropIdentity: identity}
	if desc.Defaults != nil {
		for k, v := range desc.Defaults() {
			if k == PropIdentity || k == PropUUID {
				continue
			}
			if _, ok := data[k]; !ok {
				pending[k] = cloneValue(v)
			}
		}
	}
	if _, ok := data[PropUUID]; !ok {
		pending[PropUUID] = uuid.New().String()
	}

	if desc.Validate != nil {
		prospective := data.Clone()
		maps.Copy(prospective, pending)
		if err := desc.Validate(prospective); err != nil {
			return nil, fmt.Errorf("construct %s: %w", identity, err)
		}
	}
	maps.Copy(data, pending)

	m := &Model{desc: desc, data: data, previous: Data{}}
	log.Debug(log.CatModel, "model constructed", "identity", identity, "uuid", m.UUID())
	return m, nil
}

// Generic constructs a model from a bag that names its own identity. No
// defaults are merged and no validation runs; tools use this to materialize
// graphs whose concrete types they do not know. Generic is a Constructor.
func Generic(data Data) (Entity, error) {
	m, err := New(Descriptor{}, data)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ModelIdentity returns the constructor tag.
func (m *Model) ModelIdentity() string {
	s, _ := m.data[PropIdentity].(string)
	return s
}

// UUID returns the instance uuid text.
func (m *Model) UUID() string {
	s, _ := m.data[PropUUID].(string)
	return s
}

// Data returns the live bag. Mutating it directly bypasses events and
// previous-value records.
func (m *Model) Data() Data { return m.data }

// Descriptor returns the descriptor the model was built with.
func (m *Model) Descriptor() Descriptor { return m.desc }

// Disposed reports whether Dispose has run.
func (m *Model) Disposed() bool { return m.disposed }

// Get returns the property value, or nil when absent.
func (m *Model) Get(property string) any { return m.data[property] }

// GetOr returns the property value, or fallback when absent.
func (m *Model) GetOr(property string, fallback any) any {
	if v, ok := m.data[property]; ok {
		return v
	}
	return fallback
}

// GetString returns the property as a string, or "" when absent or not a string.
func (m *Model) GetString(property string) string {
	s, _ := m.data[property].(string)
	return s
}

// GetBool returns the property as a bool, or false when absent or not a bool.
func (m *Model) GetBool(property string) bool {
	b, _ := m.data[property].(bool)
	return b
}

// GetFloat returns the property as a float64. JSON numbers decode to float64
// already; integer values stored by Go callers are converted.
func (m *Model) GetFloat(property string) float64 {
	switch t := m.data[property].(type) {
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int64:
		return float64(t)
	}
	return 0
}

// GetData returns a nested bag property, or nil when absent or not a bag.
func (m *Model) GetData(property string) Data {
	switch t := m.data[property].(type) {
	case Data:
		return t
	case map[string]any:
		return Data(t)
	}
	return nil
}

// Has reports whether the property is present.
func (m *Model) Has(property string) bool {
	_, ok := m.data[property]
	return ok
}

// Previous returns the value a property held before its latest mutation and
// whether the property has been touched since construction (or the last
// ResetData). A property that was absent reports the Unset sentinel.
func (m *Model) Previous(property string) (any, bool) {
	v, ok := m.previous[property]
	return v, ok
}

// HasChanged reports whether any of the named properties differ from their
// recorded previous value. With no arguments it scans every touched property.
func (m *Model) HasChanged(properties ...string) bool {
	if len(properties) == 0 {
		for p := range m.previous {
			if m.changed(p) {
				return true
			}
		}
		return false
	}
	for _, p := range properties {
		if m.changed(p) {
			return true
		}
	}
	return false
}

func (m *Model) changed(property string) bool {
	prev, touched := m.previous[property]
	if !touched {
		return false
	}
	cur, ok := m.data[property]
	if !ok {
		cur = Unset
	}
	return !sameValue(prev, cur)
}

// Set writes one property. The pre-call value is recorded as the previous
// value on every call, including writes that change nothing. Passing Unset
// (or any falsy value under UnsetIfFalsy) removes the property. An observable
// change dispatches "change:<property>" then "change"; Silent suppresses both.
func (m *Model) Set(property string, value any, flags ...Flag) error {
	if m.disposed {
		return ErrDisposed
	}
	if property == PropIdentity || property == PropUUID {
		return &PropertyError{Property: property, Reason: "reserved property is immutable"}
	}

	old, had := m.data[property]
	if !had {
		old = Unset
	}

	next := value
	if isUnset(value) || (hasFlag(flags, UnsetIfFalsy) && isFalsy(value)) {
		next = Unset
	}

	m.previous[property] = old

	if isUnset(next) {
		delete(m.data, property)
	} else {
		m.data[property] = next
	}

	if sameValue(old, next) || hasFlag(flags, Silent) {
		return nil
	}

	ev := Event{Property: property, Old: old, New: next}
	m.emit(ChangeTopic(property), ev)
	m.emit(TopicChange, ev)
	return nil
}

// Toggle flips the property's truthiness: falsy or absent becomes true,
// truthy becomes false.
func (m *Model) Toggle(property string, flags ...Flag) error {
	if m.disposed {
		return ErrDisposed
	}
	return m.Set(property, isFalsy(m.data[property]), flags...)
}

// Unset removes the property. Equivalent to Set(property, Unset, flags...).
func (m *Model) Unset(property string, flags ...Flag) error {
	return m.Set(property, Unset, flags...)
}

// AssignData merges patch into the bag as one bulk mutation. Reserved keys
// are rejected before anything is written; when the descriptor validates, the
// prospective merged bag is vetted first, so a failed assign leaves the model
// untouched. At most one generic "change" event fires, and only when some
// value actually changed.
func (m *Model) AssignData(patch Data, flags ...Flag) error {
	if m.disposed {
		return ErrDisposed
	}
	if len(patch) == 0 {
		return nil
	}
	for _, reserved := range []string{PropIdentity, PropUUID} {
		if _, ok := patch[reserved]; ok {
			return &PropertyError{Property: reserved, Reason: "reserved property is immutable"}
		}
	}

	if m.desc.Validate != nil {
		prospective := m.data.Clone()
		applyPatch(prospective, patch, flags)
		if err := m.desc.Validate(prospective); err != nil {
			return fmt.Errorf("assign %s: %w", m.ModelIdentity(), err)
		}
	}

	changed := false
	for k, v := range patch {
		old, had := m.data[k]
		if !had {
			old = Unset
		}
		next := v
		if isUnset(v) || (hasFlag(flags, UnsetIfFalsy) && isFalsy(v)) {
			next = Unset
		}
		m.previous[k] = old
		if isUnset(next) {
			delete(m.data, k)
		} else {
			m.data[k] = next
		}
		if !sameValue(old, next) {
			changed = true
		}
	}

	if changed && !hasFlag(flags, Silent) {
		m.emit(TopicChange, Event{})
	}
	return nil
}

// applyPatch applies assign semantics to a scratch bag for validation.
func applyPatch(bag Data, patch Data, flags []Flag) {
	for k, v := range patch {
		if isUnset(v) || (hasFlag(flags, UnsetIfFalsy) && isFalsy(v)) {
			delete(bag, k)
			continue
		}
		bag[k] = v
	}
}

// ResetData replaces the bag content in place while preserving identity and
// uuid, so live references to the bag stay valid. Reserved keys in defaults
// are ignored. Descriptor defaults fill keys the argument does not provide,
// the previous-value record is cleared (the reset is the new baseline) and
// one generic "change" event fires unless Silent. When the descriptor
// validates, the prospective bag is vetted before the reset touches anything.
func (m *Model) ResetData(defaults Data, flags ...Flag) error {
	if m.disposed {
		return ErrDisposed
	}

	next := Data{
		PropIdentity: m.data[PropIdentity],
		PropUUID:     m.data[PropUUID],
	}
	for k, v := range defaults {
		if k == PropIdentity || k == PropUUID {
			continue
		}
		if isUnset(v) || (hasFlag(flags, UnsetIfFalsy) && isFalsy(v)) {
			continue
		}
		next[k] = v
	}
	if m.desc.Defaults != nil {
		for k, v := range m.desc.Defaults() {
			if k == PropIdentity || k == PropUUID {
				continue
			}
			if _, ok := next[k]; !ok {
				next[k] = cloneValue(v)
			}
		}
	}

	if m.desc.Validate != nil {
		if err := m.desc.Validate(next); err != nil {
			return fmt.Errorf("reset %s: %w", m.ModelIdentity(), err)
		}
	}

	clear(m.data)
	maps.Copy(m.data, next)
	clear(m.previous)

	log.Debug(log.CatModel, "model reset", "identity", m.ModelIdentity(), "uuid", m.UUID())
	if !hasFlag(flags, Silent) {
		m.emit(TopicChange, Event{})
	}
	return nil
}

// Copy clones the model with every uuid-shaped string rewritten to a fresh
// uuid, shared occurrences staying shared. The copy is rebuilt through the
// descriptor's Construct when present, preserving the concrete type.
func (m *Model) Copy() (Entity, error) {
	if m.disposed {
		return nil, ErrDisposed
	}
	rewritten, _ := RewriteUUIDs(m.data)
	bag := rewritten.(Data)
	if m.desc.Construct != nil {
		return m.desc.Construct(bag)
	}
	mm, err := New(m.desc, bag)
	if err != nil {
		return nil, err
	}
	return mm, nil
}

// MarshalJSON serializes the live bag. Parsing the output and rebuilding
// through Generic round-trips the model.
func (m *Model) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.data)
}

// Dispose drops the bags and the listener table. Mutators return ErrDisposed
// afterwards and accessors observe an empty bag. Idempotent.
func (m *Model) Dispose() {
	if m.disposed {
		return
	}
	log.Debug(log.CatModel, "model disposed", "identity", m.ModelIdentity(), "uuid", m.UUID())
	m.disposed = true
	m.data = nil
	m.previous = nil
	m.listeners = nil
}
