// Package model implements polymorphic models over JSON-serializable
// property bags with synchronous change events.
//
// # Bags
//
// Every model owns a Data bag (map[string]any) holding its entire state.
// Two properties are reserved and written by construction: "identity", the
// constructor tag naming the concrete type, and "uuid", the instance
// identity. Both are immutable afterwards; writes targeting them return a
// *PropertyError. The bag is held by reference: MarshalJSON serializes it,
// and parsing that output back through Generic round-trips the model.
//
// # Mutation
//
// Set, Toggle, Unset, AssignData and ResetData are the observed mutation
// paths. Each records the pre-call value of every property it touches, so
// Previous and HasChanged can answer "what did this look like before".
// Change detection uses identity semantics (the sameValue rules): comparable
// values compare with ==, reference values by referent, never deeply.
// The Unset sentinel stands in for absence, both as an argument to Set and
// in previous-value records and event payloads.
//
// # Events
//
// Mutations dispatch synchronously on the mutating goroutine: first on
// "change:<property>", then on "change", in listener registration order.
// Equal-value writes dispatch nothing, and the Silent flag suppresses
// dispatch entirely. Listener panics propagate to the mutator.
//
// # Copying
//
// Copy clones a model through RewriteUUIDs: every uuid-shaped string in the
// bag (keys and values, any case) is replaced with a fresh uuid, with shared
// occurrences staying shared so internal cross-references survive. A
// Descriptor carrying Construct preserves the concrete type through Copy.
//
// Models are not safe for concurrent mutation; callers own the locking when
// they share a model across goroutines.
package model
