package model

import "slices"

// TopicChange is the generic topic every observable mutation dispatches on.
// Property mutations additionally dispatch on ChangeTopic(property) first.
const TopicChange = "change"

// ChangeTopic returns the property-scoped change topic.
func ChangeTopic(property string) string {
	return "change:" + property
}

// Event carries one change notification. Property mutations fill Property,
// Old and New, with the Unset sentinel standing in for absence on either
// side. Bulk mutations (AssignData, ResetData) dispatch a generic event with
// an empty Property.
type Event struct {
	Topic    string
	Model    *Model
	Property string
	Old      any
	New      any
}

// Listener receives events synchronously on the mutating goroutine.
type Listener func(Event)

type listenerEntry struct {
	id int
	fn Listener
}

// On registers fn for topic and returns a cancel func. Listeners run in
// registration order and a listener panic propagates to the mutator. Cancel
// is idempotent. On a disposed model, On returns a no-op cancel.
func (m *Model) On(topic string, fn Listener) func() {
	if m.disposed || fn == nil {
		return func() {}
	}
	if m.listeners == nil {
		m.listeners = make(map[string][]listenerEntry)
	}
	m.listenerSeq++
	id := m.listenerSeq
	m.listeners[topic] = append(m.listeners[topic], listenerEntry{id: id, fn: fn})
	return func() { m.off(topic, id) }
}

func (m *Model) off(topic string, id int) {
	entries := m.listeners[topic]
	for i, e := range entries {
		if e.id == id {
			m.listeners[topic] = slices.Delete(entries, i, i+1)
			return
		}
	}
}

// ListenerCount returns the number of listeners registered for topic.
func (m *Model) ListenerCount(topic string) int {
	return len(m.listeners[topic])
}

// Dispatch delivers ev to the listeners of ev.Topic. Listeners added or
// cancelled while dispatching take effect from the next dispatch.
func (m *Model) Dispatch(ev Event) {
	entries := m.listeners[ev.Topic]
	if len(entries) == 0 {
		return
	}
	for _, e := range slices.Clone(entries) {
		e.fn(ev)
	}
}

func (m *Model) emit(topic string, ev Event) {
	ev.Topic = topic
	ev.Model = m
	m.Dispatch(ev)
}
