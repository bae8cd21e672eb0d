package viewmodel

import "github.com/go-drift/mvvm/pkg/reactive"

// Notifier broadcasts property names to change listeners. Signals raised
// from inside a listener are delivered after the current one finishes, in
// the order they were raised.
//
// The zero value is ready to use.
type Notifier struct {
	changes reactive.Subject[string]
}

// Listen registers handler for every later signal.
func (n *Notifier) Listen(handler func(property string)) reactive.Disposable {
	return n.changes.Subscribe(handler)
}

// Notify signals that property changed.
func (n *Notifier) Notify(property string) {
	n.changes.Next(property)
}

// ListenerCount returns the number of registered listeners.
func (n *Notifier) ListenerCount() int {
	return n.changes.SubscriberCount()
}

// Close drops every listener. Later signals are ignored.
func (n *Notifier) Close() {
	n.changes.Complete()
}
