// Package msgs defines the event messages the transport publishes to the
// firmware event bus.
package msgs

// ConnStateChanged is emitted once per connection state transition,
// carrying the new value.
type ConnStateChanged struct {
	Connected bool `json:"connected"`
}
