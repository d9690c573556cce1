package websocket

// EventPublisher is how services announce changes without knowing about
// connections
type EventPublisher interface {
	// Publish sends event to each listed user. A user listed twice receives
	// the event once.
	Publish(event Event, userIDs ...int32)
}

var _ EventPublisher = (*Hub)(nil)
