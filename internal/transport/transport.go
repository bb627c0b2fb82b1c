package transport

// Transport publishes pipeline events to an external consumer.
// Implementations must be safe for concurrent use and must not block the
// caller on slow consumers.
type Transport interface {
	Send(data any) error
	Close() error
}
