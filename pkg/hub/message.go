// Package hub provides a websocket broadcast hub
// using the channel-based fan-out pattern.
package hub

// Message is one pre-encoded JSON payload broadcast to every client.
type Message struct {
	Data []byte
}

// NewJSONMessage creates a message from pre-encoded JSON bytes
func NewJSONMessage(data []byte) Message {
	return Message{Data: data}
}
