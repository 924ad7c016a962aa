package sse

import "encoding/json"

// Event types.
const (
	// EventConnected is the first event every client receives.
	EventConnected = "connected"
	// EventStatus carries a run status snapshot.
	EventStatus = "status"
)

// Event is one message on the stream.
type Event struct {
	Type string
	Data []byte
}

// NewEvent encodes v as the JSON payload of an event.
func NewEvent(eventType string, v any) (Event, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Event{}, err
	}
	return Event{Type: eventType, Data: data}, nil
}
