package broker

import (
	"context"
	"time"
)

// Envelope is the wire shape of every event this service emits.
type Envelope struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
	Payload   interface{} `json:"payload"`
}

type Producer interface {
	Publish(ctx context.Context, topic string, msg Envelope) error
	Close() error
}
