package stats

import (
	"context"
	"time"

	"github.com/google/uuid"

	"emailstats/internal/broker"
	"emailstats/internal/constants"
	"emailstats/pkg/metrics"
)

// Publisher announces persisted records on the broker.
type Publisher struct {
	producer broker.Producer
	topic    string
}

// NewPublisher accepts a nil producer, in which case Publish does nothing.
func NewPublisher(producer broker.Producer, topic string) *Publisher {
	return &Publisher{producer: producer, topic: topic}
}

func (p *Publisher) Publish(ctx context.Context, rec Record) error {
	if p == nil || p.producer == nil || p.topic == "" {
		return nil
	}

	env := broker.Envelope{
		ID:        uuid.NewString(),
		Type:      constants.StatsRecordedEventType,
		Source:    constants.ServiceName,
		Timestamp: time.Now().UTC(),
		Payload:   rec,
	}

	if err := p.producer.Publish(ctx, p.topic, env); err != nil {
		metrics.EventsPublishedTotal.WithLabelValues("error").Inc()
		return err
	}

	metrics.EventsPublishedTotal.WithLabelValues("success").Inc()
	return nil
}
