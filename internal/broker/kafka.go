package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"emailstats/internal/config"
	"emailstats/internal/constants"
	"emailstats/internal/logger"
	"emailstats/pkg/logging"
	"emailstats/pkg/tracing"
)

type KafkaProducer struct {
	writer *kafka.Writer
	logger logger.Logger
}

func NewKafkaProducer(cfg config.KafkaConfig, log logger.Logger) *KafkaProducer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		BatchTimeout:           constants.KafkaBatchTimeout,
		WriteTimeout:           constants.KafkaWriteTimeout,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		Async:                  false,
	}
	return &KafkaProducer{writer: w, logger: log}
}

func (p *KafkaProducer) Publish(ctx context.Context, topic string, msg Envelope) error {
	if msg.TraceID == "" {
		msg.TraceID = logging.GetTraceID(ctx)
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	headers := []kafka.Header{{Key: "event_type", Value: []byte(msg.Type)}}
	headers = tracing.InjectTraceContext(ctx, headers)

	err = p.writer.WriteMessages(ctx,
		kafka.Message{
			Topic:   topic,
			Key:     []byte(msg.ID),
			Value:   body,
			Headers: headers,
			Time:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to write kafka message: %w", err)
	}

	p.logger.DebugwCtx(ctx, "Event published", "topic", topic, "event_id", msg.ID, "event_type", msg.Type)
	return nil
}

func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}
