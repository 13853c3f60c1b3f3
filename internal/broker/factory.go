package broker

import (
	"fmt"

	"emailstats/internal/config"
	"emailstats/internal/logger"
)

// NewProducer returns nil without error when no broker is configured.
func NewProducer(cfg config.BrokerConfig, log logger.Logger) (Producer, error) {
	switch cfg.Type {
	case "":
		return nil, nil
	case "kafka":
		return NewKafkaProducer(cfg.Kafka, log), nil
	default:
		return nil, fmt.Errorf("unknown broker type: %s", cfg.Type)
	}
}
