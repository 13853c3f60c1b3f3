package bootstrap

import (
	"context"
	"fmt"

	"emailstats/internal/broker"
	"emailstats/internal/config"
	"emailstats/internal/logger"
)

// Base holds what every entry point needs before domain wiring begins.
type Base struct {
	Config   *config.Config
	Logger   logger.Logger
	Producer broker.Producer
}

func NewBase(cfg *config.Config, log logger.Logger) *Base {
	return &Base{
		Config: cfg,
		Logger: log,
	}
}

// InitBroker creates the event producer. Producer stays nil when no broker is configured.
func (b *Base) InitBroker() error {
	producer, err := broker.NewProducer(b.Config.Broker, b.Logger)
	if err != nil {
		return fmt.Errorf("failed to create producer: %w", err)
	}

	b.Producer = producer
	return nil
}

func (b *Base) ShutdownBroker() []error {
	if b.Producer == nil {
		return nil
	}
	if err := b.Producer.Close(); err != nil {
		return []error{fmt.Errorf("producer close error: %w", err)}
	}
	return nil
}

func (b *Base) Shutdown(ctx context.Context, additionalShutdown func(ctx context.Context) []error) error {
	b.Logger.Info("Shutting down application...")

	var errs []error

	if additionalShutdown != nil {
		errs = append(errs, additionalShutdown(ctx)...)
	}

	errs = append(errs, b.ShutdownBroker()...)

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}

	b.Logger.Info("Application exited successfully")
	return nil
}
