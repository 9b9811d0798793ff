package cmd

import (
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/pathway/pkg/channels/gochannel"
	"github.com/dukex/pathway/pkg/channels/kafka"
	"github.com/dukex/pathway/pkg/eventbus"
)

// EventBusConfig selects the transport behind the event bus.
type EventBusConfig struct {
	// Provider is "gochannel" (default) to keep events in process or "kafka".
	Provider    string
	Brokers     string
	ServiceName string
	OTELEnabled bool
}

// NewEventBus creates the event bus described by config.
func NewEventBus(config EventBusConfig, logger *slog.Logger) (eventbus.EventBus, error) {
	watermillLogger := watermill.NewSlogLogger(logger)

	switch config.Provider {
	case "", "gochannel":
		pubSub := gochannel.NewChannel(watermillLogger)

		return eventbus.NewWatermillEventBus(pubSub, pubSub), nil
	case "kafka":
		pub, sub, err := kafka.CreateChannel(watermillLogger, kafka.Config{
			Brokers:     kafka.ParseBrokers(config.Brokers),
			ServiceName: config.ServiceName,
			OTELEnabled: config.OTELEnabled,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create Kafka pub/sub: %w", err)
		}

		return eventbus.NewWatermillEventBus(pub, sub), nil
	default:
		return nil, fmt.Errorf("unsupported event bus provider: %s", config.Provider)
	}
}
