// Package mq provides publish-only access to a message broker. The
// backend publishes site events (currently feedback notifications);
// consumers live outside this process.
package mq

import (
	"context"
	"fmt"

	"github.com/dekorhaus/apiserver/config"
)

// Publisher sends a message to the named channel and returns the
// broker-assigned message id.
type Publisher interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Close() error
}

// Open constructs the Publisher selected in config. A nil Publisher
// with a nil error means publishing is disabled.
func Open(ctx context.Context, cfg config.EventsConfig) (Publisher, error) {
	switch cfg.Backend {
	case "":
		return nil, nil
	case "rabbitmq":
		return NewRabbitMQPublisher(cfg.RabbitMQ)
	case "pubsub":
		return NewPubSubPublisher(ctx, cfg.PubSub)
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.Backend)
	}
}
