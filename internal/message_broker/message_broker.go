package message_broker

import "context"

type MessageBroker interface {
	Publish(ctx context.Context, message []byte) error
	Consume(ctx context.Context) (<-chan []byte, error)
	Close() error
}
