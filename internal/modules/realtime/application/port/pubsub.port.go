package port

import (
	"context"

	"guardpost/internal/modules/realtime/domain"
)

// Broadcaster delivers a message to every websocket client subscribed to its
// topic.
type Broadcaster interface {
	Broadcast(ctx context.Context, msg *domain.Message)
}

// TopicHandler reacts to broker events consumed from one Kafka topic.
type TopicHandler interface {
	Topic() string
	Handle(ctx context.Context, msg *domain.Message) error
}
