package notify

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/MrValraven/greendash-core/pkg/kafka"
)

// TopicAuthEmail is the topic the notification pipeline consumes categorized
// email requests from.
const TopicAuthEmail = "greendash.auth.email"

// Aggregate and source identifiers for emitted events.
const (
	aggregateTypeEmail = "email"
	sourceCore         = "greendash-core"
)

// EmailRequestedData is the payload for an auth.email.requested event.
type EmailRequestedData struct {
	Recipient string `json:"recipient"`
	Category  string `json:"category"`
	Token     string `json:"token,omitempty"`
	NewValue  string `json:"new_value,omitempty"`
}

// KafkaNotifier publishes email requests to the notification pipeline. The
// pipeline owns templating and SMTP delivery.
type KafkaNotifier struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewKafkaNotifier creates a notifier that publishes to the auth email topic.
func NewKafkaNotifier(kafka *pkgkafka.Producer, logger *slog.Logger) *KafkaNotifier {
	return &KafkaNotifier{kafka: kafka, logger: logger}
}

// Send publishes an auth.email.requested event carrying the recipient,
// category, and payload. Raw tokens travel in the event body only, never in
// logs.
func (n *KafkaNotifier) Send(ctx context.Context, recipient string, category Category, payload Payload) error {
	data := EmailRequestedData{
		Recipient: recipient,
		Category:  string(category),
		Token:     payload.Token,
		NewValue:  payload.NewValue,
	}

	event, err := pkgkafka.NewEvent("auth.email.requested", recipient, aggregateTypeEmail, sourceCore, data)
	if err != nil {
		return fmt.Errorf("create auth.email.requested event: %w", err)
	}

	if err := n.kafka.Publish(ctx, TopicAuthEmail, event); err != nil {
		return fmt.Errorf("publish auth.email.requested event: %w", err)
	}

	n.logger.DebugContext(ctx, "published auth.email.requested event",
		slog.String("category", string(category)),
	)

	return nil
}
