package event

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/MrValraven/greendash-core/internal/domain"
	pkgkafka "github.com/MrValraven/greendash-core/pkg/kafka"
)

// Kafka topic constants for user domain events.
const (
	TopicUserRegistered = "greendash.user.registered"
	TopicUserUpdated    = "greendash.user.updated"
)

// Aggregate type constant.
const AggregateTypeUser = "user"

// Source identifier for events originating from this service.
const SourceCore = "greendash-core"

// UserRegisteredData is the payload for a user.registered event.
type UserRegisteredData struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// UserUpdatedData is the payload for a user.updated event.
type UserUpdatedData struct {
	ID            int64  `json:"id"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	EmailVerified bool   `json:"email_verified"`
}

// Producer publishes user domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the account service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishUserRegistered publishes a user.registered event.
func (p *Producer) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	data := UserRegisteredData{
		ID:    user.ID,
		Email: user.Email,
		Role:  user.Role,
	}

	event, err := pkgkafka.NewEvent(TopicUserRegistered, strconv.FormatInt(user.ID, 10), AggregateTypeUser, SourceCore, data)
	if err != nil {
		return fmt.Errorf("create user.registered event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicUserRegistered, event); err != nil {
		return fmt.Errorf("publish user.registered event: %w", err)
	}

	p.logger.DebugContext(ctx, "published user.registered event",
		slog.Int64("user_id", user.ID),
	)

	return nil
}

// PublishUserUpdated publishes a user.updated event.
func (p *Producer) PublishUserUpdated(ctx context.Context, user *domain.User) error {
	data := UserUpdatedData{
		ID:            user.ID,
		Email:         user.Email,
		Role:          user.Role,
		EmailVerified: user.EmailVerified,
	}

	event, err := pkgkafka.NewEvent(TopicUserUpdated, strconv.FormatInt(user.ID, 10), AggregateTypeUser, SourceCore, data)
	if err != nil {
		return fmt.Errorf("create user.updated event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicUserUpdated, event); err != nil {
		return fmt.Errorf("publish user.updated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published user.updated event",
		slog.Int64("user_id", user.ID),
	)

	return nil
}
