package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aldermoor/storefront/internal/domain"
	pkgkafka "github.com/aldermoor/storefront/pkg/kafka"
)

// Kafka topic constants for user domain events.
const (
	TopicUserRegistered      = "storefront.user.registered"
	TopicUserUpdated         = "storefront.user.updated"
	TopicUserSessionsRevoked = "storefront.user.sessions_revoked"
)

// Source identifier for events originating from this service.
const Source = "storefront"

// UserRegisteredData is the payload for a user.registered event.
type UserRegisteredData struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

// UserUpdatedData is the payload for a user.updated event.
type UserUpdatedData struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
	IsActive  bool   `json:"is_active"`
}

// UserSessionsRevokedData is the payload for a user.sessions_revoked event.
type UserSessionsRevokedData struct {
	UserID   string `json:"user_id"`
	Sessions int64  `json:"sessions"`
}

// Producer publishes user domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishUserRegistered publishes a user.registered event.
func (p *Producer) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	data := UserRegisteredData{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      user.Role,
	}

	ev, err := pkgkafka.NewEvent(TopicUserRegistered, Source, data)
	if err != nil {
		return fmt.Errorf("create user.registered event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicUserRegistered, user.ID, ev); err != nil {
		return fmt.Errorf("publish user.registered event: %w", err)
	}

	return nil
}

// PublishUserUpdated publishes a user.updated event.
func (p *Producer) PublishUserUpdated(ctx context.Context, user *domain.User) error {
	data := UserUpdatedData{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      user.Role,
		IsActive:  user.IsActive,
	}

	ev, err := pkgkafka.NewEvent(TopicUserUpdated, Source, data)
	if err != nil {
		return fmt.Errorf("create user.updated event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicUserUpdated, user.ID, ev); err != nil {
		return fmt.Errorf("publish user.updated event: %w", err)
	}

	return nil
}

// PublishUserSessionsRevoked publishes a user.sessions_revoked event after a
// logout-all or forced credential change.
func (p *Producer) PublishUserSessionsRevoked(ctx context.Context, userID string, sessions int64) error {
	data := UserSessionsRevokedData{
		UserID:   userID,
		Sessions: sessions,
	}

	ev, err := pkgkafka.NewEvent(TopicUserSessionsRevoked, Source, data)
	if err != nil {
		return fmt.Errorf("create user.sessions_revoked event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicUserSessionsRevoked, userID, ev); err != nil {
		return fmt.Errorf("publish user.sessions_revoked event: %w", err)
	}

	p.logger.DebugContext(ctx, "published user.sessions_revoked event",
		slog.String("user_id", userID),
		slog.Int64("sessions", sessions),
	)

	return nil
}
