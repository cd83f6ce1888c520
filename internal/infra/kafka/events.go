package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/InkyWorld/goit-web-hw-14/internal/core/domain"
	"github.com/InkyWorld/goit-web-hw-14/internal/core/port"
	"github.com/InkyWorld/goit-web-hw-14/internal/infra/config"
)

const schemaVersion = "1.0"

const (
	EventUserRegistered             = "user.registered"
	EventEmailVerificationRequested = "user.email_verification_requested"
	EventRefreshTokenReused         = "auth.refresh_token_reused"
)

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	UserID    string           `json:"user_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType string, userID int64, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	if span := trace.SpanFromContext(ctx); span != nil {
		if sc := span.SpanContext(); sc.IsValid() {
			metadata["trace_id"] = sc.TraceID().String()
		}
	}

	key := strconv.FormatInt(userID, 10)
	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		UserID:    key,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishUserRegistered publishes user.registered events.
func (p *EventPublisher) PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error {
	payload := struct {
		UserID       int64     `json:"user_id"`
		Username     string    `json:"username"`
		Email        string    `json:"email"`
		Role         string    `json:"role"`
		RegisteredAt time.Time `json:"registered_at"`
	}{
		UserID:       event.UserID,
		Username:     event.Username,
		Email:        event.Email,
		Role:         string(event.Role),
		RegisteredAt: event.RegisteredAt.UTC(),
	}

	return p.publish(ctx, event.EventID, EventUserRegistered, event.UserID, event.RegisteredAt, payload)
}

// PublishEmailVerificationRequested publishes user.email_verification_requested
// events. The mailer builds the confirmation link from host and token.
func (p *EventPublisher) PublishEmailVerificationRequested(ctx context.Context, event domain.EmailVerificationRequestedEvent) error {
	payload := struct {
		UserID      int64     `json:"user_id"`
		Username    string    `json:"username"`
		Email       string    `json:"email"`
		Token       string    `json:"token"`
		Host        string    `json:"host"`
		RequestedAt time.Time `json:"requested_at"`
		ExpiresAt   time.Time `json:"expires_at"`
	}{
		UserID:      event.UserID,
		Username:    event.Username,
		Email:       event.Email,
		Token:       event.Token,
		Host:        event.Host,
		RequestedAt: event.RequestedAt.UTC(),
		ExpiresAt:   event.ExpiresAt.UTC(),
	}

	return p.publish(ctx, event.EventID, EventEmailVerificationRequested, event.UserID, event.RequestedAt, payload)
}

// PublishRefreshTokenReused publishes auth.refresh_token_reused events.
func (p *EventPublisher) PublishRefreshTokenReused(ctx context.Context, event domain.RefreshTokenReusedEvent) error {
	payload := struct {
		UserID     int64     `json:"user_id"`
		Email      string    `json:"email"`
		DetectedAt time.Time `json:"detected_at"`
		IPAddress  *string   `json:"ip_address,omitempty"`
	}{
		UserID:     event.UserID,
		Email:      event.Email,
		DetectedAt: event.DetectedAt.UTC(),
		IPAddress:  event.IPAddress,
	}

	return p.publish(ctx, event.EventID, EventRefreshTokenReused, event.UserID, event.DetectedAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
