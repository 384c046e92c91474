package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/mhtech-dashboard/pkg/errors"
)

// Event types.
const (
	EventViewRendered    = "view.rendered"
	EventSnapshotCreated = "snapshot.created"
)

// SchemaVersion is stamped on every envelope.
const SchemaVersion = "v1"

// EventEnvelope standardizes event messages.
type EventEnvelope struct {
	EventID       string            `json:"event_id"`
	EventType     string            `json:"event_type"`
	Source        string            `json:"source"`
	Timestamp     time.Time         `json:"timestamp"`
	SchemaVersion string            `json:"schema_version"`
	Payload       json.RawMessage   `json:"payload"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// ViewRenderedPayload describes one chart render.
type ViewRenderedPayload struct {
	View       string    `json:"view"`
	Theme      string    `json:"theme"`
	Format     string    `json:"format"`
	Bytes      int       `json:"bytes"`
	Cached     bool      `json:"cached"`
	DurationMs int64     `json:"duration_ms"`
	RenderedAt time.Time `json:"rendered_at"`
}

// SnapshotCreatedPayload describes a completed snapshot upload.
type SnapshotCreatedPayload struct {
	SnapshotID string    `json:"snapshot_id"`
	Objects    int       `json:"objects"`
	Bytes      int64     `json:"bytes"`
	CreatedAt  time.Time `json:"created_at"`
}

func NewEventEnvelope(eventType, source string, payload interface{}) (*EventEnvelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal payload")
	}
	return &EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		SchemaVersion: SchemaVersion,
		Payload:       data,
	}, nil
}

func (e *EventEnvelope) DecodePayload(target interface{}) error {
	if len(e.Payload) == 0 || string(e.Payload) == "null" {
		return nil
	}
	if err := json.Unmarshal(e.Payload, target); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode payload")
	}
	return nil
}

// ToMessage serializes the envelope keyed by its event type.
func (e *EventEnvelope) ToMessage(topic string) (*ProducerMessage, error) {
	val, err := json.Marshal(e)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal envelope")
	}
	return &ProducerMessage{
		Topic: topic,
		Key:   []byte(e.EventType),
		Value: val,
		Headers: map[string]string{
			"event_type":     e.EventType,
			"source_service": e.Source,
			"schema_version": e.SchemaVersion,
		},
		Timestamp: e.Timestamp,
	}, nil
}

func MessageToEventEnvelope(msg *Message) (*EventEnvelope, error) {
	if len(msg.Value) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "empty message value")
	}
	var env EventEnvelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to unmarshal envelope")
	}
	return &env, nil
}

// EventPublisher emits dashboard events.
type EventPublisher interface {
	PublishEvent(ctx context.Context, eventType string, payload interface{}) error
}

// EnvelopePublisher wraps payloads in envelopes and writes them to one topic.
type EnvelopePublisher struct {
	producer *Producer
	topic    string
	source   string
}

func NewEnvelopePublisher(p *Producer, topic, source string) *EnvelopePublisher {
	return &EnvelopePublisher{producer: p, topic: topic, source: source}
}

func (p *EnvelopePublisher) PublishEvent(ctx context.Context, eventType string, payload interface{}) error {
	env, err := NewEventEnvelope(eventType, p.source, payload)
	if err != nil {
		return err
	}
	msg, err := env.ToMessage(p.topic)
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, msg)
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) PublishEvent(context.Context, string, interface{}) error { return nil }
