package kafka

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/mhtech-dashboard/internal/config"
	"github.com/turtacn/mhtech-dashboard/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/turtacn/mhtech-dashboard/pkg/errors"
)

type mockKafkaWriter struct {
	writeFunc func(ctx context.Context, msgs ...kafka.Message) error
	closed    int
}

func (m *mockKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if m.writeFunc != nil {
		return m.writeFunc(ctx, msgs...)
	}
	return nil
}

func (m *mockKafkaWriter) Close() error {
	m.closed++
	return nil
}

func newTestProducerMessage(topic, key, value string) *ProducerMessage {
	return &ProducerMessage{Topic: topic, Key: []byte(key), Value: []byte(value)}
}

func TestValidateProducerConfig(t *testing.T) {
	assert.NoError(t, ValidateProducerConfig(config.Default().Kafka))
	assert.Error(t, ValidateProducerConfig(config.KafkaConfig{}))
}

func TestNewProducer(t *testing.T) {
	p, err := NewProducer(config.Default().Kafka, logging.NewNopLogger())
	require.NoError(t, err)
	assert.NotNil(t, p)

	_, err = NewProducer(config.KafkaConfig{}, nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeValidation))
}

func TestPublish_Success(t *testing.T) {
	var captured []kafka.Message
	w := &mockKafkaWriter{writeFunc: func(_ context.Context, msgs ...kafka.Message) error {
		captured = append(captured, msgs...)
		return nil
	}}
	p := NewProducerWithWriter(w, nil)

	msg := newTestProducerMessage("mhdash.view.rendered", "view.rendered", `{"view":"home"}`)
	msg.Headers = map[string]string{"event_type": "view.rendered"}
	require.NoError(t, p.Publish(context.Background(), msg))

	require.Len(t, captured, 1)
	assert.Equal(t, "mhdash.view.rendered", captured[0].Topic)
	assert.Equal(t, []byte("view.rendered"), captured[0].Key)
	assert.False(t, captured[0].Time.IsZero())
	require.Len(t, captured[0].Headers, 1)
	assert.Equal(t, "event_type", captured[0].Headers[0].Key)

	m := p.GetMetrics()
	assert.Equal(t, int64(1), m.MessagesSent.Load())
	assert.Equal(t, int64(len(`{"view":"home"}`)), m.BytesSent.Load())
}

func TestPublish_Validation(t *testing.T) {
	p := NewProducerWithWriter(&mockKafkaWriter{}, nil)
	ctx := context.Background()

	assert.Error(t, p.Publish(ctx, newTestProducerMessage("", "k", "v")))
	assert.Error(t, p.Publish(ctx, newTestProducerMessage("t", "k", "")))
	assert.Error(t, p.Publish(ctx, newTestProducerMessage("t", "k", strings.Repeat("x", DefaultMaxMessageBytes+1))))
}

func TestPublish_WriteError(t *testing.T) {
	w := &mockKafkaWriter{writeFunc: func(context.Context, ...kafka.Message) error {
		return errors.New("broker down")
	}}
	p := NewProducerWithWriter(w, nil)

	err := p.Publish(context.Background(), newTestProducerMessage("t", "k", "v"))
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeExternalService))
	assert.Equal(t, int64(1), p.GetMetrics().MessagesFailed.Load())
}

func TestProducer_Close(t *testing.T) {
	w := &mockKafkaWriter{}
	p := NewProducerWithWriter(w, nil)

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.Equal(t, 1, w.closed)
	assert.Equal(t, ErrProducerClosed, p.Publish(context.Background(), newTestProducerMessage("t", "k", "v")))
}
