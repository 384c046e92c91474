package kafka

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/mhtech-dashboard/internal/config"
)

// mockKafkaReader serves queued messages, then blocks until cancelled.
type mockKafkaReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	fetchErr  error
	committed []kafka.Message
	closed    bool
}

func (m *mockKafkaReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	m.mu.Lock()
	if m.fetchErr != nil {
		err := m.fetchErr
		m.fetchErr = nil
		m.mu.Unlock()
		return kafka.Message{}, err
	}
	if len(m.queue) > 0 {
		msg := m.queue[0]
		m.queue = m.queue[1:]
		m.mu.Unlock()
		return msg, nil
	}
	m.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (m *mockKafkaReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.committed = append(m.committed, msgs...)
	return nil
}

func (m *mockKafkaReader) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockKafkaReader) commits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.committed)
}

func TestNewConsumer_Validation(t *testing.T) {
	_, err := NewConsumer(config.KafkaConfig{}, "t", "", nil)
	assert.Error(t, err)
	_, err = NewConsumer(config.Default().Kafka, "", "", nil)
	assert.Error(t, err)

	c, err := NewConsumer(config.Default().Kafka, "t", "", nil)
	require.NoError(t, err)
	assert.False(t, c.commit)
	require.NoError(t, c.Close())
}

func TestConsumer_StartRequiresHandler(t *testing.T) {
	c := NewConsumerWithReader(&mockKafkaReader{}, nil)
	assert.Equal(t, ErrNoHandler, c.Start(context.Background()))
}

func TestConsumer_AlreadyRunning(t *testing.T) {
	c := NewConsumerWithReader(&mockKafkaReader{}, nil)
	c.Subscribe(func(context.Context, *Message) error { return nil })
	require.NoError(t, c.Start(context.Background()))
	defer c.Close()
	assert.Equal(t, ErrAlreadyRunning, c.Start(context.Background()))
}

func TestConsumer_DeliversAndCommits(t *testing.T) {
	r := &mockKafkaReader{queue: []kafka.Message{
		{Topic: "events", Offset: 1, Value: []byte("a"), Headers: []kafka.Header{{Key: "event_type", Value: []byte("view.rendered")}}},
		{Topic: "events", Offset: 2, Value: []byte("b")},
	}}
	c := NewConsumerWithReader(r, nil)

	got := make(chan *Message, 2)
	c.Subscribe(func(_ context.Context, m *Message) error {
		got <- m
		if m.Offset == 2 {
			return errors.New("bad payload")
		}
		return nil
	})
	require.NoError(t, c.Start(context.Background()))

	first := <-got
	second := <-got
	assert.Equal(t, "view.rendered", first.Headers["event_type"])
	assert.Equal(t, int64(2), second.Offset)

	assert.Eventually(t, func() bool { return r.commits() == 2 }, time.Second, 10*time.Millisecond)
	require.NoError(t, c.Close())
	assert.True(t, r.closed)

	m := c.GetMetrics()
	assert.Equal(t, int64(2), m.MessagesConsumed.Load())
	assert.Equal(t, int64(1), m.MessagesProcessed.Load())
	assert.Equal(t, int64(1), m.MessagesFailed.Load())
}

func TestConsumer_RetriesAfterFetchError(t *testing.T) {
	r := &mockKafkaReader{
		fetchErr: errors.New("leader not available"),
		queue:    []kafka.Message{{Topic: "events", Value: []byte("x")}},
	}
	c := NewConsumerWithReader(r, nil)
	c.fetchBackoff = time.Millisecond

	var handled atomic.Int32
	c.Subscribe(func(context.Context, *Message) error {
		handled.Add(1)
		return nil
	})
	require.NoError(t, c.Start(context.Background()))
	assert.Eventually(t, func() bool { return handled.Load() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, c.Close())
}

func TestConsumer_StopsWithContext(t *testing.T) {
	c := NewConsumerWithReader(&mockKafkaReader{}, nil)
	c.Subscribe(func(context.Context, *Message) error { return nil })

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, c.Start(ctx))
	cancel()

	done := make(chan struct{})
	go func() { c.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop")
	}
}
