package kafka

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/mhtech-dashboard/internal/config"
	"github.com/turtacn/mhtech-dashboard/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/mhtech-dashboard/pkg/errors"
)

var (
	ErrAlreadyRunning = errors.New(errors.ErrCodeValidation, "consumer already running")
	ErrNoHandler      = errors.New(errors.ErrCodeValidation, "consumer has no handler")
)

// ConsumerMetrics holds consumer counters.
type ConsumerMetrics struct {
	MessagesConsumed  atomic.Int64
	MessagesProcessed atomic.Int64
	MessagesFailed    atomic.Int64
}

// ReaderInterface abstracts kafka.Reader for testing.
type ReaderInterface interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads dashboard events, used by the CLI to follow renders.
type Consumer struct {
	reader  ReaderInterface
	handler MessageHandler
	logger  logging.Logger

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	// commit is false for group-less readers, which cannot commit offsets.
	commit       bool
	fetchBackoff time.Duration
	metrics      *ConsumerMetrics
}

// NewConsumer creates a consumer for topic. An empty groupID reads the
// partition directly from the newest offset.
func NewConsumer(cfg config.KafkaConfig, topic, groupID string, logger logging.Logger) (*Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "Brokers required")
	}
	if topic == "" {
		return nil, errors.New(errors.ErrCodeValidation, "Topic required")
	}
	readerCfg := kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10 * 1024 * 1024,
		MaxWait:        time.Second,
		CommitInterval: 0,
		StartOffset:    kafka.LastOffset,
		Dialer:         &kafka.Dialer{Timeout: 10 * time.Second, DualStack: true},
	}
	c := NewConsumerWithReader(kafka.NewReader(readerCfg), logger)
	c.commit = groupID != ""
	return c, nil
}

// NewConsumerWithReader wraps an existing reader.
func NewConsumerWithReader(r ReaderInterface, logger logging.Logger) *Consumer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Consumer{
		reader:       r,
		logger:       logger,
		commit:       true,
		fetchBackoff: time.Second,
		metrics:      &ConsumerMetrics{},
	}
}

// Subscribe sets the handler. It must be called before Start.
func (c *Consumer) Subscribe(handler MessageHandler) {
	c.handler = handler
}

// Start runs the consume loop in the background.
func (c *Consumer) Start(ctx context.Context) error {
	if c.handler == nil {
		return ErrNoHandler
	}
	if c.running.Swap(true) {
		return ErrAlreadyRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.wg.Add(1)
	go c.consumeLoop(ctx)
	c.logger.Info("Kafka consumer started")
	return nil
}

// Wait blocks until the consume loop exits.
func (c *Consumer) Wait() { c.wg.Wait() }

func (c *Consumer) consumeLoop(ctx context.Context) {
	defer c.wg.Done()
	for {
		if ctx.Err() != nil {
			return
		}
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("FetchMessage error", logging.Err(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.fetchBackoff):
			}
			continue
		}
		c.metrics.MessagesConsumed.Add(1)

		msg := &Message{
			Topic:     m.Topic,
			Partition: m.Partition,
			Offset:    m.Offset,
			Key:       m.Key,
			Value:     m.Value,
			Timestamp: m.Time,
			Headers:   make(map[string]string, len(m.Headers)),
		}
		for _, h := range m.Headers {
			msg.Headers[h.Key] = string(h.Value)
		}

		if err := c.handler(ctx, msg); err != nil {
			// Events are informational; a failed handler never blocks progress.
			c.metrics.MessagesFailed.Add(1)
			c.logger.Warn("Event handler failed",
				logging.String("topic", msg.Topic),
				logging.Int64("offset", msg.Offset),
				logging.Err(err))
		} else {
			c.metrics.MessagesProcessed.Add(1)
		}
		if !c.commit {
			continue
		}
		if err := c.reader.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
			c.logger.Error("CommitMessages failed", logging.Err(err))
		}
	}
}

// GetMetrics returns a snapshot of the counters.
func (c *Consumer) GetMetrics() *ConsumerMetrics {
	m := &ConsumerMetrics{}
	m.MessagesConsumed.Store(c.metrics.MessagesConsumed.Load())
	m.MessagesProcessed.Store(c.metrics.MessagesProcessed.Load())
	m.MessagesFailed.Store(c.metrics.MessagesFailed.Load())
	return m
}

// Close stops the loop and closes the reader.
func (c *Consumer) Close() error {
	if c.running.CompareAndSwap(true, false) {
		if c.cancel != nil {
			c.cancel()
		}
		c.wg.Wait()
	}
	err := c.reader.Close()
	c.logger.Info("Kafka consumer closed", logging.Int64("consumed", c.metrics.MessagesConsumed.Load()))
	return err
}
