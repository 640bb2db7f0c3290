// Package kafka publishes warehouse events to a Kafka topic. Messages are
// keyed by parcel id, or by manifest/route id for reference events, so all
// events of one subject land on one partition in log order.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"parcelhub/internal/core/domain/model/event"
	"parcelhub/internal/core/ports"

	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker"
)

var ErrPublisherUnavailable = errors.New("kafka publisher unavailable")

// messageWriter is the part of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Config struct {
	Brokers      []string
	Topic        string
	BatchTimeout time.Duration
	// BreakerFailures consecutive failed publishes open the breaker for
	// BreakerTimeout.
	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

func (c Config) withDefaults() Config {
	if c.BatchTimeout <= 0 {
		c.BatchTimeout = 50 * time.Millisecond
	}
	if c.BreakerFailures == 0 {
		c.BreakerFailures = 5
	}
	if c.BreakerTimeout <= 0 {
		c.BreakerTimeout = 30 * time.Second
	}
	return c
}

type Publisher struct {
	writer  messageWriter
	topic   string
	breaker *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

var _ ports.EventPublisher = (*Publisher)(nil)

func NewPublisher(cfg Config, logger *slog.Logger) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka: at least one broker is required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka: topic is required")
	}
	cfg = cfg.withDefaults()

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: cfg.BatchTimeout,
		RequiredAcks: kafka.RequireAll,
		Async:        false,
	}
	return newPublisher(writer, cfg, logger), nil
}

func newPublisher(writer messageWriter, cfg Config, logger *slog.Logger) *Publisher {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "kafka_publisher", "topic", cfg.Topic)

	settings := gobreaker.Settings{
		Name:        "kafka:" + cfg.Topic,
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	}

	return &Publisher{
		writer:  writer,
		topic:   cfg.Topic,
		breaker: gobreaker.NewCircuitBreaker(settings),
		logger:  logger,
	}
}

// Publish writes events as one synchronous batch. Either the broker
// acknowledged every message or an error is returned.
func (p *Publisher) Publish(ctx context.Context, events []*event.WarehouseEvent) error {
	if len(events) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		msg, err := toMessage(e)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}

	_, err := p.breaker.Execute(func() (interface{}, error) {
		return nil, p.writer.WriteMessages(ctx, msgs...)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %w", ErrPublisherUnavailable, err)
	}
	if err != nil {
		return fmt.Errorf("publish %d events to %s: %w", len(msgs), p.topic, err)
	}

	p.logger.Debug("events published", "count", len(msgs), "last_sequence", events[len(events)-1].Sequence())
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// eventMessage is the JSON value of a published event.
type eventMessage struct {
	ID          string    `json:"id"`
	Sequence    int64     `json:"sequence"`
	Type        string    `json:"type"`
	StationID   string    `json:"stationId"`
	StationName string    `json:"stationName,omitempty"`
	ParcelID    string    `json:"parcelId,omitempty"`
	TrackingID  string    `json:"trackingId,omitempty"`
	ActorID     string    `json:"actorId"`
	Reason      string    `json:"reason,omitempty"`
	ReferenceID string    `json:"referenceId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toMessage(e *event.WarehouseEvent) (kafka.Message, error) {
	s := e.Snapshot()
	body := eventMessage{
		ID:          s.ID.String(),
		Sequence:    s.Sequence,
		Type:        string(s.Type),
		StationID:   s.StationID,
		StationName: s.StationName,
		ParcelID:    s.ParcelID,
		TrackingID:  s.TrackingID,
		ActorID:     s.ActorID,
		Reason:      s.Reason,
		CreatedAt:   s.CreatedAt,
	}
	if s.ReferenceID != nil {
		body.ReferenceID = s.ReferenceID.String()
	}

	value, err := json.Marshal(body)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal event %s: %w", body.ID, err)
	}

	key := body.ParcelID
	if key == "" {
		key = body.ReferenceID
	}

	return kafka.Message{
		Key:   []byte(key),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event-id", Value: []byte(body.ID)},
			{Key: "event-type", Value: []byte(body.Type)},
			{Key: "event-sequence", Value: []byte(strconv.FormatInt(body.Sequence, 10))},
			{Key: "content-type", Value: []byte("application/json")},
		},
		Time: s.CreatedAt,
	}, nil
}
