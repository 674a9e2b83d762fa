// Package kafka publishes audit events to a Kafka topic with franz-go.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "docverify/pkg/platform/audit"
	"docverify/pkg/platform/circuit"
	"docverify/pkg/platform/sentinel"
)

const (
	defaultPartitions        = 3
	defaultReplicationFactor = 1
	produceTimeout           = 5 * time.Second
)

type Config struct {
	Brokers           []string
	Topic             string
	Partitions        int32
	ReplicationFactor int16
}

// Sink produces one record per event, keyed by user so a user's events keep
// their order within a partition.
type Sink struct {
	client  *kgo.Client
	topic   string
	breaker *circuit.Breaker
	logger  *slog.Logger
}

type Option func(*Sink)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Sink) { s.logger = logger }
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(s *Sink) { s.breaker = b }
}

// New connects to the brokers and makes sure the audit topic exists.
func New(ctx context.Context, cfg Config, opts ...Option) (*Sink, error) {
	if len(cfg.Brokers) == 0 || cfg.Topic == "" {
		return nil, errors.New("kafka sink requires brokers and a topic")
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerLinger(10*time.Millisecond),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	if err := EnsureTopic(ctx, client, cfg); err != nil {
		client.Close()
		return nil, err
	}

	s := &Sink{
		client:  client,
		topic:   cfg.Topic,
		breaker: circuit.New("audit-kafka"),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// EnsureTopic creates the topic, treating "already exists" as success.
func EnsureTopic(ctx context.Context, client *kgo.Client, cfg Config) error {
	partitions := cfg.Partitions
	if partitions <= 0 {
		partitions = defaultPartitions
	}
	replication := cfg.ReplicationFactor
	if replication <= 0 {
		replication = defaultReplicationFactor
	}

	resp, err := kadm.NewClient(client).CreateTopic(ctx, partitions, replication, nil, cfg.Topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", cfg.Topic, err)
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		return fmt.Errorf("create topic %s: %w", cfg.Topic, resp.Err)
	}
	return nil
}

// Write produces event synchronously. While the breaker is open events are
// refused with sentinel.ErrUnavailable.
func (s *Sink) Write(ctx context.Context, event audit.Event) error {
	if !s.breaker.Allow() {
		return fmt.Errorf("audit sink %s: %w", s.breaker.Name(), sentinel.ErrUnavailable)
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}
	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.UserID.String()),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "action", Value: []byte(event.Action)},
			{Key: "category", Value: []byte(event.Category)},
		},
	}

	ctx, cancel := context.WithTimeout(ctx, produceTimeout)
	defer cancel()
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		if _, change := s.breaker.RecordFailure(); change.Opened {
			s.logger.WarnContext(ctx, "audit sink breaker opened", "topic", s.topic, "error", err)
		}
		return fmt.Errorf("produce audit event: %w", err)
	}
	if _, change := s.breaker.RecordSuccess(); change.Closed {
		s.logger.InfoContext(ctx, "audit sink breaker closed", "topic", s.topic)
	}
	return nil
}

func (s *Sink) Close() {
	s.client.Close()
}
