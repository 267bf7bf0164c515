// Package stream transforms Kafka records with talklike filters.
//
// A consumer group reads text records from the input topics and writes the
// transformed text to the output topic, keeping the record key. Each
// partition claim holds its own filter sessions, so stateful stages such as
// sentence augmentation continue from record to record within a partition.
// A rebalance starts fresh sessions.
//
// The filter comes from the talklike-filter record header, falling back to
// the configured default. Output records carry talklike-filter and
// talklike-request-id headers; the request id is copied from the input or
// generated.
package stream

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/talklike/pkg/pipeline"
)

// Record headers.
const (
	HeaderFilter    = "talklike-filter"
	HeaderRequestID = "talklike-request-id"
)

// Config describes the Kafka side of a stream.
type Config struct {
	Brokers     []string
	GroupID     string
	Topics      []string
	OutputTopic string
	// Filter is used for records without a talklike-filter header.
	Filter string
	// Version is the Kafka protocol version, e.g. "3.6.0".
	Version string
	// StartFrom is "oldest" or "newest" (default).
	StartFrom string
}

// Validate reports missing settings.
func (c Config) Validate() error {
	switch {
	case len(c.Brokers) == 0:
		return fmt.Errorf("stream: no brokers")
	case c.GroupID == "":
		return fmt.Errorf("stream: no consumer group")
	case len(c.Topics) == 0:
		return fmt.Errorf("stream: no input topics")
	case c.OutputTopic == "":
		return fmt.Errorf("stream: no output topic")
	}
	return nil
}

func (c Config) sarama() (*sarama.Config, error) {
	sc := sarama.NewConfig()
	sc.ClientID = "talklike"
	if c.Version != "" {
		ver, err := sarama.ParseKafkaVersion(c.Version)
		if err != nil {
			return nil, err
		}
		sc.Version = ver
	}
	sc.Consumer.Return.Errors = true
	switch c.StartFrom {
	case "oldest":
		sc.Consumer.Offsets.Initial = sarama.OffsetOldest
	default:
		sc.Consumer.Offsets.Initial = sarama.OffsetNewest
	}
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Producer.Return.Successes = true
	return sc, nil
}

// Stream couples a consumer group with a producer.
type Stream struct {
	cfg      Config
	client   sarama.Client
	group    sarama.ConsumerGroup
	producer sarama.SyncProducer
	handler  *Handler
	logger   *log.Logger
}

// New connects to the brokers.
func New(cfg Config, runner *pipeline.Runner, logger *log.Logger) (*Stream, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}
	sc, err := cfg.sarama()
	if err != nil {
		return nil, err
	}
	client, err := sarama.NewClient(cfg.Brokers, sc)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}
	group, err := sarama.NewConsumerGroupFromClient(cfg.GroupID, client)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("kafka consumer group: %w", err)
	}
	producer, err := sarama.NewSyncProducerFromClient(client)
	if err != nil {
		_ = group.Close()
		_ = client.Close()
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return &Stream{
		cfg:      cfg,
		client:   client,
		group:    group,
		producer: producer,
		handler:  NewHandler(runner, producer, cfg.OutputTopic, cfg.Filter, logger),
		logger:   logger,
	}, nil
}

// Run consumes until ctx ends. Rebalances restart the consume loop.
func (s *Stream) Run(ctx context.Context) error {
	go func() {
		for err := range s.group.Errors() {
			s.logger.Warn("kafka consumer", "err", err)
		}
	}()
	s.logger.Info("streaming",
		"topics", s.cfg.Topics,
		"output", s.cfg.OutputTopic,
		"group", s.cfg.GroupID,
		"filter", s.cfg.Filter)
	for {
		if err := s.group.Consume(ctx, s.cfg.Topics, s.handler); err != nil {
			if stderrors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

// Close stops the group and the producer.
func (s *Stream) Close() error {
	return stderrors.Join(s.group.Close(), s.producer.Close(), s.client.Close())
}
