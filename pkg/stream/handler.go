package stream

import (
	"context"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/talklike/pkg/catalog"
	"github.com/matzehuels/talklike/pkg/core/filter"
	"github.com/matzehuels/talklike/pkg/errors"
	"github.com/matzehuels/talklike/pkg/observability"
	"github.com/matzehuels/talklike/pkg/pipeline"
)

// Handler is the sarama consumer group handler.
type Handler struct {
	runner   *pipeline.Runner
	producer sarama.SyncProducer
	output   string
	filter   string
	logger   *log.Logger
}

var _ sarama.ConsumerGroupHandler = (*Handler)(nil)

// NewHandler writes transformed records to output through producer.
func NewHandler(runner *pipeline.Runner, producer sarama.SyncProducer, output, defaultFilter string, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{
		runner:   runner,
		producer: producer,
		output:   output,
		filter:   catalog.NormalizeID(defaultFilter),
		logger:   logger,
	}
}

func (h *Handler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *Handler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim transforms the records of one partition in order.
func (h *Handler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	sessions := make(map[string]*filter.Session)
	logger := h.logger.With("topic", claim.Topic(), "partition", claim.Partition())
	ctx := sess.Context()

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			out, err := h.process(ctx, sessions, msg)
			if err != nil {
				// The record cannot be transformed; skip it rather than block
				// the partition.
				logger.Warn("skipping record", "offset", msg.Offset, "err", err)
				sess.MarkMessage(msg, "")
				continue
			}
			if _, _, err := h.producer.SendMessage(out); err != nil {
				return fmt.Errorf("produce to %s: %w", h.output, err)
			}
			sess.MarkMessage(msg, "")
		}
	}
}

func (h *Handler) process(ctx context.Context, sessions map[string]*filter.Session, msg *sarama.ConsumerMessage) (*sarama.ProducerMessage, error) {
	id := h.filter
	requestID := ""
	for _, hdr := range msg.Headers {
		switch string(hdr.Key) {
		case HeaderFilter:
			id = catalog.NormalizeID(string(hdr.Value))
		case HeaderRequestID:
			requestID = string(hdr.Value)
		}
	}
	if id == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "record has no %s header and no default filter", HeaderFilter)
	}
	if requestID == "" {
		requestID = uuid.NewString()
	}

	s, ok := sessions[id]
	if !ok {
		var err error
		if s, err = h.runner.Session(ctx, id); err != nil {
			return nil, err
		}
		sessions[id] = s
	}

	text := string(msg.Value)
	if err := errors.ValidateText(text); err != nil {
		return nil, err
	}
	hooks := observability.Pipeline()
	hooks.OnTransformStart(ctx, id, len(text))
	start := time.Now()
	out := s.Transform(text)
	hooks.OnTransformComplete(ctx, id, len(out), time.Now().Sub(start), nil)

	pm := &sarama.ProducerMessage{
		Topic: h.output,
		Value: sarama.StringEncoder(out),
		Headers: []sarama.RecordHeader{
			{Key: []byte(HeaderFilter), Value: []byte(id)},
			{Key: []byte(HeaderRequestID), Value: []byte(requestID)},
		},
	}
	if msg.Key != nil {
		pm.Key = sarama.ByteEncoder(msg.Key)
	}
	return pm, nil
}
