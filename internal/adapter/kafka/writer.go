package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/storm-track-db/internal/config"
	"github.com/couchcryptid/storm-track-db/internal/domain"
)

// Writer produces event summaries to a Kafka topic, keyed by summary id.
// It implements pipeline.Sink.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

func (w *Writer) Name() string { return "kafka" }

// Publish serializes a batch of summaries and writes them in a single
// WriteMessages call. Hashing on the key keeps every revision of an event on
// one partition.
func (w *Writer) Publish(ctx context.Context, batch domain.Batch) error {
	if len(batch.Summaries) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(batch.Summaries))
	for i := range batch.Summaries {
		msg, err := serializeToMessage(batch, batch.Summaries[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d messages: %w", len(msgs), err)
	}
	w.logger.Debug("published batch", "topic", w.writer.Topic, "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a summary into a Kafka message.
func serializeToMessage(batch domain.Batch, s domain.Summary) (kafkago.Message, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize summary %s: %w", s.ID, err)
	}
	return kafkago.Message{
		Key:   []byte(s.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "hazard", Value: []byte(s.Hazard)},
			{Key: "loaded_at", Value: []byte(batch.LoadedAt.Format(time.RFC3339))},
			{Key: "ingest_id", Value: []byte(batch.IngestID)},
		},
	}, nil
}
