package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/covid-snapshot-etl/internal/config"
	"github.com/couchcryptid/covid-snapshot-etl/internal/domain"
)

// Writer produces snapshot rows to a Kafka topic.
// It implements pipeline.Loader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic. The Hash
// balancer keeps each row key on a stable partition.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaSinkTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// Load serializes every row of the snapshot and publishes them in a single
// WriteMessages call, in table order.
func (w *Writer) Load(ctx context.Context, ext domain.Extraction) error {
	if ext.Snapshot == nil || ext.Snapshot.Len() == 0 {
		return nil
	}

	msgs, err := serializeExtraction(ext)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write snapshot %s: %w", ext.ID(), err)
	}

	w.logger.Debug("snapshot published", "snapshot_id", ext.ID(), "rows", len(msgs), "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// rowMessage is the JSON value of one published row.
type rowMessage struct {
	Key          string    `json:"key"`
	Kind         string    `json:"kind"`
	IsDelta      bool      `json:"is_delta"`
	Confirmed    uint64    `json:"confirmed"`
	Active       uint64    `json:"active"`
	Discharged   uint64    `json:"discharged"`
	Deaths       uint64    `json:"deaths"`
	Vaccinations uint64    `json:"vaccinations"`
	SnapshotID   string    `json:"snapshot_id"`
	SourceURL    string    `json:"source_url"`
	FetchedAt    time.Time `json:"fetched_at"`
}

func newRowMessage(row domain.Row, ext domain.Extraction, id string) rowMessage {
	return rowMessage{
		Key:          row.Key,
		Kind:         row.Kind.String(),
		IsDelta:      row.IsDelta(),
		Confirmed:    row.Get(domain.Confirmed),
		Active:       row.Get(domain.Active),
		Discharged:   row.Get(domain.Discharged),
		Deaths:       row.Get(domain.Deaths),
		Vaccinations: row.Get(domain.Vaccinations),
		SnapshotID:   id,
		SourceURL:    ext.SourceURL,
		FetchedAt:    ext.FetchedAt.UTC(),
	}
}

func serializeExtraction(ext domain.Extraction) ([]kafkago.Message, error) {
	id := ext.ID()
	rows := ext.Snapshot.Rows()

	msgs := make([]kafkago.Message, len(rows))
	for i, row := range rows {
		msg, err := serializeToMessage(newRowMessage(row, ext, id))
		if err != nil {
			return nil, err
		}
		msgs[i] = msg
	}
	return msgs, nil
}

// serializeToMessage marshals a snapshot row into a Kafka message keyed by
// the row key.
func serializeToMessage(m rowMessage) (kafkago.Message, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize row %q: %w", m.Key, err)
	}
	return kafkago.Message{
		Key:   []byte(m.Key),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "row_kind", Value: []byte(m.Kind)},
			{Key: "snapshot_id", Value: []byte(m.SnapshotID)},
			{Key: "fetched_at", Value: []byte(m.FetchedAt.Format(time.RFC3339))},
		},
	}, nil
}
