package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/covid-snapshot-etl/internal/domain"
	"github.com/couchcryptid/covid-snapshot-etl/internal/extract"
)

// SnapshotExtractor implements Extractor using the dashboard extractor.
type SnapshotExtractor struct {
	logger *slog.Logger
}

// NewExtractor creates a SnapshotExtractor.
func NewExtractor(logger *slog.Logger) *SnapshotExtractor {
	return &SnapshotExtractor{logger: logger}
}

func (e *SnapshotExtractor) Extract(_ context.Context, doc domain.Document) (domain.Extraction, error) {
	snap, err := extract.Extract(doc.Markup)
	if err != nil {
		e.logger.Warn("dashboard did not match the expected layout",
			"url", doc.URL,
			"bytes", len(doc.Markup),
			"error", err,
		)
		return domain.Extraction{}, err
	}

	ext := domain.NewExtraction(doc, snap)
	e.logger.Debug("snapshot extracted", "snapshot_id", ext.ID(), "rows", snap.Len())
	return ext, nil
}
