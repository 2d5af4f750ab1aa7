package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/covid-snapshot-etl/internal/domain"
	"github.com/couchcryptid/covid-snapshot-etl/internal/observability"
)

// Fetcher retrieves the raw dashboard document.
type Fetcher interface {
	Fetch(ctx context.Context) (domain.Document, error)
}

// Extractor turns a fetched document into a stamped snapshot.
type Extractor interface {
	Extract(ctx context.Context, doc domain.Document) (domain.Extraction, error)
}

// Loader writes a snapshot to the destination.
type Loader interface {
	Load(ctx context.Context, ext domain.Extraction) error
}

// Pipeline orchestrates the fetch-extract-load cycle and holds the latest
// successful extraction for readers.
type Pipeline struct {
	fetcher   Fetcher
	extractor Extractor
	loader    Loader
	logger    *slog.Logger
	metrics   *observability.Metrics
	clock     clockwork.Clock
	interval  time.Duration
	latest    atomic.Pointer[domain.Extraction]
}

// New creates a Pipeline with the given stages and observability. A nil
// loader disables loading; a nil clock uses real time.
func New(f Fetcher, e Extractor, l Loader, logger *slog.Logger, metrics *observability.Metrics, interval time.Duration, clock clockwork.Clock) *Pipeline {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Pipeline{
		fetcher:   f,
		extractor: e,
		loader:    l,
		logger:    logger,
		metrics:   metrics,
		clock:     clock,
		interval:  interval,
	}
}

// CheckReadiness returns nil once a snapshot has been extracted, or an error
// describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if p.latest.Load() == nil {
		return errors.New("no snapshot has been extracted yet")
	}
	return nil
}

// Latest returns the most recent successful extraction.
func (p *Pipeline) Latest() (domain.Extraction, bool) {
	ext := p.latest.Load()
	if ext == nil {
		return domain.Extraction{}, false
	}
	return *ext, true
}

// Run executes one cycle immediately and then one per interval until the
// context is cancelled. Failed cycles are logged and the previous snapshot
// stays in place.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "interval", p.interval)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	p.cycle(ctx)
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			p.cycle(ctx)
		}
	}
}

func (p *Pipeline) cycle(ctx context.Context) {
	ext, err := p.RunOnce(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.logger.Error("snapshot cycle failed", "error", err, "kind", domain.ErrorKind(err))
		return
	}
	p.logger.Info("snapshot cycle complete",
		"snapshot_id", ext.ID(),
		"regions", len(ext.Snapshot.Regions()),
		"fetched_at", ext.FetchedAt,
	)
}

// RunOnce performs a single fetch-extract-load cycle. A snapshot that
// extracts cleanly becomes the latest even if loading it fails; a page that
// fails extraction never replaces the previous snapshot.
func (p *Pipeline) RunOnce(ctx context.Context) (domain.Extraction, error) {
	start := p.clock.Now()
	defer func() {
		p.metrics.CycleDuration.Observe(p.clock.Since(start).Seconds())
	}()

	doc, err := p.fetcher.Fetch(ctx)
	if err != nil {
		p.metrics.Cycles.WithLabelValues("fetch_error").Inc()
		return domain.Extraction{}, fmt.Errorf("fetch: %w", err)
	}

	ext, err := p.extractor.Extract(ctx, doc)
	if err != nil {
		p.metrics.Cycles.WithLabelValues("extract_error").Inc()
		p.metrics.ExtractErrors.WithLabelValues(domain.ErrorKind(err)).Inc()
		return domain.Extraction{}, fmt.Errorf("extract: %w", err)
	}

	p.latest.Store(&ext)
	p.metrics.SnapshotsExtracted.Inc()
	p.metrics.SnapshotRegions.Set(float64(len(ext.Snapshot.Regions())))
	p.metrics.LastSuccessTimestamp.Set(float64(ext.ExtractedAt.Unix()))

	if p.loader != nil {
		if err := p.loader.Load(ctx, ext); err != nil {
			p.metrics.Cycles.WithLabelValues("load_error").Inc()
			p.metrics.LoadErrors.Inc()
			return ext, fmt.Errorf("load: %w", err)
		}
		p.metrics.RowsPublished.Add(float64(ext.Snapshot.Len()))
	}

	p.metrics.Cycles.WithLabelValues("success").Inc()
	return ext, nil
}
