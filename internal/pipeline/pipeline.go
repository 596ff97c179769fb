// Package pipeline loads the SPC hazard files, reconstructs tornado tracks,
// and publishes event summaries to the configured sinks.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/storm-track-db/internal/domain"
	"github.com/couchcryptid/storm-track-db/internal/observability"
)

// RowSource reads every row of one hazard's database file.
type RowSource interface {
	ReadRows(ctx context.Context, h domain.Hazard) ([]domain.RawRow, error)
}

// Sink receives published summaries.
type Sink interface {
	Name() string
	Publish(ctx context.Context, batch domain.Batch) error
}

// Options configure a Pipeline.
type Options struct {
	Hazards   []domain.Hazard
	Totals    domain.TotalsPolicy
	BatchSize int
	// MaxAttempts bounds publish retries per batch and sink. Zero means 5.
	MaxAttempts int
	Clock       clockwork.Clock
}

// Pipeline runs one ingest of every configured hazard and holds the resulting
// collections for searching.
type Pipeline struct {
	source  RowSource
	sinks   []Sink
	opts    Options
	logger  *slog.Logger
	metrics *observability.Metrics
	clock   clockwork.Clock
	ready   atomic.Bool

	mu        sync.RWMutex
	tornadoes *domain.Tornadoes
	reports   map[domain.Hazard]*domain.Collection[*domain.Report]
}

// New creates a Pipeline reading from source and publishing to sinks.
func New(source RowSource, sinks []Sink, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 50
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 5
	}
	return &Pipeline{
		source:  source,
		sinks:   sinks,
		opts:    opts,
		logger:  logger,
		metrics: metrics,
		clock:   clock,
		reports: make(map[domain.Hazard]*domain.Collection[*domain.Report]),
	}
}

// CheckReadiness returns nil once at least one hazard has been loaded.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no hazard data loaded yet")
	}
	return nil
}

// Tornadoes returns the loaded tracks, or nil before the tornado file is loaded.
func (p *Pipeline) Tornadoes() *domain.Tornadoes {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.tornadoes
}

// Reports returns the loaded wind or hail reports, or nil.
func (p *Pipeline) Reports(h domain.Hazard) *domain.Collection[*domain.Report] {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.reports[h]
}

// Run ingests every configured hazard once. A failed hazard is logged and
// skipped; the failures are returned together once the others are loaded.
func (p *Pipeline) Run(ctx context.Context) error {
	ingestID := uuid.NewString()
	p.logger.Info("ingest started", "ingest_id", ingestID, "hazards", len(p.opts.Hazards), "totals", p.opts.Totals.String())
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	var errs []error
	for _, h := range p.opts.Hazards {
		if ctx.Err() != nil {
			p.logger.Info("ingest stopping", "reason", ctx.Err())
			return nil
		}
		if err := p.ingest(ctx, ingestID, h); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			p.logger.Error("ingest failed", "hazard", h.String(), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", h, err))
		}
	}
	p.logger.Info("ingest finished", "ingest_id", ingestID, "failed", len(errs))
	return errors.Join(errs...)
}

func (p *Pipeline) ingest(ctx context.Context, ingestID string, h domain.Hazard) error {
	start := p.clock.Now()
	label := h.String()

	rows, err := p.source.ReadRows(ctx, h)
	if err != nil {
		if errors.Is(err, domain.ErrMalformedRow) {
			p.metrics.RowErrors.WithLabelValues(label).Inc()
		}
		return err
	}
	p.metrics.RowsRead.WithLabelValues(label).Add(float64(len(rows)))

	summaries, err := p.build(h, rows)
	if err != nil {
		if errors.Is(err, domain.ErrMalformedRow) {
			p.metrics.RowErrors.WithLabelValues(label).Inc()
		}
		return err
	}
	p.metrics.RecordsBuilt.WithLabelValues(label).Add(float64(len(summaries)))
	p.ready.Store(true)

	batch := domain.Batch{IngestID: ingestID, LoadedAt: p.clock.Now().UTC()}
	if err := p.publish(ctx, batch, summaries); err != nil {
		return err
	}

	elapsed := p.clock.Since(start)
	p.metrics.IngestDuration.WithLabelValues(label).Observe(elapsed.Seconds())
	p.logger.Info("hazard loaded", "hazard", label, "rows", len(rows), "records", len(summaries), "duration", elapsed)
	return nil
}

// build turns rows into the hazard's collection, stores it, and returns its
// summaries.
func (p *Pipeline) build(h domain.Hazard, rows []domain.RawRow) ([]domain.Summary, error) {
	if h == domain.HazardTornado {
		tracks, incomplete, err := domain.BuildTornadoes(rows, domain.WithTotals(p.opts.Totals))
		if err != nil {
			return nil, err
		}
		for _, b := range incomplete {
			p.logger.Warn("incomplete tornado track dropped",
				"year", b.Year,
				"event_id", b.EventID,
				"states", b.States,
				"declared_states", b.DeclaredStates,
			)
		}
		p.metrics.IncompleteTracks.Add(float64(len(incomplete)))

		p.mu.Lock()
		p.tornadoes = tracks
		p.mu.Unlock()
		return domain.Summaries(tracks), nil
	}

	reports, err := domain.BuildReports(h, rows)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.reports[h] = reports
	p.mu.Unlock()
	return domain.Summaries(reports), nil
}

// publish splits summaries into batches and hands each to every sink.
func (p *Pipeline) publish(ctx context.Context, batch domain.Batch, summaries []domain.Summary) error {
	if len(p.sinks) == 0 {
		return nil
	}
	for lo := 0; lo < len(summaries); lo += p.opts.BatchSize {
		hi := min(lo+p.opts.BatchSize, len(summaries))
		batch.Summaries = summaries[lo:hi]
		p.metrics.BatchSize.Observe(float64(hi - lo))

		for _, sink := range p.sinks {
			if err := p.publishWithRetry(ctx, sink, batch); err != nil {
				return fmt.Errorf("publish to %s: %w", sink.Name(), err)
			}
		}
	}
	return nil
}

// publishWithRetry retries a failed batch with exponential backoff: start at
// 200ms, double each retry, cap at 5s.
func (p *Pipeline) publishWithRetry(ctx context.Context, sink Sink, batch domain.Batch) error {
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	var err error
	for attempt := 1; ; attempt++ {
		if err = sink.Publish(ctx, batch); err == nil {
			p.metrics.SummariesPublished.WithLabelValues(sink.Name()).Add(float64(len(batch.Summaries)))
			return nil
		}
		p.metrics.PublishErrors.WithLabelValues(sink.Name()).Inc()
		if attempt >= p.opts.MaxAttempts {
			return err
		}
		p.logger.Warn("publish batch failed, retrying",
			"sink", sink.Name(), "error", err, "attempt", attempt, "batch_size", len(batch.Summaries))
		if !p.sleep(ctx, backoff) {
			return ctx.Err()
		}
		backoff = nextBackoff(backoff, maxBackoff)
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func (p *Pipeline) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := p.clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
