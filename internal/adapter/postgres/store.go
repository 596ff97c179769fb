// Package postgres persists event summaries to PostgreSQL.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/couchcryptid/storm-track-db/internal/domain"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS storm_events (
    id              TEXT PRIMARY KEY,
    hazard          TEXT NOT NULL,
    event_id        INTEGER NOT NULL,
    occurred_at     TIMESTAMPTZ NOT NULL,
    states          TEXT[] NOT NULL,
    magnitude       DOUBLE PRECISION NOT NULL,
    magnitude_label TEXT NOT NULL,
    injuries        INTEGER NOT NULL,
    fatalities      INTEGER NOT NULL,
    loss            DOUBLE PRECISION NOT NULL,
    crop_loss       DOUBLE PRECISION NOT NULL,
    start_lat       DOUBLE PRECISION NOT NULL,
    start_lon       DOUBLE PRECISION NOT NULL,
    end_lat         DOUBLE PRECISION,
    end_lon         DOUBLE PRECISION,
    length_mi       DOUBLE PRECISION,
    width_yd        INTEGER,
    counties        INTEGER[] NOT NULL,
    segments        INTEGER NOT NULL,
    ingest_id       TEXT NOT NULL,
    loaded_at       TIMESTAMPTZ NOT NULL
)`

const upsertSQL = `INSERT INTO storm_events (id, hazard, event_id, occurred_at, states, magnitude, magnitude_label,
    injuries, fatalities, loss, crop_loss, start_lat, start_lon, end_lat, end_lon, length_mi, width_yd,
    counties, segments, ingest_id, loaded_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
ON CONFLICT (id) DO UPDATE
SET hazard = EXCLUDED.hazard,
    event_id = EXCLUDED.event_id,
    occurred_at = EXCLUDED.occurred_at,
    states = EXCLUDED.states,
    magnitude = EXCLUDED.magnitude,
    magnitude_label = EXCLUDED.magnitude_label,
    injuries = EXCLUDED.injuries,
    fatalities = EXCLUDED.fatalities,
    loss = EXCLUDED.loss,
    crop_loss = EXCLUDED.crop_loss,
    start_lat = EXCLUDED.start_lat,
    start_lon = EXCLUDED.start_lon,
    end_lat = EXCLUDED.end_lat,
    end_lon = EXCLUDED.end_lon,
    length_mi = EXCLUDED.length_mi,
    width_yd = EXCLUDED.width_yd,
    counties = EXCLUDED.counties,
    segments = EXCLUDED.segments,
    ingest_id = EXCLUDED.ingest_id,
    loaded_at = EXCLUDED.loaded_at`

// Store batch-upserts summaries keyed by summary id, so reloading the same
// data replaces rather than duplicates. It implements pipeline.Sink.
type Store struct {
	pool *pgxpool.Pool
}

// New connects a pool and creates the table if needed.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Name() string { return "postgres" }

// CheckReadiness pings the database.
func (s *Store) CheckReadiness(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Publish upserts every summary of the batch in one round trip.
func (s *Store) Publish(ctx context.Context, batch domain.Batch) error {
	if len(batch.Summaries) == 0 {
		return nil
	}

	b := &pgx.Batch{}
	for _, sum := range batch.Summaries {
		b.Queue(upsertSQL, upsertArgs(batch, sum)...)
	}

	res := s.pool.SendBatch(ctx, b)
	defer res.Close()

	for _, sum := range batch.Summaries {
		if _, err := res.Exec(); err != nil {
			return fmt.Errorf("upsert %s: %w", sum.ID, err)
		}
	}
	return nil
}

// Close releases the pool resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// upsertArgs orders a summary's fields as upsertSQL's placeholders. Track-only
// columns are NULL for point reports.
func upsertArgs(batch domain.Batch, s domain.Summary) []any {
	var endLat, endLon, length *float64
	var width *int
	if s.Hazard == domain.HazardTornado.String() {
		endLat, endLon, length, width = &s.EndLat, &s.EndLon, &s.Length, &s.Width
	}
	counties := s.Counties
	if counties == nil {
		counties = []int{}
	}
	return []any{
		s.ID, s.Hazard, s.EventID, s.Time, s.States, s.Magnitude, s.MagnitudeLabel,
		s.Injuries, s.Fatalities, s.Loss, s.CropLoss, s.StartLat, s.StartLon,
		endLat, endLon, length, width,
		counties, s.Segments, batch.IngestID, batch.LoadedAt,
	}
}
