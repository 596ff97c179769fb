//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/storm-track-db/internal/adapter/kafka"
	"github.com/couchcryptid/storm-track-db/internal/adapter/spccsv"
	"github.com/couchcryptid/storm-track-db/internal/config"
	"github.com/couchcryptid/storm-track-db/internal/domain"
	"github.com/couchcryptid/storm-track-db/internal/observability"
	"github.com/couchcryptid/storm-track-db/internal/pipeline"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("storm-track-db"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     3,
		ReplicationFactor: 1,
	}))
}

// writeCSV writes rows as an SPC database file and returns its path.
func writeCSV(t *testing.T, h domain.Hazard, rows []domain.RawRow) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), h.String()+".csv")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := spccsv.NewWriter(f, h)
	require.NoError(t, w.WriteHeader())
	for _, row := range rows {
		require.NoError(t, w.Write(row))
	}
	require.NoError(t, w.Flush())
	return path
}

func tornadoRows() []domain.RawRow {
	base := domain.RawRow{
		Time: "16:40:00", TimeZone: 3, StateSeq: 1, Magnitude: 4,
		StartLat: 33.03, StartLon: -88.45, EndLat: 33.65, EndLon: -87.23,
		Length: 80.7, Width: 1000, StateNum: 1, SegmentNum: 1,
	}
	single := base
	single.EventID, single.Date, single.State, single.StateFIPS, single.NumStates = 1, "2011-04-27", "AL", 1, 1
	single.Counties = [4]int{125, 73, 9, 0}

	msRow := base
	msRow.EventID, msRow.Date, msRow.State, msRow.StateFIPS, msRow.NumStates = 2, "2011-04-27", "MS", 28, 2
	msRow.Counties = [4]int{103}
	alRow := msRow
	alRow.State, alRow.StateFIPS = "AL", 1
	alRow.Counties = [4]int{107, 125}

	orphan := base
	orphan.EventID, orphan.Date, orphan.State, orphan.StateFIPS, orphan.NumStates = 3, "2011-04-28", "GA", 13, 2

	return []domain.RawRow{single, msRow, alRow, orphan}
}

func windRows() []domain.RawRow {
	return []domain.RawRow{
		{EventID: 10, Date: "2011-04-27", Time: "12:00:00", TimeZone: 3, State: "AL", StateFIPS: 1, Magnitude: 65, MagType: "MG", StartLat: 33.5, StartLon: -86.8, Counties: [4]int{73}},
		{EventID: 11, Date: "2011-04-27", Time: "13:15:00", TimeZone: 3, State: "TN", StateFIPS: 47, Magnitude: 52, MagType: "EG", StartLat: 35.1, StartLon: -85.3, Counties: [4]int{65}},
	}
}

type sinkMessage struct {
	Summary domain.Summary
	Key     string
	Headers map[string]string
}

func readSummaries(ctx context.Context, t *testing.T, broker, topic string, n int) []sinkMessage {
	t.Helper()
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       topic,
		GroupID:     fmt.Sprintf("test-sink-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	out := make([]sinkMessage, 0, n)
	for len(out) < n {
		readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		msg, err := consumer.ReadMessage(readCtx)
		cancel()
		require.NoError(t, err, "read from sink topic")

		headers := make(map[string]string, len(msg.Headers))
		for _, h := range msg.Headers {
			headers[h.Key] = string(h.Value)
		}
		var s domain.Summary
		require.NoError(t, json.Unmarshal(msg.Value, &s), "unmarshal sink message")
		out = append(out, sinkMessage{Summary: s, Key: string(msg.Key), Headers: headers})
	}
	return out
}

// TestKafkaWriter verifies the sink adapter publishes a batch keyed by
// summary id with the batch headers.
func TestKafkaWriter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, "writer-test")

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaSinkTopic: "writer-test"}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	tracks, _, err := domain.BuildTornadoes(tornadoRows()[:1])
	require.NoError(t, err)
	loadedAt := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	batch := domain.Batch{IngestID: "ingest-1", LoadedAt: loadedAt, Summaries: domain.Summaries(tracks)}

	require.NoError(t, writer.Publish(ctx, batch))

	got := readSummaries(ctx, t, broker, "writer-test", 1)
	assert.Equal(t, "tornado-2011-1", got[0].Key)
	assert.Equal(t, batch.Summaries[0].ID, got[0].Summary.ID)
	assert.Equal(t, []int{1125, 1073, 1009}, got[0].Summary.Counties)
	assert.Equal(t, "tornado", got[0].Headers["hazard"])
	assert.Equal(t, "ingest-1", got[0].Headers["ingest_id"])
	assert.Equal(t, "2026-03-01T12:00:00Z", got[0].Headers["loaded_at"])
}

// TestPipelineEndToEnd loads tornado and wind files and checks every
// reconstructed event reaches the sink topic.
func TestPipelineEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, "storm-events")

	files := spccsv.Files{
		domain.HazardTornado: writeCSV(t, domain.HazardTornado, tornadoRows()),
		domain.HazardWind:    writeCSV(t, domain.HazardWind, windRows()),
	}

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaSinkTopic: "storm-events"}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(files, []pipeline.Sink{writer}, pipeline.Options{
		Hazards:   []domain.Hazard{domain.HazardTornado, domain.HazardWind},
		BatchSize: 2,
	}, discardLogger(), metrics)

	require.NoError(t, p.Run(ctx))
	require.NoError(t, p.CheckReadiness(ctx))

	// Two complete tracks (the GA orphan is dropped) and two wind reports.
	got := readSummaries(ctx, t, broker, "storm-events", 4)

	byID := map[string]sinkMessage{}
	ingestIDs := map[string]bool{}
	for _, m := range got {
		assert.Equal(t, m.Summary.ID, m.Key)
		assert.Equal(t, m.Summary.Hazard, m.Headers["hazard"])
		assert.Contains(t, m.Headers, "loaded_at")
		ingestIDs[m.Headers["ingest_id"]] = true
		byID[m.Key] = m
	}
	assert.Len(t, ingestIDs, 1, "one ingest id per run")
	require.Contains(t, byID, "tornado-2011-1")
	require.Contains(t, byID, "tornado-2011-2")
	require.Contains(t, byID, "wind-2011-10")
	require.Contains(t, byID, "wind-2011-11")
	assert.NotContains(t, byID, "tornado-2011-3")

	multi := byID["tornado-2011-2"].Summary
	assert.Equal(t, []string{"MS", "AL"}, multi.States)
	assert.Equal(t, []int{28103, 1107, 1125}, multi.Counties)
	assert.Equal(t, 2, multi.Segments)
	assert.Equal(t, "EF4", multi.MagnitudeLabel)

	assert.Equal(t, "M65", byID["wind-2011-10"].Summary.MagnitudeLabel)

	tracks := p.Tornadoes()
	require.NotNil(t, tracks)
	assert.Equal(t, 2, tracks.Len())
	assert.Equal(t, 2, p.Reports(domain.HazardWind).Len())
	assert.Nil(t, p.Reports(domain.HazardHail))
}

// TestPipelineMalformedFile checks a broken hazard file is reported while
// the other hazards still reach the sink.
func TestPipelineMalformedFile(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, "storm-events")

	bad := tornadoRows()
	bad[1].Date = "2011-02-30"
	files := spccsv.Files{
		domain.HazardTornado: writeCSV(t, domain.HazardTornado, bad),
		domain.HazardWind:    writeCSV(t, domain.HazardWind, windRows()),
	}

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaSinkTopic: "storm-events"}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	p := pipeline.New(files, []pipeline.Sink{writer}, pipeline.Options{
		Hazards: []domain.Hazard{domain.HazardTornado, domain.HazardWind},
	}, discardLogger(), observability.NewMetricsForTesting())

	err := p.Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tornado row 2")
	assert.Nil(t, p.Tornadoes())

	got := readSummaries(ctx, t, broker, "storm-events", 2)
	for _, m := range got {
		assert.Equal(t, "wind", m.Headers["hazard"])
	}
}
