// Command validate checks that the SPC database files survive a full
// parse, rebuild, export, and re-parse cycle: every event is kept, every
// county reference is kept, and the rebuilt summaries are identical.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -tornado data/torn.csv \
//	  -wind data/wind.csv \
//	  -hail data/hail.csv
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"

	"github.com/google/go-cmp/cmp"

	"github.com/couchcryptid/storm-track-db/internal/adapter/spccsv"
	"github.com/couchcryptid/storm-track-db/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	tornado := flag.String("tornado", "", "path to the tornado database CSV")
	wind := flag.String("wind", "", "path to the wind database CSV")
	hail := flag.String("hail", "", "path to the hail database CSV")
	totals := flag.String("totals", "first", "multi-state track totals: first or sum")
	flag.Parse()

	files := map[domain.Hazard]string{
		domain.HazardTornado: *tornado,
		domain.HazardWind:    *wind,
		domain.HazardHail:    *hail,
	}
	if *tornado == "" && *wind == "" && *hail == "" {
		flag.Usage()
		os.Exit(1)
	}

	policy, err := domain.ParseTotalsPolicy(*totals)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}

	if code := run(files, policy); code != 0 {
		os.Exit(code)
	}
}

func run(files map[domain.Hazard]string, totals domain.TotalsPolicy) int {
	fmt.Println("=== Storm Database Round-Trip Validation ===")
	fmt.Println()

	var phases []*phase
	for _, h := range []domain.Hazard{domain.HazardTornado, domain.HazardWind, domain.HazardHail} {
		path := files[h]
		if path == "" {
			continue
		}
		rows, err := spccsv.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load %s: %v\n", path, err)
			return 1
		}
		fmt.Printf("%s: %d rows from %s\n", h, len(rows), path)
		phases = append(phases, validateRoundTrip(h, rows, totals))
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	// Print detailed errors.
	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Round trip ──

func validateRoundTrip(h domain.Hazard, rows []domain.RawRow, totals domain.TotalsPolicy) *phase {
	p := &phase{name: fmt.Sprintf("%s round trip", h)}

	before, err := rebuild(h, rows, totals)
	if err != nil {
		p.errorf("initial build: %v", err)
		return p
	}

	var buf bytes.Buffer
	if err := exportRows(&buf, h, before.rows); err != nil {
		p.errorf("export: %v", err)
		return p
	}
	reader, err := spccsv.NewReader(&buf)
	if err != nil {
		p.errorf("re-read header: %v", err)
		return p
	}
	exported, err := reader.ReadAll()
	if err != nil {
		p.errorf("re-read: %v", err)
		return p
	}

	after, err := rebuild(h, exported, totals)
	if err != nil {
		p.errorf("rebuild: %v", err)
		return p
	}

	compareBuilds(p, before, after)
	return p
}

// build is one load of a hazard file.
type build struct {
	summaries  []domain.Summary
	rows       []domain.RawRow
	incomplete int
}

func (b build) countyTotal() int {
	n := 0
	for _, s := range b.summaries {
		n += len(s.Counties)
	}
	return n
}

func rebuild(h domain.Hazard, rows []domain.RawRow, totals domain.TotalsPolicy) (build, error) {
	var b build
	if h == domain.HazardTornado {
		tracks, incomplete, err := domain.BuildTornadoes(rows, domain.WithTotals(totals))
		if err != nil {
			return b, err
		}
		b.incomplete = len(incomplete)
		b.summaries = domain.Summaries(tracks)
		for _, t := range tracks.All() {
			b.rows = append(b.rows, t.Rows()...)
		}
		return b, nil
	}

	reports, err := domain.BuildReports(h, rows)
	if err != nil {
		return b, err
	}
	b.summaries = domain.Summaries(reports)
	for _, r := range reports.All() {
		b.rows = append(b.rows, r.Rows()...)
	}
	return b, nil
}

func exportRows(buf *bytes.Buffer, h domain.Hazard, rows []domain.RawRow) error {
	w := spccsv.NewWriter(buf, h)
	if err := w.WriteHeader(); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Flush()
}

func compareBuilds(p *phase, before, after build) {
	if len(before.summaries) != len(after.summaries) {
		p.errorf("event count: %d before export, %d after", len(before.summaries), len(after.summaries))
	}
	if before.countyTotal() != after.countyTotal() {
		p.errorf("county references: %d before export, %d after", before.countyTotal(), after.countyTotal())
	}
	if after.incomplete != 0 {
		p.errorf("%d tracks incomplete after export", after.incomplete)
	}

	byID := make(map[string]domain.Summary, len(after.summaries))
	for _, s := range after.summaries {
		byID[s.ID] = s
	}
	for _, want := range before.summaries {
		got, ok := byID[want.ID]
		if !ok {
			p.errorf("%s: missing after export", want.ID)
			continue
		}
		if diff := cmp.Diff(want, got); diff != "" {
			p.errorf("%s: summary changed (-before +after):\n%s", want.ID, diff)
		}
	}
}
