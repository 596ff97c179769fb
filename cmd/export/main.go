// Command export reads an SPC severe report database file, rebuilds its
// tornado tracks or point reports, and writes them back out in the same
// column layout. Optional filters narrow the output to a year or state.
//
// Usage:
//
//	go run ./cmd/export \
//	  -hazard tornado \
//	  -in data/torn.csv \
//	  -out out/torn_2011_ok.csv \
//	  -year 2011 -state OK
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/couchcryptid/storm-track-db/internal/adapter/spccsv"
	"github.com/couchcryptid/storm-track-db/internal/domain"
)

type options struct {
	hazard domain.Hazard
	totals domain.TotalsPolicy
	year   int
	state  string
}

// stats counts what an export wrote.
type stats struct {
	items      int
	rows       int
	incomplete int
	byState    map[string]int
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	hazardName := flag.String("hazard", "", "hazard type: tornado, wind or hail")
	in := flag.String("in", "", "path to the source SPC database CSV")
	out := flag.String("out", "", "output path for the exported CSV")
	totals := flag.String("totals", "first", "multi-state track totals: first or sum")
	year := flag.Int("year", 0, "only export events from this year (UTC)")
	state := flag.String("state", "", "only export events touching this state")
	flag.Parse()

	if *hazardName == "" || *in == "" || *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -hazard, -in, -out")
	}

	h, err := domain.ParseHazard(*hazardName)
	if err != nil {
		return err
	}
	policy, err := domain.ParseTotalsPolicy(*totals)
	if err != nil {
		return err
	}

	rows, err := spccsv.ReadFile(*in)
	if err != nil {
		return fmt.Errorf("reading %s: %w", *in, err)
	}
	log.Printf("%s: %d rows read", h, len(rows))

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		return err
	}
	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	defer f.Close()

	s, err := export(f, rows, options{hazard: h, totals: policy, year: *year, state: *state})
	if err != nil {
		return fmt.Errorf("writing %s: %w", *out, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Printf("wrote %s", *out)

	printStats(h, s)
	return nil
}

func (o options) criteria() domain.Criteria {
	c := domain.Criteria{}
	if o.year != 0 {
		c[domain.AttrTime] = domain.Where(domain.ByYear(o.year))
	}
	if o.state != "" {
		c[domain.AttrState] = domain.Is(o.state)
	}
	return c
}

// export rebuilds rows into the hazard's collection and writes the matching
// items, header first.
func export(w io.Writer, rows []domain.RawRow, opts options) (stats, error) {
	s := stats{byState: map[string]int{}}
	out := spccsv.NewWriter(w, opts.hazard)
	if err := out.WriteHeader(); err != nil {
		return s, err
	}

	if opts.hazard == domain.HazardTornado {
		tracks, incomplete, err := domain.BuildTornadoes(rows, domain.WithTotals(opts.totals))
		if err != nil {
			return s, err
		}
		s.incomplete = len(incomplete)
		if tracks, err = tracks.Search(opts.criteria()); err != nil {
			return s, err
		}
		for _, t := range tracks.All() {
			s.rows += len(t.Rows())
			for _, st := range t.States() {
				s.byState[st]++
			}
		}
		s.items = tracks.Len()
		return s, spccsv.WriteAll(out, tracks)
	}

	reports, err := domain.BuildReports(opts.hazard, rows)
	if err != nil {
		return s, err
	}
	if reports, err = reports.Search(opts.criteria()); err != nil {
		return s, err
	}
	for _, r := range reports.All() {
		s.byState[r.State]++
	}
	s.items = reports.Len()
	s.rows = reports.Len()
	return s, spccsv.WriteAll(out, reports)
}

type stateCount struct {
	state string
	count int
}

func printStats(h domain.Hazard, s stats) {
	fmt.Printf("\n=== %s export ===\n", h)
	fmt.Printf("Events: %d\n", s.items)
	fmt.Printf("Rows written: %d\n", s.rows)
	if h == domain.HazardTornado {
		fmt.Printf("Incomplete tracks dropped: %d\n", s.incomplete)
	}

	sc := make([]stateCount, 0, len(s.byState))
	for st, c := range s.byState {
		sc = append(sc, stateCount{st, c})
	}
	sort.Slice(sc, func(i, j int) bool {
		if sc[i].count != sc[j].count {
			return sc[i].count > sc[j].count
		}
		return sc[i].state < sc[j].state
	})
	fmt.Printf("States (%d): ", len(sc))
	for _, c := range sc[:min(10, len(sc))] {
		fmt.Printf("%s=%d ", c.state, c.count)
	}
	fmt.Println()
}
