package domain

import (
	"fmt"
	"time"
)

// Summary is the flattened, serializable view of a track or report published
// to sinks and returned by the search API.
type Summary struct {
	ID             string    `json:"id"`
	Hazard         string    `json:"hazard"`
	EventID        int       `json:"event_id"`
	Time           time.Time `json:"time"`
	States         []string  `json:"states"`
	Magnitude      float64   `json:"magnitude"`
	MagnitudeLabel string    `json:"magnitude_label"`
	Injuries       int       `json:"injuries"`
	Fatalities     int       `json:"fatalities"`
	Loss           float64   `json:"loss"`
	CropLoss       float64   `json:"crop_loss"`
	StartLat       float64   `json:"start_lat"`
	StartLon       float64   `json:"start_lon"`
	EndLat         float64   `json:"end_lat,omitempty"`
	EndLon         float64   `json:"end_lon,omitempty"`
	Length         float64   `json:"length,omitempty"`
	Width          int       `json:"width,omitempty"`
	Counties       []int     `json:"counties"`
	Segments       int       `json:"segments"`
}

// Summarizer is implemented by every hazard item.
type Summarizer interface {
	Summary() Summary
}

// SummaryID is stable across loads of the same data, so downstream upserts
// are idempotent.
func SummaryID(h Hazard, year, eventID int) string {
	return fmt.Sprintf("%s-%d-%d", h, year, eventID)
}

func (t *Track) Summary() Summary {
	return Summary{
		ID:             SummaryID(HazardTornado, t.Year(), t.EventID()),
		Hazard:         HazardTornado.String(),
		EventID:        t.EventID(),
		Time:           t.Time(),
		States:         t.States(),
		Magnitude:      float64(t.Magnitude()),
		MagnitudeLabel: t.MagnitudeLabel(),
		Injuries:       t.Injuries(),
		Fatalities:     t.Fatalities(),
		Loss:           t.Loss(),
		CropLoss:       t.CropLoss(),
		StartLat:       t.StartLat(),
		StartLon:       t.StartLon(),
		EndLat:         t.EndLat(),
		EndLon:         t.EndLon(),
		Length:         t.Length(),
		Width:          t.Width(),
		Counties:       t.Counties(),
		Segments:       len(t.segments),
	}
}

func (r *Report) Summary() Summary {
	return Summary{
		ID:             SummaryID(r.Hazard, r.Time.Year(), r.EventID),
		Hazard:         r.Hazard.String(),
		EventID:        r.EventID,
		Time:           r.Time,
		States:         []string{r.State},
		Magnitude:      r.Magnitude,
		MagnitudeLabel: r.MagnitudeLabel(),
		Injuries:       r.Injuries,
		Fatalities:     r.Fatalities,
		Loss:           r.Loss,
		CropLoss:       r.CropLoss,
		StartLat:       r.Lat,
		StartLon:       r.Lon,
		Counties:       append([]int(nil), r.Counties...),
		Segments:       1,
	}
}

// Summaries flattens a collection of hazard items.
func Summaries[T interface {
	Item
	Summarizer
}](c *Collection[T]) []Summary {
	out := make([]Summary, 0, c.Len())
	for _, item := range c.items {
		out = append(out, item.Summary())
	}
	return out
}

// Batch is a group of summaries published together by one ingest run.
type Batch struct {
	IngestID  string
	LoadedAt  time.Time
	Summaries []Summary
}
