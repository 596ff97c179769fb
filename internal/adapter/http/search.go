package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/storm-track-db/internal/domain"
)

type searchResponse struct {
	Data []domain.Summary `json:"data"`
	Meta searchMeta       `json:"meta"`
}

type searchMeta struct {
	Count int `json:"count"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// errBadQuery marks query parameters the client must fix.
var errBadQuery = errors.New("bad query")

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("hazard")
	h, err := domain.ParseHazard(name)
	if err != nil {
		s.respond(w, "unknown", http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}

	criteria, limit, err := parseQuery(h, r.URL.Query(), s.counties)
	if err != nil {
		s.respond(w, h.String(), http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	summaries, ok, err := s.search(h, criteria)
	switch {
	case err != nil && errors.Is(err, domain.ErrUnknownAttribute):
		s.respond(w, h.String(), http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	case err != nil:
		s.logger.Error("search failed", "hazard", h.String(), "error", err)
		s.respond(w, h.String(), http.StatusInternalServerError, errorResponse{Error: "search failed"})
		return
	case !ok:
		s.respond(w, h.String(), http.StatusServiceUnavailable, errorResponse{Error: h.String() + " data not loaded"})
		return
	}

	count := len(summaries)
	if limit > 0 && len(summaries) > limit {
		summaries = summaries[:limit]
	}
	s.respond(w, h.String(), http.StatusOK, searchResponse{Data: summaries, Meta: searchMeta{Count: count}})
}

func (s *Server) search(h domain.Hazard, criteria domain.Criteria) ([]domain.Summary, bool, error) {
	if h == domain.HazardTornado {
		tracks := s.catalog.Tornadoes()
		if tracks == nil {
			return nil, false, nil
		}
		found, err := tracks.Search(criteria)
		if err != nil {
			return nil, true, err
		}
		return domain.Summaries(found), true, nil
	}

	reports := s.catalog.Reports(h)
	if reports == nil {
		return nil, false, nil
	}
	found, err := reports.Search(criteria)
	if err != nil {
		return nil, true, err
	}
	return domain.Summaries(found), true, nil
}

func (s *Server) respond(w http.ResponseWriter, hazard string, status int, body any) {
	if s.metrics != nil {
		s.metrics.SearchRequests.WithLabelValues(hazard, strconv.Itoa(status)).Inc()
	}
	writeJSON(w, status, body)
}

// parseQuery turns query parameters into search criteria. Repeated values of
// an attribute form a set; attr_min and attr_max add numeric bounds; year,
// month and hour filter on the event time; county takes "Name,ST" pairs.
func parseQuery(h domain.Hazard, q url.Values, counties domain.CountyResolver) (domain.Criteria, int, error) {
	criteria := domain.Criteria{}
	preds := map[string][]domain.Predicate{}
	limit := 0

	for key, values := range q {
		switch {
		case key == "limit":
			n, err := strconv.Atoi(values[0])
			if err != nil || n < 0 {
				return nil, 0, fmt.Errorf("%w: limit %q", errBadQuery, values[0])
			}
			limit = n

		case key == "year" || key == "month" || key == "hour":
			p, err := timePredicate(key, values)
			if err != nil {
				return nil, 0, err
			}
			preds[domain.AttrTime] = append(preds[domain.AttrTime], p)

		case key == "county":
			if counties == nil {
				return nil, 0, fmt.Errorf("%w: county filter unavailable", errBadQuery)
			}
			refs, err := countyRefs(values)
			if err != nil {
				return nil, 0, err
			}
			c, err := domain.InCounties(counties, refs...)
			if err != nil {
				return nil, 0, fmt.Errorf("%w: %w", errBadQuery, err)
			}
			criteria[domain.AttrCounties] = c

		case strings.HasSuffix(key, "_min") || strings.HasSuffix(key, "_max"):
			attr := key[:len(key)-4]
			if !h.HasAttribute(attr) {
				return nil, 0, fmt.Errorf("%s %q: %w", h, attr, domain.ErrUnknownAttribute)
			}
			bound, err := strconv.ParseFloat(values[0], 64)
			if err != nil {
				return nil, 0, fmt.Errorf("%w: %s %q", errBadQuery, key, values[0])
			}
			p := domain.AtLeast(bound)
			if strings.HasSuffix(key, "_max") {
				p = domain.AtMost(bound)
			}
			attr = h.Resolve(attr)
			preds[attr] = append(preds[attr], p)

		default:
			if !h.HasAttribute(key) {
				return nil, 0, fmt.Errorf("%s %q: %w", h, key, domain.ErrUnknownAttribute)
			}
			set := make([]any, len(values))
			for i, v := range values {
				set[i] = queryValue(v)
			}
			criteria[h.Resolve(key)] = domain.Is(set...)
		}
	}

	for attr, ps := range preds {
		if _, dup := criteria[attr]; dup {
			return nil, 0, fmt.Errorf("%w: %s has both values and bounds", errBadQuery, attr)
		}
		criteria[attr] = domain.WhereAll(ps...)
	}
	return criteria, limit, nil
}

// queryValue reads numbers as numbers so they match numeric attributes.
func queryValue(s string) any {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

func timePredicate(key string, values []string) (domain.Predicate, error) {
	switch key {
	case "month":
		months := make([]time.Month, len(values))
		for i, v := range values {
			if n, err := strconv.Atoi(v); err == nil && n >= 1 && n <= 12 {
				months[i] = time.Month(n)
				continue
			}
			m, err := domain.ParseMonth(v)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", errBadQuery, err)
			}
			months[i] = m
		}
		return domain.ByMonth(months...), nil
	default:
		nums := make([]int, len(values))
		for i, v := range values {
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("%w: %s %q", errBadQuery, key, v)
			}
			nums[i] = n
		}
		if key == "year" {
			return domain.ByYear(nums...), nil
		}
		return domain.ByHour(nums...), nil
	}
}

func countyRefs(values []string) ([]domain.CountyRef, error) {
	refs := make([]domain.CountyRef, len(values))
	for i, v := range values {
		name, state, ok := strings.Cut(v, ",")
		if !ok || name == "" || state == "" {
			return nil, fmt.Errorf("%w: county %q, want Name,ST", errBadQuery, v)
		}
		refs[i] = domain.CountyRef{Name: strings.TrimSpace(name), State: strings.ToUpper(strings.TrimSpace(state))}
	}
	return refs, nil
}
