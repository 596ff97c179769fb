// Package fips reads the census county FIPS table and translates between
// county codes and county names.
package fips

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/storm-track-db/internal/domain"
)

// ErrNotFound is returned when no county matches a lookup.
var ErrNotFound = errors.New("county not found")

// County is one row of the county table.
type County struct {
	State      string
	StateFIPS  int
	CountyFIPS int
	Name       string // without the trailing "County", "Parish", ...
}

// Code is the state-prefixed county code used in tornado records.
func (c *County) Code() int { return c.StateFIPS*1000 + c.CountyFIPS }

func (c *County) Ref() domain.CountyRef {
	return domain.CountyRef{Name: c.Name, State: c.State}
}

// Get exposes the county columns so the table can be searched like any other
// collection.
func (c *County) Get(attr string) (any, error) {
	switch attr {
	case "state":
		return c.State, nil
	case "state_fips":
		return c.StateFIPS, nil
	case "county_fips":
		return c.CountyFIPS, nil
	case "county":
		return c.Name, nil
	case "code":
		return c.Code(), nil
	default:
		return nil, fmt.Errorf("county %q: %w", attr, domain.ErrUnknownAttribute)
	}
}

// Table is the full county table. It satisfies domain.CountyResolver.
type Table struct {
	counties *domain.Collection[*County]
}

// Load reads the county table from a file.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open county table: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads headerless rows of state, state FIPS, county FIPS, county name
// and class code.
func Parse(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 5
	cr.TrimLeadingSpace = true

	var counties []*County
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("county table line %d: %w", line, err)
		}
		c, err := parseCounty(rec)
		if err != nil {
			return nil, fmt.Errorf("county table line %d: %w", line, err)
		}
		counties = append(counties, c)
	}
	return &Table{counties: domain.NewCollection(counties)}, nil
}

func parseCounty(rec []string) (*County, error) {
	stateFIPS, err := strconv.Atoi(rec[1])
	if err != nil {
		return nil, fmt.Errorf("state fips %q: %w", rec[1], err)
	}
	countyFIPS, err := strconv.Atoi(rec[2])
	if err != nil {
		return nil, fmt.Errorf("county fips %q: %w", rec[2], err)
	}
	name := rec[3]
	if i := strings.LastIndexByte(name, ' '); i > 0 {
		name = name[:i]
	}
	return &County{State: rec[0], StateFIPS: stateFIPS, CountyFIPS: countyFIPS, Name: name}, nil
}

func (t *Table) Len() int { return t.counties.Len() }

// LookupName finds a county by name within a state.
func (t *Table) LookupName(name, state string) (*County, error) {
	return t.first(domain.Criteria{"county": domain.Is(name), "state": domain.Is(state)})
}

// LookupCode finds a county by its state-prefixed code.
func (t *Table) LookupCode(code int) (*County, error) {
	st, cty := code/1000, code%1000
	return t.first(domain.Criteria{"state_fips": domain.Is(st), "county_fips": domain.Is(cty)})
}

func (t *Table) first(criteria domain.Criteria) (*County, error) {
	found, err := t.counties.Search(criteria)
	if err != nil {
		return nil, err
	}
	if found.Len() == 0 {
		return nil, ErrNotFound
	}
	return found.At(0), nil
}

func (t *Table) CountyCode(name, state string) (int, error) {
	c, err := t.LookupName(name, state)
	if err != nil {
		return 0, fmt.Errorf("%s, %s: %w", name, state, err)
	}
	return c.Code(), nil
}

func (t *Table) CountyName(code int) (domain.CountyRef, error) {
	c, err := t.LookupCode(code)
	if err != nil {
		return domain.CountyRef{}, fmt.Errorf("code %05d: %w", code, err)
	}
	return c.Ref(), nil
}
