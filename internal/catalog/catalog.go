// Package catalog loads and indexes the US county reference table.
//
// The canonical source is the Census CenPop county file
// (CenPop2020_Mean_CO.txt): one CSV row per county with the
// population-weighted centroid and resident population. Populations can be
// overlaid later from the Census PEP API via SetPopulation, keyed by FIPS.
//
// A Catalog is mutable only during startup (load, then optional overlay).
// Once serving begins it is read-only and safe for concurrent use.
package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/divergentwx/outage-risk-service/internal/domain"
)

// Catalog is the county reference table with state and FIPS indexes.
type Catalog struct {
	counties []domain.County
	stateIdx map[string][]int
	fipsIdx  map[string]int
}

// New builds a catalog from an already-assembled county list.
func New(counties []domain.County) *Catalog {
	c := &Catalog{
		counties: counties,
		stateIdx: make(map[string][]int),
		fipsIdx:  make(map[string]int, len(counties)),
	}
	for i, county := range counties {
		c.stateIdx[county.State] = append(c.stateIdx[county.State], i)
		if county.FIPS != "" {
			c.fipsIdx[county.FIPS] = i
		}
	}
	return c
}

// LoadCenPop reads a CenPop-format county file from disk.
func LoadCenPop(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open county file: %w", err)
	}
	defer f.Close()

	c, err := ReadCenPop(f)
	if err != nil {
		return nil, fmt.Errorf("parse county file %s: %w", path, err)
	}
	return c, nil
}

// ReadCenPop parses CenPop CSV content. Column order is taken from the
// header row; rows with unknown state names or unparseable fields are
// skipped rather than failing the load.
func ReadCenPop(r io.Reader) (*Catalog, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	col := func(name string) int {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), name) {
				return i
			}
		}
		return -1
	}

	stateFP := col("STATEFP")
	countyFP := col("COUNTYFP")
	counName := col("COUNAME")
	stName := col("STNAME")
	popCol := col("POPULATION")
	latCol := col("LATITUDE")
	lonCol := col("LONGITUDE")
	for name, idx := range map[string]int{
		"STATEFP": stateFP, "COUNTYFP": countyFP, "COUNAME": counName,
		"STNAME": stName, "POPULATION": popCol, "LATITUDE": latCol, "LONGITUDE": lonCol,
	} {
		if idx < 0 {
			return nil, fmt.Errorf("missing column %s in header %v", name, header)
		}
	}

	var counties []domain.County
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed row; skip it like any other bad record.
			continue
		}

		max := stateFP
		for _, i := range []int{countyFP, counName, stName, popCol, latCol, lonCol} {
			if i > max {
				max = i
			}
		}
		if len(rec) <= max {
			continue
		}

		abbr := NormalizeState(rec[stName])
		if abbr == "" {
			continue
		}
		lat, errLat := strconv.ParseFloat(strings.TrimSpace(rec[latCol]), 64)
		lon, errLon := strconv.ParseFloat(strings.TrimSpace(rec[lonCol]), 64)
		pop, errPop := strconv.Atoi(strings.TrimSpace(rec[popCol]))
		if errLat != nil || errLon != nil || errPop != nil {
			continue
		}

		counties = append(counties, domain.County{
			Name:       strings.TrimSpace(rec[counName]),
			State:      abbr,
			FIPS:       strings.TrimSpace(rec[stateFP]) + strings.TrimSpace(rec[countyFP]),
			Lat:        lat,
			Lon:        lon,
			Population: pop,
		})
	}

	return New(counties), nil
}

// Len reports the number of counties loaded.
func (c *Catalog) Len() int { return len(c.counties) }

// County returns the county at index i.
func (c *Catalog) County(i int) domain.County { return c.counties[i] }

// Counties materializes the counties for a list of indices, in order.
func (c *Catalog) Counties(idx []int) []domain.County {
	out := make([]domain.County, len(idx))
	for i, j := range idx {
		out[i] = c.counties[j]
	}
	return out
}

// SetPopulation overlays a newer population figure for the county with the
// given FIPS code. Returns false if the FIPS is unknown. Only valid during
// startup, before the catalog is shared.
func (c *Catalog) SetPopulation(fips string, pop int) bool {
	i, ok := c.fipsIdx[fips]
	if !ok || pop < 0 {
		return false
	}
	c.counties[i].Population = pop
	return true
}

// Select resolves a scope into county indices, sorted by population
// descending and truncated to sample entries (largest kept). Unknown or
// empty modes fall back to Nationwide; an unknown state or region yields
// an empty selection, which is not an error.
func (c *Catalog) Select(mode, region, state string, sample int) []int {
	var idx []int
	switch NormalizeMode(mode) {
	case domain.ModeState:
		abbr := NormalizeState(state)
		if abbr == "" {
			return nil
		}
		idx = append(idx, c.stateIdx[abbr]...)
	case domain.ModeRegional:
		states, ok := RegionStates(region)
		if !ok {
			return nil
		}
		for _, st := range states {
			idx = append(idx, c.stateIdx[st]...)
		}
	default:
		idx = make([]int, len(c.counties))
		for i := range idx {
			idx[i] = i
		}
	}

	if len(idx) == 0 {
		return nil
	}

	// Stable sort keeps equal-population counties in load order, so
	// identical inputs always produce identical output.
	sort.SliceStable(idx, func(a, b int) bool {
		return c.counties[idx[a]].Population > c.counties[idx[b]].Population
	})

	if sample > 0 && sample < len(idx) {
		idx = idx[:sample]
	}
	return idx
}
