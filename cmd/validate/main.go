// Command validate checks a CenPop-format county file for integrity before
// it is deployed alongside the service: parseability, duplicate FIPS codes,
// coordinate sanity, and per-state coverage.
//
// Usage:
//
//	go run ./cmd/validate -county-file CenPop2020_Mean_CO.txt
package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/divergentwx/outage-risk-service/internal/catalog"
)

// phase tracks pass/fail for one validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func (p *phase) report() {
	if p.passed() {
		fmt.Printf("PASS  %s\n", p.name)
		return
	}
	fmt.Printf("FAIL  %s\n", p.name)
	for _, e := range p.errors {
		fmt.Printf("      - %s\n", e)
	}
}

func main() {
	countyFile := flag.String("county-file", "", "path to the CenPop county file")
	flag.Parse()

	if *countyFile == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*countyFile); code != 0 {
		os.Exit(code)
	}
}

func run(path string) int {
	fmt.Println("=== County File Validation ===")
	fmt.Println()

	rawRows, err := countRawRows(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read county file: %v\n", err)
		return 1
	}

	cat, err := catalog.LoadCenPop(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: parse county file: %v\n", err)
		return 1
	}

	phases := []*phase{
		checkCoverage(cat, rawRows),
		checkDuplicates(cat),
		checkCoordinates(cat),
		checkStates(cat),
	}

	failed := 0
	for _, p := range phases {
		p.report()
		if !p.passed() {
			failed++
		}
	}

	fmt.Println()
	if failed > 0 {
		fmt.Printf("%d of %d phases failed\n", failed, len(phases))
		return 1
	}
	fmt.Printf("all %d phases passed: %d counties\n", len(phases), cat.Len())
	return 0
}

// countRawRows counts data rows in the file, parseable or not, so coverage
// can report how many were dropped during load.
func countRawRows(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1

	if _, err := cr.Read(); err != nil { // header
		return 0, err
	}
	n := 0
	for {
		_, err := cr.Read()
		if err == io.EOF {
			return n, nil
		}
		var parseErr *csv.ParseError
		if err != nil && !errors.As(err, &parseErr) {
			return n, err
		}
		// A malformed row still counts as present in the file.
		n++
	}
}

func checkCoverage(cat *catalog.Catalog, rawRows int) *phase {
	p := &phase{name: "coverage"}
	if cat.Len() == 0 {
		p.errorf("no counties loaded")
		return p
	}
	if dropped := rawRows - cat.Len(); dropped > 0 {
		p.errorf("%d of %d rows were dropped during load", dropped, rawRows)
	}
	return p
}

func checkDuplicates(cat *catalog.Catalog) *phase {
	p := &phase{name: "duplicate FIPS"}
	seen := make(map[string]string, cat.Len())
	for i := 0; i < cat.Len(); i++ {
		c := cat.County(i)
		if prev, ok := seen[c.FIPS]; ok {
			p.errorf("FIPS %s appears twice: %s and %s", c.FIPS, prev, c.Name)
			continue
		}
		seen[c.FIPS] = c.Name
	}
	return p
}

func checkCoordinates(cat *catalog.Catalog) *phase {
	p := &phase{name: "coordinates"}
	for i := 0; i < cat.Len(); i++ {
		c := cat.County(i)
		if c.Lat < -90 || c.Lat > 90 || c.Lon < -180 || c.Lon > 180 {
			p.errorf("%s, %s: coordinates out of range (%.4f, %.4f)", c.Name, c.State, c.Lat, c.Lon)
		}
		if c.Lat == 0 && c.Lon == 0 {
			p.errorf("%s, %s: null island centroid", c.Name, c.State)
		}
	}
	return p
}

func checkStates(cat *catalog.Catalog) *phase {
	p := &phase{name: "state coverage"}
	counts := make(map[string]int)
	for i := 0; i < cat.Len(); i++ {
		counts[cat.County(i).State]++
	}

	states := make([]string, 0, len(counts))
	for st := range counts {
		states = append(states, st)
	}
	sort.Strings(states)
	for _, st := range states {
		fmt.Printf("      %s: %d counties\n", st, counts[st])
	}
	if len(counts) < 2 {
		p.errorf("only %d state(s) present", len(counts))
	}
	return p
}
