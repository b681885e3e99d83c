package catalog

import (
	"strings"

	"github.com/divergentwx/outage-risk-service/internal/domain"
)

// censusRegions are the four official US Census regions. A fixed slice
// (not a map) so Regional selections iterate states in a stable order.
var censusRegions = []struct {
	name   string
	states []string
}{
	{"Northeast", []string{"CT", "ME", "MA", "NH", "RI", "VT", "NJ", "NY", "PA"}},
	{"Midwest", []string{"IL", "IN", "MI", "OH", "WI", "IA", "KS", "MN", "MO", "NE", "ND", "SD"}},
	{"South", []string{"DE", "FL", "GA", "MD", "NC", "SC", "VA", "DC", "WV", "AL", "KY", "MS", "TN", "AR", "LA", "OK", "TX"}},
	{"West", []string{"AZ", "CO", "ID", "MT", "NV", "NM", "UT", "WY", "AK", "CA", "HI", "OR", "WA"}},
}

// RegionStates resolves a region name (case-insensitive) to its member
// state codes. ok is false for unrecognized regions.
func RegionStates(region string) (states []string, ok bool) {
	region = strings.TrimSpace(region)
	for _, r := range censusRegions {
		if strings.EqualFold(r.name, region) {
			return r.states, true
		}
	}
	return nil, false
}

// NormalizeMode maps a requested mode string onto one of the domain mode
// constants. Accepts the aliases "National" and "Region"; anything
// unrecognized (including empty) falls back to Nationwide by policy.
func NormalizeMode(mode string) string {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "state":
		return domain.ModeState
	case "regional", "region":
		return domain.ModeRegional
	default:
		return domain.ModeNationwide
	}
}

var stateAbbrByName = map[string]string{
	"alabama": "AL", "alaska": "AK", "arizona": "AZ", "arkansas": "AR",
	"california": "CA", "colorado": "CO", "connecticut": "CT", "delaware": "DE",
	"district of columbia": "DC", "florida": "FL", "georgia": "GA", "hawaii": "HI",
	"idaho": "ID", "illinois": "IL", "indiana": "IN", "iowa": "IA",
	"kansas": "KS", "kentucky": "KY", "louisiana": "LA", "maine": "ME",
	"maryland": "MD", "massachusetts": "MA", "michigan": "MI", "minnesota": "MN",
	"mississippi": "MS", "missouri": "MO", "montana": "MT", "nebraska": "NE",
	"nevada": "NV", "new hampshire": "NH", "new jersey": "NJ", "new mexico": "NM",
	"new york": "NY", "north carolina": "NC", "north dakota": "ND", "ohio": "OH",
	"oklahoma": "OK", "oregon": "OR", "pennsylvania": "PA", "puerto rico": "PR",
	"rhode island": "RI", "south carolina": "SC", "south dakota": "SD",
	"tennessee": "TN", "texas": "TX", "utah": "UT", "vermont": "VT",
	"virginia": "VA", "washington": "WA", "west virginia": "WV",
	"wisconsin": "WI", "wyoming": "WY",
}

// validAbbrs is derived from stateAbbrByName so the two can't drift.
var validAbbrs = func() map[string]bool {
	m := make(map[string]bool, len(stateAbbrByName))
	for _, abbr := range stateAbbrByName {
		m[abbr] = true
	}
	return m
}()

// NormalizeState accepts a two-letter USPS code or a full state name, in
// any case, and returns the canonical upper-case code. Returns "" when the
// input names no known state.
func NormalizeState(state string) string {
	s := strings.TrimSpace(state)
	if s == "" {
		return ""
	}
	if len(s) == 2 {
		abbr := strings.ToUpper(s)
		if validAbbrs[abbr] {
			return abbr
		}
		return ""
	}
	return stateAbbrByName[strings.ToLower(s)]
}
