package domain

import "time"

// Scope modes accepted by county selection. Unknown or empty modes fall
// back to ModeNationwide rather than erroring.
const (
	ModeNationwide = "Nationwide"
	ModeRegional   = "Regional"
	ModeState      = "State"
)

// County is one row of the county reference table. Immutable once the
// catalog has finished loading; scoring code only ever reads it.
type County struct {
	Name       string  `json:"name"`
	State      string  `json:"state"` // two-letter USPS code
	FIPS       string  `json:"fips"`  // 5-digit state+county FIPS
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	Population int     `json:"population"` // 0 when unknown
}

// WindSummary condenses an hourly forecast window for one county.
// Invariants: MaxGust ≥ ExpectedGust, MaxSustained ≥ ExpectedSustained,
// all speeds ≥ 0 mph.
type WindSummary struct {
	ExpectedGust      float64   // mean gust over the sampled window, mph
	ExpectedSustained float64   // mean sustained over the sampled window, mph
	MaxGust           float64   // peak gust over the window, mph
	MaxSustained      float64   // peak sustained over the window, mph
	UpstreamTime      time.Time // origin time of the first usable sample
}

// RiskRow is the scored output unit for one county. Created once per
// scoring pass and immutable afterwards. JSON field names match the wire
// shape consumed by the dashboard clients.
type RiskRow struct {
	County            string    `json:"county"`
	State             string    `json:"state"`
	ExpectedGust      float64   `json:"expectedGust"`
	ExpectedSustained float64   `json:"expectedSustained"`
	MaxGust           float64   `json:"maxGust"`
	MaxSustained      float64   `json:"maxSustained"`
	Probability       float64   `json:"probability"` // [0, 0.95]
	Crews             int       `json:"crews"`
	Severity          int       `json:"severity"`   // 0–4
	Confidence        int       `json:"confidence"` // probability as a percent, 0–100
	Population        int       `json:"population"`
	PredictedOut      int       `json:"predicted_customers_out"`
	GeneratedAt       time.Time `json:"generatedAt"`
	Source            string    `json:"source"`
	UpstreamTime      time.Time `json:"upstreamStamp"`
}
