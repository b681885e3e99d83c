package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func TestClassifySeverity(t *testing.T) {
	tests := []struct {
		name         string
		maxGust      float64
		maxSustained float64
		expected     int
	}{
		{"calm", 10, 5, 0},
		{"just below tier 1", 24.9, 17.9, 0},
		{"tier 1 by gust", 25, 0, 1},
		{"tier 1 by sustained", 0, 18, 1},
		{"tier 2 by gust", 35, 0, 2},
		{"tier 2 by sustained", 0, 25, 2},
		{"tier 3 by gust", 50, 0, 3},
		{"tier 3 by sustained", 0, 35, 3},
		{"tier 4 by gust", 65, 0, 4},
		{"tier 4 by sustained", 0, 45, 4},
		{"hurricane-force gust", 96, 60, 4},
		{"sustained outranks gust", 30, 45, 4},
		{"zero wind", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifySeverity(tt.maxGust, tt.maxSustained))
		})
	}
}

func TestOutageProbability(t *testing.T) {
	tests := []struct {
		name     string
		maxGust  float64
		expected float64
	}{
		{"moderate gust", 20, 0.70},
		{"strong gust", 40, 0.90},
		{"clamped at cap", 80, 0.95},
		{"just at cap boundary", 45, 0.95},
		{"extreme gust stays clamped", 120, 0.95},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, OutageProbability(tt.maxGust), 1e-9)
		})
	}
}

func TestPredictCustomersOut(t *testing.T) {
	tests := []struct {
		name     string
		pop      int
		prob     float64
		expected int
	}{
		{"zero population", 0, 0.95, 0},
		{"negative population", -5, 0.95, 0},
		{"zero probability", 500_000, 0, 0},
		{"small county high probability", 50_000, 0.95, 2_000},       // 4% tier cap
		{"mid county high probability", 300_000, 0.95, 9_000},        // 3% tier cap
		{"large county high probability", 900_000, 0.95, 18_000},     // 2% tier cap
		{"million-plus county", 1_500_000, 0.95, 19_500},             // 1.3% tier cap
		{"metro dampening", 3_000_000, 0.95, 33_150},                 // 1.3% × 0.85
		{"low probability scales cap", 50_000, 0.16, 1_000},          // 2% × p/0.16
		{"tiny probability", 50_000, 0.01, 62},                       // scaled cap under pop×p
		{"mid probability band", 200_000, 0.25, 3_000},               // 1.5% tier cap
		{"upper-mid probability band", 200_000, 0.40, 4_400},         // 2.2% tier cap
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, PredictCustomersOut(tt.pop, tt.prob))
		})
	}
}

func TestPredictCustomersOut_NeverExceedsPopulation(t *testing.T) {
	pops := []int{1, 500, 10_000, 99_999, 100_000, 499_999, 500_000, 999_999, 1_000_000, 2_000_000, 8_000_000}
	probs := []float64{0.01, 0.05, 0.16, 0.19, 0.25, 0.35, 0.5, 0.75, 0.95, 0.99}

	for _, pop := range pops {
		for _, p := range probs {
			predicted := PredictCustomersOut(pop, p)
			assert.GreaterOrEqual(t, predicted, 0, "pop=%d p=%v", pop, p)
			assert.LessOrEqual(t, predicted, pop, "pop=%d p=%v", pop, p)
		}
	}
}

func TestCrewsForPredicted(t *testing.T) {
	tests := []struct {
		predicted int
		expected  int
	}{
		{0, 0},
		{999, 0},
		{1_000, 1},
		{9_999, 1},
		{10_000, 2},
		{25_000, 4},
		{50_000, 7},
		{100_000, 10},
		{500_000, 10},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, CrewsForPredicted(tt.predicted), "predicted=%d", tt.predicted)
	}
}

func TestCrewsForPredicted_Monotonic(t *testing.T) {
	prev := 0
	for predicted := 0; predicted <= 200_000; predicted += 250 {
		crews := CrewsForPredicted(predicted)
		assert.GreaterOrEqual(t, crews, prev, "predicted=%d", predicted)
		prev = crews
	}
}

func TestBuildRiskRow(t *testing.T) {
	fixedTime := time.Date(2025, 11, 3, 12, 30, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(fixedTime))
	defer SetClock(nil)

	upstream := time.Date(2025, 11, 3, 9, 0, 0, 0, time.UTC)
	county := County{Name: "Harris", State: "TX", FIPS: "48201", Population: 4_700_000}

	t.Run("extreme wind event", func(t *testing.T) {
		row := BuildRiskRow(county, WindSummary{
			ExpectedGust:      55.34,
			ExpectedSustained: 32.11,
			MaxGust:           80,
			MaxSustained:      50,
			UpstreamTime:      upstream,
		})

		assert.Equal(t, "Harris", row.County)
		assert.Equal(t, "TX", row.State)
		assert.Equal(t, 4, row.Severity)
		assert.Equal(t, 0.95, row.Probability)
		assert.Equal(t, 95, row.Confidence)
		assert.Equal(t, 55.3, row.ExpectedGust)
		assert.Equal(t, 32.1, row.ExpectedSustained)
		assert.Equal(t, 51_935, row.PredictedOut) // 1.3% × 0.85 metro cap
		assert.Equal(t, 7, row.Crews)
		assert.Equal(t, fixedTime, row.GeneratedAt)
		assert.Equal(t, "nws", row.Source)
		assert.Equal(t, upstream, row.UpstreamTime)
	})

	t.Run("severity zero hard clamp", func(t *testing.T) {
		// Gust 20 would yield probability 0.70 from the formula alone.
		row := BuildRiskRow(county, WindSummary{MaxGust: 20, MaxSustained: 10})

		assert.Equal(t, 0, row.Severity)
		assert.Equal(t, 0.0, row.Probability)
		assert.Equal(t, 0, row.Confidence)
		assert.Equal(t, 0, row.PredictedOut)
		assert.Equal(t, 0, row.Crews)
	})

	t.Run("unknown population", func(t *testing.T) {
		row := BuildRiskRow(County{Name: "Loving", State: "TX"}, WindSummary{MaxGust: 80, MaxSustained: 50})

		assert.Equal(t, 4, row.Severity)
		assert.Equal(t, 0.95, row.Probability)
		assert.Equal(t, 0, row.PredictedOut)
		assert.Equal(t, 0, row.Crews)
	})
}
