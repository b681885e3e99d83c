package domain

import "math"

// maxProbability caps the heuristic outage probability; this model never
// claims certainty.
const maxProbability = 0.95

// metroPopulation marks counties whose distribution grids are typically
// hardened; their tier caps are dampened.
const metroPopulation = 2_000_000

// ClassifySeverity maps peak winds to the 0–4 severity ladder.
// Either the gust or the sustained threshold qualifies a tier.
func ClassifySeverity(maxGust, maxSustained float64) int {
	switch {
	case maxGust >= 65 || maxSustained >= 45:
		return 4
	case maxGust >= 50 || maxSustained >= 35:
		return 3
	case maxGust >= 35 || maxSustained >= 25:
		return 2
	case maxGust >= 25 || maxSustained >= 18:
		return 1
	default:
		return 0
	}
}

// OutageProbability derives a heuristic outage likelihood from the peak
// gust, clamped to [0, maxProbability]. Severity 0 rows are forced to zero
// by BuildRiskRow; the formula itself does not reach zero at that boundary.
func OutageProbability(maxGust float64) float64 {
	p := 0.5 + maxGust/100.0
	if p < 0 {
		return 0
	}
	if p > maxProbability {
		return maxProbability
	}
	return p
}

// PredictCustomersOut estimates affected customers as population ×
// probability, capped by probability- and population-banded tiers. The
// bands keep low-probability events from predicting implausible outage
// counts in large counties. Result never exceeds population.
func PredictCustomersOut(pop int, prob float64) int {
	if pop <= 0 || prob <= 0 {
		return 0
	}

	p := math.Min(0.99, math.Max(0, prob))
	rawOut := float64(pop) * p
	fpop := float64(pop)

	capMult := 1.0
	if pop >= metroPopulation {
		capMult = 0.85
	}

	var tierCap float64
	switch {
	case p < 0.20:
		probScale := p / 0.16
		switch {
		case pop >= 500_000:
			tierCap = fpop * 0.01 * probScale
		case pop >= 100_000:
			tierCap = fpop * 0.015 * probScale
		default:
			tierCap = fpop * 0.02 * probScale
		}
	case p < 0.30:
		switch {
		case pop < 100_000:
			tierCap = fpop * 0.02
		case pop < 500_000:
			tierCap = fpop * 0.015
		case pop < 1_000_000:
			tierCap = fpop * 0.01
		default:
			tierCap = fpop * 0.008
		}
	case p < 0.45:
		switch {
		case pop < 100_000:
			tierCap = fpop * 0.03
		case pop < 500_000:
			tierCap = fpop * 0.022
		case pop < 1_000_000:
			tierCap = fpop * 0.015
		default:
			tierCap = fpop * 0.01
		}
	default:
		switch {
		case pop < 100_000:
			tierCap = fpop * 0.04
		case pop < 500_000:
			tierCap = fpop * 0.03
		case pop < 1_000_000:
			tierCap = fpop * 0.02
		default:
			tierCap = fpop * 0.013
		}
	}

	return int(math.Min(rawOut, tierCap*capMult))
}

// CrewsForPredicted recommends restoration crews as a step function of
// predicted customers out. Monotonically non-decreasing in predicted.
func CrewsForPredicted(predicted int) int {
	switch {
	case predicted >= 100_000:
		return 10
	case predicted >= 50_000:
		return 7
	case predicted >= 25_000:
		return 4
	case predicted >= 10_000:
		return 2
	case predicted >= 1_000:
		return 1
	default:
		return 0
	}
}

// BuildRiskRow scores one county against its wind summary. Pure aside from
// reading the package clock for the generation timestamp.
//
// Severity 0 applies a final hard clamp on probability, predicted
// customers out, and crews — after the formulas, not instead of them —
// so a calm county can never carry residual outage numbers.
func BuildRiskRow(c County, w WindSummary) RiskRow {
	severity := ClassifySeverity(w.MaxGust, w.MaxSustained)

	prob := OutageProbability(w.MaxGust)
	if severity == 0 {
		prob = 0
	}

	predicted := PredictCustomersOut(c.Population, prob)
	crews := CrewsForPredicted(predicted)

	if severity == 0 {
		predicted = 0
		crews = 0
	}

	confidence := int(math.Round(prob * 100))
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 100 {
		confidence = 100
	}

	return RiskRow{
		County:            c.Name,
		State:             c.State,
		ExpectedGust:      round1(w.ExpectedGust),
		ExpectedSustained: round1(w.ExpectedSustained),
		MaxGust:           round1(w.MaxGust),
		MaxSustained:      round1(w.MaxSustained),
		Probability:       round2(prob),
		Crews:             crews,
		Severity:          severity,
		Confidence:        confidence,
		Population:        c.Population,
		PredictedOut:      predicted,
		GeneratedAt:       clock.Now().UTC(),
		Source:            "nws",
		UpstreamTime:      w.UpstreamTime,
	}
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func round2(v float64) float64 { return math.Round(v*100) / 100 }
