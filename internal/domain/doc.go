// Package domain models wind-driven utility-outage risk for US counties.
//
// # Data Sources
//
// County reference data comes from the US Census CenPop county file
// (population-weighted centroids plus resident population), optionally
// overlaid with newer populations from the Census PEP API keyed by the
// 5-digit state+county FIPS code. Wind forecasts come from the National
// Weather Service hourly forecast API (api.weather.gov): a county centroid
// resolves to an NWS grid point, and the grid point's hourly periods carry
// sustained wind and gust speeds as strings like "15 to 25 mph".
//
// # Severity ladder
//
// A county's severity tier is derived from peak winds over the sampled
// forecast window, using thresholds aligned with NWS wind advisory and
// high-wind warning criteria:
//
//	4: gust ≥ 65 mph OR sustained ≥ 45 mph   (extreme / widespread)
//	3: gust ≥ 50 mph OR sustained ≥ 35 mph   (widespread / significant)
//	2: gust ≥ 35 mph OR sustained ≥ 25 mph   (scattered)
//	1: gust ≥ 25 mph OR sustained ≥ 18 mph   (localized)
//	0: below all thresholds                  (calm / nuisance)
//
// # Outage model
//
// Outage probability is a heuristic (not a calibrated probability) driven
// by peak gust, clamped to [0, 0.95]. Predicted customers out scales with
// population and probability but is capped by probability- and
// population-banded tiers, with a dampening multiplier for metro counties
// (population ≥ 2,000,000) whose grids are typically hardened. Crew
// recommendations are a step function of predicted customers out.
//
// Severity 0 is a hard clamp: probability, predicted customers out, and
// crews are all forced to zero after the formulas run, because the
// probability formula does not reach zero at the severity-0 boundary.
//
// # No fabricated data
//
// When forecast data cannot be obtained or parsed for a county, providers
// return an error wrapping [ErrNoData] and the county is omitted from
// results. A missing county means "no claim", never "calm".
package domain
