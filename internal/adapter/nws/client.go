// Package nws implements domain.Forecaster against the National Weather
// Service API (api.weather.gov).
//
// The fetch is two-step: /points/{lat},{lon} resolves the forecast grid
// and yields the hourly forecast URL, which returns a series of periods
// with wind speeds encoded as strings like "15 to 25 mph".
package nws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/divergentwx/outage-risk-service/internal/domain"
	"github.com/divergentwx/outage-risk-service/internal/observability"
)

const (
	minHours = 6
	maxHours = 72
)

// Client fetches and condenses NWS hourly wind forecasts.
type Client struct {
	userAgent  string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an NWS forecast client. The NWS API requires an
// identifying User-Agent; requests without one are rejected.
func NewClient(baseURL, userAgent string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// Fetch returns a wind summary for the coordinate, covering up to hours of
// the hourly series (clamped to [6, 72]; 0 means 24).
//
// Failure policy: this client never fabricates calm conditions. Reachable
// but unusable responses (no hourly URL, empty series, nothing parseable)
// return an error wrapping domain.ErrNoData; transport and HTTP-status
// failures return ordinary errors. Either way the caller drops the county.
func (c *Client) Fetch(ctx context.Context, lat, lon float64, hours int) (domain.WindSummary, error) {
	start := time.Now()
	summary, err := c.fetch(ctx, lat, lon, hours)
	c.metrics.ForecastDuration.Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		c.metrics.ForecastRequests.WithLabelValues("success").Inc()
	case errors.Is(err, domain.ErrNoData):
		c.metrics.ForecastRequests.WithLabelValues("no_data").Inc()
	default:
		c.metrics.ForecastRequests.WithLabelValues("error").Inc()
	}
	return summary, err
}

func (c *Client) fetch(ctx context.Context, lat, lon float64, hours int) (domain.WindSummary, error) {
	if hours <= 0 {
		hours = 24
	}
	if hours < minHours {
		hours = minHours
	}
	if hours > maxHours {
		hours = maxHours
	}

	var points pointsResponse
	pointsURL := fmt.Sprintf("%s/points/%.4f,%.4f", c.baseURL, lat, lon)
	if err := c.doGet(ctx, pointsURL, &points); err != nil {
		return domain.WindSummary{}, fmt.Errorf("resolve grid point: %w", err)
	}
	if points.Properties.ForecastHourly == "" {
		return domain.WindSummary{}, fmt.Errorf("points response missing forecastHourly: %w", domain.ErrNoData)
	}

	var hourly hourlyResponse
	if err := c.doGet(ctx, points.Properties.ForecastHourly, &hourly); err != nil {
		return domain.WindSummary{}, fmt.Errorf("fetch hourly forecast: %w", err)
	}

	return summarize(hourly.Properties.Periods, hours)
}

// summarize condenses up to hours of the period series into a WindSummary.
// Periods where neither speed parses are skipped; a missing gust falls
// back to the sustained speed for that hour.
func summarize(periods []period, hours int) (domain.WindSummary, error) {
	if len(periods) == 0 {
		return domain.WindSummary{}, fmt.Errorf("hourly forecast has no periods: %w", domain.ErrNoData)
	}

	n := len(periods)
	if hours < n {
		n = hours
	}

	var gusts, sustained []float64
	var upstream time.Time

	for i := 0; i < n; i++ {
		p := periods[i]

		spd, spdOK := parseMph(p.WindSpeed)
		gst, gstOK := parseMph(p.WindGust)
		if !spdOK && !gstOK {
			continue
		}

		if upstream.IsZero() {
			if ts, err := time.Parse(time.RFC3339, p.StartTime); err == nil {
				upstream = ts.UTC()
			}
		}

		if spdOK {
			sustained = append(sustained, spd)
		}
		if gstOK {
			gusts = append(gusts, gst)
		} else {
			gusts = append(gusts, spd)
		}
	}

	if len(gusts) == 0 || len(sustained) == 0 {
		return domain.WindSummary{}, fmt.Errorf("hourly forecast has no usable wind values: %w", domain.ErrNoData)
	}

	maxGust, maxSustained := gusts[0], sustained[0]
	for _, g := range gusts[1:] {
		if g > maxGust {
			maxGust = g
		}
	}
	for _, s := range sustained[1:] {
		if s > maxSustained {
			maxSustained = s
		}
	}

	// Expected values are means over the paired prefix of both series.
	count := len(gusts)
	if len(sustained) < count {
		count = len(sustained)
	}
	var gustSum, sustainedSum float64
	for i := 0; i < count; i++ {
		gustSum += gusts[i]
		sustainedSum += sustained[i]
	}

	if upstream.IsZero() {
		upstream = time.Now().UTC()
	}

	return domain.WindSummary{
		ExpectedGust:      gustSum / float64(count),
		ExpectedSustained: sustainedSum / float64(count),
		MaxGust:           maxGust,
		MaxSustained:      maxSustained,
		UpstreamTime:      upstream,
	}, nil
}

// parseMph extracts a speed from NWS strings like "20 mph" or
// "15 to 25 mph", using the first run of digits found.
func parseMph(value string) (float64, bool) {
	var digits int
	var speed float64
	for _, r := range value {
		if r >= '0' && r <= '9' {
			speed = speed*10 + float64(r-'0')
			digits++
			continue
		}
		if digits > 0 {
			break
		}
	}
	if digits == 0 {
		return 0, false
	}
	return speed, true
}

func (c *Client) doGet(ctx context.Context, fullURL string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/geo+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("nws request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("nws API error: status %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode response: %w: %w", err, domain.ErrNoData)
	}
	return nil
}

// NWS API response types (the subset this service reads).

type pointsResponse struct {
	Properties struct {
		ForecastHourly string `json:"forecastHourly"`
	} `json:"properties"`
}

type hourlyResponse struct {
	Properties struct {
		Periods []period `json:"periods"`
	} `json:"properties"`
}

type period struct {
	StartTime string `json:"startTime"`
	WindSpeed string `json:"windSpeed"`
	WindGust  string `json:"windGust"`
}
