package nws

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/divergentwx/outage-risk-service/internal/domain"
	"github.com/divergentwx/outage-risk-service/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserAgent = "outage-risk-test/0.0"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testClient(baseURL string) *Client {
	return NewClient(baseURL, testUserAgent, 5*time.Second, observability.NewMetricsForTesting(), discardLogger())
}

// forecastServer serves the two-step NWS flow: the points route returns an
// hourly URL on the same server, and the hourly route returns the given
// periods.
func forecastServer(t *testing.T, periods []period) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, testUserAgent, r.Header.Get("User-Agent"))

		switch {
		case r.URL.Path == "/hourly":
			var resp hourlyResponse
			resp.Properties.Periods = periods
			require.NoError(t, json.NewEncoder(w).Encode(resp))
		default:
			assert.Contains(t, r.URL.Path, "/points/")
			var resp pointsResponse
			resp.Properties.ForecastHourly = srv.URL + "/hourly"
			require.NoError(t, json.NewEncoder(w).Encode(resp))
		}
	}))
	return srv
}

func mkPeriods(n int, speed, gust string) []period {
	start := time.Date(2025, 11, 3, 6, 0, 0, 0, time.UTC)
	out := make([]period, n)
	for i := range out {
		out[i] = period{
			StartTime: start.Add(time.Duration(i) * time.Hour).Format(time.RFC3339),
			WindSpeed: speed,
			WindGust:  gust,
		}
	}
	return out
}

func TestClient_Fetch_Success(t *testing.T) {
	srv := forecastServer(t, mkPeriods(12, "20 mph", "35 mph"))
	defer srv.Close()

	c := testClient(srv.URL)
	summary, err := c.Fetch(context.Background(), 29.8578, -95.3936, 12)
	require.NoError(t, err)

	assert.Equal(t, 20.0, summary.ExpectedSustained)
	assert.Equal(t, 35.0, summary.ExpectedGust)
	assert.Equal(t, 20.0, summary.MaxSustained)
	assert.Equal(t, 35.0, summary.MaxGust)
	assert.Equal(t, time.Date(2025, 11, 3, 6, 0, 0, 0, time.UTC), summary.UpstreamTime)
	assert.GreaterOrEqual(t, summary.MaxGust, summary.ExpectedGust)
	assert.GreaterOrEqual(t, summary.MaxSustained, summary.ExpectedSustained)
}

func TestClient_Fetch_RangeStrings(t *testing.T) {
	srv := forecastServer(t, mkPeriods(6, "15 to 25 mph", "30 to 40 mph"))
	defer srv.Close()

	c := testClient(srv.URL)
	summary, err := c.Fetch(context.Background(), 29.8578, -95.3936, 6)
	require.NoError(t, err)

	// First integer run wins: "15 to 25 mph" parses as 15.
	assert.Equal(t, 15.0, summary.MaxSustained)
	assert.Equal(t, 30.0, summary.MaxGust)
}

func TestClient_Fetch_GustFallsBackToSustained(t *testing.T) {
	srv := forecastServer(t, mkPeriods(6, "25 mph", ""))
	defer srv.Close()

	c := testClient(srv.URL)
	summary, err := c.Fetch(context.Background(), 29.8578, -95.3936, 6)
	require.NoError(t, err)

	assert.Equal(t, 25.0, summary.MaxGust)
	assert.Equal(t, 25.0, summary.MaxSustained)
}

func TestClient_Fetch_WindowShorterThanRequested(t *testing.T) {
	srv := forecastServer(t, mkPeriods(4, "10 mph", "18 mph"))
	defer srv.Close()

	c := testClient(srv.URL)
	summary, err := c.Fetch(context.Background(), 29.8578, -95.3936, 48)
	require.NoError(t, err, "short series is used as-is, not rejected")
	assert.Equal(t, 18.0, summary.MaxGust)
}

func TestClient_Fetch_PeaksOutsideMeanWindow(t *testing.T) {
	periods := mkPeriods(6, "10 mph", "20 mph")
	periods[5].WindSpeed = "40 mph"
	periods[5].WindGust = "70 mph"
	srv := forecastServer(t, periods)
	defer srv.Close()

	c := testClient(srv.URL)
	summary, err := c.Fetch(context.Background(), 29.8578, -95.3936, 6)
	require.NoError(t, err)

	assert.Equal(t, 70.0, summary.MaxGust)
	assert.Equal(t, 40.0, summary.MaxSustained)
	assert.InDelta(t, 28.33, summary.ExpectedGust, 0.01)
	assert.InDelta(t, 15.0, summary.ExpectedSustained, 0.01)
}

func TestClient_Fetch_UnparseablePeriodsSkipped(t *testing.T) {
	periods := mkPeriods(6, "20 mph", "30 mph")
	periods[0].WindSpeed = "calm"
	periods[0].WindGust = ""
	srv := forecastServer(t, periods)
	defer srv.Close()

	c := testClient(srv.URL)
	summary, err := c.Fetch(context.Background(), 29.8578, -95.3936, 6)
	require.NoError(t, err)

	// Upstream timestamp comes from the first usable period, not the first period.
	assert.Equal(t, time.Date(2025, 11, 3, 7, 0, 0, 0, time.UTC), summary.UpstreamTime)
}

func TestClient_Fetch_NoPeriods(t *testing.T) {
	srv := forecastServer(t, nil)
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.Fetch(context.Background(), 29.8578, -95.3936, 24)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNoData)
}

func TestClient_Fetch_NothingParseable(t *testing.T) {
	srv := forecastServer(t, mkPeriods(6, "calm", "variable"))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.Fetch(context.Background(), 29.8578, -95.3936, 24)
	assert.ErrorIs(t, err, domain.ErrNoData)
}

func TestClient_Fetch_MissingHourlyURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"properties":{}}`)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.Fetch(context.Background(), 29.8578, -95.3936, 24)
	assert.ErrorIs(t, err, domain.ErrNoData)
}

func TestClient_Fetch_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.Fetch(context.Background(), 29.8578, -95.3936, 24)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNoData, "transport failures are not no-data")
	assert.Contains(t, err.Error(), "503")
}

func TestClient_Fetch_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testUserAgent, 50*time.Millisecond, observability.NewMetricsForTesting(), discardLogger())
	_, err := c.Fetch(context.Background(), 29.8578, -95.3936, 24)
	require.Error(t, err)
}

func TestParseMph(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		ok       bool
	}{
		{"20 mph", 20, true},
		{"15 to 25 mph", 15, true},
		{"5 mph", 5, true},
		{"105 mph", 105, true},
		{"calm", 0, false},
		{"", 0, false},
		{"mph", 0, false},
	}

	for _, tt := range tests {
		got, ok := parseMph(tt.input)
		assert.Equal(t, tt.ok, ok, "input=%q", tt.input)
		assert.Equal(t, tt.expected, got, "input=%q", tt.input)
	}
}
