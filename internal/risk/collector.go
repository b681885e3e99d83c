package risk

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/divergentwx/outage-risk-service/internal/domain"
	"github.com/divergentwx/outage-risk-service/internal/observability"
	"golang.org/x/sync/errgroup"
)

// Collector fans out forecast fetches across counties with a bounded
// number of in-flight requests and scores each result into a risk row.
type Collector struct {
	forecaster domain.Forecaster
	limit      int
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewCollector creates a collector that keeps at most limit forecast
// requests in flight.
func NewCollector(forecaster domain.Forecaster, limit int, logger *slog.Logger, metrics *observability.Metrics) *Collector {
	if limit < 1 {
		limit = 1
	}
	return &Collector{
		forecaster: forecaster,
		limit:      limit,
		logger:     logger,
		metrics:    metrics,
	}
}

// Collect fetches wind data for every county and returns a row per county
// that produced usable data. A county whose fetch fails or yields no data
// is skipped, never filled with placeholder values; row order is
// unspecified and callers sort.
func (c *Collector) Collect(ctx context.Context, counties []domain.County, hours int) []domain.RiskRow {
	var (
		mu   sync.Mutex
		rows = make([]domain.RiskRow, 0, len(counties))
	)

	var g errgroup.Group
	g.SetLimit(c.limit)
	for _, county := range counties {
		g.Go(func() error {
			summary, err := c.forecaster.Fetch(ctx, county.Lat, county.Lon, hours)
			if err != nil {
				if errors.Is(err, domain.ErrNoData) {
					c.logger.Debug("no usable wind data, skipping county",
						"county", county.Name, "state", county.State)
				} else {
					c.logger.Warn("forecast fetch failed, skipping county",
						"county", county.Name, "state", county.State, "error", err)
				}
				return nil
			}

			row := domain.BuildRiskRow(county, summary)
			mu.Lock()
			rows = append(rows, row)
			mu.Unlock()
			return nil
		})
	}

	// Workers report failures by skipping, never by error.
	_ = g.Wait()
	return rows
}
