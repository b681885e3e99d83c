package risk

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/divergentwx/outage-risk-service/internal/catalog"
	"github.com/divergentwx/outage-risk-service/internal/domain"
	"github.com/divergentwx/outage-risk-service/internal/observability"
)

const (
	defaultHours  = 24
	minHours      = 6
	maxHours      = 72
	defaultSample = 15
)

// Query is a risk request after route-level parsing. Zero values for Hours
// and Sample select the defaults.
type Query struct {
	Mode    string
	Region  string
	State   string
	Hours   int
	Sample  int
	NoCache bool
}

// Publisher emits computed rows to a downstream sink. Implementations must
// be safe for concurrent use.
type Publisher interface {
	PublishRows(ctx context.Context, rows []domain.RiskRow) error
}

// Aggregator answers risk queries: it scopes the county catalog, fans out
// forecast fetches, scores and sorts the results, and memoizes them per
// query signature. Safe for concurrent use.
type Aggregator struct {
	catalog   *catalog.Catalog
	collector *Collector
	cache     *Cache
	publisher Publisher
	maxSample int
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewAggregator wires the query pipeline. publisher may be nil when no
// downstream sink is configured.
func NewAggregator(cat *catalog.Catalog, collector *Collector, cache *Cache, publisher Publisher, maxSample int, logger *slog.Logger, metrics *observability.Metrics) *Aggregator {
	if maxSample < 1 {
		maxSample = defaultSample
	}
	return &Aggregator{
		catalog:   cat,
		collector: collector,
		cache:     cache,
		publisher: publisher,
		maxSample: maxSample,
		logger:    logger,
		metrics:   metrics,
	}
}

// Rows computes (or returns cached) risk rows for the query, sorted worst
// first. Counties without usable forecast data are absent from the result.
func (a *Aggregator) Rows(ctx context.Context, q Query) []domain.RiskRow {
	q = a.clamp(q)
	key := Key{
		Mode:   catalog.NormalizeMode(q.Mode),
		Region: strings.ToLower(strings.TrimSpace(q.Region)),
		State:  catalog.NormalizeState(q.State),
		Hours:  q.Hours,
		Sample: q.Sample,
	}

	if q.NoCache {
		a.metrics.CacheLookups.WithLabelValues("bypass").Inc()
	} else if rows, ok := a.cache.Get(key); ok {
		a.metrics.CacheLookups.WithLabelValues("hit").Inc()
		return rows
	} else {
		a.metrics.CacheLookups.WithLabelValues("miss").Inc()
	}

	idx := a.catalog.Select(q.Mode, q.Region, q.State, q.Sample)
	if len(idx) == 0 {
		a.logger.Info("query matched no counties",
			"mode", key.Mode, "region", key.Region, "state", key.State)
		return []domain.RiskRow{}
	}

	start := time.Now()
	rows := a.collector.Collect(ctx, a.catalog.Counties(idx), q.Hours)
	sortRows(rows)
	a.metrics.ComputeDuration.Observe(time.Since(start).Seconds())
	a.metrics.RowsReturned.Observe(float64(len(rows)))

	a.logger.Info("computed risk rows",
		"mode", key.Mode, "region", key.Region, "state", key.State,
		"hours", q.Hours, "requested", len(idx), "returned", len(rows),
		"duration", time.Since(start))

	a.cache.Put(key, rows)
	a.publish(ctx, rows)
	return rows
}

// CheckReadiness reports whether the aggregator can serve queries.
func (a *Aggregator) CheckReadiness(_ context.Context) error {
	if a.catalog.Len() == 0 {
		return errors.New("county catalog is empty")
	}
	return nil
}

func (a *Aggregator) clamp(q Query) Query {
	if q.Hours == 0 {
		q.Hours = defaultHours
	}
	if q.Hours < minHours {
		q.Hours = minHours
	}
	if q.Hours > maxHours {
		q.Hours = maxHours
	}
	if q.Sample == 0 {
		q.Sample = defaultSample
	}
	if q.Sample < 1 {
		q.Sample = 1
	}
	if q.Sample > a.maxSample {
		q.Sample = a.maxSample
	}
	return q
}

func (a *Aggregator) publish(ctx context.Context, rows []domain.RiskRow) {
	if a.publisher == nil || len(rows) == 0 {
		return
	}
	if err := a.publisher.PublishRows(ctx, rows); err != nil {
		a.metrics.PublishErrors.Inc()
		a.logger.Warn("failed to publish risk rows", "rows", len(rows), "error", err)
		return
	}
	a.metrics.RowsPublished.Add(float64(len(rows)))
}

// sortRows orders worst-first: severity, then predicted outages, then max
// gust, all descending.
func sortRows(rows []domain.RiskRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Severity != rows[j].Severity {
			return rows[i].Severity > rows[j].Severity
		}
		if rows[i].PredictedOut != rows[j].PredictedOut {
			return rows[i].PredictedOut > rows[j].PredictedOut
		}
		return rows[i].MaxGust > rows[j].MaxGust
	})
}
