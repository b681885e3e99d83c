package domain

import (
	"context"
	"errors"
)

// ErrNoData marks a forecast response that was reachable but unusable:
// empty hourly series, no parseable wind values, or a missing hourly URL.
// Callers drop the county instead of inventing calm conditions.
var ErrNoData = errors.New("no usable wind data")

// Forecaster fetches an hourly wind forecast for a coordinate and condenses
// it into a WindSummary covering up to hours of the series.
type Forecaster interface {
	Fetch(ctx context.Context, lat, lon float64, hours int) (WindSummary, error)
}
