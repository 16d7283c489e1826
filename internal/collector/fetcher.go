package collector

import (
	"context"

	"btcchart/internal/model"
)

// Fetcher defines the interface for fetching price history.
type Fetcher interface {
	// FetchMarketChart returns the [timestamp, price] pairs of coin quoted in vs
	// over the given range, in the order the upstream returned them.
	FetchMarketChart(ctx context.Context, coin string, vs model.Currency, days model.TimeRange) ([]model.PricePoint, error)
	Name() string
}
