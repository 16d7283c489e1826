package collector

import (
	"context"
	"errors"
	"fmt"

	"btcchart/internal/model"

	"golang.org/x/sync/errgroup"
)

// ErrFetchCycleFailed is matched by every error returned from Collect.
var ErrFetchCycleFailed = errors.New("fetch cycle failed")

// FetchCycleError reports the currency whose request sank the cycle.
type FetchCycleError struct {
	Currency model.Currency
	Err      error
}

func (e *FetchCycleError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrFetchCycleFailed, e.Currency, e.Err)
}

func (e *FetchCycleError) Unwrap() error { return e.Err }

func (e *FetchCycleError) Is(target error) bool { return target == ErrFetchCycleFailed }

// Collector runs the fetch and transform pipeline for one selection.
type Collector struct {
	Fetcher Fetcher
	Coin    string
	Labeler Labeler
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, coin string, labeler Labeler) *Collector {
	return &Collector{Fetcher: fetcher, Coin: coin, Labeler: labeler}
}

// Collect issues one concurrent request per selected currency and shapes the
// results into a ChartState. Any failed request fails the whole cycle and no
// partial state is returned. An empty selection yields the empty state with no
// request issued.
func (c *Collector) Collect(ctx context.Context, sel model.Selection) (*model.ChartState, error) {
	if len(sel.Currencies) == 0 {
		empty := model.EmptyChartState()
		return &empty, nil
	}

	series := make([]model.PriceSeries, len(sel.Currencies))
	g, gctx := errgroup.WithContext(ctx)
	for i, cur := range sel.Currencies {
		g.Go(func() error {
			points, err := c.Fetcher.FetchMarketChart(gctx, c.Coin, cur, sel.Range)
			if err != nil {
				return &FetchCycleError{Currency: cur, Err: err}
			}
			series[i] = model.PriceSeries{Currency: cur, Points: ExtractPrices(points)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	state := BuildChartState(series, c.Labeler)
	return &state, nil
}

// PointCount sums the values of all datasets.
func PointCount(state *model.ChartState) int {
	if state == nil {
		return 0
	}
	n := 0
	for _, d := range state.Datasets {
		n += len(d.Data)
	}
	return n
}
