package collector

import (
	"context"
	"fmt"
	"sync"

	"btcchart/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Responses map[model.Currency][]model.PricePoint
	Errors    map[model.Currency]error

	mu    sync.Mutex
	calls []MockCall
}

// MockCall records the arguments of one FetchMarketChart call.
type MockCall struct {
	Coin     string
	Currency model.Currency
	Days     model.TimeRange
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchMarketChart(ctx context.Context, coin string, vs model.Currency, days model.TimeRange) ([]model.PricePoint, error) {
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{Coin: coin, Currency: vs, Days: days})
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := m.Errors[vs]; ok && err != nil {
		return nil, err
	}
	points, ok := m.Responses[vs]
	if !ok {
		return nil, fmt.Errorf("mock: no response for %s", vs)
	}
	return append([]model.PricePoint(nil), points...), nil
}

// Calls returns a copy of the recorded calls.
func (m *MockFetcher) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockCall(nil), m.calls...)
}
