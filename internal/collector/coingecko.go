package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"btcchart/internal/model"
)

// CoinGeckoFetcher implements Fetcher using the public CoinGecko REST API.
type CoinGeckoFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewCoinGeckoFetcher creates a new fetcher with optional proxy support.
func NewCoinGeckoFetcher(baseURL, apiKey, proxyURL string, timeout time.Duration) *CoinGeckoFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &CoinGeckoFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

func (f *CoinGeckoFetcher) Name() string { return "coingecko" }

// marketChart is the part of the market_chart response we read. Pointers tell
// a missing field or a null element apart from a zero.
type marketChart struct {
	Prices *[][]*float64 `json:"prices"`
}

func (f *CoinGeckoFetcher) FetchMarketChart(ctx context.Context, coin string, vs model.Currency, days model.TimeRange) ([]model.PricePoint, error) {
	q := url.Values{}
	q.Set("vs_currency", vs.Query())
	q.Set("days", days.Days())
	endpoint := fmt.Sprintf("%s/api/v3/coins/%s/market_chart?%s", f.BaseURL, url.PathEscape(coin), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "btcchart/1.0")
	if f.APIKey != "" {
		req.Header.Set("x-cg-demo-api-key", f.APIKey)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("coingecko fetch [%s]: %w", vs, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("coingecko read body [%s]: %w", vs, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("coingecko [%s]: status %d, body: %s", vs, resp.StatusCode, string(body))
	}

	var chart marketChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("coingecko decode [%s]: %w", vs, err)
	}
	if chart.Prices == nil {
		return nil, fmt.Errorf("coingecko [%s]: response has no prices", vs)
	}

	points := make([]model.PricePoint, 0, len(*chart.Prices))
	for i, pair := range *chart.Prices {
		if len(pair) != 2 {
			return nil, fmt.Errorf("coingecko [%s]: malformed prices[%d]: %d elements, want 2", vs, i, len(pair))
		}
		if pair[0] == nil || pair[1] == nil {
			return nil, fmt.Errorf("coingecko [%s]: malformed prices[%d]: null element", vs, i)
		}
		points = append(points, model.PricePoint{Timestamp: int64(*pair[0]), Price: *pair[1]})
	}
	return points, nil
}
