package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"btcchart/internal/model"
)

func TestCoinGeckoFetcher_FetchMarketChart(t *testing.T) {
	var gotPath, gotQuery, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotKey = r.Header.Get("x-cg-demo-api-key")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"prices":[[1700000000000,42000.5],[1700003600000,42100]],"market_caps":[],"total_volumes":[]}`))
	}))
	defer srv.Close()

	f := NewCoinGeckoFetcher(srv.URL, "secret", "", 5*time.Second)
	points, err := f.FetchMarketChart(context.Background(), "bitcoin", model.ETH, model.Range1W)
	if err != nil {
		t.Fatalf("FetchMarketChart: %v", err)
	}
	if gotPath != "/api/v3/coins/bitcoin/market_chart" {
		t.Errorf("path = %q", gotPath)
	}
	if gotQuery != "days=7&vs_currency=eth" {
		t.Errorf("query = %q", gotQuery)
	}
	if gotKey != "secret" {
		t.Errorf("api key header = %q", gotKey)
	}
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	if points[0].Timestamp != 1700000000000 || points[0].Price != 42000.5 {
		t.Errorf("first point = %+v", points[0])
	}
}

func TestCoinGeckoFetcher_Failures(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"http error", http.StatusTooManyRequests, `{"status":{"error_code":429}}`, "status 429"},
		{"missing prices", http.StatusOK, `{"market_caps":[]}`, "no prices"},
		{"prices not array", http.StatusOK, `{"prices":"nope"}`, "decode"},
		{"bad pair", http.StatusOK, `{"prices":[[1,2,3]]}`, "want 2"},
		{"null price", http.StatusOK, `{"prices":[[1700000000000,null]]}`, "malformed"},
		{"null timestamp", http.StatusOK, `{"prices":[[null,42000]]}`, "malformed"},
		{"null pair", http.StatusOK, `{"prices":[null]}`, "malformed"},
		{"not json", http.StatusOK, `<html>`, "decode"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			f := NewCoinGeckoFetcher(srv.URL, "", "", 5*time.Second)
			_, err := f.FetchMarketChart(context.Background(), "bitcoin", model.USD, model.Range1M)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error %q does not contain %q", err, tc.wantErr)
			}
		})
	}
}

func TestCoinGeckoFetcher_EmptyPrices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"prices":[]}`))
	}))
	defer srv.Close()

	f := NewCoinGeckoFetcher(srv.URL, "", "", 5*time.Second)
	points, err := f.FetchMarketChart(context.Background(), "bitcoin", model.USD, model.Range1H)
	if err != nil {
		t.Fatalf("FetchMarketChart: %v", err)
	}
	if len(points) != 0 {
		t.Errorf("expected no points, got %d", len(points))
	}
}

func TestCoinGeckoFetcher_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"prices":[]}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := NewCoinGeckoFetcher(srv.URL, "", "", 5*time.Second)
	if _, err := f.FetchMarketChart(ctx, "bitcoin", model.USD, model.Range1H); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
