package collector

import (
	"math"
	"testing"
	"time"

	"btcchart/internal/model"
)

func TestLabeler_Label(t *testing.T) {
	cases := []struct {
		name string
		v    float64
		want string
	}{
		{"zero is empty", 0, ""},
		{"nan is empty", math.NaN(), ""},
		{"small price", 42000, "1/1/1970"},
		{"real timestamp", 1700000000000, "11/14/2023"},
		{"fraction truncated", 86399999.9, "1/1/1970"},
		{"next day", 86400000, "1/2/1970"},
		{"negative", -1, "12/31/1969"},
		{"out of range", 9e15, "Invalid Date"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := utcLabeler.Label(tc.v); got != tc.want {
				t.Errorf("Label(%v) = %q, want %q", tc.v, got, tc.want)
			}
		})
	}
}

func TestLabeler_Zone(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	l := Labeler{Layout: "2006-01-02", Location: tokyo}
	// 20:00 UTC on Jan 1st is already Jan 2nd in Tokyo.
	if got := l.Label(20 * 3600 * 1000); got != "1970-01-02" {
		t.Errorf("got %q", got)
	}
}

func TestStyleFor(t *testing.T) {
	usd := StyleFor(model.USD, []float64{1})
	if usd.BorderColor != "rgba(75,192,192,1)" || usd.BackgroundColor != "rgba(75,192,192,0.2)" {
		t.Errorf("usd colors = %s / %s", usd.BorderColor, usd.BackgroundColor)
	}
	eth := StyleFor(model.ETH, nil)
	if eth.BorderColor != "rgba(192,75,75,1)" || eth.BackgroundColor != "rgba(192,75,75,0.2)" {
		t.Errorf("eth colors = %s / %s", eth.BorderColor, eth.BackgroundColor)
	}
	other := StyleFor(model.Currency("EUR"), nil)
	if other.BorderColor != eth.BorderColor {
		t.Error("every non-USD currency shares the second palette")
	}
	if usd.BorderWidth != 2 || eth.BorderWidth != 2 {
		t.Error("line width must be 2")
	}
}

func TestBuildChartState_LabelsFollowFirstSeries(t *testing.T) {
	s := BuildChartState([]model.PriceSeries{
		{Currency: model.ETH, Points: []float64{0, 86400000}},
		{Currency: model.USD, Points: []float64{42000, 42100, 42200}},
	}, utcLabeler)
	if len(s.Labels) != 2 {
		t.Fatalf("labels follow the first series length, got %d", len(s.Labels))
	}
	if s.Labels[0] != "" || s.Labels[1] != "1/2/1970" {
		t.Errorf("labels = %q", s.Labels)
	}
}

func TestExtractPrices(t *testing.T) {
	got := ExtractPrices([]model.PricePoint{{Timestamp: 3, Price: 30}, {Timestamp: 1, Price: 10}})
	if len(got) != 2 || got[0] != 30 || got[1] != 10 {
		t.Errorf("order must be preserved, got %v", got)
	}
}
