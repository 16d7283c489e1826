package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrUnsupportedCurrency  = errors.New("unsupported currency")
	ErrUnsupportedTimeRange = errors.New("unsupported time range")
)

// Currency is a quote currency the bitcoin price can be charted against.
type Currency string

const (
	USD Currency = "USD"
	ETH Currency = "ETH"
)

// SupportedCurrencies returns the currencies offered as checkboxes, in display order.
func SupportedCurrencies() []Currency {
	return []Currency{USD, ETH}
}

// ParseCurrency accepts a currency code in any case.
func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	for _, sc := range SupportedCurrencies() {
		if c == sc {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedCurrency, s)
}

// Query returns the lower-cased code sent as vs_currency.
func (c Currency) Query() string { return strings.ToLower(string(c)) }

// TimeRange is the day-count passed upstream. 1H and 24H are encoded as 1 and 24
// and forwarded verbatim, so "24H" actually requests 24 days.
type TimeRange int

const (
	Range1H  TimeRange = 1
	Range24H TimeRange = 24
	Range1W  TimeRange = 7
	Range1M  TimeRange = 30
	Range3M  TimeRange = 90
	Range6M  TimeRange = 180
	Range1Y  TimeRange = 365
)

var rangeLabels = map[TimeRange]string{
	Range1H:  "1H",
	Range24H: "24H",
	Range1W:  "1W",
	Range1M:  "1M",
	Range3M:  "3M",
	Range6M:  "6M",
	Range1Y:  "1Y",
}

// TimeRanges returns the ranges in button order.
func TimeRanges() []TimeRange {
	return []TimeRange{Range1H, Range24H, Range1W, Range1M, Range3M, Range6M, Range1Y}
}

// Valid reports whether r is one of the seven supported ranges.
func (r TimeRange) Valid() bool {
	_, ok := rangeLabels[r]
	return ok
}

// Label returns the button caption, e.g. "1M" for 30.
func (r TimeRange) Label() string {
	if l, ok := rangeLabels[r]; ok {
		return l
	}
	return strconv.Itoa(int(r))
}

// Days returns the value of the days query parameter.
func (r TimeRange) Days() string { return strconv.Itoa(int(r)) }

// ParseTimeRange accepts either the numeric code ("30") or the button label ("1M").
func ParseTimeRange(s string) (TimeRange, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if r := TimeRange(n); r.Valid() {
			return r, nil
		}
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedTimeRange, s)
	}
	for r, l := range rangeLabels {
		if strings.EqualFold(l, s) {
			return r, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedTimeRange, s)
}

// PricePoint is one [timestamp, price] pair of a market_chart response.
type PricePoint struct {
	Timestamp int64 // epoch milliseconds
	Price     float64
}

// PriceSeries holds the price values of one currency for a fetch cycle.
type PriceSeries struct {
	Currency Currency
	Points   []float64
}

// Selection is a snapshot of the user's choices.
type Selection struct {
	Currencies []Currency `json:"currencies"`
	Range      TimeRange  `json:"range"`
}

// DefaultSelection is the state at mount: USD over one month.
func DefaultSelection() Selection {
	return Selection{Currencies: []Currency{USD}, Range: Range1M}
}

// Has reports whether c is selected.
func (s Selection) Has(c Currency) bool {
	for _, sc := range s.Currencies {
		if sc == c {
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (s Selection) Clone() Selection {
	out := Selection{Range: s.Range, Currencies: make([]Currency, len(s.Currencies))}
	copy(out.Currencies, s.Currencies)
	return out
}
