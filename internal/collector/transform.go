package collector

import (
	"math"
	"time"

	"btcchart/internal/model"
)

// maxDateMillis is the largest magnitude a JavaScript Date accepts.
const maxDateMillis = 8.64e15

const lineWidth = 2

type palette struct {
	border, background string
}

var (
	usdPalette   = palette{border: "rgba(75,192,192,1)", background: "rgba(75,192,192,0.2)"}
	otherPalette = palette{border: "rgba(192,75,75,1)", background: "rgba(192,75,75,0.2)"}
)

// Labeler turns a value into an axis label.
type Labeler struct {
	Layout   string
	Location *time.Location
}

// Label reads v as epoch milliseconds. Zero and NaN give an empty label.
func (l Labeler) Label(v float64) string {
	if v == 0 || math.IsNaN(v) {
		return ""
	}
	if math.Abs(v) > maxDateMillis {
		return "Invalid Date"
	}
	loc := l.Location
	if loc == nil {
		loc = time.Local
	}
	layout := l.Layout
	if layout == "" {
		layout = "1/2/2006"
	}
	return time.UnixMilli(int64(v)).In(loc).Format(layout)
}

// ExtractPrices keeps the price of each pair, in order.
func ExtractPrices(points []model.PricePoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Price
	}
	return out
}

// DeriveLabels builds one label per value of the first series.
//
// The values passed in are prices, not timestamps: each price is formatted as
// if it were an epoch-millisecond instant. This reproduces a known defect of
// the chart and is kept until the intended axis is clarified.
func DeriveLabels(values []float64, l Labeler) []string {
	labels := make([]string, len(values))
	for i, v := range values {
		labels[i] = l.Label(v)
	}
	return labels
}

// StyleFor returns the dataset for a currency with its fixed colors.
func StyleFor(cur model.Currency, values []float64) model.Dataset {
	p := otherPalette
	if cur == model.USD {
		p = usdPalette
	}
	return model.Dataset{
		Label:           string(cur),
		Data:            values,
		BorderColor:     p.border,
		BackgroundColor: p.background,
		BorderWidth:     lineWidth,
	}
}

// BuildChartState assembles datasets in selection order and labels from the first one.
func BuildChartState(series []model.PriceSeries, l Labeler) model.ChartState {
	if len(series) == 0 {
		return model.EmptyChartState()
	}
	state := model.ChartState{Datasets: make([]model.Dataset, len(series))}
	for i, s := range series {
		state.Datasets[i] = StyleFor(s.Currency, s.Points)
	}
	state.Labels = DeriveLabels(state.Datasets[0].Data, l)
	return state
}
