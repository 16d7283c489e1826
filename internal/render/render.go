package render

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"sync"
	"sync/atomic"

	"btcchart/internal/chart"
	"btcchart/internal/model"
)

//go:embed templates/page.html
var templateFS embed.FS

// Components are the Chart.js pieces the page registers before the first chart.
var Components = []string{
	"CategoryScale",
	"LinearScale",
	"PointElement",
	"LineElement",
	"Title",
	"Tooltip",
	"Legend",
}

var (
	registerOnce  sync.Once
	registrations atomic.Int32
	pageTmpl      *template.Template
	registerErr   error
)

// Register parses the page template once per process. Every page render goes
// through it, however many components exist.
func Register() error {
	registerOnce.Do(func() {
		registrations.Add(1)
		pageTmpl, registerErr = template.New("page.html").ParseFS(templateFS, "templates/page.html")
	})
	return registerErr
}

// Registrations reports how many times registration actually ran.
func Registrations() int { return int(registrations.Load()) }

// CurrencyControl is one checkbox.
type CurrencyControl struct {
	Code    string
	Checked bool
}

// RangeButton is one time range button.
type RangeButton struct {
	Label  string
	Value  string
	Active bool
	Class  string
}

// View is everything the page template needs.
type View struct {
	Title      string
	Currencies []CurrencyControl
	Ranges     []RangeButton
	Components []string
	ChartJSON  template.JS
	OptsJSON   template.JS
	Generation uint64
}

const (
	activeClass   = "bg-blue-500"
	inactiveClass = "bg-gray-700"
)

// BuildView maps a snapshot to the page. It has no side effects.
func BuildView(snap chart.Snapshot) (View, error) {
	v := View{
		Title:      model.ChartTitle,
		Components: Components,
		Generation: snap.Generation,
	}
	for _, c := range model.SupportedCurrencies() {
		v.Currencies = append(v.Currencies, CurrencyControl{Code: string(c), Checked: snap.Selection.Has(c)})
	}
	for _, r := range model.TimeRanges() {
		b := RangeButton{Label: r.Label(), Value: r.Days(), Active: r == snap.Selection.Range, Class: inactiveClass}
		if b.Active {
			b.Class = activeClass
		}
		v.Ranges = append(v.Ranges, b)
	}

	state := snap.Chart
	if state.Labels == nil {
		state.Labels = []string{}
	}
	if state.Datasets == nil {
		state.Datasets = []model.Dataset{}
	}
	data, err := json.Marshal(state)
	if err != nil {
		return View{}, fmt.Errorf("encode chart: %w", err)
	}
	opts, err := json.Marshal(model.DarkThemeOptions())
	if err != nil {
		return View{}, fmt.Errorf("encode options: %w", err)
	}
	v.ChartJSON = template.JS(data)
	v.OptsJSON = template.JS(opts)
	return v, nil
}

// Page writes the full HTML page for v.
func Page(w io.Writer, v View) error {
	if err := Register(); err != nil {
		return fmt.Errorf("register templates: %w", err)
	}
	return pageTmpl.Execute(w, v)
}
