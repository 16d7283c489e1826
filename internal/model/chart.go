package model

// Dataset is one line of the chart. JSON names follow Chart.js.
type Dataset struct {
	Label           string    `json:"label"`
	Data            []float64 `json:"data"`
	BorderColor     string    `json:"borderColor"`
	BackgroundColor string    `json:"backgroundColor"`
	BorderWidth     int       `json:"borderWidth"`
}

// ChartState is the chart-ready data handed to the renderer.
type ChartState struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// EmptyChartState encodes as {"labels":[],"datasets":[]}.
func EmptyChartState() ChartState {
	return ChartState{Labels: []string{}, Datasets: []Dataset{}}
}

// Clone returns a deep copy so callers cannot mutate published state.
func (c ChartState) Clone() ChartState {
	out := ChartState{
		Labels:   append([]string{}, c.Labels...),
		Datasets: make([]Dataset, len(c.Datasets)),
	}
	for i, d := range c.Datasets {
		d.Data = append([]float64{}, d.Data...)
		out.Datasets[i] = d
	}
	return out
}

// ChartOptions mirrors the Chart.js options object for the dark theme.
type ChartOptions struct {
	Responsive bool `json:"responsive"`
	Plugins    struct {
		Legend struct {
			Position string `json:"position"`
			Labels   struct {
				Color string `json:"color"`
			} `json:"labels"`
		} `json:"legend"`
		Title struct {
			Display bool   `json:"display"`
			Text    string `json:"text"`
			Color   string `json:"color"`
			Font    struct {
				Size   int    `json:"size"`
				Weight string `json:"weight"`
			} `json:"font"`
		} `json:"title"`
	} `json:"plugins"`
	Scales struct {
		X AxisOptions `json:"x"`
		Y AxisOptions `json:"y"`
	} `json:"scales"`
}

// AxisOptions styles one axis.
type AxisOptions struct {
	Grid struct {
		Color string `json:"color"`
	} `json:"grid"`
	Ticks struct {
		Color string `json:"color"`
	} `json:"ticks"`
}

const (
	ChartTitle = "Bitcoin Price Chart"
	gridColor  = "rgba(255, 255, 255, 0.1)"
	white      = "white"
)

// DarkThemeOptions returns the fixed options: top legend, white text, translucent grid.
func DarkThemeOptions() ChartOptions {
	var o ChartOptions
	o.Responsive = true
	o.Plugins.Legend.Position = "top"
	o.Plugins.Legend.Labels.Color = white
	o.Plugins.Title.Display = true
	o.Plugins.Title.Text = ChartTitle
	o.Plugins.Title.Color = white
	o.Plugins.Title.Font.Size = 16
	o.Plugins.Title.Font.Weight = "bold"
	for _, ax := range []*AxisOptions{&o.Scales.X, &o.Scales.Y} {
		ax.Grid.Color = gridColor
		ax.Ticks.Color = white
	}
	return o
}
