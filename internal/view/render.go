package view

import (
	"errors"
	"fmt"
	"io"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrChartLoading is returned when rendering a chart that has no data yet.
var ErrChartLoading = errors.New("chart data is still loading")

const (
	DefaultChartWidth  = 960
	DefaultChartHeight = 300
)

// RenderChartPNG draws the visible series of st as a PNG. Single-day and
// all-zero data are padded so the axes always have a usable range.
func RenderChartPNG(st ChartState, w io.Writer, width, height int) error {
	if st.Loading {
		return ErrChartLoading
	}
	if width <= 0 {
		width = DefaultChartWidth
	}
	if height <= 0 {
		height = DefaultChartHeight
	}

	dates := make([]time.Time, 0, len(st.Points))
	for _, p := range st.Points {
		d, err := time.Parse(time.DateOnly, p.Date)
		if err != nil {
			return fmt.Errorf("chart point %q: %w", p.Date, err)
		}
		dates = append(dates, d)
	}

	maxY := 1.0
	series := []chart.Series{}
	for _, info := range Series {
		if !st.Visible(info.Key) {
			continue
		}
		xs := dates
		ys := make([]float64, 0, len(st.Points))
		for _, p := range st.Points {
			v := float64(p.Value(info.Key))
			maxY = max(maxY, v)
			ys = append(ys, v)
		}
		switch len(xs) {
		case 0:
			// Nothing to plot; the empty axes are still drawn.
			xs = []time.Time{time.Now().UTC().Truncate(24 * time.Hour)}
			ys = []float64{0}
			fallthrough
		case 1:
			xs = []time.Time{xs[0], xs[0].Add(24 * time.Hour)}
			ys = []float64{ys[0], ys[0]}
		}
		col := drawing.ColorFromHex(info.Color[1:])
		series = append(series, chart.TimeSeries{
			Name:    info.Label,
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: col,
				StrokeWidth: 2,
				FillColor:   col.WithAlpha(48),
				DotWidth:    3,
				DotColor:    col,
			},
		})
	}

	graph := chart.Chart{
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 20, Left: 16, Right: 16, Bottom: 32}},
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("Jan 2"),
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: maxY},
		},
		Series: series,
	}
	if len(series) == 0 {
		// Every series hidden: draw an invisible baseline so the axes render.
		graph.Series = []chart.Series{chart.TimeSeries{
			XValues: []time.Time{time.Unix(0, 0).UTC(), time.Unix(0, 0).UTC().Add(24 * time.Hour)},
			YValues: []float64{0, 0},
			Style:   chart.Style{StrokeWidth: 0, DotWidth: 0, StrokeColor: drawing.ColorTransparent},
		}}
	} else {
		graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}
