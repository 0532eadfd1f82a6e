package render

import (
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"
)

const (
	PNGFileName    = "monthly_sales_chart.png"
	PNGContentType = "image/png"
)

// WritePNG draws c as a static image.
func WritePNG(w io.Writer, c Chart) error {
	if c.NoData || len(c.Series) == 0 {
		return ErrNoData
	}

	if c.Kind == KindBar && len(c.Series) == 1 {
		bars := make([]chart.Value, 0, len(c.Series[0].Points))
		for _, p := range c.Series[0].Points {
			bars = append(bars, chart.Value{Label: p.Label, Value: p.Y})
		}
		bc := chart.BarChart{
			Title:      c.Title,
			Width:      exportWidth,
			Height:     exportHeight,
			BarWidth:   40,
			Background: chart.Style{Padding: chart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10}},
			YAxis:      chart.YAxis{Name: c.YLabel},
			Bars:       bars,
		}
		if err := bc.Render(chart.PNG, w); err != nil {
			return fmt.Errorf("render bar chart: %w", err)
		}
		return nil
	}

	series := make([]chart.Series, 0, len(c.Series))
	for _, s := range c.Series {
		xs := make([]float64, len(s.Points))
		ys := make([]float64, len(s.Points))
		for i, p := range s.Points {
			xs[i] = float64(i)
			if c.Kind == KindScatter {
				xs[i] = p.X
			}
			ys[i] = p.Y
		}
		style := chart.Style{StrokeWidth: 2}
		if c.Kind == KindScatter {
			style = chart.Style{StrokeWidth: chart.Disabled, DotWidth: 3}
		}
		series = append(series, chart.ContinuousSeries{Name: s.Name, XValues: xs, YValues: ys, Style: style})
	}

	xAxis := chart.XAxis{Name: c.XLabel}
	if c.Kind != KindScatter {
		for i, label := range c.Labels() {
			xAxis.Ticks = append(xAxis.Ticks, chart.Tick{Value: float64(i), Label: label})
		}
	}

	ch := chart.Chart{
		Title:      c.Title,
		Width:      exportWidth,
		Height:     exportHeight,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10}},
		XAxis:      xAxis,
		YAxis:      chart.YAxis{Name: c.YLabel},
		Series:     series,
	}
	if len(series) > 1 {
		ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	}
	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}
