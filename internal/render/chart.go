package render

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"sales-dashboard/internal/models"
)

var ErrNoData = errors.New("chart has no data")

type ChartKind string

const (
	KindBar     ChartKind = "bar"
	KindLine    ChartKind = "line"
	KindScatter ChartKind = "scatter"
)

// LabelFormat tells the front end how to print value labels.
type LabelFormat string

const (
	LabelPlain    LabelFormat = ""
	LabelCurrency LabelFormat = "currency"
	LabelMillions LabelFormat = "millions"
)

// Point is one datum. Category charts use Label and Y; scatter charts use X
// and Y and keep Label for hover text.
type Point struct {
	Label string  `json:"label"`
	X     float64 `json:"x,omitempty"`
	Y     float64 `json:"y"`
}

type Series struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

// Chart describes a chart independently of any drawing library.
type Chart struct {
	ID     string      `json:"id"`
	Kind   ChartKind   `json:"kind"`
	Title  string      `json:"title"`
	XLabel string      `json:"x_label"`
	YLabel string      `json:"y_label"`
	Format LabelFormat `json:"format,omitempty"`
	Series []Series    `json:"series"`
	NoData bool        `json:"no_data,omitempty"`
	Reason string      `json:"reason,omitempty"`
}

// FromAggregate charts an aggregate with the dimension on the x axis and the
// metric on the y axis, in bucket order.
func FromAggregate(id, title string, kind ChartKind, agg models.Aggregate) Chart {
	c := Chart{
		ID:     id,
		Kind:   kind,
		Title:  title,
		XLabel: agg.Dimension.Name(),
		YLabel: agg.Metric.Name(),
	}
	if agg.Len() == 0 {
		c.NoData = true
		c.Reason = "no rows match the current selection"
		return c
	}

	points := make([]Point, 0, agg.Len())
	for _, b := range agg.Buckets {
		points = append(points, Point{Label: b.Key, Y: toFloat(b.Value)})
	}
	c.Series = []Series{{Name: agg.Metric.Name(), Points: points}}
	return c
}

// FromMonthly charts a monthly series with one chart series per line and
// all twelve months on the x axis.
func FromMonthly(id, title string, kind ChartKind, s models.MonthlySeries, abbreviated bool) Chart {
	c := Chart{
		ID:     id,
		Kind:   kind,
		Title:  title,
		XLabel: "Month",
		YLabel: s.Metric.Name(),
	}
	if len(s.Lines) == 0 {
		c.NoData = true
		c.Reason = "no rows match the current selection"
		return c
	}

	for _, l := range s.Lines {
		points := make([]Point, 0, len(l.Months))
		for m, v := range l.Months {
			points = append(points, Point{Label: MonthName(m+1, abbreviated), Y: toFloat(v)})
		}
		c.Series = append(c.Series, Series{Name: l.Key, Points: points})
	}
	return c
}

func Scatter(id, title, xLabel, yLabel string, points []Point) Chart {
	c := Chart{
		ID:     id,
		Kind:   KindScatter,
		Title:  title,
		XLabel: xLabel,
		YLabel: yLabel,
	}
	if len(points) == 0 {
		c.NoData = true
		c.Reason = "no rows match the current selection"
		return c
	}
	c.Series = []Series{{Name: yLabel, Points: points}}
	return c
}

// Empty is the explicit "no data" state for a chart whose aggregate failed.
func Empty(id, title string, kind ChartKind, xLabel, yLabel string, reason error) Chart {
	c := Chart{
		ID:     id,
		Kind:   kind,
		Title:  title,
		XLabel: xLabel,
		YLabel: yLabel,
		NoData: true,
	}
	if reason != nil {
		c.Reason = reason.Error()
	}
	return c
}

func (c Chart) WithFormat(f LabelFormat) Chart {
	c.Format = f
	return c
}

// Labels returns the category labels of the first series.
func (c Chart) Labels() []string {
	if len(c.Series) == 0 {
		return nil
	}
	labels := make([]string, len(c.Series[0].Points))
	for i, p := range c.Series[0].Points {
		labels[i] = p.Label
	}
	return labels
}

func MonthName(m int, abbreviated bool) string {
	name := time.Month(m).String()
	if abbreviated {
		return name[:3]
	}
	return name
}

func toFloat(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
