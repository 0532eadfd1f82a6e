package render

import (
	"html/template"
	"io"
)

const (
	HTMLFileName    = "monthly_sales_chart.html"
	HTMLContentType = "text/html"
	EChartsURL      = "https://cdn.jsdelivr.net/npm/echarts@5/dist/echarts.min.js"
	exportWidth     = 1000
	exportHeight    = 500
)

var documentTemplate = template.Must(template.New("chartDocument").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="{{.ScriptURL}}"></script>
</head>
<body>
<div id="{{.ID}}" style="width:{{.Width}}px;height:{{.Height}}px;"></div>
<script>
echarts.init(document.getElementById({{.ID}})).setOption({{.Option}});
</script>
</body>
</html>
`))

type documentData struct {
	ID        string
	Title     string
	ScriptURL string
	Width     int
	Height    int
	Option    map[string]any
}

// WriteHTML writes c as a self-contained interactive page. The charting
// script is pulled from a CDN, everything else is inline.
func WriteHTML(w io.Writer, c Chart) error {
	if c.NoData || len(c.Series) == 0 {
		return ErrNoData
	}
	return documentTemplate.Execute(w, documentData{
		ID:        c.ID,
		Title:     c.Title,
		ScriptURL: EChartsURL,
		Width:     exportWidth,
		Height:    exportHeight,
		Option:    EChartsOption(c),
	})
}

// EChartsOption translates c into an ECharts option object.
func EChartsOption(c Chart) map[string]any {
	option := map[string]any{
		"title":   map[string]any{"text": c.Title},
		"tooltip": map[string]any{"trigger": "axis"},
	}
	if len(c.Series) > 1 {
		names := make([]string, len(c.Series))
		for i, s := range c.Series {
			names[i] = s.Name
		}
		option["legend"] = map[string]any{"data": names, "top": "bottom"}
	}

	if c.Kind == KindScatter {
		option["tooltip"] = map[string]any{"trigger": "item"}
		option["xAxis"] = map[string]any{"type": "value", "name": c.XLabel}
		option["yAxis"] = map[string]any{"type": "value", "name": c.YLabel}
		series := make([]map[string]any, 0, len(c.Series))
		for _, s := range c.Series {
			data := make([][]any, 0, len(s.Points))
			for _, p := range s.Points {
				data = append(data, []any{p.X, p.Y, p.Label})
			}
			series = append(series, map[string]any{"name": s.Name, "type": "scatter", "data": data})
		}
		option["series"] = series
		return option
	}

	option["xAxis"] = map[string]any{"type": "category", "name": c.XLabel, "data": c.Labels()}
	option["yAxis"] = map[string]any{"type": "value", "name": c.YLabel}
	series := make([]map[string]any, 0, len(c.Series))
	for _, s := range c.Series {
		data := make([]float64, 0, len(s.Points))
		for _, p := range s.Points {
			data = append(data, p.Y)
		}
		entry := map[string]any{"name": s.Name, "type": string(c.Kind), "data": data}
		if c.Format == LabelMillions {
			entry["label"] = map[string]any{"show": true, "position": "top", "formatter": "{c}m"}
		}
		series = append(series, entry)
	}
	option["series"] = series
	return option
}
