// Command report prints the dashboard views as plain tables.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/render"
	"sales-dashboard/internal/services"
)

const maxScatterRows = 20

type options struct {
	csvFile   string
	view      string
	topN      int
	country   string
	regions   string
	countries string
	rows      int
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	var opts options
	flag.StringVar(&opts.csvFile, "csv", cfg.Dataset.CSVFile, "sales CSV file")
	flag.StringVar(&opts.view, "view", "", "view to print (summary, top-products, sales-by-region, profit-by-category); all when empty")
	flag.IntVar(&opts.topN, "top", services.DefaultTopN, "number of top products")
	flag.StringVar(&opts.country, "country", "", "country for the Top Products view")
	flag.StringVar(&opts.regions, "regions", "", "comma separated regions for Sales by Region")
	flag.StringVar(&opts.countries, "countries", "", "comma separated countries for Sales by Region")
	flag.IntVar(&opts.rows, "rows", 10, "rows of the data preview to print")
	flag.Parse()

	logger := observability.NewLogger(config.LoggerConfig{Level: "warn", Format: cfg.Logger.Format})

	if err := run(context.Background(), os.Stdout, cfg, opts, logger); err != nil {
		logger.Error("report failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, out io.Writer, cfg *config.Config, opts options, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.Dataset.LoadTimeout)
	defer cancel()

	analytics := services.NewAnalytics(
		services.WithLogger(logger),
		services.WithCategoricalRatio(cfg.Dataset.CategoricalRatio),
		services.WithPreviewRows(opts.rows),
	)
	if err := analytics.LoadFromCSV(ctx, opts.csvFile); err != nil {
		return err
	}

	views := models.Views()
	if opts.view != "" {
		v, err := models.ParseView(opts.view)
		if err != nil {
			return err
		}
		views = []models.View{v}
	}

	params := services.ViewParams{
		TopN:    services.ClampTopN(opts.topN),
		Country: opts.country,
	}
	if opts.regions != "" {
		params.Regions = strings.Split(opts.regions, ",")
	}
	if opts.countries != "" {
		params.Countries = strings.Split(opts.countries, ",")
	}

	for _, v := range views {
		vm, err := analytics.Render(ctx, v, params)
		if err != nil {
			return fmt.Errorf("render %s: %w", v.Slug(), err)
		}
		printView(out, vm)
	}
	return nil
}

func printView(out io.Writer, vm services.ViewModel) {
	fmt.Fprintf(out, "\n== %s ==\n\n", vm.Title)

	if len(vm.Cards) > 0 {
		table := tablewriter.NewWriter(out)
		table.SetHeader([]string{"Metric", "Value"})
		for _, c := range vm.Cards {
			table.Append([]string{c.Label, c.Value})
		}
		table.Render()
	}

	for _, t := range vm.Tables {
		table := tablewriter.NewWriter(out)
		table.SetHeader(t.Columns)
		table.AppendBulk(t.Rows)
		table.SetCaption(true, fmt.Sprintf("%s: %d of %d rows", t.Title, len(t.Rows), t.TotalRows))
		table.Render()
	}

	for _, c := range vm.Charts {
		printChart(out, c)
	}
}

func printChart(out io.Writer, c render.Chart) {
	fmt.Fprintf(out, "\n%s\n", c.Title)
	if c.NoData {
		fmt.Fprintf(out, "  no data: %s\n", c.Reason)
		return
	}

	table := tablewriter.NewWriter(out)
	if c.Kind == render.KindScatter {
		table.SetHeader([]string{"Label", c.XLabel, c.YLabel})
		points := c.Series[0].Points
		for _, p := range points[:min(len(points), maxScatterRows)] {
			table.Append([]string{p.Label, formatValue(p.X), formatValue(p.Y)})
		}
		if len(points) > maxScatterRows {
			table.SetCaption(true, fmt.Sprintf("%d of %d points", maxScatterRows, len(points)))
		}
		table.Render()
		return
	}

	header := []string{c.XLabel}
	for _, s := range c.Series {
		header = append(header, s.Name)
	}
	table.SetHeader(header)
	for i, label := range c.Labels() {
		row := []string{label}
		for _, s := range c.Series {
			row = append(row, formatValue(s.Points[i].Y))
		}
		table.Append(row)
	}
	table.Render()
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
