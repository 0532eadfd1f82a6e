package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"sales-dashboard/internal/models"
	"sales-dashboard/internal/render"
)

const (
	MinTopN     = 1
	MaxTopN     = 10
	DefaultTopN = 5

	// defaultSelection is how many regions or countries the Sales by Region
	// multiselects start with.
	defaultSelection = 10
)

var million = decimal.NewFromInt(1_000_000)

// ClampTopN bounds n to [MinTopN, MaxTopN].
func ClampTopN(n int) int {
	return min(max(n, MinTopN), MaxTopN)
}

// ViewParams are the control values a view is rendered with. A nil Regions
// or Countries means "not chosen yet" and is filled with the ten largest by
// Sales; an empty non-nil slice means no restriction.
type ViewParams struct {
	TopN      int      `json:"topN"`
	Country   string   `json:"country"`
	Regions   []string `json:"regions"`
	Countries []string `json:"countries"`
}

// Normalize returns p with defaults applied against ds.
func (p ViewParams) Normalize(ds *models.Dataset) ViewParams {
	if p.TopN == 0 {
		p.TopN = DefaultTopN
	}
	p.TopN = ClampTopN(p.TopN)

	countries := ds.Distinct(models.DimensionCountry)
	if !slices.Contains(countries, p.Country) {
		p.Country = ""
		if len(countries) > 0 {
			p.Country = countries[0]
		}
	}

	if p.Regions == nil {
		p.Regions = topKeys(ds, models.DimensionRegion)
	}
	if p.Countries == nil {
		p.Countries = topKeys(ds, models.DimensionCountry)
	}
	return p
}

func topKeys(ds *models.Dataset, dim models.Dimension) []string {
	agg, err := TopN(ds, dim, models.MetricSales, defaultSelection, nil)
	if err != nil {
		return []string{}
	}
	return agg.Keys()
}

type ControlKind string

const (
	ControlNumber      ControlKind = "number"
	ControlSelect      ControlKind = "select"
	ControlMultiSelect ControlKind = "multiselect"
)

// Control describes an input a view exposes. Name is the signal it binds to.
type Control struct {
	Name    string      `json:"name"`
	Label   string      `json:"label"`
	Kind    ControlKind `json:"kind"`
	Options []string    `json:"options,omitempty"`
	Min     int         `json:"min,omitempty"`
	Max     int         `json:"max,omitempty"`
}

// ViewModel is everything needed to draw one view.
type ViewModel struct {
	View     models.View         `json:"view"`
	Title    string              `json:"title"`
	Params   ViewParams          `json:"params"`
	Controls []Control           `json:"controls,omitempty"`
	Cards    []render.MetricCard `json:"cards,omitempty"`
	Charts   []render.Chart      `json:"charts"`
	Tables   []render.Table      `json:"tables,omitempty"`
}

// Chart returns the chart with the given id.
func (vm ViewModel) Chart(id string) (render.Chart, bool) {
	for _, c := range vm.Charts {
		if c.ID == id {
			return c, true
		}
	}
	return render.Chart{}, false
}

// Render computes view from the shared dataset. Unknown views are an error.
func (a *Analytics) Render(ctx context.Context, view models.View, params ViewParams) (ViewModel, error) {
	ds, err := a.Dataset(ctx)
	if err != nil {
		return ViewModel{}, err
	}
	params = params.Normalize(ds)

	start := time.Now()
	var vm ViewModel
	switch view {
	case models.ViewSummary:
		vm = a.summaryView(ds)
	case models.ViewTopProducts:
		vm = topProductsView(ds, params)
	case models.ViewSalesByRegion:
		vm = salesByRegionView(ds, params)
	case models.ViewProfitByCategory:
		vm = profitByCategoryView(ds)
	default:
		return ViewModel{}, fmt.Errorf("%w: %d", models.ErrUnknownView, int(view))
	}
	vm.View = view
	vm.Params = params

	a.renders.Add(1)
	a.lastRender.Store(time.Now().UnixNano())
	a.logger.DebugContext(ctx, "view rendered",
		"view", view.Slug(),
		"charts", len(vm.Charts),
		"duration", time.Since(start))
	return vm, nil
}

// Aggregate is an ad-hoc group-by. With top > 0 the result is ranked and
// truncated, otherwise buckets stay in first-seen order.
func (a *Analytics) Aggregate(ctx context.Context, dim models.Dimension, metric models.Metric, top int) (models.Aggregate, error) {
	ds, err := a.Dataset(ctx)
	if err != nil {
		return models.Aggregate{}, err
	}
	if top > 0 {
		return TopN(ds, dim, metric, top, nil)
	}
	agg := GroupSum(ds, dim, metric, nil)
	if agg.Len() == 0 {
		return agg, &EmptyDatasetError{Op: "sum " + metric.Name() + " by " + dim.Name()}
	}
	return agg, nil
}

// SummaryCards are the headline figures of the Summary view.
func SummaryCards(ds *models.Dataset) []render.MetricCard {
	cards := []render.MetricCard{
		{Label: "Total Sales", Value: render.FormatCurrency(ScalarSum(ds, models.MetricSales, nil))},
	}

	avg, err := ScalarMean(ds, models.MetricSales, nil)
	if err != nil {
		cards = append(cards, render.MetricCard{Label: "Average Order Value", Value: "no data", NoData: true})
	} else {
		cards = append(cards, render.MetricCard{Label: "Average Order Value", Value: render.FormatCurrency(avg)})
	}

	cards = append(cards, render.MetricCard{
		Label: "Total Profit",
		Value: render.FormatCurrency(ScalarSum(ds, models.MetricProfit, nil)),
	})
	return cards
}

// MonthlySalesChart is the Summary view's monthly sales bar chart, also
// offered as a download.
func MonthlySalesChart(ds *models.Dataset) render.Chart {
	s := MonthlySeries(ds, models.MetricSales, models.DimensionNone, nil)
	return render.FromMonthly("monthly-sales", "Monthly Sales", render.KindBar, s, false).
		WithFormat(render.LabelCurrency)
}

func (a *Analytics) summaryView(ds *models.Dataset) ViewModel {
	profits := MonthlySeries(ds, models.MetricProfit, models.DimensionNone, nil)

	points := make([]render.Point, 0, ds.Len())
	for _, r := range ds.All() {
		points = append(points, render.Point{
			Label: r.ProductName,
			X:     r.Sales.Round(2).InexactFloat64(),
			Y:     r.Profit.Round(2).InexactFloat64(),
		})
	}

	return ViewModel{
		Title: "Overall Sales and Profit Summary",
		Cards: SummaryCards(ds),
		Tables: []render.Table{
			render.PreviewTable("sales-data", "Sales Data", ds, a.previewRows),
		},
		Charts: []render.Chart{
			MonthlySalesChart(ds),
			render.FromMonthly("monthly-profits", "Monthly Profits", render.KindLine, profits, false).
				WithFormat(render.LabelCurrency),
			groupChart("sales-by-category", "Sales by Product Category", ds, models.DimensionCategory),
			groupChart("sales-by-sub-category", "Sales by Sub-Category", ds, models.DimensionSubCategory),
			groupChart("sales-by-region", "Sales by Region", ds, models.DimensionRegion),
			groupChart("sales-by-segment", "Sales by Customer Segment", ds, models.DimensionSegment),
			render.Scatter("sales-vs-profit", "Sales vs Profit", models.MetricSales.Name(), models.MetricProfit.Name(), points),
		},
	}
}

func topProductsView(ds *models.Dataset, p ViewParams) ViewModel {
	n := strconv.Itoa(p.TopN)
	inCountry := WhereEquals(models.DimensionCountry, p.Country)

	return ViewModel{
		Title: "Top Products",
		Controls: []Control{
			{Name: "topN", Label: "Select Number of Top Products", Kind: ControlNumber, Min: MinTopN, Max: MaxTopN},
			{Name: "country", Label: "Select Country", Kind: ControlSelect, Options: ds.Distinct(models.DimensionCountry)},
		},
		Charts: []render.Chart{
			topChart("top-products-quantity", "Top "+n+" Products by Quantity Sold", ds, models.MetricQuantity, p.TopN, nil),
			topChart("top-products-profit", "Top "+n+" Products by Profit", ds, models.MetricProfit, p.TopN, nil),
			topChart("top-products-country-sales", "Top "+n+" Selling Products in "+p.Country, ds, models.MetricSales, p.TopN, inCountry),
			topChart("top-products-country-profit", "Top "+n+" Profitable Products in "+p.Country, ds, models.MetricProfit, p.TopN, inCountry),
		},
	}
}

func salesByRegionView(ds *models.Dataset, p ViewParams) ViewModel {
	years := SortedByKey(GroupSum(ds, models.DimensionOrderYear, models.MetricSales, nil))

	return ViewModel{
		Title: "Sales by Region",
		Controls: []Control{
			{Name: "regions", Label: "Select Region", Kind: ControlMultiSelect, Options: ds.Distinct(models.DimensionRegion)},
			{Name: "countries", Label: "Select Country", Kind: ControlMultiSelect, Options: ds.Distinct(models.DimensionCountry)},
		},
		Charts: []render.Chart{
			millionsChart("top-regions", ds, models.DimensionRegion, p.Regions),
			millionsChart("top-countries", ds, models.DimensionCountry, p.Countries),
			render.FromAggregate("sales-by-year", "Sales by Year", render.KindBar, years).
				WithFormat(render.LabelCurrency),
			groupChart("sales-by-region", "Sales by Region", ds, models.DimensionRegion),
		},
	}
}

func profitByCategoryView(ds *models.Dataset) ViewModel {
	seasonal := func(id, title string, kind render.ChartKind, metric models.Metric, by models.Dimension) render.Chart {
		return render.FromMonthly(id, title, kind, MonthlySeries(ds, metric, by, nil), true).
			WithFormat(render.LabelCurrency)
	}

	return ViewModel{
		Title: "Profit by Category",
		Charts: []render.Chart{
			performanceChart("category-performance", "Product Category Performance", ds, models.DimensionCategory),
			performanceChart("sub-category-performance", "Product Sub-Category Performance", ds, models.DimensionSubCategory),
			seasonal("seasonal-sales-category", "Seasonal Sales by Category", render.KindLine, models.MetricSales, models.DimensionCategory),
			seasonal("seasonal-profits-category", "Seasonal Profits by Category", render.KindBar, models.MetricProfit, models.DimensionCategory),
			seasonal("seasonal-sales-sub-category", "Seasonal Sales by Sub-Category", render.KindLine, models.MetricSales, models.DimensionSubCategory),
			seasonal("seasonal-profits-sub-category", "Seasonal Profits by Sub-Category", render.KindBar, models.MetricProfit, models.DimensionSubCategory),
		},
	}
}

func groupChart(id, title string, ds *models.Dataset, dim models.Dimension) render.Chart {
	agg := GroupSum(ds, dim, models.MetricSales, nil)
	return render.FromAggregate(id, title, render.KindBar, agg).WithFormat(render.LabelCurrency)
}

func performanceChart(id, title string, ds *models.Dataset, dim models.Dimension) render.Chart {
	agg := GroupSum(ds, dim, models.MetricSales, nil).SortedDesc()
	return render.FromAggregate(id, title, render.KindBar, agg).WithFormat(render.LabelCurrency)
}

func topChart(id, title string, ds *models.Dataset, metric models.Metric, n int, filter Filter) render.Chart {
	agg, err := TopN(ds, models.DimensionProduct, metric, n, filter)
	if err != nil {
		var empty *EmptyDatasetError
		if !errors.As(err, &empty) {
			err = fmt.Errorf("top products: %w", err)
		}
		return render.Empty(id, title, render.KindBar, models.DimensionProduct.Name(), metric.Name(), err)
	}
	c := render.FromAggregate(id, title, render.KindBar, agg)
	if metric.IsCurrency() {
		c = c.WithFormat(render.LabelCurrency)
	}
	return c
}

// millionsChart ranks dim by Sales within the selection and reports values
// in millions.
func millionsChart(id string, ds *models.Dataset, dim models.Dimension, selection []string) render.Chart {
	var filter Filter
	if len(selection) > 0 {
		filter = WhereIn(dim, selection)
	}
	agg := GroupSum(ds, dim, models.MetricSales, filter).SortedDesc()
	for i, b := range agg.Buckets {
		agg.Buckets[i].Value = b.Value.Div(million)
	}

	c := render.FromAggregate(id, "Top "+dim.Name()+" by Sales", render.KindBar, agg).
		WithFormat(render.LabelMillions)
	c.YLabel = "Total Sales (Millions)"
	return c
}
