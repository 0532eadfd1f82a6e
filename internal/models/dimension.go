package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// UnknownKey is the bucket for records with an empty grouping value.
const UnknownKey = "Unknown"

var (
	ErrUnknownDimension = errors.New("unknown dimension")
	ErrUnknownMetric    = errors.New("unknown metric")
)

// Dimension is a categorical column usable as a group-by key. The zero value
// means "no dimension".
type Dimension int

const (
	DimensionNone Dimension = iota
	DimensionCategory
	DimensionSubCategory
	DimensionRegion
	DimensionSegment
	DimensionCountry
	DimensionProduct
	DimensionOrderMonth
	DimensionOrderYear
)

var dimensionNames = map[Dimension]string{
	DimensionCategory:    "Category",
	DimensionSubCategory: "Sub-Category",
	DimensionRegion:      "Region",
	DimensionSegment:     "Segment",
	DimensionCountry:     "Country",
	DimensionProduct:     "Product Name",
	DimensionOrderMonth:  "Order Month",
	DimensionOrderYear:   "Order Year",
}

func Dimensions() []Dimension {
	return []Dimension{
		DimensionCategory,
		DimensionSubCategory,
		DimensionRegion,
		DimensionSegment,
		DimensionCountry,
		DimensionProduct,
		DimensionOrderMonth,
		DimensionOrderYear,
	}
}

// Name is the column header the dimension is read from.
func (d Dimension) Name() string {
	if name, ok := dimensionNames[d]; ok {
		return name
	}
	return ""
}

func (d Dimension) String() string {
	return d.Name()
}

// Value extracts the raw dimension value; it may be empty.
func (d Dimension) Value(r Record) string {
	switch d {
	case DimensionCategory:
		return r.Category
	case DimensionSubCategory:
		return r.SubCategory
	case DimensionRegion:
		return r.Region
	case DimensionSegment:
		return r.Segment
	case DimensionCountry:
		return r.Country
	case DimensionProduct:
		return r.ProductName
	case DimensionOrderMonth:
		if r.OrderMonth == 0 {
			return ""
		}
		return strconv.Itoa(r.OrderMonth)
	case DimensionOrderYear:
		if r.OrderYear == 0 {
			return ""
		}
		return strconv.Itoa(r.OrderYear)
	default:
		return ""
	}
}

// Key is Value with empty values routed to UnknownKey. A cell that literally
// reads "Unknown" lands in the same bucket, so a chart never shows two bars
// with the same label.
func (d Dimension) Key(r Record) string {
	v := strings.TrimSpace(d.Value(r))
	if v == "" {
		return UnknownKey
	}
	return v
}

// ParseDimension accepts the column header or a snake/kebab-case alias.
func ParseDimension(s string) (Dimension, error) {
	want := normalizeName(s)
	for _, d := range Dimensions() {
		if normalizeName(d.Name()) == want {
			return d, nil
		}
	}
	switch want {
	case "product":
		return DimensionProduct, nil
	case "month":
		return DimensionOrderMonth, nil
	case "year":
		return DimensionOrderYear, nil
	}
	return DimensionNone, fmt.Errorf("%w: %q", ErrUnknownDimension, s)
}

// Metric is a numeric column that can be summed.
type Metric int

const (
	MetricSales Metric = iota + 1
	MetricProfit
	MetricQuantity
)

func Metrics() []Metric {
	return []Metric{MetricSales, MetricProfit, MetricQuantity}
}

func (m Metric) Name() string {
	switch m {
	case MetricSales:
		return "Sales"
	case MetricProfit:
		return "Profit"
	case MetricQuantity:
		return "Quantity"
	default:
		return ""
	}
}

func (m Metric) String() string {
	return m.Name()
}

func (m Metric) Value(r Record) decimal.Decimal {
	switch m {
	case MetricSales:
		return r.Sales
	case MetricProfit:
		return r.Profit
	case MetricQuantity:
		return decimal.NewFromInt(int64(r.Quantity))
	default:
		return decimal.Zero
	}
}

// IsCurrency reports whether values of the metric are money amounts.
func (m Metric) IsCurrency() bool {
	return m == MetricSales || m == MetricProfit
}

func ParseMetric(s string) (Metric, error) {
	want := normalizeName(s)
	for _, m := range Metrics() {
		if normalizeName(m.Name()) == want {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMetric, s)
}

func normalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "", "-", "", "_", "").Replace(s)
}
