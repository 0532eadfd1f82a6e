package services

import (
	"slices"

	"github.com/shopspring/decimal"

	"sales-dashboard/internal/models"
)

// Filter selects rows for an aggregate. A nil Filter keeps every row.
type Filter func(models.Record) bool

func (f Filter) keep(r models.Record) bool {
	return f == nil || f(r)
}

// WhereEquals keeps rows whose dimension value equals value. UnknownKey
// matches rows with a missing value.
func WhereEquals(dim models.Dimension, value string) Filter {
	return func(r models.Record) bool {
		return dim.Key(r) == value
	}
}

// WhereIn keeps rows whose dimension value is one of values.
func WhereIn(dim models.Dimension, values []string) Filter {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return func(r models.Record) bool {
		_, ok := set[dim.Key(r)]
		return ok
	}
}

// Count returns the number of rows kept by filter.
func Count(ds *models.Dataset, filter Filter) int {
	n := 0
	for _, r := range ds.All() {
		if filter.keep(r) {
			n++
		}
	}
	return n
}

// ScalarSum totals metric across the rows kept by filter.
func ScalarSum(ds *models.Dataset, metric models.Metric, filter Filter) decimal.Decimal {
	total := decimal.Zero
	for _, r := range ds.All() {
		if filter.keep(r) {
			total = total.Add(metric.Value(r))
		}
	}
	return total
}

// ScalarMean is the arithmetic mean of metric over the kept rows.
func ScalarMean(ds *models.Dataset, metric models.Metric, filter Filter) (decimal.Decimal, error) {
	total := decimal.Zero
	n := 0
	for _, r := range ds.All() {
		if filter.keep(r) {
			total = total.Add(metric.Value(r))
			n++
		}
	}
	if n == 0 {
		return decimal.Zero, &EmptyDatasetError{Op: "mean " + metric.Name()}
	}
	return total.Div(decimal.NewFromInt(int64(n))), nil
}

// GroupSum sums metric per dimension value. Buckets come out in first-seen
// order; missing values land in the models.UnknownKey bucket.
func GroupSum(ds *models.Dataset, dim models.Dimension, metric models.Metric, filter Filter) models.Aggregate {
	index := make(map[string]int)
	agg := models.Aggregate{Dimension: dim, Metric: metric}

	for _, r := range ds.All() {
		if !filter.keep(r) {
			continue
		}
		key := dim.Key(r)
		i, ok := index[key]
		if !ok {
			i = len(agg.Buckets)
			index[key] = i
			agg.Buckets = append(agg.Buckets, models.Bucket{Key: key, Value: decimal.Zero})
		}
		agg.Buckets[i].Value = agg.Buckets[i].Value.Add(metric.Value(r))
		agg.Buckets[i].Rows++
	}
	return agg
}

// TopN returns the n dimension values with the largest summed metric,
// descending, ties in first-seen order. n outside [1, cardinality] yields the
// whole ranking.
func TopN(ds *models.Dataset, dim models.Dimension, metric models.Metric, n int, filter Filter) (models.Aggregate, error) {
	agg := GroupSum(ds, dim, metric, filter)
	if agg.Len() == 0 {
		return agg, &EmptyDatasetError{Op: "top " + dim.Name() + " by " + metric.Name()}
	}
	return agg.SortedDesc().Head(n), nil
}

// MonthlySeries sums metric per calendar month. With by set, one line per
// value of by is produced; otherwise a single line keyed by the metric name.
// Every line carries all twelve months.
func MonthlySeries(ds *models.Dataset, metric models.Metric, by models.Dimension, filter Filter) models.MonthlySeries {
	out := models.MonthlySeries{Metric: metric, By: by}
	index := make(map[string]int)

	line := func(key string) *models.MonthlyLine {
		i, ok := index[key]
		if !ok {
			i = len(out.Lines)
			index[key] = i
			l := models.MonthlyLine{Key: key}
			for m := range l.Months {
				l.Months[m] = decimal.Zero
			}
			out.Lines = append(out.Lines, l)
		}
		return &out.Lines[i]
	}

	if by == models.DimensionNone {
		line(metric.Name())
	}

	for _, r := range ds.All() {
		if !filter.keep(r) || r.OrderMonth < 1 || r.OrderMonth > 12 {
			continue
		}
		key := metric.Name()
		if by != models.DimensionNone {
			key = by.Key(r)
		}
		l := line(key)
		l.Months[r.OrderMonth-1] = l.Months[r.OrderMonth-1].Add(metric.Value(r))
	}
	return out
}

// SortedByKey orders buckets by their numeric key where possible, used for
// year axes.
func SortedByKey(agg models.Aggregate) models.Aggregate {
	out := agg
	out.Buckets = slices.Clone(agg.Buckets)
	slices.SortStableFunc(out.Buckets, func(a, b models.Bucket) int {
		if len(a.Key) != len(b.Key) {
			return len(a.Key) - len(b.Key)
		}
		switch {
		case a.Key < b.Key:
			return -1
		case a.Key > b.Key:
			return 1
		}
		return 0
	})
	return out
}
