package models

import (
	"slices"

	"github.com/shopspring/decimal"
)

type Bucket struct {
	Key   string          `json:"key"`
	Value decimal.Decimal `json:"value"`
	Rows  int             `json:"rows"`
}

// Aggregate maps dimension values to a summed metric. Buckets keep the
// first-seen order of their keys unless sorted explicitly.
type Aggregate struct {
	Dimension Dimension `json:"-"`
	Metric    Metric    `json:"-"`
	Buckets   []Bucket  `json:"buckets"`
}

func (a Aggregate) Len() int {
	return len(a.Buckets)
}

func (a Aggregate) Get(key string) (decimal.Decimal, bool) {
	for _, b := range a.Buckets {
		if b.Key == key {
			return b.Value, true
		}
	}
	return decimal.Zero, false
}

func (a Aggregate) Keys() []string {
	keys := make([]string, len(a.Buckets))
	for i, b := range a.Buckets {
		keys[i] = b.Key
	}
	return keys
}

func (a Aggregate) Total() decimal.Decimal {
	total := decimal.Zero
	for _, b := range a.Buckets {
		total = total.Add(b.Value)
	}
	return total
}

// SortedDesc returns a copy ordered by value descending. Equal values keep
// their current relative order.
func (a Aggregate) SortedDesc() Aggregate {
	out := a
	out.Buckets = slices.Clone(a.Buckets)
	slices.SortStableFunc(out.Buckets, func(x, y Bucket) int {
		return y.Value.Cmp(x.Value)
	})
	return out
}

// Head returns the first n buckets; n <= 0 or n >= Len returns everything.
func (a Aggregate) Head(n int) Aggregate {
	out := a
	if n > 0 && n < len(a.Buckets) {
		out.Buckets = slices.Clone(a.Buckets[:n])
	} else {
		out.Buckets = slices.Clone(a.Buckets)
	}
	return out
}

// MonthlyLine holds one value per calendar month, January first.
type MonthlyLine struct {
	Key    string              `json:"key"`
	Months [12]decimal.Decimal `json:"months"`
}

func (l MonthlyLine) Month(m int) decimal.Decimal {
	return l.Months[m-1]
}

// MonthlySeries is a metric summed per calendar month, optionally split by a
// secondary dimension (one line per dimension value, first-seen order).
type MonthlySeries struct {
	Metric Metric        `json:"-"`
	By     Dimension     `json:"-"`
	Lines  []MonthlyLine `json:"lines"`
}

func (s MonthlySeries) Totals() [12]decimal.Decimal {
	var totals [12]decimal.Decimal
	for i := range totals {
		totals[i] = decimal.Zero
	}
	for _, l := range s.Lines {
		for i, v := range l.Months {
			totals[i] = totals[i].Add(v)
		}
	}
	return totals
}
