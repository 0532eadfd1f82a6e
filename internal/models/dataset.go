package models

import (
	"iter"
	"time"

	"github.com/shopspring/decimal"
)

// Record is one sales transaction as loaded from the source CSV.
type Record struct {
	OrderDate   time.Time       `json:"order_date"`
	ShipDate    time.Time       `json:"ship_date"`
	Sales       decimal.Decimal `json:"sales"`
	Profit      decimal.Decimal `json:"profit"`
	Quantity    int             `json:"quantity"`
	Category    string          `json:"category"`
	SubCategory string          `json:"sub_category"`
	Region      string          `json:"region"`
	Segment     string          `json:"segment"`
	Country     string          `json:"country"`
	ProductName string          `json:"product_name"`
	OrderMonth  int             `json:"order_month"`
	OrderYear   int             `json:"order_year"`
}

type ColumnKind string

const (
	KindInteger     ColumnKind = "integer"
	KindFloat       ColumnKind = "float"
	KindCategorical ColumnKind = "categorical"
	KindText        ColumnKind = "text"
	KindDate        ColumnKind = "date"
)

type ColumnInfo struct {
	Name     string     `json:"name"`
	Kind     ColumnKind `json:"kind"`
	Distinct int        `json:"distinct"`
}

// Dataset is the read-only, ordered collection of records shared by every
// view for the lifetime of the process.
type Dataset struct {
	records  []Record
	columns  []ColumnInfo
	source   string
	loadedAt time.Time
}

// NewDataset copies records, filling the derived order month and year.
func NewDataset(records []Record, columns ...ColumnInfo) *Dataset {
	owned := make([]Record, len(records))
	for i, r := range records {
		r.OrderMonth = int(r.OrderDate.Month())
		r.OrderYear = r.OrderDate.Year()
		owned[i] = r
	}
	return &Dataset{
		records:  owned,
		columns:  append([]ColumnInfo(nil), columns...),
		loadedAt: time.Now(),
	}
}

// WithSource records where the dataset was read from.
func (d *Dataset) WithSource(path string) *Dataset {
	d.source = path
	return d
}

func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.records)
}

func (d *Dataset) At(i int) Record {
	return d.records[i]
}

// All yields records in file order.
func (d *Dataset) All() iter.Seq2[int, Record] {
	return func(yield func(int, Record) bool) {
		if d == nil {
			return
		}
		for i, r := range d.records {
			if !yield(i, r) {
				return
			}
		}
	}
}

func (d *Dataset) Columns() []ColumnInfo {
	return append([]ColumnInfo(nil), d.columns...)
}

func (d *Dataset) Source() string {
	return d.source
}

func (d *Dataset) LoadedAt() time.Time {
	return d.loadedAt
}

// Distinct returns the distinct values of a dimension in first-seen order.
// Missing values are reported as UnknownKey.
func (d *Dataset) Distinct(dim Dimension) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range d.All() {
		key := dim.Key(r)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}
