package services

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"
	"unique"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"sales-dashboard/internal/models"
)

const (
	batchSize  = 10000
	maxWorkers = 10
)

const (
	ColOrderDate   = "Order Date"
	ColShipDate    = "Ship Date"
	ColSales       = "Sales"
	ColProfit      = "Profit"
	ColQuantity    = "Quantity"
	ColCategory    = "Category"
	ColSubCategory = "Sub-Category"
	ColRegion      = "Region"
	ColSegment     = "Segment"
	ColCountry     = "Country"
	ColProductName = "Product Name"
)

var (
	ErrInvalidDate    = errors.New("invalid date")
	ErrAmbiguousDate  = errors.New("date is not day-first")
	ErrMissingColumn  = errors.New("missing column")
	ErrNotNumeric     = errors.New("expected numeric values")
	ErrMissingValue   = errors.New("missing value")
	ErrNoRecords      = errors.New("no records")
	errNotWholeNumber = errors.New("expected whole numbers")
)

var requiredColumns = []string{
	ColOrderDate, ColShipDate, ColSales, ColProfit, ColQuantity,
	ColCategory, ColSubCategory, ColRegion, ColSegment, ColCountry, ColProductName,
}

var dateColumns = map[string]bool{
	ColOrderDate: true,
	ColShipDate:  true,
}

var missingValues = []string{"", "NA", "N/A", "NaN", "null", "NULL"}

// Day-first layouts; "2" and "1" accept one or two digits.
var dayFirstLayouts = []string{
	"2/1/2006",
	"2-1-2006",
	"2.1.2006",
	"2/1/2006 15:04",
	"2/1/2006 15:04:05",
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

type LoaderOptions struct {
	CategoricalRatio float64
}

// columns holds the extracted dataframe columns a record is built from.
type columns struct {
	orderDate   []string
	shipDate    []string
	sales       []float64
	profit      []float64
	quantity    series.Series
	category    []string
	subCategory []string
	region      []string
	segment     []string
	country     []string
	productName []string
}

// LoadDataset reads the CSV at path into a Dataset. Any problem with the file,
// its shape or a single cell is returned as a *LoadError.
func LoadDataset(ctx context.Context, path string, opts LoaderOptions) (*models.Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("open file: %w", err)}
	}
	defer file.Close()

	if err := ctx.Err(); err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	df := dataframe.ReadCSV(skipBOM(file),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.NaNValues(missingValues),
		dataframe.WithTypes(map[string]series.Type{
			ColOrderDate: series.String,
			ColShipDate:  series.String,
		}),
	)
	if df.Err != nil {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("parse csv: %w", df.Err)}
	}
	if df.Nrow() == 0 {
		return nil, &LoadError{Path: path, Err: ErrNoRecords}
	}

	present := make(map[string]bool, df.Ncol())
	for _, name := range df.Names() {
		present[name] = true
	}
	for _, name := range requiredColumns {
		if !present[name] {
			return nil, &LoadError{Path: path, Column: name, Err: ErrMissingColumn}
		}
	}

	info := inferColumns(df, opts.CategoricalRatio)
	for _, name := range []string{ColSales, ColProfit} {
		if k := columnKind(info, name); k != models.KindFloat && k != models.KindInteger {
			return nil, &LoadError{Path: path, Column: name, Err: ErrNotNumeric}
		}
	}
	if columnKind(info, ColQuantity) != models.KindInteger {
		return nil, &LoadError{Path: path, Column: ColQuantity, Err: errNotWholeNumber}
	}

	text := func(name string) []string {
		return stringValues(df.Col(name), columnKind(info, name) == models.KindCategorical)
	}
	cols := columns{
		orderDate:   stringValues(df.Col(ColOrderDate), false),
		shipDate:    stringValues(df.Col(ColShipDate), false),
		sales:       df.Col(ColSales).Float(),
		profit:      df.Col(ColProfit).Float(),
		quantity:    df.Col(ColQuantity),
		category:    text(ColCategory),
		subCategory: text(ColSubCategory),
		region:      text(ColRegion),
		segment:     text(ColSegment),
		country:     text(ColCountry),
		productName: text(ColProductName),
	}

	records, err := buildRecords(ctx, cols, df.Nrow())
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Path = path
			return nil, le
		}
		return nil, &LoadError{Path: path, Err: err}
	}

	return models.NewDataset(records, info...).WithSource(path), nil
}

// buildRecords converts rows in parallel batches. Each batch writes only its
// own slice range, and the reported error is the one for the earliest row.
func buildRecords(ctx context.Context, cols columns, n int) ([]models.Record, error) {
	records := make([]models.Record, n)
	batches := (n + batchSize - 1) / batchSize
	rowErrs := make([]error, batches)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)

	for b := 0; b < batches; b++ {
		lo := b * batchSize
		hi := min(lo+batchSize, n)
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				rec, err := buildRecord(cols, i)
				if err != nil {
					rowErrs[b] = err
					return nil
				}
				records[i] = rec
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, err := range rowErrs {
		if err != nil {
			return nil, err
		}
	}
	return records, nil
}

func buildRecord(cols columns, i int) (models.Record, error) {
	line := i + 2 // header is line 1

	orderDate, err := parseDayFirst(cols.orderDate[i])
	if err != nil {
		return models.Record{}, &LoadError{Row: line, Column: ColOrderDate, Err: err}
	}

	var shipDate time.Time
	if cols.shipDate[i] != "" {
		if shipDate, err = parseDayFirst(cols.shipDate[i]); err != nil {
			return models.Record{}, &LoadError{Row: line, Column: ColShipDate, Err: err}
		}
	}

	sales, err := money(cols.sales[i])
	if err != nil {
		return models.Record{}, &LoadError{Row: line, Column: ColSales, Err: err}
	}
	profit, err := money(cols.profit[i])
	if err != nil {
		return models.Record{}, &LoadError{Row: line, Column: ColProfit, Err: err}
	}

	elem := cols.quantity.Elem(i)
	if elem.IsNA() {
		return models.Record{}, &LoadError{Row: line, Column: ColQuantity, Err: ErrMissingValue}
	}
	quantity, err := elem.Int()
	if err != nil {
		return models.Record{}, &LoadError{Row: line, Column: ColQuantity, Err: err}
	}

	return models.Record{
		OrderDate:   orderDate,
		ShipDate:    shipDate,
		Sales:       sales,
		Profit:      profit,
		Quantity:    quantity,
		Category:    cols.category[i],
		SubCategory: cols.subCategory[i],
		Region:      cols.region[i],
		Segment:     cols.segment[i],
		Country:     cols.country[i],
		ProductName: cols.productName[i],
	}, nil
}

// skipBOM drops a leading UTF-8 byte order mark, which spreadsheet exports
// often add and which would otherwise end up in the first header name.
func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if b, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(b, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return br
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// parseDayFirst parses DD/MM/YYYY style dates (and ISO dates). A value that
// only makes sense month-first is rejected instead of being swapped.
func parseDayFirst(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrMissingValue
	}
	for _, layout := range dayFirstLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	if _, err := time.Parse("1/2/2006", s); err == nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrAmbiguousDate, s)
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

func money(v float64) (decimal.Decimal, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero, ErrMissingValue
	}
	return decimal.NewFromFloat(v), nil
}

// stringValues returns the column as strings with missing cells blank.
// Categorical columns are interned so repeated values share storage.
func stringValues(s series.Series, intern bool) []string {
	out := make([]string, s.Len())
	for i := range out {
		e := s.Elem(i)
		if e.IsNA() {
			continue
		}
		v := strings.TrimSpace(e.String())
		if intern {
			v = unique.Make(v).Value()
		}
		out[i] = v
	}
	return out
}
