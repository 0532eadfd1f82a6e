// Package testutil builds datasets and CSV files for tests.
package testutil

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"

	"sales-dashboard/internal/models"
)

var Header = []string{
	"Order Date", "Ship Date", "Sales", "Profit", "Quantity", "Category",
	"Sub-Category", "Region", "Segment", "Country", "Product Name",
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Records is a small fixed dataset. Totals: Sales 400.5, Profit 65.25,
// Quantity 25. The last record has no Region or Segment.
func Records() []models.Record {
	return []models.Record{
		{
			OrderDate: day(2023, 1, 15), ShipDate: day(2023, 1, 18),
			Sales: decimal.RequireFromString("100"), Profit: decimal.RequireFromString("20"), Quantity: 2,
			Category: "Furniture", SubCategory: "Chairs", Region: "East", Segment: "Consumer",
			Country: "United States", ProductName: "Chair A",
		},
		{
			OrderDate: day(2023, 2, 10), ShipDate: day(2023, 2, 12),
			Sales: decimal.RequireFromString("50"), Profit: decimal.RequireFromString("-5"), Quantity: 1,
			Category: "Technology", SubCategory: "Phones", Region: "West", Segment: "Corporate",
			Country: "Canada", ProductName: "Phone B",
		},
		{
			OrderDate: day(2023, 2, 20), ShipDate: day(2023, 2, 25),
			Sales: decimal.RequireFromString("25"), Profit: decimal.RequireFromString("5"), Quantity: 3,
			Category: "Furniture", SubCategory: "Tables", Region: "East", Segment: "Consumer",
			Country: "United States", ProductName: "Table C",
		},
		{
			OrderDate: day(2024, 3, 5), ShipDate: day(2024, 3, 9),
			Sales: decimal.RequireFromString("10.5"), Profit: decimal.RequireFromString("2.25"), Quantity: 10,
			Category: "Office Supplies", SubCategory: "Paper", Region: "South", Segment: "Home Office",
			Country: "United Kingdom", ProductName: "Paper D",
		},
		{
			OrderDate: day(2024, 3, 15), ShipDate: day(2024, 3, 16),
			Sales: decimal.RequireFromString("200"), Profit: decimal.RequireFromString("40"), Quantity: 4,
			Category: "Technology", SubCategory: "Phones", Region: "West", Segment: "Corporate",
			Country: "United States", ProductName: "Phone B",
		},
		{
			OrderDate: day(2024, 7, 1),
			Sales:     decimal.RequireFromString("15"), Profit: decimal.RequireFromString("3"), Quantity: 5,
			Category: "Technology", SubCategory: "Accessories",
			Country: "Canada", ProductName: "Mouse E",
		},
	}
}

func Dataset() *models.Dataset {
	return models.NewDataset(Records())
}

// FakeRecords generates n plausible records from seed.
func FakeRecords(seed uint64, n int) []models.Record {
	f := gofakeit.New(seed)

	categories := map[string][]string{
		"Furniture":       {"Chairs", "Tables", "Bookcases"},
		"Technology":      {"Phones", "Accessories", "Copiers"},
		"Office Supplies": {"Paper", "Binders", "Storage"},
	}
	names := []string{"Furniture", "Technology", "Office Supplies"}
	regions := []string{"East", "West", "Central", "South", ""}
	segments := []string{"Consumer", "Corporate", "Home Office"}
	countries := []string{"United States", "Canada", "Mexico", "Brazil", "Germany", "France", "India"}

	start := day(2021, 1, 1)
	end := day(2024, 12, 31)

	out := make([]models.Record, n)
	for i := range out {
		category := f.RandomString(names)
		order := f.DateRange(start, end).Truncate(24 * time.Hour)
		out[i] = models.Record{
			OrderDate:   order,
			ShipDate:    order.AddDate(0, 0, f.IntRange(0, 7)),
			Sales:       decimal.NewFromFloat(f.Float64Range(1, 5000)).Round(2),
			Profit:      decimal.NewFromFloat(f.Float64Range(-500, 1500)).Round(2),
			Quantity:    f.IntRange(1, 14),
			Category:    category,
			SubCategory: f.RandomString(categories[category]),
			Region:      f.RandomString(regions),
			Segment:     f.RandomString(segments),
			Country:     f.RandomString(countries),
			ProductName: f.ProductName(),
		}
	}
	return out
}

// Row formats a record the way the source CSV does, with day-first dates.
func Row(r models.Record) []string {
	ship := ""
	if !r.ShipDate.IsZero() {
		ship = r.ShipDate.Format("02/01/2006")
	}
	return []string{
		r.OrderDate.Format("02/01/2006"),
		ship,
		r.Sales.String(),
		r.Profit.String(),
		strconv.Itoa(r.Quantity),
		r.Category,
		r.SubCategory,
		r.Region,
		r.Segment,
		r.Country,
		r.ProductName,
	}
}

// WriteCSV writes header and rows to a file under t.TempDir.
func WriteCSV(t testing.TB, header []string, rows [][]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "sales_data.csv")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create csv: %v", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		t.Fatalf("write header: %v", err)
	}
	if err := w.WriteAll(rows); err != nil {
		t.Fatalf("write rows: %v", err)
	}
	return path
}

// WriteRecords writes records as a CSV file and returns its path.
func WriteRecords(t testing.TB, records []models.Record) string {
	t.Helper()
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = Row(r)
	}
	return WriteCSV(t, Header, rows)
}
