package services

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"

	"sales-dashboard/internal/models"
	"sales-dashboard/internal/testutil"
)

func createTempCSV(t *testing.T, content string) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "test*.csv")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if _, err := f.WriteString(content); err != nil {
		t.Fatal(err)
	}
	return f.Name()
}

const csvHeader = "Order Date,Ship Date,Sales,Profit,Quantity,Category,Sub-Category,Region,Segment,Country,Product Name"

func TestNewAnalytics(t *testing.T) {
	a := NewAnalytics()
	if a == nil {
		t.Fatal("NewAnalytics() returned nil")
	}
	if a.logger == nil {
		t.Error("logger should be initialized")
	}
	if a.ratio != DefaultCategoricalRatio {
		t.Errorf("ratio = %v, want %v", a.ratio, DefaultCategoricalRatio)
	}
	if a.PreviewRows() != DefaultPreviewRows {
		t.Errorf("PreviewRows() = %d, want %d", a.PreviewRows(), DefaultPreviewRows)
	}

	if _, err := a.Dataset(context.Background()); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("Dataset() before load error = %v, want ErrNotLoaded", err)
	}
}

func TestNewAnalytics_Options(t *testing.T) {
	a := NewAnalytics(WithCategoricalRatio(0.2), WithPreviewRows(7), WithLogger(nil))
	if a.ratio != 0.2 {
		t.Errorf("ratio = %v, want 0.2", a.ratio)
	}
	if a.PreviewRows() != 7 {
		t.Errorf("PreviewRows() = %d, want 7", a.PreviewRows())
	}
	if a.logger == nil {
		t.Error("nil logger option should keep the default")
	}

	b := NewAnalytics(WithCategoricalRatio(0), WithCategoricalRatio(3), WithPreviewRows(-1))
	if b.ratio != DefaultCategoricalRatio || b.PreviewRows() != DefaultPreviewRows {
		t.Error("out of range options should be ignored")
	}
}

func TestAnalytics_SetData(t *testing.T) {
	a := NewAnalytics()
	a.SetData(testutil.Records())

	ds, err := a.Dataset(context.Background())
	if err != nil {
		t.Fatalf("Dataset() error = %v", err)
	}
	if ds.Len() != 6 {
		t.Errorf("Len() = %d, want 6", ds.Len())
	}

	agg, err := a.Aggregate(context.Background(), models.DimensionCountry, models.MetricSales, 0)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	want := []string{"United States", "Canada", "United Kingdom"}
	if got := agg.Keys(); strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("Aggregate() keys = %v, want %v", got, want)
	}
}

func TestAnalytics_LoadFromCSV_ValidData(t *testing.T) {
	validCSV := csvHeader + `
15/01/2023,18/01/2023,100,20,2,Furniture,Chairs,East,Consumer,United States,Chair A
10/02/2023,,50.5,-5,1,Technology,Phones,,Corporate,Canada,Phone B`

	f := createTempCSV(t, validCSV)

	a := NewAnalytics()
	if err := a.LoadFromCSV(context.Background(), f); err != nil {
		t.Fatalf("LoadFromCSV() with valid data should not error, got: %v", err)
	}

	ds, err := a.Dataset(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if ds.Len() != 2 {
		t.Errorf("Len() = %d, want 2", ds.Len())
	}
	if ds.Source() != f {
		t.Errorf("Source() = %q, want %q", ds.Source(), f)
	}

	stats := a.Stats()
	if stats["record_count"] != 2 {
		t.Errorf("stats record_count = %v, want 2", stats["record_count"])
	}
	if stats["loads"] != int64(1) {
		t.Errorf("stats loads = %v, want 1", stats["loads"])
	}
	if stats["regions"] != 2 {
		t.Errorf("stats regions = %v, want 2 (East and Unknown)", stats["regions"])
	}
}

func TestAnalytics_LoadFromCSV_InvalidData(t *testing.T) {
	row := "15/01/2023,18/01/2023,100,20,2,Furniture,Chairs,East,Consumer,United States,Chair A"

	tests := []struct {
		name    string
		csv     string
		wantErr bool
	}{
		{
			name:    "empty file",
			csv:     "",
			wantErr: true,
		},
		{
			name:    "header only",
			csv:     csvHeader,
			wantErr: true,
		},
		{
			name:    "invalid date format",
			csv:     csvHeader + "\n" + strings.Replace(row, "15/01/2023", "invalid-date", 1),
			wantErr: true,
		},
		{
			name:    "invalid sales",
			csv:     csvHeader + "\n" + row + "\n" + strings.Replace(row, ",100,", ",invalid,", 1),
			wantErr: true,
		},
		{
			name:    "invalid quantity",
			csv:     csvHeader + "\n" + row + "\n" + strings.Replace(row, ",2,Furniture", ",two,Furniture", 1),
			wantErr: true,
		},
		{
			name:    "valid",
			csv:     csvHeader + "\n" + row,
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := createTempCSV(t, tt.csv)

			a := NewAnalytics()
			err := a.LoadFromCSV(context.Background(), f)

			if (err != nil) != tt.wantErr {
				t.Errorf("LoadFromCSV() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var le *LoadError
				if !errors.As(err, &le) {
					t.Errorf("LoadFromCSV() error = %T, want *LoadError", err)
				}
			}
		})
	}
}

func TestAnalytics_FailedLoadKeepsPreviousDataset(t *testing.T) {
	a := NewAnalytics()
	a.SetData(testutil.Records())

	if err := a.LoadFromCSV(context.Background(), createTempCSV(t, "")); err == nil {
		t.Fatal("expected an error")
	}

	ds, err := a.Dataset(context.Background())
	if err != nil || ds.Len() != 6 {
		t.Errorf("Dataset() = %v, %v; want the earlier 6 records", ds.Len(), err)
	}
}

func TestAnalytics_Aggregate(t *testing.T) {
	a := NewAnalytics()
	a.SetData(testutil.Records())

	top, err := a.Aggregate(context.Background(), models.DimensionProduct, models.MetricQuantity, 2)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(top.Keys(), "|"); got != "Paper D|Phone B" {
		t.Errorf("top products = %s, want Paper D|Phone B", got)
	}

	empty := NewAnalytics()
	empty.SetData(nil)
	_, err = empty.Aggregate(context.Background(), models.DimensionRegion, models.MetricSales, 0)
	var ee *EmptyDatasetError
	if !errors.As(err, &ee) {
		t.Errorf("Aggregate() on empty dataset error = %v, want EmptyDatasetError", err)
	}
}

func TestAnalytics_ConcurrentAccess(t *testing.T) {
	a := NewAnalytics()
	a.SetData(testutil.FakeRecords(1, 300))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, v := range models.Views() {
				if _, err := a.Render(context.Background(), v, ViewParams{}); err != nil {
					t.Errorf("Render(%s) error = %v", v.Slug(), err)
				}
			}
			_ = a.Stats()
		}()
	}
	wg.Wait()

	if got := a.Stats()["renders"]; got != int64(40) {
		t.Errorf("renders = %v, want 40", got)
	}
}

func TestAnalytics_StatsBeforeLoad(t *testing.T) {
	stats := NewAnalytics().Stats()
	if stats["record_count"] != 0 {
		t.Errorf("record_count = %v, want 0", stats["record_count"])
	}
	if _, ok := stats["last_render"]; ok {
		t.Error("last_render should be absent before any render")
	}
}

func BenchmarkAnalytics_RenderSummary(b *testing.B) {
	a := NewAnalytics()
	a.SetData(testutil.FakeRecords(1, 10000))
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := a.Render(ctx, models.ViewSummary, ViewParams{}); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkGroupSum(b *testing.B) {
	ds := models.NewDataset(testutil.FakeRecords(2, 10000))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		GroupSum(ds, models.DimensionSubCategory, models.MetricProfit, nil)
	}
}
