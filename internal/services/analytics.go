package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"sales-dashboard/internal/models"
)

const DefaultPreviewRows = 100

type Analytics struct {
	mu          sync.RWMutex
	store       *DatasetStore
	logger      *slog.Logger
	ratio       float64
	previewRows int

	renders    atomic.Int64
	lastRender atomic.Int64
}

type Option func(*Analytics)

func WithLogger(logger *slog.Logger) Option {
	return func(a *Analytics) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithCategoricalRatio sets the distinct/total threshold below which a text
// column is treated as categorical.
func WithCategoricalRatio(ratio float64) Option {
	return func(a *Analytics) {
		if ratio > 0 && ratio <= 1 {
			a.ratio = ratio
		}
	}
}

func WithPreviewRows(n int) Option {
	return func(a *Analytics) {
		if n > 0 {
			a.previewRows = n
		}
	}
}

func NewAnalytics(opts ...Option) *Analytics {
	a := &Analytics{
		store:       NewStaticStore(nil),
		logger:      slog.Default(),
		ratio:       DefaultCategoricalRatio,
		previewRows: DefaultPreviewRows,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SetData replaces the dataset with records, mainly for tests.
func (a *Analytics) SetData(records []models.Record) {
	a.SetDataset(models.NewDataset(records))
}

func (a *Analytics) SetDataset(ds *models.Dataset) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.store = NewStaticStore(ds)
}

// LoadFromCSV loads the file once and keeps it for the life of the process.
func (a *Analytics) LoadFromCSV(ctx context.Context, filename string) error {
	store := NewDatasetStore(filename, LoaderOptions{CategoricalRatio: a.ratio})

	start := time.Now()
	a.logger.Info("loading dataset", "filename", filename)

	ds, err := store.Get(ctx)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	a.mu.Lock()
	a.store = store
	a.mu.Unlock()

	duration := time.Since(start)
	a.logger.Info("dataset loaded",
		"records", ds.Len(),
		"columns", len(ds.Columns()),
		"duration", duration,
		"rate", fmt.Sprintf("%.0f records/sec", float64(ds.Len())/duration.Seconds()))

	for _, c := range ds.Columns() {
		a.logger.Debug("column inferred", "column", c.Name, "kind", c.Kind, "distinct", c.Distinct)
	}
	return nil
}

func (a *Analytics) Dataset(ctx context.Context) (*models.Dataset, error) {
	a.mu.RLock()
	store := a.store
	a.mu.RUnlock()

	ds, err := store.Get(ctx)
	if err != nil {
		return nil, err
	}
	if ds == nil {
		return nil, ErrNotLoaded
	}
	return ds, nil
}

func (a *Analytics) PreviewRows() int {
	return a.previewRows
}

// Stats is used by the admin endpoint.
func (a *Analytics) Stats() map[string]any {
	a.mu.RLock()
	store := a.store
	a.mu.RUnlock()

	stats := map[string]any{
		"renders":      a.renders.Load(),
		"loads":        store.Loads(),
		"source":       store.Path(),
		"record_count": 0,
	}
	if last := a.lastRender.Load(); last > 0 {
		stats["last_render"] = time.Unix(0, last).UTC()
	}

	ds, err := store.Get(context.Background())
	if err != nil || ds == nil {
		return stats
	}
	stats["record_count"] = ds.Len()
	stats["loaded_at"] = ds.LoadedAt()
	stats["countries"] = len(ds.Distinct(models.DimensionCountry))
	stats["products"] = len(ds.Distinct(models.DimensionProduct))
	stats["regions"] = len(ds.Distinct(models.DimensionRegion))
	stats["categories"] = len(ds.Distinct(models.DimensionCategory))

	columns := make(map[string]string, len(ds.Columns()))
	for _, c := range ds.Columns() {
		columns[c.Name] = string(c.Kind)
	}
	stats["columns"] = columns
	return stats
}
