package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"sales-dashboard/internal/models"
)

var ErrNotLoaded = errors.New("dataset not loaded")

type LoadFunc func(ctx context.Context, path string, opts LoaderOptions) (*models.Dataset, error)

// DatasetStore loads the dataset at most once per process. Concurrent first
// callers share a single load; failed loads are not remembered.
type DatasetStore struct {
	path  string
	opts  LoaderOptions
	load  LoadFunc
	group singleflight.Group

	mu      sync.RWMutex
	dataset *models.Dataset
	loads   atomic.Int64
}

func NewDatasetStore(path string, opts LoaderOptions) *DatasetStore {
	return &DatasetStore{path: path, opts: opts, load: LoadDataset}
}

// NewStaticStore wraps an already built dataset.
func NewStaticStore(ds *models.Dataset) *DatasetStore {
	s := &DatasetStore{}
	s.dataset = ds
	return s
}

func (s *DatasetStore) Get(ctx context.Context) (*models.Dataset, error) {
	s.mu.RLock()
	ds := s.dataset
	s.mu.RUnlock()
	if ds != nil {
		return ds, nil
	}
	if s.load == nil {
		return nil, ErrNotLoaded
	}

	v, err, _ := s.group.Do(s.path, func() (any, error) {
		s.mu.RLock()
		cached := s.dataset
		s.mu.RUnlock()
		if cached != nil {
			return cached, nil
		}

		s.loads.Add(1)
		loaded, err := s.load(ctx, s.path, s.opts)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		s.dataset = loaded
		s.mu.Unlock()
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Dataset), nil
}

// Loads reports how many times the source file has been read.
func (s *DatasetStore) Loads() int64 {
	return s.loads.Load()
}

func (s *DatasetStore) Path() string {
	return s.path
}
