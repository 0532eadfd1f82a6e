package services

import (
	"fmt"
)

// LoadError reports why the source CSV could not become a Dataset. Row is
// the 1-based line number in the file, zero when the failure is file-wide.
type LoadError struct {
	Path   string
	Row    int
	Column string
	Err    error
}

func (e *LoadError) Error() string {
	switch {
	case e.Row > 0 && e.Column != "":
		return fmt.Sprintf("load %s: line %d, column %q: %v", e.Path, e.Row, e.Column, e.Err)
	case e.Column != "":
		return fmt.Sprintf("load %s: column %q: %v", e.Path, e.Column, e.Err)
	default:
		return fmt.Sprintf("load %s: %v", e.Path, e.Err)
	}
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// EmptyDatasetError is returned by aggregates that are undefined over zero
// rows, such as a mean or a ranking.
type EmptyDatasetError struct {
	Op string
}

func (e *EmptyDatasetError) Error() string {
	return fmt.Sprintf("%s: no rows to aggregate", e.Op)
}
