package repository

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"

	"github.com/pkanalytics/pkcurve/internal/domain"
)

// The theophylline study ships with the binary so an analysis can run
// without any external data source: 12 subjects, 11 sampling times each,
// single oral dose.
//
//go:embed theoph.csv
var theophCSV []byte

// EmbeddedRepository serves the bundled theophylline dataset.
type EmbeddedRepository struct{}

// NewEmbeddedRepository creates a repository backed by the bundled dataset.
func NewEmbeddedRepository() *EmbeddedRepository {
	return &EmbeddedRepository{}
}

// LoadAll returns the bundled observation table.
func (r *EmbeddedRepository) LoadAll(ctx context.Context) ([]domain.Observation, error) {
	obs, err := parseCSV(bytes.NewReader(theophCSV))
	if err != nil {
		return nil, fmt.Errorf("bundled dataset: %w", err)
	}
	return obs, nil
}
