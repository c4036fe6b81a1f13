// Package repository provides observation and fit-run storage adapters.
package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"

	"github.com/pkanalytics/pkcurve/internal/domain"
)

// ErrDatasetUnavailable marks a missing or unreadable dataset source.
// This is terminal for the pipeline.
var ErrDatasetUnavailable = errors.New("dataset unavailable")

var csvHeader = []string{"Subject", "Time", "conc", "Wt", "Dose"}

// CSVRepository loads observations from a CSV file with the header
// Subject,Time,conc,Wt,Dose.
type CSVRepository struct {
	path string
}

// NewCSVRepository creates a repository reading from the given file path.
func NewCSVRepository(path string) *CSVRepository {
	return &CSVRepository{path: path}
}

// LoadAll reads the observation table unchanged from the file.
func (r *CSVRepository) LoadAll(ctx context.Context) ([]domain.Observation, error) {
	f, err := os.Open(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDatasetUnavailable, r.path)
		}
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	obs, err := parseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", r.path, err)
	}
	return obs, nil
}

// parseCSV decodes the fixed observation schema.
func parseCSV(r io.Reader) ([]domain.Observation, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) != len(csvHeader) {
		return nil, fmt.Errorf("expected columns %v, got %v", csvHeader, header)
	}
	for i, col := range csvHeader {
		if header[i] != col {
			return nil, fmt.Errorf("expected column %d to be %q, got %q", i, col, header[i])
		}
	}

	var obs []domain.Observation
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		o := domain.Observation{Subject: record[0]}
		if o.Time, err = strconv.ParseFloat(record[1], 64); err != nil {
			return nil, fmt.Errorf("line %d: time: %w", line, err)
		}
		if o.Conc, err = strconv.ParseFloat(record[2], 64); err != nil {
			return nil, fmt.Errorf("line %d: conc: %w", line, err)
		}
		if o.Wt, err = strconv.ParseFloat(record[3], 64); err != nil {
			return nil, fmt.Errorf("line %d: weight: %w", line, err)
		}
		if o.Dose, err = strconv.ParseFloat(record[4], 64); err != nil {
			return nil, fmt.Errorf("line %d: dose: %w", line, err)
		}
		obs = append(obs, o)
	}
	if len(obs) == 0 {
		return nil, fmt.Errorf("no observation rows")
	}
	return obs, nil
}
