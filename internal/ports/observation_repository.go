package ports

import (
	"context"

	"github.com/pkanalytics/pkcurve/internal/domain"
)

// ObservationRepository supplies the fixed observation table for an analysis.
// Implementations return the table unchanged from its source and surface a
// dataset-unavailable error when the source is missing.
type ObservationRepository interface {
	LoadAll(ctx context.Context) ([]domain.Observation, error)
}
