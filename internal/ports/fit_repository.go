package ports

import (
	"context"

	"github.com/pkanalytics/pkcurve/internal/domain"
)

// FitRepository persists completed fit runs: run metadata, coefficient
// summaries and warnings. Posterior sample tables are not persisted.
type FitRepository interface {
	SaveRun(ctx context.Context, run domain.FitRun) error
}
