package domain

import "time"

// FitRun is the persisted record of one completed fit.
type FitRun struct {
	ID           string
	CreatedAt    time.Time
	Observations int
	Model        *FittedModel
	Duration     time.Duration
}

// NewFitRun stamps a completed model with run metadata.
func NewFitRun(id string, observations int, model *FittedModel, duration time.Duration) FitRun {
	return FitRun{
		ID:           id,
		CreatedAt:    time.Now().UTC(),
		Observations: observations,
		Model:        model,
		Duration:     duration,
	}
}
