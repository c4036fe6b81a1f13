package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pkanalytics/pkcurve/internal/database"
	"github.com/pkanalytics/pkcurve/internal/domain"
)

// LibsqlRepository stores observations and fit runs in a libsql/Turso
// database. It implements both ObservationRepository and FitRepository.
type LibsqlRepository struct {
	db *sql.DB
}

// NewLibsqlRepository creates a libsql-backed repository.
func NewLibsqlRepository(db *sql.DB) *LibsqlRepository {
	return &LibsqlRepository{db: db}
}

// EnsureSchema creates the tables if they do not exist.
func (r *LibsqlRepository) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS observations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			subject TEXT NOT NULL,
			time REAL NOT NULL,
			conc REAL NOT NULL,
			wt REAL NOT NULL,
			dose REAL NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS fit_runs (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			observations INTEGER NOT NULL,
			chains INTEGER NOT NULL,
			iterations INTEGER NOT NULL,
			warmup INTEGER NOT NULL,
			seed INTEGER NOT NULL,
			knot REAL NOT NULL,
			duration_ms INTEGER NOT NULL,
			converged INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS fit_coefficients (
			run_id TEXT NOT NULL REFERENCES fit_runs(id),
			name TEXT NOT NULL,
			mean REAL NOT NULL,
			sd REAL NOT NULL,
			q2_5 REAL NOT NULL,
			median REAL NOT NULL,
			q97_5 REAL NOT NULL,
			rhat REAL NOT NULL,
			ess REAL NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS fit_warnings (
			run_id TEXT NOT NULL REFERENCES fit_runs(id),
			code TEXT NOT NULL,
			message TEXT NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// LoadAll reads the observation table in insertion order.
func (r *LibsqlRepository) LoadAll(ctx context.Context) ([]domain.Observation, error) {
	return database.WithRetry(ctx, 2, func() ([]domain.Observation, error) {
		rows, err := r.db.QueryContext(ctx,
			`SELECT subject, time, conc, wt, dose FROM observations ORDER BY id`)
		if err != nil {
			return nil, fmt.Errorf("query observations: %w", err)
		}
		defer rows.Close()

		var obs []domain.Observation
		for rows.Next() {
			var o domain.Observation
			if err := rows.Scan(&o.Subject, &o.Time, &o.Conc, &o.Wt, &o.Dose); err != nil {
				return nil, fmt.Errorf("scan observation: %w", err)
			}
			obs = append(obs, o)
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("iterate observations: %w", err)
		}
		if len(obs) == 0 {
			return nil, fmt.Errorf("%w: observations table is empty", ErrDatasetUnavailable)
		}
		return obs, nil
	})
}

// SaveObservations bulk-inserts an observation table, e.g. to seed a
// database from the bundled dataset.
func (r *LibsqlRepository) SaveObservations(ctx context.Context, obs []domain.Observation) error {
	query := `INSERT INTO observations (subject, time, conc, wt, dose) VALUES (?, ?, ?, ?, ?)`
	for i, o := range obs {
		if _, err := r.db.ExecContext(ctx, query, o.Subject, o.Time, o.Conc, o.Wt, o.Dose); err != nil {
			return fmt.Errorf("insert observation %d: %w", i, err)
		}
	}
	return nil
}

// SaveRun persists a fit run's metadata, coefficient summaries and warnings.
func (r *LibsqlRepository) SaveRun(ctx context.Context, run domain.FitRun) error {
	converged := 0
	if run.Model.Converged() {
		converged = 1
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO fit_runs (
			id, created_at, observations, chains, iterations, warmup,
			seed, knot, duration_ms, converged
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		run.Observations,
		run.Model.Spec.Sampler.Chains,
		run.Model.Spec.Sampler.Iterations,
		run.Model.Spec.Sampler.Warmup,
		int64(run.Model.Spec.Sampler.Seed),
		run.Model.Spec.Knot,
		run.Duration.Milliseconds(),
		converged,
	)
	if err != nil {
		return fmt.Errorf("insert fit run: %w", err)
	}

	coefQuery := `
		INSERT INTO fit_coefficients (run_id, name, mean, sd, q2_5, median, q97_5, rhat, ess)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for _, s := range run.Model.Summaries {
		if _, err := r.db.ExecContext(ctx, coefQuery,
			run.ID, s.Name, s.Mean, s.SD, s.Q2_5, s.Median, s.Q97_5, s.RHat, s.ESS); err != nil {
			return fmt.Errorf("insert coefficient %q: %w", s.Name, err)
		}
	}

	warnQuery := `INSERT INTO fit_warnings (run_id, code, message) VALUES (?, ?, ?)`
	for _, w := range run.Model.Warnings {
		if _, err := r.db.ExecContext(ctx, warnQuery, run.ID, string(w.Code), w.Message); err != nil {
			return fmt.Errorf("insert warning %q: %w", w.Code, err)
		}
	}
	return nil
}
