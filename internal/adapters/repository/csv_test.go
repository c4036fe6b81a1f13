package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkanalytics/pkcurve/internal/domain"
)

func writeDataset(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "obs.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	return path
}

func TestCSVRepository_LoadAll(t *testing.T) {
	path := writeDataset(t, "Subject,Time,conc,Wt,Dose\n1,0,0.74,79.6,4.02\n1,0.25,2.84,79.6,4.02\n2,0.57,6.57,72.4,4.4\n")

	obs, err := NewCSVRepository(path).LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll() error: %v", err)
	}
	if len(obs) != 3 {
		t.Fatalf("got %d observations, want 3", len(obs))
	}
	want := domain.Observation{Subject: "1", Time: 0.25, Conc: 2.84, Wt: 79.6, Dose: 4.02}
	if obs[1] != want {
		t.Errorf("obs[1] = %+v, want %+v", obs[1], want)
	}
}

func TestCSVRepository_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.csv")
	_, err := NewCSVRepository(path).LoadAll(context.Background())
	if !errors.Is(err, ErrDatasetUnavailable) {
		t.Errorf("LoadAll(missing) = %v, want ErrDatasetUnavailable", err)
	}
}

func TestCSVRepository_BadInput(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"wrong header", "id,t,y,w,d\n1,0,1,70,4\n"},
		{"missing column", "Subject,Time,conc,Wt\n1,0,1,70\n"},
		{"non-numeric time", "Subject,Time,conc,Wt,Dose\n1,abc,1,70,4\n"},
		{"no rows", "Subject,Time,conc,Wt,Dose\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeDataset(t, tt.content)
			if _, err := NewCSVRepository(path).LoadAll(context.Background()); err == nil {
				t.Error("LoadAll() = nil error, want parse error")
			}
		})
	}
}

func TestEmbeddedRepository_LoadAll(t *testing.T) {
	obs, err := NewEmbeddedRepository().LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll() error: %v", err)
	}
	if len(obs) != 132 {
		t.Errorf("got %d observations, want 132", len(obs))
	}
	if err := domain.ValidateObservations(obs); err != nil {
		t.Errorf("bundled dataset invalid: %v", err)
	}
	if got := len(domain.Subjects(obs)); got != 12 {
		t.Errorf("got %d subjects, want 12", got)
	}
}
