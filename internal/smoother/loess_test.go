package smoother

import (
	"math"
	"testing"

	"golang.org/x/exp/rand"

	"github.com/pkanalytics/pkcurve/internal/domain"
)

func wigglyCurve(n int, seed uint64) []domain.CurvePoint {
	rng := rand.New(rand.NewSource(seed))
	pts := make([]domain.CurvePoint, n)
	for i := range pts {
		t := float64(i) / float64(n-1) * 10
		pts[i] = domain.CurvePoint{
			Time:  t,
			Value: 8*math.Exp(-0.2*t) + math.Sin(3*t) + rng.Float64(),
		}
	}
	return pts
}

func totalVariation(pts []domain.CurvePoint) float64 {
	tv := 0.0
	for i := 1; i < len(pts); i++ {
		tv += math.Abs(pts[i].Value - pts[i-1].Value)
	}
	return tv
}

func TestSmooth_SpanValidation(t *testing.T) {
	pts := wigglyCurve(20, 1)
	for _, span := range []float64{-0.5, 0, 1.5} {
		if _, err := Smooth(pts, span); err == nil {
			t.Errorf("Smooth(span=%v) = nil error, want span error", span)
		}
	}
	if _, err := Smooth(nil, 0.5); err == nil {
		t.Error("Smooth(no points) = nil error, want error")
	}
}

func TestSmooth_IdempotentUnderShuffle(t *testing.T) {
	pts := wigglyCurve(40, 2)

	shuffled := append([]domain.CurvePoint{}, pts...)
	rng := rand.New(rand.NewSource(3))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	a, err := Smooth(pts, 0.5)
	if err != nil {
		t.Fatalf("Smooth(sorted) error: %v", err)
	}
	b, err := Smooth(shuffled, 0.5)
	if err != nil {
		t.Fatalf("Smooth(shuffled) error: %v", err)
	}

	if len(a.Points) != len(b.Points) {
		t.Fatalf("lengths differ: %d vs %d", len(a.Points), len(b.Points))
	}
	for i := range a.Points {
		if a.Points[i] != b.Points[i] {
			t.Errorf("point %d differs: %+v vs %+v", i, a.Points[i], b.Points[i])
		}
	}
}

func TestSmooth_WiderSpanIsSmoother(t *testing.T) {
	pts := wigglyCurve(60, 4)

	wide, err := Smooth(pts, 1.0)
	if err != nil {
		t.Fatalf("Smooth(span=1.0) error: %v", err)
	}
	narrow, err := Smooth(pts, 0.1)
	if err != nil {
		t.Fatalf("Smooth(span=0.1) error: %v", err)
	}

	if tvWide, tvNarrow := totalVariation(wide.Points), totalVariation(narrow.Points); tvWide >= tvNarrow {
		t.Errorf("total variation at span 1.0 (%v) should be below span 0.1 (%v)", tvWide, tvNarrow)
	}
}

func TestSmooth_OutputSortedOnePerInput(t *testing.T) {
	pts := wigglyCurve(25, 5)
	res, err := Smooth(pts, 0.75)
	if err != nil {
		t.Fatalf("Smooth() error: %v", err)
	}
	if len(res.Points) != len(pts) {
		t.Fatalf("got %d points, want %d", len(res.Points), len(pts))
	}
	for i := 1; i < len(res.Points); i++ {
		if res.Points[i].Time < res.Points[i-1].Time {
			t.Fatalf("output not sorted at %d: %v after %v", i, res.Points[i].Time, res.Points[i-1].Time)
		}
	}
}

func TestSmooth_ThinNeighborhoodDegrades(t *testing.T) {
	pts := []domain.CurvePoint{
		{Time: 0, Value: 1},
		{Time: 1, Value: 3},
		{Time: 2, Value: 2},
	}
	res, err := Smooth(pts, 0.5)
	if err != nil {
		t.Fatalf("Smooth() error: %v", err)
	}
	if len(res.Points) != 3 {
		t.Fatalf("got %d points, want 3", len(res.Points))
	}

	found := false
	for _, w := range res.Warnings {
		if w.Code == domain.WarnThinNeighborhood {
			found = true
		}
	}
	if !found {
		t.Error("expected an insufficient-neighborhood warning for a 3-point curve")
	}
}

func TestSmooth_ConstantCurveUnchanged(t *testing.T) {
	pts := make([]domain.CurvePoint, 15)
	for i := range pts {
		pts[i] = domain.CurvePoint{Time: float64(i), Value: 4.2}
	}
	res, err := Smooth(pts, 0.6)
	if err != nil {
		t.Fatalf("Smooth() error: %v", err)
	}
	for i, p := range res.Points {
		if math.Abs(p.Value-4.2) > 1e-9 {
			t.Errorf("point %d = %v, want 4.2", i, p.Value)
		}
	}
}
