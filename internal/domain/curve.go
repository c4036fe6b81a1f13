package domain

// CurvePoint is one (time, value) pair on a concentration curve.
type CurvePoint struct {
	Time  float64
	Value float64
}

// FittedCurve extracts the (time, posterior mean) pairs from a fitted-value
// table, preserving row order.
func FittedCurve(fitted []FittedValue) []CurvePoint {
	pts := make([]CurvePoint, len(fitted))
	for i, f := range fitted {
		pts[i] = CurvePoint{Time: f.Time, Value: f.Mean}
	}
	return pts
}
