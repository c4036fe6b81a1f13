package domain

// SampleOrigin tags a sample value as drawn before or after conditioning
// on the data.
type SampleOrigin string

const (
	OriginPrior     SampleOrigin = "prior"
	OriginPosterior SampleOrigin = "posterior"
)

// LabeledSample is one value with its origin label.
type LabeledSample struct {
	Value  float64
	Origin SampleOrigin
}

// Comparison pairs fresh prior draws with the posterior draw column of one
// coefficient. The two sets are independent in length and are only combined
// by concatenation.
type Comparison struct {
	Coefficient string
	Samples     []LabeledSample
}

// Count returns the number of samples with the given origin.
func (c Comparison) Count(origin SampleOrigin) int {
	n := 0
	for _, s := range c.Samples {
		if s.Origin == origin {
			n++
		}
	}
	return n
}

// Values returns the sample values with the given origin, in order.
func (c Comparison) Values(origin SampleOrigin) []float64 {
	var vals []float64
	for _, s := range c.Samples {
		if s.Origin == origin {
			vals = append(vals, s.Value)
		}
	}
	return vals
}
