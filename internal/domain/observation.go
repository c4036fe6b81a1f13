package domain

import "fmt"

// Observation is a single pharmacokinetic measurement: the drug concentration
// observed for one subject at one time point after dosing.
type Observation struct {
	Subject string
	Time    float64 // hours since dose
	Conc    float64 // observed concentration, mg/L
	Wt      float64 // subject body weight, kg
	Dose    float64 // administered dose, mg/kg
}

// Validate checks the value ranges for a single observation.
func (o Observation) Validate() error {
	if o.Subject == "" {
		return fmt.Errorf("observation: empty subject id")
	}
	if o.Time < 0 {
		return fmt.Errorf("observation %s: negative time %v", o.Subject, o.Time)
	}
	if o.Conc < 0 {
		return fmt.Errorf("observation %s: negative concentration %v", o.Subject, o.Conc)
	}
	if o.Wt <= 0 {
		return fmt.Errorf("observation %s: non-positive weight %v", o.Subject, o.Wt)
	}
	if o.Dose <= 0 {
		return fmt.Errorf("observation %s: non-positive dose %v", o.Subject, o.Dose)
	}
	return nil
}

// ValidateObservations checks every record and requires a non-empty table.
func ValidateObservations(obs []Observation) error {
	if len(obs) == 0 {
		return fmt.Errorf("empty observation table")
	}
	for i, o := range obs {
		if err := o.Validate(); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}
	return nil
}

// Subjects returns the distinct subject ids in first-appearance order.
func Subjects(obs []Observation) []string {
	seen := make(map[string]bool, len(obs))
	var ids []string
	for _, o := range obs {
		if !seen[o.Subject] {
			seen[o.Subject] = true
			ids = append(ids, o.Subject)
		}
	}
	return ids
}

// TimeRange returns the minimum and maximum observed time.
// Both are zero for an empty table.
func TimeRange(obs []Observation) (min, max float64) {
	if len(obs) == 0 {
		return 0, 0
	}
	min, max = obs[0].Time, obs[0].Time
	for _, o := range obs[1:] {
		if o.Time < min {
			min = o.Time
		}
		if o.Time > max {
			max = o.Time
		}
	}
	return min, max
}
