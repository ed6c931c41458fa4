package metrics

import "github.com/san-kum/orbsim/internal/dynamo"

// Defaults returns the metrics reported for every run. radius bounds the
// Boundedness check.
func Defaults(g, eps, radius float64) []dynamo.Metric {
	return []dynamo.Metric{
		NewEnergyDrift(g, eps),
		NewMomentumDrift(),
		NewBoundedness(radius),
	}
}

// Collect reads every metric into a map keyed by name.
func Collect(ms []dynamo.Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}
