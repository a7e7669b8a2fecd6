package neat

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Fitness summary helpers used for generation logging and the run archive.

// Mean returns the average of values, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// Stdev returns the sample standard deviation of values, or 0 when there are
// fewer than two samples.
func Stdev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return stat.StdDev(values, nil)
}

// MaxFloat returns the maximum of values, or -Inf for an empty slice.
func MaxFloat(values []float64) float64 {
	m := math.Inf(-1)
	for _, v := range values {
		if v > m {
			m = v
		}
	}
	return m
}

// MinFloat returns the minimum of values, or +Inf for an empty slice.
func MinFloat(values []float64) float64 {
	m := math.Inf(1)
	for _, v := range values {
		if v < m {
			m = v
		}
	}
	return m
}
