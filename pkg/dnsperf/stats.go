package dnsperf

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// SampleStats computes distribution statistics over per-query latencies
type SampleStats interface {
	// Percentile returns the p-th percentile (0-100) of an ascending, non-empty sample
	Percentile(sorted []float64, p float64) float64
	// StdDev returns the population standard deviation
	StdDev(samples []float64) float64
}

// DefaultStats ranks percentiles by linear interpolation between the two
// samples bracketing position p/100*(n-1)
var DefaultStats SampleStats = interpolatedStats{}

type interpolatedStats struct{}

func (interpolatedStats) Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(n-1)
	lo := int(math.Floor(rank))
	if lo >= n-1 {
		return sorted[n-1]
	}
	if lo < 0 {
		return sorted[0]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

func (interpolatedStats) StdDev(samples []float64) float64 {
	return stat.PopStdDev(samples, nil)
}
