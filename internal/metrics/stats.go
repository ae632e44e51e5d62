package metrics

import "math"

// mean returns the arithmetic mean of xs, or 0 for an empty slice. Callers
// are expected to have handled the empty case as "no result" already.
func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}

	var sum float64
	for _, x := range xs {
		sum += x
	}

	return sum / float64(len(xs))
}

// stddev returns the population standard deviation of xs.
func stddev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}

	m := mean(xs)

	var sum float64
	for _, x := range xs {
		d := x - m
		sum += d * d
	}

	return math.Sqrt(sum / float64(len(xs)))
}

// round3 rounds to three decimal places. All reported rates and averages go
// through this so results are stable across platforms and readable in JSON.
func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}

// ratio returns num/den rounded, or 0 when den is zero.
func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}

	return round3(float64(num) / float64(den))
}
