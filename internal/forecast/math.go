package forecast

import "math"

// linearFit returns the least-squares intercept and slope for y against
// its index. Fewer than two points yields a flat line at the mean.
func linearFit(y []float64) (intercept, slope float64) {
	n := float64(len(y))
	if len(y) == 0 {
		return 0, 0
	}
	if len(y) == 1 {
		return y[0], 0
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, v := range y {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return sumY / n, 0
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return intercept, slope
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var sum float64
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

// seasonalFactor is the multiplicative annual + weekly cycle applied to
// forecast day i (1-based), with configurable amplitudes.
func seasonalFactor(i int, annual, weekly float64) float64 {
	return 1 +
		annual*math.Sin(2*math.Pi*float64(i)/365) +
		weekly*math.Sin(2*math.Pi*float64(i)/7)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// zScore maps a two-sided confidence level to its normal quantile. Only
// the handful of levels the configuration accepts in practice are tabled.
func zScore(confidence float64) float64 {
	switch {
	case confidence >= 0.99:
		return 2.576
	case confidence >= 0.95:
		return 1.960
	case confidence >= 0.90:
		return 1.645
	case confidence >= 0.85:
		return 1.440
	case confidence >= 0.80:
		return 1.282
	default:
		return 1.440
	}
}
