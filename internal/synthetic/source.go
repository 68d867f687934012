// Package synthetic isolates simulated measurements behind an injectable
// source so that analysis output is reproducible under test. Metrics such as
// API response time and technology adoption are not observed from data; they
// are stand-ins produced here.
package synthetic

import (
	"math/rand"
	"sync"
	"time"
)

// Source supplies the random draws used by simulated metrics and forecast
// jitter. Implementations must be safe for concurrent use; one source is
// shared across the forecast and insight goroutines of a report run.
type Source interface {
	// Uniform returns a value uniformly distributed in [min, max).
	Uniform(min, max float64) float64
	// Normal returns a normally distributed value with the given mean and
	// standard deviation.
	Normal(mean, stddev float64) float64
	// IntBetween returns an integer in [min, max].
	IntBetween(min, max int) int
}

// randSource is the production Source backed by math/rand. *rand.Rand is
// not goroutine safe, so every draw holds the mutex.
type randSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSource creates a Source seeded with the given seed. A zero seed uses the
// current time, giving fresh draws per run.
func NewSource(seed int64) Source {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &randSource{rng: rand.New(rand.NewSource(seed))}
}

func (s *randSource) Uniform(min, max float64) float64 {
	if max <= min {
		return min
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return min + s.rng.Float64()*(max-min)
}

func (s *randSource) Normal(mean, stddev float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return mean + s.rng.NormFloat64()*stddev
}

func (s *randSource) IntBetween(min, max int) int {
	if max <= min {
		return min
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return min + s.rng.Intn(max-min+1)
}

// Fixed is a deterministic Source for tests: Uniform returns the midpoint,
// Normal returns the mean, IntBetween returns min.
type Fixed struct{}

func (Fixed) Uniform(min, max float64) float64 { return (min + max) / 2 }

func (Fixed) Normal(mean, _ float64) float64 { return mean }

func (Fixed) IntBetween(min, _ int) int { return min }
