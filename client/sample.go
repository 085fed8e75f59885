package client

import (
	"math"
	"math/rand"
	"sync"
)

// Sampler produces the value written by write-time-series. Unless redraw is
// set the first value is kept for the lifetime of the sampler.
type Sampler struct {
	min    float64
	max    float64
	redraw bool
	rnd    func() float64

	once  sync.Once
	value float64
}

// NewSampler creates a Sampler over [min, max]. rnd returns values in [0, 1)
// and defaults to math/rand.
func NewSampler(min float64, max float64, redraw bool, rnd func() float64) *Sampler {
	if rnd == nil {
		rnd = rand.Float64
	}

	return &Sampler{
		min:    min,
		max:    max,
		redraw: redraw,
		rnd:    rnd,
	}
}

// Value returns the sample, rounded to two decimals.
func (s *Sampler) Value() float64 {
	if s.redraw {
		return s.draw()
	}

	s.once.Do(func() {
		s.value = s.draw()
	})
	return s.value
}

func (s *Sampler) draw() float64 {
	v := s.min + s.rnd()*(s.max-s.min)
	return math.Round(v*100) / 100
}
