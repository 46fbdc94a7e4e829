package sim

import "math/rand"

// DemandSource yields the end-customer demand for each period.
type DemandSource interface {
	Demand(period int) float64
}

// ConstantDemand emits the same demand every period.
type ConstantDemand float64

func (d ConstantDemand) Demand(int) float64 { return float64(d) }

// StepDemand emits Base until Week, then After — the classic disturbance used
// to provoke bullwhip behavior.
type StepDemand struct {
	Base  float64
	After float64
	Week  int
}

func (d StepDemand) Demand(period int) float64 {
	if period < d.Week {
		return d.Base
	}
	return d.After
}

// RandomDemand draws uniformly from [Low, High) with a fixed seed, so a given
// seed replays the same episode.
type RandomDemand struct {
	rng       *rand.Rand
	low, high float64
}

func NewRandomDemand(seed int64, low, high float64) *RandomDemand {
	return &RandomDemand{rng: rand.New(rand.NewSource(seed)), low: low, high: high}
}

func (d *RandomDemand) Demand(int) float64 {
	return d.low + d.rng.Float64()*(d.high-d.low)
}
