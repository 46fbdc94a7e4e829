// Package policy implements a base-stock ordering heuristic for one echelon
// of a linear supply chain. Each agent consumes one observation per period,
// keeps a short rolling demand and order history, and emits a bounded order
// quantity: forecast demand with exponential smoothing, size a safety stock
// from demand variability over the lead time, order up to the target
// position, then damp the result against the previous order to avoid
// amplifying demand swings upstream (the bullwhip effect).
package policy

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Default tuning constants, applied when the corresponding Config field is
// left at its zero value.
const (
	DefaultSafetyStockFactor   = 1.5
	DefaultTargetInventoryDays = 14
	DefaultSmoothingFactor     = 0.3
)

const (
	demandWindow = 8 // retained demand samples
	orderWindow  = 4 // retained issued orders

	baseLeadTime   = 2.0 // base processing periods
	positionFactor = 1.5 // extra transit periods per echelon upstream

	serviceLevelZ = 1.96 // 95% one-sided service level

	blendNew  = 0.7 // weight of the freshly computed quantity
	blendLast = 0.3 // weight of the previous order

	upstreamGain = 0.1 // per-position order amplification above the retailer
)

// Config fixes an agent's position in the chain and its tuning constants.
// Position 0 is the retailer; higher positions sit further from the end
// customer. OrderCeiling is the upper bound of the action space and caps
// every emitted quantity. SmoothingFactor must lie in (0, 1]; inputs are
// assumed valid by the caller.
type Config struct {
	Position            int
	OrderCeiling        float64
	SafetyStockFactor   float64
	TargetInventoryDays int
	SmoothingFactor     float64
}

// Agent decides one order quantity per period for a single echelon. State is
// episode-scoped: construct one agent per participant and discard it when the
// episode ends. Agents are not safe for concurrent use; the environment loop
// is expected to call Decide strictly sequentially.
type Agent struct {
	cfg      Config
	leadTime float64

	demandHistory *history
	lastOrders    *history

	smoothedDemand float64
	demandSeen     bool

	done bool
}

// New builds an agent for the given chain position. The lead time is derived
// from the position once, here, and never recomputed. Zero-valued tunables
// fall back to the package defaults.
func New(cfg Config) *Agent {
	if cfg.SafetyStockFactor == 0 {
		cfg.SafetyStockFactor = DefaultSafetyStockFactor
	}
	if cfg.TargetInventoryDays == 0 {
		cfg.TargetInventoryDays = DefaultTargetInventoryDays
	}
	if cfg.SmoothingFactor == 0 {
		cfg.SmoothingFactor = DefaultSmoothingFactor
	}
	return &Agent{
		cfg:           cfg,
		leadTime:      baseLeadTime + positionFactor*float64(cfg.Position),
		demandHistory: newHistory(demandWindow),
		lastOrders:    newHistory(orderWindow),
	}
}

// Position reports the agent's echelon index.
func (a *Agent) Position() int { return a.cfg.Position }

// LeadTime reports the derived lead time in periods.
func (a *Agent) LeadTime() float64 { return a.leadTime }

// Decide consumes one period's observation and returns the order quantity,
// always within [0, OrderCeiling]. A terminated or truncated period returns 0
// and leaves all history untouched; once terminal, the agent stays terminal
// and every later call is a 0-returning no-op.
func (a *Agent) Decide(obs Observation, terminated, truncated bool) float64 {
	if terminated || truncated {
		a.done = true
	}
	if a.done {
		return 0
	}

	expected := a.estimateDemand(obs.Orders)
	demandStd := a.demandStdDev(expected)

	targetStock := a.safetyStock(demandStd) + expected*a.leadTime

	// Net position re-adds every still-tracked past order, arrived or not.
	// Orders may be counted again once they show up as shipments; the bias
	// is accepted rather than second-guessing arrival times.
	inventoryPosition := obs.Inventory - obs.Backorders + obs.IncomingShipments + a.lastOrders.Sum()

	quantity := math.Max(0, expected+(targetStock-inventoryPosition))

	// Damp against the previous order to limit bullwhip oscillation. The
	// first order of an episode has nothing to blend with.
	if last, ok := a.lastOrders.Last(); ok {
		quantity = blendNew*quantity + blendLast*last
	}

	// Echelons above the retailer order slightly more, buffering against
	// their longer lead times.
	if a.cfg.Position > 0 {
		quantity *= 1 + upstreamGain*float64(a.cfg.Position)
	}

	quantity = math.Min(math.Max(quantity, 0), a.cfg.OrderCeiling)

	a.lastOrders.Push(quantity)
	return quantity
}

// estimateDemand records the period's realized demand and folds it into the
// exponentially smoothed estimate. The first sample is taken as-is.
func (a *Agent) estimateDemand(demand float64) float64 {
	a.demandHistory.Push(demand)
	if a.demandSeen {
		a.smoothedDemand = a.cfg.SmoothingFactor*demand + (1-a.cfg.SmoothingFactor)*a.smoothedDemand
	} else {
		a.smoothedDemand = demand
		a.demandSeen = true
	}
	return a.smoothedDemand
}

// demandStdDev estimates demand variability. With fewer than two samples
// there is no spread to measure, so a fifth of the smoothed demand stands in.
func (a *Agent) demandStdDev(expected float64) float64 {
	if a.demandHistory.Len() >= 2 {
		return stat.StdDev(a.demandHistory.Values(), nil)
	}
	return 0.2 * expected
}

// safetyStock sizes the variability buffer for the lead-time window at the
// fixed 95% service level.
func (a *Agent) safetyStock(demandStd float64) float64 {
	return serviceLevelZ * demandStd * math.Sqrt(a.leadTime)
}
