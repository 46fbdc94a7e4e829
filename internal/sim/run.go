package sim

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"orderbot-go/internal/policy"
)

// Result summarizes a finished episode.
type Result struct {
	Episode uuid.UUID
	Periods int
	Orders  [][]float64 // orders[period][position]
	Costs   []EchelonCost
	Total   float64
}

// MeanOrders averages each echelon's orders over the episode.
func (r *Result) MeanOrders() []float64 {
	if len(r.Orders) == 0 {
		return nil
	}
	out := make([]float64, len(r.Orders[0]))
	perEchelon := make([]float64, len(r.Orders))
	for pos := range out {
		for t, period := range r.Orders {
			perEchelon[t] = period[pos]
		}
		out[pos] = stat.Mean(perEchelon, nil)
	}
	return out
}

// Run drives one policy agent per echelon to the horizon. Agents observe,
// decide, and the chain steps — strictly sequentially, one period at a time.
func Run(c *Chain, agents []*policy.Agent, logger *zap.Logger) (*Result, error) {
	result := &Result{Episode: c.Episode()}

	for !c.Terminated() {
		orders := make([]float64, len(agents))
		for pos, agent := range agents {
			orders[pos] = agent.Decide(c.Observe(pos), false, false)
		}
		if err := c.Step(orders); err != nil {
			return nil, err
		}
		result.Orders = append(result.Orders, orders)
		logger.Debug("period stepped",
			zap.String("episode", c.Episode().String()),
			zap.Int("period", c.Period()),
			zap.Float64s("orders", orders),
		)
	}

	// Flush the terminal period through every agent so they latch.
	for pos, agent := range agents {
		agent.Decide(c.Observe(pos), true, false)
	}

	result.Periods = c.Period()
	result.Costs = c.Costs()
	result.Total = c.TotalCost()
	return result, nil
}

// Agents builds one policy agent per echelon, bound to the chain's action
// space and sharing the given tunables.
func Agents(c *Chain, safetyStockFactor float64, targetInventoryDays int, smoothingFactor float64) []*policy.Agent {
	agents := make([]*policy.Agent, c.Echelons())
	for pos := range agents {
		agents[pos] = policy.New(policy.Config{
			Position:            pos,
			OrderCeiling:        c.OrderCeiling(),
			SafetyStockFactor:   safetyStockFactor,
			TargetInventoryDays: targetInventoryDays,
			SmoothingFactor:     smoothingFactor,
		})
	}
	return agents
}
