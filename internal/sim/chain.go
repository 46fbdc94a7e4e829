// Package sim implements a small linear supply-chain simulator. It produces
// per-echelon observations in the same six-field shape the ordering policy
// consumes and applies one vector of orders per period: shipments travel
// downstream with a transit delay, order information travels upstream with a
// one-period delay, and the factory feeds its own production pipeline.
package sim

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	"orderbot-go/internal/policy"
)

// ErrEpisodeOver is returned by Step once the horizon has been reached.
var ErrEpisodeOver = errors.New("episode is over")

// Config describes one episode of the chain.
type Config struct {
	Echelons         int     // chain length, position 0 is the retailer
	Periods          int     // episode horizon
	OrderCeiling     float64 // action-space upper bound exposed to agents
	InitialInventory float64 // on-hand stock per echelon at period 0
	HoldingCost      float64 // cost per unit held per period
	BackorderCost    float64 // cost per unit backlogged per period
	ShipDelay        int     // transit periods between adjacent echelons
	Demand           DemandSource
}

func (c *Config) applyDefaults() {
	if c.Echelons == 0 {
		c.Echelons = 4
	}
	if c.Periods == 0 {
		c.Periods = 36
	}
	if c.OrderCeiling == 0 {
		c.OrderCeiling = 100
	}
	if c.InitialInventory == 0 {
		c.InitialInventory = 12
	}
	if c.HoldingCost == 0 {
		c.HoldingCost = 0.5
	}
	if c.BackorderCost == 0 {
		c.BackorderCost = 1
	}
	if c.ShipDelay == 0 {
		c.ShipDelay = 2
	}
	if c.Demand == nil {
		c.Demand = ConstantDemand(4)
	}
}

// echelon is the per-position mutable state.
type echelon struct {
	inventory     float64
	backlog       float64
	pipeline      []float64 // in-transit shipments, index 0 arrives next step
	incomingOrder float64   // demand visible this period
	holdingCost   float64   // accrued
	backorderCost float64   // accrued
}

// EchelonCost is the accrued cost of one position over the episode so far.
type EchelonCost struct {
	Position  int     `json:"position"`
	Holding   float64 `json:"holding"`
	Backorder float64 `json:"backorder"`
}

func (c EchelonCost) Total() float64 { return c.Holding + c.Backorder }

// Chain is one episode of the simulated supply chain.
type Chain struct {
	cfg      Config
	episode  uuid.UUID
	echelons []*echelon
	period   int
	done     bool
}

// New starts an episode. Pipelines are primed with the initial demand level
// so a constant-demand chain begins near equilibrium.
func New(cfg Config) *Chain {
	cfg.applyDefaults()

	prime := cfg.Demand.Demand(0)
	echelons := make([]*echelon, cfg.Echelons)
	for i := range echelons {
		pipeline := make([]float64, cfg.ShipDelay)
		for j := range pipeline {
			pipeline[j] = prime
		}
		echelons[i] = &echelon{
			inventory:     cfg.InitialInventory,
			pipeline:      pipeline,
			incomingOrder: prime,
		}
	}
	echelons[0].incomingOrder = cfg.Demand.Demand(0)

	return &Chain{
		cfg:      cfg,
		episode:  uuid.New(),
		echelons: echelons,
	}
}

// Episode identifies this run for log correlation.
func (c *Chain) Episode() uuid.UUID { return c.episode }

// Echelons reports the chain length.
func (c *Chain) Echelons() int { return c.cfg.Echelons }

// OrderCeiling is the action-space upper bound agents read at construction.
func (c *Chain) OrderCeiling() float64 { return c.cfg.OrderCeiling }

// Period is the index of the period about to be stepped.
func (c *Chain) Period() int { return c.period }

// Terminated reports whether the horizon has been reached.
func (c *Chain) Terminated() bool { return c.done }

// Observe returns the current-period view of one echelon.
func (c *Chain) Observe(position int) policy.Observation {
	e := c.echelons[position]
	return policy.Observation{
		Inventory:         e.inventory,
		Backorders:        e.backlog,
		Orders:            e.incomingOrder,
		IncomingShipments: e.pipeline[0],
		HoldingCost:       c.cfg.HoldingCost,
		BackorderCost:     c.cfg.BackorderCost,
	}
}

// Step applies one order per echelon and advances a period: shipments arrive,
// demand plus backlog is filled from on-hand stock, fulfilled goods enter the
// downstream transit pipeline, this period's orders become next period's
// upstream demand, and holding/backorder costs accrue.
func (c *Chain) Step(orders []float64) error {
	if c.done {
		return ErrEpisodeOver
	}
	if len(orders) != len(c.echelons) {
		return fmt.Errorf("got %d orders, want one per echelon (%d)", len(orders), len(c.echelons))
	}

	// Receive in-transit shipments.
	for _, e := range c.echelons {
		e.inventory += e.pipeline[0]
		copy(e.pipeline, e.pipeline[1:])
		e.pipeline[len(e.pipeline)-1] = 0
	}

	// Fill demand and backlog; echelon 0 ships to the end customer, the
	// rest ship into the downstream pipeline.
	for i, e := range c.echelons {
		owed := e.incomingOrder + e.backlog
		shipped := math.Min(e.inventory, owed)
		e.inventory -= shipped
		e.backlog = owed - shipped
		if i > 0 {
			down := c.echelons[i-1]
			down.pipeline[len(down.pipeline)-1] += shipped
		}
	}

	// Propagate order information upstream; the factory's order goes into
	// its own production pipeline.
	last := len(c.echelons) - 1
	for i, q := range orders {
		if i < last {
			c.echelons[i+1].incomingOrder = q
		} else {
			e := c.echelons[i]
			e.pipeline[len(e.pipeline)-1] += q
		}
	}

	for _, e := range c.echelons {
		e.holdingCost += c.cfg.HoldingCost * e.inventory
		e.backorderCost += c.cfg.BackorderCost * e.backlog
	}

	c.period++
	if c.period >= c.cfg.Periods {
		c.done = true
	}
	c.echelons[0].incomingOrder = c.cfg.Demand.Demand(c.period)

	return nil
}

// Costs reports the accrued per-echelon costs so far.
func (c *Chain) Costs() []EchelonCost {
	out := make([]EchelonCost, len(c.echelons))
	for i, e := range c.echelons {
		out[i] = EchelonCost{Position: i, Holding: e.holdingCost, Backorder: e.backorderCost}
	}
	return out
}

// TotalCost sums holding and backorder costs across the chain.
func (c *Chain) TotalCost() float64 {
	var sum float64
	for _, e := range c.echelons {
		sum += e.holdingCost + e.backorderCost
	}
	return sum
}
