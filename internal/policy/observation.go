package policy

import "fmt"

// ObservationLen is the number of scalar fields in the flat observation form.
const ObservationLen = 6

// Observation is one period's view of an echelon. The field order matches the
// flat form the environment emits: inventory, backorders, orders, incoming
// shipments, holding cost, backorder cost.
type Observation struct {
	Inventory         float64 `json:"inventory"`
	Backorders        float64 `json:"backorders"`
	Orders            float64 `json:"orders"`
	IncomingShipments float64 `json:"incoming_shipments"`
	HoldingCost       float64 `json:"holding_cost"`
	BackorderCost     float64 `json:"backorder_cost"`
}

// ObservationFromVector maps a flat six-value observation onto named fields,
// positionally. Vectors of any other length are rejected.
func ObservationFromVector(vec []float64) (Observation, error) {
	if len(vec) != ObservationLen {
		return Observation{}, fmt.Errorf("observation vector has %d values, want %d", len(vec), ObservationLen)
	}
	return Observation{
		Inventory:         vec[0],
		Backorders:        vec[1],
		Orders:            vec[2],
		IncomingShipments: vec[3],
		HoldingCost:       vec[4],
		BackorderCost:     vec[5],
	}, nil
}

// Vector returns the flat form of the observation.
func (o Observation) Vector() []float64 {
	return []float64{
		o.Inventory,
		o.Backorders,
		o.Orders,
		o.IncomingShipments,
		o.HoldingCost,
		o.BackorderCost,
	}
}
