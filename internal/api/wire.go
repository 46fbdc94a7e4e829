package api

import (
	"encoding/json"

	"orderbot-go/internal/policy"
)

// handshakeRequest opens a session. Detected by the handshake field so the
// decision endpoint can serve both message kinds.
type handshakeRequest struct {
	Handshake bool   `json:"handshake"`
	Ping      string `json:"ping"`
	Seed      int    `json:"seed"`
}

type handshakeResponse struct {
	Ok            bool    `json:"ok"`
	AlgorithmName string  `json:"algorithm_name"`
	Version       string  `json:"version"`
	SessionID     string  `json:"session_id"`
	Echelons      int     `json:"echelons"`
	OrderCeiling  float64 `json:"order_ceiling"`
	Message       string  `json:"message"`
}

// stepRequest carries one period for every echelon; observations are indexed
// by position, retailer first.
type stepRequest struct {
	SessionID    string            `json:"session_id"`
	Observations []wireObservation `json:"observations"`
	Terminated   bool              `json:"terminated"`
	Truncated    bool              `json:"truncated"`
}

type stepResponse struct {
	Orders []float64 `json:"orders"`
	Period int       `json:"period"`
	Done   bool      `json:"done,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// wireObservation accepts either form an environment may send: a raw ordered
// six-value array, or a keyed object.
type wireObservation struct {
	policy.Observation
}

func (o *wireObservation) UnmarshalJSON(data []byte) error {
	var vec []float64
	if err := json.Unmarshal(data, &vec); err == nil {
		obs, err := policy.ObservationFromVector(vec)
		if err != nil {
			return err
		}
		o.Observation = obs
		return nil
	}
	return json.Unmarshal(data, &o.Observation)
}
