package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"orderbot-go/internal/policy"
)

// Handler serves the decision endpoint: a handshake message opens a session
// holding one ordering agent per echelon, and step messages feed each agent
// its observation and return the resulting orders. Responses are always JSON
// and always HTTP 200; protocol errors travel in the error field.
type Handler struct {
	cfg    Config
	store  *sessionStore
	logger *zap.Logger
}

// NewHandler builds the decision handler with an empty session store.
func NewHandler(cfg Config, logger *zap.Logger) *Handler {
	return &Handler{
		cfg:    cfg,
		store:  newSessionStore(cfg.MaxSessions),
		logger: logger,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		writeJSON(w, errorResponse{Error: "POST required"})
		return
	}

	// Read the body once so it can be decoded twice: handshake detection
	// first, then the step request.
	body, err := readAllLimited(r, 1<<20)
	if err != nil {
		writeJSON(w, errorResponse{Error: "unreadable body"})
		return
	}

	var hs handshakeRequest
	_ = json.Unmarshal(body, &hs)
	if hs.Handshake {
		h.handshake(w, hs)
		return
	}
	h.step(w, body)
}

func (h *Handler) handshake(w http.ResponseWriter, hs handshakeRequest) {
	agents := make([]*policy.Agent, h.cfg.Echelons)
	for pos := range agents {
		agents[pos] = policy.New(policy.Config{
			Position:            pos,
			OrderCeiling:        h.cfg.OrderCeiling,
			SafetyStockFactor:   h.cfg.SafetyStockFactor,
			TargetInventoryDays: h.cfg.TargetInventoryDays,
			SmoothingFactor:     h.cfg.SmoothingFactor,
		})
	}

	sess, err := h.store.create(agents)
	if err != nil {
		writeJSON(w, errorResponse{Error: err.Error()})
		return
	}

	h.logger.Info("handshake",
		zap.String("session", sess.id.String()),
		zap.String("ping", hs.Ping),
		zap.Int("seed", hs.Seed),
	)
	writeJSON(w, handshakeResponse{
		Ok:            true,
		AlgorithmName: h.cfg.AlgorithmName,
		Version:       h.cfg.Version,
		SessionID:     sess.id.String(),
		Echelons:      h.cfg.Echelons,
		OrderCeiling:  h.cfg.OrderCeiling,
		Message:       "OrderBot ready",
	})
}

func (h *Handler) step(w http.ResponseWriter, body []byte) {
	var req stepRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, errorResponse{Error: fmt.Sprintf("bad step request: %v", err)})
		return
	}

	id, err := uuid.Parse(req.SessionID)
	if err != nil {
		writeJSON(w, errorResponse{Error: "bad session_id"})
		return
	}
	sess, ok := h.store.get(id)
	if !ok {
		writeJSON(w, errorResponse{Error: "unknown session"})
		return
	}
	if len(req.Observations) != len(sess.agents) {
		writeJSON(w, errorResponse{Error: fmt.Sprintf(
			"got %d observations, want one per echelon (%d)", len(req.Observations), len(sess.agents))})
		return
	}

	done := req.Terminated || req.Truncated

	sess.mu.Lock()
	orders := make([]float64, len(sess.agents))
	for pos, agent := range sess.agents {
		q := agent.Decide(req.Observations[pos].Observation, req.Terminated, req.Truncated)
		orders[pos] = q

		// Terminal steps are forced zeros, not decisions; keep them out
		// of the metrics.
		if !done {
			label := strconv.Itoa(pos)
			decisionsTotal.WithLabelValues(label).Inc()
			orderQuantity.WithLabelValues(label).Observe(q)
		}
	}
	sess.period++
	period := sess.period
	sess.mu.Unlock()

	if done {
		h.store.remove(sess.id)
	}

	h.logger.Info("step",
		zap.String("session", sess.id.String()),
		zap.Int("period", period),
		zap.Float64s("orders", orders),
		zap.Bool("done", done),
	)
	writeJSON(w, stepResponse{Orders: orders, Period: period, Done: done})
}

func writeJSON(w http.ResponseWriter, v any) {
	_ = json.NewEncoder(w).Encode(v)
}
