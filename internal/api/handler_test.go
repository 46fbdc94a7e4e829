package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T, mutate ...func(*Config)) *Handler {
	t.Helper()
	cfg := validConfig()
	for _, m := range mutate {
		m(&cfg)
	}
	require.NoError(t, cfg.Validate())
	return NewHandler(cfg, zap.NewNop())
}

func post(t *testing.T, h http.Handler, body string, out any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/decision", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

func openSession(t *testing.T, h *Handler) string {
	t.Helper()
	var resp handshakeResponse
	post(t, h, `{"handshake": true, "ping": "hello", "seed": 7}`, &resp)
	require.True(t, resp.Ok)
	return resp.SessionID
}

const keyedObs = `{"inventory": 10, "backorders": 0, "orders": 5, "incoming_shipments": 0, "holding_cost": 1, "backorder_cost": 2}`

func stepBody(t *testing.T, sessionID string, obs string, echelons int, terminated bool) string {
	t.Helper()
	body := `{"session_id": "` + sessionID + `", "observations": [`
	for i := 0; i < echelons; i++ {
		if i > 0 {
			body += ","
		}
		body += obs
	}
	body += `]`
	if terminated {
		body += `, "terminated": true`
	}
	return body + `}`
}

func TestHandshakeOpensSession(t *testing.T) {
	h := newTestHandler(t)

	var resp handshakeResponse
	post(t, h, `{"handshake": true}`, &resp)

	assert.True(t, resp.Ok)
	assert.Equal(t, "OrderBot_BaseStock", resp.AlgorithmName)
	assert.Equal(t, "v1.0.0", resp.Version)
	assert.Equal(t, 4, resp.Echelons)
	assert.Equal(t, 100.0, resp.OrderCeiling)
	assert.Equal(t, "OrderBot ready", resp.Message)

	_, err := uuid.Parse(resp.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 1, h.store.count())
}

func TestStepWithKeyedObservations(t *testing.T) {
	h := newTestHandler(t)
	id := openSession(t, h)

	var resp stepResponse
	post(t, h, stepBody(t, id, keyedObs, 4, false), &resp)

	require.Len(t, resp.Orders, 4)
	for _, q := range resp.Orders {
		assert.GreaterOrEqual(t, q, 0.0)
		assert.LessOrEqual(t, q, 100.0)
	}
	assert.Greater(t, resp.Orders[0], 0.0)
	assert.Equal(t, 1, resp.Period)
	assert.False(t, resp.Done)
}

func TestStepWithVectorObservations(t *testing.T) {
	h := newTestHandler(t)
	id := openSession(t, h)

	var keyed stepResponse
	post(t, h, stepBody(t, id, keyedObs, 4, false), &keyed)

	// A fresh session fed the same values as a flat vector must decide
	// identically.
	id2 := openSession(t, h)
	var vector stepResponse
	post(t, h, stepBody(t, id2, `[10, 0, 5, 0, 1, 2]`, 4, false), &vector)

	assert.Equal(t, keyed.Orders, vector.Orders)
}

func TestStepRejectsWrongObservationCount(t *testing.T) {
	h := newTestHandler(t)
	id := openSession(t, h)

	var resp errorResponse
	post(t, h, stepBody(t, id, keyedObs, 2, false), &resp)
	assert.Contains(t, resp.Error, "observations")
}

func TestStepRejectsMalformedVector(t *testing.T) {
	h := newTestHandler(t)
	id := openSession(t, h)

	var resp errorResponse
	post(t, h, stepBody(t, id, `[1, 2, 3]`, 4, false), &resp)
	assert.NotEmpty(t, resp.Error)
}

func TestStepUnknownSession(t *testing.T) {
	h := newTestHandler(t)

	var resp errorResponse
	post(t, h, stepBody(t, uuid.NewString(), keyedObs, 4, false), &resp)
	assert.Equal(t, "unknown session", resp.Error)
}

func TestStepBadSessionID(t *testing.T) {
	h := newTestHandler(t)

	var resp errorResponse
	post(t, h, stepBody(t, "not-a-uuid", keyedObs, 4, false), &resp)
	assert.Equal(t, "bad session_id", resp.Error)
}

func TestTerminalStepReturnsZerosAndClosesSession(t *testing.T) {
	h := newTestHandler(t)
	id := openSession(t, h)

	var resp stepResponse
	post(t, h, stepBody(t, id, keyedObs, 4, true), &resp)

	assert.True(t, resp.Done)
	assert.Equal(t, []float64{0, 0, 0, 0}, resp.Orders)
	assert.Equal(t, 0, h.store.count())

	var errResp errorResponse
	post(t, h, stepBody(t, id, keyedObs, 4, false), &errResp)
	assert.Equal(t, "unknown session", errResp.Error)
}

// Concurrent steps carrying the same session id must be serialized: every
// response gets a distinct period and no increment is lost.
func TestConcurrentStepsOnOneSession(t *testing.T) {
	h := newTestHandler(t)
	id := openSession(t, h)

	const steps = 8
	periods := make(chan int, steps)
	var wg sync.WaitGroup
	for i := 0; i < steps; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/api/decision",
				bytes.NewBufferString(stepBody(t, id, keyedObs, 4, false)))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			var resp stepResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Error(err)
				return
			}
			periods <- resp.Period
		}()
	}
	wg.Wait()
	close(periods)

	seen := make(map[int]bool)
	for p := range periods {
		assert.False(t, seen[p], "period %d returned twice", p)
		seen[p] = true
	}
	require.Len(t, seen, steps)
	for p := 1; p <= steps; p++ {
		assert.True(t, seen[p], "period %d missing", p)
	}

	sess, ok := h.store.get(uuid.MustParse(id))
	require.True(t, ok)
	assert.Equal(t, steps, sess.period)
}

// Forced zeros at episode end are not decisions and must not show up in the
// decision metrics.
func TestTerminalStepSkipsMetrics(t *testing.T) {
	h := newTestHandler(t)
	id := openSession(t, h)

	before := testutil.ToFloat64(decisionsTotal.WithLabelValues("0"))

	var resp stepResponse
	post(t, h, stepBody(t, id, keyedObs, 4, true), &resp)
	require.True(t, resp.Done)

	assert.Equal(t, before, testutil.ToFloat64(decisionsTotal.WithLabelValues("0")))
}

func TestSessionLimit(t *testing.T) {
	h := newTestHandler(t, func(c *Config) { c.MaxSessions = 1 })
	openSession(t, h)

	var resp handshakeResponse
	post(t, h, `{"handshake": true}`, &resp)
	assert.False(t, resp.Ok)
}

func TestNonPostRejected(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/decision", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "POST required", resp.Error)
}

func TestMalformedBody(t *testing.T) {
	h := newTestHandler(t)

	var resp errorResponse
	post(t, h, `{"session_id": 12`, &resp)
	assert.NotEmpty(t, resp.Error)
}
