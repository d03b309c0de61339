package server

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyleftdev/annealer/internal/config"
	"github.com/copyleftdev/annealer/internal/logging"
	"github.com/copyleftdev/annealer/internal/metrics"
	"github.com/copyleftdev/annealer/internal/optimization"
	"github.com/copyleftdev/annealer/internal/optimization/functions"
)

// testConfig creates a configuration with the environment defaults.
func testConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg, err := config.LoadFrom(map[string]string{"ENV": "test"})
	require.NoError(t, err)
	return cfg
}

func testLogger() *logging.Logger {
	return logging.New(logging.DebugLevel, io.Discard)
}

type harness struct {
	srv    *Server
	router http.Handler
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()

	reg := prometheus.NewRegistry()
	opts = append([]Option{WithMetrics(metrics.NewCollector(reg))}, opts...)
	srv := NewServer(testConfig(t), testLogger(), opts...)
	return &harness{
		srv:    srv,
		router: NewRouter(srv, testLogger(), reg),
	}
}

func (h *harness) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	rr := httptest.NewRecorder()
	h.router.ServeHTTP(rr, httptest.NewRequest(method, path, r))
	return rr
}

func (h *harness) start(t *testing.T, body string) string {
	t.Helper()

	rr := h.do(t, http.MethodPost, "/api/v1/anneal", body)
	require.Equal(t, http.StatusAccepted, rr.Code, rr.Body.String())

	var resp StartResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, StatusPending, resp.Status)
	_, err := uuid.Parse(resp.RunID)
	require.NoError(t, err)
	return resp.RunID
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rr.Body).Decode(v), rr.Body.String())
}

func TestRegisterRoutes(t *testing.T) {
	srv := NewServer(testConfig(t), testLogger())
	r := chi.NewRouter()
	srv.RegisterRoutes(r)

	id := uuid.NewString()
	tests := []struct {
		method      string
		path        string
		shouldExist bool
	}{
		{"POST", "/api/v1/anneal", true},
		{"GET", "/api/v1/runs/" + id, true},
		{"DELETE", "/api/v1/runs/" + id, true},
		{"GET", "/api/v1/functions", true},
		{"POST", "/rpc", true},
		{"GET", "/healthz", false},
		{"GET", "/nonexistent", false},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.path, nil))

			// Unknown ids answer 404 with a JSON body; unrouted paths with plain text.
			routed := rr.Header().Get("Content-Type") == "application/json"
			assert.Equal(t, tt.shouldExist, routed, "status %d", rr.Code)
		})
	}
}

func TestAnnealLifecycle(t *testing.T) {
	h := newHarness(t)
	id := h.start(t, `{"function": "sphere", "config": {"k_max": 300, "random_seed": 5}}`)
	h.srv.Wait()

	rr := h.do(t, http.MethodGet, "/api/v1/runs/"+id, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var status RunStatus
	decode(t, rr, &status)
	assert.Equal(t, id, status.RunID)
	assert.Equal(t, "sphere", status.Function)
	assert.Equal(t, StatusCompleted, status.Status)
	assert.Equal(t, int64(300), status.Config.KMax)
	assert.Equal(t, uint64(5), status.Config.RandomSeed)
	assert.Equal(t, 100.0, status.Config.InitialTemp, "defaults fill unset fields")
	require.NotNil(t, status.StartedAt)
	require.NotNil(t, status.FinishedAt)
	require.NotNil(t, status.Result)
	assert.NotEqual(t, optimization.OutcomeNone, status.Result.Outcome)
	assert.Equal(t, int(status.Result.Iterations), status.Result.HistoryLength)
	assert.Nil(t, status.Result.History)
	assert.True(t, strings.HasPrefix(status.Result.Summary, "stopping criterion: "))

	rr = h.do(t, http.MethodGet, "/api/v1/runs/"+id+"?history=true", "")
	require.Equal(t, http.StatusOK, rr.Code)
	decode(t, rr, &status)
	require.NotNil(t, status.Result.History)
	assert.Len(t, status.Result.History.Energies, status.Result.HistoryLength)
	assert.Len(t, status.Result.History.States, status.Result.HistoryLength)
	assert.Len(t, status.Result.History.Temperatures, status.Result.HistoryLength)

	rr = h.do(t, http.MethodDelete, "/api/v1/runs/"+id, "")
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = h.do(t, http.MethodGet, "/api/v1/runs/"+id, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAnnealUsesSurfaceInterval(t *testing.T) {
	h := newHarness(t)
	id := h.start(t, `{"function": "rastrigin", "config": {"k_max": 50, "random_seed": 1}}`)
	h.srv.Wait()

	status, err := h.srv.runStatus(id, true)
	require.NoError(t, err)
	assert.Equal(t, optimization.Interval{Lo: -5.12, Hi: 5.12}, status.Config.Interval)
	for _, p := range status.Result.History.States {
		optimization.AssertPointInInterval(t, p, status.Config.Interval)
	}
}

func TestAnnealCapsKMax(t *testing.T) {
	cfg, err := config.LoadFrom(map[string]string{"ENV": "test", "ANNEAL_MAX_RUN_ITERATIONS": "20"})
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	srv := NewServer(cfg, testLogger(), WithMetrics(metrics.NewCollector(reg)))
	h := &harness{srv: srv, router: NewRouter(srv, testLogger(), reg)}

	id := h.start(t, `{"function": "sphere", "config": {"k_max": 1000000000000, "alpha": 0.999999, "tolerance_value": 0, "random_seed": 4}}`)
	h.srv.Wait()

	status, err := h.srv.runStatus(id, false)
	require.NoError(t, err)
	assert.Equal(t, int64(20), status.Config.KMax)
	require.NotNil(t, status.Result)
	assert.Equal(t, optimization.MaxIterations, status.Result.Outcome)
	assert.LessOrEqual(t, status.Result.TotalIterations, int64(20))
	assert.LessOrEqual(t, status.Result.HistoryLength, 20)

	// Requests under the ceiling keep their value
	id = h.start(t, `{"function": "sphere", "config": {"k_max": 7, "random_seed": 4}}`)
	h.srv.Wait()
	status, err = h.srv.runStatus(id, false)
	require.NoError(t, err)
	assert.Equal(t, int64(7), status.Config.KMax)
}

func TestStatusWithUnencodableResult(t *testing.T) {
	unbounded := functions.Surface{
		Name:     "unbounded",
		Interval: optimization.Interval{Lo: -1, Hi: 1},
		Objective: optimization.ObjectiveFunc(func(optimization.Point) (float64, error) {
			return math.Inf(1), nil
		}),
	}

	h := newHarness(t, WithSurface(unbounded))
	id := h.start(t, `{"function": "unbounded", "config": {"k_max": 5, "random_seed": 1}}`)
	h.srv.Wait()

	status, err := h.srv.runStatus(id, false)
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, status.Status)
	assert.True(t, math.IsInf(status.Result.Final.Energy, 1))

	rr := h.do(t, http.MethodGet, "/api/v1/runs/"+id, "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	var body map[string]string
	decode(t, rr, &body)
	assert.Contains(t, body["error"], "encode response")
}

func TestAnnealRejectsBadRequests(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"malformed body", `{"function":`, "invalid request body"},
		{"unknown function", `{"function": "booth"}`, "unknown function"},
		{"invalid config", `{"function": "sphere", "config": {"k_max": 0}}`, "k_max must be > 0"},
		{"reversed interval", `{"function": "sphere", "config": {"interval": {"lo": 1, "hi": -1}}}`, "interval lo must be < hi"},
		{"mistyped config", `{"function": "sphere", "config": {"k_max": "many"}}`, "decode config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := h.do(t, http.MethodPost, "/api/v1/anneal", tt.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)

			var body map[string]string
			decode(t, rr, &body)
			assert.Contains(t, body["error"], tt.wantErr)
		})
	}
	assert.Empty(t, h.srv.runs)
}

func TestStatusErrors(t *testing.T) {
	h := newHarness(t)

	rr := h.do(t, http.MethodGet, "/api/v1/runs/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = h.do(t, http.MethodGet, "/api/v1/runs/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = h.do(t, http.MethodDelete, "/api/v1/runs/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeleteRunningRunConflicts(t *testing.T) {
	release := make(chan struct{})
	blocking := functions.Surface{
		Name:     "blocking",
		Interval: optimization.Interval{Lo: -1, Hi: 1},
		Objective: optimization.ObjectiveFunc(func(p optimization.Point) (float64, error) {
			<-release
			return p.X * p.X, nil
		}),
	}

	h := newHarness(t, WithSurface(blocking))
	id := h.start(t, `{"function": "blocking", "config": {"k_max": 5}}`)

	rr := h.do(t, http.MethodDelete, "/api/v1/runs/"+id, "")
	assert.Equal(t, http.StatusConflict, rr.Code)

	close(release)
	h.srv.Wait()

	rr = h.do(t, http.MethodDelete, "/api/v1/runs/"+id, "")
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestPanickingObjectiveFailsRun(t *testing.T) {
	exploding := functions.Surface{
		Name:     "exploding",
		Interval: optimization.Interval{Lo: -1, Hi: 1},
		Objective: optimization.ObjectiveFunc(func(optimization.Point) (float64, error) {
			panic("division by zero")
		}),
	}

	h := newHarness(t, WithSurface(exploding))
	id := h.start(t, `{"function": "exploding"}`)
	h.srv.Wait()

	var status RunStatus
	decode(t, h.do(t, http.MethodGet, "/api/v1/runs/"+id, ""), &status)
	assert.Equal(t, StatusFailed, status.Status)
	assert.Contains(t, status.Error, "division by zero")
	assert.Nil(t, status.Result)

	rr := h.do(t, http.MethodGet, "/metrics", "")
	assert.Contains(t, rr.Body.String(), `annealer_run_failures_total{function="exploding"} 1`)
}

func TestFunctionsEndpoint(t *testing.T) {
	h := newHarness(t)

	var body struct {
		Functions []functions.Surface `json:"functions"`
	}
	decode(t, h.do(t, http.MethodGet, "/api/v1/functions", ""), &body)

	var names []string
	for _, f := range body.Functions {
		names = append(names, f.Name)
	}
	assert.Equal(t, functions.Names(), names)
}

func TestHealthAndMetrics(t *testing.T) {
	h := newHarness(t)

	rr := h.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK", rr.Body.String())

	h.start(t, `{"function": "sphere", "config": {"k_max": 10, "random_seed": 2}}`)
	h.srv.Wait()

	rr = h.do(t, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `annealer_runs_total{function="sphere",outcome="max_iterations"} 1`)
	assert.Contains(t, rr.Body.String(), `annealer_run_iterations_count{function="sphere"} 1`)
}

func TestCloseRejectsNewRuns(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.srv.Close())

	rr := h.do(t, http.MethodPost, "/api/v1/anneal", `{"function": "sphere"}`)
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func rpcCall(t *testing.T, h *harness, body string) map[string]interface{} {
	t.Helper()

	rr := h.do(t, http.MethodPost, "/rpc", body)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]interface{}
	decode(t, rr, &resp)
	assert.Equal(t, "2.0", resp["jsonrpc"])
	return resp
}

func rpcErrorCode(t *testing.T, resp map[string]interface{}) float64 {
	t.Helper()

	errObj, ok := resp["error"].(map[string]interface{})
	require.True(t, ok, "expected error, got %v", resp)
	return errObj["code"].(float64)
}

func TestJSONRPC(t *testing.T) {
	h := newHarness(t)

	resp := rpcCall(t, h, `{"jsonrpc": "2.0", "id": 1, "method": "anneal.start",
		"params": {"function": "himmelblau", "config": {"k_max": 100, "random_seed": 3}}}`)
	result := resp["result"].(map[string]interface{})
	id := result["run_id"].(string)
	assert.Equal(t, "pending", result["status"])
	assert.Equal(t, 1.0, resp["id"])
	h.srv.Wait()

	resp = rpcCall(t, h, `{"jsonrpc": "2.0", "id": "s", "method": "anneal.status",
		"params": [{"run_id": "`+id+`", "history": true}]}`)
	result = resp["result"].(map[string]interface{})
	assert.Equal(t, "completed", result["status"])
	run := result["result"].(map[string]interface{})
	assert.Contains(t, run, "history")

	resp = rpcCall(t, h, `{"jsonrpc": "2.0", "id": 2, "method": "anneal.functions"}`)
	fns := resp["result"].(map[string]interface{})["functions"].([]interface{})
	assert.Len(t, fns, len(functions.Names()))

	resp = rpcCall(t, h, `{"jsonrpc": "2.0", "id": 3, "method": "anneal.delete", "params": {"run_id": "`+id+`"}}`)
	assert.Equal(t, map[string]interface{}{"deleted": true}, resp["result"])

	resp = rpcCall(t, h, `{"jsonrpc": "2.0", "id": 4, "method": "anneal.status", "params": {"run_id": "`+id+`"}}`)
	assert.Equal(t, float64(rpcNotFound), rpcErrorCode(t, resp))
}

func TestJSONRPCErrors(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		name string
		body string
		code int
	}{
		{"parse error", `{`, rpcParseError},
		{"wrong version", `{"jsonrpc": "1.0", "id": 1, "method": "anneal.functions"}`, rpcInvalidRequest},
		{"unknown method", `{"jsonrpc": "2.0", "id": 1, "method": "anneal.cancel"}`, rpcMethodNotFound},
		{"missing params", `{"jsonrpc": "2.0", "id": 1, "method": "anneal.start"}`, rpcInvalidParams},
		{"two-element params", `{"jsonrpc": "2.0", "id": 1, "method": "anneal.status", "params": [{}, {}]}`, rpcInvalidParams},
		{"unknown function", `{"jsonrpc": "2.0", "id": 1, "method": "anneal.start", "params": {"function": "booth"}}`, rpcInvalidParams},
		{"invalid config", `{"jsonrpc": "2.0", "id": 1, "method": "anneal.start", "params": {"function": "sphere", "config": {"alpha": 2}}}`, rpcInvalidParams},
		{"bad run id", `{"jsonrpc": "2.0", "id": 1, "method": "anneal.delete", "params": {"run_id": "x"}}`, rpcInvalidParams},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := rpcCall(t, h, tt.body)
			assert.Equal(t, float64(tt.code), rpcErrorCode(t, resp))
		})
	}
}

func TestRespondWithError(t *testing.T) {
	srv := NewServer(testConfig(t), testLogger())

	tests := []struct {
		name       string
		code       int
		message    string
		id         interface{}
		expectedID interface{}
	}{
		{"string id", rpcInvalidParams, "invalid input", "123", "123"},
		{"nil id", rpcServerError, "server error", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			srv.respondWithError(rr, tt.code, tt.message, tt.id)
			assert.Equal(t, http.StatusOK, rr.Code)

			var response map[string]interface{}
			require.NoError(t, json.NewDecoder(bytes.NewReader(rr.Body.Bytes())).Decode(&response))

			errObj, ok := response["error"].(map[string]interface{})
			require.True(t, ok)
			assert.Equal(t, float64(tt.code), errObj["code"])
			assert.Equal(t, tt.message, errObj["message"])
			assert.Equal(t, tt.expectedID, response["id"])
		})
	}
}
