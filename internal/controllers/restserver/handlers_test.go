package restserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/chrissnell/permafrost/internal/sweep"
	"github.com/chrissnell/permafrost/pkg/config"
	"github.com/chrissnell/permafrost/pkg/responseformat"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestController(t *testing.T, provider config.ConfigProvider) *Controller {
	t.Helper()

	ctrl, err := NewController(context.Background(), &sync.WaitGroup{}, provider, config.ServerData{MaxSweepSize: 200}, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("NewController() error = %v", err)
	}
	return ctrl
}

func newSQLiteController(t *testing.T) *Controller {
	t.Helper()

	sqlite, err := config.NewSQLiteProvider(filepath.Join(t.TempDir(), "config.db"))
	if err != nil {
		t.Fatalf("NewSQLiteProvider() error = %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })

	return newTestController(t, config.NewBuiltinSetProvider(sqlite))
}

func do(t *testing.T, ctrl *Controller, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	ctrl.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return v
}

func TestEvaluateReference(t *testing.T) {
	ctrl := newSQLiteController(t)

	rec := do(t, ctrl, http.MethodPost, "/evaluate", config.DefaultParameterSet())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	view := decode[responseformat.EvaluationView](t, rec)
	if view.Display.ALT != "0.860" || view.Regime != "freezing" || !view.Computable {
		t.Errorf("view = %+v", view)
	}
	if view.Set != "default" {
		t.Errorf("Set = %q, expected default", view.Set)
	}
}

func TestEvaluateNonComputable(t *testing.T) {
	ctrl := newSQLiteController(t)

	set := config.DefaultParameterSet()
	set.Forcing.MeanAirTemp = -20

	rec := do(t, ctrl, http.MethodPost, "/evaluate", set)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if !strings.Contains(rec.Body.String(), `"alt":"NaN"`) {
		t.Errorf("expected NaN ALT in %s", rec.Body)
	}

	view := decode[responseformat.EvaluationView](t, rec)
	if view.Computable || view.Regime != "undefined" || view.Display.MAGT != "NaN" {
		t.Errorf("view = %+v", view)
	}
}

func TestEvaluateNonComputableLogsWarning(t *testing.T) {
	sqlite, err := config.NewSQLiteProvider(filepath.Join(t.TempDir(), "config.db"))
	if err != nil {
		t.Fatalf("NewSQLiteProvider() error = %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })

	core, logs := observer.New(zapcore.WarnLevel)
	ctrl, err := NewController(context.Background(), &sync.WaitGroup{}, config.NewBuiltinSetProvider(sqlite),
		config.ServerData{MaxSweepSize: 200}, zap.New(core).Sugar())
	if err != nil {
		t.Fatalf("NewController() error = %v", err)
	}

	if rec := do(t, ctrl, http.MethodPost, "/evaluate", config.DefaultParameterSet()); rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if n := logs.Len(); n != 0 {
		t.Errorf("computable evaluation logged %d warnings", n)
	}

	set := config.DefaultParameterSet()
	set.Forcing.MeanAirTemp = -20
	if rec := do(t, ctrl, http.MethodPost, "/evaluate", set); rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	warnings := logs.FilterMessage("evaluation not computable").All()
	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, expected 1", len(warnings))
	}
	if got := warnings[0].ContextMap()["mean_air_temp"]; got != float64(-20) {
		t.Errorf("mean_air_temp = %v, expected -20", got)
	}
}

func TestEvaluateRejectsBadInput(t *testing.T) {
	ctrl := newSQLiteController(t)

	set := config.DefaultParameterSet()
	set.Mineral.Porosity = 2

	rec := do(t, ctrl, http.MethodPost, "/evaluate", set)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, expected 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "mineral.porosity") {
		t.Errorf("expected the offending field in %s", rec.Body)
	}

	req := httptest.NewRequest(http.MethodPost, "/evaluate", strings.NewReader(`{"snow": {"colour": "white"}}`))
	rec = httptest.NewRecorder()
	ctrl.Server.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown field: status = %d, expected 400", rec.Code)
	}
}

func TestSetLifecycle(t *testing.T) {
	ctrl := newSQLiteController(t)

	// the reference set is always available
	rec := do(t, ctrl, http.MethodGet, "/sets", nil)
	sets := decode[SetsResponse](t, rec)
	if len(sets.Sets) != 1 || sets.Sets[0].Name != "default" || sets.ReadOnly {
		t.Fatalf("GET /sets = %+v", sets)
	}

	cold := config.DefaultParameterSet()
	cold.Name = ""
	cold.Forcing.MeanAirTemp = -6

	rec = do(t, ctrl, http.MethodPut, "/sets/cold-site", cold)
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT status = %d, body = %s", rec.Code, rec.Body)
	}
	saved := decode[config.ParameterSet](t, rec)
	if saved.Name != "cold-site" || saved.ID == "" {
		t.Errorf("PUT returned %+v", saved)
	}

	rec = do(t, ctrl, http.MethodGet, "/sets/cold-site/evaluate", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("evaluate status = %d", rec.Code)
	}
	view := decode[responseformat.EvaluationView](t, rec)
	if view.Display.ALT != "0.522" || view.Display.MAGT != "-4.029" {
		t.Errorf("cold-site view = %+v", view.Display)
	}

	rec = do(t, ctrl, http.MethodGet, "/sets", nil)
	if sets = decode[SetsResponse](t, rec); len(sets.Sets) != 2 {
		t.Errorf("expected two sets, got %+v", sets.Sets)
	}

	rec = do(t, ctrl, http.MethodDelete, "/sets/cold-site", nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("DELETE status = %d, expected 204", rec.Code)
	}

	for _, path := range []string{"/sets/cold-site", "/sets/cold-site/evaluate"} {
		if rec = do(t, ctrl, http.MethodGet, path, nil); rec.Code != http.StatusNotFound {
			t.Errorf("GET %s status = %d, expected 404", path, rec.Code)
		}
	}
	if rec = do(t, ctrl, http.MethodDelete, "/sets/cold-site", nil); rec.Code != http.StatusNotFound {
		t.Errorf("second DELETE status = %d, expected 404", rec.Code)
	}

	rec = do(t, ctrl, http.MethodDelete, "/sets/default", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("DELETE /sets/default status = %d, expected 405", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "built-in reference set") {
		t.Errorf("expected the built-in set error in %s", rec.Body)
	}
}

func TestPutSetRejects(t *testing.T) {
	ctrl := newSQLiteController(t)

	mismatched := config.DefaultParameterSet()
	mismatched.Name = "other"
	if rec := do(t, ctrl, http.MethodPut, "/sets/site", mismatched); rec.Code != http.StatusBadRequest {
		t.Errorf("mismatched name: status = %d, expected 400", rec.Code)
	}

	bad := config.DefaultParameterSet()
	bad.Name = ""
	bad.Snow.Depth = -1
	if rec := do(t, ctrl, http.MethodPut, "/sets/site", bad); rec.Code != http.StatusBadRequest {
		t.Errorf("negative snow depth: status = %d, expected 400", rec.Code)
	}
}

func TestReadOnlyProvider(t *testing.T) {
	yamlPath := filepath.Join(t.TempDir(), "config.yaml")
	provider := config.NewYAMLProvider(yamlPath)
	ctrl := newTestController(t, provider)

	set := config.DefaultParameterSet()
	if rec := do(t, ctrl, http.MethodPut, "/sets/default", set); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("PUT status = %d, expected 405", rec.Code)
	}
	if rec := do(t, ctrl, http.MethodDelete, "/sets/default", nil); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("DELETE status = %d, expected 405", rec.Code)
	}

	// the YAML file does not exist, so reads fail in the store
	if rec := do(t, ctrl, http.MethodGet, "/sets", nil); rec.Code != http.StatusInternalServerError {
		t.Errorf("GET /sets status = %d, expected 500", rec.Code)
	}
}

func TestSweep(t *testing.T) {
	ctrl := newSQLiteController(t)

	body := SweepRequest{
		Axes: []sweep.Axis{
			{Name: "Hs", Values: []float64{0, 0.3}},
			{Name: "Aair", Values: []float64{5, 10, 17}},
		},
		Monotonic: "Aair",
	}

	rec := do(t, ctrl, http.MethodPost, "/sweep", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	resp := decode[SweepResponse](t, rec)
	if resp.Set != "default" || len(resp.Points) != 6 || resp.Summary.Points != 6 {
		t.Fatalf("response = %+v", resp)
	}
	if len(resp.Axes) != 2 || resp.Axes[0] != "Hs" || resp.Axes[1] != "Aair" {
		t.Errorf("Axes = %v", resp.Axes)
	}
	if len(resp.Violations) != 0 {
		t.Errorf("Violations = %+v, expected none", resp.Violations)
	}

	// Hs = 0.3, Aair = 17 is the reference scenario
	last := resp.Points[5]
	if last.Coords[0] != 0.3 || last.Coords[1] != 17 || last.Display.ALT != "0.860" {
		t.Errorf("last point = %+v", last)
	}
}

func TestSweepRejects(t *testing.T) {
	ctrl := newSQLiteController(t)

	tests := []struct {
		name     string
		body     SweepRequest
		expected int
	}{
		{
			name:     "unknown axis",
			body:     SweepRequest{Axes: []sweep.Axis{{Name: "Rain", Values: []float64{1}}}},
			expected: http.StatusBadRequest,
		},
		{
			name: "too many points",
			body: SweepRequest{Axes: []sweep.Axis{
				{Name: "Hs", Values: make([]float64, 20)},
				{Name: "Hv", Values: make([]float64, 20)},
			}},
			expected: http.StatusBadRequest,
		},
		{
			name: "monotonic axis not swept",
			body: SweepRequest{
				Axes:      []sweep.Axis{{Name: "Hs", Values: []float64{0, 1}}},
				Monotonic: "Tair",
			},
			expected: http.StatusBadRequest,
		},
		{
			name:     "unknown base set",
			body:     SweepRequest{Set: "nowhere", Axes: []sweep.Axis{{Name: "Hs", Values: []float64{0}}}},
			expected: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := do(t, ctrl, http.MethodPost, "/sweep", tt.body); rec.Code != tt.expected {
				t.Errorf("status = %d, expected %d (body %s)", rec.Code, tt.expected, rec.Body)
			}
		})
	}
}

func TestHealthAndMetrics(t *testing.T) {
	ctrl := newSQLiteController(t)

	rec := do(t, ctrl, http.MethodGet, "/healthz", nil)
	if health := decode[HealthResponse](t, rec); health.Status != "ok" {
		t.Errorf("health = %+v", health)
	}

	do(t, ctrl, http.MethodGet, "/sets/default/evaluate", nil)

	rec = do(t, ctrl, http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `permafrost_evaluations_total{regime="freezing"} 1`) {
		t.Errorf("expected one freezing evaluation in metrics:\n%s", rec.Body)
	}
}

func TestMsgPackResponse(t *testing.T) {
	ctrl := newSQLiteController(t)

	rec := do(t, ctrl, http.MethodGet, "/sets/default/evaluate?format=msgpack", nil)
	if ct := rec.Header().Get("Content-Type"); ct != "application/x-msgpack" {
		t.Fatalf("Content-Type = %s", ct)
	}

	var view map[string]any
	if err := msgpack.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("msgpack.Unmarshal() error = %v", err)
	}
	if view["regime"] != "freezing" {
		t.Errorf("regime = %v", view["regime"])
	}
}
