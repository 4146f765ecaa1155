package restserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/chrissnell/permafrost/internal/constants"
	"github.com/chrissnell/permafrost/internal/sweep"
	"github.com/chrissnell/permafrost/internal/thermal"
	"github.com/chrissnell/permafrost/pkg/config"
	"github.com/chrissnell/permafrost/pkg/responseformat"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/vmihailenco/msgpack/v5"
)

// maxBodyBytes bounds every request body
const maxBodyBytes = 1 << 20

// Handlers contains all HTTP handlers for the REST server
type Handlers struct {
	controller *Controller
	formatter  *responseformat.Formatter
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{
		controller: ctrl,
		formatter:  responseformat.NewFormatter(),
	}
}

// EvaluateInputs evaluates a parameter set posted in the request body
func (h *Handlers) EvaluateInputs(w http.ResponseWriter, req *http.Request) {
	var set config.ParameterSet
	if err := decodeBody(w, req, &set); err != nil {
		h.formatter.WriteError(w, req, http.StatusBadRequest, err.Error(), nil)
		return
	}

	if !h.validateSet(w, req, &set) {
		return
	}

	h.writeEvaluation(w, req, &set)
}

// EvaluateSet evaluates a stored parameter set
func (h *Handlers) EvaluateSet(w http.ResponseWriter, req *http.Request) {
	set, ok := h.lookupSet(w, req, mux.Vars(req)["name"])
	if !ok {
		return
	}

	h.writeEvaluation(w, req, set)
}

// ListSets returns every stored parameter set
func (h *Handlers) ListSets(w http.ResponseWriter, req *http.Request) {
	sets, err := h.controller.configProvider.ListSets()
	if err != nil {
		h.storeFailure(w, req, "error loading parameter sets", err)
		return
	}

	h.formatter.WriteResponse(w, req, SetsResponse{
		ReadOnly: h.controller.configProvider.IsReadOnly(),
		Sets:     sets,
	}, nil)
}

// GetSet returns one stored parameter set
func (h *Handlers) GetSet(w http.ResponseWriter, req *http.Request) {
	set, ok := h.lookupSet(w, req, mux.Vars(req)["name"])
	if !ok {
		return
	}

	h.formatter.WriteResponse(w, req, set, nil)
}

// PutSet creates or replaces the named parameter set
func (h *Handlers) PutSet(w http.ResponseWriter, req *http.Request) {
	name := mux.Vars(req)["name"]

	if h.controller.configProvider.IsReadOnly() {
		h.formatter.WriteError(w, req, http.StatusMethodNotAllowed, config.ErrReadOnly.Error(), nil)
		return
	}

	if err := config.ValidateName(name); err != nil {
		h.formatter.WriteError(w, req, http.StatusBadRequest, err.Error(), nil)
		return
	}

	var set config.ParameterSet
	if err := decodeBody(w, req, &set); err != nil {
		h.formatter.WriteError(w, req, http.StatusBadRequest, err.Error(), nil)
		return
	}

	if set.Name != "" && set.Name != name {
		h.formatter.WriteError(w, req, http.StatusBadRequest,
			fmt.Sprintf("body names set %q but the URL names %q", set.Name, name), nil)
		return
	}
	set.Name = name

	if !h.validateSet(w, req, &set) {
		return
	}

	if err := h.controller.configProvider.SaveSet(&set); err != nil {
		if errors.Is(err, config.ErrReadOnly) {
			h.formatter.WriteError(w, req, http.StatusMethodNotAllowed, err.Error(), nil)
			return
		}
		h.storeFailure(w, req, "error saving parameter set", err)
		return
	}

	h.controller.logger.Infow("parameter set saved", "set", set.Name, "id", set.ID)
	h.formatter.WriteResponse(w, req, set, nil)
}

// DeleteSet removes the named parameter set
func (h *Handlers) DeleteSet(w http.ResponseWriter, req *http.Request) {
	name := mux.Vars(req)["name"]

	err := h.controller.configProvider.DeleteSet(name)
	switch {
	case err == nil:
		h.controller.logger.Infow("parameter set deleted", "set", name)
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, config.ErrReadOnly), errors.Is(err, config.ErrBuiltinSet):
		h.formatter.WriteError(w, req, http.StatusMethodNotAllowed, err.Error(), nil)
	case errors.Is(err, config.ErrSetNotFound):
		h.formatter.WriteError(w, req, http.StatusNotFound, err.Error(), nil)
	default:
		h.storeFailure(w, req, "error deleting parameter set", err)
	}
}

// RunSweep evaluates a grid of parameter values around a base set
func (h *Handlers) RunSweep(w http.ResponseWriter, req *http.Request) {
	var sr SweepRequest
	if err := decodeBody(w, req, &sr); err != nil {
		h.formatter.WriteError(w, req, http.StatusBadRequest, err.Error(), nil)
		return
	}

	var base *config.ParameterSet
	switch {
	case sr.Parameters != nil:
		base = sr.Parameters
		if !h.validateSet(w, req, base) {
			return
		}
	case sr.Set != "":
		var ok bool
		if base, ok = h.lookupSet(w, req, sr.Set); !ok {
			return
		}
	default:
		def := config.DefaultParameterSet()
		base = &def
	}

	grid := sweep.Grid{Base: base.Inputs(), Axes: sr.Axes}
	if err := grid.Validate(); err != nil {
		h.formatter.WriteError(w, req, http.StatusBadRequest, err.Error(), sweep.AxisNames())
		return
	}

	size := grid.Size()
	if limit := h.controller.serverConfig.MaxSweepSize; size > limit {
		h.formatter.WriteError(w, req, http.StatusBadRequest,
			fmt.Sprintf("sweep has %d points, the limit is %d", size, limit), nil)
		return
	}
	if sr.Monotonic != "" && grid.AxisIndex(sr.Monotonic) < 0 {
		h.formatter.WriteError(w, req, http.StatusBadRequest,
			fmt.Sprintf("monotonic axis %q is not swept", sr.Monotonic), nil)
		return
	}

	result, err := sweep.Run(req.Context(), grid, h.controller.serverConfig.SweepWorkers)
	if err != nil {
		h.controller.logger.Warnw("sweep aborted", "points", size, "error", err)
		h.formatter.WriteError(w, req, http.StatusServiceUnavailable, "sweep aborted: "+err.Error(), nil)
		return
	}

	h.controller.metrics.sweepSize.Observe(float64(size))
	for _, p := range result.Points {
		h.controller.metrics.observe(p.Outputs)
	}

	var violations []sweep.Violation
	if sr.Monotonic != "" {
		// the axis was checked above
		violations, _ = sweep.CheckMonotonic(result, sr.Monotonic)
	}

	id := uuid.New().String()
	h.controller.logger.Infow("sweep complete", "id", id, "set", base.Name, "points", size, "violations", len(violations))
	h.formatter.WriteResponse(w, req, newSweepResponse(id, base.Name, result, violations), nil)
}

// Health reports liveness
func (h *Handlers) Health(w http.ResponseWriter, req *http.Request) {
	h.formatter.WriteResponse(w, req, HealthResponse{Status: "ok", Version: constants.Version}, nil)
}

func (h *Handlers) writeEvaluation(w http.ResponseWriter, req *http.Request, set *config.ParameterSet) {
	out := thermal.Evaluate(set.Inputs())
	h.controller.metrics.observe(out)

	if !out.Computable() {
		h.controller.logger.Warnw("evaluation not computable", "set", set.Name,
			"mean_air_temp", set.Forcing.MeanAirTemp, "air_temp_amplitude", set.Forcing.AirTempAmplitude)
	}

	view := responseformat.View(out)
	view.Set = set.Name
	h.formatter.WriteResponse(w, req, view, nil)
}

// validateSet writes a 400 and returns false when the set is out of range
func (h *Handlers) validateSet(w http.ResponseWriter, req *http.Request, set *config.ParameterSet) bool {
	err := set.Validate()
	if err == nil {
		return true
	}

	var verr *config.ValidationError
	if errors.As(err, &verr) {
		h.formatter.WriteError(w, req, http.StatusBadRequest, "invalid parameter set", verr.Fields)
		return false
	}
	h.formatter.WriteError(w, req, http.StatusBadRequest, err.Error(), nil)
	return false
}

// lookupSet loads a stored set, writing 404 or 500 on failure
func (h *Handlers) lookupSet(w http.ResponseWriter, req *http.Request, name string) (*config.ParameterSet, bool) {
	set, err := h.controller.configProvider.GetSet(name)
	if errors.Is(err, config.ErrSetNotFound) {
		h.formatter.WriteError(w, req, http.StatusNotFound, fmt.Sprintf("parameter set %q not found", name), nil)
		return nil, false
	}
	if err != nil {
		h.storeFailure(w, req, "error loading parameter set", err)
		return nil, false
	}
	return set, true
}

func (h *Handlers) storeFailure(w http.ResponseWriter, req *http.Request, msg string, err error) {
	h.controller.logger.Errorw(msg, "path", req.URL.Path, "error", err)
	h.formatter.WriteError(w, req, http.StatusInternalServerError, msg, nil)
}

// decodeBody reads a JSON body, or MessagePack when the request says so
func decodeBody(w http.ResponseWriter, req *http.Request, v any) error {
	body := http.MaxBytesReader(w, req.Body, maxBodyBytes)
	defer body.Close()

	if req.Header.Get("Content-Type") == "application/x-msgpack" {
		dec := msgpack.NewDecoder(body)
		dec.SetCustomStructTag("json")
		if err := dec.Decode(v); err != nil {
			return fmt.Errorf("error decoding MessagePack body: %w", err)
		}
		return nil
	}

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("error decoding JSON body: %w", err)
	}
	return nil
}
