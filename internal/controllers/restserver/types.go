package restserver

import (
	"github.com/chrissnell/permafrost/internal/sweep"
	"github.com/chrissnell/permafrost/pkg/config"
	"github.com/chrissnell/permafrost/pkg/responseformat"
)

// SetsResponse lists the stored parameter sets
type SetsResponse struct {
	ReadOnly bool                  `json:"read_only"`
	Sets     []config.ParameterSet `json:"sets"`
}

// HealthResponse reports that the server is up
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// SweepRequest describes a grid around a base parameter set.
// The base is Parameters when given, else the stored set named Set,
// else the reference set.
type SweepRequest struct {
	Set        string               `json:"set,omitempty"`
	Parameters *config.ParameterSet `json:"parameters,omitempty"`
	Axes       []sweep.Axis         `json:"axes"`
	Monotonic  string               `json:"monotonic,omitempty"` // axis to check ALT monotonicity along
}

// SweepResponse carries every point plus the distribution summary
type SweepResponse struct {
	ID         string           `json:"id"`
	Set        string           `json:"set"`
	Axes       []string         `json:"axes"`
	Points     []SweepPoint     `json:"points"`
	Summary    SweepSummary     `json:"summary"`
	Violations []SweepViolation `json:"violations,omitempty"`
}

// SweepPoint is one evaluated grid point
type SweepPoint struct {
	Coords []float64 `json:"coords"`
	responseformat.EvaluationView
}

// SweepSummary is the wire form of sweep.Summary
type SweepSummary struct {
	Points     int                  `json:"points"`
	NonFinite  int                  `json:"non_finite"`
	Regimes    map[string]int       `json:"regimes"`
	ALTMin     responseformat.Float `json:"alt_min"`
	ALTMax     responseformat.Float `json:"alt_max"`
	ALTMean    responseformat.Float `json:"alt_mean"`
	ALTStdDev  responseformat.Float `json:"alt_stddev"`
	ALTSamples int                  `json:"alt_samples"`
}

// SweepViolation is the wire form of sweep.Violation
type SweepViolation struct {
	Index    int                  `json:"index"`
	Coords   []float64            `json:"coords"`
	Previous responseformat.Float `json:"previous_alt"`
	Current  responseformat.Float `json:"alt"`
}

func newSweepResponse(id, set string, r *sweep.Result, violations []sweep.Violation) SweepResponse {
	resp := SweepResponse{
		ID:     id,
		Set:    set,
		Axes:   make([]string, 0, len(r.Grid.Axes)),
		Points: make([]SweepPoint, 0, len(r.Points)),
	}

	for _, a := range r.Grid.Axes {
		resp.Axes = append(resp.Axes, a.Name)
	}

	for _, p := range r.Points {
		resp.Points = append(resp.Points, SweepPoint{
			Coords:         p.Coords,
			EvaluationView: responseformat.View(p.Outputs),
		})
	}

	s := sweep.Summarize(r.Points)
	resp.Summary = SweepSummary{
		Points:     s.Points,
		NonFinite:  s.NonFinite,
		Regimes:    s.Regimes,
		ALTMin:     responseformat.Float(s.ALTMin),
		ALTMax:     responseformat.Float(s.ALTMax),
		ALTMean:    responseformat.Float(s.ALTMean),
		ALTStdDev:  responseformat.Float(s.ALTStdDev),
		ALTSamples: s.ALTSamples,
	}

	for _, v := range violations {
		resp.Violations = append(resp.Violations, SweepViolation{
			Index:    v.Index,
			Coords:   v.Coords,
			Previous: responseformat.Float(v.Previous),
			Current:  responseformat.Float(v.Current),
		})
	}

	return resp
}
