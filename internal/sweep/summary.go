package sweep

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes the ALT distribution of a sweep.
// Statistics cover computable points only and are NaN when there are none.
type Summary struct {
	Points     int
	NonFinite  int
	Regimes    map[string]int
	ALTMin     float64
	ALTMax     float64
	ALTMean    float64
	ALTStdDev  float64
	ALTSamples int
}

// Summarize counts regimes and computes ALT statistics
func Summarize(points []Point) Summary {
	s := Summary{
		Points:  len(points),
		Regimes: make(map[string]int),
	}

	alts := make([]float64, 0, len(points))
	for _, p := range points {
		s.Regimes[p.Outputs.Regime.String()]++
		if !p.Outputs.Computable() {
			s.NonFinite++
			continue
		}
		alts = append(alts, p.Outputs.ALT)
	}

	s.ALTSamples = len(alts)
	switch len(alts) {
	case 0:
		s.ALTMin, s.ALTMax, s.ALTMean, s.ALTStdDev = math.NaN(), math.NaN(), math.NaN(), math.NaN()
	case 1:
		s.ALTMin, s.ALTMax, s.ALTMean, s.ALTStdDev = alts[0], alts[0], alts[0], 0
	default:
		s.ALTMin = floats.Min(alts)
		s.ALTMax = floats.Max(alts)
		s.ALTMean, s.ALTStdDev = stat.MeanStdDev(alts, nil)
	}

	return s
}

// Violation is a place where ALT falls while one axis increases
type Violation struct {
	Index    int       // flat index of the later point
	Coords   []float64 // coordinates of the later point
	Previous float64   // ALT at the neighbouring lower axis value
	Current  float64
}

// CheckMonotonic walks every line of the grid along the named axis in
// increasing axis order and reports each step where ALT decreases, including
// steps across a regime change. Points that are not computable are skipped;
// the next computable point is compared with the last computable one.
func CheckMonotonic(r *Result, axis string) ([]Violation, error) {
	k := r.Grid.AxisIndex(axis)
	if k < 0 {
		return nil, fmt.Errorf("sweep has no axis %q", axis)
	}

	values := r.Grid.Axes[k].Values
	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return values[order[a]] < values[order[b]] })

	stride := r.Grid.stride(k)
	span := stride * len(values)

	var violations []Violation
	for block := 0; block < len(r.Points); block += span {
		for offset := 0; offset < stride; offset++ {
			base := block + offset
			var prev *Point
			for _, j := range order {
				idx := base + j*stride
				p := &r.Points[idx]
				if !p.Outputs.Computable() {
					continue
				}
				if prev != nil && p.Outputs.ALT < prev.Outputs.ALT {
					violations = append(violations, Violation{
						Index:    idx,
						Coords:   p.Coords,
						Previous: prev.Outputs.ALT,
						Current:  p.Outputs.ALT,
					})
				}
				prev = p
			}
		}
	}

	return violations, nil
}

// Trend fits ALT against the named axis over all computable points and
// returns the least-squares slope and intercept. Both are NaN when fewer
// than two distinct axis values have computable points.
func Trend(r *Result, axis string) (slope, intercept float64, err error) {
	k := r.Grid.AxisIndex(axis)
	if k < 0 {
		return 0, 0, fmt.Errorf("sweep has no axis %q", axis)
	}

	var xs, ys []float64
	for _, p := range r.Points {
		if !p.Outputs.Computable() {
			continue
		}
		xs = append(xs, p.Coords[k])
		ys = append(ys, p.Outputs.ALT)
	}

	if len(xs) < 2 || floats.Min(xs) == floats.Max(xs) {
		return math.NaN(), math.NaN(), nil
	}

	intercept, slope = stat.LinearRegression(xs, ys, nil, false)
	return slope, intercept, nil
}
