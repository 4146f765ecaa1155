// Package sweep evaluates the thermal model over a grid of parameter values.
package sweep

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/chrissnell/permafrost/internal/thermal"
	"gonum.org/v1/gonum/floats"
)

// Axis varies one input over a list of values
type Axis struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// Grid is the cartesian product of its axes applied to Base.
// The last axis varies fastest.
type Grid struct {
	Base thermal.Inputs
	Axes []Axis
}

var setters = map[string]func(*thermal.Inputs, float64){
	"Tair": func(in *thermal.Inputs, v float64) { in.AirMean = v },
	"Aair": func(in *thermal.Inputs, v float64) { in.AirAmplitude = v },
	"Hs":   func(in *thermal.Inputs, v float64) { in.SnowDepth = v },
	"Ks":   func(in *thermal.Inputs, v float64) { in.SnowK = v },
	"Cs":   func(in *thermal.Inputs, v float64) { in.SnowC = v },
	"Hv":   func(in *thermal.Inputs, v float64) { in.OrganicThickness = v },
	"Kvf":  func(in *thermal.Inputs, v float64) { in.OrganicKFrozen = v },
	"Kvt":  func(in *thermal.Inputs, v float64) { in.OrganicKThawed = v },
	"Cvf":  func(in *thermal.Inputs, v float64) { in.OrganicCFrozen = v },
	"Cvt":  func(in *thermal.Inputs, v float64) { in.OrganicCThawed = v },
	"Kmf":  func(in *thermal.Inputs, v float64) { in.MineralKFrozen = v },
	"Kmt":  func(in *thermal.Inputs, v float64) { in.MineralKThawed = v },
	"Cmf":  func(in *thermal.Inputs, v float64) { in.MineralCFrozen = v },
	"Cmt":  func(in *thermal.Inputs, v float64) { in.MineralCThawed = v },
	"Eta":  func(in *thermal.Inputs, v float64) { in.Porosity = v },
}

// AxisNames returns the names accepted in Axis.Name
func AxisNames() []string {
	names := make([]string, 0, len(setters))
	for name := range setters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Span builds an axis of n evenly spaced values from lo to hi inclusive
func Span(name string, lo, hi float64, n int) (Axis, error) {
	if n < 1 {
		return Axis{}, fmt.Errorf("axis %s: need at least one value, got %d", name, n)
	}
	if n == 1 {
		return Axis{Name: name, Values: []float64{lo}}, nil
	}
	return Axis{Name: name, Values: floats.Span(make([]float64, n), lo, hi)}, nil
}

// Validate checks that every axis names a known input, has values, and
// appears only once
func (g Grid) Validate() error {
	seen := make(map[string]bool, len(g.Axes))
	for _, a := range g.Axes {
		if _, ok := setters[a.Name]; !ok {
			return fmt.Errorf("unknown sweep axis %q", a.Name)
		}
		if seen[a.Name] {
			return fmt.Errorf("sweep axis %q listed twice", a.Name)
		}
		seen[a.Name] = true
		if len(a.Values) == 0 {
			return fmt.Errorf("sweep axis %q has no values", a.Name)
		}
	}
	return nil
}

// Size returns the number of points in the grid
func (g Grid) Size() int {
	n := 1
	for _, a := range g.Axes {
		n *= len(a.Values)
	}
	return n
}

// AxisIndex returns the position of the named axis, or -1
func (g Grid) AxisIndex(name string) int {
	for i, a := range g.Axes {
		if a.Name == name {
			return i
		}
	}
	return -1
}

// coords returns the axis values of the point at flat index i
func (g Grid) coords(i int) []float64 {
	c := make([]float64, len(g.Axes))
	for k := len(g.Axes) - 1; k >= 0; k-- {
		n := len(g.Axes[k].Values)
		c[k] = g.Axes[k].Values[i%n]
		i /= n
	}
	return c
}

// inputs applies a point's coordinates to the base inputs
func (g Grid) inputs(coords []float64) thermal.Inputs {
	in := g.Base
	for k, a := range g.Axes {
		setters[a.Name](&in, coords[k])
	}
	return in
}

// stride is the flat index distance between neighbours along axis k
func (g Grid) stride(k int) int {
	s := 1
	for _, a := range g.Axes[k+1:] {
		s *= len(a.Values)
	}
	return s
}

// ParseAxis reads an axis from "Name=lo:hi:n" (n evenly spaced values) or
// "Name=v1,v2,..." (explicit values)
func ParseAxis(spec string) (Axis, error) {
	name, values, ok := strings.Cut(spec, "=")
	if !ok || name == "" || values == "" {
		return Axis{}, fmt.Errorf("axis %q: expected Name=lo:hi:n or Name=v1,v2,...", spec)
	}
	if _, known := setters[name]; !known {
		return Axis{}, fmt.Errorf("unknown sweep axis %q (known: %s)", name, strings.Join(AxisNames(), ", "))
	}

	if parts := strings.Split(values, ":"); len(parts) == 3 {
		lo, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return Axis{}, fmt.Errorf("axis %s: bad lower bound: %w", name, err)
		}
		hi, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return Axis{}, fmt.Errorf("axis %s: bad upper bound: %w", name, err)
		}
		n, err := strconv.Atoi(parts[2])
		if err != nil {
			return Axis{}, fmt.Errorf("axis %s: bad count: %w", name, err)
		}
		return Span(name, lo, hi, n)
	}

	a := Axis{Name: name}
	for _, field := range strings.Split(values, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return Axis{}, fmt.Errorf("axis %s: bad value %q: %w", name, field, err)
		}
		a.Values = append(a.Values, v)
	}
	return a, nil
}
