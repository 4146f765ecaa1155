// Package thermal estimates the seasonal thermal state of permafrost terrain.
// A sinusoidal annual air temperature is propagated through snow and an organic
// (moss/peat) layer, the mineral soil is classified as net-freezing or net-thawing,
// and the active layer thickness is solved in closed form. Every function here is
// pure: no logging, no I/O, no shared state. Degenerate inputs surface as NaN in the
// returned Outputs rather than as errors.
package thermal

import "math"

// Inputs holds one evaluation's full parameter set.
// Conductivities are W/m/°C, volumetric heat capacities J/m³/°C, thicknesses m,
// temperatures °C.
type Inputs struct {
	// Organic (moss/peat) layer
	OrganicKFrozen   float64 // Kvf
	OrganicKThawed   float64 // Kvt
	OrganicCFrozen   float64 // Cvf
	OrganicCThawed   float64 // Cvt
	OrganicThickness float64 // Hv

	// Mineral soil
	MineralKFrozen float64 // Kmf
	MineralKThawed float64 // Kmt
	MineralCFrozen float64 // Cmf
	MineralCThawed float64 // Cmt
	Porosity       float64 // eta, volumetric water content

	// Snow cover
	SnowK     float64 // Ks
	SnowC     float64 // Cs
	SnowDepth float64 // Hs

	// Forcing
	AirMean      float64 // Tair
	AirAmplitude float64 // Aair, >= 0
}

// Regime identifies which energy flow dominates the mineral layer
type Regime int

const (
	// RegimeUndefined is reported when the classification itself is NaN
	RegimeUndefined Regime = iota

	// RegimeNone means the seasonal swing at the mineral boundary never crosses 0°C,
	// so no phase change happens in the mineral soil
	RegimeNone

	// RegimeFreezing means freezing energy dominates: MAGT < 0, permafrost is present
	// and ALT is a seasonal thaw depth
	RegimeFreezing

	// RegimeThawing means thawing energy dominates: MAGT >= 0 and ALT is a
	// seasonal freeze depth
	RegimeThawing
)

// String returns the name of the regime
func (r Regime) String() string {
	switch r {
	case RegimeNone:
		return "none"
	case RegimeFreezing:
		return "freezing"
	case RegimeThawing:
		return "thawing"
	default:
		return "undefined"
	}
}

// Outputs is the result of one evaluation
type Outputs struct {
	ALT    float64 // active layer thickness (m)
	MAGT   float64 // mean annual ground temperature at the top of the mineral layer (°C)
	Tvs    float64 // mean annual temperature at the top of the vegetation layer (°C)
	Regime Regime
}

// Computable reports whether every numeric field is finite
func (o Outputs) Computable() bool {
	return finite(o.ALT) && finite(o.MAGT) && finite(o.Tvs)
}

// Equal compares two Outputs bit for bit, so that NaN equals NaN
func (o Outputs) Equal(other Outputs) bool {
	return o.Regime == other.Regime &&
		math.Float64bits(o.ALT) == math.Float64bits(other.ALT) &&
		math.Float64bits(o.MAGT) == math.Float64bits(other.MAGT) &&
		math.Float64bits(o.Tvs) == math.Float64bits(other.Tvs)
}

// ThawWithinOrganic reports whether the front stays inside the organic layer.
// Callers only use this for display.
func (o Outputs) ThawWithinOrganic(in Inputs) bool {
	return o.ALT < in.OrganicThickness
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// signal is a sinusoidal temperature at a layer boundary
type signal struct {
	mean      float64
	amplitude float64
}

// phase holds the thermal properties of one material in one phase
type phase struct {
	k float64 // conductivity
	c float64 // volumetric heat capacity
}

func (in Inputs) organicFrozen() phase { return phase{in.OrganicKFrozen, in.OrganicCFrozen} }
func (in Inputs) organicThawed() phase { return phase{in.OrganicKThawed, in.OrganicCThawed} }
func (in Inputs) mineralFrozen() phase { return phase{in.MineralKFrozen, in.MineralCFrozen} }
func (in Inputs) mineralThawed() phase { return phase{in.MineralKThawed, in.MineralCThawed} }
