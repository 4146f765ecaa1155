package thermal

// Evaluate runs the full model: snow, organic layer, mineral classification and
// active layer thickness. It never fails; degenerate inputs (|AirMean| greater
// than AirAmplitude, a negative discriminant, a zero denominator) produce NaN
// fields, which Outputs.Computable reports.
func Evaluate(in Inputs) Outputs {
	air := signal{mean: in.AirMean, amplitude: in.AirAmplitude}
	sp := splitSeasons(air)

	surface := attenuate(air, in.snowLayer(), sp)
	mineralTop := attenuate(surface, in.organicLayer(), sp)

	c := classify(mineralTop, in)
	out := Outputs{
		MAGT:   c.magt,
		Tvs:    surface.mean,
		Regime: c.regime,
	}

	if c.regime == RegimeNone {
		// the front never leaves the organic layer
		out.ALT = 0
		return out
	}

	out.ALT = estimateALT(c.magt, mineralTop, in)
	return out
}
