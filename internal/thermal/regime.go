package thermal

import (
	"math"

	"github.com/chrissnell/permafrost/internal/constants"
)

// classification is the mineral-layer verdict
type classification struct {
	regime Regime
	magt   float64
}

// classify decides whether the mineral soil freezes and thaws seasonally and, if it
// does, which of the thawing and freezing energy flows dominates. The dominant flow
// shifts the boundary mean by the conductivity contrast between the two phases.
func classify(top signal, in Inputs) classification {
	// NaN must fall through to the integrals so that it reaches the outputs
	if top.amplitude <= math.Abs(top.mean) {
		return classification{regime: RegimeNone, magt: top.mean}
	}

	sp := splitSeasons(top)
	thawIdx := thawingIndex(top, sp)
	freezeIdx := freezingIndex(top, thawIdx)

	thawFlow := math.Abs(in.MineralKThawed * thawIdx)
	freezeFlow := math.Abs(in.MineralKFrozen * freezeIdx)

	var c classification
	if thawFlow < freezeFlow {
		c.regime = RegimeFreezing
		c.magt = top.mean + (in.MineralKThawed-in.MineralKFrozen)*thawIdx/(in.MineralKFrozen*constants.Period)
	} else {
		c.regime = RegimeThawing
		c.magt = top.mean + (in.MineralKFrozen-in.MineralKThawed)*freezeIdx/(in.MineralKThawed*constants.Period)
	}

	if math.IsNaN(thawFlow) || math.IsNaN(freezeFlow) {
		c.regime = RegimeUndefined
	}

	return c
}
