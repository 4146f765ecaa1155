package thermal

import (
	"math"

	"github.com/chrissnell/permafrost/internal/constants"
)

// LayerKind selects how a layer damps the seasonal signal
type LayerKind int

const (
	// LayerSnow damps only during the frozen season, using a reflection
	// coefficient against the substrate and a latent-heat corrected substrate capacity
	LayerSnow LayerKind = iota

	// LayerOrganic damps each sub-season exponentially with the diffusivity of
	// the matching phase
	LayerOrganic
)

// layer describes one insulating layer and, for snow, the substrate beneath it
type layer struct {
	kind      LayerKind
	thickness float64
	frozen    phase
	thawed    phase

	// substrate and water content used by the latent-heat correction
	below    phase
	porosity float64
}

// snowLayer rests on the frozen organic layer, or on frozen mineral soil where
// there is no organic layer
func (in Inputs) snowLayer() layer {
	snow := phase{in.SnowK, in.SnowC}
	below := in.organicFrozen()
	if in.OrganicThickness == 0 {
		below = in.mineralFrozen()
	}
	return layer{
		kind:      LayerSnow,
		thickness: in.SnowDepth,
		frozen:    snow,
		thawed:    snow,
		below:     below,
		porosity:  in.Porosity,
	}
}

func (in Inputs) organicLayer() layer {
	return layer{
		kind:      LayerOrganic,
		thickness: in.OrganicThickness,
		frozen:    in.organicFrozen(),
		thawed:    in.organicThawed(),
	}
}

// attenuate propagates a signal through a layer and returns the signal at its base.
// The layer reduces the thaw-season and freeze-season excursions separately; each
// reduction is averaged over its share of the year with the 2/π half-wave factor.
// Damping the cold excursion warms the mean, damping the warm one cools it.
func attenuate(in signal, l layer, sp seasons) signal {
	thawLoss, freezeLoss := l.losses(in, sp)

	meanShift := (2 / math.Pi) * (freezeLoss*sp.freeze - thawLoss*sp.thaw) / constants.Period
	ampLoss := (2 / math.Pi) * (thawLoss*sp.thaw + freezeLoss*sp.freeze) / constants.Period

	return signal{
		mean:      in.mean + meanShift,
		amplitude: in.amplitude - ampLoss,
	}
}

// losses returns the amplitude reduction the layer causes in each sub-season
func (l layer) losses(in signal, sp seasons) (thawLoss, freezeLoss float64) {
	switch l.kind {
	case LayerSnow:
		return 0, l.snowAmplitudeLoss(in)
	default:
		excursion := in.amplitude - in.mean
		thawLoss = excursion * l.damping(l.thawed, sp.thaw)
		freezeLoss = excursion * l.damping(l.frozen, sp.freeze)
		return thawLoss, freezeLoss
	}
}

// damping is the fraction of a half-wave of length duration absorbed by the layer
func (l layer) damping(p phase, duration float64) float64 {
	diffusivity := p.k / p.c
	return 1 - math.Exp(-l.thickness*math.Sqrt(math.Pi/(2*diffusivity*duration)))
}

// snowAmplitudeLoss is the reduction of the air amplitude under the snow pack
func (l layer) snowAmplitudeLoss(in signal) float64 {
	below := l.below
	below.c = effectiveFrozenCapacity(in, l.below.c, l.porosity)

	snowInertia := math.Sqrt(l.frozen.k * l.frozen.c)
	belowInertia := math.Sqrt(below.k * below.c)
	mu := (snowInertia - belowInertia) / (snowInertia + belowInertia)

	r := 2 * l.thickness * math.Sqrt(math.Pi*l.frozen.c/(constants.Period*l.frozen.k))
	s := math.Exp(r) + 2*mu*math.Cos(r) + mu*mu*math.Exp(-r)

	return in.amplitude * (1 - (1+mu)/math.Sqrt(s))
}

// effectiveFrozenCapacity folds the latent heat released between |mean| and the
// amplitude into the sensible heat capacity of the frozen substrate.
// It is NaN when amplitude == |mean| (0/0).
func effectiveFrozenCapacity(in signal, frozenC, porosity float64) float64 {
	latent := constants.LatentHeat * porosity
	a := 2 * in.amplitude * frozenC / latent
	b := 2 * math.Abs(in.mean) * frozenC / latent

	return frozenC * (a - b) / ((a - b) - math.Log((a+1)/(b+1)))
}
