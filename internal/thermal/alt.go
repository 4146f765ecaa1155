package thermal

import (
	"math"

	"github.com/chrissnell/permafrost/internal/constants"
)

// bisections halves the bracket down to float64 resolution
const bisections = 100

// estimateALT solves for the depth of the seasonal front below the organic surface.
// top is the signal at the top of the mineral layer.
//
// Each material is blended between its phases by the share of the year the mineral
// top spends frozen: a ground that is frozen all year only ever carries a thaw front
// through thawed material, one that never freezes only a freeze front through frozen
// material. The blend moves continuously with the forcing, so the depth does not jump
// when the regime flips.
//
// The first pass uses mineral properties only. The refined pass mixes organic and
// mineral properties by the share of the depth the organic layer occupies: geometric
// mean for conductivity, arithmetic mean for heat capacity. The share is taken at the
// refined depth itself, found by bisection between zero and the deeper of the two
// single-material depths.
func estimateALT(magt float64, top signal, in Inputs) float64 {
	thawedShare := splitSeasons(top).freeze / constants.Period
	organic := blend(in.organicThawed(), in.organicFrozen(), thawedShare)
	mineral := blend(in.mineralThawed(), in.mineralFrozen(), thawedShare)

	latent := constants.LatentHeat * in.Porosity

	alt := frontDepth(mineral, latent, magt, top.amplitude)
	if math.IsNaN(alt) || in.OrganicThickness == 0 {
		return alt
	}

	mixed := func(depth float64) float64 {
		wv := math.Min(in.OrganicThickness/depth, 1)
		wm := 1 - wv
		p := phase{
			k: math.Pow(organic.k, wv) * math.Pow(mineral.k, wm),
			c: organic.c*wv + mineral.c*wm,
		}
		return frontDepth(p, latent, magt, top.amplitude)
	}

	hi := alt
	if organicOnly := frontDepth(organic, latent, magt, top.amplitude); organicOnly > hi {
		hi = organicOnly
	}

	// mixed(depth) > depth below the fixed point and < above it
	lo := 0.0
	for i := 0; i < bisections; i++ {
		mid := (lo + hi) / 2
		if mixed(mid) > mid {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}

// blend mixes the two phases of a material, weighting the thawed phase by w
func blend(thawed, frozen phase, w float64) phase {
	return phase{
		k: math.Pow(thawed.k, w) * math.Pow(frozen.k, 1-w),
		c: thawed.c*w + frozen.c*(1-w),
	}
}

// frontDepth solves the Kudryavtsev heat balance for the front depth with the
// critical depth set to the front itself, which leaves a quadratic in the depth.
// The surface amplitude drives both the sensible heat stored above the front and the
// conductive forcing.
func frontDepth(p phase, latent, magt, amplitude float64) float64 {
	t := math.Abs(magt)

	damping := math.Sqrt(p.k * constants.Period / (math.Pi * p.c))
	forcing := 2 * (amplitude - t) * math.Sqrt(p.k*constants.Period*p.c/math.Pi)
	storage := 2*amplitude*p.c + latent

	return StefanRoot(storage, storage*damping-forcing-latent*damping, -forcing*damping)
}
