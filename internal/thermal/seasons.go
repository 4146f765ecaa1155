package thermal

import (
	"math"

	"github.com/chrissnell/permafrost/internal/constants"
)

// seasons splits the annual cycle of a signal at its 0°C crossings.
// start and end are the times (s) the signal rises through and falls back through
// 0°C; thaw and freeze are the durations above and below it.
type seasons struct {
	start  float64
	end    float64
	thaw   float64
	freeze float64
}

// splitSeasons requires |mean| <= amplitude; outside that range asin is undefined
// and every field is NaN.
func splitSeasons(s signal) seasons {
	shift := math.Asin(s.mean / s.amplitude)
	start := -(constants.Period / (2 * math.Pi)) * shift
	end := (constants.Period / (2 * math.Pi)) * (math.Pi + shift)
	thaw := end - start

	return seasons{
		start:  start,
		end:    end,
		thaw:   thaw,
		freeze: constants.Period - thaw,
	}
}

// thawingIndex integrates the signal over its thaw season (°C·s)
func thawingIndex(s signal, sp seasons) float64 {
	omega := 2 * math.Pi / constants.Period
	return s.mean*(sp.end-sp.start) + (s.amplitude/omega)*(math.Cos(omega*sp.start)-math.Cos(omega*sp.end))
}

// freezingIndex integrates the signal over its freeze season (°C·s).
// The full-period integral is mean·τ, so it is the remainder after the thaw season.
func freezingIndex(s signal, thawIdx float64) float64 {
	return s.mean*constants.Period - thawIdx
}
