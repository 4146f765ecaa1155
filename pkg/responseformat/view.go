package responseformat

import (
	"math"
	"strconv"

	"github.com/chrissnell/permafrost/internal/thermal"
)

// Float is a float64 that survives JSON encoding when it is not finite.
// NaN and ±Inf are written as the string "NaN"; MessagePack carries them natively.
type Float float64

// MarshalJSON implements json.Marshaler
func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte(`"NaN"`), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

// UnmarshalJSON accepts either a number or the string "NaN"
func (f *Float) UnmarshalJSON(data []byte) error {
	if string(data) == `"NaN"` {
		*f = Float(math.NaN())
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*f = Float(v)
	return nil
}

// Display formats a value with three decimals, or "NaN" when not finite
func Display(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// EvaluationView is the wire form of one model evaluation
type EvaluationView struct {
	Set        string      `json:"set,omitempty"`
	ALT        Float       `json:"alt"`
	MAGT       Float       `json:"magt"`
	Tvs        Float       `json:"tvs"`
	Regime     string      `json:"regime"`
	Computable bool        `json:"computable"`
	Display    DisplayView `json:"display"`
}

// DisplayView carries the outputs rounded for people
type DisplayView struct {
	ALT  string `json:"alt"`
	MAGT string `json:"magt"`
	Tvs  string `json:"tvs"`
}

// View builds the wire record for a set of outputs
func View(out thermal.Outputs) EvaluationView {
	return EvaluationView{
		ALT:        Float(out.ALT),
		MAGT:       Float(out.MAGT),
		Tvs:        Float(out.Tvs),
		Regime:     out.Regime.String(),
		Computable: out.Computable(),
		Display: DisplayView{
			ALT:  Display(out.ALT),
			MAGT: Display(out.MAGT),
			Tvs:  Display(out.Tvs),
		},
	}
}
