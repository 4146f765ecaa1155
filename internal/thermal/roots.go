package thermal

import "math"

// StefanRoot returns the positive-branch root of a·R² + b·R + c = 0, the form the
// thaw/freeze front balance reduces to. a must be non-zero. A negative discriminant
// yields NaN, which callers pass through unchanged.
func StefanRoot(a, b, c float64) float64 {
	return (-b + math.Sqrt(b*b-4*a*c)) / (2 * a)
}
