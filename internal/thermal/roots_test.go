package thermal

import (
	"math"
	"testing"
)

func TestStefanRoot(t *testing.T) {
	tests := []struct {
		name     string
		a, b, c  float64
		expected float64
	}{
		{name: "distinct roots picks the larger", a: 1, b: -3, c: 2, expected: 2},
		{name: "scaled coefficients", a: 2, b: 4, c: -6, expected: 1},
		{name: "double root", a: 1, b: -2, c: 1, expected: 1},
		{name: "negative leading coefficient", a: -1, b: 0, c: 4, expected: -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StefanRoot(tt.a, tt.b, tt.c)
			if math.Abs(got-tt.expected) > 1e-12 {
				t.Errorf("StefanRoot(%v, %v, %v) = %v, expected %v", tt.a, tt.b, tt.c, got, tt.expected)
			}
		})
	}
}

func TestStefanRootNegativeDiscriminant(t *testing.T) {
	if got := StefanRoot(1, 0, 1); !math.IsNaN(got) {
		t.Errorf("StefanRoot(1, 0, 1) = %v, expected NaN", got)
	}
}

func TestStefanRootPropagatesNaN(t *testing.T) {
	if got := StefanRoot(1, math.NaN(), -1); !math.IsNaN(got) {
		t.Errorf("expected NaN to propagate, got %v", got)
	}
}
