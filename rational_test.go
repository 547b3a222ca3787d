package surface

import (
	"testing"

	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestChoose(t *testing.T) {
	diff(t, uint32(1), choose(6, 0))
	diff(t, uint32(6), choose(6, 1))
	diff(t, uint32(15), choose(6, 2))
	diff(t, uint32(0), choose(2, 3))
}

func TestRationalDerivativeConstantWeight(t *testing.T) {
	// With a constant weight, the rational surface is the homogeneous one
	// scaled by 1/w.
	var a [3][3]Vec3
	var w [3][3]float64
	for i := range 3 {
		for j := range 3 - i {
			a[i][j] = Vec(float64(i+1), float64(j-2), float64(i*j+3))
		}
	}
	w[0][0] = 2
	got := RationalDerivative(a, w, 2)
	for i := range 3 {
		for j := range 3 - i {
			diff(t, a[i][j].Div(2), got[i][j])
		}
	}
}

func TestRationalCurveDerivative(t *testing.T) {
	// P(t) = (t, 0, 0) written as (w·P, w) with w(t) = 1 + t, at t = 1.
	a := [3]Vec3{Vec(2, 0, 0), Vec(3, 0, 0), Vec(2, 0, 0)}
	w := [3]float64{2, 1, 0}
	got := rationalCurveDerivative(a, w, 2)
	diff(t, [3]Vec3{Vec(1, 0, 0), Vec(1, 0, 0), Vec(0, 0, 0)}, got, cmpopts.EquateApprox(0, 1e-15))
}
