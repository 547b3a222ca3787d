package surface

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func diff(t *testing.T, want, got any, opts ...cmp.Option) {
	t.Helper()
	if d := cmp.Diff(want, got, opts...); d != "" {
		t.Error(d)
	}
}

// centralDiff approximates the derivative of f at x.
func centralDiff[T interface{ Sub(T) Vec3 }](f func(float64) T, x, h float64) Vec3 {
	return f(x + h).Sub(f(x - h)).Div(2 * h)
}

func relClose(a, b, rel float64) bool {
	return math.Abs(a-b) <= rel*max(1, math.Abs(a), math.Abs(b))
}
