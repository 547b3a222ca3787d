package surface

import "math"

type SurfaceKind int

const (
	OtherSurfaceKind SurfaceKind = iota
	PlaneKind
	SphereKind
	CylinderKind
	ConeKind
	TorusKind
	BSplineSurfaceKind
)

func (k SurfaceKind) String() string {
	switch k {
	case PlaneKind:
		return "plane"
	case SphereKind:
		return "sphere"
	case CylinderKind:
		return "cylinder"
	case ConeKind:
		return "cone"
	case TorusKind:
		return "torus"
	case BSplineSurfaceKind:
		return "bspline"
	default:
		return "other"
	}
}

// Domain is a rectangle in parameter space. Bounds may be infinite.
// For curves, only U0 and U1 are used.
type Domain struct {
	U0, U1 float64
	V0, V1 float64
}

// IsFinite reports whether all bounds are finite.
func (d Domain) IsFinite() bool {
	return !math.IsInf(d.U0, 0) && !math.IsInf(d.U1, 0) &&
		!math.IsInf(d.V0, 0) && !math.IsInf(d.V1, 0)
}

// Surface describes a parametric surface S(u, v).
type Surface interface {
	Kind() SurfaceKind
	// Domain returns the natural parameter domain.
	Domain() Domain
	IsUPeriodic() bool
	IsVPeriodic() bool
	UPeriod() float64
	VPeriod() float64

	Value(u, v float64) Point
	D1(u, v float64) (p Point, du, dv Vec3)
	D2(u, v float64) (p Point, du, dv, duu, dvv, duv Vec3)
}

// windower is implemented by surfaces and curves with infinite parameter
// ranges. Window returns the parameter range whose points project into the
// slab covered by the sphere (center, radius) along the unbounded direction.
// Finite bounds of the natural domain are returned unchanged.
type windower interface {
	Window(center Point, radius float64) Domain
}

// degenerateVer is implemented by surfaces with a degenerate iso-line at a
// fixed v, such as a cone's apex.
type degenerateVer interface {
	DegenerateV() (float64, bool)
}

const twoPi = 2 * math.Pi

var infDomain = Domain{math.Inf(-1), math.Inf(1), math.Inf(-1), math.Inf(1)}

// angle returns atan2(y, x) folded into [0, 2π).
func angle(y, x float64) float64 {
	a := math.Atan2(y, x)
	if a < 0 {
		a += twoPi
	}
	if a >= twoPi {
		a = 0
	}
	return a
}
