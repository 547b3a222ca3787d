package surface

import "math"

type CurveKind int

const (
	OtherCurveKind CurveKind = iota
	LineKind
	CircleKind
	BSplineCurveKind
)

func (k CurveKind) String() string {
	switch k {
	case LineKind:
		return "line"
	case CircleKind:
		return "circle"
	case BSplineCurveKind:
		return "bspline"
	default:
		return "other"
	}
}

// Curve describes a parametric curve C(t) in space.
type Curve interface {
	Kind() CurveKind
	// Bounds returns the natural parameter range. Bounds may be infinite.
	Bounds() (t0, t1 float64)
	IsPeriodic() bool
	Period() float64

	Value(t float64) Point
	D1(t float64) (Point, Vec3)
	D2(t float64) (Point, Vec3, Vec3)
}

var (
	_ Curve    = Line{}
	_ Curve    = Circle{}
	_ windower = Line{}
)

// Line is the curve P(t) = Origin + t·Dir. Dir is expected to be a unit
// vector, so that t measures distance.
type Line struct {
	Origin Point
	Dir    Vec3
}

func (l Line) Kind() CurveKind            { return LineKind }
func (l Line) Bounds() (float64, float64) { return math.Inf(-1), math.Inf(1) }
func (l Line) IsPeriodic() bool           { return false }
func (l Line) Period() float64            { return 0 }
func (l Line) Value(t float64) Point      { return l.Origin.Translate(l.Dir.Mul(t)) }
func (l Line) D1(t float64) (Point, Vec3) { return l.Value(t), l.Dir }
func (l Line) D2(t float64) (Point, Vec3, Vec3) {
	return l.Value(t), l.Dir, Vec3{}
}

// Parameter returns the parameter of the projection of pt onto the line.
func (l Line) Parameter(pt Point) float64 {
	return pt.Sub(l.Origin).Dot(l.Dir) / l.Dir.Hypot2()
}

// Window implements windower. Only U0 and U1 are meaningful.
func (l Line) Window(center Point, radius float64) Domain {
	t := l.Parameter(center)
	r := radius / l.Dir.Hypot()
	return Domain{U0: t - r, U1: t + r}
}

// Circle is the curve P(t) = O + R·(cos t·X + sin t·Y), t ∈ [0, 2π).
type Circle struct {
	Frame  Frame
	Radius float64
}

func (c Circle) Kind() CurveKind            { return CircleKind }
func (c Circle) Bounds() (float64, float64) { return 0, twoPi }
func (c Circle) IsPeriodic() bool           { return true }
func (c Circle) Period() float64            { return twoPi }

func (c Circle) Value(t float64) Point {
	s, co := math.Sincos(t)
	return c.Frame.FromLocal(c.Radius*co, c.Radius*s, 0)
}

func (c Circle) D1(t float64) (Point, Vec3) {
	p, d1, _ := c.D2(t)
	return p, d1
}

func (c Circle) D2(t float64) (Point, Vec3, Vec3) {
	s, co := math.Sincos(t)
	r := c.Radius
	return c.Frame.FromLocal(r*co, r*s, 0),
		c.Frame.Dir(-r*s, r*co, 0),
		c.Frame.Dir(-r*co, -r*s, 0)
}
