package surface

import "math"

var (
	_ Surface  = Plane{}
	_ Surface  = Sphere{}
	_ Surface  = Cylinder{}
	_ Surface  = Cone{}
	_ Surface  = Torus{}
	_ windower = Plane{}
	_ windower = Cylinder{}
	_ windower = Cone{}
)

// Plane is the surface P(u, v) = O + u·X + v·Y of its frame.
type Plane struct {
	Frame Frame
}

func (pl Plane) Kind() SurfaceKind { return PlaneKind }
func (pl Plane) Domain() Domain    { return infDomain }
func (pl Plane) IsUPeriodic() bool { return false }
func (pl Plane) IsVPeriodic() bool { return false }
func (pl Plane) UPeriod() float64  { return 0 }
func (pl Plane) VPeriod() float64  { return 0 }
func (pl Plane) Normal() Vec3      { return pl.Frame.Z }
func (pl Plane) Value(u, v float64) Point {
	return pl.Frame.FromLocal(u, v, 0)
}

func (pl Plane) D1(u, v float64) (Point, Vec3, Vec3) {
	return pl.Value(u, v), pl.Frame.X, pl.Frame.Y
}

func (pl Plane) D2(u, v float64) (p Point, du, dv, duu, dvv, duv Vec3) {
	return pl.Value(u, v), pl.Frame.X, pl.Frame.Y, Vec3{}, Vec3{}, Vec3{}
}

// Parameters returns the parameters of the projection of pt onto the plane.
func (pl Plane) Parameters(pt Point) (u, v float64) {
	l := pl.Frame.ToLocal(pt)
	return l.X, l.Y
}

// Window implements windower.
func (pl Plane) Window(center Point, radius float64) Domain {
	u, v := pl.Parameters(center)
	return Domain{u - radius, u + radius, v - radius, v + radius}
}

// Sphere is parametrized by longitude u ∈ [0, 2π) and latitude
// v ∈ [−π/2, π/2]:
//
//	P(u, v) = O + R·cos v·(cos u·X + sin u·Y) + R·sin v·Z
type Sphere struct {
	Frame  Frame
	Radius float64
}

func (s Sphere) Kind() SurfaceKind { return SphereKind }
func (s Sphere) Domain() Domain    { return Domain{0, twoPi, -math.Pi / 2, math.Pi / 2} }
func (s Sphere) IsUPeriodic() bool { return true }
func (s Sphere) IsVPeriodic() bool { return false }
func (s Sphere) UPeriod() float64  { return twoPi }
func (s Sphere) VPeriod() float64  { return 0 }
func (s Sphere) Center() Point     { return s.Frame.Origin }

func (s Sphere) Value(u, v float64) Point {
	su, cu := math.Sincos(u)
	sv, cv := math.Sincos(v)
	r := s.Radius
	return s.Frame.FromLocal(r*cv*cu, r*cv*su, r*sv)
}

func (s Sphere) D1(u, v float64) (Point, Vec3, Vec3) {
	p, du, dv, _, _, _ := s.D2(u, v)
	return p, du, dv
}

func (s Sphere) D2(u, v float64) (p Point, du, dv, duu, dvv, duv Vec3) {
	su, cu := math.Sincos(u)
	sv, cv := math.Sincos(v)
	r := s.Radius
	f := s.Frame
	p = f.FromLocal(r*cv*cu, r*cv*su, r*sv)
	du = f.Dir(-r*cv*su, r*cv*cu, 0)
	dv = f.Dir(-r*sv*cu, -r*sv*su, r*cv)
	duu = f.Dir(-r*cv*cu, -r*cv*su, 0)
	dvv = f.Dir(-r*cv*cu, -r*cv*su, -r*sv)
	duv = f.Dir(r*sv*su, -r*sv*cu, 0)
	return p, du, dv, duu, dvv, duv
}

// Parameters returns the parameters of the radial projection of pt onto the
// sphere.
func (s Sphere) Parameters(pt Point) (u, v float64) {
	l := s.Frame.ToLocal(pt)
	rho := math.Hypot(l.X, l.Y)
	if rho == 0 {
		return 0, math.Copysign(math.Pi/2, l.Z)
	}
	return angle(l.Y, l.X), math.Atan2(l.Z, rho)
}

// Cylinder is parametrized by angle u ∈ [0, 2π) and height v:
//
//	P(u, v) = O + R·(cos u·X + sin u·Y) + v·Z
type Cylinder struct {
	Frame  Frame
	Radius float64
}

func (c Cylinder) Kind() SurfaceKind { return CylinderKind }
func (c Cylinder) Domain() Domain {
	return Domain{0, twoPi, math.Inf(-1), math.Inf(1)}
}
func (c Cylinder) IsUPeriodic() bool { return true }
func (c Cylinder) IsVPeriodic() bool { return false }
func (c Cylinder) UPeriod() float64  { return twoPi }
func (c Cylinder) VPeriod() float64  { return 0 }
func (c Cylinder) Axis() Vec3        { return c.Frame.Z }

func (c Cylinder) Value(u, v float64) Point {
	su, cu := math.Sincos(u)
	return c.Frame.FromLocal(c.Radius*cu, c.Radius*su, v)
}

func (c Cylinder) D1(u, v float64) (Point, Vec3, Vec3) {
	p, du, dv, _, _, _ := c.D2(u, v)
	return p, du, dv
}

func (c Cylinder) D2(u, v float64) (p Point, du, dv, duu, dvv, duv Vec3) {
	su, cu := math.Sincos(u)
	r := c.Radius
	f := c.Frame
	return f.FromLocal(r*cu, r*su, v),
		f.Dir(-r*su, r*cu, 0),
		f.Z,
		f.Dir(-r*cu, -r*su, 0),
		Vec3{},
		Vec3{}
}

// Parameters returns the parameters of the radial projection of pt onto the
// cylinder.
func (c Cylinder) Parameters(pt Point) (u, v float64) {
	l := c.Frame.ToLocal(pt)
	return angle(l.Y, l.X), l.Z
}

// Window implements windower.
func (c Cylinder) Window(center Point, radius float64) Domain {
	h := c.Frame.ToLocal(center).Z
	return Domain{0, twoPi, h - radius, h + radius}
}

// Cone is parametrized by angle u ∈ [0, 2π) and the distance v along a
// generatrix, measured from the reference circle of radius RefRadius in the
// XY plane of the frame:
//
//	P(u, v) = O + (R + v·sin α)·(cos u·X + sin u·Y) + v·cos α·Z
//
// where α is SemiAngle, in radians.
type Cone struct {
	Frame     Frame
	RefRadius float64
	SemiAngle float64
}

func (c Cone) Kind() SurfaceKind { return ConeKind }
func (c Cone) Domain() Domain {
	return Domain{0, twoPi, math.Inf(-1), math.Inf(1)}
}
func (c Cone) IsUPeriodic() bool { return true }
func (c Cone) IsVPeriodic() bool { return false }
func (c Cone) UPeriod() float64  { return twoPi }
func (c Cone) VPeriod() float64  { return 0 }

// Apex returns the apex of the cone.
func (c Cone) Apex() Point {
	v, _ := c.DegenerateV()
	return c.Frame.FromLocal(0, 0, v*math.Cos(c.SemiAngle))
}

// DegenerateV returns the v parameter of the apex.
func (c Cone) DegenerateV() (float64, bool) {
	sa := math.Sin(c.SemiAngle)
	if sa == 0 {
		return 0, false
	}
	return -c.RefRadius / sa, true
}

func (c Cone) Value(u, v float64) Point {
	su, cu := math.Sincos(u)
	sa, ca := math.Sincos(c.SemiAngle)
	rho := c.RefRadius + v*sa
	return c.Frame.FromLocal(rho*cu, rho*su, v*ca)
}

func (c Cone) D1(u, v float64) (Point, Vec3, Vec3) {
	p, du, dv, _, _, _ := c.D2(u, v)
	return p, du, dv
}

func (c Cone) D2(u, v float64) (p Point, du, dv, duu, dvv, duv Vec3) {
	su, cu := math.Sincos(u)
	sa, ca := math.Sincos(c.SemiAngle)
	rho := c.RefRadius + v*sa
	f := c.Frame
	return f.FromLocal(rho*cu, rho*su, v*ca),
		f.Dir(-rho*su, rho*cu, 0),
		f.Dir(sa*cu, sa*su, ca),
		f.Dir(-rho*cu, -rho*su, 0),
		Vec3{},
		f.Dir(-sa*su, sa*cu, 0)
}

// Window implements windower.
func (c Cone) Window(center Point, radius float64) Domain {
	h := c.Frame.ToLocal(center).Z
	ca := math.Cos(c.SemiAngle)
	return Domain{0, twoPi, (h - radius) / ca, (h + radius) / ca}
}

// Torus is parametrized by two angles u, v ∈ [0, 2π):
//
//	P(u, v) = O + (R + r·cos v)·(cos u·X + sin u·Y) + r·sin v·Z
//
// where R is MajorRadius and r is MinorRadius.
type Torus struct {
	Frame       Frame
	MajorRadius float64
	MinorRadius float64
}

func (t Torus) Kind() SurfaceKind { return TorusKind }
func (t Torus) Domain() Domain    { return Domain{0, twoPi, 0, twoPi} }
func (t Torus) IsUPeriodic() bool { return true }
func (t Torus) IsVPeriodic() bool { return true }
func (t Torus) UPeriod() float64  { return twoPi }
func (t Torus) VPeriod() float64  { return twoPi }

func (t Torus) Value(u, v float64) Point {
	su, cu := math.Sincos(u)
	sv, cv := math.Sincos(v)
	rho := t.MajorRadius + t.MinorRadius*cv
	return t.Frame.FromLocal(rho*cu, rho*su, t.MinorRadius*sv)
}

func (t Torus) D1(u, v float64) (Point, Vec3, Vec3) {
	p, du, dv, _, _, _ := t.D2(u, v)
	return p, du, dv
}

func (t Torus) D2(u, v float64) (p Point, du, dv, duu, dvv, duv Vec3) {
	su, cu := math.Sincos(u)
	sv, cv := math.Sincos(v)
	r := t.MinorRadius
	rho := t.MajorRadius + r*cv
	f := t.Frame
	return f.FromLocal(rho*cu, rho*su, r*sv),
		f.Dir(-rho*su, rho*cu, 0),
		f.Dir(-r*sv*cu, -r*sv*su, r*cv),
		f.Dir(-rho*cu, -rho*su, 0),
		f.Dir(-r*cv*cu, -r*cv*su, -r*sv),
		f.Dir(r*sv*su, -r*sv*cu, 0)
}
