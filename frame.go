package surface

import "math"

// Frame describes a right-handed orthonormal placement in space: an origin
// and three mutually perpendicular unit directions. Analytic surfaces are
// defined in the local coordinates of a frame, with Z being the main axis.
type Frame struct {
	Origin  Point
	X, Y, Z Vec3
}

// WorldFrame is the frame whose axes coincide with the global axes.
var WorldFrame = Frame{
	Origin: Point{},
	X:      Vec(1, 0, 0),
	Y:      Vec(0, 1, 0),
	Z:      Vec(0, 0, 1),
}

// NewFrame returns a frame with the given origin and main axis. The X
// direction is xdir projected onto the plane perpendicular to axis. If xdir
// is (nearly) parallel to axis, an arbitrary perpendicular direction is used.
func NewFrame(origin Point, axis, xdir Vec3) Frame {
	z := axis.Normalize()
	x := xdir.Sub(z.Mul(xdir.Dot(z)))
	if x.Hypot() < 1e-12 {
		// Pick the global axis least aligned with z.
		switch {
		case math.Abs(z.X) <= math.Abs(z.Y) && math.Abs(z.X) <= math.Abs(z.Z):
			x = Vec(1, 0, 0)
		case math.Abs(z.Y) <= math.Abs(z.Z):
			x = Vec(0, 1, 0)
		default:
			x = Vec(0, 0, 1)
		}
		x = x.Sub(z.Mul(x.Dot(z)))
	}
	x = x.Normalize()
	return Frame{
		Origin: origin,
		X:      x,
		Y:      z.Cross(x),
		Z:      z,
	}
}

// FrameAt returns a frame with the given origin and main axis and an
// arbitrary X direction.
func FrameAt(origin Point, axis Vec3) Frame {
	return NewFrame(origin, axis, Vec3{})
}

// ToLocal returns the coordinates of pt in the frame.
func (f Frame) ToLocal(pt Point) Vec3 {
	d := pt.Sub(f.Origin)
	return Vec3{
		X: d.Dot(f.X),
		Y: d.Dot(f.Y),
		Z: d.Dot(f.Z),
	}
}

// FromLocal returns the point with local coordinates (x, y, z).
func (f Frame) FromLocal(x, y, z float64) Point {
	return f.Origin.Translate(f.Dir(x, y, z))
}

// Dir returns the vector with local components (x, y, z).
func (f Frame) Dir(x, y, z float64) Vec3 {
	return Vec3{
		X: f.X.X*x + f.Y.X*y + f.Z.X*z,
		Y: f.X.Y*x + f.Y.Y*y + f.Z.Y*z,
		Z: f.X.Z*x + f.Y.Z*y + f.Z.Z*z,
	}
}
