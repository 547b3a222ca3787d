package surface

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp/cmpopts"
)

type testPatch struct {
	degreeU, degreeV int
	knotsU, knotsV   FlatKnots
	poles            [][]Point
	weights          [][]float64
}

// wavyPatch is a non-rational cubic × quadratic patch with two spans in each
// direction.
func wavyPatch() testPatch {
	p := testPatch{
		degreeU: 3,
		degreeV: 2,
		knotsU:  FlatKnots{0, 0, 0, 0, 1, 2, 2, 2, 2},
		knotsV:  FlatKnots{0, 0, 0, 0.5, 1, 1, 1},
	}
	p.poles = make([][]Point, 5)
	for i := range p.poles {
		p.poles[i] = make([]Point, 4)
		for j := range p.poles[i] {
			fi, fj := float64(i), float64(j)
			p.poles[i][j] = Pt(fi+0.1*fj*fj, fj-0.2*fi, math.Sin(fi)+math.Cos(fj))
		}
	}
	return p
}

// transpose swaps the roles of u and v.
func (p testPatch) transpose() testPatch {
	t := testPatch{
		degreeU: p.degreeV,
		degreeV: p.degreeU,
		knotsU:  p.knotsV,
		knotsV:  p.knotsU,
	}
	t.poles = make([][]Point, len(p.poles[0]))
	for j := range t.poles {
		t.poles[j] = make([]Point, len(p.poles))
		for i := range p.poles {
			t.poles[j][i] = p.poles[i][j]
		}
	}
	if p.weights != nil {
		t.weights = make([][]float64, len(p.weights[0]))
		for j := range t.weights {
			t.weights[j] = make([]float64, len(p.weights))
			for i := range p.weights {
				t.weights[j][i] = p.weights[i][j]
			}
		}
	}
	return t
}

func (p testPatch) build(c *SurfaceCache, u, v float64) {
	c.BuildCache(u, v, p.degreeU, false, p.knotsU, p.degreeV, false, p.knotsV, p.poles, p.weights)
}

func (p testPatch) surface(t *testing.T) *BSplineSurface {
	t.Helper()
	s, err := NewBSplineSurface(p.degreeU, p.degreeV, false, false, p.knotsU, p.knotsV, p.poles, p.weights)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

// direct evaluates the patch from its basis functions, without a cache.
func (p testPatch) direct(u, v float64) Point {
	su := p.knotsU.LocateSpan(p.degreeU, u)
	sv := p.knotsV.LocateSpan(p.degreeV, v)
	nu := p.knotsU.BasisDerivs(su, u, p.degreeU, 0)[0]
	nv := p.knotsV.BasisDerivs(sv, v, p.degreeV, 0)[0]
	var x, y, z, w float64
	for a := range nu {
		for b := range nv {
			i, j := su-p.degreeU+a, sv-p.degreeV+b
			f := nu[a] * nv[b]
			if p.weights != nil {
				f *= p.weights[i][j]
			}
			q := p.poles[i][j]
			x += f * q.X
			y += f * q.Y
			z += f * q.Z
			w += f
		}
	}
	return Pt(x/w, y/w, z/w)
}

func pointsClose(t *testing.T, want, got Point, rel float64) {
	t.Helper()
	if !relClose(want.X, got.X, rel) || !relClose(want.Y, got.Y, rel) || !relClose(want.Z, got.Z, rel) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func vecsClose(t *testing.T, name string, want, got Vec3, rel float64) {
	t.Helper()
	if !relClose(want.X, got.X, rel) || !relClose(want.Y, got.Y, rel) || !relClose(want.Z, got.Z, rel) {
		t.Errorf("%s: got %v, want %v", name, got, want)
	}
}

func TestSurfaceCacheValidity(t *testing.T) {
	p := wavyPatch()
	c := NewSurfaceCache()
	if c.IsCacheValid(0.5, 0.5) {
		t.Fatal("empty cache reports valid")
	}
	for _, u := range []float64{0, 0.5, 1, 1.5, 2} {
		for _, v := range []float64{0, 0.25, 0.5, 0.75, 1} {
			p.build(c, u, v)
			if !c.IsCacheValid(u, v) {
				t.Errorf("cache built at (%v, %v) isn't valid there", u, v)
			}
		}
	}

	p.build(c, 0.5, 0.25)
	tests := []struct {
		u, v  float64
		valid bool
	}{
		{0.99, 0.49, true},
		{-0.1, 0.25, true}, // the first span extends to the left
		{0.5, -3, true},
		{1, 0.25, false},
		{1.5, 0.25, false},
		{0.5, 0.5, false},
	}
	for _, tt := range tests {
		if got := c.IsCacheValid(tt.u, tt.v); got != tt.valid {
			t.Errorf("IsCacheValid(%v, %v) = %t, want %t", tt.u, tt.v, got, tt.valid)
		}
	}
}

func TestSurfaceCacheConsistency(t *testing.T) {
	for _, p := range []testPatch{wavyPatch(), wavyPatch().transpose()} {
		du0, du1 := p.knotsU.Bounds(p.degreeU)
		dv0, dv1 := p.knotsV.Bounds(p.degreeV)
		c := NewSurfaceCache()
		for i := range 9 {
			for j := range 9 {
				// Includes every knot.
				u := du0 + float64(i)*(du1-du0)/8
				v := dv0 + float64(j)*(dv1-dv0)/8
				if !c.IsCacheValid(u, v) {
					p.build(c, u, v)
				}
				p0 := c.D0(u, v)
				p1, _, _ := c.D1(u, v)
				p2, _, _, _, _, _ := c.D2(u, v)
				pointsClose(t, p0, p1, 1e-12)
				pointsClose(t, p0, p2, 1e-12)
				pointsClose(t, p.direct(u, v), p0, 1e-10)
			}
		}
	}
}

func TestSurfaceCacheAxisOrder(t *testing.T) {
	p := wavyPatch()
	pt := p.transpose()
	c := NewSurfaceCache()
	ct := NewSurfaceCache()
	p.build(c, 0.3, 0.7)
	pt.build(ct, 0.7, 0.3)
	diff(t, UFirst, c.Order())
	diff(t, VFirst, ct.Order())

	for _, uv := range [][2]float64{{0.3, 0.7}, {0.1, 0.6}, {0.9, 0.99}} {
		u, v := uv[0], uv[1]
		a, adu, adv, aduu, advv, aduv := c.D2(u, v)
		b, bdu, bdv, bduu, bdvv, bduv := ct.D2(v, u)
		pointsClose(t, a, b, 1e-12)
		vecsClose(t, "du", adu, bdv, 1e-12)
		vecsClose(t, "dv", adv, bdu, 1e-12)
		vecsClose(t, "duu", aduu, bdvv, 1e-11)
		vecsClose(t, "dvv", advv, bduu, 1e-11)
		vecsClose(t, "duv", aduv, bduv, 1e-11)
	}
}

func checkSurfaceDerivatives(t *testing.T, s Surface, u, v float64) {
	t.Helper()
	const h = 1e-5
	_, du, dv, duu, dvv, duv := s.D2(u, v)
	value := func(u, v float64) Point { return s.Value(u, v) }
	dU := func(u, v float64) Vec3 { _, d, _ := s.D1(u, v); return d }
	dV := func(u, v float64) Vec3 { _, _, d := s.D1(u, v); return d }

	vecsClose(t, "du", centralDiff(func(x float64) Point { return value(x, v) }, u, h), du, 1e-6)
	vecsClose(t, "dv", centralDiff(func(x float64) Point { return value(u, x) }, v, h), dv, 1e-6)
	vecsClose(t, "duu", centralDiff(func(x float64) Vec3 { return dU(x, v) }, u, h), duu, 1e-5)
	vecsClose(t, "dvv", centralDiff(func(x float64) Vec3 { return dV(u, x) }, v, h), dvv, 1e-5)
	vecsClose(t, "duv", centralDiff(func(x float64) Vec3 { return dU(u, x) }, v, h), duv, 1e-5)
}

func TestBSplineSurfaceDerivatives(t *testing.T) {
	s := wavyPatch().surface(t)
	for _, uv := range [][2]float64{{0.3, 0.2}, {0.7, 0.8}, {1.4, 0.35}, {1.9, 0.6}} {
		t.Run(fmt.Sprint(uv), func(t *testing.T) {
			checkSurfaceDerivatives(t, s, uv[0], uv[1])
		})
	}
}

// quarterCylinder is a rational surface whose u iso-curves are exact
// quarter circles of radius 1, extruded along z.
func quarterCylinder() testPatch {
	w := 1 / math.Sqrt2
	return testPatch{
		degreeU: 2,
		degreeV: 1,
		knotsU:  FlatKnots{0, 0, 0, 1, 1, 1},
		knotsV:  FlatKnots{0, 0, 1, 1},
		poles: [][]Point{
			{Pt(1, 0, 0), Pt(1, 0, 1)},
			{Pt(1, 1, 0), Pt(1, 1, 1)},
			{Pt(0, 1, 0), Pt(0, 1, 1)},
		},
		weights: [][]float64{{1, 1}, {w, w}, {1, 1}},
	}
}

func TestSurfaceCacheRational(t *testing.T) {
	p := quarterCylinder()
	c := NewSurfaceCache()
	p.build(c, 0.5, 0.5)
	for i := range 11 {
		u := float64(i) / 10
		for _, v := range []float64{0, 0.5, 1} {
			if !c.IsCacheValid(u, v) {
				t.Fatalf("single-span cache isn't valid at (%v, %v)", u, v)
			}
			q, du, _ := c.D1(u, v)
			if r := q.X*q.X + q.Y*q.Y; math.Abs(r-1) > 1e-10 {
				t.Errorf("u=%v: x²+y² = %v", u, r)
			}
			diff(t, v, q.Z, cmpopts.EquateApprox(0, 1e-12))
			if d := Vec(q.X, q.Y, 0).Dot(du); math.Abs(d) > 1e-10 {
				t.Errorf("u=%v: tangent isn't perpendicular to radius: %v", u, d)
			}
			pointsClose(t, p.direct(u, v), q, 1e-10)
		}
	}

	s := p.surface(t)
	for _, uv := range [][2]float64{{0.2, 0.3}, {0.5, 0.5}, {0.85, 0.1}} {
		checkSurfaceDerivatives(t, s, uv[0], uv[1])
	}
}

func TestBSplineSurfacePeriodic(t *testing.T) {
	// A closed band: six poles around the z axis, periodic cubic in u.
	poles := make([][]Point, 6)
	for i := range poles {
		s, c := math.Sincos(float64(i) * math.Pi / 3)
		poles[i] = []Point{Pt(2*c, 2*s, 0), Pt(2*c, 2*s, 1)}
	}
	knotsU := FlatKnots{-3, -2, -1, 0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	s, err := NewBSplineSurface(3, 1, true, false, knotsU, FlatKnots{0, 0, 1, 1}, poles, nil)
	if err != nil {
		t.Fatal(err)
	}
	diff(t, Domain{0, 6, 0, 1}, s.Domain())
	diff(t, 6.0, s.UPeriod())
	diff(t, 0.0, s.VPeriod())

	for _, u := range []float64{0, 0.4, 2.5, 5.9} {
		for _, k := range []float64{-2, -1, 1, 3} {
			pointsClose(t, s.Value(u, 0.5), s.Value(u+6*k, 0.5), 1e-12)
		}
	}
	// Continuous across the seam.
	pointsClose(t, s.Value(0, 0.3), s.Value(6-1e-9, 0.3), 1e-7)
	checkSurfaceDerivatives(t, s, 0.001, 0.5)
	checkSurfaceDerivatives(t, s, 5.999, 0.5)
}

func TestNewBSplineSurfaceErrors(t *testing.T) {
	p := wavyPatch()
	tests := []struct {
		name    string
		knotsU  FlatKnots
		weights [][]float64
	}{
		{"short knots", p.knotsU[1:], nil},
		{"decreasing", FlatKnots{0, 0, 0, 0, 2, 1, 2, 2, 2}, nil},
		{"empty domain", FlatKnots{0, 0, 0, 0, 0, 0, 0, 0, 0}, nil},
		{"weight rows", p.knotsU, [][]float64{{1, 1, 1, 1}}},
		{"negative weight", p.knotsU, [][]float64{
			{1, 1, 1, 1}, {1, 1, 1, 1}, {1, -1, 1, 1}, {1, 1, 1, 1}, {1, 1, 1, 1},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBSplineSurface(3, 2, false, false, tt.knotsU, p.knotsV, p.poles, tt.weights)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("got error %v, want ErrInvalidInput", err)
			}
		})
	}
	if _, err := NewBSplineSurface(3, 2, false, false, p.knotsU, p.knotsV, nil, nil); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("empty poles: got error %v, want ErrInvalidInput", err)
	}
}

func TestLinearBSplineCurve(t *testing.T) {
	c, err := NewBSplineCurve(1, false, FlatKnots{0, 0, 1, 1}, []Point{Pt(0, 0, 0), Pt(1, 1, 0)}, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := range 5 {
		p := c.Value(float64(i) / 4)
		if math.Abs(p.X-p.Y) > 1e-12 {
			t.Errorf("t=%v: got %v, want x == y", float64(i)/4, p)
		}
		diff(t, float64(i)/4, p.X, cmpopts.EquateApprox(0, 1e-14))
	}
}

func TestCurveCache(t *testing.T) {
	knots := FlatKnots{0, 0, 0, 0, 1, 3, 3, 3, 3}
	poles := []Point{Pt(0, 0, 0), Pt(1, 2, 0), Pt(3, 3, 1), Pt(4, 0, 2), Pt(6, 1, 0)}
	c := NewCurveCache()
	if c.IsCacheValid(0.5) {
		t.Fatal("empty cache reports valid")
	}
	c.BuildCache(0.5, 3, false, knots, poles, nil)
	if !c.IsCacheValid(0.5) || !c.IsCacheValid(-1) || c.IsCacheValid(1) {
		t.Error("unexpected validity of cache built in the first span")
	}

	curve, err := NewBSplineCurve(3, false, knots, poles, nil)
	if err != nil {
		t.Fatal(err)
	}
	const h = 1e-5
	for _, x := range []float64{0.2, 0.9, 1.6, 2.8} {
		p, d1, d2 := curve.D2(x)
		pointsClose(t, curve.Value(x), p, 1e-12)
		vecsClose(t, "d1", centralDiff(curve.Value, x, h), d1, 1e-6)
		vecsClose(t, "d2", centralDiff(func(s float64) Vec3 { _, d := curve.D1(s); return d }, x, h), d2, 1e-5)
	}
	pointsClose(t, poles[0], curve.Value(0), 1e-14)
	pointsClose(t, poles[4], curve.Value(3), 1e-12)
}

func TestRationalCurve(t *testing.T) {
	w := 1 / math.Sqrt2
	c, err := NewBSplineCurve(2, false, FlatKnots{0, 0, 0, 1, 1, 1},
		[]Point{Pt(1, 0, 0), Pt(1, 1, 0), Pt(0, 1, 0)}, []float64{1, w, 1})
	if err != nil {
		t.Fatal(err)
	}
	for i := range 11 {
		p, d1, d2 := c.D2(float64(i) / 10)
		if r := p.X*p.X + p.Y*p.Y; math.Abs(r-1) > 1e-10 {
			t.Errorf("x²+y² = %v", r)
		}
		if d := Vec3(p).Dot(d1); math.Abs(d) > 1e-10 {
			t.Errorf("tangent isn't perpendicular to radius: %v", d)
		}
		// On a circle, p·p'' = −|p'|².
		diff(t, -d1.Hypot2(), Vec3(p).Dot(d2), cmpopts.EquateApprox(0, 1e-9))
	}
}
