package surface

import (
	"iter"
	"math"
)

// shape is one participant of an extrema search: a surface or a curve,
// together with the parameter domain to search.
type shape struct {
	surf  Surface
	curve Curve
	dom   Domain
	// user is set if dom was supplied by the caller rather than taken from
	// the adaptor.
	user bool
}

func surfaceShape(s Surface, dom option[Domain]) shape {
	if s == nil {
		return shape{}
	}
	if dom.isSet {
		return shape{surf: s, dom: dom.value, user: true}
	}
	return shape{surf: s, dom: s.Domain()}
}

func curveShape(c Curve, dom option[Domain]) shape {
	if c == nil {
		return shape{}
	}
	if dom.isSet {
		d := dom.value
		return shape{curve: c, dom: Domain{U0: d.U0, U1: d.U1}, user: true}
	}
	t0, t1 := c.Bounds()
	return shape{curve: c, dom: Domain{U0: t0, U1: t1}}
}

func (sh *shape) valid() bool {
	if sh.surf == nil && sh.curve == nil {
		return false
	}
	d := sh.dom
	if math.IsNaN(d.U0) || math.IsNaN(d.U1) || d.U0 > d.U1 {
		return false
	}
	if sh.surf != nil && (math.IsNaN(d.V0) || math.IsNaN(d.V1) || d.V0 > d.V1) {
		return false
	}
	return true
}

func (sh *shape) params() int {
	if sh.curve != nil {
		return 1
	}
	return 2
}

func (sh *shape) kind() string {
	if sh.curve != nil {
		return sh.curve.Kind().String()
	}
	if sh.surf != nil {
		return sh.surf.Kind().String()
	}
	return "none"
}

// analytic reports whether the adaptor is one of the elementary shapes, whose
// natural parameter bounds are seams, poles or infinite rather than edges.
func (sh *shape) analytic() bool {
	if sh.curve != nil {
		switch sh.curve.Kind() {
		case LineKind, CircleKind:
			return true
		}
		return false
	}
	switch sh.surf.Kind() {
	case PlaneKind, SphereKind, CylinderKind, ConeKind, TorusKind:
		return true
	}
	return false
}

func (sh *shape) periodic(k int) (float64, bool) {
	if sh.curve != nil {
		if k == 0 && sh.curve.IsPeriodic() {
			return sh.curve.Period(), true
		}
		return 0, false
	}
	if k == 0 && sh.surf.IsUPeriodic() {
		return sh.surf.UPeriod(), true
	}
	if k == 1 && sh.surf.IsVPeriodic() {
		return sh.surf.VPeriod(), true
	}
	return 0, false
}

func (sh *shape) value(p [2]float64) Point {
	if sh.curve != nil {
		return sh.curve.Value(p[0])
	}
	return sh.surf.Value(p[0], p[1])
}

func (sh *shape) window(sp sphere, cfg Config) Domain {
	var w windower
	if sh.curve != nil {
		w, _ = sh.curve.(windower)
	} else {
		w, _ = sh.surf.(windower)
	}
	if w != nil {
		return w.Window(sp.center, sp.radius)
	}
	r := cfg.UnboundedRadius
	return Domain{-r, r, -r, r}
}

type sphere struct {
	center Point
	radius float64
}

// boundingSphere returns a sphere enclosing the shape over its domain,
// estimated from a coarse grid. For infinite domains, it returns a sphere of
// radius cfg.UnboundedRadius around an anchor point of the shape.
func boundingSphere(sh *shape, cfg Config) sphere {
	const n = 9
	d := sh.dom
	lo := [2]float64{d.U0, d.V0}
	hi := [2]float64{d.U1, d.V1}
	np := sh.params()
	finite := true
	for k := range np {
		finite = finite && !math.IsInf(lo[k], 0) && !math.IsInf(hi[k], 0)
	}
	if !finite {
		var p [2]float64
		for k := range np {
			p[k] = clamp(0, lo[k], hi[k])
		}
		return sphere{sh.value(p), cfg.UnboundedRadius}
	}

	nv := n
	if np == 1 {
		nv = 1
	}
	pts := make([]Point, 0, n*nv)
	for i := range n {
		for j := range nv {
			p := [2]float64{
				lo[0] + float64(i)*(hi[0]-lo[0])/(n-1),
				lo[1] + float64(j)*(hi[1]-lo[1])/(n-1),
			}
			if pt := sh.value(p); !pt.IsNaN() {
				pts = append(pts, pt)
			}
		}
	}
	if len(pts) == 0 {
		return sphere{Point{}, cfg.UnboundedRadius}
	}
	bl, bh := boundsOf(pts)
	return sphere{bl.Midpoint(bh), max(0.55*bl.Distance(bh), 1e-9)}
}

// boundsOf returns the bounding box of pts.
func boundsOf(pts []Point) (lo, hi Point) {
	lo = Pt(math.Inf(1), math.Inf(1), math.Inf(1))
	hi = Pt(math.Inf(-1), math.Inf(-1), math.Inf(-1))
	for _, p := range pts {
		lo = Pt(min(lo.X, p.X), min(lo.Y, p.Y), min(lo.Z, p.Z))
		hi = Pt(max(hi.X, p.X), max(hi.Y, p.Y), max(hi.Z, p.Z))
	}
	return lo, hi
}

// side is a shape prepared for searching: a finite parameter window, a
// sampling grid and the information needed to refine and compare parameters.
type side struct {
	shape
	n      int
	lo, hi [2]float64
	// period is non-zero for parameters whose window covers a full period.
	// Such parameters wrap around instead of having bounds.
	period [2]float64
	count  [2]int
	// edge[k][0] and edge[k][1] report whether lo[k] and hi[k] are real
	// boundaries of the searched domain, as opposed to seams or the edges
	// of a window over an infinite range.
	edge  [2][2]bool
	degen option[float64]
}

// newSide prepares sh for a search against a shape enclosed by sp.
func newSide(sh shape, sp sphere, cfg Config) side {
	s := side{shape: sh, n: sh.params()}
	d := sh.dom
	s.lo = [2]float64{d.U0, d.V0}
	s.hi = [2]float64{d.U1, d.V1}
	if s.n == 1 {
		s.lo[1], s.hi[1] = 0, 0
	}

	dlo := s.lo
	w := sh.window(sp, cfg)
	wlo := [2]float64{w.U0, w.V0}
	whi := [2]float64{w.U1, w.V1}
	for k := range s.n {
		if math.IsInf(s.lo[k], 0) {
			s.lo[k] = wlo[k]
		} else {
			s.edge[k][0] = sh.user || !sh.analytic()
		}
		if math.IsInf(s.hi[k], 0) {
			s.hi[k] = whi[k]
		} else {
			s.edge[k][1] = sh.user || !sh.analytic()
		}
		if s.lo[k] > s.hi[k] {
			// The window lies outside a half-bounded domain.
			if !math.IsInf(dlo[k], 0) {
				s.hi[k] = s.lo[k]
			} else {
				s.lo[k] = s.hi[k]
			}
		}
	}

	for k := range s.n {
		span := s.hi[k] - s.lo[k]
		per, ok := sh.periodic(k)
		switch {
		case span == 0:
			s.count[k] = 1
		case ok && span >= per*(1-1e-12):
			s.period[k] = per
			s.hi[k] = s.lo[k] + per
			s.edge[k] = [2]bool{}
			s.count[k] = max(4, cfg.AngularSamples)
		case ok:
			s.count[k] = max(2, int(math.Ceil(float64(cfg.AngularSamples)*span/per))+1)
		default:
			n := int(math.Ceil(12 * s.isoLength(k) / sp.radius))
			s.count[k] = min(max(n, cfg.MinLinearSamples), cfg.MaxLinearSamples)
		}
	}
	if s.n == 1 {
		s.count[1] = 1
	}

	if sh.surf != nil {
		if dg, ok := sh.surf.(degenerateVer); ok {
			if v, ok := dg.DegenerateV(); ok {
				s.degen.set(v)
			}
		}
	}
	return s
}

// isoLength estimates the length of the iso-curve along parameter k through
// the middle of the window.
func (s *side) isoLength(k int) float64 {
	const n = 16
	p := [2]float64{0.5 * (s.lo[0] + s.hi[0]), 0.5 * (s.lo[1] + s.hi[1])}
	p[k] = s.lo[k]
	prev := s.value(p)
	var l float64
	for i := 1; i <= n; i++ {
		p[k] = s.lo[k] + float64(i)*(s.hi[k]-s.lo[k])/n
		pt := s.value(p)
		if d := pt.Distance(prev); !math.IsNaN(d) {
			l += d
		}
		prev = pt
	}
	return l
}

// restrict returns a copy of s with parameter k fixed at one of its bounds,
// for scanning an edge of the domain.
func (s *side) restrict(k, end, samples int) side {
	r := *s
	v := s.lo[k]
	if end == 1 {
		v = s.hi[k]
	}
	r.lo[k], r.hi[k] = v, v
	r.count[k] = 1
	r.edge[k] = [2]bool{}
	if o := 1 - k; o < s.n && r.period[o] == 0 && r.lo[o] < r.hi[o] {
		r.count[o] = samples
	}
	return r
}

func (s *side) at(k, i int) float64 {
	n := s.count[k]
	switch {
	case n == 1:
		return s.lo[k]
	case s.period[k] > 0:
		return s.lo[k] + float64(i)*s.period[k]/float64(n)
	default:
		return s.lo[k] + float64(i)*(s.hi[k]-s.lo[k])/float64(n-1)
	}
}

func (s *side) size() int { return s.count[0] * s.count[1] }

func (s *side) gridParams(i int) [2]float64 {
	return [2]float64{s.at(0, i/s.count[1]), s.at(1, i%s.count[1])}
}

// points evaluates the grid. Adaptors aren't safe for concurrent use, so
// this runs on the calling goroutine.
func (s *side) points() []Point {
	pts := make([]Point, s.size())
	for i := range pts {
		pts[i] = s.value(s.gridParams(i))
	}
	return pts
}

// neighbors yields the grid indices adjacent to i, including diagonals.
func (s *side) neighbors(i int) iter.Seq[int] {
	return func(yield func(int) bool) {
		c1 := s.count[1]
		a, b := i/c1, i%c1
		for da := -1; da <= 1; da++ {
			na, ok := s.wrapGrid(0, a+da)
			if !ok {
				continue
			}
			for db := -1; db <= 1; db++ {
				nb, ok := s.wrapGrid(1, b+db)
				if !ok {
					continue
				}
				if j := na*c1 + nb; j != i && !yield(j) {
					return
				}
			}
		}
	}
}

func (s *side) wrapGrid(k, i int) (int, bool) {
	n := s.count[k]
	if s.period[k] > 0 {
		return (i + n) % n, true
	}
	return i, i >= 0 && i < n
}

// adjacent reports whether grid indices i and j are equal or neighbors.
func (s *side) adjacent(i, j int) bool {
	c1 := s.count[1]
	for k, d := range [2]int{i/c1 - j/c1, i%c1 - j%c1} {
		d = max(d, -d)
		if s.period[k] > 0 {
			d = min(d, s.count[k]-d)
		}
		if d > 1 {
			return false
		}
	}
	return true
}

// step returns the initial search step along parameter k.
func (s *side) step(k int) float64 {
	switch {
	case s.period[k] > 0:
		return s.period[k] / float64(s.count[k])
	case s.hi[k] == s.lo[k]:
		return 0
	default:
		return (s.hi[k] - s.lo[k]) / float64(max(s.count[k]-1, 1))
	}
}

// searchBounds returns the bounds of a local search starting at x. Wrapping
// parameters are unbounded. A degenerate iso-line, such as a cone's apex,
// acts as a bound on the side of x.
func (s *side) searchBounds(x [2]float64) (lo, hi [2]float64) {
	lo, hi = s.lo, s.hi
	for k := range s.n {
		if s.period[k] > 0 {
			lo[k], hi[k] = math.Inf(-1), math.Inf(1)
		}
	}
	if s.degen.isSet && s.n == 2 && lo[1] < hi[1] {
		vd := s.degen.value
		eps := 1e-9 * max(1, hi[1]-lo[1])
		if x[1] >= vd {
			lo[1] = max(lo[1], vd+eps)
		} else {
			hi[1] = min(hi[1], vd-eps)
		}
		if lo[1] > hi[1] {
			lo[1], hi[1] = x[1], x[1]
		}
	}
	return lo, hi
}

// fold maps wrapping parameters into the window.
func (s *side) fold(x [2]float64) [2]float64 {
	for k := range s.n {
		if s.period[k] > 0 {
			x[k] = foldPeriod(x[k], s.lo[k], s.lo[k]+s.period[k])
		}
	}
	return x
}

// near reports whether x and y differ by less than tol in every parameter,
// accounting for wraparound.
func (s *side) near(x, y [2]float64, tol float64) bool {
	for k := range s.n {
		d := math.Abs(x[k] - y[k])
		if s.period[k] > 0 {
			d = math.Mod(d, s.period[k])
			d = min(d, s.period[k]-d)
		}
		if !(d < tol) {
			return false
		}
	}
	return true
}

// inDomain reports whether x lies in the searched domain. Windows over
// infinite ranges don't restrict it.
func (s *side) inDomain(x [2]float64) bool {
	lo := [2]float64{s.dom.U0, s.dom.V0}
	hi := [2]float64{s.dom.U1, s.dom.V1}
	for k := range s.n {
		if s.period[k] > 0 {
			continue
		}
		slack := 1e-12 * max(1, math.Abs(x[k]))
		if x[k] < lo[k]-slack || x[k] > hi[k]+slack {
			return false
		}
	}
	return true
}

// project returns the parameters of a point of the shape where the distance
// to pt is stationary, found by Newton iteration from start.
func (s *side) project(pt Point, start [2]float64, maxIter int, tol float64) ([2]float64, bool) {
	lo, hi := s.searchBounds(start)
	for k := range s.n {
		if math.IsInf(lo[k], -1) {
			lo[k] = start[k] - s.period[k]
		}
		if math.IsInf(hi[k], 1) {
			hi[k] = start[k] + s.period[k]
		}
	}

	if s.curve != nil {
		t, st := solveNewton1D(func(t float64) (float64, float64) {
			c, d1, d2 := s.curve.D2(t)
			r := c.Sub(pt)
			return r.Dot(d1), d1.Dot(d1) + r.Dot(d2)
		}, start[0], lo[0], hi[0], tol, maxIter)
		if st != StatusOK && st != StatusMaxIterations {
			return start, false
		}
		return s.fold([2]float64{t}), true
	}

	res := SolveNewton2DSymmetric(func(u, v float64) (f1, f2, j11, j12, j22 float64, ok bool) {
		p, du, dv, duu, dvv, duv := s.surf.D2(u, v)
		r := p.Sub(pt)
		if r.IsNaN() {
			return 0, 0, 0, 0, 0, false
		}
		return r.Dot(du), r.Dot(dv),
			du.Dot(du) + r.Dot(duu),
			du.Dot(dv) + r.Dot(duv),
			dv.Dot(dv) + r.Dot(dvv),
			true
	}, start[0], start[1], Newton2DOptions{
		Tolerance:     tol,
		MaxIterations: maxIter,
		Bounds:        &Box2{lo[0], hi[0], lo[1], hi[1]},
	})
	if res.Status != StatusOK && res.Status != StatusMaxIterations {
		return start, false
	}
	return s.fold([2]float64{res.U, res.V}), true
}

// inwardSlope returns the cosine of the angle between the direction from
// other to the point at x and the direction the point moves when parameter k
// leaves its bound at end towards the inside of the domain. It is zero where
// either direction vanishes.
func (s *side) inwardSlope(k, end int, x [2]float64, other Point) float64 {
	var p Point
	var d Vec3
	if s.curve != nil {
		p, d = s.curve.D1(x[0])
	} else {
		var du, dv Vec3
		p, du, dv = s.surf.D1(x[0], x[1])
		d = du
		if k == 1 {
			d = dv
		}
	}
	if end == 1 {
		d = d.Negate()
	}
	r := p.Sub(other)
	n := r.Hypot() * d.Hypot()
	if !(n > 0) {
		return 0
	}
	return r.Dot(d) / n
}

// onWindow reports whether x lies on a bound of the window placed over an
// infinite parameter range.
func (s *side) onWindow(x [2]float64) bool {
	lo := [2]float64{s.dom.U0, s.dom.V0}
	hi := [2]float64{s.dom.U1, s.dom.V1}
	for k := range s.n {
		if s.period[k] > 0 || s.lo[k] == s.hi[k] {
			continue
		}
		eps := 1e-9 * max(1, s.hi[k]-s.lo[k])
		if math.IsInf(lo[k], -1) && x[k]-s.lo[k] <= eps {
			return true
		}
		if math.IsInf(hi[k], 1) && s.hi[k]-x[k] <= eps {
			return true
		}
	}
	return false
}
