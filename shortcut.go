package surface

import "math"

// angularTolerance is the angle below which directions count as parallel in
// the closed-form solvers.
const angularTolerance = 1e-10

type analyticResult struct {
	status   Status
	parallel float64
	cands    []candidate
}

func (r *analyticResult) swap() {
	for i := range r.cands {
		c := &r.cands[i]
		c.x1, c.x2 = c.x2, c.x1
		c.p1, c.p2 = c.p2, c.p1
	}
}

// shortcut solves pairs of elementary shapes in closed form. It reports
// false if the pair has no closed-form solver.
func shortcut(s1, s2 *side) (analyticResult, bool) {
	if s1.curve != nil {
		return curveShortcut(s1, s2)
	}
	if r, ok := surfaceShortcut(s1, s2); ok {
		return r, true
	}
	if r, ok := surfaceShortcut(s2, s1); ok {
		r.swap()
		return r, true
	}
	return analyticResult{}, false
}

func surfaceShortcut(a, b *side) (analyticResult, bool) {
	switch sa := a.surf.(type) {
	case Plane:
		switch sb := b.surf.(type) {
		case Plane:
			return planePlane(sa, sb), true
		case Sphere:
			return planeSphere(a, b, sa, sb), true
		case Cylinder:
			return planeCylinder(sa, sb), true
		}
	case Sphere:
		if sb, ok := b.surf.(Sphere); ok {
			return sphereSphere(a, b, sa, sb), true
		}
	case Cylinder:
		if sb, ok := b.surf.(Cylinder); ok && sa.Axis().IsParallel(sb.Axis(), angularTolerance) {
			return cylinderCylinder(sa, sb), true
		}
	}
	return analyticResult{}, false
}

// Planes that aren't parallel intersect along a line, which has no isolated
// extrema.
func planePlane(p1, p2 Plane) analyticResult {
	if !p1.Normal().IsParallel(p2.Normal(), angularTolerance) {
		return analyticResult{status: StatusOK}
	}
	d := p2.Frame.Origin.Sub(p1.Frame.Origin).Dot(p1.Normal())
	return analyticResult{status: StatusInfiniteSolutions, parallel: d * d}
}

func planeSphere(a, b *side, pl Plane, s Sphere) analyticResult {
	c := s.Center()
	n := pl.Normal()
	d := c.Sub(pl.Frame.Origin).Dot(n)
	u, v := pl.Parameters(c)
	x1 := [2]float64{u, v}

	// w points from the center towards the plane.
	w := n
	if d > 0 {
		w = n.Negate()
	}
	var r analyticResult
	if math.Abs(d) > s.Radius {
		su, sv := s.Parameters(c.Translate(w.Mul(s.Radius)))
		r.cands = append(r.cands, makeCandidate(a, b, x1, [2]float64{su, sv}, true))
	}
	su, sv := s.Parameters(c.Translate(w.Mul(-s.Radius)))
	r.cands = append(r.cands, makeCandidate(a, b, x1, [2]float64{su, sv}, false))
	return r
}

// A cylinder whose axis isn't parallel to the plane crosses it.
func planeCylinder(pl Plane, c Cylinder) analyticResult {
	if math.Abs(c.Axis().Dot(pl.Normal())) > math.Sin(angularTolerance) {
		return analyticResult{status: StatusOK}
	}
	h := math.Abs(c.Frame.Origin.Sub(pl.Frame.Origin).Dot(pl.Normal()))
	d := max(h-c.Radius, 0)
	return analyticResult{status: StatusInfiniteSolutions, parallel: d * d}
}

func sphereSphere(a, b *side, s1, s2 Sphere) analyticResult {
	c1, c2 := s1.Center(), s2.Center()
	r1, r2 := s1.Radius, s2.Radius
	dv := c2.Sub(c1)
	dist := dv.Hypot()
	if dist <= 1e-12*max(1, r1, r2) {
		// Concentric spheres are at a constant distance.
		d := r1 - r2
		return analyticResult{status: StatusInfiniteSolutions, parallel: d * d}
	}
	w := dv.Div(dist)

	// The extrema lie on the line through the centers, at c1 ± r1·w and
	// c2 ± r2·w; the distance between them is |dist + s2·r2 − s1·r1|.
	best, worst := math.Inf(1), math.Inf(-1)
	var bs, ws [2]float64
	for _, s := range [4][2]float64{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}} {
		d := math.Abs(dist + s[1]*r2 - s[0]*r1)
		if d < best {
			best, bs = d, s
		}
		if d > worst {
			worst, ws = d, s
		}
	}
	param := func(s Sphere, c Point, r, sign float64) [2]float64 {
		u, v := s.Parameters(c.Translate(w.Mul(sign * r)))
		return [2]float64{u, v}
	}
	var r analyticResult
	intersect := dist <= r1+r2 && dist >= math.Abs(r1-r2)
	if !intersect {
		r.cands = append(r.cands, makeCandidate(a, b, param(s1, c1, r1, bs[0]), param(s2, c2, r2, bs[1]), true))
	}
	r.cands = append(r.cands, makeCandidate(a, b, param(s1, c1, r1, ws[0]), param(s2, c2, r2, ws[1]), false))
	return r
}

func cylinderCylinder(c1, c2 Cylinder) analyticResult {
	axis := c1.Axis()
	off := c2.Frame.Origin.Sub(c1.Frame.Origin)
	off = off.Sub(axis.Mul(off.Dot(axis)))
	dist := off.Hypot()
	r1, r2 := c1.Radius, c2.Radius
	var d float64
	switch {
	case dist >= r1+r2:
		d = dist - r1 - r2
	case dist <= math.Abs(r1-r2):
		d = math.Abs(r1-r2) - dist
	}
	return analyticResult{status: StatusInfiniteSolutions, parallel: d * d}
}

func curveShortcut(a, b *side) (analyticResult, bool) {
	l, ok := a.curve.(Line)
	if !ok {
		return analyticResult{}, false
	}
	switch s := b.surf.(type) {
	case Plane:
		return linePlane(a, b, l, s), true
	case Sphere:
		return lineSphere(a, b, l, s), true
	case Cylinder:
		return lineCylinder(a, b, l, s), true
	}
	return analyticResult{}, false
}

func linePlane(a, b *side, l Line, pl Plane) analyticResult {
	n := pl.Normal()
	dn := l.Dir.Dot(n)
	h := pl.Frame.Origin.Sub(l.Origin).Dot(n)
	if math.Abs(dn) <= math.Sin(angularTolerance)*l.Dir.Hypot() {
		return analyticResult{status: StatusInfiniteSolutions, parallel: h * h}
	}
	t := h / dn
	u, v := pl.Parameters(l.Value(t))
	return analyticResult{cands: []candidate{
		makeCandidate(a, b, [2]float64{t}, [2]float64{u, v}, true),
	}}
}

func lineSphere(a, b *side, l Line, s Sphere) analyticResult {
	c := s.Center()
	t0 := l.Parameter(c)
	foot := l.Value(t0)
	radial := foot.Sub(c)
	dist := radial.Hypot()

	var r analyticResult
	if dist > s.Radius {
		u, v := s.Parameters(c.Translate(radial.Mul(s.Radius / dist)))
		r.cands = append(r.cands, makeCandidate(a, b, [2]float64{t0}, [2]float64{u, v}, true))
	} else {
		// |O + t·D − C|² = R²
		oc := l.Origin.Sub(c)
		roots, n := SolveQuadratic(oc.Hypot2()-s.Radius*s.Radius, 2*l.Dir.Dot(oc), l.Dir.Hypot2())
		for _, t := range roots[:n] {
			u, v := s.Parameters(l.Value(t))
			r.cands = append(r.cands, makeCandidate(a, b, [2]float64{t}, [2]float64{u, v}, true))
		}
	}
	if dist > 0 {
		u, v := s.Parameters(c.Translate(radial.Mul(-s.Radius / dist)))
		r.cands = append(r.cands, makeCandidate(a, b, [2]float64{t0}, [2]float64{u, v}, false))
	}
	return r
}

func lineCylinder(a, b *side, l Line, cy Cylinder) analyticResult {
	f := cy.Frame
	axis := cy.Axis()
	if l.Dir.IsParallel(axis, angularTolerance) {
		lo := f.ToLocal(l.Origin)
		d := math.Hypot(lo.X, lo.Y) - cy.Radius
		return analyticResult{status: StatusInfiniteSolutions, parallel: d * d}
	}

	// Common perpendicular of the line and the axis.
	w0 := l.Origin.Sub(f.Origin)
	aa, bb, cc := l.Dir.Dot(l.Dir), l.Dir.Dot(axis), axis.Dot(axis)
	dd, ee := l.Dir.Dot(w0), axis.Dot(w0)
	den := aa*cc - bb*bb
	t := (bb*ee - cc*dd) / den
	s := (aa*ee - bb*dd) / den
	onAxis := f.Origin.Translate(axis.Mul(s))
	radial := l.Value(t).Sub(onAxis)
	dist := radial.Hypot()

	var r analyticResult
	if dist > cy.Radius {
		u, v := cy.Parameters(onAxis.Translate(radial.Mul(cy.Radius / dist)))
		r.cands = append(r.cands, makeCandidate(a, b, [2]float64{t}, [2]float64{u, v}, true))
	} else {
		o := f.ToLocal(l.Origin)
		dx, dy := l.Dir.Dot(f.X), l.Dir.Dot(f.Y)
		roots, n := SolveQuadratic(o.X*o.X+o.Y*o.Y-cy.Radius*cy.Radius, 2*(o.X*dx+o.Y*dy), dx*dx+dy*dy)
		for _, t := range roots[:n] {
			u, v := cy.Parameters(l.Value(t))
			r.cands = append(r.cands, makeCandidate(a, b, [2]float64{t}, [2]float64{u, v}, true))
		}
	}
	if dist > 0 {
		u, v := cy.Parameters(onAxis.Translate(radial.Mul(-cy.Radius / dist)))
		r.cands = append(r.cands, makeCandidate(a, b, [2]float64{t}, [2]float64{u, v}, false))
	}
	return r
}
