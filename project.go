package surface

import "math"

// PointProjection is the point of a surface nearest to a given point.
type PointProjection struct {
	U, V           float64
	Point          Point
	SquareDistance float64
}

// ProjectPoint finds the point of s nearest to p. The local minima of a
// parameter grid seed Newton iterations on the footpoint equations
// (S − p)·Su = 0 and (S − p)·Sv = 0, and the nearest result is returned.
//
// [WithDomain1] restricts the search; [WithConfig] tunes the grid. Surfaces
// with infinite parameter ranges are searched around p.
func ProjectPoint(s Surface, p Point, tol float64, opts ...Option) (PointProjection, Status) {
	o := newOptions(opts)
	sh := surfaceShape(s, o.dom1)
	if !(tol > 0) || p.IsNaN() || p.IsInf() || !sh.valid() || o.cfg.Validate() != nil {
		return PointProjection{}, StatusInvalidInput
	}

	anchor := boundingSphere(&sh, o.cfg)
	sd := newSide(sh, sphere{p, o.cfg.UnboundedRadius + p.Distance(anchor.center)}, o.cfg)
	rows, err := scanGrid(sd.points(), []Point{p}, o.cfg.Workers)
	if err != nil {
		return PointProjection{}, StatusNumericalError
	}
	seeds := pickSeeds(&sd, rows, false, o.cfg.Seeds)
	if len(seeds) == 0 {
		return PointProjection{}, StatusNumericalError
	}

	e := engine{cfg: o.cfg, tol: tol}
	best := PointProjection{SquareDistance: math.Inf(1)}
	consider := func(x [2]float64) {
		q := sd.value(x)
		if d := q.DistanceSquared(p); d < best.SquareDistance {
			best = PointProjection{U: x[0], V: x[1], Point: q, SquareDistance: d}
		}
	}
	for _, i := range seeds {
		x := sd.gridParams(i)
		consider(x)
		if y, ok := sd.project(p, x, o.cfg.NewtonMaxIterations, e.newtonTol()); ok {
			consider(y)
		}
	}
	return best, StatusOK
}
