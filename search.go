package surface

import (
	"math"
	"slices"

	"golang.org/x/sync/errgroup"
)

// candidate is an extremum in the parameters of the two sides of a search.
type candidate struct {
	x1, x2 [2]float64
	p1, p2 Point
	d2     float64
	isMin  bool
}

func makeCandidate(s1, s2 *side, x1, x2 [2]float64, isMin bool) candidate {
	p1, p2 := s1.value(x1), s2.value(x2)
	return candidate{
		x1:    x1,
		x2:    x2,
		p1:    p1,
		p2:    p2,
		d2:    p1.DistanceSquared(p2),
		isMin: isMin,
	}
}

// better reports whether c is a stronger extremum than o of the same
// category.
func (c *candidate) better(o *candidate) bool {
	if c.isMin {
		return c.d2 < o.d2
	}
	return c.d2 > o.d2
}

type engine struct {
	cfg Config
	tol float64
}

func (e *engine) newtonTol() float64 { return max(e.tol*e.tol, 1e-14) }

// rowExtreme holds the nearest and farthest grid point of the other side for
// one grid point.
type rowExtreme struct {
	min, max   float64
	jmin, jmax int
}

// scanGrid computes, for every point of g1, the nearest and farthest point
// of g2. Rows are distributed over at most workers goroutines; each writes
// only its own slots, so the result doesn't depend on scheduling.
func scanGrid(g1, g2 []Point, workers int) ([]rowExtreme, error) {
	const chunk = 32
	out := make([]rowExtreme, len(g1))
	var g errgroup.Group
	g.SetLimit(max(workers, 1))
	for start := 0; start < len(g1); start += chunk {
		end := min(start+chunk, len(g1))
		g.Go(func() error {
			for i := start; i < end; i++ {
				r := rowExtreme{min: math.Inf(1), max: math.Inf(-1), jmin: -1, jmax: -1}
				p := g1[i]
				for j, q := range g2 {
					d := p.DistanceSquared(q)
					if math.IsNaN(d) {
						continue
					}
					if d < r.min {
						r.min, r.jmin = d, j
					}
					if d > r.max {
						r.max, r.jmax = d, j
					}
				}
				out[i] = r
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// pickSeeds returns up to k grid indices of s whose row extrema are local
// extrema of the grid, strongest first. Seeds that are grid neighbors of a
// stronger seed are skipped, which thins out plateaus.
func pickSeeds(s *side, rows []rowExtreme, maximize bool, k int) []int {
	val := func(i int) (float64, bool) {
		if maximize {
			return rows[i].max, rows[i].jmax >= 0
		}
		return rows[i].min, rows[i].jmin >= 0
	}
	better := func(a, b float64) bool {
		if maximize {
			return a > b
		}
		return a < b
	}

	var cands []int
	for i := range rows {
		v, ok := val(i)
		if !ok {
			continue
		}
		extreme := true
		for j := range s.neighbors(i) {
			if w, ok := val(j); ok && better(w, v) {
				extreme = false
				break
			}
		}
		if extreme {
			cands = append(cands, i)
		}
	}
	slices.SortStableFunc(cands, func(a, b int) int {
		va, _ := val(a)
		vb, _ := val(b)
		switch {
		case better(va, vb):
			return -1
		case better(vb, va):
			return 1
		default:
			return 0
		}
	})

	var seeds []int
outer:
	for _, i := range cands {
		if len(seeds) == k {
			break
		}
		for _, j := range seeds {
			if s.adjacent(i, j) {
				continue outer
			}
		}
		seeds = append(seeds, i)
	}
	return seeds
}

// search scans the grids of s1 and s2 and refines the most promising
// samples. It reports StatusNumericalError if any refinement failed.
func (e *engine) search(s1, s2 *side, mode SearchMode, polish bool) ([]candidate, Status) {
	rows, err := scanGrid(s1.points(), s2.points(), e.cfg.Workers)
	if err != nil {
		return nil, StatusNumericalError
	}
	var out []candidate
	status := StatusOK
	for _, maximize := range [2]bool{false, true} {
		if !mode.wants(maximize) {
			continue
		}
		for _, i := range pickSeeds(s1, rows, maximize, e.cfg.Seeds) {
			j := rows[i].jmin
			if maximize {
				j = rows[i].jmax
			}
			c, st := e.refine(s1, s2, s1.gridParams(i), s2.gridParams(j), maximize)
			if st == StatusNumericalError {
				status = st
				continue
			}
			if polish {
				e.polish(s1, s2, &c)
			}
			out = append(out, c)
		}
	}
	return out, status
}

// refine runs Powell's method on the squared distance, negated when
// maximizing, starting at the seed (x1, x2).
func (e *engine) refine(s1, s2 *side, x1, x2 [2]float64, maximize bool) (candidate, Status) {
	n1, n := s1.n, s1.n+s2.n
	x0 := make([]float64, n)
	lower := make([]float64, n)
	upper := make([]float64, n)
	step := make([]float64, n)
	lo1, hi1 := s1.searchBounds(x1)
	lo2, hi2 := s2.searchBounds(x2)
	for k := range s1.n {
		x0[k], lower[k], upper[k], step[k] = x1[k], lo1[k], hi1[k], s1.step(k)
	}
	for k := range s2.n {
		x0[n1+k], lower[n1+k], upper[n1+k], step[n1+k] = x2[k], lo2[k], hi2[k], s2.step(k)
	}

	unpack := func(x []float64) (a, b [2]float64) {
		copy(a[:], x[:n1])
		copy(b[:], x[n1:])
		return a, b
	}
	sign := 1.0
	if maximize {
		sign = -1
	}
	f := func(x []float64) float64 {
		a, b := unpack(x)
		return sign * s1.value(a).DistanceSquared(s2.value(b))
	}

	res := MinimizePowell(f, x0, PowellOptions{
		MaxIterations: e.cfg.PowellMaxIterations,
		Lower:         lower,
		Upper:         upper,
		Step:          step,
	})
	if res.Status == StatusNumericalError || math.IsNaN(res.F) {
		return candidate{}, StatusNumericalError
	}
	a, b := unpack(res.X)
	return makeCandidate(s1, s2, s1.fold(a), s2.fold(b), !maximize), res.Status
}

// polish improves c by alternating footpoint projections between the two
// shapes. A round is kept only if it doesn't weaken the extremum.
func (e *engine) polish(s1, s2 *side, c *candidate) {
	for range e.cfg.PolishRounds {
		x2, ok := s2.project(c.p1, c.x2, e.cfg.NewtonMaxIterations, e.newtonTol())
		if !ok {
			return
		}
		x1, ok := s1.project(s2.value(x2), c.x1, e.cfg.NewtonMaxIterations, e.newtonTol())
		if !ok {
			return
		}
		next := makeCandidate(s1, s2, x1, x2, c.isMin)
		if math.IsNaN(next.d2) || c.better(&next) {
			return
		}
		still := s1.near(x1, c.x1, 1e-15) && s2.near(x2, c.x2, 1e-15)
		*c = next
		if still {
			return
		}
	}
}

// boundaryScan searches each real edge of both domains against the other
// shape. Extrema along an edge that would grow stronger by moving into the
// domain aren't extrema of the whole search and are dropped.
func (e *engine) boundaryScan(s1, s2 *side, mode SearchMode) ([]candidate, Status) {
	var out []candidate
	status := StatusOK
	collect := func(cs []candidate, st Status, keep func(c *candidate) bool) {
		for i := range cs {
			if keep(&cs[i]) {
				out = append(out, cs[i])
			}
		}
		if st != StatusOK {
			status = st
		}
	}
	for k := range s1.n {
		for end := range 2 {
			if s1.edge[k][end] {
				r := s1.restrict(k, end, e.cfg.BoundarySamples)
				cs, st := e.search(&r, s2, mode, false)
				collect(cs, st, func(c *candidate) bool {
					return edgeExtremum(c.isMin, s1.inwardSlope(k, end, c.x1, c.p2))
				})
			}
		}
	}
	for k := range s2.n {
		for end := range 2 {
			if s2.edge[k][end] {
				r := s2.restrict(k, end, e.cfg.BoundarySamples)
				cs, st := e.search(s1, &r, mode, false)
				collect(cs, st, func(c *candidate) bool {
					return edgeExtremum(c.isMin, s2.inwardSlope(k, end, c.x2, c.p1))
				})
			}
		}
	}
	return out, status
}

// edgeExtremum reports whether an extremum along an edge remains one when
// moving into the domain changes the distance at the given slope.
func edgeExtremum(isMin bool, slope float64) bool {
	const eps = 1e-9
	if isMin {
		return slope >= -eps
	}
	return slope <= eps
}

// dedup merges candidates of the same category whose squared distances
// differ by less than tol² and whose parameters all differ by less than tol.
// The stronger of two merged candidates is kept.
func dedup(cands []candidate, s1, s2 *side, tol float64) []candidate {
	var out []candidate
next:
	for _, c := range cands {
		for i := range out {
			o := &out[i]
			if o.isMin != c.isMin || !(math.Abs(o.d2-c.d2) < tol*tol) {
				continue
			}
			if !s1.near(o.x1, c.x1, tol) || !s2.near(o.x2, c.x2, tol) {
				continue
			}
			if c.better(o) {
				*o = c
			}
			continue next
		}
		out = append(out, c)
	}
	return out
}

// selectExtrema filters the candidates, in the order they were found, by
// mode. SearchMinMax keeps every local extremum. SearchMin and SearchMax keep
// only those within tol of the best distance of their category.
func selectExtrema(cands []candidate, mode SearchMode, tol float64) []candidate {
	best := math.Inf(1)
	if mode == SearchMax {
		best = math.Inf(-1)
	}
	for _, c := range cands {
		switch {
		case math.IsNaN(c.d2):
		case mode == SearchMin && c.isMin:
			best = min(best, c.d2)
		case mode == SearchMax && !c.isMin:
			best = max(best, c.d2)
		}
	}
	var out []candidate
	for _, c := range cands {
		if math.IsNaN(c.d2) || !mode.wants(!c.isMin) {
			continue
		}
		if mode != SearchMinMax && !(math.Abs(math.Sqrt(c.d2)-math.Sqrt(best)) <= tol) {
			continue
		}
		out = append(out, c)
	}
	return out
}
