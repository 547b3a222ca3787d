package surface

import (
	"math"
	"sort"
)

// FlatKnots is a non-decreasing knot vector with multiplicities expanded
// inline. For n control points and degree p it has n+p+1 entries.
type FlatKnots []float64

// Bounds returns the parameter domain of a B-spline of the given degree
// defined on the knots.
func (k FlatKnots) Bounds(degree int) (first, last float64) {
	return k[degree], k[len(k)-degree-1]
}

// SpanRange returns the indices of the first and last knot spans of
// non-zero length inside the domain.
func (k FlatKnots) SpanRange(degree int) (lo, hi int) {
	lo, hi = degree, len(k)-degree-2
	for lo < hi && k[lo] == k[lo+1] {
		lo++
	}
	for hi > lo && k[hi] == k[hi+1] {
		hi--
	}
	return lo, hi
}

// LocateSpan returns the index s of the knot span [k[s], k[s+1]) containing
// t. Parameters outside the domain are attributed to the first or last span,
// which also absorbs floating-point overshoot at the upper bound.
func (k FlatKnots) LocateSpan(degree int, t float64) int {
	lo, hi := k.SpanRange(degree)
	s := sort.Search(len(k), func(i int) bool { return k[i] > t }) - 1
	if s > hi {
		s = hi
	}
	if s < lo {
		s = lo
	}
	for s > lo && k[s] == k[s+1] {
		s--
	}
	return s
}

// PeriodicNormalize folds t into the half-open period [first, last) of a
// periodic B-spline of the given degree defined on knots.
//
// Folding uses the floor of the period count in both directions, so that
// t + k·period normalizes to the same value for every integer k, including
// values exactly on a period boundary.
func PeriodicNormalize(degree int, knots FlatKnots, t float64) float64 {
	first, last := knots.Bounds(degree)
	return foldPeriod(t, first, last)
}

// foldPeriod maps t into [first, last). Values within a relative 1e-12 of
// a period boundary fold onto first, whichever period they lie in.
func foldPeriod(t, first, last float64) float64 {
	period := last - first
	q := (t - first) / period
	n := math.Floor(q)
	if 1-(q-n) < 1e-12 {
		// Just below a boundary due to rounding.
		n++
	}
	r := t - n*period
	if r < first || r >= last {
		r = first
	}
	return r
}

// BasisDerivs computes the non-vanishing B-spline basis functions of the
// given degree on knot span span, and their derivatives up to order n, at t.
// The result is indexed as ders[k][j]: the k-th derivative of the basis
// function N(span-degree+j).
//
// This is algorithm A2.3 from The NURBS Book (Piegl and Tiller, 2nd edition).
func (k FlatKnots) BasisDerivs(span int, t float64, degree, n int) [][]float64 {
	p := degree
	ders := make([][]float64, n+1)
	for i := range ders {
		ders[i] = make([]float64, p+1)
	}
	ndu := make([][]float64, p+1)
	for i := range ndu {
		ndu[i] = make([]float64, p+1)
	}
	left := make([]float64, p+1)
	right := make([]float64, p+1)

	ndu[0][0] = 1
	for j := 1; j <= p; j++ {
		left[j] = t - k[span+1-j]
		right[j] = k[span+j] - t
		saved := 0.0
		for r := 0; r < j; r++ {
			// Lower triangle
			ndu[j][r] = right[r+1] + left[j-r]
			temp := ndu[r][j-1] / ndu[j][r]
			// Upper triangle
			ndu[r][j] = saved + right[r+1]*temp
			saved = left[j-r] * temp
		}
		ndu[j][j] = saved
	}
	for j := 0; j <= p; j++ {
		ders[0][j] = ndu[j][p]
	}

	// Derivatives beyond the degree vanish.
	nn := min(n, p)
	a := [2][]float64{make([]float64, p+1), make([]float64, p+1)}
	for r := 0; r <= p; r++ {
		s1, s2 := 0, 1
		a[0][0] = 1
		for kk := 1; kk <= nn; kk++ {
			d := 0.0
			rk := r - kk
			pk := p - kk
			if r >= kk {
				a[s2][0] = a[s1][0] / ndu[pk+1][rk]
				d = a[s2][0] * ndu[rk][pk]
			}
			j1 := 1
			if rk < -1 {
				j1 = -rk
			}
			j2 := kk - 1
			if r-1 > pk {
				j2 = p - r
			}
			for j := j1; j <= j2; j++ {
				a[s2][j] = (a[s1][j] - a[s1][j-1]) / ndu[pk+1][rk+j]
				d += a[s2][j] * ndu[rk+j][pk]
			}
			if r <= pk {
				a[s2][kk] = -a[s1][kk-1] / ndu[pk+1][r]
				d += a[s2][kk] * ndu[r][pk]
			}
			ders[kk][r] = d
			s1, s2 = s2, s1
		}
	}
	f := float64(p)
	for kk := 1; kk <= nn; kk++ {
		for j := range ders[kk] {
			ders[kk][j] *= f
		}
		f *= float64(p - kk)
	}
	return ders
}

// cacheParams describes the span of one parameter direction held by a
// polynomial cache.
type cacheParams struct {
	degree   int
	periodic bool
	first    float64
	last     float64

	// spanStart is the middle of the cached span and spanLength its
	// half-width; the local parameter (t-spanStart)/spanLength lies in
	// [-1, 1) inside the span.
	spanStart    float64
	spanLength   float64
	spanIndex    int
	spanIndexMin int
	spanIndexMax int
}

func newCacheParams(degree int, periodic bool, knots FlatKnots) cacheParams {
	first, last := knots.Bounds(degree)
	lo, hi := knots.SpanRange(degree)
	return cacheParams{
		degree:       degree,
		periodic:     periodic,
		first:        first,
		last:         last,
		spanIndexMin: lo,
		spanIndexMax: hi,
	}
}

func (p *cacheParams) normalize(t float64) float64 {
	if p.periodic {
		return foldPeriod(t, p.first, p.last)
	}
	return t
}

func (p *cacheParams) locate(knots FlatKnots, t float64) {
	t = p.normalize(t)
	s := knots.LocateSpan(p.degree, t)
	p.spanIndex = s
	p.spanLength = 0.5 * (knots[s+1] - knots[s])
	p.spanStart = knots[s] + p.spanLength
}

func (p *cacheParams) isValid(t float64) bool {
	delta := p.normalize(t) - p.spanStart
	return (delta >= -p.spanLength || p.spanIndex == p.spanIndexMin) &&
		(delta < p.spanLength || p.spanIndex == p.spanIndexMax)
}

// local maps t into the local parameter of the cached span.
func (p *cacheParams) local(t float64) float64 {
	return (p.normalize(t) - p.spanStart) / p.spanLength
}

// wrapIndex maps a pole index into [0, n), which only matters for periodic
// pole arrays.
func wrapIndex(i, n int) int {
	return ((i % n) + n) % n
}
