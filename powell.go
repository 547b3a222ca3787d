package surface

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// PowellOptions configures [MinimizePowell].
type PowellOptions struct {
	// Tolerance is the fractional decrease of the objective over one sweep of
	// line searches below which the search is considered converged. It
	// defaults to 1e-12.
	Tolerance float64
	// MaxIterations bounds the number of sweeps. It defaults to 50.
	MaxIterations int
	// Lower and Upper bound the variables. Either may be nil, and individual
	// bounds may be infinite.
	Lower, Upper []float64
	// Step holds the length of the initial search direction of each variable.
	// A zero step freezes the variable. Nil means steps of 1.
	Step []float64
}

// PowellResult is the minimum found by [MinimizePowell], with the value of
// the objective there.
type PowellResult struct {
	X          []float64
	F          float64
	Iterations int
	Status     Status
}

// MinimizePowell searches for a local minimum of f near x0 using Powell's
// derivative-free method: repeated line minimizations along a set of
// directions, replacing the direction of largest decrease by the average
// direction of a sweep when that is expected to help.
//
// Line minimizations bracket a minimum by golden-section expansion and
// refine it with Brent's method, staying within the bounds.
func MinimizePowell(f func(x []float64) float64, x0 []float64, opts PowellOptions) PowellResult {
	n := len(x0)
	if n == 0 {
		return PowellResult{F: f(x0), Status: StatusOK}
	}
	tol := opts.Tolerance
	if tol <= 0 {
		tol = 1e-12
	}
	maxIter := opts.MaxIterations
	if maxIter <= 0 {
		maxIter = 50
	}
	ls := lineSearcher{
		f:     f,
		lower: opts.Lower,
		upper: opts.Upper,
		trial: make([]float64, n),
	}

	dirs := mat.NewDense(n, n, nil)
	for i := range n {
		step := 1.0
		if opts.Step != nil {
			step = opts.Step[i]
		}
		dirs.Set(i, i, step)
	}

	x := make([]float64, n)
	copy(x, x0)
	ls.clamp(x)
	fx := f(x)
	if math.IsNaN(fx) {
		return PowellResult{X: x, F: fx, Status: StatusNumericalError}
	}

	xStart := make([]float64, n)
	newDir := make([]float64, n)
	xe := make([]float64, n)
	for iter := 1; iter <= maxIter; iter++ {
		fStart := fx
		copy(xStart, x)
		ibig, biggest := 0, 0.0
		for i := range n {
			fPrev := fx
			fx = ls.minimize(x, dirs.RawRowView(i), fx)
			if fPrev-fx > biggest {
				ibig, biggest = i, fPrev-fx
			}
		}
		if 2*(fStart-fx) <= tol*(math.Abs(fStart)+math.Abs(fx))+1e-300 {
			return PowellResult{X: x, F: fx, Iterations: iter, Status: StatusOK}
		}

		floats.SubTo(newDir, x, xStart)
		floats.AddTo(xe, x, newDir)
		ls.clamp(xe)
		fe := f(xe)
		if fe < fStart {
			t := 2*(fStart-2*fx+fe)*sq(fStart-fx-biggest) - biggest*sq(fStart-fe)
			if t < 0 {
				fx = ls.minimize(x, newDir, fx)
				// SetRow copies, so replacing a row with itself is fine.
				dirs.SetRow(ibig, dirs.RawRowView(n-1))
				dirs.SetRow(n-1, newDir)
			}
		}
	}
	return PowellResult{X: x, F: fx, Iterations: maxIter, Status: StatusMaxIterations}
}

func sq(x float64) float64 { return x * x }

// maxLineStep bounds line searches along unbounded directions, in units of
// the direction's length.
const maxLineStep = 100

type lineSearcher struct {
	f            func([]float64) float64
	lower, upper []float64
	trial        []float64
}

func (ls *lineSearcher) clamp(x []float64) {
	for i := range x {
		if ls.lower != nil {
			x[i] = max(x[i], ls.lower[i])
		}
		if ls.upper != nil {
			x[i] = min(x[i], ls.upper[i])
		}
	}
}

// interval returns the range of t for which x + t·d stays within bounds.
func (ls *lineSearcher) interval(x, d []float64) (lo, hi float64) {
	lo, hi = -maxLineStep, maxLineStep
	for i, di := range d {
		if di == 0 {
			continue
		}
		if ls.lower != nil && !math.IsInf(ls.lower[i], -1) {
			if t := (ls.lower[i] - x[i]) / di; di > 0 {
				lo = max(lo, t)
			} else {
				hi = min(hi, t)
			}
		}
		if ls.upper != nil && !math.IsInf(ls.upper[i], 1) {
			if t := (ls.upper[i] - x[i]) / di; di > 0 {
				hi = min(hi, t)
			} else {
				lo = max(lo, t)
			}
		}
	}
	return min(lo, 0), max(hi, 0)
}

// minimize moves x to the minimum of f along d and returns the new value.
// x is left unchanged if no lower value is found.
func (ls *lineSearcher) minimize(x, d []float64, fx float64) float64 {
	if floats.Norm(d, 2) == 0 {
		return fx
	}
	lo, hi := ls.interval(x, d)
	if lo == hi {
		return fx
	}
	phi := func(t float64) float64 {
		floats.AddScaledTo(ls.trial, x, t, d)
		ls.clamp(ls.trial)
		return ls.f(ls.trial)
	}
	t, ft := lineMinimum(phi, fx, lo, hi)
	if !(ft < fx) {
		return fx
	}
	floats.AddScaled(x, t, d)
	ls.clamp(x)
	return ft
}

// lineMinimum finds a local minimum of phi on [lo, hi], where lo ≤ 0 ≤ hi and
// phi(0) = f0.
func lineMinimum(phi func(float64) float64, f0, lo, hi float64) (float64, float64) {
	const gold = 1.618033988749895

	var cur, fcur float64
	fwd, bwd := min(1, hi), max(-1, lo)
	switch {
	case fwd > 0 && phiLess(phi, fwd, f0, &fcur):
		cur = fwd
	case bwd < 0 && phiLess(phi, bwd, f0, &fcur):
		cur = bwd
	default:
		// Bracketed around 0.
		return brent(phi, bwd, 0, fwd, f0)
	}

	prev := 0.0
	for range 60 {
		next := clamp(cur+gold*(cur-prev), lo, hi)
		if next == cur {
			// Still descending at the bound.
			return cur, fcur
		}
		fn := phi(next)
		if fn >= fcur {
			return brent(phi, prev, cur, next, fcur)
		}
		prev, cur, fcur = cur, next, fn
	}
	return cur, fcur
}

func phiLess(phi func(float64) float64, t, f0 float64, out *float64) bool {
	*out = phi(t)
	return *out < f0
}

// brent minimizes phi on the interval spanned by ax and cx, starting from
// bx with phi(bx) = fbx. This is Brent's method as presented in Numerical
// Recipes.
func brent(phi func(float64) float64, ax, bx, cx, fbx float64) (float64, float64) {
	const (
		cgold = 0.3819660112501051
		zeps  = 1e-14
		tol   = 1e-10
	)
	a, b := min(ax, cx), max(ax, cx)
	x, w, v := bx, bx, bx
	fx, fw, fv := fbx, fbx, fbx
	var d, e float64
	for range 100 {
		xm := 0.5 * (a + b)
		tol1 := tol*math.Abs(x) + zeps
		tol2 := 2 * tol1
		if math.Abs(x-xm) <= tol2-0.5*(b-a) {
			break
		}
		if math.Abs(e) > tol1 {
			// Parabolic fit through x, v and w.
			r := (x - w) * (fx - fv)
			q := (x - v) * (fx - fw)
			p := (x-v)*q - (x-w)*r
			q = 2 * (q - r)
			if q > 0 {
				p = -p
			}
			q = math.Abs(q)
			etemp := e
			e = d
			if math.Abs(p) >= math.Abs(0.5*q*etemp) || p <= q*(a-x) || p >= q*(b-x) {
				if x >= xm {
					e = a - x
				} else {
					e = b - x
				}
				d = cgold * e
			} else {
				d = p / q
				if u := x + d; u-a < tol2 || b-u < tol2 {
					d = math.Copysign(tol1, xm-x)
				}
			}
		} else {
			if x >= xm {
				e = a - x
			} else {
				e = b - x
			}
			d = cgold * e
		}
		u := x + math.Copysign(max(math.Abs(d), tol1), d)
		fu := phi(u)
		if fu <= fx {
			if u >= x {
				a = x
			} else {
				b = x
			}
			v, w, x = w, x, u
			fv, fw, fx = fw, fx, fu
		} else {
			if u < x {
				a = u
			} else {
				b = u
			}
			if fu <= fw || w == x {
				v, w = w, u
				fv, fw = fw, fu
			} else if fu <= fv || v == x || v == w {
				v, fv = u, fu
			}
		}
	}
	return x, fx
}
