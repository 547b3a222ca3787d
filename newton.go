package surface

import "math"

// Jacobian2 holds the value and Jacobian of a function of two variables
// with two components.
type Jacobian2 struct {
	F1, F2   float64
	J11, J12 float64 // ∂F1/∂u, ∂F1/∂v
	J21, J22 float64 // ∂F2/∂u, ∂F2/∂v
}

// Newton2DFunc evaluates a function and its Jacobian at (u, v). It returns
// false if the function can't be evaluated there.
type Newton2DFunc func(u, v float64) (Jacobian2, bool)

// SymmetricNewton2DFunc evaluates a function whose Jacobian is symmetric,
// such as the gradient of a scalar function. It returns F1, F2, J11, J12 and
// J22.
type SymmetricNewton2DFunc func(u, v float64) (f1, f2, j11, j12, j22 float64, ok bool)

// Box2 is a closed rectangle bounding the iterates of [SolveNewton2D].
type Box2 struct {
	UMin, UMax float64
	VMin, VMax float64
}

const unboundedNewton = 1e100

// Newton2DOptions configures [SolveNewton2D].
type Newton2DOptions struct {
	// Tolerance is the required norm of F.
	Tolerance float64
	// MaxIterations defaults to 20.
	MaxIterations int
	// Bounds restricts the iterates. If nil, iterates are kept within ±1e100.
	Bounds *Box2
}

// Newton2DResult is the last iterate of [SolveNewton2D] and how it was reached.
type Newton2DResult struct {
	U, V   float64
	Status Status
	// Iterations is the number of Newton steps taken.
	Iterations int
	// Residual is |F| at (U, V).
	Residual float64
}

// SolveNewton2D solves F(u, v) = 0 with Newton-Raphson iteration, starting
// at (u, v).
//
// Each step solves the 2×2 linear system with Cramer's rule. If the Jacobian
// is nearly singular, a damped steepest-descent step on |F|² is taken
// instead. Steps are limited to half the larger side of the bounds and
// iterates are clamped into the bounds.
//
// The last iterate is returned even if the iteration didn't converge.
func SolveNewton2D(f Newton2DFunc, u, v float64, opts Newton2DOptions) Newton2DResult {
	maxIter := opts.MaxIterations
	if maxIter <= 0 {
		maxIter = 20
	}
	box := Box2{-unboundedNewton, unboundedNewton, -unboundedNewton, unboundedNewton}
	if opts.Bounds != nil {
		box = *opts.Bounds
	}
	maxStep := 0.5 * max(box.UMax-box.UMin, box.VMax-box.VMin)
	tol2 := opts.Tolerance * opts.Tolerance
	u = clamp(u, box.UMin, box.UMax)
	v = clamp(v, box.VMin, box.VMax)

	for iter := range maxIter {
		e, ok := f(u, v)
		if !ok {
			return Newton2DResult{U: u, V: v, Status: StatusNumericalError, Iterations: iter, Residual: math.NaN()}
		}
		norm2 := e.F1*e.F1 + e.F2*e.F2
		if norm2 < tol2 {
			return Newton2DResult{U: u, V: v, Status: StatusOK, Iterations: iter, Residual: math.Sqrt(norm2)}
		}

		var du, dv float64
		det := e.J11*e.J22 - e.J12*e.J21
		if math.Abs(det) < 1e-30 {
			// Gradient of |F|²/2 is Jᵀ·F.
			gu := e.J11*e.F1 + e.J21*e.F2
			gv := e.J12*e.F1 + e.J22*e.F2
			g2 := gu*gu + gv*gv
			if g2 < 1e-60 {
				return Newton2DResult{U: u, V: v, Status: StatusSingular, Iterations: iter, Residual: math.Sqrt(norm2)}
			}
			s := math.Sqrt(norm2/g2) * 0.1
			du, dv = -gu*s, -gv*s
		} else {
			du = (-e.F1*e.J22 + e.F2*e.J12) / det
			dv = (-e.F2*e.J11 + e.F1*e.J21) / det
		}

		if l := math.Hypot(du, dv); l > maxStep {
			du *= maxStep / l
			dv *= maxStep / l
		}
		u = clamp(u+du, box.UMin, box.UMax)
		v = clamp(v+dv, box.VMin, box.VMax)
	}

	e, ok := f(u, v)
	if !ok {
		return Newton2DResult{U: u, V: v, Status: StatusNumericalError, Iterations: maxIter, Residual: math.NaN()}
	}
	norm2 := e.F1*e.F1 + e.F2*e.F2
	status := StatusMaxIterations
	if norm2 < tol2 {
		status = StatusOK
	}
	return Newton2DResult{U: u, V: v, Status: status, Iterations: maxIter, Residual: math.Sqrt(norm2)}
}

// SolveNewton2DSymmetric is [SolveNewton2D] for functions with a symmetric
// Jacobian.
func SolveNewton2DSymmetric(f SymmetricNewton2DFunc, u, v float64, opts Newton2DOptions) Newton2DResult {
	return SolveNewton2D(func(u, v float64) (Jacobian2, bool) {
		f1, f2, j11, j12, j22, ok := f(u, v)
		return Jacobian2{F1: f1, F2: f2, J11: j11, J12: j12, J21: j12, J22: j22}, ok
	}, u, v, opts)
}

// solveNewton1D finds a zero of f starting at t, with the same step limiting
// and clamping as SolveNewton2D.
func solveNewton1D(f func(t float64) (y, dy float64), t, lo, hi, tol float64, maxIter int) (float64, Status) {
	maxStep := 0.5 * (hi - lo)
	t = clamp(t, lo, hi)
	for range maxIter {
		y, dy := f(t)
		if math.Abs(y) < tol {
			return t, StatusOK
		}
		if math.Abs(dy) < 1e-30 {
			return t, StatusSingular
		}
		d := -y / dy
		if math.Abs(d) > maxStep {
			d = math.Copysign(maxStep, d)
		}
		t = clamp(t+d, lo, hi)
	}
	if y, _ := f(t); math.Abs(y) < tol {
		return t, StatusOK
	}
	return t, StatusMaxIterations
}

func clamp(x, lo, hi float64) float64 {
	return min(max(x, lo), hi)
}
