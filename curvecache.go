package surface

// CurveCache is the one-parameter counterpart of [SurfaceCache]: it holds
// the power-basis form of one span of a B-spline or Bézier curve in the local
// parameter of that span.
//
// As with SurfaceCache, D0, D1 and D2 trust the caller to have checked
// [CurveCache.IsCacheValid].
type CurveCache struct {
	t        cacheParams
	rational bool
	dim      int
	coeffs   []float64
	built    bool
}

// NewCurveCache returns an empty cache.
func NewCurveCache() *CurveCache {
	return &CurveCache{}
}

// IsCacheValid reports whether t lies in the cached span.
func (c *CurveCache) IsCacheValid(t float64) bool {
	return c.built && c.t.isValid(t)
}

// BuildCache recomputes the cache for the span containing t. weights is
// either nil or has one entry per pole.
func (c *CurveCache) BuildCache(t float64, degree int, periodic bool, knots FlatKnots, poles []Point, weights []float64) {
	c.t = newCacheParams(degree, periodic, knots)
	c.t.locate(knots, t)
	c.rational = weights != nil
	c.dim = 3
	if c.rational {
		c.dim = 4
	}
	need := (degree + 1) * c.dim
	if cap(c.coeffs) < need {
		c.coeffs = make([]float64, need)
	} else {
		c.coeffs = c.coeffs[:need]
	}

	n := knots.BasisDerivs(c.t.spanIndex, c.t.spanStart, degree, degree)
	scale := 1.0
	for i := 0; i <= degree; i++ {
		if i > 0 {
			scale *= c.t.spanLength / float64(i)
		}
		var acc [4]float64
		for a := 0; a <= degree; a++ {
			pi := wrapIndex(c.t.spanIndex-degree+a, len(poles))
			f := n[i][a]
			if c.rational {
				f *= weights[pi]
				acc[3] += f
			}
			acc[0] += f * poles[pi].X
			acc[1] += f * poles[pi].Y
			acc[2] += f * poles[pi].Z
		}
		for d := range c.dim {
			c.coeffs[i*c.dim+d] = acc[d] * scale
		}
	}
	c.built = true
}

// D0 evaluates the curve point at t.
func (c *CurveCache) D0(t float64) Point {
	var out [4]float64
	NoDerivativeEvalPolynomial(c.t.local(t), c.t.degree, c.dim, c.dim, c.coeffs, out[:])
	if c.rational {
		return Pt(out[0]/out[3], out[1]/out[3], out[2]/out[3])
	}
	return Pt(out[0], out[1], out[2])
}

// D1 evaluates the curve point and its first derivative at t.
func (c *CurveCache) D1(t float64) (Point, Vec3) {
	s := c.eval(t, 1)
	return Point(s[0]), s[1].Mul(1 / c.t.spanLength)
}

// D2 evaluates the curve point and its first and second derivatives at t.
func (c *CurveCache) D2(t float64) (Point, Vec3, Vec3) {
	s := c.eval(t, 2)
	inv := 1 / c.t.spanLength
	return Point(s[0]), s[1].Mul(inv), s[2].Mul(inv * inv)
}

func (c *CurveCache) eval(t float64, order int) [3]Vec3 {
	var out [12]float64
	d := c.dim
	EvalPolynomial(c.t.local(t), order, c.t.degree, d, c.coeffs, out[:(order+1)*d])
	var a [3]Vec3
	var w [3]float64
	for k := 0; k <= order; k++ {
		a[k] = Vec(out[k*d], out[k*d+1], out[k*d+2])
		if c.rational {
			w[k] = out[k*d+3]
		}
	}
	if !c.rational {
		return a
	}
	return rationalCurveDerivative(a, w, order)
}
