package surface

// AxisOrder records which parameter direction of a [SurfaceCache] has the
// higher degree. The coefficient table is laid out with one row per power of
// that direction, and queries collapse it first.
type AxisOrder int

const (
	// VFirst: rows are indexed by powers of v. Used when degreeU ≤ degreeV.
	VFirst AxisOrder = iota
	// UFirst: rows are indexed by powers of u. Used when degreeU > degreeV.
	UFirst
)

func (o AxisOrder) String() string {
	switch o {
	case UFirst:
		return "UFirst"
	case VFirst:
		return "VFirst"
	default:
		return "AxisOrder(?)"
	}
}

// SurfaceCache holds the power-basis form of one span of a B-spline or
// Bézier surface, so that repeated evaluations near the same parameters don't
// have to recompute basis functions.
//
// Coefficients are expressed in local parameters that map the cached span to
// [-1, 1) in each direction. For rational surfaces a fourth, homogeneous
// weight channel is stored.
//
// A SurfaceCache is not safe for concurrent use. D0, D1 and D2 do not check
// validity: callers must use [SurfaceCache.IsCacheValid] and rebuild with
// [SurfaceCache.BuildCache] when it reports false.
type SurfaceCache struct {
	u, v     cacheParams
	rational bool
	order    AxisOrder
	dim      int
	cols     int
	coeffs   []float64
	scratch  []float64
	built    bool
}

// NewSurfaceCache returns an empty cache. It becomes usable after the first
// call to [SurfaceCache.BuildCache].
func NewSurfaceCache() *SurfaceCache {
	return &SurfaceCache{}
}

// IsCacheValid reports whether (u, v) lies in the cached span. The first and
// last spans of the domain accept parameters beyond their outer bound.
func (c *SurfaceCache) IsCacheValid(u, v float64) bool {
	return c.built && c.u.isValid(u) && c.v.isValid(v)
}

// Order returns the axis order chosen by the last build.
func (c *SurfaceCache) Order() AxisOrder { return c.order }

// BuildCache recomputes the cache for the span containing (u, v).
//
// poles is indexed as poles[i][j] with i along u and j along v; weights is
// either nil (non-rational) or has the same shape as poles. For periodic
// directions, pole indices wrap around the pole array.
func (c *SurfaceCache) BuildCache(
	u, v float64,
	degreeU int, periodicU bool, knotsU FlatKnots,
	degreeV int, periodicV bool, knotsV FlatKnots,
	poles [][]Point,
	weights [][]float64,
) {
	c.u = newCacheParams(degreeU, periodicU, knotsU)
	c.v = newCacheParams(degreeV, periodicV, knotsV)
	c.u.locate(knotsU, u)
	c.v.locate(knotsV, v)
	c.rational = weights != nil
	c.dim = 3
	if c.rational {
		c.dim = 4
	}
	if degreeU > degreeV {
		c.order = UFirst
	} else {
		c.order = VFirst
	}

	rows := c.maxDegree() + 1
	c.cols = (c.minDegree() + 1) * c.dim
	need := rows * c.cols
	if cap(c.coeffs) < need {
		c.coeffs = make([]float64, need)
	} else {
		c.coeffs = c.coeffs[:need]
	}
	if cap(c.scratch) < 3*c.cols {
		c.scratch = make([]float64, 3*c.cols)
	} else {
		c.scratch = c.scratch[:3*c.cols]
	}

	nu := knotsU.BasisDerivs(c.u.spanIndex, c.u.spanStart, degreeU, degreeU)
	nv := knotsV.BasisDerivs(c.v.spanIndex, c.v.spanStart, degreeV, degreeV)
	nPu := len(poles)
	nPv := len(poles[0])

	// The coefficient of u'ⁱv'ʲ in local parameters is the Taylor coefficient
	// ∂ⁱ⁺ʲS/∂uⁱ∂vʲ · huⁱ·hvʲ / (i!·j!) at the span middle.
	scaleU := 1.0
	for i := 0; i <= degreeU; i++ {
		if i > 0 {
			scaleU *= c.u.spanLength / float64(i)
		}
		scaleV := 1.0
		for j := 0; j <= degreeV; j++ {
			if j > 0 {
				scaleV *= c.v.spanLength / float64(j)
			}
			var acc [4]float64
			for a := 0; a <= degreeU; a++ {
				pu := wrapIndex(c.u.spanIndex-degreeU+a, nPu)
				for b := 0; b <= degreeV; b++ {
					pv := wrapIndex(c.v.spanIndex-degreeV+b, nPv)
					f := nu[i][a] * nv[j][b]
					if c.rational {
						f *= weights[pu][pv]
						acc[3] += f
					}
					p := poles[pu][pv]
					acc[0] += f * p.X
					acc[1] += f * p.Y
					acc[2] += f * p.Z
				}
			}
			row, col := j, i
			if c.order == UFirst {
				row, col = i, j
			}
			off := row*c.cols + col*c.dim
			s := scaleU * scaleV
			for d := range c.dim {
				c.coeffs[off+d] = acc[d] * s
			}
		}
	}
	c.built = true
}

func (c *SurfaceCache) maxDegree() int { return max(c.u.degree, c.v.degree) }
func (c *SurfaceCache) minDegree() int { return min(c.u.degree, c.v.degree) }

// localParams returns the local row and column parameters for (u, v).
func (c *SurfaceCache) localParams(u, v float64) (row, col float64) {
	lu, lv := c.u.local(u), c.v.local(v)
	if c.order == UFirst {
		return lu, lv
	}
	return lv, lu
}

// D0 evaluates the surface point at (u, v).
func (c *SurfaceCache) D0(u, v float64) Point {
	row, col := c.localParams(u, v)
	tr := c.scratch[:c.cols]
	NoDerivativeEvalPolynomial(row, c.maxDegree(), c.cols, c.cols, c.coeffs, tr)
	var out [4]float64
	NoDerivativeEvalPolynomial(col, c.minDegree(), c.dim, c.dim, tr, out[:])
	if c.rational {
		return Pt(out[0]/out[3], out[1]/out[3], out[2]/out[3])
	}
	return Pt(out[0], out[1], out[2])
}

// D1 evaluates the surface point and its first partial derivatives at
// (u, v).
func (c *SurfaceCache) D1(u, v float64) (p Point, du, dv Vec3) {
	row, col := c.localParams(u, v)
	tr := c.scratch[:2*c.cols]
	EvalPolynomial(row, 1, c.maxDegree(), c.cols, c.coeffs, tr)

	// g[i][j] is the derivative of order i along rows and j along columns.
	var g [3][3][4]float64
	var out [8]float64
	EvalPolynomial(col, 1, c.minDegree(), c.dim, tr[:c.cols], out[:2*c.dim])
	copy(g[0][0][:], out[:c.dim])
	copy(g[0][1][:], out[c.dim:2*c.dim])
	NoDerivativeEvalPolynomial(col, c.minDegree(), c.dim, c.dim, tr[c.cols:2*c.cols], g[1][0][:])

	s := c.assemble(&g, 1)
	return Point(s[0][0]), s[1][0].Mul(1 / c.u.spanLength), s[0][1].Mul(1 / c.v.spanLength)
}

// D2 evaluates the surface point and its first and second partial
// derivatives at (u, v).
func (c *SurfaceCache) D2(u, v float64) (p Point, du, dv, duu, dvv, duv Vec3) {
	row, col := c.localParams(u, v)
	tr := c.scratch[:3*c.cols]
	EvalPolynomial(row, 2, c.maxDegree(), c.cols, c.coeffs, tr)

	var g [3][3][4]float64
	var out [12]float64
	d := c.dim
	EvalPolynomial(col, 2, c.minDegree(), d, tr[:c.cols], out[:3*d])
	copy(g[0][0][:], out[:d])
	copy(g[0][1][:], out[d:2*d])
	copy(g[0][2][:], out[2*d:3*d])
	EvalPolynomial(col, 1, c.minDegree(), d, tr[c.cols:2*c.cols], out[:2*d])
	copy(g[1][0][:], out[:d])
	copy(g[1][1][:], out[d:2*d])
	NoDerivativeEvalPolynomial(col, c.minDegree(), d, d, tr[2*c.cols:3*c.cols], g[2][0][:])

	s := c.assemble(&g, 2)
	iu := 1 / c.u.spanLength
	iv := 1 / c.v.spanLength
	return Point(s[0][0]),
		s[1][0].Mul(iu),
		s[0][1].Mul(iv),
		s[2][0].Mul(iu * iu),
		s[0][2].Mul(iv * iv),
		s[1][1].Mul(iu * iv)
}

// assemble maps derivatives from row/column order into u/v order and
// applies the rational quotient rule. The result is indexed [u order][v
// order] and is still expressed in local parameters.
func (c *SurfaceCache) assemble(g *[3][3][4]float64, order int) [3][3]Vec3 {
	var a [3][3]Vec3
	var w [3][3]float64
	for i := 0; i <= order; i++ {
		for j := 0; j <= order-i; j++ {
			// g is [row][col]; rows are u only for UFirst.
			src := g[j][i]
			if c.order == UFirst {
				src = g[i][j]
			}
			a[i][j] = Vec(src[0], src[1], src[2])
			w[i][j] = src[3]
		}
	}
	if !c.rational {
		return a
	}
	return RationalDerivative(a, w, order)
}
