package surface

import "fmt"

var (
	_ Surface = (*BSplineSurface)(nil)
	_ Curve   = (*BSplineCurve)(nil)
)

// BSplineSurface is a (possibly rational, possibly periodic) tensor-product
// B-spline surface. Evaluation goes through a [SurfaceCache] that is rebuilt
// whenever a query leaves the cached span.
//
// A BSplineSurface is not safe for concurrent use, because evaluating it
// updates its cache.
type BSplineSurface struct {
	degreeU, degreeV     int
	periodicU, periodicV bool
	knotsU, knotsV       FlatKnots
	poles                [][]Point
	weights              [][]float64
	cache                *SurfaceCache
}

// NewBSplineSurface validates its input and returns a B-spline surface.
//
// poles[i][j] is indexed with i along u. weights is nil for non-rational
// surfaces. For a non-periodic direction with n poles and degree p the knot
// vector has n+p+1 entries; for a periodic direction it has n+2p+1 entries
// and pole indices wrap around.
func NewBSplineSurface(
	degreeU, degreeV int,
	periodicU, periodicV bool,
	knotsU, knotsV FlatKnots,
	poles [][]Point,
	weights [][]float64,
) (*BSplineSurface, error) {
	if len(poles) == 0 || len(poles[0]) == 0 {
		return nil, fmt.Errorf("empty pole array: %w", ErrInvalidInput)
	}
	for i, row := range poles {
		if len(row) != len(poles[0]) {
			return nil, fmt.Errorf("pole row %d has %d poles, want %d: %w", i, len(row), len(poles[0]), ErrInvalidInput)
		}
	}
	if err := checkKnots("u", degreeU, periodicU, knotsU, len(poles)); err != nil {
		return nil, err
	}
	if err := checkKnots("v", degreeV, periodicV, knotsV, len(poles[0])); err != nil {
		return nil, err
	}
	if weights != nil {
		if len(weights) != len(poles) {
			return nil, fmt.Errorf("got %d weight rows, want %d: %w", len(weights), len(poles), ErrInvalidInput)
		}
		for i, row := range weights {
			if err := checkWeights(row, len(poles[i])); err != nil {
				return nil, fmt.Errorf("weight row %d: %w", i, err)
			}
		}
	}
	return &BSplineSurface{
		degreeU:   degreeU,
		degreeV:   degreeV,
		periodicU: periodicU,
		periodicV: periodicV,
		knotsU:    knotsU,
		knotsV:    knotsV,
		poles:     poles,
		weights:   weights,
		cache:     NewSurfaceCache(),
	}, nil
}

func checkKnots(dir string, degree int, periodic bool, knots FlatKnots, nPoles int) error {
	if degree <= 0 {
		return fmt.Errorf("%s degree %d must be positive: %w", dir, degree, ErrInvalidInput)
	}
	want := nPoles + degree + 1
	if periodic {
		want = nPoles + 2*degree + 1
	}
	if len(knots) != want {
		return fmt.Errorf("%s knot vector has %d knots, want %d: %w", dir, len(knots), want, ErrInvalidInput)
	}
	for i := 1; i < len(knots); i++ {
		if knots[i] < knots[i-1] {
			return fmt.Errorf("%s knots decrease at index %d: %w", dir, i, ErrInvalidInput)
		}
	}
	if first, last := knots.Bounds(degree); !(first < last) {
		return fmt.Errorf("%s knot vector has an empty domain: %w", dir, ErrInvalidInput)
	}
	return nil
}

func checkWeights(w []float64, n int) error {
	if len(w) != n {
		return fmt.Errorf("got %d weights, want %d: %w", len(w), n, ErrInvalidInput)
	}
	for _, x := range w {
		if !(x > 0) {
			return fmt.Errorf("weight %g is not positive: %w", x, ErrInvalidInput)
		}
	}
	return nil
}

func (s *BSplineSurface) Kind() SurfaceKind { return BSplineSurfaceKind }
func (s *BSplineSurface) IsUPeriodic() bool { return s.periodicU }
func (s *BSplineSurface) IsVPeriodic() bool { return s.periodicV }
func (s *BSplineSurface) IsRational() bool  { return s.weights != nil }

func (s *BSplineSurface) Domain() Domain {
	u0, u1 := s.knotsU.Bounds(s.degreeU)
	v0, v1 := s.knotsV.Bounds(s.degreeV)
	return Domain{u0, u1, v0, v1}
}

func (s *BSplineSurface) UPeriod() float64 {
	if !s.periodicU {
		return 0
	}
	d := s.Domain()
	return d.U1 - d.U0
}

func (s *BSplineSurface) VPeriod() float64 {
	if !s.periodicV {
		return 0
	}
	d := s.Domain()
	return d.V1 - d.V0
}

func (s *BSplineSurface) ensureCache(u, v float64) {
	if !s.cache.IsCacheValid(u, v) {
		s.cache.BuildCache(u, v,
			s.degreeU, s.periodicU, s.knotsU,
			s.degreeV, s.periodicV, s.knotsV,
			s.poles, s.weights)
	}
}

func (s *BSplineSurface) Value(u, v float64) Point {
	s.ensureCache(u, v)
	return s.cache.D0(u, v)
}

func (s *BSplineSurface) D1(u, v float64) (Point, Vec3, Vec3) {
	s.ensureCache(u, v)
	return s.cache.D1(u, v)
}

func (s *BSplineSurface) D2(u, v float64) (p Point, du, dv, duu, dvv, duv Vec3) {
	s.ensureCache(u, v)
	return s.cache.D2(u, v)
}

// BSplineCurve is a (possibly rational, possibly periodic) B-spline curve
// evaluated through a [CurveCache]. It is not safe for concurrent use.
type BSplineCurve struct {
	degree   int
	periodic bool
	knots    FlatKnots
	poles    []Point
	weights  []float64
	cache    *CurveCache
}

// NewBSplineCurve validates its input and returns a B-spline curve. The
// knot vector rules are those of [NewBSplineSurface].
func NewBSplineCurve(degree int, periodic bool, knots FlatKnots, poles []Point, weights []float64) (*BSplineCurve, error) {
	if len(poles) == 0 {
		return nil, fmt.Errorf("empty pole array: %w", ErrInvalidInput)
	}
	if err := checkKnots("t", degree, periodic, knots, len(poles)); err != nil {
		return nil, err
	}
	if weights != nil {
		if err := checkWeights(weights, len(poles)); err != nil {
			return nil, err
		}
	}
	return &BSplineCurve{
		degree:   degree,
		periodic: periodic,
		knots:    knots,
		poles:    poles,
		weights:  weights,
		cache:    NewCurveCache(),
	}, nil
}

func (c *BSplineCurve) Kind() CurveKind  { return BSplineCurveKind }
func (c *BSplineCurve) IsPeriodic() bool { return c.periodic }

func (c *BSplineCurve) Bounds() (float64, float64) {
	return c.knots.Bounds(c.degree)
}

func (c *BSplineCurve) Period() float64 {
	if !c.periodic {
		return 0
	}
	t0, t1 := c.Bounds()
	return t1 - t0
}

func (c *BSplineCurve) ensureCache(t float64) {
	if !c.cache.IsCacheValid(t) {
		c.cache.BuildCache(t, c.degree, c.periodic, c.knots, c.poles, c.weights)
	}
}

func (c *BSplineCurve) Value(t float64) Point {
	c.ensureCache(t)
	return c.cache.D0(t)
}

func (c *BSplineCurve) D1(t float64) (Point, Vec3) {
	c.ensureCache(t)
	return c.cache.D1(t)
}

func (c *BSplineCurve) D2(t float64) (Point, Vec3, Vec3) {
	c.ensureCache(t)
	return c.cache.D2(t)
}
