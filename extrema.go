package surface

import (
	"fmt"
	"io"
	"math"

	"github.com/sirupsen/logrus"
)

// SearchMode selects the extrema retained by a search.
type SearchMode int

const (
	SearchMinMax SearchMode = iota
	SearchMin
	SearchMax
)

func (m SearchMode) String() string {
	switch m {
	case SearchMinMax:
		return "minmax"
	case SearchMin:
		return "min"
	case SearchMax:
		return "max"
	default:
		return fmt.Sprintf("SearchMode(%d)", int(m))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler, accepting the strings
// returned by String.
func (m *SearchMode) UnmarshalText(b []byte) error {
	switch string(b) {
	case "minmax":
		*m = SearchMinMax
	case "min":
		*m = SearchMin
	case "max":
		*m = SearchMax
	default:
		return fmt.Errorf("unknown search mode %q: %w", b, ErrInvalidInput)
	}
	return nil
}

func (m SearchMode) valid() bool { return m >= SearchMinMax && m <= SearchMax }

func (m SearchMode) wants(maximum bool) bool {
	if maximum {
		return m != SearchMin
	}
	return m != SearchMax
}

// Extremum is a pair of points, one on each shape, where the distance
// between the shapes is locally minimal or maximal. For curves, the
// parameter is stored in U and V is zero.
type Extremum struct {
	U1, V1         float64
	U2, V2         float64
	Point1, Point2 Point
	SquareDistance float64
	IsMinimum      bool
	// OnWindow is set if one of the points lies on the edge of the window
	// searched over an infinite parameter range. Such an extremum is one of
	// the window, not of the shape, and moves with the window.
	OnWindow bool
}

// Result is the outcome of an extrema search. An empty list of extrema with
// StatusOK means that the search completed without finding any, for example
// because the shapes intersect and only maxima were requested.
//
// Extrema are listed in the order they were found. With SearchMinMax every
// local extremum is reported; SearchMin and SearchMax report only the
// strongest of their category, and any within the tolerance of it.
type Result struct {
	Status  Status
	Extrema []Extremum
	// ParallelSquareDistance is the constant squared distance between the
	// shapes when Status is StatusInfiniteSolutions.
	ParallelSquareDistance float64
}

type options struct {
	cfg        Config
	log        logrus.FieldLogger
	dom1, dom2 option[Domain]
}

// Option configures an extrema search.
type Option func(*options)

// WithConfig sets the tunables of the search. The default is
// [DefaultConfig].
func WithConfig(cfg Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithLogger sets the logger receiving debug messages about the stages of a
// search. By default, nothing is logged.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) { o.log = l }
}

// WithDomain1 restricts the search to dom on the first shape. Bounds may be
// infinite. Extrema on the edges of a bounded domain are found as well.
func WithDomain1(dom Domain) Option {
	return func(o *options) { o.dom1.set(dom) }
}

// WithDomain2 is like [WithDomain1] for the second shape.
func WithDomain2(dom Domain) Option {
	return func(o *options) { o.dom2.set(dom) }
}

func newOptions(opts []Option) options {
	l := logrus.New()
	l.SetOutput(io.Discard)
	o := options{cfg: DefaultConfig(), log: l}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// SurfaceExtrema computes the extrema of the distance between two surfaces.
//
// Pairs of planes, spheres and cylinders are solved in closed form. All
// other pairs are searched numerically: a grid scan over both parameter
// domains picks seeds that are refined with Powell's method and polished by
// Newton iteration.
//
// Surfaces with infinite parameter ranges are searched over the part that
// faces the other surface. A SurfaceExtrema mustn't be used concurrently,
// nor may its surfaces be used elsewhere while Perform runs.
type SurfaceExtrema struct {
	s1, s2 Surface
	opts   options
}

// NewSurfaceExtrema returns a search for the extrema between s1 and s2.
func NewSurfaceExtrema(s1, s2 Surface, opts ...Option) *SurfaceExtrema {
	return &SurfaceExtrema{s1: s1, s2: s2, opts: newOptions(opts)}
}

// Perform searches the extrema. tol is the distance below which extrema are
// considered equal.
func (e *SurfaceExtrema) Perform(tol float64, mode SearchMode) Result {
	return e.opts.perform(surfaceShape(e.s1, e.opts.dom1), surfaceShape(e.s2, e.opts.dom2), tol, mode)
}

// Value1 evaluates the first surface.
func (e *SurfaceExtrema) Value1(u, v float64) Point { return e.s1.Value(u, v) }

// Value2 evaluates the second surface.
func (e *SurfaceExtrema) Value2(u, v float64) Point { return e.s2.Value(u, v) }

// CurveSurfaceExtrema computes the extrema of the distance between a curve
// and a surface. Lines against planes, spheres and cylinders are solved in
// closed form; everything else works like [SurfaceExtrema].
type CurveSurfaceExtrema struct {
	c    Curve
	s    Surface
	opts options
}

// NewCurveSurfaceExtrema returns a search between c and s. [WithDomain1]
// restricts the curve's parameter range through U0 and U1.
func NewCurveSurfaceExtrema(c Curve, s Surface, opts ...Option) *CurveSurfaceExtrema {
	return &CurveSurfaceExtrema{c: c, s: s, opts: newOptions(opts)}
}

func (e *CurveSurfaceExtrema) Perform(tol float64, mode SearchMode) Result {
	return e.opts.perform(curveShape(e.c, e.opts.dom1), surfaceShape(e.s, e.opts.dom2), tol, mode)
}

// Value1 evaluates the curve.
func (e *CurveSurfaceExtrema) Value1(t float64) Point { return e.c.Value(t) }

// Value2 evaluates the surface.
func (e *CurveSurfaceExtrema) Value2(u, v float64) Point { return e.s.Value(u, v) }

func (o *options) perform(a, b shape, tol float64, mode SearchMode) Result {
	log := o.log.WithFields(logrus.Fields{
		"kind1": a.kind(),
		"kind2": b.kind(),
	})
	if !(tol > 0) || math.IsInf(tol, 1) || !mode.valid() || !a.valid() || !b.valid() {
		log.WithField("status", StatusInvalidInput).Debug("rejected input")
		return Result{Status: StatusInvalidInput}
	}
	if err := o.cfg.Validate(); err != nil {
		log.WithError(err).WithField("status", StatusInvalidInput).Debug("rejected config")
		return Result{Status: StatusInvalidInput}
	}

	e := engine{cfg: o.cfg, tol: tol}
	sp1, sp2 := boundingSphere(&a, o.cfg), boundingSphere(&b, o.cfg)
	s1, s2 := newSide(a, sp2, o.cfg), newSide(b, sp1, o.cfg)

	var cands []candidate
	status := StatusOK
	if res, ok := shortcut(&s1, &s2); ok {
		log.WithFields(logrus.Fields{"status": res.status, "n": len(res.cands)}).Debug("analytic")
		if res.status == StatusInfiniteSolutions {
			return Result{Status: res.status, ParallelSquareDistance: res.parallel}
		}
		for _, c := range res.cands {
			if s1.inDomain(c.x1) && s2.inDomain(c.x2) {
				cands = append(cands, c)
			}
		}
	} else {
		cands, status = e.search(&s1, &s2, mode, o.cfg.PolishRounds > 0)
		log.WithFields(logrus.Fields{"status": status, "n": len(cands)}).Debug("generic search")
	}

	bc, bst := e.boundaryScan(&s1, &s2, mode)
	if len(bc) > 0 || bst != StatusOK {
		log.WithFields(logrus.Fields{"status": bst, "n": len(bc)}).Debug("boundary scan")
	}
	if bst != StatusOK {
		status = bst
	}
	cands = append(cands, bc...)
	cands = selectExtrema(dedup(cands, &s1, &s2, tol), mode, tol)
	if len(cands) > 0 {
		// Partial results count as success.
		status = StatusOK
	}
	log.WithFields(logrus.Fields{"status": status, "n": len(cands)}).Debug("done")

	var ext []Extremum
	for _, c := range cands {
		ext = append(ext, Extremum{
			U1:             c.x1[0],
			V1:             c.x1[1],
			U2:             c.x2[0],
			V2:             c.x2[1],
			Point1:         c.p1,
			Point2:         c.p2,
			SquareDistance: c.d2,
			IsMinimum:      c.isMin,
			OnWindow:       s1.onWindow(c.x1) || s2.onWindow(c.x2),
		})
	}
	return Result{Status: status, Extrema: ext}
}
