package main

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/BurntSushi/toml"

	"honnef.co/go/surface"
)

// scene is the TOML document read by surfext. Exactly one of Curve and
// Surface1 is set; Surface2 is always set.
type scene struct {
	Tolerance float64            `toml:"tolerance"`
	Mode      surface.SearchMode `toml:"mode"`
	Config    surface.Config     `toml:"config"`
	Curve     *shapeDef          `toml:"curve"`
	Surface1  *shapeDef          `toml:"surface1"`
	Surface2  *shapeDef          `toml:"surface2"`
	Domain1   *domainDef         `toml:"domain1"`
	Domain2   *domainDef         `toml:"domain2"`
}

type domainDef struct {
	U [2]float64 `toml:"u"`
	V [2]float64 `toml:"v"`
}

func (d *domainDef) domain() surface.Domain {
	return surface.Domain{U0: d.U[0], U1: d.U[1], V0: d.V[0], V1: d.V[1]}
}

// shapeDef describes one shape. Angles are in degrees.
type shapeDef struct {
	Kind        string     `toml:"kind"`
	Origin      [3]float64 `toml:"origin"`
	Axis        [3]float64 `toml:"axis"`
	XDirection  [3]float64 `toml:"x_direction"`
	Direction   [3]float64 `toml:"direction"`
	Radius      float64    `toml:"radius"`
	MajorRadius float64    `toml:"major_radius"`
	MinorRadius float64    `toml:"minor_radius"`
	SemiAngle   float64    `toml:"semi_angle"`

	// B-splines
	Degree   [2]int         `toml:"degree"`
	Periodic [2]bool        `toml:"periodic"`
	KnotsU   []float64      `toml:"knots_u"`
	KnotsV   []float64      `toml:"knots_v"`
	Poles    [][][3]float64 `toml:"poles"`
	Weights  [][]float64    `toml:"weights"`
}

func decodeScene(r io.Reader) (*scene, error) {
	sc := &scene{
		Tolerance: 1e-6,
		Mode:      surface.SearchMinMax,
		Config:    surface.DefaultConfig(),
	}
	md, err := toml.NewDecoder(r).Decode(sc)
	if err != nil {
		return nil, fmt.Errorf("decoding scene: %w", err)
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		return nil, fmt.Errorf("unknown scene key %q", keys[0].String())
	}
	if err := sc.Config.Validate(); err != nil {
		return nil, err
	}
	if sc.Surface2 == nil {
		return nil, errors.New("scene has no [surface2]")
	}
	if (sc.Curve == nil) == (sc.Surface1 == nil) {
		return nil, errors.New("scene needs exactly one of [curve] and [surface1]")
	}
	return sc, nil
}

func pt(a [3]float64) surface.Point { return surface.Pt(a[0], a[1], a[2]) }
func vec(a [3]float64) surface.Vec3 { return surface.Vec(a[0], a[1], a[2]) }

func (s *shapeDef) frame() surface.Frame {
	axis := vec(s.Axis)
	if axis == (surface.Vec3{}) {
		axis = surface.Vec(0, 0, 1)
	}
	return surface.NewFrame(pt(s.Origin), axis, vec(s.XDirection))
}

func (s *shapeDef) surface() (surface.Surface, error) {
	switch s.Kind {
	case "plane":
		return surface.Plane{Frame: s.frame()}, nil
	case "sphere":
		return surface.Sphere{Frame: s.frame(), Radius: s.Radius}, nil
	case "cylinder":
		return surface.Cylinder{Frame: s.frame(), Radius: s.Radius}, nil
	case "cone":
		return surface.Cone{Frame: s.frame(), RefRadius: s.Radius, SemiAngle: s.SemiAngle * math.Pi / 180}, nil
	case "torus":
		return surface.Torus{Frame: s.frame(), MajorRadius: s.MajorRadius, MinorRadius: s.MinorRadius}, nil
	case "bspline":
		poles := make([][]surface.Point, len(s.Poles))
		for i, row := range s.Poles {
			poles[i] = make([]surface.Point, len(row))
			for j, p := range row {
				poles[i][j] = pt(p)
			}
		}
		return surface.NewBSplineSurface(
			s.Degree[0], s.Degree[1],
			s.Periodic[0], s.Periodic[1],
			s.KnotsU, s.KnotsV,
			poles, s.Weights)
	default:
		return nil, fmt.Errorf("unknown surface kind %q", s.Kind)
	}
}

func (s *shapeDef) curve() (surface.Curve, error) {
	switch s.Kind {
	case "line":
		return surface.Line{Origin: pt(s.Origin), Dir: vec(s.Direction).Normalize()}, nil
	case "circle":
		return surface.Circle{Frame: s.frame(), Radius: s.Radius}, nil
	case "bspline":
		if len(s.Poles) != 1 {
			return nil, fmt.Errorf("bspline curve needs one row of poles, got %d", len(s.Poles))
		}
		poles := make([]surface.Point, len(s.Poles[0]))
		for i, p := range s.Poles[0] {
			poles[i] = pt(p)
		}
		var w []float64
		if len(s.Weights) > 0 {
			w = s.Weights[0]
		}
		return surface.NewBSplineCurve(s.Degree[0], s.Periodic[0], s.KnotsU, poles, w)
	default:
		return nil, fmt.Errorf("unknown curve kind %q", s.Kind)
	}
}

// performer is implemented by both kinds of extrema searches.
type performer interface {
	Perform(tol float64, mode surface.SearchMode) surface.Result
}

func (sc *scene) search(opts ...surface.Option) (performer, error) {
	opts = append(opts, surface.WithConfig(sc.Config))
	if sc.Domain1 != nil {
		opts = append(opts, surface.WithDomain1(sc.Domain1.domain()))
	}
	if sc.Domain2 != nil {
		opts = append(opts, surface.WithDomain2(sc.Domain2.domain()))
	}
	s2, err := sc.Surface2.surface()
	if err != nil {
		return nil, fmt.Errorf("surface2: %w", err)
	}
	if sc.Curve != nil {
		c, err := sc.Curve.curve()
		if err != nil {
			return nil, fmt.Errorf("curve: %w", err)
		}
		return surface.NewCurveSurfaceExtrema(c, s2, opts...), nil
	}
	s1, err := sc.Surface1.surface()
	if err != nil {
		return nil, fmt.Errorf("surface1: %w", err)
	}
	return surface.NewSurfaceExtrema(s1, s2, opts...), nil
}
