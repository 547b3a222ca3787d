package surface

import (
	"math"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

func coneTorus() (Cone, Torus) {
	cone := Cone{Frame: WorldFrame, SemiAngle: math.Pi / 6}
	torus := Torus{
		Frame:       FrameAt(Pt(0, 0, 20), Vec(0, 0, 1)),
		MajorRadius: 10,
		MinorRadius: 1,
	}
	return cone, torus
}

func TestConeTorus(t *testing.T) {
	cone, torus := coneTorus()
	res := NewSurfaceExtrema(cone, torus).Perform(1e-6, SearchMinMax)
	require.Equal(t, StatusOK, res.Status)

	var mins, maxs int
	tan := math.Tan(cone.SemiAngle)
	for _, ext := range res.Extrema {
		require.GreaterOrEqual(t, ext.SquareDistance, 0.0)
		require.InDelta(t, ext.SquareDistance, ext.Point1.DistanceSquared(ext.Point2), 1e-9)

		// Implicit equations of both surfaces.
		p := ext.Point1
		require.InDelta(t, p.Z*tan, math.Hypot(p.X, p.Y), 1e-6)
		q := ext.Point2
		rho := math.Hypot(q.X, q.Y) - 10
		require.InDelta(t, 1, math.Sqrt(rho*rho+(q.Z-20)*(q.Z-20)), 1e-6)

		if ext.IsMinimum {
			mins++
			// The tube's center circle is |10·cos 30° − 20·sin 30°| from the cone.
			require.InDelta(t, 20*math.Sin(math.Pi/6)-10*math.Cos(math.Pi/6)-1, math.Sqrt(ext.SquareDistance), 1e-6)
		} else {
			maxs++
		}
	}
	require.Positive(t, mins)
	require.Positive(t, maxs)
}

func TestConeTorusDeterministic(t *testing.T) {
	cone, torus := coneTorus()
	cfg := DefaultConfig()
	cfg.Workers = 1
	r1 := NewSurfaceExtrema(cone, torus, WithConfig(cfg)).Perform(1e-6, SearchMinMax)
	cfg.Workers = 8
	r2 := NewSurfaceExtrema(cone, torus, WithConfig(cfg)).Perform(1e-6, SearchMinMax)
	r3 := NewSurfaceExtrema(cone, torus, WithConfig(cfg)).Perform(1e-6, SearchMinMax)
	sortExtrema := cmpopts.SortSlices(func(a, b Extremum) bool {
		if a.SquareDistance != b.SquareDistance {
			return a.SquareDistance < b.SquareDistance
		}
		return a.U1 < b.U1
	})
	diff(t, r1, r2, sortExtrema)
	diff(t, r2, r3, sortExtrema)
}

func TestCirclePlane(t *testing.T) {
	c := Circle{Frame: FrameAt(Pt(0, 0, 5), Vec(1, 0, 0)), Radius: 2}
	pl := Plane{Frame: WorldFrame}
	res := NewCurveSurfaceExtrema(c, pl).Perform(1e-6, SearchMin)
	require.Equal(t, StatusOK, res.Status)
	require.NotEmpty(t, res.Extrema)
	for _, ext := range res.Extrema {
		require.True(t, ext.IsMinimum)
		require.InDelta(t, 9, ext.SquareDistance, 1e-8)
		require.InDelta(t, 0, ext.Point1.Distance(Pt(0, 0, 3)), 1e-4)
		require.InDelta(t, 0, ext.Point2.Distance(Pt(0, 0, 0)), 1e-4)
		require.InDelta(t, 3*math.Pi/2, ext.U1, 1e-4)
		require.Zero(t, ext.V1)
	}
}

func TestBSplinePatchSphere(t *testing.T) {
	patch, err := NewBSplineSurface(1, 1, false, false,
		FlatKnots{0, 0, 1, 1}, FlatKnots{0, 0, 1, 1},
		[][]Point{
			{Pt(0, 0, 0), Pt(0, 1, 0)},
			{Pt(1, 0, 0), Pt(1, 1, 0)},
		}, nil)
	require.NoError(t, err)
	s := Sphere{Frame: FrameAt(Pt(0.5, 0.5, 3), Vec(1, 0, 0)), Radius: 1}

	res := NewSurfaceExtrema(patch, s).Perform(1e-6, SearchMinMax)
	require.Equal(t, StatusOK, res.Status)
	require.NotEmpty(t, res.Extrema)

	first := res.Extrema[0]
	require.True(t, first.IsMinimum)
	require.InDelta(t, 2, math.Sqrt(first.SquareDistance), 1e-6)
	require.InDelta(t, 0.5, first.U1, 1e-3)
	require.InDelta(t, 0.5, first.V1, 1e-3)

	var maxs int
	for _, ext := range res.Extrema {
		if ext.IsMinimum {
			continue
		}
		maxs++
		// All four corners are equally far from the sphere.
		require.InDelta(t, math.Sqrt(9.5)+1, math.Sqrt(ext.SquareDistance), 1e-5)
		require.InDelta(t, 0.5, math.Abs(ext.U1-0.5), 1e-9)
		require.InDelta(t, 0.5, math.Abs(ext.V1-0.5), 1e-9)
	}
	require.Positive(t, maxs)
}

func TestBSplineCurveLocalExtrema(t *testing.T) {
	// The curve runs up and down the z axis. Its height has maxima 8/3 at
	// t = 2/3 and 4/3 at t = 7/3, and minima 0 at both ends and 2/3 at
	// t = 5/3.
	c, err := NewBSplineCurve(2, false, FlatKnots{0, 0, 0, 1, 2, 3, 3, 3},
		[]Point{Pt(0, 0, 0), Pt(0, 0, 4), Pt(0, 0, 0), Pt(0, 0, 2), Pt(0, 0, 0)}, nil)
	require.NoError(t, err)
	s := Sphere{Frame: FrameAt(Pt(0, 0, -10), Vec(1, 0, 0)), Radius: 1}

	type extremum struct {
		t, dist float64
		isMin   bool
	}
	want := []extremum{
		{0, 9, true},
		{3, 9, true},
		{5.0 / 3, 9 + 2.0/3, true},
		{2.0 / 3, 11 + 8.0/3, false},
		{7.0 / 3, 11 + 4.0/3, false},
	}
	match := func(ext Extremum) int {
		return slices.IndexFunc(want, func(w extremum) bool {
			return w.isMin == ext.IsMinimum && math.Abs(w.t-ext.U1) < 1e-4
		})
	}

	res := NewCurveSurfaceExtrema(c, s).Perform(1e-6, SearchMinMax)
	require.Equal(t, StatusOK, res.Status)
	found := make([]bool, len(want))
	for _, ext := range res.Extrema {
		i := match(ext)
		require.GreaterOrEqual(t, i, 0, "unexpected extremum %+v", ext)
		require.InDelta(t, want[i].dist, math.Sqrt(ext.SquareDistance), 1e-6)
		require.False(t, ext.OnWindow)
		found[i] = true
	}
	require.NotContains(t, found, false)

	// Asking for a single category reports only the strongest extremum.
	res = NewCurveSurfaceExtrema(c, s).Perform(1e-6, SearchMax)
	require.NotEmpty(t, res.Extrema)
	for _, ext := range res.Extrema {
		require.Equal(t, 3, match(ext))
	}
	res = NewCurveSurfaceExtrema(c, s).Perform(1e-6, SearchMin)
	require.NotEmpty(t, res.Extrema)
	for _, ext := range res.Extrema {
		require.Contains(t, []int{0, 1}, match(ext))
	}
}

func TestSelectExtrema(t *testing.T) {
	cands := []candidate{
		{d2: 50},
		{d2: 10, isMin: true},
		{d2: 12, isMin: true},
		{d2: 60},
		{d2: math.NaN(), isMin: true},
		{d2: 10.000001, isMin: true},
	}
	d2s := func(cs []candidate) []float64 {
		var out []float64
		for _, c := range cs {
			out = append(out, c.d2)
		}
		return out
	}
	diff(t, []float64{50, 10, 12, 60, 10.000001}, d2s(selectExtrema(cands, SearchMinMax, 1e-6)))
	diff(t, []float64{10, 10.000001}, d2s(selectExtrema(cands, SearchMin, 1e-6)))
	diff(t, []float64{60}, d2s(selectExtrema(cands, SearchMax, 1e-6)))
}

func TestEdgeExtremum(t *testing.T) {
	// Moving inwards increases the distance: a minimum, not a maximum.
	diff(t, true, edgeExtremum(true, 0.5))
	diff(t, false, edgeExtremum(false, 0.5))
	diff(t, false, edgeExtremum(true, -0.5))
	diff(t, true, edgeExtremum(false, -0.5))
	diff(t, true, edgeExtremum(true, 0))
	diff(t, true, edgeExtremum(false, 0))
}

func TestLineTorusWindow(t *testing.T) {
	l := Line{Origin: Pt(0, 0, 5), Dir: Vec(1, 0, 0)}
	torus := Torus{Frame: WorldFrame, MajorRadius: 10, MinorRadius: 1}
	res := NewCurveSurfaceExtrema(l, torus).Perform(1e-6, SearchMinMax)
	require.Equal(t, StatusOK, res.Status)

	var mins, maxs int
	for _, ext := range res.Extrema {
		if ext.IsMinimum {
			mins++
			// Above the tube's center circle.
			require.False(t, ext.OnWindow)
			require.InDelta(t, 10, math.Abs(ext.U1), 1e-4)
			require.InDelta(t, 4, math.Sqrt(ext.SquareDistance), 1e-6)
		} else {
			// The line is infinite; its maxima are those of the searched
			// window.
			maxs++
			require.True(t, ext.OnWindow, "%+v", ext)
		}
	}
	require.Positive(t, mins)
	require.Positive(t, maxs)
}

func TestInvalidInput(t *testing.T) {
	pl := Plane{Frame: WorldFrame}
	s := Sphere{Frame: WorldFrame, Radius: 1}
	bad := DefaultConfig()
	bad.Seeds = 0

	tests := []struct {
		name string
		e    *SurfaceExtrema
		tol  float64
		mode SearchMode
	}{
		{"zero tolerance", NewSurfaceExtrema(pl, s), 0, SearchMinMax},
		{"negative tolerance", NewSurfaceExtrema(pl, s), -1, SearchMinMax},
		{"NaN tolerance", NewSurfaceExtrema(pl, s), math.NaN(), SearchMinMax},
		{"infinite tolerance", NewSurfaceExtrema(pl, s), math.Inf(1), SearchMinMax},
		{"mode", NewSurfaceExtrema(pl, s), 1e-6, SearchMode(7)},
		{"nil surface", NewSurfaceExtrema(nil, s), 1e-6, SearchMinMax},
		{"empty domain", NewSurfaceExtrema(pl, s, WithDomain1(Domain{1, 0, 0, 1})), 1e-6, SearchMinMax},
		{"config", NewSurfaceExtrema(pl, s, WithConfig(bad)), 1e-6, SearchMinMax},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diff(t, Result{Status: StatusInvalidInput}, tt.e.Perform(tt.tol, tt.mode))
		})
	}

	res := NewCurveSurfaceExtrema(nil, s).Perform(1e-6, SearchMin)
	diff(t, StatusInvalidInput, res.Status)
}

func TestSearchLogging(t *testing.T) {
	l, hook := test.NewNullLogger()
	l.SetLevel(logrus.DebugLevel)
	c := Circle{Frame: FrameAt(Pt(0, 0, 5), Vec(1, 0, 0)), Radius: 2}
	res := NewCurveSurfaceExtrema(c, Plane{Frame: WorldFrame}, WithLogger(l)).Perform(1e-6, SearchMin)

	last := hook.LastEntry()
	require.NotNil(t, last)
	require.Equal(t, "done", last.Message)
	require.Equal(t, logrus.DebugLevel, last.Level)
	require.Equal(t, StatusOK, last.Data["status"])
	require.Equal(t, len(res.Extrema), last.Data["n"])
	require.Equal(t, "circle", last.Data["kind1"])
	require.Equal(t, "plane", last.Data["kind2"])

	hook.Reset()
	NewCurveSurfaceExtrema(c, Plane{Frame: WorldFrame}, WithLogger(l)).Perform(-1, SearchMin)
	require.Len(t, hook.Entries, 1)
	require.Equal(t, StatusInvalidInput, hook.LastEntry().Data["status"])
}

func TestSearchModeText(t *testing.T) {
	for _, m := range []SearchMode{SearchMinMax, SearchMin, SearchMax} {
		var got SearchMode
		require.NoError(t, got.UnmarshalText([]byte(m.String())))
		require.Equal(t, m, got)
	}
	var m SearchMode
	require.ErrorIs(t, m.UnmarshalText([]byte("both")), ErrInvalidInput)
}
