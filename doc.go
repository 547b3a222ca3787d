// Package surface provides evaluation of B-spline surfaces and curves and
// routines for finding the extrema of the distance between two surfaces, or
// between a curve and a surface.
//
// # Surfaces and curves
//
// [Surface] describes parametric surfaces S(u, v) that can be evaluated
// together with their first and second partial derivatives. Parameters may be
// periodic, and parameter ranges may be infinite.
//
// This package includes the following surfaces:
//   - [Plane]
//   - [Sphere]
//   - [Cylinder]
//   - [Cone]
//   - [Torus]
//   - [BSplineSurface]
//
// [Curve] is the one-parameter counterpart. This package includes [Line],
// [Circle] and [BSplineCurve].
//
// The elementary surfaces are placed in space with a [Frame], whose Z axis is
// the main axis of the surface. Users can implement Surface and Curve for
// their own shapes; the extrema searches only rely on the interfaces.
//
// # B-spline evaluation
//
// B-splines are defined on flat knot vectors ([FlatKnots]), with
// multiplicities expanded inline. [SurfaceCache] converts the span of a
// surface containing a parameter pair into a bivariate power-basis polynomial,
// after which evaluating points and derivatives within the span only costs a
// Horner scheme ([EvalPolynomial]). The cache is rebuilt whenever a parameter
// leaves the span. Rational surfaces are cached in homogeneous coordinates and
// their derivatives recovered with [RationalDerivative]. [CurveCache] does
// the same for curves.
//
// # Extrema
//
// [SurfaceExtrema] and [CurveSurfaceExtrema] find the parameters where the
// distance between two shapes is minimal or maximal. Pairs of planes, spheres
// and cylinders, and lines against those, are solved in closed form. All
// other pairs are searched numerically: both parameter domains are sampled on
// a grid, the local extrema of the sampled distances seed Powell's method
// ([MinimizePowell]) on the squared distance, and the results are polished
// with Newton iterations ([SolveNewton2D]) on the footpoint equations. Edges
// of bounded domains are searched separately.
//
// [SearchMinMax] reports every local extremum found, in discovery order.
// [SearchMin] and [SearchMax] report only the smallest or largest distance,
// within the caller's tolerance. When the shapes are at a constant distance,
// such as parallel planes, the search reports [StatusInfiniteSolutions] and
// the distance instead.
//
// Over infinite parameter ranges, a window facing the other shape is
// searched. Extrema on the edge of that window, typically the maxima against
// a plane, are marked with OnWindow.
//
// Searches are tuned with a [Config], which can be read from TOML with
// [DecodeConfig], and can log their stages to a logrus logger (see
// [WithLogger]).
//
// # Literature
//
// This package makes use of the following ideas:
//   - The NURBS Book by Piegl and Tiller, algorithms A2.1, A2.3 and A4.4
//   - Numerical Recipes by Press et al., for Powell's method and Brent's line search
//   - [Algorithms for Minimization without Derivatives] by Richard Brent
//
// [Algorithms for Minimization without Derivatives]: https://maths-people.anu.edu.au/~brent/pub/pub011.html
package surface
