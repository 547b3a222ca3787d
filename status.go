package surface

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is wrapped by errors returned for malformed input, such as
// inconsistent knot vectors or empty parameter ranges.
var ErrInvalidInput = errors.New("invalid input")

// Status reports how a solver or extrema search ended.
type Status int

const (
	// StatusOK means the computation completed. For extrema searches this
	// includes searches that found no extremum.
	StatusOK Status = iota
	// StatusInvalidInput means the input was malformed, for example an empty
	// parameter range or a non-positive tolerance.
	StatusInvalidInput
	// StatusNumericalError means a function evaluation failed.
	StatusNumericalError
	// StatusSingular means a Jacobian was degenerate beyond recovery.
	StatusSingular
	// StatusMaxIterations means the iteration limit was reached. The
	// best-effort result is still returned.
	StatusMaxIterations
	// StatusInfiniteSolutions means the extrema don't form a finite set, as
	// for parallel planes or a line parallel to a cylinder's axis.
	StatusInfiniteSolutions
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusInvalidInput:
		return "InvalidInput"
	case StatusNumericalError:
		return "NumericalError"
	case StatusSingular:
		return "Singular"
	case StatusMaxIterations:
		return "MaxIterations"
	case StatusInfiniteSolutions:
		return "InfiniteSolutions"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}
