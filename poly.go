package surface

// NoDerivativeEvalPolynomial evaluates a polynomial with vector-valued
// coefficients at par, writing dimension values to result.
//
// The coefficients are stored in increasing power order; the coefficient of
// power k starts at coeffs[k*rowStride] and has dimension entries. rowStride
// allows evaluating a sub-block of a wider coefficient table. The evaluation
// uses Horner's scheme, starting from the highest power.
//
// result must have room for dimension values and must not alias coeffs.
func NoDerivativeEvalPolynomial(par float64, degree, dimension, rowStride int, coeffs, result []float64) {
	top := coeffs[degree*rowStride : degree*rowStride+dimension]
	copy(result[:dimension], top)
	for k := degree - 1; k >= 0; k-- {
		row := coeffs[k*rowStride : k*rowStride+dimension]
		for d, c := range row {
			result[d] = result[d]*par + c
		}
	}
}

// EvalPolynomial evaluates a polynomial with vector-valued coefficients and
// its derivatives up to derivOrder at par.
//
// The coefficients are stored contiguously in increasing power order, each
// with dimension entries. result receives (derivOrder+1)*dimension values:
// the value, followed by the first derivative, and so on. Derivatives of an
// order higher than degree are zero.
//
// result must not alias coeffs.
func EvalPolynomial(par float64, derivOrder, degree, dimension int, coeffs, result []float64) {
	n := (derivOrder + 1) * dimension
	res := result[:n]
	clear(res)
	copy(res[:dimension], coeffs[degree*dimension:(degree+1)*dimension])
	for k := degree - 1; k >= 0; k-- {
		// Update higher derivatives first; each reads the not yet updated
		// lower one.
		for r := min(derivOrder, degree-k); r >= 1; r-- {
			cur := res[r*dimension : (r+1)*dimension]
			prev := res[(r-1)*dimension : r*dimension]
			for d := range cur {
				cur[d] = cur[d]*par + prev[d]
			}
		}
		row := coeffs[k*dimension : (k+1)*dimension]
		for d, c := range row {
			res[d] = res[d]*par + c
		}
	}
	// The accumulators hold derivatives divided by r!.
	f := 1.0
	for r := 2; r <= derivOrder; r++ {
		f *= float64(r)
		for d := range dimension {
			res[r*dimension+d] *= f
		}
	}
}
