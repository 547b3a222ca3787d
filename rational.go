package surface

// RationalDerivative converts the partial derivatives of a rational surface
// in homogeneous form into the partial derivatives of the surface itself.
//
// a[i][j] holds ∂ⁱ⁺ʲ(w·P)/∂uⁱ∂vʲ and w[i][j] holds ∂ⁱ⁺ʲw/∂uⁱ∂vʲ. Entries
// with i+j ≤ order are used and produced; order must be at most 2.
//
// This is algorithm A4.4 from The NURBS Book (Piegl and Tiller, 2nd edition),
// the quotient rule for vector-valued rational functions.
func RationalDerivative(a [3][3]Vec3, w [3][3]float64, order int) [3][3]Vec3 {
	var s [3][3]Vec3
	for k := 0; k <= order; k++ {
		for l := 0; l <= order-k; l++ {
			v := a[k][l]
			for j := 1; j <= l; j++ {
				v = v.Sub(s[k][l-j].Mul(float64(choose(l, j)) * w[0][j]))
			}
			for i := 1; i <= k; i++ {
				v = v.Sub(s[k-i][l].Mul(float64(choose(k, i)) * w[i][0]))
				v2 := Vec3{}
				for j := 1; j <= l; j++ {
					v2 = v2.Add(s[k-i][l-j].Mul(float64(choose(l, j)) * w[i][j]))
				}
				v = v.Sub(v2.Mul(float64(choose(k, i))))
			}
			s[k][l] = v.Div(w[0][0])
		}
	}
	return s
}

// rationalCurveDerivative is the one-parameter version of
// [RationalDerivative].
func rationalCurveDerivative(a [3]Vec3, w [3]float64, order int) [3]Vec3 {
	var s [3]Vec3
	for k := 0; k <= order; k++ {
		v := a[k]
		for i := 1; i <= k; i++ {
			v = v.Sub(s[k-i].Mul(float64(choose(k, i)) * w[i]))
		}
		s[k] = v.Div(w[0])
	}
	return s
}

// Binomial co-efficient, but returning zeros for values outside of domain
func choose(n, k int) uint32 {
	if k > n {
		return 0
	}
	p := 1
	bound := n - k
	for i := 1; i <= bound; i++ {
		p *= n
		p /= i
		n -= 1
	}
	return uint32(p)
}
