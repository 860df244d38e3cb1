// Package expm computes matrix exponentials of complex matrices by Padé
// approximation with scaling and squaring. The engine uses it for exact
// unitary propagation, exp(−iHΔt), where Euler integration of a large time
// jump would be unstable.
package expm

import (
	"errors"
	"fmt"
	"math"

	"github.com/aristath/lindblad/pkg/cmat"
)

// ErrUnsupportedOrder is returned when a Padé order outside the coefficient
// table is requested. Earlier revisions of this engine fell back to the
// identity matrix in that case, which callers could mistake for a valid
// propagator; the unsupported case is a hard error now.
var ErrUnsupportedOrder = errors.New("expm: unsupported Padé order")

// zeroNormEps: below this ∞-norm the input is treated as the zero matrix,
// whose exponential is exactly the identity.
const zeroNormEps = 1e-15

// Padé numerator coefficients b_0..b_m per order (Higham's tables).
var padeCoeffs = map[int][]float64{
	3: {120, 60, 12, 1},
	5: {30240, 15120, 3360, 420, 30, 1},
	7: {17297280, 8648640, 1995840, 277200, 25200, 1512, 56, 1},
	9: {17643225600, 8821612800, 2075673600, 302702400, 30270240,
		2162160, 110880, 3960, 90, 1},
	13: {64764752532480000, 32382376266240000, 7771770303897600,
		1187353796428800, 129060195264000, 10559470521600,
		670442572800, 33522128640, 1323241920, 40840800,
		960960, 16380, 182, 1},
}

// Stability thresholds θ_m: the [m/m] approximant is accurate while
// ‖A‖_∞ ≤ θ_m.
var padeTheta = map[int]float64{
	3:  1.495585217958292e-2,
	5:  2.539398330063230e-1,
	7:  9.504178996162932e-1,
	9:  2.097847961257068e+0,
	13: 5.371920351148152e+0,
}

// orderLadder is the auto-selection sequence: the smallest order whose θ
// bound covers ‖A‖ wins, order 13 (with scaling) covers the rest.
var orderLadder = []int{3, 5, 7, 9, 13}

// Exp computes exp(A), choosing the cheapest adequate Padé order by norm and
// scaling-and-squaring with order 13 when the norm exceeds every threshold.
func Exp(a *cmat.Dense) (*cmat.Dense, error) {
	norm := a.NormInf()
	if norm < zeroNormEps {
		return cmat.Identity(a.Dim()), nil
	}
	for _, m := range orderLadder[:len(orderLadder)-1] {
		if norm <= padeTheta[m] {
			return padeApprox(a, m)
		}
	}
	return expScaled(a, 13, norm)
}

// ExpOrder computes exp(A) with a fixed Padé order from the table
// {3, 5, 7, 9, 13}, scaling A until it is below that order's θ. Any other
// order returns ErrUnsupportedOrder.
func ExpOrder(a *cmat.Dense, order int) (*cmat.Dense, error) {
	if _, ok := padeCoeffs[order]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedOrder, order)
	}
	norm := a.NormInf()
	if norm < zeroNormEps {
		return cmat.Identity(a.Dim()), nil
	}
	return expScaled(a, order, norm)
}

// expScaled computes exp(A) = (exp(A/2^j))^(2^j) with j chosen so the scaled
// norm is below θ_order.
func expScaled(a *cmat.Dense, order int, norm float64) (*cmat.Dense, error) {
	theta := padeTheta[order]
	j := 0
	if norm > theta {
		j = int(math.Ceil(math.Log2(norm / theta)))
	}
	scaled := a.Scale(complex(1/math.Exp2(float64(j)), 0))

	result, err := padeApprox(scaled, order)
	if err != nil {
		return nil, err
	}
	for i := 0; i < j; i++ {
		result = result.Mul(result)
	}
	return result, nil
}

// padeApprox evaluates the [m/m] Padé approximant r(A) = (V−U)⁻¹(V+U),
// where U collects the odd and V the even powers, both evaluated in powers
// of A² by Horner's scheme.
func padeApprox(a *cmat.Dense, order int) (*cmat.Dense, error) {
	b := padeCoeffs[order]
	dim := a.Dim()
	ident := cmat.Identity(dim)
	a2 := a.Mul(a)

	var u, v *cmat.Dense
	if order == 13 {
		a4 := a2.Mul(a2)
		a6 := a2.Mul(a4)

		// U = A[A6(b13·A6 + b11·A4 + b9·A2) + b7·A6 + b5·A4 + b3·A2 + b1·I]
		w1 := a6.Scale(complex(b[13], 0)).
			AddScaled(complex(b[11], 0), a4).
			AddScaled(complex(b[9], 0), a2)
		w := a6.Mul(w1).
			AddScaled(complex(b[7], 0), a6).
			AddScaled(complex(b[5], 0), a4).
			AddScaled(complex(b[3], 0), a2).
			AddScaled(complex(b[1], 0), ident)
		u = a.Mul(w)

		// V = A6(b12·A6 + b10·A4 + b8·A2) + b6·A6 + b4·A4 + b2·A2 + b0·I
		z1 := a6.Scale(complex(b[12], 0)).
			AddScaled(complex(b[10], 0), a4).
			AddScaled(complex(b[8], 0), a2)
		v = a6.Mul(z1).
			AddScaled(complex(b[6], 0), a6).
			AddScaled(complex(b[4], 0), a4).
			AddScaled(complex(b[2], 0), a2).
			AddScaled(complex(b[0], 0), ident)
	} else {
		// Powers of A² up to A^(order−1), accumulated term by term.
		uSum := ident.Scale(complex(b[1], 0))
		vSum := ident.Scale(complex(b[0], 0))
		pow := ident
		for k := 2; k <= order; k += 2 {
			pow = pow.Mul(a2)
			vSum = vSum.AddScaled(complex(b[k], 0), pow)
			if k+1 <= order {
				uSum = uSum.AddScaled(complex(b[k+1], 0), pow)
			}
		}
		u = a.Mul(uSum)
		v = vSum
	}

	// exp(A) ≈ (V − U)⁻¹ (V + U)
	result, err := cmat.Solve(v.Sub(u), v.Add(u))
	if err != nil {
		return nil, fmt.Errorf("expm: Padé denominator solve: %w", err)
	}
	return result, nil
}
