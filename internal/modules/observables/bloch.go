package observables

import (
	"fmt"
	"math"

	"github.com/aristath/lindblad/pkg/cmat"
)

// blochEps: below this Bloch radius the angles θ, φ are reported as zero
// instead of the noise of atan2/acos near the origin.
const blochEps = 1e-12

// BlochBlock computes the fixed 8-float metrics block for one qubit from
// its 2×2 reduced density matrix:
//
//	[pop0, pop1, x, y, z, r, θ, φ]
//
// with x = 2·Re ρ01, y = −2·Im ρ01, z = ρ00 − ρ11, θ measured from +z and
// φ = atan2(y, x).
func BlochBlock(reduced *cmat.Dense) [8]float64 {
	pop0 := real(reduced.At(0, 0))
	pop1 := real(reduced.At(1, 1))
	x := 2 * real(reduced.At(0, 1))
	y := -2 * imag(reduced.At(0, 1))
	z := pop0 - pop1
	r := math.Sqrt(x*x + y*y + z*z)

	var theta, phi float64
	if r > blochEps {
		theta = math.Acos(math.Max(-1, math.Min(1, z/r)))
		phi = math.Atan2(y, x)
	}
	return [8]float64{pop0, pop1, x, y, z, r, theta, phi}
}

// Coherence returns |ρ01|, the off-diagonal magnitude of a 2×2 reduced
// matrix.
func Coherence(reduced *cmat.Dense) float64 {
	v := reduced.At(0, 1)
	return math.Hypot(real(v), imag(v))
}

// AllBlochBlocks computes the 8-float block for every qubit, returned as a
// flat slice of length 8·n. The density matrix dimension must be 2^n.
func AllBlochBlocks(rho *cmat.Dense) ([]float64, error) {
	n, ok := QubitCount(rho.Dim())
	if !ok {
		return nil, fmt.Errorf("observables: dimension %d is not a power of two, no qubit decomposition", rho.Dim())
	}
	out := make([]float64, 0, 8*n)
	for q := 0; q < n; q++ {
		block := BlochBlock(PartialTraceSingle(rho, q, n))
		out = append(out, block[:]...)
	}
	return out, nil
}
