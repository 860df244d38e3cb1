// Package observables extracts physical quantities from density matrices:
// trace and purity, per-qubit Bloch metrics, exact and adaptive pairwise
// mutual information, and eigenstate decomposition.
package observables

import (
	"github.com/aristath/lindblad/pkg/cmat"
)

// Trace returns Tr(ρ).
func Trace(rho *cmat.Dense) complex128 { return rho.Trace() }

// Purity returns Tr(ρ²), floored at zero against numerical noise. 1 for
// pure states, 1/D for the maximally mixed state.
func Purity(rho *cmat.Dense) float64 {
	d := rho.Dim()
	var sum float64
	for i := 0; i < d; i++ {
		for k := 0; k < d; k++ {
			sum += real(rho.At(i, k) * rho.At(k, i))
		}
	}
	if sum < 0 {
		return 0
	}
	return sum
}

// LinearEntropy returns 1 − Tr(ρ²), the cheap entropy proxy used on the
// high-purity path of the adaptive mutual-information scan.
func LinearEntropy(rho *cmat.Dense) float64 {
	s := 1 - Purity(rho)
	if s < 0 {
		return 0
	}
	return s
}

// ExpectationValue returns ⟨O⟩ = Tr(Oρ) without forming the full product.
func ExpectationValue(op, rho *cmat.Dense) complex128 {
	d := rho.Dim()
	var sum complex128
	for i := 0; i < d; i++ {
		for k := 0; k < d; k++ {
			sum += op.At(i, k) * rho.At(k, i)
		}
	}
	return sum
}

// QubitCount returns n for dim = 2^n, reporting failure for dimensions that
// are not a power of two (per-qubit decomposition is undefined there).
func QubitCount(dim int) (int, bool) {
	if dim < 2 || dim&(dim-1) != 0 {
		return 0, false
	}
	n := 0
	for v := dim; v > 1; v >>= 1 {
		n++
	}
	return n, true
}
