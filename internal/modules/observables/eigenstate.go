package observables

import (
	"fmt"
	"math/cmplx"

	"github.com/aristath/lindblad/pkg/cmat"
)

// Eigenstates decomposes a density matrix into eigenvalues (sorted
// descending, so index 0 is the dominant state) and matching normalized
// eigenvectors.
func Eigenstates(rho *cmat.Dense) ([]float64, [][]complex128, error) {
	vals, vecs, err := cmat.EighHermitian(rho)
	if err != nil {
		return nil, nil, fmt.Errorf("observables: eigenstate decomposition: %w", err)
	}
	// EighHermitian returns ascending order; reverse in place.
	for i, j := 0, len(vals)-1; i < j; i, j = i+1, j-1 {
		vals[i], vals[j] = vals[j], vals[i]
		vecs[i], vecs[j] = vecs[j], vecs[i]
	}
	return vals, vecs, nil
}

// DominantEigenstate returns the largest eigenvalue and its eigenvector.
func DominantEigenstate(rho *cmat.Dense) (float64, []complex128, error) {
	vals, vecs, err := Eigenstates(rho)
	if err != nil {
		return 0, nil, err
	}
	return vals[0], vecs[0], nil
}

// Overlap returns the cos²(θ) similarity |⟨ψ₁|ψ₂⟩|² between two state
// vectors, normalizing against their norms so unnormalized inputs still
// land in [0, 1]. Mismatched lengths or zero vectors yield 0.
func Overlap(psi1, psi2 []complex128) float64 {
	if len(psi1) != len(psi2) || len(psi1) == 0 {
		return 0
	}
	var inner complex128
	var n1, n2 float64
	for i := range psi1 {
		inner += cmplx.Conj(psi1[i]) * psi2[i]
		n1 += real(psi1[i])*real(psi1[i]) + imag(psi1[i])*imag(psi1[i])
		n2 += real(psi2[i])*real(psi2[i]) + imag(psi2[i])*imag(psi2[i])
	}
	if n1 == 0 || n2 == 0 {
		return 0
	}
	mag := cmplx.Abs(inner)
	return mag * mag / (n1 * n2)
}

// SimilarityMatrix returns the pairwise Overlap matrix over a list of state
// vectors. Diagonal entries are 1 for any non-zero vector.
func SimilarityMatrix(vectors [][]complex128) [][]float64 {
	n := len(vectors)
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			s := Overlap(vectors[i], vectors[j])
			out[i][j] = s
			out[j][i] = s
		}
	}
	return out
}
