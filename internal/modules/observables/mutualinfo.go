package observables

import (
	"math"

	"github.com/aristath/lindblad/pkg/cmat"
)

// entropyEps: eigenvalues at or below this are treated as exact zeros when
// accumulating entropy (0·log 0 = 0).
const entropyEps = 1e-15

// VonNeumannEntropy returns S(ρ) = −Σ λ_i log₂ λ_i over the eigenvalues of
// ρ, in bits, floored at zero.
func VonNeumannEntropy(rho *cmat.Dense) float64 {
	vals, _, err := cmat.EighHermitian(rho)
	if err != nil {
		return 0
	}
	var entropy float64
	for _, lambda := range vals {
		if lambda > entropyEps {
			entropy -= lambda * math.Log2(lambda)
		}
	}
	if entropy < 0 {
		return 0
	}
	return entropy
}

// MutualInformation returns I(a:b) = S(ρ_a) + S(ρ_b) − S(ρ_ab) for one
// qubit pair, floored at zero (subadditivity guarantees non-negativity up
// to numerical noise).
func MutualInformation(rho *cmat.Dense, qubitA, qubitB, numQubits int) float64 {
	rhoA := PartialTraceSingle(rho, qubitA, numQubits)
	rhoB := PartialTraceSingle(rho, qubitB, numQubits)
	rhoAB := PartialTracePair(rho, qubitA, qubitB, numQubits)

	mi := VonNeumannEntropy(rhoA) + VonNeumannEntropy(rhoB) - VonNeumannEntropy(rhoAB)
	if mi < 0 {
		return 0
	}
	return mi
}

// linearMutualInformation is the eigendecomposition-free approximation used
// on the high-purity path: von Neumann entropies replaced by linear
// entropies 1 − Tr(ρ²).
func linearMutualInformation(rho *cmat.Dense, qubitA, qubitB, numQubits int) float64 {
	rhoA := PartialTraceSingle(rho, qubitA, numQubits)
	rhoB := PartialTraceSingle(rho, qubitB, numQubits)
	rhoAB := PartialTracePair(rho, qubitA, qubitB, numQubits)

	mi := LinearEntropy(rhoA) + LinearEntropy(rhoB) - LinearEntropy(rhoAB)
	if mi < 0 {
		return 0
	}
	return mi
}

// PairCount returns the number of qubit pairs, n(n−1)/2.
func PairCount(numQubits int) int {
	if numQubits < 2 {
		return 0
	}
	return numQubits * (numQubits - 1) / 2
}

// AllMutualInformation computes I(a:b) for every qubit pair in the fixed
// order (0,1),(0,2),…,(1,2),…. Systems with fewer than two qubits get an
// empty (non-nil) vector, not an error.
func AllMutualInformation(rho *cmat.Dense, numQubits int) []float64 {
	out := make([]float64, 0, PairCount(numQubits))
	for i := 0; i < numQubits; i++ {
		for j := i + 1; j < numQubits; j++ {
			out = append(out, MutualInformation(rho, i, j, numQubits))
		}
	}
	return out
}
