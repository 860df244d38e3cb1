package observables

import (
	"math/cmplx"

	"github.com/aristath/lindblad/pkg/cmat"
)

// Default thresholds for the adaptive scan.
const (
	// DefaultScreeningThreshold is the max-abs deviation between a pair's
	// joint reduction and the product of its marginals above which the pair
	// becomes a candidate.
	DefaultScreeningThreshold = 1e-6
	// DefaultHighPurityThreshold: above this whole-system purity the exact
	// entropies are replaced by the linear-entropy approximation.
	DefaultHighPurityThreshold = 0.999
)

// AdaptiveMIOptions tunes the adaptive mutual-information scan. Zero values
// select the defaults.
type AdaptiveMIOptions struct {
	ScreeningThreshold  float64
	HighPurityThreshold float64
}

type qubitPair struct {
	a, b int
}

// AdaptiveMI computes pairwise mutual information incrementally. The first
// call (and the first call after Invalidate) runs a full screening pass over
// every pair to build a persistent candidate list; subsequent calls compute
// MI only for candidates. This is the one piece of cross-call state in the
// engine, and it is invalidated by the caller, never by time: after any
// discontinuous state change (a projective measurement, an operator swap)
// the caller must Invalidate before the next Compute.
type AdaptiveMI struct {
	screeningThreshold  float64
	highPurityThreshold float64
	candidates          []qubitPair
	valid               bool
}

// NewAdaptiveMI creates an adaptive scanner with an empty (invalid)
// candidate cache.
func NewAdaptiveMI(opts AdaptiveMIOptions) *AdaptiveMI {
	if opts.ScreeningThreshold <= 0 {
		opts.ScreeningThreshold = DefaultScreeningThreshold
	}
	if opts.HighPurityThreshold <= 0 {
		opts.HighPurityThreshold = DefaultHighPurityThreshold
	}
	return &AdaptiveMI{
		screeningThreshold:  opts.ScreeningThreshold,
		highPurityThreshold: opts.HighPurityThreshold,
	}
}

// Invalidate drops the candidate list; the next Compute re-screens every
// pair.
func (a *AdaptiveMI) Invalidate() {
	a.candidates = nil
	a.valid = false
}

// CandidateCount returns the size of the current candidate list.
func (a *AdaptiveMI) CandidateCount() int { return len(a.candidates) }

// Compute returns the mutual-information vector in the fixed pair order
// (0,1),(0,2),…,(1,2),…. Non-candidate pairs report zero. Fewer than two
// qubits yields an empty vector.
func (a *AdaptiveMI) Compute(rho *cmat.Dense, numQubits int) []float64 {
	out := make([]float64, PairCount(numQubits))
	if numQubits < 2 {
		return out
	}

	if !a.valid {
		a.screen(rho, numQubits)
	}

	useLinear := Purity(rho) > a.highPurityThreshold
	idx := pairIndexer(numQubits)
	for _, p := range a.candidates {
		if useLinear {
			out[idx(p.a, p.b)] = linearMutualInformation(rho, p.a, p.b, numQubits)
		} else {
			out[idx(p.a, p.b)] = MutualInformation(rho, p.a, p.b, numQubits)
		}
	}
	return out
}

// screen rebuilds the candidate list: a pair is kept when its joint 4×4
// reduction deviates from the product of its marginals anywhere above the
// screening threshold. O(16) comparisons per pair, no eigendecomposition.
func (a *AdaptiveMI) screen(rho *cmat.Dense, numQubits int) {
	a.candidates = a.candidates[:0]
	for i := 0; i < numQubits; i++ {
		for j := i + 1; j < numQubits; j++ {
			if a.pairCorrelated(rho, i, j, numQubits) {
				a.candidates = append(a.candidates, qubitPair{i, j})
			}
		}
	}
	a.valid = true
}

func (a *AdaptiveMI) pairCorrelated(rho *cmat.Dense, qubitA, qubitB, numQubits int) bool {
	rhoA := PartialTraceSingle(rho, qubitA, numQubits)
	rhoB := PartialTraceSingle(rho, qubitB, numQubits)
	joint := PartialTracePair(rho, qubitA, qubitB, numQubits)

	// Max-abs deviation of ρ_ab from ρ_a ⊗ ρ_b.
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			product := rhoA.At(r>>1, c>>1) * rhoB.At(r&1, c&1)
			if cmplx.Abs(joint.At(r, c)-product) > a.screeningThreshold {
				return true
			}
		}
	}
	return false
}

// pairIndexer maps a qubit pair (a < b) to its slot in the fixed-order MI
// vector.
func pairIndexer(numQubits int) func(a, b int) int {
	return func(a, b int) int {
		// Offset of row a in the flattened upper triangle.
		return a*numQubits - a*(a+1)/2 + (b - a - 1)
	}
}
