package observables

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/lindblad/pkg/cmat"
)

// bellState returns ρ = |Φ⁺⟩⟨Φ⁺| with |Φ⁺⟩ = (|00⟩ + |11⟩)/√2, the
// maximally entangled 2-qubit state.
func bellState() *cmat.Dense {
	rho := cmat.NewDense(4)
	rho.Set(0, 0, 0.5)
	rho.Set(0, 3, 0.5)
	rho.Set(3, 0, 0.5)
	rho.Set(3, 3, 0.5)
	return rho
}

// maximallyMixed returns I/D.
func maximallyMixed(dim int) *cmat.Dense {
	rho := cmat.NewDense(dim)
	for i := 0; i < dim; i++ {
		rho.Set(i, i, complex(1/float64(dim), 0))
	}
	return rho
}

// productState returns |b_{n-1}…b_0⟩⟨…| for the given bit pattern.
func productState(dim, pattern int) *cmat.Dense {
	rho := cmat.NewDense(dim)
	rho.Set(pattern, pattern, 1)
	return rho
}

func TestPurity(t *testing.T) {
	assert.InDelta(t, 1.0, Purity(productState(4, 2)), 1e-12, "pure state")
	assert.InDelta(t, 0.25, Purity(maximallyMixed(4)), 1e-12, "maximally mixed is 1/D")
	assert.InDelta(t, 1.0, Purity(bellState()), 1e-12, "Bell state is pure")
}

func TestLinearEntropy(t *testing.T) {
	assert.InDelta(t, 0, LinearEntropy(productState(2, 0)), 1e-12)
	assert.InDelta(t, 0.5, LinearEntropy(maximallyMixed(2)), 1e-12)
}

func TestExpectationValue(t *testing.T) {
	// ⟨σz⟩ on |0⟩ is +1, on |1⟩ is −1.
	sz := cmat.NewDense(2)
	sz.Set(0, 0, 1)
	sz.Set(1, 1, -1)

	assert.InDelta(t, 1, real(ExpectationValue(sz, productState(2, 0))), 1e-12)
	assert.InDelta(t, -1, real(ExpectationValue(sz, productState(2, 1))), 1e-12)
}

func TestQubitCount(t *testing.T) {
	for dim, want := range map[int]int{2: 1, 4: 2, 8: 3, 16: 4} {
		n, ok := QubitCount(dim)
		assert.True(t, ok)
		assert.Equal(t, want, n)
	}
	for _, dim := range []int{0, 1, 3, 6, 12} {
		_, ok := QubitCount(dim)
		assert.False(t, ok, "dim %d is not a qubit register", dim)
	}
}

func TestPartialTraceSingle_ProductState(t *testing.T) {
	// |01⟩ (qubit 0 = 1, qubit 1 = 0): qubit 0 reduces to |1⟩⟨1|,
	// qubit 1 to |0⟩⟨0|.
	rho := productState(4, 1)

	r0 := PartialTraceSingle(rho, 0, 2)
	assert.InDelta(t, 0, real(r0.At(0, 0)), 1e-12)
	assert.InDelta(t, 1, real(r0.At(1, 1)), 1e-12)

	r1 := PartialTraceSingle(rho, 1, 2)
	assert.InDelta(t, 1, real(r1.At(0, 0)), 1e-12)
	assert.InDelta(t, 0, real(r1.At(1, 1)), 1e-12)
}

func TestPartialTraceSingle_BellMarginalsAreMixed(t *testing.T) {
	rho := bellState()
	for q := 0; q < 2; q++ {
		r := PartialTraceSingle(rho, q, 2)
		assert.InDelta(t, 0.5, real(r.At(0, 0)), 1e-12)
		assert.InDelta(t, 0.5, real(r.At(1, 1)), 1e-12)
		assert.InDelta(t, 0, real(r.At(0, 1)), 1e-12)
		assert.InDelta(t, 1, real(r.Trace()), 1e-12, "partial trace preserves trace")
	}
}

func TestPartialTracePair_RecoversJointState(t *testing.T) {
	// 3-qubit state |101⟩: qubits 0 and 2 are both set, qubit 1 is traced
	// out, so the (0,2) pair reduces to |11⟩⟨11|.
	rho := productState(8, 5)

	joint := PartialTracePair(rho, 0, 2, 3)
	// Basis orders qubit 0 as high bit, qubit 2 as low bit: |11⟩ = index 3.
	assert.InDelta(t, 1, real(joint.At(3, 3)), 1e-12)
	assert.InDelta(t, 1, real(joint.Trace()), 1e-12)

	// Swapped argument order keeps a consistent basis.
	jointSwapped := PartialTracePair(rho, 2, 0, 3)
	assert.InDelta(t, 1, real(jointSwapped.At(3, 3)), 1e-12)
}

func TestVonNeumannEntropy(t *testing.T) {
	assert.InDelta(t, 0, VonNeumannEntropy(productState(2, 0)), 1e-9, "pure state has zero entropy")
	assert.InDelta(t, 1, VonNeumannEntropy(maximallyMixed(2)), 1e-9, "one bit for I/2")
	assert.InDelta(t, 2, VonNeumannEntropy(maximallyMixed(4)), 1e-9, "two bits for I/4")
}

func TestMutualInformation_Bounds(t *testing.T) {
	// Factorized state: exactly zero.
	assert.InDelta(t, 0, MutualInformation(productState(4, 2), 0, 1, 2), 1e-9)

	// Bell state: maximal, 2 bits.
	assert.InDelta(t, 2, MutualInformation(bellState(), 0, 1, 2), 1e-9)

	// Maximally mixed: zero.
	assert.InDelta(t, 0, MutualInformation(maximallyMixed(4), 0, 1, 2), 1e-9)
}

func TestMutualInformation_NonNegativeUnderNoise(t *testing.T) {
	// A slightly mixed correlated state keeps I ≥ 0.
	rho := bellState().Scale(0.9).Add(maximallyMixed(4).Scale(0.1))
	mi := MutualInformation(rho, 0, 1, 2)
	assert.GreaterOrEqual(t, mi, 0.0)
	assert.Greater(t, mi, 1.0, "mostly-Bell state stays strongly correlated")
}

func TestAllMutualInformation_PairOrderAndCount(t *testing.T) {
	assert.Empty(t, AllMutualInformation(productState(2, 0), 1), "below two qubits: empty, not an error")

	mi := AllMutualInformation(productState(8, 0), 3)
	require.Len(t, mi, 3, "(0,1),(0,2),(1,2)")
	for _, v := range mi {
		assert.InDelta(t, 0, v, 1e-9)
	}
}

func TestBlochBlock_BasisAndSuperposition(t *testing.T) {
	// |0⟩: north pole.
	up := BlochBlock(productState(2, 0))
	assert.InDelta(t, 1, up[0], 1e-12) // pop0
	assert.InDelta(t, 0, up[1], 1e-12) // pop1
	assert.InDelta(t, 1, up[4], 1e-12) // z
	assert.InDelta(t, 1, up[5], 1e-12) // r
	assert.InDelta(t, 0, up[6], 1e-12) // θ

	// |+⟩ = (|0⟩+|1⟩)/√2: +x axis.
	plus := cmat.NewDense(2)
	plus.Set(0, 0, 0.5)
	plus.Set(0, 1, 0.5)
	plus.Set(1, 0, 0.5)
	plus.Set(1, 1, 0.5)
	bp := BlochBlock(plus)
	assert.InDelta(t, 1, bp[2], 1e-12)           // x
	assert.InDelta(t, 0, bp[3], 1e-12)           // y
	assert.InDelta(t, 0, bp[4], 1e-12)           // z
	assert.InDelta(t, math.Pi/2, bp[6], 1e-12)   // θ
	assert.InDelta(t, 0, bp[7], 1e-12)           // φ
	assert.InDelta(t, 0.5, Coherence(plus), 1e-12)

	// Maximally mixed: r = 0, angles reported as 0.
	mixed := BlochBlock(maximallyMixed(2))
	assert.InDelta(t, 0, mixed[5], 1e-12)
	assert.Zero(t, mixed[6])
	assert.Zero(t, mixed[7])
}

func TestAllBlochBlocks(t *testing.T) {
	blocks, err := AllBlochBlocks(productState(8, 5))
	require.NoError(t, err)
	require.Len(t, blocks, 24, "three qubits × 8 floats")

	// |101⟩: qubits 0 and 2 point down (z=−1), qubit 1 up (z=+1).
	assert.InDelta(t, -1, blocks[0*8+4], 1e-12)
	assert.InDelta(t, 1, blocks[1*8+4], 1e-12)
	assert.InDelta(t, -1, blocks[2*8+4], 1e-12)
}

func TestAllBlochBlocks_NonPowerOfTwo(t *testing.T) {
	_, err := AllBlochBlocks(cmat.Identity(3).Scale(complex(1.0/3, 0)))
	require.Error(t, err)
}
