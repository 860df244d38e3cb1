package cmat

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDense_MulIdentity(t *testing.T) {
	a := NewDense(3)
	a.Set(0, 1, complex(2, -1))
	a.Set(2, 0, complex(0, 3))
	a.Set(1, 1, complex(-1, 0))

	got := a.Mul(Identity(3))
	assert.Zero(t, got.Sub(a).FrobeniusNorm(), "A·I should equal A exactly")

	got = Identity(3).Mul(a)
	assert.Zero(t, got.Sub(a).FrobeniusNorm(), "I·A should equal A exactly")
}

func TestDense_MulKnownProduct(t *testing.T) {
	// [[0, 1], [1, 0]] · [[1, 0], [0, -1]] = [[0, -1], [1, 0]]
	x := NewDense(2)
	x.Set(0, 1, 1)
	x.Set(1, 0, 1)
	z := NewDense(2)
	z.Set(0, 0, 1)
	z.Set(1, 1, -1)

	xz := x.Mul(z)
	assert.Equal(t, complex128(0), xz.At(0, 0))
	assert.Equal(t, complex128(-1), xz.At(0, 1))
	assert.Equal(t, complex128(1), xz.At(1, 0))
	assert.Equal(t, complex128(0), xz.At(1, 1))
}

func TestDense_OperationsDoNotMutateOperands(t *testing.T) {
	a := NewDense(2)
	a.Set(0, 1, complex(1, 2))
	before := a.Clone()

	_ = a.Mul(a)
	_ = a.Add(a)
	_ = a.Scale(complex(3, -1))
	_ = a.Adjoint()
	_ = a.Commutator(Identity(2))

	assert.Zero(t, a.Sub(before).FrobeniusNorm(), "operands must never be mutated")
}

func TestDense_AdjointAndHermitian(t *testing.T) {
	// Pauli Y is Hermitian despite being purely imaginary off-diagonal.
	y := NewDense(2)
	y.Set(0, 1, complex(0, -1))
	y.Set(1, 0, complex(0, 1))

	assert.True(t, y.IsHermitian(1e-12))
	assert.Zero(t, y.Adjoint().Sub(y).FrobeniusNorm())

	nonHermitian := NewDense(2)
	nonHermitian.Set(0, 1, 1)
	assert.False(t, nonHermitian.IsHermitian(1e-12))

	sym := nonHermitian.Symmetrize()
	assert.True(t, sym.IsHermitian(1e-12))
	assert.Equal(t, complex(0.5, 0), sym.At(0, 1))
	assert.Equal(t, complex(0.5, 0), sym.At(1, 0))
}

func TestDense_CommutatorAnticommutator(t *testing.T) {
	// [σx, σz] = -2iσy, {σx, σz} = 0
	x := NewDense(2)
	x.Set(0, 1, 1)
	x.Set(1, 0, 1)
	z := NewDense(2)
	z.Set(0, 0, 1)
	z.Set(1, 1, -1)

	comm := x.Commutator(z)
	assert.Equal(t, complex128(-2), comm.At(0, 1))
	assert.Equal(t, complex128(2), comm.At(1, 0))

	anti := x.Anticommutator(z)
	assert.Zero(t, anti.FrobeniusNorm())
}

func TestDense_Trace(t *testing.T) {
	a := NewDense(3)
	a.Set(0, 0, complex(1, 2))
	a.Set(1, 1, complex(3, -4))
	a.Set(2, 2, complex(-2, 1))
	a.Set(0, 2, complex(9, 9)) // off-diagonal must not contribute

	assert.Equal(t, complex(2, -1), a.Trace())
	assert.Equal(t, 2.0, a.TraceReal())
	assert.Equal(t, -1.0, a.TraceImag())
}

func TestDense_NormInf(t *testing.T) {
	a := NewDense(2)
	a.Set(0, 0, complex(3, 4)) // |3+4i| = 5
	a.Set(0, 1, 2)
	a.Set(1, 0, 1)

	assert.InDelta(t, 7.0, a.NormInf(), 1e-12, "max abs row sum is row 0: 5+2")
}

func TestDense_SparsityQueries(t *testing.T) {
	a := NewDense(4)
	a.Set(0, 0, 1)
	a.Set(1, 2, complex(0, 0.5))
	a.Set(3, 3, 1e-12)

	assert.Equal(t, 2, a.CountNonzeros(1e-10))
	assert.Equal(t, 3, a.CountNonzeros(1e-15))
	assert.InDelta(t, 2.0/16.0, a.SparsityRatio(1e-10), 1e-12)
}

func TestPack_RoundTrip(t *testing.T) {
	a := NewDense(2)
	a.Set(0, 0, complex(0.25, -0.5))
	a.Set(0, 1, complex(1, 2))
	a.Set(1, 0, complex(-3, 4))
	a.Set(1, 1, complex(math.Pi, 0))

	packed := a.Pack()
	require.Len(t, packed, 8)
	assert.Equal(t, 0.25, packed[0])
	assert.Equal(t, -0.5, packed[1])

	back, err := Unpack(packed, 2)
	require.NoError(t, err)
	assert.Zero(t, back.Sub(a).FrobeniusNorm())
}

func TestUnpack_BadLength(t *testing.T) {
	_, err := Unpack(make([]float64, 7), 2)
	require.Error(t, err)
}
