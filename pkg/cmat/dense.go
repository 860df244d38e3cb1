// Package cmat implements the dense and compressed-sparse-row complex matrix
// primitives the evolution engine is built on. All arithmetic is
// non-mutating: operations allocate and return their result, operands are
// never written to.
//
// gonum's complex support stops at multiplication (mat.CDense), so element
// storage and arithmetic live here; factorizations (Hermitian
// eigendecomposition, linear solves) are delegated to gonum through the real
// symmetric embedding in eig.go.
package cmat

import (
	"math"
	"math/cmplx"
)

// Dense is a square D×D complex matrix stored row-major.
type Dense struct {
	dim  int
	data []complex128
}

// NewDense returns a zero-filled dim×dim matrix.
func NewDense(dim int) *Dense {
	return &Dense{dim: dim, data: make([]complex128, dim*dim)}
}

// Identity returns the dim×dim identity matrix.
func Identity(dim int) *Dense {
	m := NewDense(dim)
	for i := 0; i < dim; i++ {
		m.data[i*dim+i] = 1
	}
	return m
}

// Dim returns the matrix dimension D.
func (m *Dense) Dim() int { return m.dim }

// At returns the element at (i, j).
func (m *Dense) At(i, j int) complex128 { return m.data[i*m.dim+j] }

// Set writes the element at (i, j).
func (m *Dense) Set(i, j int, v complex128) { m.data[i*m.dim+j] = v }

// Clone returns a deep copy.
func (m *Dense) Clone() *Dense {
	out := NewDense(m.dim)
	copy(out.data, m.data)
	return out
}

// Mul returns m·other.
func (m *Dense) Mul(other *Dense) *Dense {
	d := m.dim
	out := NewDense(d)
	for i := 0; i < d; i++ {
		row := m.data[i*d : (i+1)*d]
		outRow := out.data[i*d : (i+1)*d]
		for k := 0; k < d; k++ {
			a := row[k]
			if a == 0 {
				continue
			}
			otherRow := other.data[k*d : (k+1)*d]
			for j := 0; j < d; j++ {
				outRow[j] += a * otherRow[j]
			}
		}
	}
	return out
}

// Add returns m + other.
func (m *Dense) Add(other *Dense) *Dense {
	out := NewDense(m.dim)
	for i, v := range m.data {
		out.data[i] = v + other.data[i]
	}
	return out
}

// Sub returns m − other.
func (m *Dense) Sub(other *Dense) *Dense {
	out := NewDense(m.dim)
	for i, v := range m.data {
		out.data[i] = v - other.data[i]
	}
	return out
}

// Scale returns s·m for a complex scalar s.
func (m *Dense) Scale(s complex128) *Dense {
	out := NewDense(m.dim)
	for i, v := range m.data {
		out.data[i] = s * v
	}
	return out
}

// AddScaled returns m + s·other in one pass. The evolution hot path uses it
// to accumulate dρ terms without an intermediate allocation.
func (m *Dense) AddScaled(s complex128, other *Dense) *Dense {
	out := NewDense(m.dim)
	for i, v := range m.data {
		out.data[i] = v + s*other.data[i]
	}
	return out
}

// Adjoint returns the conjugate transpose m†.
func (m *Dense) Adjoint() *Dense {
	d := m.dim
	out := NewDense(d)
	for i := 0; i < d; i++ {
		for j := 0; j < d; j++ {
			out.data[j*d+i] = cmplx.Conj(m.data[i*d+j])
		}
	}
	return out
}

// Commutator returns [m, other] = m·other − other·m.
func (m *Dense) Commutator(other *Dense) *Dense {
	return m.Mul(other).Sub(other.Mul(m))
}

// Anticommutator returns {m, other} = m·other + other·m.
func (m *Dense) Anticommutator(other *Dense) *Dense {
	return m.Mul(other).Add(other.Mul(m))
}

// Trace returns Σ m_ii.
func (m *Dense) Trace() complex128 {
	var tr complex128
	for i := 0; i < m.dim; i++ {
		tr += m.data[i*m.dim+i]
	}
	return tr
}

// TraceReal returns the real part of the trace.
func (m *Dense) TraceReal() float64 { return real(m.Trace()) }

// TraceImag returns the imaginary part of the trace.
func (m *Dense) TraceImag() float64 { return imag(m.Trace()) }

// IsHermitian reports whether ‖m − m†‖_F < tol.
func (m *Dense) IsHermitian(tol float64) bool {
	return m.Sub(m.Adjoint()).FrobeniusNorm() < tol
}

// Symmetrize returns (m + m†)/2, the Hermitian part of m.
func (m *Dense) Symmetrize() *Dense {
	return m.Add(m.Adjoint()).Scale(0.5)
}

// NormInf returns the induced ∞-norm: the maximum absolute row sum.
func (m *Dense) NormInf() float64 {
	d := m.dim
	var max float64
	for i := 0; i < d; i++ {
		var sum float64
		for j := 0; j < d; j++ {
			sum += cmplx.Abs(m.data[i*d+j])
		}
		if sum > max {
			max = sum
		}
	}
	return max
}

// FrobeniusNorm returns sqrt(Σ |m_ij|²).
func (m *Dense) FrobeniusNorm() float64 {
	var sum float64
	for _, v := range m.data {
		sum += real(v)*real(v) + imag(v)*imag(v)
	}
	return math.Sqrt(sum)
}

// CountNonzeros counts entries with magnitude above threshold.
func (m *Dense) CountNonzeros(threshold float64) int {
	count := 0
	for _, v := range m.data {
		if cmplx.Abs(v) > threshold {
			count++
		}
	}
	return count
}

// SparsityRatio returns the fill ratio nnz/D² for the given threshold.
func (m *Dense) SparsityRatio(threshold float64) float64 {
	total := m.dim * m.dim
	if total == 0 {
		return 0
	}
	return float64(m.CountNonzeros(threshold)) / float64(total)
}
