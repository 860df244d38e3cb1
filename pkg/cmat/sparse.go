package cmat

import (
	"fmt"
	"math"
	"math/cmplx"
	"sort"
)

// tripletEps is the near-zero threshold below which triplet entries are
// dropped at ingest.
const tripletEps = 1e-15

// Sparse is a square complex matrix in compressed-sparse-row form. Lindblad
// operators at typical 1–5% fill are held in this representation so the
// evolution hot path runs in O(nnz·D) instead of O(D³).
type Sparse struct {
	dim    int
	rowPtr []int32
	colIdx []int32
	values []complex128
}

type triplet struct {
	row, col int32
	val      complex128
}

func fromSortedTriplets(entries []triplet, dim int) *Sparse {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].row != entries[j].row {
			return entries[i].row < entries[j].row
		}
		return entries[i].col < entries[j].col
	})

	// Merge duplicate coordinates by summation.
	merged := entries[:0]
	for _, e := range entries {
		n := len(merged)
		if n > 0 && merged[n-1].row == e.row && merged[n-1].col == e.col {
			merged[n-1].val += e.val
		} else {
			merged = append(merged, e)
		}
	}

	s := &Sparse{
		dim:    dim,
		rowPtr: make([]int32, dim+1),
		colIdx: make([]int32, len(merged)),
		values: make([]complex128, len(merged)),
	}
	for i, e := range merged {
		s.rowPtr[e.row+1]++
		s.colIdx[i] = e.col
		s.values[i] = e.val
	}
	for i := 0; i < dim; i++ {
		s.rowPtr[i+1] += s.rowPtr[i]
	}
	return s
}

// FromTriplets builds a sparse matrix from a flat triplet stream
// [row0, col0, re0, im0, row1, col1, re1, im1, ...]. Entries whose real and
// imaginary parts are both near zero are dropped; duplicate coordinates sum.
func FromTriplets(stream []float64, dim int) (*Sparse, error) {
	if len(stream)%4 != 0 {
		return nil, fmt.Errorf("cmat: triplet stream length %d is not a multiple of 4", len(stream))
	}
	entries := make([]triplet, 0, len(stream)/4)
	for i := 0; i < len(stream); i += 4 {
		row := int32(stream[i])
		col := int32(stream[i+1])
		re := stream[i+2]
		im := stream[i+3]
		if row < 0 || int(row) >= dim || col < 0 || int(col) >= dim {
			return nil, fmt.Errorf("cmat: triplet (%d,%d) out of range for dimension %d", row, col, dim)
		}
		if math.Abs(re) > tripletEps || math.Abs(im) > tripletEps {
			entries = append(entries, triplet{row, col, complex(re, im)})
		}
	}
	return fromSortedTriplets(entries, dim), nil
}

// FromDense converts a dense matrix to sparse, keeping entries with
// magnitude above threshold.
func FromDense(m *Dense, threshold float64) *Sparse {
	d := m.dim
	entries := make([]triplet, 0, d)
	for i := 0; i < d; i++ {
		for j := 0; j < d; j++ {
			v := m.data[i*d+j]
			if cmplx.Abs(v) > threshold {
				entries = append(entries, triplet{int32(i), int32(j), v})
			}
		}
	}
	return fromSortedTriplets(entries, d)
}

// Dim returns the matrix dimension D.
func (s *Sparse) Dim() int { return s.dim }

// NNZ returns the number of stored nonzeros.
func (s *Sparse) NNZ() int { return len(s.values) }

// Sparsity returns the fraction of zero entries, 1 − nnz/D².
func (s *Sparse) Sparsity() float64 {
	if s.dim == 0 {
		return 1.0
	}
	total := s.dim * s.dim
	return 1.0 - float64(len(s.values))/float64(total)
}

// ToDense expands the matrix to dense form.
func (s *Sparse) ToDense() *Dense {
	out := NewDense(s.dim)
	for i := 0; i < s.dim; i++ {
		for k := s.rowPtr[i]; k < s.rowPtr[i+1]; k++ {
			out.data[i*s.dim+int(s.colIdx[k])] = s.values[k]
		}
	}
	return out
}

// Triplets exports the matrix in the flat triplet stream format.
func (s *Sparse) Triplets() []float64 {
	out := make([]float64, 0, len(s.values)*4)
	for i := 0; i < s.dim; i++ {
		for k := s.rowPtr[i]; k < s.rowPtr[i+1]; k++ {
			out = append(out,
				float64(i), float64(s.colIdx[k]),
				real(s.values[k]), imag(s.values[k]))
		}
	}
	return out
}

// MulDense returns s·b (sparse × dense) in O(nnz·D).
func (s *Sparse) MulDense(b *Dense) *Dense {
	d := s.dim
	out := NewDense(d)
	for i := 0; i < d; i++ {
		outRow := out.data[i*d : (i+1)*d]
		for k := s.rowPtr[i]; k < s.rowPtr[i+1]; k++ {
			v := s.values[k]
			bRow := b.data[int(s.colIdx[k])*d : (int(s.colIdx[k])+1)*d]
			for j := 0; j < d; j++ {
				outRow[j] += v * bRow[j]
			}
		}
	}
	return out
}

// DenseMul returns b·s (dense × sparse) in O(nnz·D).
func (s *Sparse) DenseMul(b *Dense) *Dense {
	d := s.dim
	out := NewDense(d)
	for r := 0; r < d; r++ {
		for k := s.rowPtr[r]; k < s.rowPtr[r+1]; k++ {
			c := int(s.colIdx[k])
			v := s.values[k]
			for i := 0; i < d; i++ {
				out.data[i*d+c] += b.data[i*d+r] * v
			}
		}
	}
	return out
}

// MulSparse returns s·other as a sparse matrix. Used once per operator at
// finalization to build the L†L cache, so a dense scratch row is acceptable.
func (s *Sparse) MulSparse(other *Sparse) *Sparse {
	d := s.dim
	scratch := make([]complex128, d)
	entries := make([]triplet, 0, len(s.values))
	for i := 0; i < d; i++ {
		cols := make([]int, 0, 8)
		for k := s.rowPtr[i]; k < s.rowPtr[i+1]; k++ {
			mid := int(s.colIdx[k])
			v := s.values[k]
			for k2 := other.rowPtr[mid]; k2 < other.rowPtr[mid+1]; k2++ {
				c := int(other.colIdx[k2])
				if scratch[c] == 0 {
					cols = append(cols, c)
				}
				scratch[c] += v * other.values[k2]
			}
		}
		for _, c := range cols {
			if cmplx.Abs(scratch[c]) > tripletEps {
				entries = append(entries, triplet{int32(i), int32(c), scratch[c]})
			}
			scratch[c] = 0
		}
	}
	return fromSortedTriplets(entries, d)
}

// Adjoint returns the conjugate transpose s†.
func (s *Sparse) Adjoint() *Sparse {
	entries := make([]triplet, 0, len(s.values))
	for i := 0; i < s.dim; i++ {
		for k := s.rowPtr[i]; k < s.rowPtr[i+1]; k++ {
			entries = append(entries, triplet{s.colIdx[k], int32(i), cmplx.Conj(s.values[k])})
		}
	}
	return fromSortedTriplets(entries, s.dim)
}

// Scale returns c·s.
func (s *Sparse) Scale(c complex128) *Sparse {
	out := &Sparse{
		dim:    s.dim,
		rowPtr: append([]int32(nil), s.rowPtr...),
		colIdx: append([]int32(nil), s.colIdx...),
		values: make([]complex128, len(s.values)),
	}
	for i, v := range s.values {
		out.values[i] = c * v
	}
	return out
}

// Add returns s + other.
func (s *Sparse) Add(other *Sparse) (*Sparse, error) {
	if s.dim != other.dim {
		return nil, fmt.Errorf("cmat: sparse dimension mismatch %d vs %d", s.dim, other.dim)
	}
	entries := make([]triplet, 0, len(s.values)+len(other.values))
	for i := 0; i < s.dim; i++ {
		for k := s.rowPtr[i]; k < s.rowPtr[i+1]; k++ {
			entries = append(entries, triplet{int32(i), s.colIdx[k], s.values[k]})
		}
		for k := other.rowPtr[i]; k < other.rowPtr[i+1]; k++ {
			entries = append(entries, triplet{int32(i), other.colIdx[k], other.values[k]})
		}
	}
	return fromSortedTriplets(entries, s.dim), nil
}

// Dissipator computes the Lindblad dissipator for this operator in one
// fused call:
//
//	LρL† − ½(L†Lρ + ρL†L)
//
// dag and ldagL are the L† and L†L caches computed at finalization; reusing
// them avoids rebuilding the intermediate products on every sub-step. This
// is the single most frequently invoked routine in the evolution hot path.
func (s *Sparse) Dissipator(rho *Dense, dag, ldagL *Sparse) *Dense {
	// L ρ L†: sparse × dense, then dense × sparse.
	lRho := s.MulDense(rho)
	lRhoLdag := dag.DenseMul(lRho)

	// {L†L, ρ} = L†Lρ + ρL†L, both against the cached sparse L†L.
	anti := ldagL.MulDense(rho).Add(ldagL.DenseMul(rho))

	return lRhoLdag.AddScaled(-0.5, anti)
}
