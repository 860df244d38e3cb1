package cmat

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// The factorizations below route through gonum by embedding a complex matrix
// C = A + iB into the real 2D×2D block matrix
//
//	M = | A  -B |
//	    | B   A |
//
// For Hermitian C, M is symmetric and its spectrum is C's with every
// eigenvalue doubled; an eigenvector (u; v) of M maps back to u + iv.

func realEmbedding(m *Dense) *mat.Dense {
	n := m.dim
	out := mat.NewDense(2*n, 2*n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			re := real(m.data[i*n+j])
			im := imag(m.data[i*n+j])
			out.Set(i, j, re)
			out.Set(i+n, j+n, re)
			out.Set(i, j+n, -im)
			out.Set(i+n, j, im)
		}
	}
	return out
}

// EighHermitian computes the eigendecomposition of a Hermitian matrix.
// Eigenvalues are returned in ascending order with their normalized complex
// eigenvectors, orthonormal within degenerate eigenspaces. The input is not
// checked for Hermiticity; callers symmetrize first where that is not
// guaranteed.
func EighHermitian(m *Dense) ([]float64, [][]complex128, error) {
	n := m.dim
	big := 2 * n

	data := make([]float64, big*big)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			re := real(m.data[i*n+j])
			im := imag(m.data[i*n+j])
			data[i*big+j] = re
			data[(i+n)*big+(j+n)] = re
			data[i*big+(j+n)] = -im
			data[(i+n)*big+j] = im
		}
	}
	sym := mat.NewSymDense(big, data)

	var es mat.EigenSym
	if ok := es.Factorize(sym, true); !ok {
		return nil, nil, fmt.Errorf("cmat: eigendecomposition failed to converge")
	}
	allVals := es.Values(nil)
	var allVecs mat.Dense
	es.VectorsTo(&allVecs)

	// Each eigenvalue of the complex matrix appears twice in the embedding,
	// and inside a degenerate eigenspace two embedding columns can map back
	// to the same complex vector up to phase. Walk the columns in ascending
	// eigenvalue order, orthogonalize each mapped vector against the accepted
	// vectors of near-equal eigenvalue, and keep the n independent ones.
	maxAbs := math.Abs(allVals[0])
	if a := math.Abs(allVals[big-1]); a > maxAbs {
		maxAbs = a
	}
	groupTol := 1e-8 * (1 + maxAbs)

	vals := make([]float64, 0, n)
	vecs := make([][]complex128, 0, n)
	for col := 0; col < big && len(vecs) < n; col++ {
		vec := make([]complex128, n)
		for i := 0; i < n; i++ {
			vec[i] = complex(allVecs.At(i, col), allVecs.At(i+n, col))
		}
		for k := len(vecs) - 1; k >= 0 && allVals[col]-vals[k] <= groupTol; k-- {
			var inner complex128
			for i, s := range vecs[k] {
				inner += complex(real(s), -imag(s)) * vec[i]
			}
			for i := range vec {
				vec[i] -= inner * vecs[k][i]
			}
		}
		var norm float64
		for _, v := range vec {
			norm += real(v)*real(v) + imag(v)*imag(v)
		}
		norm = math.Sqrt(norm)
		if norm <= 1e-8 {
			// Dependent on an already-accepted vector of the same
			// eigenvalue; its partner column carries nothing new.
			continue
		}
		inv := complex(1/norm, 0)
		for i := range vec {
			vec[i] *= inv
		}
		vals = append(vals, allVals[col])
		vecs = append(vecs, vec)
	}
	if len(vecs) != n {
		return nil, nil, fmt.Errorf("cmat: eigenvector extraction kept %d of %d directions", len(vecs), n)
	}
	return vals, vecs, nil
}

// Solve solves the complex linear system A·X = B through the real embedding
// and gonum's dense LU solver.
func Solve(a, b *Dense) (*Dense, error) {
	if a.dim != b.dim {
		return nil, fmt.Errorf("cmat: solve dimension mismatch %d vs %d", a.dim, b.dim)
	}
	n := a.dim
	lhs := realEmbedding(a)

	rhs := mat.NewDense(2*n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			rhs.Set(i, j, real(b.data[i*n+j]))
			rhs.Set(i+n, j, imag(b.data[i*n+j]))
		}
	}

	var x mat.Dense
	if err := x.Solve(lhs, rhs); err != nil {
		return nil, fmt.Errorf("cmat: linear solve failed: %w", err)
	}

	out := NewDense(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			out.data[i*n+j] = complex(x.At(i, j), x.At(i+n, j))
		}
	}
	return out, nil
}
