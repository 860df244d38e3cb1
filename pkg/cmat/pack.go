package cmat

import "fmt"

// Pack serializes the matrix into the wire format used across the call
// boundary: row-major, interleaved real/imag doubles, length 2·D².
func (m *Dense) Pack() []float64 {
	d := m.dim
	packed := make([]float64, d*d*2)
	for i := 0; i < d; i++ {
		for j := 0; j < d; j++ {
			idx := (i*d + j) * 2
			v := m.data[i*d+j]
			packed[idx] = real(v)
			packed[idx+1] = imag(v)
		}
	}
	return packed
}

// Unpack deserializes a packed dense matrix of the given dimension.
func Unpack(packed []float64, dim int) (*Dense, error) {
	if len(packed) != dim*dim*2 {
		return nil, fmt.Errorf("cmat: packed length %d does not match dimension %d (want %d)",
			len(packed), dim, dim*dim*2)
	}
	m := NewDense(dim)
	for i := 0; i < dim; i++ {
		for j := 0; j < dim; j++ {
			idx := (i*dim + j) * 2
			m.data[i*dim+j] = complex(packed[idx], packed[idx+1])
		}
	}
	return m, nil
}
