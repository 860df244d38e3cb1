// Package evolution implements the per-system operator registry and the
// Lindblad master-equation integrator.
//
// Configuration is a two-phase design: a Builder collects the raw operators,
// and Finalize produces an immutable System with the derived-operator caches
// (L†, L†L) precomputed. Stepping an unfinalized registry is impossible by
// construction: there is nothing to step until Finalize has returned a
// System. Re-configuration means building and finalizing again.
package evolution

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/lindblad/pkg/cmat"
)

// Builder accumulates the operators of one open quantum system.
type Builder struct {
	log       zerolog.Logger
	dim       int
	hamDense  *cmat.Dense
	hamSparse *cmat.Sparse
	lindblads []*cmat.Sparse
}

// NewBuilder creates an empty registry.
func NewBuilder(log zerolog.Logger) *Builder {
	return &Builder{log: log}
}

// SetDimension sets the Hilbert-space dimension D. Must be called before any
// operator is added.
func (b *Builder) SetDimension(dim int) error {
	if dim <= 0 {
		return fmt.Errorf("evolution: dimension must be positive, got %d", dim)
	}
	b.dim = dim
	return nil
}

// SetHamiltonianPacked sets a dense Hamiltonian from the packed wire format
// (row-major interleaved re/im doubles, length 2·D²).
func (b *Builder) SetHamiltonianPacked(packed []float64) error {
	if b.dim == 0 {
		return fmt.Errorf("evolution: set dimension before the Hamiltonian")
	}
	h, err := cmat.Unpack(packed, b.dim)
	if err != nil {
		return fmt.Errorf("evolution: hamiltonian: %w", err)
	}
	b.hamDense = h
	b.hamSparse = nil
	return nil
}

// SetHamiltonianTriplets sets a sparse Hamiltonian from a triplet stream.
func (b *Builder) SetHamiltonianTriplets(stream []float64) error {
	if b.dim == 0 {
		return fmt.Errorf("evolution: set dimension before the Hamiltonian")
	}
	h, err := cmat.FromTriplets(stream, b.dim)
	if err != nil {
		return fmt.Errorf("evolution: hamiltonian: %w", err)
	}
	b.hamSparse = h
	b.hamDense = nil
	return nil
}

// AddLindbladTriplets appends one Lindblad operator from a triplet stream.
func (b *Builder) AddLindbladTriplets(stream []float64) error {
	if b.dim == 0 {
		return fmt.Errorf("evolution: set dimension before Lindblad operators")
	}
	l, err := cmat.FromTriplets(stream, b.dim)
	if err != nil {
		return fmt.Errorf("evolution: lindblad operator %d: %w", len(b.lindblads), err)
	}
	b.lindblads = append(b.lindblads, l)
	return nil
}

// LindbladCount returns the number of operators added so far.
func (b *Builder) LindbladCount() int { return len(b.lindblads) }

// Clear drops every configured operator, keeping the logger.
func (b *Builder) Clear() {
	b.dim = 0
	b.hamDense = nil
	b.hamSparse = nil
	b.lindblads = nil
}

// Finalize validates the configuration, symmetrizes the Hamiltonian and
// precomputes L† and L†L for every Lindblad operator, returning an immutable
// System. The Builder may be reused afterwards; the System never changes.
func (b *Builder) Finalize() (*System, error) {
	if b.dim == 0 {
		return nil, fmt.Errorf("evolution: finalize without a dimension")
	}

	sys := &System{
		log: b.log,
		dim: b.dim,
	}

	switch {
	case b.hamDense != nil:
		sys.hamDense = b.hamDense.Symmetrize()
	case b.hamSparse != nil:
		sym, err := b.hamSparse.Add(b.hamSparse.Adjoint())
		if err != nil {
			return nil, fmt.Errorf("evolution: symmetrize hamiltonian: %w", err)
		}
		sys.hamSparse = sym.Scale(0.5)
	}

	sys.lindblads = make([]lindbladOp, len(b.lindblads))
	for i, l := range b.lindblads {
		dag := l.Adjoint()
		sys.lindblads[i] = lindbladOp{
			op:    l,
			dag:   dag,
			ldagL: dag.MulSparse(l),
		}
	}

	b.log.Debug().
		Int("dim", sys.dim).
		Int("lindblad_ops", len(sys.lindblads)).
		Bool("hamiltonian", sys.HasHamiltonian()).
		Msg("system finalized")

	return sys, nil
}
