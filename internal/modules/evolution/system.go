package evolution

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/aristath/lindblad/pkg/cmat"
	"github.com/aristath/lindblad/pkg/expm"
)

// traceEps: traces smaller than this are left alone during renormalization
// rather than divided through.
const traceEps = 1e-10

// lindbladOp bundles one jump operator with its derived-operator caches,
// both computed once at finalization.
type lindbladOp struct {
	op    *cmat.Sparse // L
	dag   *cmat.Sparse // L†
	ldagL *cmat.Sparse // L†L
}

// System is a finalized, immutable operator registry for one open quantum
// system. All methods are pure: the same operators, state and Δt always
// produce the same output, and the cached operators are never mutated.
type System struct {
	log       zerolog.Logger
	dim       int
	hamDense  *cmat.Dense
	hamSparse *cmat.Sparse
	lindblads []lindbladOp
}

// Dim returns the Hilbert-space dimension D.
func (s *System) Dim() int { return s.dim }

// LindbladCount returns the number of jump operators.
func (s *System) LindbladCount() int { return len(s.lindblads) }

// HasHamiltonian reports whether a Hamiltonian was configured.
func (s *System) HasHamiltonian() bool {
	return s.hamDense != nil || s.hamSparse != nil
}

// rhs evaluates the full Lindblad right-hand side at the given state:
//
//	dρ/dt = −i[H, ρ] + Σ_k (L_kρL_k† − ½{L_k†L_k, ρ})
func (s *System) rhs(rho *cmat.Dense) *cmat.Dense {
	var drho *cmat.Dense

	switch {
	case s.hamSparse != nil:
		comm := s.hamSparse.MulDense(rho).Sub(s.hamSparse.DenseMul(rho))
		drho = comm.Scale(complex(0, -1))
	case s.hamDense != nil:
		drho = s.hamDense.Commutator(rho).Scale(complex(0, -1))
	default:
		drho = cmat.NewDense(s.dim)
	}

	for _, l := range s.lindblads {
		drho = drho.Add(l.op.Dissipator(rho, l.dag, l.ldagL))
	}
	return drho
}

// Step advances ρ by one explicit Euler sub-step of size dt. The trace is
// not renormalized here; per-step drift is O(dt²) and Evolve absorbs it.
func (s *System) Step(rho *cmat.Dense, dt float64) *cmat.Dense {
	return rho.AddScaled(complex(dt, 0), s.rhs(rho))
}

// Evolve advances ρ by dt. When dt exceeds the stability bound maxDt the
// interval is subdivided into N = ⌈dt/maxDt⌉ equal sub-steps, each
// recomputing the right-hand side from the current state. The trace is
// renormalized once after the sub-step loop to absorb truncation error.
func (s *System) Evolve(rho *cmat.Dense, dt, maxDt float64) *cmat.Dense {
	steps := 1
	subDt := dt
	if maxDt > 0 && dt > maxDt {
		steps = int(math.Ceil(dt / maxDt))
		subDt = dt / float64(steps)
	}

	out := rho
	for i := 0; i < steps; i++ {
		out = s.Step(out, subDt)
	}
	return renormalize(out)
}

// EvolvePacked is the wire-format entry point for direct single-system
// stepping: packed density matrix in, packed density matrix out. A shape
// mismatch is reported and the input returned unchanged.
func (s *System) EvolvePacked(packed []float64, dt, maxDt float64) []float64 {
	rho, err := cmat.Unpack(packed, s.dim)
	if err != nil {
		s.log.Warn().Err(err).Int("dim", s.dim).Msg("evolve: bad density matrix, returning input unchanged")
		return packed
	}
	return s.Evolve(rho, dt, maxDt).Pack()
}

// EvolveUnitary propagates ρ through the exact unitary U = exp(−iH·dt),
// returning UρU†. Dissipation is ignored; this is the path for large time
// jumps with no Lindblad terms, where Euler integration would be unstable.
func (s *System) EvolveUnitary(rho *cmat.Dense, dt float64) (*cmat.Dense, error) {
	if !s.HasHamiltonian() {
		return rho.Clone(), nil
	}
	h := s.hamDense
	if h == nil {
		h = s.hamSparse.ToDense()
	}
	u, err := expm.Exp(h.Scale(complex(0, -dt)))
	if err != nil {
		return nil, fmt.Errorf("evolution: unitary propagator: %w", err)
	}
	return u.Mul(rho).Mul(u.Adjoint()), nil
}

// renormalize rescales ρ so Tr(ρ) = 1, guarding against near-zero traces.
func renormalize(rho *cmat.Dense) *cmat.Dense {
	tr := rho.TraceReal()
	if math.Abs(tr) > traceEps {
		return rho.Scale(complex(1/tr, 0))
	}
	return rho
}
