// Package lookahead batches multi-step evolution across many independent
// systems into single calls, amortizing the cost of crossing the boundary
// between the orchestrating application and the engine. Systems are stored
// in an arena and addressed by opaque integer handles.
package lookahead

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/lindblad/internal/modules/evolution"
	"github.com/aristath/lindblad/internal/modules/observables"
	"github.com/aristath/lindblad/pkg/cmat"
)

// SystemSpec describes one system to register: dimension, an optional
// Hamiltonian (packed dense or sparse triplets, at most one of the two) and
// zero or more Lindblad operators as triplet streams. NumQubits controls
// the mutual-information vector of lookahead results; systems that are not
// qubit registers pass 0.
type SystemSpec struct {
	Dim                 int
	Hamiltonian         []float64
	HamiltonianTriplets []float64
	Lindblads           [][]float64
	NumQubits           int
}

// SystemResult holds one system's lookahead output: the ordered snapshot
// sequence, the final-snapshot mutual-information vector in fixed pair
// order (empty below two qubits) and the final-snapshot Bloch blocks
// (empty for non-power-of-two dimensions).
type SystemResult struct {
	Snapshots         [][]float64
	MutualInformation []float64
	Bloch             []float64
}

// Result is the output of one batched lookahead call, one entry per
// provided state in input order.
type Result struct {
	Systems []SystemResult
}

type registration struct {
	sys       *evolution.System
	numQubits int
}

// Scheduler owns a collection of finalized systems. It is not safe for
// concurrent use; the caller serializes registration against evolution, and
// independent collections get independent Schedulers.
type Scheduler struct {
	log     zerolog.Logger
	systems []registration
}

// NewScheduler creates an empty scheduler.
func NewScheduler(log zerolog.Logger) *Scheduler {
	return &Scheduler{log: log}
}

// RegisterSystem builds and finalizes one system from its spec, returning
// the opaque handle used by the evolve calls.
func (s *Scheduler) RegisterSystem(spec SystemSpec) (int, error) {
	b := evolution.NewBuilder(s.log)
	if err := b.SetDimension(spec.Dim); err != nil {
		return 0, err
	}
	switch {
	case len(spec.Hamiltonian) > 0:
		if err := b.SetHamiltonianPacked(spec.Hamiltonian); err != nil {
			return 0, err
		}
	case len(spec.HamiltonianTriplets) > 0:
		if err := b.SetHamiltonianTriplets(spec.HamiltonianTriplets); err != nil {
			return 0, err
		}
	}
	for _, stream := range spec.Lindblads {
		if len(stream) == 0 {
			continue
		}
		if err := b.AddLindbladTriplets(stream); err != nil {
			return 0, err
		}
	}
	sys, err := b.Finalize()
	if err != nil {
		return 0, fmt.Errorf("lookahead: register system: %w", err)
	}

	handle := len(s.systems)
	s.systems = append(s.systems, registration{sys: sys, numQubits: spec.NumQubits})

	s.log.Info().
		Int("handle", handle).
		Int("dim", spec.Dim).
		Int("num_qubits", spec.NumQubits).
		Int("lindblad_ops", sys.LindbladCount()).
		Msg("registered system")

	return handle, nil
}

// SystemCount returns the number of registered systems.
func (s *Scheduler) SystemCount() int { return len(s.systems) }

// Clear drops every registered system; existing handles become invalid.
func (s *Scheduler) Clear() { s.systems = nil }

// EvolveAllLookahead advances every system by `steps` evolutions of size dt
// (subcycled against maxDt) in one call. states carries the current packed
// density matrix per handle, in handle order; states beyond the registered
// count are reported and ignored, and a short states slice leaves the
// trailing systems unevolved, likewise reported. The result holds, per
// system, all `steps` snapshots plus final-snapshot mutual information and
// Bloch metrics.
func (s *Scheduler) EvolveAllLookahead(states [][]float64, steps int, dt, maxDt float64) Result {
	batch := uuid.NewString()

	n := len(states)
	switch {
	case n > len(s.systems):
		s.log.Warn().
			Str("batch", batch).
			Int("states", n).
			Int("registered", len(s.systems)).
			Msg("more states than registered systems, extra states ignored")
		n = len(s.systems)
	case n < len(s.systems):
		s.log.Warn().
			Str("batch", batch).
			Int("states", n).
			Int("registered", len(s.systems)).
			Msg("fewer states than registered systems, trailing systems skipped")
	}

	s.log.Debug().
		Str("batch", batch).
		Int("systems", n).
		Int("steps", steps).
		Float64("dt", dt).
		Float64("max_dt", maxDt).
		Msg("lookahead batch start")

	out := Result{Systems: make([]SystemResult, n)}
	for handle := 0; handle < n; handle++ {
		out.Systems[handle] = s.evolveSteps(handle, states[handle], steps, dt, maxDt)
	}
	return out
}

// EvolveSingleSystem repeats the lookahead for one system, used to refill a
// lookahead buffer after an out-of-band event invalidated previously
// computed future states. An invalid handle is reported and the input state
// is echoed back unchanged as the only snapshot.
func (s *Scheduler) EvolveSingleSystem(handle int, state []float64, steps int, dt, maxDt float64) SystemResult {
	if handle < 0 || handle >= len(s.systems) {
		s.log.Warn().
			Int("handle", handle).
			Int("registered", len(s.systems)).
			Msg("invalid system handle, returning input unchanged")
		return SystemResult{
			Snapshots:         [][]float64{state},
			MutualInformation: []float64{},
		}
	}
	return s.evolveSteps(handle, state, steps, dt, maxDt)
}

func (s *Scheduler) evolveSteps(handle int, state []float64, steps int, dt, maxDt float64) SystemResult {
	reg := s.systems[handle]

	rho, err := cmat.Unpack(state, reg.sys.Dim())
	if err != nil {
		s.log.Warn().
			Err(err).
			Int("handle", handle).
			Msg("bad density matrix, returning input unchanged")
		return SystemResult{
			Snapshots:         [][]float64{state},
			MutualInformation: []float64{},
		}
	}

	res := SystemResult{
		Snapshots:         make([][]float64, 0, steps),
		MutualInformation: []float64{},
	}
	for i := 0; i < steps; i++ {
		rho = reg.sys.Evolve(rho, dt, maxDt)
		res.Snapshots = append(res.Snapshots, rho.Pack())
	}
	if steps == 0 {
		return res
	}

	if reg.numQubits >= 2 {
		res.MutualInformation = observables.AllMutualInformation(rho, reg.numQubits)
	}
	if blocks, err := observables.AllBlochBlocks(rho); err == nil {
		res.Bloch = blocks
	}
	return res
}
