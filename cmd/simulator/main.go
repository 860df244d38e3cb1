// Package main runs a demonstration scenario against the evolution engine:
// a handful of damped qubit registers evolved through a batched lookahead,
// with observables logged per system. It stands in for the orchestrating
// application the engine normally runs under.
package main

import (
	"math"
	"os"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/aristath/lindblad/internal/config"
	"github.com/aristath/lindblad/internal/modules/lookahead"
	"github.com/aristath/lindblad/internal/modules/observables"
	"github.com/aristath/lindblad/pkg/cmat"
	"github.com/aristath/lindblad/pkg/logger"
)

// snapshotDump is the msgpack layout of an exported lookahead result.
type snapshotDump struct {
	Dim       int         `msgpack:"dim"`
	NumQubits int         `msgpack:"num_qubits"`
	Snapshots [][]float64 `msgpack:"snapshots"`
	MI        []float64   `msgpack:"mi"`
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New(logger.Config{Level: "info", Pretty: true})
		fallback.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	logger.SetGlobalLogger(log)

	sched := lookahead.NewScheduler(log)

	states := make([][]float64, 0, cfg.Systems)
	for k := 0; k < cfg.Systems; k++ {
		gamma := 0.05 * float64(k+1)
		spec := dampedRegisterSpec(cfg.Qubits, 0.5, gamma)
		if _, err := sched.RegisterSystem(spec); err != nil {
			log.Fatal().Err(err).Int("system", k).Msg("failed to register system")
		}
		states = append(states, excitedState(spec.Dim))
	}

	result := sched.EvolveAllLookahead(states, cfg.Steps, cfg.Dt, cfg.MaxDt)

	for k, sys := range result.Systems {
		final := sys.Snapshots[len(sys.Snapshots)-1]
		rho, err := cmat.Unpack(final, 1<<cfg.Qubits)
		if err != nil {
			log.Error().Err(err).Int("system", k).Msg("bad final snapshot")
			continue
		}
		log.Info().
			Int("system", k).
			Float64("trace", rho.TraceReal()).
			Float64("purity", observables.Purity(rho)).
			Float64("max_mi", maxOf(sys.MutualInformation)).
			Msg("lookahead complete")
	}

	if cfg.SnapshotPath != "" {
		if err := dumpSnapshots(cfg, result); err != nil {
			log.Error().Err(err).Str("path", cfg.SnapshotPath).Msg("snapshot dump failed")
		} else {
			log.Info().Str("path", cfg.SnapshotPath).Msg("snapshots written")
		}
	}
}

// dampedRegisterSpec builds one scenario system: a transverse-field qubit
// register with an amplitude-damping channel per qubit.
func dampedRegisterSpec(numQubits int, omega, gamma float64) lookahead.SystemSpec {
	dim := 1 << numQubits

	// H = ω Σ_q σ_x^(q): couples each basis state to its bit-q flip.
	h := cmat.NewDense(dim)
	for q := 0; q < numQubits; q++ {
		for i := 0; i < dim; i++ {
			h.Set(i, i^(1<<q), h.At(i, i^(1<<q))+complex(omega, 0))
		}
	}

	// One σ⁻ per qubit scaled by √γ: |…0_q…⟩⟨…1_q…|.
	lindblads := make([][]float64, 0, numQubits)
	amp := math.Sqrt(gamma)
	for q := 0; q < numQubits; q++ {
		stream := make([]float64, 0, dim*2)
		for i := 0; i < dim; i++ {
			if i&(1<<q) != 0 {
				stream = append(stream, float64(i^(1<<q)), float64(i), amp, 0)
			}
		}
		lindblads = append(lindblads, stream)
	}

	return lookahead.SystemSpec{
		Dim:         dim,
		Hamiltonian: h.Pack(),
		Lindblads:   lindblads,
		NumQubits:   numQubits,
	}
}

// excitedState returns the packed pure state |D−1⟩⟨D−1| (all qubits up).
func excitedState(dim int) []float64 {
	rho := cmat.NewDense(dim)
	rho.Set(dim-1, dim-1, 1)
	return rho.Pack()
}

func maxOf(values []float64) float64 {
	var max float64
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	return max
}

func dumpSnapshots(cfg *config.Config, result lookahead.Result) error {
	dumps := make([]snapshotDump, len(result.Systems))
	for i, sys := range result.Systems {
		dumps[i] = snapshotDump{
			Dim:       1 << cfg.Qubits,
			NumQubits: cfg.Qubits,
			Snapshots: sys.Snapshots,
			MI:        sys.MutualInformation,
		}
	}
	data, err := msgpack.Marshal(dumps)
	if err != nil {
		return err
	}
	return os.WriteFile(cfg.SnapshotPath, data, 0o644)
}
