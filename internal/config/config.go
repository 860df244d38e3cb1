// Package config provides configuration for the simulator binary.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the simulator configuration. The engine itself takes no
// configuration; everything here shapes the demo scenario and logging.
type Config struct {
	LogLevel  string
	LogPretty bool

	Systems int     // number of systems to register
	Qubits  int     // qubits per system (dimension 2^n)
	Steps   int     // lookahead depth
	Dt      float64 // per-step Δt
	MaxDt   float64 // stability bound Δt_max

	SnapshotPath string // msgpack dump of lookahead snapshots; empty disables
}

// Load reads configuration from the environment, with a .env file as
// optional source.
func Load() (*Config, error) {
	// .env is optional; missing file is not an error
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogPretty:    getEnvBool("LOG_PRETTY", true),
		Systems:      getEnvInt("SIM_SYSTEMS", 3),
		Qubits:       getEnvInt("SIM_QUBITS", 3),
		Steps:        getEnvInt("SIM_STEPS", 10),
		Dt:           getEnvFloat("SIM_DT", 0.1),
		MaxDt:        getEnvFloat("SIM_MAX_DT", 0.02),
		SnapshotPath: getEnv("SNAPSHOT_PATH", ""),
	}

	if cfg.Systems < 1 {
		return nil, fmt.Errorf("config: SIM_SYSTEMS must be at least 1, got %d", cfg.Systems)
	}
	if cfg.Qubits < 1 {
		return nil, fmt.Errorf("config: SIM_QUBITS must be at least 1, got %d", cfg.Qubits)
	}
	if cfg.Steps < 1 {
		return nil, fmt.Errorf("config: SIM_STEPS must be at least 1, got %d", cfg.Steps)
	}
	if cfg.Dt <= 0 || cfg.MaxDt <= 0 {
		return nil, fmt.Errorf("config: SIM_DT and SIM_MAX_DT must be positive")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
