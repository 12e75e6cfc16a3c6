// Package config reads and writes the .progcheck.yaml configuration file.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"progcheck/internal/ir"
	"progcheck/internal/solver"
	"progcheck/internal/verify"
)

// FileName is the configuration file looked up in the working directory.
const FileName = ".progcheck.yaml"

const (
	SolverBounded = "bounded"
	SolverProcess = "process"
)

// Config represents the whole configuration file.
type Config struct {
	Solver   SolverConfig   `yaml:"solver"`
	Analysis AnalysisConfig `yaml:"analysis"`
}

type SolverConfig struct {
	Kind          string        `yaml:"kind"`
	Command       string        `yaml:"command,omitempty"`
	Args          []string      `yaml:"args,omitempty"`
	Bound         int64         `yaml:"bound,omitempty"`
	MaxCandidates int           `yaml:"max_candidates,omitempty"`
	Timeout       time.Duration `yaml:"timeout"`
}

type AnalysisConfig struct {
	Optimize    bool `yaml:"optimize"`
	UnrollDepth int  `yaml:"unroll_depth"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Solver: SolverConfig{
			Kind:    SolverBounded,
			Command: "z3",
			Args:    []string{"-in"},
			Bound:   solver.DefaultBound,
			Timeout: 10 * time.Second,
		},
		Analysis: AnalysisConfig{
			Optimize: true,
		},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	config := Default()

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return config, err
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return config, fmt.Errorf("%s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return config, fmt.Errorf("%s: %w", path, err)
	}
	return config, nil
}

// Write stores config at path, replacing any existing file.
func Write(path string, config Config) error {
	d, err := yaml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(path, d, 0o644)
}

func (c Config) Validate() error {
	switch c.Solver.Kind {
	case SolverBounded:
	case SolverProcess:
		if c.Solver.Command == "" {
			return errors.New("solver.command is required for the process solver")
		}
	default:
		return fmt.Errorf("unknown solver.kind %q, want %q or %q", c.Solver.Kind, SolverBounded, SolverProcess)
	}
	if c.Solver.Timeout < 0 {
		return errors.New("solver.timeout must not be negative")
	}
	if c.Analysis.UnrollDepth < 0 {
		return errors.New("analysis.unroll_depth must not be negative")
	}
	return nil
}

// NewSolver builds the solver the configuration selects.
func (c Config) NewSolver() solver.Solver {
	if c.Solver.Kind == SolverProcess {
		return solver.Process{Command: c.Solver.Command, Args: c.Solver.Args}
	}
	return solver.Bounded{Bound: c.Solver.Bound, MaxCandidates: c.Solver.MaxCandidates}
}

// BuildOptions returns the SSA builder options.
func (c Config) BuildOptions() ir.BuildOptions {
	return ir.BuildOptions{UnrollDepth: c.Analysis.UnrollDepth}
}

// NewChecker wires the configured solver and analysis options together.
func (c Config) NewChecker() *verify.Checker {
	return verify.NewChecker(c.NewSolver(), verify.Options{
		Build:    c.BuildOptions(),
		Optimize: c.Analysis.Optimize,
		Timeout:  c.Solver.Timeout,
	})
}
