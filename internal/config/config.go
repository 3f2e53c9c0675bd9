// Package config loads run configuration: embedded defaults, an optional
// YAML file layered over them, and validation of the merged result. The
// accessor methods convert the flat YAML shape into the parameter types the
// engine and simulation consume.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cjburkey01/fafevosim/internal/evo"
	"github.com/cjburkey01/fafevosim/internal/nn"
	"github.com/cjburkey01/fafevosim/internal/sim"
	"github.com/cjburkey01/fafevosim/internal/storage"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrConfig marks any rejection by Validate. Callers match it with
// errors.Is.
var ErrConfig = errors.New("invalid configuration")

// Config is the full set of run knobs. Build one with Default or Load,
// apply any caller overrides, then gate it with Validate before starting a
// run. Zero values are rejected rather than defaulted, so a half-built
// Config fails loudly.
type Config struct {
	Run       Run       `yaml:"run"`
	Evolution Evolution `yaml:"evolution"`
	Network   Network   `yaml:"network"`
	Agent     Agent     `yaml:"agent"`
	Fitness   Fitness   `yaml:"fitness"`
	World     World     `yaml:"world"`
	Storage   Storage   `yaml:"storage"`
}

// Run covers the outer loop: how many generations, how long each one may
// last, the seed that makes a run reproducible, and the think-phase worker
// count.
type Run struct {
	Generations int   `yaml:"generations"`
	Seed        int64 `yaml:"seed"`
	Workers     int   `yaml:"workers"`
	TickBudget  int   `yaml:"tick_budget"`
}

type Evolution struct {
	PopulationSize int     `yaml:"population_size"`
	Elitism        int     `yaml:"elitism"`
	MutationRate   float64 `yaml:"mutation_rate"`
	MutationSigma  float64 `yaml:"mutation_sigma"`
	CrossoverRate  float64 `yaml:"crossover_rate"`
	Selection      string  `yaml:"selection"`
	TournamentSize int     `yaml:"tournament_size"`
}

type Network struct {
	HiddenSizes      []int  `yaml:"hidden_sizes"`
	Activation       string `yaml:"activation"`
	OutputActivation string `yaml:"output_activation"`
}

type Agent struct {
	SensorRadius  int     `yaml:"sensor_radius"`
	InitialEnergy float64 `yaml:"initial_energy"`
	EnergyDecay   float64 `yaml:"energy_decay"`
	MaxAge        int     `yaml:"max_age"`
	MoveSpeed     float64 `yaml:"move_speed"`
	TurnSpeed     float64 `yaml:"turn_speed"`
	EatRate       float64 `yaml:"eat_rate"`
}

type Fitness struct {
	FoodWeight     float64 `yaml:"food_weight"`
	SurvivalBonus  float64 `yaml:"survival_bonus"`
	DistanceWeight float64 `yaml:"distance_weight"`
}

type World struct {
	Width       int     `yaml:"width"`
	Height      int     `yaml:"height"`
	FoodCeiling float64 `yaml:"food_ceiling"`
	Regrowth    float64 `yaml:"regrowth"`
}

type Storage struct {
	Backend    string `yaml:"backend"`
	SQLitePath string `yaml:"sqlite_path"`
}

// Default returns the embedded default configuration.
func Default() (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(defaultsYAML, &cfg); err != nil {
		return nil, fmt.Errorf("parse embedded defaults: %w", err)
	}
	return &cfg, nil
}

// Load merges the YAML file at path over the embedded defaults. Fields the
// file omits keep their default values. An empty path loads defaults only.
// The result is not validated; callers apply their overrides first and then
// call Validate.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects the merged configuration before any generation runs.
// Every failure wraps ErrConfig.
func (c *Config) Validate() error {
	if c.Run.Generations <= 0 {
		return fmt.Errorf("%w: run.generations must be > 0, got %d", ErrConfig, c.Run.Generations)
	}
	if c.Run.Workers <= 0 {
		return fmt.Errorf("%w: run.workers must be > 0, got %d", ErrConfig, c.Run.Workers)
	}
	if c.Run.TickBudget <= 0 {
		return fmt.Errorf("%w: run.tick_budget must be > 0, got %d", ErrConfig, c.Run.TickBudget)
	}

	if err := c.EngineConfig().Validate(); err != nil {
		return fmt.Errorf("%w: evolution: %v", ErrConfig, err)
	}
	if err := c.SimParams().Validate(); err != nil {
		return fmt.Errorf("%w: agent: %v", ErrConfig, err)
	}

	for i, size := range c.Network.HiddenSizes {
		if size <= 0 {
			return fmt.Errorf("%w: network.hidden_sizes[%d] must be > 0, got %d", ErrConfig, i, size)
		}
	}
	if _, err := nn.GetActivation(c.Network.Activation); err != nil {
		return fmt.Errorf("%w: network.activation: %v", ErrConfig, err)
	}
	if _, err := nn.GetActivation(c.Network.OutputActivation); err != nil {
		return fmt.Errorf("%w: network.output_activation: %v", ErrConfig, err)
	}

	if c.World.Width <= 0 || c.World.Height <= 0 {
		return fmt.Errorf("%w: world dimensions must be positive, got %dx%d", ErrConfig, c.World.Width, c.World.Height)
	}
	if c.World.FoodCeiling <= 0 {
		return fmt.Errorf("%w: world.food_ceiling must be > 0, got %g", ErrConfig, c.World.FoodCeiling)
	}
	if c.World.Regrowth < 0 {
		return fmt.Errorf("%w: world.regrowth must be >= 0, got %g", ErrConfig, c.World.Regrowth)
	}

	switch c.Storage.Backend {
	case storage.KindMemory:
	case storage.KindSQLite:
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("%w: storage.sqlite_path is required for the sqlite backend", ErrConfig)
		}
	default:
		return fmt.Errorf("%w: unsupported storage backend: %q", ErrConfig, c.Storage.Backend)
	}
	return nil
}

// EngineConfig maps the evolution section onto the engine's config type.
func (c *Config) EngineConfig() evo.Config {
	return evo.Config{
		PopulationSize: c.Evolution.PopulationSize,
		ElitismCount:   c.Evolution.Elitism,
		MutationRate:   c.Evolution.MutationRate,
		MutationSigma:  c.Evolution.MutationSigma,
		CrossoverRate:  c.Evolution.CrossoverRate,
		Selection:      c.Evolution.Selection,
		TournamentSize: c.Evolution.TournamentSize,
	}
}

// SimParams maps the agent and fitness sections onto the simulation's
// parameter type.
func (c *Config) SimParams() sim.Params {
	return sim.Params{
		SensorRadius:  c.Agent.SensorRadius,
		InitialEnergy: c.Agent.InitialEnergy,
		EnergyDecay:   c.Agent.EnergyDecay,
		MaxAge:        c.Agent.MaxAge,
		MoveSpeed:     c.Agent.MoveSpeed,
		TurnSpeed:     c.Agent.TurnSpeed,
		EatRate:       c.Agent.EatRate,
		Rule: sim.FitnessRule{
			FoodWeight:     c.Fitness.FoodWeight,
			SurvivalBonus:  c.Fitness.SurvivalBonus,
			DistanceWeight: c.Fitness.DistanceWeight,
		},
	}
}

// LayerSizes builds the full layer size chain for a fresh genome: the sense
// vector width implied by the sensor radius, the configured hidden sizes,
// and the fixed actuator width.
func (c *Config) LayerSizes() []int {
	sizes := make([]int, 0, len(c.Network.HiddenSizes)+2)
	sizes = append(sizes, c.SimParams().SensorCount())
	sizes = append(sizes, c.Network.HiddenSizes...)
	sizes = append(sizes, sim.ActuatorCount)
	return sizes
}
