package evo

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/cjburkey01/fafevosim/internal/genome"
)

// Selection strategy names accepted by Config.
const (
	SelectionRoulette   = "roulette"
	SelectionTournament = "tournament"
)

// Config drives one evolution step. Validation happens in NewEngine so a bad
// configuration is rejected before any generation runs.
type Config struct {
	PopulationSize int
	ElitismCount   int
	MutationRate   float64
	MutationSigma  float64
	CrossoverRate  float64
	Selection      string
	TournamentSize int
}

func (c Config) Validate() error {
	if c.PopulationSize <= 0 {
		return fmt.Errorf("population size must be > 0, got %d", c.PopulationSize)
	}
	if c.ElitismCount < 0 || c.ElitismCount > c.PopulationSize {
		return fmt.Errorf("elitism count must be in [0,%d], got %d", c.PopulationSize, c.ElitismCount)
	}
	if c.MutationRate < 0 || c.MutationRate > 1 {
		return fmt.Errorf("mutation rate must be in [0,1], got %g", c.MutationRate)
	}
	if c.MutationSigma < 0 {
		return fmt.Errorf("mutation sigma must be >= 0, got %g", c.MutationSigma)
	}
	if c.CrossoverRate < 0 || c.CrossoverRate > 1 {
		return fmt.Errorf("crossover rate must be in [0,1], got %g", c.CrossoverRate)
	}
	switch c.Selection {
	case SelectionRoulette, SelectionTournament:
	default:
		return fmt.Errorf("unsupported selection strategy: %q", c.Selection)
	}
	if c.TournamentSize < 0 {
		return fmt.Errorf("tournament size must be >= 0, got %d", c.TournamentSize)
	}
	return nil
}

// Engine produces the next generation's genomes from an evaluated one.
type Engine struct {
	cfg      Config
	selector Selector
}

func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var selector Selector
	switch cfg.Selection {
	case SelectionRoulette:
		selector = RouletteSelector{}
	case SelectionTournament:
		selector = TournamentSelector{Size: cfg.TournamentSize}
	}
	return &Engine{cfg: cfg, selector: selector}, nil
}

// Selector returns the configured selection strategy.
func (e *Engine) Selector() Selector { return e.selector }

// Evolve ranks the scored genomes and assembles exactly PopulationSize
// offspring: the top ElitismCount genomes cloned unchanged, the rest bred by
// selection, optional uniform crossover, and Gaussian mutation. A population
// of one breeds clone-only, and ElitismCount == PopulationSize replays the
// ranked genomes without variation.
func (e *Engine) Evolve(ctx context.Context, rng *rand.Rand, scored []ScoredGenome) ([]genome.NetworkGenome, error) {
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}
	if len(scored) != e.cfg.PopulationSize {
		return nil, fmt.Errorf("scored genomes=%d, population size=%d", len(scored), e.cfg.PopulationSize)
	}

	ranked := Rank(scored)
	next := make([]genome.NetworkGenome, 0, e.cfg.PopulationSize)
	for i := 0; i < e.cfg.ElitismCount; i++ {
		next = append(next, ranked[i].Genome.Clone())
	}
	for len(next) < e.cfg.PopulationSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		child, err := e.breed(rng, ranked)
		if err != nil {
			return nil, err
		}
		next = append(next, child)
	}
	return next, nil
}

func (e *Engine) breed(rng *rand.Rand, ranked []ScoredGenome) (genome.NetworkGenome, error) {
	parent, err := e.selector.PickParent(rng, ranked)
	if err != nil {
		return genome.NetworkGenome{}, fmt.Errorf("pick parent: %w", err)
	}

	var child genome.NetworkGenome
	if e.cfg.PopulationSize >= 2 && rng.Float64() < e.cfg.CrossoverRate {
		mate, err := e.selector.PickParent(rng, ranked)
		if err != nil {
			return genome.NetworkGenome{}, fmt.Errorf("pick mate: %w", err)
		}
		child, err = UniformCrossover(rng, parent, mate)
		if err != nil {
			return genome.NetworkGenome{}, err
		}
	} else {
		child = parent.Clone()
	}

	return GaussianMutate(rng, child, e.cfg.MutationRate, e.cfg.MutationSigma)
}
