// Package evo turns an evaluated generation into the next one: ranking,
// elitism, parent selection, uniform crossover, and Gaussian mutation. Every
// stochastic step draws from an explicitly passed random source so that a
// fixed seed reproduces a run bit for bit.
package evo

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/cjburkey01/fafevosim/internal/genome"
)

// ScoredGenome pairs a genome with its evaluated fitness and its original
// position in the population, which breaks fitness ties deterministically.
type ScoredGenome struct {
	Genome  genome.NetworkGenome `json:"genome"`
	Fitness float64              `json:"fitness"`
	Index   int                  `json:"index"`
}

// Selector chooses parents from ranked genomes for replication.
type Selector interface {
	Name() string
	PickParent(rng *rand.Rand, ranked []ScoredGenome) (genome.NetworkGenome, error)
}

// Rank sorts scored genomes descending by fitness, ties broken by original
// index. The input slice is not modified.
func Rank(scored []ScoredGenome) []ScoredGenome {
	ranked := make([]ScoredGenome, len(scored))
	copy(ranked, scored)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Fitness != ranked[j].Fitness {
			return ranked[i].Fitness > ranked[j].Fitness
		}
		return ranked[i].Index < ranked[j].Index
	})
	return ranked
}

// RouletteSelector picks parents with probability proportional to fitness.
// Negative fitness counts as zero; when the total is zero the pick falls back
// to uniform so selection stays well-defined.
type RouletteSelector struct{}

func (RouletteSelector) Name() string {
	return "roulette"
}

func (RouletteSelector) PickParent(rng *rand.Rand, ranked []ScoredGenome) (genome.NetworkGenome, error) {
	if rng == nil {
		return genome.NetworkGenome{}, fmt.Errorf("random source is required")
	}
	if len(ranked) == 0 {
		return genome.NetworkGenome{}, fmt.Errorf("no genomes to select from")
	}

	total := 0.0
	cumulative := make([]float64, len(ranked))
	for i, scored := range ranked {
		fitness := scored.Fitness
		if fitness < 0 {
			fitness = 0
		}
		total += fitness
		cumulative[i] = total
	}
	if total <= 0 {
		return ranked[rng.Intn(len(ranked))].Genome, nil
	}

	spin := rng.Float64() * total
	for i, cum := range cumulative {
		if spin <= cum {
			return ranked[i].Genome, nil
		}
	}
	return ranked[len(ranked)-1].Genome, nil
}

// TournamentSelector samples Size candidates uniformly and picks the best
// fitness among them. Size defaults to 3 and is capped at the pool size.
type TournamentSelector struct {
	Size int
}

func (TournamentSelector) Name() string {
	return "tournament"
}

func (s TournamentSelector) PickParent(rng *rand.Rand, ranked []ScoredGenome) (genome.NetworkGenome, error) {
	if rng == nil {
		return genome.NetworkGenome{}, fmt.Errorf("random source is required")
	}
	if len(ranked) == 0 {
		return genome.NetworkGenome{}, fmt.Errorf("no genomes to select from")
	}

	size := s.Size
	if size <= 0 {
		size = 3
	}
	if size > len(ranked) {
		size = len(ranked)
	}

	best := ranked[rng.Intn(len(ranked))]
	for i := 1; i < size; i++ {
		candidate := ranked[rng.Intn(len(ranked))]
		if candidate.Fitness > best.Fitness {
			best = candidate
		}
	}
	return best.Genome, nil
}
