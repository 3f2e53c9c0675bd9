package evo

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/cjburkey01/fafevosim/internal/genome"
)

// GenerationStats summarizes one evaluated generation. Survivors and Ticks
// come from the simulation run and are filled in by the caller.
type GenerationStats struct {
	Generation int     `json:"generation"`
	Best       float64 `json:"best"`
	Mean       float64 `json:"mean"`
	Worst      float64 `json:"worst"`
	StdDev     float64 `json:"std_dev"`
	Diversity  int     `json:"diversity"`
	Survivors  int     `json:"survivors"`
	Ticks      int     `json:"ticks"`
}

// Summarize computes fitness statistics and genome diversity for one
// generation. An empty slice yields zeroed stats.
func Summarize(generation int, scored []ScoredGenome) GenerationStats {
	s := GenerationStats{Generation: generation}
	if len(scored) == 0 {
		return s
	}

	fitnesses := make([]float64, len(scored))
	genomes := make([]genome.NetworkGenome, len(scored))
	for i, sg := range scored {
		fitnesses[i] = sg.Fitness
		genomes[i] = sg.Genome
	}

	s.Best = floats.Max(fitnesses)
	s.Worst = floats.Min(fitnesses)
	s.Mean = stat.Mean(fitnesses, nil)
	if len(fitnesses) > 1 {
		s.StdDev = stat.StdDev(fitnesses, nil)
	}
	s.Diversity = genome.CountDistinct(genomes)
	return s
}
