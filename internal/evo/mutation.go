package evo

import (
	"fmt"
	"math/rand"

	"github.com/cjburkey01/fafevosim/internal/genome"
)

// GaussianMutate returns a copy of g where each weight and bias, with
// probability rate, gains additive noise drawn from N(0, sigma). The input
// genome is never modified.
func GaussianMutate(rng *rand.Rand, g genome.NetworkGenome, rate, sigma float64) (genome.NetworkGenome, error) {
	if rng == nil {
		return genome.NetworkGenome{}, fmt.Errorf("random source is required")
	}
	if rate < 0 || rate > 1 {
		return genome.NetworkGenome{}, fmt.Errorf("mutation rate must be in [0,1], got %g", rate)
	}
	if sigma < 0 {
		return genome.NetworkGenome{}, fmt.Errorf("mutation sigma must be >= 0, got %g", sigma)
	}

	mutated := g.Clone()
	for li := range mutated.Layers {
		layer := &mutated.Layers[li]
		for i := range layer.Weights {
			if rng.Float64() < rate {
				layer.Weights[i] += rng.NormFloat64() * sigma
			}
		}
		for i := range layer.Biases {
			if rng.Float64() < rate {
				layer.Biases[i] += rng.NormFloat64() * sigma
			}
		}
	}
	return mutated, nil
}
