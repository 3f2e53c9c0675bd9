package evo

import (
	"fmt"
	"math/rand"

	"github.com/cjburkey01/fafevosim/internal/genome"
)

// UniformCrossover builds a child by drawing every weight and bias
// independently from either parent with equal probability. Parents must
// share a topology; within a generation they always do.
func UniformCrossover(rng *rand.Rand, a, b genome.NetworkGenome) (genome.NetworkGenome, error) {
	if rng == nil {
		return genome.NetworkGenome{}, fmt.Errorf("random source is required")
	}
	if !a.SameTopology(b) {
		return genome.NetworkGenome{}, fmt.Errorf("%w: crossover parents differ in topology", genome.ErrShape)
	}

	child := a.Clone()
	for li := range child.Layers {
		layer := &child.Layers[li]
		other := b.Layers[li]
		for i := range layer.Weights {
			if rng.Float64() < 0.5 {
				layer.Weights[i] = other.Weights[i]
			}
		}
		for i := range layer.Biases {
			if rng.Float64() < 0.5 {
				layer.Biases[i] = other.Biases[i]
			}
		}
	}
	return child, nil
}
