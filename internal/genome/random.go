package genome

import (
	"fmt"
	"math/rand"
)

// InitWeightRange bounds the uniform distribution used for fresh genomes.
// Generation-zero weights and biases are drawn from [-InitWeightRange, InitWeightRange].
const InitWeightRange = 0.5

// Random builds a genome for the layer size chain sizes[0] -> sizes[1] -> ...
// with every weight and bias drawn uniformly from the bounded init range.
// The chain needs at least an input and an output entry. All hidden layers
// use activation; the final layer uses outputActivation.
func Random(rng *rand.Rand, sizes []int, activation, outputActivation string) (NetworkGenome, error) {
	if rng == nil {
		return NetworkGenome{}, fmt.Errorf("random source is required")
	}
	if len(sizes) < 2 {
		return NetworkGenome{}, fmt.Errorf("%w: need at least input and output sizes, got %d", ErrShape, len(sizes))
	}
	for i, size := range sizes {
		if size <= 0 {
			return NetworkGenome{}, fmt.Errorf("%w: layer size %d is %d", ErrShape, i, size)
		}
	}
	if activation == "" || outputActivation == "" {
		return NetworkGenome{}, fmt.Errorf("%w: activation is required", ErrShape)
	}

	layers := make([]LayerSpec, 0, len(sizes)-1)
	for i := 0; i < len(sizes)-1; i++ {
		act := activation
		if i == len(sizes)-2 {
			act = outputActivation
		}
		layers = append(layers, randomLayer(rng, sizes[i], sizes[i+1], act))
	}
	return NetworkGenome{Layers: layers}, nil
}

func randomLayer(rng *rand.Rand, inputs, outputs int, activation string) LayerSpec {
	weights := make([]float64, inputs*outputs)
	for i := range weights {
		weights[i] = uniformWeight(rng)
	}
	biases := make([]float64, outputs)
	for i := range biases {
		biases[i] = uniformWeight(rng)
	}
	return LayerSpec{
		Inputs:     inputs,
		Outputs:    outputs,
		Weights:    weights,
		Biases:     biases,
		Activation: activation,
	}
}

func uniformWeight(rng *rand.Rand) float64 {
	return (rng.Float64()*2 - 1) * InitWeightRange
}
