package nn

import (
	"errors"
	"fmt"
	"math"

	"github.com/cjburkey01/fafevosim/internal/genome"
)

var ErrNumericInstability = errors.New("numeric instability in forward pass")

// Network is a genome compiled for inference: activation tags resolved to
// functions and per-layer output buffers preallocated. A network keeps no
// state between calls; Forward is a pure function of genome and input.
type Network struct {
	genome  genome.NetworkGenome
	acts    []ActivationFunc
	buffers [][]float64
	inputs  int
	outputs int
}

// Compile validates g against the declared sensor and actuator vector
// lengths, resolves activations, and allocates the scratch buffers the
// forward pass reuses. Shape problems surface here, never per tick.
func Compile(g genome.NetworkGenome, sensorCount, actuatorCount int) (*Network, error) {
	if err := g.Validate(sensorCount, actuatorCount); err != nil {
		return nil, err
	}

	acts := make([]ActivationFunc, len(g.Layers))
	buffers := make([][]float64, len(g.Layers))
	for i, layer := range g.Layers {
		fn, err := GetActivation(layer.Activation)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		acts[i] = fn
		buffers[i] = make([]float64, layer.Outputs)
	}

	return &Network{
		genome:  g.Clone(),
		acts:    acts,
		buffers: buffers,
		inputs:  sensorCount,
		outputs: actuatorCount,
	}, nil
}

// Forward runs one inference pass. The returned slice aliases an internal
// buffer and stays valid only until the next Forward call; callers that
// retain results must copy. Non-finite layer outputs abort with
// ErrNumericInstability instead of being clamped.
func (n *Network) Forward(input []float64) ([]float64, error) {
	if len(input) != n.inputs {
		return nil, fmt.Errorf("%w: input=%d want=%d", genome.ErrShape, len(input), n.inputs)
	}

	current := input
	for li := range n.genome.Layers {
		layer := &n.genome.Layers[li]
		out := n.buffers[li]
		act := n.acts[li]
		for o := 0; o < layer.Outputs; o++ {
			sum := layer.Biases[o]
			row := layer.Weights[o*layer.Inputs : (o+1)*layer.Inputs]
			for i, w := range row {
				sum += w * current[i]
			}
			out[o] = act(sum)
		}
		for o, v := range out {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: layer=%d output=%d", ErrNumericInstability, li, o)
			}
		}
		current = out
	}
	return current, nil
}

// InputSize returns the sensor vector length the network was compiled for.
func (n *Network) InputSize() int { return n.inputs }

// OutputSize returns the actuator vector length the network was compiled for.
func (n *Network) OutputSize() int { return n.outputs }

// Genome returns a copy of the compiled genome. The network's own copy stays
// private so inference can never observe external mutation.
func (n *Network) Genome() genome.NetworkGenome { return n.genome.Clone() }
