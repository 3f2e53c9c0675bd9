// Package genome defines the serializable network description that is the
// unit of evolution: an ordered list of dense layer specs. Genomes are
// immutable once constructed; every operator returns a fresh genome so that
// lineage stays traceable.
package genome

import (
	"errors"
	"fmt"
	"math"
)

// Activation tags understood by the network compiler.
const (
	ActivationIdentity = "identity"
	ActivationSigmoid  = "sigmoid"
	ActivationTanh     = "tanh"
	ActivationReLU     = "relu"
)

var ErrShape = errors.New("genome shape mismatch")

// LayerSpec describes one dense layer: Outputs neurons, each reading Inputs
// values. Weights are row-major; the weight from input i into output o lives
// at index o*Inputs + i. len(Weights) == Inputs*Outputs and
// len(Biases) == Outputs.
type LayerSpec struct {
	Inputs     int       `json:"inputs"`
	Outputs    int       `json:"outputs"`
	Weights    []float64 `json:"weights"`
	Biases     []float64 `json:"biases"`
	Activation string    `json:"activation"`
}

// NetworkGenome is an ordered chain of layer specs. Layer i's output count
// must equal layer i+1's input count.
type NetworkGenome struct {
	Layers []LayerSpec `json:"layers"`
}

// Validate checks the genome's internal consistency and its fit against the
// declared sensor and actuator vector lengths. All violations wrap ErrShape.
func (g NetworkGenome) Validate(sensorCount, actuatorCount int) error {
	if len(g.Layers) == 0 {
		return fmt.Errorf("%w: genome has no layers", ErrShape)
	}
	if first := g.Layers[0].Inputs; first != sensorCount {
		return fmt.Errorf("%w: first layer inputs=%d sensors=%d", ErrShape, first, sensorCount)
	}
	if last := g.Layers[len(g.Layers)-1].Outputs; last != actuatorCount {
		return fmt.Errorf("%w: last layer outputs=%d actuators=%d", ErrShape, last, actuatorCount)
	}
	for i, layer := range g.Layers {
		if err := layer.validate(); err != nil {
			return fmt.Errorf("layer %d: %w", i, err)
		}
		if i > 0 && g.Layers[i-1].Outputs != layer.Inputs {
			return fmt.Errorf("%w: layer %d inputs=%d previous outputs=%d",
				ErrShape, i, layer.Inputs, g.Layers[i-1].Outputs)
		}
	}
	return nil
}

func (l LayerSpec) validate() error {
	if l.Inputs <= 0 || l.Outputs <= 0 {
		return fmt.Errorf("%w: inputs=%d outputs=%d", ErrShape, l.Inputs, l.Outputs)
	}
	if len(l.Weights) != l.Inputs*l.Outputs {
		return fmt.Errorf("%w: weights=%d want=%d", ErrShape, len(l.Weights), l.Inputs*l.Outputs)
	}
	if len(l.Biases) != l.Outputs {
		return fmt.Errorf("%w: biases=%d want=%d", ErrShape, len(l.Biases), l.Outputs)
	}
	if l.Activation == "" {
		return fmt.Errorf("%w: layer activation is required", ErrShape)
	}
	for i, w := range l.Weights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("%w: weight %d is not finite", ErrShape, i)
		}
	}
	for i, b := range l.Biases {
		if math.IsNaN(b) || math.IsInf(b, 0) {
			return fmt.Errorf("%w: bias %d is not finite", ErrShape, i)
		}
	}
	return nil
}

// Clone returns a deep copy. The copy shares no slice storage with the
// receiver, so mutating one can never leak into the other.
func (g NetworkGenome) Clone() NetworkGenome {
	layers := make([]LayerSpec, len(g.Layers))
	for i, layer := range g.Layers {
		layers[i] = LayerSpec{
			Inputs:     layer.Inputs,
			Outputs:    layer.Outputs,
			Weights:    append([]float64(nil), layer.Weights...),
			Biases:     append([]float64(nil), layer.Biases...),
			Activation: layer.Activation,
		}
	}
	return NetworkGenome{Layers: layers}
}

// Equal reports exact structural and numeric equality. Weights compare with
// ==, so round-tripped genomes must match bit for bit.
func (g NetworkGenome) Equal(other NetworkGenome) bool {
	if len(g.Layers) != len(other.Layers) {
		return false
	}
	for i, layer := range g.Layers {
		o := other.Layers[i]
		if layer.Inputs != o.Inputs || layer.Outputs != o.Outputs || layer.Activation != o.Activation {
			return false
		}
		if len(layer.Weights) != len(o.Weights) || len(layer.Biases) != len(o.Biases) {
			return false
		}
		for j, w := range layer.Weights {
			if w != o.Weights[j] {
				return false
			}
		}
		for j, b := range layer.Biases {
			if b != o.Biases[j] {
				return false
			}
		}
	}
	return true
}

// WeightCount returns the total number of weights and biases.
func (g NetworkGenome) WeightCount() int {
	total := 0
	for _, layer := range g.Layers {
		total += len(layer.Weights) + len(layer.Biases)
	}
	return total
}

// Topology returns the layer size chain: [inputs, hidden..., outputs].
func (g NetworkGenome) Topology() []int {
	if len(g.Layers) == 0 {
		return nil
	}
	sizes := make([]int, 0, len(g.Layers)+1)
	sizes = append(sizes, g.Layers[0].Inputs)
	for _, layer := range g.Layers {
		sizes = append(sizes, layer.Outputs)
	}
	return sizes
}

// SameTopology reports whether two genomes have identical layer shapes and
// activations, which is what crossover requires.
func (g NetworkGenome) SameTopology(other NetworkGenome) bool {
	if len(g.Layers) != len(other.Layers) {
		return false
	}
	for i, layer := range g.Layers {
		o := other.Layers[i]
		if layer.Inputs != o.Inputs || layer.Outputs != o.Outputs || layer.Activation != o.Activation {
			return false
		}
	}
	return true
}
