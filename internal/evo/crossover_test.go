package evo

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/cjburkey01/fafevosim/internal/genome"
)

// constantGenome builds a 4-8-4 genome with every weight and bias set to
// value, large enough for statistical checks on gene mixing.
func constantGenome(t *testing.T, value float64) genome.NetworkGenome {
	t.Helper()
	rng := rand.New(rand.NewSource(1))
	g, err := genome.Random(rng, []int{4, 8, 4}, genome.ActivationTanh, genome.ActivationSigmoid)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for li := range g.Layers {
		layer := &g.Layers[li]
		for i := range layer.Weights {
			layer.Weights[i] = value
		}
		for i := range layer.Biases {
			layer.Biases[i] = value
		}
	}
	return g
}

func countValues(g genome.NetworkGenome, value float64) (matching, total int) {
	for _, layer := range g.Layers {
		for _, w := range layer.Weights {
			total++
			if w == value {
				matching++
			}
		}
		for _, b := range layer.Biases {
			total++
			if b == value {
				matching++
			}
		}
	}
	return matching, total
}

func TestUniformCrossoverMixesParentValues(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	a := constantGenome(t, 0)
	b := constantGenome(t, 1)

	child, err := UniformCrossover(rng, a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fromA, totalA := countValues(child, 0)
	fromB, total := countValues(child, 1)
	if totalA != total {
		t.Fatalf("inconsistent totals %d and %d", totalA, total)
	}
	if fromA+fromB != total {
		t.Fatalf("child has %d values not taken from either parent", total-fromA-fromB)
	}
	if fromA == 0 || fromB == 0 {
		t.Fatalf("expected genes from both parents, got %d from a and %d from b", fromA, fromB)
	}

	fraction := float64(fromB) / float64(total)
	if fraction < 0.25 || fraction > 0.75 {
		t.Fatalf("expected roughly half the genes from each parent, got %.3f from b", fraction)
	}
}

func TestUniformCrossoverDeterministicForSeed(t *testing.T) {
	a := constantGenome(t, 0)
	b := constantGenome(t, 1)

	first, err := UniformCrossover(rand.New(rand.NewSource(5)), a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := UniformCrossover(rand.New(rand.NewSource(5)), a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !first.Equal(second) {
		t.Fatal("same seed produced different children")
	}

	other, err := UniformCrossover(rand.New(rand.NewSource(6)), a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Equal(other) {
		t.Fatal("different seeds produced identical children")
	}
}

func TestUniformCrossoverLeavesParentsUntouched(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	a := constantGenome(t, 0)
	b := constantGenome(t, 1)
	aBefore := a.Clone()
	bBefore := b.Clone()

	if _, err := UniformCrossover(rng, a, b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !a.Equal(aBefore) || !b.Equal(bBefore) {
		t.Fatal("crossover modified a parent genome")
	}
}

func TestUniformCrossoverRejectsTopologyMismatch(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	a := constantGenome(t, 0)
	narrow, err := genome.Random(rng, []int{4, 3, 4}, genome.ActivationTanh, genome.ActivationSigmoid)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := UniformCrossover(rng, a, narrow); !errors.Is(err, genome.ErrShape) {
		t.Fatalf("expected ErrShape for mismatched parents, got %v", err)
	}
}

func TestUniformCrossoverRequiresRng(t *testing.T) {
	a := constantGenome(t, 0)
	if _, err := UniformCrossover(nil, a, a); err == nil {
		t.Fatal("expected error for nil random source")
	}
}
