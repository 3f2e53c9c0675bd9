package evo

import (
	"math/rand"
	"testing"

	"github.com/cjburkey01/fafevosim/internal/genome"
)

func randomWideGenome(t *testing.T, seed int64) genome.NetworkGenome {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	g, err := genome.Random(rng, []int{10, 20, 10}, genome.ActivationTanh, genome.ActivationSigmoid)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return g
}

func countChangedValues(a, b genome.NetworkGenome) (changed, total int) {
	for li := range a.Layers {
		for i := range a.Layers[li].Weights {
			total++
			if a.Layers[li].Weights[i] != b.Layers[li].Weights[i] {
				changed++
			}
		}
		for i := range a.Layers[li].Biases {
			total++
			if a.Layers[li].Biases[i] != b.Layers[li].Biases[i] {
				changed++
			}
		}
	}
	return changed, total
}

func TestGaussianMutateRateZeroIsIdentity(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	g := randomWideGenome(t, 1)

	mutated, err := GaussianMutate(rng, g, 0, 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !mutated.Equal(g) {
		t.Fatal("rate 0 changed the genome")
	}

	mutated.Layers[0].Weights[0] = 99
	if g.Layers[0].Weights[0] == 99 {
		t.Fatal("mutated genome shares storage with its input")
	}
}

func TestGaussianMutateSigmaZeroIsIdentity(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	g := randomWideGenome(t, 2)

	mutated, err := GaussianMutate(rng, g, 1, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !mutated.Equal(g) {
		t.Fatal("sigma 0 changed the genome")
	}
}

func TestGaussianMutateTouchesExpectedFraction(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	g := randomWideGenome(t, 3)

	mutated, err := GaussianMutate(rng, g, 0.25, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	changed, total := countChangedValues(g, mutated)
	fraction := float64(changed) / float64(total)
	if fraction < 0.15 || fraction > 0.35 {
		t.Fatalf("rate 0.25 changed %.3f of %d values", fraction, total)
	}
}

func TestGaussianMutateRateOneTouchesEverything(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	g := randomWideGenome(t, 4)

	mutated, err := GaussianMutate(rng, g, 1, 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	changed, total := countChangedValues(g, mutated)
	if changed != total {
		t.Fatalf("rate 1 changed only %d of %d values", changed, total)
	}
	if !g.Equal(randomWideGenome(t, 4)) {
		t.Fatal("mutation modified its input genome")
	}
}

func TestGaussianMutateDeterministicForSeed(t *testing.T) {
	g := randomWideGenome(t, 5)

	first, err := GaussianMutate(rand.New(rand.NewSource(21)), g, 0.5, 0.3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := GaussianMutate(rand.New(rand.NewSource(21)), g, 0.5, 0.3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !first.Equal(second) {
		t.Fatal("same seed produced different mutants")
	}
}

func TestGaussianMutateValidatesArguments(t *testing.T) {
	g := randomWideGenome(t, 6)
	rng := rand.New(rand.NewSource(1))

	tests := []struct {
		name  string
		rng   *rand.Rand
		rate  float64
		sigma float64
	}{
		{name: "nil rng", rng: nil, rate: 0.5, sigma: 0.5},
		{name: "negative rate", rng: rng, rate: -0.1, sigma: 0.5},
		{name: "rate above one", rng: rng, rate: 1.1, sigma: 0.5},
		{name: "negative sigma", rng: rng, rate: 0.5, sigma: -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := GaussianMutate(tt.rng, g, tt.rate, tt.sigma); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}
