package genome

import (
	"math/rand"
	"testing"
)

func TestFingerprintStableAcrossClones(t *testing.T) {
	g := testGenome()
	if g.Fingerprint() != g.Clone().Fingerprint() {
		t.Fatal("clone fingerprint differs from original")
	}
	if g.Fingerprint() != testGenome().Fingerprint() {
		t.Fatal("fingerprint not stable across identical constructions")
	}
}

func TestFingerprintSensitiveToWeights(t *testing.T) {
	base := testGenome()
	changed := testGenome()
	changed.Layers[0].Weights[0] += 1e-9

	if base.Fingerprint() == changed.Fingerprint() {
		t.Fatal("weight change did not alter fingerprint")
	}

	reactivated := testGenome()
	reactivated.Layers[0].Activation = ActivationReLU
	if base.Fingerprint() == reactivated.Fingerprint() {
		t.Fatal("activation change did not alter fingerprint")
	}
}

func TestCountDistinct(t *testing.T) {
	rng := rand.New(rand.NewSource(5))

	a, err := Random(rng, []int{2, 2, 1}, ActivationTanh, ActivationTanh)
	if err != nil {
		t.Fatalf("random genome: %v", err)
	}
	b, err := Random(rng, []int{2, 2, 1}, ActivationTanh, ActivationTanh)
	if err != nil {
		t.Fatalf("random genome: %v", err)
	}

	genomes := []NetworkGenome{a, a.Clone(), b, b.Clone(), a}
	if got := CountDistinct(genomes); got != 2 {
		t.Fatalf("distinct count: got=%d want=2", got)
	}
	if got := CountDistinct(nil); got != 0 {
		t.Fatalf("distinct count for empty input: got=%d want=0", got)
	}
}
