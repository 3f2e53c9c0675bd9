package sim

import (
	"math/rand"
	"testing"

	"github.com/cjburkey01/fafevosim/internal/genome"
)

func motorGenomes(params Params, n int) []genome.NetworkGenome {
	genomes := make([]genome.NetworkGenome, n)
	for i := range genomes {
		genomes[i] = motorGenome(params, 0, 0)
	}
	return genomes
}

func TestSpawnBuildsOneAgentPerGenome(t *testing.T) {
	params := testParams()
	w := barrenWorld(t, 10, 10)

	p, err := Spawn(rand.New(rand.NewSource(1)), 3, motorGenomes(params, 5), params, w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.Size() != 5 {
		t.Fatalf("expected 5 agents, got %d", p.Size())
	}
	if p.Generation() != 3 {
		t.Fatalf("expected generation 3, got %d", p.Generation())
	}
	if p.AliveCount() != 5 {
		t.Fatalf("expected everyone alive at spawn, got %d", p.AliveCount())
	}
	for i := 0; i < p.Size(); i++ {
		if p.Agent(i).Index() != i {
			t.Fatalf("agent at slot %d has index %d", i, p.Agent(i).Index())
		}
	}
	if p.Agent(-1) != nil || p.Agent(5) != nil {
		t.Fatal("out-of-range agent lookup should be nil")
	}
}

func TestSpawnValidatesArguments(t *testing.T) {
	params := testParams()
	w := barrenWorld(t, 10, 10)
	genomes := motorGenomes(params, 2)

	if _, err := Spawn(nil, 0, genomes, params, w); err == nil {
		t.Fatal("expected error for nil random source")
	}
	if _, err := Spawn(rand.New(rand.NewSource(1)), 0, nil, params, w); err == nil {
		t.Fatal("expected error for empty genome list")
	}
	if _, err := Spawn(rand.New(rand.NewSource(1)), 0, genomes, params, nil); err == nil {
		t.Fatal("expected error for nil world")
	}

	bad := motorGenomes(params, 2)
	bad[1].Layers[0].Inputs = 1
	bad[1].Layers[0].Weights = make([]float64, 1*ActuatorCount)
	if _, err := Spawn(rand.New(rand.NewSource(1)), 0, bad, params, w); err == nil {
		t.Fatal("expected error for genome not matching the sensor width")
	}
}

func TestSpawnDeterministicForSeed(t *testing.T) {
	params := testParams()
	w := barrenWorld(t, 10, 10)
	genomes := motorGenomes(params, 4)

	first, err := Spawn(rand.New(rand.NewSource(9)), 0, genomes, params, w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Spawn(rand.New(rand.NewSource(9)), 0, genomes, params, w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < first.Size(); i++ {
		ax, ay := first.Agent(i).Position()
		bx, by := second.Agent(i).Position()
		if ax != bx || ay != by || first.Agent(i).Heading() != second.Agent(i).Heading() {
			t.Fatalf("agent %d spawned differently for the same seed", i)
		}
	}
}

func TestGenomesReturnsIsolatedCopies(t *testing.T) {
	params := testParams()
	w := barrenWorld(t, 10, 10)
	p, err := Spawn(rand.New(rand.NewSource(1)), 0, motorGenomes(params, 2), params, w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	genomes := p.Genomes()
	if len(genomes) != 2 {
		t.Fatalf("expected 2 genomes, got %d", len(genomes))
	}
	genomes[0].Layers[0].Biases[0] = 42

	if p.Genomes()[0].Layers[0].Biases[0] == 42 {
		t.Fatal("population genome mutated through the copy")
	}
}

func TestEvaluateClampsNegativeRewards(t *testing.T) {
	params := testParams()
	w := barrenWorld(t, 10, 10)
	p, err := Spawn(rand.New(rand.NewSource(1)), 0, motorGenomes(params, 3), params, w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p.Agent(0).reward = -3
	p.Agent(1).reward = 2.5

	fitnesses := p.Evaluate()
	if fitnesses[0] != 0 {
		t.Fatalf("expected negative reward clamped to 0, got %g", fitnesses[0])
	}
	if fitnesses[1] != 2.5 || fitnesses[2] != 0 {
		t.Fatalf("unexpected fitnesses %v", fitnesses)
	}
}

func TestStatsSummarizesFitnessSpread(t *testing.T) {
	params := testParams()
	w := barrenWorld(t, 10, 10)
	p, err := Spawn(rand.New(rand.NewSource(1)), 0, motorGenomes(params, 4), params, w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p.Agent(0).reward = 2
	p.Agent(1).reward = 0.5
	p.Agent(2).reward = -1
	p.Agent(3).reward = 1
	p.Agent(2).alive = false

	s := p.Stats()
	if s.Best != 2 || s.Worst != 0 {
		t.Fatalf("expected best 2 and worst 0, got %+v", s)
	}
	if s.Mean != 0.875 {
		t.Fatalf("expected mean 0.875, got %g", s.Mean)
	}
	if s.Alive != 3 {
		t.Fatalf("expected 3 alive, got %d", s.Alive)
	}
	if s.Diversity != 1 {
		t.Fatalf("identical genomes should count as 1 distinct, got %d", s.Diversity)
	}
}

func TestLivePreservesSpawnOrder(t *testing.T) {
	params := testParams()
	w := barrenWorld(t, 10, 10)
	p, err := Spawn(rand.New(rand.NewSource(1)), 0, motorGenomes(params, 5), params, w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p.Agent(1).alive = false
	p.Agent(3).alive = false

	live := p.Live()
	if len(live) != 3 {
		t.Fatalf("expected 3 live agents, got %d", len(live))
	}
	wantOrder := []int{0, 2, 4}
	for i, a := range live {
		if a.Index() != wantOrder[i] {
			t.Fatalf("live slot %d: expected index %d, got %d", i, wantOrder[i], a.Index())
		}
	}
	if p.AliveCount() != 3 {
		t.Fatalf("expected alive count 3, got %d", p.AliveCount())
	}
}

func TestAgentsReturnsSliceCopy(t *testing.T) {
	params := testParams()
	w := barrenWorld(t, 10, 10)
	p, err := Spawn(rand.New(rand.NewSource(1)), 0, motorGenomes(params, 2), params, w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	agents := p.Agents()
	agents[0] = nil
	if p.Agent(0) == nil {
		t.Fatal("population arena mutated through the returned slice")
	}
}
