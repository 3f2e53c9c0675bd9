package sim

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/cjburkey01/fafevosim/internal/genome"
	"github.com/cjburkey01/fafevosim/internal/nn"
	"github.com/cjburkey01/fafevosim/internal/world"
)

func TestStepGenerationRunsFullBudget(t *testing.T) {
	params := testParams()
	params.EnergyDecay = 0
	w := barrenWorld(t, 10, 10)
	p, err := Spawn(rand.New(rand.NewSource(1)), 0, motorGenomes(params, 4), params, w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	report, err := NewScheduler(1).StepGeneration(context.Background(), p, w, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Ticks != 50 {
		t.Fatalf("expected 50 ticks, got %d", report.Ticks)
	}
	if report.Survivors != 4 {
		t.Fatalf("expected 4 survivors, got %d", report.Survivors)
	}
	for _, a := range p.Agents() {
		if a.Age() != 50 {
			t.Fatalf("agent %d aged %d ticks, expected 50", a.Index(), a.Age())
		}
	}
}

func TestStepGenerationStopsWhenAllDead(t *testing.T) {
	params := testParams()
	params.InitialEnergy = 1
	w := barrenWorld(t, 10, 10)
	p, err := Spawn(rand.New(rand.NewSource(1)), 0, motorGenomes(params, 3), params, w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	report, err := NewScheduler(1).StepGeneration(context.Background(), p, w, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Ticks != 1 {
		t.Fatalf("expected the generation to end after 1 tick, got %d", report.Ticks)
	}
	if report.Survivors != 0 {
		t.Fatalf("expected no survivors, got %d", report.Survivors)
	}
}

func TestStepGenerationWorkerCountDoesNotChangeOutcome(t *testing.T) {
	params := testParams()
	params.SensorRadius = 1
	params.EnergyDecay = 0.05

	genomeRng := rand.New(rand.NewSource(42))
	genomes := make([]genome.NetworkGenome, 8)
	for i := range genomes {
		g, err := genome.Random(genomeRng, []int{params.SensorCount(), 8, ActuatorCount}, genome.ActivationTanh, genome.ActivationTanh)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		genomes[i] = g
	}

	run := func(workers int) (*Population, TickReport) {
		w, err := world.New(12, 12, func(x, y float64) float64 {
			return math.Mod(x+y, 4) / 3
		}, 1, 0.02)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		p, err := Spawn(rand.New(rand.NewSource(7)), 0, genomes, params, w)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		report, err := NewScheduler(workers).StepGeneration(context.Background(), p, w, 40)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return p, report
	}

	serial, serialReport := run(1)
	parallel, parallelReport := run(8)

	if serialReport != parallelReport {
		t.Fatalf("reports differ: %+v vs %+v", serialReport, parallelReport)
	}
	for i := 0; i < serial.Size(); i++ {
		a, b := serial.Agent(i), parallel.Agent(i)
		ax, ay := a.Position()
		bx, by := b.Position()
		if ax != bx || ay != by {
			t.Fatalf("agent %d position diverged across worker counts", i)
		}
		if a.Energy() != b.Energy() || a.Alive() != b.Alive() {
			t.Fatalf("agent %d state diverged across worker counts", i)
		}
		if EvaluateFitness(a) != EvaluateFitness(b) {
			t.Fatalf("agent %d fitness diverged across worker counts", i)
		}
	}
}

func TestStepGenerationHonorsCancellation(t *testing.T) {
	params := testParams()
	w := barrenWorld(t, 10, 10)
	p, err := Spawn(rand.New(rand.NewSource(1)), 0, motorGenomes(params, 2), params, w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewScheduler(1).StepGeneration(ctx, p, w, 10); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestStepGenerationPropagatesBrainFailure(t *testing.T) {
	params := testParams()
	exploding := genome.NetworkGenome{Layers: []genome.LayerSpec{
		{
			Inputs:     params.SensorCount(),
			Outputs:    1,
			Weights:    make([]float64, params.SensorCount()),
			Biases:     []float64{math.MaxFloat64},
			Activation: genome.ActivationIdentity,
		},
		{
			Inputs:     1,
			Outputs:    ActuatorCount,
			Weights:    []float64{2, 2},
			Biases:     []float64{0, 0},
			Activation: genome.ActivationIdentity,
		},
	}}

	w := barrenWorld(t, 10, 10)
	p, err := Spawn(rand.New(rand.NewSource(1)), 0, []genome.NetworkGenome{exploding}, params, w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := NewScheduler(1).StepGeneration(context.Background(), p, w, 10); !errors.Is(err, nn.ErrNumericInstability) {
		t.Fatalf("expected numeric instability to abort the generation, got %v", err)
	}
}

func TestStepGenerationValidatesArguments(t *testing.T) {
	params := testParams()
	w := barrenWorld(t, 10, 10)
	p, err := Spawn(rand.New(rand.NewSource(1)), 0, motorGenomes(params, 2), params, w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sched := NewScheduler(1)

	if _, err := sched.StepGeneration(context.Background(), nil, w, 10); err == nil {
		t.Fatal("expected error for nil population")
	}
	if _, err := sched.StepGeneration(context.Background(), p, nil, 10); err == nil {
		t.Fatal("expected error for nil world")
	}
	if _, err := sched.StepGeneration(context.Background(), p, w, 0); err == nil {
		t.Fatal("expected error for zero tick budget")
	}
}

func TestCompetingFoodClaimsResolveInSpawnOrder(t *testing.T) {
	params := testParams()
	params.EnergyDecay = 0.01
	params.Rule = FitnessRule{FoodWeight: 1, SurvivalBonus: 0, DistanceWeight: 0}
	w := lushWorld(t, 5, 5, 1.5)
	p, err := Spawn(rand.New(rand.NewSource(1)), 0, motorGenomes(params, 2), params, w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Both agents contest the same tile holding 1.5 food.
	for i := 0; i < 2; i++ {
		p.Agent(i).x, p.Agent(i).y = 2.5, 2.5
	}

	report, err := NewScheduler(1).StepGeneration(context.Background(), p, w, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Ticks != 1 || report.Survivors != 2 {
		t.Fatalf("unexpected report %+v", report)
	}

	if first := EvaluateFitness(p.Agent(0)); first != 1 {
		t.Fatalf("expected the earlier spawn to eat a full unit, got %g", first)
	}
	if second := EvaluateFitness(p.Agent(1)); second != 0.5 {
		t.Fatalf("expected the later spawn to get the remaining 0.5, got %g", second)
	}
}
