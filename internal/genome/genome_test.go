package genome

import (
	"errors"
	"math"
	"testing"
)

func testGenome() NetworkGenome {
	return NetworkGenome{Layers: []LayerSpec{
		{
			Inputs:     2,
			Outputs:    3,
			Weights:    []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6},
			Biases:     []float64{0.01, 0.02, 0.03},
			Activation: ActivationTanh,
		},
		{
			Inputs:     3,
			Outputs:    1,
			Weights:    []float64{-0.1, -0.2, -0.3},
			Biases:     []float64{0.5},
			Activation: ActivationSigmoid,
		},
	}}
}

func TestValidateAcceptsWellFormedGenome(t *testing.T) {
	g := testGenome()
	if err := g.Validate(2, 1); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidateRejectsShapeViolations(t *testing.T) {
	cases := []struct {
		name      string
		mutate    func(*NetworkGenome)
		sensors   int
		actuators int
	}{
		{name: "no layers", mutate: func(g *NetworkGenome) { g.Layers = nil }, sensors: 2, actuators: 1},
		{name: "sensor mismatch", mutate: func(g *NetworkGenome) {}, sensors: 5, actuators: 1},
		{name: "actuator mismatch", mutate: func(g *NetworkGenome) {}, sensors: 2, actuators: 4},
		{name: "broken chain", mutate: func(g *NetworkGenome) { g.Layers[1].Inputs = 7 }, sensors: 2, actuators: 1},
		{name: "short weights", mutate: func(g *NetworkGenome) { g.Layers[0].Weights = g.Layers[0].Weights[:4] }, sensors: 2, actuators: 1},
		{name: "short biases", mutate: func(g *NetworkGenome) { g.Layers[0].Biases = g.Layers[0].Biases[:1] }, sensors: 2, actuators: 1},
		{name: "missing activation", mutate: func(g *NetworkGenome) { g.Layers[0].Activation = "" }, sensors: 2, actuators: 1},
		{name: "nan weight", mutate: func(g *NetworkGenome) { g.Layers[0].Weights[0] = math.NaN() }, sensors: 2, actuators: 1},
		{name: "inf bias", mutate: func(g *NetworkGenome) { g.Layers[1].Biases[0] = math.Inf(1) }, sensors: 2, actuators: 1},
		{name: "zero outputs", mutate: func(g *NetworkGenome) {
			g.Layers[1].Outputs = 0
			g.Layers[1].Biases = nil
			g.Layers[1].Weights = nil
		}, sensors: 2, actuators: 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := testGenome().Clone()
			tc.mutate(&g)
			err := g.Validate(tc.sensors, tc.actuators)
			if !errors.Is(err, ErrShape) {
				t.Fatalf("expected ErrShape, got: %v", err)
			}
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	original := testGenome()
	clone := original.Clone()

	clone.Layers[0].Weights[0] = 99
	clone.Layers[1].Biases[0] = -99

	if original.Layers[0].Weights[0] == 99 {
		t.Fatal("clone shares weight storage with original")
	}
	if original.Layers[1].Biases[0] == -99 {
		t.Fatal("clone shares bias storage with original")
	}
	if !original.Equal(testGenome()) {
		t.Fatal("original changed after mutating clone")
	}
}

func TestEqualDetectsDifferences(t *testing.T) {
	base := testGenome()
	if !base.Equal(testGenome()) {
		t.Fatal("identical genomes reported unequal")
	}

	weightChanged := testGenome()
	weightChanged.Layers[0].Weights[3] += 1e-12
	if base.Equal(weightChanged) {
		t.Fatal("weight difference not detected")
	}

	activationChanged := testGenome()
	activationChanged.Layers[1].Activation = ActivationReLU
	if base.Equal(activationChanged) {
		t.Fatal("activation difference not detected")
	}

	layerCountChanged := NetworkGenome{Layers: base.Layers[:1]}
	if base.Equal(layerCountChanged) {
		t.Fatal("layer count difference not detected")
	}
}

func TestTopologyAndWeightCount(t *testing.T) {
	g := testGenome()

	topology := g.Topology()
	want := []int{2, 3, 1}
	if len(topology) != len(want) {
		t.Fatalf("unexpected topology: %v", topology)
	}
	for i, size := range want {
		if topology[i] != size {
			t.Fatalf("topology[%d]=%d want=%d", i, topology[i], size)
		}
	}

	if got := g.WeightCount(); got != 6+3+3+1 {
		t.Fatalf("weight count: got=%d want=13", got)
	}
}

func TestSameTopologyIgnoresWeights(t *testing.T) {
	a := testGenome()
	b := testGenome()
	b.Layers[0].Weights[0] = 42

	if !a.SameTopology(b) {
		t.Fatal("weight change should not affect topology comparison")
	}

	b.Layers[0].Activation = ActivationIdentity
	if a.SameTopology(b) {
		t.Fatal("activation change should break topology comparison")
	}
}
