package sim

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/cjburkey01/fafevosim/internal/genome"
	"github.com/cjburkey01/fafevosim/internal/world"
)

// Population is the fixed arena of agents for one generation. Spawn order is
// iteration order everywhere agents are walked, which keeps runs reproducible
// for a fixed seed.
type Population struct {
	generation int
	agents     []*Agent
}

// Spawn builds one agent per genome, drawing spawn positions from rng in
// genome order. Every genome must fit the params' sensor and actuator
// widths.
func Spawn(rng *rand.Rand, generation int, genomes []genome.NetworkGenome, params Params, w *world.World) (*Population, error) {
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}
	if len(genomes) == 0 {
		return nil, fmt.Errorf("at least one genome is required")
	}
	if w == nil {
		return nil, fmt.Errorf("world is required")
	}

	agents := make([]*Agent, len(genomes))
	for i, g := range genomes {
		agent, err := NewAgent(i, g, params, rng, w.Width(), w.Height())
		if err != nil {
			return nil, err
		}
		agents[i] = agent
	}
	return &Population{generation: generation, agents: agents}, nil
}

func (p *Population) Generation() int { return p.generation }
func (p *Population) Size() int       { return len(p.agents) }

// Agent returns the agent at spawn index i, or nil out of range.
func (p *Population) Agent(i int) *Agent {
	if i < 0 || i >= len(p.agents) {
		return nil
	}
	return p.agents[i]
}

// Agents returns the agents in spawn order. The slice is a copy; the agents
// are shared.
func (p *Population) Agents() []*Agent {
	out := make([]*Agent, len(p.agents))
	copy(out, p.agents)
	return out
}

// Live returns the agents still alive, in spawn order.
func (p *Population) Live() []*Agent {
	var live []*Agent
	for _, a := range p.agents {
		if a.Alive() {
			live = append(live, a)
		}
	}
	return live
}

func (p *Population) AliveCount() int {
	count := 0
	for _, a := range p.agents {
		if a.Alive() {
			count++
		}
	}
	return count
}

// Genomes returns a copy of every agent's genome in spawn order.
func (p *Population) Genomes() []genome.NetworkGenome {
	out := make([]genome.NetworkGenome, len(p.agents))
	for i, a := range p.agents {
		out[i] = a.Genome()
	}
	return out
}

// Evaluate computes the per-agent fitness in spawn order.
func (p *Population) Evaluate() []float64 {
	out := make([]float64, len(p.agents))
	for i, a := range p.agents {
		out[i] = EvaluateFitness(a)
	}
	return out
}

// Stats is a read-only snapshot of the population's fitness spread.
type Stats struct {
	Best      float64 `json:"best"`
	Mean      float64 `json:"mean"`
	Worst     float64 `json:"worst"`
	Diversity int     `json:"diversity"`
	Alive     int     `json:"alive"`
}

// Stats summarizes the current fitness spread across all agents, dead ones
// included. Diversity counts distinct genomes by fingerprint.
func (p *Population) Stats() Stats {
	s := Stats{
		Diversity: genome.CountDistinct(p.Genomes()),
		Alive:     p.AliveCount(),
	}
	fitnesses := p.Evaluate()
	if len(fitnesses) == 0 {
		return s
	}
	s.Best = floats.Max(fitnesses)
	s.Worst = floats.Min(fitnesses)
	s.Mean = stat.Mean(fitnesses, nil)
	return s
}
