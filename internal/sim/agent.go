// Package sim runs agents through one generation of life on the world grid:
// per-tick sense, think, act phases, death bookkeeping, and fitness
// evaluation.
package sim

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/cjburkey01/fafevosim/internal/genome"
	"github.com/cjburkey01/fafevosim/internal/nn"
	"github.com/cjburkey01/fafevosim/internal/world"
)

// ActuatorCount is the fixed motor output width: turn throttle and move
// throttle, both in [-1,1].
const ActuatorCount = 2

// coordEpsilon keeps a clamped coordinate strictly inside the grid so the
// tile index never lands one past the edge.
const coordEpsilon = 1e-9

// Params fixes the simulation rules for one generation. Zero values are not
// defaulted; build from DefaultParams and override.
type Params struct {
	SensorRadius  int
	InitialEnergy float64
	EnergyDecay   float64
	MaxAge        int
	MoveSpeed     float64
	TurnSpeed     float64
	EatRate       float64
	Rule          FitnessRule
}

func DefaultParams() Params {
	return Params{
		SensorRadius:  1,
		InitialEnergy: 10,
		EnergyDecay:   0.15,
		MaxAge:        200,
		MoveSpeed:     1,
		TurnSpeed:     math.Pi / 4,
		EatRate:       1,
		Rule:          DefaultFitnessRule(),
	}
}

func (p Params) Validate() error {
	if p.SensorRadius < 0 {
		return fmt.Errorf("sensor radius must be >= 0, got %d", p.SensorRadius)
	}
	if p.InitialEnergy <= 0 {
		return fmt.Errorf("initial energy must be > 0, got %g", p.InitialEnergy)
	}
	if p.EnergyDecay < 0 {
		return fmt.Errorf("energy decay must be >= 0, got %g", p.EnergyDecay)
	}
	if p.MaxAge <= 0 {
		return fmt.Errorf("max age must be > 0, got %d", p.MaxAge)
	}
	if p.MoveSpeed < 0 || p.TurnSpeed < 0 {
		return fmt.Errorf("move and turn speeds must be >= 0, got %g and %g", p.MoveSpeed, p.TurnSpeed)
	}
	if p.EatRate < 0 {
		return fmt.Errorf("eat rate must be >= 0, got %g", p.EatRate)
	}
	return p.Rule.Validate()
}

// SensorCount is the sense vector width for these params: a square food
// window of side 2*radius+1 plus energy and the heading sine and cosine.
func (p Params) SensorCount() int {
	side := 2*p.SensorRadius + 1
	return side*side + 3
}

// Agent is one creature for one generation. It owns a compiled brain and its
// sense/act buffers; the scheduler drives the phases so the think phase can
// run in parallel across agents.
type Agent struct {
	index   int
	params  Params
	brain   *nn.Network
	x, y    float64
	heading float64
	energy  float64
	age     int
	alive   bool
	reward  float64
	sense   []float64
	act     []float64
}

// NewAgent compiles the genome against the params' sensor and actuator
// widths and spawns the agent at a position and heading drawn from rng.
func NewAgent(index int, g genome.NetworkGenome, params Params, rng *rand.Rand, width, height int) (*Agent, error) {
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("world dimensions must be positive, got %dx%d", width, height)
	}

	brain, err := nn.Compile(g, params.SensorCount(), ActuatorCount)
	if err != nil {
		return nil, fmt.Errorf("agent %d: %w", index, err)
	}

	return &Agent{
		index:   index,
		params:  params,
		brain:   brain,
		x:       rng.Float64() * float64(width),
		y:       rng.Float64() * float64(height),
		heading: rng.Float64() * 2 * math.Pi,
		energy:  params.InitialEnergy,
		alive:   true,
		sense:   make([]float64, params.SensorCount()),
		act:     make([]float64, ActuatorCount),
	}, nil
}

func (a *Agent) Index() int               { return a.index }
func (a *Agent) Alive() bool              { return a.alive }
func (a *Agent) Energy() float64          { return a.energy }
func (a *Agent) Age() int                 { return a.age }
func (a *Agent) Heading() float64         { return a.heading }
func (a *Agent) Position() (x, y float64) { return a.x, a.y }

// Genome returns a copy of the genome the agent's brain was compiled from.
func (a *Agent) Genome() genome.NetworkGenome {
	return a.brain.Genome()
}

func (a *Agent) tileX() int { return int(math.Floor(a.x)) }
func (a *Agent) tileY() int { return int(math.Floor(a.y)) }

// Sense fills the sense buffer from the world: the food window centered on
// the agent's tile in row-major order (out-of-bounds tiles read as no food),
// then energy relative to the initial budget, then heading sine and cosine.
// Dead agents do not sense.
func (a *Agent) Sense(w *world.World) {
	if !a.alive {
		return
	}

	radius := a.params.SensorRadius
	cx, cy := a.tileX(), a.tileY()
	idx := 0
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			food := 0.0
			if tile, ok := w.Tile(cx+dx, cy+dy); ok {
				food = tile.Food
			}
			a.sense[idx] = food
			idx++
		}
	}
	a.sense[idx] = a.energy / a.params.InitialEnergy
	a.sense[idx+1] = math.Sin(a.heading)
	a.sense[idx+2] = math.Cos(a.heading)
}

// Think runs forward inference on the sense buffer and stores the motor
// outputs in the act buffer. It touches no shared state, so the scheduler may
// run it for many agents concurrently.
func (a *Agent) Think() error {
	if !a.alive {
		return nil
	}
	out, err := a.brain.Forward(a.sense)
	if err != nil {
		return fmt.Errorf("agent %d: %w", a.index, err)
	}
	copy(a.act, out)
	return nil
}

// Act applies the motor outputs: turn, move (clamped to world bounds), eat
// from the destination tile, pay the energy cost, age one tick, accrue the
// tick's reward, then check for death. Movement doubles the energy burn at
// full throttle.
func (a *Agent) Act(w *world.World) {
	if !a.alive {
		return
	}

	turn := clamp(a.act[0], -1, 1)
	throttle := clamp(a.act[1], -1, 1)
	a.heading += turn * a.params.TurnSpeed

	nx := a.x + math.Cos(a.heading)*throttle*a.params.MoveSpeed
	ny := a.y + math.Sin(a.heading)*throttle*a.params.MoveSpeed
	nx = clamp(nx, 0, float64(w.Width())-coordEpsilon)
	ny = clamp(ny, 0, float64(w.Height())-coordEpsilon)
	distance := math.Hypot(nx-a.x, ny-a.y)
	a.x, a.y = nx, ny

	eaten := w.Consume(a.tileX(), a.tileY(), a.params.EatRate)
	a.energy += eaten
	a.energy -= a.params.EnergyDecay * (1 + math.Abs(throttle))
	a.age++
	a.reward += a.params.Rule.tickReward(eaten, distance)

	if a.energy <= 0 || a.age >= a.params.MaxAge {
		a.alive = false
	}
}

// Tick runs one full sense, think, act cycle for a lone agent. The scheduler
// drives the phases separately so thinking can run in parallel; Tick exists
// for callers stepping a single agent.
func (a *Agent) Tick(w *world.World) error {
	a.Sense(w)
	if err := a.Think(); err != nil {
		return err
	}
	a.Act(w)
	return nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
