package sim

import (
	"context"
	"fmt"

	"github.com/sourcegraph/conc/pool"

	"github.com/cjburkey01/fafevosim/internal/world"
)

// TickReport summarizes one simulated generation.
type TickReport struct {
	Ticks     int `json:"ticks"`
	Survivors int `json:"survivors"`
}

// Scheduler advances a population through its generation tick by tick. Each
// tick runs three phases over the live agents in spawn order: sense (the
// world is read-only, so every agent observes the same state), think
// (independent per agent, run on a bounded goroutine pool), and act (applied
// in spawn order on the calling goroutine, so the world has a single writer
// and competing food claims resolve by spawn order). Worker count never
// affects the outcome because thinking reads and writes only per-agent
// buffers.
type Scheduler struct {
	workers int
}

// NewScheduler builds a scheduler running think phases on up to workers
// goroutines. Workers below two run the phase inline.
func NewScheduler(workers int) *Scheduler {
	return &Scheduler{workers: workers}
}

// StepGeneration ticks the population until the budget is exhausted or no
// agent is left alive, regrowing the world after each act phase. Ctx is
// checked at tick boundaries only; an aborted generation returns ctx's
// error.
func (s *Scheduler) StepGeneration(ctx context.Context, p *Population, w *world.World, tickBudget int) (TickReport, error) {
	if p == nil || w == nil {
		return TickReport{}, fmt.Errorf("population and world are required")
	}
	if tickBudget <= 0 {
		return TickReport{}, fmt.Errorf("tick budget must be > 0, got %d", tickBudget)
	}

	ticks := 0
	for ticks < tickBudget {
		if err := ctx.Err(); err != nil {
			return TickReport{}, err
		}
		live := p.Live()
		if len(live) == 0 {
			break
		}

		for _, a := range live {
			a.Sense(w)
		}
		if err := s.think(live); err != nil {
			return TickReport{}, err
		}
		for _, a := range live {
			a.Act(w)
		}
		w.Regrow()
		ticks++
	}

	return TickReport{Ticks: ticks, Survivors: p.AliveCount()}, nil
}

func (s *Scheduler) think(live []*Agent) error {
	if s.workers <= 1 {
		for _, a := range live {
			if err := a.Think(); err != nil {
				return err
			}
		}
		return nil
	}

	workers := pool.New().WithErrors().WithMaxGoroutines(s.workers)
	for _, a := range live {
		workers.Go(a.Think)
	}
	return workers.Wait()
}
