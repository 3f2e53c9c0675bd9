// Package platform hosts the long-lived pieces of the system: the store,
// optional support modules, the default-instance lifecycle, and the
// evolution run loop that ties world, simulation, and engine together.
package platform

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cjburkey01/fafevosim/internal/evo"
	"github.com/cjburkey01/fafevosim/internal/genome"
	"github.com/cjburkey01/fafevosim/internal/sim"
	"github.com/cjburkey01/fafevosim/internal/storage"
	"github.com/cjburkey01/fafevosim/internal/world"
)

type Config struct {
	Store          storage.Store
	Sampler        world.Sampler
	SupportModules []SupportModule
}

// SupportModule is an auxiliary service the polis starts on Init and stops
// on Stop, in registration order and reverse order respectively.
type SupportModule interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

type StopReason string

const (
	StopReasonNormal   StopReason = "normal"
	StopReasonShutdown StopReason = "shutdown"
)

// WorldConfig sizes the food grid for a run.
type WorldConfig struct {
	Width       int
	Height      int
	FoodCeiling float64
	Regrowth    float64
}

// EvolutionConfig describes one run. Initial may carry genomes to seed the
// first generation with; missing slots are filled with random genomes of the
// same topology.
type EvolutionConfig struct {
	RunID            string
	Seed             int64
	Generations      int
	Workers          int
	TickBudget       int
	Engine           evo.Config
	Sim              sim.Params
	World            WorldConfig
	HiddenSizes      []int
	Activation       string
	OutputActivation string
	Initial          []genome.NetworkGenome
}

type EvolutionResult struct {
	RunID          string
	History        []evo.GenerationStats
	BestFitness    float64
	BestGenome     genome.NetworkGenome
	FinalGenomes   []genome.NetworkGenome
	FinalFitnesses []float64
}

// Polis is the container one process runs everything inside. It owns the
// store and support modules and tracks active runs so they can be cancelled.
type Polis struct {
	store   storage.Store
	sampler world.Sampler

	mu sync.RWMutex

	supportModules map[string]SupportModule
	moduleOrder    []string
	started        bool
	lastStopReason StopReason
	runs           map[string]context.CancelFunc

	config Config
}

var (
	defaultPolisMu sync.Mutex
	defaultPolis   *Polis
)

func NewPolis(cfg Config) *Polis {
	return &Polis{
		store:          cfg.Store,
		sampler:        cfg.Sampler,
		supportModules: make(map[string]SupportModule),
		runs:           make(map[string]context.CancelFunc),
		config:         cfg,
		lastStopReason: StopReasonNormal,
	}
}

// StartDefault initializes the process-wide polis if one is not already
// running and returns it.
func StartDefault(ctx context.Context, cfg Config) (*Polis, error) {
	defaultPolisMu.Lock()
	defer defaultPolisMu.Unlock()

	if defaultPolis != nil && defaultPolis.Started() {
		return defaultPolis, nil
	}

	p := NewPolis(cfg)
	if err := p.Init(ctx); err != nil {
		return nil, err
	}
	defaultPolis = p
	return defaultPolis, nil
}

func Default() (*Polis, bool) {
	defaultPolisMu.Lock()
	p := defaultPolis
	defaultPolisMu.Unlock()

	if p == nil || !p.Started() {
		return nil, false
	}
	return p, true
}

func StopDefault(reason StopReason) error {
	defaultPolisMu.Lock()
	p := defaultPolis
	defaultPolisMu.Unlock()
	if p == nil {
		return nil
	}
	if err := p.StopWithReason(reason); err != nil {
		return err
	}
	defaultPolisMu.Lock()
	if defaultPolis == p {
		defaultPolis = nil
	}
	defaultPolisMu.Unlock()
	return nil
}

func (p *Polis) Init(ctx context.Context) error {
	if p.store == nil {
		return fmt.Errorf("store is required")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return nil
	}
	if err := p.store.Init(ctx); err != nil {
		return err
	}

	startedModules := make([]SupportModule, 0, len(p.config.SupportModules))
	rollback := func() {
		stopSupportModules(ctx, startedModules)
		p.supportModules = make(map[string]SupportModule)
		p.moduleOrder = nil
	}
	for i, module := range p.config.SupportModules {
		if module == nil {
			rollback()
			return fmt.Errorf("support module is nil at index %d", i)
		}
		name := module.Name()
		if name == "" {
			rollback()
			return fmt.Errorf("support module name is required at index %d", i)
		}
		if _, exists := p.supportModules[name]; exists {
			rollback()
			return fmt.Errorf("duplicate support module: %s", name)
		}
		if err := module.Start(ctx); err != nil {
			rollback()
			return fmt.Errorf("start support module %s: %w", name, err)
		}
		p.supportModules[name] = module
		p.moduleOrder = append(p.moduleOrder, name)
		startedModules = append(startedModules, module)
	}

	p.started = true
	return nil
}

// Reset stops the polis, wipes the store, and initializes again.
func (p *Polis) Reset(ctx context.Context) error {
	_ = p.StopWithReason(StopReasonShutdown)
	if err := p.store.Init(ctx); err != nil {
		return err
	}
	if err := p.store.Reset(ctx); err != nil {
		return err
	}
	return p.Init(ctx)
}

func (p *Polis) Stop() {
	_ = p.StopWithReason(StopReasonNormal)
}

func (p *Polis) Shutdown() {
	_ = p.StopWithReason(StopReasonShutdown)
}

// StopWithReason cancels every active run, stops support modules in reverse
// start order, and leaves the polis ready for another Init.
func (p *Polis) StopWithReason(reason StopReason) error {
	if reason == "" {
		reason = StopReasonNormal
	}
	if !isValidStopReason(reason) {
		return fmt.Errorf("unsupported stop reason: %s", reason)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, cancel := range p.runs {
		cancel()
	}
	for i := len(p.moduleOrder) - 1; i >= 0; i-- {
		module := p.supportModules[p.moduleOrder[i]]
		if withReason, ok := module.(reasonAwareSupportModule); ok {
			_ = withReason.StopWithReason(context.Background(), reason)
		} else {
			_ = module.Stop(context.Background())
		}
	}

	p.started = false
	p.lastStopReason = reason
	p.supportModules = make(map[string]SupportModule)
	p.moduleOrder = nil
	p.runs = make(map[string]context.CancelFunc)
	return nil
}

// RunEvolution executes one full run: build the world, seed the population,
// and for each generation live out the tick budget, score the survivors,
// persist the snapshot, and breed the next generation. The run is registered
// under its ID so StopRun and Stop can cancel it.
func (p *Polis) RunEvolution(ctx context.Context, cfg EvolutionConfig) (EvolutionResult, error) {
	if cfg.Generations <= 0 {
		return EvolutionResult{}, fmt.Errorf("generations must be > 0, got %d", cfg.Generations)
	}
	if cfg.TickBudget <= 0 {
		return EvolutionResult{}, fmt.Errorf("tick budget must be > 0, got %d", cfg.TickBudget)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}

	engine, err := evo.NewEngine(cfg.Engine)
	if err != nil {
		return EvolutionResult{}, err
	}
	if err := cfg.Sim.Validate(); err != nil {
		return EvolutionResult{}, err
	}

	if !p.Started() {
		return EvolutionResult{}, fmt.Errorf("polis is not initialized")
	}

	runID := cfg.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if err := p.registerRun(runID, cancel); err != nil {
		return EvolutionResult{}, err
	}
	defer p.unregisterRun(runID)

	rng := rand.New(rand.NewSource(cfg.Seed))

	sampler := p.sampler
	if sampler == nil {
		sampler = ValueNoise(cfg.Seed)
	}
	w, err := world.New(cfg.World.Width, cfg.World.Height, sampler, cfg.World.FoodCeiling, cfg.World.Regrowth)
	if err != nil {
		return EvolutionResult{}, err
	}

	genomes, err := p.seedPopulation(rng, cfg)
	if err != nil {
		return EvolutionResult{}, err
	}

	scheduler := sim.NewScheduler(cfg.Workers)
	startedAt := time.Now().UTC()

	history := make([]evo.GenerationStats, 0, cfg.Generations)
	var bestGenome genome.NetworkGenome
	bestFitness := 0.0
	haveBest := false
	var finalFitnesses []float64

	for gen := 0; gen < cfg.Generations; gen++ {
		if err := runCtx.Err(); err != nil {
			return EvolutionResult{}, fmt.Errorf("run %s: %w", runID, err)
		}

		w.Reset()
		pop, err := sim.Spawn(rng, gen, genomes, cfg.Sim, w)
		if err != nil {
			return EvolutionResult{}, err
		}
		report, err := scheduler.StepGeneration(runCtx, pop, w, cfg.TickBudget)
		if err != nil {
			return EvolutionResult{}, fmt.Errorf("run %s generation %d: %w", runID, gen, err)
		}

		fitnesses := pop.Evaluate()
		scored := make([]evo.ScoredGenome, len(genomes))
		for i := range genomes {
			scored[i] = evo.ScoredGenome{Genome: genomes[i], Fitness: fitnesses[i], Index: i}
		}

		stats := evo.Summarize(gen, scored)
		stats.Survivors = report.Survivors
		stats.Ticks = report.Ticks
		history = append(history, stats)

		for i, fitness := range fitnesses {
			if !haveBest || fitness > bestFitness {
				haveBest = true
				bestFitness = fitness
				bestGenome = genomes[i].Clone()
			}
		}

		if err := p.store.SavePopulation(ctx, storage.PopulationRecord{
			VersionedRecord: storage.CurrentVersion(),
			RunID:           runID,
			Generation:      gen,
			Genomes:         genomes,
			Fitnesses:       fitnesses,
		}); err != nil {
			return EvolutionResult{}, fmt.Errorf("run %s: save generation %d: %w", runID, gen, err)
		}

		if gen == cfg.Generations-1 {
			finalFitnesses = fitnesses
			break
		}
		genomes, err = engine.Evolve(runCtx, rng, scored)
		if err != nil {
			return EvolutionResult{}, fmt.Errorf("run %s generation %d: %w", runID, gen, err)
		}
	}

	if err := p.store.SaveFitnessHistory(ctx, runID, history); err != nil {
		return EvolutionResult{}, fmt.Errorf("run %s: save fitness history: %w", runID, err)
	}
	if err := p.store.SaveBestGenome(ctx, runID, storage.GenomeRecord{
		VersionedRecord: storage.CurrentVersion(),
		ID:              uuid.NewString(),
		RunID:           runID,
		Generation:      len(history) - 1,
		Fitness:         bestFitness,
		Genome:          bestGenome,
	}); err != nil {
		return EvolutionResult{}, fmt.Errorf("run %s: save best genome: %w", runID, err)
	}
	if err := p.store.SaveRunSummary(ctx, storage.RunRecord{
		VersionedRecord: storage.CurrentVersion(),
		ID:              runID,
		Seed:            cfg.Seed,
		Generations:     cfg.Generations,
		PopulationSize:  cfg.Engine.PopulationSize,
		BestFitness:     bestFitness,
		StartedAt:       startedAt,
		FinishedAt:      time.Now().UTC(),
	}); err != nil {
		return EvolutionResult{}, fmt.Errorf("run %s: save summary: %w", runID, err)
	}

	return EvolutionResult{
		RunID:          runID,
		History:        history,
		BestFitness:    bestFitness,
		BestGenome:     bestGenome,
		FinalGenomes:   genomes,
		FinalFitnesses: finalFitnesses,
	}, nil
}

// seedPopulation builds the generation-zero genomes: the provided initial
// genomes first, then random genomes to fill the population. All genomes
// must share one topology so crossover stays well-defined.
func (p *Polis) seedPopulation(rng *rand.Rand, cfg EvolutionConfig) ([]genome.NetworkGenome, error) {
	popSize := cfg.Engine.PopulationSize
	if len(cfg.Initial) > popSize {
		return nil, fmt.Errorf("initial population too large: got=%d want<=%d", len(cfg.Initial), popSize)
	}

	sizes := make([]int, 0, len(cfg.HiddenSizes)+2)
	sizes = append(sizes, cfg.Sim.SensorCount())
	sizes = append(sizes, cfg.HiddenSizes...)
	sizes = append(sizes, sim.ActuatorCount)

	activation := cfg.Activation
	if activation == "" {
		activation = genome.ActivationTanh
	}
	outputActivation := cfg.OutputActivation
	if outputActivation == "" {
		outputActivation = activation
	}

	genomes := make([]genome.NetworkGenome, 0, popSize)
	for i, g := range cfg.Initial {
		if err := g.Validate(cfg.Sim.SensorCount(), sim.ActuatorCount); err != nil {
			return nil, fmt.Errorf("initial genome %d: %w", i, err)
		}
		if i > 0 && !cfg.Initial[0].SameTopology(g) {
			return nil, fmt.Errorf("initial genome %d: topology differs from genome 0", i)
		}
		genomes = append(genomes, g.Clone())
	}
	if len(genomes) > 0 {
		// Fresh fill-ins adopt the seeded topology, not the configured one.
		sizes = genomes[0].Topology()
	}

	for len(genomes) < popSize {
		g, err := genome.Random(rng, sizes, activation, outputActivation)
		if err != nil {
			return nil, err
		}
		genomes = append(genomes, g)
	}
	return genomes, nil
}

// StopRun cancels the active run with the given ID.
func (p *Polis) StopRun(runID string) error {
	if runID == "" {
		return fmt.Errorf("run id is required")
	}
	p.mu.RLock()
	cancel, ok := p.runs[runID]
	p.mu.RUnlock()
	if !ok {
		return fmt.Errorf("run not active: %s", runID)
	}
	cancel()
	return nil
}

func (p *Polis) registerRun(runID string, cancel context.CancelFunc) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started {
		return fmt.Errorf("polis is not initialized")
	}
	if _, exists := p.runs[runID]; exists {
		return fmt.Errorf("run already active: %s", runID)
	}
	p.runs[runID] = cancel
	return nil
}

func (p *Polis) unregisterRun(runID string) {
	p.mu.Lock()
	delete(p.runs, runID)
	p.mu.Unlock()
}

func (p *Polis) ActiveRuns() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	ids := make([]string, 0, len(p.runs))
	for id := range p.runs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (p *Polis) ActiveSupportModules() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	names := make([]string, 0, len(p.supportModules))
	for name := range p.supportModules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (p *Polis) Started() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.started
}

func (p *Polis) LastStopReason() StopReason {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastStopReason
}

type reasonAwareSupportModule interface {
	SupportModule
	StopWithReason(ctx context.Context, reason StopReason) error
}

func isValidStopReason(reason StopReason) bool {
	switch reason {
	case StopReasonNormal, StopReasonShutdown:
		return true
	default:
		return false
	}
}

func stopSupportModules(ctx context.Context, modules []SupportModule) {
	for i := len(modules) - 1; i >= 0; i-- {
		_ = modules[i].Stop(ctx)
	}
}
