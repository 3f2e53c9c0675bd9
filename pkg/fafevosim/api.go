// Package fafevosim is the embedding API for the simulator: it owns a store
// and a polis, runs evolution with configuration overrides applied, and
// exposes the stored runs, histories, and genomes.
package fafevosim

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/cjburkey01/fafevosim/internal/config"
	"github.com/cjburkey01/fafevosim/internal/evo"
	"github.com/cjburkey01/fafevosim/internal/platform"
	"github.com/cjburkey01/fafevosim/internal/stats"
	"github.com/cjburkey01/fafevosim/internal/storage"
)

const (
	defaultArtifactsDir = "artifacts"
	defaultExportsDir   = "exports"
)

type Options struct {
	StoreKind    string
	DBPath       string
	ConfigPath   string
	ArtifactsDir string
	ExportsDir   string
}

type Client struct {
	store storage.Store
	polis *platform.Polis
	cfg   *config.Config

	artifactsDir string
	exportsDir   string
}

// RunRequest overrides pieces of the loaded configuration for one run. Zero
// values mean "use the configured value". SeedGenomeID injects a stored
// genome into the initial population.
type RunRequest struct {
	RunID        string
	Generations  int
	Population   int
	Workers      int
	TickBudget   int
	Seed         int64
	Selection    string
	SeedGenomeID string
}

type RunSummary struct {
	RunID            string
	ArtifactsDir     string
	History          []evo.GenerationStats
	FinalBestFitness float64
}

type RunsRequest struct {
	Limit int
}

type RunItem struct {
	RunID         string
	Seed          int64
	Population    int
	Generations   int
	BestFitness   float64
	StartedAtUTC  string
	FinishedAtUTC string
}

type HistoryRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

type BestRequest struct {
	RunID  string
	Latest bool
}

type ExportRunRequest struct {
	RunID  string
	Latest bool
	OutDir string
}

type ExportSummary struct {
	RunID     string
	Directory string
}

// ExportGenomeRequest names the genome to export: either a stored genome by
// ID, or a run's best genome by run ID or latest.
type ExportGenomeRequest struct {
	GenomeID string
	RunID    string
	Latest   bool
	OutPath  string
}

func New(opts Options) (*Client, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = cfg.Storage.Backend
	}
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = cfg.Storage.SQLitePath
	}
	artifactsDir := opts.ArtifactsDir
	if artifactsDir == "" {
		artifactsDir = defaultArtifactsDir
	}
	exportsDir := opts.ExportsDir
	if exportsDir == "" {
		exportsDir = defaultExportsDir
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:        store,
		cfg:          cfg,
		artifactsDir: artifactsDir,
		exportsDir:   exportsDir,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	_, err := c.ensurePolis(ctx)
	return err
}

// Reset wipes the store and reinitializes. Artifact directories on disk are
// left alone.
func (c *Client) Reset(ctx context.Context) error {
	p, err := c.ensurePolis(ctx)
	if err != nil {
		return err
	}
	return p.Reset(ctx)
}

// Run executes one evolution run with req's overrides applied over the
// loaded configuration, persists it in the store, and writes the artifact
// directory.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	cfg := *c.cfg
	if req.Generations > 0 {
		cfg.Run.Generations = req.Generations
	}
	if req.Population > 0 {
		cfg.Evolution.PopulationSize = req.Population
	}
	if req.Workers > 0 {
		cfg.Run.Workers = req.Workers
	}
	if req.TickBudget > 0 {
		cfg.Run.TickBudget = req.TickBudget
	}
	if req.Seed != 0 {
		cfg.Run.Seed = req.Seed
	}
	if req.Selection != "" {
		cfg.Evolution.Selection = req.Selection
	}
	if err := cfg.Validate(); err != nil {
		return RunSummary{}, err
	}

	p, err := c.ensurePolis(ctx)
	if err != nil {
		return RunSummary{}, err
	}

	evolutionCfg := platform.EvolutionConfig{
		RunID:       req.RunID,
		Seed:        cfg.Run.Seed,
		Generations: cfg.Run.Generations,
		Workers:     cfg.Run.Workers,
		TickBudget:  cfg.Run.TickBudget,
		Engine:      cfg.EngineConfig(),
		Sim:         cfg.SimParams(),
		World: platform.WorldConfig{
			Width:       cfg.World.Width,
			Height:      cfg.World.Height,
			FoodCeiling: cfg.World.FoodCeiling,
			Regrowth:    cfg.World.Regrowth,
		},
		HiddenSizes:      cfg.Network.HiddenSizes,
		Activation:       cfg.Network.Activation,
		OutputActivation: cfg.Network.OutputActivation,
	}
	if req.SeedGenomeID != "" {
		record, ok, err := c.store.GetGenome(ctx, req.SeedGenomeID)
		if err != nil {
			return RunSummary{}, err
		}
		if !ok {
			return RunSummary{}, fmt.Errorf("seed genome not found: %s", req.SeedGenomeID)
		}
		evolutionCfg.Initial = append(evolutionCfg.Initial, record.Genome)
	}

	now := time.Now().UTC()
	result, err := p.RunEvolution(ctx, evolutionCfg)
	if err != nil {
		return RunSummary{}, err
	}

	runDir, err := stats.WriteRunArtifacts(c.artifactsDir, stats.RunArtifacts{
		Config: stats.RunConfig{
			RunID:            result.RunID,
			Seed:             cfg.Run.Seed,
			Generations:      cfg.Run.Generations,
			PopulationSize:   cfg.Evolution.PopulationSize,
			Elitism:          cfg.Evolution.Elitism,
			MutationRate:     cfg.Evolution.MutationRate,
			MutationSigma:    cfg.Evolution.MutationSigma,
			CrossoverRate:    cfg.Evolution.CrossoverRate,
			Selection:        cfg.Evolution.Selection,
			TournamentSize:   cfg.Evolution.TournamentSize,
			Workers:          cfg.Run.Workers,
			TickBudget:       cfg.Run.TickBudget,
			WorldWidth:       cfg.World.Width,
			WorldHeight:      cfg.World.Height,
			FoodCeiling:      cfg.World.FoodCeiling,
			Regrowth:         cfg.World.Regrowth,
			SensorRadius:     cfg.Agent.SensorRadius,
			HiddenSizes:      cfg.Network.HiddenSizes,
			Activation:       cfg.Network.Activation,
			OutputActivation: cfg.Network.OutputActivation,
			CreatedAtUTC:     now.Format(time.RFC3339Nano),
		},
		History:          result.History,
		FinalBestFitness: result.BestFitness,
		Best:             stats.BestGenome{Fitness: result.BestFitness, Genome: result.BestGenome},
	})
	if err != nil {
		return RunSummary{}, err
	}
	if err := stats.AppendRunIndex(c.artifactsDir, stats.RunIndexEntry{
		RunID:            result.RunID,
		Seed:             cfg.Run.Seed,
		Generations:      cfg.Run.Generations,
		PopulationSize:   cfg.Evolution.PopulationSize,
		FinalBestFitness: result.BestFitness,
		CreatedAtUTC:     now.Format(time.RFC3339Nano),
	}); err != nil {
		return RunSummary{}, err
	}

	return RunSummary{
		RunID:            result.RunID,
		ArtifactsDir:     filepath.Clean(runDir),
		History:          result.History,
		FinalBestFitness: result.BestFitness,
	}, nil
}

func (c *Client) Runs(ctx context.Context, req RunsRequest) ([]RunItem, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}
	if _, err := c.ensurePolis(ctx); err != nil {
		return nil, err
	}

	records, err := c.store.ListRuns(ctx)
	if err != nil {
		return nil, err
	}
	// Newest first.
	out := make([]RunItem, 0, len(records))
	for i := len(records) - 1; i >= 0 && len(out) < req.Limit; i-- {
		record := records[i]
		out = append(out, RunItem{
			RunID:         record.ID,
			Seed:          record.Seed,
			Population:    record.PopulationSize,
			Generations:   record.Generations,
			BestFitness:   record.BestFitness,
			StartedAtUTC:  record.StartedAt.UTC().Format(time.RFC3339Nano),
			FinishedAtUTC: record.FinishedAt.UTC().Format(time.RFC3339Nano),
		})
	}
	return out, nil
}

// LatestRunID resolves the most recently started run in the store.
func (c *Client) LatestRunID(ctx context.Context) (string, error) {
	if _, err := c.ensurePolis(ctx); err != nil {
		return "", err
	}
	records, err := c.store.ListRuns(ctx)
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return "", errors.New("no runs available")
	}
	return records[len(records)-1].ID, nil
}

func (c *Client) History(ctx context.Context, req HistoryRequest) ([]evo.GenerationStats, error) {
	if req.Limit < 0 {
		return nil, errors.New("limit must be >= 0")
	}
	runID, err := c.resolveRunID(ctx, req.RunID, req.Latest)
	if err != nil {
		return nil, err
	}

	history, ok, err := c.store.GetFitnessHistory(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("fitness history not found for run id: %s", runID)
	}
	if req.Limit > 0 && len(history) > req.Limit {
		history = history[:req.Limit]
	}
	return append([]evo.GenerationStats(nil), history...), nil
}

func (c *Client) Best(ctx context.Context, req BestRequest) (storage.GenomeRecord, error) {
	runID, err := c.resolveRunID(ctx, req.RunID, req.Latest)
	if err != nil {
		return storage.GenomeRecord{}, err
	}

	record, ok, err := c.store.GetBestGenome(ctx, runID)
	if err != nil {
		return storage.GenomeRecord{}, err
	}
	if !ok {
		return storage.GenomeRecord{}, fmt.Errorf("best genome not found for run id: %s", runID)
	}
	return record, nil
}

// ExportRun copies a run's artifact directory into OutDir.
func (c *Client) ExportRun(ctx context.Context, req ExportRunRequest) (ExportSummary, error) {
	runID, err := c.resolveRunID(ctx, req.RunID, req.Latest)
	if err != nil {
		return ExportSummary{}, err
	}
	if req.OutDir == "" {
		req.OutDir = c.exportsDir
	}

	exportedDir, err := stats.ExportRunArtifacts(c.artifactsDir, runID, req.OutDir)
	if err != nil {
		return ExportSummary{}, err
	}
	return ExportSummary{RunID: runID, Directory: filepath.Clean(exportedDir)}, nil
}

// ExportGenome writes one genome record to a JSON file and returns its path.
func (c *Client) ExportGenome(ctx context.Context, req ExportGenomeRequest) (string, error) {
	var record storage.GenomeRecord
	switch {
	case req.GenomeID != "":
		if req.RunID != "" || req.Latest {
			return "", errors.New("use either genome id or run id")
		}
		if _, err := c.ensurePolis(ctx); err != nil {
			return "", err
		}
		var ok bool
		var err error
		record, ok, err = c.store.GetGenome(ctx, req.GenomeID)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", fmt.Errorf("genome not found: %s", req.GenomeID)
		}
	default:
		var err error
		record, err = c.Best(ctx, BestRequest{RunID: req.RunID, Latest: req.Latest})
		if err != nil {
			return "", err
		}
	}

	data, err := storage.EncodeGenome(record)
	if err != nil {
		return "", err
	}
	data = append(data, '\n')

	path := req.OutPath
	if path == "" {
		if err := os.MkdirAll(c.exportsDir, 0o755); err != nil {
			return "", err
		}
		path = filepath.Join(c.exportsDir, fmt.Sprintf("genome-%s.json", record.ID))
	} else if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", err
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return filepath.Clean(path), nil
}

// ImportGenome loads a genome record from a JSON file into the store and
// returns it. Records without an ID get a fresh one.
func (c *Client) ImportGenome(ctx context.Context, path string) (storage.GenomeRecord, error) {
	if path == "" {
		return storage.GenomeRecord{}, errors.New("genome file path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return storage.GenomeRecord{}, err
	}
	record, err := storage.DecodeGenome(data)
	if err != nil {
		return storage.GenomeRecord{}, err
	}
	if len(record.Genome.Layers) == 0 {
		return storage.GenomeRecord{}, errors.New("imported genome has no layers")
	}
	// The genome's external widths are checked against the run configuration
	// at seeding time; here only internal consistency matters.
	sensors := record.Genome.Layers[0].Inputs
	actuators := record.Genome.Layers[len(record.Genome.Layers)-1].Outputs
	if err := record.Genome.Validate(sensors, actuators); err != nil {
		return storage.GenomeRecord{}, err
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}

	if _, err := c.ensurePolis(ctx); err != nil {
		return storage.GenomeRecord{}, err
	}
	if err := c.store.SaveGenome(ctx, record); err != nil {
		return storage.GenomeRecord{}, err
	}
	return record, nil
}

func (c *Client) resolveRunID(ctx context.Context, runID string, latest bool) (string, error) {
	if runID != "" && latest {
		return "", errors.New("use either run id or latest")
	}
	if runID != "" {
		if _, err := c.ensurePolis(ctx); err != nil {
			return "", err
		}
		return runID, nil
	}
	if !latest {
		return "", errors.New("run id or latest is required")
	}
	return c.LatestRunID(ctx)
}

func (c *Client) ensurePolis(ctx context.Context) (*platform.Polis, error) {
	if c.polis != nil {
		return c.polis, nil
	}
	p := platform.NewPolis(platform.Config{Store: c.store})
	if err := p.Init(ctx); err != nil {
		return nil, err
	}
	c.polis = p
	return c.polis, nil
}
