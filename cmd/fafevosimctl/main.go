package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cjburkey01/fafevosim/internal/platform"
	"github.com/cjburkey01/fafevosim/internal/stats"
	"github.com/cjburkey01/fafevosim/internal/storage"
	simapi "github.com/cjburkey01/fafevosim/pkg/fafevosim"
)

const (
	artifactsDir = "artifacts"
	exportsDir   = "exports"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "reset":
		return runReset(ctx, args[1:])
	case "run":
		return runRun(ctx, args[1:])
	case "list-runs":
		return runListRuns(ctx, args[1:])
	case "history":
		return runHistory(ctx, args[1:])
	case "best":
		return runBest(ctx, args[1:])
	case "export-run":
		return runExportRun(ctx, args[1:])
	case "export-genome":
		return runExportGenome(ctx, args[1:])
	case "import-genome":
		return runImportGenome(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "fafevosim.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := storage.NewStore(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = storage.CloseIfSupported(store)
	}()

	polis := platform.NewPolis(platform.Config{Store: store})
	if err := polis.Init(ctx); err != nil {
		return err
	}

	fmt.Printf("initialized store=%s\n", *storeKind)
	return nil
}

func runReset(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reset", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "fafevosim.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := storage.NewStore(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = storage.CloseIfSupported(store)
	}()

	polis := platform.NewPolis(platform.Config{Store: store})
	if err := polis.Reset(ctx); err != nil {
		return err
	}

	fmt.Printf("reset store=%s\n", *storeKind)
	return nil
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional YAML config merged over built-in defaults")
	runID := fs.String("run-id", "", "explicit run id (optional)")
	generations := fs.Int("gens", 0, "generation count (0 uses config)")
	population := fs.Int("pop", 0, "population size (0 uses config)")
	seed := fs.Int64("seed", 0, "rng seed (0 uses config)")
	workers := fs.Int("workers", 0, "worker count (0 uses config)")
	tickBudget := fs.Int("tick-budget", 0, "max ticks per generation (0 uses config)")
	selection := fs.String("selection", "", "selection strategy: roulette|tournament (empty uses config)")
	seedGenome := fs.String("seed-genome", "", "stored genome id injected into the initial population")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "fafevosim.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := simapi.New(simapi.Options{
		StoreKind:    *storeKind,
		DBPath:       *dbPath,
		ConfigPath:   *configPath,
		ArtifactsDir: artifactsDir,
		ExportsDir:   exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Run(ctx, simapi.RunRequest{
		RunID:        *runID,
		Generations:  *generations,
		Population:   *population,
		Workers:      *workers,
		TickBudget:   *tickBudget,
		Seed:         *seed,
		Selection:    *selection,
		SeedGenomeID: *seedGenome,
	})
	if err != nil {
		return err
	}

	fmt.Printf("run completed run_id=%s generations=%d\n", summary.RunID, len(summary.History))
	for _, gen := range summary.History {
		fmt.Printf("generation=%d best=%.6f mean=%.6f worst=%.6f survivors=%d ticks=%d\n",
			gen.Generation,
			gen.Best,
			gen.Mean,
			gen.Worst,
			gen.Survivors,
			gen.Ticks,
		)
	}
	fmt.Printf("final_best_fitness=%.6f\n", summary.FinalBestFitness)
	fmt.Printf("artifacts_dir=%s\n", summary.ArtifactsDir)
	return nil
}

func runListRuns(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("list-runs", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "max runs to list")
	jsonOut := fs.Bool("json", false, "emit runs list as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}

	entries, err := stats.ListRunIndex(artifactsDir)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	if len(entries) > *limit {
		entries = entries[:*limit]
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	for _, e := range entries {
		fmt.Printf("run_id=%s created_at=%s seed=%d pop=%d gens=%d final_best_fitness=%.6f\n",
			e.RunID,
			e.CreatedAtUTC,
			e.Seed,
			e.PopulationSize,
			e.Generations,
			e.FinalBestFitness,
		)
	}
	return nil
}

func runHistory(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show history for the most recent run")
	limit := fs.Int("limit", 0, "max generations to print (0 for all)")
	plotPoints := fs.Int("plot-points", 0, "downsample each series to at most N points (0 prints every generation)")
	jsonOut := fs.Bool("json", false, "emit history as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "fafevosim.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *runID == "" && !*latest {
		return errors.New("history requires --run-id or --latest")
	}

	client, err := simapi.New(simapi.Options{
		StoreKind:    *storeKind,
		DBPath:       *dbPath,
		ArtifactsDir: artifactsDir,
		ExportsDir:   exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	history, err := client.History(ctx, simapi.HistoryRequest{
		RunID:  *runID,
		Latest: *latest,
		Limit:  *limit,
	})
	if err != nil {
		return err
	}
	if len(history) == 0 {
		fmt.Println("no history")
		return nil
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(history)
	}
	if *plotPoints > 0 {
		for _, p := range stats.BuildBestPlot(history, *plotPoints) {
			fmt.Printf("plot=best generation=%d value=%.6f\n", p.Generation, p.Value)
		}
		for _, p := range stats.BuildMeanPlot(history, *plotPoints) {
			fmt.Printf("plot=mean generation=%d value=%.6f\n", p.Generation, p.Value)
		}
		return nil
	}

	for _, gen := range history {
		fmt.Printf("generation=%d best=%.6f mean=%.6f worst=%.6f std_dev=%.6f diversity=%d survivors=%d ticks=%d\n",
			gen.Generation,
			gen.Best,
			gen.Mean,
			gen.Worst,
			gen.StdDev,
			gen.Diversity,
			gen.Survivors,
			gen.Ticks,
		)
	}
	return nil
}

func runBest(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("best", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show the best genome for the most recent run")
	jsonOut := fs.Bool("json", false, "emit the genome record as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "fafevosim.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *runID == "" && !*latest {
		return errors.New("best requires --run-id or --latest")
	}

	client, err := simapi.New(simapi.Options{
		StoreKind:    *storeKind,
		DBPath:       *dbPath,
		ArtifactsDir: artifactsDir,
		ExportsDir:   exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	record, err := client.Best(ctx, simapi.BestRequest{RunID: *runID, Latest: *latest})
	if err != nil {
		return err
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(record)
	}

	fmt.Printf("run_id=%s genome_id=%s generation=%d fitness=%.6f layers=%d weights=%d\n",
		record.RunID,
		record.ID,
		record.Generation,
		record.Fitness,
		len(record.Genome.Layers),
		record.Genome.WeightCount(),
	)
	return nil
}

func runExportRun(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("export-run", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "export the most recent run from run index")
	outDir := fs.String("out", exportsDir, "export output directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *runID == "" && !*latest {
		return errors.New("export-run requires --run-id or --latest")
	}
	if *latest {
		entries, err := stats.ListRunIndex(artifactsDir)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return errors.New("no runs available to export")
		}
		*runID = entries[0].RunID
	}

	exportedDir, err := stats.ExportRunArtifacts(artifactsDir, *runID, *outDir)
	if err != nil {
		return err
	}

	fmt.Printf("exported run_id=%s to=%s\n", *runID, filepath.Clean(exportedDir))
	return nil
}

func runExportGenome(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export-genome", flag.ContinueOnError)
	genomeID := fs.String("genome-id", "", "stored genome id")
	runID := fs.String("run-id", "", "run id whose best genome is exported")
	latest := fs.Bool("latest", false, "export the best genome of the most recent run")
	outPath := fs.String("out", "", "output file path (default exports/genome-<id>.json)")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "fafevosim.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *genomeID == "" && *runID == "" && !*latest {
		return errors.New("export-genome requires --genome-id, --run-id, or --latest")
	}

	client, err := simapi.New(simapi.Options{
		StoreKind:    *storeKind,
		DBPath:       *dbPath,
		ArtifactsDir: artifactsDir,
		ExportsDir:   exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	path, err := client.ExportGenome(ctx, simapi.ExportGenomeRequest{
		GenomeID: *genomeID,
		RunID:    *runID,
		Latest:   *latest,
		OutPath:  *outPath,
	})
	if err != nil {
		return err
	}

	fmt.Printf("exported genome to=%s\n", path)
	return nil
}

func runImportGenome(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("import-genome", flag.ContinueOnError)
	filePath := fs.String("file", "", "genome JSON file to import")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "fafevosim.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *filePath == "" {
		return errors.New("import-genome requires --file")
	}

	client, err := simapi.New(simapi.Options{
		StoreKind:    *storeKind,
		DBPath:       *dbPath,
		ArtifactsDir: artifactsDir,
		ExportsDir:   exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	record, err := client.ImportGenome(ctx, *filePath)
	if err != nil {
		return err
	}

	fmt.Printf("imported genome_id=%s layers=%d weights=%d\n",
		record.ID,
		len(record.Genome.Layers),
		record.Genome.WeightCount(),
	)
	return nil
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: fafevosimctl <init|reset|run|list-runs|history|best|export-run|export-genome|import-genome> [flags]", msg)
}
