// Package stats writes per-run artifact directories: the run configuration,
// the generation history as JSON and CSV, the best genome, and a base-level
// index of all runs for quick listing.
package stats

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/cjburkey01/fafevosim/internal/evo"
	"github.com/cjburkey01/fafevosim/internal/genome"
)

const runIndexFile = "run_index.json"

// RunConfig is the artifact copy of the parameters a run was started with,
// written next to its results so a run directory is self-describing.
type RunConfig struct {
	RunID            string  `json:"run_id"`
	Seed             int64   `json:"seed"`
	Generations      int     `json:"generations"`
	PopulationSize   int     `json:"population_size"`
	Elitism          int     `json:"elitism"`
	MutationRate     float64 `json:"mutation_rate"`
	MutationSigma    float64 `json:"mutation_sigma"`
	CrossoverRate    float64 `json:"crossover_rate"`
	Selection        string  `json:"selection"`
	TournamentSize   int     `json:"tournament_size,omitempty"`
	Workers          int     `json:"workers"`
	TickBudget       int     `json:"tick_budget"`
	WorldWidth       int     `json:"world_width"`
	WorldHeight      int     `json:"world_height"`
	FoodCeiling      float64 `json:"food_ceiling"`
	Regrowth         float64 `json:"regrowth"`
	SensorRadius     int     `json:"sensor_radius"`
	HiddenSizes      []int   `json:"hidden_sizes"`
	Activation       string  `json:"activation"`
	OutputActivation string  `json:"output_activation"`
	CreatedAtUTC     string  `json:"created_at_utc"`
}

// BestGenome is the champion of a run with the fitness it earned.
type BestGenome struct {
	Fitness float64              `json:"fitness"`
	Genome  genome.NetworkGenome `json:"genome"`
}

type RunArtifacts struct {
	Config           RunConfig             `json:"config"`
	History          []evo.GenerationStats `json:"history"`
	FinalBestFitness float64               `json:"final_best_fitness"`
	Best             BestGenome            `json:"best"`
}

type RunIndexEntry struct {
	RunID            string  `json:"run_id"`
	Seed             int64   `json:"seed"`
	Generations      int     `json:"generations"`
	PopulationSize   int     `json:"population_size"`
	FinalBestFitness float64 `json:"final_best_fitness"`
	CreatedAtUTC     string  `json:"created_at_utc"`
}

type storedHistory struct {
	History          []evo.GenerationStats `json:"history"`
	FinalBestFitness float64               `json:"final_best_fitness"`
}

// WriteRunArtifacts writes the run's artifact directory under baseDir and
// returns its path.
func WriteRunArtifacts(baseDir string, artifacts RunArtifacts) (string, error) {
	if artifacts.Config.RunID == "" {
		return "", fmt.Errorf("run id is required")
	}

	runDir := filepath.Join(baseDir, artifacts.Config.RunID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, "config.json"), artifacts.Config); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "history.json"), storedHistory{
		History:          artifacts.History,
		FinalBestFitness: artifacts.FinalBestFitness,
	}); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "best_genome.json"), artifacts.Best); err != nil {
		return "", err
	}
	if err := WriteHistorySeries(runDir, artifacts.History); err != nil {
		return "", err
	}

	return runDir, nil
}

// AppendRunIndex adds the entry to the base directory's run index, replacing
// any existing entry with the same run ID.
func AppendRunIndex(baseDir string, entry RunIndexEntry) error {
	if entry.RunID == "" {
		return fmt.Errorf("run id is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}

	index, err := ListRunIndex(baseDir)
	if err != nil {
		return err
	}

	for i := range index {
		if index[i].RunID == entry.RunID {
			index[i] = entry
			return writeJSON(filepath.Join(baseDir, runIndexFile), index)
		}
	}

	index = append(index, entry)
	return writeJSON(filepath.Join(baseDir, runIndexFile), index)
}

// ListRunIndex returns the run index sorted newest first. A missing index
// file reads as an empty index.
func ListRunIndex(baseDir string) ([]RunIndexEntry, error) {
	path := filepath.Join(baseDir, runIndexFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunIndexEntry{}, nil
		}
		return nil, err
	}

	var entries []RunIndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	type indexedEntry struct {
		entry RunIndexEntry
		idx   int
	}
	indexed := make([]indexedEntry, len(entries))
	for i := range entries {
		indexed[i] = indexedEntry{entry: entries[i], idx: i}
	}
	sort.Slice(indexed, func(i, j int) bool {
		if indexed[i].entry.CreatedAtUTC == indexed[j].entry.CreatedAtUTC {
			// Prefer later appended entries for equal timestamps.
			return indexed[i].idx > indexed[j].idx
		}
		return indexed[i].entry.CreatedAtUTC > indexed[j].entry.CreatedAtUTC
	})

	sorted := make([]RunIndexEntry, 0, len(indexed))
	for _, item := range indexed {
		sorted = append(sorted, item.entry)
	}
	return sorted, nil
}

// ExportRunArtifacts copies a run's artifact files into outDir and returns
// the destination path.
func ExportRunArtifacts(baseDir, runID, outDir string) (string, error) {
	if runID == "" {
		return "", fmt.Errorf("run id is required")
	}

	src := filepath.Join(baseDir, runID)
	if _, err := os.Stat(src); err != nil {
		return "", err
	}

	dst := filepath.Join(outDir, runID)
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return "", err
	}

	files := []string{"config.json", "history.json", "best_genome.json"}
	for _, file := range files {
		if err := copyFile(filepath.Join(src, file), filepath.Join(dst, file)); err != nil {
			return "", err
		}
	}
	seriesPath := filepath.Join(src, "history.csv")
	if _, err := os.Stat(seriesPath); err == nil {
		if err := copyFile(seriesPath, filepath.Join(dst, "history.csv")); err != nil {
			return "", err
		}
	} else if err != nil && !os.IsNotExist(err) {
		return "", err
	}

	return dst, nil
}

func ReadRunConfig(baseDir, runID string) (RunConfig, bool, error) {
	path := filepath.Join(baseDir, runID, "config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return RunConfig{}, false, nil
		}
		return RunConfig{}, false, err
	}

	var cfg RunConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return RunConfig{}, false, err
	}
	return cfg, true, nil
}

func WriteRunConfig(baseDir, runID string, cfg RunConfig) error {
	if strings.TrimSpace(runID) == "" {
		return fmt.Errorf("run id is required")
	}
	if strings.TrimSpace(cfg.RunID) == "" {
		cfg.RunID = strings.TrimSpace(runID)
	}
	if cfg.RunID != strings.TrimSpace(runID) {
		return fmt.Errorf("run config run id mismatch: got=%s want=%s", cfg.RunID, strings.TrimSpace(runID))
	}
	runDir := filepath.Join(baseDir, runID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return err
	}
	return writeJSON(filepath.Join(runDir, "config.json"), cfg)
}

func ReadRunHistory(baseDir, runID string) ([]evo.GenerationStats, bool, error) {
	path := filepath.Join(baseDir, runID, "history.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var stored storedHistory
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, false, err
	}
	return stored.History, true, nil
}

func ReadBestGenome(baseDir, runID string) (BestGenome, bool, error) {
	path := filepath.Join(baseDir, runID, "best_genome.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return BestGenome{}, false, nil
		}
		return BestGenome{}, false, err
	}

	var best BestGenome
	if err := json.Unmarshal(data, &best); err != nil {
		return BestGenome{}, false, err
	}
	return best, true, nil
}

// WriteHistorySeries writes the per-generation history as CSV for plotting
// outside the tool.
func WriteHistorySeries(runDir string, history []evo.GenerationStats) error {
	path := filepath.Join(runDir, "history.csv")
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"generation", "best", "mean", "worst", "std_dev", "diversity", "survivors", "ticks"}); err != nil {
		return err
	}
	for _, stats := range history {
		if err := writer.Write([]string{
			strconv.Itoa(stats.Generation),
			strconv.FormatFloat(stats.Best, 'f', -1, 64),
			strconv.FormatFloat(stats.Mean, 'f', -1, 64),
			strconv.FormatFloat(stats.Worst, 'f', -1, 64),
			strconv.FormatFloat(stats.StdDev, 'f', -1, 64),
			strconv.Itoa(stats.Diversity),
			strconv.Itoa(stats.Survivors),
			strconv.Itoa(stats.Ticks),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadHistorySeries reads the best-fitness column back from a run's CSV.
func ReadHistorySeries(baseDir, runID string) ([]float64, bool, error) {
	path := filepath.Join(baseDir, runID, "history.csv")
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return []float64{}, true, nil
		}
		return nil, false, err
	}
	if len(header) < 2 {
		return nil, false, fmt.Errorf("history series header must have at least 2 columns")
	}

	series := make([]float64, 0, 128)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, false, err
		}
		if len(record) < 2 {
			return nil, false, fmt.Errorf("history series row must have at least 2 columns")
		}
		value, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, false, err
		}
		series = append(series, value)
	}
	return series, true, nil
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
