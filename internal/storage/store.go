package storage

import (
	"context"

	"github.com/cjburkey01/fafevosim/internal/evo"
)

// Store defines the persistence operations the platform runs against.
// Population snapshots are keyed by run ID plus generation; everything else
// by run or genome ID. Lookups report absence with the bool, not an error.
type Store interface {
	Init(ctx context.Context) error
	Reset(ctx context.Context) error
	SaveGenome(ctx context.Context, record GenomeRecord) error
	GetGenome(ctx context.Context, id string) (GenomeRecord, bool, error)
	SaveBestGenome(ctx context.Context, runID string, record GenomeRecord) error
	GetBestGenome(ctx context.Context, runID string) (GenomeRecord, bool, error)
	SavePopulation(ctx context.Context, record PopulationRecord) error
	GetPopulation(ctx context.Context, runID string, generation int) (PopulationRecord, bool, error)
	SaveRunSummary(ctx context.Context, record RunRecord) error
	GetRunSummary(ctx context.Context, id string) (RunRecord, bool, error)
	ListRuns(ctx context.Context) ([]RunRecord, error)
	SaveFitnessHistory(ctx context.Context, runID string, history []evo.GenerationStats) error
	GetFitnessHistory(ctx context.Context, runID string) ([]evo.GenerationStats, bool, error)
}
