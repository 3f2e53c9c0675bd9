package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cjburkey01/fafevosim/internal/evo"
)

// MemoryStore keeps every record in maps behind an RWMutex. Values are
// deep-copied on both save and load so callers can never alias store state.
type MemoryStore struct {
	mu          sync.RWMutex
	genomes     map[string]GenomeRecord
	best        map[string]GenomeRecord
	populations map[string]PopulationRecord
	runs        map[string]RunRecord
	history     map[string][]evo.GenerationStats
}

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{}
	s.reset()
	return s
}

// Init recreates the maps, so it doubles as a reset.
func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reset()
	return nil
}

func (s *MemoryStore) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reset()
	return nil
}

func (s *MemoryStore) reset() {
	s.genomes = make(map[string]GenomeRecord)
	s.best = make(map[string]GenomeRecord)
	s.populations = make(map[string]PopulationRecord)
	s.runs = make(map[string]RunRecord)
	s.history = make(map[string][]evo.GenerationStats)
}

func (s *MemoryStore) SaveGenome(_ context.Context, record GenomeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.genomes[record.ID] = copyGenomeRecord(record)
	return nil
}

func (s *MemoryStore) GetGenome(_ context.Context, id string) (GenomeRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.genomes[id]
	if !ok {
		return GenomeRecord{}, false, nil
	}
	return copyGenomeRecord(record), true, nil
}

func (s *MemoryStore) SaveBestGenome(_ context.Context, runID string, record GenomeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.best[runID] = copyGenomeRecord(record)
	return nil
}

func (s *MemoryStore) GetBestGenome(_ context.Context, runID string) (GenomeRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.best[runID]
	if !ok {
		return GenomeRecord{}, false, nil
	}
	return copyGenomeRecord(record), true, nil
}

func (s *MemoryStore) SavePopulation(_ context.Context, record PopulationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.populations[populationKey(record.RunID, record.Generation)] = copyPopulationRecord(record)
	return nil
}

func (s *MemoryStore) GetPopulation(_ context.Context, runID string, generation int) (PopulationRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.populations[populationKey(runID, generation)]
	if !ok {
		return PopulationRecord{}, false, nil
	}
	return copyPopulationRecord(record), true, nil
}

func (s *MemoryStore) SaveRunSummary(_ context.Context, record RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs[record.ID] = record
	return nil
}

func (s *MemoryStore) GetRunSummary(_ context.Context, id string) (RunRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.runs[id]
	return record, ok, nil
}

func (s *MemoryStore) ListRuns(_ context.Context) ([]RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]RunRecord, 0, len(s.runs))
	for _, record := range s.runs {
		runs = append(runs, record)
	}
	sort.Slice(runs, func(i, j int) bool {
		if !runs[i].StartedAt.Equal(runs[j].StartedAt) {
			return runs[i].StartedAt.Before(runs[j].StartedAt)
		}
		return runs[i].ID < runs[j].ID
	})
	return runs, nil
}

func (s *MemoryStore) SaveFitnessHistory(_ context.Context, runID string, history []evo.GenerationStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]evo.GenerationStats, len(history))
	copy(copied, history)
	s.history[runID] = copied
	return nil
}

func (s *MemoryStore) GetFitnessHistory(_ context.Context, runID string) ([]evo.GenerationStats, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.history[runID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]evo.GenerationStats, len(history))
	copy(copied, history)
	return copied, true, nil
}

func populationKey(runID string, generation int) string {
	return fmt.Sprintf("%s/%d", runID, generation)
}
