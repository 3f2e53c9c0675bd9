// Package storage persists runs, population snapshots, and genomes behind a
// small Store interface with an always-available in-memory backend and an
// optional SQLite backend selected at build time.
package storage

import (
	"time"

	"github.com/cjburkey01/fafevosim/internal/genome"
)

// VersionedRecord tags a persisted record with the schema and codec versions
// it was written under. Decoding refuses records from other versions.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// CurrentVersion stamps a record with the versions this build writes.
func CurrentVersion() VersionedRecord {
	return VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion}
}

// GenomeRecord is one stored genome with its provenance and last-known
// fitness.
type GenomeRecord struct {
	VersionedRecord
	ID         string               `json:"id"`
	RunID      string               `json:"run_id,omitempty"`
	Generation int                  `json:"generation"`
	Fitness    float64              `json:"fitness"`
	Genome     genome.NetworkGenome `json:"genome"`
}

// PopulationRecord snapshots one generation of one run: the genomes in spawn
// order with their evaluated fitnesses.
type PopulationRecord struct {
	VersionedRecord
	RunID      string                 `json:"run_id"`
	Generation int                    `json:"generation"`
	Genomes    []genome.NetworkGenome `json:"genomes"`
	Fitnesses  []float64              `json:"fitnesses"`
}

// RunRecord summarizes one evolution run.
type RunRecord struct {
	VersionedRecord
	ID             string    `json:"id"`
	Seed           int64     `json:"seed"`
	Generations    int       `json:"generations"`
	PopulationSize int       `json:"population_size"`
	BestFitness    float64   `json:"best_fitness"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
}

func copyGenomeRecord(r GenomeRecord) GenomeRecord {
	r.Genome = r.Genome.Clone()
	return r
}

func copyPopulationRecord(r PopulationRecord) PopulationRecord {
	genomes := make([]genome.NetworkGenome, len(r.Genomes))
	for i, g := range r.Genomes {
		genomes[i] = g.Clone()
	}
	r.Genomes = genomes
	r.Fitnesses = append([]float64(nil), r.Fitnesses...)
	return r
}
