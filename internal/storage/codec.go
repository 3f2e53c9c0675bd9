package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cjburkey01/fafevosim/internal/evo"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var (
	ErrSerialization   = errors.New("serialization failed")
	ErrVersionMismatch = errors.New("record version mismatch")
)

func EncodeGenome(r GenomeRecord) ([]byte, error) {
	return marshal(r)
}

func DecodeGenome(data []byte) (GenomeRecord, error) {
	var record GenomeRecord
	if err := unmarshal(data, &record); err != nil {
		return GenomeRecord{}, err
	}
	if err := checkVersion(record.VersionedRecord); err != nil {
		return GenomeRecord{}, err
	}
	return record, nil
}

func EncodePopulation(r PopulationRecord) ([]byte, error) {
	return marshal(r)
}

func DecodePopulation(data []byte) (PopulationRecord, error) {
	var record PopulationRecord
	if err := unmarshal(data, &record); err != nil {
		return PopulationRecord{}, err
	}
	if err := checkVersion(record.VersionedRecord); err != nil {
		return PopulationRecord{}, err
	}
	return record, nil
}

func EncodeRunSummary(r RunRecord) ([]byte, error) {
	return marshal(r)
}

func DecodeRunSummary(data []byte) (RunRecord, error) {
	var record RunRecord
	if err := unmarshal(data, &record); err != nil {
		return RunRecord{}, err
	}
	if err := checkVersion(record.VersionedRecord); err != nil {
		return RunRecord{}, err
	}
	return record, nil
}

func EncodeFitnessHistory(history []evo.GenerationStats) ([]byte, error) {
	return marshal(history)
}

func DecodeFitnessHistory(data []byte) ([]evo.GenerationStats, error) {
	var history []evo.GenerationStats
	if err := unmarshal(data, &history); err != nil {
		return nil, err
	}
	return history, nil
}

func marshal(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return data, nil
}

func unmarshal(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return nil
}

func checkVersion(v VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return fmt.Errorf("%w: got schema=%d codec=%d, want schema=%d codec=%d",
			ErrVersionMismatch, v.SchemaVersion, v.CodecVersion, CurrentSchemaVersion, CurrentCodecVersion)
	}
	return nil
}
