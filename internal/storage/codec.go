package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/demmel/life-plus-plus/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

func EncodeRun(run model.RunRecord) ([]byte, error) {
	return json.Marshal(run)
}

func DecodeRun(data []byte) (model.RunRecord, error) {
	var run model.RunRecord
	if err := json.Unmarshal(data, &run); err != nil {
		return model.RunRecord{}, err
	}
	if err := checkVersion(run.VersionedRecord); err != nil {
		return model.RunRecord{}, err
	}
	return run, nil
}

func EncodeComparison(record model.ComparisonRecord) ([]byte, error) {
	return json.Marshal(record)
}

func DecodeComparison(data []byte) (model.ComparisonRecord, error) {
	var record model.ComparisonRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return model.ComparisonRecord{}, err
	}
	if err := checkVersion(record.VersionedRecord); err != nil {
		return model.ComparisonRecord{}, err
	}
	return record, nil
}

func EncodeGeneration(record model.GenerationRecord) ([]byte, error) {
	return json.Marshal(record)
}

func DecodeGeneration(data []byte) (model.GenerationRecord, error) {
	var record model.GenerationRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return model.GenerationRecord{}, err
	}
	if err := checkVersion(record.VersionedRecord); err != nil {
		return model.GenerationRecord{}, err
	}
	return record, nil
}

func EncodeLineage(record model.LineageRecord) ([]byte, error) {
	return json.Marshal(record)
}

func DecodeLineage(data []byte) (model.LineageRecord, error) {
	var record model.LineageRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return model.LineageRecord{}, err
	}
	if err := checkVersion(record.VersionedRecord); err != nil {
		return model.LineageRecord{}, err
	}
	return record, nil
}

// Versioned stamps the current schema and codec versions.
func Versioned() model.VersionedRecord {
	return model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion}
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return fmt.Errorf("%w: schema=%d codec=%d", ErrVersionMismatch, v.SchemaVersion, v.CodecVersion)
	}
	return nil
}
