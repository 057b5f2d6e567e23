package storage

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/demmel/life-plus-plus/internal/model"
)

var errNotInitialized = errors.New("store is not initialized")

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	runs        map[string]model.RunRecord
	comparisons map[string][]model.ComparisonRecord
	generations map[string][]model.GenerationRecord
	lineage     map[string][]model.LineageRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}
	s.initialized = true
	s.runs = make(map[string]model.RunRecord)
	s.comparisons = make(map[string][]model.ComparisonRecord)
	s.generations = make(map[string][]model.GenerationRecord)
	s.lineage = make(map[string][]model.LineageRecord)
	return nil
}

func (s *MemoryStore) SaveRun(_ context.Context, run model.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	s.runs[run.ID] = run
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id string) (model.RunRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	return run, ok, nil
}

// ListRuns returns runs newest first.
func (s *MemoryStore) ListRuns(_ context.Context) ([]model.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]model.RunRecord, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool {
		if runs[i].CreatedAtUTC == runs[j].CreatedAtUTC {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].CreatedAtUTC > runs[j].CreatedAtUTC
	})
	return runs, nil
}

func (s *MemoryStore) AppendComparisons(_ context.Context, runID string, records []model.ComparisonRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	s.comparisons[runID] = append(s.comparisons[runID], records...)
	return nil
}

func (s *MemoryStore) GetComparisons(_ context.Context, runID string) ([]model.ComparisonRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, ok := s.comparisons[runID]
	if !ok {
		return nil, false, nil
	}
	return append([]model.ComparisonRecord(nil), records...), true, nil
}

func (s *MemoryStore) AppendGeneration(_ context.Context, runID string, record model.GenerationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	record.RankedIDs = append([]string(nil), record.RankedIDs...)
	s.generations[runID] = append(s.generations[runID], record)
	return nil
}

func (s *MemoryStore) GetGenerations(_ context.Context, runID string) ([]model.GenerationRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, ok := s.generations[runID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]model.GenerationRecord, len(records))
	for i, record := range records {
		record.RankedIDs = append([]string(nil), record.RankedIDs...)
		copied[i] = record
	}
	return copied, true, nil
}

func (s *MemoryStore) AppendLineage(_ context.Context, runID string, records []model.LineageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	for _, record := range records {
		record.ParentIDs = append([]string(nil), record.ParentIDs...)
		s.lineage[runID] = append(s.lineage[runID], record)
	}
	return nil
}

func (s *MemoryStore) GetLineage(_ context.Context, runID string) ([]model.LineageRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, ok := s.lineage[runID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]model.LineageRecord, len(records))
	for i, record := range records {
		record.ParentIDs = append([]string(nil), record.ParentIDs...)
		copied[i] = record
	}
	return copied, true, nil
}
