package storage

import (
	"context"

	"github.com/demmel/life-plus-plus/internal/model"
)

// Store is the session journal: what was compared and how each generation
// was bred. Rule weights are never stored.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run model.RunRecord) error
	GetRun(ctx context.Context, id string) (model.RunRecord, bool, error)
	ListRuns(ctx context.Context) ([]model.RunRecord, error)
	AppendComparisons(ctx context.Context, runID string, records []model.ComparisonRecord) error
	GetComparisons(ctx context.Context, runID string) ([]model.ComparisonRecord, bool, error)
	AppendGeneration(ctx context.Context, runID string, record model.GenerationRecord) error
	GetGenerations(ctx context.Context, runID string) ([]model.GenerationRecord, bool, error)
	AppendLineage(ctx context.Context, runID string, records []model.LineageRecord) error
	GetLineage(ctx context.Context, runID string) ([]model.LineageRecord, bool, error)
}
