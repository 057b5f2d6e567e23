package storage

import (
	"context"
	"testing"

	"github.com/demmel/life-plus-plus/internal/model"
)

func exerciseJournal(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	runs := []model.RunRecord{
		{VersionedRecord: Versioned(), ID: "run-a", CreatedAtUTC: "2026-01-01T00:00:00Z", PopulationSize: 8, KernelSize: 3, Layers: 1},
		{VersionedRecord: Versioned(), ID: "run-b", CreatedAtUTC: "2026-01-02T00:00:00Z", PopulationSize: 4, KernelSize: 5, Layers: 2},
	}
	for _, run := range runs {
		if err := store.SaveRun(ctx, run); err != nil {
			t.Fatalf("save run: %v", err)
		}
	}
	got, ok, err := store.GetRun(ctx, "run-b")
	if err != nil || !ok {
		t.Fatalf("get run: ok=%v err=%v", ok, err)
	}
	if got.KernelSize != 5 || got.Layers != 2 {
		t.Fatalf("unexpected run: %+v", got)
	}
	if _, ok, err := store.GetRun(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected missing run, ok=%v err=%v", ok, err)
	}
	listed, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(listed) != 2 || listed[0].ID != "run-b" {
		t.Fatalf("expected newest run first, got %+v", listed)
	}

	first := []model.ComparisonRecord{
		{VersionedRecord: Versioned(), Step: 1, Left: 0, Right: 3, Outcome: "right"},
		{VersionedRecord: Versioned(), Step: 2, Left: 1, Right: 3, Outcome: "left"},
	}
	second := []model.ComparisonRecord{{VersionedRecord: Versioned(), Step: 3, Left: 2, Right: 3, Outcome: "left"}}
	if err := store.AppendComparisons(ctx, "run-a", first); err != nil {
		t.Fatalf("append comparisons: %v", err)
	}
	if err := store.AppendComparisons(ctx, "run-a", second); err != nil {
		t.Fatalf("append comparisons: %v", err)
	}
	comparisons, ok, err := store.GetComparisons(ctx, "run-a")
	if err != nil || !ok {
		t.Fatalf("get comparisons: ok=%v err=%v", ok, err)
	}
	if len(comparisons) != 3 || comparisons[2].Step != 3 || comparisons[0].Outcome != "right" {
		t.Fatalf("unexpected comparisons: %+v", comparisons)
	}
	if _, ok, _ := store.GetComparisons(ctx, "run-b"); ok {
		t.Fatal("expected no comparisons for run-b")
	}

	generation := model.GenerationRecord{VersionedRecord: Versioned(), Generation: 1, Comparisons: 3, RankedIDs: []string{"x", "y"}, EliteID: "x"}
	if err := store.AppendGeneration(ctx, "run-a", generation); err != nil {
		t.Fatalf("append generation: %v", err)
	}
	generations, ok, err := store.GetGenerations(ctx, "run-a")
	if err != nil || !ok {
		t.Fatalf("get generations: ok=%v err=%v", ok, err)
	}
	if len(generations) != 1 || generations[0].EliteID != "x" || len(generations[0].RankedIDs) != 2 {
		t.Fatalf("unexpected generations: %+v", generations)
	}

	lineage := []model.LineageRecord{
		{VersionedRecord: Versioned(), RuleID: "x", Operation: model.OperationElite, Generation: 1, ParentIDs: []string{"x"}},
		{VersionedRecord: Versioned(), RuleID: "z", Operation: model.OperationCrossover, Generation: 1, ParentIDs: []string{"x", "y"}},
	}
	if err := store.AppendLineage(ctx, "run-a", lineage); err != nil {
		t.Fatalf("append lineage: %v", err)
	}
	records, ok, err := store.GetLineage(ctx, "run-a")
	if err != nil || !ok {
		t.Fatalf("get lineage: ok=%v err=%v", ok, err)
	}
	if len(records) != 2 || records[1].RuleID != "z" || len(records[1].ParentIDs) != 2 {
		t.Fatalf("unexpected lineage: %+v", records)
	}

	// Every caller initialises before use; a second Init must keep the journal.
	if err := store.Init(ctx); err != nil {
		t.Fatalf("re-init: %v", err)
	}
	listed, err = store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list runs after re-init: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected runs to survive re-init, got %+v", listed)
	}
	comparisons, _, err = store.GetComparisons(ctx, "run-a")
	if err != nil || len(comparisons) != 3 {
		t.Fatalf("expected comparisons to survive re-init: n=%d err=%v", len(comparisons), err)
	}
	generations, _, err = store.GetGenerations(ctx, "run-a")
	if err != nil || len(generations) != 1 {
		t.Fatalf("expected generations to survive re-init: n=%d err=%v", len(generations), err)
	}
	records, _, err = store.GetLineage(ctx, "run-a")
	if err != nil || len(records) != 2 {
		t.Fatalf("expected lineage to survive re-init: n=%d err=%v", len(records), err)
	}
}

func TestMemoryStoreJournal(t *testing.T) {
	store := NewMemoryStore()
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	exerciseJournal(t, store)
}

func TestMemoryStoreInitIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	run := model.RunRecord{VersionedRecord: Versioned(), ID: "run-keep", CreatedAtUTC: "2026-01-01T00:00:00Z", PopulationSize: 4}
	if err := store.SaveRun(ctx, run); err != nil {
		t.Fatalf("save run: %v", err)
	}
	if err := store.Init(ctx); err != nil {
		t.Fatalf("second init: %v", err)
	}
	got, ok, err := store.GetRun(ctx, "run-keep")
	if err != nil || !ok {
		t.Fatalf("run lost after second init: ok=%v err=%v", ok, err)
	}
	if got.PopulationSize != 4 {
		t.Fatalf("unexpected run after second init: %+v", got)
	}
}

func TestMemoryStoreCopiesSlices(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	ranked := []string{"a", "b"}
	if err := store.AppendGeneration(ctx, "run", model.GenerationRecord{VersionedRecord: Versioned(), RankedIDs: ranked}); err != nil {
		t.Fatalf("append generation: %v", err)
	}
	ranked[0] = "mutated"

	generations, _, err := store.GetGenerations(ctx, "run")
	if err != nil {
		t.Fatalf("get generations: %v", err)
	}
	if generations[0].RankedIDs[0] != "a" {
		t.Fatalf("store aliased caller slice: %v", generations[0].RankedIDs)
	}
	generations[0].RankedIDs[1] = "mutated"
	again, _, _ := store.GetGenerations(ctx, "run")
	if again[0].RankedIDs[1] != "b" {
		t.Fatalf("store returned aliased slice: %v", again[0].RankedIDs)
	}
}

func TestMemoryStoreRequiresInit(t *testing.T) {
	store := NewMemoryStore()
	if err := store.SaveRun(context.Background(), model.RunRecord{ID: "r"}); err == nil {
		t.Fatal("expected error before init")
	}
}
