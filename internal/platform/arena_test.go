package platform

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/demmel/life-plus-plus/internal/evo"
	"github.com/demmel/life-plus-plus/internal/model"
	"github.com/demmel/life-plus-plus/internal/rule"
	"github.com/demmel/life-plus-plus/internal/storage"
)

func newTestArena(t *testing.T, store storage.Store, populationSize int) *Arena {
	t.Helper()
	cfg := evo.DefaultConfig()
	cfg.PopulationSize = populationSize
	cfg.Seed = 11
	arena, err := NewArena(Config{
		Engine:     cfg,
		Store:      store,
		RunID:      "run-test",
		ViewWidth:  12,
		ViewHeight: 10,
		Workers:    2,
		Now:        func() time.Time { return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("new arena: %v", err)
	}
	if err := arena.Init(context.Background()); err != nil {
		t.Fatalf("init arena: %v", err)
	}
	return arena
}

func TestArenaInitRecordsRun(t *testing.T) {
	store := storage.NewMemoryStore()
	arena := newTestArena(t, store, 4)
	ctx := context.Background()

	run, ok, err := store.GetRun(ctx, "run-test")
	if err != nil || !ok {
		t.Fatalf("get run: ok=%v err=%v", ok, err)
	}
	if run.PopulationSize != 4 || run.KernelSize != evo.DefaultKernelSize || run.CreatedAtUTC != "2026-03-04T05:06:07Z" || run.Mode != ModePlay {
		t.Fatalf("unexpected run record: %+v", run)
	}
	lineage, ok, err := store.GetLineage(ctx, "run-test")
	if err != nil || !ok {
		t.Fatalf("get lineage: ok=%v err=%v", ok, err)
	}
	if len(lineage) != 4 || lineage[0].Operation != model.OperationInitial {
		t.Fatalf("unexpected initial lineage: %+v", lineage)
	}
	if status := arena.Status(); status.Generation != 0 || status.Pair != (evo.Pair{Left: 0, Right: 3}) {
		t.Fatalf("unexpected status: %+v", status)
	}
}

func TestArenaSubmitJournalsAndRegenerates(t *testing.T) {
	store := storage.NewMemoryStore()
	arena := newTestArena(t, store, 4)
	ctx := context.Background()

	steps := 0
	for arena.Status().Generation == 0 {
		if steps > 6 {
			t.Fatal("pass did not complete")
		}
		if _, err := arena.Submit(ctx, evo.LeftPreferred); err != nil {
			t.Fatalf("submit: %v", err)
		}
		steps++
	}

	comparisons, _, err := store.GetComparisons(ctx, "run-test")
	if err != nil {
		t.Fatalf("get comparisons: %v", err)
	}
	if len(comparisons) != steps {
		t.Fatalf("expected %d comparisons, got=%d", steps, len(comparisons))
	}
	if comparisons[0].Step != 1 || comparisons[0].Outcome != "left" || comparisons[0].LeftRuleID == "" {
		t.Fatalf("unexpected first comparison: %+v", comparisons[0])
	}

	generations, ok, err := store.GetGenerations(ctx, "run-test")
	if err != nil || !ok {
		t.Fatalf("get generations: ok=%v err=%v", ok, err)
	}
	if len(generations) != 1 || generations[0].Comparisons != steps || len(generations[0].RankedIDs) != 4 {
		t.Fatalf("unexpected generations: %+v", generations)
	}
	population := arena.Population()
	if population[0].ID() != generations[0].EliteID {
		t.Fatal("expected the journalled elite in slot 0")
	}

	lineage, _, _ := store.GetLineage(ctx, "run-test")
	if len(lineage) != 8 {
		t.Fatalf("expected initial plus bred lineage, got=%d", len(lineage))
	}
	if !arena.Status().PopulationChanged {
		t.Fatal("expected population change flag after regeneration")
	}
}

func TestArenaReseedsViewsWhenPairChanges(t *testing.T) {
	arena := newTestArena(t, storage.NewMemoryStore(), 4)
	for i := 0; i < 3; i++ {
		if err := arena.Tick(); err != nil {
			t.Fatalf("tick: %v", err)
		}
	}
	if arena.views[Left].Steps() != 3 {
		t.Fatalf("expected 3 steps, got=%d", arena.views[Left].Steps())
	}

	before := arena.Status().LeftRuleID
	if _, err := arena.Submit(context.Background(), evo.RightPreferred); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if arena.Status().LeftRuleID == before {
		t.Fatal("expected a new rule on the left")
	}
	if arena.views[Left].Steps() != 0 || arena.views[Right].Steps() != 0 {
		t.Fatal("expected both views reseeded")
	}

	w, h := arena.ViewSize()
	left := make([]byte, w*h*4)
	right := make([]byte, w*h*4)
	arena.Fill(Left, left)
	arena.Fill(Right, right)
	for i := range left {
		if left[i] != right[i] {
			t.Fatal("expected both views to start from the same frame")
		}
	}
}

func TestArenaRejectsInvalidOutcome(t *testing.T) {
	store := storage.NewMemoryStore()
	arena := newTestArena(t, store, 4)
	if _, err := arena.Submit(context.Background(), evo.OutcomeNone); !errors.Is(err, evo.ErrInvalidOutcome) {
		t.Fatalf("expected invalid outcome, got=%v", err)
	}
	if _, ok, _ := store.GetComparisons(context.Background(), "run-test"); ok {
		t.Fatal("rejected outcome must not be journalled")
	}
}

type brokenStore struct {
	*storage.MemoryStore
}

func (brokenStore) AppendComparisons(context.Context, string, []model.ComparisonRecord) error {
	return errors.New("disk full")
}

func TestArenaKeepsEngineStepWhenJournalFails(t *testing.T) {
	arena := newTestArena(t, brokenStore{storage.NewMemoryStore()}, 4)
	if _, err := arena.Submit(context.Background(), evo.LeftPreferred); !errors.Is(err, ErrJournal) {
		t.Fatalf("expected journal error, got=%v", err)
	}
	if arena.Status().Comparisons != 1 {
		t.Fatalf("expected engine to advance, got comparisons=%d", arena.Status().Comparisons)
	}
}

func TestNewArenaValidates(t *testing.T) {
	if _, err := NewArena(Config{Engine: evo.DefaultConfig()}); err == nil {
		t.Fatal("expected error without store")
	}
	bad := evo.DefaultConfig()
	bad.Shape = rule.Shape{KernelSize: 4, Layers: 1}
	if _, err := NewArena(Config{Engine: bad, Store: storage.NewMemoryStore()}); !errors.Is(err, evo.ErrInvalidConfig) {
		t.Fatalf("expected invalid config, got=%v", err)
	}
}
