package platform

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/demmel/life-plus-plus/internal/evo"
	"github.com/demmel/life-plus-plus/internal/model"
	"github.com/demmel/life-plus-plus/internal/rule"
	"github.com/demmel/life-plus-plus/internal/sim"
	"github.com/demmel/life-plus-plus/internal/storage"
)

const (
	DefaultViewWidth  = 256
	DefaultViewHeight = 256

	ModePlay     = "play"
	ModeSimulate = "simulate"
)

var ErrJournal = errors.New("journal write failed")

// Side names one of the two displayed views.
type Side int

const (
	Left Side = iota
	Right
)

type Config struct {
	Engine     evo.Config
	Store      storage.Store
	RunID      string
	Mode       string
	ViewWidth  int
	ViewHeight int
	Workers    int
	SeedMode   sim.SeedMode
	// Initial and Regenerator are handed to the engine unchanged.
	Initial     []rule.Rule
	Regenerator evo.Regenerator
	Now         func() time.Time
}

// Status is a read-only summary for status lines and CLI output.
type Status struct {
	RunID             string
	Generation        int
	Comparisons       int
	Pair              evo.Pair
	LeftRuleID        string
	RightRuleID       string
	PopulationChanged bool
}

// Arena couples the ranking engine with the two simulated views the user
// compares, and journals every decision.
type Arena struct {
	mu sync.Mutex

	cfg    Config
	engine *evo.Engine
	store  storage.Store
	runID  string
	rng    *rand.Rand
	views  [2]*sim.World
	// shown holds the rule ids the views were last seeded for.
	shown [2]string

	started bool
}

func NewArena(cfg Config) (*Arena, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cfg.ViewWidth <= 0 {
		cfg.ViewWidth = DefaultViewWidth
	}
	if cfg.ViewHeight <= 0 {
		cfg.ViewHeight = DefaultViewHeight
	}
	if cfg.Mode == "" {
		cfg.Mode = ModePlay
	}
	if cfg.SeedMode == "" {
		cfg.SeedMode = sim.SeedNoise
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	runID := cfg.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	engine, err := evo.NewEngine(cfg.Engine, evo.EngineOptions{
		Initial:     cfg.Initial,
		Regenerator: cfg.Regenerator,
	})
	if err != nil {
		return nil, err
	}

	a := &Arena{
		cfg:    cfg,
		engine: engine,
		store:  cfg.Store,
		runID:  runID,
		rng:    rand.New(rand.NewSource(cfg.Engine.Seed + 1)),
	}
	for i := range a.views {
		view, err := sim.NewWorld(cfg.ViewWidth, cfg.ViewHeight, cfg.Workers)
		if err != nil {
			return nil, err
		}
		a.views[i] = view
	}
	return a, nil
}

// Init prepares the journal, records the run and its first generation, and
// seeds both views.
func (a *Arena) Init(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.started {
		return nil
	}
	if err := a.store.Init(ctx); err != nil {
		return err
	}

	cfg := a.cfg.Engine
	run := model.RunRecord{
		VersionedRecord: storage.Versioned(),
		ID:              a.runID,
		CreatedAtUTC:    a.cfg.Now().UTC().Format(time.RFC3339Nano),
		Mode:            a.cfg.Mode,
		PopulationSize:  cfg.PopulationSize,
		KernelSize:      cfg.Shape.KernelSize,
		Layers:          cfg.Shape.Layers,
		Selection:       cfg.Selection,
		Seed:            cfg.Seed,
	}
	if err := a.store.SaveRun(ctx, run); err != nil {
		return fmt.Errorf("%w: save run: %v", ErrJournal, err)
	}
	if err := a.store.AppendLineage(ctx, a.runID, a.engine.InitialLineage()); err != nil {
		return fmt.Errorf("%w: initial lineage: %v", ErrJournal, err)
	}

	a.reseedLocked()
	a.started = true
	return nil
}

func (a *Arena) RunID() string {
	return a.runID
}

// Submit applies one outcome. The engine step is kept even when journalling
// fails; the error then wraps ErrJournal.
func (a *Arena) Submit(ctx context.Context, outcome evo.Outcome) (evo.StepResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	result, err := a.engine.Submit(outcome)
	if err != nil {
		return result, err
	}
	journalErr := a.journal(ctx, result)

	if a.currentIDs() != a.shown || a.engine.PopulationChanged() {
		a.reseedLocked()
	}
	return result, journalErr
}

func (a *Arena) journal(ctx context.Context, result evo.StepResult) error {
	comparison := model.ComparisonRecord{
		VersionedRecord: storage.Versioned(),
		Generation:      result.Generation,
		Step:            result.Step,
		Left:            result.Pair.Left,
		Right:           result.Pair.Right,
		LeftRuleID:      result.LeftRuleID,
		RightRuleID:     result.RightRuleID,
		Outcome:         result.Outcome.String(),
	}
	if err := a.store.AppendComparisons(ctx, a.runID, []model.ComparisonRecord{comparison}); err != nil {
		return fmt.Errorf("%w: comparison: %v", ErrJournal, err)
	}
	if !result.Regenerated || result.Regeneration == nil {
		return nil
	}

	regen := result.Regeneration
	ranked := evo.Population(regen.Ranked).IDs()
	generation := model.GenerationRecord{
		VersionedRecord: storage.Versioned(),
		Generation:      regen.Generation,
		Comparisons:     regen.Comparisons,
		RankedIDs:       ranked,
		EliteID:         ranked[0],
	}
	if err := a.store.AppendGeneration(ctx, a.runID, generation); err != nil {
		return fmt.Errorf("%w: generation: %v", ErrJournal, err)
	}
	if err := a.store.AppendLineage(ctx, a.runID, regen.Lineage); err != nil {
		return fmt.Errorf("%w: lineage: %v", ErrJournal, err)
	}
	return nil
}

// Tick advances both views by one simulation step of their current rules.
func (a *Arena) Tick() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	pair := a.engine.CurrentPair()
	if err := a.views[Left].Step(a.engine.Rule(pair.Left)); err != nil {
		return err
	}
	return a.views[Right].Step(a.engine.Rule(pair.Right))
}

// Reseed restarts both views from a fresh first frame.
func (a *Arena) Reseed() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reseedLocked()
}

// reseedLocked gives both views the same first frame so the rules alone
// account for any difference.
func (a *Arena) reseedLocked() {
	a.shown = a.currentIDs()
	seed := a.rng.Int63()
	for _, view := range a.views {
		view.Seed(rand.New(rand.NewSource(seed)), a.cfg.SeedMode)
	}
}

// Fill copies one view's current frame into pix as RGBA8.
func (a *Arena) Fill(side Side, pix []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.views[side].Fill(pix)
}

// ViewSize returns the width and height of each view.
func (a *Arena) ViewSize() (int, int) {
	return a.cfg.ViewWidth, a.cfg.ViewHeight
}

// Rule returns the rule currently shown on side.
func (a *Arena) Rule(side Side) rule.Rule {
	a.mu.Lock()
	defer a.mu.Unlock()
	pair := a.engine.CurrentPair()
	if side == Left {
		return a.engine.Rule(pair.Left)
	}
	return a.engine.Rule(pair.Right)
}

func (a *Arena) currentIDs() [2]string {
	pair := a.engine.CurrentPair()
	return [2]string{a.engine.Rule(pair.Left).ID(), a.engine.Rule(pair.Right).ID()}
}

// Population returns the current slot order.
func (a *Arena) Population() evo.Population {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.engine.Snapshot()
}

func (a *Arena) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()

	pair := a.engine.CurrentPair()
	return Status{
		RunID:             a.runID,
		Generation:        a.engine.Generation(),
		Comparisons:       a.engine.Comparisons(),
		Pair:              pair,
		LeftRuleID:        a.engine.Rule(pair.Left).ID(),
		RightRuleID:       a.engine.Rule(pair.Right).ID(),
		PopulationChanged: a.engine.PopulationChanged(),
	}
}
