package evo

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/demmel/life-plus-plus/internal/model"
	"github.com/demmel/life-plus-plus/internal/rule"
)

var ErrRegeneration = errors.New("regeneration failed")

// EngineOptions override engine collaborators. Zero values pick defaults.
type EngineOptions struct {
	// Initial replaces the random first generation. Its length must equal
	// the configured population size and every rule must match the shape.
	Initial     []rule.Rule
	Regenerator Regenerator
}

// Regeneration describes a population replacement.
type Regeneration struct {
	Generation  int
	Comparisons int
	Ranked      []rule.Rule
	Lineage     []model.LineageRecord
}

// StepResult reports what one Submit did.
type StepResult struct {
	Pair        Pair
	Outcome     Outcome
	Generation  int
	Step        int
	LeftRuleID  string
	RightRuleID string

	// Regenerated is set when this step completed a ranking pass.
	Regenerated  bool
	Regeneration *Regeneration
}

// Engine owns the population and its ranking state. It is not safe for
// concurrent use; callers serialize Submit with reads.
type Engine struct {
	cfg         Config
	population  Population
	ranker      *Ranker
	regenerator Regenerator

	generation int
	changed    bool
	initial    []model.LineageRecord
}

func NewEngine(cfg Config, opts EngineOptions) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	var population Population
	if opts.Initial != nil {
		population = Population(opts.Initial).Clone()
		if len(population) != cfg.PopulationSize {
			return nil, fmt.Errorf("%w: initial population has %d rules, want %d", ErrInvalidConfig, len(population), cfg.PopulationSize)
		}
		if !population.Homogeneous(cfg.Shape) {
			return nil, fmt.Errorf("%w: initial population is not of shape %s", ErrInvalidConfig, cfg.Shape)
		}
	} else {
		population = make(Population, cfg.PopulationSize)
		for i := range population {
			population[i] = rule.Random(rng, cfg.Shape)
		}
	}

	regenerator := opts.Regenerator
	if regenerator == nil {
		sampler, err := ResolveSampler(cfg.Selection)
		if err != nil {
			return nil, err
		}
		regenerator = &Breeder{RNG: rng, Shape: cfg.Shape, Sampler: sampler}
	}

	initial := make([]model.LineageRecord, len(population))
	for i, r := range population {
		initial[i] = model.LineageRecord{
			VersionedRecord: currentVersion(),
			RuleID:          r.ID(),
			Operation:       model.OperationInitial,
		}
	}

	return &Engine{
		cfg:         cfg,
		population:  population,
		ranker:      NewRanker(population, len(population)),
		regenerator: regenerator,
		initial:     initial,
	}, nil
}

func (e *Engine) Config() Config {
	return e.cfg
}

func (e *Engine) Shape() rule.Shape {
	return e.cfg.Shape
}

func (e *Engine) Size() int {
	return len(e.population)
}

// Generation counts completed ranking passes.
func (e *Engine) Generation() int {
	return e.generation
}

// Comparisons is the number of outcomes consumed in the current pass.
func (e *Engine) Comparisons() int {
	return e.ranker.Comparisons()
}

// CurrentPair returns the two population slots to show side by side.
func (e *Engine) CurrentPair() Pair {
	pair, _ := e.ranker.Pair()
	return pair
}

// Pending reports whether Submit will accept an outcome.
func (e *Engine) Pending() bool {
	return e.ranker.Pending()
}

func (e *Engine) Rule(i int) rule.Rule {
	return e.population[i]
}

// RuleData is a snapshot of slot i's layer weights for upload.
func (e *Engine) RuleData(i int) [][]float32 {
	return e.population[i].Layers()
}

// Snapshot copies the current slot order.
func (e *Engine) Snapshot() Population {
	return e.population.Clone()
}

// InitialLineage describes the first generation.
func (e *Engine) InitialLineage() []model.LineageRecord {
	return append([]model.LineageRecord(nil), e.initial...)
}

// PopulationChanged is true after the Submit that regenerated the population
// and stays true until the next Submit or AckPopulationChanged.
func (e *Engine) PopulationChanged() bool {
	return e.changed
}

func (e *Engine) AckPopulationChanged() {
	e.changed = false
}

// Submit feeds one comparison outcome to the ranking pass. Completing a pass
// regenerates the population and starts the next pass in the same call.
// Rejected outcomes leave all state untouched.
func (e *Engine) Submit(outcome Outcome) (StepResult, error) {
	if !outcome.Valid() {
		return StepResult{}, ErrInvalidOutcome
	}
	pair, ok := e.ranker.Pair()
	if !ok {
		return StepResult{}, ErrNoPendingComparison
	}
	e.changed = false

	result := StepResult{
		Pair:        pair,
		Outcome:     outcome,
		Generation:  e.generation,
		Step:        e.ranker.Comparisons() + 1,
		LeftRuleID:  e.population[pair.Left].ID(),
		RightRuleID: e.population[pair.Right].ID(),
	}

	done, err := e.ranker.Compare(outcome)
	if err != nil {
		return StepResult{}, err
	}
	if !done {
		return result, nil
	}

	regen, err := e.regenerate()
	if err != nil {
		// Start a fresh pass over the unchanged population so the caller can
		// rank again and retry.
		e.ranker.Reset(e.population, len(e.population))
		return result, err
	}
	result.Regenerated = true
	result.Regeneration = regen
	return result, nil
}

func (e *Engine) regenerate() (*Regeneration, error) {
	ranked := e.population.Clone()
	comparisons := e.ranker.Comparisons()
	next := e.generation + 1

	offspring, err := e.regenerator.Regenerate(ranked.Clone(), next)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRegeneration, err)
	}
	population := Population(offspring.Rules)
	if len(population) != len(e.population) {
		return nil, fmt.Errorf("%w: got %d rules, want %d", ErrRegeneration, len(population), len(e.population))
	}
	if !population.Homogeneous(e.cfg.Shape) {
		return nil, fmt.Errorf("%w: offspring do not match shape %s", ErrRegeneration, e.cfg.Shape)
	}

	e.population = population.Clone()
	e.generation = next
	e.changed = true
	e.ranker.Reset(e.population, len(e.population))

	return &Regeneration{
		Generation:  next,
		Comparisons: comparisons,
		Ranked:      ranked,
		Lineage:     offspring.Lineage,
	}, nil
}
