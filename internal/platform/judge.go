package platform

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/demmel/life-plus-plus/internal/evo"
	"github.com/demmel/life-plus-plus/internal/rule"
	"github.com/demmel/life-plus-plus/internal/sim"
)

// Judge answers a comparison without a human.
type Judge interface {
	Judge(ctx context.Context, left, right rule.Rule) (evo.Outcome, error)
}

// ActivityJudge runs both rules from the same first frame and prefers the
// one whose last frames still change the most. Ties go left.
type ActivityJudge struct {
	Width    int
	Height   int
	Steps    int
	Workers  int
	Seed     int64
	SeedMode sim.SeedMode
}

func (j ActivityJudge) Judge(ctx context.Context, left, right rule.Rule) (evo.Outcome, error) {
	leftScore, err := j.score(ctx, left)
	if err != nil {
		return evo.OutcomeNone, err
	}
	rightScore, err := j.score(ctx, right)
	if err != nil {
		return evo.OutcomeNone, err
	}
	if rightScore > leftScore {
		return evo.RightPreferred, nil
	}
	return evo.LeftPreferred, nil
}

func (j ActivityJudge) score(ctx context.Context, r rule.Rule) (float64, error) {
	width, height, steps := j.Width, j.Height, j.Steps
	if width <= 0 {
		width = 32
	}
	if height <= 0 {
		height = 32
	}
	if steps <= 0 {
		steps = 8
	}
	world, err := sim.NewWorld(width, height, j.Workers)
	if err != nil {
		return 0, err
	}
	world.Seed(rand.New(rand.NewSource(j.Seed)), j.SeedMode)

	// Average over the second half so the initial transient does not dominate.
	var total float64
	counted := 0
	for i := 0; i < steps; i++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if err := world.Step(r); err != nil {
			return 0, fmt.Errorf("step rule %s: %w", r.ID(), err)
		}
		if i >= steps/2 {
			total += world.Activity()
			counted++
		}
	}
	return total / float64(counted), nil
}

// AutoResult summarises a headless run.
type AutoResult struct {
	Comparisons int
	Generations int
	EliteIDs    []string
}

// RunAuto lets judge answer comparisons until generations ranking passes
// completed or ctx is done.
func (a *Arena) RunAuto(ctx context.Context, judge Judge, generations int) (AutoResult, error) {
	var result AutoResult
	for result.Generations < generations {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		left, right := a.Rule(Left), a.Rule(Right)
		outcome, err := judge.Judge(ctx, left, right)
		if err != nil {
			return result, err
		}
		step, err := a.Submit(ctx, outcome)
		if err != nil {
			return result, err
		}
		result.Comparisons++
		if step.Regenerated {
			result.Generations++
			result.EliteIDs = append(result.EliteIDs, step.Regeneration.Ranked[0].ID())
		}
	}
	return result, nil
}
