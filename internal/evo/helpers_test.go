package evo

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/demmel/life-plus-plus/internal/rule"
)

var testShape = rule.Shape{KernelSize: 1, Layers: 1}

// labelledRules builds n rules whose first weight is their label index.
func labelledRules(t *testing.T, n int) []rule.Rule {
	t.Helper()
	out := make([]rule.Rule, n)
	for i := range out {
		weights := make([]float32, testShape.LayerLen())
		weights[0] = float32(i)
		r, err := rule.FromLayers(testShape, [][]float32{weights})
		if err != nil {
			t.Fatalf("build rule %d: %v", i, err)
		}
		out[i] = r
	}
	return out
}

func label(r rule.Rule) int {
	return int(r.Weight(0, 0))
}

// preferHigherLabel answers every comparison in favour of the larger label.
func preferHigherLabel(left, right rule.Rule) Outcome {
	if label(left) > label(right) {
		return LeftPreferred
	}
	return RightPreferred
}

// recordingRegenerator captures ranked input and returns fresh labelled rules.
type recordingRegenerator struct {
	t      *testing.T
	calls  int
	ranked [][]rule.Rule
}

func (r *recordingRegenerator) Regenerate(ranked []rule.Rule, _ int) (Offspring, error) {
	r.calls++
	r.ranked = append(r.ranked, append([]rule.Rule(nil), ranked...))
	return Offspring{Rules: labelledRules(r.t, len(ranked))}, nil
}

func newTestEngine(t *testing.T, initial []rule.Rule, regen Regenerator) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	cfg.PopulationSize = len(initial)
	cfg.Shape = testShape
	engine, err := NewEngine(cfg, EngineOptions{Initial: initial, Regenerator: regen})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func shuffledRules(t *testing.T, n int, seed int64) []rule.Rule {
	t.Helper()
	rules := labelledRules(t, n)
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(rules), func(i, j int) { rules[i], rules[j] = rules[j], rules[i] })
	return rules
}

func labels(rules []rule.Rule) string {
	out := make([]int, len(rules))
	for i, r := range rules {
		out[i] = label(r)
	}
	return fmt.Sprint(out)
}
