package evo

import (
	"math/rand"
	"testing"

	"github.com/demmel/life-plus-plus/internal/model"
	"github.com/demmel/life-plus-plus/internal/rule"
)

func TestBreederGenerationComposition(t *testing.T) {
	shape := rule.Shape{KernelSize: 3, Layers: 1}
	for _, n := range []int{2, 4, 8, 10} {
		rng := rand.New(rand.NewSource(int64(n)))
		ranked := make([]rule.Rule, n)
		for i := range ranked {
			ranked[i] = rule.Random(rng, shape)
		}
		breeder := &Breeder{RNG: rng, Shape: shape}

		offspring, err := breeder.Regenerate(ranked, 1)
		if err != nil {
			t.Fatalf("n=%d: regenerate: %v", n, err)
		}
		if len(offspring.Rules) != n || len(offspring.Lineage) != n {
			t.Fatalf("n=%d: expected %d rules and lineage, got %d/%d", n, n, len(offspring.Rules), len(offspring.Lineage))
		}
		if offspring.Rules[0].ID() != ranked[0].ID() {
			t.Fatalf("n=%d: elite not carried forward", n)
		}

		counts := map[string]int{}
		for _, record := range offspring.Lineage {
			counts[record.Operation]++
		}
		if counts[model.OperationElite] != 1 || counts[model.OperationCrossover] != n-2 || counts[model.OperationRandom] != 1 {
			t.Fatalf("n=%d: unexpected composition %v", n, counts)
		}
		if offspring.Lineage[n-1].Operation != model.OperationRandom {
			t.Fatalf("n=%d: expected random rule in the final slot", n)
		}
	}
}

func TestBreederOddPopulationFillsWithRandomRules(t *testing.T) {
	shape := rule.Shape{KernelSize: 1, Layers: 1}
	for _, n := range []int{3, 5, 7} {
		rng := rand.New(rand.NewSource(int64(n)))
		ranked := make([]rule.Rule, n)
		for i := range ranked {
			ranked[i] = rule.Random(rng, shape)
		}
		offspring, err := (&Breeder{RNG: rng, Shape: shape}).Regenerate(ranked, 2)
		if err != nil {
			t.Fatalf("n=%d: regenerate: %v", n, err)
		}
		if len(offspring.Rules) != n {
			t.Fatalf("n=%d: expected %d rules, got %d", n, n, len(offspring.Rules))
		}
		counts := map[string]int{}
		for _, record := range offspring.Lineage {
			counts[record.Operation]++
		}
		if counts[model.OperationCrossover] != 2*((n-2)/2) || counts[model.OperationRandom] != 2 {
			t.Fatalf("n=%d: unexpected composition %v", n, counts)
		}
	}
}

func TestBreederParentsAreDistinctTopHalfSlots(t *testing.T) {
	shape := rule.Shape{KernelSize: 1, Layers: 1}
	rng := rand.New(rand.NewSource(99))
	ranked := make([]rule.Rule, 8)
	for i := range ranked {
		ranked[i] = rule.Random(rng, shape)
	}
	topHalf := map[string]bool{}
	for _, r := range ranked[:4] {
		topHalf[r.ID()] = true
	}

	for _, sampler := range []ParentSampler{UniformSampler{}, RankSampler{}} {
		breeder := &Breeder{RNG: rng, Shape: shape, Sampler: sampler}
		for round := 0; round < 200; round++ {
			offspring, err := breeder.Regenerate(ranked, round)
			if err != nil {
				t.Fatalf("%s: regenerate: %v", sampler.Name(), err)
			}
			for _, record := range offspring.Lineage {
				if record.Operation != model.OperationCrossover {
					continue
				}
				if len(record.ParentIDs) != 2 || record.ParentIDs[0] == record.ParentIDs[1] {
					t.Fatalf("%s: expected two distinct parents, got %v", sampler.Name(), record.ParentIDs)
				}
				for _, id := range record.ParentIDs {
					if !topHalf[id] {
						t.Fatalf("%s: parent %s is outside the breeding pool", sampler.Name(), id)
					}
				}
			}
		}
	}
}

func TestBreederRequiresRandomSource(t *testing.T) {
	shape := rule.Shape{KernelSize: 1, Layers: 1}
	ranked := []rule.Rule{rule.Random(nil, shape), rule.Random(nil, shape)}
	if _, err := (&Breeder{Shape: shape}).Regenerate(ranked, 1); err == nil {
		t.Fatal("expected error without random source")
	}
}
