package evo

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/demmel/life-plus-plus/internal/model"
	"github.com/demmel/life-plus-plus/internal/rule"
)

var ErrPoolTooSmall = errors.New("breeding pool too small")

// Offspring is a freshly bred generation plus where each slot came from.
type Offspring struct {
	Rules   []rule.Rule
	Lineage []model.LineageRecord
}

// Regenerator turns a ranked population (most preferred first) into the next
// generation of the same size.
type Regenerator interface {
	Regenerate(ranked []rule.Rule, generation int) (Offspring, error)
}

// Breeder is the default Regenerator: one elite, (N-2)/2 crossover pairs bred
// from the top half, one fresh random rule. Slots an odd N leaves over are
// filled with further random rules.
type Breeder struct {
	RNG     *rand.Rand
	Shape   rule.Shape
	Sampler ParentSampler
}

func (b *Breeder) Regenerate(ranked []rule.Rule, generation int) (Offspring, error) {
	n := len(ranked)
	if n == 0 {
		return Offspring{}, fmt.Errorf("%w: empty population", ErrPoolTooSmall)
	}
	if b.RNG == nil {
		return Offspring{}, fmt.Errorf("random source is required")
	}
	sampler := b.Sampler
	if sampler == nil {
		sampler = UniformSampler{}
	}

	out := Offspring{
		Rules:   make([]rule.Rule, 0, n),
		Lineage: make([]model.LineageRecord, 0, n),
	}
	add := func(r rule.Rule, op string, parents ...string) {
		out.Rules = append(out.Rules, r)
		out.Lineage = append(out.Lineage, model.LineageRecord{
			VersionedRecord: currentVersion(),
			RuleID:          r.ID(),
			ParentIDs:       parents,
			Generation:      generation,
			Operation:       op,
		})
	}

	elite := ranked[0]
	add(elite, model.OperationElite, elite.ID())

	pool := ranked[:n/2]
	for i := 0; i < (n-2)/2; i++ {
		x, y, err := sampler.PickPair(b.RNG, len(pool))
		if err != nil {
			return Offspring{}, err
		}
		if x == y {
			return Offspring{}, fmt.Errorf("sampler %s returned the same slot twice: %d", sampler.Name(), x)
		}
		c1, c2, err := rule.Crossover(b.RNG, pool[x], pool[y])
		if err != nil {
			return Offspring{}, err
		}
		add(c1, model.OperationCrossover, pool[x].ID(), pool[y].ID())
		add(c2, model.OperationCrossover, pool[x].ID(), pool[y].ID())
	}

	for len(out.Rules) < n {
		add(rule.Random(b.RNG, b.Shape), model.OperationRandom)
	}
	return out, nil
}

func currentVersion() model.VersionedRecord {
	return model.VersionedRecord{SchemaVersion: SchemaVersion, CodecVersion: CodecVersion}
}
