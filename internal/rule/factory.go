package rule

import (
	"fmt"
	"math/rand"
)

// Random draws a fresh rule. Slots r, g and b of every tap are uniform in
// [-1, 1]; the identity slot is fixed at 1.0. An invalid shape panics.
func Random(rng *rand.Rand, shape Shape) Rule {
	if err := shape.Validate(); err != nil {
		panic(err)
	}
	rng = ensureRNG(rng)

	layers := make([][]float32, shape.Layers)
	for l := range layers {
		weights := make([]float32, shape.LayerLen())
		for tap := 0; tap < len(weights); tap += SlotsPerTap {
			for slot := 0; slot < IdentitySlot; slot++ {
				weights[tap+slot] = float32(rng.Float64()*2 - 1)
			}
			weights[tap+IdentitySlot] = 1
		}
		layers[l] = weights
	}
	return Rule{id: newID(rng), shape: shape, layers: layers}
}

// Crossover performs uniform per-weight crossover. For every position a fair
// coin decides whether child one takes a's weight and child two b's, or the
// reverse. Both children are new rules; the parents are untouched.
func Crossover(rng *rand.Rand, a, b Rule) (Rule, Rule, error) {
	if !a.SameShape(b) {
		return Rule{}, Rule{}, fmt.Errorf("%w: %s vs %s", ErrShapeMismatch, a.shape, b.shape)
	}
	rng = ensureRNG(rng)

	first := make([][]float32, len(a.layers))
	second := make([][]float32, len(a.layers))
	for l := range a.layers {
		wa, wb := a.layers[l], b.layers[l]
		c1 := make([]float32, len(wa))
		c2 := make([]float32, len(wa))
		for i := range wa {
			if rng.Intn(2) == 0 {
				c1[i], c2[i] = wa[i], wb[i]
			} else {
				c1[i], c2[i] = wb[i], wa[i]
			}
		}
		first[l] = c1
		second[l] = c2
	}

	return Rule{id: newID(rng), shape: a.shape, layers: first},
		Rule{id: newID(rng), shape: a.shape, layers: second},
		nil
}
