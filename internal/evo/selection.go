package evo

import (
	"fmt"
	"math/rand"
)

// ParentSampler picks two distinct breeding-pool slots for one crossover.
type ParentSampler interface {
	Name() string
	PickPair(rng *rand.Rand, poolSize int) (int, int, error)
}

// UniformSampler draws two slots uniformly without replacement.
type UniformSampler struct{}

func (UniformSampler) Name() string {
	return "uniform"
}

func (UniformSampler) PickPair(rng *rand.Rand, poolSize int) (int, int, error) {
	if rng == nil {
		return 0, 0, fmt.Errorf("random source is required")
	}
	if poolSize < 2 {
		return 0, 0, fmt.Errorf("%w: %d", ErrPoolTooSmall, poolSize)
	}
	first := rng.Intn(poolSize)
	second := rng.Intn(poolSize - 1)
	if second >= first {
		second++
	}
	return first, second, nil
}

// RankSampler weights slot i of a ranked pool by poolSize-i, so better ranked
// rules breed more often. The two slots are still distinct.
type RankSampler struct{}

func (RankSampler) Name() string {
	return "rank"
}

func (RankSampler) PickPair(rng *rand.Rand, poolSize int) (int, int, error) {
	if rng == nil {
		return 0, 0, fmt.Errorf("random source is required")
	}
	if poolSize < 2 {
		return 0, 0, fmt.Errorf("%w: %d", ErrPoolTooSmall, poolSize)
	}
	first := pickRankWeighted(rng, poolSize, -1)
	second := pickRankWeighted(rng, poolSize, first)
	return first, second, nil
}

func pickRankWeighted(rng *rand.Rand, poolSize, exclude int) int {
	total := 0
	for i := 0; i < poolSize; i++ {
		if i != exclude {
			total += poolSize - i
		}
	}
	target := rng.Intn(total)
	for i := 0; i < poolSize; i++ {
		if i == exclude {
			continue
		}
		target -= poolSize - i
		if target < 0 {
			return i
		}
	}
	// Unreachable for poolSize >= 2.
	return poolSize - 1
}
