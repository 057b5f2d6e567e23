package evo

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrSamplerExists   = errors.New("parent sampler already registered")
	ErrSamplerNotFound = errors.New("parent sampler not found")
)

var samplerRegistry = struct {
	mu sync.RWMutex
	m  map[string]ParentSampler
}{
	m: map[string]ParentSampler{
		UniformSampler{}.Name(): UniformSampler{},
		RankSampler{}.Name():    RankSampler{},
	},
}

// RegisterSampler makes a sampler selectable by name.
func RegisterSampler(sampler ParentSampler) error {
	if sampler == nil {
		return errors.New("sampler is required")
	}
	name := sampler.Name()
	if name == "" {
		return errors.New("sampler name is required")
	}

	samplerRegistry.mu.Lock()
	defer samplerRegistry.mu.Unlock()

	if _, exists := samplerRegistry.m[name]; exists {
		return fmt.Errorf("%w: %s", ErrSamplerExists, name)
	}
	samplerRegistry.m[name] = sampler
	return nil
}

// ResolveSampler returns the named sampler; "" resolves to uniform.
func ResolveSampler(name string) (ParentSampler, error) {
	if name == "" {
		name = UniformSampler{}.Name()
	}

	samplerRegistry.mu.RLock()
	defer samplerRegistry.mu.RUnlock()

	sampler, ok := samplerRegistry.m[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSamplerNotFound, name)
	}
	return sampler, nil
}

func ListSamplers() []string {
	samplerRegistry.mu.RLock()
	defer samplerRegistry.mu.RUnlock()

	names := make([]string, 0, len(samplerRegistry.m))
	for name := range samplerRegistry.m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
