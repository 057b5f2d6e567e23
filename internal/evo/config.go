package evo

import (
	"errors"
	"fmt"

	"github.com/demmel/life-plus-plus/internal/rule"
)

const (
	SchemaVersion = 1
	CodecVersion  = 1

	DefaultPopulationSize = 8
	DefaultKernelSize     = 3
	DefaultLayers         = 1
)

var ErrInvalidConfig = errors.New("invalid engine config")

// Config fixes the engine's dimensions for its whole lifetime.
type Config struct {
	PopulationSize int
	Shape          rule.Shape
	Seed           int64
	Selection      string
}

func DefaultConfig() Config {
	return Config{
		PopulationSize: DefaultPopulationSize,
		Shape:          rule.Shape{KernelSize: DefaultKernelSize, Layers: DefaultLayers},
		Seed:           1,
		Selection:      UniformSampler{}.Name(),
	}
}

func (c Config) Validate() error {
	if c.PopulationSize < 2 {
		return fmt.Errorf("%w: population size must be at least 2, got %d", ErrInvalidConfig, c.PopulationSize)
	}
	if err := c.Shape.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := ResolveSampler(c.Selection); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
