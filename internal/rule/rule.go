package rule

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

const (
	// Channels is the number of colour channels a rule reads and writes.
	Channels = 3
	// SlotsPerTap is the weight count per kernel tap and output channel: r, g, b, identity.
	SlotsPerTap = 4
	// IdentitySlot is the slot index fixed at 1.0 on random rules.
	IdentitySlot = 3
)

var (
	ErrShapeMismatch = errors.New("rule shapes differ")
	ErrInvalidShape  = errors.New("invalid rule shape")
)

// Shape is the structural description shared by every rule of a population.
type Shape struct {
	KernelSize int `json:"kernel_size"`
	Layers     int `json:"layers"`
}

func (s Shape) Validate() error {
	if s.KernelSize < 1 || s.KernelSize%2 == 0 {
		return fmt.Errorf("%w: kernel size must be odd and positive, got %d", ErrInvalidShape, s.KernelSize)
	}
	if s.Layers < 1 {
		return fmt.Errorf("%w: layer count must be positive, got %d", ErrInvalidShape, s.Layers)
	}
	return nil
}

// LayerLen is the flat weight count of one layer.
func (s Shape) LayerLen() int {
	return Channels * s.KernelSize * s.KernelSize * SlotsPerTap
}

// Index maps (channel, kernel y, kernel x, slot) to the flat layer offset.
func (s Shape) Index(c, ky, kx, slot int) int {
	k := s.KernelSize
	return ((c*k+ky)*k+kx)*SlotsPerTap + slot
}

func (s Shape) String() string {
	return fmt.Sprintf("%dx%d/%d", s.KernelSize, s.KernelSize, s.Layers)
}

// Rule is one candidate update function: a stack of convolution layers.
// A Rule never changes after construction; breeding always yields new values.
type Rule struct {
	id     string
	shape  Shape
	layers [][]float32
}

func (r Rule) ID() string {
	return r.id
}

func (r Rule) Shape() Shape {
	return r.shape
}

func (r Rule) NumLayers() int {
	return len(r.layers)
}

// IsZero reports whether r is the zero Rule.
func (r Rule) IsZero() bool {
	return r.id == "" && r.layers == nil
}

// Layer returns a copy of one layer's weights.
func (r Rule) Layer(i int) []float32 {
	return append([]float32(nil), r.layers[i]...)
}

// Layers returns a deep copy of all layer weights.
func (r Rule) Layers() [][]float32 {
	out := make([][]float32, len(r.layers))
	for i := range r.layers {
		out[i] = r.Layer(i)
	}
	return out
}

func (r Rule) Weight(layer, i int) float32 {
	return r.layers[layer][i]
}

// SameShape reports whether r and other can be crossed over.
func (r Rule) SameShape(other Rule) bool {
	if len(r.layers) != len(other.layers) {
		return false
	}
	for i := range r.layers {
		if len(r.layers[i]) != len(other.layers[i]) {
			return false
		}
	}
	return true
}

// FromLayers builds a rule from explicit weights. The input is copied.
func FromLayers(shape Shape, layers [][]float32) (Rule, error) {
	if err := shape.Validate(); err != nil {
		return Rule{}, err
	}
	if len(layers) != shape.Layers {
		return Rule{}, fmt.Errorf("%w: expected %d layers, got %d", ErrInvalidShape, shape.Layers, len(layers))
	}
	copied := make([][]float32, len(layers))
	for i, layer := range layers {
		if len(layer) != shape.LayerLen() {
			return Rule{}, fmt.Errorf("%w: layer %d has %d weights, want %d", ErrInvalidShape, i, len(layer), shape.LayerLen())
		}
		copied[i] = append([]float32(nil), layer...)
	}
	return Rule{id: uuid.NewString(), shape: shape, layers: copied}, nil
}

func newID(rng *rand.Rand) string {
	id, err := uuid.NewRandomFromReader(rng)
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func ensureRNG(rng *rand.Rand) *rand.Rand {
	if rng != nil {
		return rng
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}
