package sim

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"math/rand"
	"runtime"

	"github.com/aquilax/go-perlin"
	"github.com/sourcegraph/conc/pool"

	"github.com/demmel/life-plus-plus/internal/rule"
)

const channels = rule.Channels

var ErrInvalidSize = errors.New("invalid world size")

// SeedMode selects how a world's first frame is filled.
type SeedMode string

const (
	SeedNoise  SeedMode = "noise"
	SeedPerlin SeedMode = "perlin"
)

func ParseSeedMode(s string) (SeedMode, error) {
	switch SeedMode(s) {
	case "", SeedNoise:
		return SeedNoise, nil
	case SeedPerlin:
		return SeedPerlin, nil
	default:
		return "", fmt.Errorf("unsupported seed mode: %s", s)
	}
}

// World is a toroidal RGB grid stepped by a rule. Frames are double buffered:
// a step reads front, writes back, then swaps.
type World struct {
	width   int
	height  int
	workers int

	front []float32
	back  []float32
	// scratch holds intermediate frames of multi-layer rules.
	scratch [2][]float32

	activity float64
	steps    int
}

// NewWorld allocates a black world. workers <= 0 uses GOMAXPROCS.
func NewWorld(width, height, workers int) (*World, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	n := width * height * channels
	return &World{
		width:   width,
		height:  height,
		workers: workers,
		front:   make([]float32, n),
		back:    make([]float32, n),
	}, nil
}

func (w *World) Width() int  { return w.width }
func (w *World) Height() int { return w.height }

// Steps counts steps since the last seed.
func (w *World) Steps() int { return w.steps }

// Activity is the mean absolute per-channel change of the last step.
func (w *World) Activity() float64 { return w.activity }

// At returns the colour of cell (x, y), wrapping out-of-range coordinates.
func (w *World) At(x, y int) (r, g, b float32) {
	i := w.offset(wrap(x, w.width), wrap(y, w.height))
	return w.front[i], w.front[i+1], w.front[i+2]
}

// Set writes cell (x, y) of the current frame.
func (w *World) Set(x, y int, r, g, b float32) {
	i := w.offset(wrap(x, w.width), wrap(y, w.height))
	w.front[i], w.front[i+1], w.front[i+2] = r, g, b
}

// Seed refills the current frame and clears step statistics.
func (w *World) Seed(rng *rand.Rand, mode SeedMode) {
	switch mode {
	case SeedPerlin:
		noise := [channels]*perlin.Perlin{}
		for c := range noise {
			noise[c] = perlin.NewPerlin(2, 2, 3, rng.Int63())
		}
		scale := 4.0 / float64(max(w.width, w.height))
		for y := 0; y < w.height; y++ {
			for x := 0; x < w.width; x++ {
				i := w.offset(x, y)
				for c := 0; c < channels; c++ {
					v := noise[c].Noise2D(float64(x)*scale, float64(y)*scale)
					w.front[i+c] = clamp01(float32(v + 0.5))
				}
			}
		}
	default:
		for i := range w.front {
			w.front[i] = float32(rng.Intn(256)) / 255
		}
	}
	w.steps = 0
	w.activity = 0
}

// Step applies every layer of r once, in order.
func (w *World) Step(r rule.Rule) error {
	shape := r.Shape()
	if err := shape.Validate(); err != nil {
		return err
	}
	layers := r.NumLayers()
	if layers > 1 && w.scratch[0] == nil {
		w.scratch[0] = make([]float32, len(w.front))
		w.scratch[1] = make([]float32, len(w.front))
	}

	src := w.front
	for l := 0; l < layers; l++ {
		dst := w.back
		if l < layers-1 {
			dst = w.scratch[l%2]
		}
		w.applyLayer(shape.KernelSize, r.Layer(l), src, dst)
		src = dst
	}

	var delta float64
	for i := range w.front {
		delta += math.Abs(float64(w.back[i] - w.front[i]))
	}
	w.activity = delta / float64(len(w.front))
	w.front, w.back = w.back, w.front
	w.steps++
	return nil
}

// applyLayer convolves src into dst. For output channel c each tap adds
// w0*r + w1*g + w2*b + w3*n_c of the neighbour; the sum is averaged over the
// kernel footprint and clamped to [0, 1].
func (w *World) applyLayer(k int, weights, src, dst []float32) {
	half := k / 2
	norm := float32(1) / float32(k*k)

	rows := pool.New().WithMaxGoroutines(w.workers)
	for y := 0; y < w.height; y++ {
		y := y
		rows.Go(func() {
			for x := 0; x < w.width; x++ {
				var acc [channels]float32
				for ky := 0; ky < k; ky++ {
					ny := wrap(y+ky-half, w.height)
					for kx := 0; kx < k; kx++ {
						n := w.offset(wrap(x+kx-half, w.width), ny)
						nr, ng, nb := src[n], src[n+1], src[n+2]
						for c := 0; c < channels; c++ {
							base := ((c*k+ky)*k + kx) * rule.SlotsPerTap
							acc[c] += weights[base]*nr + weights[base+1]*ng + weights[base+2]*nb + weights[base+3]*src[n+c]
						}
					}
				}
				o := w.offset(x, y)
				for c := 0; c < channels; c++ {
					dst[o+c] = clamp01(acc[c] * norm)
				}
			}
		})
	}
	rows.Wait()
}

// Image renders the current frame.
func (w *World) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w.width, w.height))
	w.Fill(img.Pix)
	return img
}

// Fill writes the current frame as RGBA8 into pix, which must hold
// width*height*4 bytes.
func (w *World) Fill(pix []byte) {
	for i, j := 0, 0; i < len(w.front); i, j = i+channels, j+4 {
		pix[j] = toByte(w.front[i])
		pix[j+1] = toByte(w.front[i+1])
		pix[j+2] = toByte(w.front[i+2])
		pix[j+3] = 0xff
	}
}

func (w *World) WritePNG(out io.Writer) error {
	return png.Encode(out, w.Image())
}

// ColorAt is At as a color.RGBA.
func (w *World) ColorAt(x, y int) color.RGBA {
	r, g, b := w.At(x, y)
	return color.RGBA{R: toByte(r), G: toByte(g), B: toByte(b), A: 0xff}
}

func (w *World) offset(x, y int) int {
	return (y*w.width + x) * channels
}

func wrap(v, m int) int {
	v %= m
	if v < 0 {
		v += m
	}
	return v
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func toByte(v float32) uint8 {
	return uint8(clamp01(v)*255 + 0.5)
}
