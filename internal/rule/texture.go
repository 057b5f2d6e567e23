package rule

import (
	"encoding/binary"
	"math"
)

// Texture encodes one layer in the upload layout used by the renderer: a
// KernelSize x 3*KernelSize RGBA32F image, little endian, row-major, where row
// c*k+ky and column kx hold the four slots of that tap.
func (r Rule) Texture(layer int) []byte {
	weights := r.layers[layer]
	out := make([]byte, len(weights)*4)
	for i, w := range weights {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(w))
	}
	return out
}

// TextureSize returns the texture width and height in texels.
func (s Shape) TextureSize() (width, height int) {
	return s.KernelSize, Channels * s.KernelSize
}
