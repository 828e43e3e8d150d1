package common

import (
	"fmt"

	"github.com/mjibson/go-dsp/dsputils"
	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

// HammingSmooth convolves data with a normalized Hamming kernel of the given
// odd width. Edges are padded by repeating the end samples so a flat trace
// stays flat. Width 1 returns a copy.
func HammingSmooth(data []float64, width int) ([]float64, error) {
	if width < 1 || width%2 == 0 {
		return nil, fmt.Errorf("smoothing width must be a positive odd number, got %d", width)
	}

	out := make([]float64, len(data))
	if width == 1 || len(data) == 0 {
		copy(out, data)
		return out, nil
	}

	kernel := window.Hamming(width)
	var mass float64
	for _, k := range kernel {
		mass += k
	}
	for i := range kernel {
		kernel[i] /= mass
	}

	half := width / 2
	padded := make([]float64, 0, len(data)+2*half)
	for i := 0; i < half; i++ {
		padded = append(padded, data[0])
	}
	padded = append(padded, data...)
	for i := 0; i < half; i++ {
		padded = append(padded, data[len(data)-1])
	}

	// linear convolution through the FFT: both operands padded to the full
	// output length so the circular wrap never overlaps real samples
	n := len(padded) + width - 1
	x := dsputils.ZeroPad(dsputils.ToComplex(padded), n)
	k := dsputils.ZeroPad(dsputils.ToComplex(kernel), n)
	full := fft.Convolve(x, k)

	for i := range out {
		out[i] = real(full[i+2*half])
	}
	return out, nil
}
