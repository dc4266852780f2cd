package filter

import (
	"math"

	"github.com/anthonynsimon/bild/convolution"
	"github.com/pkg/errors"
)

// Kernel is a dense correlation kernel stored row-major.
// The anchor is the centre element, so Width and Height should be odd.
type Kernel struct {
	Width  int
	Height int
	Values []float64
}

// NewKernel builds a kernel from rows of equal length.
func NewKernel(rows [][]float64) *Kernel {
	k := &Kernel{Height: len(rows)}
	if len(rows) > 0 {
		k.Width = len(rows[0])
	}
	k.Values = make([]float64, 0, k.Width*k.Height)
	for _, row := range rows {
		k.Values = append(k.Values, row...)
	}
	return k
}

// Outer builds the separable kernel col x row: Values[y][x] = col[y]*row[x].
func Outer(col, row []float64) *Kernel {
	k := &Kernel{Width: len(row), Height: len(col), Values: make([]float64, len(row)*len(col))}
	for y, cy := range col {
		for x, rx := range row {
			k.Values[y*k.Width+x] = cy * rx
		}
	}
	return k
}

// At returns the weight at column x, row y.
func (k *Kernel) At(x, y int) float64 {
	return k.Values[y*k.Width+x]
}

// Negated returns a copy with every weight sign-flipped.
func (k *Kernel) Negated() *Kernel {
	n := &Kernel{Width: k.Width, Height: k.Height, Values: make([]float64, len(k.Values))}
	for i, v := range k.Values {
		n.Values[i] = -v
	}
	return n
}

// sum returns the sum of all weights.
func (k *Kernel) sum() float64 {
	var s float64
	for _, v := range k.Values {
		s += v
	}
	return s
}

// bild converts k into bild's kernel representation.
func (k *Kernel) bild() *convolution.Kernel {
	bk := convolution.NewKernel(k.Width, k.Height)
	copy(bk.Matrix, k.Values)
	return bk
}

// smallGaussians are the fixed kernels used for small apertures when the
// sigma is derived rather than given.
var smallGaussians = map[int][]float64{
	1: {1},
	3: {0.25, 0.5, 0.25},
	5: {0.0625, 0.25, 0.375, 0.25, 0.0625},
	7: {0.03125, 0.109375, 0.21875, 0.28125, 0.21875, 0.109375, 0.03125},
}

// GaussianSigma returns sigma, or the sigma implied by ksize when sigma <= 0.
func GaussianSigma(ksize int, sigma float64) float64 {
	if sigma > 0 {
		return sigma
	}
	return 0.3*(float64(ksize-1)*0.5-1) + 0.8
}

// GaussianKernel1D returns ksize normalised Gaussian weights centred on ksize/2.
func GaussianKernel1D(ksize int, sigma float64) []float64 {
	if sigma <= 0 {
		if fixed, ok := smallGaussians[ksize]; ok {
			out := make([]float64, len(fixed))
			copy(out, fixed)
			return out
		}
	}

	sigma = GaussianSigma(ksize, sigma)
	out := make([]float64, ksize)
	centre := float64(ksize-1) / 2
	var sum float64
	for i := range out {
		d := float64(i) - centre
		out[i] = math.Exp(-(d * d) / (2 * sigma * sigma))
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// binomial returns row n of Pascal's triangle.
func binomial(n int) []float64 {
	row := []float64{1}
	for i := 0; i < n; i++ {
		next := make([]float64, len(row)+1)
		for j, v := range row {
			next[j] += v
			next[j+1] += v
		}
		row = next
	}
	return row
}

// sobelCoefficients returns the 1D factor of a Sobel aperture for the given
// derivative order (0 = smoothing, 1 = first difference).
//
// Aperture 1 is the special case of a bare [-1 0 1] difference with no smoothing.
func sobelCoefficients(order, ksize int) []float64 {
	if ksize == 1 {
		if order == 0 {
			return []float64{1}
		}
		return []float64{-1, 0, 1}
	}
	if order == 0 {
		return binomial(ksize - 1)
	}

	base := binomial(ksize - 2)
	out := make([]float64, ksize)
	for j := range out {
		var prev, cur float64
		if j > 0 {
			prev = base[j-1]
		}
		if j < len(base) {
			cur = base[j]
		}
		out[j] = prev - cur
	}
	return out
}

// SobelKernel returns the 2D Sobel kernel for (dx, dy) in {(1,0), (0,1)} and
// ksize in {1, 3, 5, 7}. Positive responses mean intensity increasing to the
// right or downwards.
func SobelKernel(dx, dy, ksize int) (*Kernel, error) {
	if !(dx == 1 && dy == 0) && !(dx == 0 && dy == 1) {
		return nil, errors.Errorf("sobel derivative order (%d,%d) not supported", dx, dy)
	}
	switch ksize {
	case 1, 3, 5, 7:
	default:
		return nil, errors.Errorf("sobel kernel size must be 1, 3, 5 or 7, got %d", ksize)
	}

	row := sobelCoefficients(dx, ksize)
	col := sobelCoefficients(dy, ksize)
	return Outer(col, row), nil
}

// LaplacianSharpen is the fixed 4-neighbour sharpening kernel (centre 5, sides -1).
func LaplacianSharpen() *Kernel {
	return NewKernel([][]float64{
		{0, -1, 0},
		{-1, 5, -1},
		{0, -1, 0},
	})
}
