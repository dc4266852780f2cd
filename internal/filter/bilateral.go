package filter

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/parallel"
)

type bilateralTap struct {
	dx, dy int
	weight float64
}

// bilateral is a direct (non-approximated) bilateral filter.
//
// The neighbourhood is the disc of radius diameter/2. Spatial weights are
// exp(-r²/2σs²); range weights are exp(-d²/2σc²) where d is the summed absolute
// difference of the three channels against the centre pixel. Sigmas <= 0 are
// treated as 1.
func bilateral(src *image.NRGBA, diameter int, sigmaColor, sigmaSpace float64) *image.NRGBA {
	if sigmaColor <= 0 {
		sigmaColor = 1
	}
	if sigmaSpace <= 0 {
		sigmaSpace = 1
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))

	radius := diameter / 2
	var taps []bilateralTap
	spaceCoeff := -0.5 / (sigmaSpace * sigmaSpace)
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			r2 := float64(dx*dx + dy*dy)
			if r2 > float64(radius*radius) {
				continue
			}
			taps = append(taps, bilateralTap{dx: dx, dy: dy, weight: math.Exp(r2 * spaceCoeff)})
		}
	}

	// 3 channels x 255 is the largest possible summed difference.
	var colorWeight [3*255 + 1]float64
	colorCoeff := -0.5 / (sigmaColor * sigmaColor)
	for d := range colorWeight {
		colorWeight[d] = math.Exp(float64(d*d) * colorCoeff)
	}

	at := func(x, y int) int {
		return src.PixOffset(bounds.Min.X+clamp(x, 0, w-1), bounds.Min.Y+clamp(y, 0, h-1))
	}

	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < w; x++ {
				c := at(x, y)
				r0, g0, b0 := int(src.Pix[c]), int(src.Pix[c+1]), int(src.Pix[c+2])

				var sumR, sumG, sumB, sumW float64
				for _, t := range taps {
					i := at(x+t.dx, y+t.dy)
					r, g, b := int(src.Pix[i]), int(src.Pix[i+1]), int(src.Pix[i+2])
					diff := absInt(r-r0) + absInt(g-g0) + absInt(b-b0)
					wt := t.weight * colorWeight[diff]
					sumR += float64(r) * wt
					sumG += float64(g) * wt
					sumB += float64(b) * wt
					sumW += wt
				}

				o := dst.PixOffset(x, y)
				dst.Pix[o] = clampUint8(math.Round(sumR / sumW))
				dst.Pix[o+1] = clampUint8(math.Round(sumG / sumW))
				dst.Pix[o+2] = clampUint8(math.Round(sumB / sumW))
				dst.Pix[o+3] = 0xff
			}
		}
	})

	return dst
}

// clamp constrains an integer value to the range [min, max].
// Used for replicated-border handling in neighbourhood operations.
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

func clampUint8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
