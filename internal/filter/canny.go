package filter

import (
	"image"

	"github.com/anthonynsimon/bild/parallel"
)

const (
	// tan(22.5°) and tan(67.5°): boundaries between the four quantised
	// gradient directions used by non-maximum suppression.
	tan22 = 0.4142135623730950488
	tan67 = 2.4142135623730950488
)

const (
	cannyNone uint8 = iota
	cannyWeak
	cannyStrong
)

// canny detects edges in a single-channel raster.
//
// The algorithm follows the classic Canny pipeline without a pre-blur (callers
// smooth beforehand):
//
//  1. Gradient: 3x3 Sobel gx, gy with replicated borders; magnitude |gx|+|gy|.
//
//  2. Non-maximum suppression: the gradient direction is quantised to
//     horizontal, vertical or one of two diagonals; a pixel survives only if
//     it is a local maximum along that direction. Ties keep the first pixel
//     of a plateau so step edges stay one pixel wide.
//
//  3. Double threshold: survivors with magnitude > low are candidates;
//     candidates with magnitude > high seed the edge set.
//
//  4. Hysteresis: candidates 8-connected to a seed, directly or through other
//     candidates, become edges.
//
// Thresholds are used as given. If low > high every edge must exceed low.
func canny(src *image.Gray, low, high float64) *image.Gray {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return dst
	}

	px := func(x, y int) int {
		return int(src.Pix[src.PixOffset(bounds.Min.X+clamp(x, 0, w-1), bounds.Min.Y+clamp(y, 0, h-1))])
	}

	gx := make([]int, w*h)
	gy := make([]int, w*h)
	mag := make([]int, w*h)

	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < w; x++ {
				tl, tc, tr := px(x-1, y-1), px(x, y-1), px(x+1, y-1)
				ml, mr := px(x-1, y), px(x+1, y)
				bl, bc, br := px(x-1, y+1), px(x, y+1), px(x+1, y+1)

				dx := (tr + 2*mr + br) - (tl + 2*ml + bl)
				dy := (bl + 2*bc + br) - (tl + 2*tc + tr)

				i := y*w + x
				gx[i] = dx
				gy[i] = dy
				mag[i] = absInt(dx) + absInt(dy)
			}
		}
	})

	magAt := func(x, y int) int {
		if x < 0 || x >= w || y < 0 || y >= h {
			return 0
		}
		return mag[y*w+x]
	}

	state := make([]uint8, w*h)
	var stack []int

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			m := mag[i]
			if float64(m) <= low {
				continue
			}

			ax := float64(absInt(gx[i]))
			ay := float64(absInt(gy[i]))

			var keep bool
			switch {
			case ay <= ax*tan22:
				keep = m > magAt(x-1, y) && m >= magAt(x+1, y)
			case ay >= ax*tan67:
				keep = m > magAt(x, y-1) && m >= magAt(x, y+1)
			default:
				s := 1
				if (gx[i] < 0) != (gy[i] < 0) {
					s = -1
				}
				keep = m > magAt(x-s, y-1) && m > magAt(x+s, y+1)
			}
			if !keep {
				continue
			}

			if float64(m) > high {
				state[i] = cannyStrong
				stack = append(stack, i)
			} else {
				state[i] = cannyWeak
			}
		}
	}

	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%w, i/w

		for ky := -1; ky <= 1; ky++ {
			for kx := -1; kx <= 1; kx++ {
				nx, ny := x+kx, y+ky
				if nx < 0 || nx >= w || ny < 0 || ny >= h {
					continue
				}
				j := ny*w + nx
				if state[j] == cannyWeak {
					state[j] = cannyStrong
					stack = append(stack, j)
				}
			}
		}
	}

	for i, s := range state {
		if s == cannyStrong {
			dst.Pix[i] = 255
		}
	}
	return dst
}
