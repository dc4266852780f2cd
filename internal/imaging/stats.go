package imaging

import (
	"image"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent (0=gray, 100=vivid)
	L int `json:"l"` // Lightness: 0-100 percent (0=black, 50=normal, 100=white)
}

// Stats summarises a raster for display next to the image itself.
type Stats struct {
	// MeanHex is the per-channel mean colour as "#rrggbb".
	MeanHex string `json:"mean_hex"`

	// MeanHSL is the mean colour in HSL.
	MeanHSL HSLColor `json:"mean_hsl"`

	// MeanIntensity is the mean BT.601 luma (0-255).
	MeanIntensity float64 `json:"mean_intensity"`

	// MaxIntensity is the largest luma found in the raster.
	MaxIntensity uint8 `json:"max_intensity"`

	// NonZeroPercent is the share of pixels with any non-zero channel (0-100).
	// For binary edge maps this is the edge density.
	NonZeroPercent float64 `json:"nonzero_percent"`

	// ColorDrift is the CIE76 distance between this mean colour and a reference
	// mean colour. Summarize leaves it at zero; see ColorDistance.
	ColorDrift float64 `json:"color_drift"`
}

// Summarize computes Stats over every pixel of img.
//
// Gray and NRGBA rasters are read directly from their pixel buffers; any other
// image type goes through the generic color interface, scaled to 8 bits.
func Summarize(img image.Image) Stats {
	bounds := img.Bounds()

	var sumR, sumG, sumB, sumY float64
	var maxY uint8
	nonZero := 0

	add := func(r, g, b uint8) {
		sumR += float64(r)
		sumG += float64(g)
		sumB += float64(b)
		y := luma(r, g, b)
		sumY += float64(y)
		if y > maxY {
			maxY = y
		}
		if r != 0 || g != 0 || b != 0 {
			nonZero++
		}
	}

	switch src := img.(type) {
	case *image.Gray:
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				v := src.Pix[src.PixOffset(x, y)]
				add(v, v, v)
			}
		}
	case *image.NRGBA:
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				i := src.PixOffset(x, y)
				add(src.Pix[i], src.Pix[i+1], src.Pix[i+2])
			}
		}
	default:
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				r, g, b, _ := img.At(x, y).RGBA()
				add(uint8(r>>8), uint8(g>>8), uint8(b>>8))
			}
		}
	}

	total := float64(bounds.Dx() * bounds.Dy())
	if total == 0 {
		return Stats{MeanHex: "#000000"}
	}

	mean := colorful.Color{
		R: sumR / total / 255.0,
		G: sumG / total / 255.0,
		B: sumB / total / 255.0,
	}
	h, s, l := mean.Hsl()

	return Stats{
		MeanHex:        mean.Hex(),
		MeanHSL:        HSLColor{H: int(h), S: int(s * 100), L: int(l * 100)},
		MeanIntensity:  sumY / total,
		MaxIntensity:   maxY,
		NonZeroPercent: float64(nonZero) / total * 100,
	}
}

// ColorDistance returns the CIE76 (Lab) distance between the mean colours of a and b.
// Unparseable hex values count as black.
func ColorDistance(a, b Stats) float64 {
	ca, err := colorful.Hex(a.MeanHex)
	if err != nil {
		ca = colorful.Color{}
	}
	cb, err := colorful.Hex(b.MeanHex)
	if err != nil {
		cb = colorful.Color{}
	}
	return ca.DistanceLab(cb)
}

// luma converts 8-bit RGB to BT.601 luma, rounded to nearest.
func luma(r, g, b uint8) uint8 {
	return uint8(0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b) + 0.5)
}
