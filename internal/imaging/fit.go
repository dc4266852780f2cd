package imaging

import (
	"image"

	"github.com/disintegration/imaging"
)

// Fit scales img down so that neither side exceeds maxSide, keeping the aspect ratio.
//
// A maxSide of zero or less disables the cap. Images already within the cap are
// returned unchanged (not copied). Downscaling uses the Lanczos filter and the
// result is opaque with its origin at (0,0).
func Fit(img *image.NRGBA, maxSide int) *image.NRGBA {
	if maxSide <= 0 {
		return img
	}

	bounds := img.Bounds()
	if bounds.Dx() <= maxSide && bounds.Dy() <= maxSide {
		return img
	}

	return ToNRGBA(imaging.Fit(img, maxSide, maxSide, imaging.Lanczos))
}
