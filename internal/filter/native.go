package filter

import (
	"image"

	"github.com/anthonynsimon/bild/channel"
	"github.com/anthonynsimon/bild/convolution"
	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// NativeName is the registry name of the pure-Go backend.
const NativeName = "native"

// Native implements Backend in pure Go on top of bild and imaging.
//
// Borders replicate the outermost pixel. Convolution results are saturated to
// [0,255] per channel.
type Native struct{}

// NewNative returns the pure-Go backend.
func NewNative() *Native {
	return &Native{}
}

// Name implements Backend.
func (n *Native) Name() string {
	return NativeName
}

// GaussianBlur implements Backend.
func (n *Native) GaussianBlur(src *image.NRGBA, ksize int, sigma float64) (*image.NRGBA, error) {
	if err := checkOdd("gaussian", ksize); err != nil {
		return nil, err
	}
	g := GaussianKernel1D(ksize, sigma)
	return n.correlate(src, Outer(g, g)), nil
}

// MedianBlur implements Backend. Each channel is filtered on its own, so the
// output is a true per-channel median rather than a luminance-ranked pick.
func (n *Native) MedianBlur(src *image.NRGBA, ksize int) (*image.NRGBA, error) {
	if err := checkOdd("median", ksize); err != nil {
		return nil, err
	}
	if ksize == 1 {
		return imaging.Clone(src), nil
	}

	bounds := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	radius := float64(ksize / 2)

	for offset, c := range []channel.Channel{channel.Red, channel.Green, channel.Blue} {
		plane := effect.Median(channel.Extract(src, c), radius)
		pb := plane.Bounds()
		for y := 0; y < bounds.Dy(); y++ {
			for x := 0; x < bounds.Dx(); x++ {
				dst.Pix[dst.PixOffset(x, y)+offset] = plane.Pix[plane.PixOffset(pb.Min.X+x, pb.Min.Y+y)]
			}
		}
	}
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return dst, nil
}

// BilateralFilter implements Backend.
func (n *Native) BilateralFilter(src *image.NRGBA, diameter int, sigmaColor, sigmaSpace float64) (*image.NRGBA, error) {
	if diameter < 1 {
		return nil, errors.Errorf("bilateral diameter must be positive, got %d", diameter)
	}
	return bilateral(src, diameter, sigmaColor, sigmaSpace), nil
}

// Filter2D implements Backend.
func (n *Native) Filter2D(src *image.NRGBA, k *Kernel) (*image.NRGBA, error) {
	if k == nil || k.Width%2 == 0 || k.Height%2 == 0 || len(k.Values) != k.Width*k.Height {
		return nil, errors.New("filter2d: kernel must have odd dimensions matching its values")
	}
	return n.correlate(src, k), nil
}

// Grayscale implements Backend.
func (n *Native) Grayscale(src *image.NRGBA) (*image.Gray, error) {
	g := imaging.Grayscale(src)
	bounds := g.Bounds()
	dst := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			dst.Pix[dst.PixOffset(x, y)] = g.Pix[g.PixOffset(bounds.Min.X+x, bounds.Min.Y+y)]
		}
	}
	return dst, nil
}

// SobelAbs implements Backend.
//
// bild saturates negative responses to zero, so the magnitude is assembled from
// two passes: one with the kernel and one with its negation. At most one of the
// two is non-zero per pixel, and their sum is |d| capped at 255.
func (n *Native) SobelAbs(src *image.Gray, dx, dy, ksize int) (*image.Gray, error) {
	k, err := SobelKernel(dx, dy, ksize)
	if err != nil {
		return nil, err
	}

	pos := convolution.Convolve(src, k.bild(), &convolution.Options{Wrap: false})
	neg := convolution.Convolve(src, k.Negated().bild(), &convolution.Options{Wrap: false})

	bounds := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	pb, nb := pos.Bounds(), neg.Bounds()
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			v := int(pos.Pix[pos.PixOffset(pb.Min.X+x, pb.Min.Y+y)]) +
				int(neg.Pix[neg.PixOffset(nb.Min.X+x, nb.Min.Y+y)])
			if v > 255 {
				v = 255
			}
			dst.Pix[dst.PixOffset(x, y)] = uint8(v)
		}
	}
	return dst, nil
}

// Canny implements Backend.
func (n *Native) Canny(src *image.Gray, threshold1, threshold2 float64) (*image.Gray, error) {
	return canny(src, threshold1, threshold2), nil
}

// correlate runs k over every colour channel and returns an opaque raster.
// bild truncates to 8 bits; the half bias makes that round to nearest.
func (n *Native) correlate(src *image.NRGBA, k *Kernel) *image.NRGBA {
	out := convolution.Convolve(src, k.bild(), &convolution.Options{Bias: 0.5, Wrap: false, KeepAlpha: true})
	dst := imaging.Clone(out)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return dst
}

func checkOdd(op string, ksize int) error {
	if ksize < 1 || ksize%2 == 0 {
		return errors.Errorf("%s kernel size must be odd and positive, got %d", op, ksize)
	}
	return nil
}

var _ Backend = (*Native)(nil)
