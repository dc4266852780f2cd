//go:build opencv

package filter

import (
	"image"
	"image/draw"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// OpenCVName is the registry name of the OpenCV backend.
const OpenCVName = "opencv"

func init() {
	register(OpenCVName, func() Backend { return NewOpenCV() })
}

// OpenCV implements Backend with gocv. It is only compiled with the "opencv"
// build tag and requires the OpenCV 4 shared libraries at run time.
//
// Unlike Native, borders reflect (BORDER_REFLECT_101) and Canny swaps
// misordered thresholds.
type OpenCV struct{}

// NewOpenCV returns the OpenCV backend.
func NewOpenCV() *OpenCV {
	return &OpenCV{}
}

// Name implements Backend.
func (o *OpenCV) Name() string {
	return OpenCVName
}

// GaussianBlur implements Backend.
func (o *OpenCV) GaussianBlur(src *image.NRGBA, ksize int, sigma float64) (*image.NRGBA, error) {
	return o.colorOp(src, func(in gocv.Mat, out *gocv.Mat) error {
		return gocv.GaussianBlur(in, out, image.Point{X: ksize, Y: ksize}, sigma, sigma, gocv.BorderDefault)
	})
}

// MedianBlur implements Backend.
func (o *OpenCV) MedianBlur(src *image.NRGBA, ksize int) (*image.NRGBA, error) {
	return o.colorOp(src, func(in gocv.Mat, out *gocv.Mat) error {
		return gocv.MedianBlur(in, out, ksize)
	})
}

// BilateralFilter implements Backend.
func (o *OpenCV) BilateralFilter(src *image.NRGBA, diameter int, sigmaColor, sigmaSpace float64) (*image.NRGBA, error) {
	return o.colorOp(src, func(in gocv.Mat, out *gocv.Mat) error {
		return gocv.BilateralFilter(in, out, diameter, sigmaColor, sigmaSpace)
	})
}

// Filter2D implements Backend.
func (o *OpenCV) Filter2D(src *image.NRGBA, k *Kernel) (*image.NRGBA, error) {
	kernel := gocv.NewMatWithSize(k.Height, k.Width, gocv.MatTypeCV32F)
	defer kernel.Close()
	for y := 0; y < k.Height; y++ {
		for x := 0; x < k.Width; x++ {
			kernel.SetFloatAt(y, x, float32(k.At(x, y)))
		}
	}

	return o.colorOp(src, func(in gocv.Mat, out *gocv.Mat) error {
		return gocv.Filter2D(in, out, -1, kernel, image.Point{X: -1, Y: -1}, 0, gocv.BorderDefault)
	})
}

// Grayscale implements Backend.
func (o *OpenCV) Grayscale(src *image.NRGBA) (*image.Gray, error) {
	in, err := gocv.ImageToMatRGB(src)
	if err != nil {
		return nil, errors.Wrap(err, "unable to convert image to mat")
	}
	defer in.Close()

	out := gocv.NewMat()
	defer out.Close()
	if err := gocv.CvtColor(in, &out, gocv.ColorBGRToGray); err != nil {
		return nil, errors.Wrap(err, "unable to convert to gray")
	}
	return matToGray(out)
}

// SobelAbs implements Backend. The derivative is taken at 16-bit depth and
// folded to |d| saturated at 255, as convertScaleAbs does.
func (o *OpenCV) SobelAbs(src *image.Gray, dx, dy, ksize int) (*image.Gray, error) {
	in, err := gocv.ImageGrayToMatGray(src)
	if err != nil {
		return nil, errors.Wrap(err, "unable to convert gray image to mat")
	}
	defer in.Close()

	deriv := gocv.NewMat()
	defer deriv.Close()
	if err := gocv.Sobel(in, &deriv, gocv.MatTypeCV16S, dx, dy, ksize, 1, 0, gocv.BorderDefault); err != nil {
		return nil, errors.Wrap(err, "opencv call failed")
	}

	dst := image.NewGray(image.Rect(0, 0, deriv.Cols(), deriv.Rows()))
	for y := 0; y < deriv.Rows(); y++ {
		for x := 0; x < deriv.Cols(); x++ {
			v := int(deriv.GetShortAt(y, x))
			if v < 0 {
				v = -v
			}
			if v > 255 {
				v = 255
			}
			dst.Pix[dst.PixOffset(x, y)] = uint8(v)
		}
	}
	return dst, nil
}

// Canny implements Backend.
func (o *OpenCV) Canny(src *image.Gray, threshold1, threshold2 float64) (*image.Gray, error) {
	return o.grayOp(src, func(in gocv.Mat, out *gocv.Mat) error {
		return gocv.Canny(in, out, float32(threshold1), float32(threshold2))
	})
}

func (o *OpenCV) colorOp(src *image.NRGBA, fn func(in gocv.Mat, out *gocv.Mat) error) (*image.NRGBA, error) {
	in, err := gocv.ImageToMatRGB(src)
	if err != nil {
		return nil, errors.Wrap(err, "unable to convert image to mat")
	}
	defer in.Close()

	out := gocv.NewMat()
	defer out.Close()
	if err := fn(in, &out); err != nil {
		return nil, errors.Wrap(err, "opencv call failed")
	}

	img, err := out.ToImage()
	if err != nil {
		return nil, errors.Wrap(err, "unable to convert mat to image")
	}
	dst := imaging.Clone(img)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return dst, nil
}

func (o *OpenCV) grayOp(src *image.Gray, fn func(in gocv.Mat, out *gocv.Mat) error) (*image.Gray, error) {
	in, err := gocv.ImageGrayToMatGray(src)
	if err != nil {
		return nil, errors.Wrap(err, "unable to convert gray image to mat")
	}
	defer in.Close()

	out := gocv.NewMat()
	defer out.Close()
	if err := fn(in, &out); err != nil {
		return nil, errors.Wrap(err, "opencv call failed")
	}
	return matToGray(out)
}

func matToGray(m gocv.Mat) (*image.Gray, error) {
	img, err := m.ToImage()
	if err != nil {
		return nil, errors.Wrap(err, "unable to convert mat to image")
	}
	if g, ok := img.(*image.Gray); ok {
		return g, nil
	}
	bounds := img.Bounds()
	g := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(g, g.Bounds(), img, bounds.Min, draw.Src)
	return g, nil
}

var _ Backend = (*OpenCV)(nil)
