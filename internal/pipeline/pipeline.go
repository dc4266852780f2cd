package pipeline

import (
	"image"
	"io"
	"math"
	"time"

	"github.com/anthonynsimon/bild/parallel"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/image-enhance-mcp/internal/filter"
	"github.com/ironsheep/image-enhance-mcp/internal/imaging"
)

// prewittEpsilon keeps the normalisation finite on flat images.
const prewittEpsilon = 1e-6

// Pipeline runs the enhancement stages on top of a filter backend.
// It holds no per-run state and is safe for concurrent use.
type Pipeline struct {
	backend filter.Backend
	log     *logrus.Logger
}

// New returns a pipeline bound to backend. A nil logger discards output.
func New(backend filter.Backend, logger *logrus.Logger) *Pipeline {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &Pipeline{backend: backend, log: logger}
}

// Backend returns the filter backend in use.
func (p *Pipeline) Backend() filter.Backend {
	return p.backend
}

// Process decodes an encoded image and runs it through the pipeline.
func (p *Pipeline) Process(data []byte, cfg Config) (*Result, error) {
	img, format, err := imaging.Decode(data)
	if err != nil {
		return nil, err
	}
	p.log.WithFields(logrus.Fields{
		"format": format,
		"width":  img.Bounds().Dx(),
		"height": img.Bounds().Dy(),
	}).Debug("decoded input")
	return p.Run(img, cfg)
}

// Run executes every stage in order: smoothing, sharpening, grayscale and the
// three edge maps. The input is not modified.
func (p *Pipeline) Run(img image.Image, cfg Config) (*Result, error) {
	if img == nil {
		return nil, imaging.ErrNoImage
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Smooth, _ = ParseSmoothMethod(string(cfg.Smooth))
	cfg.Sharpen, _ = ParseSharpenMethod(string(cfg.Sharpen))

	original := imaging.Fit(imaging.ToNRGBA(img), cfg.MaxSide)
	if b := original.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, errors.Wrap(imaging.ErrNoImage, "image has no pixels")
	}

	start := time.Now()
	res := &Result{Config: cfg, Original: original}

	var err error
	stage := func(name string, fn func() error) {
		if err != nil {
			return
		}
		t := time.Now()
		if err = fn(); err != nil {
			err = errors.Wrapf(err, "%s stage failed", name)
			return
		}
		p.log.WithFields(logrus.Fields{
			"stage":   name,
			"elapsed": time.Since(t).String(),
		}).Debug("stage complete")
	}

	stage(string(StageSmoothed), func() (e error) {
		res.Smoothed, e = p.Smooth(original, cfg)
		return
	})
	stage(string(StageSharpened), func() (e error) {
		res.Sharpened, e = p.Sharpen(res.Smoothed, cfg)
		return
	})
	stage(string(StageGray), func() (e error) {
		res.Gray, e = p.backend.Grayscale(res.Sharpened)
		return
	})
	stage(string(StageSobel), func() (e error) {
		res.Sobel, e = p.Sobel(res.Gray, cfg.SobelKernel)
		return
	})
	stage(string(StagePrewitt), func() (e error) {
		res.Prewitt = p.Prewitt(res.Gray)
		return nil
	})
	stage(string(StageCanny), func() (e error) {
		res.Canny, e = p.Edges(res.Gray, cfg.CannyLow, cfg.CannyHigh)
		return
	})
	if err != nil {
		return nil, err
	}

	p.log.WithFields(logrus.Fields{
		"backend": p.backend.Name(),
		"smooth":  string(cfg.Smooth),
		"sharpen": string(cfg.Sharpen),
		"width":   original.Bounds().Dx(),
		"height":  original.Bounds().Dy(),
		"elapsed": time.Since(start).String(),
	}).Info("pipeline complete")

	return res, nil
}

// Smooth applies the configured noise-reduction method. Kernel sizes are
// normalised to odd values; for the bilateral filter the kernel is the
// neighbourhood diameter.
func (p *Pipeline) Smooth(img *image.NRGBA, cfg Config) (*image.NRGBA, error) {
	method, err := ParseSmoothMethod(string(cfg.Smooth))
	if err != nil {
		return nil, err
	}
	k := NormalizeOdd(cfg.SmoothKernel)

	switch method {
	case SmoothGaussian:
		return p.backend.GaussianBlur(img, k, cfg.SmoothSigma)
	case SmoothMedian:
		return p.backend.MedianBlur(img, k)
	default:
		return p.backend.BilateralFilter(img, k, float64(cfg.SigmaColor), float64(cfg.SigmaSpace))
	}
}

// Sharpen applies the configured contrast-enhancement method.
//
// Unsharp masking computes clamp(round((1+a)*img - a*blur)) per channel, where
// blur is a Gaussian of the normalised sharpen kernel and sigma. With a = 0 the
// image is returned unchanged. The Laplacian method correlates with the fixed
// 3x3 kernel [[0,-1,0],[-1,5,-1],[0,-1,0]].
func (p *Pipeline) Sharpen(img *image.NRGBA, cfg Config) (*image.NRGBA, error) {
	method, err := ParseSharpenMethod(string(cfg.Sharpen))
	if err != nil {
		return nil, err
	}

	if method == SharpenLaplacian {
		return p.backend.Filter2D(img, filter.LaplacianSharpen())
	}

	blur, err := p.backend.GaussianBlur(img, NormalizeOdd(cfg.SharpenKernel), cfg.SharpenSigma)
	if err != nil {
		return nil, err
	}

	a := cfg.SharpenAmount
	dst := image.NewNRGBA(image.Rect(0, 0, img.Bounds().Dx(), img.Bounds().Dy()))
	src := imaging.ToNRGBA(img)
	for i := 0; i < len(dst.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			v := (1+a)*float64(src.Pix[i+c]) - a*float64(blur.Pix[i+c])
			dst.Pix[i+c] = saturate(math.Round(v))
		}
		dst.Pix[i+3] = 0xff
	}
	return dst, nil
}

// Sobel combines the absolute x and y derivatives of gray with equal weight:
// round(0.5*|gx| + 0.5*|gy|).
func (p *Pipeline) Sobel(gray *image.Gray, ksize int) (*image.Gray, error) {
	if !validSobelKernel(ksize) {
		return nil, errors.Wrapf(ErrInvalidConfig, "sobel_kernel=%d outside 1, 3, 5, 7", ksize)
	}
	gx, err := p.backend.SobelAbs(gray, 1, 0, ksize)
	if err != nil {
		return nil, err
	}
	gy, err := p.backend.SobelAbs(gray, 0, 1, ksize)
	if err != nil {
		return nil, err
	}

	dst := image.NewGray(gx.Bounds())
	for i := range dst.Pix {
		dst.Pix[i] = saturate(math.Round(0.5*float64(gx.Pix[i]) + 0.5*float64(gy.Pix[i])))
	}
	return dst, nil
}

// Prewitt computes the gradient magnitude with the Prewitt operators in
// floating point and rescales it to 0-255 by dividing by (max + 1e-6).
// Values are truncated, never rounded, so a flat image maps to all zeros.
func (p *Pipeline) Prewitt(gray *image.Gray) *image.Gray {
	bounds := gray.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return dst
	}

	px := func(x, y int) float64 {
		return float64(gray.Pix[gray.PixOffset(bounds.Min.X+clampInt(x, 0, w-1), bounds.Min.Y+clampInt(y, 0, h-1))])
	}

	mag := make([]float64, w*h)
	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < w; x++ {
				gx := (px(x+1, y-1) + px(x+1, y) + px(x+1, y+1)) - (px(x-1, y-1) + px(x-1, y) + px(x-1, y+1))
				gy := (px(x-1, y+1) + px(x, y+1) + px(x+1, y+1)) - (px(x-1, y-1) + px(x, y-1) + px(x+1, y-1))
				mag[y*w+x] = math.Hypot(gx, gy)
			}
		}
	})

	max := 0.0
	for _, m := range mag {
		if m > max {
			max = m
		}
	}

	scale := 255.0 / (max + prewittEpsilon)
	for i, m := range mag {
		dst.Pix[i] = uint8(m * scale)
	}
	return dst
}

// Edges runs the hysteresis edge detector with the thresholds as given.
// A lower threshold above the upper one is allowed but logged.
func (p *Pipeline) Edges(gray *image.Gray, low, high int) (*image.Gray, error) {
	if low > high {
		p.log.WithFields(logrus.Fields{
			"canny_threshold1": low,
			"canny_threshold2": high,
		}).Warn("canny lower threshold exceeds upper threshold")
	}
	return p.backend.Canny(gray, float64(low), float64(high))
}

// EdgeMap converts img to grayscale and returns its Canny edge map without
// any smoothing or sharpening.
func (p *Pipeline) EdgeMap(img image.Image, low, high int) (*image.Gray, error) {
	if img == nil {
		return nil, imaging.ErrNoImage
	}
	for _, t := range []int{low, high} {
		if t < 0 || t > MaxThreshold {
			return nil, errors.Wrapf(ErrInvalidConfig, "canny threshold %d outside 0..255", t)
		}
	}
	gray, err := p.backend.Grayscale(imaging.ToNRGBA(img))
	if err != nil {
		return nil, errors.Wrap(err, "gray stage failed")
	}
	return p.Edges(gray, low, high)
}

func saturate(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
