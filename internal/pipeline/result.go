package pipeline

import (
	"fmt"
	"image"
	"strings"

	"github.com/pkg/errors"
)

// ErrUnknownStage is returned when an output name does not match any stage.
var ErrUnknownStage = errors.New("unknown output stage")

// Stage names one raster produced by a run.
type Stage string

// Stages in the order they are produced.
const (
	StageOriginal  Stage = "original"
	StageSmoothed  Stage = "smoothed"
	StageSharpened Stage = "sharpened"
	StageGray      Stage = "gray"
	StageSobel     Stage = "sobel"
	StagePrewitt   Stage = "prewitt"
	StageCanny     Stage = "canny"
)

// OutputStages are the six rasters a run exports, in display order.
// The gray intermediate is addressable through Output but not exported by default.
var OutputStages = []Stage{StageOriginal, StageSmoothed, StageSharpened, StageSobel, StagePrewitt, StageCanny}

// AllStages lists every stage in execution order.
var AllStages = []Stage{StageOriginal, StageSmoothed, StageSharpened, StageGray, StageSobel, StagePrewitt, StageCanny}

// ParseStage resolves a stage name case-insensitively.
func ParseStage(s string) (Stage, error) {
	for _, st := range AllStages {
		if strings.EqualFold(strings.TrimSpace(s), string(st)) {
			return st, nil
		}
	}
	return "", errors.Wrapf(ErrUnknownStage, "%q", s)
}

// FileName returns the suggested download name for the stage's PNG.
func (s Stage) FileName() string {
	switch s {
	case StageOriginal:
		return "original.png"
	case StageSmoothed:
		return "smoothed.png"
	case StageSharpened:
		return "sharpened.png"
	case StageGray:
		return "gray.png"
	case StageSobel:
		return "edges_sobel.png"
	case StagePrewitt:
		return "edges_prewitt.png"
	case StageCanny:
		return "edges_canny.png"
	}
	return string(s) + ".png"
}

// Output is one raster of a run together with its caption.
type Output struct {
	Stage    Stage
	Caption  string
	FileName string
	Image    image.Image
}

// Result holds every raster of one run. Colour rasters are opaque NRGBA and
// all rasters share the same dimensions.
type Result struct {
	Config Config

	Original  *image.NRGBA
	Smoothed  *image.NRGBA
	Sharpened *image.NRGBA
	Gray      *image.Gray
	Sobel     *image.Gray
	Prewitt   *image.Gray
	Canny     *image.Gray
}

// Width returns the width shared by every raster.
func (r *Result) Width() int {
	return r.Original.Bounds().Dx()
}

// Height returns the height shared by every raster.
func (r *Result) Height() int {
	return r.Original.Bounds().Dy()
}

// Caption describes how the stage's raster was produced, naming the methods
// and parameters in effect.
func (r *Result) Caption(s Stage) string {
	c := r.Config
	switch s {
	case StageOriginal:
		return "Original"
	case StageSmoothed:
		switch c.Smooth {
		case SmoothGaussian:
			return fmt.Sprintf("Smoothed (%s, k=%d, sigma=%g)", c.Smooth.Label(), NormalizeOdd(c.SmoothKernel), c.SmoothSigma)
		case SmoothBilateral:
			return fmt.Sprintf("Smoothed (%s, d=%d, sigmaColor=%d, sigmaSpace=%d)",
				c.Smooth.Label(), NormalizeOdd(c.SmoothKernel), c.SigmaColor, c.SigmaSpace)
		}
		return fmt.Sprintf("Smoothed (%s, k=%d)", c.Smooth.Label(), NormalizeOdd(c.SmoothKernel))
	case StageSharpened:
		if c.Sharpen == SharpenUnsharp {
			return fmt.Sprintf("Sharpened (%s, k=%d, sigma=%g, amount=%g)",
				c.Sharpen.Label(), NormalizeOdd(c.SharpenKernel), c.SharpenSigma, c.SharpenAmount)
		}
		return fmt.Sprintf("Sharpened (%s)", c.Sharpen.Label())
	case StageGray:
		return "Grayscale"
	case StageSobel:
		return fmt.Sprintf("Sobel edges (ksize=%d)", c.SobelKernel)
	case StagePrewitt:
		return "Prewitt edges"
	case StageCanny:
		return fmt.Sprintf("Canny edges (t1=%d, t2=%d)", c.CannyLow, c.CannyHigh)
	}
	return string(s)
}

// Output returns the raster for one stage.
func (r *Result) Output(s Stage) (Output, error) {
	var img image.Image
	switch s {
	case StageOriginal:
		img = r.Original
	case StageSmoothed:
		img = r.Smoothed
	case StageSharpened:
		img = r.Sharpened
	case StageGray:
		img = r.Gray
	case StageSobel:
		img = r.Sobel
	case StagePrewitt:
		img = r.Prewitt
	case StageCanny:
		img = r.Canny
	default:
		return Output{}, errors.Wrapf(ErrUnknownStage, "%q", s)
	}
	return Output{Stage: s, Caption: r.Caption(s), FileName: s.FileName(), Image: img}, nil
}

// Outputs returns the six exported rasters in display order.
func (r *Result) Outputs() []Output {
	outs := make([]Output, 0, len(OutputStages))
	for _, s := range OutputStages {
		o, _ := r.Output(s)
		outs = append(outs, o)
	}
	return outs
}
