package pipeline

import (
	"strings"

	"github.com/pkg/errors"
)

// ErrInvalidConfig is returned when a parameter is outside its domain.
var ErrInvalidConfig = errors.New("invalid pipeline configuration")

// SmoothMethod selects the noise-reduction operator.
type SmoothMethod string

// Smoothing methods.
const (
	SmoothGaussian  SmoothMethod = "gaussian"
	SmoothMedian    SmoothMethod = "median"
	SmoothBilateral SmoothMethod = "bilateral"
)

// Label returns the display name used in captions.
func (m SmoothMethod) Label() string {
	switch m {
	case SmoothGaussian:
		return "Gaussian Blur"
	case SmoothMedian:
		return "Median Blur"
	case SmoothBilateral:
		return "Bilateral Filter"
	}
	return string(m)
}

// SharpenMethod selects the contrast-enhancement operator.
type SharpenMethod string

// Sharpening methods.
const (
	SharpenUnsharp   SharpenMethod = "unsharp"
	SharpenLaplacian SharpenMethod = "laplacian"
)

// Label returns the display name used in captions.
func (m SharpenMethod) Label() string {
	switch m {
	case SharpenUnsharp:
		return "Unsharp Masking"
	case SharpenLaplacian:
		return "Laplacian Kernel"
	}
	return string(m)
}

// ParseSmoothMethod accepts a method name or its display label, case-insensitively.
func ParseSmoothMethod(s string) (SmoothMethod, error) {
	for _, m := range []SmoothMethod{SmoothGaussian, SmoothMedian, SmoothBilateral} {
		if strings.EqualFold(s, string(m)) || strings.EqualFold(s, m.Label()) {
			return m, nil
		}
	}
	return "", errors.Wrapf(ErrInvalidConfig, "unknown smoothing method %q", s)
}

// ParseSharpenMethod accepts a method name or its display label, case-insensitively.
func ParseSharpenMethod(s string) (SharpenMethod, error) {
	for _, m := range []SharpenMethod{SharpenUnsharp, SharpenLaplacian} {
		if strings.EqualFold(s, string(m)) || strings.EqualFold(s, m.Label()) {
			return m, nil
		}
	}
	return "", errors.Wrapf(ErrInvalidConfig, "unknown sharpening method %q", s)
}

// Config is the parameter record for one pipeline run. It is passed by value
// and never modified by the pipeline.
type Config struct {
	Smooth       SmoothMethod `json:"smooth_method"`
	SmoothKernel int          `json:"smooth_kernel"`
	SmoothSigma  float64      `json:"smooth_sigma"`
	SigmaColor   int          `json:"bilateral_sigma_color"`
	SigmaSpace   int          `json:"bilateral_sigma_space"`

	Sharpen       SharpenMethod `json:"sharpen_method"`
	SharpenKernel int           `json:"sharpen_kernel"`
	SharpenSigma  float64       `json:"sharpen_sigma"`
	SharpenAmount float64       `json:"sharpen_amount"`

	SobelKernel int `json:"sobel_kernel"`
	CannyLow    int `json:"canny_threshold1"`
	CannyHigh   int `json:"canny_threshold2"`

	// MaxSide caps the longer side of the input before processing; 0 disables it.
	MaxSide int `json:"max_side"`
}

// DefaultConfig returns the parameters a fresh session starts with.
func DefaultConfig() Config {
	return Config{
		Smooth:        SmoothGaussian,
		SmoothKernel:  5,
		SmoothSigma:   1.0,
		SigmaColor:    75,
		SigmaSpace:    75,
		Sharpen:       SharpenUnsharp,
		SharpenKernel: 5,
		SharpenSigma:  1.0,
		SharpenAmount: 1.0,
		SobelKernel:   3,
		CannyLow:      100,
		CannyHigh:     200,
	}
}

// Parameter domains.
const (
	MinKernel    = 1
	MaxKernel    = 31
	MaxSigma     = 10.0
	MinBilateral = 1
	MaxBilateral = 200
	MaxAmount    = 3.0
	MaxThreshold = 255
	MinMaxSide   = 16
	MaxMaxSide   = 8192
)

// Validate checks every parameter against its domain. Kernel sizes are
// checked before odd normalisation, so even values inside the range pass.
func (c Config) Validate() error {
	if _, err := ParseSmoothMethod(string(c.Smooth)); err != nil {
		return err
	}
	if _, err := ParseSharpenMethod(string(c.Sharpen)); err != nil {
		return err
	}

	checks := []struct {
		name     string
		ok       bool
		value    interface{}
		expected string
	}{
		{"smooth_kernel", c.SmoothKernel >= MinKernel && c.SmoothKernel <= MaxKernel, c.SmoothKernel, "1..31"},
		{"smooth_sigma", c.SmoothSigma >= 0 && c.SmoothSigma <= MaxSigma, c.SmoothSigma, "0..10"},
		{"bilateral_sigma_color", c.SigmaColor >= MinBilateral && c.SigmaColor <= MaxBilateral, c.SigmaColor, "1..200"},
		{"bilateral_sigma_space", c.SigmaSpace >= MinBilateral && c.SigmaSpace <= MaxBilateral, c.SigmaSpace, "1..200"},
		{"sharpen_kernel", c.SharpenKernel >= MinKernel && c.SharpenKernel <= MaxKernel, c.SharpenKernel, "1..31"},
		{"sharpen_sigma", c.SharpenSigma >= 0 && c.SharpenSigma <= MaxSigma, c.SharpenSigma, "0..10"},
		{"sharpen_amount", c.SharpenAmount >= 0 && c.SharpenAmount <= MaxAmount, c.SharpenAmount, "0..3"},
		{"sobel_kernel", validSobelKernel(c.SobelKernel), c.SobelKernel, "1, 3, 5, 7"},
		{"canny_threshold1", c.CannyLow >= 0 && c.CannyLow <= MaxThreshold, c.CannyLow, "0..255"},
		{"canny_threshold2", c.CannyHigh >= 0 && c.CannyHigh <= MaxThreshold, c.CannyHigh, "0..255"},
		{"max_side", c.MaxSide == 0 || (c.MaxSide >= MinMaxSide && c.MaxSide <= MaxMaxSide), c.MaxSide, "0 or 16..8192"},
	}
	for _, chk := range checks {
		if !chk.ok {
			return errors.Wrapf(ErrInvalidConfig, "%s=%v outside %s", chk.name, chk.value, chk.expected)
		}
	}
	return nil
}

func validSobelKernel(k int) bool {
	switch k {
	case 1, 3, 5, 7:
		return true
	}
	return false
}

// NormalizeOdd coerces a kernel size to the nearest odd value >= 1:
// values below 1 become 1, even values are bumped up by one.
func NormalizeOdd(k int) int {
	if k < 1 {
		return 1
	}
	if k%2 == 0 {
		return k + 1
	}
	return k
}
