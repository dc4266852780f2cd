package filter

import (
	"image"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// ErrUnknownBackend is returned by Lookup for names that are not registered.
var ErrUnknownBackend = errors.New("unknown filter backend")

// Backend is the set of image primitives the enhancement pipeline is built on:
// blur variants, generic 2D correlation, colour conversion, the derivative
// operator and the hysteresis edge detector.
//
// Implementations must not modify their inputs and must return rasters with
// the same dimensions as the input, with origin at (0,0). Kernel sizes are
// expected to be odd and positive; callers normalise them first.
type Backend interface {
	// Name identifies the implementation ("native", "opencv").
	Name() string

	// GaussianBlur convolves src with a normalised ksize x ksize Gaussian.
	// sigma <= 0 derives the sigma from ksize.
	GaussianBlur(src *image.NRGBA, ksize int, sigma float64) (*image.NRGBA, error)

	// MedianBlur replaces each channel value with the median over a ksize x ksize square.
	MedianBlur(src *image.NRGBA, ksize int) (*image.NRGBA, error)

	// BilateralFilter is edge-preserving smoothing over a neighbourhood of the
	// given diameter, weighting by spatial distance (sigmaSpace) and colour
	// difference (sigmaColor).
	BilateralFilter(src *image.NRGBA, diameter int, sigmaColor, sigmaSpace float64) (*image.NRGBA, error)

	// Filter2D correlates src with k, saturating each channel to [0,255].
	Filter2D(src *image.NRGBA, k *Kernel) (*image.NRGBA, error)

	// Grayscale converts src to BT.601 luma.
	Grayscale(src *image.NRGBA) (*image.Gray, error)

	// SobelAbs computes the absolute first derivative of src in x (dx=1, dy=0)
	// or y (dx=0, dy=1) with a Sobel aperture of ksize (1, 3, 5 or 7),
	// saturated to 8 bits.
	SobelAbs(src *image.Gray, dx, dy, ksize int) (*image.Gray, error)

	// Canny returns a 0/255 edge map using threshold1 as the lower and
	// threshold2 as the upper hysteresis bound.
	Canny(src *image.Gray, threshold1, threshold2 float64) (*image.Gray, error)
}

var (
	registryMu sync.RWMutex
	registry   = map[string]func() Backend{
		NativeName: func() Backend { return NewNative() },
	}
)

// register makes a backend constructor available to Lookup.
func register(name string, fn func() Backend) {
	registryMu.Lock()
	registry[name] = fn
	registryMu.Unlock()
}

// Lookup returns a new instance of the named backend. An empty name selects
// the native backend.
func Lookup(name string) (Backend, error) {
	if name == "" {
		name = NativeName
	}

	registryMu.RLock()
	fn, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, errors.Wrapf(ErrUnknownBackend, "%q (available: %v)", name, Available())
	}
	return fn(), nil
}

// Available lists the registered backend names in sorted order.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
