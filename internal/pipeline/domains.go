package pipeline

// Domain describes one Config parameter for clients that render their own
// controls (sliders, dropdowns) or build input schemas.
type Domain struct {
	Name        string      `json:"name"`
	Type        string      `json:"type"`
	Description string      `json:"description"`
	Enum        []string    `json:"enum,omitempty"`
	Values      []int       `json:"values,omitempty"`
	Minimum     *float64    `json:"minimum,omitempty"`
	Maximum     *float64    `json:"maximum,omitempty"`
	Default     interface{} `json:"default"`
}

func bounds(min, max float64) (*float64, *float64) {
	return &min, &max
}

// Domains lists every Config parameter with its range and default, in the
// order the stages consume them.
func Domains() []Domain {
	return DomainsFor(DefaultConfig())
}

// DomainsFor is Domains with the defaults taken from def.
func DomainsFor(def Config) []Domain {
	kMin, kMax := bounds(MinKernel, MaxKernel)
	sMin, sMax := bounds(0, MaxSigma)
	bMin, bMax := bounds(MinBilateral, MaxBilateral)
	aMin, aMax := bounds(0, MaxAmount)
	tMin, tMax := bounds(0, MaxThreshold)
	mMin, mMax := bounds(0, MaxMaxSide)

	return []Domain{
		{
			Name:        "smooth_method",
			Type:        "string",
			Description: "Denoising / smoothing method",
			Enum:        []string{string(SmoothGaussian), string(SmoothMedian), string(SmoothBilateral)},
			Default:     string(def.Smooth),
		},
		{
			Name:        "smooth_kernel",
			Type:        "integer",
			Description: "Smoothing kernel size (even values are bumped to the next odd value); bilateral diameter",
			Minimum:     kMin, Maximum: kMax,
			Default: def.SmoothKernel,
		},
		{
			Name:        "smooth_sigma",
			Type:        "number",
			Description: "Gaussian sigma (0 derives it from the kernel size)",
			Minimum:     sMin, Maximum: sMax,
			Default: def.SmoothSigma,
		},
		{
			Name:        "bilateral_sigma_color",
			Type:        "integer",
			Description: "Bilateral filter sigma in colour space",
			Minimum:     bMin, Maximum: bMax,
			Default: def.SigmaColor,
		},
		{
			Name:        "bilateral_sigma_space",
			Type:        "integer",
			Description: "Bilateral filter sigma in coordinate space",
			Minimum:     bMin, Maximum: bMax,
			Default: def.SigmaSpace,
		},
		{
			Name:        "sharpen_method",
			Type:        "string",
			Description: "Sharpening method",
			Enum:        []string{string(SharpenUnsharp), string(SharpenLaplacian)},
			Default:     string(def.Sharpen),
		},
		{
			Name:        "sharpen_kernel",
			Type:        "integer",
			Description: "Unsharp: Gaussian kernel size (even values are bumped to the next odd value)",
			Minimum:     kMin, Maximum: kMax,
			Default: def.SharpenKernel,
		},
		{
			Name:        "sharpen_sigma",
			Type:        "number",
			Description: "Unsharp: Gaussian sigma",
			Minimum:     sMin, Maximum: sMax,
			Default: def.SharpenSigma,
		},
		{
			Name:        "sharpen_amount",
			Type:        "number",
			Description: "Unsharp: amount (0 leaves the image unchanged)",
			Minimum:     aMin, Maximum: aMax,
			Default: def.SharpenAmount,
		},
		{
			Name:        "sobel_kernel",
			Type:        "integer",
			Description: "Sobel kernel size",
			Values:      []int{1, 3, 5, 7},
			Default:     def.SobelKernel,
		},
		{
			Name:        "canny_threshold1",
			Type:        "integer",
			Description: "Canny lower hysteresis threshold",
			Minimum:     tMin, Maximum: tMax,
			Default: def.CannyLow,
		},
		{
			Name:        "canny_threshold2",
			Type:        "integer",
			Description: "Canny upper hysteresis threshold",
			Minimum:     tMin, Maximum: tMax,
			Default: def.CannyHigh,
		},
		{
			Name:        "max_side",
			Type:        "integer",
			Description: "Downscale so the longer side is at most this many pixels (0 = off, otherwise 16..8192)",
			Minimum:     mMin, Maximum: mMax,
			Default: def.MaxSide,
		},
	}
}
