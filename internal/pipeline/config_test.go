package pipeline

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeOdd(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-3, 1},
		{0, 1},
		{1, 1},
		{2, 3},
		{4, 5},
		{5, 5},
		{30, 31},
		{31, 31},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeOdd(tt.in), "NormalizeOdd(%d)", tt.in)
	}
}

func TestNormalizeOdd_Properties(t *testing.T) {
	for k := -10; k <= 64; k++ {
		n := NormalizeOdd(k)
		assert.Equal(t, 1, n%2, "NormalizeOdd(%d) is odd", k)
		assert.GreaterOrEqual(t, n, 1)
		assert.Equal(t, n, NormalizeOdd(n), "idempotent for %d", k)
		if k >= 1 {
			assert.LessOrEqual(t, n-k, 1, "moves at most one for %d", k)
		}
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, SmoothGaussian, cfg.Smooth)
	assert.Equal(t, SharpenUnsharp, cfg.Sharpen)
	assert.Equal(t, 3, cfg.SobelKernel)
	assert.Equal(t, 100, cfg.CannyLow)
	assert.Equal(t, 200, cfg.CannyHigh)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"even kernel in range", func(c *Config) { c.SmoothKernel = 4 }, true},
		{"kernel 31", func(c *Config) { c.SharpenKernel = 31 }, true},
		{"kernel 0", func(c *Config) { c.SmoothKernel = 0 }, false},
		{"kernel 33", func(c *Config) { c.SharpenKernel = 33 }, false},
		{"sigma 0", func(c *Config) { c.SmoothSigma = 0 }, true},
		{"negative sigma", func(c *Config) { c.SmoothSigma = -0.1 }, false},
		{"sigma above 10", func(c *Config) { c.SharpenSigma = 10.5 }, false},
		{"bilateral sigma 0", func(c *Config) { c.SigmaColor = 0 }, false},
		{"bilateral sigma 201", func(c *Config) { c.SigmaSpace = 201 }, false},
		{"amount 3", func(c *Config) { c.SharpenAmount = 3 }, true},
		{"amount above 3", func(c *Config) { c.SharpenAmount = 3.1 }, false},
		{"sobel 1", func(c *Config) { c.SobelKernel = 1 }, true},
		{"sobel 7", func(c *Config) { c.SobelKernel = 7 }, true},
		{"sobel 2", func(c *Config) { c.SobelKernel = 2 }, false},
		{"sobel 9", func(c *Config) { c.SobelKernel = 9 }, false},
		{"threshold 256", func(c *Config) { c.CannyHigh = 256 }, false},
		{"negative threshold", func(c *Config) { c.CannyLow = -1 }, false},
		{"misordered thresholds", func(c *Config) { c.CannyLow, c.CannyHigh = 200, 100 }, true},
		{"max side 8", func(c *Config) { c.MaxSide = 8 }, false},
		{"max side 1024", func(c *Config) { c.MaxSide = 1024 }, true},
		{"unknown smooth", func(c *Config) { c.Smooth = "box" }, false},
		{"unknown sharpen", func(c *Config) { c.Sharpen = "" }, false},
		{"smooth label", func(c *Config) { c.Smooth = "Bilateral Filter" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			}
		})
	}
}

func TestParseMethods(t *testing.T) {
	m, err := ParseSmoothMethod("GAUSSIAN")
	require.NoError(t, err)
	assert.Equal(t, SmoothGaussian, m)

	m, err = ParseSmoothMethod("median blur")
	require.NoError(t, err)
	assert.Equal(t, SmoothMedian, m)

	_, err = ParseSmoothMethod("mean")
	assert.ErrorIs(t, err, ErrInvalidConfig)

	s, err := ParseSharpenMethod("Unsharp Masking")
	require.NoError(t, err)
	assert.Equal(t, SharpenUnsharp, s)

	_, err = ParseSharpenMethod("emboss")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestConfig_JSONOverDefaults(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, json.Unmarshal([]byte(`{"smooth_method":"median","sharpen_amount":0,"canny_threshold1":5}`), &cfg))

	assert.Equal(t, SmoothMedian, cfg.Smooth)
	assert.Equal(t, 0.0, cfg.SharpenAmount)
	assert.Equal(t, 5, cfg.CannyLow)
	assert.Equal(t, 200, cfg.CannyHigh, "unspecified fields keep their defaults")
}

func TestDomains(t *testing.T) {
	domains := Domains()
	def := DefaultConfig()

	names := make(map[string]Domain)
	for _, d := range domains {
		names[d.Name] = d
	}
	assert.Len(t, names, len(domains), "names are unique")

	assert.Equal(t, []int{1, 3, 5, 7}, names["sobel_kernel"].Values)
	assert.Equal(t, def.SobelKernel, names["sobel_kernel"].Default)
	assert.Equal(t, []string{"gaussian", "median", "bilateral"}, names["smooth_method"].Enum)
	require.NotNil(t, names["smooth_kernel"].Maximum)
	assert.Equal(t, float64(MaxKernel), *names["smooth_kernel"].Maximum)
	require.NotNil(t, names["canny_threshold2"].Minimum)
	assert.Equal(t, 0.0, *names["canny_threshold2"].Minimum)
}
