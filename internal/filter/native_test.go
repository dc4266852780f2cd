package filter

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flatNRGBA(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// halfStep is dark on columns < w/2 and bright from w/2 on.
func halfStep(w, h int, dark, bright uint8) *image.NRGBA {
	img := flatNRGBA(w, h, color.NRGBA{R: dark, G: dark, B: dark, A: 255})
	for y := 0; y < h; y++ {
		for x := w / 2; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: bright, G: bright, B: bright, A: 255})
		}
	}
	return img
}

func grayStep(w, h int) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := w / 2; x < w; x++ {
			g.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	return g
}

func TestNative_GaussianBlurFlat(t *testing.T) {
	n := NewNative()
	src := flatNRGBA(5, 5, color.NRGBA{R: 128, G: 64, B: 32, A: 255})

	for _, k := range []int{1, 3, 5, 7} {
		out, err := n.GaussianBlur(src, k, 0)
		require.NoError(t, err)
		require.Equal(t, src.Bounds(), out.Bounds())
		for i := 0; i < len(out.Pix); i += 4 {
			assert.Equal(t, uint8(128), out.Pix[i], "k=%d", k)
			assert.Equal(t, uint8(64), out.Pix[i+1], "k=%d", k)
			assert.Equal(t, uint8(32), out.Pix[i+2], "k=%d", k)
			assert.Equal(t, uint8(255), out.Pix[i+3])
		}

		out, err = n.GaussianBlur(src, k, 1)
		require.NoError(t, err)
		assert.Equal(t, uint8(128), out.Pix[0], "k=%d sigma=1", k)
	}
}

func TestNative_GaussianBlurKeepsRamp(t *testing.T) {
	const w, step = 16, 13
	src := image.NewNRGBA(image.Rect(0, 0, w, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < w; x++ {
			v := uint8(x * step)
			src.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}

	tests := []struct {
		ksize int
		sigma float64
	}{
		{3, 0.7},
		{3, 0},
		{5, 1},
		{7, 2},
	}
	for _, tt := range tests {
		out, err := NewNative().GaussianBlur(src, tt.ksize, tt.sigma)
		require.NoError(t, err)

		r := tt.ksize / 2
		for x := r; x < w-r; x++ {
			assert.Equal(t, uint8(x*step), out.NRGBAAt(x, 1).R, "k=%d sigma=%g x=%d", tt.ksize, tt.sigma, x)
		}
	}
}

func TestNative_GaussianBlurSpreadsImpulse(t *testing.T) {
	src := flatNRGBA(7, 7, color.NRGBA{A: 255})
	src.SetNRGBA(3, 3, color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	out, err := NewNative().GaussianBlur(src, 5, 1)
	require.NoError(t, err)

	centre := out.NRGBAAt(3, 3).R
	assert.Less(t, centre, uint8(255))
	assert.Greater(t, out.NRGBAAt(2, 3).R, uint8(0))
	assert.Greater(t, centre, out.NRGBAAt(2, 3).R)
	assert.Equal(t, out.NRGBAAt(2, 3).R, out.NRGBAAt(4, 3).R, "symmetric")
	assert.Equal(t, uint8(0), out.NRGBAAt(0, 0).R, "outside the kernel footprint")
}

func TestNative_EvenKernelRejected(t *testing.T) {
	n := NewNative()
	src := flatNRGBA(3, 3, color.NRGBA{A: 255})

	_, err := n.GaussianBlur(src, 4, 1)
	assert.Error(t, err)
	_, err = n.MedianBlur(src, 2)
	assert.Error(t, err)
	_, err = n.BilateralFilter(src, 0, 75, 75)
	assert.Error(t, err)
	_, err = n.Filter2D(src, NewKernel([][]float64{{1, 1}}))
	assert.Error(t, err)
}

func TestNative_MedianRemovesSaltNoise(t *testing.T) {
	src := flatNRGBA(5, 5, color.NRGBA{R: 40, G: 80, B: 120, A: 255})
	src.SetNRGBA(2, 2, color.NRGBA{R: 255, G: 0, B: 255, A: 255})

	out, err := NewNative().MedianBlur(src, 3)
	require.NoError(t, err)

	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			assert.Equal(t, color.NRGBA{R: 40, G: 80, B: 120, A: 255}, out.NRGBAAt(x, y), "(%d,%d)", x, y)
		}
	}
}

func TestNative_BilateralPreservesEdge(t *testing.T) {
	src := halfStep(10, 6, 20, 230)

	out, err := NewNative().BilateralFilter(src, 5, 20, 75)
	require.NoError(t, err)

	assert.Equal(t, uint8(20), out.NRGBAAt(4, 3).R)
	assert.Equal(t, uint8(230), out.NRGBAAt(5, 3).R)

	flat := flatNRGBA(4, 4, color.NRGBA{R: 128, G: 128, B: 128, A: 255})
	out, err = NewNative().BilateralFilter(flat, 9, 75, 75)
	require.NoError(t, err)
	assert.Equal(t, flat.Pix, out.Pix)
}

func TestNative_Filter2DLaplacian(t *testing.T) {
	out, err := NewNative().Filter2D(halfStep(8, 3, 0, 255), LaplacianSharpen())
	require.NoError(t, err)

	want := []uint8{0, 0, 0, 0, 255, 255, 255, 255}
	for x, v := range want {
		assert.Equal(t, v, out.NRGBAAt(x, 1).R, "column %d", x)
	}

	flat := flatNRGBA(4, 4, color.NRGBA{R: 90, G: 90, B: 90, A: 255})
	out, err = NewNative().Filter2D(flat, LaplacianSharpen())
	require.NoError(t, err)
	assert.Equal(t, flat.Pix, out.Pix)
}

func TestNative_Grayscale(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 3, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	src.SetNRGBA(1, 0, color.NRGBA{G: 255, A: 255})
	src.SetNRGBA(2, 0, color.NRGBA{R: 200, G: 200, B: 200, A: 255})

	g, err := NewNative().Grayscale(src)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 3, 1), g.Bounds())
	assert.InDelta(t, 76, int(g.GrayAt(0, 0).Y), 1)
	assert.InDelta(t, 150, int(g.GrayAt(1, 0).Y), 1)
	assert.Equal(t, uint8(200), g.GrayAt(2, 0).Y)
}

func TestNative_SobelAbs(t *testing.T) {
	n := NewNative()
	src := grayStep(8, 4)

	gx, err := n.SobelAbs(src, 1, 0, 3)
	require.NoError(t, err)
	gy, err := n.SobelAbs(src, 0, 1, 3)
	require.NoError(t, err)

	for x := 0; x < 8; x++ {
		want := uint8(0)
		if x == 3 || x == 4 {
			want = 255
		}
		assert.Equal(t, want, gx.GrayAt(x, 1).Y, "gx column %d", x)
		assert.Equal(t, uint8(0), gy.GrayAt(x, 1).Y, "gy column %d", x)
	}

	// A falling edge has a negative derivative; the magnitude must match.
	falling := image.NewGray(image.Rect(0, 0, 8, 4))
	for i := range falling.Pix {
		falling.Pix[i] = 255 - src.Pix[i]
	}
	gxf, err := n.SobelAbs(falling, 1, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, gx.Pix, gxf.Pix)

	_, err = n.SobelAbs(src, 1, 0, 4)
	assert.Error(t, err)
}

func TestNative_SobelAbsSmallGradient(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 5, 1))
	for x := 0; x < 5; x++ {
		g.SetGray(x, 0, color.Gray{Y: uint8(10 * x)})
	}

	out, err := NewNative().SobelAbs(g, 1, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, uint8(20), out.GrayAt(2, 0).Y)
	assert.Equal(t, uint8(10), out.GrayAt(0, 0).Y, "replicated border")
}

func TestNative_Canny(t *testing.T) {
	n := NewNative()
	src := grayStep(8, 5)

	out, err := n.Canny(src, 100, 200)
	require.NoError(t, err)
	for y := 0; y < 5; y++ {
		for x := 0; x < 8; x++ {
			want := uint8(0)
			if x == 3 {
				want = 255
			}
			assert.Equal(t, want, out.GrayAt(x, y).Y, "(%d,%d)", x, y)
		}
	}

	out, err = n.Canny(src, 100, 2000)
	require.NoError(t, err)
	for _, v := range out.Pix {
		assert.Equal(t, uint8(0), v, "no seed above the upper threshold")
	}
}

func TestNative_CannyHysteresis(t *testing.T) {
	// A strong edge on the top rows continues as a weak edge below.
	g := image.NewGray(image.Rect(0, 0, 8, 6))
	for y := 0; y < 6; y++ {
		v := uint8(255)
		if y >= 3 {
			v = 40
		}
		for x := 4; x < 8; x++ {
			g.SetGray(x, y, color.Gray{Y: v})
		}
	}

	linked, err := NewNative().Canny(g, 100, 500)
	require.NoError(t, err)
	assert.Equal(t, uint8(255), linked.GrayAt(3, 5).Y, "weak pixel connected to a strong edge")

	weakOnly := image.NewGray(image.Rect(0, 0, 8, 6))
	copy(weakOnly.Pix, g.Pix)
	for y := 0; y < 3; y++ {
		for x := 4; x < 8; x++ {
			weakOnly.SetGray(x, y, color.Gray{Y: 40})
		}
	}
	isolated, err := NewNative().Canny(weakOnly, 100, 500)
	require.NoError(t, err)
	for _, v := range isolated.Pix {
		assert.Equal(t, uint8(0), v)
	}
}

func TestLookup(t *testing.T) {
	b, err := Lookup("")
	require.NoError(t, err)
	assert.Equal(t, NativeName, b.Name())

	b, err = Lookup(NativeName)
	require.NoError(t, err)
	assert.Equal(t, NativeName, b.Name())

	_, err = Lookup("cuda")
	assert.ErrorIs(t, err, ErrUnknownBackend)

	assert.Contains(t, Available(), NativeName)
}
