//go:build opencv

package filter

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenCV_Registered(t *testing.T) {
	b, err := Lookup(OpenCVName)
	require.NoError(t, err)
	assert.Equal(t, OpenCVName, b.Name())
}

func TestOpenCV_SobelAbs(t *testing.T) {
	o := NewOpenCV()
	src := grayStep(8, 4)

	gx, err := o.SobelAbs(src, 1, 0, 3)
	require.NoError(t, err)
	require.Equal(t, src.Bounds(), gx.Bounds())

	falling := image.NewGray(image.Rect(0, 0, 8, 4))
	for i := range falling.Pix {
		falling.Pix[i] = 255 - src.Pix[i]
	}
	gxf, err := o.SobelAbs(falling, 1, 0, 3)
	require.NoError(t, err)

	for x := 1; x < 7; x++ {
		want := uint8(0)
		if x == 3 || x == 4 {
			want = 255
		}
		assert.Equal(t, want, gx.GrayAt(x, 1).Y, "rising column %d", x)
		assert.Equal(t, want, gxf.GrayAt(x, 1).Y, "falling column %d", x)
	}
}

func TestOpenCV_ErrorsPropagate(t *testing.T) {
	o := NewOpenCV()

	_, err := o.MedianBlur(halfStep(8, 8, 0, 255), 4)
	assert.Error(t, err, "even median aperture")

	_, err = o.SobelAbs(grayStep(8, 4), 1, 0, 4)
	assert.Error(t, err, "even Sobel aperture")
}

func TestOpenCV_Canny(t *testing.T) {
	out, err := NewOpenCV().Canny(grayStep(8, 5), 100, 200)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 8, 5), out.Bounds())

	edges := 0
	for _, v := range out.Pix {
		if v == 255 {
			edges++
		}
	}
	assert.Greater(t, edges, 0)
}
