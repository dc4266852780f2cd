package pipeline

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/image-enhance-mcp/internal/imaging"
)

func runStep(t *testing.T) *Result {
	t.Helper()
	cfg := DefaultConfig()
	cfg.SmoothKernel = 1
	cfg.Sharpen = SharpenLaplacian
	res, err := newTestPipeline().Run(stepImage(8, 4), cfg)
	require.NoError(t, err)
	return res
}

func TestOutputs_Order(t *testing.T) {
	res := runStep(t)
	outs := res.Outputs()
	require.Len(t, outs, 6)

	var stages, files []string
	for _, o := range outs {
		stages = append(stages, string(o.Stage))
		files = append(files, o.FileName)
		assert.NotEmpty(t, o.Caption)
	}
	assert.Equal(t, []string{"original", "smoothed", "sharpened", "sobel", "prewitt", "canny"}, stages)
	assert.Equal(t, []string{
		"original.png", "smoothed.png", "sharpened.png",
		"edges_sobel.png", "edges_prewitt.png", "edges_canny.png",
	}, files)
}

func TestCaptions(t *testing.T) {
	res := runStep(t)
	assert.Equal(t, "Smoothed (Gaussian Blur, k=1, sigma=1)", res.Caption(StageSmoothed))
	assert.Equal(t, "Sharpened (Laplacian Kernel)", res.Caption(StageSharpened))
	assert.Equal(t, "Sobel edges (ksize=3)", res.Caption(StageSobel))
	assert.Equal(t, "Canny edges (t1=100, t2=200)", res.Caption(StageCanny))

	res.Config.Smooth = SmoothMedian
	res.Config.SmoothKernel = 4
	assert.Equal(t, "Smoothed (Median Blur, k=5)", res.Caption(StageSmoothed))
}

func TestParseStage(t *testing.T) {
	s, err := ParseStage(" Sobel ")
	require.NoError(t, err)
	assert.Equal(t, StageSobel, s)

	_, err = ParseStage("laplace")
	assert.ErrorIs(t, err, ErrUnknownStage)

	_, err = runStep(t).Output("nope")
	assert.ErrorIs(t, err, ErrUnknownStage)
}

func TestExport_RoundTrip(t *testing.T) {
	res := runStep(t)

	artifacts, err := res.Export(context.Background())
	require.NoError(t, err)
	require.Len(t, artifacts, 6)

	for i, o := range res.Outputs() {
		a := artifacts[i]
		assert.Equal(t, string(o.Stage), a.Name)
		assert.Equal(t, o.FileName, a.FileName)
		assert.Equal(t, imaging.PNGMimeType, a.MimeType)
		assert.Equal(t, 8, a.Width)
		assert.Equal(t, 4, a.Height)

		data, err := base64.StdEncoding.DecodeString(a.ImageBase64)
		require.NoError(t, err)
		assert.Equal(t, a.PNG, data)

		decoded, err := png.Decode(bytes.NewReader(data))
		require.NoError(t, err)
		assertSamePixels(t, o.Image, decoded, string(o.Stage))
	}
}

func assertSamePixels(t *testing.T, want, got image.Image, name string) {
	t.Helper()
	require.Equal(t, want.Bounds(), got.Bounds(), name)
	b := want.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			wr, wg, wb, _ := want.At(x, y).RGBA()
			gr, gg, gb, _ := got.At(x, y).RGBA()
			if wr>>8 != gr>>8 || wg>>8 != gg>>8 || wb>>8 != gb>>8 {
				assert.Failf(t, "pixel mismatch", "%s (%d,%d)", name, x, y)
				return
			}
		}
	}
}

func TestExport_SelectedStagesAndStats(t *testing.T) {
	res := runStep(t)

	artifacts, err := res.Export(context.Background(), StageCanny, StageOriginal)
	require.NoError(t, err)
	require.Len(t, artifacts, 2)

	assert.Equal(t, "canny", artifacts[0].Name)
	assert.Equal(t, 12.5, artifacts[0].Stats.NonZeroPercent, "one edge column of eight")
	assert.Greater(t, artifacts[0].Stats.ColorDrift, 0.0)

	assert.Equal(t, "original", artifacts[1].Name)
	assert.Equal(t, 0.0, artifacts[1].Stats.ColorDrift)
}

func TestExport_Errors(t *testing.T) {
	res := runStep(t)

	_, err := res.Export(context.Background(), "bogus")
	assert.ErrorIs(t, err, ErrUnknownStage)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = res.Export(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriteDir(t *testing.T) {
	res := runStep(t)
	artifacts, err := res.Export(context.Background(), StageGray, StageSobel)
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "out")
	paths, err := WriteDir(dir, "photo", artifacts)
	require.NoError(t, err)
	require.Len(t, paths, 2)

	assert.Equal(t, filepath.Join(dir, "photo_gray.png"), paths[0])
	assert.Equal(t, filepath.Join(dir, "photo_edges_sobel.png"), paths[1])

	for i, p := range paths {
		data, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.Equal(t, artifacts[i].PNG, data)
	}

	paths, err = WriteDir(dir, "", artifacts[:1])
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(paths[0], string(filepath.Separator)+"gray.png"))
}
