package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// ErrNoImage is returned when an upload cannot be decoded into a raster.
var ErrNoImage = errors.New("no valid image")

// Decode turns an uploaded byte buffer into a canonical colour raster.
//
// Parameters:
//   - data: The raw file contents. Any registered format is accepted: PNG, JPEG,
//     GIF, BMP, TIFF and WebP.
//
// Returns:
//   - *image.NRGBA: An opaque RGB raster with its origin at (0,0). Alpha is
//     forced to 255; colour values of transparent pixels are kept as stored.
//   - string: The format name reported by the decoder ("png", "jpeg", ...).
//   - error: Wraps ErrNoImage if the buffer is empty or cannot be decoded.
//
// JPEG EXIF orientation is applied so the raster matches what a viewer shows.
func Decode(data []byte) (*image.NRGBA, string, error) {
	if len(data) == 0 {
		return nil, "", fmt.Errorf("%w: empty upload", ErrNoImage)
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrNoImage, err)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrNoImage, err)
	}

	return ToNRGBA(img), format, nil
}

// DecodeFile reads and decodes the image at path.
//
// Errors opening the file are returned as-is (wrapped); decode failures wrap
// ErrNoImage exactly as Decode does.
func DecodeFile(path string) (*image.NRGBA, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image: %w", err)
	}
	return Decode(data)
}

// ToNRGBA returns an opaque copy of img with bounds starting at (0,0).
//
// The copy never aliases the input, so callers may treat the result as their
// own raster.
func ToNRGBA(img image.Image) *image.NRGBA {
	dst := imaging.Clone(img)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return dst
}

// ImageInfo contains metadata about an image file.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the decoder name: "png", "jpeg", "gif", "bmp", "tiff" or "webp".
	// Detection is based on file contents, not the extension.
	Format string `json:"format"`

	// ColorDepth indicates the bit depth per channel: "8-bit" or "16-bit".
	ColorDepth string `json:"color_depth"`

	// HasAlpha indicates whether the stored colour model carries an alpha channel.
	// The enhancement pipeline discards alpha either way.
	HasAlpha bool `json:"has_alpha"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// Inspect reads only the image header at path and reports its metadata.
//
// Parameters:
//   - path: Path to the image file.
//
// Returns:
//   - *ImageInfo: Metadata about the image.
//   - error: Non-nil if the file cannot be opened or stat'd, or wraps ErrNoImage
//     if the header is not a recognised format.
//
// # Color Depth Detection
//
// Color depth is determined by the decoder's colour model:
//   - RGBA64, NRGBA64, Gray16 -> "16-bit"
//   - All other models -> "8-bit"
func Inspect(path string) (*ImageInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoImage, err)
	}

	hasAlpha := false
	colorDepth := "8-bit"
	switch cfg.ColorModel {
	case color.RGBAModel, color.NRGBAModel:
		hasAlpha = true
	case color.RGBA64Model, color.NRGBA64Model:
		hasAlpha = true
		colorDepth = "16-bit"
	case color.Gray16Model:
		colorDepth = "16-bit"
	}

	return &ImageInfo{
		Width:         cfg.Width,
		Height:        cfg.Height,
		Format:        format,
		ColorDepth:    colorDepth,
		HasAlpha:      hasAlpha,
		FileSizeBytes: stat.Size(),
	}, nil
}
