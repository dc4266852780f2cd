package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// PNGMimeType is the MIME type of every exported raster.
const PNGMimeType = "image/png"

// EncodedImage is a raster serialised for display or download.
type EncodedImage struct {
	// Name identifies the raster within a result set (e.g. "smoothed").
	Name string `json:"name"`

	// Caption is a human-readable description of how the raster was produced.
	Caption string `json:"caption,omitempty"`

	// FileName is the suggested download name (e.g. "edges_sobel.png").
	FileName string `json:"file_name"`

	// Width of the image in pixels.
	Width int `json:"width"`

	// Height of the image in pixels.
	Height int `json:"height"`

	// ImageBase64 is the PNG stream encoded as standard base64.
	ImageBase64 string `json:"image_base64"`

	// MimeType is always "image/png".
	MimeType string `json:"mime_type"`
}

// EncodePNG serialises img as a lossless PNG stream.
//
// Gray rasters stay single-channel; opaque colour rasters are written as RGB.
// Decoding the stream with Decode reproduces the pixels exactly.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// NewEncodedImage wraps an already-encoded PNG stream.
func NewEncodedImage(name, caption, fileName string, bounds image.Rectangle, data []byte) *EncodedImage {
	return &EncodedImage{
		Name:        name,
		Caption:     caption,
		FileName:    fileName,
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(data),
		MimeType:    PNGMimeType,
	}
}
