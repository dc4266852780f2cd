// Package imaging provides decoding, encoding and summary operations for the
// enhancement server.
//
// This package is the boundary between raw bytes and rasters. Everything that
// leaves it is either a canonical raster (*image.NRGBA, opaque, origin at (0,0))
// or a lossless PNG stream. The numeric filters themselves live in package filter.
//
// # Canonical Rasters
//
// Uploaded images come in many colour models (paletted, YCbCr, 16-bit, with or
// without alpha). Decode and ToNRGBA normalise them to 8-bit RGB in an NRGBA
// buffer with alpha forced to 255, so every later stage can index the pixel
// buffer directly:
//   - Pix[i+0]: red
//   - Pix[i+1]: green
//   - Pix[i+2]: blue
//   - Pix[i+3]: always 255
//
// # Supported Formats
//
// Decoding uses the formats registered with the standard image package: PNG,
// JPEG and GIF from the standard library, and BMP, TIFF and WebP from
// golang.org/x/image. Output is always PNG.
//
// # Thread Safety
//
// All functions are stateless and may be called concurrently. Rasters returned
// by this package are freshly allocated and owned by the caller.
//
// # Error Handling
//
// Undecodable input wraps ErrNoImage, which callers surface as "no valid
// image". File system errors are wrapped with context and returned as-is.
package imaging
