// Package pipeline implements the image enhancement pipeline.
//
// A run takes one colour image and a Config and produces, in order:
//
//	original -> smoothed -> sharpened -> gray -> {sobel, prewitt, canny}
//
// Smoothing is Gaussian, median or bilateral; sharpening is unsharp masking or
// a fixed Laplacian kernel. The gray raster feeds three edge maps: a weighted
// Sobel magnitude, a normalised Prewitt magnitude and a binary Canny map.
//
// Pixel work is delegated to a filter.Backend. Export encodes the rasters as
// PNG concurrently, and Plan exposes the stage graph for inspection.
package pipeline
