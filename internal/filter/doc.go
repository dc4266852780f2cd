// Package filter provides the image primitives behind the enhancement pipeline.
//
// Backend is the capability set the pipeline depends on: Gaussian, median and
// bilateral blur, generic 2D correlation, BT.601 grayscale conversion, the
// Sobel derivative family and a hysteresis (Canny) edge detector.
//
// Two implementations exist:
//   - Native: pure Go on top of bild (convolution, median, row parallelism)
//     and imaging (cloning, grayscale). Always available.
//   - OpenCV: gocv bindings, compiled only with the "opencv" build tag.
//
// Select one by name with Lookup; Available lists what the binary was built with.
package filter
