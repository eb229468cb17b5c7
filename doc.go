// Package blur provides a fast recursive Gaussian blur for planar
// floating-point images in pure Go.
//
// The Gaussian kernel is approximated by the sum of three second-order IIR
// resonators (harmonics k = 1, 3, 5 of a truncated cosine series), applied
// separably along rows and then along columns. Cost per pixel is constant
// regardless of sigma, unlike a direct convolution whose cost grows with the
// kernel radius.
//
// # Features
//
//   - O(width·height) cost independent of the blur radius
//   - float32 and float64 planes through one generic type
//   - Four outputs per step in the row pass and cache-line column tiles in
//     the column pass
//   - Serial reference path for verification ([Config].Scalar)
//   - Zero heap allocations per call after construction
//   - Pure Go implementation with no CGO dependencies
//
// # Quick Start
//
// For a one-shot blur:
//
//	out, err := blur.BlurPlanes(planes, width, height, 1.5)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// For repeated blurs of the same size, construct once and reuse:
//
//	b, err := blur.NewFloat32(width, height, 1.5)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for img := range images {
//	    if err := b.BlurInto(img, img); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//
// # Borders
//
// Samples outside the image are treated as zero. Pixels closer to a border
// than [Blur.Radius] are attenuated accordingly. With [Config].ExactSupport,
// pixels further inside keep the DC level of a constant image; the default
// radius leaves a ripple of a few percent there, larger at small sigma. No
// other boundary mode is offered.
//
// # Radius
//
// The filter is derived from the fitted half-width R = 3.2795·σ + 0.2546.
// By default every coefficient uses R itself and only the sample offsets
// use the integer N = ⌊R⌋, so any positive sigma is accepted. The cosine
// terms then do not cancel past N and the response keeps a small
// oscillating tail. [Config].ExactSupport derives from N instead: the
// kernel becomes symmetric with support [−(N−1), N−1] and unit DC gain,
// at the cost of rejecting sigma below about 0.532.
//
// # Resizing
//
// [Blur.Resize] changes the plane size used by later calls without
// reallocating. The area may not exceed the one given at construction;
// larger sizes fail with [ErrCapacityExceeded] and need a new Blur.
//
// # Precision
//
// Coefficients are derived in float64 and converted once. The vectorized
// passes evaluate the same recurrence as the serial one in a different
// association order, so the two agree to floating-point tolerance rather
// than bit for bit.
//
// # Thread Safety
//
// A [Blur] owns its working plane and is not safe for concurrent use.
// Concurrent callers should use one instance each.
//
// # Attribution
//
// The filter design follows "Recursive Implementation of the Gaussian
// Filter Using Truncated Cosine Functions" by Dimitrios Charalampidis,
// IEEE Transactions on Signal Processing, 2016.
package blur
