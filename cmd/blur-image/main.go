// Command blur-image applies a recursive Gaussian blur to an image file.
//
// Usage:
//
//	blur-image input.jpg output.png
//	blur-image -sigma 3 input.png output.png
//	blur-image -sigma 1.5 -downscale 2 input.webp output.png   # also writes output_down2.png
//	blur-image -float64 -scalar input.tiff output.tiff          # serial float64 reference path
//	blur-image -exact -sigma 2 input.png output.png             # finite-support kernel
//
// The downscaled pass reuses the same blur instance through Resize.
package main

import (
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"runtime/pprof"
	"time"

	blur "github.com/tphakala/go-iir-blur"
)

const (
	// CLI defaults
	minRequiredArgs  = 2
	defaultDownscale = 1

	// RGBA64 pixel layout
	bytesPerRGBA64Pixel = 8
	alphaOffset         = 6
	bitsPerByte         = 8
	maxChannelValue     = 65535.0
	roundingOffset      = 0.5

	// I/O buffer sizes
	writerBufferSize = 256 * 1024 // 256KB write buffer
)

// options holds the parsed command line.
type options struct {
	inputPath  string
	outputPath string
	sigma      float64
	downscale  int
	useFloat64 bool
	scalar     bool
	exact      bool
	verbose    bool
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	sigma := flag.Float64("sigma", blur.DefaultSigma, "Gaussian standard deviation in pixels")
	downscale := flag.Int("downscale", defaultDownscale, "Also blur a copy downscaled by this integer factor")
	useFloat64 := flag.Bool("float64", false, "Use float64 planes (default float32)")
	scalar := flag.Bool("scalar", false, "Use the serial reference recurrence")
	exact := flag.Bool("exact", false, "Derive from the integer radius (finite support, sigma above about 0.532)")
	verbose := flag.Bool("v", false, "Verbose output")
	cpuprofile := flag.String("cpuprofile", "", "Write CPU profile to file (for PGO)")
	flag.Parse()

	args := flag.Args()
	if len(args) < minRequiredArgs {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] input output.png\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nInput formats: PNG, JPEG, GIF, BMP, TIFF, WebP\n")
		fmt.Fprintf(os.Stderr, "Output formats: PNG, TIFF, BMP (by extension)\n")
		return fmt.Errorf("insufficient arguments")
	}

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	opts := options{
		inputPath:  args[0],
		outputPath: args[1],
		sigma:      *sigma,
		downscale:  *downscale,
		useFloat64: *useFloat64,
		scalar:     *scalar,
		exact:      *exact,
		verbose:    *verbose,
	}

	if opts.useFloat64 {
		return process[float64](opts)
	}
	return process[float32](opts)
}

func process[F blur.Float](opts options) error {
	img, format, err := decodeImage(opts.inputPath)
	if err != nil {
		return err
	}

	planes, width, height := imageToPlanes[F](img)
	if opts.verbose {
		log.Printf("Input: %s (%s, %dx%d)", opts.inputPath, format, width, height)
	}

	b, err := blur.New[F](&blur.Config{
		Width:  width,
		Height: height,
		Sigma:        opts.sigma,
		Scalar:       opts.scalar,
		ExactSupport: opts.exact,
	})
	if err != nil {
		return fmt.Errorf("failed to create blur: %w", err)
	}

	if opts.verbose {
		info := b.GetInfo()
		log.Printf("Algorithm: %s", info.Algorithm)
		log.Printf("Sigma: %.3f (radius %d, exact support: %v)", info.Sigma, info.Radius, info.ExactSupport)
		log.Printf("Precision: %s, vectorized: %v, SIMD: %s", info.Precision, info.Vectorized, info.SIMDType)
		log.Printf("Memory: %.1f KB", float64(info.MemoryUsage)/1024)
	}

	if err := blurAndWrite(b, planes, opts.outputPath, opts.verbose); err != nil {
		return err
	}

	if opts.downscale <= defaultDownscale {
		return nil
	}

	small, err := downscale(img, opts.downscale)
	if err != nil {
		return err
	}
	smallPlanes, smallWidth, smallHeight := imageToPlanes[F](small)

	if err := b.Resize(smallWidth, smallHeight); err != nil {
		return fmt.Errorf("failed to resize blur: %w", err)
	}
	if opts.verbose {
		log.Printf("Downscaled by %d to %dx%d", opts.downscale, smallWidth, smallHeight)
	}

	return blurAndWrite(b, smallPlanes, withSuffix(opts.outputPath, fmt.Sprintf("_down%d", opts.downscale)), opts.verbose)
}

// blurAndWrite blurs planes in place with b and writes the result.
func blurAndWrite[F blur.Float](b *blur.Blur[F], planes [blur.Channels][]F, path string, verbose bool) error {
	start := time.Now()
	if err := b.BlurInto(planes, planes); err != nil {
		return fmt.Errorf("blur failed: %w", err)
	}
	elapsed := time.Since(start)

	var out image.Image = planesToImage(planes, b.Width(), b.Height())
	if err := writeImage(path, out); err != nil {
		return err
	}

	if verbose {
		mpix := float64(b.Width()*b.Height()) / 1e6
		log.Printf("Blurred %dx%d in %v (%.1f Mpix/s)", b.Width(), b.Height(), elapsed, mpix/elapsed.Seconds())
		log.Printf("Output: %s", path)
	}
	return nil
}
