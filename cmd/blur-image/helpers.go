package main

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp" // register WebP decoder

	blur "github.com/tphakala/go-iir-blur"
)

// Errors returned by the image helpers.
var (
	errUnsupportedFormat = errors.New("unsupported output format")
	errInvalidDownscale  = errors.New("invalid downscale factor")
)

// decodeImage reads any registered image format from path.
func decodeImage(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open input file: %w", err)
	}
	defer func() { _ = f.Close() }()

	img, format, err := image.Decode(bufio.NewReader(f))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return img, format, nil
}

// toRGBA64 copies img into a 16-bit RGBA image with origin (0, 0).
func toRGBA64(img image.Image) *image.RGBA64 {
	b := img.Bounds()
	dst := image.NewRGBA64(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// imageToPlanes converts img to three planes with values in [0, 1].
// Alpha is ignored.
func imageToPlanes[F blur.Float](img image.Image) (planes [blur.Channels][]F, width, height int) {
	rgba := toRGBA64(img)
	width, height = rgba.Rect.Dx(), rgba.Rect.Dy()

	for c := range planes {
		planes[c] = make([]F, width*height)
	}

	for y := range height {
		row := rgba.Pix[y*rgba.Stride:]
		for x := range width {
			px := row[x*bytesPerRGBA64Pixel:]
			i := y*width + x
			for c := range blur.Channels {
				v := uint16(px[2*c])<<bitsPerByte | uint16(px[2*c+1])
				planes[c][i] = F(v) / maxChannelValue
			}
		}
	}
	return planes, width, height
}

// planesToImage converts three [0, 1] planes back to an opaque image.
// Values outside the range are clamped.
func planesToImage[F blur.Float](planes [blur.Channels][]F, width, height int) *image.RGBA64 {
	img := image.NewRGBA64(image.Rect(0, 0, width, height))

	for y := range height {
		row := img.Pix[y*img.Stride:]
		for x := range width {
			px := row[x*bytesPerRGBA64Pixel:]
			i := y*width + x
			for c := range blur.Channels {
				v := quantize(float64(planes[c][i]))
				px[2*c] = uint8(v >> bitsPerByte)
				px[2*c+1] = uint8(v)
			}
			px[alphaOffset] = 0xff
			px[alphaOffset+1] = 0xff
		}
	}
	return img
}

func quantize(v float64) uint16 {
	v = min(max(v, 0), 1)
	return uint16(v*maxChannelValue + roundingOffset)
}

// downscale shrinks img by an integer factor with Catmull-Rom resampling.
func downscale(img image.Image, factor int) (*image.RGBA64, error) {
	b := img.Bounds()
	width, height := b.Dx()/factor, b.Dy()/factor
	if factor < 2 || width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: %d for %dx%d image", errInvalidDownscale, factor, b.Dx(), b.Dy())
	}

	dst := image.NewRGBA64(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst, nil
}

// writeImage encodes img to path. The format follows the extension: .png
// (default), .tif/.tiff or .bmp.
func writeImage(path string, img image.Image) error {
	ext := strings.ToLower(filepath.Ext(path))

	var encode func(*bufio.Writer) error
	switch ext {
	case ".png", "":
		encode = func(w *bufio.Writer) error { return png.Encode(w, img) }
	case ".tif", ".tiff":
		encode = func(w *bufio.Writer) error {
			return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
		}
	case ".bmp":
		encode = func(w *bufio.Writer) error { return bmp.Encode(w, img) }
	default:
		return fmt.Errorf("%w: %q", errUnsupportedFormat, ext)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	w := bufio.NewWriterSize(f, writerBufferSize)
	if err := encode(w); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// withSuffix inserts suffix before the extension of path.
func withSuffix(path, suffix string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + suffix + ext
}
