package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
)

// CompareResult summarizes a pixel comparison.
type CompareResult struct {
	Match           bool
	DifferentPixels int
	TotalPixels     int
	MaxDifference   int // largest 8-bit channel difference seen
	// Diff marks differing pixels in red over a grayscale copy of actual.
	// Only set when CompareOptions.Diff is true.
	Diff *image.RGBA
}

type CompareOptions struct {
	// Tolerance is the largest per-channel difference (0-255) still
	// counted as equal.
	Tolerance int
	// MaxDifferentPercent lets a comparison pass with up to this share of
	// differing pixels.
	MaxDifferentPercent float64
	Diff                bool
}

// Compare compares two images pixel by pixel. Images of different sizes
// never match.
func Compare(actual, expected image.Image, opts CompareOptions) (*CompareResult, error) {
	bounds := actual.Bounds()
	if bounds.Size() != expected.Bounds().Size() {
		return &CompareResult{}, fmt.Errorf("image sizes differ: actual=%v, expected=%v", bounds.Size(), expected.Bounds().Size())
	}
	offset := expected.Bounds().Min.Sub(bounds.Min)

	result := &CompareResult{Match: true, TotalPixels: bounds.Dx() * bounds.Dy()}
	if opts.Diff {
		result.Diff = image.NewRGBA(bounds)
	}
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			a := color.RGBAModel.Convert(actual.At(x, y)).(color.RGBA)
			e := color.RGBAModel.Convert(expected.At(x+offset.X, y+offset.Y)).(color.RGBA)
			diff := max(absDiff(a.R, e.R), absDiff(a.G, e.G), absDiff(a.B, e.B), absDiff(a.A, e.A))
			result.MaxDifference = max(result.MaxDifference, diff)

			if diff > opts.Tolerance {
				result.Match = false
				result.DifferentPixels++
				if result.Diff != nil {
					result.Diff.Set(x, y, color.RGBA{255, 0, 0, 255})
				}
			} else if result.Diff != nil {
				gray := uint8((int(a.R) + int(a.G) + int(a.B)) / 3)
				result.Diff.Set(x, y, color.RGBA{gray, gray, gray, 255})
			}
		}
	}

	if !result.Match && opts.MaxDifferentPercent > 0 && result.TotalPixels > 0 {
		pct := float64(result.DifferentPixels) / float64(result.TotalPixels) * 100
		result.Match = pct <= opts.MaxDifferentPercent
	}
	return result, nil
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

// LoadPNG decodes a PNG file.
func LoadPNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return img, nil
}

// SavePNG encodes img to path.
func SavePNG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
