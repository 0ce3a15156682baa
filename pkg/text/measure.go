package text

import (
	"math"
	"strconv"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"pagecore/pkg/css"
)

// DPI used for every face. At 96 DPI a size in points maps back to CSS
// pixels, so size = floor(px * 0.75) renders at roughly px.
const DPI = 96

// MaxSize caps the point size of a face. Far larger sizes overflow the
// 26.6 fixed point metrics of the rasterizer.
const MaxSize = 1000

// FontKey identifies a face: size in points, weight as resolved by the
// cascade ("normal", "bold", "700") and style ("roman" or "italic").
type FontKey struct {
	Size   int
	Weight string
	Style  string
}

func (k FontKey) String() string {
	return strconv.Itoa(k.Size) + "pt " + k.Weight + " " + k.Style
}

// Bold reports whether the key selects a bold face.
func (k FontKey) Bold() bool {
	if k.Weight == "bold" || k.Weight == "bolder" {
		return true
	}
	n, err := strconv.Atoi(k.Weight)
	return err == nil && n >= 600
}

// Italic reports whether the key selects a slanted face.
func (k FontKey) Italic() bool {
	return k.Style == "italic" || k.Style == "oblique"
}

// KeyFor derives the font key of a resolved style.
func KeyFor(style map[string]string) FontKey {
	px := css.FontSizePx(style)
	fontStyle := css.Get(style, "font-style", "normal")
	if fontStyle == "normal" {
		fontStyle = "roman"
	}
	return FontKey{
		Size:   int(math.Floor(math.Min(px*0.75, MaxSize))),
		Weight: css.Get(style, "font-weight", "normal"),
		Style:  fontStyle,
	}
}

// Font wraps a face with float metrics in pixels. Faces are not safe for
// concurrent use, so every access goes through mu.
type Font struct {
	key  FontKey
	mu   sync.Mutex
	face font.Face

	ascent, descent, linespace float64
}

func newFont(key FontKey, face font.Face) *Font {
	m := face.Metrics()
	return &Font{
		key:       key,
		face:      face,
		ascent:    toFloat(m.Ascent),
		descent:   toFloat(m.Descent),
		linespace: toFloat(m.Height),
	}
}

func (f *Font) Key() FontKey { return f.key }

// Measure returns the advance width of s in pixels.
func (f *Font) Measure(s string) float64 {
	if s == "" {
		return 0
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return toFloat(font.MeasureString(f.face, s))
}

func (f *Font) Ascent() float64 { return f.ascent }

func (f *Font) Descent() float64 { return f.descent }

func (f *Font) Linespace() float64 { return f.linespace }

// WithFace runs fn with exclusive use of the underlying face, for
// rasterizers that draw with it directly.
func (f *Font) WithFace(fn func(font.Face)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f.face)
}

func toFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

var (
	parsedOnce sync.Once
	parsed     map[[2]bool]*opentype.Font
	parseErr   error
)

// collection returns the Go font family, parsed once per process. The
// index is [bold, italic].
func collection() (map[[2]bool]*opentype.Font, error) {
	parsedOnce.Do(func() {
		sources := map[[2]bool][]byte{
			{false, false}: goregular.TTF,
			{true, false}:  gobold.TTF,
			{false, true}:  goitalic.TTF,
			{true, true}:   gobolditalic.TTF,
		}
		parsed = make(map[[2]bool]*opentype.Font, len(sources))
		for variant, ttf := range sources {
			f, err := opentype.Parse(ttf)
			if err != nil {
				parseErr = err
				return
			}
			parsed[variant] = f
		}
	})
	return parsed, parseErr
}

// loadFace builds a face for key. Sizes are clamped to [1, MaxSize].
func loadFace(key FontKey) (font.Face, error) {
	fonts, err := collection()
	if err != nil {
		return nil, err
	}
	size := min(max(key.Size, 1), MaxSize)
	return opentype.NewFace(fonts[[2]bool{key.Bold(), key.Italic()}], &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     DPI,
		Hinting: font.HintingNone,
	})
}

// fallbackFace is used if the embedded fonts cannot be loaded.
func fallbackFace() font.Face {
	return basicfont.Face7x13
}
