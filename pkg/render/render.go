package render

import (
	"image"
	"image/color"
	"strconv"
	"strings"

	"github.com/fogleman/gg"
	"go.uber.org/zap"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font"

	"pagecore/pkg/layout"
	"pagecore/pkg/text"
)

// Raster is a layout.Canvas backed by an in-memory RGBA image.
type Raster struct {
	context *gg.Context
	log     *zap.Logger
}

func NewRaster(width, height int, log *zap.Logger) *Raster {
	if log == nil {
		log = zap.NewNop()
	}
	return &Raster{context: gg.NewContext(width, height), log: log.Named("render")}
}

func (r *Raster) Width() int  { return r.context.Width() }
func (r *Raster) Height() int { return r.context.Height() }

// Clear fills the raster with white.
func (r *Raster) Clear() {
	r.context.SetRGB(1, 1, 1)
	r.context.Clear()
}

// Render clears the raster and draws the part of the display list visible
// at the given scroll offset.
func (r *Raster) Render(cmds []layout.Command, scroll float64) {
	r.Clear()
	layout.Draw(cmds, scroll, float64(r.Height()), r)
}

func (r *Raster) FillRect(x1, y1, x2, y2 float64, c string) {
	col, ok := ParseColor(c)
	if !ok {
		r.log.Debug("unknown color, skipping rect", zap.String("color", c))
		return
	}
	if x2 <= x1 || y2 <= y1 {
		return
	}
	r.context.SetColor(col)
	r.context.DrawRectangle(x1, y1, x2-x1, y2-y1)
	r.context.Fill()
}

// DrawText draws s with its top at y; the baseline sits one ascent lower.
func (r *Raster) DrawText(x, y float64, s string, key text.FontKey, c string) {
	if s == "" {
		return
	}
	col, ok := ParseColor(c)
	if !ok {
		r.log.Debug("unknown color, drawing black", zap.String("color", c))
		col = color.Black
	}
	f := text.Get(key)
	f.WithFace(func(face font.Face) {
		r.context.SetFontFace(face)
		r.context.SetColor(col)
		r.context.DrawString(s, x, y+f.Ascent())
	})
}

func (r *Raster) Image() image.Image {
	return r.context.Image()
}

func (r *Raster) SavePNG(filename string) error {
	return r.context.SavePNG(filename)
}

// ParseColor understands CSS color keywords, "transparent" and #rgb /
// #rrggbb hex notation.
func ParseColor(s string) (color.Color, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "transparent" {
		return color.Transparent, true
	}
	if c, ok := colornames.Map[s]; ok {
		return c, true
	}
	if !strings.HasPrefix(s, "#") {
		return nil, false
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return nil, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, false
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, true
}
