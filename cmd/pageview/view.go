package main

import (
	"context"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"pagecore/pkg/render"
	"pagecore/pkg/resource"
)

// pageView shows the visible part of a page and forwards taps and keys
// to it.
type pageView struct {
	widget.BaseWidget

	page          *resource.Page
	raster        *render.Raster
	img           *canvas.Image
	width, height int
	log           *zap.Logger

	// onNavigate runs a navigation off the UI goroutine.
	onNavigate func(fn func(ctx context.Context) error)
}

func newPageView(page *resource.Page, width, height int, log *zap.Logger) *pageView {
	v := &pageView{
		page:   page,
		raster: render.NewRaster(width, height, log),
		width:  width,
		height: height,
		log:    log,
	}
	v.raster.Clear()
	v.img = canvas.NewImageFromImage(v.raster.Image())
	v.img.FillMode = canvas.ImageFillOriginal
	v.ExtendBaseWidget(v)
	return v
}

func (v *pageView) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(v.img)
}

func (v *pageView) MinSize() fyne.Size {
	return fyne.NewSize(float32(v.width), float32(v.height))
}

// redraw repaints the raster from the page. Call on the UI goroutine.
func (v *pageView) redraw() {
	v.raster.Clear()
	v.page.Draw(v.raster)
	v.img.Image = v.raster.Image()
	v.img.Refresh()
}

func (v *pageView) Tapped(ev *fyne.PointEvent) {
	if c := fyne.CurrentApp().Driver().CanvasForObject(v); c != nil {
		c.Focus(v)
	}
	x, y := float64(ev.Position.X), float64(ev.Position.Y)
	v.onNavigate(func(ctx context.Context) error {
		return v.page.Click(ctx, x, y)
	})
}

func (v *pageView) FocusGained() {}

func (v *pageView) FocusLost() {}

func (v *pageView) TypedRune(r rune) {
	if r < 0x20 || r >= 0x7f {
		return
	}
	if v.page.Keypress(r) {
		v.redraw()
	}
}

func (v *pageView) TypedKey(ev *fyne.KeyEvent) {
	switch ev.Name {
	case fyne.KeyDown:
		v.page.ScrollDown()
	case fyne.KeyUp:
		v.page.ScrollUp()
	case fyne.KeyEscape:
		v.page.Blur()
	default:
		return
	}
	v.redraw()
	v.log.Debug("key", zap.String("name", string(ev.Name)), zap.Float64("scroll", v.page.Scroll()))
}
