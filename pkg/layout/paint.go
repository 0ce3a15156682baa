package layout

import (
	"pagecore/pkg/css"
	"pagecore/pkg/text"
)

// Canvas is the drawing surface paint commands execute against. Colors
// are CSS color values as resolved by the cascade.
type Canvas interface {
	FillRect(x1, y1, x2, y2 float64, color string)
	DrawText(x, y float64, s string, font text.FontKey, color string)
}

// Command is one entry of a display list. The set is closed: FillRect and
// DrawText.
type Command interface {
	Top() float64
	Bottom() float64
	// Execute draws the command with every y shifted up by scroll.
	Execute(scroll float64, c Canvas)

	command()
}

type FillRect struct {
	X1, Y1, X2, Y2 float64
	Color          string
}

func (r FillRect) Top() float64    { return r.Y1 }
func (r FillRect) Bottom() float64 { return r.Y2 }

func (r FillRect) Execute(scroll float64, c Canvas) {
	c.FillRect(r.X1, r.Y1-scroll, r.X2, r.Y2-scroll, r.Color)
}

func (FillRect) command() {}

// DrawText draws Text with its top-left corner at (X, Y).
type DrawText struct {
	X, Y  float64
	Text  string
	Font  text.FontKey
	Color string
}

func (t DrawText) Top() float64 { return t.Y }

func (t DrawText) Bottom() float64 {
	return t.Y + text.Get(t.Font).Linespace()
}

func (t DrawText) Execute(scroll float64, c Canvas) {
	c.DrawText(t.X, t.Y-scroll, t.Text, t.Font, t.Color)
}

func (DrawText) command() {}

// Paint returns the display list of a box tree in pre-order.
func Paint(bt *BoxTree) []Command {
	cmds := make([]Command, 0, len(bt.Boxes))
	if len(bt.Boxes) == 0 {
		return cmds
	}
	bt.Walk(bt.Root, func(id BoxID) {
		cmds = paintBox(bt, id, cmds)
	})
	return cmds
}

func paintBox(bt *BoxTree, id BoxID, cmds []Command) []Command {
	b := bt.Box(id)
	switch b.Kind {
	case DocumentBox, LineBox:
	case BlockBox:
		cmds = appendBackground(bt, b, cmds)
	case TextBox:
		cmds = append(cmds, DrawText{X: b.X, Y: b.Y, Text: b.Text, Font: b.Font, Color: b.Color})
	case InputBox:
		cmds = appendBackground(bt, b, cmds)
		cmds = append(cmds, DrawText{X: b.X, Y: b.Y, Text: b.Text, Font: b.Font, Color: b.Color})
		if bt.Document.Node(b.Node).Focused {
			cx := b.X + text.Get(b.Font).Measure(b.Text)
			cmds = append(cmds, FillRect{X1: cx, Y1: b.Y, X2: cx + 1, Y2: b.Y + b.Height, Color: b.Color})
		}
	}
	return cmds
}

func appendBackground(bt *BoxTree, b *Box, cmds []Command) []Command {
	bg := css.Get(bt.Document.Node(b.Node).Style, "background-color", css.Transparent)
	if bg == css.Transparent {
		return cmds
	}
	return append(cmds, FillRect{X1: b.X, Y1: b.Y, X2: b.X + b.Width, Y2: b.Y + b.Height, Color: bg})
}

// Draw executes the commands that intersect the viewport
// [scroll, scroll+viewportHeight] and skips the rest.
func Draw(cmds []Command, scroll, viewportHeight float64, c Canvas) {
	for _, cmd := range cmds {
		if cmd.Top() > scroll+viewportHeight || cmd.Bottom() < scroll {
			continue
		}
		cmd.Execute(scroll, c)
	}
}
