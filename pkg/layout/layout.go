package layout

import (
	"math"
	"strings"

	"go.uber.org/zap"

	"pagecore/pkg/css"
	"pagecore/pkg/html"
	"pagecore/pkg/text"
)

const (
	// HStep is the horizontal page margin on each side.
	HStep = 13.0
	// VStep is the top page margin.
	VStep = 18.0
	// InputWidthPx is the fixed width of input and button boxes.
	InputWidthPx = 200.0
)

// BlockElements are the tags that force their parent into block mode.
var BlockElements = map[string]bool{
	"html": true, "body": true, "article": true, "section": true, "nav": true,
	"aside": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true,
	"h6": true, "hgroup": true, "header": true, "footer": true, "address": true,
	"p": true, "hr": true, "pre": true, "blockquote": true, "ol": true, "ul": true,
	"menu": true, "li": true, "dl": true, "dt": true, "dd": true, "figure": true,
	"figcaption": true, "main": true, "div": true, "table": true, "form": true,
	"fieldset": true, "legend": true, "details": true, "summary": true,
}

type mode int

const (
	blockMode mode = iota
	inlineMode
)

// LayoutEngine turns a styled tree into boxes. It holds no state between
// passes besides its logger.
type LayoutEngine struct {
	log *zap.Logger
}

func NewLayoutEngine(log *zap.Logger) *LayoutEngine {
	if log == nil {
		log = zap.NewNop()
	}
	return &LayoutEngine{log: log.Named("layout")}
}

// Layout computes the box tree of a styled document for the given viewport
// width and returns it with the total content height.
func Layout(tree *html.Tree, viewportWidth float64) (*BoxTree, float64) {
	return NewLayoutEngine(nil).Layout(tree, viewportWidth)
}

func (le *LayoutEngine) Layout(tree *html.Tree, viewportWidth float64) (*BoxTree, float64) {
	bt := &BoxTree{Document: tree}
	bt.Root = bt.add(Box{
		Kind:   DocumentBox,
		Node:   tree.Root,
		Parent: NoBox,
		X:      HStep,
		Y:      VStep,
		Width:  math.Max(viewportWidth-2*HStep, 0),
	})
	if tree.Root == html.NoNode || hidden(tree, tree.Root) {
		return bt, 0
	}

	child := bt.add(Box{Kind: BlockBox, Node: tree.Root, Parent: bt.Root})
	le.layoutBlock(bt, child)
	bt.Box(bt.Root).Height = bt.Box(child).Height
	return bt, bt.Box(bt.Root).Height
}

func (le *LayoutEngine) layoutBlock(bt *BoxTree, id BoxID) {
	b := bt.Box(id)
	parent := bt.Box(b.Parent)
	b.X = parent.X
	b.Width = parent.Width
	if b.Previous != NoBox {
		prev := bt.Box(b.Previous)
		b.Y = prev.Y + prev.Height
	} else {
		b.Y = parent.Y
	}

	tree := bt.Document
	node := b.Node
	height := 0.0
	switch layoutMode(tree, node) {
	case blockMode:
		for _, child := range tree.Node(node).Children {
			if hidden(tree, child) {
				continue
			}
			next := bt.add(Box{Kind: BlockBox, Node: child, Parent: id})
			le.layoutBlock(bt, next)
			height += bt.Box(next).Height
		}
	case inlineMode:
		c := le.newLine(bt, id)
		le.recurse(bt, id, node, c)
		for _, line := range bt.Box(id).Children {
			placeLine(bt, line)
			height += bt.Box(line).Height
		}
	}
	bt.Box(id).Height = height
}

func layoutMode(tree *html.Tree, id html.NodeID) mode {
	n := tree.Node(id)
	if n.Type == html.TextNode {
		return inlineMode
	}
	for _, child := range n.Children {
		c := tree.Node(child)
		if c.Type == html.ElementNode && BlockElements[c.TagName] {
			return blockMode
		}
	}
	if len(n.Children) > 0 || isInput(n) {
		return inlineMode
	}
	return blockMode
}

func hidden(tree *html.Tree, id html.NodeID) bool {
	return tree.Node(id).Style["display"] == "none"
}

func isInput(n *html.Node) bool {
	return n.IsElement("input") || n.IsElement("button")
}

// cursor is the state threaded through the inline walk: the line being
// filled and the horizontal offset within it.
type cursor struct {
	line BoxID
	x    float64
}

func (le *LayoutEngine) newLine(bt *BoxTree, block BoxID) cursor {
	b := bt.Box(block)
	line := bt.add(Box{
		Kind:   LineBox,
		Node:   b.Node,
		Parent: block,
		X:      b.X,
		Width:  b.Width,
	})
	return cursor{line: line, x: 0}
}

func (le *LayoutEngine) recurse(bt *BoxTree, block BoxID, id html.NodeID, c cursor) cursor {
	tree := bt.Document
	n := tree.Node(id)
	if n.Type == html.TextNode {
		for _, word := range strings.Fields(n.Text) {
			c = le.word(bt, block, id, word, c)
		}
		return c
	}
	switch {
	case hidden(tree, id):
		return c
	case n.IsElement("br"):
		return le.newLine(bt, block)
	case isInput(n):
		return le.input(bt, block, id, c)
	}
	for _, child := range n.Children {
		c = le.recurse(bt, block, child, c)
	}
	return c
}

func (le *LayoutEngine) word(bt *BoxTree, block BoxID, id html.NodeID, word string, c cursor) cursor {
	style := bt.Document.Node(id).Style
	key := text.KeyFor(style)
	font := text.Get(key)
	w := font.Measure(word)
	if c.x+w > bt.Box(block).Width {
		c = le.newLine(bt, block)
	}
	bt.add(Box{
		Kind:   TextBox,
		Node:   id,
		Parent: c.line,
		X:      bt.Box(c.line).X + c.x,
		Width:  w,
		Height: font.Linespace(),
		Text:   word,
		Font:   key,
		Color:  css.Get(style, "color", "black"),
	})
	return cursor{line: c.line, x: c.x + w + font.Measure(" ")}
}

func (le *LayoutEngine) input(bt *BoxTree, block BoxID, id html.NodeID, c cursor) cursor {
	n := bt.Document.Node(id)
	key := text.KeyFor(n.Style)
	font := text.Get(key)
	w := InputWidthPx
	if c.x+w > bt.Box(block).Width {
		c = le.newLine(bt, block)
	}
	bt.add(Box{
		Kind:   InputBox,
		Node:   id,
		Parent: c.line,
		X:      bt.Box(c.line).X + c.x,
		Width:  w,
		Height: font.Linespace(),
		Text:   le.inputText(bt.Document, id),
		Font:   key,
		Color:  css.Get(n.Style, "color", "black"),
	})
	return cursor{line: c.line, x: c.x + w + font.Measure(" ")}
}

// inputText is what an input or button box shows: the value attribute of
// an input, or the text of a button whose only child is text.
func (le *LayoutEngine) inputText(tree *html.Tree, id html.NodeID) string {
	n := tree.Node(id)
	if n.IsElement("input") {
		value, _ := n.GetAttribute("value")
		return value
	}
	if len(n.Children) == 1 {
		if child := tree.Node(n.Children[0]); child.Type == html.TextNode {
			return child.Text
		}
	}
	if len(n.Children) > 0 {
		le.log.Warn("ignoring button content that is not a single text node",
			zap.Int("children", len(n.Children)))
	}
	return ""
}

// placeLine positions a finished line below its predecessor and aligns
// its runs on a common baseline.
func placeLine(bt *BoxTree, id BoxID) {
	line := bt.Box(id)
	if line.Previous != NoBox {
		prev := bt.Box(line.Previous)
		line.Y = prev.Y + prev.Height
	} else {
		line.Y = bt.Box(line.Parent).Y
	}
	if len(line.Children) == 0 {
		line.Height = 0
		return
	}

	var maxAscent, maxDescent float64
	for _, child := range line.Children {
		font := text.Get(bt.Box(child).Font)
		maxAscent = math.Max(maxAscent, font.Ascent())
		maxDescent = math.Max(maxDescent, font.Descent())
	}
	baseline := line.Y + 1.25*maxAscent
	for _, child := range line.Children {
		run := bt.Box(child)
		run.Y = baseline - text.Get(run.Font).Ascent()
	}
	line.Height = 1.25 * (maxAscent + maxDescent)
}
