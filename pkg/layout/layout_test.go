package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagecore/pkg/css"
	"pagecore/pkg/html"
	"pagecore/pkg/text"
)

// styled parses markup and applies the default style sheet.
func styled(markup string) *html.Tree {
	tree := html.Parse(markup)
	rules := css.DefaultRules()
	css.SortByPriority(rules)
	css.Apply(tree, rules)
	return tree
}

// blockFor returns the block box laid out for the first element with tag.
func blockFor(t *testing.T, bt *BoxTree, tag string) BoxID {
	t.Helper()
	for _, id := range bt.Find(BlockBox) {
		if bt.Document.Node(bt.Box(id).Node).IsElement(tag) {
			return id
		}
	}
	require.FailNow(t, "no block box", "<%s> missing from:\n%s", tag, bt.Dump())
	return NoBox
}

func normalFont() *text.Font {
	return text.Get(text.FontKey{Size: 12, Weight: "normal", Style: "roman"})
}

func TestLayout_DocumentGeometry(t *testing.T) {
	bt, height := Layout(styled(`<p>x</p>`), 800)

	doc := bt.Box(bt.Root)
	assert.Equal(t, DocumentBox, doc.Kind)
	assert.Equal(t, HStep, doc.X)
	assert.Equal(t, VStep, doc.Y)
	assert.Equal(t, 800-2*HStep, doc.Width)
	require.Len(t, doc.Children, 1)
	assert.Equal(t, height, doc.Height)
	assert.Equal(t, bt.Box(doc.Children[0]).Height, height)
	assert.Greater(t, height, 0.0)
}

func TestLayout_EndToEnd(t *testing.T) {
	bt, _ := Layout(styled(`<p>Hello <b>World</b></p>`), 800)

	p := bt.Box(blockFor(t, bt, "p"))
	require.Len(t, p.Children, 1, bt.Dump())
	line := bt.Box(p.Children[0])
	assert.Equal(t, LineBox, line.Kind)
	require.Len(t, line.Children, 2, bt.Dump())

	hello := bt.Box(line.Children[0])
	world := bt.Box(line.Children[1])
	assert.Equal(t, TextBox, hello.Kind)
	assert.Equal(t, "Hello", hello.Text)
	assert.Equal(t, "normal", hello.Font.Weight)
	assert.Equal(t, "World", world.Text)
	assert.Equal(t, "bold", world.Font.Weight)

	font := normalFont()
	assert.Equal(t, HStep, hello.X)
	assert.InDelta(t, hello.X+font.Measure("Hello")+font.Measure(" "), world.X, 1e-9)
	assert.Equal(t, "black", hello.Color)
}

func TestLayout_LineWrapping(t *testing.T) {
	font := normalFont()
	first, second := font.Measure("alpha"), font.Measure("omega")
	width := first + font.Measure(" ") + second - 1
	viewport := width + 2*HStep

	bt, _ := Layout(styled(`<p>alpha omega</p>`), viewport)
	p := bt.Box(blockFor(t, bt, "p"))
	require.Len(t, p.Children, 2, bt.Dump())
	assert.Equal(t, "alpha", bt.Box(bt.Box(p.Children[0]).Children[0]).Text)
	assert.Equal(t, "omega", bt.Box(bt.Box(p.Children[1]).Children[0]).Text)

	bt, _ = Layout(styled(`<p>alpha</p>`), viewport)
	p = bt.Box(blockFor(t, bt, "p"))
	assert.Len(t, p.Children, 1)
}

func TestLayout_ExactFitStaysOnLine(t *testing.T) {
	font := normalFont()
	width := font.Measure("alpha") + font.Measure(" ") + font.Measure("omega")

	bt, _ := Layout(styled(`<p>alpha omega</p>`), width+2*HStep)
	p := bt.Box(blockFor(t, bt, "p"))
	assert.Len(t, p.Children, 1, bt.Dump())
}

func TestLayout_LinesStackVertically(t *testing.T) {
	bt, _ := Layout(styled(`<p>one<br>two</p>`), 800)
	p := bt.Box(blockFor(t, bt, "p"))
	require.Len(t, p.Children, 2)

	first, second := bt.Box(p.Children[0]), bt.Box(p.Children[1])
	assert.Equal(t, p.Y, first.Y)
	assert.Equal(t, first.Y+first.Height, second.Y)
	assert.InDelta(t, first.Height+second.Height, p.Height, 1e-9)
}

func TestLayout_EmptyLinesHaveNoHeight(t *testing.T) {
	bt, _ := Layout(styled(`<p><br></p>`), 800)
	p := bt.Box(blockFor(t, bt, "p"))
	require.Len(t, p.Children, 2)
	for _, line := range p.Children {
		assert.Zero(t, bt.Box(line).Height)
	}
	assert.Zero(t, p.Height)
}

func TestLayout_SharedBaseline(t *testing.T) {
	bt, _ := Layout(styled(`<p>small <big>large</big></p>`), 800)
	p := bt.Box(blockFor(t, bt, "p"))
	require.Len(t, p.Children, 1)
	line := bt.Box(p.Children[0])
	require.Len(t, line.Children, 2)

	small, large := bt.Box(line.Children[0]), bt.Box(line.Children[1])
	smallFont, largeFont := text.Get(small.Font), text.Get(large.Font)
	require.Greater(t, large.Font.Size, small.Font.Size)

	assert.InDelta(t, small.Y+smallFont.Ascent(), large.Y+largeFont.Ascent(), 1e-9)
	assert.InDelta(t, line.Y+1.25*largeFont.Ascent(), large.Y+largeFont.Ascent(), 1e-9)
	assert.InDelta(t, 1.25*(largeFont.Ascent()+largeFont.Descent()), line.Height, 1e-9)
}

func TestLayout_BlocksStack(t *testing.T) {
	bt, _ := Layout(styled(`<div><p>a</p><p>b</p></div>`), 800)
	div := bt.Box(blockFor(t, bt, "div"))
	require.Len(t, div.Children, 2)

	first, second := bt.Box(div.Children[0]), bt.Box(div.Children[1])
	assert.Equal(t, div.Y, first.Y)
	assert.Equal(t, first.Y+first.Height, second.Y)
	assert.Equal(t, div.X, second.X)
	assert.Equal(t, div.Width, second.Width)
	assert.Equal(t, first.Height+second.Height, div.Height)
	assert.Equal(t, div.Children[0], second.Previous)
}

func TestLayout_MixedChildrenInBlockMode(t *testing.T) {
	bt, _ := Layout(styled(`<div>loose text<p>para</p></div>`), 800)
	div := bt.Box(blockFor(t, bt, "div"))
	require.Len(t, div.Children, 2)

	textBlock := bt.Box(div.Children[0])
	assert.Equal(t, BlockBox, textBlock.Kind)
	assert.Equal(t, html.TextNode, bt.Document.Node(textBlock.Node).Type)
	require.Len(t, textBlock.Children, 1)
	assert.Len(t, bt.Box(textBlock.Children[0]).Children, 2)
}

func TestLayout_HiddenElementsHaveNoBox(t *testing.T) {
	bt, _ := Layout(styled(`<title>Title</title><p>x</p><p style="display:none">gone</p>`), 800)
	for _, id := range bt.Find(BlockBox) {
		n := bt.Document.Node(bt.Box(id).Node)
		assert.False(t, n.IsElement("head"), "head should not be laid out")
		assert.NotEqual(t, "none", n.Style["display"])
	}
	for _, id := range bt.Find(TextBox) {
		assert.NotEqual(t, "Title", bt.Box(id).Text)
		assert.NotEqual(t, "gone", bt.Box(id).Text)
	}
}

func TestLayout_DegenerateBlock(t *testing.T) {
	bt, _ := Layout(styled(`<div></div><p>x</p>`), 800)
	div := bt.Box(blockFor(t, bt, "div"))
	assert.Empty(t, div.Children)
	assert.Zero(t, div.Height)
}

func TestLayout_InputBoxes(t *testing.T) {
	bt, _ := Layout(styled(`<p>Name <input value=bob> <button>Go</button> <button>a<b>b</b></button></p>`), 800)
	inputs := bt.Find(InputBox)
	require.Len(t, inputs, 3, bt.Dump())

	input, button, mixed := bt.Box(inputs[0]), bt.Box(inputs[1]), bt.Box(inputs[2])
	assert.Equal(t, InputWidthPx, input.Width)
	assert.Equal(t, "bob", input.Text)
	assert.Equal(t, "Go", button.Text)
	assert.Equal(t, "", mixed.Text)

	font := normalFont()
	assert.InDelta(t, input.X+InputWidthPx+font.Measure(" "), button.X, 1e-9)
}

func TestLayout_DoesNotMutateNodes(t *testing.T) {
	tree := styled(`<div><p>Hello <b>World</b></p></div>`)
	before := tree.Dump()
	styles := make([]map[string]string, tree.Len())
	for i := range tree.Nodes {
		styles[i] = tree.Nodes[i].Style
	}

	Layout(tree, 300)

	assert.Equal(t, before, tree.Dump())
	for i := range tree.Nodes {
		assert.Equal(t, styles[i], tree.Nodes[i].Style)
	}
}

func TestBoxTree_Dump(t *testing.T) {
	bt, _ := Layout(styled(`<p>Hi</p>`), 800)
	dump := bt.Dump()
	assert.Contains(t, dump, "Document")
	assert.Contains(t, dump, `Block <p>`)
	assert.Contains(t, dump, `Text "Hi" 12pt normal roman`)
}
