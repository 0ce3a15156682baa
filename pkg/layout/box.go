package layout

import (
	"fmt"

	"github.com/xlab/treeprint"

	"pagecore/pkg/html"
	"pagecore/pkg/text"
)

// BoxID indexes a box inside its BoxTree.
type BoxID int

// NoBox marks a missing parent or previous sibling.
const NoBox BoxID = -1

type BoxKind int

const (
	DocumentBox BoxKind = iota
	BlockBox
	LineBox
	TextBox
	InputBox
)

func (k BoxKind) String() string {
	switch k {
	case DocumentBox:
		return "Document"
	case BlockBox:
		return "Block"
	case LineBox:
		return "Line"
	case TextBox:
		return "Text"
	case InputBox:
		return "Input"
	}
	return fmt.Sprintf("BoxKind(%d)", int(k))
}

type Box struct {
	Kind     BoxKind
	Node     html.NodeID
	Parent   BoxID
	Previous BoxID // previous sibling, used to chain y positions
	Children []BoxID

	X, Y          float64
	Width, Height float64

	// Text and Input boxes only.
	Text  string
	Font  text.FontKey
	Color string
}

// BoxTree is the output of one layout pass. Boxes refer to the nodes of
// Document but never modify them.
type BoxTree struct {
	Boxes    []Box
	Root     BoxID
	Document *html.Tree
}

func (bt *BoxTree) Box(id BoxID) *Box {
	return &bt.Boxes[id]
}

func (bt *BoxTree) Len() int {
	return len(bt.Boxes)
}

// add appends box as the last child of its parent, setting Previous.
// Pointers into Boxes are invalid after a call.
func (bt *BoxTree) add(box Box) BoxID {
	id := BoxID(len(bt.Boxes))
	box.Previous = NoBox
	if box.Parent != NoBox {
		siblings := bt.Boxes[box.Parent].Children
		if len(siblings) > 0 {
			box.Previous = siblings[len(siblings)-1]
		}
	}
	bt.Boxes = append(bt.Boxes, box)
	if box.Parent != NoBox {
		bt.Boxes[box.Parent].Children = append(bt.Boxes[box.Parent].Children, id)
	}
	return id
}

// Walk visits id and its descendants in pre-order.
func (bt *BoxTree) Walk(id BoxID, fn func(id BoxID)) {
	fn(id)
	for _, child := range bt.Boxes[id].Children {
		bt.Walk(child, fn)
	}
}

// Find returns the boxes of the given kind in pre-order.
func (bt *BoxTree) Find(kind BoxKind) []BoxID {
	var out []BoxID
	bt.Walk(bt.Root, func(id BoxID) {
		if bt.Boxes[id].Kind == kind {
			out = append(out, id)
		}
	})
	return out
}

// Contains reports whether the point lies inside the box.
func (b *Box) Contains(x, y float64) bool {
	return x >= b.X && x < b.X+b.Width && y >= b.Y && y < b.Y+b.Height
}

func (bt *BoxTree) Label(id BoxID) string {
	b := &bt.Boxes[id]
	geometry := fmt.Sprintf("(%g,%g %gx%g)", b.X, b.Y, b.Width, b.Height)
	switch b.Kind {
	case TextBox, InputBox:
		return fmt.Sprintf("%s %q %s %s", b.Kind, b.Text, b.Font, geometry)
	case LineBox:
		return fmt.Sprintf("%s %s", b.Kind, geometry)
	}
	if bt.Document != nil && b.Node != html.NoNode {
		return fmt.Sprintf("%s %s %s", b.Kind, bt.Document.Label(b.Node), geometry)
	}
	return fmt.Sprintf("%s %s", b.Kind, geometry)
}

// Dump renders the box tree for debugging.
func (bt *BoxTree) Dump() string {
	if len(bt.Boxes) == 0 {
		return ""
	}
	tp := treeprint.NewWithRoot(bt.Label(bt.Root))
	bt.dumpChildren(tp, bt.Root)
	return tp.String()
}

func (bt *BoxTree) dumpChildren(branch treeprint.Tree, id BoxID) {
	for _, child := range bt.Boxes[id].Children {
		if len(bt.Boxes[child].Children) == 0 {
			branch.AddNode(bt.Label(child))
			continue
		}
		bt.dumpChildren(branch.AddBranch(bt.Label(child)), child)
	}
}
