package html

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xlab/treeprint"
)

// NodeID indexes a node inside its Tree.
type NodeID int

// NoNode is the parent of the root.
const NoNode NodeID = -1

type NodeType int

const (
	ElementNode NodeType = iota
	TextNode
)

// Node is either an element or a text node. Parent and Children refer to
// other nodes of the same Tree by index.
type Node struct {
	Type       NodeType
	TagName    string
	Attributes map[string]string
	Text       string
	Children   []NodeID
	Parent     NodeID

	// Style is the resolved style, filled in by the cascade.
	Style map[string]string
	// Focused is set by input handling; always false for text nodes.
	Focused bool
}

// Tree owns every node of one parsed document.
type Tree struct {
	Nodes []Node
	Root  NodeID
}

func NewTree() *Tree {
	return &Tree{Root: NoNode}
}

// Node returns the node stored under id. The pointer is invalidated by the
// next call that adds a node.
func (t *Tree) Node(id NodeID) *Node {
	return &t.Nodes[id]
}

func (t *Tree) Len() int {
	return len(t.Nodes)
}

// NewElement stores a detached element and returns its id.
func (t *Tree) NewElement(tag string, attributes map[string]string) NodeID {
	if attributes == nil {
		attributes = make(map[string]string)
	}
	t.Nodes = append(t.Nodes, Node{
		Type:       ElementNode,
		TagName:    tag,
		Attributes: attributes,
		Parent:     NoNode,
		Style:      make(map[string]string),
	})
	return NodeID(len(t.Nodes) - 1)
}

// NewText stores a detached text node and returns its id.
func (t *Tree) NewText(text string) NodeID {
	t.Nodes = append(t.Nodes, Node{
		Type:   TextNode,
		Text:   text,
		Parent: NoNode,
		Style:  make(map[string]string),
	})
	return NodeID(len(t.Nodes) - 1)
}

// AddChild appends child to parent and sets up the parent relationship.
// A child that is already attached somewhere is left untouched.
func (t *Tree) AddChild(parent, child NodeID) {
	c := &t.Nodes[child]
	if c.Parent != NoNode {
		return
	}
	c.Parent = parent
	p := &t.Nodes[parent]
	p.Children = append(p.Children, child)
}

func (n *Node) GetAttribute(name string) (string, bool) {
	if n.Attributes == nil {
		return "", false
	}
	val, ok := n.Attributes[name]
	return val, ok
}

func (n *Node) IsElement(tag string) bool {
	return n.Type == ElementNode && n.TagName == tag
}

// Walk visits id and its descendants in document order. Returning false
// from fn skips the subtree below that node.
func (t *Tree) Walk(id NodeID, fn func(id NodeID) bool) {
	if !fn(id) {
		return
	}
	for _, child := range t.Nodes[id].Children {
		t.Walk(child, fn)
	}
}

// List returns the subtree rooted at id in document order.
func (t *Tree) List(id NodeID) []NodeID {
	out := make([]NodeID, 0, len(t.Nodes))
	t.Walk(id, func(n NodeID) bool {
		out = append(out, n)
		return true
	})
	return out
}

// ChildElement returns the first element child of id with the given tag.
func (t *Tree) ChildElement(id NodeID, tag string) (NodeID, bool) {
	for _, child := range t.Nodes[id].Children {
		if t.Nodes[child].IsElement(tag) {
			return child, true
		}
	}
	return NoNode, false
}

// Contains reports whether other is id itself or one of its descendants.
func (t *Tree) Contains(id, other NodeID) bool {
	for n := other; n != NoNode; n = t.Nodes[n].Parent {
		if n == id {
			return true
		}
	}
	return false
}

// Label is the one-line description used in dumps.
func (t *Tree) Label(id NodeID) string {
	n := &t.Nodes[id]
	if n.Type == TextNode {
		return fmt.Sprintf("%q", n.Text)
	}
	var sb strings.Builder
	sb.WriteByte('<')
	sb.WriteString(n.TagName)
	keys := make([]string, 0, len(n.Attributes))
	for k := range n.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, " %s=%q", k, n.Attributes[k])
	}
	sb.WriteByte('>')
	return sb.String()
}

// Dump renders the tree below the root as an indented outline.
func (t *Tree) Dump() string {
	if t.Root == NoNode {
		return ""
	}
	tp := treeprint.NewWithRoot(t.Label(t.Root))
	t.dumpChildren(tp, t.Root)
	return tp.String()
}

func (t *Tree) dumpChildren(branch treeprint.Tree, id NodeID) {
	for _, child := range t.Nodes[id].Children {
		if len(t.Nodes[child].Children) == 0 {
			branch.AddNode(t.Label(child))
			continue
		}
		t.dumpChildren(branch.AddBranch(t.Label(child)), child)
	}
}

// Serialize returns the markup of the subtree rooted at id.
func (t *Tree) Serialize(id NodeID) string {
	var sb strings.Builder
	t.serializeNode(&sb, id)
	return sb.String()
}

func (t *Tree) serializeNode(sb *strings.Builder, id NodeID) {
	n := &t.Nodes[id]
	if n.Type == TextNode {
		sb.WriteString(n.Text)
		return
	}
	sb.WriteString(t.Label(id))
	if isSelfClosing(n.TagName) {
		return
	}
	for _, child := range n.Children {
		t.serializeNode(sb, child)
	}
	sb.WriteString("</")
	sb.WriteString(n.TagName)
	sb.WriteByte('>')
}
