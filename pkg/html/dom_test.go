package html

import (
	"strings"
	"testing"
)

func makeTree() (*Tree, NodeID, NodeID) {
	// <div id="parent"><span>hello</span><p>world</p></div>
	tree := NewTree()
	div := tree.NewElement("div", map[string]string{"id": "parent"})
	tree.Root = div
	span := tree.NewElement("span", nil)
	tree.AddChild(div, span)
	tree.AddChild(span, tree.NewText("hello"))
	p := tree.NewElement("p", nil)
	tree.AddChild(div, p)
	tree.AddChild(p, tree.NewText("world"))
	return tree, span, p
}

func TestAddChild_SetsParent(t *testing.T) {
	tree, span, p := makeTree()
	if tree.Node(span).Parent != tree.Root || tree.Node(p).Parent != tree.Root {
		t.Error("children should point at the root")
	}
	if len(tree.Node(tree.Root).Children) != 2 {
		t.Errorf("expected 2 children, got %d", len(tree.Node(tree.Root).Children))
	}
}

func TestAddChild_AttachedNodeIgnored(t *testing.T) {
	tree, span, p := makeTree()
	tree.AddChild(p, span)
	if tree.Node(span).Parent != tree.Root {
		t.Error("an attached node must keep its parent")
	}
	if len(tree.Node(p).Children) != 1 {
		t.Error("an attached node must not appear twice")
	}
}

func TestList_DocumentOrder(t *testing.T) {
	tree, _, _ := makeTree()
	var labels []string
	for _, id := range tree.List(tree.Root) {
		labels = append(labels, tree.Label(id))
	}
	got := strings.Join(labels, " ")
	want := `<div id="parent"> <span> "hello" <p> "world"`
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestContains(t *testing.T) {
	tree, span, p := makeTree()
	text := tree.Node(span).Children[0]
	if !tree.Contains(tree.Root, text) {
		t.Error("root should contain nested text")
	}
	if tree.Contains(p, text) {
		t.Error("p should not contain span's text")
	}
}

func TestSerialize(t *testing.T) {
	tree, _, _ := makeTree()
	want := `<div id="parent"><span>hello</span><p>world</p></div>`
	if got := tree.Serialize(tree.Root); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestDump(t *testing.T) {
	tree, _, _ := makeTree()
	out := tree.Dump()
	for _, want := range []string{`<div id="parent">`, "<span>", `"world"`} {
		if !strings.Contains(out, want) {
			t.Errorf("dump missing %s:\n%s", want, out)
		}
	}
}
