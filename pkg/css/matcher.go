package css

import (
	"fmt"

	"pagecore/pkg/html"
)

// Selector decides whether a rule applies to a node. The two
// implementations are TagSelector and DescendantSelector.
type Selector interface {
	Matches(tree *html.Tree, id html.NodeID) bool
	// Priority is the selector's specificity; rules are applied in
	// ascending priority order.
	Priority() int
	String() string

	selector()
}

// TagSelector matches elements by tag name.
type TagSelector struct {
	Tag string
}

func NewTagSelector(tag string) *TagSelector {
	return &TagSelector{Tag: tag}
}

func (s *TagSelector) Matches(tree *html.Tree, id html.NodeID) bool {
	return tree.Node(id).IsElement(s.Tag)
}

func (s *TagSelector) Priority() int { return 1 }

func (s *TagSelector) String() string { return s.Tag }

func (*TagSelector) selector() {}

// DescendantSelector matches a node matched by Descendant that has some
// strict ancestor matched by Ancestor.
type DescendantSelector struct {
	Ancestor   Selector
	Descendant Selector
	priority   int
}

func NewDescendantSelector(ancestor, descendant Selector) *DescendantSelector {
	return &DescendantSelector{
		Ancestor:   ancestor,
		Descendant: descendant,
		priority:   ancestor.Priority() + descendant.Priority(),
	}
}

func (s *DescendantSelector) Matches(tree *html.Tree, id html.NodeID) bool {
	if !s.Descendant.Matches(tree, id) {
		return false
	}
	for ancestor := tree.Node(id).Parent; ancestor != html.NoNode; ancestor = tree.Node(ancestor).Parent {
		if s.Ancestor.Matches(tree, ancestor) {
			return true
		}
	}
	return false
}

func (s *DescendantSelector) Priority() int { return s.priority }

func (s *DescendantSelector) String() string {
	return fmt.Sprintf("%s %s", s.Ancestor, s.Descendant)
}

func (*DescendantSelector) selector() {}
