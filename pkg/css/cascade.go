package css

import (
	"pagecore/pkg/html"
)

// InheritedProperty is a property copied from parent to child before any
// rule applies.
type InheritedProperty struct {
	Name    string
	Default string
}

// InheritedProperties lists the inherited properties and their values at
// the root.
var InheritedProperties = []InheritedProperty{
	{"font-size", "16px"},
	{"font-style", "normal"},
	{"font-weight", "normal"},
	{"color", "black"},
}

// Apply computes the resolved style of every node below the root, in
// document order. rules must already be sorted with SortByPriority.
func Apply(tree *html.Tree, rules []Rule) {
	if tree == nil || tree.Root == html.NoNode {
		return
	}
	applyNode(tree, tree.Root, rules)
}

func applyNode(tree *html.Tree, id html.NodeID, rules []Rule) {
	node := tree.Node(id)

	var parentStyle map[string]string
	if node.Parent != html.NoNode {
		parentStyle = tree.Node(node.Parent).Style
	}

	style := make(map[string]string)
	for _, prop := range InheritedProperties {
		style[prop.Name] = Get(parentStyle, prop.Name, prop.Default)
	}
	inheritedFontSize := style["font-size"]

	for _, rule := range rules {
		if !rule.Selector.Matches(tree, id) {
			continue
		}
		for property, value := range rule.Declarations {
			style[property] = value
		}
	}

	// Inline styles override every rule regardless of specificity
	if node.Type == html.ElementNode {
		if attr, ok := node.GetAttribute("style"); ok {
			for property, value := range ParseDeclarations(attr) {
				style[property] = value
			}
		}
	}

	style["font-size"] = resolveFontSize(style["font-size"], parentStyle, inheritedFontSize)

	node.Style = style
	for _, child := range node.Children {
		applyNode(tree, child, rules)
	}
}

// resolveFontSize turns a percentage into pixels relative to the parent's
// font size. Values that are neither lengths nor percentages fall back to
// the inherited size.
func resolveFontSize(value string, parentStyle map[string]string, inherited string) string {
	if pct, ok := ParsePercent(value); ok {
		parentPx := DefaultFontSize
		if parentStyle != nil {
			parentPx = FontSizePx(parentStyle)
		}
		return FormatPx(parentPx * pct / 100)
	}
	if _, ok := ParseLength(value); ok {
		return value
	}
	return inherited
}
