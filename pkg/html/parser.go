package html

import (
	"strings"

	"go.uber.org/zap"
)

var selfClosingTags = map[string]bool{
	"area": true, "base": true, "br": true, "col": true,
	"embed": true, "hr": true, "img": true, "input": true,
	"link": true, "meta": true, "param": true, "source": true,
	"track": true, "wbr": true,
}

// headTags are the elements that imply an open <head> when they show up
// before any body content.
var headTags = map[string]bool{
	"base": true, "basefont": true, "bgsound": true, "noscript": true,
	"link": true, "meta": true, "title": true, "style": true, "script": true,
}

// Parser builds a Tree from markup. It never fails: missing html, head and
// body elements are synthesized, unclosed elements are closed at end of
// input and stray close tags are dropped.
type Parser struct {
	tokenizer *Tokenizer
	tree      *Tree
	stack     []NodeID // open, not yet closed elements
	log       *zap.Logger
}

func NewParser(markup string, log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{
		tokenizer: NewTokenizer(markup),
		tree:      NewTree(),
		log:       log.Named("html"),
	}
}

func (p *Parser) Parse() *Tree {
	for {
		token, ok := p.tokenizer.NextToken()
		if !ok {
			break
		}
		switch token.Type {
		case TokenText:
			p.addText(token.Text)
		case TokenTag:
			p.addTag(token.Text)
		}
	}
	return p.finish()
}

func (p *Parser) addText(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	p.implicitTags("")
	node := p.tree.NewText(text)
	p.tree.AddChild(p.top(), node)
}

func (p *Parser) addTag(body string) {
	tag, attributes, ok := parseTagBody(body)
	if !ok || strings.HasPrefix(tag, "!") {
		return
	}
	p.implicitTags(tag)
	p.insertTag(tag, attributes)
}

func (p *Parser) insertTag(tag string, attributes map[string]string) {
	switch {
	case strings.HasPrefix(tag, "/"):
		// The root only closes at end of input.
		if len(p.stack) == 1 {
			p.log.Debug("dropping stray close tag", zap.String("tag", tag))
			return
		}
		p.pop()

	case tag == "html" && len(p.stack) > 0:
		p.log.Debug("ignoring nested html tag")

	case (tag == "head" || tag == "body") && len(p.stack) == 1:
		p.openSection(tag, attributes)

	case selfClosingTags[tag]:
		node := p.tree.NewElement(tag, attributes)
		p.tree.AddChild(p.top(), node)

	default:
		node := p.tree.NewElement(tag, attributes)
		if len(p.stack) == 0 {
			p.tree.Root = node
		} else {
			p.tree.AddChild(p.top(), node)
		}
		p.push(node)
	}
}

// openSection opens head or body directly under the root. Each exists at
// most once: a second open tag reopens the existing element, and a head
// that would land after the body is dropped.
func (p *Parser) openSection(tag string, attributes map[string]string) {
	root := p.stack[0]
	if existing, ok := p.tree.ChildElement(root, tag); ok {
		p.push(existing)
		return
	}
	if tag == "head" {
		if _, ok := p.tree.ChildElement(root, "body"); ok {
			p.log.Debug("ignoring head after body")
			return
		}
	}
	node := p.tree.NewElement(tag, attributes)
	p.tree.AddChild(root, node)
	p.push(node)
}

// implicitTags inserts the html, head and body tags (and the head close
// tag) that the incoming item requires. tag is "" for text.
func (p *Parser) implicitTags(tag string) {
	for {
		switch {
		case len(p.stack) == 0 && tag != "html":
			p.insertTag("html", nil)

		case p.openTagsAre("html") && tag != "head" && tag != "body" && tag != "/html":
			if headTags[tag] && !p.hasBody() {
				p.insertTag("head", nil)
			} else {
				p.insertTag("body", nil)
			}

		case p.openTagsAre("html", "head") && tag != "/head" && !headTags[tag]:
			p.insertTag("/head", nil)

		default:
			return
		}
	}
}

func (p *Parser) finish() *Tree {
	p.implicitTags("")
	for len(p.stack) > 1 {
		p.pop()
	}
	p.tree.Root = p.pop()
	return p.tree
}

func (p *Parser) openTagsAre(tags ...string) bool {
	if len(p.stack) != len(tags) {
		return false
	}
	for i, id := range p.stack {
		if p.tree.Nodes[id].TagName != tags[i] {
			return false
		}
	}
	return true
}

func (p *Parser) hasBody() bool {
	_, ok := p.tree.ChildElement(p.stack[0], "body")
	return ok
}

// top returns the innermost open element.
func (p *Parser) top() NodeID {
	return p.stack[len(p.stack)-1]
}

func (p *Parser) push(id NodeID) {
	p.stack = append(p.stack, id)
}

func (p *Parser) pop() NodeID {
	id := p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]
	return id
}

// Parse builds a tree from markup without logging.
func Parse(markup string) *Tree {
	return NewParser(markup, nil).Parse()
}

func isSelfClosing(tag string) bool {
	return selfClosingTags[tag]
}
