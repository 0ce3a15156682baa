package resource

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"pagecore/pkg/css"
	"pagecore/pkg/html"
	"pagecore/pkg/layout"
)

// ScrollStep is the default distance of one scroll.
const ScrollStep = 100.0

type Options struct {
	ViewportWidth  float64
	ViewportHeight float64
	ScrollStep     float64
	Logger         *zap.Logger
}

// Page holds one loaded document with its styles, layout and display list,
// plus the navigation, scroll and focus state of the view showing it. All
// methods are safe for concurrent use; Load and Click fetch without holding
// the lock.
type Page struct {
	fetcher Fetcher
	engine  *layout.LayoutEngine
	log     *zap.Logger

	mu             sync.Mutex
	viewportWidth  float64
	viewportHeight float64
	scrollStep     float64

	url         string
	history     []string
	tree        *html.Tree
	rules       []css.Rule
	boxes       *layout.BoxTree
	displayList []layout.Command
	height      float64
	scroll      float64
	focus       html.NodeID
	warnings    error
}

func NewPage(fetcher Fetcher, opts Options) *Page {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opts.ScrollStep <= 0 {
		opts.ScrollStep = ScrollStep
	}
	return &Page{
		fetcher:        fetcher,
		engine:         layout.NewLayoutEngine(log),
		log:            log.Named("page"),
		viewportWidth:  opts.ViewportWidth,
		viewportHeight: opts.ViewportHeight,
		scrollStep:     opts.ScrollStep,
		focus:          html.NoNode,
	}
}

// document is a fetched and parsed page waiting to be committed.
type document struct {
	locator  string
	tree     *html.Tree
	rules    []css.Rule
	warnings error
}

// Load fetches and renders locator and pushes it on the history. Only a
// failure to fetch the document itself is returned; style sheets that
// cannot be fetched are skipped and reported by Warnings.
func (p *Page) Load(ctx context.Context, locator string) error {
	doc, err := p.fetch(ctx, locator)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.history = append(p.history, locator)
	p.commit(doc)
	return nil
}

// fetch loads a document and its style sheets without holding mu.
func (p *Page) fetch(ctx context.Context, locator string) (*document, error) {
	body, err := p.fetcher.Fetch(ctx, locator)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", locator, err)
	}
	tree := html.NewParser(body, p.log).Parse()
	rules, warnings := p.collectRules(ctx, locator, tree)
	return &document{locator: locator, tree: tree, rules: rules, warnings: warnings}, nil
}

// commit makes doc the current page. Callers hold mu and update the
// history themselves.
func (p *Page) commit(doc *document) {
	p.url = doc.locator
	p.tree = doc.tree
	p.rules = doc.rules
	p.warnings = doc.warnings
	p.scroll = 0
	p.focus = html.NoNode
	p.render()
	p.log.Info("loaded page",
		zap.String("url", doc.locator),
		zap.Int("nodes", doc.tree.Len()),
		zap.Int("rules", len(doc.rules)),
		zap.Float64("height", p.height))
}

// collectRules gathers the default rules, every linked style sheet and
// every <style> block, sorted for the cascade.
func (p *Page) collectRules(ctx context.Context, base string, tree *html.Tree) ([]css.Rule, error) {
	rules := css.DefaultRules()
	var warnings error

	for _, id := range tree.List(tree.Root) {
		n := tree.Node(id)
		if !n.IsElement("link") {
			continue
		}
		rel, _ := n.GetAttribute("rel")
		href, ok := n.GetAttribute("href")
		if !ok || !strings.EqualFold(rel, "stylesheet") {
			continue
		}
		locator, ok := p.fetcher.Resolve(base, href)
		if !ok {
			continue
		}
		text, err := p.fetcher.Fetch(ctx, locator)
		if err != nil {
			p.log.Warn("skipping style sheet", zap.String("href", locator), zap.Error(err))
			warnings = multierr.Append(warnings, err)
			continue
		}
		rules = append(rules, css.NewParser(text, p.log).Parse()...)
	}

	for _, id := range tree.List(tree.Root) {
		n := tree.Node(id)
		if !n.IsElement("style") {
			continue
		}
		var sb strings.Builder
		for _, child := range n.Children {
			sb.WriteString(tree.Node(child).Text)
		}
		rules = append(rules, css.NewParser(sb.String(), p.log).Parse()...)
	}

	css.SortByPriority(rules)
	return rules, warnings
}

// render re-runs the cascade, layout and paint. Callers hold mu.
func (p *Page) render() {
	if p.tree == nil {
		return
	}
	css.Apply(p.tree, p.rules)
	p.boxes, p.height = p.engine.Layout(p.tree, p.viewportWidth)
	p.displayList = layout.Paint(p.boxes)
}

// Render recomputes styles, layout and the display list.
func (p *Page) Render() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.render()
}

// SetViewport changes the viewport size and re-renders.
func (p *Page) SetViewport(width, height float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	widthChanged := width != p.viewportWidth
	p.viewportWidth, p.viewportHeight = width, height
	if widthChanged {
		p.render()
	}
	p.scroll = math.Min(p.scroll, p.maxScroll())
}

func (p *Page) maxScroll() float64 {
	return math.Max(p.height+2*layout.VStep-p.viewportHeight, 0)
}

func (p *Page) ScrollDown() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scroll = math.Min(p.scroll+p.scrollStep, p.maxScroll())
}

func (p *Page) ScrollUp() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scroll = math.Max(p.scroll-p.scrollStep, 0)
}

// Click handles a click at viewport coordinates. The innermost box under
// the point decides: a link navigates, an input is cleared and focused.
func (p *Page) Click(ctx context.Context, x, y float64) error {
	p.mu.Lock()
	target, navigate := p.click(x, y)
	p.mu.Unlock()
	if !navigate {
		return nil
	}
	return p.Load(ctx, target)
}

func (p *Page) click(x, y float64) (string, bool) {
	if p.boxes == nil {
		return "", false
	}
	y += p.scroll

	hit := layout.NoBox
	p.boxes.Walk(p.boxes.Root, func(id layout.BoxID) {
		if p.boxes.Box(id).Contains(x, y) {
			hit = id
		}
	})
	if hit == layout.NoBox {
		return "", false
	}

	for id := p.boxes.Box(hit).Node; id != html.NoNode; id = p.tree.Node(id).Parent {
		n := p.tree.Node(id)
		switch {
		case n.IsElement("a"):
			href, ok := n.GetAttribute("href")
			if !ok {
				continue
			}
			return p.fetcher.Resolve(p.url, href)
		case n.IsElement("input"):
			n.Attributes["value"] = ""
			p.setFocus(id)
			p.render()
			return "", false
		}
	}
	return "", false
}

func (p *Page) setFocus(id html.NodeID) {
	if p.focus != html.NoNode {
		p.tree.Node(p.focus).Focused = false
	}
	p.focus = id
	if id != html.NoNode {
		p.tree.Node(id).Focused = true
	}
}

// Keypress appends r to the focused input. It reports whether an input
// had focus.
func (p *Page) Keypress(r rune) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.focus == html.NoNode {
		return false
	}
	n := p.tree.Node(p.focus)
	n.Attributes["value"] += string(r)
	p.render()
	return true
}

// Blur drops input focus.
func (p *Page) Blur() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.focus == html.NoNode {
		return
	}
	p.setFocus(html.NoNode)
	p.render()
}

// Back reloads the previous history entry. It is a no-op on the first page.
// On failure the history is left unchanged. If the history moved while the
// previous page was fetched, the fetched page is stale and is dropped.
func (p *Page) Back(ctx context.Context) error {
	p.mu.Lock()
	n := len(p.history)
	if n < 2 {
		p.mu.Unlock()
		return nil
	}
	previous := p.history[n-2]
	p.mu.Unlock()

	doc, err := p.fetch(ctx, previous)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	n = len(p.history)
	if n < 2 || p.history[n-2] != previous {
		p.log.Debug("dropping stale back navigation", zap.String("url", previous))
		return nil
	}
	p.history = p.history[:n-1]
	p.commit(doc)
	return nil
}

// Draw paints the visible part of the page onto canvas.
func (p *Page) Draw(canvas layout.Canvas) {
	p.mu.Lock()
	defer p.mu.Unlock()
	layout.Draw(p.displayList, p.scroll, p.viewportHeight, canvas)
}

func (p *Page) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url
}

func (p *Page) History() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.history...)
}

func (p *Page) Scroll() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.scroll
}

// Height is the total content height of the current document.
func (p *Page) Height() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.height
}

func (p *Page) DisplayList() []layout.Command {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]layout.Command(nil), p.displayList...)
}

// Tree returns the current document. Callers must not mutate it while the
// page is in use.
func (p *Page) Tree() *html.Tree {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tree
}

func (p *Page) Boxes() *layout.BoxTree {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.boxes
}

func (p *Page) Focus() html.NodeID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.focus
}

// Warnings returns the style sheet failures of the last load, combined
// with multierr.
func (p *Page) Warnings() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.warnings
}
