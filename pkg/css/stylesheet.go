package css

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
)

var errParse = errors.New("css parse error")

// Rule is a selector with its declarations (property -> raw value).
type Rule struct {
	Selector     Selector
	Declarations map[string]string
}

func (r Rule) String() string {
	keys := make([]string, 0, len(r.Declarations))
	for k := range r.Declarations {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	sb.WriteString(r.Selector.String())
	sb.WriteString(" {")
	for _, k := range keys {
		fmt.Fprintf(&sb, " %s: %s;", k, r.Declarations[k])
	}
	sb.WriteString(" }")
	return sb.String()
}

// SortByPriority orders rules by ascending selector priority. The sort is
// stable, so among equal priorities the earlier source wins first and the
// later one overrides it.
func SortByPriority(rules []Rule) {
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Selector.Priority() < rules[j].Selector.Priority()
	})
}

// Parser is a recursive descent parser for the supported subset: tag and
// descendant selectors followed by a block of property: value pairs.
// Errors inside a declaration skip to the next ';' or '}', errors inside a
// rule skip to the next '}'.
type Parser struct {
	s   []rune
	i   int
	log *zap.Logger
}

func NewParser(text string, log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{s: []rune(text), log: log.Named("css")}
}

// Parse returns the rules of a whole style sheet in source order.
func (p *Parser) Parse() []Rule {
	rules := make([]Rule, 0)
	for p.i < len(p.s) {
		p.whitespace()
		rule, err := p.rule()
		if err == nil {
			rules = append(rules, rule)
			continue
		}
		p.log.Debug("skipping rule", zap.Error(err))
		if _, ok := p.ignoreUntil("}"); !ok {
			break
		}
		p.i++
		p.whitespace()
	}
	return rules
}

func (p *Parser) rule() (Rule, error) {
	selector, err := p.selector()
	if err != nil {
		return Rule{}, err
	}
	if err := p.literal('{'); err != nil {
		return Rule{}, err
	}
	p.whitespace()
	body := p.Body()
	if err := p.literal('}'); err != nil {
		return Rule{}, err
	}
	return Rule{Selector: selector, Declarations: body}, nil
}

// Body parses declarations up to (not including) the closing '}'.
func (p *Parser) Body() map[string]string {
	pairs := make(map[string]string)
	for p.i < len(p.s) && p.s[p.i] != '}' {
		prop, val, err := p.pair()
		if err == nil {
			pairs[prop] = val
			p.whitespace()
			if err = p.literal(';'); err == nil {
				p.whitespace()
				continue
			}
		}
		p.log.Debug("skipping declaration", zap.Error(err))
		why, ok := p.ignoreUntil(";}")
		if !ok || why == '}' {
			break
		}
		p.i++
		p.whitespace()
	}
	return pairs
}

func (p *Parser) selector() (Selector, error) {
	tag, err := p.word()
	if err != nil {
		return nil, err
	}
	var out Selector = NewTagSelector(foldCase(tag))
	p.whitespace()
	for p.i < len(p.s) && p.s[p.i] != '{' {
		tag, err := p.word()
		if err != nil {
			return nil, err
		}
		out = NewDescendantSelector(out, NewTagSelector(foldCase(tag)))
		p.whitespace()
	}
	return out, nil
}

func (p *Parser) pair() (string, string, error) {
	prop, err := p.word()
	if err != nil {
		return "", "", err
	}
	p.whitespace()
	if err := p.literal(':'); err != nil {
		return "", "", err
	}
	p.whitespace()
	val, err := p.word()
	if err != nil {
		return "", "", err
	}
	return foldCase(prop), val, nil
}

func (p *Parser) whitespace() {
	for p.i < len(p.s) && unicode.IsSpace(p.s[p.i]) {
		p.i++
	}
}

func (p *Parser) word() (string, error) {
	start := p.i
	for p.i < len(p.s) && isWordRune(p.s[p.i]) {
		p.i++
	}
	if p.i == start {
		return "", fmt.Errorf("%w: expected word at offset %d", errParse, start)
	}
	return string(p.s[start:p.i]), nil
}

func (p *Parser) literal(r rune) error {
	if p.i >= len(p.s) || p.s[p.i] != r {
		return fmt.Errorf("%w: expected %q at offset %d", errParse, r, p.i)
	}
	p.i++
	return nil
}

// ignoreUntil advances to the next rune in chars without consuming it.
func (p *Parser) ignoreUntil(chars string) (rune, bool) {
	for p.i < len(p.s) {
		if strings.ContainsRune(chars, p.s[p.i]) {
			return p.s[p.i], true
		}
		p.i++
	}
	return 0, false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune("#-.%", r)
}

func foldCase(s string) string {
	return cases.Fold().String(s)
}

// Parse parses a style sheet without logging.
func Parse(text string) []Rule {
	return NewParser(text, nil).Parse()
}

// ParseDeclarations parses the contents of a style attribute.
func ParseDeclarations(text string) map[string]string {
	p := NewParser(text, nil)
	p.whitespace()
	return p.Body()
}
