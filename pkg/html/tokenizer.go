package html

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

type TokenType int

const (
	TokenText TokenType = iota
	TokenTag
	TokenComment
)

// Token is a run of text outside tags, or the raw body of a tag (the
// characters between '<' and '>').
type Token struct {
	Type TokenType
	Text string
}

// Tokenizer splits markup into text and tag tokens with a single left to
// right scan.
type Tokenizer struct {
	input []rune
	pos   int
}

func NewTokenizer(markup string) *Tokenizer {
	return &Tokenizer{input: []rune(markup)}
}

// NextToken returns the next token, or false at end of input. A tag left
// open at end of input is dropped.
func (t *Tokenizer) NextToken() (Token, bool) {
	if t.pos >= len(t.input) {
		return Token{}, false
	}
	if t.input[t.pos] == '<' {
		t.pos++
		return t.readTag()
	}
	return t.readText(), true
}

func (t *Tokenizer) readText() Token {
	start := t.pos
	for t.pos < len(t.input) && t.input[t.pos] != '<' {
		t.pos++
	}
	return Token{Type: TokenText, Text: string(t.input[start:t.pos])}
}

func (t *Tokenizer) readTag() (Token, bool) {
	// <!-- comments --> may contain '>'
	if t.hasPrefix("!--") {
		t.pos += 3
		for t.pos < len(t.input) {
			if t.hasPrefix("-->") {
				t.pos += 3
				return Token{Type: TokenComment}, true
			}
			t.pos++
		}
		return Token{}, false
	}

	start := t.pos
	var quote, last rune
	for t.pos < len(t.input) {
		c := t.input[t.pos]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case (c == '"' || c == '\'') && last == '=':
			quote = c
		case c == '>':
			body := string(t.input[start:t.pos])
			t.pos++
			return Token{Type: TokenTag, Text: body}, true
		}
		if !unicode.IsSpace(c) {
			last = c
		}
		t.pos++
	}
	if quote == 0 {
		return Token{}, false
	}
	// An unclosed quote: end the tag at the first '>' instead.
	for t.pos = start; t.pos < len(t.input); t.pos++ {
		if t.input[t.pos] == '>' {
			body := string(t.input[start:t.pos])
			t.pos++
			return Token{Type: TokenTag, Text: body}, true
		}
	}
	return Token{}, false
}

func (t *Tokenizer) hasPrefix(s string) bool {
	r := []rune(s)
	if t.pos+len(r) > len(t.input) {
		return false
	}
	for i, c := range r {
		if t.input[t.pos+i] != c {
			return false
		}
	}
	return true
}

// parseTagBody splits a tag body into its case-folded name and attributes.
// It returns false for an empty body.
func parseTagBody(body string) (string, map[string]string, bool) {
	body = strings.TrimSpace(body)
	// XHTML self-closing syntax: <br/>
	if len(body) > 1 && strings.HasSuffix(body, "/") {
		body = strings.TrimSpace(strings.TrimSuffix(body, "/"))
	}
	parts := splitAttributes(body)
	if len(parts) == 0 {
		return "", nil, false
	}
	tag := foldCase(parts[0])
	attributes := make(map[string]string, len(parts)-1)
	for _, pair := range parts[1:] {
		key, value, found := strings.Cut(pair, "=")
		if key == "" {
			continue
		}
		if !found {
			attributes[foldCase(pair)] = ""
			continue
		}
		attributes[foldCase(key)] = unquote(value)
	}
	return tag, attributes, true
}

// splitAttributes splits on whitespace, keeping quoted attribute values
// (name="a b") in one piece. Whitespace around the '=' of an attribute
// (name = "a b") does not split.
func splitAttributes(s string) []string {
	var (
		parts []string
		cur   strings.Builder
		quote rune
		prev  rune
	)
	flush := func() {
		if cur.Len() > 0 {
			parts = append(parts, cur.String())
			cur.Reset()
		}
	}
	rs := []rune(s)
	for i, r := range rs {
		switch {
		case quote != 0:
			cur.WriteRune(r)
			if r == quote {
				quote = 0
			}
		case (r == '"' || r == '\'') && prev == '=':
			quote = r
			cur.WriteRune(r)
		case unicode.IsSpace(r):
			if len(parts) > 0 && (prev == '=' || nextNonSpace(rs, i) == '=') {
				continue
			}
			flush()
		default:
			cur.WriteRune(r)
		}
		prev = r
	}
	flush()
	return parts
}

func nextNonSpace(rs []rune, i int) rune {
	for ; i < len(rs); i++ {
		if !unicode.IsSpace(rs[i]) {
			return rs[i]
		}
	}
	return 0
}

// unquote strips one layer of matching quotes.
func unquote(value string) string {
	r := []rune(value)
	if len(r) >= 2 && (r[0] == '"' || r[0] == '\'') && r[len(r)-1] == r[0] {
		return string(r[1 : len(r)-1])
	}
	return value
}

func foldCase(s string) string {
	return cases.Fold().String(s)
}
