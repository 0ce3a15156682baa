package html

import "testing"

func TestTokenizer_TextThenTag(t *testing.T) {
	tokenizer := NewTokenizer("Hello<div>")
	token, ok := tokenizer.NextToken()
	if !ok || token.Type != TokenText || token.Text != "Hello" {
		t.Fatalf("expected text 'Hello', got %+v", token)
	}
	token, ok = tokenizer.NextToken()
	if !ok || token.Type != TokenTag || token.Text != "div" {
		t.Fatalf("expected tag 'div', got %+v", token)
	}
	if _, ok := tokenizer.NextToken(); ok {
		t.Error("expected end of input")
	}
}

func TestTokenizer_QuotedGreaterThan(t *testing.T) {
	tokenizer := NewTokenizer(`<a title="1 > 0">x`)
	token, _ := tokenizer.NextToken()
	if token.Text != `a title="1 > 0"` {
		t.Errorf("expected quoted '>' to stay in the tag body, got %q", token.Text)
	}
}

func TestTokenizer_Comment(t *testing.T) {
	tokenizer := NewTokenizer("<!-- a > b -->c")
	token, _ := tokenizer.NextToken()
	if token.Type != TokenComment {
		t.Errorf("expected comment, got %+v", token)
	}
	token, _ = tokenizer.NextToken()
	if token.Type != TokenText || token.Text != "c" {
		t.Errorf("expected text 'c', got %+v", token)
	}
}

func TestTokenizer_UnterminatedTagDropped(t *testing.T) {
	tokenizer := NewTokenizer("a<div class=x")
	tokenizer.NextToken()
	if token, ok := tokenizer.NextToken(); ok {
		t.Errorf("expected unterminated tag to be dropped, got %+v", token)
	}
}

func TestParseTagBody(t *testing.T) {
	tag, attrs, ok := parseTagBody(`INPUT Name=q value="a b" data-x='y' disabled`)
	if !ok {
		t.Fatal("expected tag body to parse")
	}
	if tag != "input" {
		t.Errorf("expected tag 'input', got %q", tag)
	}
	want := map[string]string{"name": "q", "value": "a b", "data-x": "y", "disabled": ""}
	for k, v := range want {
		if attrs[k] != v {
			t.Errorf("attribute %s: expected %q, got %q", k, v, attrs[k])
		}
	}
}

func TestParseTagBody_Empty(t *testing.T) {
	if _, _, ok := parseTagBody("   "); ok {
		t.Error("expected empty tag body to be rejected")
	}
}

func TestParseTagBody_SelfClosingSlash(t *testing.T) {
	tag, _, _ := parseTagBody("br/")
	if tag != "br" {
		t.Errorf("expected 'br', got %q", tag)
	}
}

func TestUnquote(t *testing.T) {
	cases := map[string]string{
		`"red"`: "red",
		`'red'`: "red",
		`""`:    "",
		`"red'`: `"red'`,
		`"`:     `"`,
		`red`:   "red",
	}
	for in, want := range cases {
		if got := unquote(in); got != want {
			t.Errorf("unquote(%s) = %q, want %q", in, got, want)
		}
	}
}

func TestTokenizer_UnclosedQuoteEndsAtFirstGreaterThan(t *testing.T) {
	tokenizer := NewTokenizer(`<a href="oops>link</a>`)
	token, ok := tokenizer.NextToken()
	if !ok || token.Type != TokenTag || token.Text != `a href="oops` {
		t.Fatalf("expected tag 'a href=\"oops', got %+v (ok=%v)", token, ok)
	}
	token, ok = tokenizer.NextToken()
	if !ok || token.Type != TokenText || token.Text != "link" {
		t.Errorf("expected text 'link', got %+v", token)
	}
}

func TestTokenizer_QuoteAfterSpacedEquals(t *testing.T) {
	tokenizer := NewTokenizer(`<a title = "1 > 0">x`)
	token, _ := tokenizer.NextToken()
	if token.Text != `a title = "1 > 0"` {
		t.Errorf("expected quoted '>' to stay in the tag body, got %q", token.Text)
	}
}

func TestParseTagBody_SpacesAroundEquals(t *testing.T) {
	_, attrs, _ := parseTagBody(`p title = "a b" lang= en data-x =y`)
	want := map[string]string{"title": "a b", "lang": "en", "data-x": "y"}
	if len(attrs) != len(want) {
		t.Fatalf("expected %d attributes, got %v", len(want), attrs)
	}
	for k, v := range want {
		if attrs[k] != v {
			t.Errorf("attribute %s: expected %q, got %q", k, v, attrs[k])
		}
	}
}

func TestParseTagBody_NoEmptyAttributeName(t *testing.T) {
	_, attrs, _ := parseTagBody(`p = x ="y"`)
	if _, ok := attrs[""]; ok {
		t.Errorf("expected no attribute with an empty name, got %v", attrs)
	}
}
