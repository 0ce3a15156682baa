package css

import (
	_ "embed"
	"sync"
)

//go:embed default.css
var defaultStyleSheet string

var (
	defaultRules     []Rule
	defaultRulesOnce sync.Once
)

// DefaultRules returns a copy of the built-in style sheet's rules. The
// sheet is parsed once per process.
func DefaultRules() []Rule {
	defaultRulesOnce.Do(func() {
		defaultRules = Parse(defaultStyleSheet)
	})
	out := make([]Rule, len(defaultRules))
	copy(out, defaultRules)
	return out
}
