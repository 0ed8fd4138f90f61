package credit

import (
	"regexp"
	"strings"
	"unicode"

	"credit-service/internal/config"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Resolver finds sheets and columns by role from a static, ordered rule
// table. Adding a synonym is a configuration change.
type Resolver struct {
	rules map[string]config.Rule
}

// NewResolver indexes the given rule sets by role. Later rules for the same
// role replace earlier ones.
func NewResolver(ruleSets ...[]config.Rule) *Resolver {
	r := &Resolver{rules: make(map[string]config.Rule)}
	for _, rules := range ruleSets {
		for _, rule := range rules {
			r.rules[rule.Role] = rule
		}
	}
	return r
}

// Resolve returns the first name (in input order) matching the role's
// tokens, else the role's positional fallback.
func (r *Resolver) Resolve(role string, names []string) (string, bool) {
	rule, ok := r.rules[role]
	if !ok {
		return "", false
	}
	return matchRule(rule, names)
}

// ResolveSheets picks the receivables and credit-limit sheets. A limits sheet
// that would coincide with the receivables sheet is reported as absent.
func (r *Resolver) ResolveSheets(names []string) (receivables, limits string) {
	receivables, _ = r.Resolve(config.RoleReceivables, names)
	limits, _ = r.Resolve(config.RoleLimits, names)
	if limits == receivables {
		limits = ""
	}
	return receivables, limits
}

// ResolveAgentColumn picks the consultant/agent column of the limits table.
func (r *Resolver) ResolveAgentColumn(columns []string) (string, bool) {
	return r.Resolve(config.RoleAgent, columns)
}

func matchRule(rule config.Rule, names []string) (string, bool) {
	tokens := make([]string, 0, len(rule.Tokens))
	for _, tok := range rule.Tokens {
		if rule.Exact {
			tokens = append(tokens, strings.ToUpper(strings.TrimSpace(tok)))
		} else if ft := foldName(tok); ft != "" {
			tokens = append(tokens, ft)
		}
	}

	for _, name := range names {
		if rule.Exact {
			candidate := strings.ToUpper(strings.TrimSpace(name))
			for _, tok := range tokens {
				if candidate == tok {
					return name, true
				}
			}
			continue
		}
		folded := foldName(name)
		for _, tok := range tokens {
			if strings.Contains(folded, tok) {
				return name, true
			}
		}
	}

	if i, ok := rule.FallbackIndex(); ok && i < len(names) {
		return names[i], true
	}
	return "", false
}

var nonAlphanumericRegex = regexp.MustCompile(`[^A-Z0-9 ]+`)
var whitespaceRegex = regexp.MustCompile(`\s+`)

// foldName strips accents, upper-cases and collapses punctuation to spaces,
// so "Responsável_Comercial" reads as "RESPONSAVEL COMERCIAL".
func foldName(str string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(func(r rune) bool {
		return unicode.Is(unicode.Mn, r)
	}))
	result, _, _ := transform.String(t, str)
	result = strings.ToUpper(result)
	result = nonAlphanumericRegex.ReplaceAllString(result, " ")
	result = whitespaceRegex.ReplaceAllString(result, " ")
	return strings.TrimSpace(result)
}
