package credit

import (
	"strings"

	"credit-service/internal/domain"

	"github.com/schollz/closestmatch"
)

// UnmatchedHints lists customers that found no limits row, each with the
// closest roster name. The merge stays literal; a suggestion that differs only
// in case or spacing points at inconsistent data between the two sheets.
// closestmatch indexes its keys in lower case, so lookups use hintKey too.
func UnmatchedHints(accounts []domain.ReconciledAccount, limits []domain.CreditLimitRecord) []domain.MatchHint {
	original := make(map[string]string)
	var keys []string
	for _, l := range limits {
		key := hintKey(l.Customer)
		if key == "" {
			continue
		}
		if _, ok := original[key]; !ok {
			original[key] = l.Customer
			keys = append(keys, key)
		}
	}

	var cm *closestmatch.ClosestMatch
	if len(keys) > 0 {
		cm = closestmatch.New(keys, []int{2, 3, 4})
	}

	var hints []domain.MatchHint
	for _, a := range accounts {
		if a.HasLimit {
			continue
		}
		hint := domain.MatchHint{Customer: a.Customer}
		key := hintKey(a.Customer)
		if s, ok := original[key]; ok {
			hint.Suggestion = s
		} else if cm != nil && key != "" {
			if match := cm.Closest(key); match != "" {
				hint.Suggestion = original[match]
			}
		}
		hints = append(hints, hint)
	}
	return hints
}

func hintKey(name string) string {
	return strings.ToLower(foldName(name))
}
