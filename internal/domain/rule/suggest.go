package rule

import (
	"strings"

	"github.com/bank-reconciliation-engine/internal/domain/banktxn"
)

var commonWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "to": {}, "from": {}, "for": {},
	"of": {}, "in": {}, "on": {}, "at": {}, "by": {},
}

const suggestionFallbackLength = 20

// Suggest derives draft rule params from a transaction: the first distinctive description word
// becomes a CONTAINS pattern restricted to the transaction's direction.
func Suggest(txn *banktxn.Transaction) (Params, error) {
	direction, err := txn.Direction()
	if err != nil {
		return Params{}, err
	}

	pattern := ""
	for _, word := range strings.Fields(txn.Description) {
		if _, common := commonWords[strings.ToLower(word)]; common {
			continue
		}
		if len(word) > 3 {
			pattern = word
			break
		}
	}
	if pattern == "" {
		pattern = strings.TrimSpace(txn.Description)
		if runes := []rune(pattern); len(runes) > suggestionFallbackLength {
			pattern = strings.TrimSpace(string(runes[:suggestionFallbackLength]))
		}
	}
	if pattern == "" {
		return Params{}, RuleConflictError{Field: "pattern", Reason: "transaction has no description to derive a pattern from"}
	}

	return Params{
		Name:       "Rule for " + pattern,
		Pattern:    pattern,
		MatchField: MatchFieldDescription,
		MatchType:  MatchTypeContains,
		Direction:  direction,
		Active:     true,
	}, nil
}
