package matching

import (
	"errors"
	"sort"

	"github.com/angelmondragon/garmentz-backend/internal/quotes"
	"github.com/angelmondragon/garmentz-backend/internal/suppliers"
)

// DefaultTopK is how many candidates the admin surface shows per quote.
const DefaultTopK = 5

// ErrNoCandidates is returned when a quote has no supplier to pick from.
var ErrNoCandidates = errors.New("no suitable suppliers found")

// Rank scores every supplier and orders them by descending score. Ties keep
// the order the suppliers were loaded in.
func Rank(quote quotes.QuoteView, pool []suppliers.SupplierView) []Match {
	matches := make([]Match, 0, len(pool))
	for _, supplier := range pool {
		matches = append(matches, Score(quote, supplier))
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}

// Top returns at most k ranked matches; k <= 0 falls back to DefaultTopK.
func Top(quote quotes.QuoteView, pool []suppliers.SupplierView, k int) []Match {
	if k <= 0 {
		k = DefaultTopK
	}
	ranked := Rank(quote, pool)
	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}

// Best returns the rank-1 match.
func Best(quote quotes.QuoteView, pool []suppliers.SupplierView) (Match, error) {
	ranked := Rank(quote, pool)
	if len(ranked) == 0 {
		return Match{}, ErrNoCandidates
	}
	return ranked[0], nil
}
