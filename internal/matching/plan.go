package matching

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/garmentz-backend/internal/quotes"
	"github.com/angelmondragon/garmentz-backend/internal/suppliers"
)

// Allocation is the planner's pick for one quote. Match is nil when the pool
// was empty.
type Allocation struct {
	Quote quotes.QuoteView `json:"quote"`
	Match *Match           `json:"match,omitempty"`
}

// Plan picks a supplier for each quote in order. Each pick reserves one unit of
// the chosen supplier's workload so later quotes in the same pass see it. The
// caller's pool is not modified.
func Plan(demand []quotes.QuoteView, pool []suppliers.SupplierView) []Allocation {
	working := make([]suppliers.SupplierView, len(pool))
	copy(working, pool)
	index := make(map[uuid.UUID]int, len(working))
	for i, supplier := range working {
		index[supplier.ID] = i
	}

	allocations := make([]Allocation, 0, len(demand))
	for _, quote := range demand {
		best, err := Best(quote, working)
		if err != nil {
			allocations = append(allocations, Allocation{Quote: quote})
			continue
		}
		picked := best
		allocations = append(allocations, Allocation{Quote: quote, Match: &picked})

		reserved := &working[index[best.Supplier.ID]]
		reserved.CurrentWorkload++
	}
	return allocations
}
