package economy

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Need is a resource threshold an agent wants covered.
// Lower priority values are satisfied first.
type Need struct {
	Name     string
	Priority int
	Pile     Pile

	// Bid multipliers applied to the last price after a successful buy
	// (usually < 1) and after a cancelled one (usually > 1).
	PriceChangeOnBuy       decimal.Decimal
	PriceChangeOnFailedBuy decimal.Decimal
}

// Resource returns the resource the need asks for.
func (n Need) Resource() Resource { return n.Pile.Resource }

// IsFulfilled reports whether the storage already covers the need.
func (n Need) IsFulfilled(s *Storage) bool {
	return s.HasAtLeast(n.Pile)
}

// NeedSet is a priority-ordered list of needs. It is fixed at agent
// creation and only read afterwards.
type NeedSet struct {
	needs []Need
}

// NewNeedSet builds a set ordered by priority; equal priorities keep
// their given order.
func NewNeedSet(needs ...Need) NeedSet {
	sorted := append([]Need(nil), needs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority < sorted[j].Priority
	})
	return NeedSet{needs: sorted}
}

// All returns the needs in priority order.
func (ns NeedSet) All() []Need {
	return ns.needs
}

// Len returns the number of needs.
func (ns NeedSet) Len() int { return len(ns.needs) }

// Unmet returns the needs the storage does not cover, in priority order.
func (ns NeedSet) Unmet(s *Storage) []Need {
	var unmet []Need
	for _, n := range ns.needs {
		if !n.IsFulfilled(s) {
			unmet = append(unmet, n)
		}
	}
	return unmet
}

// Covers reports whether any need asks for r.
func (ns NeedSet) Covers(r Resource) bool {
	for _, n := range ns.needs {
		if n.Resource() == r {
			return true
		}
	}
	return false
}
