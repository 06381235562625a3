package economy

import (
	"fmt"
	"sort"
	"strings"
)

// Storage holds resource amounts with optional per-resource limits.
// Resources without a limit are unbounded.
type Storage struct {
	amounts [NumResources]float64
	limits  map[Resource]float64
}

// NewStorage returns an empty, unbounded storage.
func NewStorage() *Storage {
	return &Storage{limits: make(map[Resource]float64)}
}

// SetLimit caps how much of p.Resource the storage may hold.
func (s *Storage) SetLimit(p Pile) {
	if s.limits == nil {
		s.limits = make(map[Resource]float64)
	}
	s.limits[p.Resource] = p.Amount
}

// Amount returns the stored amount of r.
func (s *Storage) Amount(r Resource) float64 {
	return s.amounts[r]
}

// HasAtLeast reports whether p is covered. The Nothing pile always is.
func (s *Storage) HasAtLeast(p Pile) bool {
	if p.IsNothing() {
		return true
	}
	return s.amounts[p.Resource] >= p.Amount
}

// HasOne reports whether at least one unit of r is stored.
func (s *Storage) HasOne(r Resource) bool {
	return s.HasAtLeast(One(r))
}

// WillFit reports whether p can be added without breaking a limit.
func (s *Storage) WillFit(p Pile) bool {
	limit, ok := s.limits[p.Resource]
	if !ok {
		return true
	}
	return s.amounts[p.Resource]+p.Amount <= limit
}

// Add stores p, failing with ErrStorageFull above the limit.
func (s *Storage) Add(p Pile) error {
	if !s.WillFit(p) {
		return fmt.Errorf("%w: adding %s to %g (limit %g)", ErrStorageFull, p, s.amounts[p.Resource], s.limits[p.Resource])
	}
	s.amounts[p.Resource] += p.Amount
	return nil
}

// AddOne stores a single unit of r.
func (s *Storage) AddOne(r Resource) error {
	return s.Add(One(r))
}

// Restore puts back one unit that was locked out of this storage earlier.
// Limits are not applied since the unit was already held.
func (s *Storage) Restore(r Resource) {
	s.amounts[r]++
}

// Remove takes p out, failing with ErrInsufficientResources.
func (s *Storage) Remove(p Pile) error {
	if p.IsNothing() {
		return nil
	}
	if s.amounts[p.Resource] < p.Amount {
		return fmt.Errorf("%w: removing %s from %g", ErrInsufficientResources, p, s.amounts[p.Resource])
	}
	s.amounts[p.Resource] -= p.Amount
	return nil
}

// RemoveOne takes a single unit of r out.
func (s *Storage) RemoveOne(r Resource) error {
	return s.Remove(One(r))
}

// AddAll moves every stored resource of other into s, ignoring limits,
// and empties other.
func (s *Storage) AddAll(other *Storage) {
	for r, amount := range other.amounts {
		s.amounts[r] += amount
		other.amounts[r] = 0
	}
}

func (s *Storage) String() string {
	var parts []string
	for r, amount := range s.amounts {
		if amount > 0 {
			parts = append(parts, fmt.Sprintf("%s: %g", Resource(r), amount))
		}
	}
	sort.Strings(parts)
	return "{" + strings.Join(parts, ", ") + "}"
}
