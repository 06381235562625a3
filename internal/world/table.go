package world

// Table is a dense component table indexed by entity id.
// Iteration follows entity creation order, which keeps runs reproducible.
type Table[T any] struct {
	ids  []EntityID
	vals []T
	pos  map[EntityID]int
}

// Set attaches or replaces the component of id.
func (t *Table[T]) Set(id EntityID, v T) {
	if t.pos == nil {
		t.pos = make(map[EntityID]int)
	}
	if i, ok := t.pos[id]; ok {
		t.vals[i] = v
		return
	}
	// Ids are handed out in increasing order, so appending keeps ids sorted.
	// Anything else goes through an ordered insert.
	i := len(t.ids)
	for i > 0 && t.ids[i-1] > id {
		i--
	}
	t.ids = append(t.ids, 0)
	t.vals = append(t.vals, v)
	copy(t.ids[i+1:], t.ids[i:])
	copy(t.vals[i+1:], t.vals[i:])
	t.ids[i] = id
	t.vals[i] = v
	for j := i; j < len(t.ids); j++ {
		t.pos[t.ids[j]] = j
	}
}

// Get returns the component of id.
func (t *Table[T]) Get(id EntityID) (T, bool) {
	i, ok := t.pos[id]
	if !ok {
		var zero T
		return zero, false
	}
	return t.vals[i], true
}

// Has reports whether id has this component.
func (t *Table[T]) Has(id EntityID) bool {
	_, ok := t.pos[id]
	return ok
}

// Delete detaches the component of id, if any.
func (t *Table[T]) Delete(id EntityID) {
	i, ok := t.pos[id]
	if !ok {
		return
	}
	delete(t.pos, id)
	t.ids = append(t.ids[:i], t.ids[i+1:]...)
	t.vals = append(t.vals[:i], t.vals[i+1:]...)
	for j := i; j < len(t.ids); j++ {
		t.pos[t.ids[j]] = j
	}
}

// Len returns the number of entities with this component.
func (t *Table[T]) Len() int { return len(t.ids) }

// Each calls fn for every (id, component) pair in id order.
// fn must not add or remove components of this table.
func (t *Table[T]) Each(fn func(EntityID, T)) {
	for i, id := range t.ids {
		fn(id, t.vals[i])
	}
}

// IDs returns a copy of the ids holding this component.
func (t *Table[T]) IDs() []EntityID {
	return append([]EntityID(nil), t.ids...)
}
