package ecs

// store is the untyped view over a component table, enough for the world to
// evict components when an entity dies.
type store interface {
	removeID(id int) bool
	hasID(id int) bool
	size() int
	idAt(i int) int
}

// table is a sparse-set component store keyed by entity slot id. Dense
// slices keep iteration cache-friendly; the sparse slice maps id-1 to a
// dense index, or -1.
type table[T any] struct {
	denseIDs []int
	dense    []*T
	sparse   []int
}

func (t *table[T]) index(id int) int {
	if t == nil || id <= 0 || id-1 >= len(t.sparse) {
		return -1
	}
	idx := t.sparse[id-1]
	if idx < 0 || idx >= len(t.denseIDs) || t.denseIDs[idx] != id {
		return -1
	}
	return idx
}

func (t *table[T]) get(id int) (*T, bool) {
	idx := t.index(id)
	if idx < 0 {
		return nil, false
	}
	return t.dense[idx], true
}

func (t *table[T]) set(id int, v *T) {
	if t == nil || id <= 0 {
		return
	}
	for id-1 >= len(t.sparse) {
		t.sparse = append(t.sparse, -1)
	}
	if idx := t.index(id); idx >= 0 {
		t.dense[idx] = v
		return
	}
	t.denseIDs = append(t.denseIDs, id)
	t.dense = append(t.dense, v)
	t.sparse[id-1] = len(t.denseIDs) - 1
}

func (t *table[T]) removeID(id int) bool {
	idx := t.index(id)
	if idx < 0 {
		return false
	}
	last := len(t.denseIDs) - 1
	lastID := t.denseIDs[last]

	t.denseIDs[idx] = lastID
	t.dense[idx] = t.dense[last]
	t.sparse[lastID-1] = idx

	t.denseIDs = t.denseIDs[:last]
	t.dense = t.dense[:last]
	t.sparse[id-1] = -1
	return true
}

func (t *table[T]) hasID(id int) bool {
	return t.index(id) >= 0
}

func (t *table[T]) size() int {
	if t == nil {
		return 0
	}
	return len(t.denseIDs)
}

func (t *table[T]) idAt(i int) int {
	return t.denseIDs[i]
}
