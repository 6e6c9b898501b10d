package game

// Table is an insertion-ordered arena of entities keyed by id. Iteration
// order is the order entities were added, which keeps ties deterministic.
type Table[T any] struct {
	order []string
	items map[string]T
}

func NewTable[T any]() *Table[T] {
	return &Table[T]{items: make(map[string]T)}
}

func (t *Table[T]) Add(id string, v T) {
	if _, ok := t.items[id]; !ok {
		t.order = append(t.order, id)
	}
	t.items[id] = v
}

func (t *Table[T]) Get(id string) (T, bool) {
	v, ok := t.items[id]
	return v, ok
}

func (t *Table[T]) Remove(id string) {
	if _, ok := t.items[id]; !ok {
		return
	}
	delete(t.items, id)
	for i, o := range t.order {
		if o == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

func (t *Table[T]) Len() int { return len(t.items) }

// Each visits entities in insertion order. fn may remove entities, including
// the one being visited.
func (t *Table[T]) Each(fn func(id string, v T)) {
	ids := make([]string, len(t.order))
	copy(ids, t.order)
	for _, id := range ids {
		if v, ok := t.items[id]; ok {
			fn(id, v)
		}
	}
}

// Values returns entities in insertion order.
func (t *Table[T]) Values() []T {
	out := make([]T, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.items[id])
	}
	return out
}
