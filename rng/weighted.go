package rng

// Weighted pairs an item with its selection weight.
type Weighted[T any] struct {
	Item   T
	Weight float64
}

// TotalWeight sums the positive weights of entries.
func TotalWeight[T any](entries []Weighted[T]) float64 {
	total := 0.0
	for _, e := range entries {
		if e.Weight > 0 {
			total += e.Weight
		}
	}
	return total
}

// Select picks the entry whose cumulative weight range contains draw, where
// draw is expected in [0, TotalWeight). Non-positive weights are never
// selected. Returns false for an empty or all-zero table.
func Select[T any](entries []Weighted[T], draw float64) (T, bool) {
	var zero T
	last := -1
	upto := 0.0
	for i, e := range entries {
		if e.Weight <= 0 {
			continue
		}
		last = i
		upto += e.Weight
		if draw < upto {
			return e.Item, true
		}
	}
	if last < 0 {
		return zero, false
	}
	// draw at or past the total lands on the last selectable entry
	return entries[last].Item, true
}

// Pick draws uniformly from the table's total weight and selects by it.
func Pick[T any](r *RNG, entries []Weighted[T]) (T, bool) {
	return Select(entries, r.Float64()*TotalWeight(entries))
}
