package seq

// Merge performs a k-way merge of already-sorted sequences into one sorted
// sequence, per spec.md §4.5: pull one head per source, emit the minimum,
// advance; terminate when every source is exhausted; stable on ties
// (earlier source wins).
//
// less must be a strict weak ordering consistent with each source's own
// order (e.g. by started_at for RTPR documents).
func Merge[T any](less func(a, b T) bool, sources ...*Sequence[T]) *Sequence[T] {
	heads := make([]T, len(sources))
	have := make([]bool, len(sources))
	done := false

	fill := func(i int) error {
		if have[i] {
			return nil
		}
		v, ok, err := sources[i].Next()
		if err != nil {
			return err
		}
		if ok {
			heads[i] = v
			have[i] = true
		}
		return nil
	}

	next := func() (T, bool, error) {
		var zero T
		if done {
			return zero, false, nil
		}
		for i := range sources {
			if err := fill(i); err != nil {
				done = true
				return zero, false, err
			}
		}
		minIdx := -1
		for i, ok := range have {
			if !ok {
				continue
			}
			if minIdx == -1 || less(heads[i], heads[minIdx]) {
				minIdx = i
			}
		}
		if minIdx == -1 {
			done = true
			return zero, false, nil
		}
		v := heads[minIdx]
		have[minIdx] = false
		return v, true, nil
	}

	return New(next).WithClose(func() {
		for _, s := range sources {
			s.Close()
		}
	})
}
