// Package seq implements the pull-based lazy sequence threaded through every
// search stage (spec.md §5: "one logical consumer advances it... There is
// no background fan-out"). It generalizes the teacher's ForEach-over-a-map
// iteration style (services/signaling/store/ttlstore.go's
// TTLStore.ForEach, which stops early when its callback returns false) into
// a closure-based, element-at-a-time iterator that can represent an
// unbounded, lazily-produced stream and can terminate with an error.
package seq

// Sequence is a pull-based lazy stream of T. Each call to Next advances the
// stream and returns the next element, or ok=false when exhausted, or a
// non-nil error if the underlying source failed (spec.md §4.2: "Failures
// are surfaced as a terminal error on the sequence").
type Sequence[T any] struct {
	next  func() (T, bool, error)
	close func()
}

// New wraps a pull function as a Sequence.
func New[T any](next func() (T, bool, error)) *Sequence[T] {
	return &Sequence[T]{next: next}
}

// WithClose attaches a cleanup function invoked by Close. Used by adapters
// that hold a connection or a background cursor that must be released
// promptly on cancellation (spec.md §5).
func (s *Sequence[T]) WithClose(fn func()) *Sequence[T] {
	s.close = fn
	return s
}

// Next advances the sequence.
func (s *Sequence[T]) Next() (T, bool, error) {
	return s.next()
}

// Close releases any resources held by the sequence. Safe to call multiple
// times and safe to call on a Sequence with no attached close function.
func (s *Sequence[T]) Close() {
	if s != nil && s.close != nil {
		s.close()
	}
}

// Empty returns a Sequence with no elements.
func Empty[T any]() *Sequence[T] {
	return New(func() (T, bool, error) {
		var zero T
		return zero, false, nil
	})
}

// Fail returns a Sequence whose first Next call fails with err.
func Fail[T any](err error) *Sequence[T] {
	done := false
	return New(func() (T, bool, error) {
		var zero T
		if done {
			return zero, false, nil
		}
		done = true
		return zero, false, err
	})
}

// FromSlice returns a Sequence yielding the elements of items in order.
func FromSlice[T any](items []T) *Sequence[T] {
	i := 0
	return New(func() (T, bool, error) {
		if i >= len(items) {
			var zero T
			return zero, false, nil
		}
		v := items[i]
		i++
		return v, true, nil
	})
}

// Map transforms each element of s with fn, lazily.
func Map[T, U any](s *Sequence[T], fn func(T) (U, error)) *Sequence[U] {
	out := New(func() (U, bool, error) {
		v, ok, err := s.Next()
		if err != nil || !ok {
			var zero U
			return zero, false, err
		}
		u, err := fn(v)
		if err != nil {
			var zero U
			return zero, false, err
		}
		return u, true, nil
	})
	return out.WithClose(func() { s.Close() })
}

// Filter yields only the elements of s for which keep returns true.
func Filter[T any](s *Sequence[T], keep func(T) bool) *Sequence[T] {
	out := New(func() (T, bool, error) {
		for {
			v, ok, err := s.Next()
			if err != nil || !ok {
				var zero T
				return zero, false, err
			}
			if keep(v) {
				return v, true, nil
			}
		}
	})
	return out.WithClose(func() { s.Close() })
}

// Collect drains s into a slice. Intended for tests and the demo CLI; core
// stages never call it, since the whole point is to avoid materializing the
// stream.
func Collect[T any](s *Sequence[T]) ([]T, error) {
	defer s.Close()
	var out []T
	for {
		v, ok, err := s.Next()
		if err != nil {
			return out, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, v)
	}
}
