package derive

import (
	"cmp"
	"slices"
	"sync"
	"time"
)

// Selection is a set of selected keys, as used for bulk actions on a list.
type Selection[K cmp.Ordered] struct {
	keys map[K]struct{}
}

func NewSelection[K cmp.Ordered]() *Selection[K] {
	return &Selection[K]{keys: make(map[K]struct{})}
}

// Toggle flips k and reports whether it is now selected.
func (s *Selection[K]) Toggle(k K) bool {
	if _, ok := s.keys[k]; ok {
		delete(s.keys, k)
		return false
	}
	s.keys[k] = struct{}{}
	return true
}

func (s *Selection[K]) Has(k K) bool {
	_, ok := s.keys[k]
	return ok
}

// Keys returns the selected keys in ascending order.
func (s *Selection[K]) Keys() []K {
	out := make([]K, 0, len(s.keys))
	for k := range s.keys {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Next advances a carousel index, wrapping at n.
func Next(i, n int) int {
	if n <= 0 {
		return 0
	}
	return ((i+1)%n + n) % n
}

// Prev moves a carousel index back, wrapping at 0.
func Prev(i, n int) int {
	if n <= 0 {
		return 0
	}
	return ((i-1)%n + n) % n
}

// DefaultDebounce is the quiet period search inputs wait for.
const DefaultDebounce = 500 * time.Millisecond

// Debouncer delivers only the last value triggered within a quiet period.
type Debouncer[T any] struct {
	delay time.Duration
	fn    func(T)

	mu    sync.Mutex
	timer *time.Timer
}

func NewDebouncer[T any](delay time.Duration, fn func(T)) *Debouncer[T] {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer[T]{delay: delay, fn: fn}
}

// Trigger schedules fn(v), replacing any pending value.
func (d *Debouncer[T]) Trigger(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() { d.fn(v) })
}

// Stop drops the pending value, if any.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
