package resource

import (
	"sync"
)

// Table owns values of one type behind integer handles. Freed handles are
// reused. Values implementing Dropper are dropped on removal and on Close.
type Table[T any] struct {
	entries   []entry[T]
	freeList  []Handle
	observers []Observer[T]
	live      int
	mu        sync.Mutex
	closed    bool
}

type entry[T any] struct {
	value T
	valid bool
}

// NewTable creates an empty table.
func NewTable[T any]() *Table[T] {
	return &Table[T]{
		entries:  make([]entry[T], 0, 16),
		freeList: make([]Handle, 0, 4),
	}
}

// Insert adds a value and returns its handle, or 0 after Close.
func (t *Table[T]) Insert(value T) Handle {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return 0
	}

	var handle Handle
	e := entry[T]{value: value, valid: true}
	if n := len(t.freeList); n > 0 {
		handle = t.freeList[n-1]
		t.freeList = t.freeList[:n-1]
		t.entries[handle-1] = e
	} else {
		t.entries = append(t.entries, e)
		handle = Handle(len(t.entries))
	}
	t.live++
	observers := t.observers
	t.mu.Unlock()

	notify(observers, Event[T]{Type: EventCreated, Handle: handle, Value: value})
	return handle
}

// Get retrieves a value by handle.
func (t *Table[T]) Get(handle Handle) (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var zero T
	if handle == 0 || int(handle) > len(t.entries) {
		return zero, false
	}
	e := t.entries[handle-1]
	if !e.valid {
		return zero, false
	}
	return e.value, true
}

// Remove drops a resource and returns (value, true) if found.
func (t *Table[T]) Remove(handle Handle) (T, bool) {
	t.mu.Lock()
	var zero T
	if handle == 0 || int(handle) > len(t.entries) || !t.entries[handle-1].valid {
		t.mu.Unlock()
		return zero, false
	}
	value := t.entries[handle-1].value
	t.entries[handle-1] = entry[T]{}
	t.freeList = append(t.freeList, handle)
	t.live--
	observers := t.observers
	t.mu.Unlock()

	drop(value)
	notify(observers, Event[T]{Type: EventDropped, Handle: handle, Value: value})
	return value, true
}

// Each calls fn for every live resource until fn returns false. The table
// is not locked while fn runs, so fn may call Remove.
func (t *Table[T]) Each(fn func(Handle, T) bool) {
	t.mu.Lock()
	type pair struct {
		value  T
		handle Handle
	}
	live := make([]pair, 0, t.live)
	for i, e := range t.entries {
		if e.valid {
			live = append(live, pair{handle: Handle(i + 1), value: e.value})
		}
	}
	t.mu.Unlock()

	for _, p := range live {
		if !fn(p.handle, p.value) {
			return
		}
	}
}

// Subscribe adds an observer for lifecycle events.
func (t *Table[T]) Subscribe(o Observer[T]) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.observers = append(t.observers[:len(t.observers):len(t.observers)], o)
}

// Len returns the number of live resources.
func (t *Table[T]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.live
}

// Clear drops all resources and keeps the table open.
func (t *Table[T]) Clear() {
	t.Each(func(h Handle, _ T) bool {
		t.Remove(h)
		return true
	})
}

// Close drops all resources and stops accepting inserts.
func (t *Table[T]) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.mu.Unlock()

	t.Clear()
	return nil
}

func drop(v any) {
	if d, ok := v.(Dropper); ok {
		d.Drop()
	}
}

func notify[T any](observers []Observer[T], e Event[T]) {
	for _, o := range observers {
		o.OnResourceEvent(e)
	}
}
