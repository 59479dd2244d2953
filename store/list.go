package store

import (
	"encoding/json"

	"go-drummer/debug"
	"go-drummer/failure"
)

// List is a capped list of items persisted as one JSON array. When the
// backing store fails the list keeps working in memory.
type List[T any] struct {
	st       Store
	key      string
	max      int
	what     string
	items    []T
	degraded bool
}

// OpenList loads the list stored under key. what names the items in user
// messages ("melodies").
func OpenList[T any](st Store, key, what string, max int) *List[T] {
	l := &List[T]{st: st, key: key, max: max, what: what}
	data, err := st.Load(key)
	if err != nil {
		debug.Log("store", "load %s: %v (memory only)", key, err)
		l.degraded = true
		return l
	}
	if data == nil {
		return l
	}
	if err := json.Unmarshal(data, &l.items); err != nil {
		debug.Log("store", "decode %s: %v (starting empty)", key, err)
		l.items = nil
	}
	if len(l.items) > max {
		l.items = l.items[:max]
	}
	return l
}

// Items returns a copy of the list.
func (l *List[T]) Items() []T {
	return append([]T(nil), l.items...)
}

// Len returns the item count.
func (l *List[T]) Len() int { return len(l.items) }

// Max returns the capacity.
func (l *List[T]) Max() int { return l.max }

// Full reports whether Add would be rejected.
func (l *List[T]) Full() bool { return len(l.items) >= l.max }

// Degraded reports whether the list lives only in memory.
func (l *List[T]) Degraded() bool { return l.degraded }

// Add appends v. A full list rejects it with a failure.Full error. A
// failure.Storage error means v was kept in memory but not persisted.
func (l *List[T]) Add(v T) error {
	if l.Full() {
		return failure.AtCapacity(l.what, l.max)
	}
	l.items = append(l.items, v)
	return l.persist()
}

// Remove deletes the item at i.
func (l *List[T]) Remove(i int) error {
	if i < 0 || i >= len(l.items) {
		return nil
	}
	l.items = append(l.items[:i], l.items[i+1:]...)
	return l.persist()
}

func (l *List[T]) persist() error {
	if l.degraded {
		return nil
	}
	data, err := json.MarshalIndent(l.items, "", "  ")
	if err == nil {
		err = l.st.Save(l.key, data)
	}
	if err != nil {
		l.degraded = true
		debug.Log("store", "save %s: %v (memory only)", l.key, err)
		return failure.StorageFailed(err, "Saved in memory only")
	}
	return nil
}
