package reactive

import (
	"reflect"
)

// Signal is a typed reactive value container bound to a Store.
// Reading a Signal's value while a computation is executing (memo body,
// effect body, or component render) records a dependency edge, so the
// computation re-runs when the value changes.
type Signal[T any] struct {
	store *Store
	id    SignalID

	// equal determines whether a write actually changed the value.
	// If nil, defaultEquals is used.
	equal func(T, T) bool
}

// NewSignal creates a signal with the given initial value. The signal
// belongs to the current owner scope, if one is active, and is disposed
// with it.
func NewSignal[T any](store *Store, initial T) *Signal[T] {
	s := &Signal[T]{
		store: store,
		id:    store.CreateSignal(initial),
	}
	if o := store.currentOwner; o != nil {
		o.adoptSignal(s.id)
	}
	return s
}

// Get returns the current value, recording a dependency for the tracking
// computation. A rejected cyclic edge or disposed signal is reported
// through the store's callbacks and the zero/last-known value is returned;
// use TryGet when the caller needs the failure.
func (s *Signal[T]) Get() T {
	v, _, err := s.store.ReadSignal(s.id)
	if err != nil && err != ErrCyclicDependency {
		var zero T
		return zero
	}
	if v == nil {
		var zero T
		return zero
	}
	return v.(T)
}

// TryGet returns the current value and version, with any read failure.
func (s *Signal[T]) TryGet() (T, uint64, error) {
	v, ver, err := s.store.ReadSignal(s.id)
	if err != nil && err != ErrCyclicDependency {
		var zero T
		return zero, 0, err
	}
	return v.(T), ver, err
}

// Peek returns the current value without recording a dependency.
func (s *Signal[T]) Peek() T {
	v, _, err := s.store.PeekSignal(s.id)
	if err != nil {
		var zero T
		return zero
	}
	return v.(T)
}

// Set replaces the value and marks subscribers dirty. Writes with a value
// equal to the current one are discarded without bumping the version.
// Setting a disposed signal fails with ErrDisposedSignal.
func (s *Signal[T]) Set(value T) error {
	cur, _, err := s.store.PeekSignal(s.id)
	if err != nil {
		return err
	}
	if s.equals(cur.(T), value) {
		return nil
	}
	return s.store.WriteSignal(s.id, value)
}

// Update atomically reads and replaces the value.
func (s *Signal[T]) Update(fn func(T) T) error {
	cur, _, err := s.store.PeekSignal(s.id)
	if err != nil {
		return err
	}
	return s.Set(fn(cur.(T)))
}

// Dispose removes the signal and severs all subscription edges.
func (s *Signal[T]) Dispose() {
	s.store.DisposeSignal(s.id)
}

// WithEquals configures a custom equality function for change detection.
func (s *Signal[T]) WithEquals(fn func(T, T) bool) *Signal[T] {
	s.equal = fn
	return s
}

// ID returns the signal's identity within its store.
func (s *Signal[T]) ID() SignalID {
	return s.id
}

// Version returns the signal's current version counter.
func (s *Signal[T]) Version() uint64 {
	ver, _ := s.store.SignalVersion(s.id)
	return ver
}

func (s *Signal[T]) equals(a, b T) bool {
	if s.equal != nil {
		return s.equal(a, b)
	}
	return defaultEquals(a, b)
}

// defaultEquals provides type-appropriate equality checking.
// Uses == for common comparable types and reflect.DeepEqual for others.
func defaultEquals[T any](a, b T) bool {
	switch av := any(a).(type) {
	case int:
		return av == any(b).(int)
	case int8:
		return av == any(b).(int8)
	case int16:
		return av == any(b).(int16)
	case int32:
		return av == any(b).(int32)
	case int64:
		return av == any(b).(int64)
	case uint:
		return av == any(b).(uint)
	case uint8:
		return av == any(b).(uint8)
	case uint16:
		return av == any(b).(uint16)
	case uint32:
		return av == any(b).(uint32)
	case uint64:
		return av == any(b).(uint64)
	case float32:
		return av == any(b).(float32)
	case float64:
		return av == any(b).(float64)
	case string:
		return av == any(b).(string)
	case bool:
		return av == any(b).(bool)
	default:
		return reflect.DeepEqual(a, b)
	}
}
