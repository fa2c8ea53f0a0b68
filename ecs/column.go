package ecs

import (
	"reflect"
	"sync/atomic"
	"unsafe"
)

// channel is a type-erased column of one component type. All channels of an
// archetype have the same length and row i of every channel belongs to the
// same entity.
type channel interface {
	Len() int
	Type() reflect.Type

	// Push appends a value given as T or *T. It reports false on a type mismatch.
	Push(value any) bool
	// Get returns a *T for row.
	Get(row int) any
	Pointer(row int) unsafe.Pointer
	// Take returns the value at row as T and swap-removes it.
	Take(row int) any
	SwapRemove(row int)
	// MoveRow appends row to dst, which must have the same element type, and
	// swap-removes it from the receiver.
	MoveRow(row int, dst channel)
	// CloneRow appends a copy of row to dst, rewriting entity references when
	// the component implements EntityRemapper.
	CloneRow(row int, dst channel, remap func(Entity) Entity)
	NewEmpty() channel

	borrows() *borrowFlag
}

// borrowFlag tracks runtime borrows of a column: a positive value counts
// shared borrows, -1 marks an exclusive borrow.
type borrowFlag struct {
	state atomic.Int32
}

func (b *borrowFlag) acquireShared() bool {
	for {
		s := b.state.Load()
		if s < 0 {
			return false
		}
		if b.state.CompareAndSwap(s, s+1) {
			return true
		}
	}
}

func (b *borrowFlag) acquireExclusive() bool {
	return b.state.CompareAndSwap(0, -1)
}

// exclusive reports whether an exclusive borrow is held.
func (b *borrowFlag) exclusive() bool {
	return b.state.Load() < 0
}

// available reports whether a borrow of the given kind could be taken now,
// without taking it.
func (b *borrowFlag) available(read bool) bool {
	s := b.state.Load()
	if read {
		return s >= 0
	}
	return s == 0
}

func (b *borrowFlag) releaseShared() {
	b.state.Add(-1)
}

func (b *borrowFlag) releaseExclusive() {
	b.state.Store(0)
}

// column is the generic channel implementation, one per component type.
type column[T any] struct {
	data   []T
	typ    reflect.Type
	borrow borrowFlag
}

func newColumn[T any](capacity int) *column[T] {
	return &column[T]{
		data: make([]T, 0, capacity),
		typ:  reflect.TypeFor[T](),
	}
}

func (c *column[T]) Len() int           { return len(c.data) }
func (c *column[T]) Type() reflect.Type { return c.typ }
func (c *column[T]) borrows() *borrowFlag {
	return &c.borrow
}

func (c *column[T]) Push(value any) bool {
	switch v := value.(type) {
	case T:
		c.data = append(c.data, v)
	case *T:
		c.data = append(c.data, *v)
	default:
		return false
	}
	return true
}

func (c *column[T]) Get(row int) any {
	return &c.data[row]
}

func (c *column[T]) Pointer(row int) unsafe.Pointer {
	return unsafe.Pointer(&c.data[row])
}

func (c *column[T]) Take(row int) any {
	v := c.data[row]
	c.SwapRemove(row)
	return v
}

func (c *column[T]) SwapRemove(row int) {
	last := len(c.data) - 1
	if row != last {
		c.data[row] = c.data[last]
	}
	var zero T
	c.data[last] = zero
	c.data = c.data[:last]
}

func (c *column[T]) MoveRow(row int, dst channel) {
	d := dst.(*column[T])
	d.data = append(d.data, c.data[row])
	c.SwapRemove(row)
}

func (c *column[T]) CloneRow(row int, dst channel, remap func(Entity) Entity) {
	d := dst.(*column[T])
	v := c.data[row]
	if r, ok := any(&v).(EntityRemapper); ok {
		r.RemapEntities(remap)
	}
	d.data = append(d.data, v)
}

func (c *column[T]) NewEmpty() channel {
	return newColumn[T](0)
}
