package pool

import "sync"

// SlicePool reuses typed slices between calls.
type SlicePool[T any] struct {
	pool sync.Pool
}

// NewSlicePool creates an empty pool.
func NewSlicePool[T any]() *SlicePool[T] {
	return &SlicePool[T]{
		pool: sync.Pool{
			New: func() any { return &[]T{} },
		},
	}
}

// Get retrieves a slice of exactly size elements. Elements are not zeroed.
// The caller must call the returned cleanup function to return the slice to the pool.
//
// Example:
//
//	xs, cleanup := pool.GetFloat64Slice(len(points))
//	defer cleanup()
func (p *SlicePool[T]) Get(size int) ([]T, func()) {
	ptr, _ := p.pool.Get().(*[]T)

	if cap(*ptr) < size {
		*ptr = make([]T, size)
	} else {
		*ptr = (*ptr)[:size]
	}

	return *ptr, func() { p.pool.Put(ptr) }
}

var float64SlicePool = NewSlicePool[float64]()

// GetFloat64Slice retrieves a float64 slice of exactly size elements from the shared pool.
func GetFloat64Slice(size int) ([]float64, func()) {
	return float64SlicePool.Get(size)
}
