package evring

import (
	"sync"
)

// RingBuffer is a fixed-size collection of recent items. Adding to a full
// buffer overwrites the oldest item, so the buffer is a pure recency cache.
type RingBuffer[T any] struct {
	mtx sync.Mutex
	buf []T // fully allocated at construction
	cur int // index for next write, walk backwards to read
	len int // count of actual values
}

// NewRingBuffer returns an empty ring buffer of items, pre-allocated with the
// given capacity.
func NewRingBuffer[T any](cap int) *RingBuffer[T] {
	return &RingBuffer[T]{
		buf: make([]T, cap),
	}
}

// Add the value to the ring buffer. If the ring buffer was full and an item
// was overwritten by this add, return that item and true, otherwise return a
// zero value item and false.
func (rb *RingBuffer[T]) Add(val T) (dropped T, ok bool) {
	rb.mtx.Lock()
	defer rb.mtx.Unlock()

	// Safety first.
	if cap(rb.buf) <= 0 {
		var zero T
		return zero, false
	}

	// Capture any overwritten value so it can be returned.
	if rb.len >= len(rb.buf) {
		dropped, ok = rb.buf[rb.cur], true
	}

	// Write the value at the write cursor.
	rb.buf[rb.cur] = val

	// Update the ring buffer size.
	if rb.len < len(rb.buf) {
		rb.len += 1
	}

	// Advance the write cursor.
	rb.cur += 1
	if rb.cur >= len(rb.buf) {
		rb.cur -= len(rb.buf)
	}

	// Done.
	return dropped, ok
}

// Walk calls the given function for each value in the ring buffer, starting
// with the most recent value, and ending with the oldest value. Walk takes an
// exclusive lock on the ring buffer, which blocks other calls like Add.
func (rb *RingBuffer[T]) Walk(fn func(T) error) error {
	rb.mtx.Lock()
	defer rb.mtx.Unlock()

	// Read up to rb.len values.
	for i := 0; i < rb.len; i++ {
		// Reads go backwards from one before the write cursor.
		cur := rb.cur - 1 - i

		// Wrap around when necessary.
		if cur < 0 {
			cur += len(rb.buf)
		}

		// If the function returns an error, we're done.
		if err := fn(rb.buf[cur]); err != nil {
			return err
		}
	}

	return nil
}

// Len returns the number of values currently stored, which is always at most
// the construction capacity.
func (rb *RingBuffer[T]) Len() int {
	rb.mtx.Lock()
	defer rb.mtx.Unlock()

	return rb.len
}

// Clear empties the ring buffer in place, zeroing the slots so that stored
// references are released.
func (rb *RingBuffer[T]) Clear() {
	rb.mtx.Lock()
	defer rb.mtx.Unlock()

	var zero T
	for i := range rb.buf {
		rb.buf[i] = zero
	}
	rb.cur = 0
	rb.len = 0
}

// Resize changes the capacity of the ring buffer to the given value. If the
// new capacity is smaller than the existing capacity, resize will drop the
// older items as necessary, and return those dropped items.
func (rb *RingBuffer[T]) Resize(cap int) (dropped []T) {
	// Safety first.
	if cap <= 0 {
		return
	}

	rb.mtx.Lock()
	defer rb.mtx.Unlock()

	// Calculate how many values to fill from the old buffer to the new one.
	fill := rb.len
	if fill > cap {
		fill = cap
	}

	// Calculate the read cursor for the old buffer.
	rdcur := rb.cur - 1
	if rdcur < 0 {
		rdcur += rb.len
	}

	// Construct the new buffer with the given capacity. As fill is guaranteed
	// to be less than or equal to cap, we calculate the write cursor as simply
	// fill, and will copy values by walking both cursors backwards.
	buf := make([]T, cap)
	wrcur := fill - 1

	// Copy recent values from the old buffer to the new buffer.
	for wrcur >= 0 {
		buf[wrcur] = rb.buf[rdcur]

		rdcur = rdcur - 1
		if rdcur < 0 {
			rdcur += len(rb.buf)
		}

		wrcur = wrcur - 1 // no need to do the wraparound math
	}

	// If we resized smaller, and the old buffer has more values than the new
	// capacity, then capture the values from the old buffer which are dropped.
	for i := cap; i < rb.len; i++ {
		dropped = append(dropped, rb.buf[rdcur])

		rdcur = rdcur - 1
		if rdcur < 0 {
			rdcur += len(rb.buf)
		}
	}

	// Calculate the next write cursor for the new buffer. If we resized
	// smaller, then fill will equal cap, and we need to wrap around.
	cur := fill
	if cur >= cap {
		cur -= cap
	}

	// Modify all of the buffer fields to their new values.
	rb.buf = buf
	rb.cur = cur
	rb.len = fill

	// Done.
	return dropped
}
