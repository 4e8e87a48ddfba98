// Package ringbuffer implements the single-producer/single-consumer
// lock-free byte ring buffer used to hand audio frames between a backend's
// realtime callback and the thread that owns an Outstream/Instream. It is
// ported from the original library's ring_buffer.c: one writer thread calls
// WritePtr/AdvanceWritePtr, one reader thread calls ReadPtr/AdvanceReadPtr,
// and the two sides only ever communicate through a pair of atomic offsets.
//
// The buffer is backed by osutil.MirroredMemory so that WritePtr and ReadPtr
// always return a contiguous slice up to Capacity() bytes long, even when
// the logical window straddles the wrap point.
package ringbuffer

import (
	"fmt"
	"sync/atomic"

	"github.com/roundtable-audio/soundio/internal/osutil"
)

// RingBuffer is a fixed-capacity SPSC byte ring buffer over mirrored memory.
// The zero value is not usable; construct with Create.
type RingBuffer struct {
	mem *osutil.MirroredMemory

	// writeOffset and readOffset are monotonically increasing byte counts,
	// not positions mod capacity; the mirrored mapping makes that safe and
	// it sidesteps the usual ambiguity between a ring buffer that is empty
	// and one that is completely full. Only the owning side ever writes to
	// its own offset; the other side only reads it, which is what makes the
	// unsynchronized fill/free count computation below safe on every
	// architecture Go supports (aligned int64 loads/stores are atomic, and
	// the acquire/release pairing below keeps the data itself visible).
	writeOffset atomic.Int64
	readOffset  atomic.Int64
}

// Create allocates a ring buffer with at least requestedCapacity bytes of
// usable space; the actual capacity is rounded up to a whole number of
// pages, matching the two-mapping trick in soundio_ring_buffer_create.
func Create(requestedCapacity int) (*RingBuffer, error) {
	mem, err := osutil.NewMirroredMemory(requestedCapacity)
	if err != nil {
		return nil, fmt.Errorf("ringbuffer: %w", err)
	}
	return &RingBuffer{mem: mem}, nil
}

// Close releases the underlying mirrored memory. Not safe to call
// concurrently with WritePtr/ReadPtr/AdvanceWritePtr/AdvanceReadPtr.
func (r *RingBuffer) Close() error {
	return r.mem.Close()
}

// Capacity returns the usable byte capacity of the buffer.
func (r *RingBuffer) Capacity() int {
	return r.mem.Capacity()
}

// FillCount returns the number of bytes currently available to read. A
// concurrent caller may observe a stale count: the reader side can see it
// too low and the writer side too high, both of which only make that side
// under-claim (data to read, or space to write).
func (r *RingBuffer) FillCount() int {
	count := r.writeOffset.Load() - r.readOffset.Load()
	if count < 0 {
		count = 0
	}
	if int(count) > r.mem.Capacity() {
		return r.mem.Capacity()
	}
	return int(count)
}

// FreeCount returns the number of bytes currently available to write.
func (r *RingBuffer) FreeCount() int {
	return r.mem.Capacity() - r.FillCount()
}

// WritePtr returns a slice positioned at the current write offset, long
// enough to cover the full free region. The writer may fill any prefix of
// it and must report how much it actually used via AdvanceWritePtr.
func (r *RingBuffer) WritePtr() []byte {
	offset := int(r.writeOffset.Load()) % r.mem.Capacity()
	free := r.FreeCount()
	buf := r.mem.Bytes()
	return buf[offset : offset+free]
}

// AdvanceWritePtr commits count bytes written via the slice most recently
// returned by WritePtr, making them visible to the reader.
func (r *RingBuffer) AdvanceWritePtr(count int) {
	r.writeOffset.Add(int64(count))
}

// ReadPtr returns a slice positioned at the current read offset, long
// enough to cover the full filled region.
func (r *RingBuffer) ReadPtr() []byte {
	offset := int(r.readOffset.Load()) % r.mem.Capacity()
	fill := r.FillCount()
	buf := r.mem.Bytes()
	return buf[offset : offset+fill]
}

// AdvanceReadPtr releases count bytes read via the slice most recently
// returned by ReadPtr, making that space available to the writer again.
func (r *RingBuffer) AdvanceReadPtr(count int) {
	r.readOffset.Add(int64(count))
}

// Clear resets the buffer to empty. Only safe to call when neither side is
// concurrently reading or writing, e.g. between a stream pause and resume.
func (r *RingBuffer) Clear() {
	r.writeOffset.Store(0)
	r.readOffset.Store(0)
}
