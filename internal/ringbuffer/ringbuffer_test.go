package ringbuffer

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/roundtable-audio/soundio/internal/osutil"
)

func TestCreateRoundsUpToPageSize(t *testing.T) {
	rb, err := Create(1)
	require.NoError(t, err)
	defer rb.Close()

	require.GreaterOrEqual(t, rb.Capacity(), 1)
	require.Equal(t, osutil.PageSize(), rb.Capacity())
	require.Equal(t, rb.Capacity(), rb.FreeCount())
	require.Equal(t, 0, rb.FillCount())
}

func TestWriteThenReadRoundTrips(t *testing.T) {
	rb, err := Create(4096)
	require.NoError(t, err)
	defer rb.Close()

	payload := []byte("the quick brown fox")
	n := copy(rb.WritePtr(), payload)
	rb.AdvanceWritePtr(n)

	require.Equal(t, len(payload), rb.FillCount())
	got := make([]byte, len(payload))
	copy(got, rb.ReadPtr())
	rb.AdvanceReadPtr(n)

	require.Equal(t, payload, got)
	require.Equal(t, 0, rb.FillCount())
	require.Equal(t, rb.Capacity(), rb.FreeCount())
}

func TestWrapAroundStaysContiguous(t *testing.T) {
	rb, err := Create(4096)
	require.NoError(t, err)
	defer rb.Close()

	capacity := rb.Capacity()

	// Fill to capacity-16, drain it, then write 32 bytes that straddle the
	// wrap point; WritePtr/ReadPtr must still return a single contiguous
	// slice rather than requiring the caller to handle two segments.
	first := make([]byte, capacity-16)
	for i := range first {
		first[i] = byte(i)
	}
	n := copy(rb.WritePtr(), first)
	rb.AdvanceWritePtr(n)
	rb.AdvanceReadPtr(n)
	require.Equal(t, 0, rb.FillCount())

	straddle := make([]byte, 32)
	for i := range straddle {
		straddle[i] = byte(200 + i)
	}
	n = copy(rb.WritePtr(), straddle)
	require.Equal(t, 32, n)
	rb.AdvanceWritePtr(n)

	readBack := make([]byte, 32)
	copy(readBack, rb.ReadPtr())
	rb.AdvanceReadPtr(n)

	require.Equal(t, straddle, readBack)
}

func TestFreeCountNeverExceedsCapacity(t *testing.T) {
	rb, err := Create(8192)
	require.NoError(t, err)
	defer rb.Close()

	require.Equal(t, rb.Capacity(), rb.FreeCount())
	require.LessOrEqual(t, rb.FillCount()+rb.FreeCount(), rb.Capacity())
}

// TestSPSCConcurrentProducerConsumer exercises the buffer the way a real
// backend would: one goroutine only ever advances the write offset, another
// only ever advances the read offset, and the total bytes observed on the
// read side must match the total bytes produced, in order.
func TestSPSCConcurrentProducerConsumer(t *testing.T) {
	rb, err := Create(4096)
	require.NoError(t, err)
	defer rb.Close()

	const total = 1 << 20
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		written := 0
		next := byte(0)
		for written < total {
			buf := rb.WritePtr()
			if len(buf) == 0 {
				continue
			}
			n := len(buf)
			if written+n > total {
				n = total - written
			}
			for i := 0; i < n; i++ {
				buf[i] = next
				next++
			}
			rb.AdvanceWritePtr(n)
			written += n
		}
	}()

	var mismatch bool
	go func() {
		defer wg.Done()
		read := 0
		expect := byte(0)
		for read < total {
			buf := rb.ReadPtr()
			if len(buf) == 0 {
				continue
			}
			n := len(buf)
			if read+n > total {
				n = total - read
			}
			for i := 0; i < n; i++ {
				if buf[i] != expect {
					mismatch = true
				}
				expect++
			}
			rb.AdvanceReadPtr(n)
			read += n
		}
	}()

	wg.Wait()
	require.False(t, mismatch, "reader observed bytes out of order")
}

// TestFillFreeInvariant is a property test: after any sequence of
// write/advance/read/advance operations bounded by capacity, fill+free must
// equal capacity and neither may go negative.
func TestFillFreeInvariant(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rb, err := Create(4096)
		require.NoError(t, err)
		defer rb.Close()

		capacity := rb.Capacity()
		steps := rapid.IntRange(1, 50).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			writeAmt := rapid.IntRange(0, capacity).Draw(t, "writeAmt")
			free := rb.FreeCount()
			if writeAmt > free {
				writeAmt = free
			}
			buf := rb.WritePtr()
			if writeAmt > len(buf) {
				writeAmt = len(buf)
			}
			rb.AdvanceWritePtr(writeAmt)

			readAmt := rapid.IntRange(0, capacity).Draw(t, "readAmt")
			fill := rb.FillCount()
			if readAmt > fill {
				readAmt = fill
			}
			buf = rb.ReadPtr()
			if readAmt > len(buf) {
				readAmt = len(buf)
			}
			rb.AdvanceReadPtr(readAmt)

			require.Equal(t, capacity, rb.FillCount()+rb.FreeCount())
			require.GreaterOrEqual(t, rb.FillCount(), 0)
			require.GreaterOrEqual(t, rb.FreeCount(), 0)
		}
	})
}
