//go:build linux

package osutil

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// PageSize returns the system's memory page size.
func PageSize() int {
	return unix.Getpagesize()
}

// NewMirroredMemory allocates a requestedCapacity-byte region (rounded up to
// a whole number of pages) backed by an anonymous shared memory file, then
// maps it twice back-to-back so the tail aliases the head. A single
// memfd_create backing file is mapped with two adjacent
// PROT_READ|PROT_WRITE|MAP_SHARED|MAP_FIXED mappings inside a reserved
// PROT_NONE address window, mirroring the mkstemp+mmap technique used by the
// original C implementation (shm_open/memfd_create replaces the temp file on
// modern Linux).
func NewMirroredMemory(requestedCapacity int) (*MirroredMemory, error) {
	if requestedCapacity <= 0 {
		return nil, fmt.Errorf("osutil: requested capacity must be positive, got %d", requestedCapacity)
	}

	pageSize := PageSize()
	capacity := ((requestedCapacity + pageSize - 1) / pageSize) * pageSize

	fd, err := unix.MemfdCreate("soundio-ringbuffer", 0)
	if err != nil {
		return nil, fmt.Errorf("osutil: memfd_create failed: %w", err)
	}
	defer unix.Close(fd)

	if err := unix.Ftruncate(fd, int64(capacity)); err != nil {
		return nil, fmt.Errorf("osutil: ftruncate failed: %w", err)
	}

	// Reserve a 2*capacity address window we know is free to map into.
	// The reservation can race with other mappings created concurrently in
	// this process; on failure the caller may simply retry.
	base, _, errno := unix.Syscall6(unix.SYS_MMAP, 0, uintptr(2*capacity),
		unix.PROT_NONE, unix.MAP_ANON|unix.MAP_PRIVATE, ^uintptr(0), 0)
	if errno != 0 {
		return nil, fmt.Errorf("osutil: reservation mmap failed: %w", errno)
	}

	if _, err := mmapFixed(base, fd, capacity, 0); err != nil {
		unmapRaw(base, 2*capacity)
		return nil, fmt.Errorf("osutil: first mirror mmap failed: %w", err)
	}
	if _, err := mmapFixed(base+uintptr(capacity), fd, capacity, 0); err != nil {
		unmapRaw(base, 2*capacity)
		return nil, fmt.Errorf("osutil: second mirror mmap failed: %w", err)
	}

	full := unsafe.Slice((*byte)(unsafe.Pointer(base)), 2*capacity)

	closer := func() error {
		return unmapRaw(base, 2*capacity)
	}

	return &MirroredMemory{addr: full, capacity: capacity, closer: closer}, nil
}

func mmapFixed(addr uintptr, fd int, length int, offset int64) (uintptr, error) {
	got, _, errno := unix.Syscall6(unix.SYS_MMAP, addr, uintptr(length),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED|unix.MAP_FIXED, uintptr(fd), uintptr(offset))
	if errno != 0 {
		return 0, errno
	}
	if got != addr {
		return 0, fmt.Errorf("mmap returned unexpected address")
	}
	return got, nil
}

func unmapRaw(addr uintptr, length int) error {
	_, _, errno := unix.Syscall(unix.SYS_MUNMAP, addr, uintptr(length), 0)
	if errno != 0 {
		return errno
	}
	return nil
}
