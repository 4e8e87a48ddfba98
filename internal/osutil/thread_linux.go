//go:build linux

package osutil

import "golang.org/x/sys/unix"

// TryRealtimePriority attempts to schedule the calling OS thread under
// SCHED_FIFO, the same request ALSA- and WASAPI-style worker threads make
// for their polling loop. The caller must have already called
// runtime.LockOSThread. On failure (no CAP_SYS_NICE, containerized
// environment, etc.) it returns false and the caller falls back to default
// scheduling; WarnRealtimePriorityFallback should be used to log this once.
func TryRealtimePriority(priority int) bool {
	if priority <= 0 {
		priority = 1
	}
	param := &unix.SchedParam{Priority: int32(priority)}
	err := unix.SchedSetscheduler(0, unix.SCHED_FIFO, param)
	return err == nil
}
