//go:build !linux

package osutil

// TryRealtimePriority is a portability fallback for platforms whose
// real-time scheduling API this package does not bind directly (Darwin's
// thread_policy_set / Windows' THREAD_PRIORITY_TIME_CRITICAL are owned by
// the CoreAudio and WASAPI backends themselves, which call into their native
// libraries directly rather than through this package). It always reports
// failure so callers fall back to default scheduling and emit the one-shot
// warning.
func TryRealtimePriority(priority int) bool {
	return false
}
