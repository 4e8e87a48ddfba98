package soundio

import (
	"fmt"
	"sync/atomic"
)

// Aim describes whether a Device is a capture (input) or playback (output)
// endpoint.
type Aim int

const (
	AimInput Aim = iota
	AimOutput
)

func (a Aim) String() string {
	if a == AimInput {
		return "input"
	}
	return "output"
}

// SampleRateRange is an inclusive range of sample rates a device accepts,
// e.g. a device might report {8000, 192000} rather than a fixed list.
type SampleRateRange struct {
	Min int
	Max int
}

// Device describes one physical or virtual audio endpoint as reported by a
// Backend: its supported formats, channel layouts, and sample rate ranges.
// Device values are reference counted the way the original library's
// SoundIoDevice is, because the same *Device may be held by the DevicesInfo
// snapshot that produced it and by any number of open streams: the device
// must stay valid until every one of those releases it, even if a
// rescan has already superseded it in the current snapshot.
type Device struct {
	ID               string
	Name             string
	Aim              Aim
	Layouts          []ChannelLayout
	CurrentLayout    ChannelLayout
	Formats          []Format
	CurrentFormat    Format
	SampleRates      []SampleRateRange
	SampleRateCurrent int
	SoftwareLatencyMin float64
	SoftwareLatencyMax float64
	SoftwareLatencyCurrent float64
	IsRaw            bool
	Backend          BackendID

	// backendRef is the live Backend that produced this device, set by
	// that backend when it builds a DevicesInfo snapshot. Streams opened
	// against the device dispatch through it; it is nil for a device built
	// solely for testing outside of any backend.
	backendRef Backend

	refCount atomic.Int32
}

// AttachBackend associates the device with the Backend that enumerated it.
// Backend implementations call this while building a DevicesInfo snapshot.
func (d *Device) AttachBackend(b Backend) { d.backendRef = b }

// Ref increments the device's reference count and returns it, mirroring
// soundio_device_ref's "convenience return of the same pointer" signature.
func (d *Device) Ref() *Device {
	d.refCount.Add(1)
	return d
}

// Unref decrements the device's reference count. The caller must not touch
// d after a call that brings the count to zero; nothing else currently
// holds it.
func (d *Device) Unref() {
	d.refCount.Add(-1)
}

// SupportsFormat reports whether the device can be opened with format.
func (d *Device) SupportsFormat(format Format) bool {
	for _, f := range d.Formats {
		if f == format {
			return true
		}
	}
	return false
}

// SupportsLayout reports whether the device can be opened with layout.
func (d *Device) SupportsLayout(layout ChannelLayout) bool {
	for _, l := range d.Layouts {
		if l.Equal(layout) {
			return true
		}
	}
	return false
}

// SupportsSampleRate reports whether sampleRate falls within any of the
// device's advertised SampleRateRanges.
func (d *Device) SupportsSampleRate(sampleRate int) bool {
	for _, r := range d.SampleRates {
		if sampleRate >= r.Min && sampleRate <= r.Max {
			return true
		}
	}
	return false
}

// NearestSampleRate returns the sample rate the device can run at that is
// closest to sampleRate, preferring rates greater than or equal to
// sampleRate when two candidates are equally close. The selection
// algorithm is ported verbatim from soundio_device_nearest_sample_rate.
func (d *Device) NearestSampleRate(sampleRate int) (int, error) {
	bestRate := -1
	bestDelta := -1
	for _, r := range d.SampleRates {
		candidate := intClamp(r.Min, sampleRate, r.Max)
		if candidate == sampleRate {
			return candidate, nil
		}

		delta := absDiffInt(candidate, sampleRate)
		bestRateTooSmall := bestRate < sampleRate
		candidateTooSmall := candidate < sampleRate
		if bestRate == -1 ||
			(bestRateTooSmall && !candidateTooSmall) ||
			((bestRateTooSmall || !candidateTooSmall) && delta < bestDelta) {
			bestRate = candidate
			bestDelta = delta
		}
	}
	if bestRate == -1 {
		return 0, NewError(ErrorIncompatibleDevice, fmt.Errorf("device %q advertises no sample rates", d.Name))
	}
	return bestRate, nil
}

// SortChannelLayouts sorts the device's advertised layouts in place, richest
// (most channels) first.
func (d *Device) SortChannelLayouts() {
	SortChannelLayoutsByChannelCount(d.Layouts)
}

func intClamp(min, value, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func absDiffInt(a, b int) int {
	x := a - b
	if x < 0 {
		return -x
	}
	return x
}

// DevicesInfo is a double-buffered, immutable snapshot of every device a
// Context currently knows about. A Backend publishes a new DevicesInfo each
// time it detects a hot-plug event; Context.FlushEvents swaps the Context's
// pointer to the latest snapshot atomically, so readers calling
// Context.InputDevices / Context.OutputDevices concurrently with a rescan
// never observe a half-updated list.
type DevicesInfo struct {
	InputDevices         []*Device
	OutputDevices        []*Device
	DefaultInputIndex    int
	DefaultOutputIndex   int
}

// DefaultInputDevice returns the snapshot's default input device, or nil if
// none is marked default or no input devices exist.
func (d *DevicesInfo) DefaultInputDevice() *Device {
	if d == nil || d.DefaultInputIndex < 0 || d.DefaultInputIndex >= len(d.InputDevices) {
		return nil
	}
	return d.InputDevices[d.DefaultInputIndex]
}

// DefaultOutputDevice returns the snapshot's default output device, or nil
// if none is marked default or no output devices exist.
func (d *DevicesInfo) DefaultOutputDevice() *Device {
	if d == nil || d.DefaultOutputIndex < 0 || d.DefaultOutputIndex >= len(d.OutputDevices) {
		return nil
	}
	return d.OutputDevices[d.DefaultOutputIndex]
}
