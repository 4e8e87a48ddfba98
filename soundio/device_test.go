package soundio

import "testing"

func newTestDevice(ranges ...SampleRateRange) *Device {
	return &Device{Name: "test", SampleRates: ranges}
}

func TestNearestSampleRateExactMatch(t *testing.T) {
	d := newTestDevice(SampleRateRange{Min: 44100, Max: 44100}, SampleRateRange{Min: 48000, Max: 48000})
	got, err := d.NearestSampleRate(48000)
	if err != nil {
		t.Fatal(err)
	}
	if got != 48000 {
		t.Fatalf("got %d, want 48000", got)
	}
}

func TestNearestSampleRatePrefersHigherOnTie(t *testing.T) {
	// 44100 and 48000 are not equidistant from 46000, so build a case that is:
	// 45000 and 47000 are both 1000 away from 46000 when clamped to discrete points.
	d := newTestDevice(SampleRateRange{Min: 45000, Max: 45000}, SampleRateRange{Min: 47000, Max: 47000})
	got, err := d.NearestSampleRate(46000)
	if err != nil {
		t.Fatal(err)
	}
	if got != 47000 {
		t.Fatalf("got %d, want 47000 (prefer >= target on tie)", got)
	}
}

func TestNearestSampleRateClampsToRange(t *testing.T) {
	d := newTestDevice(SampleRateRange{Min: 8000, Max: 192000})
	got, err := d.NearestSampleRate(44100)
	if err != nil {
		t.Fatal(err)
	}
	if got != 44100 {
		t.Fatalf("got %d, want 44100", got)
	}

	got, err = d.NearestSampleRate(1000000)
	if err != nil {
		t.Fatal(err)
	}
	if got != 192000 {
		t.Fatalf("got %d, want clamp to 192000", got)
	}
}

func TestNearestSampleRateNoRangesIsIncompatible(t *testing.T) {
	d := newTestDevice()
	if _, err := d.NearestSampleRate(48000); KindOf(err) != ErrorIncompatibleDevice {
		t.Fatalf("expected ErrorIncompatibleDevice, got %v", err)
	}
}

func TestDeviceRefUnrefCount(t *testing.T) {
	d := &Device{Name: "test"}
	d.Ref()
	d.Ref()
	if d.refCount.Load() != 2 {
		t.Fatalf("refCount = %d, want 2", d.refCount.Load())
	}
	d.Unref()
	if d.refCount.Load() != 1 {
		t.Fatalf("refCount = %d, want 1", d.refCount.Load())
	}
}

func TestDevicesInfoDefaultsNilSafe(t *testing.T) {
	var info *DevicesInfo
	if info.DefaultInputDevice() != nil {
		t.Fatal("nil DevicesInfo must report no default input device")
	}
	if info.DefaultOutputDevice() != nil {
		t.Fatal("nil DevicesInfo must report no default output device")
	}

	info = &DevicesInfo{DefaultInputIndex: -1, DefaultOutputIndex: 5}
	if info.DefaultInputDevice() != nil || info.DefaultOutputDevice() != nil {
		t.Fatal("out of range default indexes must report no default device")
	}
}

func TestSupportsFormatLayoutSampleRate(t *testing.T) {
	d := &Device{
		Formats:     []Format{FormatS16LE, FormatFloat32LE},
		Layouts:     []ChannelLayout{{Channels: []ChannelId{ChannelIdFrontLeft, ChannelIdFrontRight}}},
		SampleRates: []SampleRateRange{{Min: 44100, Max: 48000}},
	}
	if !d.SupportsFormat(FormatS16LE) || d.SupportsFormat(FormatS24LE) {
		t.Fatal("SupportsFormat mismatch")
	}
	if !d.SupportsLayout(ChannelLayout{Channels: []ChannelId{ChannelIdFrontLeft, ChannelIdFrontRight}}) {
		t.Fatal("SupportsLayout should match equal channel set")
	}
	if !d.SupportsSampleRate(44100) || d.SupportsSampleRate(96000) {
		t.Fatal("SupportsSampleRate mismatch")
	}
}
