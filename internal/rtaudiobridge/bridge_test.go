package rtaudiobridge

import (
	"testing"

	"github.com/roundtable-audio/soundio/soundio"
)

// snapshotKey and reportDisconnect touch no cgo state, so they are exercised
// directly here; scan/watch require a live rtaudio.API and are left to
// integration testing, the same boundary backend/dummy draws for the rest
// of the streaming engine.

func TestSnapshotKeyStableAcrossEqualDeviceSets(t *testing.T) {
	b := &Bridge{devices: &soundio.DevicesInfo{
		InputDevices:  []*soundio.Device{{ID: "1"}},
		OutputDevices: []*soundio.Device{{ID: "2"}},
	}}
	a := b.snapshotKey()
	again := b.snapshotKey()
	if a != again {
		t.Fatalf("snapshotKey not stable: %q != %q", a, again)
	}
}

func TestSnapshotKeyChangesWithDeviceSet(t *testing.T) {
	b := &Bridge{devices: &soundio.DevicesInfo{
		InputDevices: []*soundio.Device{{ID: "1"}},
	}}
	before := b.snapshotKey()

	b.devices = &soundio.DevicesInfo{
		InputDevices: []*soundio.Device{{ID: "1"}, {ID: "3"}},
	}
	after := b.snapshotKey()

	if before == after {
		t.Fatalf("snapshotKey did not change after a device was added")
	}
}

func TestSnapshotKeyEmptyBeforeFirstScan(t *testing.T) {
	b := &Bridge{}
	if got := b.snapshotKey(); got != "" {
		t.Fatalf("snapshotKey on an unscanned Bridge = %q, want empty", got)
	}
}

func TestReportDisconnectFiresAtMostOnce(t *testing.T) {
	b := &Bridge{}
	fired := 0
	var got error
	b.onDisconnect = func(err error) {
		fired++
		got = err
	}

	b.reportDisconnect(errSentinel)
	b.reportDisconnect(errSentinel)

	if fired != 1 {
		t.Fatalf("onDisconnect fired %d times, want exactly 1", fired)
	}
	if soundio.KindOf(got) != soundio.ErrorBackendDisconnected {
		t.Fatalf("got error kind %v, want ErrorBackendDisconnected", soundio.KindOf(got))
	}
}

type sentinelError struct{}

func (sentinelError) Error() string { return "sentinel" }

var errSentinel error = sentinelError{}
