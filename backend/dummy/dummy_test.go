package dummy_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	_ "github.com/roundtable-audio/soundio/backend/dummy"
	"github.com/roundtable-audio/soundio/soundio"
)

func connectedContext(t *testing.T) *soundio.Context {
	t.Helper()
	ctx := soundio.NewContext("dummy-test")
	if err := ctx.ConnectBackend(soundio.BackendDummy); err != nil {
		t.Fatalf("ConnectBackend(dummy): %v", err)
	}
	ctx.FlushEvents()
	return ctx
}

func TestConnectPublishesOneInputAndOneOutputDevice(t *testing.T) {
	ctx := connectedContext(t)

	if got := len(ctx.InputDevices()); got != 1 {
		t.Fatalf("InputDevices() len = %d, want 1", got)
	}
	if got := len(ctx.OutputDevices()); got != 1 {
		t.Fatalf("OutputDevices() len = %d, want 1", got)
	}
	if ctx.DefaultOutputDevice() == nil || ctx.DefaultOutputDevice().Name != "Dummy Output" {
		t.Fatalf("DefaultOutputDevice() = %+v", ctx.DefaultOutputDevice())
	}
}

func TestOnDevicesChangeFiresExactlyOnce(t *testing.T) {
	ctx := soundio.NewContext("dummy-test")
	var fired atomic.Int32
	ctx.OnDevicesChange = func(*soundio.Context) { fired.Add(1) }

	if err := ctx.ConnectBackend(soundio.BackendDummy); err != nil {
		t.Fatalf("ConnectBackend(dummy): %v", err)
	}
	ctx.FlushEvents()
	ctx.FlushEvents()
	ctx.FlushEvents()

	if got := fired.Load(); got != 1 {
		t.Fatalf("OnDevicesChange fired %d times, want 1", got)
	}
}

func TestOutstreamLifecycleProducesCallbacks(t *testing.T) {
	ctx := connectedContext(t)
	device := ctx.DefaultOutputDevice()
	if device == nil {
		t.Fatal("no default output device")
	}

	stream := ctx.CreateOutstream(device)
	stream.SampleRate = 48000
	stream.SoftwareLatency = 0.05

	var writes atomic.Int32
	stream.WriteCallback = func(s *soundio.Outstream, frameCountMin, frameCountMax int) {
		writes.Add(1)
	}

	if err := stream.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if stream.Format == soundio.FormatInvalid {
		t.Fatal("Open should have resolved a concrete format")
	}
	if err := stream.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for writes.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for WriteCallback")
		case <-time.After(10 * time.Millisecond):
		}
	}

	stream.Destroy()
	if stream.State() != soundio.StreamDestroyed {
		t.Fatalf("State() = %v, want Destroyed", stream.State())
	}
}

func TestOutstreamUnderflowFiresWhenNothingRefillsBuffer(t *testing.T) {
	ctx := connectedContext(t)
	device := ctx.DefaultOutputDevice()

	stream := ctx.CreateOutstream(device)
	stream.SampleRate = 48000
	stream.SoftwareLatency = 0.02

	var underflows atomic.Int32
	var mu sync.Mutex
	stream.UnderflowCallback = func(s *soundio.Outstream) { underflows.Add(1) }
	// Deliberately never write real frames back into the ring buffer in
	// WriteCallback: the worker goroutine still advances its read pointer
	// with elapsed time, so it will eventually find the buffer empty.
	stream.WriteCallback = func(s *soundio.Outstream, frameCountMin, frameCountMax int) {
		mu.Lock()
		defer mu.Unlock()
	}

	if err := stream.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := stream.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	deadline := time.After(3 * time.Second)
	for underflows.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for UnderflowCallback")
		case <-time.After(10 * time.Millisecond):
		}
	}

	stream.Destroy()
}

func TestInstreamLifecycleProducesCallbacks(t *testing.T) {
	ctx := connectedContext(t)
	device := ctx.DefaultInputDevice()
	if device == nil {
		t.Fatal("no default input device")
	}

	stream := ctx.CreateInstream(device)
	stream.SampleRate = 48000
	stream.SoftwareLatency = 0.05

	var reads atomic.Int32
	stream.ReadCallback = func(s *soundio.Instream, frameCountMin, frameCountMax int) {
		reads.Add(1)
	}

	if err := stream.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := stream.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for reads.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for ReadCallback")
		case <-time.After(10 * time.Millisecond):
		}
	}

	stream.Destroy()
}

func TestOutstreamBeginEndWriteFillsChannelAreas(t *testing.T) {
	ctx := connectedContext(t)
	stream := ctx.CreateOutstream(ctx.DefaultOutputDevice())
	stream.SampleRate = 48000
	stream.SoftwareLatency = 0.05
	if err := stream.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}

	const wantFrames = 16
	areas, got, err := stream.BeginWrite(wantFrames)
	if err != nil {
		t.Fatalf("BeginWrite: %v", err)
	}
	if got != wantFrames {
		t.Fatalf("BeginWrite reserved %d frames, want %d", got, wantFrames)
	}
	if len(areas) != stream.Layout.ChannelCount() {
		t.Fatalf("len(areas) = %d, want %d", len(areas), stream.Layout.ChannelCount())
	}
	for ch, area := range areas {
		for i := 0; i < got; i++ {
			frame := area.FrameAt(i, stream.BytesPerSample)
			for b := range frame {
				frame[b] = byte(ch + 1)
			}
		}
	}
	if err := stream.EndWrite(); err != nil {
		t.Fatalf("EndWrite: %v", err)
	}

	stream.Destroy()
}

func TestDestroyIsIdempotent(t *testing.T) {
	ctx := connectedContext(t)
	stream := ctx.CreateOutstream(ctx.DefaultOutputDevice())
	stream.SampleRate = 48000
	if err := stream.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	stream.Destroy()
	stream.Destroy()
}
