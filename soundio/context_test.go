package soundio

import (
	"context"
	"testing"
)

// fakeBackend is a minimal Backend used only to drive Context's
// disconnect-delivery plumbing without any real device I/O.
type fakeBackend struct {
	id           BackendID
	onDisconnect func(error)
}

func (f *fakeBackend) ID() BackendID { return f.id }

func (f *fakeBackend) Connect(onDevicesChange func(), onDisconnect func(error)) error {
	f.onDisconnect = onDisconnect
	return nil
}

func (f *fakeBackend) Disconnect() error                  { return nil }
func (f *fakeBackend) FlushEvents()                        {}
func (f *fakeBackend) WaitEvents(ctx context.Context) error { <-ctx.Done(); return ctx.Err() }
func (f *fakeBackend) Wakeup()                             {}
func (f *fakeBackend) ForceDeviceScan()                    {}
func (f *fakeBackend) Devices() *DevicesInfo               { return nil }

func (f *fakeBackend) OutstreamOpen(*Outstream) error        { return nil }
func (f *fakeBackend) OutstreamDestroy(*Outstream)            {}
func (f *fakeBackend) OutstreamStart(*Outstream) error        { return nil }
func (f *fakeBackend) OutstreamPause(*Outstream, bool) error  { return nil }
func (f *fakeBackend) OutstreamClearBuffer(*Outstream) error  { return nil }
func (f *fakeBackend) OutstreamGetLatency(*Outstream) (float64, error) {
	return 0, nil
}
func (f *fakeBackend) OutstreamBeginWrite(*Outstream, int) ([]ChannelArea, int, error) {
	return nil, 0, nil
}
func (f *fakeBackend) OutstreamEndWrite(*Outstream) error { return nil }

func (f *fakeBackend) InstreamOpen(*Instream) error       { return nil }
func (f *fakeBackend) InstreamDestroy(*Instream)          {}
func (f *fakeBackend) InstreamStart(*Instream) error      { return nil }
func (f *fakeBackend) InstreamPause(*Instream, bool) error { return nil }
func (f *fakeBackend) InstreamGetLatency(*Instream) (float64, error) {
	return 0, nil
}
func (f *fakeBackend) InstreamBeginRead(*Instream, int) ([]ChannelArea, int, error) {
	return nil, 0, nil
}
func (f *fakeBackend) InstreamEndRead(*Instream) error { return nil }

// registerFakeBackend installs fb under id for the duration of the test,
// restoring whatever factory (if any) was previously registered there.
func registerFakeBackend(t *testing.T, id BackendID, fb *fakeBackend) {
	t.Helper()
	previous, had := backendFactories[id]
	backendFactories[id] = func() Backend { return fb }
	t.Cleanup(func() {
		if had {
			backendFactories[id] = previous
		} else {
			delete(backendFactories, id)
		}
	})
}

func TestOnBackendDisconnectDeliveredOnceFromFlushEvents(t *testing.T) {
	fb := &fakeBackend{id: BackendDummy}
	registerFakeBackend(t, BackendDummy, fb)

	ctx := NewContext("disconnect-test")
	if err := ctx.ConnectBackend(BackendDummy); err != nil {
		t.Fatal(err)
	}

	fired := 0
	var got error
	ctx.OnBackendDisconnect = func(c *Context, err error) {
		fired++
		got = err
	}

	// Simulate the backend's watcher goroutine reporting a disconnect; this
	// must only record the error, not invoke the callback directly.
	fb.onDisconnect(NewError(ErrorBackendDisconnected, nil))

	ctx.FlushEvents()
	ctx.FlushEvents()
	ctx.FlushEvents()

	if fired != 1 {
		t.Fatalf("OnBackendDisconnect fired %d times, want exactly 1", fired)
	}
	if KindOf(got) != ErrorBackendDisconnected {
		t.Fatalf("got error kind %v, want ErrorBackendDisconnected", KindOf(got))
	}
}

func TestOnBackendDisconnectNotFiredWithoutSignal(t *testing.T) {
	fb := &fakeBackend{id: BackendDummy}
	registerFakeBackend(t, BackendDummy, fb)

	ctx := NewContext("disconnect-test")
	if err := ctx.ConnectBackend(BackendDummy); err != nil {
		t.Fatal(err)
	}

	fired := 0
	ctx.OnBackendDisconnect = func(c *Context, err error) { fired++ }

	ctx.FlushEvents()
	ctx.FlushEvents()

	if fired != 0 {
		t.Fatalf("OnBackendDisconnect fired %d times with no disconnect reported, want 0", fired)
	}
}
