//go:build linux || darwin

// Package jack plugs the JACK Audio Connection Kit into soundio via
// rtaudiobridge. Blank-import this package to make soundio.BackendJack
// available to Context.Connect/Context.ConnectBackend.
package jack

import (
	"github.com/roundtable-audio/soundio/internal/rtaudio"
	"github.com/roundtable-audio/soundio/internal/rtaudiobridge"
	"github.com/roundtable-audio/soundio/soundio"
)

func init() {
	soundio.RegisterBackendFactory(soundio.BackendJack, New)
}

// New constructs an unconnected JACK backend.
func New() soundio.Backend {
	return rtaudiobridge.New(soundio.BackendJack, rtaudio.APIUnixJack)
}
