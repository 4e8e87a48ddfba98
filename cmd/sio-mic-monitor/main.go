// Command sio-mic-monitor opens both an input and an output stream and
// pipes captured frames straight through to playback via its own
// internal/ringbuffer.RingBuffer, demonstrating the begin/end-read/write
// area protocol end to end across two independently clocked streams.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/viper"

	"github.com/roundtable-audio/soundio/internal/cliconfig"
	"github.com/roundtable-audio/soundio/internal/logging"
	"github.com/roundtable-audio/soundio/internal/ringbuffer"
	"github.com/roundtable-audio/soundio/soundio"

	_ "github.com/roundtable-audio/soundio/backend/alsa"
	_ "github.com/roundtable-audio/soundio/backend/coreaudio"
	_ "github.com/roundtable-audio/soundio/backend/dummy"
	_ "github.com/roundtable-audio/soundio/backend/jack"
	_ "github.com/roundtable-audio/soundio/backend/pulseaudio"
	_ "github.com/roundtable-audio/soundio/backend/wasapi"
)

func main() {
	cliconfig.SetDefaults()
	logFile, err := logging.Configure(viper.GetString("loglevel"), viper.GetString("logfile"), slog.HandlerOptions{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "sio-mic-monitor: configuring logger: %v\n", err)
		os.Exit(1)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	ctx := soundio.NewContext("sio-mic-monitor")
	if err := ctx.Connect(); err != nil {
		slog.Error("connect failed", "err", err)
		os.Exit(1)
	}
	defer ctx.Disconnect()
	ctx.FlushEvents()

	inDevice := ctx.DefaultInputDevice()
	outDevice := ctx.DefaultOutputDevice()
	if inDevice == nil || outDevice == nil {
		slog.Error("need both an input and an output device")
		os.Exit(1)
	}

	instream := ctx.CreateInstream(inDevice)
	instream.Name = "sio-mic-monitor-in"
	instream.Format = soundio.FormatS16NE
	instream.SampleRate = viper.GetInt("samplerate")
	instream.SoftwareLatency = viper.GetFloat64("latency")
	if err := instream.Open(); err != nil {
		slog.Error("instream open failed", "err", err)
		os.Exit(1)
	}
	defer instream.Destroy()

	outstream := ctx.CreateOutstream(outDevice)
	outstream.Name = "sio-mic-monitor-out"
	outstream.Format = instream.Format
	outstream.SampleRate = instream.SampleRate
	outstream.Layout = instream.Layout
	outstream.SoftwareLatency = viper.GetFloat64("latency")

	// Sized for half a second of audio at the negotiated frame size.
	capacity := instream.BytesPerFrame * instream.SampleRate / 2
	ring, err := ringbuffer.Create(capacity)
	if err != nil {
		slog.Error("ring buffer allocation failed", "err", err)
		os.Exit(1)
	}
	defer ring.Close()

	instream.ReadCallback = func(s *soundio.Instream, frameCountMin, frameCountMax int) {
		framesLeft := frameCountMax
		for framesLeft > 0 {
			areas, actual, err := s.BeginRead(framesLeft)
			if err != nil {
				slog.Error("begin read failed", "err", err)
				return
			}
			if actual == 0 {
				break
			}
			free := ring.WritePtr()
			n := actual * s.BytesPerFrame
			if n > len(free) {
				n = len(free)
				actual = n / s.BytesPerFrame
			}
			interleave(free, areas, actual, s.BytesPerSample)
			ring.AdvanceWritePtr(n)
			if err := s.EndRead(); err != nil {
				slog.Error("end read failed", "err", err)
				return
			}
			framesLeft -= actual
			if actual == 0 {
				break
			}
		}
	}
	instream.OverflowCallback = func(s *soundio.Instream) { slog.Warn("capture overflow") }

	outstream.WriteCallback = func(s *soundio.Outstream, frameCountMin, frameCountMax int) {
		framesLeft := frameCountMax
		for framesLeft > 0 {
			areas, reserved, err := s.BeginWrite(framesLeft)
			if err != nil {
				slog.Error("begin write failed", "err", err)
				return
			}
			if reserved == 0 {
				break
			}
			available := ring.ReadPtr()
			filled := reserved
			n := filled * s.BytesPerFrame
			if n > len(available) {
				n = len(available)
				filled = n / s.BytesPerFrame
			}
			deinterleave(areas, available, filled, s.BytesPerSample)
			zeroRemainder(areas, filled, reserved, s.BytesPerSample)
			ring.AdvanceReadPtr(n)
			if err := s.EndWrite(); err != nil {
				slog.Error("end write failed", "err", err)
				return
			}
			framesLeft -= reserved
		}
	}
	outstream.UnderflowCallback = func(s *soundio.Outstream) { slog.Warn("playback underflow") }

	if err := outstream.Open(); err != nil {
		slog.Error("outstream open failed", "err", err)
		os.Exit(1)
	}
	defer outstream.Destroy()

	if err := instream.Start(); err != nil {
		slog.Error("instream start failed", "err", err)
		os.Exit(1)
	}
	if err := outstream.Start(); err != nil {
		slog.Error("outstream start failed", "err", err)
		os.Exit(1)
	}

	slog.Info("monitoring microphone", "in", inDevice.Name, "out", outDevice.Name)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
}

// interleave copies frameCount frames from the per-channel areas into dst as
// interleaved bytes.
func interleave(dst []byte, areas []soundio.ChannelArea, frameCount, bytesPerSample int) {
	frameBytes := len(areas) * bytesPerSample
	for i := 0; i < frameCount; i++ {
		for ch, area := range areas {
			copy(dst[i*frameBytes+ch*bytesPerSample:], area.FrameAt(i, bytesPerSample))
		}
	}
}

// deinterleave copies frameCount interleaved frames out of src into the
// per-channel areas.
func deinterleave(areas []soundio.ChannelArea, src []byte, frameCount, bytesPerSample int) {
	frameBytes := len(areas) * bytesPerSample
	for i := 0; i < frameCount; i++ {
		for ch, area := range areas {
			copy(area.FrameAt(i, bytesPerSample), src[i*frameBytes+ch*bytesPerSample:])
		}
	}
}

// zeroRemainder silences any frames beyond what the ring buffer could supply
// this round, so a temporary capture underrun plays back as silence rather
// than stale samples.
func zeroRemainder(areas []soundio.ChannelArea, filled, reserved, bytesPerSample int) {
	for i := filled; i < reserved; i++ {
		for _, area := range areas {
			frame := area.FrameAt(i, bytesPerSample)
			for b := range frame {
				frame[b] = 0
			}
		}
	}
}
