// Command sio-sine opens the default output device and plays a generated
// sine tone through it using the begin/end-write area protocol.
package main

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/viper"

	"github.com/roundtable-audio/soundio/internal/cliconfig"
	"github.com/roundtable-audio/soundio/internal/logging"
	"github.com/roundtable-audio/soundio/soundio"

	_ "github.com/roundtable-audio/soundio/backend/alsa"
	_ "github.com/roundtable-audio/soundio/backend/coreaudio"
	_ "github.com/roundtable-audio/soundio/backend/dummy"
	_ "github.com/roundtable-audio/soundio/backend/jack"
	_ "github.com/roundtable-audio/soundio/backend/pulseaudio"
	_ "github.com/roundtable-audio/soundio/backend/wasapi"
)

const toneFrequency = 440.0

func main() {
	cliconfig.SetDefaults()
	viper.SetDefault("seconds", 4.0)

	logFile, err := logging.Configure(viper.GetString("loglevel"), viper.GetString("logfile"), slog.HandlerOptions{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "sio-sine: configuring logger: %v\n", err)
		os.Exit(1)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	ctx := soundio.NewContext("sio-sine")
	if err := ctx.Connect(); err != nil {
		slog.Error("connect failed", "err", err)
		os.Exit(1)
	}
	defer ctx.Disconnect()
	ctx.FlushEvents()

	device := ctx.DefaultOutputDevice()
	if device == nil {
		slog.Error("no output device available")
		os.Exit(1)
	}
	slog.Info("opening output device", "name", device.Name, "backend", ctx.CurrentBackend())

	stream := ctx.CreateOutstream(device)
	stream.Name = "sio-sine"
	stream.SampleRate = viper.GetInt("samplerate")
	stream.SoftwareLatency = viper.GetFloat64("latency")

	phase := 0.0
	stream.WriteCallback = func(s *soundio.Outstream, frameCountMin, frameCountMax int) {
		framesLeft := frameCountMax
		phaseStep := toneFrequency / float64(s.SampleRate)
		for framesLeft > 0 {
			areas, actual, err := s.BeginWrite(framesLeft)
			if err != nil {
				slog.Error("begin write failed", "err", err)
				return
			}
			if actual == 0 {
				break
			}
			writeSine(areas, actual, s.Format, s.BytesPerSample, &phase, phaseStep)
			if err := s.EndWrite(); err != nil {
				slog.Error("end write failed", "err", err)
				return
			}
			framesLeft -= actual
		}
	}
	stream.UnderflowCallback = func(s *soundio.Outstream) {
		slog.Warn("underflow")
	}

	if err := stream.Open(); err != nil {
		slog.Error("open failed", "err", err)
		os.Exit(1)
	}
	defer stream.Destroy()

	if err := stream.Start(); err != nil {
		slog.Error("start failed", "err", err)
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		slog.Info("interrupted")
	case <-time.After(time.Duration(viper.GetFloat64("seconds") * float64(time.Second))):
		slog.Info("done")
	}
}

// writeSine fills every channel with the same sample, amplitude scaled down
// to avoid clipping integer formats, advancing phase by phaseStep per frame.
func writeSine(areas []soundio.ChannelArea, frameCount int, format soundio.Format, bytesPerSample int, phase *float64, phaseStep float64) {
	for i := 0; i < frameCount; i++ {
		sample := math.Sin(*phase * 2 * math.Pi)
		*phase += phaseStep
		if *phase >= 1 {
			*phase -= 1
		}
		for _, area := range areas {
			encodeSample(area.FrameAt(i, bytesPerSample), format, sample)
		}
	}
}

func encodeSample(dst []byte, format soundio.Format, value float64) {
	switch format {
	case soundio.FormatFloat32NE:
		binary.NativeEndian.PutUint32(dst, math.Float32bits(float32(value)))
	case soundio.FormatFloat64NE:
		binary.NativeEndian.PutUint64(dst, math.Float64bits(value))
	case soundio.FormatS32NE:
		binary.NativeEndian.PutUint32(dst, uint32(int32(value*2147483647)))
	case soundio.FormatS16NE:
		binary.NativeEndian.PutUint16(dst, uint16(int16(value*32767)))
	default:
		if len(dst) > 0 {
			dst[0] = byte(int8(value * 127))
		}
	}
}
