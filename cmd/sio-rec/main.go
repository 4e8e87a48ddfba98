// Command sio-rec opens the default input device and writes captured frames
// to a 16-bit PCM .wav file using go-audio/wav.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
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

func main() {
	outputPath := flag.String("file", "recording.wav", "Output .wav file path")
	flag.Parse()

	cliconfig.SetDefaults()
	logFile, err := logging.Configure(viper.GetString("loglevel"), viper.GetString("logfile"), slog.HandlerOptions{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "sio-rec: configuring logger: %v\n", err)
		os.Exit(1)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	ctx := soundio.NewContext("sio-rec")
	if err := ctx.Connect(); err != nil {
		slog.Error("connect failed", "err", err)
		os.Exit(1)
	}
	defer ctx.Disconnect()
	ctx.FlushEvents()

	device := ctx.DefaultInputDevice()
	if device == nil {
		slog.Error("no input device available")
		os.Exit(1)
	}
	slog.Info("opening input device", "name", device.Name, "backend", ctx.CurrentBackend())

	f, err := os.Create(*outputPath)
	if err != nil {
		slog.Error("creating output file", "err", err)
		os.Exit(1)
	}
	defer f.Close()

	stream := ctx.CreateInstream(device)
	stream.Name = "sio-rec"
	stream.Format = soundio.FormatS16NE
	stream.SampleRate = viper.GetInt("samplerate")
	stream.SoftwareLatency = viper.GetFloat64("latency")

	if err := stream.Open(); err != nil {
		slog.Error("open failed", "err", err)
		os.Exit(1)
	}
	defer stream.Destroy()

	encoder := wav.NewEncoder(f, stream.SampleRate, 16, stream.Layout.ChannelCount(), 1)
	defer encoder.Close()

	bufFormat := &goaudio.Format{SampleRate: stream.SampleRate, NumChannels: stream.Layout.ChannelCount()}

	stream.ReadCallback = func(s *soundio.Instream, frameCountMin, frameCountMax int) {
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
			intBuf := &goaudio.IntBuffer{Format: bufFormat, SourceBitDepth: 16, Data: make([]int, actual*len(areas))}
			idx := 0
			for i := 0; i < actual; i++ {
				for _, area := range areas {
					sample := int16(binary.NativeEndian.Uint16(area.FrameAt(i, s.BytesPerSample)))
					intBuf.Data[idx] = int(sample)
					idx++
				}
			}
			if err := encoder.Write(intBuf); err != nil {
				slog.Error("wav encode failed", "err", err)
			}
			if err := s.EndRead(); err != nil {
				slog.Error("end read failed", "err", err)
				return
			}
			framesLeft -= actual
		}
	}
	stream.OverflowCallback = func(s *soundio.Instream) {
		slog.Warn("overflow")
	}

	if err := stream.Start(); err != nil {
		slog.Error("start failed", "err", err)
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("recording stopped", "file", *outputPath)
}
