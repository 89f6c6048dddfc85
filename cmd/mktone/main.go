package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"spryg/console"
	"spryg/hal"
)

func main() {
	var (
		outPath = flag.String("out", "", "Output .wav file.")
		freq    = flag.Int("freq", 440, "Tone frequency in Hz.")
		ms      = flag.Int("ms", 1000, "Duration in milliseconds.")
		bits    = flag.Int("bits", 16, "Sample width: 16|32.")
		rate    = flag.Uint("rate", uint(hal.DefaultAudioConfig.SampleRate), "Sample rate in Hz.")
	)
	flag.Parse()

	if *outPath == "" {
		fatalf("usage: mktone -out tone.wav [-freq 440] [-ms 1000] [-bits 16|32] [-rate 22050]")
	}

	cfg := hal.DefaultAudioConfig
	cfg.SampleRate = uint32(*rate)
	cfg.BitsPerSample = uint8(*bits)

	n, err := render(*outPath, cfg, *freq, time.Duration(*ms)*time.Millisecond)
	if err != nil {
		fatalf("mktone: %v", err)
	}
	fmt.Printf("%s: %d Hz, %d samples\n", *outPath, *freq, n)
}

func fatalf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(2)
}

// render streams the tone through the audio engine into a WAV file. The
// engine's clock follows the samples written, so the file holds exactly what
// the console would play.
func render(path string, cfg hal.AudioConfig, freq int, d time.Duration) (uint64, error) {
	clock := &sampleClock{rate: uint64(cfg.SampleRate)}
	audio := &renderAudio{wav: hal.NewWAVAudio(path, false), clock: clock}

	engine, err := console.NewAudioEngine(audio, cfg, clock, stderrLogger{})
	if err != nil {
		return 0, err
	}
	tone, err := engine.SynthesizeTone(freq)
	if err != nil {
		_ = engine.Shutdown()
		return 0, err
	}
	if err := engine.PlayForDuration(context.Background(), tone, d); err != nil {
		_ = engine.Shutdown()
		return 0, err
	}
	if err := engine.Shutdown(); err != nil {
		return 0, err
	}
	return clock.samples, nil
}

// sampleClock derives milliseconds from the number of samples written.
type sampleClock struct {
	rate    uint64
	samples uint64
}

func (c *sampleClock) Millis() uint32 {
	return uint32(c.samples * 1000 / c.rate)
}

type renderAudio struct {
	wav   hal.Audio
	clock *sampleClock
}

func (a *renderAudio) Open(cfg hal.AudioConfig) (hal.AudioOut, error) {
	out, err := a.wav.Open(cfg)
	if err != nil {
		return nil, err
	}
	frame := int(cfg.BitsPerSample/8) * int(cfg.Channels)
	return &renderOut{AudioOut: out, clock: a.clock, frame: frame}, nil
}

type renderOut struct {
	hal.AudioOut
	clock *sampleClock
	frame int
}

func (o *renderOut) Write(pcm []byte) (int, error) {
	n, err := o.AudioOut.Write(pcm)
	o.clock.samples += uint64(n / o.frame)
	return n, err
}

type stderrLogger struct{}

func (stderrLogger) WriteLineString(s string) { fmt.Fprintln(os.Stderr, s) }
func (stderrLogger) WriteLineBytes(b []byte)  { fmt.Fprintln(os.Stderr, string(b)) }
