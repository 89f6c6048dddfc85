package console

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	"spryg/hal"
)

const volumeReduction = 32

// ToneBuffer is one period of a sine wave, packed for the audio output.
//
// Low frequencies give long buffers, so PlayForDuration may overshoot by up
// to one period.
type ToneBuffer struct {
	Frequency int
	Samples   []int32
	PCM       []byte
}

// AudioEngine synthesizes tones and streams them to the audio output.
type AudioEngine struct {
	cfg   hal.AudioConfig
	out   hal.AudioOut
	clock hal.Clock
	log   hal.Logger

	once     sync.Once
	closeErr error
}

// NewAudioEngine opens the output with cfg. cfg is fixed for the engine's
// lifetime.
func NewAudioEngine(a hal.Audio, cfg hal.AudioConfig, clock hal.Clock, log hal.Logger) (*AudioEngine, error) {
	if a == nil {
		return nil, fmt.Errorf("console: audio: %w", hal.ErrNotImplemented)
	}
	if cfg.BitsPerSample != 16 && cfg.BitsPerSample != 32 {
		return nil, fmt.Errorf("console: audio: unsupported sample width %d", cfg.BitsPerSample)
	}
	out, err := a.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("console: audio: %w", err)
	}
	return &AudioEngine{cfg: cfg, out: out, clock: clock, log: log}, nil
}

// Config returns the output configuration.
func (a *AudioEngine) Config() hal.AudioConfig { return a.cfg }

// SynthesizeTone computes one period of a DC-biased sine at freqHz.
func (a *AudioEngine) SynthesizeTone(freqHz int) (ToneBuffer, error) {
	return synthesize(a.cfg, freqHz)
}

func synthesize(cfg hal.AudioConfig, freqHz int) (ToneBuffer, error) {
	if freqHz <= 0 {
		return ToneBuffer{}, fmt.Errorf("%w: %d Hz", ErrInvalidFrequency, freqHz)
	}
	n := int(cfg.SampleRate) / freqHz
	if n == 0 {
		return ToneBuffer{}, fmt.Errorf("%w: %d Hz is above %d Hz", ErrInvalidFrequency, freqHz, cfg.SampleRate)
	}

	width := int(cfg.BitsPerSample / 8)
	amp := (int64(1) << cfg.BitsPerSample) / 2 / volumeReduction

	tone := ToneBuffer{
		Frequency: freqHz,
		Samples:   make([]int32, n),
		PCM:       make([]byte, n*width),
	}
	for i := 0; i < n; i++ {
		s := amp + int64(float64(amp-1)*math.Sin(2*math.Pi*float64(i)/float64(n)))
		tone.Samples[i] = int32(s)
		switch width {
		case 2:
			binary.LittleEndian.PutUint16(tone.PCM[i*2:], uint16(int16(s)))
		case 4:
			binary.LittleEndian.PutUint32(tone.PCM[i*4:], uint32(int32(s)))
		}
	}
	return tone, nil
}

// PlayForDuration writes tone to the output back to back until d has elapsed
// on the console clock. It blocks for the whole duration.
//
// Write failures are logged and end playback early without an error. The only
// error returned is the context's, when ctx is cancelled mid-play.
func (a *AudioEngine) PlayForDuration(ctx context.Context, tone ToneBuffer, d time.Duration) error {
	if len(tone.PCM) == 0 {
		return nil
	}
	limit := int32(math.MaxInt32)
	if ms := d.Milliseconds(); ms < int64(limit) {
		limit = int32(ms)
	}

	start := a.clock.Millis()
	for hal.TicksDiff(a.clock.Millis(), start) < limit {
		if err := ctx.Err(); err != nil {
			a.logf("audio: interrupted after %dms", hal.TicksDiff(a.clock.Millis(), start))
			return err
		}
		if _, err := a.out.Write(tone.PCM); err != nil {
			a.logf("audio: caught %T %v", err, err)
			return nil
		}
	}
	return nil
}

// Shutdown releases the output. Only the first call has an effect.
func (a *AudioEngine) Shutdown() error {
	a.once.Do(func() {
		a.closeErr = a.out.Close()
		a.logf("audio: released")
	})
	return a.closeErr
}

func (a *AudioEngine) logf(format string, args ...any) {
	if a.log == nil {
		return
	}
	a.log.WriteLineString(fmt.Sprintf(format, args...))
}
