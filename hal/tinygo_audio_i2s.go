//go:build tinygo && baremetal

package hal

import (
	"errors"
	"machine"

	pio "github.com/tinygo-org/pio/rp2-pio"
	"github.com/tinygo-org/pio/rp2-pio/piolib"
)

var errI2SClosed = errors.New("i2s audio: output closed")

// i2sAudio drives the amplifier from a PIO state machine. The bit clock pin
// is followed by the word clock pin.
type i2sAudio struct {
	dev    *piolib.I2S
	frames []uint32
	width  int
	open   bool
}

func newI2SAudio(data, bitClock machine.Pin) (*i2sAudio, error) {
	sm, err := pio.PIO0.ClaimStateMachine()
	if err != nil {
		return nil, err
	}
	dev, err := piolib.NewI2S(sm, data, bitClock)
	if err != nil {
		return nil, err
	}
	dev.Enable(false)
	return &i2sAudio{dev: dev}, nil
}

func (a *i2sAudio) Open(cfg AudioConfig) (AudioOut, error) {
	if cfg.SampleRate == 0 || cfg.Channels != 1 {
		return nil, errors.New("i2s audio: invalid config")
	}
	if cfg.BitsPerSample != 16 && cfg.BitsPerSample != 32 {
		return nil, errors.New("i2s audio: unsupported sample width")
	}
	if err := a.dev.SetSampleFrequency(cfg.SampleRate); err != nil {
		return nil, err
	}
	a.width = int(cfg.BitsPerSample / 8)
	n := cfg.BufferBytes / a.width
	if n < 64 {
		n = 64
	}
	a.frames = make([]uint32, n)
	a.dev.Enable(true)
	a.open = true
	return a, nil
}

// Write blocks while the state machine's FIFO is full.
func (a *i2sAudio) Write(pcm []byte) (int, error) {
	if !a.open {
		return 0, errI2SClosed
	}
	written := 0
	for written+a.width <= len(pcm) {
		n := i2sFrames(a.frames, pcm[written:], a.width)
		if _, err := a.dev.WriteStereo(a.frames[:n]); err != nil {
			return written, err
		}
		written += n * a.width
	}
	return written, nil
}

func (a *i2sAudio) Close() error {
	if !a.open {
		return nil
	}
	a.dev.Enable(false)
	a.open = false
	return nil
}
