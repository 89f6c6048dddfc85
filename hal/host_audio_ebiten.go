//go:build !tinygo && cgo

package hal

import (
	"errors"
	"io"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

var errAudioClosed = errors.New("host audio: output closed")

// ebitenAudio exposes audio output on desktop via Ebiten's audio package.
//
// Ebiten allows a single audio context per process, so the output is reused
// across opens.
type ebitenAudio struct {
	out *ebitenAudioOut
}

func newEbitenAudio() Audio {
	return &ebitenAudio{out: &ebitenAudioOut{}}
}

func (a *ebitenAudio) Open(cfg AudioConfig) (AudioOut, error) {
	if err := a.out.start(cfg); err != nil {
		return nil, err
	}
	return a.out, nil
}

// ebitenAudioOut is a blocking ring buffer between the console and Ebiten's
// pull-based player. Write blocks while the ring is full, which paces the
// caller at the device sample rate.
type ebitenAudioOut struct {
	mu   sync.Mutex
	cond *sync.Cond

	ctx        *audio.Context
	player     *audio.Player
	sampleRate uint32
	width      int

	buf []int16
	r   int
	w   int
	n   int

	closed bool
}

func (a *ebitenAudioOut) start(cfg AudioConfig) error {
	if cfg.SampleRate == 0 {
		return errors.New("host audio: invalid sample rate")
	}
	if cfg.BitsPerSample != 16 && cfg.BitsPerSample != 32 {
		return errors.New("host audio: unsupported sample width")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cond == nil {
		a.cond = sync.NewCond(&a.mu)
	}

	if a.ctx == nil {
		a.ctx = audio.NewContext(int(cfg.SampleRate))
	} else if a.ctx.SampleRate() != int(cfg.SampleRate) {
		return errors.New("host audio: ebiten audio context sample rate is fixed")
	}
	a.sampleRate = cfg.SampleRate
	a.width = int(cfg.BitsPerSample / 8)

	if a.player != nil {
		_ = a.player.Close()
		a.player = nil
	}

	// The device buffer is tiny; keep ~100ms on host to ride out scheduler jitter.
	ring := int(cfg.SampleRate / 10)
	if floor := cfg.BufferBytes / a.width; ring < floor {
		ring = floor
	}
	if ring < 2048 {
		ring = 2048
	}
	a.buf = make([]int16, ring)
	a.r, a.w, a.n = 0, 0, 0
	a.closed = false

	p, err := a.ctx.NewPlayer(&ebitenAudioReader{a: a})
	if err != nil {
		return err
	}
	p.SetBufferSize(100 * time.Millisecond)
	p.Play()
	a.player = p
	return nil
}

func (a *ebitenAudioOut) Write(pcm []byte) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	width := a.width
	if width == 0 {
		return 0, errAudioClosed
	}
	written := 0
	for off := 0; off+width <= len(pcm); off += width {
		for !a.closed && a.n == len(a.buf) {
			a.cond.Wait()
		}
		if a.closed || len(a.buf) == 0 {
			return written, errAudioClosed
		}
		a.buf[a.w] = sample16(pcm, off, width)
		a.w++
		if a.w >= len(a.buf) {
			a.w = 0
		}
		a.n++
		a.cond.Signal()
		written += width
	}
	return written, nil
}

func (a *ebitenAudioOut) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	a.n = 0
	a.r = 0
	a.w = 0
	if a.cond != nil {
		a.cond.Broadcast()
	}
	p := a.player
	a.player = nil
	a.mu.Unlock()

	if p != nil {
		return p.Close()
	}
	return nil
}

type ebitenAudioReader struct {
	a *ebitenAudioOut
}

func (r *ebitenAudioReader) Read(p []byte) (int, error) {
	a := r.a
	// Ebiten audio expects 16-bit little-endian stereo. An empty ring plays
	// silence rather than stalling the player.
	for i := 0; i+3 < len(p); i += 4 {
		var s int16

		a.mu.Lock()
		if a.closed {
			a.mu.Unlock()
			return i, io.EOF
		}
		if a.n > 0 {
			s = a.buf[a.r]
			a.r++
			if a.r >= len(a.buf) {
				a.r = 0
			}
			a.n--
			a.cond.Signal()
		}
		a.mu.Unlock()

		p[i+0] = byte(s)
		p[i+1] = byte(s >> 8)
		p[i+2] = byte(s)
		p[i+3] = byte(s >> 8)
	}
	return len(p), nil
}
