//go:build !tinygo

package hal

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// pacedAudio is a device-less sink that consumes samples at the configured
// rate, so writes block the way a DMA-fed I2S output does.
type pacedAudio struct{}

func (pacedAudio) Open(cfg AudioConfig) (AudioOut, error) {
	o, err := newPacedOut(cfg, nil)
	if err != nil {
		return nil, err
	}
	return o, nil
}

type pacedOut struct {
	mu        sync.Mutex
	cfg       AudioConfig
	frameSize int
	due       time.Time
	slack     time.Duration
	sink      io.Writer
	unpaced   bool
	closed    bool
}

func newPacedOut(cfg AudioConfig, sink io.Writer) (*pacedOut, error) {
	if cfg.SampleRate == 0 || cfg.Channels == 0 {
		return nil, errors.New("paced audio: invalid config")
	}
	if cfg.BitsPerSample != 16 && cfg.BitsPerSample != 32 {
		return nil, errors.New("paced audio: unsupported sample width")
	}
	o := &pacedOut{
		cfg:       cfg,
		frameSize: int(cfg.BitsPerSample/8) * int(cfg.Channels),
		sink:      sink,
	}
	o.slack = o.duration(cfg.BufferBytes)
	return o, nil
}

func (o *pacedOut) duration(n int) time.Duration {
	frames := n / o.frameSize
	return time.Duration(frames) * time.Second / time.Duration(o.cfg.SampleRate)
}

func (o *pacedOut) Write(pcm []byte) (int, error) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return 0, errors.New("paced audio: output closed")
	}
	if o.sink != nil {
		if _, err := o.sink.Write(pcm); err != nil {
			o.mu.Unlock()
			return 0, err
		}
	}
	if o.unpaced {
		o.mu.Unlock()
		return len(pcm), nil
	}
	now := time.Now()
	if o.due.Before(now) {
		o.due = now
	}
	o.due = o.due.Add(o.duration(len(pcm)))
	wait := time.Until(o.due) - o.slack
	o.mu.Unlock()

	if wait > 0 {
		time.Sleep(wait)
	}
	return len(pcm), nil
}

func (o *pacedOut) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed = true
	return nil
}

// wavAudio captures everything streamed to the output into a WAV file. When
// paced, writes block in real time like the device does.
type wavAudio struct {
	path  string
	paced bool
}

// NewWAVAudio returns an Audio whose output is written to a WAV file at path.
// An unpaced output accepts samples as fast as they are written.
func NewWAVAudio(path string, paced bool) Audio {
	return wavAudio{path: path, paced: paced}
}

func (a wavAudio) Open(cfg AudioConfig) (AudioOut, error) {
	out, err := newPacedOut(cfg, nil)
	if err != nil {
		return nil, err
	}
	out.unpaced = !a.paced

	f, err := os.Create(a.path)
	if err != nil {
		return nil, fmt.Errorf("wav audio: %w", err)
	}
	enc := &pcmEncoder{
		enc:    wav.NewEncoder(f, int(cfg.SampleRate), int(cfg.BitsPerSample), int(cfg.Channels), wavFormatPCM),
		width:  int(cfg.BitsPerSample / 8),
		format: &audio.Format{
			NumChannels: int(cfg.Channels),
			SampleRate:  int(cfg.SampleRate),
		},
	}
	// An empty first buffer emits the header, so a file with no samples is
	// still a valid WAV.
	if _, err := enc.Write(nil); err != nil {
		_ = f.Close()
		_ = os.Remove(a.path)
		return nil, fmt.Errorf("wav audio: %w", err)
	}
	out.sink = enc
	return &wavOut{pacedOut: out, f: f, enc: enc}, nil
}

const wavFormatPCM = 1

// pcmEncoder feeds little-endian PCM bytes to a wav.Encoder.
type pcmEncoder struct {
	enc    *wav.Encoder
	width  int
	format *audio.Format
	buf    audio.IntBuffer
}

func (e *pcmEncoder) Write(pcm []byte) (int, error) {
	n := len(pcm) / e.width
	data := e.buf.Data[:0]
	for i := 0; i < n; i++ {
		b := pcm[i*e.width:]
		if e.width == 4 {
			data = append(data, int(int32(binary.LittleEndian.Uint32(b))))
		} else {
			data = append(data, int(int16(binary.LittleEndian.Uint16(b))))
		}
	}
	e.buf = audio.IntBuffer{Format: e.format, Data: data, SourceBitDepth: e.width * 8}
	if err := e.enc.Write(&e.buf); err != nil {
		return 0, err
	}
	return n * e.width, nil
}

type wavOut struct {
	*pacedOut
	f    *os.File
	enc  *pcmEncoder
	once sync.Once
}

// Close patches the chunk sizes and closes the file.
func (w *wavOut) Close() error {
	var err error
	w.once.Do(func() {
		_ = w.pacedOut.Close()
		err = w.enc.enc.Close()
		if cerr := w.f.Close(); err == nil {
			err = cerr
		}
	})
	return err
}
