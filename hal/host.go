//go:build !tinygo

package hal

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Options configures the host HAL.
type Options struct {
	// StorageDir is mounted in place of the SD card. Empty means no card.
	StorageDir string
	// WAVPath captures audio to a file (headless only).
	WAVPath string
	// Scale is the window zoom factor.
	Scale int
	// ClockOffset seeds the millisecond counter.
	ClockOffset uint32
	// Log receives diagnostic lines; nil means stdout.
	Log io.Writer
}

type hostHAL struct {
	logger  *hostLogger
	clock   Clock
	gpio    GPIO
	kbd     *hostKeyboard
	disp    *hostDisplay
	audio   Audio
	storage Storage
}

func newHost(opts Options, windowed bool) *hostHAL {
	w := opts.Log
	if w == nil {
		w = os.Stdout
	}
	logger := &hostLogger{w: w}
	kbd := newHostKeyboard()

	pins := kbd.pins()
	pins = append(pins,
		NewLEDPin(PinLEDLeft, &hostLED{name: "L", logger: logger}),
		NewLEDPin(PinLEDRight, &hostLED{name: "R", logger: logger}),
		NewLEDPin(PinBacklight, &hostLED{name: "backlight", logger: logger}),
	)

	var audio Audio = pacedAudio{}
	switch {
	case !windowed && opts.WAVPath != "":
		audio = NewWAVAudio(opts.WAVPath, true)
	case windowed:
		if a := newEbitenAudio(); a != nil {
			audio = a
		}
	}

	h := &hostHAL{
		logger: logger,
		clock:  NewClock(opts.ClockOffset),
		gpio:   NewVirtualGPIO(pins...),
		kbd:    kbd,
		disp:   newHostDisplay(ScreenWidth, ScreenHeight),
		audio:  audio,
	}
	if s := newDirStorage(opts.StorageDir); s != nil {
		h.storage = s
	}
	return h
}

func (h *hostHAL) Logger() Logger   { return h.logger }
func (h *hostHAL) Clock() Clock     { return h.clock }
func (h *hostHAL) GPIO() GPIO       { return h.gpio }
func (h *hostHAL) Display() Display { return h.disp }
func (h *hostHAL) Audio() Audio     { return h.audio }
func (h *hostHAL) Storage() Storage { return h.storage }

type hostLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(b)
	l.w.Write([]byte{'\n'})
}

type hostLED struct {
	mu     sync.Mutex
	name   string
	on     bool
	logger *hostLogger
}

func (l *hostLED) High() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.on = true
	l.logger.WriteLineString("led " + l.name + ": HIGH")
}

func (l *hostLED) Low() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.on = false
	l.logger.WriteLineString("led " + l.name + ": LOW")
}
