// Package haltest provides in-memory hardware for tests.
package haltest

import (
	"errors"
	"io/fs"
	"sort"
	"strings"
	"sync"

	"spryg/hal"
)

// Logger records every line.
type Logger struct {
	mu    sync.Mutex
	lines []string
}

func (l *Logger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, s)
}

func (l *Logger) WriteLineBytes(b []byte) { l.WriteLineString(string(b)) }

// Lines returns a copy of the recorded lines.
func (l *Logger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}

// Contains reports whether any line contains substr.
func (l *Logger) Contains(substr string) bool {
	for _, line := range l.Lines() {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

// Clock is a manual millisecond counter.
type Clock struct {
	mu  sync.Mutex
	now uint32
}

// NewClock starts the counter at start.
func NewClock(start uint32) *Clock { return &Clock{now: start} }

func (c *Clock) Millis() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the counter forward, wrapping like the hardware counter.
func (c *Clock) Advance(ms uint32) {
	c.mu.Lock()
	c.now += ms
	c.mu.Unlock()
}

// Display records transmitted frames.
type Display struct {
	mu     sync.Mutex
	W, H   int
	Err    error
	frames [][]byte
}

// NewDisplay returns a panel of the console's size.
func NewDisplay() *Display {
	return &Display{W: hal.ScreenWidth, H: hal.ScreenHeight}
}

func (d *Display) Size() (int, int)        { return d.W, d.H }
func (d *Display) Format() hal.PixelFormat { return hal.PixelFormatRGB565BE }

func (d *Display) WriteWindow(buf []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return d.Err
	}
	d.frames = append(d.frames, append([]byte(nil), buf...))
	return nil
}

// Frames returns every transmitted frame in order.
func (d *Display) Frames() [][]byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([][]byte(nil), d.frames...)
}

// Last returns the most recent frame, or nil.
func (d *Display) Last() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.frames) == 0 {
		return nil
	}
	return d.frames[len(d.frames)-1]
}

// Audio is both the opener and the open output.
//
// Each Write advances Clock by WriteCost milliseconds, standing in for the time
// the device takes to drain the buffer.
type Audio struct {
	mu        sync.Mutex
	Clock     *Clock
	WriteCost uint32
	// FailAfter makes the nth and later writes fail (0 disables).
	FailAfter int
	OpenErr   error

	cfg    hal.AudioConfig
	opened int
	writes int
	closes int
	bytes  int
	last   []byte
}

var ErrWrite = errors.New("haltest: audio write failed")

func (a *Audio) Open(cfg hal.AudioConfig) (hal.AudioOut, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.OpenErr != nil {
		return nil, a.OpenErr
	}
	a.cfg = cfg
	a.opened++
	return a, nil
}

func (a *Audio) Write(pcm []byte) (int, error) {
	a.mu.Lock()
	a.writes++
	n := a.writes
	fail := a.FailAfter > 0 && n >= a.FailAfter
	if !fail {
		a.bytes += len(pcm)
		a.last = append(a.last[:0], pcm...)
	}
	clock, cost := a.Clock, a.WriteCost
	a.mu.Unlock()

	if clock != nil {
		clock.Advance(cost)
	}
	if fail {
		return 0, ErrWrite
	}
	return len(pcm), nil
}

func (a *Audio) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closes++
	return nil
}

// Config returns the configuration passed to Open.
func (a *Audio) Config() hal.AudioConfig {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cfg
}

// Writes returns the number of Write calls.
func (a *Audio) Writes() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.writes
}

// Closes returns the number of Close calls.
func (a *Audio) Closes() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.closes
}

// LastWrite returns the payload of the last successful write.
func (a *Audio) LastWrite() []byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]byte(nil), a.last...)
}

// Storage is a flat in-memory card.
type Storage struct {
	Files    map[string][]byte
	MountErr error
	mounted  bool
}

func (s *Storage) Mount() error {
	if s.MountErr != nil {
		return s.MountErr
	}
	s.mounted = true
	return nil
}

func (s *Storage) ReadDir(dir string) ([]string, error) {
	if !s.mounted {
		return nil, errors.New("haltest: storage not mounted")
	}
	var names []string
	for name := range s.Files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *Storage) ReadFile(name string) ([]byte, error) {
	if !s.mounted {
		return nil, errors.New("haltest: storage not mounted")
	}
	b, ok := s.Files[strings.TrimPrefix(name, "/")]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return b, nil
}
