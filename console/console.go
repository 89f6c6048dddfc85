// Package console is the handle a game drives: buttons and LEDs, tone audio,
// and an off-screen frame buffer.
package console

import (
	"context"
	"errors"
	"fmt"
	"time"

	"spryg/hal"
)

// Console groups the peripherals of one board. It is built once at startup and
// passed to the game by reference.
//
// A Console is not safe for concurrent use; games run on a single goroutine.
type Console struct {
	Peripherals *Peripherals
	Audio       *AudioEngine
	Display     *Surface

	clock   hal.Clock
	log     hal.Logger
	storage hal.Storage
}

// New initializes the board: backlight on, screen cleared to black, audio
// opened, then a best-effort storage mount.
func New(h hal.HAL) (*Console, error) {
	c := &Console{clock: h.Clock(), log: h.Logger()}
	if c.log == nil {
		c.log = discardLogger{}
	}
	if c.clock == nil {
		return nil, errors.New("console: no clock")
	}

	g := h.GPIO()
	p, err := NewPeripherals(g)
	if err != nil {
		return nil, err
	}
	c.Peripherals = p

	if bl := hal.FindPin(g, hal.PinBacklight); bl != nil {
		if err := bl.Configure(hal.GPIOModeOutput, hal.GPIOPullNone); err == nil {
			_ = bl.Write(true)
		}
	}

	s, err := NewSurface(h.Display())
	if err != nil {
		return nil, err
	}
	c.Display = s
	s.Clear(Black)
	if err := s.Flip(); err != nil {
		return nil, err
	}

	a, err := NewAudioEngine(h.Audio(), hal.DefaultAudioConfig, c.clock, c.log)
	if err != nil {
		return nil, err
	}
	c.Audio = a

	c.mountStorage(h.Storage())
	return c, nil
}

func (c *Console) mountStorage(st hal.Storage) {
	if st == nil {
		c.Logf("storage: [?] no card slot, storage will not be initialized")
		return
	}
	if err := st.Mount(); err != nil {
		c.Logf("storage: [!] %v", err)
		return
	}
	names, err := st.ReadDir("/")
	if err != nil {
		c.Logf("storage: [!] %v", err)
		return
	}
	c.Logf("storage: files: %v", names)
	c.storage = st
}

// Storage returns the mounted card, if the mount succeeded.
func (c *Console) Storage() (hal.Storage, bool) {
	return c.storage, c.storage != nil
}

// Logger returns the diagnostic channel.
func (c *Console) Logger() hal.Logger { return c.log }

// Logf writes one formatted line to the diagnostic channel.
func (c *Console) Logf(format string, args ...any) {
	c.log.WriteLineString(fmt.Sprintf(format, args...))
}

// Ticks returns the wrapping millisecond counter. Compare readings with
// hal.TicksDiff.
func (c *Console) Ticks() uint32 { return c.clock.Millis() }

// Sleep pauses for d or until ctx is done.
func (c *Console) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Close releases the audio output. It is safe to call more than once.
func (c *Console) Close() error {
	if c.Audio == nil {
		return nil
	}
	return c.Audio.Shutdown()
}

type discardLogger struct{}

func (discardLogger) WriteLineString(string) {}
func (discardLogger) WriteLineBytes([]byte)  {}
