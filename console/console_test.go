package console

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"spryg/hal"
	"spryg/hal/haltest"
)

func newTestConsole(t *testing.T, b *haltest.Board) *Console {
	t.Helper()
	c, err := New(b)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestPressedInvertsIdleHigh(t *testing.T) {
	b := haltest.NewBoard()
	c := newTestConsole(t, b)

	for i := 0; i < 8; i++ {
		btn := Button(i)
		if got, err := c.Peripherals.Pressed(btn); err != nil || got {
			t.Fatalf("%s idle: pressed=%v err=%v", btn, got, err)
		}
		b.Press(i)
		if got, err := c.Peripherals.Pressed(btn); err != nil || !got {
			t.Fatalf("%s held: pressed=%v err=%v", btn, got, err)
		}
		b.Lift(i)
		if got, _ := c.Peripherals.Pressed(btn); got {
			t.Fatalf("%s released: still pressed", btn)
		}
	}
}

func TestInvalidIdentifiers(t *testing.T) {
	c := newTestConsole(t, haltest.NewBoard())

	if _, err := c.Peripherals.Pressed(Button(8)); !errors.Is(err, ErrInvalidIdentifier) {
		t.Fatalf("Pressed(8): %v", err)
	}
	if _, err := ParseButton("X"); !errors.Is(err, ErrInvalidIdentifier) {
		t.Fatalf("ParseButton(X): %v", err)
	}
	if b, err := ParseButton("K"); err != nil || b != ButtonK {
		t.Fatalf("ParseButton(K) = %v, %v", b, err)
	}
	if err := c.Peripherals.SetIndicator(Side(2), true); !errors.Is(err, ErrInvalidSide) {
		t.Fatalf("SetIndicator(2): %v", err)
	}
	if _, err := ParseSide("M"); !errors.Is(err, ErrInvalidSide) {
		t.Fatalf("ParseSide(M): %v", err)
	}
}

func TestSetIndicator(t *testing.T) {
	b := haltest.NewBoard()
	c := newTestConsole(t, b)

	if err := c.Peripherals.SetIndicator(SideLeft, true); err != nil {
		t.Fatalf("SetIndicator: %v", err)
	}
	if !b.LEDLeft.Level() || b.LEDRight.Level() {
		t.Fatalf("left=%v right=%v", b.LEDLeft.Level(), b.LEDRight.Level())
	}
	_ = c.Peripherals.SetIndicator(SideLeft, true)
	_ = c.Peripherals.SetIndicator(SideRight, true)
	_ = c.Peripherals.SetIndicator(SideLeft, false)
	if b.LEDLeft.Level() || !b.LEDRight.Level() {
		t.Fatalf("left=%v right=%v", b.LEDLeft.Level(), b.LEDRight.Level())
	}
}

func TestNewInitializesBoard(t *testing.T) {
	b := haltest.NewBoard()
	c := newTestConsole(t, b)

	if !b.Backlight.Level() {
		t.Fatal("expected backlight on")
	}
	frames := b.Disp.Frames()
	if len(frames) != 1 {
		t.Fatalf("frames = %d, want 1", len(frames))
	}
	if !bytes.Equal(frames[0], make([]byte, hal.ScreenWidth*hal.ScreenHeight*2)) {
		t.Fatal("expected black initial frame")
	}
	if cfg := b.Aud.Config(); cfg != hal.DefaultAudioConfig {
		t.Fatalf("audio config = %+v", cfg)
	}
	if _, ok := c.Storage(); ok {
		t.Fatal("expected no storage")
	}
	if !b.Log.Contains("storage: [?]") {
		t.Fatalf("log = %q", b.Log.Lines())
	}
}

func TestStorageMount(t *testing.T) {
	b := haltest.NewBoard()
	b.Store = &haltest.Storage{Files: map[string][]byte{"game.lua": nil, "notes.txt": nil}}
	c := newTestConsole(t, b)

	if _, ok := c.Storage(); !ok {
		t.Fatal("expected storage")
	}
	if !b.Log.Contains("storage: files: [game.lua notes.txt]") {
		t.Fatalf("log = %q", b.Log.Lines())
	}

	b = haltest.NewBoard()
	b.Store = &haltest.Storage{MountErr: errors.New("no card")}
	c = newTestConsole(t, b)
	if _, ok := c.Storage(); ok {
		t.Fatal("expected storage unavailable after failed mount")
	}
	if !b.Log.Contains("storage: [!] no card") {
		t.Fatalf("log = %q", b.Log.Lines())
	}
}

func TestNewFailsWithoutDisplay(t *testing.T) {
	b := haltest.NewBoard()
	b.Disp = nil
	if _, err := New(b); !errors.Is(err, hal.ErrNotImplemented) {
		t.Fatalf("New: %v", err)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	b := haltest.NewBoard()
	c := newTestConsole(t, b)
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if n := b.Aud.Closes(); n != 1 {
		t.Fatalf("closes = %d, want 1", n)
	}
}

func TestSleepCancelled(t *testing.T) {
	c := newTestConsole(t, haltest.NewBoard())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	if err := c.Sleep(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("Sleep: %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatal("Sleep ignored cancellation")
	}
	if err := c.Sleep(context.Background(), time.Millisecond); err != nil {
		t.Fatalf("Sleep: %v", err)
	}
}
