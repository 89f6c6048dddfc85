package supervisor

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"spryg/console"
	"spryg/hal"
	"spryg/hal/haltest"
)

type valueError struct{ msg string }

func (e *valueError) Error() string { return e.msg }

func countPixels(frame []byte, c console.Color) int {
	n := 0
	for y := 0; y < hal.ScreenHeight; y++ {
		for x := 0; x < hal.ScreenWidth; x++ {
			if console.Color(hal.PixelAt(frame, hal.ScreenWidth, x, y)) == c {
				n++
			}
		}
	}
	return n
}

func run(t *testing.T, b *haltest.Board, l Loader) (Outcome, []State, error) {
	t.Helper()
	var states []State
	s := New(b, l, WithStateHook(func(st State) { states = append(states, st) }))
	out, err := s.Run(context.Background())
	if s.State() != StateTerminated {
		t.Fatalf("final state = %v", s.State())
	}
	return out, states, err
}

func TestRunNoGameShowsWelcome(t *testing.T) {
	b := haltest.NewBoard()
	out, states, err := run(t, b, Static(nil))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Kind != OutcomeNotFound || !errors.Is(out.Err, ErrGameNotFound) {
		t.Fatalf("outcome = %+v", out)
	}
	if !strings.HasPrefix(out.Screen, "Welcome to Spryg!") {
		t.Fatalf("screen = %q", out.Screen)
	}
	if countPixels(b.Disp.Last(), console.White) == 0 {
		t.Fatal("welcome text not drawn")
	}
	if n := b.Aud.Closes(); n != 1 {
		t.Fatalf("audio closes = %d, want 1", n)
	}
	want := []State{StateInitializing, StateRunning, StateIdle, StateShuttingDown, StateTerminated}
	if !reflect.DeepEqual(states, want) {
		t.Fatalf("states = %v, want %v", states, want)
	}
}

func TestRunGameFailureShowsError(t *testing.T) {
	b := haltest.NewBoard()
	game := func(ctx context.Context, c *console.Console) error {
		return &valueError{msg: "boom"}
	}
	out, states, err := run(t, b, Static(game))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Kind != OutcomeFailed {
		t.Fatalf("kind = %v", out.Kind)
	}
	if !strings.Contains(out.Screen, "boom") || !strings.HasPrefix(out.Screen, "An error occurred.") {
		t.Fatalf("screen = %q", out.Screen)
	}
	if countPixels(b.Disp.Last(), console.Red) == 0 {
		t.Fatal("error text not drawn in red")
	}
	if !b.Log.Contains("ERROR OCCURRED: *supervisor.valueError: boom") {
		t.Fatalf("log = %q", b.Log.Lines())
	}
	if n := b.Aud.Closes(); n != 1 {
		t.Fatalf("audio closes = %d, want 1", n)
	}
	want := []State{StateInitializing, StateRunning, StateErrorDisplay, StateShuttingDown, StateTerminated}
	if !reflect.DeepEqual(states, want) {
		t.Fatalf("states = %v, want %v", states, want)
	}
}

func TestRunGamePanicIsRecovered(t *testing.T) {
	b := haltest.NewBoard()
	game := func(ctx context.Context, c *console.Console) error {
		panic("kaboom")
	}
	out, _, err := run(t, b, Static(game))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	var f *RuntimeFailure
	if out.Kind != OutcomeFailed || !errors.As(out.Err, &f) {
		t.Fatalf("outcome = %+v", out)
	}
	if f.Type != "string" || f.Description != "kaboom" || len(f.Stack) == 0 {
		t.Fatalf("failure = %+v", f)
	}
	if !b.Log.Contains("ERROR OCCURRED: string: kaboom") || !b.Log.Contains("goroutine") {
		t.Fatalf("log = %q", b.Log.Lines())
	}
	if b.Aud.Closes() != 1 {
		t.Fatal("audio not released")
	}
}

func TestRunCancelledIsSilent(t *testing.T) {
	b := haltest.NewBoard()
	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	game := func(ctx context.Context, c *console.Console) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}
	go func() {
		<-started
		cancel()
	}()

	var states []State
	s := New(b, Static(game), WithStateHook(func(st State) { states = append(states, st) }))
	out, err := s.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Kind != OutcomeCancelled || out.Screen != "" {
		t.Fatalf("outcome = %+v", out)
	}
	if !b.Log.Contains("supervisor: gracefully exiting") {
		t.Fatalf("log = %q", b.Log.Lines())
	}
	if n := len(b.Disp.Frames()); n != 1 {
		t.Fatalf("frames = %d, want only the init frame", n)
	}
	if b.Aud.Closes() != 1 {
		t.Fatal("audio not released")
	}
	want := []State{StateInitializing, StateRunning, StateShuttingDown, StateTerminated}
	if !reflect.DeepEqual(states, want) {
		t.Fatalf("states = %v, want %v", states, want)
	}
}

func TestRunCompletedKeepsLastFrame(t *testing.T) {
	b := haltest.NewBoard()
	b.Press(0)
	var sawPress bool
	game := func(ctx context.Context, c *console.Console) error {
		sawPress, _ = c.Peripherals.Pressed(console.ButtonW)
		_ = c.Peripherals.SetIndicator(console.SideRight, true)
		tone, err := c.Audio.SynthesizeTone(441)
		if err != nil {
			return err
		}
		if err := c.Audio.PlayForDuration(ctx, tone, 50*time.Millisecond); err != nil {
			return err
		}
		c.Display.Clear(console.White)
		return c.Display.Flip()
	}
	out, states, err := run(t, b, Static(game))
	if err != nil || out.Kind != OutcomeCompleted {
		t.Fatalf("Run = %+v, %v", out, err)
	}
	if !sawPress || !b.LEDRight.Level() {
		t.Fatalf("press=%v led=%v", sawPress, b.LEDRight.Level())
	}
	if b.Aud.Writes() != 5 {
		t.Fatalf("audio writes = %d, want 5", b.Aud.Writes())
	}
	if countPixels(b.Disp.Last(), console.White) != hal.ScreenWidth*hal.ScreenHeight {
		t.Fatal("game frame was replaced")
	}
	if b.Aud.Closes() != 1 {
		t.Fatal("audio not released")
	}
	want := []State{StateInitializing, StateRunning, StateShuttingDown, StateTerminated}
	if !reflect.DeepEqual(states, want) {
		t.Fatalf("states = %v, want %v", states, want)
	}
}

func TestRunAudioFailureIsNotFatal(t *testing.T) {
	b := haltest.NewBoard()
	b.Aud.FailAfter = 1
	game := func(ctx context.Context, c *console.Console) error {
		tone, _ := c.Audio.SynthesizeTone(440)
		return c.Audio.PlayForDuration(ctx, tone, time.Second)
	}
	out, _, err := run(t, b, Static(game))
	if err != nil || out.Kind != OutcomeCompleted {
		t.Fatalf("Run = %+v, %v", out, err)
	}
	if !b.Log.Contains("audio: caught") {
		t.Fatalf("log = %q", b.Log.Lines())
	}
}

func TestRunInitFailure(t *testing.T) {
	b := haltest.NewBoard()
	b.Disp = nil
	out, states, err := run(t, b, Static(nil))
	if err == nil || out.Kind != OutcomeFailed {
		t.Fatalf("Run = %+v, %v", out, err)
	}
	if b.Aud.Closes() != 0 {
		t.Fatal("audio closed without being opened")
	}
	want := []State{StateInitializing, StateShuttingDown, StateTerminated}
	if !reflect.DeepEqual(states, want) {
		t.Fatalf("states = %v, want %v", states, want)
	}
}

func TestRunDisplayFailurePropagates(t *testing.T) {
	b := haltest.NewBoard()
	busErr := errors.New("spi timeout")
	game := func(ctx context.Context, c *console.Console) error {
		b.Disp.Err = busErr
		return errors.New("boom")
	}
	out, _, err := run(t, b, Static(game))
	if !errors.Is(err, console.ErrDisplayWrite) || !errors.Is(err, busErr) {
		t.Fatalf("Run: %v", err)
	}
	if out.Kind != OutcomeFailed {
		t.Fatalf("kind = %v", out.Kind)
	}
	if b.Aud.Closes() != 1 {
		t.Fatal("audio not released")
	}
}

func TestLoaderErrorShowsError(t *testing.T) {
	b := haltest.NewBoard()
	l := LoaderFunc(func(context.Context, *console.Console) (Game, error) {
		return nil, &RuntimeFailure{Type: "SyntaxError", Description: "line 3: unexpected end"}
	})
	out, _, err := run(t, b, l)
	if err != nil || out.Kind != OutcomeFailed {
		t.Fatalf("Run = %+v, %v", out, err)
	}
	if !strings.HasSuffix(out.Screen, "line 3: unexpected end") {
		t.Fatalf("screen = %q", out.Screen)
	}
	if !b.Log.Contains("ERROR OCCURRED: SyntaxError: line 3: unexpected end") {
		t.Fatalf("log = %q", b.Log.Lines())
	}
}
