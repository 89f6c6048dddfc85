// Package supervisor runs one game on the console and guarantees the screen
// and the audio output are left in a known state however the game ends.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"

	"spryg/console"
	"spryg/hal"
)

// State is a step of the supervisor lifecycle:
//
//	Initializing -> Running -> (Idle | ErrorDisplay) -> ShuttingDown -> Terminated
type State uint8

const (
	StateInitializing State = iota
	StateRunning
	StateIdle
	StateErrorDisplay
	StateShuttingDown
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateRunning:
		return "running"
	case StateIdle:
		return "idle"
	case StateErrorDisplay:
		return "error-display"
	case StateShuttingDown:
		return "shutting-down"
	case StateTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// OutcomeKind classifies how a run ended.
type OutcomeKind uint8

const (
	OutcomeCompleted OutcomeKind = iota
	OutcomeNotFound
	OutcomeFailed
	OutcomeCancelled
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeCompleted:
		return "completed"
	case OutcomeNotFound:
		return "not-found"
	case OutcomeFailed:
		return "failed"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", uint8(k))
	}
}

// Outcome reports how the game ended and what was left on screen.
type Outcome struct {
	Kind OutcomeKind
	// Err is the error the game or loader returned, if any.
	Err error
	// Screen is the text shown by the supervisor; empty when the game's last
	// frame was left untouched.
	Screen string
}

// RuntimeFailure is a game error or panic as shown on the error screen.
type RuntimeFailure struct {
	Type        string
	Description string
	Stack       []byte
	Err         error
}

func (f *RuntimeFailure) Error() string {
	return f.Type + ": " + f.Description
}

func (f *RuntimeFailure) Unwrap() error { return f.Err }

const welcomeText = `Welcome to Spryg!
It seems that there
is no game loaded on
this console. For
instructions, refer
to the Spryg docs on
Github. Good luck!
____________________

If you did load a
game, be sure to
file a bug report
on Github.`

const errorText = `An error occurred.
If you're debugging
your game with a
computer, you can
see the error on the
serial console.
Otherwise, restart
your Spryg.
The type of error
seems to be:
`

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithStateHook calls fn on every state transition.
func WithStateHook(fn func(State)) Option {
	return func(s *Supervisor) { s.onState = fn }
}

// Supervisor owns the console for one run.
type Supervisor struct {
	h       hal.HAL
	loader  Loader
	log     hal.Logger
	state   State
	onState func(State)
}

// New returns a supervisor that runs the game found by loader on h.
func New(h hal.HAL, loader Loader, opts ...Option) *Supervisor {
	s := &Supervisor{h: h, loader: loader, log: h.Logger()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current lifecycle state.
func (s *Supervisor) State() State { return s.state }

// Run builds the console, loads and runs the game, and ends in Terminated with
// the audio output released on every path.
//
// A missing game shows the welcome screen; any other game error or panic shows
// the error screen. Cancellation of ctx leaves the screen alone. The returned
// error is non-nil only when the console could not be built or the final
// screen could not be drawn.
func (s *Supervisor) Run(ctx context.Context) (out Outcome, err error) {
	s.enter(StateInitializing)
	c, err := console.New(s.h)
	if err != nil {
		s.logf("supervisor: init: %v", err)
		s.enter(StateShuttingDown)
		s.enter(StateTerminated)
		return Outcome{Kind: OutcomeFailed, Err: err}, err
	}
	defer func() {
		s.enter(StateShuttingDown)
		if cerr := c.Close(); cerr != nil {
			s.logf("supervisor: audio release: %v", cerr)
		}
		s.enter(StateTerminated)
	}()

	s.enter(StateRunning)
	gameErr := s.play(ctx, c)

	switch {
	case ctx.Err() != nil:
		s.logf("supervisor: gracefully exiting")
		return Outcome{Kind: OutcomeCancelled, Err: gameErr}, nil

	case gameErr == nil:
		return Outcome{Kind: OutcomeCompleted}, nil

	case errors.Is(gameErr, ErrGameNotFound):
		s.enter(StateIdle)
		s.logf("supervisor: %v", gameErr)
		out = Outcome{Kind: OutcomeNotFound, Err: gameErr, Screen: welcomeText}
		return out, c.Display.ShowText(welcomeText, console.White)

	default:
		s.enter(StateErrorDisplay)
		f := asFailure(gameErr)
		s.logFailure(f)
		screen := errorText + f.Description
		out = Outcome{Kind: OutcomeFailed, Err: gameErr, Screen: screen}
		return out, c.Display.ShowText(screen, console.Red)
	}
}

func (s *Supervisor) play(ctx context.Context, c *console.Console) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicFailure(r, debug.Stack())
		}
	}()

	if s.loader == nil {
		return ErrGameNotFound
	}
	g, err := s.loader.Load(ctx, c)
	if err != nil {
		return err
	}
	if g == nil {
		return ErrGameNotFound
	}
	return g(ctx, c)
}

func panicFailure(r any, stack []byte) *RuntimeFailure {
	f := &RuntimeFailure{
		Type:        fmt.Sprintf("%T", r),
		Description: fmt.Sprint(r),
		Stack:       stack,
	}
	if err, ok := r.(error); ok {
		f.Err = err
	}
	return f
}

func asFailure(err error) *RuntimeFailure {
	var f *RuntimeFailure
	if errors.As(err, &f) {
		return f
	}
	return &RuntimeFailure{
		Type:        fmt.Sprintf("%T", err),
		Description: err.Error(),
		Err:         err,
	}
}

func (s *Supervisor) logFailure(f *RuntimeFailure) {
	s.logf("ERROR OCCURRED: %s: %s", f.Type, f.Description)
	for _, line := range strings.Split(string(f.Stack), "\n") {
		if line == "" {
			continue
		}
		s.logf("%s", line)
	}
}

func (s *Supervisor) enter(st State) {
	s.state = st
	if s.onState != nil {
		s.onState(st)
	}
}

func (s *Supervisor) logf(format string, args ...any) {
	if s.log == nil {
		return
	}
	s.log.WriteLineString(fmt.Sprintf(format, args...))
}
