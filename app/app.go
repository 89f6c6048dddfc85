package app

import (
	"context"

	"spryg/hal"
	"spryg/internal/buildinfo"
	"spryg/luagame"
	"spryg/supervisor"
)

// Config selects which game the supervisor loads.
type Config struct {
	// Game is the name of a compiled-in game (supervisor.Register).
	Game string
	// Script is the Lua file on storage, tried when no compiled-in game has
	// the name Game.
	Script string
}

// DefaultConfig looks for a registered "game" first, then game.lua.
var DefaultConfig = Config{Game: "game", Script: luagame.DefaultScript}

func (cfg Config) loader() supervisor.Loader {
	return supervisor.Chain(
		supervisor.Registered(cfg.Game),
		luagame.Loader{Path: cfg.Script},
	)
}

// New returns a supervisor for one run of the configured game.
func New(h hal.HAL, cfg Config, opts ...supervisor.Option) *supervisor.Supervisor {
	return supervisor.New(h, cfg.loader(), opts...)
}

// Run boots the console and runs the game once. The screen is left as the
// game or the supervisor last drew it.
func Run(ctx context.Context, h hal.HAL, cfg Config) (supervisor.Outcome, error) {
	if l := h.Logger(); l != nil {
		l.WriteLineString("spryg " + buildinfo.String())
	}
	out, err := New(h, cfg).Run(ctx)
	if l := h.Logger(); l != nil {
		l.WriteLineString("supervisor: " + out.Kind.String())
	}
	return out, err
}

// RunForever runs the game once and then blocks forever (TinyGo entrypoint).
// The board has to be reset to start again.
func RunForever(h hal.HAL, cfg Config) {
	if _, err := Run(context.Background(), h, cfg); err != nil {
		if l := h.Logger(); l != nil {
			l.WriteLineString("supervisor: " + err.Error())
		}
	}
	select {}
}
