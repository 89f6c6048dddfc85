package supervisor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"spryg/console"
)

// ErrGameNotFound means no game is installed. It routes to the welcome screen,
// not the error screen.
var ErrGameNotFound = errors.New("supervisor: game not found")

// Game is a game's entry point. It owns the console until it returns.
//
// A game should return when ctx is done.
type Game func(ctx context.Context, c *console.Console) error

// Loader locates a game. Load returns an error wrapping ErrGameNotFound when
// there is nothing to run.
type Loader interface {
	Load(ctx context.Context, c *console.Console) (Game, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, c *console.Console) (Game, error)

func (f LoaderFunc) Load(ctx context.Context, c *console.Console) (Game, error) { return f(ctx, c) }

// Static always loads g. A nil g loads nothing.
func Static(g Game) Loader {
	return LoaderFunc(func(context.Context, *console.Console) (Game, error) {
		if g == nil {
			return nil, ErrGameNotFound
		}
		return g, nil
	})
}

// Chain tries each loader in order and returns the first result that is not
// ErrGameNotFound.
func Chain(loaders ...Loader) Loader {
	return LoaderFunc(func(ctx context.Context, c *console.Console) (Game, error) {
		for _, l := range loaders {
			if l == nil {
				continue
			}
			g, err := l.Load(ctx, c)
			if errors.Is(err, ErrGameNotFound) {
				continue
			}
			return g, err
		}
		return nil, ErrGameNotFound
	})
}

var (
	gamesMu sync.RWMutex
	games   = make(map[string]Game)
)

// Register makes a compiled-in game available by name. It panics if called
// twice with the same name or with a nil game.
func Register(name string, g Game) {
	gamesMu.Lock()
	defer gamesMu.Unlock()
	if g == nil {
		panic("supervisor: Register game is nil")
	}
	if _, dup := games[name]; dup {
		panic("supervisor: Register called twice for game " + name)
	}
	games[name] = g
}

// Games returns the sorted names of registered games.
func Games() []string {
	gamesMu.RLock()
	defer gamesMu.RUnlock()
	names := make([]string, 0, len(games))
	for name := range games {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Registered loads the game registered under name.
func Registered(name string) Loader {
	return LoaderFunc(func(context.Context, *console.Console) (Game, error) {
		gamesMu.RLock()
		g, ok := games[name]
		gamesMu.RUnlock()
		if !ok {
			return nil, fmt.Errorf("%w: no registered game %q", ErrGameNotFound, name)
		}
		return g, nil
	})
}
