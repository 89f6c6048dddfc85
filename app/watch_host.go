//go:build !tinygo

package app

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"time"

	"spryg/hal"

	"github.com/howeyc/fsnotify"
)

// Watch runs the game and reruns it each time the script in the host storage
// directory changes. A run that is still going when the script changes is
// cancelled first. Watch returns when ctx is done.
//
// Without a storage directory there is nothing to watch and Watch is Run.
func Watch(ctx context.Context, h hal.HAL, cfg Config) error {
	dir, ok := hal.StoragePath(h.Storage())
	if !ok {
		_, err := Run(ctx, h, cfg)
		return err
	}
	script := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+cfg.Script)))

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Watch(filepath.Dir(script)); err != nil {
		return err
	}

	logf := func(format string, args ...any) {
		if l := h.Logger(); l != nil {
			l.WriteLineString(fmt.Sprintf(format, args...))
		}
	}

	for {
		runCtx, cancel := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func() {
			_, err := Run(runCtx, h, cfg)
			done <- err
		}()

		running := true
		var reload <-chan time.Time
	wait:
		for {
			select {
			case <-ctx.Done():
				cancel()
				if running {
					<-done
				}
				return nil
			case err := <-done:
				running = false
				if err != nil {
					logf("dev: %v", err)
				}
			case ev := <-watcher.Event:
				if filepath.Clean(ev.Name) == script && !ev.IsAttrib() {
					reload = time.After(100 * time.Millisecond)
				}
			case err := <-watcher.Error:
				logf("dev: watcher: %v", err)
			case <-reload:
				logf("dev: reload %s", filepath.Base(script))
				cancel()
				if running {
					<-done
				}
				break wait
			}
		}
	}
}
