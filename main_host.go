//go:build !tinygo

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"spryg/app"
	"spryg/hal"
)

func main() {
	var opts hal.Options
	cfg := app.DefaultConfig
	var headless, watch bool
	flag.BoolVar(&headless, "headless", false, "Run without a window.")
	flag.StringVar(&opts.StorageDir, "storage", os.Getenv("SPRYG_STORAGE"), "Directory mounted as the SD card (env SPRYG_STORAGE).")
	flag.StringVar(&cfg.Game, "game", cfg.Game, "Name of a compiled-in game.")
	flag.StringVar(&cfg.Script, "script", cfg.Script, "Lua game file on storage.")
	flag.BoolVar(&watch, "watch", false, "Restart the game when the script changes.")
	flag.StringVar(&opts.WAVPath, "wav", "", "Capture audio to a WAV file (headless only).")
	flag.IntVar(&opts.Scale, "scale", 4, "Window zoom factor.")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	run := func(ctx context.Context, h hal.HAL) error {
		if watch {
			return app.Watch(ctx, h, cfg)
		}
		_, err := app.Run(ctx, h, cfg)
		if err != nil {
			return err
		}
		if headless {
			return nil
		}
		<-ctx.Done()
		return nil
	}

	var err error
	if headless {
		err = hal.RunHeadless(ctx, opts, run)
	} else {
		err = hal.RunWindow(ctx, opts, run)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
