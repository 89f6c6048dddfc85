//go:build !tinygo

package hal

import "context"

// RunHeadless runs the console without opening a window. It returns whatever
// run returns.
func RunHeadless(ctx context.Context, opts Options, run func(context.Context, HAL) error) error {
	h := newHost(opts, false)
	return run(ctx, h)
}
