//go:build !tinygo && cgo

package hal

import (
	"context"
	"errors"
	"image"
	"time"

	"spryg/internal/buildinfo"

	"github.com/hajimehoshi/ebiten/v2"
)

// RunWindow starts a desktop window that shows the last flipped frame and
// feeds key state to the buttons. run executes on its own goroutine; closing
// the window cancels its context. RunWindow blocks until the window closes and
// run has returned.
func RunWindow(ctx context.Context, opts Options, run func(context.Context, HAL) error) error {
	h := newHost(opts, true)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- run(ctx, h) }()

	scale := opts.Scale
	if scale <= 0 {
		scale = 4
	}
	g := &hostGame{h: h, ctx: ctx}
	ebiten.SetWindowTitle("Spryg (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(h.disp.width*scale, h.disp.height*scale)
	ebiten.SetTPS(60)
	werr := ebiten.RunGame(g)
	if errors.Is(werr, ebiten.Termination) {
		werr = nil
	}

	cancel()
	select {
	case err := <-done:
		if werr != nil {
			return werr
		}
		return err
	case <-time.After(2 * time.Second):
		if werr != nil {
			return werr
		}
		return errors.New("window closed; console did not stop")
	}
}

type hostGame struct {
	h       *hostHAL
	ctx     context.Context
	img     *image.RGBA
	fbImg   *ebiten.Image
	scratch []byte
	seen    uint64
}

func (g *hostGame) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}
	g.h.kbd.poll()
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	d := g.h.disp
	if g.img == nil {
		g.img = image.NewRGBA(image.Rect(0, 0, d.width, d.height))
		g.scratch = make([]byte, d.width*d.height*2)
		g.fbImg = ebiten.NewImage(d.width, d.height)
	}

	if n := d.snapshot(g.scratch); n != g.seen {
		g.seen = n
		src := g.scratch
		dst := g.img.Pix
		for i := 0; i+1 < len(src) && i/2*4+3 < len(dst); i += 2 {
			r, gg, b := RGB888From565(uint16(src[i])<<8 | uint16(src[i+1]))
			j := (i / 2) * 4
			dst[j+0] = r
			dst[j+1] = gg
			dst[j+2] = b
			dst[j+3] = 0xFF
		}
		g.fbImg.WritePixels(g.img.Pix)
	}
	screen.DrawImage(g.fbImg, nil)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.h.disp.width, g.h.disp.height
}
