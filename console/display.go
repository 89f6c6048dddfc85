package console

import (
	"fmt"
	"image/color"
	"strings"

	"spryg/hal"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

// Color is a packed RGB565 value.
type Color uint16

const (
	Black Color = 0x0000
	White Color = 0xFFFF
	Red   Color = 0xF800
)

// RGB packs 8-bit channels.
func RGB(r, g, b uint8) Color { return Color(hal.RGB565(r, g, b)) }

// RGBA expands c for tinyfont and other drivers.Displayer clients.
func (c Color) RGBA() color.RGBA {
	r, g, b := hal.RGB888From565(uint16(c))
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// DefaultLineHeight is the text pitch used when DrawText is given zero.
const DefaultLineHeight = 10

const glyphBaseline = 8

var textFont = &proggy.TinySZ8pt7b

// Surface owns the off-screen frame buffer. Drawing only touches memory; Flip
// makes it visible.
//
// Surface implements drivers.Displayer, so tinyfont and tinydraw can draw into
// it directly. Display() is Flip.
type Surface struct {
	disp hal.Display
	w, h int
	buf  []byte
}

var _ drivers.Displayer = (*Surface)(nil)

// NewSurface allocates a frame buffer matching d.
func NewSurface(d hal.Display) (*Surface, error) {
	if d == nil {
		return nil, fmt.Errorf("console: display: %w", hal.ErrNotImplemented)
	}
	if f := d.Format(); f != hal.PixelFormatRGB565BE {
		return nil, fmt.Errorf("console: display: unsupported pixel format %d", f)
	}
	w, h := d.Size()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("console: display: bad size %dx%d", w, h)
	}
	return &Surface{disp: d, w: w, h: h, buf: make([]byte, w*h*2)}, nil
}

// Size returns the screen size in pixels.
func (s *Surface) Size() (x, y int16) { return int16(s.w), int16(s.h) }

// SetPixel converts c to RGB565 and writes it like SetPixel565.
func (s *Surface) SetPixel(x, y int16, c color.RGBA) {
	s.SetPixel565(int(x), int(y), RGB(c.R, c.G, c.B))
}

// Display flips the frame; it satisfies drivers.Displayer.
func (s *Surface) Display() error { return s.Flip() }

// SetPixel565 writes one pixel; coordinates outside the screen are ignored.
func (s *Surface) SetPixel565(x, y int, c Color) {
	if x < 0 || y < 0 || x >= s.w || y >= s.h {
		return
	}
	off := (y*s.w + x) * 2
	s.buf[off] = byte(c >> 8)
	s.buf[off+1] = byte(c)
}

// Pixel reads back one pixel from the frame buffer.
func (s *Surface) Pixel(x, y int) Color {
	return Color(hal.PixelAt(s.buf, s.w, x, y))
}

// Clear fills the whole frame buffer with c.
func (s *Surface) Clear(c Color) {
	s.FillRect(0, 0, s.w, s.h, c)
}

// FillRect fills the rectangle clipped to the screen.
func (s *Surface) FillRect(x, y, w, h int, c Color) {
	x0, y0 := max(x, 0), max(y, 0)
	x1, y1 := min(x+w, s.w), min(y+h, s.h)
	if x0 >= x1 || y0 >= y1 {
		return
	}
	hi, lo := byte(c>>8), byte(c)
	for yy := y0; yy < y1; yy++ {
		row := s.buf[(yy*s.w+x0)*2 : (yy*s.w+x1)*2]
		for i := 0; i < len(row); i += 2 {
			row[i] = hi
			row[i+1] = lo
		}
	}
}

// DrawText draws each line of text from the top-left corner, lineHeight pixels
// apart (DefaultLineHeight when lineHeight <= 0). Nothing wraps; glyphs that
// fall off the screen are dropped.
func (s *Surface) DrawText(text string, c Color, lineHeight int) {
	if lineHeight <= 0 {
		lineHeight = DefaultLineHeight
	}
	fg := c.RGBA()
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		y := i*lineHeight + glyphBaseline
		if y-glyphBaseline >= s.h {
			break
		}
		tinyfont.WriteLine(s, textFont, 0, int16(y), line, fg)
	}
}

// Flip transmits the frame buffer to the panel in one transaction.
func (s *Surface) Flip() error {
	if err := s.disp.WriteWindow(s.buf); err != nil {
		return fmt.Errorf("%w: %w", ErrDisplayWrite, err)
	}
	return nil
}

// ShowText replaces the screen with text on a black background.
func (s *Surface) ShowText(text string, c Color) error {
	s.Clear(Black)
	s.DrawText(text, c, DefaultLineHeight)
	return s.Flip()
}
