//go:build !tinygo

package hal

import "sync"

// hostDisplay latches every transmitted frame; the window backend reads the
// latched copy.
type hostDisplay struct {
	mu     sync.Mutex
	width  int
	height int
	frame  []byte
	frames uint64
}

func newHostDisplay(width, height int) *hostDisplay {
	return &hostDisplay{
		width:  width,
		height: height,
		frame:  make([]byte, width*height*2),
	}
}

func (d *hostDisplay) Size() (int, int)    { return d.width, d.height }
func (d *hostDisplay) Format() PixelFormat { return PixelFormatRGB565BE }

func (d *hostDisplay) WriteWindow(buf []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	copy(d.frame, buf)
	d.frames++
	return nil
}

func (d *hostDisplay) snapshot(dst []byte) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	copy(dst, d.frame)
	return d.frames
}
