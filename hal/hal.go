package hal

import "errors"

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

var ErrNotImplemented = errors.New("not implemented")

// Screen geometry of the console panel.
const (
	ScreenWidth  = 160
	ScreenHeight = 128
)

// PixelFormat defines the framebuffer pixel encoding.
type PixelFormat uint8

const (
	// PixelFormatRGB565BE is 16bpp rrrrrggggggbbbbb, most significant byte first
	// (the order the panel controller consumes).
	PixelFormatRGB565BE PixelFormat = iota + 1
)

// Display is the panel controller as seen by the frame buffer owner.
//
// The addressing window covers the full screen and is established once when the
// backend is constructed.
type Display interface {
	Size() (w, h int)
	Format() PixelFormat
	// WriteWindow transmits a full frame in a single transaction.
	WriteWindow(buf []byte) error
}

// AudioConfig is fixed at open time.
type AudioConfig struct {
	SampleRate    uint32
	BitsPerSample uint8
	Channels      uint8
	BufferBytes   int
}

// DefaultAudioConfig matches the I2S amplifier on the console.
var DefaultAudioConfig = AudioConfig{
	SampleRate:    22050,
	BitsPerSample: 16,
	Channels:      1,
	BufferBytes:   2000,
}

// AudioOut is an open sample sink.
type AudioOut interface {
	// Write queues little-endian PCM. It may block until buffer space is available.
	Write(pcm []byte) (int, error)
	// Close releases the output.
	Close() error
}

// Audio opens the audio output.
type Audio interface {
	Open(cfg AudioConfig) (AudioOut, error)
}

// Storage is an optional removable filesystem (the SD card).
//
// Missing files must satisfy errors.Is(err, fs.ErrNotExist).
type Storage interface {
	Mount() error
	ReadDir(dir string) ([]string, error)
	ReadFile(name string) ([]byte, error)
}

// Clock is a monotonic millisecond counter that wraps around.
//
// Readings must only be compared with TicksDiff.
type Clock interface {
	Millis() uint32
}

// TicksDiff returns the signed distance from start to end, correct across one
// wraparound of the counter.
func TicksDiff(end, start uint32) int32 {
	return int32(end - start)
}

// Pin names used by FindPin.
const (
	PinLEDLeft   = "LED_L"
	PinLEDRight  = "LED_R"
	PinBacklight = "BACKLIGHT"
)

// ButtonPinNames lists the input pins in button order.
var ButtonPinNames = [8]string{"W", "A", "S", "D", "I", "J", "K", "L"}

// HAL provides the only contact point between the console and the outside world.
type HAL interface {
	Logger() Logger
	Clock() Clock
	GPIO() GPIO
	Display() Display
	Audio() Audio
	// Storage returns nil when the board has no storage slot.
	Storage() Storage
}
