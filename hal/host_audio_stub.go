//go:build !tinygo && !cgo

package hal

// newEbitenAudio reports no device when CGO/window backends are unavailable;
// the host falls back to the paced sink.
func newEbitenAudio() Audio { return nil }
