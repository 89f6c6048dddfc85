package console

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"
	"time"

	"spryg/hal"
	"spryg/hal/haltest"
)

func newTestEngine(t *testing.T, start uint32) (*AudioEngine, *haltest.Audio, *haltest.Logger) {
	t.Helper()
	clk := haltest.NewClock(start)
	out := &haltest.Audio{Clock: clk, WriteCost: 10}
	log := &haltest.Logger{}
	a, err := NewAudioEngine(out, hal.DefaultAudioConfig, clk, log)
	if err != nil {
		t.Fatalf("NewAudioEngine: %v", err)
	}
	return a, out, log
}

func TestSynthesizeTone(t *testing.T) {
	a, _, _ := newTestEngine(t, 0)

	for _, f := range []int{1, 100, 441, 440, 1000, 11025, 22050} {
		tone, err := a.SynthesizeTone(f)
		if err != nil {
			t.Fatalf("SynthesizeTone(%d): %v", f, err)
		}
		want := 22050 / f
		if len(tone.Samples) != want || len(tone.PCM) != want*2 {
			t.Fatalf("SynthesizeTone(%d): %d samples, %d bytes; want %d", f, len(tone.Samples), len(tone.PCM), want)
		}
		for i, s := range tone.Samples {
			if s < 0 || s >= 2*1024 {
				t.Fatalf("SynthesizeTone(%d): sample %d = %d out of range", f, i, s)
			}
			if got := int32(int16(binary.LittleEndian.Uint16(tone.PCM[i*2:]))); got != s {
				t.Fatalf("SynthesizeTone(%d): packed sample %d = %d, want %d", f, i, got, s)
			}
		}
	}
}

func TestSynthesizeTone441(t *testing.T) {
	a, _, _ := newTestEngine(t, 0)
	tone, err := a.SynthesizeTone(441)
	if err != nil {
		t.Fatalf("SynthesizeTone: %v", err)
	}
	if len(tone.Samples) != 50 {
		t.Fatalf("samples = %d, want 50", len(tone.Samples))
	}
	// Quarter period peaks, three quarters troughs, both half periods mirror.
	if tone.Samples[0] != 1024 || tone.Samples[25] != 1024 {
		t.Fatalf("zero crossings = %d, %d", tone.Samples[0], tone.Samples[25])
	}
	if tone.Samples[12] <= 1024 || tone.Samples[37] >= 1024 {
		t.Fatalf("peak=%d trough=%d", tone.Samples[12], tone.Samples[37])
	}
	for i := 1; i < 25; i++ {
		if d := (tone.Samples[i] - 1024) + (tone.Samples[i+25] - 1024); d < -1 || d > 1 {
			t.Fatalf("half periods differ at %d: %d vs %d", i, tone.Samples[i], tone.Samples[i+25])
		}
	}
}

func TestSynthesizeToneInvalid(t *testing.T) {
	a, _, _ := newTestEngine(t, 0)
	for _, f := range []int{0, -1, -440, 22051, 100000} {
		if _, err := a.SynthesizeTone(f); !errors.Is(err, ErrInvalidFrequency) {
			t.Fatalf("SynthesizeTone(%d): %v", f, err)
		}
	}
}

func TestSynthesizeTone32Bit(t *testing.T) {
	cfg := hal.DefaultAudioConfig
	cfg.BitsPerSample = 32
	tone, err := synthesize(cfg, 441)
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	const amp = 1 << 26
	if len(tone.PCM) != 50*4 {
		t.Fatalf("bytes = %d", len(tone.PCM))
	}
	if got := int32(binary.LittleEndian.Uint32(tone.PCM)); got != amp {
		t.Fatalf("sample 0 = %d, want %d", got, amp)
	}
	for i, s := range tone.Samples {
		if s < 0 || s >= 2*amp {
			t.Fatalf("sample %d = %d out of range", i, s)
		}
	}
}

func TestPlayForDuration(t *testing.T) {
	a, out, _ := newTestEngine(t, 0)
	tone, _ := a.SynthesizeTone(441)

	if err := a.PlayForDuration(context.Background(), tone, time.Second); err != nil {
		t.Fatalf("PlayForDuration: %v", err)
	}
	if n := out.Writes(); n != 100 {
		t.Fatalf("writes = %d, want 100", n)
	}
	if got := out.LastWrite(); string(got) != string(tone.PCM) {
		t.Fatal("expected the tone buffer written verbatim")
	}
}

func TestPlayForDurationAcrossWrap(t *testing.T) {
	a, out, _ := newTestEngine(t, 0xFFFFFFFF-95)
	tone, _ := a.SynthesizeTone(441)

	if err := a.PlayForDuration(context.Background(), tone, 200*time.Millisecond); err != nil {
		t.Fatalf("PlayForDuration: %v", err)
	}
	if n := out.Writes(); n != 20 {
		t.Fatalf("writes = %d, want 20", n)
	}
}

func TestPlayForDurationSwallowsWriteFailure(t *testing.T) {
	a, out, log := newTestEngine(t, 0)
	out.FailAfter = 3
	tone, _ := a.SynthesizeTone(441)

	if err := a.PlayForDuration(context.Background(), tone, time.Second); err != nil {
		t.Fatalf("PlayForDuration: %v", err)
	}
	if n := out.Writes(); n != 3 {
		t.Fatalf("writes = %d, want 3", n)
	}
	if !log.Contains("audio: caught *errors.errorString haltest: audio write failed") {
		t.Fatalf("log = %q", log.Lines())
	}
}

func TestPlayForDurationCancelled(t *testing.T) {
	a, out, log := newTestEngine(t, 0)
	tone, _ := a.SynthesizeTone(441)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := a.PlayForDuration(ctx, tone, time.Second); !errors.Is(err, context.Canceled) {
		t.Fatalf("PlayForDuration: %v", err)
	}
	if n := out.Writes(); n != 0 {
		t.Fatalf("writes = %d, want 0", n)
	}
	if !log.Contains("audio: interrupted") {
		t.Fatalf("log = %q", log.Lines())
	}
}

func TestPlayForDurationZero(t *testing.T) {
	a, out, _ := newTestEngine(t, 0)
	tone, _ := a.SynthesizeTone(441)
	if err := a.PlayForDuration(context.Background(), tone, 0); err != nil {
		t.Fatalf("PlayForDuration: %v", err)
	}
	if err := a.PlayForDuration(context.Background(), ToneBuffer{}, time.Second); err != nil {
		t.Fatalf("PlayForDuration(empty): %v", err)
	}
	if n := out.Writes(); n != 0 {
		t.Fatalf("writes = %d, want 0", n)
	}
}

func TestNewAudioEngineRejects(t *testing.T) {
	clk := haltest.NewClock(0)
	if _, err := NewAudioEngine(nil, hal.DefaultAudioConfig, clk, nil); !errors.Is(err, hal.ErrNotImplemented) {
		t.Fatalf("nil audio: %v", err)
	}
	cfg := hal.DefaultAudioConfig
	cfg.BitsPerSample = 8
	if _, err := NewAudioEngine(&haltest.Audio{}, cfg, clk, nil); err == nil {
		t.Fatal("expected 8-bit to be rejected")
	}
	openErr := errors.New("busy")
	if _, err := NewAudioEngine(&haltest.Audio{OpenErr: openErr}, hal.DefaultAudioConfig, clk, nil); !errors.Is(err, openErr) {
		t.Fatalf("open error: %v", err)
	}
}
