//go:build tinygo && baremetal

package hal

import (
	"errors"
	"machine"
	"time"
)

var errPWMClosed = errors.New("pwm audio: output closed")

// tinyGoAudio is the PWM fallback for when no PIO state machine is free.
type tinyGoAudio struct {
	pwm *pwmAudioOut
}

func newTinyGoAudio(pin machine.Pin) Audio {
	return &tinyGoAudio{pwm: newPWMAudioOut(pin)}
}

func (a *tinyGoAudio) Open(cfg AudioConfig) (AudioOut, error) {
	if a.pwm == nil {
		return nil, ErrNotImplemented
	}
	if err := a.pwm.start(cfg); err != nil {
		return nil, err
	}
	return a.pwm, nil
}

type pwmDevice interface {
	Configure(config machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	SetTop(top uint32)
	Top() uint32
	Set(channel uint8, value uint32)
	Enable(enable bool)
}

// pwmAudioOut drives a filtered PWM pin at the audio sample rate. Write
// busy-waits between samples, so it blocks for the playback time of the
// buffer like the I2S DMA path it stands in for.
type pwmAudioOut struct {
	pin machine.Pin
	pwm pwmDevice
	ch  uint8
	top uint32

	period  time.Duration
	width   int
	next    time.Time
	started bool
}

func newPWMAudioOut(pin machine.Pin) *pwmAudioOut {
	pwm := pwmForPin(pin)
	if pwm == nil {
		return nil
	}
	return &pwmAudioOut{pin: pin, pwm: pwm}
}

func pwmForPin(pin machine.Pin) pwmDevice {
	slice, err := machine.PWMPeripheral(pin)
	if err != nil {
		return nil
	}
	switch slice {
	case 0:
		return machine.PWM0
	case 1:
		return machine.PWM1
	case 2:
		return machine.PWM2
	case 3:
		return machine.PWM3
	case 4:
		return machine.PWM4
	case 5:
		return machine.PWM5
	case 6:
		return machine.PWM6
	case 7:
		return machine.PWM7
	default:
		return nil
	}
}

func (a *pwmAudioOut) start(cfg AudioConfig) error {
	if cfg.SampleRate == 0 {
		return errors.New("pwm audio: invalid sample rate")
	}
	if cfg.BitsPerSample != 16 && cfg.BitsPerSample != 32 {
		return errors.New("pwm audio: unsupported sample width")
	}
	// Use a fixed PWM carrier (~62.5kHz) and update duty at the audio sample rate.
	const pwmCarrierHz = 62500
	if err := a.pwm.Configure(machine.PWMConfig{Period: 1e9 / pwmCarrierHz}); err != nil {
		return err
	}
	ch, err := a.pwm.Channel(a.pin)
	if err != nil {
		return err
	}
	a.ch = ch
	a.pwm.SetTop(0xFFFF)
	a.top = a.pwm.Top()
	a.pwm.Set(a.ch, a.top/2)
	a.pwm.Enable(true)
	a.period = time.Second / time.Duration(cfg.SampleRate)
	a.width = int(cfg.BitsPerSample / 8)
	a.next = time.Time{}
	a.started = true
	return nil
}

func (a *pwmAudioOut) Write(pcm []byte) (int, error) {
	if !a.started {
		return 0, errPWMClosed
	}
	now := time.Now()
	if a.next.Before(now) {
		a.next = now
	}
	n := 0
	for off := 0; off+a.width <= len(pcm); off += a.width {
		s := int32(sample16(pcm, off, a.width))
		u := uint32(s + 32768)
		a.pwm.Set(a.ch, (u*a.top)/65535)
		a.next = a.next.Add(a.period)
		for time.Now().Before(a.next) {
		}
		n += a.width
	}
	return n, nil
}

func (a *pwmAudioOut) Close() error {
	if !a.started {
		return nil
	}
	a.pwm.Set(a.ch, a.top/2)
	a.pwm.Enable(false)
	a.started = false
	return nil
}
