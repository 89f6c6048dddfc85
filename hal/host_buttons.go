//go:build !tinygo

package hal

import (
	"fmt"
	"sync/atomic"
)

// hostKeyboard holds the last sampled state of the button keys.
type hostKeyboard struct {
	pressed [8]atomic.Bool
}

func newHostKeyboard() *hostKeyboard {
	return &hostKeyboard{}
}

// pins returns one idle-high input per button.
func (k *hostKeyboard) pins() []GPIOPin {
	pins := make([]GPIOPin, 0, len(ButtonPinNames))
	for i, name := range ButtonPinNames {
		pins = append(pins, &keyPin{name: name, state: &k.pressed[i]})
	}
	return pins
}

// keyPin behaves like a push button wired to ground with a pull-up: it reads
// high until the key is held.
type keyPin struct {
	name       string
	state      *atomic.Bool
	configured atomic.Bool
}

func (p *keyPin) Name() string   { return p.name }
func (p *keyPin) Caps() GPIOCaps { return GPIOCapInput | GPIOCapPullUp }

func (p *keyPin) Configure(mode GPIOMode, pull GPIOPull) error {
	if mode != GPIOModeInput {
		return fmt.Errorf("gpio: pin %s: only input supported", p.name)
	}
	if pull != GPIOPullUp {
		return fmt.Errorf("gpio: pin %s: requires pull-up", p.name)
	}
	p.configured.Store(true)
	return nil
}

func (p *keyPin) Read() (bool, error) {
	if !p.configured.Load() {
		return false, fmt.Errorf("gpio: pin %s: not configured", p.name)
	}
	return !p.state.Load(), nil
}

func (p *keyPin) Write(level bool) error {
	_ = level
	return fmt.Errorf("gpio: pin %s: output unsupported", p.name)
}
