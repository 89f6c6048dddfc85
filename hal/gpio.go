package hal

import (
	"fmt"
	"sync"
)

// GPIOMode selects whether a pin is an input or output.
type GPIOMode uint8

const (
	GPIOModeInput GPIOMode = iota
	GPIOModeOutput
)

// GPIOPull selects the pull resistor configuration.
type GPIOPull uint8

const (
	GPIOPullNone GPIOPull = iota
	GPIOPullUp
	GPIOPullDown
)

// GPIOCaps declares what operations a pin supports.
type GPIOCaps uint8

const (
	GPIOCapInput GPIOCaps = 1 << iota
	GPIOCapOutput
	GPIOCapPullUp
	GPIOCapPullDown
)

// GPIO provides access to general-purpose IO pins.
type GPIO interface {
	PinCount() int
	Pin(id int) GPIOPin
}

// GPIOPin is a single digital IO pin.
type GPIOPin interface {
	Name() string
	Caps() GPIOCaps
	Configure(mode GPIOMode, pull GPIOPull) error
	Read() (level bool, err error)
	Write(level bool) error
}

// FindPin returns the pin with the given name, or nil.
func FindPin(g GPIO, name string) GPIOPin {
	if g == nil {
		return nil
	}
	for i := 0; i < g.PinCount(); i++ {
		p := g.Pin(i)
		if p != nil && p.Name() == name {
			return p
		}
	}
	return nil
}

type nullGPIO struct{}

func (nullGPIO) PinCount() int      { return 0 }
func (nullGPIO) Pin(id int) GPIOPin { return nil }

type virtualGPIO struct {
	pins []GPIOPin
}

// NewVirtualGPIO groups pins into a GPIO bank. Nil pins are skipped.
func NewVirtualGPIO(pins ...GPIOPin) GPIO {
	kept := pins[:0:0]
	for _, p := range pins {
		if p != nil {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		return nullGPIO{}
	}
	return &virtualGPIO{pins: kept}
}

func (g *virtualGPIO) PinCount() int {
	if g == nil {
		return 0
	}
	return len(g.pins)
}

func (g *virtualGPIO) Pin(id int) GPIOPin {
	if g == nil || id < 0 || id >= len(g.pins) {
		return nil
	}
	return g.pins[id]
}

// VirtualPin is an in-memory pin. An input floats to its pull level until
// something drives it.
type VirtualPin struct {
	mu         sync.Mutex
	name       string
	caps       GPIOCaps
	configured bool
	mode       GPIOMode
	pull       GPIOPull
	level      bool
	driven     bool
	drive      bool
}

// NewVirtualPin returns an unconfigured pin.
func NewVirtualPin(name string, caps GPIOCaps) *VirtualPin {
	return &VirtualPin{name: name, caps: caps}
}

func (p *VirtualPin) Name() string   { return p.name }
func (p *VirtualPin) Caps() GPIOCaps { return p.caps }

func (p *VirtualPin) Configure(mode GPIOMode, pull GPIOPull) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch mode {
	case GPIOModeInput:
		if p.caps&GPIOCapInput == 0 {
			return fmt.Errorf("gpio: pin %s: input unsupported", p.name)
		}
	case GPIOModeOutput:
		if p.caps&GPIOCapOutput == 0 {
			return fmt.Errorf("gpio: pin %s: output unsupported", p.name)
		}
	default:
		return fmt.Errorf("gpio: pin %s: invalid mode", p.name)
	}

	switch pull {
	case GPIOPullNone:
	case GPIOPullUp:
		if p.caps&GPIOCapPullUp == 0 {
			return fmt.Errorf("gpio: pin %s: pull-up unsupported", p.name)
		}
	case GPIOPullDown:
		if p.caps&GPIOCapPullDown == 0 {
			return fmt.Errorf("gpio: pin %s: pull-down unsupported", p.name)
		}
	default:
		return fmt.Errorf("gpio: pin %s: invalid pull", p.name)
	}

	p.configured = true
	p.mode = mode
	p.pull = pull
	return nil
}

func (p *VirtualPin) Read() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.configured {
		return false, fmt.Errorf("gpio: pin %s: not configured", p.name)
	}
	if p.mode == GPIOModeOutput {
		return p.level, nil
	}
	if p.driven {
		return p.drive, nil
	}
	return p.pull == GPIOPullUp, nil
}

func (p *VirtualPin) Write(level bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.configured || p.mode != GPIOModeOutput {
		return fmt.Errorf("gpio: pin %s: not in output mode", p.name)
	}
	p.level = level
	return nil
}

// Drive forces the externally applied level of an input (a pressed button
// pulls its line low).
func (p *VirtualPin) Drive(level bool) {
	p.mu.Lock()
	p.driven = true
	p.drive = level
	p.mu.Unlock()
}

// Release lets the input float back to its pull level.
func (p *VirtualPin) Release() {
	p.mu.Lock()
	p.driven = false
	p.mu.Unlock()
}

// Level reports the last written output level.
func (p *VirtualPin) Level() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level
}

// LED is a minimal output pin abstraction.
type LED interface {
	High()
	Low()
}

type ledPin struct {
	mu    sync.Mutex
	led   LED
	name  string
	level bool
}

// NewLEDPin adapts an LED to an output-only pin.
func NewLEDPin(name string, led LED) GPIOPin {
	if led == nil {
		return nil
	}
	return &ledPin{led: led, name: name}
}

func (p *ledPin) Name() string   { return p.name }
func (p *ledPin) Caps() GPIOCaps { return GPIOCapOutput }

func (p *ledPin) Configure(mode GPIOMode, pull GPIOPull) error {
	if mode != GPIOModeOutput {
		return fmt.Errorf("gpio: pin %s: only output supported", p.name)
	}
	if pull != GPIOPullNone {
		return fmt.Errorf("gpio: pin %s: pull unsupported", p.name)
	}
	return nil
}

func (p *ledPin) Read() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level, nil
}

func (p *ledPin) Write(level bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level = level
	if level {
		p.led.High()
	} else {
		p.led.Low()
	}
	return nil
}
