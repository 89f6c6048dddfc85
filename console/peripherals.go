package console

import (
	"fmt"

	"spryg/hal"
)

// Button identifies one of the eight face buttons.
type Button uint8

const (
	ButtonW Button = iota
	ButtonA
	ButtonS
	ButtonD
	ButtonI
	ButtonJ
	ButtonK
	ButtonL

	buttonCount
)

func (b Button) String() string {
	if b >= buttonCount {
		return fmt.Sprintf("Button(%d)", uint8(b))
	}
	return hal.ButtonPinNames[b]
}

// ParseButton maps a button letter ("W", "A", ...) to its identifier.
func ParseButton(s string) (Button, error) {
	for i, name := range hal.ButtonPinNames {
		if name == s {
			return Button(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidIdentifier, s)
}

// Side selects an indicator LED.
type Side uint8

const (
	SideLeft Side = iota
	SideRight
)

func (s Side) String() string {
	switch s {
	case SideLeft:
		return "L"
	case SideRight:
		return "R"
	default:
		return fmt.Sprintf("Side(%d)", uint8(s))
	}
}

// ParseSide accepts "L" or "R".
func ParseSide(s string) (Side, error) {
	switch s {
	case "L":
		return SideLeft, nil
	case "R":
		return SideRight, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidSide, s)
}

// Peripherals reads the buttons and drives the indicator LEDs.
//
// Buttons are wired active-low with pull-ups. Reads are raw and undebounced.
type Peripherals struct {
	buttons [buttonCount]hal.GPIOPin
	leds    [2]hal.GPIOPin
}

// NewPeripherals configures every button as a pulled-up input and both LEDs as
// outputs. A missing pin is a wiring error.
func NewPeripherals(g hal.GPIO) (*Peripherals, error) {
	p := &Peripherals{}
	for i, name := range hal.ButtonPinNames {
		pin := hal.FindPin(g, name)
		if pin == nil {
			return nil, fmt.Errorf("console: button %s: %w", name, hal.ErrNotImplemented)
		}
		if err := pin.Configure(hal.GPIOModeInput, hal.GPIOPullUp); err != nil {
			return nil, fmt.Errorf("console: button %s: %w", name, err)
		}
		p.buttons[i] = pin
	}
	for i, name := range [2]string{hal.PinLEDLeft, hal.PinLEDRight} {
		pin := hal.FindPin(g, name)
		if pin == nil {
			return nil, fmt.Errorf("console: %s: %w", name, hal.ErrNotImplemented)
		}
		if err := pin.Configure(hal.GPIOModeOutput, hal.GPIOPullNone); err != nil {
			return nil, fmt.Errorf("console: %s: %w", name, err)
		}
		p.leds[i] = pin
	}
	return p, nil
}

// Pressed reports whether b is held down right now.
func (p *Peripherals) Pressed(b Button) (bool, error) {
	if b >= buttonCount {
		return false, fmt.Errorf("%w: %d", ErrInvalidIdentifier, uint8(b))
	}
	level, err := p.buttons[b].Read()
	if err != nil {
		return false, fmt.Errorf("console: button %s: %w", b, err)
	}
	return !level, nil
}

// SetIndicator switches an LED on or off.
func (p *Peripherals) SetIndicator(side Side, on bool) error {
	if side > SideRight {
		return fmt.Errorf("%w: %d", ErrInvalidSide, uint8(side))
	}
	return p.leds[side].Write(on)
}
