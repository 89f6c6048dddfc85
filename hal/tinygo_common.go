//go:build tinygo && baremetal

package hal

import (
	"errors"
	"fmt"
	"machine"
)

var errST7735Geometry = errors.New("st7735: unexpected panel geometry")

type uartLogger struct {
	uart *machine.UART
}

func (l *uartLogger) WriteLineString(s string) {
	for i := 0; i < len(s); i++ {
		l.uart.WriteByte(s[i])
	}
	l.uart.WriteByte('\r')
	l.uart.WriteByte('\n')
}

func (l *uartLogger) WriteLineBytes(b []byte) {
	for i := 0; i < len(b); i++ {
		l.uart.WriteByte(b[i])
	}
	l.uart.WriteByte('\r')
	l.uart.WriteByte('\n')
}

// machinePin is a GPIOPin over a physical RP2040 pin.
type machinePin struct {
	name string
	pin  machine.Pin
	caps GPIOCaps
	mode GPIOMode
}

func (p *machinePin) Name() string   { return p.name }
func (p *machinePin) Caps() GPIOCaps { return p.caps }

func (p *machinePin) Configure(mode GPIOMode, pull GPIOPull) error {
	var cfg machine.PinConfig
	switch mode {
	case GPIOModeInput:
		if p.caps&GPIOCapInput == 0 {
			return fmt.Errorf("gpio: pin %s: input unsupported", p.name)
		}
		switch pull {
		case GPIOPullNone:
			cfg.Mode = machine.PinInput
		case GPIOPullUp:
			cfg.Mode = machine.PinInputPullup
		case GPIOPullDown:
			cfg.Mode = machine.PinInputPulldown
		default:
			return fmt.Errorf("gpio: pin %s: invalid pull", p.name)
		}
	case GPIOModeOutput:
		if p.caps&GPIOCapOutput == 0 {
			return fmt.Errorf("gpio: pin %s: output unsupported", p.name)
		}
		cfg.Mode = machine.PinOutput
	default:
		return fmt.Errorf("gpio: pin %s: invalid mode", p.name)
	}
	p.pin.Configure(cfg)
	p.mode = mode
	return nil
}

func (p *machinePin) Read() (bool, error) {
	return p.pin.Get(), nil
}

func (p *machinePin) Write(level bool) error {
	if p.mode != GPIOModeOutput {
		return fmt.Errorf("gpio: pin %s: not in output mode", p.name)
	}
	p.pin.Set(level)
	return nil
}
