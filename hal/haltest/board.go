package haltest

import "spryg/hal"

// Board is a complete hal.HAL built from the doubles in this package. Fields
// may be replaced before the board is handed to the code under test.
type Board struct {
	Log       *Logger
	Clk       *Clock
	Disp      *Display
	Aud       *Audio
	Store     *Storage
	Buttons   [8]*hal.VirtualPin
	LEDLeft   *hal.VirtualPin
	LEDRight  *hal.VirtualPin
	Backlight *hal.VirtualPin
}

// NewBoard returns a board with no storage card and audio writes that each
// cost 10ms.
func NewBoard() *Board {
	clk := NewClock(0)
	b := &Board{
		Log:       &Logger{},
		Clk:       clk,
		Disp:      NewDisplay(),
		Aud:       &Audio{Clock: clk, WriteCost: 10},
		LEDLeft:   hal.NewVirtualPin(hal.PinLEDLeft, hal.GPIOCapOutput),
		LEDRight:  hal.NewVirtualPin(hal.PinLEDRight, hal.GPIOCapOutput),
		Backlight: hal.NewVirtualPin(hal.PinBacklight, hal.GPIOCapOutput),
	}
	for i, name := range hal.ButtonPinNames {
		b.Buttons[i] = hal.NewVirtualPin(name, hal.GPIOCapInput|hal.GPIOCapPullUp)
	}
	return b
}

// Press drives a button line low.
func (b *Board) Press(i int) { b.Buttons[i].Drive(false) }

// Lift releases a button line back to its pull-up.
func (b *Board) Lift(i int) { b.Buttons[i].Release() }

func (b *Board) Logger() hal.Logger { return b.Log }
func (b *Board) Clock() hal.Clock   { return b.Clk }

func (b *Board) GPIO() hal.GPIO {
	pins := make([]hal.GPIOPin, 0, 11)
	for _, p := range b.Buttons {
		pins = append(pins, p)
	}
	pins = append(pins, b.LEDLeft, b.LEDRight, b.Backlight)
	return hal.NewVirtualGPIO(pins...)
}

func (b *Board) Display() hal.Display {
	if b.Disp == nil {
		return nil
	}
	return b.Disp
}

func (b *Board) Audio() hal.Audio {
	if b.Aud == nil {
		return nil
	}
	return b.Aud
}

func (b *Board) Storage() hal.Storage {
	if b.Store == nil {
		return nil
	}
	return b.Store
}
