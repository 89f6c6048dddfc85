//go:build tinygo && baremetal

package hal

import (
	"machine"

	"tinygo.org/x/drivers/st7735"
)

type tinyGoHAL struct {
	logger  *uartLogger
	clock   Clock
	gpio    GPIO
	disp    Display
	audio   Audio
	storage Storage
}

// New returns the Spryg board HAL (RP2040 with ST7735 panel, an I2S amplifier
// and an SD slot sharing SPI0 with the panel).
//
// I2S: DIN on GP9, BCLK on GP10, LRCLK on GP11.
//
// UART: UART0 on GP0 (TX) / GP1 (RX), 115200 8N1.
func New() HAL {
	uart := machine.UART0
	uart.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GP0,
		RX:       machine.GP1,
	})
	logger := &uartLogger{uart: uart}

	buttons := [8]machine.Pin{
		machine.GP5, machine.GP6, machine.GP7, machine.GP8,
		machine.GP12, machine.GP13, machine.GP14, machine.GP15,
	}
	pins := make([]GPIOPin, 0, 11)
	for i, p := range buttons {
		pins = append(pins, &machinePin{name: ButtonPinNames[i], pin: p, caps: GPIOCapInput | GPIOCapPullUp})
	}
	pins = append(pins,
		&machinePin{name: PinLEDLeft, pin: machine.GP28, caps: GPIOCapOutput},
		&machinePin{name: PinLEDRight, pin: machine.GP4, caps: GPIOCapOutput},
		&machinePin{name: PinBacklight, pin: machine.GP17, caps: GPIOCapOutput},
	)

	machine.SPI0.Configure(machine.SPIConfig{
		SCK:       machine.GP18,
		SDO:       machine.GP19,
		SDI:       machine.GP16,
		Frequency: 20_000_000,
	})

	var disp Display
	if d, err := newST7735Display(); err == nil {
		disp = d
	} else {
		logger.WriteLineString("display: " + err.Error())
	}

	var audio Audio
	if a, err := newI2SAudio(machine.GP9, machine.GP10); err == nil {
		audio = a
	} else {
		logger.WriteLineString("audio: i2s: " + err.Error() + ", falling back to pwm on GP9")
		audio = newTinyGoAudio(machine.GP9)
	}

	return &tinyGoHAL{
		logger:  logger,
		clock:   NewClock(0),
		gpio:    NewVirtualGPIO(pins...),
		disp:    disp,
		audio:   audio,
		storage: newSDStorage(),
	}
}

func (h *tinyGoHAL) Logger() Logger   { return h.logger }
func (h *tinyGoHAL) Clock() Clock     { return h.clock }
func (h *tinyGoHAL) GPIO() GPIO       { return h.gpio }
func (h *tinyGoHAL) Display() Display { return h.disp }
func (h *tinyGoHAL) Audio() Audio     { return h.audio }
func (h *tinyGoHAL) Storage() Storage { return h.storage }

type st7735Display struct {
	dev *st7735.Device
}

func newST7735Display() (*st7735Display, error) {
	dev := st7735.New(machine.SPI0, machine.GP26, machine.GP22, machine.GP20, machine.GP17)
	dev.Configure(st7735.Config{
		Width:    ScreenHeight,
		Height:   ScreenWidth,
		Rotation: st7735.ROTATION_90,
		Model:    st7735.GREENTAB,
	})
	if w, h := dev.Size(); int(w) != ScreenWidth || int(h) != ScreenHeight {
		return nil, errST7735Geometry
	}
	return &st7735Display{dev: &dev}, nil
}

func (d *st7735Display) Size() (int, int)    { return ScreenWidth, ScreenHeight }
func (d *st7735Display) Format() PixelFormat { return PixelFormatRGB565BE }

// WriteWindow sends the frame verbatim; the driver consumes big-endian RGB565.
func (d *st7735Display) WriteWindow(buf []byte) error {
	return d.dev.DrawRGBBitmap8(0, 0, buf, ScreenWidth, ScreenHeight)
}
