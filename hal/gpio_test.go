package hal

import "testing"

func TestVirtualPinPullUp(t *testing.T) {
	pin := NewVirtualPin("W", GPIOCapInput|GPIOCapPullUp)

	if _, err := pin.Read(); err == nil {
		t.Fatal("expected error reading unconfigured pin")
	}
	if err := pin.Configure(GPIOModeInput, GPIOPullUp); err != nil {
		t.Fatalf("Configure: %v", err)
	}

	level, err := pin.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !level {
		t.Fatal("expected idle line to read high")
	}

	pin.Drive(false)
	if level, _ = pin.Read(); level {
		t.Fatal("expected driven line to read low")
	}

	pin.Release()
	if level, _ = pin.Read(); !level {
		t.Fatal("expected released line to float high")
	}
}

func TestVirtualPinCaps(t *testing.T) {
	pin := NewVirtualPin("LED_L", GPIOCapOutput)
	if err := pin.Configure(GPIOModeInput, GPIOPullNone); err == nil {
		t.Fatal("expected input to be rejected")
	}
	if err := pin.Write(true); err == nil {
		t.Fatal("expected write before configure to fail")
	}
	if err := pin.Configure(GPIOModeOutput, GPIOPullNone); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if err := pin.Write(true); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !pin.Level() {
		t.Fatal("expected level high")
	}

	in := NewVirtualPin("A", GPIOCapInput)
	if err := in.Configure(GPIOModeInput, GPIOPullUp); err == nil {
		t.Fatal("expected pull-up to be rejected")
	}
}

func TestFindPin(t *testing.T) {
	g := NewVirtualGPIO(nil, NewVirtualPin("A", GPIOCapInput), NewVirtualPin(PinLEDLeft, GPIOCapOutput))
	if g.PinCount() != 2 {
		t.Fatalf("PinCount = %d, want 2", g.PinCount())
	}
	if p := FindPin(g, PinLEDLeft); p == nil || p.Name() != PinLEDLeft {
		t.Fatalf("FindPin(%q) = %v", PinLEDLeft, p)
	}
	if p := FindPin(g, "missing"); p != nil {
		t.Fatalf("FindPin(missing) = %v", p)
	}
	if p := FindPin(nil, "A"); p != nil {
		t.Fatal("expected nil from nil bank")
	}
}

type countingLED struct{ high, low int }

func (l *countingLED) High() { l.high++ }
func (l *countingLED) Low()  { l.low++ }

func TestLEDPin(t *testing.T) {
	led := &countingLED{}
	pin := NewLEDPin("LED_R", led)
	if err := pin.Configure(GPIOModeOutput, GPIOPullUp); err == nil {
		t.Fatal("expected pull to be rejected")
	}
	if err := pin.Configure(GPIOModeOutput, GPIOPullNone); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	_ = pin.Write(true)
	_ = pin.Write(false)
	if led.high != 1 || led.low != 1 {
		t.Fatalf("high=%d low=%d", led.high, led.low)
	}
	if NewLEDPin("x", nil) != nil {
		t.Fatal("expected nil pin for nil LED")
	}
}
