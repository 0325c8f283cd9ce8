package main

import (
	"fmt"
	"machine"

	"libdb.so/bandglow/internal/led"
	"libdb.so/bandglow/ledserial"
	"libdb.so/bandglow/pico"
)

// Device stores the current state of the device.
type Device struct {
	serial   pico.SerialIO
	strip    *pico.Strip
	activity machine.Pin

	numLEDs   int
	ledBuffer []byte
}

// NewDevice creates a new device.
func NewDevice(serial machine.Serialer, stripPin machine.Pin) *Device {
	pico.ActivityPin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	return &Device{
		serial:   pico.SerialIO{Serialer: serial},
		strip:    pico.NewStrip(stripPin),
		activity: pico.ActivityPin,
	}
}

// Run runs the device loop forever.
func (d *Device) Run() {
	for {
		p, err := d.readPacket()
		if err != nil {
			d.logError(err)
			continue
		}

		if err := d.handlePacket(p); err != nil {
			d.logError(err)
			continue
		}

		d.sendPacket(ledserial.AckPacket{IncomingPacketType: p.Type()})
	}
}

func (d *Device) log(msg string) {
	d.sendPacket(ledserial.LogPacket{Message: msg})
}

func (d *Device) logError(err error) {
	d.sendPacket(ledserial.ErrorPacket{Message: err.Error()})
}

func (d *Device) sendPacket(p ledserial.OutgoingPacket) {
	ledserial.WriteOutgoingPacket(d.serial, p)
}

func (d *Device) readPacket() (ledserial.IncomingPacket, error) {
	p, err := ledserial.ReadIncomingPacket(d.serial, ledserial.ReadContext{
		LEDBuffer: d.ledBuffer,
	})

	// Blink the activity LED once per packet.
	d.activity.Set(!d.activity.Get())
	return p, err
}

func (d *Device) handlePacket(p ledserial.IncomingPacket) error {
	switch p := p.(type) {
	case ledserial.InitializePacket:
		if p.NumLEDs < 1 {
			return fmt.Errorf("invalid number of LEDs: %d", p.NumLEDs)
		}
		d.numLEDs = int(p.NumLEDs)
		d.ledBuffer = make([]byte, 3*d.numLEDs)
		d.log(fmt.Sprintf("initialized %d LEDs", d.numLEDs))
		return d.signalReady()

	case ledserial.ClearPacket:
		return d.strip.Fill(d.numLEDs, led.RGBColor{})

	case ledserial.SetPacket:
		return d.strip.WritePixels(p.Pix)

	default:
		return fmt.Errorf("unknown packet type: %T", p)
	}
}

// signalReady lights the first LED red and the last one blue, and clears the
// rest.
func (d *Device) signalReady() error {
	frame := led.NewLEDs(d.numLEDs)
	frame[0] = led.RGBColor{0xFF, 0, 0}
	frame[len(frame)-1] = led.Blue(0xFF)
	return d.strip.WriteFrame(frame)
}
