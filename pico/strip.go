package pico

import (
	"image/color"
	"machine"
	"runtime/interrupt"

	"libdb.so/bandglow/internal/led"
	"tinygo.org/x/drivers/ws2812"
)

// Strip is a WS2812 strip. It implements led.FrameWriter.
type Strip struct {
	dev    ws2812.Device
	colors []color.RGBA
}

var _ led.FrameWriter = (*Strip)(nil)

// NewStrip configures pin as the data line of a WS2812 strip.
func NewStrip(pin machine.Pin) *Strip {
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	return &Strip{dev: ws2812.New(pin)}
}

// WriteFrame implements led.FrameWriter.
func (s *Strip) WriteFrame(leds led.LEDs) error {
	return s.WritePixels(leds.AsPixels())
}

// WritePixels writes packed RGB pixels.
func (s *Strip) WritePixels(pix []uint8) error {
	colors := s.resize(len(pix) / 3)
	for i := range colors {
		colors[i] = color.RGBA{pix[3*i], pix[3*i+1], pix[3*i+2], 0xFF}
	}
	return s.write(colors)
}

// Fill sets every one of n pixels to c.
func (s *Strip) Fill(n int, c led.RGBColor) error {
	colors := s.resize(n)
	for i := range colors {
		colors[i] = color.RGBA{c[0], c[1], c[2], 0xFF}
	}
	return s.write(colors)
}

func (s *Strip) resize(n int) []color.RGBA {
	if cap(s.colors) < n {
		s.colors = make([]color.RGBA, n)
	}
	return s.colors[:n]
}

func (s *Strip) write(colors []color.RGBA) error {
	var err error
	critical(func() { err = s.dev.WriteColors(colors) })
	return err
}

func critical(f func()) {
	state := interrupt.Disable()
	f()
	interrupt.Restore(state)
}
