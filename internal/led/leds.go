// Package led describes LED frames and the pixel drivers that display them.
package led

import (
	"fmt"
	"io"
	"unsafe"
)

// RGBColor is a color with one byte per channel, in red, green, blue order.
type RGBColor [3]uint8

// Blue returns a color that only lights the blue channel.
func Blue(b uint8) RGBColor {
	return RGBColor{0, 0, b}
}

// String formats the color as a hex triplet.
func (c RGBColor) String() string {
	return fmt.Sprintf("#%02X%02X%02X", c[0], c[1], c[2])
}

// LEDs describes a strip of LEDs. It is a preallocated slice of RGBColor.
type LEDs []RGBColor

// NewLEDs creates a new strip of LEDs. Colors are initialized to black
// (off).
func NewLEDs(numLEDs int) LEDs {
	return make(LEDs, numLEDs)
}

// WriteTo implements io.WriterTo. It writes the LED strip to the given writer
// as a series of RGBColor values.
func (l LEDs) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(l.AsPixels())
	return int64(n), err
}

// AsPixels returns the LED strip as a slice of uint8 values. Each LED is
// represented by three values, one for each color channel. The returned slice
// shares memory with l.
func (l LEDs) AsPixels() []uint8 {
	if len(l) == 0 {
		return nil
	}
	return unsafe.Slice((*uint8)(unsafe.Pointer(&l[0])), 3*len(l))
}

// Set sets the color of the LED at the given index.
func (l LEDs) Set(i int, c RGBColor) {
	l[i] = c
}

// Clear turns off every LED.
func (l LEDs) Clear() {
	for i := range l {
		l[i] = RGBColor{}
	}
}
