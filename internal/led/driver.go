package led

// Driver is a pixel driver for a strip of LEDs. Pixels set on the driver are
// only shown once Flush is called.
type Driver interface {
	// Clear turns off every pixel in the pending frame.
	Clear()
	// SetPixel sets the color of the pixel at index i in the pending frame.
	SetPixel(i int, c RGBColor)
	// Flush shows the pending frame.
	Flush() error
}

// FrameWriter writes a whole frame of LEDs to a device.
type FrameWriter interface {
	// WriteFrame writes the frame. The frame must not be retained after
	// WriteFrame returns.
	WriteFrame(LEDs) error
}

// FrameWriterFunc is a function that implements FrameWriter.
type FrameWriterFunc func(LEDs) error

// WriteFrame implements FrameWriter.
func (f FrameWriterFunc) WriteFrame(l LEDs) error { return f(l) }

// FrameDriver is a Driver that buffers a frame and hands it to a FrameWriter
// in a single write on Flush.
type FrameDriver struct {
	leds LEDs
	w    FrameWriter
}

var _ Driver = (*FrameDriver)(nil)

// NewFrameDriver creates a FrameDriver for numLEDs LEDs.
func NewFrameDriver(numLEDs int, w FrameWriter) *FrameDriver {
	return &FrameDriver{
		leds: NewLEDs(numLEDs),
		w:    w,
	}
}

// Clear implements Driver.
func (d *FrameDriver) Clear() {
	d.leds.Clear()
}

// SetPixel implements Driver.
func (d *FrameDriver) SetPixel(i int, c RGBColor) {
	d.leds.Set(i, c)
}

// Flush implements Driver.
func (d *FrameDriver) Flush() error {
	return d.w.WriteFrame(d.leds)
}

// Len returns the number of LEDs in the frame.
func (d *FrameDriver) Len() int {
	return len(d.leds)
}
