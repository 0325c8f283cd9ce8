package ledvis

import (
	"bytes"
	"io"
	"sync"

	"libdb.so/bandglow/internal/led"
)

// textShades maps brightness to a character, dimmest first.
var textShades = []byte(" .:-=+*#")

// TextWriter is a led.FrameWriter that draws grid frames as text, top row
// first. It is used when no LED device is attached.
type TextWriter struct {
	mu  sync.Mutex
	w   io.Writer
	buf bytes.Buffer
}

var _ led.FrameWriter = (*TextWriter)(nil)

// NewTextWriter creates a new TextWriter that writes to w.
func NewTextWriter(w io.Writer) *TextWriter {
	return &TextWriter{w: w}
}

// WriteFrame implements led.FrameWriter.
func (t *TextWriter) WriteFrame(leds led.LEDs) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.buf.Reset()
	for row := led.GridRows - 1; row >= 0; row-- {
		t.buf.WriteByte('|')
		for col := 0; col < led.GridColumns; col++ {
			c := leds[led.GridIndex(col, row)]
			t.buf.WriteByte(shade(c[2]))
		}
		t.buf.WriteString("|\n")
	}
	t.buf.WriteByte('\n')

	_, err := t.w.Write(t.buf.Bytes())
	return err
}

func shade(brightness uint8) byte {
	if brightness == 0 {
		return textShades[0]
	}
	i := 1 + int(brightness)*(len(textShades)-2)/MaxBrightness
	if i >= len(textShades) {
		i = len(textShades) - 1
	}
	return textShades[i]
}
