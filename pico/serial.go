package pico

import (
	"io"
	"machine"
	"runtime"
	"time"
)

// SerialIO adapts a machine.Serialer to an io.ReadWriter.
type SerialIO struct {
	machine.Serialer
}

var _ io.ReadWriter = SerialIO{}

// Read reads the bytes that are currently buffered, up to len(b). If nothing
// is buffered, it sleeps for a millisecond and returns 0.
func (s SerialIO) Read(b []byte) (int, error) {
	n := s.Buffered()
	if n == 0 {
		time.Sleep(time.Millisecond)
		return 0, nil
	}
	if n > len(b) {
		n = len(b)
	}

	for i := 0; i < n; i++ {
		c, err := s.ReadByte()
		if err != nil {
			return i, err
		}
		b[i] = c
	}

	runtime.Gosched()
	return n, nil
}

// Write writes b byte by byte.
func (s SerialIO) Write(b []byte) (int, error) {
	for i, c := range b {
		if err := s.WriteByte(c); err != nil {
			return i, err
		}
	}
	runtime.Gosched()
	return len(b), nil
}
