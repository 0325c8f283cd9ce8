// Package sampler acquires windows of raw samples from a sample source. It
// only depends on the standard library so that firmware can use it.
package sampler

import (
	"errors"
	"math"

	"libdb.so/bandglow/spectrum"
)

// ErrNotRunning is returned by Wait when the source was never enabled, so the
// transfer could never complete.
var ErrNotRunning = errors.New("sample source is not running")

// Source is a hardware-like sample source that transfers samples into a
// caller-provided buffer.
type Source interface {
	// Drain discards samples that were queued before the next transfer.
	Drain()
	// Enable starts or stops conversions.
	Enable(on bool)
	// Start arms a transfer of len(dst) samples into dst. Samples are only
	// produced while the source is enabled.
	Start(dst []uint16)
	// Wait blocks until the armed transfer has filled dst. There is no
	// timeout.
	Wait() error
}

// Acquirer acquires whole sample windows from a Source.
type Acquirer struct {
	src Source
}

// NewAcquirer creates a new Acquirer. The source must already be configured.
func NewAcquirer(src Source) *Acquirer {
	return &Acquirer{src: src}
}

// Acquire fills w with spectrum.SampleCount samples in acquisition order. It
// blocks until the transfer completes. The window is never partially filled
// on success.
func (a *Acquirer) Acquire(w *spectrum.Window) error {
	a.src.Drain()
	a.src.Enable(false)

	a.src.Start(w[:])
	a.src.Enable(true)
	err := a.src.Wait()
	a.src.Enable(false)

	return err
}

// UnitToCode converts a sample in [-1, 1] to a raw ADC code centered on
// spectrum.ADCMid. Values outside of the range are clipped.
func UnitToCode(v float64) uint16 {
	code := math.Round(spectrum.ADCMid + v*spectrum.ADCMid)
	switch {
	case code < 0 || math.IsNaN(code):
		return 0
	case code > spectrum.ADCMax:
		return spectrum.ADCMax
	default:
		return uint16(code)
	}
}

// Transfer tracks the armed transfer of a Source. Sources embed it to get
// Start and Enable.
type Transfer struct {
	dst     []uint16
	n       int
	enabled bool
}

// Start arms a transfer into dst.
func (t *Transfer) Start(dst []uint16) {
	t.dst = dst
	t.n = 0
}

// Enable starts or stops accepting samples.
func (t *Transfer) Enable(on bool) {
	t.enabled = on
}

// Enabled returns true if the transfer accepts samples.
func (t *Transfer) Enabled() bool {
	return t.enabled
}

// Reset drops the samples transferred so far.
func (t *Transfer) Reset() {
	t.n = 0
}

// Full returns true once every sample of the transfer has arrived.
func (t *Transfer) Full() bool {
	return t.n >= len(t.dst)
}

// Remaining returns the number of samples still missing.
func (t *Transfer) Remaining() int {
	return len(t.dst) - t.n
}

// Push appends a code to the transfer. It returns false if the code was not
// taken because the transfer is disabled or complete.
func (t *Transfer) Push(code uint16) bool {
	if !t.enabled || t.Full() {
		return false
	}
	t.dst[t.n] = code
	t.n++
	return true
}
