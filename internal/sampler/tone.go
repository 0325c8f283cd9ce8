package sampler

import (
	"math"

	"libdb.so/bandglow/spectrum"
)

// ToneSource is a synthetic Source that produces a sine wave. Its phase
// carries over between transfers.
type ToneSource struct {
	Transfer

	// Frequency is the frequency of the tone in Hz.
	Frequency float64
	// Amplitude is the peak amplitude as a fraction of full scale.
	Amplitude float64

	phase float64
}

var _ Source = (*ToneSource)(nil)

// NewToneSource creates a new ToneSource.
func NewToneSource(frequency, amplitude float64) *ToneSource {
	return &ToneSource{
		Frequency: frequency,
		Amplitude: amplitude,
	}
}

// Drain implements Source. A tone has no queue, so this does nothing.
func (s *ToneSource) Drain() {}

// Wait implements Source.
func (s *ToneSource) Wait() error {
	step := 2 * math.Pi * s.Frequency / spectrum.SampleRate
	for !s.Full() {
		if !s.Push(UnitToCode(s.Amplitude * math.Sin(s.phase))) {
			return ErrNotRunning
		}
		s.phase = math.Mod(s.phase+step, 2*math.Pi)
	}
	return nil
}
