// Package spectrum turns windows of raw ADC samples into per-band energies.
// It only depends on the standard library so that it builds under TinyGo.
package spectrum

import "math"

const (
	// SampleCount is the number of samples in one window. It must be a power
	// of two.
	SampleCount = 256
	// SampleRate is the rate the sample source runs at, in Hz.
	SampleRate = 44100

	// ADCBits is the resolution of the sample source.
	ADCBits = 12
	// ADCMax is the largest code the sample source produces.
	ADCMax = 1<<ADCBits - 1
	// ADCMid is the code of a silent input.
	ADCMid = 1 << (ADCBits - 1)

	// ReferenceVoltage is the voltage of a full-scale code.
	ReferenceVoltage = 3.3
	// OffsetVoltage is the microphone bias removed from every sample.
	OffsetVoltage = 1.65
)

// Window is a window of raw ADC codes in acquisition order.
type Window [SampleCount]uint16

// Fill sets every sample in the window to code.
func (w *Window) Fill(code uint16) {
	for i := range w {
		w[i] = code
	}
}

// Voltage converts a raw ADC code to a voltage centered around zero.
func Voltage(code uint16) float64 {
	return float64(code)*ReferenceVoltage/(1<<ADCBits) - OffsetVoltage
}

// Spectrum is a complex sequence that is transformed in place.
type Spectrum struct {
	Real [SampleCount]float64
	Imag [SampleCount]float64
}

// Load resets the spectrum to the time-domain samples of w.
func (s *Spectrum) Load(w *Window) {
	for i, code := range w {
		s.Real[i] = Voltage(code)
		s.Imag[i] = 0
	}
}

// Transform replaces the spectrum with its discrete Fourier transform.
func (s *Spectrum) Transform() {
	FFT(s.Real[:], s.Imag[:])
}

// Magnitudes holds the magnitude of the lower half of a transformed
// spectrum. Bin i has the frequency BinFrequency(i).
type Magnitudes [SampleCount / 2]float64

// Magnitude writes the magnitude of the first half of s into dst. The upper
// half mirrors the lower half for real input and is ignored.
func (s *Spectrum) Magnitude(dst *Magnitudes) {
	for i := range dst {
		dst[i] = math.Hypot(s.Real[i], s.Imag[i])
	}
}

// BinFrequency returns the frequency in Hz of bin i.
func BinFrequency(i int) float64 {
	return float64(i) * SampleRate / SampleCount
}
