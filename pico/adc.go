package pico

import (
	"machine"
	"time"

	"libdb.so/bandglow/internal/sampler"
	"libdb.so/bandglow/spectrum"
)

// samplePeriod is the time between two conversions.
const samplePeriod = time.Second / spectrum.SampleRate

// ADCSource is a sampler.Source that reads the microphone through the
// RP2040 ADC. Conversions are paced in software at spectrum.SampleRate.
type ADCSource struct {
	sampler.Transfer
	adc machine.ADC
}

var _ sampler.Source = (*ADCSource)(nil)

// NewADCSource configures the ADC on pin.
func NewADCSource(pin machine.Pin) *ADCSource {
	machine.InitADC()

	adc := machine.ADC{Pin: pin}
	adc.Configure(machine.ADCConfig{})

	return &ADCSource{adc: adc}
}

// Drain implements sampler.Source. Conversions are only made inside Wait, so
// nothing is ever queued.
func (s *ADCSource) Drain() {}

// Wait implements sampler.Source.
func (s *ADCSource) Wait() error {
	if !s.Enabled() {
		return sampler.ErrNotRunning
	}

	next := time.Now()
	for !s.Full() {
		for time.Now().Before(next) {
		}
		next = next.Add(samplePeriod)

		// Get scales the 12-bit conversion up to 16 bits.
		s.Push(s.adc.Get() >> 4)
	}

	return nil
}
