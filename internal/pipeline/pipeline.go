// Package pipeline runs the acquire, transform, aggregate and render cycle.
package pipeline

import (
	"context"
	"time"

	"libdb.so/bandglow/internal/led"
	"libdb.so/bandglow/internal/ledvis"
	"libdb.so/bandglow/internal/sampler"
	"libdb.so/bandglow/spectrum"
)

// Period is the delay between the end of one cycle and the start of the next.
const Period = 50 * time.Millisecond

// Pipeline owns the buffers of one cycle. A Pipeline must not be used
// concurrently.
type Pipeline struct {
	// OnCycle, if not nil, is called with the band energies after every
	// rendered frame.
	OnCycle func(spectrum.Energies)

	acquirer *sampler.Acquirer
	bars     *ledvis.BarGraph

	window     spectrum.Window
	spectrum   spectrum.Spectrum
	magnitudes spectrum.Magnitudes
}

// New creates a new Pipeline that reads from src and draws onto driver.
func New(src sampler.Source, driver led.Driver) *Pipeline {
	return &Pipeline{
		acquirer: sampler.NewAcquirer(src),
		bars:     ledvis.NewBarGraph(driver),
	}
}

// Step runs a single cycle and returns the band energies it rendered.
func (p *Pipeline) Step() (spectrum.Energies, error) {
	if err := p.acquirer.Acquire(&p.window); err != nil {
		return spectrum.Energies{}, err
	}

	p.spectrum.Load(&p.window)
	p.spectrum.Transform()
	p.spectrum.Magnitude(&p.magnitudes)

	energies := spectrum.Aggregate(&p.magnitudes)
	if err := p.bars.Render(energies); err != nil {
		return energies, err
	}

	if p.OnCycle != nil {
		p.OnCycle(energies)
	}

	return energies, nil
}

// Run runs cycles separated by period until a cycle fails or ctx is done.
// Cancellation is only noticed between cycles.
func (p *Pipeline) Run(ctx context.Context, period time.Duration) error {
	for {
		if _, err := p.Step(); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(period):
		}
	}
}
