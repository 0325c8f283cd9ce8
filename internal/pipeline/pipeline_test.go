package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"libdb.so/bandglow/internal/led"
	"libdb.so/bandglow/internal/sampler"
	"libdb.so/bandglow/spectrum"
)

type frameRecorder struct {
	frames []led.LEDs
}

func (r *frameRecorder) WriteFrame(l led.LEDs) error {
	r.frames = append(r.frames, append(led.LEDs(nil), l...))
	return nil
}

func (r *frameRecorder) last() led.LEDs {
	return r.frames[len(r.frames)-1]
}

func newTestPipeline(src sampler.Source) (*Pipeline, *frameRecorder) {
	rec := &frameRecorder{}
	return New(src, led.NewFrameDriver(led.GridSize, rec)), rec
}

func TestStepSilence(t *testing.T) {
	p, rec := newTestPipeline(sampler.NewToneSource(1000, 0))

	energies, err := p.Step()
	require.NoError(t, err)

	for band, e := range energies {
		assert.InDelta(t, 0, e, 1e-9, "band %d", band)
	}

	require.Len(t, rec.frames, 1)
	for i, c := range rec.last() {
		assert.Equal(t, led.RGBColor{}, c, "LED %d", i)
	}
}

func TestStepTone(t *testing.T) {
	// 1000 Hz falls between bin 5 (861 Hz) and bin 6 (1034 Hz); bin 6 is in
	// the [1000, 3000) band.
	p, rec := newTestPipeline(sampler.NewToneSource(1000, 1))

	energies, err := p.Step()
	require.NoError(t, err)
	assert.Equal(t, 2, energies.Peak())

	frame := rec.last()
	at := func(col, row int) led.RGBColor { return frame[led.GridIndex(col, row)] }

	for row := 0; row < led.GridRows; row++ {
		assert.NotZero(t, at(2, row)[2], "tone column row %d", row)
	}

	top := led.GridRows - 1
	for _, col := range []int{0, 3, 4} {
		assert.Zero(t, at(col, top)[2], "column %d top row", col)
	}
}

func TestStepHighTone(t *testing.T) {
	p, rec := newTestPipeline(sampler.NewToneSource(4500, 1))

	energies, err := p.Step()
	require.NoError(t, err)
	assert.Equal(t, 3, energies.Peak())
	assert.NotZero(t, rec.last()[led.GridIndex(3, led.GridRows-1)][2])
}

func TestStepToneAboveBands(t *testing.T) {
	// 15 kHz is above the last band edge, so its peak is dropped.
	p, _ := newTestPipeline(sampler.NewToneSource(15000, 1))
	quiet, err := p.Step()
	require.NoError(t, err)

	p, _ = newTestPipeline(sampler.NewToneSource(4500, 1))
	loud, err := p.Step()
	require.NoError(t, err)

	var quietSum, loudSum float64
	for band := range quiet {
		quietSum += quiet[band]
		loudSum += loud[band]
	}
	assert.Less(t, quietSum, loudSum)
}

type failingSource struct{ err error }

func (s failingSource) Drain()         {}
func (s failingSource) Enable(bool)    {}
func (s failingSource) Start([]uint16) {}
func (s failingSource) Wait() error    { return s.err }

func TestStepSourceError(t *testing.T) {
	src := failingSource{err: errors.New("adc stalled")}
	p, rec := newTestPipeline(src)

	_, err := p.Step()
	assert.ErrorIs(t, err, src.err)
	assert.Empty(t, rec.frames, "nothing is rendered after a failed acquisition")
}

func TestStepFlushError(t *testing.T) {
	flushErr := errors.New("link down")
	driver := led.NewFrameDriver(led.GridSize, led.FrameWriterFunc(func(led.LEDs) error {
		return flushErr
	}))

	p := New(sampler.NewToneSource(1000, 1), driver)
	_, err := p.Step()
	assert.ErrorIs(t, err, flushErr)
}

func TestRun(t *testing.T) {
	p, rec := newTestPipeline(sampler.NewToneSource(1000, 0.5))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var cycles int
	p.OnCycle = func(spectrum.Energies) {
		cycles++
		if cycles == 3 {
			cancel()
		}
	}

	err := p.Run(ctx, time.Millisecond)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, cycles)
	assert.Len(t, rec.frames, 3)
}

func TestRunPeriod(t *testing.T) {
	p, _ := newTestPipeline(sampler.NewToneSource(1000, 0.5))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var stamps []time.Time
	p.OnCycle = func(spectrum.Energies) {
		stamps = append(stamps, time.Now())
		if len(stamps) == 3 {
			cancel()
		}
	}

	const period = 20 * time.Millisecond
	require.ErrorIs(t, p.Run(ctx, period), context.Canceled)
	for i := 1; i < len(stamps); i++ {
		assert.GreaterOrEqual(t, stamps[i].Sub(stamps[i-1]), period)
	}
}
