// Package capture provides sample sources that run on a host computer: live
// audio capture and WAV file replay.
package capture

import (
	"io"
	"math"
	"os"
	"time"

	"github.com/go-audio/wav"
	"github.com/pkg/errors"
	"libdb.so/bandglow/internal/sampler"
	"libdb.so/bandglow/spectrum"
)

// WAVOptions controls how a WAV file is replayed.
type WAVOptions struct {
	// Loop restarts the file from the beginning when it runs out.
	Loop bool
	// Realtime skips the samples that would have played while the source
	// was not transferring, so playback follows the wall clock.
	Realtime bool
}

// WAVSource is a sampler.Source that replays the first channel of a WAV
// file.
type WAVSource struct {
	sampler.Transfer

	codes []uint16
	pos   int
	opts  WAVOptions

	lastStop time.Time
	now      func() time.Time
}

var _ sampler.Source = (*WAVSource)(nil)

// OpenWAV decodes the WAV file at path into a WAVSource.
func OpenWAV(path string, opts WAVOptions) (*WAVSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open WAV file")
	}
	defer f.Close()

	return ReadWAV(f, opts)
}

// ReadWAV decodes a WAV stream into a WAVSource. The stream must be sampled
// at spectrum.SampleRate.
func ReadWAV(r io.ReadSeeker, opts WAVOptions) (*WAVSource, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, errors.New("invalid WAV file")
	}

	if dec.SampleRate != spectrum.SampleRate {
		return nil, errors.Errorf(
			"WAV sample rate is %d Hz, want %d Hz", dec.SampleRate, spectrum.SampleRate)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read WAV PCM data")
	}

	channels := int(dec.NumChans)
	if channels < 1 {
		return nil, errors.New("WAV file has no channels")
	}

	codes := make([]uint16, 0, len(buf.Data)/channels)
	for i := 0; i < len(buf.Data); i += channels {
		v, err := pcmToUnit(buf.Data[i], int(dec.BitDepth))
		if err != nil {
			return nil, err
		}
		codes = append(codes, sampler.UnitToCode(v))
	}

	if len(codes) < spectrum.SampleCount {
		return nil, errors.Errorf(
			"WAV file has %d samples, need at least %d", len(codes), spectrum.SampleCount)
	}

	return &WAVSource{
		codes: codes,
		opts:  opts,
		now:   time.Now,
	}, nil
}

func pcmToUnit(sample, bitDepth int) (float64, error) {
	switch bitDepth {
	case 8:
		// 8-bit WAV is unsigned.
		return float64(sample-128) / 128, nil
	case 16, 24, 32:
		return float64(sample) / float64(int64(1)<<(bitDepth-1)), nil
	default:
		return 0, errors.Errorf("unsupported WAV bit depth %d", bitDepth)
	}
}

// Len returns the number of samples in the file.
func (s *WAVSource) Len() int {
	return len(s.codes)
}

// Drain implements sampler.Source. In realtime mode, it skips the samples that
// elapsed since the last transfer stopped.
func (s *WAVSource) Drain() {
	if !s.opts.Realtime || s.lastStop.IsZero() {
		return
	}
	elapsed := s.now().Sub(s.lastStop)
	s.advance(int(math.Round(elapsed.Seconds() * spectrum.SampleRate)))
}

// Enable implements sampler.Source.
func (s *WAVSource) Enable(on bool) {
	if s.Enabled() && !on {
		s.lastStop = s.now()
	}
	s.Transfer.Enable(on)
}

// Wait implements sampler.Source. It returns io.EOF if the file runs out
// before the transfer completes and looping is disabled. The file is not
// consumed in that case.
func (s *WAVSource) Wait() error {
	if !s.Enabled() {
		return sampler.ErrNotRunning
	}

	if !s.opts.Loop && s.pos+s.Remaining() > len(s.codes) {
		return io.EOF
	}

	for !s.Full() {
		s.Push(s.codes[s.pos])
		s.advance(1)
	}
	return nil
}

func (s *WAVSource) advance(n int) {
	s.pos += n
	if s.opts.Loop {
		s.pos %= len(s.codes)
	} else if s.pos > len(s.codes) {
		s.pos = len(s.codes)
	}
}
