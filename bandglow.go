// Package bandglow runs an audio spectrum visualizer that drives a 5x5 LED
// grid, one column per frequency band.
package bandglow

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"libdb.so/bandglow/internal/capture"
	"libdb.so/bandglow/internal/led"
	"libdb.so/bandglow/internal/ledvis"
	"libdb.so/bandglow/internal/pipeline"
	"libdb.so/bandglow/internal/sampler"
	"libdb.so/bandglow/spectrum"
)

// errSourceEnded stops the daemon once a finite sample source runs out.
var errSourceEnded = errors.New("sample source ended")

// Daemon is the main bandglow daemon.
type Daemon struct {
	cfg    *Config
	logger *slog.Logger

	// openPort opens the serial port. It is replaced in tests.
	openPort func(path string, baud int) (io.ReadWriteCloser, error)
	// textOut receives text frames when no serial device is configured.
	textOut io.Writer
}

// NewDaemon creates a new bandglow daemon.
func NewDaemon(cfg *Config, logger *slog.Logger) (*Daemon, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	return &Daemon{
		cfg:    cfg,
		logger: logger,
		openPort: func(path string, baud int) (io.ReadWriteCloser, error) {
			return OpenSerialPort(path, baud)
		},
		textOut: os.Stdout,
	}, nil
}

// Run starts the daemon. It blocks until the given context is canceled, a
// cycle fails or a non-looping WAV file ends. The latter returns nil.
func (d *Daemon) Run(ctx context.Context) error {
	src, err := d.openSource()
	if err != nil {
		return err
	}

	errg, ctx := errgroup.WithContext(ctx)

	var closers []io.Closer
	if c, ok := src.(io.Closer); ok {
		closers = append(closers, c)
	}

	var link *SerialLink
	var frames led.FrameWriter

	if d.cfg.UsesSerial() {
		port, err := d.openPort(d.cfg.Device, d.cfg.Baud)
		if err != nil {
			closeAll(closers)
			return err
		}
		closers = append(closers, port)

		link = NewSerialLink(port, d.logger)
		frames = link

		errg.Go(func() error {
			return link.Run(ctx)
		})
	} else {
		frames = ledvis.NewTextWriter(d.textOut)
	}

	// Closing the port and the source unblocks the goroutines stuck on them.
	errg.Go(func() error {
		<-ctx.Done()
		d.logger.Debug("closing sample source and serial port")
		closeAll(closers)
		return ctx.Err()
	})

	errg.Go(func() error {
		return d.mainLoop(ctx, src, link, frames)
	})

	if err := errg.Wait(); !errors.Is(err, errSourceEnded) {
		return err
	}
	return nil
}

func (d *Daemon) mainLoop(ctx context.Context, src sampler.Source, link *SerialLink, frames led.FrameWriter) error {
	if delay := time.Duration(d.cfg.StartupDelay); delay > 0 {
		d.logger.Debug("waiting before the first cycle", "delay", delay)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	if link != nil {
		d.logger.Debug("sending initialize packet")
		if err := link.Initialize(led.GridSize); err != nil {
			return errors.Wrap(err, "failed to initialize LEDs")
		}
	}

	p := pipeline.New(src, led.NewFrameDriver(led.GridSize, frames))
	p.OnCycle = func(e spectrum.Energies) {
		d.logger.Debug(
			"rendered frame",
			"energies", e[:],
			"peak_band", e.Peak())
	}

	if err := p.Run(ctx, pipeline.Period); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, io.EOF) {
			d.logger.Info("sample source ended")
			if link != nil {
				if err := link.Clear(); err != nil {
					return errors.Wrap(err, "failed to clear LEDs")
				}
			}
			return errSourceEnded
		}
		return errors.Wrap(err, "pipeline failed")
	}

	return nil
}

func (d *Daemon) openSource() (sampler.Source, error) {
	cfg := d.cfg.Source

	switch cfg.Kind {
	case ToneSourceKind:
		return sampler.NewToneSource(cfg.Frequency, cfg.Amplitude), nil

	case WAVSourceKind:
		src, err := capture.OpenWAV(cfg.File, capture.WAVOptions{
			Loop:     cfg.Loop,
			Realtime: cfg.Realtime,
		})
		if err != nil {
			return nil, err
		}
		return src, nil

	case LiveSourceKind:
		src, err := capture.OpenLive(capture.LiveConfig{
			Backend: cfg.Backend,
			Device:  cfg.Device,
		}, d.logger)
		if err != nil {
			return nil, err
		}
		return src, nil

	default:
		return nil, errors.Errorf("unknown source kind %q", cfg.Kind)
	}
}

func closeAll(closers []io.Closer) {
	for _, c := range closers {
		c.Close()
	}
}
