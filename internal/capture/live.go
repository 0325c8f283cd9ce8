package capture

import (
	"context"
	"log/slog"
	"sync"

	"github.com/noriah/catnip/input"
	"github.com/pkg/errors"
	"libdb.so/bandglow/internal/sampler"
	"libdb.so/bandglow/spectrum"

	_ "github.com/noriah/catnip/input/all"
)

// liveChunk is the number of frames the capture backend delivers per kick.
const liveChunk = 64

// LiveConfig selects the capture backend and device of a LiveSource.
type LiveConfig struct {
	// Backend is the name of the catnip input backend, e.g. "parec" or
	// "ffmpeg-alsa".
	Backend string
	// Device is the name of the capture device. If empty, the backend's
	// default device is used.
	Device string
}

// LiveSource is a sampler.Source that captures mono audio through a catnip
// input backend at spectrum.SampleRate. Captured samples are discarded unless
// a transfer is armed and enabled.
type LiveSource struct {
	closeBackend func() error
	cancel       context.CancelFunc

	buf  [][]input.Sample
	kick chan bool

	stopped chan struct{} // closed when the session returns
	loop    chan struct{} // closed when the kick loop returns
	err     error

	// mu guards buf, which the session writes to, as well as the transfer.
	mu       sync.Mutex
	transfer sampler.Transfer
	done     chan struct{}
}

var _ sampler.Source = (*LiveSource)(nil)

// OpenLive initializes the capture backend and starts capturing.
func OpenLive(cfg LiveConfig, logger *slog.Logger) (*LiveSource, error) {
	backend, err := input.InitBackend(cfg.Backend)
	if err != nil {
		return nil, err
	}

	device, err := input.GetDevice(backend, cfg.Device)
	if err != nil {
		backend.Close()
		return nil, err
	}

	session, err := backend.Start(input.SessionConfig{
		Device:     device,
		FrameSize:  1,
		SampleSize: liveChunk,
		SampleRate: spectrum.SampleRate,
	})
	if err != nil {
		backend.Close()
		return nil, errors.Wrap(err, "failed to start capture session")
	}

	logger.Debug(
		"started capture session",
		"backend", cfg.Backend,
		"device", device.String())

	return startLive(session, backend.Close, logger), nil
}

// startLive runs session in the background. closeFn is called once the
// session has stopped.
func startLive(session input.Session, closeFn func() error, logger *slog.Logger) *LiveSource {
	ctx, cancel := context.WithCancel(context.Background())

	s := &LiveSource{
		closeBackend: closeFn,
		cancel:       cancel,
		buf:          input.MakeBuffers(1, liveChunk),
		kick:         make(chan bool, 1),
		stopped:      make(chan struct{}),
		loop:         make(chan struct{}),
		done:         make(chan struct{}),
	}

	go func() {
		defer close(s.stopped)
		err := session.Start(ctx, s.buf, s.kick, &s.mu)
		logger.Debug("capture session stopped", "error", err)
		if err != nil && !errors.Is(err, context.Canceled) {
			s.err = errors.Wrap(err, "capture session failed")
		} else {
			s.err = errors.New("capture session closed")
		}
	}()

	go func() {
		defer close(s.loop)
		for {
			select {
			case <-s.kick:
				s.process()
			case <-s.stopped:
				return
			}
		}
	}()

	return s
}

// process moves the captured chunk into the armed transfer.
func (s *LiveSource) process() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sample := range s.buf[0] {
		if !s.transfer.Push(sampler.UnitToCode(sample)) {
			break
		}
	}

	if s.transfer.Enabled() && s.transfer.Full() {
		select {
		case <-s.done:
		default:
			close(s.done)
		}
	}
}

// Drain implements sampler.Source.
func (s *LiveSource) Drain() {
	s.mu.Lock()
	s.transfer.Reset()
	s.mu.Unlock()
}

// Enable implements sampler.Source.
func (s *LiveSource) Enable(on bool) {
	s.mu.Lock()
	s.transfer.Enable(on)
	s.mu.Unlock()
}

// Start implements sampler.Source.
func (s *LiveSource) Start(dst []uint16) {
	s.mu.Lock()
	s.transfer.Start(dst)
	s.done = make(chan struct{})
	s.mu.Unlock()
}

// Wait implements sampler.Source. It only returns early if the capture session
// stops.
func (s *LiveSource) Wait() error {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-s.stopped:
		return s.err
	}
}

// Close stops capturing and releases the backend.
func (s *LiveSource) Close() error {
	s.cancel()
	<-s.stopped
	<-s.loop

	if err := s.closeBackend(); err != nil {
		return errors.Wrap(err, "failed to close input backend")
	}
	return nil
}

// BackendNames returns the names of the available capture backends.
func BackendNames() []string {
	return input.GetAllBackendNames()
}

// DeviceNames returns the capture devices of the named backend.
func DeviceNames(backendName string) ([]string, error) {
	backend, err := input.InitBackend(backendName)
	if err != nil {
		return nil, err
	}
	defer backend.Close()

	devices, err := backend.Devices()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list capture devices")
	}

	names := make([]string, len(devices))
	for i, device := range devices {
		names[i] = device.String()
	}
	return names, nil
}
