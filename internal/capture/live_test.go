package capture

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/noriah/catnip/input"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"libdb.so/bandglow/internal/sampler"
	"libdb.so/bandglow/spectrum"
)

// fakeSession behaves like a catnip session: it fills the buffer under the
// lock and kicks the consumer, until the context is canceled or fail is
// closed.
type fakeSession struct {
	value input.Sample
	fail  chan struct{}
}

func (f *fakeSession) Start(ctx context.Context, dst [][]input.Sample, kick chan bool, mu *sync.Mutex) error {
	if len(dst) != 1 || len(dst[0]) != liveChunk {
		return errors.New("invalid dst length given")
	}

	for {
		mu.Lock()
		for i := range dst[0] {
			dst[0][i] = f.value
		}
		mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-f.fail:
			return errors.New("parec exited")
		case kick <- true:
		}
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLiveSource(t *testing.T) {
	var closed bool
	session := &fakeSession{value: 0.5, fail: make(chan struct{})}
	src := startLive(session, func() error { closed = true; return nil }, testLogger())

	acq := sampler.NewAcquirer(src)

	for n := 0; n < 3; n++ {
		var w spectrum.Window
		require.NoError(t, acq.Acquire(&w))
		for i, code := range w {
			require.Equal(t, uint16(3072), code, "window %d sample %d", n, i)
		}
	}

	require.NoError(t, src.Close())
	assert.True(t, closed, "backend closed")
}

func TestLiveSourceDisabled(t *testing.T) {
	session := &fakeSession{value: 1, fail: make(chan struct{})}
	src := startLive(session, func() error { return nil }, testLogger())
	defer src.Close()

	dst := make([]uint16, 8)
	src.Start(dst)

	// Let a few chunks arrive while the transfer is disabled.
	time.Sleep(10 * time.Millisecond)

	src.mu.Lock()
	remaining := src.transfer.Remaining()
	src.mu.Unlock()

	assert.Equal(t, len(dst), remaining)
	assert.Equal(t, make([]uint16, 8), dst)
}

func TestLiveSourceSessionError(t *testing.T) {
	session := &fakeSession{value: 0, fail: make(chan struct{})}
	src := startLive(session, func() error { return nil }, testLogger())
	defer src.Close()

	close(session.fail)

	var w spectrum.Window
	src.Start(w[:])

	errCh := make(chan error, 1)
	go func() { errCh <- src.Wait() }()

	select {
	case err := <-errCh:
		assert.ErrorContains(t, err, "capture session failed: parec exited")
	case <-time.After(5 * time.Second):
		t.Fatal("Wait did not return after the session failed")
	}
}

func TestLiveSourceCloseUnblocksWait(t *testing.T) {
	session := &fakeSession{value: 0, fail: make(chan struct{})}
	src := startLive(session, func() error { return errors.New("busy") }, testLogger())

	var w spectrum.Window
	src.Start(w[:])

	errCh := make(chan error, 1)
	go func() { errCh <- src.Wait() }()

	assert.ErrorContains(t, src.Close(), "failed to close input backend: busy")

	select {
	case err := <-errCh:
		assert.ErrorContains(t, err, "capture session closed")
	case <-time.After(5 * time.Second):
		t.Fatal("Wait did not return after Close")
	}
}
